package entity

import "fmt"

// Direction 车辆行驶方向（东南西北）
// 说明：坐标系x向东、y向南，零值DirectionNone表示未指定
type Direction int

const (
	DirectionNone Direction = iota
	North
	East
	South
	West
)

func (d Direction) String() string {
	switch d {
	case North:
		return "north"
	case East:
		return "east"
	case South:
		return "south"
	case West:
		return "west"
	default:
		return "none"
	}
}

// Vertical 是否沿南北方向
func (d Direction) Vertical() bool {
	return d == North || d == South
}

// Opposite 反方向
func (d Direction) Opposite() Direction {
	switch d {
	case North:
		return South
	case South:
		return North
	case East:
		return West
	case West:
		return East
	default:
		return DirectionNone
	}
}

// Right 右手方向
func (d Direction) Right() Direction {
	switch d {
	case North:
		return East
	case East:
		return South
	case South:
		return West
	case West:
		return North
	default:
		return DirectionNone
	}
}

// Left 左手方向
func (d Direction) Left() Direction {
	return d.Right().Opposite()
}

// Sign 沿所在坐标轴的正负号（南、东为+1，北、西为-1）
func (d Direction) Sign() float64 {
	switch d {
	case South, East:
		return 1
	case North, West:
		return -1
	default:
		return 0
	}
}

// Vector 单位方向向量
func (d Direction) Vector() (dx, dy float64) {
	switch d {
	case North:
		return 0, -1
	case South:
		return 0, 1
	case East:
		return 1, 0
	case West:
		return -1, 0
	default:
		return 0, 0
	}
}

// Orientation 道路段朝向
type Orientation int

const (
	Vertical Orientation = iota
	Horizontal
)

func (o Orientation) String() string {
	if o == Horizontal {
		return "horizontal"
	}
	return "vertical"
}

// Turn 从上一路段进入当前路段所需的转向
type Turn int

const (
	TurnNone Turn = iota
	TurnLeft
	TurnRight
)

func (t Turn) String() string {
	switch t {
	case TurnLeft:
		return "left"
	case TurnRight:
		return "right"
	default:
		return "none"
	}
}

// Status 车辆状态
type Status int

const (
	StatusApproaching Status = iota
	StatusTurning
	StatusParking
	StatusParked
	StatusLeaving
	StatusReversing
)

func (s Status) String() string {
	switch s {
	case StatusApproaching:
		return "approaching"
	case StatusTurning:
		return "turning"
	case StatusParking:
		return "parking"
	case StatusParked:
		return "parked"
	case StatusLeaving:
		return "leaving"
	case StatusReversing:
		return "reversing"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// CollisionBox 场地坐标系下的轴对齐矩形
type CollisionBox struct {
	X, Y, W, H float64
}

func (b CollisionBox) Right() float64 {
	return b.X + b.W
}

func (b CollisionBox) Bottom() float64 {
	return b.Y + b.H
}

// Edge 矩形在d方向一侧的边坐标
func (b CollisionBox) Edge(d Direction) float64 {
	switch d {
	case North:
		return b.Y
	case South:
		return b.Bottom()
	case West:
		return b.X
	case East:
		return b.Right()
	default:
		panic(fmt.Sprintf("entity: no edge for direction %v", d))
	}
}

// Extend 向d方向扩展amount，amount<=0时原样返回
func (b CollisionBox) Extend(d Direction, amount float64) CollisionBox {
	if amount <= 0 {
		return b
	}
	switch d {
	case North:
		b.Y -= amount
		b.H += amount
	case South:
		b.H += amount
	case West:
		b.X -= amount
		b.W += amount
	case East:
		b.W += amount
	}
	return b
}

// Pad 四周各扩展amount
func (b CollisionBox) Pad(amount float64) CollisionBox {
	return CollisionBox{X: b.X - amount, Y: b.Y - amount, W: b.W + 2*amount, H: b.H + 2*amount}
}

// Union 包含所有矩形的最小矩形
func Union(first CollisionBox, others ...CollisionBox) CollisionBox {
	x0, y0, x1, y1 := first.X, first.Y, first.Right(), first.Bottom()
	for _, o := range others {
		x0 = min(x0, o.X)
		y0 = min(y0, o.Y)
		x1 = max(x1, o.Right())
		y1 = max(y1, o.Bottom())
	}
	return CollisionBox{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}
