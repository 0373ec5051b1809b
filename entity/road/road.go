package road

import (
	"fmt"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/tsinghua-fib-lab/parking-sim/entity"
)

// Gate 路段端点上的出入口标记
type Gate int

const (
	GateNone Gate = iota
	GateEntrance
	GateExit
)

func (g Gate) String() string {
	switch g {
	case GateEntrance:
		return "entrance"
	case GateExit:
		return "exit"
	default:
		return "none"
	}
}

// Segment 直线路段
// 功能：停车场路网中的一段竖直或水平道路，由网格行列号定位
// 说明：构建完成后不可变，路段之间以指针判等
type Segment struct {
	orientation entity.Orientation
	row, col    int
	length      float64
	anchor      geometry.Point // 竖直路段为北端点，水平路段为西端点

	// 两端所接路口名，竖直路段为北/南，水平路段为西/东，为空表示无路口
	startIntersection string
	endIntersection   string

	gate    Gate
	gateEnd entity.Direction // gate所在端点
}

// New 创建路段
func New(o entity.Orientation, row, col int, length float64, anchor geometry.Point) *Segment {
	if length <= 0 {
		log.Panicf("segment %s-%d-%d: non-positive length %v", o, row, col, length)
	}
	return &Segment{
		orientation: o,
		row:         row,
		col:         col,
		length:      length,
		anchor:      anchor,
	}
}

func (s *Segment) String() string {
	return s.Name()
}

// Name 路段名，如V-1-0、H-0-1
func (s *Segment) Name() string {
	prefix := "V"
	if s.orientation == entity.Horizontal {
		prefix = "H"
	}
	return fmt.Sprintf("%s-%d-%d", prefix, s.row, s.col)
}

func (s *Segment) Orientation() entity.Orientation {
	return s.orientation
}

func (s *Segment) IsVertical() bool {
	return s.orientation == entity.Vertical
}

func (s *Segment) Row() int {
	return s.row
}

func (s *Segment) Col() int {
	return s.col
}

func (s *Segment) Length() float64 {
	return s.length
}

func (s *Segment) Anchor() geometry.Point {
	return s.anchor
}

func (s *Segment) Gate() (Gate, entity.Direction) {
	return s.gate, s.gateEnd
}

// SetGate 标记出入口，只允许在路网构建时调用
func (s *Segment) SetGate(g Gate, end entity.Direction) error {
	if !s.hasEnd(end) {
		return fmt.Errorf("segment %s has no %v end", s.Name(), end)
	}
	if s.gate != GateNone {
		return fmt.Errorf("segment %s already has a %v at its %v end", s.Name(), s.gate, s.gateEnd)
	}
	if s.EndIntersection(end) != "" {
		return fmt.Errorf("segment %s %v end is intersection %s", s.Name(), end, s.EndIntersection(end))
	}
	s.gate = g
	s.gateEnd = end
	return nil
}

// SetEndIntersection 记录端点所接路口，只允许在路网构建时调用
func (s *Segment) SetEndIntersection(end entity.Direction, name string) {
	if s.gate != GateNone && s.gateEnd == end {
		log.Panicf("segment %s: %v end already tagged %v", s.Name(), end, s.gate)
	}
	switch end {
	case entity.North, entity.West:
		s.startIntersection = name
	case entity.South, entity.East:
		s.endIntersection = name
	}
}

// EndIntersection 沿d方向行驶到达的端点路口名
func (s *Segment) EndIntersection(d entity.Direction) string {
	if !s.hasEnd(d) {
		return ""
	}
	if d == entity.North || d == entity.West {
		return s.startIntersection
	}
	return s.endIntersection
}

// TopIntersection 等为按方位命名的便捷访问
func (s *Segment) TopIntersection() string    { return s.EndIntersection(entity.North) }
func (s *Segment) BottomIntersection() string { return s.EndIntersection(entity.South) }
func (s *Segment) LeftIntersection() string   { return s.EndIntersection(entity.West) }
func (s *Segment) RightIntersection() string  { return s.EndIntersection(entity.East) }

func (s *Segment) hasEnd(d entity.Direction) bool {
	if s.IsVertical() {
		return d == entity.North || d == entity.South
	}
	return d == entity.East || d == entity.West
}

// Along 点在路段轴向上的坐标（竖直路段取y，水平路段取x）
func (s *Segment) Along(p geometry.Point) float64 {
	if s.IsVertical() {
		return p.Y
	}
	return p.X
}

// Center 路段中心线的横向坐标（竖直路段取x，水平路段取y）
func (s *Segment) Center() float64 {
	if s.IsVertical() {
		return s.anchor.X
	}
	return s.anchor.Y
}

// StartCoord 与 EndCoord 为路段轴向范围
func (s *Segment) StartCoord() float64 {
	return s.Along(s.anchor)
}

func (s *Segment) EndCoord() float64 {
	return s.StartCoord() + s.length
}

// TerminalCoord 沿d方向行驶到达的端点轴向坐标
func (s *Segment) TerminalCoord(d entity.Direction) float64 {
	if d.Sign() > 0 {
		return s.EndCoord()
	}
	return s.StartCoord()
}

// Contains 轴向坐标是否在路段范围内
func (s *Segment) Contains(coord float64) bool {
	return coord >= s.StartCoord() && coord <= s.EndCoord()
}

// PointAt 中心线上轴向坐标为coord的点
func (s *Segment) PointAt(coord float64) geometry.Point {
	if s.IsVertical() {
		return geometry.Point{X: s.anchor.X, Y: coord}
	}
	return geometry.Point{X: coord, Y: s.anchor.Y}
}

// LanePoint 沿heading行驶时右侧车道上轴向坐标为coord的点
func (s *Segment) LanePoint(coord float64, heading entity.Direction, laneOffset float64) geometry.Point {
	p := s.PointAt(coord)
	dx, dy := heading.Right().Vector()
	p.X += dx * laneOffset
	p.Y += dy * laneOffset
	return p
}

// Crossing 竖直路段与水平路段中心线的交点
func Crossing(a, b *Segment) geometry.Point {
	if a.IsVertical() == b.IsVertical() {
		log.Panicf("segments %s and %s do not cross", a.Name(), b.Name())
	}
	if a.IsVertical() {
		return geometry.Point{X: a.anchor.X, Y: b.anchor.Y}
	}
	return geometry.Point{X: b.anchor.X, Y: a.anchor.Y}
}
