package occupancy

import (
	"git.fiblab.net/general/common/v2/geometry"
	"github.com/tsinghua-fib-lab/parking-sim/entity"
	"github.com/tsinghua-fib-lab/parking-sim/entity/road"
)

// Params 占用计算参数
type Params struct {
	RoadWidth           float64 // 双车道道路总宽
	MinStoppingDistance float64 // 车辆最小制动距离
	TurningRunUp        float64 // 转弯所需的助跑距离
	Buffer              float64 // 所有机动区域的外扩余量
}

// Model 占用模型
// 功能：以轴对齐矩形计算车身、制动区、前方道路以及各类机动的扫掠区域
// 说明：全部方法为纯函数，不修改任何状态
type Model struct {
	p Params
}

// New 创建占用模型
func New(p Params) *Model {
	if p.RoadWidth <= 0 {
		log.Panicf("road width must be positive, got %v", p.RoadWidth)
	}
	return &Model{p: p}
}

func (m *Model) Params() Params {
	return m.p
}

// LaneOffset 车道中心线相对道路中心线的偏移
func (m *Model) LaneOffset() float64 {
	return m.p.RoadWidth / 4
}

// StopMargin 路口前等待车辆车头到路口中心的距离，大于路口占用区的半长
func (m *Model) StopMargin() float64 {
	return m.p.RoadWidth/2 + m.p.TurningRunUp + 2*m.p.Buffer
}

// BodyBox 中心在p、朝向heading的车身矩形
func BodyBox(p geometry.Point, heading entity.Direction, width, length float64) entity.CollisionBox {
	if heading.Vertical() {
		return entity.CollisionBox{X: p.X - width/2, Y: p.Y - length/2, W: width, H: length}
	}
	return entity.CollisionBox{X: p.X - length/2, Y: p.Y - width/2, W: length, H: width}
}

// Body 车辆当前车身
func (m *Model) Body(v entity.IVehicle) entity.CollisionBox {
	return BodyBox(v.Position(), v.Heading(), v.Width(), v.Length())
}

// AreaInStoppingDistance 车身加上前方最小制动距离
func (m *Model) AreaInStoppingDistance(v entity.IVehicle) entity.CollisionBox {
	return m.Body(v).Extend(v.Heading(), m.p.MinStoppingDistance)
}

// AreaBetweenDestination 车头到下一路段端点（扣除停车余量）之间的车道区域
// 参数：waypointCoord-下一途经点在当前路段轴向上的坐标
func (m *Model) AreaBetweenDestination(v entity.IVehicle, waypointCoord float64) entity.CollisionBox {
	body := m.Body(v)
	h := v.Heading()
	return laneStrip(body, h, body.Edge(h), waypointCoord-h.Sign()*m.StopMargin())
}

// RoadAreaAhead 制动点到当前直行段终点之间的车道区域
// 参数：runEnd-直行段终点的轴向坐标
func (m *Model) RoadAreaAhead(v entity.IVehicle, runEnd float64) entity.CollisionBox {
	body := m.Body(v)
	h := v.Heading()
	return laneStrip(body, h, body.Edge(h)+h.Sign()*m.p.MinStoppingDistance, runEnd)
}

// IntersectionArea 路口占用区
// 功能：返回沿东西向拉长的横穿区与沿南北向拉长的直通区，二者在路口中心重叠
// 参数：x,y-路口中心
func (m *Model) IntersectionArea(x, y float64) (cross, through entity.CollisionBox) {
	long := m.p.RoadWidth/2 + m.p.TurningRunUp + m.p.Buffer
	short := m.p.RoadWidth/2 + m.p.Buffer
	cross = entity.CollisionBox{X: x - long, Y: y - short, W: 2 * long, H: 2 * short}
	through = entity.CollisionBox{X: x - short, Y: y - long, W: 2 * short, H: 2 * long}
	return
}

// LanePosition 在segment上沿heading行驶、轴向坐标为coord时的车辆中心
func (m *Model) LanePosition(seg *road.Segment, coord float64, heading entity.Direction) geometry.Point {
	return seg.LanePoint(coord, heading, m.LaneOffset())
}

// laneStrip body所在车道上轴向区间[from,to]的矩形，区间沿heading为空时长度为0
func laneStrip(body entity.CollisionBox, heading entity.Direction, from, to float64) entity.CollisionBox {
	if (to-from)*heading.Sign() < 0 {
		to = from
	}
	lo, hi := min(from, to), max(from, to)
	if heading.Vertical() {
		return entity.CollisionBox{X: body.X, Y: lo, W: body.W, H: hi - lo}
	}
	return entity.CollisionBox{X: lo, Y: body.Y, W: hi - lo, H: body.H}
}

// RoadStrip 路段上轴向区间[a0,a1]的全宽道路矩形
func (m *Model) RoadStrip(seg *road.Segment, a0, a1 float64) entity.CollisionBox {
	lo, hi := min(a0, a1), max(a0, a1)
	half := m.p.RoadWidth / 2
	if seg.IsVertical() {
		return entity.CollisionBox{X: seg.Center() - half, Y: lo, W: m.p.RoadWidth, H: hi - lo}
	}
	return entity.CollisionBox{X: lo, Y: seg.Center() - half, W: hi - lo, H: m.p.RoadWidth}
}

// spanAlong 矩形在路段轴向上的范围
func spanAlong(seg *road.Segment, b entity.CollisionBox) (float64, float64) {
	if seg.IsVertical() {
		return b.Y, b.Bottom()
	}
	return b.X, b.Right()
}
