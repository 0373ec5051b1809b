package space

import (
	"git.fiblab.net/general/common/v2/geometry"
	"github.com/tsinghua-fib-lab/parking-sim/entity"
	"github.com/tsinghua-fib-lab/parking-sim/entity/road"
)

// Kind 车位形式
type Kind int

const (
	Perpendicular Kind = iota // 垂直车位，车头朝向车位所在一侧
	Parallel                  // 平行车位，车身与道路平行
)

func (k Kind) String() string {
	if k == Parallel {
		return "parallel"
	}
	return "perpendicular"
}

const noVehicle int32 = -1

// Space 停车位
// 功能：挂靠在某条路段一侧的矩形车位
// 说明：box为车位矩形，coord为车位中心在路段轴向上的坐标，也是车辆停车前的目标坐标
type Space struct {
	id      int32
	segment *road.Segment
	side    entity.Direction
	box     entity.CollisionBox
	kind    Kind

	vehicle int32
}

// New 创建车位
func New(id int32, segment *road.Segment, side entity.Direction, box entity.CollisionBox, kind Kind) *Space {
	if side.Vertical() == segment.IsVertical() {
		log.Panicf("space %d: side %v is not beside segment %s", id, side, segment.Name())
	}
	return &Space{
		id:      id,
		segment: segment,
		side:    side,
		box:     box,
		kind:    kind,
		vehicle: noVehicle,
	}
}

func (s *Space) ID() int32 {
	return s.id
}

func (s *Space) Segment() *road.Segment {
	return s.segment
}

// Side 车位位于道路的哪一侧
func (s *Space) Side() entity.Direction {
	return s.side
}

func (s *Space) Box() entity.CollisionBox {
	return s.box
}

func (s *Space) Kind() Kind {
	return s.kind
}

// Coord 车位中心在路段轴向上的坐标
func (s *Space) Coord() float64 {
	return s.segment.Along(s.Center())
}

// Center 车位中心点
func (s *Space) Center() geometry.Point {
	return geometry.Point{X: s.box.X + s.box.W/2, Y: s.box.Y + s.box.H/2}
}

// ParkedHeading 停好后车头朝向
func (s *Space) ParkedHeading(approach entity.Direction) entity.Direction {
	if s.kind == Parallel {
		return approach
	}
	return s.side
}

// Vehicle 占用该车位的车辆ID
func (s *Space) Vehicle() (int32, bool) {
	return s.vehicle, s.vehicle != noVehicle
}

func (s *Space) Free() bool {
	return s.vehicle == noVehicle
}
