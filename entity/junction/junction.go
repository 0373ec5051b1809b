package junction

import (
	"git.fiblab.net/general/common/v2/geometry"
	"github.com/tsinghua-fib-lab/parking-sim/entity"
	"github.com/tsinghua-fib-lab/parking-sim/entity/road"
)

const noHolder int32 = -1

// Intersection 路口
// 功能：一条竖直路段与一条水平路段相交处的命名路口，带有建议性占用标记
// 说明：占用状态只由交通协调器修改
type Intersection struct {
	name  string
	point geometry.Point

	crossArea   entity.CollisionBox // 东西向横穿区
	throughArea entity.CollisionBox // 南北向直通区

	segments []*road.Segment

	holder int32
}

// New 创建路口，cross/through为两个方向的占用区
func New(name string, point geometry.Point, cross, through entity.CollisionBox, segments []*road.Segment) *Intersection {
	return &Intersection{
		name:        name,
		point:       point,
		crossArea:   cross,
		throughArea: through,
		segments:    segments,
		holder:      noHolder,
	}
}

func (j *Intersection) Name() string {
	return j.name
}

func (j *Intersection) Point() geometry.Point {
	return j.point
}

func (j *Intersection) CrossArea() entity.CollisionBox {
	return j.crossArea
}

func (j *Intersection) ThroughArea() entity.CollisionBox {
	return j.throughArea
}

// Areas 两个方向的占用区
func (j *Intersection) Areas() []entity.CollisionBox {
	return []entity.CollisionBox{j.crossArea, j.throughArea}
}

// Segments 以该路口为端点的路段
func (j *Intersection) Segments() []*road.Segment {
	return j.segments
}

func (j *Intersection) Occupied() bool {
	return j.holder != noHolder
}

// Holder 当前占用路口的车辆
func (j *Intersection) Holder() (int32, bool) {
	return j.holder, j.holder != noHolder
}

// Hold 标记为被vehicleID占用
func (j *Intersection) Hold(vehicleID int32) {
	if j.Occupied() && j.holder != vehicleID {
		log.Panicf("intersection %s: held by %d, cannot hold for %d", j.name, j.holder, vehicleID)
	}
	j.holder = vehicleID
}

// Free 清除占用
func (j *Intersection) Free() {
	j.holder = noHolder
}
