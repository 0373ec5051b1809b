package traffic

import (
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/parking-sim/entity"
	"github.com/tsinghua-fib-lab/parking-sim/entity/junction"
)

// ReleaseMode 路口占用的释放条件
type ReleaseMode int

const (
	ReleaseWhenPassed ReleaseMode = iota // 车辆占用区驶离路口后释放
	ReleaseWhenParked                    // 车辆停好后释放
)

func (m ReleaseMode) String() string {
	if m == ReleaseWhenParked {
		return "when-parked"
	}
	return "when-passed"
}

// INetwork 交通协调器所需的路网视图
type INetwork interface {
	Intersections() []*junction.Intersection
	EntranceZone() entity.CollisionBox
}

type reservation struct {
	intersection *junction.Intersection
	mode         ReleaseMode
	entered      bool // 车辆占用区是否已与路口重叠过
}

// Coordinator 交通协调器
// 功能：依据占用区判断车辆能否前进，管理路口占用的建立与释放，控制入口放行
// 说明：所有方法只在模拟主循环中调用；释放由Refresh在每辆车行动后同步触发
type Coordinator struct {
	network  INetwork
	vehicles entity.IVehicleSource

	held map[int32][]*reservation // 车辆ID -> 其持有的路口
}

// New 创建交通协调器
func New(network INetwork, vehicles entity.IVehicleSource) *Coordinator {
	return &Coordinator{
		network:  network,
		vehicles: vehicles,
		held:     make(map[int32][]*reservation),
	}
}

// RectanglesOverlap 轴对齐矩形重叠判断，仅共享边界不算重叠
func RectanglesOverlap(a, b entity.CollisionBox) bool {
	return a.X < b.X+b.W && a.X+a.W > b.X && a.Y < b.Y+b.H && a.Y+a.H > b.Y
}

func anyOverlap(boxes []entity.CollisionBox, others []entity.CollisionBox) bool {
	for _, a := range boxes {
		for _, b := range others {
			if RectanglesOverlap(a, b) {
				return true
			}
		}
	}
	return false
}

// VehiclesInArea 任一占用区与area重叠的活动车辆
// 参数：area-查询区域，excluding-排除的车辆（通常为自身）
func (c *Coordinator) VehiclesInArea(area entity.CollisionBox, excluding ...entity.IVehicle) []entity.IVehicle {
	excluded := lo.Map(excluding, func(v entity.IVehicle, _ int) int32 { return v.ID() })
	res := make([]entity.IVehicle, 0)
	for _, v := range c.vehicles.ActiveVehicles() {
		if lo.Contains(excluded, v.ID()) {
			continue
		}
		if anyOverlap(v.CollisionBoxes(), []entity.CollisionBox{area}) {
			res = append(res, v)
		}
	}
	return res
}

// IntersectionsInAreas 与任一区域重叠的路口
func (c *Coordinator) IntersectionsInAreas(areas []entity.CollisionBox) []*junction.Intersection {
	return lo.Filter(c.network.Intersections(), func(j *junction.Intersection, _ int) bool {
		return anyOverlap(j.Areas(), areas)
	})
}

// ManeuverAreaClear 机动区域是否可用
// 返回：没有其他车辆位于任一区域内且所涉及的路口都未被其他车辆占用时为true
func (c *Coordinator) ManeuverAreaClear(v entity.IVehicle, areas []entity.CollisionBox) bool {
	for _, area := range areas {
		if others := c.VehiclesInArea(area, v); len(others) > 0 {
			log.Tracef("vehicle %d: area %+v blocked by vehicle %d", v.ID(), area, others[0].ID())
			return false
		}
	}
	for _, j := range c.IntersectionsInAreas(areas) {
		if !c.IntersectionAvailable(v, j) {
			holder, _ := j.Holder()
			log.Tracef("vehicle %d: intersection %s held by vehicle %d", v.ID(), j.Name(), holder)
			return false
		}
	}
	return true
}

// IntersectionAvailable 路口未被其他车辆占用，j为nil时为true
func (c *Coordinator) IntersectionAvailable(v entity.IVehicle, j *junction.Intersection) bool {
	if j == nil {
		return true
	}
	holder, ok := j.Holder()
	return !ok || holder == v.ID()
}

// BlockIntersection 由车辆占用路口
// 说明：停车中的车辆在停好后释放，其余车辆在驶离路口后释放；
// 重复占用时只会把驶离型升级为停好型
func (c *Coordinator) BlockIntersection(v entity.IVehicle, j *junction.Intersection) {
	mode := ReleaseWhenPassed
	if v.Status() == entity.StatusParking {
		mode = ReleaseWhenParked
	}
	if r, ok := lo.Find(c.held[v.ID()], func(r *reservation) bool { return r.intersection == j }); ok {
		if mode == ReleaseWhenParked {
			r.mode = ReleaseWhenParked
		}
		return
	}
	j.Hold(v.ID())
	c.held[v.ID()] = append(c.held[v.ID()], &reservation{intersection: j, mode: mode})
	log.Debugf("vehicle %d holds %s (release %v)", v.ID(), j.Name(), mode)
}

// BlockIntersections 占用与区域重叠的全部路口
func (c *Coordinator) BlockIntersections(v entity.IVehicle, areas []entity.CollisionBox) {
	for _, j := range c.IntersectionsInAreas(areas) {
		c.BlockIntersection(v, j)
	}
}

// Held 车辆当前持有的路口
func (c *Coordinator) Held(v entity.IVehicle) []*junction.Intersection {
	return lo.Map(c.held[v.ID()], func(r *reservation, _ int) *junction.Intersection { return r.intersection })
}

// Refresh 车辆行动后检查其持有的路口是否满足释放条件
// 算法说明：
// 1. 停好后释放全部路口
// 2. 驶离型占用：占用区曾与路口重叠且现已不重叠，或车辆开始停车时释放
func (c *Coordinator) Refresh(v entity.IVehicle) {
	rs, ok := c.held[v.ID()]
	if !ok {
		return
	}
	status := v.Status()
	boxes := v.CollisionBoxes()
	kept := rs[:0]
	for _, r := range rs {
		release := false
		switch r.mode {
		case ReleaseWhenParked:
			release = status == entity.StatusParked
		case ReleaseWhenPassed:
			if status == entity.StatusParking || status == entity.StatusParked {
				release = true
				break
			}
			overlap := anyOverlap(boxes, r.intersection.Areas())
			if overlap {
				r.entered = true
			}
			release = r.entered && !overlap
		}
		if release {
			r.intersection.Free()
			log.Debugf("vehicle %d releases %s", v.ID(), r.intersection.Name())
		} else {
			kept = append(kept, r)
		}
	}
	if len(kept) == 0 {
		delete(c.held, v.ID())
	} else {
		c.held[v.ID()] = kept
	}
}

// ReleaseAll 释放车辆持有的全部路口
func (c *Coordinator) ReleaseAll(v entity.IVehicle) {
	for _, r := range c.held[v.ID()] {
		r.intersection.Free()
	}
	delete(c.held, v.ID())
}

// EntranceClear 入口区内没有活动车辆
func (c *Coordinator) EntranceClear() bool {
	return len(c.VehiclesInArea(c.network.EntranceZone())) == 0
}
