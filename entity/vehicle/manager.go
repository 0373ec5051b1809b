package vehicle

import (
	"slices"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/parking-sim/entity"
	"github.com/tsinghua-fib-lab/parking-sim/entity/route"
	"github.com/tsinghua-fib-lab/parking-sim/entity/space"
)

// Stats 车辆累计统计
type Stats struct {
	Spawned       int // 驶入的车辆数
	Parked        int // 完成停车的次数
	Exited        int // 驶出的车辆数
	RouteFailures int // 路径规划失败次数
}

// Manager 车辆管理器
// 功能：维护驶离中、驶入中、停放中三个车辆列表，在入口放行新车，按固定顺序驱动车辆行动
// 说明：每步先处理驶离中车辆，再处理驶入中车辆，最后处理停放车辆；
// 每个列表遍历的是当步开始时的副本，状态迁移立即生效，后处理的车辆能看到先处理车辆的占用
type Manager struct {
	ctx ITaskContext

	leaving  []*Vehicle
	entering []*Vehicle
	parked   []*Vehicle

	schedule *Schedule
	gate     []int32 // 已到达、在入口排队的车辆的到达步
	nextID   int32

	stats Stats
}

// NewManager 创建车辆管理器
func NewManager(ctx ITaskContext, schedule *Schedule) *Manager {
	return &Manager{
		ctx:      ctx,
		leaving:  make([]*Vehicle, 0),
		entering: make([]*Vehicle, 0),
		parked:   make([]*Vehicle, 0),
		schedule: schedule,
		gate:     make([]int32, 0),
		nextID:   1,
	}
}

// ActiveVehicles 驶入中与驶离中的车辆
func (m *Manager) ActiveVehicles() []entity.IVehicle {
	res := make([]entity.IVehicle, 0, len(m.leaving)+len(m.entering))
	for _, v := range m.leaving {
		res = append(res, v)
	}
	for _, v := range m.entering {
		res = append(res, v)
	}
	return res
}

// Vehicles 场内全部车辆，按驶离中、驶入中、停放中排列
func (m *Manager) Vehicles() []*Vehicle {
	return slices.Concat(m.leaving, m.entering, m.parked)
}

func (m *Manager) Leaving() []*Vehicle {
	return m.leaving
}

func (m *Manager) Entering() []*Vehicle {
	return m.entering
}

func (m *Manager) Parked() []*Vehicle {
	return m.parked
}

// GateQueue 在入口排队等待驶入的车辆数
func (m *Manager) GateQueue() int {
	return len(m.gate)
}

// Pending 尚未到达的车辆数
func (m *Manager) Pending() int {
	return m.schedule.Len()
}

func (m *Manager) Stats() Stats {
	return m.stats
}

// Waiting 上一步因前方被占用而停下的车辆数
func (m *Manager) Waiting() int {
	return lo.CountBy(m.Vehicles(), func(v *Vehicle) bool { return v.waiting })
}

// Prepare 将到期的到达加入入口队列，并在入口空闲时放行一辆车
func (m *Manager) Prepare() {
	step := m.ctx.Clock().InternalStep
	m.gate = append(m.gate, m.schedule.Due(step)...)
	if len(m.gate) == 0 {
		return
	}
	if !m.ctx.Coordinator().EntranceClear() {
		return
	}
	sp := m.chooseSpace()
	if sp == nil {
		return
	}
	arrival := m.gate[0]
	m.gate = m.gate[1:]
	m.spawn(sp, arrival)
}

// chooseSpace 按配置的策略选取空闲车位，没有空闲车位时返回nil
func (m *Manager) chooseSpace() *space.Space {
	free := m.ctx.Network().Spaces().Free()
	if len(free) == 0 {
		return nil
	}
	if m.ctx.RuntimeConfig().All.Traffic.SpacePolicy == "first" {
		return free[0]
	}
	return free[m.ctx.Rand().Pick(len(free))]
}

// spawn 在入口生成一辆驶向sp的车辆
// 说明：路径规划失败时丢弃该车辆并记录日志
func (m *Manager) spawn(sp *space.Space, arrival int32) {
	network := m.ctx.Network()
	length := m.ctx.RuntimeConfig().All.Vehicle.Length
	entrance := network.Entrance()
	_, end := entrance.Gate()
	heading := end.Opposite()
	coord := entrance.TerminalCoord(end) - end.Sign()*length/2

	r, err := m.ctx.Planner().CreateRoute(
		route.Position{Segment: entrance, Coord: coord, Direction: heading},
		route.Position{Segment: sp.Segment(), Coord: sp.Coord()},
	)
	if err != nil {
		log.Errorf("drop vehicle arriving at step %d: %v", arrival, err)
		m.stats.RouteFailures++
		return
	}
	id := m.nextID
	m.nextID++
	if err := network.Spaces().Assign(sp, id); err != nil {
		log.Panicf("assign free space: %v", err)
	}
	position := m.ctx.Occupancy().LanePosition(entrance, coord, heading)
	v := newVehicle(m.ctx, id, sp, position, heading, r, arrival)
	m.entering = append(m.entering, v)
	m.stats.Spawned++
	log.Debugf("vehicle %d enters for space %d via %v", id, sp.ID(), r.Segments())
}

// Update 按驶离中、驶入中、停放中的顺序驱动车辆行动一步
func (m *Manager) Update(dt float64) {
	for _, v := range slices.Clone(m.leaving) {
		m.act(v, dt)
	}
	for _, v := range slices.Clone(m.entering) {
		m.act(v, dt)
	}
	for _, v := range slices.Clone(m.parked) {
		m.act(v, dt)
	}
}

func (m *Manager) act(v *Vehicle, dt float64) {
	coordinator := m.ctx.Coordinator()
	switch v.update(dt) {
	case toParked:
		m.entering = remove(m.entering, v)
		m.parked = append(m.parked, v)
		m.stats.Parked++
	case toLeaving:
		m.parked = remove(m.parked, v)
		m.leaving = append(m.leaving, v)
	case routeFailed:
		m.stats.RouteFailures++
	case removed:
		coordinator.ReleaseAll(v)
		m.leaving = remove(m.leaving, v)
		v.visit.ExitStep = m.ctx.Clock().InternalStep
		m.ctx.Recorder().Record(v.visit)
		m.stats.Exited++
		log.Debugf("vehicle %d exits", v.id)
		return
	}
	coordinator.Refresh(v)
}

func remove(vs []*Vehicle, v *Vehicle) []*Vehicle {
	return slices.DeleteFunc(vs, func(x *Vehicle) bool { return x == v })
}
