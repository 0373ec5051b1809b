package vehicle

import (
	"git.fiblab.net/general/common/v2/geometry"
	"github.com/tsinghua-fib-lab/parking-sim/entity"
	"github.com/tsinghua-fib-lab/parking-sim/entity/occupancy"
	"github.com/tsinghua-fib-lab/parking-sim/entity/route"
	"github.com/tsinghua-fib-lab/parking-sim/entity/space"
	"github.com/tsinghua-fib-lab/parking-sim/output"
)

const eps = 1e-6

// transition 车辆一步行动后在管理器列表间的迁移
type transition int

const (
	stay transition = iota
	toParked
	toLeaving
	removed
	routeFailed
)

// Vehicle 停车场内的车辆
// 功能：沿规划路径行驶，在路口前等待放行，执行转弯、停车、倒车机动，停放后驶离
// 说明：状态机为 approaching →(turning→approaching)*→ parking → parked →
// reversing → leaving →(turning→leaving)*→ 驶出；机动期间的占用区缓存在车辆上
type Vehicle struct {
	ctx ITaskContext

	id            int32
	width, length float64
	speed         float64

	position geometry.Point
	heading  entity.Direction
	status   entity.Status
	driving  entity.Status // 行驶阶段的状态，approaching或leaving

	route route.Route
	index int // 当前所在途经点下标
	space *space.Space

	maneuver  occupancy.Maneuver
	areas     []entity.CollisionBox // 机动占用区
	remaining int32                 // 机动剩余步数

	departAt    float64 // 计划开始驶离的时间
	exitPlanned bool
	routeFailed bool
	waiting     bool

	visit output.Visit
}

func newVehicle(ctx ITaskContext, id int32, sp *space.Space, position geometry.Point, heading entity.Direction, r route.Route, arrivalStep int32) *Vehicle {
	c := ctx.RuntimeConfig().All.Vehicle
	return &Vehicle{
		ctx:      ctx,
		id:       id,
		width:    c.Width,
		length:   c.Length,
		speed:    c.Speed,
		position: position,
		heading:  heading,
		status:   entity.StatusApproaching,
		driving:  entity.StatusApproaching,
		route:    r,
		space:    sp,
		visit: output.Visit{
			VehicleID:   id,
			SpaceID:     sp.ID(),
			ArrivalStep: arrivalStep,
			EnterStep:   ctx.Clock().InternalStep,
		},
	}
}

func (v *Vehicle) ID() int32 {
	return v.id
}

func (v *Vehicle) Position() geometry.Point {
	return v.position
}

func (v *Vehicle) Heading() entity.Direction {
	return v.heading
}

func (v *Vehicle) Width() float64 {
	return v.width
}

func (v *Vehicle) Length() float64 {
	return v.length
}

func (v *Vehicle) Status() entity.Status {
	return v.status
}

// CollisionBoxes 车身，机动期间另加机动占用区，驶向平行车位的最后一段另加车后保留区
func (v *Vehicle) CollisionBoxes() []entity.CollisionBox {
	body := occupancy.BodyBox(v.position, v.heading, v.width, v.length)
	boxes := append([]entity.CollisionBox{body}, v.areas...)
	if v.status == entity.StatusApproaching && v.route.Last(v.index) && v.space.Kind() == space.Parallel {
		if hold := v.ctx.Occupancy().ZParkHoldBack(v, v.space); extent(hold, v.heading) > eps {
			boxes = append(boxes, hold)
		}
	}
	return boxes
}

// Route 当前路径，停放期间为空
func (v *Vehicle) Route() route.Route {
	return v.route
}

// RouteIndex 当前所在途经点下标
func (v *Vehicle) RouteIndex() int {
	return v.index
}

func (v *Vehicle) Space() *space.Space {
	return v.space
}

// Maneuver 正在执行的机动，没有时为nil
func (v *Vehicle) Maneuver() occupancy.Maneuver {
	return v.maneuver
}

// Waiting 上一步是否因前方被占用而未能行动
func (v *Vehicle) Waiting() bool {
	return v.waiting
}

// Visit 当前的停车记录
func (v *Vehicle) Visit() output.Visit {
	return v.visit
}

// update 执行一步
func (v *Vehicle) update(dt float64) transition {
	switch v.status {
	case entity.StatusApproaching, entity.StatusLeaving:
		return v.drive(dt)
	case entity.StatusTurning:
		if v.tickManeuver() {
			v.finishTurn()
		}
	case entity.StatusParking:
		if v.tickManeuver() {
			v.finishPark()
			return toParked
		}
	case entity.StatusParked:
		return v.depart()
	case entity.StatusReversing:
		if v.tickManeuver() {
			v.finishReverse()
		}
	}
	return stay
}

// drive 沿当前途经点行驶，到达停车点后尝试下一动作
func (v *Vehicle) drive(dt float64) transition {
	model := v.ctx.Occupancy()
	coordinator := v.ctx.Coordinator()
	wp := v.route[v.index]

	var remaining float64
	if v.route.Last(v.index) {
		remaining = (wp.Coord - wp.Segment.Along(v.position)) * wp.Direction.Sign()
	} else {
		gap := model.AreaBetweenDestination(v, wp.Segment.TerminalCoord(wp.Direction))
		remaining = extent(gap, v.heading)
	}
	if remaining > eps {
		if len(coordinator.VehiclesInArea(model.AreaInStoppingDistance(v), v)) > 0 {
			v.waiting = true
			return stay
		}
		v.waiting = false
		v.advance(min(v.speed*dt, remaining))
		return stay
	}

	switch {
	case v.route.Last(v.index) && v.status == entity.StatusLeaving:
		return removed
	case v.route.Last(v.index):
		v.startPark()
	case v.route[v.index+1].Turn == entity.TurnNone:
		v.crossStraight()
	default:
		v.startTurn()
	}
	return stay
}

func (v *Vehicle) advance(d float64) {
	dx, dy := v.heading.Vector()
	v.position.X += dx * d
	v.position.Y += dy * d
}

// crossStraight 直行通过路口
// 说明：制动区与直行段前方道路都空闲且路口未被他车占用时放行，占用沿途路口；
// 直行段止于转弯路口时前方道路截止到停车点，不包含该路口
func (v *Vehicle) crossStraight() {
	model := v.ctx.Occupancy()
	coordinator := v.ctx.Coordinator()
	runEnd := v.route.StraightRunEnd(v.index)
	if !v.route.Last(v.route.StraightRunLast(v.index)) {
		runEnd -= v.heading.Sign() * model.StopMargin()
	}
	areas := []entity.CollisionBox{
		model.AreaInStoppingDistance(v),
		model.RoadAreaAhead(v, runEnd),
	}
	if !coordinator.ManeuverAreaClear(v, areas) {
		v.waiting = true
		return
	}
	v.waiting = false
	coordinator.BlockIntersections(v, areas)
	v.index++
}

func (v *Vehicle) startManeuver(mn occupancy.Maneuver, status entity.Status, steps int32) bool {
	coordinator := v.ctx.Coordinator()
	areas := v.ctx.Occupancy().ManeuverAreas(v, mn)
	if !coordinator.ManeuverAreaClear(v, areas) {
		v.waiting = true
		return false
	}
	v.waiting = false
	v.status = status
	v.maneuver = mn
	v.areas = areas
	v.remaining = max(steps, 1)
	coordinator.BlockIntersections(v, areas)
	log.Debugf("vehicle %d: start %v", v.id, mn.Kind())
	return true
}

// tickManeuver 机动进行一步，返回机动是否完成
func (v *Vehicle) tickManeuver() bool {
	v.remaining--
	if v.remaining > 0 {
		return false
	}
	v.maneuver = nil
	v.areas = nil
	return true
}

func (v *Vehicle) startTurn() {
	mn := occupancy.RightAngleTurn{Current: v.route[v.index], Next: v.route[v.index+1]}
	v.startManeuver(mn, entity.StatusTurning, v.ctx.RuntimeConfig().All.Vehicle.TurnSteps)
}

func (v *Vehicle) finishTurn() {
	cur, next := v.route[v.index], v.route[v.index+1]
	v.position = v.ctx.Occupancy().TurnExitPosition(cur, next, v.length)
	v.heading = next.Direction
	v.index++
	v.status = v.driving
}

func (v *Vehicle) startPark() {
	mn := occupancy.ParkManeuver(v.space, v.heading)
	v.startManeuver(mn, entity.StatusParking, v.ctx.RuntimeConfig().All.Vehicle.ParkSteps)
}

func (v *Vehicle) finishPark() {
	c := v.ctx.RuntimeConfig().All.Traffic
	v.position = v.space.Center()
	v.heading = v.space.ParkedHeading(v.heading)
	v.status = entity.StatusParked
	v.route = nil
	v.index = 0
	dwell := v.ctx.Rand().Uniform(c.DwellMin, c.DwellMax)
	v.departAt = v.ctx.Clock().T + dwell
	v.visit.ParkStep = v.ctx.Clock().InternalStep
	v.visit.DwellSeconds = dwell
	log.Debugf("vehicle %d parked at space %d for %.1fs", v.id, v.space.ID(), dwell)
}

// depart 停放到期后规划离场路径并尝试倒出
// 说明：规划失败时记录日志并保持停放，不再重试；
// 离场方向上的下一路口被其他车辆占用时继续等待
func (v *Vehicle) depart() transition {
	if v.routeFailed || v.ctx.Clock().T < v.departAt {
		return stay
	}
	if !v.exitPlanned {
		exit := v.ctx.Network().Exit()
		_, end := exit.Gate()
		r, err := v.ctx.Planner().CreateRoute(
			route.Position{Segment: v.space.Segment(), Coord: v.space.Coord()},
			route.Position{Segment: exit, Coord: exit.TerminalCoord(end)},
		)
		if err != nil {
			log.Errorf("vehicle %d at space %d cannot leave: %v", v.id, v.space.ID(), err)
			v.routeFailed = true
			return routeFailed
		}
		v.route = r
		v.index = 0
		v.exitPlanned = true
	}
	leave := v.route[0].Direction
	// 前方路口已被他车占用时，该车已驶入这段车道，倒出会挡在它与路口之间
	next := v.ctx.Network().EndIntersection(v.space.Segment(), leave)
	if !v.ctx.Coordinator().IntersectionAvailable(v, next) {
		v.waiting = true
		return stay
	}
	mn := occupancy.ReverseManeuver(v.space, leave)
	if !v.startManeuver(mn, entity.StatusReversing, v.ctx.RuntimeConfig().All.Vehicle.ReverseSteps) {
		return stay
	}
	v.driving = entity.StatusLeaving
	v.visit.DepartStep = v.ctx.Clock().InternalStep
	return toLeaving
}

func (v *Vehicle) finishReverse() {
	leave := v.route[0].Direction
	v.position = v.ctx.Occupancy().LanePosition(v.space.Segment(), v.space.Coord(), leave)
	v.heading = leave
	v.status = entity.StatusLeaving
	v.ctx.Network().Spaces().Release(v.space)
}

// extent 矩形沿heading方向的长度
func extent(b entity.CollisionBox, heading entity.Direction) float64 {
	if heading.Vertical() {
		return b.H
	}
	return b.W
}
