package occupancy

import (
	"git.fiblab.net/general/common/v2/geometry"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/parking-sim/entity"
	"github.com/tsinghua-fib-lab/parking-sim/entity/road"
	"github.com/tsinghua-fib-lab/parking-sim/entity/route"
	"github.com/tsinghua-fib-lab/parking-sim/entity/space"
)

// Kind 机动类型
type Kind int

const (
	KindRightAngleTurn Kind = iota
	KindRightAnglePark
	KindZPark
	KindUPark
	KindRightAngleReverse
	KindZReverse
)

func (k Kind) String() string {
	switch k {
	case KindRightAngleTurn:
		return "right-angle-turn"
	case KindRightAnglePark:
		return "right-angle-park"
	case KindZPark:
		return "z-park"
	case KindUPark:
		return "u-park"
	case KindRightAngleReverse:
		return "right-angle-reverse"
	case KindZReverse:
		return "z-reverse"
	default:
		return "unknown"
	}
}

// Maneuver 封闭的机动类型集合，每种类型携带自己的几何参数
type Maneuver interface {
	Kind() Kind
	maneuver()
}

// RightAngleTurn 路口直角转弯
type RightAngleTurn struct {
	Current route.Waypoint // 转弯前所在路段
	Next    route.Waypoint // 转入的路段
}

// RightAnglePark 右侧垂直车位直接驶入
type RightAnglePark struct {
	Space *space.Space
}

// ZPark 平行车位侧移驶入
type ZPark struct {
	Space *space.Space
}

// UPark 对侧垂直车位，需横穿对向车道绕行驶入
type UPark struct {
	Space *space.Space
}

// RightAngleReverse 垂直车位倒出
type RightAngleReverse struct {
	Space *space.Space
	Leave entity.Direction // 倒出后的行驶方向
}

// ZReverse 平行车位倒车后驶出
type ZReverse struct {
	Space *space.Space
	Leave entity.Direction
}

func (RightAngleTurn) Kind() Kind    { return KindRightAngleTurn }
func (RightAnglePark) Kind() Kind    { return KindRightAnglePark }
func (ZPark) Kind() Kind             { return KindZPark }
func (UPark) Kind() Kind             { return KindUPark }
func (RightAngleReverse) Kind() Kind { return KindRightAngleReverse }
func (ZReverse) Kind() Kind          { return KindZReverse }

func (RightAngleTurn) maneuver()    {}
func (RightAnglePark) maneuver()    {}
func (ZPark) maneuver()             {}
func (UPark) maneuver()             {}
func (RightAngleReverse) maneuver() {}
func (ZReverse) maneuver()          {}

// ParkManeuver 以heading驶近车位时的停车机动
func ParkManeuver(sp *space.Space, heading entity.Direction) Maneuver {
	switch {
	case sp.Kind() == space.Parallel:
		return ZPark{Space: sp}
	case sp.Side() == heading.Right():
		return RightAnglePark{Space: sp}
	default:
		return UPark{Space: sp}
	}
}

// ReverseManeuver 离开车位后沿leave行驶时的倒车机动
func ReverseManeuver(sp *space.Space, leave entity.Direction) Maneuver {
	if sp.Kind() == space.Parallel {
		return ZReverse{Space: sp, Leave: leave}
	}
	return RightAngleReverse{Space: sp, Leave: leave}
}

// ManeuverAreas 机动所需的全部占用区域
func (m *Model) ManeuverAreas(v entity.IVehicle, mn Maneuver) []entity.CollisionBox {
	switch x := mn.(type) {
	case RightAngleTurn:
		return m.RightAngleTurnArea(v, x.Current, x.Next)
	case RightAnglePark:
		return []entity.CollisionBox{m.RightAngleParkArea(v, x.Space)}
	case ZPark:
		return []entity.CollisionBox{m.ZParkArea(v, x.Space)}
	case UPark:
		return []entity.CollisionBox{m.UParkArea(v, x.Space)}
	case RightAngleReverse:
		return []entity.CollisionBox{m.RightAngleReverseArea(v, x.Space, x.Leave)}
	case ZReverse:
		return m.ZReverseArea(v, x.Space, x.Leave)
	default:
		log.Panicf("unknown maneuver %T", mn)
		return nil
	}
}

func requireStatus(v entity.IVehicle, k Kind, allowed ...entity.Status) {
	if !lo.Contains(allowed, v.Status()) {
		log.Panicf("vehicle %d: %v area requested in status %v", v.ID(), k, v.Status())
	}
}

// TurnExitPosition 转弯结束时车辆在next路段上的中心
// 说明：车尾恰好离开路口所在的道路范围
func (m *Model) TurnExitPosition(cur, next route.Waypoint, length float64) geometry.Point {
	c := road.Crossing(cur.Segment, next.Segment)
	nd := next.Direction
	along := next.Segment.Along(c) + nd.Sign()*(m.p.RoadWidth/2+length/2)
	return m.LanePosition(next.Segment, along, nd)
}

// RightAngleTurnArea 直角转弯占用区
// 返回：两个矩形，其一为车身沿原方向延伸穿过路口，其二为转弯后车身向后延伸回路口
func (m *Model) RightAngleTurnArea(v entity.IVehicle, cur, next route.Waypoint) []entity.CollisionBox {
	requireStatus(v, KindRightAngleTurn, entity.StatusApproaching, entity.StatusLeaving, entity.StatusTurning)
	half := m.p.RoadWidth / 2
	c := road.Crossing(cur.Segment, next.Segment)

	body := m.Body(v)
	h := v.Heading()
	farEdge := cur.Segment.Along(c) + h.Sign()*half
	approach := body.Extend(h, (farEdge-body.Edge(h))*h.Sign())

	nd := next.Direction
	final := BodyBox(m.TurnExitPosition(cur, next, v.Length()), nd, v.Width(), v.Length())
	nearEdge := next.Segment.Along(c) - nd.Sign()*half
	exit := final.Extend(nd.Opposite(), (final.Edge(nd.Opposite())-nearEdge)*nd.Sign())

	return []entity.CollisionBox{approach.Pad(m.p.Buffer), exit.Pad(m.p.Buffer)}
}

// RightAngleParkArea 垂直车位驶入占用区：车身与车位的并集，向前多留一个车宽用于车头摆动
func (m *Model) RightAngleParkArea(v entity.IVehicle, sp *space.Space) entity.CollisionBox {
	requireStatus(v, KindRightAnglePark, entity.StatusApproaching, entity.StatusParking)
	return entity.Union(m.Body(v), sp.Box()).Extend(v.Heading(), v.Width()).Pad(m.p.Buffer)
}

// ZParkArea 平行车位驶入占用区：前后各留半个车长
func (m *Model) ZParkArea(v entity.IVehicle, sp *space.Space) entity.CollisionBox {
	requireStatus(v, KindZPark, entity.StatusApproaching, entity.StatusParking)
	h := v.Heading()
	return entity.Union(m.Body(v), sp.Box()).
		Extend(h, v.Length()/2).
		Extend(h.Opposite(), v.Length()/2).
		Pad(m.p.Buffer)
}

// ZParkHoldBack 驶向平行车位途中车后需空出的本车道区域
// 功能：从车尾向后延伸到在车位处执行Z形停车时占用区的后缘，尚未进入该范围时长度为0
// 说明：跟随车辆停在此区域之外，到达车位后停车占用区不会被后车压住
func (m *Model) ZParkHoldBack(v entity.IVehicle, sp *space.Space) entity.CollisionBox {
	requireStatus(v, KindZPark, entity.StatusApproaching)
	h := v.Heading()
	back := h.Opposite()
	rear := sp.Box().Edge(back)
	if parked := sp.Coord() - h.Sign()*v.Length()/2; (parked-rear)*h.Sign() < 0 {
		rear = parked
	}
	end := rear - h.Sign()*(v.Length()/2+m.p.Buffer)
	body := m.Body(v)
	return laneStrip(body, back, body.Edge(back), end)
}

// UParkArea 对侧车位驶入占用区：向前留一个车长，并向远离车位一侧外扩半个车宽
func (m *Model) UParkArea(v entity.IVehicle, sp *space.Space) entity.CollisionBox {
	requireStatus(v, KindUPark, entity.StatusApproaching, entity.StatusParking)
	return entity.Union(m.Body(v), sp.Box()).
		Extend(v.Heading(), v.Length()).
		Extend(sp.Side().Opposite(), v.Width()/2).
		Pad(m.p.Buffer)
}

// RightAngleReverseArea 垂直车位倒出占用区：车位加上旁边的全宽道路，逆离开方向延伸一个车长
func (m *Model) RightAngleReverseArea(v entity.IVehicle, sp *space.Space, leave entity.Direction) entity.CollisionBox {
	requireStatus(v, KindRightAngleReverse, entity.StatusParked, entity.StatusReversing)
	seg := sp.Segment()
	a0, a1 := spanAlong(seg, sp.Box())
	if leave.Sign() > 0 {
		a0 -= v.Length()
	} else {
		a1 += v.Length()
	}
	return entity.Union(sp.Box(), m.RoadStrip(seg, a0, a1)).Pad(m.p.Buffer)
}

// ZReverseArea 平行车位驶出占用区
// 返回：两个矩形，其一为车位旁的倒车区，其二为离开方向车道上更远处的制动区
func (m *Model) ZReverseArea(v entity.IVehicle, sp *space.Space, leave entity.Direction) []entity.CollisionBox {
	requireStatus(v, KindZReverse, entity.StatusParked, entity.StatusReversing)
	seg := sp.Segment()
	a0, a1 := spanAlong(seg, sp.Box())
	if leave.Sign() > 0 {
		a0 -= v.Length() / 2
	} else {
		a1 += v.Length() / 2
	}
	backing := entity.Union(sp.Box(), m.RoadStrip(seg, a0, a1)).Pad(m.p.Buffer)

	start := backing.Edge(leave)
	end := start + leave.Sign()*(v.Length()+m.p.MinStoppingDistance)
	lane := BodyBox(m.LanePosition(seg, start, leave), leave, v.Width(), v.Length())
	stopping := laneStrip(lane, leave, start, end)
	return []entity.CollisionBox{backing, stopping}
}
