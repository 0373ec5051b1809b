package monitor

import (
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/parking-sim/entity"
	"github.com/tsinghua-fib-lab/parking-sim/entity/junction"
	"github.com/tsinghua-fib-lab/parking-sim/entity/lot"
	"github.com/tsinghua-fib-lab/parking-sim/entity/occupancy"
	"github.com/tsinghua-fib-lab/parking-sim/entity/route"
	"github.com/tsinghua-fib-lab/parking-sim/entity/vehicle"
	"google.golang.org/protobuf/types/known/structpb"
)

// BuildSnapshot 生成停车场只读快照
// 功能：汇总车辆位置、占用区、路径与路口占用，供展示层使用
// 说明：行驶中且下一途经点不是终点的车辆附带其到下一路口停车点之间的区域
func BuildSnapshot(step int32, t float64, network *lot.Network, model *occupancy.Model, vehicles *vehicle.Manager) (*structpb.Struct, error) {
	stats := vehicles.Stats()
	return structpb.NewStruct(map[string]any{
		"step": float64(step),
		"t":    t,
		"counters": map[string]any{
			"spawned":        float64(stats.Spawned),
			"parked":         float64(stats.Parked),
			"exited":         float64(stats.Exited),
			"route_failures": float64(stats.RouteFailures),
			"gate_queue":     float64(vehicles.GateQueue()),
			"pending":        float64(vehicles.Pending()),
		},
		"spaces": map[string]any{
			"total":    float64(network.Spaces().Len()),
			"occupied": float64(network.Spaces().Occupied()),
		},
		"vehicles": lo.Map(vehicles.Vehicles(), func(v *vehicle.Vehicle, _ int) any {
			return vehicleValue(v, model)
		}),
		"intersections": lo.Map(network.Intersections(), func(j *junction.Intersection, _ int) any {
			return intersectionValue(j)
		}),
	})
}

func vehicleValue(v *vehicle.Vehicle, model *occupancy.Model) map[string]any {
	res := map[string]any{
		"id":      float64(v.ID()),
		"status":  v.Status().String(),
		"x":       v.Position().X,
		"y":       v.Position().Y,
		"heading": v.Heading().String(),
		"space":   float64(v.Space().ID()),
		"waiting": v.Waiting(),
		"boxes": lo.Map(v.CollisionBoxes(), func(b entity.CollisionBox, _ int) any {
			return boxValue(b)
		}),
		"route": lo.Map(v.Route(), func(wp route.Waypoint, _ int) any {
			return map[string]any{
				"segment":   wp.Segment.Name(),
				"direction": wp.Direction.String(),
				"coord":     wp.Coord,
				"turn":      wp.Turn.String(),
			}
		}),
	}
	if mn := v.Maneuver(); mn != nil {
		res["maneuver"] = mn.Kind().String()
	}
	status := v.Status()
	r, i := v.Route(), v.RouteIndex()
	if (status == entity.StatusApproaching || status == entity.StatusLeaving) && i+1 < len(r) {
		wp := r[i]
		res["area_between_destination"] = boxValue(model.AreaBetweenDestination(v, wp.Segment.TerminalCoord(wp.Direction)))
	}
	return res
}

func intersectionValue(j *junction.Intersection) map[string]any {
	res := map[string]any{
		"name":     j.Name(),
		"x":        j.Point().X,
		"y":        j.Point().Y,
		"occupied": j.Occupied(),
	}
	if holder, ok := j.Holder(); ok {
		res["holder"] = float64(holder)
	}
	return res
}

func boxValue(b entity.CollisionBox) map[string]any {
	return map[string]any{"x": b.X, "y": b.Y, "w": b.W, "h": b.H}
}
