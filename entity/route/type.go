package route

import (
	"errors"

	"github.com/tsinghua-fib-lab/parking-sim/entity"
	"github.com/tsinghua-fib-lab/parking-sim/entity/road"
)

var (
	// 起点与终点路段之间不存在可行路径
	ErrRouteNotFound = errors.New("route: no route between segments")
)

// SegmentGetter 路网查询接口，不存在时返回nil
type SegmentGetter interface {
	Get(o entity.Orientation, row, col int) *road.Segment
}

// Position 路径规划的起终点描述
// 说明：Direction为零值时由规划器根据路径推导
type Position struct {
	Segment   *road.Segment
	Coord     float64
	Direction entity.Direction
}

// Waypoint 规划结果中的单个路段
type Waypoint struct {
	Segment   *road.Segment
	Direction entity.Direction // 在该路段上的行驶方向
	Coord     float64          // 首路段为出发坐标，末路段为停车坐标，其余为行驶方向上的路段端点
	Turn      entity.Turn      // 从上一路段转入本路段所需转向
}

// Route 从当前位置到目的地的有序路段序列
type Route []Waypoint

// Segments 路径经过的路段
func (r Route) Segments() []*road.Segment {
	res := make([]*road.Segment, len(r))
	for i, wp := range r {
		res[i] = wp.Segment
	}
	return res
}

// Last 是否为最后一个路段
func (r Route) Last(i int) bool {
	return i == len(r)-1
}

// StraightRunLast 自第i个路段起的直行段所含最后一个路段下标
func (r Route) StraightRunLast(i int) int {
	j := i
	for j+1 < len(r) && r[j+1].Turn == entity.TurnNone && r[j+1].Direction == r[i].Direction {
		j++
	}
	return j
}

// StraightRunEnd 自第i个路段起的直行段终点轴向坐标
// 说明：直行段在下一次转向前结束，若延伸到最后一个路段则终点为目的坐标
func (r Route) StraightRunEnd(i int) float64 {
	j := r.StraightRunLast(i)
	if r.Last(j) {
		return r[j].Coord
	}
	return r[j].Segment.TerminalCoord(r[j].Direction)
}
