package route

import (
	"fmt"

	"git.fiblab.net/general/common/v2/mathutil"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/parking-sim/entity"
	"github.com/tsinghua-fib-lab/parking-sim/entity/road"
)

// Planner 停车场路径规划器
// 功能：在注入的路网上枚举起终点路段之间的路段序列，选出最短者并标注行驶方向与转向
type Planner struct {
	network SegmentGetter
}

// New 创建路径规划器
func New(network SegmentGetter) *Planner {
	return &Planner{network: network}
}

// CreateRoute 规划一条完整路径
// 功能：搜索、筛选、选择并标注路径
// 参数：start-出发位置，dest-目的位置
// 返回：标注好的路径；不存在路径时返回ErrRouteNotFound
// 算法说明：
// 1. 深度优先枚举全部候选路段序列
// 2. 只保留路段数最少的候选
// 3. 取搜索顺序中的第一条
// 4. 标注每个路段的行驶方向与转入时的转向
func (p *Planner) CreateRoute(start, dest Position) (Route, error) {
	if start.Segment == nil || dest.Segment == nil {
		return nil, fmt.Errorf("route: start and destination segments must be set")
	}
	candidates := CullBadRoutes(p.FindRoutes(start.Segment, dest.Segment))
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: %s -> %s", ErrRouteNotFound, start.Segment.Name(), dest.Segment.Name())
	}
	segments := chooseRoute(candidates)
	r := determineSectionDirections(segments, start, dest)
	determineSectionTurns(r)
	log.Debugf("route %s -> %s: %v", start.Segment.Name(), dest.Segment.Name(), segments)
	return r, nil
}

// FindRoutes 枚举start到goal的全部候选路段序列（筛选前，按搜索顺序）
func (p *Planner) FindRoutes(start, goal *road.Segment) [][]*road.Segment {
	routes := make([][]*road.Segment, 0)
	p.findValidRoutesBySections(start, goal, nil, &routes)
	return routes
}

// findValidRoutesBySections 目标导向的深度优先搜索
// 说明：每个分支复制一份已走路径再继续，路径中已有的路段不再进入；
// 同时出现转弯与直行两个分支且与目标行差小于2时只保留转弯分支
func (p *Planner) findValidRoutesBySections(current, goal *road.Segment, partial []*road.Segment, routes *[][]*road.Segment) {
	path := make([]*road.Segment, len(partial), len(partial)+1)
	copy(path, partial)
	path = append(path, current)
	if current == goal {
		*routes = append(*routes, path)
		return
	}
	rowDiff := goal.Row() - current.Row()
	colDiff := goal.Col() - current.Col()
	branches := NewBranchEnumerator(p.network, rowDiff, colDiff).Branches(current)
	if len(branches) == 2 && mathutil.Abs(rowDiff) < 2 {
		branches = branches[:1]
	}
	for _, next := range branches {
		if lo.Contains(path, next) {
			continue
		}
		p.findValidRoutesBySections(next, goal, path, routes)
	}
}

// CullBadRoutes 只保留路段数最少的候选，保持原有顺序
// 算法说明：逐条扫描，遇到更短的候选即收紧阈值并从头重新扫描，直到一整轮扫描没有更短者
func CullBadRoutes(routes [][]*road.Segment) [][]*road.Segment {
	if len(routes) == 0 {
		return nil
	}
	shortest := len(routes[0])
	for restart := true; restart; {
		restart = false
		for _, r := range routes {
			if len(r) < shortest {
				shortest = len(r)
				restart = true
				break
			}
		}
	}
	return lo.Filter(routes, func(r []*road.Segment, _ int) bool {
		return len(r) == shortest
	})
}

// chooseRoute 并列最短时取搜索顺序中的第一条
func chooseRoute(candidates [][]*road.Segment) []*road.Segment {
	return candidates[0]
}

// travelDirection 在cur上行驶、驶向next时的方向
func travelDirection(cur, next *road.Segment) entity.Direction {
	if !cur.IsVertical() {
		if next.Col() > cur.Col() {
			return entity.East
		}
		return entity.West
	}
	if next.IsVertical() {
		if next.Row() <= cur.Row() {
			return entity.North
		}
		return entity.South
	}
	// 水平连接段的行号等于其北侧竖直路段的行号
	if next.Row() < cur.Row() {
		return entity.North
	}
	return entity.South
}

// arrivalDirection 从prev驶入last后在last上的行驶方向
func arrivalDirection(prev, last *road.Segment) entity.Direction {
	if !last.IsVertical() {
		if last.Col() > prev.Col() {
			return entity.East
		}
		return entity.West
	}
	if prev.IsVertical() {
		if last.Row() < prev.Row() {
			return entity.North
		}
		return entity.South
	}
	if last.Row() <= prev.Row() {
		return entity.North
	}
	return entity.South
}

// determineSectionDirections 标注每个路段的行驶方向与坐标
func determineSectionDirections(segments []*road.Segment, start, dest Position) Route {
	n := len(segments)
	r := make(Route, n)
	for i, s := range segments {
		r[i].Segment = s
		switch {
		case i+1 < n:
			r[i].Direction = travelDirection(s, segments[i+1])
			r[i].Coord = s.TerminalCoord(r[i].Direction)
		case n > 1:
			r[i].Direction = arrivalDirection(segments[i-1], s)
		case dest.Coord >= start.Coord:
			if s.IsVertical() {
				r[i].Direction = entity.South
			} else {
				r[i].Direction = entity.East
			}
		default:
			if s.IsVertical() {
				r[i].Direction = entity.North
			} else {
				r[i].Direction = entity.West
			}
		}
	}
	r[0].Coord = start.Coord
	if start.Direction != entity.DirectionNone {
		r[0].Direction = start.Direction
	}
	r[n-1].Coord = dest.Coord
	return r
}

// determineSectionTurns 标注转入每个路段的转向
func determineSectionTurns(r Route) {
	r[0].Turn = entity.TurnNone
	for i := 1; i < len(r); i++ {
		r[i].Turn = turnBetween(r[i-1].Direction, r[i].Direction)
	}
}

var leftTurns = map[entity.Direction]entity.Direction{
	entity.North: entity.West,
	entity.South: entity.East,
	entity.East:  entity.North,
	entity.West:  entity.South,
}

// turnBetween 行驶方向由from变为to的转向
func turnBetween(from, to entity.Direction) entity.Turn {
	if from.Vertical() == to.Vertical() {
		return entity.TurnNone
	}
	if leftTurns[from] == to {
		return entity.TurnLeft
	}
	return entity.TurnRight
}
