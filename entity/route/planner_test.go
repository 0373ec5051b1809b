package route_test

import (
	"testing"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/parking-sim/entity"
	"github.com/tsinghua-fib-lab/parking-sim/entity/junction"
	"github.com/tsinghua-fib-lab/parking-sim/entity/lot"
	"github.com/tsinghua-fib-lab/parking-sim/entity/occupancy"
	"github.com/tsinghua-fib-lab/parking-sim/entity/road"
	"github.com/tsinghua-fib-lab/parking-sim/entity/route"
	"github.com/tsinghua-fib-lab/parking-sim/utils/config"
)

// gridNetwork 生成rows×cols的网格路网，竖直路段列号为0,2,4...
func gridNetwork(t *testing.T, rows, cols int) *lot.Network {
	t.Helper()
	c := config.Default()
	c.Lot.Rows, c.Lot.Columns = rows, cols
	c.Lot.EntranceColumn, c.Lot.ExitColumn = 0, cols-1
	layout, err := lot.GridLayout(c.Lot)
	require.NoError(t, err)
	model := occupancy.New(occupancy.Params{RoadWidth: 6, MinStoppingDistance: 1.5, TurningRunUp: 1.5, Buffer: 0.5})
	n, err := lot.NewNetwork(layout, model)
	require.NoError(t, err)
	return n
}

func names(segments []*road.Segment) []string {
	return lo.Map(segments, func(s *road.Segment, _ int) string { return s.Name() })
}

func v(n *lot.Network, row, col int) *road.Segment {
	return n.Get(entity.Vertical, row, col)
}

func h(n *lot.Network, row, col int) *road.Segment {
	return n.Get(entity.Horizontal, row, col)
}

func TestBranches(t *testing.T) {
	n := gridNetwork(t, 3, 2)

	// 竖直路段：先横向后纵向
	b := route.NewBranchEnumerator(n, 2, 2).Branches(v(n, 0, 0))
	assert.Equal(t, []string{"H-0-1", "V-1-0"}, names(b))

	// 水平路段：rowDiff>0时进入下一行
	b = route.NewBranchEnumerator(n, 2, 1).Branches(h(n, 0, 1))
	assert.Equal(t, []string{"V-1-2"}, names(b))

	// 同行且南端没有连接段时改走北端
	b = route.NewBranchEnumerator(n, 0, 2).Branches(v(n, 2, 0))
	assert.Equal(t, []string{"H-1-1"}, names(b))

	// 向北行驶取北端连接段
	b = route.NewBranchEnumerator(n, -1, 2).Branches(v(n, 1, 0))
	assert.Equal(t, []string{"H-0-1", "V-0-0"}, names(b))

	// 没有列差时只有纵向分支，越界则为空
	assert.Equal(t, []string{"V-1-0"}, names(route.NewBranchEnumerator(n, 1, 0).Branches(v(n, 0, 0))))
	assert.Empty(t, route.NewBranchEnumerator(n, 1, 0).Branches(v(n, 2, 0)))
}

func TestFindRoutesEnumeratesInSearchOrder(t *testing.T) {
	n := gridNetwork(t, 3, 2)
	p := route.New(n)

	routes := p.FindRoutes(v(n, 0, 0), v(n, 2, 2))
	require.Len(t, routes, 2)
	assert.Equal(t, []string{"V-0-0", "H-0-1", "V-1-2", "V-2-2"}, names(routes[0]))
	assert.Equal(t, []string{"V-0-0", "V-1-0", "H-1-1", "V-2-2"}, names(routes[1]))

	r, err := p.CreateRoute(
		route.Position{Segment: v(n, 0, 0), Coord: 20},
		route.Position{Segment: v(n, 2, 2), Coord: 80},
	)
	require.NoError(t, err)
	assert.Equal(t, names(routes[0]), names(r.Segments()))
}

// 同行且南端没有横向路段时改走北端横向路段
func TestRowTieLateralFallback(t *testing.T) {
	n := gridNetwork(t, 3, 2)
	r, err := route.New(n).CreateRoute(
		route.Position{Segment: v(n, 2, 0), Coord: 90, Direction: entity.North},
		route.Position{Segment: v(n, 2, 2), Coord: 85},
	)
	require.NoError(t, err)
	require.Equal(t, []string{"V-2-0", "H-1-1", "V-2-2"}, names(r.Segments()))

	assert.Equal(t, []entity.Direction{entity.North, entity.East, entity.South},
		lo.Map(r, func(wp route.Waypoint, _ int) entity.Direction { return wp.Direction }))
	assert.Equal(t, []entity.Turn{entity.TurnNone, entity.TurnRight, entity.TurnRight},
		lo.Map(r, func(wp route.Waypoint, _ int) entity.Turn { return wp.Turn }))

	// 首末途经点为起终点坐标，中间为行驶方向上的路段端点
	assert.Equal(t, 90.0, r[0].Coord)
	assert.Equal(t, h(n, 1, 1).EndCoord(), r[1].Coord)
	assert.Equal(t, 85.0, r[2].Coord)
}

func TestCreateRoutePrefersShortest(t *testing.T) {
	n := gridNetwork(t, 3, 3)
	p := route.New(n)

	candidates := p.FindRoutes(v(n, 2, 0), v(n, 0, 4))
	require.Len(t, candidates, 2)
	assert.Len(t, candidates[1], 6)

	r, err := p.CreateRoute(
		route.Position{Segment: v(n, 2, 0), Coord: 99.75, Direction: entity.North},
		route.Position{Segment: v(n, 0, 4), Coord: 20},
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"V-2-0", "H-1-1", "V-1-2", "H-0-3", "V-0-4"}, names(r.Segments()))
	assert.Equal(t, []entity.Turn{entity.TurnNone, entity.TurnRight, entity.TurnLeft, entity.TurnRight, entity.TurnLeft},
		lo.Map(r, func(wp route.Waypoint, _ int) entity.Turn { return wp.Turn }))

	r, err = p.CreateRoute(
		route.Position{Segment: v(n, 0, 0), Coord: 22},
		route.Position{Segment: v(n, 2, 4), Coord: 102},
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"V-0-0", "H-0-1", "V-1-2", "H-1-3", "V-2-4"}, names(r.Segments()))
	assert.Equal(t, entity.South, r[0].Direction)
	assert.Equal(t, entity.South, r[4].Direction)
}

func TestCreateRouteIsDeterministicAndConnected(t *testing.T) {
	n := gridNetwork(t, 3, 3)
	p := route.New(n)
	verticals := lo.Filter(n.Segments(), func(s *road.Segment, _ int) bool { return s.IsVertical() })

	adjacent := func(a, b *road.Segment) bool {
		return lo.ContainsBy(n.Intersections(), func(j *junction.Intersection) bool {
			return lo.Contains(j.Segments(), a) && lo.Contains(j.Segments(), b)
		})
	}
	for _, from := range verticals {
		for _, to := range verticals {
			start := route.Position{Segment: from, Coord: from.StartCoord() + 10}
			dest := route.Position{Segment: to, Coord: to.StartCoord() + 20}
			r1, err := p.CreateRoute(start, dest)
			require.NoError(t, err, "%s -> %s", from.Name(), to.Name())
			r2, err := p.CreateRoute(start, dest)
			require.NoError(t, err)
			assert.Equal(t, r1, r2)

			assert.Same(t, from, r1[0].Segment)
			assert.Same(t, to, r1[len(r1)-1].Segment)
			for i := 1; i < len(r1); i++ {
				assert.True(t, adjacent(r1[i-1].Segment, r1[i].Segment),
					"%s and %s are not adjacent", r1[i-1].Segment.Name(), r1[i].Segment.Name())
			}
			segs := r1.Segments()
			assert.Equal(t, len(segs), len(lo.Uniq(segs)))
		}
	}
}

func TestSelfRoute(t *testing.T) {
	n := gridNetwork(t, 3, 2)
	p := route.New(n)
	s := v(n, 1, 0)

	r, err := p.CreateRoute(route.Position{Segment: s, Coord: 50}, route.Position{Segment: s, Coord: 60})
	require.NoError(t, err)
	require.Len(t, r, 1)
	assert.Equal(t, entity.South, r[0].Direction)
	assert.Equal(t, 60.0, r[0].Coord)

	r, err = p.CreateRoute(route.Position{Segment: s, Coord: 60}, route.Position{Segment: s, Coord: 50})
	require.NoError(t, err)
	assert.Equal(t, entity.North, r[0].Direction)
}

func TestRouteNotFound(t *testing.T) {
	n := gridNetwork(t, 1, 2)
	_, err := route.New(n).CreateRoute(
		route.Position{Segment: v(n, 0, 0), Coord: 20},
		route.Position{Segment: v(n, 0, 2), Coord: 20},
	)
	assert.ErrorIs(t, err, route.ErrRouteNotFound)

	_, err = route.New(n).CreateRoute(route.Position{}, route.Position{Segment: v(n, 0, 2)})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, route.ErrRouteNotFound)
}

func TestCullBadRoutes(t *testing.T) {
	a := road.New(entity.Vertical, 0, 0, 10, geometry.Point{})
	b := road.New(entity.Vertical, 1, 0, 10, geometry.Point{Y: 10})
	c := road.New(entity.Vertical, 2, 0, 10, geometry.Point{Y: 20})

	routes := [][]*road.Segment{{a, b, c}, {a, c}, {b, c}, {a, b, c}}
	culled := route.CullBadRoutes(routes)
	require.Len(t, culled, 2)
	assert.Equal(t, []*road.Segment{a, c}, culled[0])
	assert.Equal(t, []*road.Segment{b, c}, culled[1])

	assert.Empty(t, route.CullBadRoutes(nil))
}

func TestStraightRun(t *testing.T) {
	n := gridNetwork(t, 3, 2)
	p := route.New(n)

	r, err := p.CreateRoute(
		route.Position{Segment: v(n, 0, 0), Coord: 20},
		route.Position{Segment: v(n, 2, 0), Coord: 90},
	)
	require.NoError(t, err)
	require.Equal(t, []string{"V-0-0", "V-1-0", "V-2-0"}, names(r.Segments()))
	assert.Equal(t, 2, r.StraightRunLast(0))
	assert.Equal(t, 90.0, r.StraightRunEnd(0))

	r, err = p.CreateRoute(
		route.Position{Segment: v(n, 2, 0), Coord: 90, Direction: entity.North},
		route.Position{Segment: v(n, 2, 2), Coord: 85},
	)
	require.NoError(t, err)
	assert.Equal(t, 0, r.StraightRunLast(0))
	assert.Equal(t, v(n, 2, 0).StartCoord(), r.StraightRunEnd(0))
}

// bfsLength 经路口相邻关系的最短路段数
func bfsLength(n *lot.Network, from, to *road.Segment) int {
	dist := map[*road.Segment]int{from: 1}
	queue := []*road.Segment{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == to {
			return dist[cur]
		}
		for _, j := range n.Intersections() {
			if !lo.Contains(j.Segments(), cur) {
				continue
			}
			for _, next := range j.Segments() {
				if _, ok := dist[next]; !ok {
					dist[next] = dist[cur] + 1
					queue = append(queue, next)
				}
			}
		}
	}
	return -1
}

func TestCreateRouteShortestOnReferenceLot(t *testing.T) {
	n := gridNetwork(t, 3, 2)
	p := route.New(n)
	verticals := lo.Filter(n.Segments(), func(s *road.Segment, _ int) bool { return s.IsVertical() })
	for _, from := range verticals {
		for _, to := range verticals {
			r, err := p.CreateRoute(
				route.Position{Segment: from, Coord: from.StartCoord() + 5},
				route.Position{Segment: to, Coord: to.StartCoord() + 5},
			)
			require.NoError(t, err)
			assert.Equal(t, bfsLength(n, from, to), len(r), "%s -> %s: %v", from.Name(), to.Name(), r.Segments())
		}
	}
}
