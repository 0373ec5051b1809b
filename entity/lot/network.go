package lot

import (
	"errors"
	"fmt"
	"math"

	"git.fiblab.net/general/common/v2/geometry"
	"git.fiblab.net/general/common/v2/parallel"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/parking-sim/entity"
	"github.com/tsinghua-fib-lab/parking-sim/entity/junction"
	"github.com/tsinghua-fib-lab/parking-sim/entity/occupancy"
	"github.com/tsinghua-fib-lab/parking-sim/entity/road"
	"github.com/tsinghua-fib-lab/parking-sim/entity/space"
)

var (
	ErrNoEntrance = errors.New("lot: entrance segment not found")
	ErrNoExit     = errors.New("lot: exit segment not found")
)

const eps = 1e-6

type segmentKey struct {
	orientation entity.Orientation
	row, col    int
}

// Network 停车场路网
// 功能：保存全部路段、路口、车位与出入口，提供按网格行列号的路段查询
// 说明：由模拟驱动方构建并注入到路径规划器与交通协调器，构建后只读（路口占用标记除外）
type Network struct {
	segments []*road.Segment
	index    map[segmentKey]*road.Segment

	junctions *junction.Manager
	spaces    *space.Manager

	entrance     *road.Segment
	exit         *road.Segment
	entranceZone entity.CollisionBox
}

type crossingSpec struct {
	name     string
	point    geometry.Point
	segments []*road.Segment
}

// NewNetwork 根据布局构建路网
// 功能：创建路段、推导路口、标记出入口并创建车位
// 参数：layout-静态布局，model-用于计算路口占用区与入口区
// 返回：路网；布局非法时返回错误
// 算法说明：
// 1. 创建路段并按(朝向,行,列)建立索引
// 2. 竖直路段端点与水平路段端点重合处为路口，名称为J-水平行号-竖直列号
// 3. 并行计算各路口的横穿区与直通区
// 4. 在出入口端点打标记，入口区为入口端向内entrance_depth深的全宽道路
// 5. 创建车位并交给车位管理器
func NewNetwork(layout Layout, model *occupancy.Model) (*Network, error) {
	n := &Network{
		index: make(map[segmentKey]*road.Segment),
	}
	for _, desc := range layout.Segments {
		o, err := parseOrientation(desc.Orientation)
		if err != nil {
			return nil, fmt.Errorf("segment %d-%d: %w", desc.Row, desc.Col, err)
		}
		key := segmentKey{o, desc.Row, desc.Col}
		if _, ok := n.index[key]; ok {
			return nil, fmt.Errorf("duplicated segment %v-%d-%d", o, desc.Row, desc.Col)
		}
		if desc.Length <= 0 {
			return nil, fmt.Errorf("segment %v-%d-%d: non-positive length %v", o, desc.Row, desc.Col, desc.Length)
		}
		s := road.New(o, desc.Row, desc.Col, desc.Length, geometry.Point{X: desc.X, Y: desc.Y})
		n.segments = append(n.segments, s)
		n.index[key] = s
	}

	crossings := n.findCrossings()
	intersections := parallel.GoMap(crossings, func(c *crossingSpec) *junction.Intersection {
		cross, through := model.IntersectionArea(c.point.X, c.point.Y)
		return junction.New(c.name, c.point, cross, through, c.segments)
	})
	var err error
	if n.junctions, err = junction.NewManager(intersections); err != nil {
		return nil, err
	}

	if n.entrance, err = n.tagGate(layout.Entrance, road.GateEntrance); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoEntrance, err)
	}
	if n.exit, err = n.tagGate(layout.Exit, road.GateExit); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoExit, err)
	}
	if layout.EntranceDepth <= 0 {
		return nil, fmt.Errorf("entrance depth must be positive, got %v", layout.EntranceDepth)
	}
	_, end := n.entrance.Gate()
	outer := n.entrance.TerminalCoord(end)
	n.entranceZone = model.RoadStrip(n.entrance, outer, outer-end.Sign()*layout.EntranceDepth)

	spaces := make([]*space.Space, 0, len(layout.Spaces))
	for i, desc := range layout.Spaces {
		sp, err := n.newSpace(int32(i), desc)
		if err != nil {
			return nil, fmt.Errorf("space %d: %w", i, err)
		}
		spaces = append(spaces, sp)
	}
	if n.spaces, err = space.NewManager(spaces); err != nil {
		return nil, err
	}

	log.Infof("network: %d segments, %d intersections, %d spaces",
		len(n.segments), len(intersections), len(spaces))
	return n, nil
}

// findCrossings 推导路口，按路段顺序首次出现的先后排列
func (n *Network) findCrossings() []*crossingSpec {
	verticals := lo.Filter(n.segments, func(s *road.Segment, _ int) bool { return s.IsVertical() })
	horizontals := lo.Filter(n.segments, func(s *road.Segment, _ int) bool { return !s.IsVertical() })

	isEnd := func(s *road.Segment, coord float64) (entity.Direction, bool) {
		switch {
		case math.Abs(coord-s.StartCoord()) < eps:
			if s.IsVertical() {
				return entity.North, true
			}
			return entity.West, true
		case math.Abs(coord-s.EndCoord()) < eps:
			if s.IsVertical() {
				return entity.South, true
			}
			return entity.East, true
		}
		return entity.DirectionNone, false
	}

	res := make([]*crossingSpec, 0)
	byPoint := make(map[[2]int64]*crossingSpec)
	pointKey := func(p geometry.Point) [2]int64 {
		return [2]int64{int64(math.Round(p.X / eps)), int64(math.Round(p.Y / eps))}
	}
	for _, h := range horizontals {
		for _, v := range verticals {
			p := road.Crossing(v, h)
			vEnd, okV := isEnd(v, p.Y)
			hEnd, okH := isEnd(h, p.X)
			if !okV || !okH {
				continue
			}
			key := pointKey(p)
			c, ok := byPoint[key]
			if !ok {
				c = &crossingSpec{name: fmt.Sprintf("J-%d-%d", h.Row(), v.Col()), point: p}
				byPoint[key] = c
				res = append(res, c)
			}
			for _, pair := range []struct {
				s   *road.Segment
				end entity.Direction
			}{{v, vEnd}, {h, hEnd}} {
				if !lo.Contains(c.segments, pair.s) {
					c.segments = append(c.segments, pair.s)
					pair.s.SetEndIntersection(pair.end, c.name)
				}
			}
		}
	}
	return res
}

func (n *Network) tagGate(desc GateSpec, g road.Gate) (*road.Segment, error) {
	o, err := parseOrientation(desc.Orientation)
	if err != nil {
		return nil, err
	}
	end, err := parseDirection(desc.End)
	if err != nil {
		return nil, err
	}
	s := n.Get(o, desc.Row, desc.Col)
	if s == nil {
		return nil, fmt.Errorf("no segment %v-%d-%d", o, desc.Row, desc.Col)
	}
	if err := s.SetGate(g, end); err != nil {
		return nil, err
	}
	return s, nil
}

func (n *Network) newSpace(id int32, desc SpaceSpec) (*space.Space, error) {
	o, err := parseOrientation(desc.Orientation)
	if err != nil {
		return nil, err
	}
	seg := n.Get(o, desc.Row, desc.Col)
	if seg == nil {
		return nil, fmt.Errorf("no segment %v-%d-%d", o, desc.Row, desc.Col)
	}
	side, err := parseDirection(desc.Side)
	if err != nil {
		return nil, err
	}
	if side.Vertical() == seg.IsVertical() {
		return nil, fmt.Errorf("side %v is not beside %s", side, seg.Name())
	}
	kind := space.Perpendicular
	switch desc.Kind {
	case "perpendicular", "":
	case "parallel":
		kind = space.Parallel
	default:
		return nil, fmt.Errorf("unknown space kind %q", desc.Kind)
	}
	box := entity.CollisionBox{X: desc.X, Y: desc.Y, W: desc.W, H: desc.H}
	if box.W <= 0 || box.H <= 0 {
		return nil, fmt.Errorf("empty space box %+v", box)
	}
	sp := space.New(id, seg, side, box, kind)
	if !seg.Contains(sp.Coord()) {
		return nil, fmt.Errorf("space center %v outside %s", sp.Coord(), seg.Name())
	}
	return sp, nil
}

// Get 按朝向与行列号查询路段，不存在时返回nil
func (n *Network) Get(o entity.Orientation, row, col int) *road.Segment {
	return n.index[segmentKey{o, row, col}]
}

// Segments 全部路段（布局顺序）
func (n *Network) Segments() []*road.Segment {
	return n.segments
}

func (n *Network) Entrance() *road.Segment {
	return n.entrance
}

func (n *Network) Exit() *road.Segment {
	return n.exit
}

// EntranceZone 入口内侧的固定区域
func (n *Network) EntranceZone() entity.CollisionBox {
	return n.entranceZone
}

// Junctions 路口管理器
func (n *Network) Junctions() *junction.Manager {
	return n.junctions
}

// Intersections 全部路口
func (n *Network) Intersections() []*junction.Intersection {
	return n.junctions.All()
}

// EndIntersection 在seg上沿d行驶到达的路口，不存在时返回nil
func (n *Network) EndIntersection(seg *road.Segment, d entity.Direction) *junction.Intersection {
	name := seg.EndIntersection(d)
	if name == "" {
		return nil
	}
	return n.junctions.Get(name)
}

// Spaces 车位管理器
func (n *Network) Spaces() *space.Manager {
	return n.spaces
}
