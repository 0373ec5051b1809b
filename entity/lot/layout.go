package lot

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/parking-sim/entity"
	"github.com/tsinghua-fib-lab/parking-sim/utils/config"
)

// SegmentSpec 布局中的路段描述
type SegmentSpec struct {
	Orientation string  `yaml:"orientation"` // vertical | horizontal
	Row         int     `yaml:"row"`
	Col         int     `yaml:"col"`
	X           float64 `yaml:"x"` // 竖直路段北端点或水平路段西端点
	Y           float64 `yaml:"y"`
	Length      float64 `yaml:"length"`
}

// GateSpec 出入口所在路段及端点
type GateSpec struct {
	Orientation string `yaml:"orientation"`
	Row         int    `yaml:"row"`
	Col         int    `yaml:"col"`
	End         string `yaml:"end"` // north | south | east | west
}

// SpaceSpec 车位描述
type SpaceSpec struct {
	Orientation string  `yaml:"orientation"` // 所挂靠路段
	Row         int     `yaml:"row"`
	Col         int     `yaml:"col"`
	Side        string  `yaml:"side"`
	Kind        string  `yaml:"kind"` // perpendicular | parallel
	X           float64 `yaml:"x"`
	Y           float64 `yaml:"y"`
	W           float64 `yaml:"w"`
	H           float64 `yaml:"h"`
}

// Layout 停车场静态布局
type Layout struct {
	Segments      []SegmentSpec `yaml:"segments"`
	Spaces        []SpaceSpec   `yaml:"spaces"`
	Entrance      GateSpec      `yaml:"entrance"`
	Exit          GateSpec      `yaml:"exit"`
	EntranceDepth float64       `yaml:"entrance_depth"` // 入口区沿路段方向的深度
}

func parseOrientation(s string) (entity.Orientation, error) {
	switch s {
	case "vertical", "v":
		return entity.Vertical, nil
	case "horizontal", "h":
		return entity.Horizontal, nil
	default:
		return 0, fmt.Errorf("unknown orientation %q", s)
	}
}

func parseDirection(s string) (entity.Direction, error) {
	switch s {
	case "north":
		return entity.North, nil
	case "south":
		return entity.South, nil
	case "east":
		return entity.East, nil
	case "west":
		return entity.West, nil
	default:
		return entity.DirectionNone, fmt.Errorf("unknown direction %q", s)
	}
}

// GridLayout 生成网格状停车场布局
// 功能：按rows×columns生成竖直通道，相邻通道之间每个行边界用水平连接段相连，
// 并在每条竖直路段两侧排布车位
// 参数：c-停车场配置
// 返回：布局；尺寸无法容纳车位或出入口配置非法时返回错误
// 算法说明：
// 1. 竖直路段V(r,2i)北端点为(margin+i*aisle, margin+r*length)
// 2. 水平路段H(h,2i+1)位于V(h,·)的南端，连接V(·,2i)与V(·,2i+2)
// 3. 车位从路段两端各留clearance后依次排布，parallel_rows中的行使用平行车位
// 4. 入口与出口位于最南一行对应通道的南端
func GridLayout(c config.Lot) (Layout, error) {
	if c.Rows < 1 || c.Columns < 1 {
		return Layout{}, fmt.Errorf("lot needs at least one row and one column, got %dx%d", c.Rows, c.Columns)
	}
	if c.EntranceColumn == c.ExitColumn {
		return Layout{}, fmt.Errorf("entrance and exit must use different aisles, both are %d", c.EntranceColumn)
	}
	for _, col := range []int{c.EntranceColumn, c.ExitColumn} {
		if col < 0 || col >= c.Columns {
			return Layout{}, fmt.Errorf("gate aisle %d out of range [0,%d)", col, c.Columns)
		}
	}
	depth := max(c.SpaceDepth, c.ParallelDepth)
	if c.Columns > 1 && c.AisleSpacing-c.RoadWidth < 2*depth {
		return Layout{}, fmt.Errorf("aisle spacing %v cannot hold two rows of spaces %v deep", c.AisleSpacing, depth)
	}

	x := func(i int) float64 { return c.Margin + float64(i)*c.AisleSpacing }
	y := func(r int) float64 { return c.Margin + float64(r)*c.SegmentLength }

	var l Layout
	for r := 0; r < c.Rows; r++ {
		for i := 0; i < c.Columns; i++ {
			l.Segments = append(l.Segments, SegmentSpec{
				Orientation: "vertical", Row: r, Col: 2 * i,
				X: x(i), Y: y(r), Length: c.SegmentLength,
			})
		}
	}
	for h := 0; h+1 < c.Rows; h++ {
		for i := 0; i+1 < c.Columns; i++ {
			l.Segments = append(l.Segments, SegmentSpec{
				Orientation: "horizontal", Row: h, Col: 2*i + 1,
				X: x(i), Y: y(h + 1), Length: c.AisleSpacing,
			})
		}
	}

	half := c.RoadWidth / 2
	for r := 0; r < c.Rows; r++ {
		kind, w, d := "perpendicular", c.SpaceWidth, c.SpaceDepth
		if lo.Contains(c.ParallelRows, r) {
			kind, w, d = "parallel", c.ParallelLength, c.ParallelDepth
		}
		for i := 0; i < c.Columns; i++ {
			for _, side := range []string{"west", "east"} {
				sx := x(i) + half
				if side == "west" {
					sx = x(i) - half - d
				}
				for start := y(r) + c.SpaceClearance; start+w <= y(r+1)-c.SpaceClearance; start += w {
					l.Spaces = append(l.Spaces, SpaceSpec{
						Orientation: "vertical", Row: r, Col: 2 * i,
						Side: side, Kind: kind,
						X: sx, Y: start, W: d, H: w,
					})
				}
			}
		}
	}

	l.Entrance = GateSpec{Orientation: "vertical", Row: c.Rows - 1, Col: 2 * c.EntranceColumn, End: "south"}
	l.Exit = GateSpec{Orientation: "vertical", Row: c.Rows - 1, Col: 2 * c.ExitColumn, End: "south"}
	l.EntranceDepth = c.EntranceDepth
	return l, nil
}
