package input

import (
	"fmt"
	"os"

	"github.com/tsinghua-fib-lab/parking-sim/entity/lot"
	"github.com/tsinghua-fib-lab/parking-sim/utils/config"
	"gopkg.in/yaml.v2"
)

// Input 输入数据
type Input struct {
	Layout lot.Layout
	Source string // 布局来源，文件路径或grid
}

// Init 加载停车场布局
// 功能：配置了layout_file时从YAML文件读取布局，否则按lot配置生成网格布局
// 参数：c-配置对象
// 返回：输入数据；读取或解析失败时返回错误
func Init(c config.Config) (*Input, error) {
	if c.Input.LayoutFile == "" {
		l, err := lot.GridLayout(c.Lot)
		if err != nil {
			return nil, fmt.Errorf("grid layout: %w", err)
		}
		log.Infof("grid layout %dx%d: %d segments, %d spaces", c.Lot.Rows, c.Lot.Columns, len(l.Segments), len(l.Spaces))
		return &Input{Layout: l, Source: "grid"}, nil
	}
	file, err := os.ReadFile(c.Input.LayoutFile)
	if err != nil {
		return nil, fmt.Errorf("read layout file: %w", err)
	}
	var l lot.Layout
	if err := yaml.UnmarshalStrict(file, &l); err != nil {
		return nil, fmt.Errorf("parse layout file %s: %w", c.Input.LayoutFile, err)
	}
	if l.EntranceDepth == 0 {
		l.EntranceDepth = c.Lot.EntranceDepth
	}
	log.Infof("layout %s: %d segments, %d spaces", c.Input.LayoutFile, len(l.Segments), len(l.Spaces))
	return &Input{Layout: l, Source: c.Input.LayoutFile}, nil
}
