package route

import (
	"github.com/tsinghua-fib-lab/parking-sim/entity"
	"github.com/tsinghua-fib-lab/parking-sim/entity/road"
)

// BranchEnumerator 分支枚举器
// 功能：给定当前路段与到目标的行列差，列出朝目标前进的下一路段（0~2个）
// 说明：rowDiff、colDiff在同一次搜索步内保持不变
type BranchEnumerator struct {
	network SegmentGetter
	rowDiff int
	colDiff int
}

// NewBranchEnumerator 创建分支枚举器
// 参数：network-路网，rowDiff-目标行减当前行，colDiff-目标列减当前列
func NewBranchEnumerator(network SegmentGetter, rowDiff, colDiff int) *BranchEnumerator {
	return &BranchEnumerator{
		network: network,
		rowDiff: rowDiff,
		colDiff: colDiff,
	}
}

// Branches 列出当前路段可达的下一路段
// 功能：枚举转弯（横向）与直行（纵向）两类分支
// 参数：current-当前所在路段
// 返回：下一路段列表，水平路段在前、竖直路段在后，不存在的分支直接省略
// 算法说明：
// 1. 水平路段：只有一个分支，按colDiff符号向东/西移动一列，rowDiff>0时行号加1
// 2. 竖直路段：
//   - 横向分支（colDiff!=0）：向colDiff方向移动一列，北行取北端连接段，南行或同行取南端连接段；
//     同行且南端不存在时改为尝试北端
//   - 纵向分支：沿rowDiff方向的下一竖直路段（同行时向南）
//
// 3. 按朝向归类，先水平后竖直
func (b *BranchEnumerator) Branches(current *road.Segment) []*road.Segment {
	found := make([]*road.Segment, 0, 2)
	colStep := 1
	if b.colDiff < 0 {
		colStep = -1
	}
	if current.Orientation() == entity.Horizontal {
		row := current.Row()
		if b.rowDiff > 0 {
			row++
		}
		if s := b.network.Get(entity.Vertical, row, current.Col()+colStep); s != nil {
			found = append(found, s)
		}
	} else {
		if b.colDiff != 0 {
			row := current.Row()
			if b.rowDiff < 0 {
				row--
			}
			lateral := b.network.Get(entity.Horizontal, row, current.Col()+colStep)
			if lateral == nil && b.rowDiff == 0 {
				lateral = b.network.Get(entity.Horizontal, current.Row()-1, current.Col()+colStep)
			}
			if lateral != nil {
				found = append(found, lateral)
			}
		}
		rowStep := 1
		if b.rowDiff < 0 {
			rowStep = -1
		}
		if s := b.network.Get(entity.Vertical, current.Row()+rowStep, current.Col()); s != nil {
			found = append(found, s)
		}
	}

	var nextHorizontal, nextVertical *road.Segment
	for _, s := range found {
		if s.IsVertical() {
			nextVertical = s
		} else {
			nextHorizontal = s
		}
	}
	branches := make([]*road.Segment, 0, 2)
	if nextHorizontal != nil {
		branches = append(branches, nextHorizontal)
	}
	if nextVertical != nil {
		branches = append(branches, nextVertical)
	}
	return branches
}
