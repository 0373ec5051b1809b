package space

import (
	"fmt"

	"github.com/samber/lo"
)

// Manager 车位管理器
// 功能：按布局顺序保存全部车位，负责车位分配与释放
type Manager struct {
	data   map[int32]*Space
	spaces []*Space
}

// NewManager 创建车位管理器
// 参数：spaces-按布局顺序排列的车位
// 返回：车位管理器，ID重复时返回错误
func NewManager(spaces []*Space) (*Manager, error) {
	m := &Manager{
		spaces: spaces,
		data:   lo.SliceToMap(spaces, func(s *Space) (int32, *Space) { return s.id, s }),
	}
	if len(m.data) != len(spaces) {
		return nil, fmt.Errorf("duplicated space id in %d spaces", len(spaces))
	}
	return m, nil
}

// Get 根据ID获取车位，不存在则panic
func (m *Manager) Get(id int32) *Space {
	if s, ok := m.data[id]; !ok {
		log.Panicf("no id %d in space data", id)
		return nil
	} else {
		return s
	}
}

// GetOrError 根据ID获取车位，不存在则返回错误
func (m *Manager) GetOrError(id int32) (*Space, error) {
	if s, ok := m.data[id]; !ok {
		return nil, fmt.Errorf("no id %d in space data", id)
	} else {
		return s, nil
	}
}

// All 全部车位（布局顺序）
func (m *Manager) All() []*Space {
	return m.spaces
}

func (m *Manager) Len() int {
	return len(m.spaces)
}

// Free 空闲车位（布局顺序）
func (m *Manager) Free() []*Space {
	return lo.Filter(m.spaces, func(s *Space, _ int) bool { return s.Free() })
}

// Occupied 已分配车位数
func (m *Manager) Occupied() int {
	return lo.CountBy(m.spaces, func(s *Space) bool { return !s.Free() })
}

// Assign 将车位分配给车辆
func (m *Manager) Assign(s *Space, vehicleID int32) error {
	if !s.Free() {
		return fmt.Errorf("space %d already assigned to vehicle %d", s.id, s.vehicle)
	}
	s.vehicle = vehicleID
	return nil
}

// Release 释放车位
func (m *Manager) Release(s *Space) {
	s.vehicle = noVehicle
}
