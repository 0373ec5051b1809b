package junction

import (
	"fmt"

	"github.com/samber/lo"
)

// Manager 路口管理器
type Manager struct {
	data          map[string]*Intersection
	intersections []*Intersection
}

// NewManager 创建路口管理器
// 参数：intersections-全部路口，名称必须唯一
func NewManager(intersections []*Intersection) (*Manager, error) {
	m := &Manager{
		intersections: intersections,
		data: lo.SliceToMap(intersections, func(j *Intersection) (string, *Intersection) {
			return j.name, j
		}),
	}
	if len(m.data) != len(intersections) {
		return nil, fmt.Errorf("duplicated intersection name in %d intersections", len(intersections))
	}
	return m, nil
}

// Get 根据名称获取路口，不存在则panic
func (m *Manager) Get(name string) *Intersection {
	if j, ok := m.data[name]; !ok {
		log.Panicf("no name %s in intersection data", name)
		return nil
	} else {
		return j
	}
}

// GetOrError 根据名称获取路口，不存在则返回错误
func (m *Manager) GetOrError(name string) (*Intersection, error) {
	if j, ok := m.data[name]; !ok {
		return nil, fmt.Errorf("no name %s in intersection data", name)
	} else {
		return j, nil
	}
}

// All 全部路口
func (m *Manager) All() []*Intersection {
	return m.intersections
}

// Occupied 当前被占用的路口
func (m *Manager) Occupied() []*Intersection {
	return lo.Filter(m.intersections, func(j *Intersection, _ int) bool { return j.Occupied() })
}
