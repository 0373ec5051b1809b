package junction_test

import (
	"testing"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/parking-sim/entity"
	"github.com/tsinghua-fib-lab/parking-sim/entity/junction"
)

func newIntersection(name string) *junction.Intersection {
	return junction.New(name, geometry.Point{X: 1, Y: 2},
		entity.CollisionBox{X: -4, Y: -1.5, W: 10, H: 7},
		entity.CollisionBox{X: -2.5, Y: -3, W: 7, H: 10},
		nil,
	)
}

func TestIntersectionHold(t *testing.T) {
	j := newIntersection("J-0-0")
	assert.False(t, j.Occupied())
	_, ok := j.Holder()
	assert.False(t, ok)

	j.Hold(3)
	j.Hold(3)
	holder, ok := j.Holder()
	assert.True(t, ok)
	assert.Equal(t, int32(3), holder)
	assert.Panics(t, func() { j.Hold(4) })

	j.Free()
	assert.False(t, j.Occupied())
	j.Hold(4)
	assert.True(t, j.Occupied())
	assert.Equal(t, []entity.CollisionBox{j.CrossArea(), j.ThroughArea()}, j.Areas())
}

func TestManager(t *testing.T) {
	a, b := newIntersection("J-0-0"), newIntersection("J-0-2")
	m, err := junction.NewManager([]*junction.Intersection{a, b})
	require.NoError(t, err)

	assert.Same(t, b, m.Get("J-0-2"))
	assert.Panics(t, func() { m.Get("J-9-9") })
	_, err = m.GetOrError("J-9-9")
	assert.Error(t, err)
	assert.Len(t, m.All(), 2)

	b.Hold(1)
	assert.Equal(t, []*junction.Intersection{b}, m.Occupied())

	_, err = junction.NewManager([]*junction.Intersection{a, newIntersection("J-0-0")})
	assert.Error(t, err)
}
