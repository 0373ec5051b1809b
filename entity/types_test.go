package entity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/parking-sim/entity"
)

func TestDirection(t *testing.T) {
	for _, d := range []entity.Direction{entity.North, entity.East, entity.South, entity.West} {
		assert.Equal(t, d, d.Opposite().Opposite())
		assert.Equal(t, d, d.Right().Right().Right().Right())
		assert.Equal(t, d.Right(), d.Left().Opposite())
		assert.Equal(t, -d.Sign(), d.Opposite().Sign())
		assert.NotEqual(t, d.Vertical(), d.Right().Vertical())
	}
	assert.Equal(t, entity.East, entity.North.Right())
	assert.Equal(t, entity.West, entity.North.Left())
	assert.Equal(t, -1.0, entity.North.Sign())
	assert.Equal(t, 1.0, entity.South.Sign())
	assert.Equal(t, entity.DirectionNone, entity.DirectionNone.Opposite())
}

func TestCollisionBox(t *testing.T) {
	b := entity.CollisionBox{X: 1, Y: 2, W: 3, H: 4}
	assert.Equal(t, 2.0, b.Edge(entity.North))
	assert.Equal(t, 6.0, b.Edge(entity.South))
	assert.Equal(t, 1.0, b.Edge(entity.West))
	assert.Equal(t, 4.0, b.Edge(entity.East))
	assert.Panics(t, func() { b.Edge(entity.DirectionNone) })

	assert.Equal(t, entity.CollisionBox{X: 1, Y: 0, W: 3, H: 6}, b.Extend(entity.North, 2))
	assert.Equal(t, entity.CollisionBox{X: 1, Y: 2, W: 5, H: 4}, b.Extend(entity.East, 2))
	assert.Equal(t, b, b.Extend(entity.West, -1))
	assert.Equal(t, entity.CollisionBox{X: 0, Y: 1, W: 5, H: 6}, b.Pad(1))

	u := entity.Union(b, entity.CollisionBox{X: -1, Y: 5, W: 1, H: 3})
	assert.Equal(t, entity.CollisionBox{X: -1, Y: 2, W: 5, H: 6}, u)
	assert.Equal(t, b, entity.Union(b))
}
