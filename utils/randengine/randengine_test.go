package randengine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/parking-sim/utils/randengine"
)

func TestSameSeedSameSequence(t *testing.T) {
	a, b := randengine.New(42), randengine.New(42)
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Float64(), b.Float64())
	}
}

func TestDistributionsInRange(t *testing.T) {
	e := randengine.New(7)
	for i := 0; i < 1000; i++ {
		u := e.Uniform(60, 600)
		assert.GreaterOrEqual(t, u, 60.0)
		assert.Less(t, u, 600.0)

		assert.GreaterOrEqual(t, e.Exponential(0.5), 0.0)

		k := e.Pick(5)
		assert.GreaterOrEqual(t, k, 0)
		assert.Less(t, k, 5)
	}
	assert.Equal(t, 3.0, e.Uniform(3, 3))
	assert.Equal(t, -1, e.Pick(0))
	assert.Panics(t, func() { e.Exponential(0) })
}
