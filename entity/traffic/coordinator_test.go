package traffic_test

import (
	"testing"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/parking-sim/entity"
	"github.com/tsinghua-fib-lab/parking-sim/entity/junction"
	"github.com/tsinghua-fib-lab/parking-sim/entity/traffic"
)

type fakeVehicle struct {
	id     int32
	status entity.Status
	boxes  []entity.CollisionBox
}

func (v *fakeVehicle) ID() int32                             { return v.id }
func (v *fakeVehicle) Position() geometry.Point              { return geometry.Point{} }
func (v *fakeVehicle) Heading() entity.Direction             { return entity.North }
func (v *fakeVehicle) Width() float64                        { return 2 }
func (v *fakeVehicle) Length() float64                       { return 4.5 }
func (v *fakeVehicle) Status() entity.Status                 { return v.status }
func (v *fakeVehicle) CollisionBoxes() []entity.CollisionBox { return v.boxes }

type fakeSource struct {
	vehicles []*fakeVehicle
}

func (s *fakeSource) ActiveVehicles() []entity.IVehicle {
	return lo.Map(s.vehicles, func(v *fakeVehicle, _ int) entity.IVehicle { return v })
}

type fakeNetwork struct {
	intersections []*junction.Intersection
	zone          entity.CollisionBox
}

func (n *fakeNetwork) Intersections() []*junction.Intersection { return n.intersections }
func (n *fakeNetwork) EntranceZone() entity.CollisionBox       { return n.zone }

// 路口中心(0,0)，入口区位于(100,100)
func setup() (*traffic.Coordinator, *fakeSource, *junction.Intersection) {
	j := junction.New("J-0-0", geometry.Point{},
		entity.CollisionBox{X: -5, Y: -3.5, W: 10, H: 7},
		entity.CollisionBox{X: -3.5, Y: -5, W: 7, H: 10},
		nil,
	)
	source := &fakeSource{}
	network := &fakeNetwork{
		intersections: []*junction.Intersection{j},
		zone:          entity.CollisionBox{X: 100, Y: 100, W: 6, H: 6},
	}
	return traffic.New(network, source), source, j
}

var (
	inJunction  = []entity.CollisionBox{{X: -1, Y: -1, W: 2, H: 4.5}}
	outJunction = []entity.CollisionBox{{X: -1, Y: 20, W: 2, H: 4.5}}
)

func TestRectanglesOverlap(t *testing.T) {
	a := entity.CollisionBox{X: 0, Y: 0, W: 1, H: 1}
	cases := []struct {
		b       entity.CollisionBox
		overlap bool
	}{
		{entity.CollisionBox{X: 0.5, Y: 0.5, W: 1, H: 1}, true},
		{entity.CollisionBox{X: 0.25, Y: 0.25, W: 0.5, H: 0.5}, true},
		{entity.CollisionBox{X: 1, Y: 0, W: 1, H: 1}, false},
		{entity.CollisionBox{X: 0, Y: -1, W: 1, H: 1}, false},
		{entity.CollisionBox{X: 3, Y: 3, W: 1, H: 1}, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.overlap, traffic.RectanglesOverlap(a, c.b), "%+v", c.b)
		assert.Equal(t, c.overlap, traffic.RectanglesOverlap(c.b, a), "%+v", c.b)
	}
}

func TestVehiclesInArea(t *testing.T) {
	c, source, _ := setup()
	a := &fakeVehicle{id: 1, boxes: inJunction}
	b := &fakeVehicle{id: 2, boxes: outJunction}
	source.vehicles = []*fakeVehicle{a, b}

	area := entity.CollisionBox{X: -2, Y: -2, W: 4, H: 4}
	assert.Equal(t, []entity.IVehicle{a}, c.VehiclesInArea(area))
	assert.Empty(t, c.VehiclesInArea(area, a))
	assert.Len(t, c.VehiclesInArea(entity.CollisionBox{X: -10, Y: -10, W: 20, H: 40}), 2)
}

func TestIntersectionMutualExclusion(t *testing.T) {
	c, source, j := setup()
	a := &fakeVehicle{id: 1, boxes: outJunction}
	b := &fakeVehicle{id: 2, boxes: []entity.CollisionBox{{X: 20, Y: -1, W: 4.5, H: 2}}}
	source.vehicles = []*fakeVehicle{a, b}

	areaA := []entity.CollisionBox{{X: -1, Y: -6, W: 2, H: 30}}
	areaB := []entity.CollisionBox{{X: -6, Y: -1, W: 30, H: 2}}
	require.True(t, c.ManeuverAreaClear(a, areaA))
	c.BlockIntersections(a, areaA)
	holder, ok := j.Holder()
	require.True(t, ok)
	assert.Equal(t, int32(1), holder)
	assert.Equal(t, []*junction.Intersection{j}, c.Held(a))

	// 路口被占用时其他车辆不可进入，自己仍可继续使用
	assert.False(t, c.ManeuverAreaClear(b, areaB))
	assert.True(t, c.ManeuverAreaClear(a, areaA))
	assert.Panics(t, func() { j.Hold(b.ID()) })

	// 尚未进入路口时不释放
	c.Refresh(a)
	assert.True(t, j.Occupied())

	a.boxes = inJunction
	c.Refresh(a)
	assert.True(t, j.Occupied())

	a.boxes = []entity.CollisionBox{{X: -1, Y: -20, W: 2, H: 4.5}}
	c.Refresh(a)
	assert.False(t, j.Occupied())
	assert.Empty(t, c.Held(a))
	assert.True(t, c.ManeuverAreaClear(b, areaB))
}

func TestReleaseWhenParked(t *testing.T) {
	c, source, j := setup()
	a := &fakeVehicle{id: 1, status: entity.StatusParking, boxes: inJunction}
	source.vehicles = []*fakeVehicle{a}

	c.BlockIntersection(a, j)
	a.boxes = outJunction
	c.Refresh(a)
	assert.True(t, j.Occupied())

	a.status = entity.StatusParked
	c.Refresh(a)
	assert.False(t, j.Occupied())
}

func TestReservationUpgradedWhenParkingStarts(t *testing.T) {
	c, source, j := setup()
	a := &fakeVehicle{id: 1, boxes: inJunction}
	source.vehicles = []*fakeVehicle{a}

	c.BlockIntersection(a, j)
	c.Refresh(a)
	require.True(t, j.Occupied())

	a.status = entity.StatusParking
	c.BlockIntersection(a, j)
	c.Refresh(a)
	assert.True(t, j.Occupied())
	assert.Len(t, c.Held(a), 1)

	a.status = entity.StatusParked
	c.Refresh(a)
	assert.False(t, j.Occupied())
}

func TestPassedReservationReleasedOnParking(t *testing.T) {
	c, source, j := setup()
	a := &fakeVehicle{id: 1, boxes: inJunction}
	source.vehicles = []*fakeVehicle{a}

	c.BlockIntersection(a, j)
	a.status = entity.StatusParking
	c.Refresh(a)
	assert.False(t, j.Occupied())
}

func TestReleaseAll(t *testing.T) {
	c, source, j := setup()
	a := &fakeVehicle{id: 1, status: entity.StatusParking, boxes: inJunction}
	source.vehicles = []*fakeVehicle{a}

	c.BlockIntersection(a, j)
	c.ReleaseAll(a)
	assert.False(t, j.Occupied())
	assert.Empty(t, c.Held(a))
	// 未持有路口时为空操作
	c.ReleaseAll(a)
	c.Refresh(a)
}

func TestManeuverAreaBlockedByVehicle(t *testing.T) {
	c, source, _ := setup()
	a := &fakeVehicle{id: 1, boxes: outJunction}
	b := &fakeVehicle{id: 2, boxes: []entity.CollisionBox{{X: -1, Y: 30, W: 2, H: 4.5}}}
	source.vehicles = []*fakeVehicle{a, b}

	assert.False(t, c.ManeuverAreaClear(a, []entity.CollisionBox{{X: -1, Y: 25, W: 2, H: 10}}))
	// 刚好接触不算阻挡
	assert.True(t, c.ManeuverAreaClear(a, []entity.CollisionBox{{X: -1, Y: 25, W: 2, H: 5}}))
}

func TestEntranceClear(t *testing.T) {
	c, source, _ := setup()
	assert.True(t, c.EntranceClear())

	a := &fakeVehicle{id: 1, boxes: []entity.CollisionBox{{X: 101, Y: 103, W: 2, H: 4.5}}}
	source.vehicles = []*fakeVehicle{a}
	assert.False(t, c.EntranceClear())

	a.boxes = []entity.CollisionBox{{X: 101, Y: 95.5, W: 2, H: 4.5}}
	assert.True(t, c.EntranceClear())
}

func TestIntersectionAvailable(t *testing.T) {
	c, source, j := setup()
	a := &fakeVehicle{id: 1, boxes: outJunction}
	b := &fakeVehicle{id: 2, status: entity.StatusParked, boxes: outJunction}
	source.vehicles = []*fakeVehicle{a}

	assert.True(t, c.IntersectionAvailable(b, j))
	assert.True(t, c.IntersectionAvailable(b, nil))

	c.BlockIntersection(a, j)
	assert.True(t, c.IntersectionAvailable(a, j))
	assert.False(t, c.IntersectionAvailable(b, j))

	c.ReleaseAll(a)
	assert.True(t, c.IntersectionAvailable(b, j))
}
