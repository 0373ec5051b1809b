package task_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/parking-sim/entity"
	"github.com/tsinghua-fib-lab/parking-sim/entity/route"
	"github.com/tsinghua-fib-lab/parking-sim/output"
	"github.com/tsinghua-fib-lab/parking-sim/task"
	"github.com/tsinghua-fib-lab/parking-sim/utils/config"
)

func testConfig(arrivals ...int32) config.Config {
	c := config.Default()
	c.Control.Step.Total = 20000
	c.Traffic.Arrivals = arrivals
	c.Traffic.ArrivalRate = 0
	c.Traffic.DwellMin, c.Traffic.DwellMax = 1, 1
	c.Traffic.SpacePolicy = "first"
	return c
}

// runUntilExited 单步运行直到n辆车驶出，返回所用步数
func runUntilExited(t *testing.T, ctx *task.Context, n int) int {
	t.Helper()
	for step := 0; step < 20000; step++ {
		ctx.Step()
		if ctx.VehicleManager().Stats().Exited >= n {
			return step
		}
	}
	require.FailNow(t, "vehicles did not leave", "stats %+v", ctx.VehicleManager().Stats())
	return -1
}

func TestSingleVehicleVisit(t *testing.T) {
	ctx, err := task.NewContext("test", testConfig(1), nil, false)
	require.NoError(t, err)
	defer ctx.Close()
	ctx.Init()

	runUntilExited(t, ctx, 1)

	stats := ctx.VehicleManager().Stats()
	assert.Equal(t, 1, stats.Spawned)
	assert.Equal(t, 1, stats.Parked)
	assert.Equal(t, 0, stats.RouteFailures)
	assert.Empty(t, ctx.VehicleManager().Vehicles())
	assert.Equal(t, 0, ctx.Network().Spaces().Occupied())
	assert.Empty(t, ctx.Network().Junctions().Occupied())

	visits := ctx.Recorder().(*output.MemoryRecorder).Visits()
	require.Len(t, visits, 1)
	v := visits[0]
	assert.Equal(t, ctx.Recorder().RunID(), v.RunID)
	assert.Equal(t, int32(1), v.VehicleID)
	assert.Equal(t, int32(0), v.SpaceID)
	assert.Equal(t, int32(1), v.ArrivalStep)
	assert.Equal(t, int32(1), v.EnterStep)
	assert.Greater(t, v.ParkStep, v.EnterStep)
	// 停放1秒即10步后开始驶离
	assert.GreaterOrEqual(t, v.DepartStep, v.ParkStep+10)
	assert.Greater(t, v.ExitStep, v.DepartStep)
	assert.Equal(t, 1.0, v.DwellSeconds)

	snap, err := ctx.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, float64(ctx.Clock().InternalStep), snap.GetFields()["step"].GetNumberValue())
	assert.Equal(t, 72.0, snap.GetFields()["spaces"].GetStructValue().GetFields()["total"].GetNumberValue())
}

func TestVehiclesShareTheLot(t *testing.T) {
	ctx, err := task.NewContext("test", testConfig(1, 1, 2), nil, false)
	require.NoError(t, err)
	defer ctx.Close()
	ctx.Init()

	// 入口区被占用时后到的车辆在入口排队
	ctx.Step()
	assert.Len(t, ctx.VehicleManager().Entering(), 1)
	assert.Equal(t, 1, ctx.VehicleManager().GateQueue())

	runUntilExited(t, ctx, 3)

	stats := ctx.VehicleManager().Stats()
	assert.Equal(t, 3, stats.Spawned)
	assert.Equal(t, 3, stats.Parked)
	assert.Equal(t, 0, ctx.VehicleManager().GateQueue())
	assert.Equal(t, 0, ctx.Network().Spaces().Occupied())
	assert.Empty(t, ctx.Network().Junctions().Occupied())

	visits := ctx.Recorder().(*output.MemoryRecorder).Visits()
	require.Len(t, visits, 3)
	spaces := map[int32]bool{}
	for _, v := range visits {
		spaces[v.SpaceID] = true
		assert.LessOrEqual(t, v.ArrivalStep, v.EnterStep)
	}
	assert.Len(t, spaces, 3)
}

// 离场方向的下一路口被上游车辆占用时，停放车辆不倒出
func TestParkedVehicleWaitsForHeldIntersection(t *testing.T) {
	ctx, err := task.NewContext("test", testConfig(1), nil, false)
	require.NoError(t, err)
	defer ctx.Close()
	ctx.Init()

	for step := 0; step < 20000 && len(ctx.VehicleManager().Parked()) == 0; step++ {
		ctx.Step()
	}
	require.Len(t, ctx.VehicleManager().Parked(), 1)
	v := ctx.VehicleManager().Parked()[0]
	sp := v.Space()

	exit := ctx.Network().Exit()
	_, end := exit.Gate()
	r, err := ctx.Planner().CreateRoute(
		route.Position{Segment: sp.Segment(), Coord: sp.Coord()},
		route.Position{Segment: exit, Coord: exit.TerminalCoord(end)},
	)
	require.NoError(t, err)
	next := ctx.Network().EndIntersection(sp.Segment(), r[0].Direction)
	require.NotNil(t, next)
	require.False(t, next.Occupied())
	next.Hold(99)

	// 停放1秒即10步，远超停放时长后仍在等待
	for i := 0; i < 100; i++ {
		ctx.Step()
	}
	assert.Equal(t, entity.StatusParked, v.Status())
	assert.True(t, v.Waiting())
	assert.Len(t, ctx.VehicleManager().Parked(), 1)
	assert.Equal(t, int32(0), v.Visit().DepartStep)

	next.Free()
	runUntilExited(t, ctx, 1)
	assert.Empty(t, ctx.Network().Junctions().Occupied())
}

// 后车紧随前车转入同一平行车位路段，前车停车时后车不能压住其停车区
func TestFollowerKeepsClearOfParallelParking(t *testing.T) {
	ctx, err := task.NewContext("test", testConfig(1, 1), nil, false)
	require.NoError(t, err)
	defer ctx.Close()
	ctx.Init()

	// 预占前9个车位，首车驶向V-0-4西侧靠南的平行车位，次车驶向其北侧车位
	spaces := ctx.Network().Spaces()
	for id := int32(0); id < 9; id++ {
		require.NoError(t, spaces.Assign(spaces.Get(id), 999))
	}
	ctx.Step()
	require.Len(t, ctx.VehicleManager().Entering(), 1)
	spaces.Release(spaces.Get(8))

	runUntilExited(t, ctx, 2)

	visits := ctx.Recorder().(*output.MemoryRecorder).Visits()
	require.Len(t, visits, 2)
	assert.Equal(t, int32(9), visits[0].SpaceID)
	assert.Equal(t, int32(8), visits[1].SpaceID)
	assert.Equal(t, "V-0-4", spaces.Get(8).Segment().Name())
	assert.Less(t, spaces.Get(8).Coord(), spaces.Get(9).Coord())
	assert.Equal(t, 8, spaces.Occupied())
	assert.Empty(t, ctx.Network().Junctions().Occupied())
}

func TestSnapshotBeforeAnyArrival(t *testing.T) {
	ctx, err := task.NewContext("test", testConfig(), nil, false)
	require.NoError(t, err)
	defer ctx.Close()

	snap, err := ctx.Snapshot()
	require.NoError(t, err)
	assert.Empty(t, snap.GetFields()["vehicles"].GetListValue().GetValues())
	assert.Len(t, snap.GetFields()["intersections"].GetListValue().GetValues(), 6)
}

func TestInvalidConfig(t *testing.T) {
	c := testConfig()
	c.Traffic.SpacePolicy = "closest"
	_, err := task.NewContext("test", c, nil, false)
	assert.Error(t, err)

	c = testConfig()
	c.Lot.ExitColumn = c.Lot.EntranceColumn
	_, err = task.NewContext("test", c, nil, false)
	assert.Error(t, err)
}
