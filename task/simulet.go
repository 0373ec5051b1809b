package task

import (
	"flag"
	"time"

	"github.com/tsinghua-fib-lab/parking-sim/monitor"
)

const (
	SelfName = "parking" // 本程序在模拟任务集群中的名字
)

var (
	heartBeatInterval = flag.Int("log.heartbeat_interval", 100, "心跳日志间隔步数")
)

// prepare 准备阶段，每步执行一次
// 算法说明：
// 1. 更新时钟
// 2. 心跳日志
// 3. 到期的到达进入入口队列，入口空闲时放行一辆车
func (ctx *Context) prepare() {
	ctx.clock.Tick()

	if ctx.clock.InternalStep%int32(*heartBeatInterval) == 0 {
		hour, minute, second := ctx.clock.GetHourMinuteSecond()
		stats := ctx.vehicleManager.Stats()
		log.Infof(
			"STEP: %d(%d:%d:%.2f) active=%d parked=%d exited=%d queue=%d",
			ctx.clock.InternalStep,
			hour, minute, second,
			len(ctx.vehicleManager.ActiveVehicles()),
			len(ctx.vehicleManager.Parked()),
			stats.Exited,
			ctx.vehicleManager.GateQueue(),
		)
	}

	ctx.vehicleManager.Prepare()
}

// update 更新阶段，每步执行一次
// 说明：车辆按驶离中、驶入中、停放中的顺序依次行动，不并行
func (ctx *Context) update() {
	ctx.vehicleManager.Update(ctx.clock.DT)
}

// publish 发布指标与快照
func (ctx *Context) publish() {
	if ctx.monitor == nil {
		return
	}
	vm := ctx.vehicleManager
	ctx.monitor.Metrics().Observe(monitor.Sample{
		Step:                  ctx.clock.InternalStep,
		Stats:                 vm.Stats(),
		Active:                len(vm.ActiveVehicles()),
		Parked:                len(vm.Parked()),
		Waiting:               vm.Waiting(),
		GateQueue:             vm.GateQueue(),
		OccupiedIntersections: len(ctx.network.Junctions().Occupied()),
		OccupiedSpaces:        ctx.network.Spaces().Occupied(),
	})
	snap, err := ctx.Snapshot()
	if err != nil {
		log.Errorf("step %d: build snapshot: %v", ctx.clock.InternalStep, err)
		return
	}
	ctx.monitor.Publish(snap)
}

// Step 不经过sidecar执行一步
func (ctx *Context) Step() {
	ctx.prepare()
	ctx.update()
	ctx.publish()
}

// Run 运行
func (ctx *Context) Run() {
	// 初始化
	ctx.Init()
	// init syncer
	ctx.sidecar.Step(false)
	var tick <-chan time.Time
	if ctx.runtimeConfig.C.Step.Realtime {
		ticker := time.NewTicker(ctx.runtimeConfig.StepDuration)
		defer ticker.Stop()
		tick = ticker.C
	}
	for {
		if tick != nil {
			<-tick
		}
		ctx.prepare()
		// 通知准备阶段完成
		log.Debugf("step %d: prepare complete and call NotifyStepReady", ctx.clock.InternalStep)
		ctx.sidecar.NotifyStepReady()
		ctx.update()
		ctx.publish()
		log.Debugf("step %d: update complete", ctx.clock.InternalStep)
		close := ctx.sidecar.Step(ctx.clock.Finished())
		if close || ctx.closed.Load() {
			break
		}
	}
	log.Infof("engine complete")
	ctx.Close()
}
