package task

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"git.fiblab.net/sim/syncer/v3"
	"github.com/tsinghua-fib-lab/parking-sim/clock"
	"github.com/tsinghua-fib-lab/parking-sim/entity/lot"
	"github.com/tsinghua-fib-lab/parking-sim/entity/occupancy"
	"github.com/tsinghua-fib-lab/parking-sim/entity/route"
	"github.com/tsinghua-fib-lab/parking-sim/entity/traffic"
	"github.com/tsinghua-fib-lab/parking-sim/entity/vehicle"
	"github.com/tsinghua-fib-lab/parking-sim/monitor"
	"github.com/tsinghua-fib-lab/parking-sim/output"
	"github.com/tsinghua-fib-lab/parking-sim/utils/config"
	"github.com/tsinghua-fib-lab/parking-sim/utils/input"
	"github.com/tsinghua-fib-lab/parking-sim/utils/randengine"
)

const (
	recorderBatchSize = 100
	closeTimeout      = 10 * time.Second
)

// Context 模拟任务上下文
// 功能：持有一次模拟的全部组件，按依赖顺序构建并注入，不使用全局变量
// 说明：路网、规划器、协调器只被主循环访问；监控服务只读取每步发布的快照
type Context struct {

	// 任务名
	job string
	// 关闭指令
	closed    atomic.Bool
	closeOnce sync.Once

	// 时钟
	clock *clock.Clock

	// 辅助程序，处理与syncer的步进同步并提供RPC服务，为nil时只能用Step单步运行
	sidecar *syncer.Sidecar
	// sidecar close channel
	sidecarCloseCh chan struct{}
	serving        bool

	// 运行时配置
	runtimeConfig *config.RuntimeConfig
	// 用于初始化的输入
	initRes *input.Input

	rand           *randengine.Engine
	model          *occupancy.Model
	network        *lot.Network
	planner        *route.Planner
	coordinator    *traffic.Coordinator
	vehicleManager *vehicle.Manager

	recorder       output.Recorder
	recorderCancel context.CancelFunc
	monitor        *monitor.Server
}

// NewContext 创建模拟任务上下文
// 参数：
//   - job: 任务名称
//   - c: 配置对象
//   - sidecar: sidecar实例，为nil时不注册RPC
//   - startSidecarServe: 是否启动sidecar服务
//
// 返回：Context；配置、布局或路网非法时返回错误
// 算法说明：
// 1. 校验配置，创建时钟
// 2. 加载布局，以占用模型计算路口区域并构建路网
// 3. 创建规划器、到达计划、车辆管理器与交通协调器
// 4. 创建记录器与监控服务
// 5. 注册RPC服务并启动sidecar
func NewContext(job string, c config.Config, sidecar *syncer.Sidecar, startSidecarServe bool) (*Context, error) {
	rc, err := config.NewRuntimeConfig(c)
	if err != nil {
		return nil, err
	}
	ctx := &Context{
		job:            job,
		sidecar:        sidecar,
		sidecarCloseCh: make(chan struct{}),
		runtimeConfig:  rc,
	}
	ctx.clock = clock.New(c.Control.Step, rc.DT)

	if ctx.initRes, err = input.Init(c); err != nil {
		return nil, err
	}
	ctx.model = occupancy.New(occupancy.Params{
		RoadWidth:           c.Lot.RoadWidth,
		MinStoppingDistance: c.Vehicle.MinStoppingDistance,
		TurningRunUp:        c.Vehicle.TurningRunUp,
		Buffer:              c.Vehicle.Buffer,
	})
	if ctx.network, err = lot.NewNetwork(ctx.initRes.Layout, ctx.model); err != nil {
		return nil, fmt.Errorf("build network from %s: %w", ctx.initRes.Source, err)
	}
	ctx.planner = route.New(ctx.network)
	ctx.rand = randengine.New(c.Control.Seed)
	schedule := vehicle.NewSchedule(c.Traffic, c.Control.Step, rc.DT, ctx.rand)
	ctx.vehicleManager = vehicle.NewManager(ctx, schedule)
	ctx.coordinator = traffic.New(ctx.network, ctx.vehicleManager)

	if c.Output.URI != "" {
		mongo := output.NewMongoRecorder(c.Output.URI, c.Output.DB, c.Output.Col, recorderBatchSize)
		var runCtx context.Context
		runCtx, ctx.recorderCancel = context.WithCancel(context.Background())
		go mongo.Run(runCtx)
		ctx.recorder = mongo
	} else {
		ctx.recorder = output.NewMemoryRecorder()
	}
	if c.Monitor.Listen != "" {
		ctx.monitor = monitor.NewServer(c.Monitor.Listen)
	}

	if sidecar != nil {
		ctx.clock.Register(sidecar)
		// sidecar协程，用于提供RPC服务
		if startSidecarServe {
			ctx.serving = true
			go func() {
				err := ctx.sidecar.Serve()
				if err != nil {
					log.Panicf("failed to serve: %v", err)
				}
				ctx.sidecarCloseCh <- struct{}{}
			}()
		}
	}
	return ctx, nil
}

func (ctx *Context) Job() string {
	return ctx.job
}

func (ctx *Context) Clock() *clock.Clock {
	return ctx.clock
}

func (ctx *Context) RuntimeConfig() *config.RuntimeConfig {
	return ctx.runtimeConfig
}

func (ctx *Context) Network() *lot.Network {
	return ctx.network
}

func (ctx *Context) Planner() *route.Planner {
	return ctx.planner
}

func (ctx *Context) Occupancy() *occupancy.Model {
	return ctx.model
}

func (ctx *Context) Coordinator() *traffic.Coordinator {
	return ctx.coordinator
}

func (ctx *Context) VehicleManager() *vehicle.Manager {
	return ctx.vehicleManager
}

func (ctx *Context) Recorder() output.Recorder {
	return ctx.recorder
}

func (ctx *Context) Rand() *randengine.Engine {
	return ctx.rand
}

// Init 重置时钟并启动监控服务
func (ctx *Context) Init() {
	ctx.clock.Init()
	log.Infof("job %s: %d segments, %d intersections, %d spaces, %d arrivals pending",
		ctx.job,
		len(ctx.network.Segments()),
		len(ctx.network.Intersections()),
		ctx.network.Spaces().Len(),
		ctx.vehicleManager.Pending(),
	)
	if ctx.monitor != nil {
		go func() {
			if err := ctx.monitor.Start(); err != nil {
				log.Errorf("monitor: %v", err)
			}
		}()
	}
}

// Stop 请求主循环在当前步结束后退出
func (ctx *Context) Stop() {
	ctx.closed.Store(true)
}

// Close 写出记录、关闭监控与sidecar，可重复调用
func (ctx *Context) Close() {
	ctx.closed.Store(true)
	ctx.closeOnce.Do(func() {
		c, cancel := context.WithTimeout(context.Background(), closeTimeout)
		defer cancel()
		if ctx.recorderCancel != nil {
			ctx.recorderCancel()
		}
		if err := ctx.recorder.Close(c); err != nil {
			log.Errorf("close recorder: %v", err)
		}
		if ctx.monitor != nil {
			if err := ctx.monitor.Shutdown(c); err != nil {
				log.Errorf("close monitor: %v", err)
			}
		}
		if ctx.serving {
			ctx.sidecar.Close()
			// wait for graceful stop
			<-ctx.sidecarCloseCh
		}
	})
}
