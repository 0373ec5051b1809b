package vehicle

import (
	"github.com/tsinghua-fib-lab/parking-sim/clock"
	"github.com/tsinghua-fib-lab/parking-sim/entity/lot"
	"github.com/tsinghua-fib-lab/parking-sim/entity/occupancy"
	"github.com/tsinghua-fib-lab/parking-sim/entity/route"
	"github.com/tsinghua-fib-lab/parking-sim/entity/traffic"
	"github.com/tsinghua-fib-lab/parking-sim/output"
	"github.com/tsinghua-fib-lab/parking-sim/utils/config"
	"github.com/tsinghua-fib-lab/parking-sim/utils/randengine"
)

// ITaskContext 车辆模块所需的任务上下文
type ITaskContext interface {
	Clock() *clock.Clock
	RuntimeConfig() *config.RuntimeConfig
	Network() *lot.Network
	Planner() *route.Planner
	Occupancy() *occupancy.Model
	Coordinator() *traffic.Coordinator
	Recorder() output.Recorder
	Rand() *randengine.Engine
}
