package task

import (
	"github.com/tsinghua-fib-lab/parking-sim/monitor"
	"google.golang.org/protobuf/types/known/structpb"
)

// Snapshot 当前停车场的只读快照
func (ctx *Context) Snapshot() (*structpb.Struct, error) {
	return monitor.BuildSnapshot(ctx.clock.InternalStep, ctx.clock.T, ctx.network, ctx.model, ctx.vehicleManager)
}
