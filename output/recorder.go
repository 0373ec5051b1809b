package output

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Visit 一次完整的停车记录
type Visit struct {
	RunID     string `bson:"run_id"`
	VehicleID int32  `bson:"vehicle_id"`
	SpaceID   int32  `bson:"space_id"`

	ArrivalStep int32 `bson:"arrival_step"` // 到达入口排队的步
	EnterStep   int32 `bson:"enter_step"`   // 驶入停车场的步
	ParkStep    int32 `bson:"park_step"`    // 停好的步
	DepartStep  int32 `bson:"depart_step"`  // 开始倒出的步
	ExitStep    int32 `bson:"exit_step"`    // 驶出停车场的步

	DwellSeconds float64 `bson:"dwell_seconds"`
}

// Recorder 停车记录输出
type Recorder interface {
	// RunID 本次模拟的唯一标识
	RunID() string
	Record(v Visit)
	// Flush 将缓冲的记录写出
	Flush(ctx context.Context) error
	Close(ctx context.Context) error
}

// MemoryRecorder 仅保存在内存中的记录器，未配置数据库时使用
type MemoryRecorder struct {
	runID  string
	mtx    sync.Mutex
	visits []Visit
}

func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{runID: uuid.NewString()}
}

func (r *MemoryRecorder) RunID() string {
	return r.runID
}

func (r *MemoryRecorder) Record(v Visit) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	v.RunID = r.runID
	r.visits = append(r.visits, v)
}

// Visits 已记录的全部停车记录副本
func (r *MemoryRecorder) Visits() []Visit {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	return append([]Visit(nil), r.visits...)
}

func (r *MemoryRecorder) Flush(context.Context) error {
	return nil
}

func (r *MemoryRecorder) Close(context.Context) error {
	return nil
}
