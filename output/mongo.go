package output

import (
	"context"
	"fmt"
	"sync"

	"git.fiblab.net/general/common/v2/mongoutil"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoRecorder 将停车记录批量写入MongoDB
// 功能：缓冲停车记录，缓冲满batchSize条或Flush时调用InsertMany写出
// 说明：Record在模拟主循环中调用，只做缓冲，不访问数据库
type MongoRecorder struct {
	runID     string
	client    *mongo.Client
	coll      *mongo.Collection
	batchSize int

	mtx    sync.Mutex
	buffer []Visit
	full   chan struct{} // 缓冲满时通知写出协程
}

// NewMongoRecorder 连接MongoDB并创建记录器
// 参数：uri-连接串，db-数据库，col-集合，batchSize-触发写出的缓冲条数
func NewMongoRecorder(uri, db, col string, batchSize int) *MongoRecorder {
	client := mongoutil.NewClient(uri)
	r := &MongoRecorder{
		runID:     uuid.NewString(),
		client:    client,
		coll:      client.Database(db).Collection(col),
		batchSize: max(batchSize, 1),
		full:      make(chan struct{}, 1),
	}
	log.Infof("recording visits to %s.%s, run id %s", db, col, r.runID)
	return r
}

func (r *MongoRecorder) RunID() string {
	return r.runID
}

func (r *MongoRecorder) Record(v Visit) {
	r.mtx.Lock()
	v.RunID = r.runID
	r.buffer = append(r.buffer, v)
	n := len(r.buffer)
	r.mtx.Unlock()
	if n >= r.batchSize {
		select {
		case r.full <- struct{}{}:
		default:
		}
	}
}

// Run 写出协程，缓冲满时写出，ctx结束时返回
func (r *MongoRecorder) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.full:
			if err := r.Flush(ctx); err != nil {
				log.Errorf("flush visits: %v", err)
			}
		}
	}
}

func (r *MongoRecorder) Flush(ctx context.Context) error {
	r.mtx.Lock()
	batch := r.buffer
	r.buffer = nil
	r.mtx.Unlock()
	if len(batch) == 0 {
		return nil
	}
	docs := lo.Map(batch, func(v Visit, _ int) any { return v })
	if _, err := r.coll.InsertMany(ctx, docs); err != nil {
		r.mtx.Lock()
		r.buffer = append(batch, r.buffer...)
		r.mtx.Unlock()
		return fmt.Errorf("insert %d visits: %w", len(batch), err)
	}
	log.Debugf("flushed %d visits", len(batch))
	return nil
}

// Close 写出剩余记录并断开连接
func (r *MongoRecorder) Close(ctx context.Context) error {
	err := r.Flush(ctx)
	if derr := r.client.Disconnect(ctx); derr != nil && err == nil {
		err = derr
	}
	return err
}
