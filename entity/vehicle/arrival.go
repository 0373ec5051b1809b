package vehicle

import (
	"github.com/tsinghua-fib-lab/parking-sim/utils/config"
	"github.com/tsinghua-fib-lab/parking-sim/utils/container"
	"github.com/tsinghua-fib-lab/parking-sim/utils/randengine"
)

// Schedule 车辆到达计划表
// 功能：按到达步从小到大给出车辆到达，同一步到达的车辆按加入顺序
type Schedule struct {
	queue *container.PriorityQueue[int32]
}

// NewSchedule 生成到达计划
// 参数：c-车流配置，step-模拟区间，dt-每步时长，rng-随机数引擎
// 算法说明：
// 1. 加入指定的到达步，忽略模拟区间之外的步
// 2. arrival_rate>0时按指数分布的间隔生成至多max_vehicles次随机到达
func NewSchedule(c config.Traffic, step config.ControlStep, dt float64, rng *randengine.Engine) *Schedule {
	s := &Schedule{queue: container.NewPriorityQueue[int32]()}
	end := step.Start + step.Total
	for _, a := range c.Arrivals {
		if a < step.Start || a >= end {
			log.Warnf("arrival step %d outside [%d,%d), ignored", a, step.Start, end)
			continue
		}
		s.queue.Push(a, float64(a))
	}
	if c.ArrivalRate > 0 {
		t := float64(step.Start) * dt
		for n := 0; n < c.MaxVehicles; n++ {
			t += rng.Exponential(c.ArrivalRate)
			a := int32(t / dt)
			if a >= end {
				break
			}
			s.queue.Push(a, float64(a))
		}
	}
	s.queue.Heapify()
	log.Infof("%d arrivals scheduled", s.queue.Len())
	return s
}

// Due 弹出到达步不晚于step的全部到达
func (s *Schedule) Due(step int32) []int32 {
	res := make([]int32, 0)
	for s.queue.Len() > 0 {
		if a, _ := s.queue.First(); a > step {
			break
		}
		a, _ := s.queue.HeapPop()
		res = append(res, a)
	}
	return res
}

// Len 尚未到达的车辆数
func (s *Schedule) Len() int {
	return s.queue.Len()
}
