package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/tsinghua-fib-lab/parking-sim/entity/vehicle"
)

const namespace = "parking"

// Sample 每步结束时的模拟状态
type Sample struct {
	Step                  int32
	Stats                 vehicle.Stats
	Active                int
	Parked                int
	Waiting               int
	GateQueue             int
	OccupiedIntersections int
	OccupiedSpaces        int
}

// Metrics 模拟运行指标
// 说明：累计量以计数器发布，每步按与上一步的差值递增
type Metrics struct {
	spawned       prometheus.Counter
	parked        prometheus.Counter
	exited        prometheus.Counter
	routeFailures prometheus.Counter

	step           prometheus.Gauge
	active         prometheus.Gauge
	parkedNow      prometheus.Gauge
	waiting        prometheus.Gauge
	gateQueue      prometheus.Gauge
	intersections  prometheus.Gauge
	occupiedSpaces prometheus.Gauge

	last vehicle.Stats
}

// NewMetrics 创建指标并注册到reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	counter := func(name, help string) prometheus.Counter {
		return f.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: name, Help: help})
	}
	gauge := func(name, help string) prometheus.Gauge {
		return f.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: name, Help: help})
	}
	return &Metrics{
		spawned:        counter("vehicles_spawned_total", "Vehicles admitted through the entrance."),
		parked:         counter("vehicles_parked_total", "Completed parking maneuvers."),
		exited:         counter("vehicles_exited_total", "Vehicles that left through the exit."),
		routeFailures:  counter("route_failures_total", "Route planning failures."),
		step:           gauge("step", "Current simulation step."),
		active:         gauge("vehicles_active", "Entering and leaving vehicles."),
		parkedNow:      gauge("vehicles_parked_now", "Vehicles currently parked."),
		waiting:        gauge("vehicles_waiting", "Vehicles blocked in the last step."),
		gateQueue:      gauge("gate_queue", "Arrived vehicles waiting at the entrance."),
		intersections:  gauge("intersections_occupied", "Intersections currently held."),
		occupiedSpaces: gauge("spaces_occupied", "Spaces assigned to a vehicle."),
	}
}

// Observe 发布一步的状态
func (m *Metrics) Observe(s Sample) {
	m.spawned.Add(float64(s.Stats.Spawned - m.last.Spawned))
	m.parked.Add(float64(s.Stats.Parked - m.last.Parked))
	m.exited.Add(float64(s.Stats.Exited - m.last.Exited))
	m.routeFailures.Add(float64(s.Stats.RouteFailures - m.last.RouteFailures))
	m.last = s.Stats

	m.step.Set(float64(s.Step))
	m.active.Set(float64(s.Active))
	m.parkedNow.Set(float64(s.Parked))
	m.waiting.Set(float64(s.Waiting))
	m.gateQueue.Set(float64(s.GateQueue))
	m.intersections.Set(float64(s.OccupiedIntersections))
	m.occupiedSpaces.Set(float64(s.OccupiedSpaces))
}
