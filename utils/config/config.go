package config

import (
	"fmt"
	"time"
)

// Default 默认配置
// 说明：YAML解析在默认值之上进行，未出现的字段保留默认值
func Default() Config {
	return Config{
		Control: Control{
			Step: ControlStep{Start: 0, Total: 36000, IntervalMs: 100},
			Seed: 1,
		},
		Lot: Lot{
			Rows:           3,
			Columns:        3,
			SegmentLength:  30,
			AisleSpacing:   30,
			RoadWidth:      6,
			Margin:         12,
			SpaceWidth:     3,
			SpaceDepth:     5.5,
			ParallelLength: 6.5,
			ParallelDepth:  2.5,
			SpaceClearance: 7,
			ParallelRows:   []int{0},
			EntranceColumn: 0,
			ExitColumn:     2,
			EntranceDepth:  6,
		},
		Vehicle: Vehicle{
			Width:               2,
			Length:              4.5,
			Speed:               5,
			MinStoppingDistance: 1.5,
			TurningRunUp:        1.5,
			Buffer:              0.5,
			TurnSteps:           10,
			ParkSteps:           20,
			ReverseSteps:        20,
		},
		Traffic: Traffic{
			ArrivalRate: 0.05,
			MaxVehicles: 100,
			DwellMin:    60,
			DwellMax:    600,
			SpacePolicy: "random",
		},
		Output: Output{
			DB:  "parking",
			Col: "visits",
		},
	}
}

// RuntimeConfig 运行时配置
// 功能：存储原始配置与由其推导出的运行参数
type RuntimeConfig struct {
	All Config  // 全部配置
	C   Control // 全局控制配置

	StepDuration time.Duration // 每步的实际时长
	DT           float64       // 每步的模拟时长（秒）
}

// NewRuntimeConfig 校验配置并初始化运行时配置
// 参数：config-原始配置对象
// 返回：运行时配置，配置非法时返回错误
func NewRuntimeConfig(config Config) (*RuntimeConfig, error) {
	if config.Control.Step.IntervalMs <= 0 {
		return nil, fmt.Errorf("control.step.interval_ms must be positive, got %d", config.Control.Step.IntervalMs)
	}
	if config.Vehicle.Speed <= 0 {
		return nil, fmt.Errorf("vehicle.speed must be positive, got %v", config.Vehicle.Speed)
	}
	if config.Traffic.DwellMax < config.Traffic.DwellMin {
		return nil, fmt.Errorf("traffic.dwell_max %v < dwell_min %v", config.Traffic.DwellMax, config.Traffic.DwellMin)
	}
	switch config.Traffic.SpacePolicy {
	case "first", "random":
	default:
		return nil, fmt.Errorf("traffic.space_policy must be first or random, got %q", config.Traffic.SpacePolicy)
	}
	d := time.Duration(config.Control.Step.IntervalMs) * time.Millisecond
	return &RuntimeConfig{
		All:          config,
		C:            config.Control,
		StepDuration: d,
		DT:           d.Seconds(),
	}, nil
}
