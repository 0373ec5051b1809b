package clock

import (
	"fmt"

	"git.fiblab.net/sim/protos/v2/go/city/clock/v1/clockv1connect"
	"github.com/tsinghua-fib-lab/parking-sim/utils/config"
)

// Clock 模拟时钟
// 功能：管理固定步长的时间推进，提供时间格式化和RPC服务
// 说明：模拟区间为[START_STEP, END_STEP)，T=InternalStep*DT
type Clock struct {
	clockv1connect.UnimplementedClockServiceHandler

	DT         float64 // 每步模拟时长（秒）
	START_STEP int32   // 起始步
	END_STEP   int32   // 结束步

	T            float64 // 当前时间（秒）
	InternalStep int32   // 当前步数
}

// New 根据配置创建时钟
// 参数：stepConfig-控制步配置，dt-每步模拟时长（秒）
func New(stepConfig config.ControlStep, dt float64) *Clock {
	c := &Clock{
		DT:         dt,
		START_STEP: stepConfig.Start,
		END_STEP:   stepConfig.Start + stepConfig.Total,
	}
	c.Init()
	return c
}

// Init 重置到起始步
func (c *Clock) Init() {
	c.InternalStep = c.START_STEP
	c.T = float64(c.InternalStep) * c.DT
}

// Tick 前进一步
func (c *Clock) Tick() {
	c.InternalStep++
	c.T = float64(c.InternalStep) * c.DT
}

// Finished 下一步是否已到达结束步
func (c *Clock) Finished() bool {
	return c.InternalStep+1 >= c.END_STEP
}

// String 当前时间，格式为HH:MM:SS
func (c *Clock) String() string {
	h, m, s := c.GetHourMinuteSecond()
	return fmt.Sprintf("%02d:%02d:%02d", h, m, int(s))
}

// GetHourMinuteSecond 获取当前时间的小时、分钟、秒
// 返回：小时、分钟、秒（秒为浮点数，支持亚秒级精度）
func (c *Clock) GetHourMinuteSecond() (int, int, float64) {
	hour := int(c.T) / 3600
	minute := int(c.T) % 3600 / 60
	second := c.T - float64(hour*3600+minute*60)
	return hour, minute, second
}
