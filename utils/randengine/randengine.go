// 随机数引擎，包装了golang.org/x/exp/rand，提供模拟中用到的几种分布
package randengine

import (
	"flag"

	"golang.org/x/exp/rand"
)

var (
	seedOffset = flag.Uint64("rand.seed_offset", 0, "seed offset") // 种子偏移量，用于调整随机数生成
)

// Engine 随机数引擎
// 功能：为到达间隔、停留时长与车位选择提供可复现的随机数
// 说明：非线程安全，只在模拟主循环中使用
type Engine struct {
	*rand.Rand // 底层随机数生成器
}

// New 创建随机数引擎
// 参数：seed-随机数种子，实际种子为seed加上-rand.seed_offset
func New(seed uint64) *Engine {
	return &Engine{Rand: rand.New(rand.NewSource(seed + *seedOffset))}
}

// PTrue 以概率p返回true
func (e *Engine) PTrue(p float64) bool {
	return e.Float64() < p
}

// Uniform [lo, hi)上的均匀分布，hi<=lo时返回lo
func (e *Engine) Uniform(lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + (hi-lo)*e.Float64()
}

// Exponential 速率为rate的指数分布，用于泊松到达过程的间隔
// 说明：rate<=0时panic
func (e *Engine) Exponential(rate float64) float64 {
	if rate <= 0 {
		panic("randengine: Exponential: non-positive rate")
	}
	return e.ExpFloat64() / rate
}

// Pick 在[0, n)中均匀选取下标，n<=0时返回-1
func (e *Engine) Pick(n int) int {
	if n <= 0 {
		return -1
	}
	return e.Intn(n)
}
