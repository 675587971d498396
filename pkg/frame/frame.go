// Package frame 提供显式的逐帧调度抽象
//
// 宿主（ebiten 的 Draw、测试里的合成时钟、无界面运行时的 time.Ticker）
// 负责发出"下一帧"通知，回调通过 Request 注册并拿到可取消的 Handle，
// 而不是在回调里递归地重新调度自己。这样拆除和测试都是确定性的。
package frame

import "time"

// Callback 帧回调，now 为单调时钟读数
type Callback func(now time.Duration)

// Handle 已注册回调的取消句柄
type Handle interface {
	// Cancel 停止投递帧通知，可重复调用
	Cancel()
	// Done 在回调停止后关闭
	Done() <-chan struct{}
}

// Clock 单调高精度时钟
type Clock interface {
	Now() time.Duration
}

// MonotonicClock 以创建时刻为零点的单调时钟
type MonotonicClock struct {
	start time.Time
}

// NewMonotonicClock 创建从当前时刻开始计时的时钟
func NewMonotonicClock() *MonotonicClock {
	return &MonotonicClock{start: time.Now()}
}

// Now 返回自创建以来经过的时间（time.Since 使用单调时钟读数）
func (c *MonotonicClock) Now() time.Duration {
	return time.Since(c.start)
}

// ManualClock 手动推进的时钟，供测试和回放使用
type ManualClock struct {
	now time.Duration
}

// Now 返回当前读数
func (c *ManualClock) Now() time.Duration {
	return c.now
}

// Advance 推进时钟并返回新的读数
func (c *ManualClock) Advance(d time.Duration) time.Duration {
	c.now += d
	return c.now
}

// Set 将时钟设置为指定读数
func (c *ManualClock) Set(now time.Duration) {
	c.now = now
}
