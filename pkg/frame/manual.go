package frame

import (
	"log"
	"time"
)

// subscription Manual 上的一个回调注册
type subscription struct {
	cb        Callback
	done      chan struct{}
	cancelled bool
}

func (s *subscription) Cancel() {
	if s.cancelled {
		return
	}
	s.cancelled = true
	close(s.done)
}

func (s *subscription) Done() <-chan struct{} {
	return s.done
}

// Manual 由宿主显式驱动的帧调度器
//
// 宿主每帧调用一次 Tick（ebiten 在 Draw 中调用，测试中注入合成时间），
// 所有已注册且未取消的回调按注册顺序各执行一次。
// 可见性：Hide 之后 Tick 不再投递，Show 时调用恢复钩子（通常用于重置采样窗口）。
// Manual 不是并发安全的，只能在宿主的帧循环里使用。
type Manual struct {
	subs     []*subscription
	hidden   bool
	onResume []func(now time.Duration)
}

// NewManual 创建手动驱动的调度器
func NewManual() *Manual {
	return &Manual{}
}

// Request 注册一个持续的帧回调，返回其取消句柄
func (m *Manual) Request(cb Callback) Handle {
	s := &subscription{cb: cb, done: make(chan struct{})}
	m.subs = append(m.subs, s)
	return s
}

// Tick 投递一帧
//
// 返回：
//   - int: 本帧实际执行的回调数量；隐藏时为 0
func (m *Manual) Tick(now time.Duration) int {
	if m.hidden {
		return 0
	}

	m.prune()
	invoked := 0
	// 遍历副本：回调中可能注册新回调，或经 Pending 触发 prune 原地压缩 m.subs
	subs := append([]*subscription(nil), m.subs...)
	for _, s := range subs {
		if s.cancelled {
			continue
		}
		s.cb(now)
		invoked++
	}
	return invoked
}

// Hide 暂停投递（窗口失焦或最小化时调用）
func (m *Manual) Hide() {
	if m.hidden {
		return
	}
	m.hidden = true
	log.Printf("[Frame] Hidden, frame delivery paused")
}

// Show 恢复投递并调用所有恢复钩子
func (m *Manual) Show(now time.Duration) {
	if !m.hidden {
		return
	}
	m.hidden = false
	log.Printf("[Frame] Visible again at %v, resuming", now)
	for _, fn := range m.onResume {
		fn(now)
	}
}

// Hidden 报告当前是否处于隐藏状态
func (m *Manual) Hidden() bool {
	return m.hidden
}

// OnResume 注册从隐藏状态恢复时的钩子
func (m *Manual) OnResume(fn func(now time.Duration)) {
	m.onResume = append(m.onResume, fn)
}

// Pending 返回尚未取消的回调数量
func (m *Manual) Pending() int {
	m.prune()
	return len(m.subs)
}

// CancelAll 取消所有回调（宿主拆除时调用）
func (m *Manual) CancelAll() {
	for _, s := range m.subs {
		s.Cancel()
	}
	m.subs = nil
}

// prune 移除已取消的回调
func (m *Manual) prune() {
	live := m.subs[:0]
	for _, s := range m.subs {
		if !s.cancelled {
			live = append(live, s)
		}
	}
	for i := len(live); i < len(m.subs); i++ {
		m.subs[i] = nil
	}
	m.subs = live
}
