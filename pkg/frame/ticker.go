package frame

import (
	"context"
	"sync"
	"time"
)

// tickerHandle Start 返回的取消句柄
type tickerHandle struct {
	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

func (h *tickerHandle) Cancel() {
	h.stopOnce.Do(func() { close(h.stopCh) })
}

func (h *tickerHandle) Done() <-chan struct{} {
	return h.doneCh
}

// RateInterval 将目标帧率换算为帧间隔，非正数时按 60fps 处理
func RateInterval(fps int) time.Duration {
	if fps <= 0 {
		fps = 60
	}
	return time.Second / time.Duration(fps)
}

// Start 在独立 goroutine 中按固定间隔投递帧通知，用于无界面运行
//
// 回调只在该 goroutine 中执行，与 Manual 一样保持单写者。
// Cancel 或 ctx 取消后 goroutine 退出并关闭 Done。
//
// 参数：
//   - ctx: 取消时停止投递
//   - interval: 帧间隔，见 RateInterval
//   - clock: 提供回调的 now 参数
//   - cb: 帧回调
func Start(ctx context.Context, interval time.Duration, clock Clock, cb Callback) Handle {
	if interval <= 0 {
		interval = RateInterval(0)
	}
	h := &tickerHandle{
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}

	go func() {
		defer close(h.doneCh)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-h.stopCh:
				return
			case <-ticker.C:
				// 取消和到期同时就绪时优先退出
				select {
				case <-h.stopCh:
					return
				default:
				}
				cb(clock.Now())
			}
		}
	}()

	return h
}
