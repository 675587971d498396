package frame

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestManual_TickInvokesRequested(t *testing.T) {
	m := NewManual()
	var got []time.Duration
	m.Request(func(now time.Duration) { got = append(got, now) })

	for i := 1; i <= 3; i++ {
		if n := m.Tick(time.Duration(i) * time.Millisecond); n != 1 {
			t.Fatalf("Tick %d invoked %d callbacks, want 1", i, n)
		}
	}
	if len(got) != 3 || got[2] != 3*time.Millisecond {
		t.Errorf("callback times = %v", got)
	}
}

func TestManual_CancelStopsDelivery(t *testing.T) {
	m := NewManual()
	calls := 0
	h := m.Request(func(time.Duration) { calls++ })

	m.Tick(0)
	h.Cancel()
	h.Cancel() // 重复取消不 panic

	select {
	case <-h.Done():
	default:
		t.Fatal("Done should be closed after Cancel")
	}

	m.Tick(time.Millisecond)
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if m.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", m.Pending())
	}
}

func TestManual_CancelInsideCallback(t *testing.T) {
	m := NewManual()
	calls := 0
	var h Handle
	h = m.Request(func(time.Duration) {
		calls++
		h.Cancel()
	})
	m.Tick(0)
	m.Tick(1)
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

// 回调中取消其他回调并查询 Pending 时，本帧其余回调仍然各执行一次
func TestManual_PendingInsideCallback(t *testing.T) {
	m := NewManual()
	var hb Handle
	calls := map[string]int{}
	m.Request(func(time.Duration) {
		calls["a"]++
		hb.Cancel()
		if n := m.Pending(); n != 2 {
			t.Errorf("Pending() inside callback = %d, want 2", n)
		}
	})
	hb = m.Request(func(time.Duration) { calls["b"]++ })
	m.Request(func(time.Duration) { calls["c"]++ })

	if n := m.Tick(0); n != 2 {
		t.Errorf("Tick invoked %d callbacks, want 2", n)
	}
	m.Tick(time.Millisecond)

	want := map[string]int{"a": 2, "c": 2}
	for name, n := range want {
		if calls[name] != n {
			t.Errorf("%s ran %d times, want %d", name, calls[name], n)
		}
	}
	if calls["b"] != 0 {
		t.Errorf("cancelled callback ran %d times", calls["b"])
	}
}

func TestManual_HideShow(t *testing.T) {
	m := NewManual()
	calls := 0
	m.Request(func(time.Duration) { calls++ })

	var resumedAt time.Duration = -1
	m.OnResume(func(now time.Duration) { resumedAt = now })

	m.Hide()
	if n := m.Tick(time.Second); n != 0 {
		t.Errorf("hidden Tick invoked %d callbacks", n)
	}
	if !m.Hidden() {
		t.Error("Hidden() = false after Hide")
	}

	m.Show(5 * time.Second)
	if resumedAt != 5*time.Second {
		t.Errorf("resume hook got %v, want 5s", resumedAt)
	}
	m.Tick(5 * time.Second)
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}

	// 未隐藏时 Show 不触发钩子
	resumedAt = -1
	m.Show(6 * time.Second)
	if resumedAt != -1 {
		t.Error("Show without Hide should not call resume hooks")
	}
}

func TestManual_CancelAll(t *testing.T) {
	m := NewManual()
	h1 := m.Request(func(time.Duration) {})
	h2 := m.Request(func(time.Duration) {})
	m.CancelAll()
	for i, h := range []Handle{h1, h2} {
		select {
		case <-h.Done():
		default:
			t.Errorf("handle %d not done after CancelAll", i)
		}
	}
	if n := m.Tick(0); n != 0 {
		t.Errorf("Tick after CancelAll invoked %d callbacks", n)
	}
}

func TestManualClock(t *testing.T) {
	c := &ManualClock{}
	c.Advance(16 * time.Millisecond)
	if got := c.Advance(16 * time.Millisecond); got != 32*time.Millisecond {
		t.Errorf("Advance = %v, want 32ms", got)
	}
	c.Set(time.Second)
	if c.Now() != time.Second {
		t.Errorf("Now = %v, want 1s", c.Now())
	}
}

func TestRateInterval(t *testing.T) {
	if got := RateInterval(50); got != 20*time.Millisecond {
		t.Errorf("RateInterval(50) = %v", got)
	}
	if got := RateInterval(0); got != time.Second/60 {
		t.Errorf("RateInterval(0) = %v", got)
	}
}

func TestStart_CancelNoLeak(t *testing.T) {
	defer goleak.VerifyNone(t)

	var calls atomic.Int32
	h := Start(context.Background(), time.Millisecond, NewMonotonicClock(), func(time.Duration) {
		calls.Add(1)
	})

	deadline := time.After(2 * time.Second)
	for calls.Load() < 3 {
		select {
		case <-deadline:
			t.Fatal("ticker did not deliver frames")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	h.Cancel()
	<-h.Done()

	after := calls.Load()
	time.Sleep(10 * time.Millisecond)
	if calls.Load() != after {
		t.Error("callback invoked after Done")
	}
}

func TestStart_ContextCancelNoLeak(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	h := Start(ctx, time.Millisecond, NewMonotonicClock(), func(time.Duration) {})
	cancel()

	select {
	case <-h.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("ticker goroutine did not exit after context cancel")
	}
	h.Cancel()
}
