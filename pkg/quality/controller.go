package quality

import (
	"log"
	"math"
	"time"
)

// DefaultWindow 帧率采样窗口长度
const DefaultWindow = time.Second

// SampleWindow 当前采样窗口：已计数的帧数和窗口起点
type SampleWindow struct {
	Frames  int
	Start   time.Duration
	started bool
}

// ChangeFunc 预设切换回调，fps 为触发切换的测量值
type ChangeFunc func(from, to Preset, fps int)

// Controller 自适应画质控制器
//
// 只在单个帧回调链中使用（ebiten 的 Draw 或 frame.Manual 的 Tick），
// 预设的写入和读取发生在同一个调度器上，因此不加锁。
type Controller struct {
	preset     Preset
	thresholds Thresholds
	tuning     Tuning
	windowLen  time.Duration
	window     SampleWindow
	onChange   ChangeFunc

	lastFPS     int
	measured    bool
	transitions int
	pinned      bool
}

// Option 控制器配置项
type Option func(*Controller)

// WithThresholds 覆盖默认的 30/45/55 阈值
func WithThresholds(t Thresholds) Option {
	return func(c *Controller) { c.thresholds = t }
}

// WithTuning 覆盖默认的切换参数
func WithTuning(t Tuning) Option {
	return func(c *Controller) { c.tuning = t }
}

// WithWindow 覆盖采样窗口长度，非正数时保持 1s
func WithWindow(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.windowLen = d
		}
	}
}

// WithOnChange 注册预设切换回调
func WithOnChange(fn ChangeFunc) Option {
	return func(c *Controller) { c.onChange = fn }
}

// NewController 创建控制器
//
// 参数：
//   - initial: 初始预设，通常来自 InitialPresetFromDevice
//   - opts: 阈值、切换参数、窗口长度、切换回调
func NewController(initial Preset, opts ...Option) *Controller {
	c := &Controller{
		preset:     initial,
		thresholds: DefaultThresholds(),
		tuning:     DefaultTuning(),
		windowLen:  DefaultWindow,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Preset 返回当前预设，渲染器每帧读取一次
func (c *Controller) Preset() Preset {
	return c.preset
}

// FPS 返回最近一次完成测量的帧率；尚未测量时返回 0
func (c *Controller) FPS() int {
	return c.lastFPS
}

// Measured 报告是否已经完成过至少一个采样窗口
func (c *Controller) Measured() bool {
	return c.measured
}

// Transitions 返回预设切换的累计次数
func (c *Controller) Transitions() int {
	return c.transitions
}

// Window 返回当前采样窗口的快照
func (c *Controller) Window() SampleWindow {
	return c.window
}

// Thresholds 返回当前阈值
func (c *Controller) Thresholds() Thresholds {
	return c.thresholds
}

// Tuning 返回当前切换参数
func (c *Controller) Tuning() Tuning {
	return c.tuning
}

// Reconfigure 替换阈值和切换参数（配置热加载时调用），当前预设和采样窗口保持不变
func (c *Controller) Reconfigure(th Thresholds, t Tuning) {
	c.thresholds = th
	c.tuning = t
	log.Printf("[Controller] Reconfigured: thresholds=%.0f/%.0f/%.0f", th.Low, th.Medium, th.High)
}

// SampleFrame 每个动画帧调用一次
//
// 第一次调用只确定窗口起点。之后每帧计数加一；当距窗口起点已过去
// 至少一个窗口长度时，计算 fps = round(frames * 1000 / elapsedMs)，
// 重置窗口并执行切换规则。
//
// 返回：
//   - fps: 本帧完成测量时的帧率
//   - measured: 本帧是否完成了一次测量
func (c *Controller) SampleFrame(now time.Duration) (fps int, measured bool) {
	if !c.window.started {
		c.window = SampleWindow{Start: now, started: true}
		return 0, false
	}

	c.window.Frames++
	elapsed := now - c.window.Start
	if elapsed < c.windowLen {
		return 0, false
	}

	elapsedMs := float64(elapsed) / float64(time.Millisecond)
	fps = int(math.Round(float64(c.window.Frames) * 1000 / elapsedMs))
	c.window = SampleWindow{Start: now, started: true}
	c.lastFPS = fps
	c.measured = true

	c.Adjust(fps)
	return fps, true
}

// Reset 丢弃未完成的采样窗口
//
// 动画从隐藏状态恢复时调用，下一帧重新确定窗口起点，
// 避免把暂停期间的长间隔算进帧率。
func (c *Controller) Reset() {
	c.window = SampleWindow{}
}

// Adjust 按测得的帧率执行一次切换规则，每次最多触发一个分支
//
//   - fps < Low 且当前不是 low：降到 low，粒子数 ×LowScale，关闭后期处理
//   - fps < Medium 且当前是 high：降到 medium，粒子数 ×MediumScale
//   - fps > High 且当前不是 high：直接升到 high，恢复满额粒子和后期处理
//
// 锁定档位时不做任何切换。返回预设是否发生变化。
func (c *Controller) Adjust(fps int) bool {
	if c.pinned {
		return false
	}

	f := float64(fps)
	prev := c.preset
	next := prev

	switch {
	case f < c.thresholds.Low && prev.Level != Low:
		next = Preset{
			Level:                Low,
			ParticleCount:        scaleCount(prev.ParticleCount, c.tuning.LowScale),
			EnablePostProcessing: false,
			TargetFPS:            c.tuning.LowTargetFPS,
		}
	case f < c.thresholds.Medium && prev.Level == High:
		next = Preset{
			Level:                Medium,
			ParticleCount:        scaleCount(prev.ParticleCount, c.tuning.MediumScale),
			EnablePostProcessing: true,
			TargetFPS:            c.tuning.MediumTargetFPS,
		}
	case f > c.thresholds.High && prev.Level != High:
		next = PresetFor(High, c.tuning)
	default:
		return false
	}

	c.setPreset(prev, next, fps)
	return true
}

// Pin 手动锁定档位：立即切换到该档位的标准预设，之后只测量不切换
func (c *Controller) Pin(level Level) {
	prev := c.preset
	c.pinned = true
	next := PresetFor(level, c.tuning)
	if next != prev {
		c.setPreset(prev, next, c.lastFPS)
	}
	log.Printf("[Controller] Pinned to %s", level)
}

// Unpin 恢复自动切换，当前预设保持不变，等待下一个窗口的测量结果
func (c *Controller) Unpin() {
	c.pinned = false
	log.Printf("[Controller] Adaptive quality resumed at %s", c.preset.Level)
}

// Pinned 报告档位是否被手动锁定
func (c *Controller) Pinned() bool {
	return c.pinned
}

func (c *Controller) setPreset(prev, next Preset, fps int) {
	c.preset = next
	c.transitions++
	log.Printf("[Controller] %s -> %s (fps=%d, particles %d -> %d, post=%v)",
		prev.Level, next.Level, fps, prev.ParticleCount, next.ParticleCount, next.EnablePostProcessing)
	if c.onChange != nil {
		c.onChange(prev, next, fps)
	}
}
