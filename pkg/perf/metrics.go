// Package perf 提供性能面板：帧率分级、设备分类、内存占用和文本报告
package perf

import (
	"fmt"
	"image/color"
	"runtime"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/decker502/backdrop/pkg/config"
	"github.com/decker502/backdrop/pkg/quality"
)

// DeviceClass 按视口宽度划分的设备类型
type DeviceClass string

const (
	DeviceMobile  DeviceClass = "mobile"
	DeviceTablet  DeviceClass = "tablet"
	DeviceDesktop DeviceClass = "desktop"
)

// ClassifyDevice 宽度小于 mobileWidth 为手机，小于 tabletWidth 为平板，其余为桌面
// 宽度未知（0）时按桌面处理
func ClassifyDevice(width, mobileWidth, tabletWidth int) DeviceClass {
	switch {
	case width <= 0:
		return DeviceDesktop
	case width < mobileWidth:
		return DeviceMobile
	case width < tabletWidth:
		return DeviceTablet
	default:
		return DeviceDesktop
	}
}

// Tier 帧率分级
type Tier int

const (
	TierGood Tier = iota // >= 55
	TierFair             // >= 30
	TierPoor
)

// FPSTier 返回帧率分级
func FPSTier(fps int) Tier {
	switch {
	case fps >= 55:
		return TierGood
	case fps >= 30:
		return TierFair
	default:
		return TierPoor
	}
}

func (t Tier) String() string {
	switch t {
	case TierGood:
		return "good"
	case TierFair:
		return "fair"
	default:
		return "poor"
	}
}

// Color 分级对应的显示颜色（绿/黄/红）
func (t Tier) Color() color.RGBA {
	switch t {
	case TierGood:
		return color.RGBA{R: 74, G: 222, B: 128, A: 255}
	case TierFair:
		return color.RGBA{R: 250, G: 204, B: 21, A: 255}
	default:
		return color.RGBA{R: 248, G: 113, B: 113, A: 255}
	}
}

// Metrics 面板显示的一次采样
type Metrics struct {
	FPS            int // 已截断到 MaxDisplayFPS
	MemoryMB       int
	Device         DeviceClass
	Connection     string // slow | fast，由省流量信号推断
	Level          quality.Level
	ParticleCount  int
	PostProcessing bool
	Pinned         bool
}

// Monitor 汇总控制器的测量结果供面板显示
//
// 不自己计帧：每个采样窗口结束时由调用方把控制器测得的 fps 传给 Observe，
// 面板和控制器看到的是同一个数字。
type Monitor struct {
	maxFPS      int
	mobileWidth int
	tabletWidth int
	metrics     Metrics
	observed    bool

	// readMemory 返回当前堆占用（字节），测试中替换
	readMemory func() uint64
}

// NewMonitor 创建性能监视器
//
// 参数：
//   - cfg: 面板配置（平板宽度、帧率显示上限）
//   - mobileWidth: 手机宽度阈值，与画质控制器共用
func NewMonitor(cfg config.MonitorConfig, mobileWidth int) *Monitor {
	return &Monitor{
		maxFPS:      cfg.MaxDisplayFPS,
		mobileWidth: mobileWidth,
		tabletWidth: cfg.TabletWidth,
		metrics:     Metrics{FPS: cfg.MaxDisplayFPS, Device: DeviceDesktop, Connection: "fast"},
		readMemory:  heapAlloc,
	}
}

// Reconfigure 配置热加载后更新分类阈值和帧率上限
func (m *Monitor) Reconfigure(cfg config.MonitorConfig, mobileWidth int) {
	m.maxFPS = cfg.MaxDisplayFPS
	m.mobileWidth = mobileWidth
	m.tabletWidth = cfg.TabletWidth
}

// heapAlloc 读取 Go 堆占用
func heapAlloc() uint64 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return ms.HeapAlloc
}

// Observe 记录一个采样窗口的结果
//
// 参数：
//   - fps: 控制器本窗口测得的帧率
//   - preset: 调整之后的当前预设
//   - pinned: 是否为手动锁定档位
//   - d: 设备信息（宽度和省流量信号）
func (m *Monitor) Observe(fps int, preset quality.Preset, pinned bool, d quality.DeviceProfile) Metrics {
	if m.maxFPS > 0 && fps > m.maxFPS {
		fps = m.maxFPS
	}
	conn := "fast"
	if d.SaveData {
		conn = "slow"
	}
	m.metrics = Metrics{
		FPS:            fps,
		MemoryMB:       int((m.readMemory() + 512*1024) / (1024 * 1024)),
		Device:         ClassifyDevice(d.ScreenWidth, m.mobileWidth, m.tabletWidth),
		Connection:     conn,
		Level:          preset.Level,
		ParticleCount:  preset.ParticleCount,
		PostProcessing: preset.EnablePostProcessing,
		Pinned:         pinned,
	}
	m.observed = true
	return m.metrics
}

// Metrics 返回最近一次采样；尚未采样时返回初始值
func (m *Monitor) Metrics() Metrics {
	return m.metrics
}

// Observed 报告是否已有真实采样
func (m *Monitor) Observed() bool {
	return m.observed
}

// Lines 面板的逐行文本
func (m Metrics) Lines() []string {
	mode := "auto"
	if m.Pinned {
		mode = "manual"
	}
	post := "off"
	if m.PostProcessing {
		post = "on"
	}
	return []string{
		fmt.Sprintf("FPS        %d", m.FPS),
		fmt.Sprintf("Memory     %dMB", m.MemoryMB),
		fmt.Sprintf("Device     %s", m.Device),
		fmt.Sprintf("Connection %s", m.Connection),
		fmt.Sprintf("Quality    %s (%s)", m.Level, mode),
		fmt.Sprintf("Particles  %d", m.ParticleCount),
		fmt.Sprintf("PostFX     %s", post),
	}
}

// Report 多行文本报告，用于复制到剪贴板
func (m *Monitor) Report() string {
	var b strings.Builder
	b.WriteString("Performance\n")
	for _, line := range m.metrics.Lines() {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "Tier       %s\n", FPSTier(m.metrics.FPS))
	return b.String()
}

// clipboardWrite 写入系统剪贴板，测试中替换
var clipboardWrite = clipboard.WriteAll

// CopyReport 把报告写入系统剪贴板
//
// 剪贴板不可用（无 xclip/xsel、移动端）时返回包装后的错误，调用方只记录日志。
func (m *Monitor) CopyReport() error {
	if clipboard.Unsupported {
		return fmt.Errorf("failed to copy performance report: clipboard unsupported on this platform")
	}
	if err := clipboardWrite(m.Report()); err != nil {
		return fmt.Errorf("failed to copy performance report: %w", err)
	}
	return nil
}
