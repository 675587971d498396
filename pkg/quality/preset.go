// Package quality 实现动画背景的自适应画质控制
//
// 控制器每秒统计一次实际渲染帧率，按固定阈值在 high / medium / low
// 三档预设之间切换；启动时根据设备信息（屏幕宽度、逻辑核心数、内存）
// 选出初始预设。所有逻辑都是纯计算，不依赖 ebiten，便于用合成帧时间测试。
package quality

import (
	"fmt"
	"math"
	"strings"

	"gopkg.in/yaml.v3"
)

// Level 画质档位
type Level int

const (
	High Level = iota
	Medium
	Low
)

// Levels 按从高到低的顺序列出所有档位
var Levels = []Level{High, Medium, Low}

// String 返回档位的小写名称
func (l Level) String() string {
	switch l {
	case High:
		return "high"
	case Medium:
		return "medium"
	case Low:
		return "low"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// Valid 报告档位是否属于 {high, medium, low}
func (l Level) Valid() bool {
	return l == High || l == Medium || l == Low
}

// ParseLevel 解析档位名称（大小写不敏感，允许 "med" 简写）
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high":
		return High, nil
	case "medium", "med":
		return Medium, nil
	case "low":
		return Low, nil
	}
	return High, fmt.Errorf("unknown quality level %q", s)
}

// MarshalYAML 以名称形式序列化档位
func (l Level) MarshalYAML() (interface{}, error) {
	return l.String(), nil
}

// UnmarshalYAML 从名称反序列化档位
func (l *Level) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: quality level must be a scalar", value.Line)
	}
	parsed, err := ParseLevel(value.Value)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// Preset 一组整体切换的渲染参数
type Preset struct {
	Level                Level `yaml:"level"`
	ParticleCount        int   `yaml:"particleCount"`        // 粒子/线条数量
	EnablePostProcessing bool  `yaml:"enablePostProcessing"` // 是否启用后期处理（bloom、vignette、线条辉光）
	TargetFPS            int   `yaml:"targetFPS"`            // 目标帧率
}

// Thresholds 帧率切换阈值
//
// 三个阈值之间没有对称的回差区间：medium 在 fps > High 时直接升到 high，
// 而 high 只有在 fps < Medium 时才降回 medium。
type Thresholds struct {
	Low    float64 `yaml:"low"`    // 低于此值降到 low
	Medium float64 `yaml:"medium"` // 低于此值且当前为 high 时降到 medium
	High   float64 `yaml:"high"`   // 高于此值升到 high
}

// DefaultThresholds 返回 30 / 45 / 55 的默认阈值
func DefaultThresholds() Thresholds {
	return Thresholds{Low: 30, Medium: 45, High: 55}
}

// Validate 检查阈值是否递增且为正数
func (t Thresholds) Validate() error {
	if t.Low <= 0 {
		return fmt.Errorf("low threshold must be > 0, got %v", t.Low)
	}
	if t.Medium <= t.Low {
		return fmt.Errorf("medium threshold (%v) must be greater than low threshold (%v)", t.Medium, t.Low)
	}
	if t.High <= t.Medium {
		return fmt.Errorf("high threshold (%v) must be greater than medium threshold (%v)", t.High, t.Medium)
	}
	return nil
}

// Tuning 每次切换时应用的参数
type Tuning struct {
	LowScale            float64 `yaml:"lowScale"`            // 降到 low 时粒子数的缩放系数
	MediumScale         float64 `yaml:"mediumScale"`         // 降到 medium 时粒子数的缩放系数
	HighParticleCount   int     `yaml:"highParticleCount"`   // high 档的满额粒子数
	DeviceParticleCount int     `yaml:"deviceParticleCount"` // 低端设备初始粒子数
	LowTargetFPS        int     `yaml:"lowTargetFPS"`
	MediumTargetFPS     int     `yaml:"mediumTargetFPS"`
	HighTargetFPS       int     `yaml:"highTargetFPS"`

	// 设备判定阈值
	MobileWidth int     `yaml:"mobileWidth"` // 屏幕宽度小于此值视为移动设备
	LowEndCores int     `yaml:"lowEndCores"` // 逻辑核心数小于等于此值视为低端设备
	LowMemoryGB float64 `yaml:"lowMemoryGB"` // 内存（GB）小于等于此值视为内存受限
}

// DefaultTuning 返回默认切换参数
func DefaultTuning() Tuning {
	return Tuning{
		LowScale:            0.3,
		MediumScale:         0.6,
		HighParticleCount:   2000,
		DeviceParticleCount: 1000,
		LowTargetFPS:        30,
		MediumTargetFPS:     45,
		HighTargetFPS:       60,
		MobileWidth:         768,
		LowEndCores:         4,
		LowMemoryGB:         4,
	}
}

// Validate 检查切换参数是否合法
func (t Tuning) Validate() error {
	if t.LowScale <= 0 || t.LowScale > 1 {
		return fmt.Errorf("lowScale must be in (0, 1], got %v", t.LowScale)
	}
	if t.MediumScale <= 0 || t.MediumScale > 1 {
		return fmt.Errorf("mediumScale must be in (0, 1], got %v", t.MediumScale)
	}
	if t.HighParticleCount <= 0 {
		return fmt.Errorf("highParticleCount must be > 0, got %d", t.HighParticleCount)
	}
	if t.DeviceParticleCount <= 0 {
		return fmt.Errorf("deviceParticleCount must be > 0, got %d", t.DeviceParticleCount)
	}
	if t.LowTargetFPS <= 0 || t.MediumTargetFPS <= 0 || t.HighTargetFPS <= 0 {
		return fmt.Errorf("target fps values must be > 0, got %d/%d/%d",
			t.LowTargetFPS, t.MediumTargetFPS, t.HighTargetFPS)
	}
	return nil
}

// DefaultPreset 返回默认的 high 预设：2000 粒子、开启后期处理、60 fps
func DefaultPreset() Preset {
	return PresetFor(High, DefaultTuning())
}

// PresetFor 返回某个档位的标准预设
//
// medium / low 的粒子数以 high 满额为基数按系数缩放，
// 用于手动锁定档位；自动切换时的缩放基数是当前粒子数（见 Controller.Adjust）。
func PresetFor(level Level, t Tuning) Preset {
	switch level {
	case Medium:
		return Preset{
			Level:                Medium,
			ParticleCount:        scaleCount(t.HighParticleCount, t.MediumScale),
			EnablePostProcessing: true,
			TargetFPS:            t.MediumTargetFPS,
		}
	case Low:
		return Preset{
			Level:                Low,
			ParticleCount:        scaleCount(t.HighParticleCount, t.LowScale),
			EnablePostProcessing: false,
			TargetFPS:            t.LowTargetFPS,
		}
	default:
		return Preset{
			Level:                High,
			ParticleCount:        t.HighParticleCount,
			EnablePostProcessing: true,
			TargetFPS:            t.HighTargetFPS,
		}
	}
}

// scaleCount 按系数缩放粒子数并向下取整
func scaleCount(count int, scale float64) int {
	return int(math.Floor(float64(count) * scale))
}
