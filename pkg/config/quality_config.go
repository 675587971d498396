package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/decker502/backdrop/pkg/embedded"
	"github.com/decker502/backdrop/pkg/quality"
	"gopkg.in/yaml.v3"
)

// QualityConfigPath 内嵌默认配置的路径
const QualityConfigPath = "data/quality.yaml"

// QualityConfig 自适应画质配置
//
// 配置文件位置: data/quality.yaml（内嵌），可通过 --config 指定外部文件覆盖。
// 外部文件只需写出要修改的字段，未出现的字段保持默认值，
// background.levels 和 shaders 的单个条目同样逐字段叠加。
type QualityConfig struct {
	// Thresholds 帧率阈值（低/中/高）
	Thresholds quality.Thresholds `yaml:"thresholds"`

	// WindowMs 采样窗口长度（毫秒）
	WindowMs int `yaml:"windowMs"`

	// Tuning 各档位的粒子数、目标帧率以及设备判定阈值
	Tuning quality.Tuning `yaml:"tuning"`

	// Background 线条背景档位表
	Background BackgroundConfig `yaml:"background"`

	// Shaders 着色器强度，key 为着色器名（aurora, nebula）
	Shaders ShaderTable `yaml:"shaders"`

	// PostProcessing 后期处理参数（low 档不启用）
	PostProcessing PostProcessConfig `yaml:"postProcessing"`

	// Monitor 性能面板配置
	Monitor MonitorConfig `yaml:"monitor"`
}

// BackgroundConfig 线条背景配置
type BackgroundConfig struct {
	// Default 未保存偏好时使用的档位
	Default quality.BackgroundLevel `yaml:"default"`

	// Levels 每个档位的参数
	Levels BackgroundTable `yaml:"levels"`
}

// BackgroundTable 背景档位表，外部文件中的条目逐字段叠加在已有条目上
type BackgroundTable map[quality.BackgroundLevel]quality.BackgroundSettings

// UnmarshalYAML 实现 yaml.Unmarshaler
func (t *BackgroundTable) UnmarshalYAML(value *yaml.Node) error {
	merged, err := mergeEntries(*t, value)
	if err != nil {
		return fmt.Errorf("background levels: %w", err)
	}
	*t = merged
	return nil
}

// ShaderTable 着色器强度表，合并规则同 BackgroundTable
type ShaderTable map[string]IntensityConfig

// UnmarshalYAML 实现 yaml.Unmarshaler
func (t *ShaderTable) UnmarshalYAML(value *yaml.Node) error {
	merged, err := mergeEntries(*t, value)
	if err != nil {
		return fmt.Errorf("shaders: %w", err)
	}
	*t = merged
	return nil
}

// mergeEntries 把 YAML 映射解码到 base 的副本上
//
// yaml.v3 会把映射的每个值解码到新的零值里，未写出的字段会变成 0。
// 这里先取出已有条目再解码，未写出的字段保持原值；新出现的 key 从零值开始。
func mergeEntries[K comparable, V any](base map[K]V, value *yaml.Node) (map[K]V, error) {
	var raw map[K]yaml.Node
	if err := value.Decode(&raw); err != nil {
		return nil, err
	}
	merged := make(map[K]V, len(base)+len(raw))
	for k, v := range base {
		merged[k] = v
	}
	for k, node := range raw {
		entry := merged[k]
		if err := node.Decode(&entry); err != nil {
			return nil, fmt.Errorf("%v: %w", k, err)
		}
		merged[k] = entry
	}
	return merged, nil
}

// IntensityConfig 着色器在每个画质档位下的强度
type IntensityConfig struct {
	High   float64 `yaml:"high"`
	Medium float64 `yaml:"medium"`
	Low    float64 `yaml:"low"`
}

// For 返回指定档位的强度
func (c IntensityConfig) For(level quality.Level) float64 {
	switch level {
	case quality.High:
		return c.High
	case quality.Medium:
		return c.Medium
	default:
		return c.Low
	}
}

// PostProcessParams 泛光与暗角参数
type PostProcessParams struct {
	Bloom            float64 `yaml:"bloom"`
	VignetteOffset   float64 `yaml:"vignetteOffset"`
	VignetteDarkness float64 `yaml:"vignetteDarkness"`
}

// PostProcessConfig 高/中档的后期处理参数
type PostProcessConfig struct {
	High   PostProcessParams `yaml:"high"`
	Medium PostProcessParams `yaml:"medium"`
}

// For 返回指定档位的后期参数，low 档返回 false
func (c PostProcessConfig) For(level quality.Level) (PostProcessParams, bool) {
	switch level {
	case quality.High:
		return c.High, true
	case quality.Medium:
		return c.Medium, true
	default:
		return PostProcessParams{}, false
	}
}

// MonitorConfig 性能面板配置
type MonitorConfig struct {
	// TabletWidth 小于该宽度（且不小于 MobileWidth）视为平板
	TabletWidth int `yaml:"tabletWidth"`

	// MaxDisplayFPS 面板显示的帧率上限
	MaxDisplayFPS int `yaml:"maxDisplayFPS"`
}

// DefaultQualityConfig 返回与 data/quality.yaml 一致的内置默认配置
func DefaultQualityConfig() *QualityConfig {
	return &QualityConfig{
		Thresholds: quality.DefaultThresholds(),
		WindowMs:   int(quality.DefaultWindow / time.Millisecond),
		Tuning:     quality.DefaultTuning(),
		Background: BackgroundConfig{
			Default: quality.BackgroundMed,
			Levels:  quality.DefaultBackgroundTable(),
		},
		Shaders: ShaderTable{
			ShaderAurora: {High: 1.0, Medium: 0.8, Low: 0.6},
			ShaderNebula: {High: 1.2, Medium: 1.0, Low: 0.8},
		},
		PostProcessing: PostProcessConfig{
			High:   PostProcessParams{Bloom: 0.2, VignetteOffset: 0.1, VignetteDarkness: 0.1},
			Medium: PostProcessParams{Bloom: 0.1, VignetteOffset: 0.15, VignetteDarkness: 0.05},
		},
		Monitor: MonitorConfig{
			TabletWidth:   1024,
			MaxDisplayFPS: 60,
		},
	}
}

// ParseQualityConfig 解析 YAML 格式的画质配置
//
// 解析结果叠加在 DefaultQualityConfig 之上，然后执行 Validate。
//
// 参数:
//   - data: YAML 内容
//
// 返回:
//   - *QualityConfig: 解析并验证后的配置
//   - error: 解析或验证失败时返回错误
func ParseQualityConfig(data []byte) (*QualityConfig, error) {
	cfg := DefaultQualityConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse quality config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid quality config: %w", err)
	}

	return cfg, nil
}

// LoadQualityConfig 从文件加载画质配置
//
// 参数:
//   - path: 配置文件路径（如 "data/quality.yaml"）
//
// 返回:
//   - *QualityConfig: 加载成功后的配置结构
//   - error: 读取、解析或验证失败时返回错误
func LoadQualityConfig(path string) (*QualityConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read quality config: %w", err)
	}
	return ParseQualityConfig(data)
}

// LoadEmbeddedQualityConfig 加载内嵌的 data/quality.yaml
func LoadEmbeddedQualityConfig() (*QualityConfig, error) {
	data, err := embedded.ReadFile(QualityConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded quality config: %w", err)
	}
	return ParseQualityConfig(data)
}

// ResolveQualityConfig 按优先级获取配置：外部文件 > 内嵌文件 > 内置默认值
//
// 任何一步失败都只记录日志并降级到下一步，永远返回可用的配置。
func ResolveQualityConfig(path string) *QualityConfig {
	if path != "" {
		cfg, err := LoadQualityConfig(path)
		if err == nil {
			log.Printf("[Config] Loaded quality config from %s", path)
			return cfg
		}
		log.Printf("[Config] Warning: %v, falling back to embedded defaults", err)
	}

	if embedded.IsInitialized() {
		cfg, err := LoadEmbeddedQualityConfig()
		if err == nil {
			return cfg
		}
		log.Printf("[Config] Warning: %v, using built-in defaults", err)
	}

	return DefaultQualityConfig()
}

// Validate 验证配置有效性
//
// 检查：
//   - 阈值递增且为正
//   - 采样窗口为正
//   - Tuning 的比例在 (0,1]、数量和帧率为正
//   - 背景档位表覆盖全部四个档位，默认档位合法
//   - 着色器强度和后期参数非负
func (c *QualityConfig) Validate() error {
	if err := c.Thresholds.Validate(); err != nil {
		return err
	}
	if c.WindowMs <= 0 {
		return fmt.Errorf("windowMs must be positive, got %d", c.WindowMs)
	}
	if err := c.Tuning.Validate(); err != nil {
		return err
	}

	if !isBackgroundLevel(c.Background.Default) {
		return fmt.Errorf("background default %q is not one of off|low|med|high", c.Background.Default)
	}
	for _, level := range quality.BackgroundLevels {
		s, ok := c.Background.Levels[level]
		if !ok {
			return fmt.Errorf("background level %q missing", level)
		}
		if s.Lines < 0 || s.TargetFPS < 0 {
			return fmt.Errorf("background level %q: lines and targetFPS must be >= 0", level)
		}
		if s.AlphaScale < 0 || s.AlphaScale > 1 {
			return fmt.Errorf("background level %q: alphaScale %.2f out of [0,1]", level, s.AlphaScale)
		}
		if level != quality.BackgroundOff && s.Lines > 0 && s.TargetFPS == 0 {
			return fmt.Errorf("background level %q draws %d lines with targetFPS 0", level, s.Lines)
		}
	}

	for name, in := range c.Shaders {
		if in.High < 0 || in.Medium < 0 || in.Low < 0 {
			return fmt.Errorf("shader %q: intensity must be >= 0", name)
		}
	}

	for _, p := range []PostProcessParams{c.PostProcessing.High, c.PostProcessing.Medium} {
		if p.Bloom < 0 || p.VignetteOffset < 0 || p.VignetteDarkness < 0 {
			return fmt.Errorf("postProcessing values must be >= 0")
		}
	}

	if c.Monitor.TabletWidth < c.Tuning.MobileWidth {
		return fmt.Errorf("monitor tabletWidth(%d) < tuning mobileWidth(%d)",
			c.Monitor.TabletWidth, c.Tuning.MobileWidth)
	}
	if c.Monitor.MaxDisplayFPS <= 0 {
		return fmt.Errorf("monitor maxDisplayFPS must be positive, got %d", c.Monitor.MaxDisplayFPS)
	}

	return nil
}

// Window 返回采样窗口长度
func (c *QualityConfig) Window() time.Duration {
	return time.Duration(c.WindowMs) * time.Millisecond
}

// BackgroundSettings 返回指定档位的参数，未配置时返回 off 档
func (c *QualityConfig) BackgroundSettings(level quality.BackgroundLevel) quality.BackgroundSettings {
	return c.Background.Levels[level]
}

// ShaderIntensity 返回着色器在指定档位下的强度，未配置的着色器为 1
func (c *QualityConfig) ShaderIntensity(shader string, level quality.Level) float64 {
	in, ok := c.Shaders[shader]
	if !ok {
		return 1.0
	}
	return in.For(level)
}

func isBackgroundLevel(l quality.BackgroundLevel) bool {
	for _, v := range quality.BackgroundLevels {
		if v == l {
			return true
		}
	}
	return false
}
