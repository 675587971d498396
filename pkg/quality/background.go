package quality

import "strings"

// BackgroundLevel 线条背景的用户画质偏好
type BackgroundLevel string

const (
	BackgroundOff  BackgroundLevel = "off"
	BackgroundLow  BackgroundLevel = "low"
	BackgroundMed  BackgroundLevel = "med"
	BackgroundHigh BackgroundLevel = "high"
)

// BackgroundLevels 按循环切换顺序列出所有背景档位
var BackgroundLevels = []BackgroundLevel{BackgroundOff, BackgroundLow, BackgroundMed, BackgroundHigh}

// BackgroundSettings 线条背景的渲染参数
type BackgroundSettings struct {
	Lines         int     `yaml:"lines"`         // 线条数量
	TargetFPS     int     `yaml:"targetFPS"`     // 线条动画的目标帧率，0 表示不运行动画
	AlphaScale    float64 `yaml:"alphaScale"`    // 线条透明度系数
	MaxShadowMult float64 `yaml:"maxShadowMult"` // 辉光宽度相对线宽的倍数
}

// Enabled 报告该档位是否需要运行动画循环
func (s BackgroundSettings) Enabled() bool {
	return s.Lines > 0 && s.TargetFPS > 0
}

// DefaultBackgroundTable 返回 off / low / med / high 四档的默认参数
func DefaultBackgroundTable() map[BackgroundLevel]BackgroundSettings {
	return map[BackgroundLevel]BackgroundSettings{
		BackgroundOff:  {Lines: 0, TargetFPS: 0, AlphaScale: 0, MaxShadowMult: 0},
		BackgroundLow:  {Lines: 6, TargetFPS: 15, AlphaScale: 0.3, MaxShadowMult: 2},
		BackgroundMed:  {Lines: 12, TargetFPS: 30, AlphaScale: 0.5, MaxShadowMult: 3},
		BackgroundHigh: {Lines: 30, TargetFPS: 45, AlphaScale: 0.8, MaxShadowMult: 4},
	}
}

// ParseBackgroundLevel 解析用户保存的背景档位，无法识别时返回 med
func ParseBackgroundLevel(s string) BackgroundLevel {
	switch l := BackgroundLevel(strings.ToLower(strings.TrimSpace(s))); l {
	case BackgroundOff, BackgroundLow, BackgroundMed, BackgroundHigh:
		return l
	case "medium":
		return BackgroundMed
	}
	return BackgroundMed
}

// Next 返回循环切换中的下一档
func (l BackgroundLevel) Next() BackgroundLevel {
	for i, v := range BackgroundLevels {
		if v == l {
			return BackgroundLevels[(i+1)%len(BackgroundLevels)]
		}
	}
	return BackgroundMed
}

// EffectiveBackgroundLevel 结合设备省电信号和用户偏好决定实际背景档位
//
// 省流量模式直接关闭背景；已知内存小于 1GB 或核心数不超过 2 时强制 low；
// 其余情况使用用户偏好。
func EffectiveBackgroundLevel(stored string, d DeviceProfile) BackgroundLevel {
	if d.SaveData {
		return BackgroundOff
	}
	if (d.MemoryGB > 0 && d.MemoryGB < 1) || (d.LogicalCores > 0 && d.LogicalCores <= 2) {
		return BackgroundLow
	}
	return ParseBackgroundLevel(stored)
}
