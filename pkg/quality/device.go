package quality

// DeviceProfile 静态设备信息，由宿主环境在启动时提供一次
//
// ScreenWidth 和 MemoryGB 为 0 表示未知；未知值不会触发低端设备判定。
type DeviceProfile struct {
	ScreenWidth  int     `yaml:"screenWidth"`  // 视口宽度（逻辑像素）
	LogicalCores int     `yaml:"logicalCores"` // 逻辑处理器数量
	MemoryGB     float64 `yaml:"memoryGB"`     // 近似内存大小
	SaveData     bool    `yaml:"saveData"`     // 用户要求省流量/省电
}

// IsMobile 屏幕宽度小于 MobileWidth 时视为移动设备
func (d DeviceProfile) IsMobile(t Tuning) bool {
	return d.ScreenWidth > 0 && d.ScreenWidth < t.MobileWidth
}

// IsLowEnd 逻辑核心数不超过 LowEndCores 时视为低端设备
func (d DeviceProfile) IsLowEnd(t Tuning) bool {
	return d.LogicalCores > 0 && d.LogicalCores <= t.LowEndCores
}

// HasLimitedMemory 内存不超过 LowMemoryGB 时视为内存受限
func (d DeviceProfile) HasLimitedMemory(t Tuning) bool {
	return d.MemoryGB > 0 && d.MemoryGB <= t.LowMemoryGB
}

// InitialPresetFromDevice 在尚无帧率样本时，根据设备信息选择初始预设
//
// 移动设备、低端设备或内存受限设备返回 medium：粒子数降为 DeviceParticleCount，
// 关闭后期处理，目标帧率保持 high 档不变；其余设备返回默认 high 预设。
// 纯函数，不读取任何全局状态。
func InitialPresetFromDevice(d DeviceProfile, t Tuning) Preset {
	if d.IsMobile(t) || d.IsLowEnd(t) || d.HasLimitedMemory(t) {
		return Preset{
			Level:                Medium,
			ParticleCount:        t.DeviceParticleCount,
			EnablePostProcessing: false,
			TargetFPS:            t.HighTargetFPS,
		}
	}
	return PresetFor(High, t)
}
