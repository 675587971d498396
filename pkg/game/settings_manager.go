package game

import (
	"fmt"
	"log"

	"github.com/decker502/backdrop/pkg/config"
	"github.com/decker502/backdrop/pkg/quality"
	"github.com/decker502/backdrop/pkg/utils"
	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

// Settings 用户偏好，跨次启动保留
type Settings struct {
	// 线条背景档位 off | low | med | high
	BackgroundQuality string `yaml:"backgroundQuality"`

	// 着色器演示
	ShaderType string `yaml:"shaderType"` // aurora | galaxy | nebula
	Paused     bool   `yaml:"paused"`

	// PinnedQuality 手动锁定的画质档位，空字符串表示自适应
	PinnedQuality string `yaml:"pinnedQuality"`

	// 显示设置
	ShowMonitor bool   `yaml:"showMonitor"` // 性能面板是否显示
	Scene       string `yaml:"scene"`       // 上次退出时的场景
}

// DefaultSettings 返回默认设置
//
// 背景档位的默认值来自配置文件的 background.default。
func DefaultSettings(bg quality.BackgroundLevel) *Settings {
	if bg == "" {
		bg = quality.BackgroundMed
	}
	return &Settings{
		BackgroundQuality: string(bg),
		ShaderType:        config.ShaderAurora,
		Paused:            false,
		PinnedQuality:     "",
		ShowMonitor:       false,
		Scene:             config.SceneBackdrop,
	}
}

// SettingsManager 设置管理器
// 负责用户设置的加载、保存和内存管理
type SettingsManager struct {
	gdataManager *gdata.Manager // gdata 跨平台存储管理器，可为 nil（降级模式）
	settings     *Settings      // 当前设置
	defaultBG    quality.BackgroundLevel
}

// 存储路径常量
const (
	settingsObject   = "settings"
	settingsProperty = "global"
)

// OpenSettingsStore 打开跨平台存储
//
// 失败时返回 nil 和错误，调用方记录日志后以降级模式继续运行。
func OpenSettingsStore() (*gdata.Manager, error) {
	if err := utils.EnsureStorageDir(); err != nil {
		return nil, fmt.Errorf("failed to prepare storage dir: %w", err)
	}
	m, err := gdata.Open(gdata.Config{AppName: utils.SettingsDirName})
	if err != nil {
		return nil, fmt.Errorf("failed to open settings store: %w", err)
	}
	if dir := utils.GetStoragePath(); dir != "" {
		log.Printf("[Settings] Storage dir: %s", dir)
	}
	return m, nil
}

// NewSettingsManager 创建新的设置管理器实例
//
// 参数：
//   - gdataManager: gdata 跨平台存储管理器，可为 nil（降级模式，仅内存设置）
//   - defaultBG: 未保存偏好时的背景档位
//
// 返回：
//   - *SettingsManager: 设置管理器实例，加载失败时使用默认设置
func NewSettingsManager(gdataManager *gdata.Manager, defaultBG quality.BackgroundLevel) *SettingsManager {
	sm := &SettingsManager{
		gdataManager: gdataManager,
		settings:     DefaultSettings(defaultBG),
		defaultBG:    defaultBG,
	}

	// 加载失败不是致命错误，使用默认设置
	if err := sm.Load(); err != nil {
		log.Printf("[SettingsManager] Warning: Failed to load settings: %v (using defaults)", err)
	}

	return sm
}

// Load 从 gdata 加载设置
//
// 如果 gdataManager 为 nil 或文件不存在，使用默认设置。
// 已保存的字段中无法识别的值会被修正为默认值。
//
// 返回：
//   - error: 如果读取或反序列化失败返回错误
func (sm *SettingsManager) Load() error {
	// 降级模式：无法持久化，使用默认设置
	if sm.gdataManager == nil {
		sm.settings = DefaultSettings(sm.defaultBG)
		return nil
	}

	if !sm.gdataManager.ObjectPropExists(settingsObject, settingsProperty) {
		sm.settings = DefaultSettings(sm.defaultBG)
		return nil
	}

	data, err := sm.gdataManager.LoadObjectProp(settingsObject, settingsProperty)
	if err != nil {
		sm.settings = DefaultSettings(sm.defaultBG)
		return fmt.Errorf("failed to load settings: %w", err)
	}

	// 在默认值之上反序列化，旧版本存档缺少的字段保持默认
	loaded := DefaultSettings(sm.defaultBG)
	if err := yaml.Unmarshal(data, loaded); err != nil {
		sm.settings = DefaultSettings(sm.defaultBG)
		return fmt.Errorf("failed to unmarshal settings: %w", err)
	}

	sm.settings = sanitize(loaded)
	log.Printf("[SettingsManager] Settings loaded successfully")
	return nil
}

// Save 保存设置到 gdata
//
// 如果 gdataManager 为 nil，返回 nil（降级模式，不报错）
func (sm *SettingsManager) Save() error {
	if sm.gdataManager == nil {
		return nil
	}

	data, err := yaml.Marshal(sm.settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := sm.gdataManager.SaveObjectProp(settingsObject, settingsProperty, data); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	log.Printf("[SettingsManager] Settings saved successfully")
	return nil
}

// Persistent 报告设置是否能写入磁盘
func (sm *SettingsManager) Persistent() bool {
	return sm.gdataManager != nil
}

// GetSettings 获取当前设置
func (sm *SettingsManager) GetSettings() *Settings {
	return sm.settings
}

// SetBackgroundQuality 设置线条背景档位，无法识别的值按 med 处理
//
// 注意：仅修改内存中的设置，需调用 Save() 方法持久化
func (sm *SettingsManager) SetBackgroundQuality(level quality.BackgroundLevel) {
	sm.settings.BackgroundQuality = string(quality.ParseBackgroundLevel(string(level)))
}

// SetShaderType 设置着色器类型，无法识别的值按 aurora 处理
func (sm *SettingsManager) SetShaderType(shader string) {
	sm.settings.ShaderType = config.NormalizeShader(shader)
}

// SetPinnedQuality 锁定画质档位；传入 nil 恢复自适应
func (sm *SettingsManager) SetPinnedQuality(level *quality.Level) {
	if level == nil {
		sm.settings.PinnedQuality = ""
		return
	}
	sm.settings.PinnedQuality = level.String()
}

// PinnedQuality 返回锁定的档位，未锁定时 ok 为 false
func (sm *SettingsManager) PinnedQuality() (level quality.Level, ok bool) {
	if sm.settings.PinnedQuality == "" {
		return quality.High, false
	}
	l, err := quality.ParseLevel(sm.settings.PinnedQuality)
	if err != nil {
		return quality.High, false
	}
	return l, true
}

// SetPaused 设置着色器动画是否暂停
func (sm *SettingsManager) SetPaused(paused bool) {
	sm.settings.Paused = paused
}

// SetShowMonitor 设置性能面板是否显示
func (sm *SettingsManager) SetShowMonitor(show bool) {
	sm.settings.ShowMonitor = show
}

// SetScene 记录当前场景
func (sm *SettingsManager) SetScene(scene string) {
	sm.settings.Scene = normalizeScene(scene)
}

// sanitize 修正存档中无法识别的取值
func sanitize(s *Settings) *Settings {
	s.BackgroundQuality = string(quality.ParseBackgroundLevel(s.BackgroundQuality))
	s.ShaderType = config.NormalizeShader(s.ShaderType)
	if s.PinnedQuality != "" {
		if _, err := quality.ParseLevel(s.PinnedQuality); err != nil {
			log.Printf("[SettingsManager] Ignoring unknown pinned quality %q", s.PinnedQuality)
			s.PinnedQuality = ""
		}
	}
	s.Scene = normalizeScene(s.Scene)
	return s
}

func normalizeScene(scene string) string {
	if scene == config.ScenePlayground {
		return config.ScenePlayground
	}
	return config.SceneBackdrop
}
