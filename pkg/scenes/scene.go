package scenes

import (
	"math/rand"

	"github.com/decker502/backdrop/pkg/config"
	"github.com/decker502/backdrop/pkg/frame"
	"github.com/decker502/backdrop/pkg/game"
	"github.com/decker502/backdrop/pkg/quality"
)

// Scene is a type alias for game.Scene.
// All scene implementations should implement the game.Scene interface.
type Scene = game.Scene

// Env 场景共享的运行环境，由 app 创建并持有
//
// 所有字段只在 ebiten 的游戏循环中读写。配置热加载时 app 直接替换 Config，
// 场景每帧读取，不缓存。
type Env struct {
	Scheduler  *frame.Manual
	Controller *quality.Controller
	Config     *config.QualityConfig
	Settings   *game.SettingsManager
	Device     quality.DeviceProfile
	Rand       *rand.Rand

	// ForceMobile 平台层判定为移动端（utils.IsMobile），与视口宽度判定合并
	ForceMobile bool
}

// Preset 当前画质预设；没有控制器时返回默认 high 预设
func (e *Env) Preset() quality.Preset {
	if e.Controller == nil {
		return quality.DefaultPreset()
	}
	return e.Controller.Preset()
}

// Mobile 报告是否按移动设备渲染
func (e *Env) Mobile() bool {
	return e.ForceMobile || e.Device.IsMobile(e.Config.Tuning)
}

// NewFactory 返回按名称创建场景的工厂，供 SceneManager 使用
func NewFactory(env *Env) game.SceneFactory {
	return func(name string) game.Scene {
		switch name {
		case config.SceneBackdrop:
			return NewBackdropScene(env)
		case config.ScenePlayground:
			return NewPlaygroundScene(env)
		}
		return nil
	}
}
