package app

import (
	"log"

	"github.com/decker502/backdrop/pkg/config"
	"github.com/decker502/backdrop/pkg/quality"
	"github.com/decker502/backdrop/pkg/utils"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// 快捷键
//
//	Q       画质：auto -> high -> medium -> low -> auto
//	B       线条背景档位循环
//	S       下一个着色器
//	Space   暂停/继续着色器动画
//	M       显示/隐藏性能面板
//	C       复制性能报告到剪贴板
//	Tab     切换场景
//	F11     全屏
//
// 触屏：单指点击在线条背景中切换档位、在演示中切换着色器；
// 双指显示/隐藏性能面板；三指切换场景。
var keyJustPressed = inpututil.IsKeyJustPressed

func (a *App) handleInput() {
	switch {
	case keyJustPressed(ebiten.KeyQ):
		a.CycleQuality()
	case keyJustPressed(ebiten.KeyB):
		a.CycleBackground()
	case keyJustPressed(ebiten.KeyS):
		a.NextShader()
	case keyJustPressed(ebiten.KeySpace):
		a.TogglePause()
	case keyJustPressed(ebiten.KeyM):
		a.ToggleMonitor()
	case keyJustPressed(ebiten.KeyC):
		if err := a.CopyReport(); err != nil {
			log.Printf("[App] %v", err)
		}
	case keyJustPressed(ebiten.KeyTab):
		a.SwitchScene()
	}

	a.handleTouch()
}

func (a *App) handleTouch() {
	if utils.JustPressedTouchCount() == 0 {
		return
	}
	switch utils.ActiveTouchCount() {
	case 1:
		if a.sceneManager.CurrentName() == config.ScenePlayground {
			a.NextShader()
		} else {
			a.CycleBackground()
		}
	case 2:
		a.ToggleMonitor()
	case 3:
		a.SwitchScene()
	}
}

// CycleQuality 在自适应和三个锁定档位之间循环
//
// 返回切换后的状态，自适应时 pinned 为 false。
func (a *App) CycleQuality() (level quality.Level, pinned bool) {
	current, ok := a.settings.PinnedQuality()
	switch {
	case !ok:
		level, pinned = quality.High, true
	case current == quality.High:
		level, pinned = quality.Medium, true
	case current == quality.Medium:
		level, pinned = quality.Low, true
	default:
		level, pinned = a.controller.Preset().Level, false
	}

	if pinned {
		a.controller.Pin(level)
		a.settings.SetPinnedQuality(&level)
	} else {
		a.controller.Unpin()
		a.settings.SetPinnedQuality(nil)
	}
	a.saveSettings()
	return a.controller.Preset().Level, pinned
}

// CycleBackground 切换到下一个线条背景档位
func (a *App) CycleBackground() quality.BackgroundLevel {
	current := quality.ParseBackgroundLevel(a.settings.GetSettings().BackgroundQuality)
	next := current.Next()
	a.settings.SetBackgroundQuality(next)
	a.saveSettings()
	log.Printf("[App] Background %s -> %s", current, next)
	return next
}

// NextShader 切换到下一个着色器
func (a *App) NextShader() string {
	next := config.NextShader(a.settings.GetSettings().ShaderType)
	a.settings.SetShaderType(next)
	a.saveSettings()
	return next
}

// TogglePause 暂停或继续着色器动画
func (a *App) TogglePause() bool {
	paused := !a.settings.GetSettings().Paused
	a.settings.SetPaused(paused)
	a.saveSettings()
	return paused
}

// ToggleMonitor 显示或隐藏性能面板
func (a *App) ToggleMonitor() bool {
	visible := a.hud.Toggle()
	a.settings.SetShowMonitor(visible)
	a.saveSettings()
	return visible
}

// CopyReport 复制性能报告
func (a *App) CopyReport() error {
	if err := a.monitor.CopyReport(); err != nil {
		return err
	}
	log.Printf("[App] Performance report copied")
	return nil
}

// SwitchScene 在线条背景和着色器演示之间切换
func (a *App) SwitchScene() string {
	next := config.ScenePlayground
	if a.sceneManager.CurrentName() == config.ScenePlayground {
		next = config.SceneBackdrop
	}
	if a.sceneManager.Load(next) {
		a.settings.SetScene(next)
		a.saveSettings()
	}
	return a.sceneManager.CurrentName()
}

func (a *App) saveSettings() {
	if err := a.settings.Save(); err != nil {
		log.Printf("[App] Warning: %v", err)
	}
}
