package scenes

import (
	"log"
	"time"

	"github.com/decker502/backdrop/pkg/ecs"
	"github.com/decker502/backdrop/pkg/entities"
	"github.com/decker502/backdrop/pkg/frame"
	"github.com/decker502/backdrop/pkg/quality"
	"github.com/decker502/backdrop/pkg/systems"
	"github.com/hajimehoshi/ebiten/v2"
)

// BackdropScene 动画线条背景
//
// 线条画在离屏画布上，只在帧率限制器放行时推进运动并重画，
// 其余帧直接复用画布。线条数同时受背景档位和画质预设约束。
type BackdropScene struct {
	env *Env

	entityManager *ecs.EntityManager
	motionSystem  *systems.LineMotionSystem
	renderSystem  *systems.LineRenderSystem

	canvas        *ebiten.Image
	width, height int

	level    quality.BackgroundLevel
	lastDraw time.Duration
	drawn    bool
	lines    int
	handle   frame.Handle
}

// NewBackdropScene 创建线条背景场景并注册帧回调
func NewBackdropScene(env *Env) *BackdropScene {
	em := ecs.NewEntityManager()
	s := &BackdropScene{
		env:           env,
		entityManager: em,
		motionSystem:  systems.NewLineMotionSystem(em),
		renderSystem:  systems.NewLineRenderSystem(em),
	}
	s.level = s.effectiveLevel()
	s.handle = env.Scheduler.Request(s.onFrame)
	log.Printf("[BackdropScene] Created (background=%s)", s.level)
	return s
}

// EffectiveLineCount 背景档位的线条数按画质预设的粒子比例缩放
//
// 结果不超过 lines；预设仍有粒子时至少保留一条。
func EffectiveLineCount(lines int, preset quality.Preset, fullCount int) int {
	if lines <= 0 || preset.ParticleCount <= 0 || fullCount <= 0 {
		return 0
	}
	n := lines * preset.ParticleCount / fullCount
	return max(1, min(lines, n))
}

// Level 当前生效的背景档位
func (s *BackdropScene) Level() quality.BackgroundLevel {
	return s.level
}

// Lines 当前线条数量
func (s *BackdropScene) Lines() int {
	return s.lines
}

func (s *BackdropScene) effectiveLevel() quality.BackgroundLevel {
	stored := string(s.env.Config.Background.Default)
	if s.env.Settings != nil {
		stored = s.env.Settings.GetSettings().BackgroundQuality
	}
	return quality.EffectiveBackgroundLevel(stored, s.env.Device)
}

// Resize 视口尺寸变化时重建画布，下一帧立即重画
func (s *BackdropScene) Resize(width, height int) {
	if width == s.width && height == s.height {
		return
	}
	s.width, s.height = width, height
	if s.canvas != nil {
		s.canvas.Deallocate()
		s.canvas = nil
	}
	s.drawn = false
}

// onFrame 帧回调：限帧、同步线条数、推进运动并重画
func (s *BackdropScene) onFrame(now time.Duration) {
	if level := s.effectiveLevel(); level != s.level {
		log.Printf("[BackdropScene] Background %s -> %s", s.level, level)
		s.level = level
		s.drawn = false
	}
	if s.width <= 0 || s.height <= 0 {
		return
	}

	settings := s.env.Config.BackgroundSettings(s.level)
	if !settings.Enabled() {
		// off 档只清空，继续跟踪尺寸
		if s.lines > 0 || !s.drawn {
			s.lines = entities.SyncLineCount(s.entityManager, s.env.Rand, 0, 0, 0)
			if s.canvas != nil {
				s.canvas.Clear()
			}
			s.drawn = true
		}
		return
	}

	if s.drawn && now-s.lastDraw < frame.RateInterval(settings.TargetFPS) {
		return
	}
	s.lastDraw = now

	w, h := float64(s.width), float64(s.height)
	preset := s.env.Preset()
	n := EffectiveLineCount(settings.Lines, preset, s.env.Config.Tuning.HighParticleCount)
	if n != s.lines {
		s.lines = entities.SyncLineCount(s.entityManager, s.env.Rand, n, w, h)
	}

	s.motionSystem.Update(w, h)

	if s.canvas == nil {
		s.canvas = ebiten.NewImage(s.width, s.height)
	}
	s.canvas.Clear()
	s.renderSystem.Draw(s.canvas, settings, preset.EnablePostProcessing)
	s.drawn = true
}

// Update 线条运动由帧回调驱动
func (s *BackdropScene) Update(deltaTime float64) {}

// Draw 合成背景色和线条画布
func (s *BackdropScene) Draw(screen *ebiten.Image) {
	screen.Fill(systems.BackgroundColor)
	if s.canvas != nil && s.lines > 0 {
		screen.DrawImage(s.canvas, nil)
	}
}

// Dispose 取消帧回调并释放画布
func (s *BackdropScene) Dispose() {
	s.handle.Cancel()
	if s.canvas != nil {
		s.canvas.Deallocate()
		s.canvas = nil
	}
	s.entityManager.Clear()
}

