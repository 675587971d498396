package scenes

import (
	"log"
	"time"

	"github.com/decker502/backdrop/pkg/config"
	"github.com/decker502/backdrop/pkg/ecs"
	"github.com/decker502/backdrop/pkg/entities"
	"github.com/decker502/backdrop/pkg/frame"
	"github.com/decker502/backdrop/pkg/quality"
	"github.com/decker502/backdrop/pkg/systems"
	"github.com/decker502/backdrop/pkg/utils"
	"github.com/hajimehoshi/ebiten/v2"
)

// PlaygroundScene 着色器演示：aurora / galaxy / nebula
//
// 渲染路径按画质预设选择：
//   - low 档或移动设备：静态渐变（桌面端带呼吸动画）
//   - 其余：aurora/nebula 走 Kage 着色器，galaxy 走 ECS 星点；
//     预设开启后期处理时先画到离屏图像再经过泛光和暗角合成
//
// 某个着色器编译失败后该类型永久降级为静态渐变。
type PlaygroundScene struct {
	env *Env

	entityManager    *ecs.EntityManager
	galaxySystem     *systems.GalaxySystem
	shaderSystem     *systems.ShaderSystem
	postSystem       *systems.PostProcessSystem
	gradientSystem   *systems.GradientSystem
	failedShaders    map[string]bool
	postFailedLogged bool

	// 动画时间（秒），暂停时不前进
	animTime float64
	lastNow  time.Duration
	started  bool
	mouse    [2]float64
	handle   frame.Handle

	width, height int
}

// maxFrameStep 单帧推进动画时间的上限，从隐藏恢复时不会跳跃
const maxFrameStep = 100 * time.Millisecond

// NewPlaygroundScene 创建着色器演示场景并注册帧回调
func NewPlaygroundScene(env *Env) *PlaygroundScene {
	em := ecs.NewEntityManager()
	s := &PlaygroundScene{
		env:            env,
		entityManager:  em,
		galaxySystem:   systems.NewGalaxySystem(em),
		shaderSystem:   systems.NewShaderSystem(),
		postSystem:     systems.NewPostProcessSystem(),
		gradientSystem: systems.NewGradientSystem(),
		failedShaders:  make(map[string]bool),
		mouse:          [2]float64{0.5, 0.5},
	}
	s.handle = env.Scheduler.Request(s.onFrame)
	log.Printf("[PlaygroundScene] Created (shader=%s)", s.shaderType())
	return s
}

func (s *PlaygroundScene) shaderType() string {
	if s.env.Settings == nil {
		return config.ShaderAurora
	}
	return config.NormalizeShader(s.env.Settings.GetSettings().ShaderType)
}

func (s *PlaygroundScene) paused() bool {
	return s.env.Settings != nil && s.env.Settings.GetSettings().Paused
}

// AnimTime 当前动画时间（秒）
func (s *PlaygroundScene) AnimTime() float64 {
	return s.animTime
}

// onFrame 帧回调：推进动画时间
func (s *PlaygroundScene) onFrame(now time.Duration) {
	if !s.started {
		s.lastNow, s.started = now, true
		return
	}
	dt := now - s.lastNow
	s.lastNow = now
	if s.paused() || dt <= 0 {
		return
	}
	s.animTime += min(dt, maxFrameStep).Seconds()
}

// Resize 记录视口尺寸，用于归一化指针位置
func (s *PlaygroundScene) Resize(width, height int) {
	s.width, s.height = width, height
}

// UseFallback 报告当前是否使用静态渐变
func (s *PlaygroundScene) UseFallback(preset quality.Preset) bool {
	if preset.Level == quality.Low || s.env.Mobile() {
		return true
	}
	shader := s.shaderType()
	return shader != config.ShaderGalaxy && s.failedShaders[shader]
}

// Update 记录鼠标（或第一个触点）的归一化位置，Y 轴向上
func (s *PlaygroundScene) Update(deltaTime float64) {
	if s.width <= 0 || s.height <= 0 {
		return
	}
	x, y := pointerPosition()
	s.mouse = [2]float64{
		utils.Clamp(float64(x)/float64(s.width), 0, 1),
		utils.Clamp(1-float64(y)/float64(s.height), 0, 1),
	}
}

// pointerPosition 返回鼠标位置，有触点时优先使用第一个触点
func pointerPosition() (x, y int) {
	if ids := ebiten.AppendTouchIDs(nil); len(ids) > 0 {
		return ebiten.TouchPosition(ids[0])
	}
	return ebiten.CursorPosition()
}

// Draw 按画质预设选择渲染路径
func (s *PlaygroundScene) Draw(screen *ebiten.Image) {
	preset := s.env.Preset()
	shader := s.shaderType()

	if s.UseFallback(preset) {
		alpha := 1.0
		if !s.env.Mobile() {
			alpha = systems.PulseAlpha(s.animTime)
		}
		s.gradientSystem.Draw(screen, shader, alpha)
		return
	}

	params, post := s.env.Config.PostProcessing.For(preset.Level)
	post = post && preset.EnablePostProcessing

	target := screen
	if post {
		b := screen.Bounds()
		target = s.postSystem.Target(b.Dx(), b.Dy())
	}
	target.Fill(systems.BackgroundColor)

	switch shader {
	case config.ShaderGalaxy:
		entities.SyncStarCount(s.entityManager, s.env.Rand, preset.ParticleCount)
		s.galaxySystem.Draw(target, s.animTime, preset.Level)
	default:
		err := s.shaderSystem.Draw(target, shader, preset.Level, systems.ShaderParams{
			Time:      s.animTime,
			Mouse:     s.mouse,
			Intensity: s.env.Config.ShaderIntensity(shader, preset.Level),
		})
		if err != nil {
			log.Printf("[PlaygroundScene] Shader %s unavailable, falling back to gradient: %v", shader, err)
			s.failedShaders[shader] = true
			s.gradientSystem.Draw(target, shader, 1)
		}
	}

	if post {
		if err := s.postSystem.Apply(screen, params); err != nil && !s.postFailedLogged {
			log.Printf("[PlaygroundScene] Post-processing disabled: %v", err)
			s.postFailedLogged = true
		}
	}
}

// Dispose 取消帧回调并清空星点
func (s *PlaygroundScene) Dispose() {
	s.handle.Cancel()
	s.entityManager.Clear()
}
