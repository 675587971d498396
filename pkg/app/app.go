// Package app 提供应用的核心包装器
//
// 该包将初始化逻辑从 main 包提取出来，使其可以被桌面端和移动端共用。
// 桌面端通过 main.go 调用 NewApp()，移动端通过 mobile/mobile.go 调用。
package app

import (
	"context"
	"fmt"
	"image/color"
	"io"
	"log"
	"math/rand"
	"time"

	"github.com/decker502/backdrop/internal/device"
	"github.com/decker502/backdrop/pkg/config"
	"github.com/decker502/backdrop/pkg/frame"
	"github.com/decker502/backdrop/pkg/game"
	"github.com/decker502/backdrop/pkg/perf"
	"github.com/decker502/backdrop/pkg/quality"
	"github.com/decker502/backdrop/pkg/scenes"
	"github.com/decker502/backdrop/pkg/utils"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/quasilyte/gdata/v2"
)

// QualityAuto --quality 的默认值：使用保存的锁定档位，没有则自适应
const QualityAuto = "auto"

// Config 定义应用启动配置
type Config struct {
	// Verbose 启用详细日志输出
	Verbose bool
	// ConfigPath 外部画质配置文件，为空则使用内嵌配置
	ConfigPath string
	// Watch 监视 ConfigPath 并热加载
	Watch bool
	// Scene 启动场景（backdrop | playground），为空则使用上次的场景
	Scene string
	// Shader 着色器类型，为空则使用保存的设置
	Shader string
	// Quality auto | high | medium | low，为空则使用保存的设置
	Quality string
	// Background 线条背景档位，为空则使用保存的设置
	Background string
	// OpenStore 打开设置存储，为 nil 或失败时以降级模式运行（仅内存）
	OpenStore func() (*gdata.Manager, error)
}

// App 是应用的核心包装器，实现 ebiten.Game 接口
//
// 画质控制器、帧调度器和场景在第一次 Layout 时创建：设备描述需要视口宽度，
// 而视口宽度只有 ebiten 调用 Layout 之后才知道。
type App struct {
	verbose       bool
	qualityConfig *config.QualityConfig
	settings      *game.SettingsManager
	sceneManager  *game.SceneManager
	scheduler     *frame.Manual
	clock         frame.Clock
	rng           *rand.Rand

	controller *quality.Controller
	monitor    *perf.Monitor
	hud        *perf.HUD
	env        *scenes.Env
	device     quality.DeviceProfile

	watcher     *config.Watcher
	stopWatcher context.CancelFunc

	initialized bool
	width       int
	height      int
	hidden      bool
	lastUpdate  time.Duration

	pendingWindowSizeReset   bool // 延迟设置窗口大小标志
	windowSizeResetCountdown int  // 延迟帧数

	// 以下字段在测试中替换
	probe  func(width int) quality.DeviceProfile
	setTPS func(int)
}

// NewApp 创建并初始化应用
//
// 调用此函数前，应先调用 embedded.Init() 初始化嵌入配置；
// 未初始化时使用内置默认配置。
func NewApp(cfg Config) (*App, error) {
	// 配置日志输出
	if !cfg.Verbose {
		log.SetOutput(io.Discard)
		log.SetFlags(0)
	}

	qc := config.ResolveQualityConfig(cfg.ConfigPath)

	var store *gdata.Manager
	if cfg.OpenStore != nil {
		var err error
		store, err = cfg.OpenStore()
		if err != nil {
			log.Printf("[App] Warning: %v, settings will not be saved", err)
			store = nil
		}
	}
	settings := game.NewSettingsManager(store, qc.Background.Default)

	if err := applyFlagOverrides(settings, cfg); err != nil {
		return nil, err
	}

	a := &App{
		verbose:       cfg.Verbose,
		qualityConfig: qc,
		settings:      settings,
		sceneManager:  game.NewSceneManager(),
		scheduler:     frame.NewManual(),
		clock:         frame.NewMonotonicClock(),
		rng:           rand.New(rand.NewSource(time.Now().UnixNano())),
		probe: func(width int) quality.DeviceProfile {
			return device.Probe(device.Host(width))
		},
		setTPS: ebiten.SetTPS,
	}

	if cfg.Watch && cfg.ConfigPath != "" {
		if err := a.startWatcher(cfg.ConfigPath); err != nil {
			log.Printf("[App] Warning: %v, hot reload disabled", err)
		}
	}

	log.Printf("[App] Created (scene=%s, shader=%s, background=%s, pinned=%q)",
		settings.GetSettings().Scene, settings.GetSettings().ShaderType,
		settings.GetSettings().BackgroundQuality, settings.GetSettings().PinnedQuality)
	return a, nil
}

// applyFlagOverrides 命令行参数覆盖已保存的设置
func applyFlagOverrides(sm *game.SettingsManager, cfg Config) error {
	if cfg.Scene != "" {
		if cfg.Scene != config.SceneBackdrop && cfg.Scene != config.ScenePlayground {
			return fmt.Errorf("unknown scene %q (want %s|%s)", cfg.Scene, config.SceneBackdrop, config.ScenePlayground)
		}
		sm.SetScene(cfg.Scene)
	}
	if cfg.Shader != "" {
		if config.NormalizeShader(cfg.Shader) != cfg.Shader {
			return fmt.Errorf("unknown shader %q", cfg.Shader)
		}
		sm.SetShaderType(cfg.Shader)
	}
	if cfg.Background != "" {
		level := quality.BackgroundLevel(cfg.Background)
		if quality.ParseBackgroundLevel(cfg.Background) != level {
			return fmt.Errorf("unknown background level %q (want off|low|med|high)", cfg.Background)
		}
		sm.SetBackgroundQuality(level)
	}
	switch cfg.Quality {
	case "":
	case QualityAuto:
		sm.SetPinnedQuality(nil)
	default:
		level, err := quality.ParseLevel(cfg.Quality)
		if err != nil {
			return fmt.Errorf("invalid --quality: %w", err)
		}
		sm.SetPinnedQuality(&level)
	}
	return nil
}

// startWatcher 启动配置文件监视
func (a *App) startWatcher(path string) error {
	w, err := config.NewWatcher(path, config.DefaultDebounce)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(context.Background())
	if err := w.Start(ctx); err != nil {
		cancel()
		w.Stop()
		return err
	}
	a.watcher = w
	a.stopWatcher = cancel
	return nil
}

// setup 根据视口宽度探测设备并创建控制器、监视器和场景
func (a *App) setup(width, height int) {
	a.device = a.probe(width)
	tuning := a.qualityConfig.Tuning
	initial := quality.InitialPresetFromDevice(a.device, tuning)
	log.Printf("[App] Device %+v, initial preset %s (%d particles)", a.device, initial.Level, initial.ParticleCount)

	a.controller = quality.NewController(initial,
		quality.WithThresholds(a.qualityConfig.Thresholds),
		quality.WithTuning(tuning),
		quality.WithWindow(a.qualityConfig.Window()),
		quality.WithOnChange(a.onPresetChange),
	)
	if level, ok := a.settings.PinnedQuality(); ok {
		a.controller.Pin(level)
	}
	a.setTPS(a.controller.Preset().TargetFPS)

	a.monitor = perf.NewMonitor(a.qualityConfig.Monitor, tuning.MobileWidth)
	a.hud = perf.NewHUD(a.settings.GetSettings().ShowMonitor)

	// 采样回调先于场景注册，同一帧内场景读到的是调整后的预设
	a.scheduler.Request(a.sample)
	a.scheduler.OnResume(func(time.Duration) { a.controller.Reset() })

	a.env = &scenes.Env{
		Scheduler:   a.scheduler,
		Controller:  a.controller,
		Config:      a.qualityConfig,
		Settings:    a.settings,
		Device:      a.device,
		Rand:        a.rng,
		ForceMobile: utils.IsMobile(),
	}
	a.sceneManager.SetSceneFactory(scenes.NewFactory(a.env))
	a.sceneManager.Resize(width, height)
	if !a.sceneManager.Load(a.settings.GetSettings().Scene) {
		a.sceneManager.Load(config.SceneBackdrop)
	}

	a.width, a.height = width, height
	a.initialized = true
}

// sample 帧回调：驱动采样窗口，窗口结束时更新性能面板
func (a *App) sample(now time.Duration) {
	fps, measured := a.controller.SampleFrame(now)
	if !measured {
		return
	}
	d := a.device
	d.ScreenWidth = a.width
	a.monitor.Observe(fps, a.controller.Preset(), a.controller.Pinned(), d)
}

// onPresetChange 预设切换时调整 ebiten 的更新频率
func (a *App) onPresetChange(from, to quality.Preset, fps int) {
	if from.TargetFPS != to.TargetFPS {
		a.setTPS(to.TargetFPS)
	}
}

// applyConfig 应用热加载的配置：替换阈值和切换参数，当前预设保持不变
func (a *App) applyConfig(cfg *config.QualityConfig) {
	prevWindow := a.qualityConfig.Window()
	a.qualityConfig = cfg
	if !a.initialized {
		return
	}
	if cfg.Window() != prevWindow {
		log.Printf("[App] windowMs change takes effect after restart")
	}
	a.controller.Reconfigure(cfg.Thresholds, cfg.Tuning)
	a.monitor.Reconfigure(cfg.Monitor, cfg.Tuning.MobileWidth)
	a.env.Config = cfg
}

// Update 处理输入、可见性和配置热加载
// 每个 tick 调用一次
func (a *App) Update() error {
	if !a.initialized {
		return nil
	}

	if ebiten.IsWindowBeingClosed() {
		a.Close()
		return ebiten.Termination
	}

	now := a.clock.Now()
	a.updateVisibility(ebiten.IsFocused(), now)

	if a.watcher != nil {
		select {
		case cfg := <-a.watcher.Updates():
			a.applyConfig(cfg)
		default:
		}
	}

	a.updateFullscreen()
	a.handleInput()

	deltaTime := 1.0 / 60.0
	if a.lastUpdate > 0 {
		deltaTime = (now - a.lastUpdate).Seconds()
	}
	a.lastUpdate = now

	a.hud.Update(deltaTime)
	a.sceneManager.Update(deltaTime)
	return nil
}

// updateVisibility 窗口失焦时暂停帧投递，恢复时重置采样窗口
func (a *App) updateVisibility(focused bool, now time.Duration) {
	switch {
	case !focused && !a.hidden:
		a.hidden = true
		a.scheduler.Hide()
	case focused && a.hidden:
		a.hidden = false
		a.scheduler.Show(now)
	}
}

// updateFullscreen F11 切换全屏
func (a *App) updateFullscreen() {
	// 延迟设置窗口大小（退出全屏后需要等待几帧才能正确设置）
	if a.pendingWindowSizeReset {
		a.windowSizeResetCountdown--
		if a.windowSizeResetCountdown <= 0 {
			ebiten.SetWindowSize(config.WindowWidth, config.WindowHeight)
			a.pendingWindowSizeReset = false
		}
	}

	if !keyJustPressed(ebiten.KeyF11) {
		return
	}
	if ebiten.IsFullscreen() {
		ebiten.SetFullscreen(false)
		if ebiten.IsWindowMaximized() || ebiten.IsWindowMinimized() {
			ebiten.RestoreWindow()
		}
		a.pendingWindowSizeReset = true
		a.windowSizeResetCountdown = 3
		log.Printf("[App] Exit fullscreen, will reset window size in 3 frames")
	} else {
		ebiten.SetFullscreen(true)
	}
}

// Draw 投递一帧并绘制当前场景和性能面板
func (a *App) Draw(screen *ebiten.Image) {
	if !a.initialized {
		screen.Fill(color.Black)
		return
	}
	a.scheduler.Tick(a.clock.Now())
	a.sceneManager.Draw(screen)
	a.hud.Draw(screen, a.monitor.Metrics())
}

// Layout 视口即逻辑屏幕，背景按实际窗口尺寸渲染
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	w, h := max(1, outsideWidth), max(1, outsideHeight)
	if !a.initialized {
		a.setup(w, h)
		return w, h
	}
	if w != a.width || h != a.height {
		a.width, a.height = w, h
		a.sceneManager.Resize(w, h)
	}
	return w, h
}

// Close 停止监视、取消所有帧回调并保存设置，可重复调用
func (a *App) Close() {
	if a.stopWatcher != nil {
		a.stopWatcher()
		a.watcher.Stop()
		a.stopWatcher = nil
		reloads, failures := a.watcher.Stats()
		log.Printf("[App] Config watcher stopped (%d reloads, %d rejected)", reloads, failures)
	}
	a.scheduler.CancelAll()
	a.settings.SetScene(a.sceneManager.CurrentName())
	if err := a.settings.Save(); err != nil {
		log.Printf("[App] Warning: %v", err)
	}
}

// Controller 返回画质控制器，第一次 Layout 之前为 nil
func (a *App) Controller() *quality.Controller {
	return a.controller
}

// Settings 返回设置管理器
func (a *App) Settings() *game.SettingsManager {
	return a.settings
}

// IsVerbose 返回是否启用了详细日志
func (a *App) IsVerbose() bool {
	return a.verbose
}
