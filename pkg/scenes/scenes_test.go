package scenes

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/decker502/backdrop/pkg/components"
	"github.com/decker502/backdrop/pkg/config"
	"github.com/decker502/backdrop/pkg/ecs"
	"github.com/decker502/backdrop/pkg/frame"
	"github.com/decker502/backdrop/pkg/game"
	"github.com/decker502/backdrop/pkg/quality"
)

func newTestEnv() *Env {
	cfg := config.DefaultQualityConfig()
	return &Env{
		Scheduler:  frame.NewManual(),
		Controller: quality.NewController(quality.DefaultPreset()),
		Config:     cfg,
		Settings:   game.NewSettingsManager(nil, cfg.Background.Default),
		Device:     quality.DeviceProfile{ScreenWidth: 1280, LogicalCores: 8, MemoryGB: 16},
		Rand:       rand.New(rand.NewSource(1)),
	}
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func firstLinePosition(t *testing.T, s *BackdropScene) components.PositionComponent {
	t.Helper()
	ids := ecs.GetEntitiesWith1[*components.LineComponent](s.entityManager)
	if len(ids) == 0 {
		t.Fatal("no line entities")
	}
	pos, ok := ecs.GetComponent[*components.PositionComponent](s.entityManager, ids[0])
	if !ok {
		t.Fatal("line entity without position")
	}
	return *pos
}

func TestEffectiveLineCount(t *testing.T) {
	tuning := quality.DefaultTuning()
	tests := []struct {
		name   string
		lines  int
		preset quality.Preset
		want   int
	}{
		{"high 满额", 12, quality.PresetFor(quality.High, tuning), 12},
		{"medium 按 0.6 缩放", 12, quality.PresetFor(quality.Medium, tuning), 7},
		{"low 按 0.3 缩放", 12, quality.PresetFor(quality.Low, tuning), 3},
		{"设备初始预设 1000 粒子", 30, quality.InitialPresetFromDevice(quality.DeviceProfile{ScreenWidth: 375}, tuning), 15},
		{"至少保留一条", 6, quality.Preset{Level: quality.Low, ParticleCount: 10}, 1},
		{"背景关闭", 0, quality.PresetFor(quality.High, tuning), 0},
		{"没有粒子", 12, quality.Preset{Level: quality.Low}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EffectiveLineCount(tt.lines, tt.preset, tuning.HighParticleCount); got != tt.want {
				t.Errorf("EffectiveLineCount(%d, %+v) = %d, want %d", tt.lines, tt.preset, got, tt.want)
			}
		})
	}
}

func TestBackdropScene_FrameLimiter(t *testing.T) {
	env := newTestEnv()
	s := NewBackdropScene(env)
	defer s.Dispose()
	s.Resize(640, 360)

	env.Scheduler.Tick(0)
	if s.Lines() != 12 {
		t.Fatalf("Lines() = %d, want 12 for med", s.Lines())
	}
	start := firstLinePosition(t, s)

	// med 档 30fps，间隔约 33ms
	env.Scheduler.Tick(10 * time.Millisecond)
	if got := firstLinePosition(t, s); got != start {
		t.Errorf("line moved before the frame interval elapsed: %+v -> %+v", start, got)
	}

	env.Scheduler.Tick(40 * time.Millisecond)
	if got := firstLinePosition(t, s); got == start {
		t.Error("line did not move after the frame interval elapsed")
	}
}

func TestBackdropScene_FollowsSettingsAndPreset(t *testing.T) {
	env := newTestEnv()
	s := NewBackdropScene(env)
	defer s.Dispose()
	s.Resize(640, 360)

	env.Scheduler.Tick(0)

	t.Run("锁定 low 时线条按比例减少", func(t *testing.T) {
		env.Controller.Pin(quality.Low)
		env.Scheduler.Tick(time.Second)
		if s.Lines() != 3 {
			t.Errorf("Lines() = %d, want 3", s.Lines())
		}
		env.Controller.Unpin()
	})

	t.Run("切换到 high 档", func(t *testing.T) {
		env.Controller.Pin(quality.High)
		env.Settings.SetBackgroundQuality(quality.BackgroundHigh)
		env.Scheduler.Tick(2 * time.Second)
		if s.Level() != quality.BackgroundHigh || s.Lines() != 30 {
			t.Errorf("level=%s lines=%d, want high/30", s.Level(), s.Lines())
		}
	})

	t.Run("关闭背景", func(t *testing.T) {
		env.Settings.SetBackgroundQuality(quality.BackgroundOff)
		env.Scheduler.Tick(3 * time.Second)
		if s.Level() != quality.BackgroundOff || s.Lines() != 0 {
			t.Errorf("level=%s lines=%d, want off/0", s.Level(), s.Lines())
		}
		if n := len(ecs.GetEntitiesWith1[*components.LineComponent](s.entityManager)); n != 0 {
			t.Errorf("%d line entities remain after off", n)
		}
	})
}

func TestBackdropScene_SaveDataForcesOff(t *testing.T) {
	env := newTestEnv()
	env.Device.SaveData = true
	env.Settings.SetBackgroundQuality(quality.BackgroundHigh)

	s := NewBackdropScene(env)
	defer s.Dispose()
	s.Resize(640, 360)
	env.Scheduler.Tick(0)

	if s.Level() != quality.BackgroundOff || s.Lines() != 0 {
		t.Errorf("level=%s lines=%d, want off/0 with save-data", s.Level(), s.Lines())
	}
}

func TestBackdropScene_NoSizeNoLines(t *testing.T) {
	env := newTestEnv()
	s := NewBackdropScene(env)
	defer s.Dispose()

	env.Scheduler.Tick(0)
	if s.Lines() != 0 {
		t.Errorf("Lines() = %d before the first Resize", s.Lines())
	}
}

func TestBackdropScene_DisposeCancelsCallback(t *testing.T) {
	env := newTestEnv()
	s := NewBackdropScene(env)
	if env.Scheduler.Pending() != 1 {
		t.Fatalf("Pending() = %d, want 1", env.Scheduler.Pending())
	}
	s.Dispose()
	if env.Scheduler.Pending() != 0 {
		t.Errorf("Pending() = %d after Dispose, want 0", env.Scheduler.Pending())
	}
}

func TestPlaygroundScene_AnimTime(t *testing.T) {
	env := newTestEnv()
	s := NewPlaygroundScene(env)
	defer s.Dispose()

	env.Scheduler.Tick(0)
	env.Scheduler.Tick(50 * time.Millisecond)
	if got := s.AnimTime(); !approx(got, 0.05) {
		t.Errorf("AnimTime() = %v, want 0.05", got)
	}

	// 长间隔被截断
	env.Scheduler.Tick(10 * time.Second)
	if got := s.AnimTime(); !approx(got, 0.15) {
		t.Errorf("AnimTime() after a long gap = %v, want 0.15", got)
	}

	env.Settings.SetPaused(true)
	env.Scheduler.Tick(10*time.Second + 50*time.Millisecond)
	if got := s.AnimTime(); !approx(got, 0.15) {
		t.Errorf("AnimTime() while paused = %v, want 0.15", got)
	}
}

func TestPlaygroundScene_UseFallback(t *testing.T) {
	tuning := quality.DefaultTuning()
	tests := []struct {
		name   string
		width  int
		force  bool
		preset quality.Preset
		want   bool
	}{
		{"桌面 high 使用着色器", 1280, false, quality.PresetFor(quality.High, tuning), false},
		{"桌面 medium 使用着色器", 1280, false, quality.PresetFor(quality.Medium, tuning), false},
		{"low 档降级", 1280, false, quality.PresetFor(quality.Low, tuning), true},
		{"窄屏降级", 375, false, quality.PresetFor(quality.High, tuning), true},
		{"平台判定为移动端", 1280, true, quality.PresetFor(quality.High, tuning), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			env.Device.ScreenWidth = tt.width
			env.ForceMobile = tt.force
			s := NewPlaygroundScene(env)
			defer s.Dispose()
			if got := s.UseFallback(tt.preset); got != tt.want {
				t.Errorf("UseFallback() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPlaygroundScene_FailedShaderFallsBack(t *testing.T) {
	env := newTestEnv()
	s := NewPlaygroundScene(env)
	defer s.Dispose()

	high := quality.PresetFor(quality.High, quality.DefaultTuning())
	s.failedShaders[config.ShaderAurora] = true
	if !s.UseFallback(high) {
		t.Error("failed aurora shader should fall back")
	}

	// galaxy 不依赖着色器
	env.Settings.SetShaderType(config.ShaderGalaxy)
	if s.UseFallback(high) {
		t.Error("galaxy should not fall back because aurora failed")
	}
}

func TestNewFactory(t *testing.T) {
	env := newTestEnv()
	factory := NewFactory(env)

	tests := []struct {
		name    string
		scene   string
		wantNil bool
	}{
		{"线条背景", config.SceneBackdrop, false},
		{"着色器演示", config.ScenePlayground, false},
		{"未知场景", "menu", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := factory(tt.scene)
			if (s == nil) != tt.wantNil {
				t.Fatalf("factory(%q) = %v", tt.scene, s)
			}
			if d, ok := s.(game.Disposable); ok {
				d.Dispose()
			}
		})
	}
}
