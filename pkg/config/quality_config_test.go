package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/decker502/backdrop/pkg/quality"
	"github.com/google/go-cmp/cmp"
)

func TestDefaultQualityConfig_Valid(t *testing.T) {
	cfg := DefaultQualityConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Window() != time.Second {
		t.Errorf("Window() = %v, want 1s", cfg.Window())
	}
}

// 仓库里的 data/quality.yaml 必须与内置默认值一致
func TestDataFileMatchesDefaults(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("..", "..", QualityConfigPath))
	if err != nil {
		t.Skipf("data file not available: %v", err)
	}
	cfg, err := ParseQualityConfig(data)
	if err != nil {
		t.Fatalf("ParseQualityConfig: %v", err)
	}
	if diff := cmp.Diff(DefaultQualityConfig(), cfg); diff != "" {
		t.Errorf("data/quality.yaml differs from defaults (-want +got):\n%s", diff)
	}
}

func TestParseQualityConfig(t *testing.T) {
	tests := []struct {
		name        string
		yamlContent string
		wantErr     bool
		errContains string
		validate    func(*testing.T, *QualityConfig)
	}{
		{
			name: "部分覆盖保留默认值",
			yamlContent: `
thresholds:
  low: 25
  medium: 40
  high: 50
`,
			validate: func(t *testing.T, cfg *QualityConfig) {
				want := quality.Thresholds{Low: 25, Medium: 40, High: 50}
				if diff := cmp.Diff(want, cfg.Thresholds); diff != "" {
					t.Errorf("thresholds (-want +got):\n%s", diff)
				}
				if cfg.Tuning != quality.DefaultTuning() {
					t.Errorf("tuning changed: %+v", cfg.Tuning)
				}
				if cfg.WindowMs != 1000 {
					t.Errorf("windowMs = %d, want 1000", cfg.WindowMs)
				}
			},
		},
		{
			name: "覆盖单个背景档位",
			yamlContent: `
background:
  default: high
  levels:
    high: { lines: 40, targetFPS: 60, alphaScale: 0.9, maxShadowMult: 5 }
`,
			validate: func(t *testing.T, cfg *QualityConfig) {
				if cfg.Background.Default != quality.BackgroundHigh {
					t.Errorf("default = %q", cfg.Background.Default)
				}
				if got := cfg.BackgroundSettings(quality.BackgroundHigh).Lines; got != 40 {
					t.Errorf("high lines = %d, want 40", got)
				}
				if got := cfg.BackgroundSettings(quality.BackgroundLow).Lines; got != 6 {
					t.Errorf("low lines = %d, want 6 (default)", got)
				}
			},
		},
		{
			name:        "阈值不递增",
			yamlContent: "thresholds: { low: 50, medium: 45, high: 55 }",
			wantErr:     true,
			errContains: "medium threshold",
		},
		{
			name:        "窗口为零",
			yamlContent: "windowMs: 0",
			wantErr:     true,
			errContains: "windowMs",
		},
		{
			name:        "缩放系数越界",
			yamlContent: "tuning: { lowScale: 1.5 }",
			wantErr:     true,
			errContains: "lowScale",
		},
		{
			name:        "未知默认背景档位",
			yamlContent: "background: { default: ultra }",
			wantErr:     true,
			errContains: "background default",
		},
		{
			name:        "平板宽度小于移动宽度",
			yamlContent: "monitor: { tabletWidth: 500 }",
			wantErr:     true,
			errContains: "tabletWidth",
		},
		{
			name:        "YAML 语法错误",
			yamlContent: "thresholds: [",
			wantErr:     true,
			errContains: "failed to parse",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := ParseQualityConfig([]byte(tt.yamlContent))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if tt.errContains != "" && !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("error %q does not contain %q", err.Error(), tt.errContains)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.validate != nil {
				tt.validate(t, cfg)
			}
		})
	}
}

// 映射中的单个条目只写出部分字段时，其余字段保持默认值
func TestParseQualityConfig_PartialMapEntries(t *testing.T) {
	tests := []struct {
		name        string
		yamlContent string
		validate    func(*testing.T, *QualityConfig)
	}{
		{
			name:        "着色器只覆盖 high",
			yamlContent: "shaders:\n  aurora: { high: 0.9 }\n",
			validate: func(t *testing.T, cfg *QualityConfig) {
				want := IntensityConfig{High: 0.9, Medium: 0.8, Low: 0.6}
				if diff := cmp.Diff(want, cfg.Shaders[ShaderAurora]); diff != "" {
					t.Errorf("aurora (-want +got):\n%s", diff)
				}
				if diff := cmp.Diff(DefaultQualityConfig().Shaders[ShaderNebula], cfg.Shaders[ShaderNebula]); diff != "" {
					t.Errorf("nebula changed (-want +got):\n%s", diff)
				}
			},
		},
		{
			name:        "背景档位只覆盖线条数",
			yamlContent: "background:\n  levels:\n    low: { lines: 8 }\n",
			validate: func(t *testing.T, cfg *QualityConfig) {
				want := quality.BackgroundSettings{Lines: 8, TargetFPS: 15, AlphaScale: 0.3, MaxShadowMult: 2}
				if diff := cmp.Diff(want, cfg.Background.Levels[quality.BackgroundLow]); diff != "" {
					t.Errorf("low level (-want +got):\n%s", diff)
				}
				if got := len(cfg.Background.Levels); got != len(quality.BackgroundLevels) {
					t.Errorf("levels = %d, want %d", got, len(quality.BackgroundLevels))
				}
			},
		},
		{
			name:        "新着色器从零值开始",
			yamlContent: "shaders:\n  plasma: { high: 2 }\n",
			validate: func(t *testing.T, cfg *QualityConfig) {
				if got := cfg.Shaders["plasma"]; got != (IntensityConfig{High: 2}) {
					t.Errorf("plasma = %+v", got)
				}
				if len(cfg.Shaders) != 3 {
					t.Errorf("shaders = %v, want defaults plus plasma", cfg.Shaders)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := ParseQualityConfig([]byte(tt.yamlContent))
			if err != nil {
				t.Fatalf("ParseQualityConfig: %v", err)
			}
			tt.validate(t, cfg)
		})
	}
}

func TestParseQualityConfig_PartialEntryDoesNotTouchDefaults(t *testing.T) {
	if _, err := ParseQualityConfig([]byte("shaders:\n  aurora: { high: 0.1 }\n")); err != nil {
		t.Fatal(err)
	}
	if got := DefaultQualityConfig().Shaders[ShaderAurora].High; got != 1.0 {
		t.Errorf("default aurora high = %v after override, want 1.0", got)
	}
}

func TestParseQualityConfig_BadMapEntry(t *testing.T) {
	_, err := ParseQualityConfig([]byte("shaders:\n  aurora: { high: loud }\n"))
	if err == nil || !strings.Contains(err.Error(), "aurora") {
		t.Errorf("error = %v, want one naming aurora", err)
	}
}

func TestLoadQualityConfig_FileNotFound(t *testing.T) {
	_, err := LoadQualityConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil || !strings.Contains(err.Error(), "failed to read quality config") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestResolveQualityConfig_FallsBack(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("windowMs: -1"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg := ResolveQualityConfig(bad)
	if cfg.WindowMs != 1000 {
		t.Errorf("fallback windowMs = %d, want 1000", cfg.WindowMs)
	}

	good := filepath.Join(dir, "good.yaml")
	if err := os.WriteFile(good, []byte("windowMs: 500"), 0644); err != nil {
		t.Fatal(err)
	}
	if got := ResolveQualityConfig(good).Window(); got != 500*time.Millisecond {
		t.Errorf("Window() = %v, want 500ms", got)
	}
}

func TestShaderIntensityAndPostProcess(t *testing.T) {
	cfg := DefaultQualityConfig()
	tests := []struct {
		shader string
		level  quality.Level
		want   float64
	}{
		{ShaderAurora, quality.High, 1.0},
		{ShaderAurora, quality.Low, 0.6},
		{ShaderNebula, quality.Medium, 1.0},
		{ShaderNebula, quality.Low, 0.8},
		{ShaderGalaxy, quality.High, 1.0},
	}
	for _, tt := range tests {
		if got := cfg.ShaderIntensity(tt.shader, tt.level); got != tt.want {
			t.Errorf("ShaderIntensity(%s, %s) = %v, want %v", tt.shader, tt.level, got, tt.want)
		}
	}

	if _, ok := cfg.PostProcessing.For(quality.Low); ok {
		t.Error("low level should not have post-processing params")
	}
	p, ok := cfg.PostProcessing.For(quality.Medium)
	if !ok || p.Bloom != 0.1 || p.VignetteOffset != 0.15 {
		t.Errorf("medium params = %+v, %v", p, ok)
	}
}

func TestNextShader(t *testing.T) {
	if got := NextShader(ShaderNebula); got != ShaderAurora {
		t.Errorf("NextShader(nebula) = %s", got)
	}
	if got := NormalizeShader("plasma"); got != ShaderAurora {
		t.Errorf("NormalizeShader(plasma) = %s", got)
	}
}
