package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/decker502/backdrop/pkg/config"
	"github.com/decker502/backdrop/pkg/quality"
	"go.uber.org/goleak"
)

func TestReplaySampleTraces(t *testing.T) {
	tests := []struct {
		file             string
		wantWindows      int
		wantTransitions  int
		wantOscillations int
		wantFinal        quality.Level
		wantParticles    int
	}{
		{"steady_60.yaml", 8, 0, 0, quality.High, 2000},
		{"degrading.yaml", 13, 3, 0, quality.High, 2000},
		{"oscillation.yaml", 9, 6, 5, quality.High, 2000},
		{"mobile_frames.yaml", 2, 1, 0, quality.Low, 300},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			tr, err := LoadTrace(filepath.Join("..", "..", "data", "traces", tt.file))
			if err != nil {
				t.Fatalf("LoadTrace: %v", err)
			}
			_, s := Replay(tr, config.DefaultQualityConfig())
			if s.Windows != tt.wantWindows || s.Transitions != tt.wantTransitions || s.Oscillations != tt.wantOscillations {
				t.Errorf("summary = %+v, want windows=%d transitions=%d oscillations=%d",
					s, tt.wantWindows, tt.wantTransitions, tt.wantOscillations)
			}
			if s.Final.Level != tt.wantFinal || s.Final.ParticleCount != tt.wantParticles {
				t.Errorf("final = %s/%d, want %s/%d", s.Final.Level, s.Final.ParticleCount, tt.wantFinal, tt.wantParticles)
			}
		})
	}
}

func TestReplayDegradingSteps(t *testing.T) {
	tr, err := LoadTrace(filepath.Join("..", "..", "data", "traces", "degrading.yaml"))
	if err != nil {
		t.Fatalf("LoadTrace: %v", err)
	}
	decisions, _ := Replay(tr, config.DefaultQualityConfig())

	var got []string
	for _, d := range decisions {
		if d.Changed {
			got = append(got, d.To.Level.String())
		}
	}
	if strings.Join(got, ",") != "medium,low,high" {
		t.Errorf("transitions = %v, want medium,low,high", got)
	}
	// 第 7 个窗口（28fps）从 medium 的 1200 降到 360
	if d := decisions[6]; d.To.ParticleCount != 360 || d.To.EnablePostProcessing {
		t.Errorf("window 7 = %+v", d.To)
	}
}

func TestParseTraceErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"没有数据", "name: empty\n", "neither fps nor frames"},
		{"两种数据都有", "name: both\nfps: [60]\nframes: [0, 16]\n", "both fps and frames"},
		{"时间倒退", "name: back\nframes: [0, 16, 10]\n", "goes back in time"},
		{"YAML 错误", "fps: [60\n", "failed to parse trace"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTrace([]byte(tt.data))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("ParseTrace() error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestApplyDeviceFlags(t *testing.T) {
	d := quality.DeviceProfile{ScreenWidth: 1920, LogicalCores: 8, MemoryGB: 16}
	applyDeviceFlags(&d, 600, -1, 2)
	want := quality.DeviceProfile{ScreenWidth: 600, LogicalCores: 8, MemoryGB: 2}
	if d != want {
		t.Errorf("device = %+v, want %+v", d, want)
	}
}

func TestPrint(t *testing.T) {
	tr := &Trace{Name: "inline", FPS: []int{60, 20}}
	decisions, s := Replay(tr, config.DefaultQualityConfig())

	var buf bytes.Buffer
	Print(&buf, tr, decisions, s)
	out := buf.String()
	for _, want := range []string{"trace: inline", "*2", "low", "transitions: 1"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestLiveSlowRateDropsToLow(t *testing.T) {
	defer goleak.VerifyNone(t)

	qc := config.DefaultQualityConfig()
	qc.WindowMs = 200
	dev := quality.DeviceProfile{ScreenWidth: 1920, LogicalCores: 8, MemoryGB: 16}

	decisions, s := Live(context.Background(), dev, qc, 20, 700*time.Millisecond)
	if len(decisions) == 0 {
		t.Fatal("no window completed")
	}
	first := decisions[0]
	if !first.Changed || first.To.Level != quality.Low {
		t.Errorf("first decision = %+v, want change to low", first)
	}
	// 桌面设备从 high（2000）开始，降到 low 后为 floor(2000*0.3)
	if first.From.Level != quality.High {
		t.Errorf("initial level = %s, want high", first.From.Level)
	}
	if s.Final.Level != quality.Low || s.Final.ParticleCount != 600 {
		t.Errorf("final = %s/%d, want low/600", s.Final.Level, s.Final.ParticleCount)
	}
}

func TestLiveStopsOnContextCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	done := make(chan struct{})
	go func() {
		Live(ctx, quality.DeviceProfile{}, config.DefaultQualityConfig(), 60, time.Hour)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Live did not return after context cancel")
	}
}

func TestReplayAll(t *testing.T) {
	paths, err := expandTraces(filepath.Join("..", "..", "data", "traces", "*.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 4 {
		t.Fatalf("expandTraces matched %v, want 4 files", paths)
	}

	results, err := ReplayAll(context.Background(), paths, config.DefaultQualityConfig(), nil)
	if err != nil {
		t.Fatalf("ReplayAll: %v", err)
	}
	for i, r := range results {
		if r.Path != paths[i] {
			t.Errorf("results[%d].Path = %s, want %s", i, r.Path, paths[i])
		}
		if r.Summary.Windows == 0 {
			t.Errorf("%s: no windows replayed", r.Path)
		}
	}
}

func TestReplayAllDeviceOverride(t *testing.T) {
	path := filepath.Join("..", "..", "data", "traces", "steady_60.yaml")
	results, err := ReplayAll(context.Background(), []string{path}, config.DefaultQualityConfig(),
		func(d *quality.DeviceProfile) { applyDeviceFlags(d, 390, -1, -1) })
	if err != nil {
		t.Fatalf("ReplayAll: %v", err)
	}
	if got := results[0].Trace.Device.ScreenWidth; got != 390 {
		t.Errorf("device width = %d, want 390", got)
	}
}

func TestReplayAllMissingFile(t *testing.T) {
	_, err := ReplayAll(context.Background(), []string{"does-not-exist.yaml"}, config.DefaultQualityConfig(), nil)
	if err == nil || !strings.Contains(err.Error(), "does-not-exist.yaml") {
		t.Errorf("error = %v, want one naming the missing file", err)
	}
}

func TestExpandTracesLiteral(t *testing.T) {
	got, err := expandTraces("plain.yaml")
	if err != nil || len(got) != 1 || got[0] != "plain.yaml" {
		t.Errorf("expandTraces(plain.yaml) = %v, %v", got, err)
	}
}
