package device

import (
	"bytes"
	"errors"
	"log"
	"strings"
	"testing"

	"github.com/decker502/backdrop/pkg/quality"
	"github.com/google/go-cmp/cmp"
)

const sampleMeminfo = `MemTotal:        8388608 kB
MemFree:         1048576 kB
MemAvailable:    4194304 kB
`

func fakeSource(width, cpus int, meminfo string, env map[string]string) Source {
	return Source{
		ScreenWidth: width,
		NumCPU:      cpus,
		ReadFile: func(name string) ([]byte, error) {
			if meminfo == "" {
				return nil, errors.New("no such file")
			}
			return []byte(meminfo), nil
		},
		Getenv: func(key string) string { return env[key] },
	}
}

func TestProbe(t *testing.T) {
	tests := []struct {
		name string
		src  Source
		want quality.DeviceProfile
	}{
		{
			name: "读取 meminfo",
			src:  fakeSource(1280, 8, sampleMeminfo, nil),
			want: quality.DeviceProfile{ScreenWidth: 1280, LogicalCores: 8, MemoryGB: 8},
		},
		{
			name: "没有 meminfo 时内存未知",
			src:  fakeSource(1280, 8, "", nil),
			want: quality.DeviceProfile{ScreenWidth: 1280, LogicalCores: 8},
		},
		{
			name: "环境变量覆盖",
			src: fakeSource(1280, 8, sampleMeminfo, map[string]string{
				EnvMemoryGB: "0.5",
				EnvCores:    "2",
				EnvSaveData: "true",
			}),
			want: quality.DeviceProfile{ScreenWidth: 1280, LogicalCores: 2, MemoryGB: 0.5, SaveData: true},
		},
		{
			name: "非法覆盖值被忽略",
			src: fakeSource(1280, 8, sampleMeminfo, map[string]string{
				EnvMemoryGB: "lots",
				EnvCores:    "-1",
				EnvSaveData: "maybe",
			}),
			want: quality.DeviceProfile{ScreenWidth: 1280, LogicalCores: 8, MemoryGB: 8},
		},
		{
			name: "空 Source",
			src:  Source{},
			want: quality.DeviceProfile{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Probe(tt.src)); diff != "" {
				t.Errorf("Probe() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseMeminfo(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		wantGB float64
		wantOK bool
	}{
		{"正常", "MemTotal: 4194304 kB\n", 4, true},
		{"缺少 MemTotal", "MemFree: 1024 kB\n", 0, false},
		{"数值非法", "MemTotal: abc kB\n", 0, false},
		{"空文件", "", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gb, ok := parseMeminfo([]byte(tt.data))
			if gb != tt.wantGB || ok != tt.wantOK {
				t.Errorf("parseMeminfo(%q) = %v, %v; want %v, %v", tt.data, gb, ok, tt.wantGB, tt.wantOK)
			}
		})
	}
}

func TestProbe_FeedsInitialPreset(t *testing.T) {
	tuning := quality.DefaultTuning()
	low := Probe(fakeSource(1280, 8, "MemTotal: 3145728 kB\n", nil))
	if got := quality.InitialPresetFromDevice(low, tuning).Level; got != quality.Medium {
		t.Errorf("3GB host starts at %s, want medium", got)
	}
	big := Probe(fakeSource(1920, 16, "MemTotal: 33554432 kB\n", nil))
	if got := quality.InitialPresetFromDevice(big, tuning).Level; got != quality.High {
		t.Errorf("32GB host starts at %s, want high", got)
	}
}

func TestProbe_LogsIgnoredOverrides(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Writer()
	log.SetOutput(&buf)
	defer log.SetOutput(prev)

	Probe(fakeSource(1280, 8, sampleMeminfo, map[string]string{EnvSaveData: "maybe"}))

	want := `[Device] Ignoring ` + EnvSaveData + `="maybe"`
	if !strings.Contains(buf.String(), want) {
		t.Errorf("log = %q, want it to contain %q", buf.String(), want)
	}
}
