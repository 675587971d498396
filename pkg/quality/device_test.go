package quality

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"
)

func TestInitialPresetFromDevice(t *testing.T) {
	lowEnd := Preset{Level: Medium, ParticleCount: 1000, EnablePostProcessing: false, TargetFPS: 60}

	tests := []struct {
		name   string
		device DeviceProfile
		want   Preset
	}{
		{"窄屏忽略核心和内存", DeviceProfile{ScreenWidth: 600, LogicalCores: 16, MemoryGB: 32}, lowEnd},
		{"窄屏且核心未知", DeviceProfile{ScreenWidth: 600}, lowEnd},
		{"四核视为低端", DeviceProfile{ScreenWidth: 1920, LogicalCores: 4, MemoryGB: 16}, lowEnd},
		{"4GB 内存受限", DeviceProfile{ScreenWidth: 1920, LogicalCores: 8, MemoryGB: 4}, lowEnd},
		{"宽度正好 768 不算移动设备", DeviceProfile{ScreenWidth: 768, LogicalCores: 8, MemoryGB: 8}, DefaultPreset()},
		{"桌面高配", DeviceProfile{ScreenWidth: 2560, LogicalCores: 12, MemoryGB: 8}, DefaultPreset()},
		{"内存未知不触发降级", DeviceProfile{ScreenWidth: 1440, LogicalCores: 8}, DefaultPreset()},
		{"全部未知使用默认", DeviceProfile{}, DefaultPreset()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InitialPresetFromDevice(tt.device, DefaultTuning())
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("InitialPresetFromDevice(%+v) mismatch (-want +got):\n%s", tt.device, diff)
			}
		})
	}
}

func TestInitialPresetFromDevice_CustomTuning(t *testing.T) {
	tuning := DefaultTuning()
	tuning.MobileWidth = 1024
	tuning.DeviceParticleCount = 800

	got := InitialPresetFromDevice(DeviceProfile{ScreenWidth: 900, LogicalCores: 16}, tuning)
	if got.Level != Medium || got.ParticleCount != 800 {
		t.Errorf("got %+v, want medium with 800 particles", got)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"high", High, false},
		{"HIGH", High, false},
		{" medium ", Medium, false},
		{"med", Medium, false},
		{"low", Low, false},
		{"ultra", High, true},
		{"", High, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLevelYAML(t *testing.T) {
	data, err := yaml.Marshal(PresetFor(Medium, DefaultTuning()))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var p Preset
	if err := yaml.Unmarshal(data, &p); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if p.Level != Medium || p.ParticleCount != 1200 {
		t.Errorf("decoded %+v, want medium/1200", p)
	}

	if err := yaml.Unmarshal([]byte("level: ultra\n"), &p); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestPresetFor(t *testing.T) {
	tuning := DefaultTuning()
	want := map[Level]Preset{
		High:   {Level: High, ParticleCount: 2000, EnablePostProcessing: true, TargetFPS: 60},
		Medium: {Level: Medium, ParticleCount: 1200, EnablePostProcessing: true, TargetFPS: 45},
		Low:    {Level: Low, ParticleCount: 600, EnablePostProcessing: false, TargetFPS: 30},
	}
	for _, level := range Levels {
		if diff := cmp.Diff(want[level], PresetFor(level, tuning)); diff != "" {
			t.Errorf("PresetFor(%s) mismatch (-want +got):\n%s", level, diff)
		}
	}
}

func TestThresholdsValidate(t *testing.T) {
	if err := DefaultThresholds().Validate(); err != nil {
		t.Errorf("default thresholds invalid: %v", err)
	}
	bad := []Thresholds{
		{Low: 0, Medium: 45, High: 55},
		{Low: 30, Medium: 30, High: 55},
		{Low: 30, Medium: 45, High: 40},
	}
	for _, th := range bad {
		if err := th.Validate(); err == nil {
			t.Errorf("Validate(%+v) should fail", th)
		}
	}
}

func TestTuningValidate(t *testing.T) {
	if err := DefaultTuning().Validate(); err != nil {
		t.Errorf("default tuning invalid: %v", err)
	}
	tuning := DefaultTuning()
	tuning.LowScale = 1.5
	if err := tuning.Validate(); err == nil {
		t.Error("lowScale > 1 should fail")
	}
	tuning = DefaultTuning()
	tuning.MediumTargetFPS = 0
	if err := tuning.Validate(); err == nil {
		t.Error("zero target fps should fail")
	}
}
