// analyze_quality 回放帧率记录，打印自适应画质控制器的每次决策
//
// 用法:
//
//	go run ./cmd/analyze_quality --trace data/traces/degrading.yaml
//	go run ./cmd/analyze_quality --trace data/traces/oscillation.yaml --width 600 --verbose
//	go run ./cmd/analyze_quality --trace 'data/traces/*.yaml'
//	go run ./cmd/analyze_quality --live 5s --rate 25
//
// 记录文件可以给出每个窗口的 fps（fps: [...]），也可以给出逐帧时间戳（frames: [...]，毫秒），
// 后者会按真实的采样窗口逻辑重新计算 fps。
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/decker502/backdrop/internal/device"
	"github.com/decker502/backdrop/pkg/config"
	"github.com/decker502/backdrop/pkg/frame"
	"github.com/decker502/backdrop/pkg/quality"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

var (
	traceFlag   = flag.String("trace", "data/traces/degrading.yaml", "Trace file or glob pattern to replay")
	configFlag  = flag.String("config", "", "Quality config file (default: built-in defaults)")
	widthFlag   = flag.Int("width", -1, "Override the trace's screen width")
	coresFlag   = flag.Int("cores", -1, "Override the trace's logical core count")
	memoryFlag  = flag.Float64("memory", -1, "Override the trace's memory in GB")
	verboseFlag = flag.Bool("verbose", false, "Enable verbose logging (default off)")
	liveFlag    = flag.Duration("live", 0, "Drive the controller in real time for this long instead of replaying a trace")
	rateFlag    = flag.Int("rate", 60, "Frame rate delivered in --live mode")
)

// Trace 一段帧率记录
type Trace struct {
	Name     string                `yaml:"name"`
	Device   quality.DeviceProfile `yaml:"device"`
	WindowMs int                   `yaml:"windowMs"`
	FPS      []int                 `yaml:"fps"`
	Frames   []float64             `yaml:"frames"` // 逐帧时间戳（毫秒）
}

// Decision 一个采样窗口的结果
type Decision struct {
	Window  int
	FPS     int
	From    quality.Preset
	To      quality.Preset
	Changed bool
}

// Summary 回放汇总
type Summary struct {
	Windows      int
	Transitions  int
	Oscillations int // A -> B -> A 的往返次数
	Final        quality.Preset
}

// LoadTrace 读取并检查记录文件
func LoadTrace(path string) (*Trace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read trace: %w", err)
	}
	return ParseTrace(data)
}

// ParseTrace 解析 YAML 记录
func ParseTrace(data []byte) (*Trace, error) {
	var tr Trace
	if err := yaml.Unmarshal(data, &tr); err != nil {
		return nil, fmt.Errorf("failed to parse trace: %w", err)
	}
	if len(tr.FPS) == 0 && len(tr.Frames) == 0 {
		return nil, fmt.Errorf("trace %q has neither fps nor frames", tr.Name)
	}
	if len(tr.FPS) > 0 && len(tr.Frames) > 0 {
		return nil, fmt.Errorf("trace %q has both fps and frames, pick one", tr.Name)
	}
	for i := 1; i < len(tr.Frames); i++ {
		if tr.Frames[i] < tr.Frames[i-1] {
			return nil, fmt.Errorf("trace %q: frame %d goes back in time (%.1f < %.1f)",
				tr.Name, i, tr.Frames[i], tr.Frames[i-1])
		}
	}
	return &tr, nil
}

// recorder 记录控制器在每个采样窗口的决策
type recorder struct {
	c         *quality.Controller
	pending   *Decision
	decisions []Decision
}

func newRecorder(initial quality.Preset, window time.Duration, qc *config.QualityConfig) *recorder {
	r := &recorder{}
	r.c = quality.NewController(initial,
		quality.WithThresholds(qc.Thresholds),
		quality.WithTuning(qc.Tuning),
		quality.WithWindow(window),
		quality.WithOnChange(func(from, to quality.Preset, fps int) {
			if r.pending != nil {
				r.pending.To = to
				r.pending.Changed = true
			}
		}),
	)
	return r
}

// adjust 直接喂入一个窗口的 fps
func (r *recorder) adjust(fps int) {
	d := Decision{Window: len(r.decisions) + 1, FPS: fps, From: r.c.Preset(), To: r.c.Preset()}
	r.pending = &d
	r.c.Adjust(fps)
	r.pending = nil
	r.decisions = append(r.decisions, d)
}

// sample 喂入一帧，窗口结束时记录决策
func (r *recorder) sample(now time.Duration) {
	from := r.c.Preset()
	d := Decision{From: from, To: from}
	r.pending = &d
	fps, measured := r.c.SampleFrame(now)
	r.pending = nil
	if measured {
		d.Window = len(r.decisions) + 1
		d.FPS = fps
		r.decisions = append(r.decisions, d)
	}
}

func (r *recorder) result() ([]Decision, Summary) {
	return r.decisions, Summarize(r.decisions, r.c.Preset())
}

// Replay 以设备初始预设为起点回放记录
func Replay(tr *Trace, qc *config.QualityConfig) ([]Decision, Summary) {
	window := qc.Window()
	if tr.WindowMs > 0 {
		window = time.Duration(tr.WindowMs) * time.Millisecond
	}
	r := newRecorder(quality.InitialPresetFromDevice(tr.Device, qc.Tuning), window, qc)

	if len(tr.FPS) > 0 {
		for _, fps := range tr.FPS {
			r.adjust(fps)
		}
	} else {
		for _, ms := range tr.Frames {
			r.sample(time.Duration(ms * float64(time.Millisecond)))
		}
	}
	return r.result()
}

// Result 一个记录文件的回放结果
type Result struct {
	Path      string
	Trace     *Trace
	Decisions []Decision
	Summary   Summary
}

// ReplayAll 并发回放多个记录文件，结果顺序与 paths 一致
//
// 任一文件读取失败时取消其余回放并返回该错误。
// adjust 非空时在回放前修改每个记录的设备信息。
func ReplayAll(ctx context.Context, paths []string, qc *config.QualityConfig, adjust func(*quality.DeviceProfile)) ([]Result, error) {
	results := make([]Result, len(paths))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.NumCPU())
	for i, path := range paths {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			tr, err := LoadTrace(path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			if adjust != nil {
				adjust(&tr.Device)
			}
			decisions, summary := Replay(tr, qc)
			results[i] = Result{Path: path, Trace: tr, Decisions: decisions, Summary: summary}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// expandTraces 展开 glob，没有通配符时原样返回
func expandTraces(pattern string) ([]string, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid trace pattern %q: %w", pattern, err)
	}
	if len(matches) == 0 {
		return []string{pattern}, nil
	}
	return matches, nil
}

// Live 以固定帧率实时驱动控制器，持续 d 或直到 ctx 取消
//
// 帧由 frame.Start 在独立 goroutine 中投递，返回前等待该 goroutine 退出。
func Live(ctx context.Context, dev quality.DeviceProfile, qc *config.QualityConfig, rate int, d time.Duration) ([]Decision, Summary) {
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	r := newRecorder(quality.InitialPresetFromDevice(dev, qc.Tuning), qc.Window(), qc)
	h := frame.Start(ctx, frame.RateInterval(rate), frame.NewMonotonicClock(), r.sample)
	<-h.Done()

	return r.result()
}

// Summarize 统计切换和往返次数
func Summarize(decisions []Decision, final quality.Preset) Summary {
	s := Summary{Windows: len(decisions), Final: final}
	var prev *Decision
	for i := range decisions {
		d := &decisions[i]
		if !d.Changed {
			continue
		}
		s.Transitions++
		if prev != nil && prev.From.Level == d.To.Level && prev.To.Level == d.From.Level {
			s.Oscillations++
		}
		prev = d
	}
	return s
}

// Print 输出决策表和汇总
func Print(w io.Writer, tr *Trace, decisions []Decision, s Summary) {
	fmt.Fprintf(w, "trace: %s\n", tr.Name)
	fmt.Fprintf(w, "device: width=%d cores=%d memory=%.1fGB saveData=%v\n\n",
		tr.Device.ScreenWidth, tr.Device.LogicalCores, tr.Device.MemoryGB, tr.Device.SaveData)
	fmt.Fprintf(w, "%-7s %5s  %-8s %9s %5s %6s\n", "window", "fps", "level", "particles", "post", "target")
	fmt.Fprintln(w, strings.Repeat("-", 47))
	for _, d := range decisions {
		mark := " "
		if d.Changed {
			mark = "*"
		}
		fmt.Fprintf(w, "%s%-6d %5d  %-8s %9d %5v %6d\n",
			mark, d.Window, d.FPS, d.To.Level, d.To.ParticleCount, d.To.EnablePostProcessing, d.To.TargetFPS)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "windows: %d  transitions: %d  oscillations: %d  final: %s/%d\n",
		s.Windows, s.Transitions, s.Oscillations, s.Final.Level, s.Final.ParticleCount)
}

// applyDeviceFlags 命令行参数覆盖记录中的设备信息，负数表示不覆盖
func applyDeviceFlags(d *quality.DeviceProfile, width, cores int, memory float64) {
	if width >= 0 {
		d.ScreenWidth = width
	}
	if cores >= 0 {
		d.LogicalCores = cores
	}
	if memory >= 0 {
		d.MemoryGB = memory
	}
}

func main() {
	flag.Parse()

	if !*verboseFlag {
		log.SetOutput(io.Discard)
	}

	qc := config.DefaultQualityConfig()
	if *configFlag != "" {
		loaded, err := config.LoadQualityConfig(*configFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
			os.Exit(1)
		}
		qc = loaded
	}

	if *liveFlag > 0 {
		dev := device.Probe(device.Host(max(*widthFlag, 0)))
		applyDeviceFlags(&dev, -1, *coresFlag, *memoryFlag)
		tr := &Trace{Name: fmt.Sprintf("live %dfps for %v", *rateFlag, *liveFlag), Device: dev}
		decisions, summary := Live(context.Background(), dev, qc, *rateFlag, *liveFlag)
		Print(os.Stdout, tr, decisions, summary)
		return
	}

	paths, err := expandTraces(*traceFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	results, err := ReplayAll(context.Background(), paths, qc, func(d *quality.DeviceProfile) {
		applyDeviceFlags(d, *widthFlag, *coresFlag, *memoryFlag)
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "读取记录失败: %v\n", err)
		os.Exit(1)
	}
	for i, r := range results {
		if i > 0 {
			fmt.Println()
		}
		Print(os.Stdout, r.Trace, r.Decisions, r.Summary)
	}
}
