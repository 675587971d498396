// Package device 探测宿主设备信息，生成画质控制器使用的 DeviceProfile
//
// 桌面端从 runtime 和 /proc/meminfo 获取核心数与内存；环境变量可以覆盖探测结果，
// 便于在开发机上模拟低端设备。
package device

import (
	"bufio"
	"bytes"
	"log"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/decker502/backdrop/pkg/quality"
)

// 覆盖探测结果的环境变量
const (
	EnvMemoryGB = "BACKDROP_DEVICE_MEMORY_GB"
	EnvCores    = "BACKDROP_DEVICE_CORES"
	EnvSaveData = "BACKDROP_SAVE_DATA"
)

// MeminfoPath Linux 内存信息文件
const MeminfoPath = "/proc/meminfo"

// Source 探测所需的输入，测试中替换为假数据
type Source struct {
	ScreenWidth int
	NumCPU      int
	ReadFile    func(name string) ([]byte, error)
	Getenv      func(key string) string
}

// Host 返回读取真实宿主环境的 Source
func Host(screenWidth int) Source {
	return Source{
		ScreenWidth: screenWidth,
		NumCPU:      runtime.NumCPU(),
		ReadFile:    os.ReadFile,
		Getenv:      os.Getenv,
	}
}

// Probe 生成设备描述
//
// 探测不到的值保持为 0（未知），未知值不会触发低端设备判定。
func Probe(src Source) quality.DeviceProfile {
	d := quality.DeviceProfile{
		ScreenWidth:  max(0, src.ScreenWidth),
		LogicalCores: max(0, src.NumCPU),
	}

	if src.ReadFile != nil {
		if data, err := src.ReadFile(MeminfoPath); err == nil {
			if gb, ok := parseMeminfo(data); ok {
				d.MemoryGB = gb
			}
		}
	}

	if src.Getenv == nil {
		return d
	}
	if v := src.Getenv(EnvMemoryGB); v != "" {
		if gb, err := strconv.ParseFloat(v, 64); err == nil && gb >= 0 {
			d.MemoryGB = gb
		} else {
			log.Printf("[Device] Ignoring %s=%q", EnvMemoryGB, v)
		}
	}
	if v := src.Getenv(EnvCores); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			d.LogicalCores = n
		} else {
			log.Printf("[Device] Ignoring %s=%q", EnvCores, v)
		}
	}
	if v := src.Getenv(EnvSaveData); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			d.SaveData = b
		} else {
			log.Printf("[Device] Ignoring %s=%q", EnvSaveData, v)
		}
	}
	return d
}

// parseMeminfo 读取 MemTotal 并换算为 GB
func parseMeminfo(data []byte) (float64, bool) {
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 2 || fields[0] != "MemTotal:" {
			continue
		}
		kb, err := strconv.ParseFloat(fields[1], 64)
		if err != nil || kb <= 0 {
			return 0, false
		}
		return kb / (1024 * 1024), true
	}
	return 0, false
}
