package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/decker502/backdrop/pkg/config"
	"gopkg.in/yaml.v3"
)

// 检查 data/ 下的配置和帧率记录是否能被正确解析
//
// 用法: go run ./tools [配置文件路径]
func main() {
	path := config.QualityConfigPath
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	cfg, err := config.LoadQualityConfig(path)
	if err != nil {
		fmt.Printf("❌ %s: %v\n", path, err)
		os.Exit(1)
	}
	fmt.Printf("✅ %s 格式正确\n", path)
	fmt.Printf("✅ 阈值 %.0f/%.0f/%.0f，窗口 %dms，满额粒子 %d\n",
		cfg.Thresholds.Low, cfg.Thresholds.Medium, cfg.Thresholds.High, cfg.WindowMs, cfg.Tuning.HighParticleCount)

	traces, _ := filepath.Glob("data/traces/*.yaml")
	failed := 0
	for _, tp := range traces {
		data, err := os.ReadFile(tp)
		if err != nil {
			fmt.Printf("❌ 读取 %s 失败: %v\n", tp, err)
			failed++
			continue
		}
		var doc map[string]interface{}
		if err := yaml.Unmarshal(data, &doc); err != nil {
			fmt.Printf("❌ %s YAML 解析失败: %v\n", tp, err)
			failed++
			continue
		}
		if _, ok := doc["fps"]; !ok {
			if _, ok := doc["frames"]; !ok {
				fmt.Printf("❌ %s 缺少 fps 或 frames\n", tp)
				failed++
			}
		}
	}

	if failed > 0 {
		fmt.Printf("❌ 有 %d 个记录文件无效\n", failed)
		os.Exit(1)
	}
	fmt.Printf("✅ %d 个记录文件都有效\n", len(traces))
}
