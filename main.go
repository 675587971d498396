package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/decker502/backdrop/pkg/app"
	"github.com/decker502/backdrop/pkg/config"
	"github.com/decker502/backdrop/pkg/embedded"
	"github.com/decker502/backdrop/pkg/game"
	"github.com/hajimehoshi/ebiten/v2"
)

var (
	verboseFlag = flag.Bool("verbose", false, "Enable verbose logging (default off)")
	configFlag  = flag.String("config", "", "External quality config file (overrides the embedded data/quality.yaml)")
	watchFlag   = flag.Bool("watch", true, "Reload --config when the file changes")
	sceneFlag   = flag.String("scene", "", "Start scene: backdrop | playground (default: last used)")
	shaderFlag  = flag.String("shader", "", "Playground shader: aurora | galaxy | nebula")
	qualityFlag = flag.String("quality", "", "Quality: auto | high | medium | low (default: saved setting)")
	bgFlag      = flag.String("bg", "", "Line background level: off | low | med | high")
)

func main() {
	flag.Parse()

	// 初始化嵌入配置
	embedded.Init(dataFS)

	gameApp, err := app.NewApp(app.Config{
		Verbose:    *verboseFlag,
		ConfigPath: *configFlag,
		Watch:      *watchFlag,
		Scene:      *sceneFlag,
		Shader:     *shaderFlag,
		Quality:    *qualityFlag,
		Background: *bgFlag,
		OpenStore:  game.OpenSettingsStore,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化失败: %v\n", err)
		os.Exit(1)
	}

	ebiten.SetWindowSize(config.WindowWidth, config.WindowHeight)
	ebiten.SetWindowTitle(config.WindowTitle)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowClosingHandled(true)

	if err := ebiten.RunGame(gameApp); err != nil {
		log.Fatal(err)
	}
}
