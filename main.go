package main

import (
	"flag"
	"log"
	"os"

	"github.com/decker502/arbowling/pkg/app"
	"github.com/decker502/arbowling/pkg/embedded"
	"github.com/hajimehoshi/ebiten/v2"
)

const bowlingConfigPath = "data/bowling.yaml"

var (
	verbose    = flag.Bool("verbose", false, "显示详细调试信息")
	configPath = flag.String("config", "", "保龄球调参文件路径（为空使用内嵌配置）")
	noSave     = flag.Bool("no-save", false, "不读写本地成绩存档")
)

func main() {
	flag.Parse()

	embedded.Init(dataFS)

	configData, err := readBowlingConfig(*configPath)
	if err != nil {
		log.Fatalf("读取配置失败: %v", err)
	}

	cfg := app.Config{
		Verbose:       *verbose,
		BowlingConfig: configData,
		AppName:       "arbowling",
	}
	if *noSave {
		cfg.AppName = ""
	}

	gameApp, err := app.NewApp(cfg)
	if err != nil {
		log.Fatalf("游戏初始化失败: %v", err)
	}

	ebiten.SetWindowSize(app.WindowWidth, app.WindowHeight)
	ebiten.SetWindowTitle("AR Bowling - 桌面沙盒")

	// This will call Update() and Draw() repeatedly until the window is closed
	if err := ebiten.RunGame(gameApp); err != nil {
		log.Fatal(err)
	}

	if err := gameApp.Shutdown(); err != nil {
		log.Printf("保存成绩失败: %v", err)
	}
}

// readBowlingConfig 优先读取命令行指定的文件，否则读取内嵌配置
func readBowlingConfig(path string) ([]byte, error) {
	if path != "" {
		return os.ReadFile(path)
	}
	return embedded.ReadFile(bowlingConfigPath)
}
