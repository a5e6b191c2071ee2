//go:build mobile

// 只在 -tags mobile 时编译，init 中向 ebitenmobile 注册游戏

package mobile

import (
	"log"

	"github.com/hajimehoshi/ebiten/v2/mobile"

	"github.com/decker502/arbowling/pkg/app"
	"github.com/decker502/arbowling/pkg/embedded"
)

func init() {
	// dataFS 在 embed.go 中声明
	embedded.Init(dataFS)

	configData, err := embedded.ReadFile("data/bowling.yaml")
	if err != nil {
		log.Printf("读取内嵌配置失败，使用默认配置: %v", err)
	}

	cfg := app.Config{
		Verbose:       true,
		BowlingConfig: configData,
		AppName:       "arbowling",
	}

	gameApp, err := app.NewApp(cfg)
	if err != nil {
		log.Fatalf("游戏初始化失败: %v", err)
	}

	// 注册游戏到 ebitenmobile
	mobile.SetGame(gameApp)
}

// Dummy ebitenmobile bind 要求包里至少有一个导出符号
func Dummy() {}
