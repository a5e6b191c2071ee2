// Package app 提供桌面沙盒的 ebiten 包装器
//
// 用俯视图和鼠标模拟 AR 设备：点击放置球道，拖拽保龄球后松手出球，
// 拖拽速度充当加速度计读数。物理由 internal/toyphysics 提供。
package app

import (
	"fmt"
	"image/color"
	"io"
	"log"

	"github.com/decker502/arbowling/internal/toyphysics"
	"github.com/decker502/arbowling/pkg/components"
	"github.com/decker502/arbowling/pkg/config"
	"github.com/decker502/arbowling/pkg/ecs"
	"github.com/decker502/arbowling/pkg/game"
	"github.com/decker502/arbowling/pkg/scenes"
	"github.com/decker502/arbowling/pkg/utils"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/quasilyte/gdata/v2"
)

// 窗口与场景尺寸
const (
	WindowWidth  = 480
	WindowHeight = 800

	pixelsPerUnit = 80.0
	nearZ         = -1.0

	// 模拟平面比相机低 0.1，球道模型再下沉 1（verticalOffset）
	surfaceHeight = 1.0
	laneHalfWidth = 0.55
	runUpLength   = 1.5

	buttonBarHeight = 48
)

var (
	colorBackground = color.RGBA{R: 24, G: 24, B: 32, A: 255}
	colorSurface    = color.RGBA{R: 60, G: 90, B: 140, A: 120}
	colorLane       = color.RGBA{R: 196, G: 160, B: 110, A: 255}
	colorFoulLine   = color.RGBA{R: 200, G: 40, B: 40, A: 255}
	colorPin        = color.RGBA{R: 245, G: 245, B: 245, A: 255}
	colorPinDown    = color.RGBA{R: 230, G: 90, B: 80, A: 255}
	colorBall       = color.RGBA{R: 40, G: 80, B: 220, A: 255}
	colorButton     = color.RGBA{R: 70, G: 70, B: 90, A: 255}
	colorButtonOff  = color.RGBA{R: 40, G: 40, B: 48, A: 255}
)

// Config 定义应用启动配置
type Config struct {
	// Verbose 启用详细日志输出
	Verbose bool

	// BowlingConfig 调参 YAML 内容，为空使用默认配置
	BowlingConfig []byte

	// AppName gdata 存储目录名，为空时不持久化成绩
	AppName string
}

// App 桌面沙盒，实现 ebiten.Game 接口
type App struct {
	config     *config.BowlingConfig
	controller *scenes.RoundController
	world      *toyphysics.World
	store      *game.ScoreStore

	projection Projection
	viewport   *desktopViewport
	surface    *desktopSurface
	sensor     *swipeSensor

	drag       *utils.DragManager
	dragging   bool
	floorReady bool
	mobile     bool

	pendingWindowSizeReset   bool
	windowSizeResetCountdown int
}

// NewApp 创建并初始化沙盒
func NewApp(cfg Config) (*App, error) {
	if !cfg.Verbose {
		log.SetOutput(io.Discard)
		log.SetFlags(0)
	}

	bowlingCfg := config.DefaultBowlingConfig()
	if len(cfg.BowlingConfig) > 0 {
		parsed, err := config.ParseBowlingConfig(cfg.BowlingConfig)
		if err != nil {
			return nil, fmt.Errorf("保龄球配置加载失败: %w", err)
		}
		bowlingCfg = parsed
	}

	var gdataManager *gdata.Manager
	if cfg.AppName != "" {
		if err := utils.EnsureStorageDir(cfg.AppName); err != nil {
			log.Printf("[App] Warning: 存档目录不可用: %v", err)
		}
		m, err := gdata.Open(gdata.Config{AppName: cfg.AppName})
		if err != nil {
			log.Printf("[App] Warning: gdata 初始化失败，成绩不会保存: %v", err)
		} else {
			gdataManager = m
		}
	}

	projection := Projection{
		ScreenWidth:   WindowWidth,
		ScreenHeight:  WindowHeight,
		PixelsPerUnit: pixelsPerUnit,
		NearZ:         nearZ,
	}
	world := toyphysics.NewWorld(toyphysics.DefaultConfig())

	a := &App{
		config:     bowlingCfg,
		world:      world,
		store:      game.NewScoreStore(gdataManager),
		projection: projection,
		viewport: &desktopViewport{
			projection: projection,
			camera:     components.Pose{Position: mgl64.Vec3{0, surfaceHeight + 0.1, -0.5}, Rotation: mgl64.QuatIdent()},
			world:      world,
		},
		surface: &desktopSurface{
			projection: projection,
			height:     surfaceHeight,
			footprint:  components.Footprint{Width: 1.2, Depth: 1.6},
		},
		sensor: &swipeSensor{Gain: 7, Min: 0.3, Max: 2.5},
		drag:   utils.NewDragManager(),
		mobile: utils.IsMobile(),
	}

	controller, err := scenes.NewRoundController(bowlingCfg, scenes.Collaborators{
		Physics:  world,
		Viewport: a.viewport,
		Surface:  a.surface,
		Sensor:   a.sensor,
		Recorder: a.store,
	})
	if err != nil {
		return nil, fmt.Errorf("回合控制器创建失败: %w", err)
	}
	a.controller = controller
	a.viewport.ball = controller.Ball
	world.SetContactHandler(controller.OnCollision)

	log.Printf("[App] 沙盒初始化完成 (best=%d)", a.store.Record().BestScore)
	return a, nil
}

// Controller 返回回合控制器
func (a *App) Controller() *scenes.RoundController {
	return a.controller
}

// Shutdown 保存成绩
func (a *App) Shutdown() error {
	return a.store.Save()
}

// Update 更新游戏逻辑
// 每个 tick 调用一次（通常每秒 60 次）
func (a *App) Update() error {
	a.handleWindow()

	deltaTime := 1.0 / float64(ebiten.TPS())

	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		a.controller.RequestPlacement()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) || inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		a.controller.StartThrow()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		a.controller.RequestReset()
		a.dragging = false
	}

	a.drag.Update()
	a.handlePointer(a.drag.GetInfo(), deltaTime)

	a.world.Step(deltaTime)
	a.controller.Update(deltaTime)
	return nil
}

// handlePointer 指针模拟触摸：放置、按钮、拖拽出球
func (a *App) handlePointer(drag utils.DragInfo, dt float64) {
	switch drag.State {
	case utils.DragStateStarted:
		if a.handleButtons(drag.Current) {
			return
		}
		if a.controller.State() == scenes.RoundStateAwaitingPlacement {
			a.tryPlace(drag.Current)
			return
		}
		a.sensor.Reset()
		a.dragging = a.controller.OnDragStart(drag.Current)
		if a.dragging {
			a.sensor.Track(a.projection.ToGround(drag.Current, 0), dt)
		}

	case utils.DragStateDragging:
		if !a.dragging {
			return
		}
		a.controller.OnDragMove(drag.Current)
		// 俯视图下球只跟随横向拖拽，甩动速度按指针在地面上的位移计算
		a.sensor.Track(a.projection.ToGround(drag.Current, 0), dt)

	case utils.DragStateEnded:
		if a.dragging {
			a.controller.OnDragEnd()
			a.dragging = false
		}
	}
}

// handleButtons 底部按钮栏：左半开始，右半复位
func (a *App) handleButtons(screen mgl64.Vec2) bool {
	if screen.Y() < WindowHeight-buttonBarHeight {
		return false
	}
	view := a.controller.View()
	if screen.X() < WindowWidth/2 {
		if view.StartEnabled {
			a.controller.StartThrow()
		}
	} else if view.ResetEnabled {
		a.controller.RequestReset()
		a.dragging = false
	}
	return true
}

// tryPlace 点击模拟平面放置球道
// 平面起点固定在玩家前方，只有横向位置跟随鼠标
func (a *App) tryPlace(screen mgl64.Vec2) {
	pose, hit := a.surface.RaycastSurface(screen)
	if !hit {
		return
	}
	pose.Position[0] = mgl64.Clamp(pose.Position.X(), -1, 1)
	pose.Position[2] = a.viewport.camera.Position.Z() + 1

	if !a.controller.OnSurfaceTap(pose, a.surface.footprint) {
		return
	}
	a.surface.hidden = true
	a.setupFloor()
}

// setupFloor 按球道范围设置地板，球道两侧和末端之外没有地板
func (a *App) setupFloor() {
	lane, ok := a.controller.Lane()
	if !ok || a.floorReady {
		return
	}
	origin := lane.Origin.Position
	half := lane.Length / 2
	a.world.SetFloor(origin.Y(), &toyphysics.Rect{
		MinX: origin.X() - laneHalfWidth,
		MaxX: origin.X() + laneHalfWidth,
		MinZ: origin.Z() - half - runUpLength,
		MaxZ: origin.Z() + half,
	})
	a.floorReady = true
	log.Printf("[App] 地板就绪: y=%.2f z=[%.2f, %.2f]", origin.Y(), origin.Z()-half-runUpLength, origin.Z()+half)
}

// handleWindow F11 切换全屏
func (a *App) handleWindow() {
	if a.pendingWindowSizeReset {
		a.windowSizeResetCountdown--
		if a.windowSizeResetCountdown <= 0 {
			ebiten.SetWindowSize(WindowWidth, WindowHeight)
			a.pendingWindowSizeReset = false
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		if ebiten.IsFullscreen() {
			ebiten.SetFullscreen(false)
			a.pendingWindowSizeReset = true
			a.windowSizeResetCountdown = 3
		} else {
			ebiten.SetFullscreen(true)
		}
	}
}

// Draw 绘制游戏画面
func (a *App) Draw(screen *ebiten.Image) {
	screen.Fill(colorBackground)

	if lane, ok := a.controller.Lane(); ok {
		a.drawLane(screen, lane)
	} else {
		a.drawSurfaceHint(screen)
	}
	a.drawPins(screen)
	a.drawBall(screen)
	a.drawHUD(screen)
}

func (a *App) drawSurfaceHint(screen *ebiten.Image) {
	x, _ := ebiten.CursorPosition()
	w := float32(a.surface.footprint.Width * pixelsPerUnit)
	d := float32(a.surface.footprint.Depth * pixelsPerUnit)
	start := a.projection.ToScreen(mgl64.Vec3{0, 0, a.viewport.camera.Position.Z() + 1})
	vector.DrawFilledRect(screen, float32(x)-w/2, float32(start.Y())-d, w, d, colorSurface, true)
}

func (a *App) drawLane(screen *ebiten.Image, lane components.LaneComponent) {
	origin := lane.Origin.Position
	half := lane.Length / 2
	topLeft := a.projection.ToScreen(mgl64.Vec3{origin.X() - laneHalfWidth, 0, origin.Z() + half})
	bottomRight := a.projection.ToScreen(mgl64.Vec3{origin.X() + laneHalfWidth, 0, origin.Z() - half - runUpLength})
	vector.DrawFilledRect(screen,
		float32(topLeft.X()), float32(topLeft.Y()),
		float32(bottomRight.X()-topLeft.X()), float32(bottomRight.Y()-topLeft.Y()),
		colorLane, true)

	foulLeft := a.projection.ToScreen(mgl64.Vec3{origin.X() - laneHalfWidth, 0, origin.Z() - half})
	foulRight := a.projection.ToScreen(mgl64.Vec3{origin.X() + laneHalfWidth, 0, origin.Z() - half})
	vector.StrokeLine(screen,
		float32(foulLeft.X()), float32(foulLeft.Y()),
		float32(foulRight.X()), float32(foulRight.Y()),
		2, colorFoulLine, true)
}

func (a *App) drawPins(screen *ebiten.Image) {
	em := a.controller.EntityManager()
	radius := float32(toyphysics.DefaultConfig().PinRadius * pixelsPerUnit)
	for _, id := range a.controller.Pins() {
		pin, ok := ecs.GetComponent[*components.PinComponent](em, id)
		if !ok || !pin.IsActive {
			continue
		}
		transform, ok := ecs.GetComponent[*components.TransformComponent](em, id)
		if !ok {
			continue
		}
		clr := colorPin
		if !utils.IsPinStanding(transform.Pose, a.config.Pins.StandingToleranceDeg) {
			clr = colorPinDown
		}
		p := a.projection.ToScreen(transform.Pose.Position)
		vector.DrawFilledCircle(screen, float32(p.X()), float32(p.Y()), radius, clr, true)
	}
}

func (a *App) drawBall(screen *ebiten.Image) {
	ball, ok := a.controller.Ball()
	if !ok {
		return
	}
	body, ok := a.world.Body(ball)
	if !ok {
		return
	}
	p := a.projection.ToScreen(body.Pose.Position)
	vector.DrawFilledCircle(screen, float32(p.X()), float32(p.Y()), float32(body.Radius*pixelsPerUnit), colorBall, true)
}

func (a *App) drawHUD(screen *ebiten.Image) {
	view := a.controller.View()
	record := a.store.Record()

	hud := fmt.Sprintf("Score: %d  Best: %d\nThrow: %d/%d  Frames: %d  Strikes: %d\nState: %s",
		view.CurrentScore, record.BestScore,
		view.ThrowsInFrame, a.config.Round.ThrowsPerFrame, view.FramesPlayed, view.Strikes,
		view.State)
	ebitenutil.DebugPrintAt(screen, hud, 8, 8)

	if view.PlacementPrompt != "" {
		ebitenutil.DebugPrintAt(screen, view.PlacementPrompt, 8, WindowHeight/2)
	}

	startLabel, resetLabel := "[S] START", "[R] RESET"
	if a.mobile {
		startLabel, resetLabel = "START", "RESET"
	}
	a.drawButton(screen, 0, startLabel, view.StartEnabled)
	a.drawButton(screen, WindowWidth/2, resetLabel, view.ResetEnabled)
}

func (a *App) drawButton(screen *ebiten.Image, x float32, label string, enabled bool) {
	clr := colorButtonOff
	if enabled {
		clr = colorButton
	}
	y := float32(WindowHeight - buttonBarHeight)
	vector.DrawFilledRect(screen, x+4, y+4, WindowWidth/2-8, buttonBarHeight-8, clr, true)
	ebitenutil.DebugPrintAt(screen, label, int(x)+WindowWidth/4-30, WindowHeight-buttonBarHeight/2-8)
}

// Layout 返回游戏的逻辑屏幕尺寸
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return WindowWidth, WindowHeight
}
