// simulate_session 无窗口的会话模拟程序
//
// 用 toyphysics 驱动回合控制器，按给定的瞄准偏移和力度连续投掷，
// 打印每次投掷后的得分。用于调参（data/bowling.yaml）和回归验证。
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/decker502/arbowling/internal/toyphysics"
	"github.com/decker502/arbowling/pkg/components"
	"github.com/decker502/arbowling/pkg/config"
	"github.com/decker502/arbowling/pkg/ecs"
	"github.com/decker502/arbowling/pkg/scenes"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	tickRate      = 60
	throwTimeout  = 30.0 // 单次投掷最长模拟时间（秒）
	laneHalfWidth = 0.55
	runUpLength   = 1.5
)

var (
	verbose    = flag.Bool("verbose", false, "显示详细调试信息")
	configPath = flag.String("config", "data/bowling.yaml", "保龄球调参文件路径")
	frames     = flag.Int("frames", 3, "模拟的局数")
	aim        = flag.Float64("aim", 0, "出手横向偏移（米）")
	power      = flag.Float64("power", 1.5, "出手时的加速度读数")
)

// headlessCamera 固定相机，屏幕坐标 x 直接作为横向偏移
type headlessCamera struct {
	pose components.Pose
	ball func() (ecs.EntityID, bool)
}

func (c *headlessCamera) CameraPose() components.Pose { return c.pose }

func (c *headlessCamera) ScreenToWorld(screen mgl64.Vec2, depth float64) mgl64.Vec3 {
	return c.pose.Position.Add(mgl64.Vec3{screen.X(), -depth, 0})
}

func (c *headlessCamera) PickBody(screen mgl64.Vec2) (ecs.EntityID, bool) {
	return c.ball()
}

// headlessSurface 放置前总能命中相机前方的平面
type headlessSurface struct {
	pose   components.Pose
	placed bool
}

func (s *headlessSurface) RaycastSurface(screen mgl64.Vec2) (components.Pose, bool) {
	return s.pose, !s.placed
}

type fixedSensor struct {
	magnitude float64
}

func (s fixedSensor) Acceleration() mgl64.Vec3 {
	return mgl64.Vec3{0, -s.magnitude, 0}
}

func main() {
	flag.Parse()

	if !*verbose {
		log.SetOutput(io.Discard)
	}

	cfg, err := config.LoadBowlingConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败，使用默认配置: %v\n", err)
		cfg = config.DefaultBowlingConfig()
	}

	world := toyphysics.NewWorld(toyphysics.DefaultConfig())
	camera := &headlessCamera{
		pose: components.Pose{Position: mgl64.Vec3{0, 1.1, -0.5}, Rotation: mgl64.QuatIdent()},
	}
	surface := &headlessSurface{
		pose: components.Pose{Position: mgl64.Vec3{0, 1, 0.5}, Rotation: mgl64.QuatIdent()},
	}

	rc, err := scenes.NewRoundController(cfg, scenes.Collaborators{
		Physics:  world,
		Viewport: camera,
		Surface:  surface,
		Sensor:   fixedSensor{magnitude: *power},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "创建回合控制器失败: %v\n", err)
		os.Exit(1)
	}
	camera.ball = rc.Ball
	world.SetContactHandler(rc.OnCollision)

	if !rc.OnSurfaceTap(surface.pose, components.Footprint{Width: 1.2, Depth: 1.6}) {
		fmt.Fprintln(os.Stderr, "放置球道失败")
		os.Exit(1)
	}
	surface.placed = true

	lane, _ := rc.Lane()
	origin := lane.Origin.Position
	half := lane.Length / 2
	world.SetFloor(origin.Y(), &toyphysics.Rect{
		MinX: origin.X() - laneHalfWidth,
		MaxX: origin.X() + laneHalfWidth,
		MinZ: origin.Z() - half - runUpLength,
		MaxZ: origin.Z() + half,
	})

	fmt.Println("════════════════════════════════════════════════════════")
	fmt.Printf("  球道长度 %.2f  缩放 %.3f  瞄准 %.2f  力度 %.2f\n", lane.Length, lane.ScaleFactor, *aim, *power)
	fmt.Println("════════════════════════════════════════════════════════")

	dt := 1.0 / tickRate
	for rc.View().FramesPlayed < *frames {
		before := rc.View()
		if !throwOnce(rc, world, dt) {
			fmt.Fprintf(os.Stderr, "投掷在 %.0f 秒内没有结束 (state=%s)\n", throwTimeout, rc.State())
			os.Exit(1)
		}
		after := rc.View()
		fmt.Printf("局 %d 投 %d: +%d  总分 %d  站立 %d\n",
			before.FramesPlayed+1, before.ThrowsInFrame+1,
			after.CurrentScore-before.CurrentScore, after.CurrentScore, rc.StandingPins())
	}

	view := rc.View()
	fmt.Println("════════════════════════════════════════════════════════")
	fmt.Printf("  %d 局  总分 %d  全中 %d\n", view.FramesPlayed, view.CurrentScore, view.Strikes)
}

// throwOnce 开始投掷、拖拽出球并推进模拟直到回到等待投掷
func throwOnce(rc *scenes.RoundController, world *toyphysics.World, dt float64) bool {
	rc.StartThrow()
	if !rc.OnDragStart(mgl64.Vec2{}) {
		return false
	}
	rc.OnDragMove(mgl64.Vec2{*aim, 0})
	rc.OnDragEnd()

	for elapsed := 0.0; elapsed < throwTimeout; elapsed += dt {
		world.Step(dt)
		rc.Update(dt)
		if rc.State() == scenes.RoundStateAwaitingThrow {
			return true
		}
	}
	return false
}
