package app

import (
	"math"

	"github.com/decker502/arbowling/internal/toyphysics"
	"github.com/decker502/arbowling/pkg/components"
	"github.com/decker502/arbowling/pkg/ecs"
	"github.com/go-gl/mathgl/mgl64"
)

// 桌面沙盒用俯视图模拟 AR 设备：
// 屏幕 x 对应世界 X，屏幕 y 向上对应世界 +Z（远离玩家）。

// Projection 俯视投影
type Projection struct {
	ScreenWidth   float64
	ScreenHeight  float64
	PixelsPerUnit float64

	// NearZ 屏幕底边对应的世界 Z
	NearZ float64
}

// ToScreen 世界坐标转屏幕坐标（忽略高度）
func (p Projection) ToScreen(world mgl64.Vec3) mgl64.Vec2 {
	return mgl64.Vec2{
		p.ScreenWidth/2 + world.X()*p.PixelsPerUnit,
		p.ScreenHeight - (world.Z()-p.NearZ)*p.PixelsPerUnit,
	}
}

// ToGround 屏幕坐标转世界水平面坐标（Y 由调用方决定）
func (p Projection) ToGround(screen mgl64.Vec2, y float64) mgl64.Vec3 {
	return mgl64.Vec3{
		(screen.X() - p.ScreenWidth/2) / p.PixelsPerUnit,
		y,
		(p.ScreenHeight-screen.Y())/p.PixelsPerUnit + p.NearZ,
	}
}

// desktopViewport 固定相机 + 俯视拾取
type desktopViewport struct {
	projection Projection
	camera     components.Pose
	world      *toyphysics.World

	// ball 当前保龄球（由 App 每帧注入）
	ball func() (ecs.EntityID, bool)
}

func (v *desktopViewport) CameraPose() components.Pose {
	return v.camera
}

// ScreenToWorld 投影到相机下方 depth 处的水平面
func (v *desktopViewport) ScreenToWorld(screen mgl64.Vec2, depth float64) mgl64.Vec3 {
	return v.projection.ToGround(screen, v.camera.Position.Y()-depth)
}

// PickBody 只拾取保龄球，点击半径放宽到两倍球半径
func (v *desktopViewport) PickBody(screen mgl64.Vec2) (ecs.EntityID, bool) {
	if v.ball == nil {
		return ecs.InvalidEntity, false
	}
	id, ok := v.ball()
	if !ok {
		return ecs.InvalidEntity, false
	}
	body, ok := v.world.Body(id)
	if !ok {
		return ecs.InvalidEntity, false
	}
	center := v.projection.ToScreen(body.Pose.Position)
	if center.Sub(screen).Len() > body.Radius*2*v.projection.PixelsPerUnit {
		return ecs.InvalidEntity, false
	}
	return id, true
}

// desktopSurface 模拟检测到的平面，放置后隐藏（不再命中）
type desktopSurface struct {
	projection Projection
	height     float64
	footprint  components.Footprint
	hidden     bool
}

func (s *desktopSurface) RaycastSurface(screen mgl64.Vec2) (components.Pose, bool) {
	if s.hidden {
		return components.Pose{}, false
	}
	return components.Pose{
		Position: s.projection.ToGround(screen, s.height),
		Rotation: mgl64.QuatIdent(),
	}, true
}

// swipeSensor 用拖拽速度模拟加速度计
//
// 松手时的读数 = 最近的拖拽速度 / Gain，限制在 [Min, Max]。
type swipeSensor struct {
	Gain float64
	Min  float64
	Max  float64

	last     mgl64.Vec3
	hasLast  bool
	velocity float64 // 指数平滑后的速度（单位/秒）
}

// Track 记录一帧拖拽位置
func (s *swipeSensor) Track(position mgl64.Vec3, dt float64) {
	if s.hasLast && dt > 0 {
		speed := position.Sub(s.last).Len() / dt
		s.velocity = 0.6*s.velocity + 0.4*speed
	}
	s.last = position
	s.hasLast = true
}

// Reset 新的拖拽开始
func (s *swipeSensor) Reset() {
	s.hasLast = false
	s.velocity = 0
}

// Acceleration 实现 game.MotionSensor
func (s *swipeSensor) Acceleration() mgl64.Vec3 {
	magnitude := s.Min
	if s.Gain > 0 {
		magnitude = math.Max(s.Min, math.Min(s.Max, s.velocity/s.Gain))
	}
	return mgl64.Vec3{0, -magnitude, 0}
}
