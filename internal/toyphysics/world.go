// Package toyphysics 极简刚体模拟
//
// 只服务于桌面沙盒和端到端测试：球体-球体碰撞、无限地板（可限定矩形范围）、
// 重力、摩擦和"被撞球瓶翻倒"的动画。不追求物理真实。
package toyphysics

import (
	"math"
	"sort"

	"github.com/decker502/arbowling/pkg/components"
	"github.com/decker502/arbowling/pkg/ecs"
	"github.com/decker502/arbowling/pkg/game"
	"github.com/decker502/arbowling/pkg/utils"
	"github.com/go-gl/mathgl/mgl64"
)

// Config 模拟参数
type Config struct {
	Gravity float64

	BallRadius float64
	BallMass   float64
	PinRadius  float64
	PinMass    float64

	// PinRestHeight 球瓶中心离地面的高度
	PinRestHeight float64

	// Friction 贴地时水平速度每秒衰减比例
	Friction float64

	// SleepSpeed 贴地且速度低于该值时直接归零
	SleepSpeed float64

	// ToppleSpeed 相对速度超过该值的撞击会让球瓶翻倒
	ToppleSpeed float64

	// ToppleRate 翻倒角速度（弧度/秒）
	ToppleRate float64

	// TippedRestDeg 翻倒动画停止的倾角
	TippedRestDeg float64
}

// DefaultConfig 默认参数
func DefaultConfig() Config {
	return Config{
		Gravity:       9.81,
		BallRadius:    0.11,
		BallMass:      7.0,
		PinRadius:     0.06,
		PinMass:       1.5,
		PinRestHeight: 0.255,
		Friction:      0.6,
		SleepSpeed:    0.05,
		ToppleSpeed:   0.3,
		ToppleRate:    10.0,
		TippedRestDeg: 150.0,
	}
}

// Rect 水平矩形（XZ 平面）
type Rect struct {
	MinX, MaxX float64
	MinZ, MaxZ float64
}

// Contains 点是否在矩形内
func (r Rect) Contains(p mgl64.Vec3) bool {
	return p.X() >= r.MinX && p.X() <= r.MaxX && p.Z() >= r.MinZ && p.Z() <= r.MaxZ
}

// Body 刚体
type Body struct {
	ID              ecs.EntityID
	Kind            components.BodyKind
	Pose            components.Pose
	LinearVelocity  mgl64.Vec3
	AngularVelocity mgl64.Vec3
	Kinematic       bool
	UseGravity      bool
	Active          bool
	Radius          float64
	Mass            float64

	// Toppling 球瓶正在翻倒
	Toppling bool
}

type pairKey struct{ a, b ecs.EntityID }

func makePair(a, b ecs.EntityID) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{a, b}
}

// World 模拟世界，实现 game.PhysicsWorld
type World struct {
	config Config

	bodies map[ecs.EntityID]*Body

	hasFloor    bool
	floorY      float64
	floorBounds *Rect

	touching       map[pairKey]bool
	contactHandler func(a, b ecs.EntityID)
}

var _ game.PhysicsWorld = (*World)(nil)

// NewWorld 创建模拟世界（默认无地板）
func NewWorld(cfg Config) *World {
	return &World{
		config:   cfg,
		bodies:   make(map[ecs.EntityID]*Body),
		touching: make(map[pairKey]bool),
	}
}

// SetFloor 设置地板高度和范围，bounds 为 nil 表示无限大
func (w *World) SetFloor(y float64, bounds *Rect) {
	w.hasFloor = true
	w.floorY = y
	w.floorBounds = bounds
}

// SetContactHandler 设置接触回调（两个刚体开始接触时调用一次）
func (w *World) SetContactHandler(fn func(a, b ecs.EntityID)) {
	w.contactHandler = fn
}

// Body 返回刚体副本
func (w *World) Body(id ecs.EntityID) (Body, bool) {
	b, ok := w.bodies[id]
	if !ok {
		return Body{}, false
	}
	return *b, true
}

// BodyCount 刚体数量
func (w *World) BodyCount() int {
	return len(w.bodies)
}

// Bodies 按ID升序返回所有刚体副本
func (w *World) Bodies() []Body {
	result := make([]Body, 0, len(w.bodies))
	for _, id := range w.sortedIDs() {
		result = append(result, *w.bodies[id])
	}
	return result
}

// CreateBody 实现 game.PhysicsWorld
func (w *World) CreateBody(id ecs.EntityID, kind components.BodyKind, pose components.Pose) {
	body := &Body{
		ID:         id,
		Kind:       kind,
		Pose:       pose,
		UseGravity: true,
		Active:     true,
	}
	switch kind {
	case components.BodyKindBall:
		body.Radius = w.config.BallRadius
		body.Mass = w.config.BallMass
	default:
		body.Radius = w.config.PinRadius
		body.Mass = w.config.PinMass
	}
	w.bodies[id] = body
}

// DestroyBody 实现 game.PhysicsWorld
func (w *World) DestroyBody(id ecs.EntityID) {
	delete(w.bodies, id)
	for key := range w.touching {
		if key.a == id || key.b == id {
			delete(w.touching, key)
		}
	}
}

// BodyState 实现 game.PhysicsWorld
func (w *World) BodyState(id ecs.EntityID) (game.BodyState, bool) {
	b, ok := w.bodies[id]
	if !ok {
		return game.BodyState{}, false
	}
	return game.BodyState{
		Pose:            b.Pose,
		LinearVelocity:  b.LinearVelocity,
		AngularVelocity: b.AngularVelocity,
	}, true
}

// SetPose 实现 game.PhysicsWorld
func (w *World) SetPose(id ecs.EntityID, pose components.Pose) {
	if b, ok := w.bodies[id]; ok {
		b.Pose = pose
		if b.Kind == components.BodyKindPin {
			b.Toppling = false
		}
	}
}

// SetVelocity 实现 game.PhysicsWorld
func (w *World) SetVelocity(id ecs.EntityID, linear, angular mgl64.Vec3) {
	if b, ok := w.bodies[id]; ok {
		b.LinearVelocity = linear
		b.AngularVelocity = angular
		if b.Kind == components.BodyKindPin && angular.Len() == 0 {
			b.Toppling = false
		}
	}
}

// SetDynamics 实现 game.PhysicsWorld
func (w *World) SetDynamics(id ecs.EntityID, kinematic, useGravity bool) {
	if b, ok := w.bodies[id]; ok {
		b.Kinematic = kinematic
		b.UseGravity = useGravity
	}
}

// ApplyImpulse 实现 game.PhysicsWorld
func (w *World) ApplyImpulse(id ecs.EntityID, impulse mgl64.Vec3) {
	b, ok := w.bodies[id]
	if !ok || b.Kinematic || b.Mass <= 0 {
		return
	}
	b.LinearVelocity = b.LinearVelocity.Add(impulse.Mul(1 / b.Mass))
}

// SetActive 实现 game.PhysicsWorld
func (w *World) SetActive(id ecs.EntityID, active bool) {
	if b, ok := w.bodies[id]; ok {
		b.Active = active
		if !active {
			for key := range w.touching {
				if key.a == id || key.b == id {
					delete(w.touching, key)
				}
			}
		}
	}
}

// Step 推进模拟 dt 秒
func (w *World) Step(dt float64) {
	if dt <= 0 {
		return
	}
	ids := w.sortedIDs()

	for _, id := range ids {
		b := w.bodies[id]
		if !b.Active || b.Kinematic {
			continue
		}
		w.integrate(b, dt)
	}

	w.resolveContacts(ids)
}

// integrate 单个刚体积分
func (w *World) integrate(b *Body, dt float64) {
	if b.UseGravity {
		b.LinearVelocity[1] -= w.config.Gravity * dt
	}
	b.Pose.Position = b.Pose.Position.Add(b.LinearVelocity.Mul(dt))

	restHeight := b.Radius
	if b.Kind == components.BodyKindPin {
		restHeight = w.config.PinRestHeight
	}

	onFloor := false
	if w.hasFloor && (w.floorBounds == nil || w.floorBounds.Contains(b.Pose.Position)) {
		floorTop := w.floorY + restHeight
		// 只接住从上方落下的物体，已经掉到地板下方太多的不再托起
		if b.Pose.Position.Y() < floorTop && b.Pose.Position.Y() > w.floorY-restHeight {
			b.Pose.Position[1] = floorTop
			if b.LinearVelocity.Y() < 0 {
				b.LinearVelocity[1] = 0
			}
			onFloor = true
		}
	}

	if onFloor {
		decay := math.Max(0, 1-w.config.Friction*dt)
		b.LinearVelocity[0] *= decay
		b.LinearVelocity[2] *= decay
		horizontal := mgl64.Vec3{b.LinearVelocity.X(), 0, b.LinearVelocity.Z()}
		if horizontal.Len() < w.config.SleepSpeed {
			b.LinearVelocity[0] = 0
			b.LinearVelocity[2] = 0
		}
		if b.Kind == components.BodyKindBall {
			// 纯滚动：ω = up × v / r
			b.AngularVelocity = components.WorldUp.Cross(horizontal).Mul(1 / b.Radius)
			if horizontal.Len() < w.config.SleepSpeed {
				b.AngularVelocity = mgl64.Vec3{}
			}
		}
	}

	if b.Kind == components.BodyKindPin && b.Toppling {
		w.topple(b, dt)
	}
}

// topple 推进球瓶翻倒动画，到达 TippedRestDeg 后停止
func (w *World) topple(b *Body, dt float64) {
	rate := b.AngularVelocity.Len()
	if rate == 0 {
		b.Toppling = false
		return
	}
	axis := b.AngularVelocity.Mul(1 / rate)
	step := mgl64.QuatRotate(rate*dt, axis)
	b.Pose.Rotation = step.Mul(b.Pose.Rotation).Normalize()

	if utils.ForwardTiltDeg(b.Pose) >= w.config.TippedRestDeg {
		b.Toppling = false
		b.AngularVelocity = mgl64.Vec3{}
	}
}

// resolveContacts 球体碰撞检测与响应
func (w *World) resolveContacts(ids []ecs.EntityID) {
	for i := 0; i < len(ids); i++ {
		a := w.bodies[ids[i]]
		if !a.Active {
			continue
		}
		for j := i + 1; j < len(ids); j++ {
			b := w.bodies[ids[j]]
			if !b.Active {
				continue
			}
			key := makePair(a.ID, b.ID)

			delta := b.Pose.Position.Sub(a.Pose.Position)
			// 只在水平面上判定接触
			delta[1] = 0
			dist := delta.Len()
			minDist := a.Radius + b.Radius
			if dist >= minDist || (a.Kinematic && b.Kinematic) {
				delete(w.touching, key)
				continue
			}

			normal := mgl64.Vec3{0, 0, 1}
			if dist > 1e-9 {
				normal = delta.Mul(1 / dist)
			}
			w.separate(a, b, normal, minDist-dist)
			w.exchangeMomentum(a, b, normal)

			if !w.touching[key] {
				w.touching[key] = true
				if w.contactHandler != nil {
					w.contactHandler(a.ID, b.ID)
				}
			}
		}
	}
}

// separate 按质量反比推开重叠的两个刚体
func (w *World) separate(a, b *Body, normal mgl64.Vec3, overlap float64) {
	invA, invB := inverseMass(a), inverseMass(b)
	total := invA + invB
	if total == 0 {
		return
	}
	a.Pose.Position = a.Pose.Position.Sub(normal.Mul(overlap * invA / total))
	b.Pose.Position = b.Pose.Position.Add(normal.Mul(overlap * invB / total))
}

// exchangeMomentum 沿法线方向的弹性碰撞，并按撞击速度触发球瓶翻倒
func (w *World) exchangeMomentum(a, b *Body, normal mgl64.Vec3) {
	invA, invB := inverseMass(a), inverseMass(b)
	total := invA + invB
	relative := a.LinearVelocity.Sub(b.LinearVelocity).Dot(normal)
	if relative <= 0 || total == 0 {
		return
	}

	impulse := 2 * relative / total
	a.LinearVelocity = a.LinearVelocity.Sub(normal.Mul(impulse * invA))
	b.LinearVelocity = b.LinearVelocity.Add(normal.Mul(impulse * invB))

	if relative >= w.config.ToppleSpeed {
		// a 撞向 b：b 沿法线方向倒下，a 沿反方向倒下
		w.startTopple(b, normal)
		w.startTopple(a, normal.Mul(-1))
	}
}

// startTopple 让球瓶朝 direction 方向翻倒
func (w *World) startTopple(b *Body, direction mgl64.Vec3) {
	if b.Kind != components.BodyKindPin || b.Toppling {
		return
	}
	if utils.ForwardTiltDeg(b.Pose) >= w.config.TippedRestDeg {
		return
	}
	axis := components.WorldUp.Cross(direction)
	if axis.Len() < 1e-9 {
		axis = mgl64.Vec3{1, 0, 0}
	}
	// 绕 up × dir 正向旋转时，上方向朝 dir 倒下
	b.AngularVelocity = axis.Normalize().Mul(w.config.ToppleRate)
	b.Toppling = true
}

func inverseMass(b *Body) float64 {
	if b.Kinematic || b.Mass <= 0 {
		return 0
	}
	return 1 / b.Mass
}

func (w *World) sortedIDs() []ecs.EntityID {
	ids := make([]ecs.EntityID, 0, len(w.bodies))
	for id := range w.bodies {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
