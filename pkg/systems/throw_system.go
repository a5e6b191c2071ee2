package systems

import (
	"log"

	"github.com/decker502/arbowling/pkg/components"
	"github.com/decker502/arbowling/pkg/config"
	"github.com/decker502/arbowling/pkg/ecs"
	"github.com/decker502/arbowling/pkg/game"
	"github.com/go-gl/mathgl/mgl64"
)

// ThrowSystem 投掷生命周期系统
//
// 状态流转：Idle → Dragging → InFlight → Settled | OutOfBounds → (重生) → Idle
//
// 职责：
//   - 在相机前方生成保龄球（每次投掷都是新实体）
//   - 拖拽时让球跟随手指
//   - 松手时把加速度计读数换算成沿相机水平前向的冲量
//   - 飞行中限速，并检测静止/出界
type ThrowSystem struct {
	entityManager *ecs.EntityManager
	physics       game.PhysicsWorld
	viewport      game.Viewport
	surface       game.SurfaceProbe // 可为 nil
	sensor        game.MotionSensor
	config        config.BallConfig

	ball ecs.EntityID
}

// NewThrowSystem 创建投掷系统
func NewThrowSystem(
	em *ecs.EntityManager,
	physics game.PhysicsWorld,
	viewport game.Viewport,
	surface game.SurfaceProbe,
	sensor game.MotionSensor,
	cfg config.BallConfig,
) *ThrowSystem {
	return &ThrowSystem{
		entityManager: em,
		physics:       physics,
		viewport:      viewport,
		surface:       surface,
		sensor:        sensor,
		config:        cfg,
	}
}

// Ball 返回当前保龄球实体
func (s *ThrowSystem) Ball() (ecs.EntityID, bool) {
	if s.ball == ecs.InvalidEntity || !s.entityManager.IsAlive(s.ball) {
		return ecs.InvalidEntity, false
	}
	return s.ball, true
}

// BallState 返回当前保龄球状态
func (s *ThrowSystem) BallState() (components.BallState, bool) {
	ball, ok := s.ballComponent()
	if !ok {
		return components.BallStateIdle, false
	}
	return ball.State, true
}

// SpawnPose 计算相机相对的出生位姿：相机前方 SpawnForward，高度比相机低 SpawnDrop
func (s *ThrowSystem) SpawnPose() components.Pose {
	camera := s.viewport.CameraPose()
	position := camera.Position.Add(camera.Forward().Mul(s.config.SpawnForward))
	position[1] = camera.Position.Y() - s.config.SpawnDrop
	return components.Pose{Position: position, Rotation: mgl64.QuatIdent()}
}

// Spawn 销毁旧球并生成新球（运动学、无重力、静止、Idle）
func (s *ThrowSystem) Spawn() ecs.EntityID {
	s.DestroyBall()

	pose := s.SpawnPose()
	id := s.entityManager.CreateEntity()
	s.entityManager.AddComponent(id, &components.BallComponent{State: components.BallStateIdle})
	s.entityManager.AddComponent(id, &components.TransformComponent{Pose: pose})
	s.entityManager.AddComponent(id, &components.RigidBodyComponent{
		Kind:        components.BodyKindBall,
		IsKinematic: true,
		UseGravity:  false,
	})

	s.physics.CreateBody(id, components.BodyKindBall, pose)
	s.physics.SetDynamics(id, true, false)
	s.physics.SetVelocity(id, mgl64.Vec3{}, mgl64.Vec3{})

	s.ball = id
	log.Printf("[ThrowSystem] 生成保龄球: entityID=%d pos=%v", id, pose.Position)
	return id
}

// DestroyBall 销毁当前保龄球（没有球时无操作）
func (s *ThrowSystem) DestroyBall() {
	if s.ball == ecs.InvalidEntity {
		return
	}
	s.physics.DestroyBody(s.ball)
	s.entityManager.DestroyEntity(s.ball)
	log.Printf("[ThrowSystem] 销毁保龄球: entityID=%d", s.ball)
	s.ball = ecs.InvalidEntity
}

// BeginDrag 开始拖拽
// 只有球处于 Idle 且触点命中球时才进入 Dragging
func (s *ThrowSystem) BeginDrag(screen mgl64.Vec2) bool {
	ball, ok := s.ballComponent()
	if !ok || ball.State != components.BallStateIdle {
		return false
	}
	picked, hit := s.viewport.PickBody(screen)
	if !hit || picked != s.ball {
		return false
	}

	ball.State = components.BallStateDragging
	s.setDynamics(false, true)
	log.Printf("[ThrowSystem] 开始拖拽: entityID=%d", s.ball)
	return true
}

// DragMove 拖拽中让球跟随手指
// 优先使用平面射线交点；未命中平面时按固定深度投影，保持球当前的深度坐标
func (s *ThrowSystem) DragMove(screen mgl64.Vec2) bool {
	ball, ok := s.ballComponent()
	if !ok || ball.State != components.BallStateDragging {
		return false
	}
	transform, ok := ecs.GetComponent[*components.TransformComponent](s.entityManager, s.ball)
	if !ok {
		return false
	}

	var position mgl64.Vec3
	if hitPose, hit := s.raycastSurface(screen); hit {
		position = hitPose.Position
	} else {
		world := s.viewport.ScreenToWorld(screen, s.config.DragDepth)
		position = mgl64.Vec3{world.X(), world.Y(), transform.Pose.Position.Z()}
	}

	transform.Pose.Position = position
	s.physics.SetPose(s.ball, transform.Pose)
	return true
}

// EndDrag 松手出球
//
// 方向：相机前向去掉竖直分量后归一化
// 力度：|加速度| * ThrowForceMultiplier * ReleaseDamping
// 出手时无条件打开物理与重力，保证一定是物理模拟的投掷
func (s *ThrowSystem) EndDrag() bool {
	ball, ok := s.ballComponent()
	if !ok || ball.State != components.BallStateDragging {
		return false
	}

	direction := s.ThrowDirection()
	magnitude := s.sensor.Acceleration().Len() * s.config.ThrowForceMultiplier * s.config.ReleaseDamping
	impulse := direction.Mul(magnitude)

	s.setDynamics(false, true)
	s.physics.ApplyImpulse(s.ball, impulse)

	ball.State = components.BallStateInFlight
	ball.FlightTime = 0
	log.Printf("[ThrowSystem] 出球: entityID=%d impulse=%v", s.ball, impulse)
	return true
}

// ThrowDirection 相机前向的水平投影（单位向量）
// 相机竖直朝下时前向没有水平分量，改用相机上方向的水平投影
func (s *ThrowSystem) ThrowDirection() mgl64.Vec3 {
	camera := s.viewport.CameraPose()
	if dir, ok := horizontalUnit(camera.Forward()); ok {
		return dir
	}
	if dir, ok := horizontalUnit(camera.Up()); ok {
		return dir
	}
	return mgl64.Vec3{}
}

// Update 飞行中限速并检测终止状态
//
// 返回:
//   - components.BallState: 当前状态
//   - bool: 本帧是否刚进入终止状态（Settled / OutOfBounds）
func (s *ThrowSystem) Update(dt float64) (components.BallState, bool) {
	ball, ok := s.ballComponent()
	if !ok {
		return components.BallStateIdle, false
	}
	if ball.State != components.BallStateInFlight {
		return ball.State, false
	}

	transform, _ := ecs.GetComponent[*components.TransformComponent](s.entityManager, s.ball)
	body, _ := ecs.GetComponent[*components.RigidBodyComponent](s.entityManager, s.ball)
	if transform == nil || body == nil {
		return ball.State, false
	}

	ball.FlightTime += dt

	// 限速：按比例缩放到最大速度，方向不变
	speed := body.LinearVelocity.Len()
	if speed > s.config.MaxSpeed {
		body.LinearVelocity = body.LinearVelocity.Mul(s.config.MaxSpeed / speed)
		s.physics.SetVelocity(s.ball, body.LinearVelocity, body.AngularVelocity)
		speed = s.config.MaxSpeed
	}
	if speed > ball.PeakSpeed {
		ball.PeakSpeed = speed
	}

	position := transform.Pose.Position
	if position.Y() < s.config.FallFloor || position.Z() < s.config.OutOfBoundsDepth {
		ball.State = components.BallStateOutOfBounds
		log.Printf("[ThrowSystem] 保龄球出界: entityID=%d pos=%v", s.ball, position)
		return ball.State, true
	}

	if ball.FlightTime >= s.config.MinFlightTime &&
		speed < s.config.SettleThreshold &&
		body.AngularVelocity.Len() < s.config.SettleThreshold {
		ball.State = components.BallStateSettled
		log.Printf("[ThrowSystem] 保龄球静止: entityID=%d pos=%v", s.ball, position)
		return ball.State, true
	}

	return ball.State, false
}

// ballComponent 获取当前球的组件
func (s *ThrowSystem) ballComponent() (*components.BallComponent, bool) {
	id, ok := s.Ball()
	if !ok {
		return nil, false
	}
	return ecs.GetComponent[*components.BallComponent](s.entityManager, id)
}

// setDynamics 同步设置物理开关和组件镜像
func (s *ThrowSystem) setDynamics(kinematic, useGravity bool) {
	s.physics.SetDynamics(s.ball, kinematic, useGravity)
	if body, ok := ecs.GetComponent[*components.RigidBodyComponent](s.entityManager, s.ball); ok {
		body.IsKinematic = kinematic
		body.UseGravity = useGravity
	}
}

// raycastSurface 平面射线（没有平面协作者时视为未命中）
func (s *ThrowSystem) raycastSurface(screen mgl64.Vec2) (components.Pose, bool) {
	if s.surface == nil {
		return components.Pose{}, false
	}
	return s.surface.RaycastSurface(screen)
}

// horizontalUnit 去掉竖直分量后归一化
func horizontalUnit(v mgl64.Vec3) (mgl64.Vec3, bool) {
	flat := mgl64.Vec3{v.X(), 0, v.Z()}
	length := flat.Len()
	if length < 1e-9 {
		return mgl64.Vec3{}, false
	}
	return flat.Mul(1 / length), true
}
