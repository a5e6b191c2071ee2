package systems

import (
	"errors"
	"fmt"
	"log"

	"github.com/decker502/arbowling/pkg/components"
	"github.com/decker502/arbowling/pkg/config"
	"github.com/decker502/arbowling/pkg/ecs"
	"github.com/decker502/arbowling/pkg/game"
	"github.com/go-gl/mathgl/mgl64"
)

// ErrPinNotRegistered 球瓶静止位姿尚未记录
// 正确的调用顺序下不应出现，出现即说明时序保证被破坏
var ErrPinNotRegistered = errors.New("pin rest pose not registered")

// PinRegistrySystem 球瓶注册表
//
// 职责：
//   - 游戏开始时创建十个隐藏的球瓶实体
//   - 首次放置球道时记录每个球瓶的静止位姿（只记录一次，之后只读）
//   - 复位时把所有球瓶恢复到静止位姿并重新激活
type PinRegistrySystem struct {
	entityManager *ecs.EntityManager
	physics       game.PhysicsWorld
	config        config.PinsConfig

	pins      []ecs.EntityID // 按编号排列
	restPoses map[int]components.Pose
	captured  bool
}

// NewPinRegistrySystem 创建球瓶注册表
//
// 参数:
//   - em: 实体管理器
//   - physics: 物理协作者（复位时清零速度、设置位姿）
//   - cfg: 球瓶配置（布局表、高度）
func NewPinRegistrySystem(em *ecs.EntityManager, physics game.PhysicsWorld, cfg config.PinsConfig) *PinRegistrySystem {
	return &PinRegistrySystem{
		entityManager: em,
		physics:       physics,
		config:        cfg,
		restPoses:     make(map[int]components.Pose),
	}
}

// SpawnPins 创建十个隐藏的球瓶实体
// 重复调用返回已有实体
func (s *PinRegistrySystem) SpawnPins() []ecs.EntityID {
	if len(s.pins) > 0 {
		return s.Pins()
	}
	for i := 0; i < components.PinCount; i++ {
		id := s.entityManager.CreateEntity()
		s.entityManager.AddComponent(id, &components.PinComponent{Index: i})
		s.entityManager.AddComponent(id, &components.TransformComponent{Pose: components.IdentityPose()})
		s.entityManager.AddComponent(id, &components.RigidBodyComponent{
			Kind:       components.BodyKindPin,
			UseGravity: true,
		})
		s.pins = append(s.pins, id)
	}
	return s.Pins()
}

// Pins 返回按编号排列的球瓶实体ID
func (s *PinRegistrySystem) Pins() []ecs.EntityID {
	result := make([]ecs.EntityID, len(s.pins))
	copy(result, s.pins)
	return result
}

// PinEntity 按编号查找球瓶实体
func (s *PinRegistrySystem) PinEntity(index int) (ecs.EntityID, bool) {
	if index < 0 || index >= len(s.pins) {
		return ecs.InvalidEntity, false
	}
	return s.pins[index], true
}

// IsCaptured 静止位姿是否已记录
func (s *PinRegistrySystem) IsCaptured() bool {
	return s.captured
}

// LocalRestOffset 球瓶在球道本地坐标系下的偏移
func (s *PinRegistrySystem) LocalRestOffset(index int, laneLength float64) mgl64.Vec3 {
	off := s.config.Layout[index]
	return mgl64.Vec3{off.X, s.config.RestHeight, laneLength/2 - off.Back}
}

// CaptureRestPoses 记录所有球瓶的静止位姿
//
// 每个会话只在首次放置球道时调用一次；再次调用被忽略并返回 false。
// 世界位置 = 球道位置 + 球道旋转 * 本地偏移；旋转统一为直立姿态。
// 同时为每个球瓶在物理引擎中创建刚体（保持隐藏，由 ResetAll 激活）。
func (s *PinRegistrySystem) CaptureRestPoses(lanePose components.Pose, laneLength float64) bool {
	if s.captured {
		log.Printf("[PinRegistrySystem] 静止位姿已记录，忽略重复记录")
		return false
	}
	if len(s.pins) == 0 {
		s.SpawnPins()
	}

	upright := components.UprightRotation()
	for i, id := range s.pins {
		pose := components.Pose{
			Position: lanePose.TransformPoint(s.LocalRestOffset(i, laneLength)),
			Rotation: upright,
		}
		s.restPoses[i] = pose

		if transform, ok := ecs.GetComponent[*components.TransformComponent](s.entityManager, id); ok {
			transform.Pose = pose
		}
		s.physics.CreateBody(id, components.BodyKindPin, pose)
		s.physics.SetActive(id, false)
	}

	s.captured = true
	log.Printf("[PinRegistrySystem] 记录球瓶静止位姿: lane=%v length=%.2f", lanePose.Position, laneLength)
	return true
}

// RestPose 获取球瓶静止位姿
func (s *PinRegistrySystem) RestPose(index int) (components.Pose, error) {
	pose, ok := s.restPoses[index]
	if !ok {
		return components.Pose{}, fmt.Errorf("pin %d: %w", index, ErrPinNotRegistered)
	}
	return pose, nil
}

// MustRestPose 获取球瓶静止位姿，未记录时 panic
func (s *PinRegistrySystem) MustRestPose(index int) components.Pose {
	pose, err := s.RestPose(index)
	if err != nil {
		panic(fmt.Sprintf("[PinRegistrySystem] invariant violated: %v", err))
	}
	return pose
}

// ResetAll 将所有球瓶复位到静止位姿
//
// 对每个球瓶：清零速度、恢复位姿、激活、清除计分标记，并递增 Generation
// 使挂起的延迟隐藏回调失效。
func (s *PinRegistrySystem) ResetAll() {
	for i, id := range s.pins {
		rest := s.MustRestPose(i)

		s.physics.SetVelocity(id, mgl64.Vec3{}, mgl64.Vec3{})
		s.physics.SetPose(id, rest)
		s.physics.SetDynamics(id, false, true)
		s.physics.SetActive(id, true)

		if pin, ok := ecs.GetComponent[*components.PinComponent](s.entityManager, id); ok {
			pin.IsActive = true
			pin.IsScored = false
			pin.Generation++
		}
		if transform, ok := ecs.GetComponent[*components.TransformComponent](s.entityManager, id); ok {
			transform.Pose = rest
		}
		if body, ok := ecs.GetComponent[*components.RigidBodyComponent](s.entityManager, id); ok {
			body.LinearVelocity = mgl64.Vec3{}
			body.AngularVelocity = mgl64.Vec3{}
			body.IsKinematic = false
			body.UseGravity = true
		}
	}
	log.Printf("[PinRegistrySystem] 所有球瓶已复位")
}
