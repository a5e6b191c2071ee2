package systems

import (
	"github.com/decker502/arbowling/pkg/components"
	"github.com/decker502/arbowling/pkg/ecs"
	"github.com/decker502/arbowling/pkg/game"
)

// PhysicsSyncSystem 将物理引擎的刚体状态同步到组件镜像
// 每帧在其他系统之前执行，保证同一帧内所有系统读到一致的状态
type PhysicsSyncSystem struct {
	entityManager *ecs.EntityManager
	physics       game.PhysicsWorld
}

// NewPhysicsSyncSystem 创建物理同步系统
func NewPhysicsSyncSystem(em *ecs.EntityManager, physics game.PhysicsWorld) *PhysicsSyncSystem {
	return &PhysicsSyncSystem{
		entityManager: em,
		physics:       physics,
	}
}

// Update 拉取所有刚体的位姿和速度
func (s *PhysicsSyncSystem) Update() {
	entities := ecs.GetEntitiesWith2[*components.TransformComponent, *components.RigidBodyComponent](s.entityManager)

	for _, id := range entities {
		state, ok := s.physics.BodyState(id)
		if !ok {
			continue
		}
		transform, _ := ecs.GetComponent[*components.TransformComponent](s.entityManager, id)
		body, _ := ecs.GetComponent[*components.RigidBodyComponent](s.entityManager, id)

		transform.Pose = state.Pose
		body.LinearVelocity = state.LinearVelocity
		body.AngularVelocity = state.AngularVelocity
	}
}
