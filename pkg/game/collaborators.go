package game

import (
	"github.com/decker502/arbowling/pkg/components"
	"github.com/decker502/arbowling/pkg/ecs"
	"github.com/go-gl/mathgl/mgl64"
)

// 外部协作者契约
//
// 核心逻辑不关心平面检测、渲染、物理积分和触摸读取的实现，
// 只通过以下接口与宿主交互。所有调用都发生在模拟线程上。

// BodyState 物理引擎中刚体的当前状态
type BodyState struct {
	Pose            components.Pose
	LinearVelocity  mgl64.Vec3
	AngularVelocity mgl64.Vec3
}

// PhysicsWorld 物理引擎协作者
// 核心读取速度与姿态，写入冲量、开关标志和位姿复位
type PhysicsWorld interface {
	// CreateBody 以实体ID注册刚体
	CreateBody(id ecs.EntityID, kind components.BodyKind, pose components.Pose)

	// DestroyBody 移除刚体，未注册的ID忽略
	DestroyBody(id ecs.EntityID)

	// BodyState 读取刚体状态
	BodyState(id ecs.EntityID) (BodyState, bool)

	// SetPose 直接设置位姿（传送）
	SetPose(id ecs.EntityID, pose components.Pose)

	// SetVelocity 设置线速度和角速度
	SetVelocity(id ecs.EntityID, linear, angular mgl64.Vec3)

	// SetDynamics 设置运动学/重力开关
	SetDynamics(id ecs.EntityID, kinematic, useGravity bool)

	// ApplyImpulse 施加瞬时冲量
	ApplyImpulse(id ecs.EntityID, impulse mgl64.Vec3)

	// SetActive 显示/隐藏刚体（隐藏后不参与碰撞）
	SetActive(id ecs.EntityID, active bool)
}

// Viewport AR 相机与屏幕投影
type Viewport interface {
	// CameraPose 当前相机位姿，前向为 +Z
	CameraPose() components.Pose

	// ScreenToWorld 将屏幕点按给定深度投影到世界坐标
	ScreenToWorld(screen mgl64.Vec2, depth float64) mgl64.Vec3

	// PickBody 屏幕点射线命中的刚体
	PickBody(screen mgl64.Vec2) (ecs.EntityID, bool)
}

// SurfaceProbe 平面检测射线
type SurfaceProbe interface {
	// RaycastSurface 屏幕点射线与已检测平面的交点
	RaycastSurface(screen mgl64.Vec2) (components.Pose, bool)
}

// MotionSensor 设备加速度计
type MotionSensor interface {
	Acceleration() mgl64.Vec3
}

// ScoreRecorder 成绩记录（可选）
type ScoreRecorder interface {
	// RecordScore 总分变化时调用
	RecordScore(total int)

	// RecordFrame 一局（两投）结束时调用，knocked 为本局击倒数
	RecordFrame(knocked int)
}
