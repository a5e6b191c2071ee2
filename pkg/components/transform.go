package components

import (
	"github.com/go-gl/mathgl/mgl64"
)

// 世界坐标约定：+Y 向上；物体的本地前向轴为 +Z
var (
	WorldUp      = mgl64.Vec3{0, 1, 0}
	LocalForward = mgl64.Vec3{0, 0, 1}
)

// Pose 位姿快照（位置 + 旋转）
// 值类型，传递时按值拷贝，不可被外部修改
type Pose struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
}

// NewPose 创建位姿，旋转会被归一化
func NewPose(position mgl64.Vec3, rotation mgl64.Quat) Pose {
	return Pose{Position: position, Rotation: rotation.Normalize()}
}

// IdentityPose 返回原点、无旋转的位姿
func IdentityPose() Pose {
	return Pose{Rotation: mgl64.QuatIdent()}
}

// Forward 返回物体本地前向轴在世界坐标系中的方向
func (p Pose) Forward() mgl64.Vec3 {
	return p.Rotation.Rotate(LocalForward)
}

// Up 返回物体本地上方向在世界坐标系中的方向
func (p Pose) Up() mgl64.Vec3 {
	return p.Rotation.Rotate(WorldUp)
}

// TransformPoint 将本地坐标点变换到世界坐标
func (p Pose) TransformPoint(local mgl64.Vec3) mgl64.Vec3 {
	return p.Position.Add(p.Rotation.Rotate(local))
}

// UprightRotation 球瓶直立时的旋转
// 球瓶模型以"前向轴朝上"的姿态建模，绕 X 轴旋转 -90° 后前向轴指向世界 +Y
func UprightRotation() mgl64.Quat {
	return mgl64.QuatRotate(mgl64.DegToRad(-90), mgl64.Vec3{1, 0, 0})
}

// TransformComponent 实体当前位姿（由物理系统每帧同步）
type TransformComponent struct {
	Pose Pose
}
