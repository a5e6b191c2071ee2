package components

import "github.com/go-gl/mathgl/mgl64"

// BodyKind 刚体类型
type BodyKind int

const (
	BodyKindBall BodyKind = iota
	BodyKindPin
)

// String 返回刚体类型名称（用于日志）
func (k BodyKind) String() string {
	switch k {
	case BodyKindBall:
		return "ball"
	case BodyKindPin:
		return "pin"
	default:
		return "unknown"
	}
}

// RigidBodyComponent 刚体状态镜像
// 物理积分由外部物理引擎完成，核心只读取速度、写入冲量和开关标志
type RigidBodyComponent struct {
	Kind            BodyKind
	LinearVelocity  mgl64.Vec3
	AngularVelocity mgl64.Vec3
	IsKinematic     bool // true: 不受物理驱动
	UseGravity      bool
}
