package utils

import (
	"math"

	"github.com/decker502/arbowling/pkg/components"
	"github.com/go-gl/mathgl/mgl64"
)

// DefaultStandingToleranceDeg 默认直立判定阈值（度）
const DefaultStandingToleranceDeg = 135.0

// Orientation Classifier (姿态分类)
//
// 球瓶以"前向轴朝上"建模：直立时前向轴与世界 +Y 夹角为 0。
// "是否直立"与"是否倒下"共用同一个阈值，二者严格互为取反。

// ForwardTiltDeg 返回位姿前向轴与世界上方向的夹角（度），范围 [0, 180]
func ForwardTiltDeg(pose components.Pose) float64 {
	forward := pose.Forward()
	length := forward.Len()
	if length == 0 || math.IsNaN(length) {
		// 退化旋转按直立处理
		return 0
	}
	cos := forward.Dot(components.WorldUp) / length
	cos = mgl64.Clamp(cos, -1, 1)
	return mgl64.RadToDeg(math.Acos(cos))
}

// IsStandingAngle 角度小于阈值视为直立
func IsStandingAngle(angleDeg, toleranceDeg float64) bool {
	return angleDeg < toleranceDeg
}

// IsPinStanding 判断球瓶是否直立
func IsPinStanding(pose components.Pose, toleranceDeg float64) bool {
	return IsStandingAngle(ForwardTiltDeg(pose), toleranceDeg)
}

// IsPinKnockedOver 判断球瓶是否倒下（IsPinStanding 的取反）
func IsPinKnockedOver(pose components.Pose, toleranceDeg float64) bool {
	return !IsPinStanding(pose, toleranceDeg)
}

// TiltedPinRotation 返回在直立姿态基础上绕世界 X 轴倾斜 angleDeg 的旋转
// 主要用于测试和沙盒模拟
func TiltedPinRotation(angleDeg float64) mgl64.Quat {
	tilt := mgl64.QuatRotate(mgl64.DegToRad(angleDeg), mgl64.Vec3{1, 0, 0})
	return tilt.Mul(components.UprightRotation()).Normalize()
}
