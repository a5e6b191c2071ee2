package systems

import (
	"math"

	"github.com/decker502/arbowling/pkg/components"
	"github.com/go-gl/mathgl/mgl64"
)

// LaneScale 球道缩放结果
type LaneScale struct {
	// DesiredLength 根据平面尺寸推算的期望长度（未夹取）
	DesiredLength float64

	// ScaleFactor 长度方向缩放比例，范围 [min/native, max/native]
	ScaleFactor float64

	// Length 缩放后的球道长度
	Length float64
}

// ComputeLaneScale 根据检测到的平面尺寸计算球道缩放
//
// 期望长度取平面宽深中的较大者：
//   - 不超过 2 时放大 4 倍
//   - 第二个分支的条件（< 2 且 < 4）在第一个分支之后永远不成立，
//     保留原有行为，因此 2 到 4 之间的平面不做放大
//
// 缩放比例最终夹取到 [minLength/nativeLength, maxLength/nativeLength]。
// 退化输入（零、负数、NaN）按 0 处理，结果仍落在合法范围内。
// nativeLength 必须为正（由配置校验保证）。
func ComputeLaneScale(footprint components.Footprint, nativeLength, minLength, maxLength float64) LaneScale {
	desired := math.Max(sanitizeExtent(footprint.Width), sanitizeExtent(footprint.Depth))

	if desired <= 2.0 {
		desired *= 4
	} else if desired < 2.0 && desired < 4.0 {
		desired *= 2
	}

	lowRatio := minLength / nativeLength
	highRatio := maxLength / nativeLength
	ratio := desired / nativeLength
	if ratio < lowRatio {
		ratio = lowRatio
	}
	if ratio > highRatio {
		ratio = highRatio
	}

	return LaneScale{
		DesiredLength: desired,
		ScaleFactor:   ratio,
		Length:        ratio * nativeLength,
	}
}

// LanePlacementOffset 计算球道相对点击点的偏移
// 沿球道自身前向轴移动半个球道长度，使球道一端落在玩家脚下，
// 并叠加竖直偏移（模型原点对齐）
func LanePlacementOffset(rotation mgl64.Quat, length, verticalOffset float64) mgl64.Vec3 {
	return rotation.Rotate(mgl64.Vec3{0, verticalOffset, length / 2})
}

// sanitizeExtent 将非法尺寸归零
func sanitizeExtent(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return v
}
