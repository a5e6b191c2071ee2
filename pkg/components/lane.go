package components

import "github.com/go-gl/mathgl/mgl64"

// Footprint 检测到的平面尺寸（宽 x 深）
// 由平面检测提供，等于平面 extents 的两倍
type Footprint struct {
	Width float64
	Depth float64
}

// LaneComponent 球道放置信息
// 每个会话只放置一次
type LaneComponent struct {
	// TapPose 玩家点击平面时的位姿
	TapPose Pose

	// Origin 偏移后的球道位姿（球瓶布局以此为基准）
	Origin Pose

	Footprint Footprint

	// ScaleFactor 长度方向缩放比例，宽高方向保持 1
	ScaleFactor float64

	// Length 缩放后的球道长度
	Length float64

	// PlacementOffset 从点击点到球道原点的世界偏移
	PlacementOffset mgl64.Vec3
}
