package systems

import (
	"math"
	"testing"

	"github.com/decker502/arbowling/pkg/components"
	"github.com/go-gl/mathgl/mgl64"
)

func TestComputeLaneScale(t *testing.T) {
	const (
		native = 2.0
		minLen = 3.0
		maxLen = 8.0
	)

	tests := []struct {
		name        string
		footprint   components.Footprint
		wantDesired float64
		wantScale   float64
	}{
		{"小平面放大四倍", components.Footprint{Width: 1.0, Depth: 1.5}, 6.0, 3.0},
		{"恰好为2也放大", components.Footprint{Width: 2.0, Depth: 0}, 8.0, 4.0},
		{"2到4之间不放大", components.Footprint{Width: 3.0, Depth: 3.0}, 3.0, 1.5},
		{"大平面夹取到上限", components.Footprint{Width: 10.0, Depth: 1.0}, 10.0, 4.0},
		{"极小平面夹取到下限", components.Footprint{Width: 0.2, Depth: 0.5}, 2.0, 1.5},
		{"零尺寸", components.Footprint{}, 0, 1.5},
		{"负数按零处理", components.Footprint{Width: -3, Depth: -1}, 0, 1.5},
		{"NaN按零处理", components.Footprint{Width: math.NaN(), Depth: 0.5}, 2.0, 1.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeLaneScale(tt.footprint, native, minLen, maxLen)
			if math.Abs(got.DesiredLength-tt.wantDesired) > 1e-9 {
				t.Errorf("DesiredLength = %v, want %v", got.DesiredLength, tt.wantDesired)
			}
			if math.Abs(got.ScaleFactor-tt.wantScale) > 1e-9 {
				t.Errorf("ScaleFactor = %v, want %v", got.ScaleFactor, tt.wantScale)
			}
			if math.Abs(got.Length-tt.wantScale*native) > 1e-9 {
				t.Errorf("Length = %v, want %v", got.Length, tt.wantScale*native)
			}
			if got.ScaleFactor < minLen/native || got.ScaleFactor > maxLen/native {
				t.Errorf("ScaleFactor %v outside [%v, %v]", got.ScaleFactor, minLen/native, maxLen/native)
			}
		})
	}
}

func TestLanePlacementOffset(t *testing.T) {
	tests := []struct {
		name     string
		rotation mgl64.Quat
		want     mgl64.Vec3
	}{
		{"无旋转", mgl64.QuatIdent(), mgl64.Vec3{0, -1, 3}},
		{"绕Y轴90度", mgl64.QuatRotate(mgl64.DegToRad(90), mgl64.Vec3{0, 1, 0}), mgl64.Vec3{3, -1, 0}},
		{"绕Y轴180度", mgl64.QuatRotate(mgl64.DegToRad(180), mgl64.Vec3{0, 1, 0}), mgl64.Vec3{0, -1, -3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LanePlacementOffset(tt.rotation, 6.0, -1.0)
			if !vecNear(got, tt.want) {
				t.Errorf("LanePlacementOffset = %v, want %v", got, tt.want)
			}
		})
	}
}

// vecNear 逐分量比较，绝对误差小于 1e-9
func vecNear(a, b mgl64.Vec3) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) >= 1e-9 {
			return false
		}
	}
	return true
}
