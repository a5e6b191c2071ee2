package utils

import (
	"math"
	"testing"

	"github.com/decker502/arbowling/pkg/components"
	"github.com/go-gl/mathgl/mgl64"
)

// TestUprightPinHasZeroTilt 测试直立球瓶夹角为 0
func TestUprightPinHasZeroTilt(t *testing.T) {
	pose := components.NewPose(mgl64.Vec3{1, 2, 3}, components.UprightRotation())

	if got := ForwardTiltDeg(pose); math.Abs(got) > 1e-4 {
		t.Errorf("ForwardTiltDeg(upright) = %v, 期望 0", got)
	}
	if !IsPinStanding(pose, DefaultStandingToleranceDeg) {
		t.Error("直立球瓶应判定为直立")
	}
}

// TestClassifierByTilt 测试不同倾斜角度的分类结果
func TestClassifierByTilt(t *testing.T) {
	tests := []struct {
		name         string
		tiltDeg      float64
		wantStanding bool
	}{
		{"直立", 0, true},
		{"轻微晃动", 20, true},
		{"平躺", 90, true},
		{"接近阈值", 134, true},
		{"越过阈值", 136, false},
		{"场景角度150", 150, false},
		{"倒扣", 180, false},
		{"反向倾斜", -150, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pose := components.NewPose(mgl64.Vec3{}, TiltedPinRotation(tt.tiltDeg))

			standing := IsPinStanding(pose, DefaultStandingToleranceDeg)
			knocked := IsPinKnockedOver(pose, DefaultStandingToleranceDeg)
			if standing != tt.wantStanding {
				t.Errorf("IsPinStanding(tilt=%v) = %v, 期望 %v (angle=%v)",
					tt.tiltDeg, standing, tt.wantStanding, ForwardTiltDeg(pose))
			}
			if standing == knocked {
				t.Errorf("IsPinStanding 与 IsPinKnockedOver 必须互为取反 (tilt=%v)", tt.tiltDeg)
			}
		})
	}
}

// TestThresholdBoundary 阈值本身视为倒下
func TestThresholdBoundary(t *testing.T) {
	if IsStandingAngle(135, 135) {
		t.Error("135° 应判定为倒下")
	}
	if !IsStandingAngle(134.999, 135) {
		t.Error("134.999° 应判定为直立")
	}
}

// TestTiltAngleMatchesRequested 倾斜辅助函数生成的角度应与请求一致
func TestTiltAngleMatchesRequested(t *testing.T) {
	for _, deg := range []float64{0, 30, 90, 150, 180} {
		pose := components.NewPose(mgl64.Vec3{}, TiltedPinRotation(deg))
		if got := ForwardTiltDeg(pose); math.Abs(got-deg) > 1e-4 {
			t.Errorf("ForwardTiltDeg = %v, 期望 %v", got, deg)
		}
	}
}
