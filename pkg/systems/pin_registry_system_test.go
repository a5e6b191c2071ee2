package systems

import (
	"errors"
	"math"
	"testing"

	"github.com/decker502/arbowling/pkg/components"
	"github.com/decker502/arbowling/pkg/config"
	"github.com/decker502/arbowling/pkg/ecs"
	"github.com/go-gl/mathgl/mgl64"
)

func TestPinRegistrySpawnPins(t *testing.T) {
	em, physics := newTestWorld()
	registry := NewPinRegistrySystem(em, physics, config.DefaultBowlingConfig().Pins)

	pins := registry.SpawnPins()
	if len(pins) != components.PinCount {
		t.Fatalf("SpawnPins returned %d pins, want %d", len(pins), components.PinCount)
	}

	for i, id := range pins {
		pin, ok := ecs.GetComponent[*components.PinComponent](em, id)
		if !ok {
			t.Fatalf("pin %d missing PinComponent", i)
		}
		if pin.Index != i {
			t.Errorf("pin %d has Index %d", i, pin.Index)
		}
		if pin.IsActive {
			t.Errorf("pin %d should start hidden", i)
		}
	}

	// 重复调用不创建新实体
	again := registry.SpawnPins()
	if len(again) != len(pins) || again[0] != pins[0] {
		t.Error("second SpawnPins should return the existing entities")
	}
	if _, ok := registry.PinEntity(components.PinCount); ok {
		t.Error("PinEntity out of range should fail")
	}
}

func TestPinRegistryRestPoseBeforeCapture(t *testing.T) {
	em, physics := newTestWorld()
	registry := NewPinRegistrySystem(em, physics, config.DefaultBowlingConfig().Pins)
	registry.SpawnPins()

	_, err := registry.RestPose(0)
	if !errors.Is(err, ErrPinNotRegistered) {
		t.Fatalf("RestPose before capture: err = %v, want ErrPinNotRegistered", err)
	}

	defer func() {
		if recover() == nil {
			t.Error("MustRestPose before capture should panic")
		}
	}()
	registry.MustRestPose(0)
}

func TestPinRegistryCaptureRestPoses(t *testing.T) {
	em, physics := newTestWorld()
	cfg := config.DefaultBowlingConfig().Pins
	registry := NewPinRegistrySystem(em, physics, cfg)
	registry.SpawnPins()

	lanePose := components.Pose{Position: mgl64.Vec3{1, 0, 2}, Rotation: mgl64.QuatIdent()}
	if !registry.CaptureRestPoses(lanePose, 6.0) {
		t.Fatal("first capture should succeed")
	}

	pose, err := registry.RestPose(0)
	if err != nil {
		t.Fatalf("RestPose(0): %v", err)
	}
	// 头瓶：x=0，z = 6/2 - 1.25
	want := mgl64.Vec3{1, cfg.RestHeight, 2 + 1.75}
	if !vecNear(pose.Position, want) {
		t.Errorf("pin 0 rest position = %v, want %v", pose.Position, want)
	}
	if d := pose.Rotation.Dot(components.UprightRotation()); math.Abs(math.Abs(d)-1) > 1e-9 {
		t.Errorf("pin 0 rest rotation = %v, want upright", pose.Rotation)
	}

	// 记录的是直立姿态
	for i := 0; i < components.PinCount; i++ {
		p := registry.MustRestPose(i)
		if p.Forward().Dot(components.WorldUp) < 0.999 {
			t.Errorf("pin %d rest pose is not upright: forward=%v", i, p.Forward())
		}
	}

	// 刚体已创建但保持隐藏
	id, _ := registry.PinEntity(0)
	body := physics.body(id)
	if body == nil {
		t.Fatal("capture should create the pin body")
	}
	if body.active {
		t.Error("pin body should stay hidden until ResetAll")
	}

	// 第二次记录被忽略
	moved := components.Pose{Position: mgl64.Vec3{10, 0, 10}, Rotation: mgl64.QuatIdent()}
	if registry.CaptureRestPoses(moved, 8.0) {
		t.Error("second capture should be ignored")
	}
	if again := registry.MustRestPose(0); again != pose {
		t.Errorf("rest pose changed after second capture: %v", again.Position)
	}
}

func TestPinRegistryResetAllRestoresRestPose(t *testing.T) {
	em, physics := newTestWorld()
	registry := NewPinRegistrySystem(em, physics, config.DefaultBowlingConfig().Pins)
	registry.SpawnPins()
	registry.CaptureRestPoses(components.IdentityPose(), 6.0)
	registry.ResetAll()

	id, _ := registry.PinEntity(4)
	rest := registry.MustRestPose(4)

	// 模拟球瓶被撞飞并隐藏
	physics.tilt(id, 150)
	physics.SetVelocity(id, mgl64.Vec3{1, 2, 3}, mgl64.Vec3{4, 5, 6})
	physics.SetActive(id, false)
	pin, _ := ecs.GetComponent[*components.PinComponent](em, id)
	pin.IsActive = false
	pin.IsScored = true
	generation := pin.Generation

	registry.ResetAll()

	body := physics.body(id)
	if body.state.Pose != rest {
		t.Errorf("pose after reset = %+v, want exact rest pose %+v", body.state.Pose, rest)
	}
	if body.state.LinearVelocity != (mgl64.Vec3{}) || body.state.AngularVelocity != (mgl64.Vec3{}) {
		t.Errorf("velocities not cleared: %v %v", body.state.LinearVelocity, body.state.AngularVelocity)
	}
	if !body.active || body.kinematic || !body.useGravity {
		t.Errorf("body flags after reset: active=%v kinematic=%v gravity=%v", body.active, body.kinematic, body.useGravity)
	}
	if !pin.IsActive || pin.IsScored {
		t.Errorf("pin flags after reset: active=%v scored=%v", pin.IsActive, pin.IsScored)
	}
	if pin.Generation != generation+1 {
		t.Errorf("Generation = %d, want %d", pin.Generation, generation+1)
	}

	transform, _ := ecs.GetComponent[*components.TransformComponent](em, id)
	if transform.Pose != rest {
		t.Error("transform mirror should match the rest pose")
	}
}
