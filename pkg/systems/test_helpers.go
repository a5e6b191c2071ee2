package systems

import (
	"github.com/decker502/arbowling/pkg/components"
	"github.com/decker502/arbowling/pkg/ecs"
	"github.com/decker502/arbowling/pkg/game"
	"github.com/decker502/arbowling/pkg/utils"
	"github.com/go-gl/mathgl/mgl64"
)

// 以下为测试辅助类型，被多个测试文件共享使用。
// scriptedPhysics 不做积分，测试直接改写刚体状态来模拟物理结果。

// scriptedBody 脚本化刚体
type scriptedBody struct {
	kind       components.BodyKind
	state      game.BodyState
	kinematic  bool
	useGravity bool
	active     bool
	impulses   []mgl64.Vec3
}

// scriptedPhysics 脚本化物理世界
type scriptedPhysics struct {
	bodies    map[ecs.EntityID]*scriptedBody
	destroyed []ecs.EntityID
}

func newScriptedPhysics() *scriptedPhysics {
	return &scriptedPhysics{bodies: make(map[ecs.EntityID]*scriptedBody)}
}

func (p *scriptedPhysics) CreateBody(id ecs.EntityID, kind components.BodyKind, pose components.Pose) {
	p.bodies[id] = &scriptedBody{
		kind:       kind,
		state:      game.BodyState{Pose: pose},
		useGravity: true,
		active:     true,
	}
}

func (p *scriptedPhysics) DestroyBody(id ecs.EntityID) {
	if _, ok := p.bodies[id]; ok {
		delete(p.bodies, id)
		p.destroyed = append(p.destroyed, id)
	}
}

func (p *scriptedPhysics) BodyState(id ecs.EntityID) (game.BodyState, bool) {
	b, ok := p.bodies[id]
	if !ok {
		return game.BodyState{}, false
	}
	return b.state, true
}

func (p *scriptedPhysics) SetPose(id ecs.EntityID, pose components.Pose) {
	if b, ok := p.bodies[id]; ok {
		b.state.Pose = pose
	}
}

func (p *scriptedPhysics) SetVelocity(id ecs.EntityID, linear, angular mgl64.Vec3) {
	if b, ok := p.bodies[id]; ok {
		b.state.LinearVelocity = linear
		b.state.AngularVelocity = angular
	}
}

func (p *scriptedPhysics) SetDynamics(id ecs.EntityID, kinematic, useGravity bool) {
	if b, ok := p.bodies[id]; ok {
		b.kinematic = kinematic
		b.useGravity = useGravity
	}
}

func (p *scriptedPhysics) ApplyImpulse(id ecs.EntityID, impulse mgl64.Vec3) {
	if b, ok := p.bodies[id]; ok {
		b.impulses = append(b.impulses, impulse)
		b.state.LinearVelocity = b.state.LinearVelocity.Add(impulse)
	}
}

func (p *scriptedPhysics) SetActive(id ecs.EntityID, active bool) {
	if b, ok := p.bodies[id]; ok {
		b.active = active
	}
}

// body 测试读取刚体（不存在时返回 nil）
func (p *scriptedPhysics) body(id ecs.EntityID) *scriptedBody {
	return p.bodies[id]
}

// tilt 把刚体倾斜到给定角度（绕世界 X 轴）
func (p *scriptedPhysics) tilt(id ecs.EntityID, deg float64) {
	if b, ok := p.bodies[id]; ok {
		b.state.Pose.Rotation = utils.TiltedPinRotation(deg)
	}
}

// fakeViewport 固定相机
type fakeViewport struct {
	camera components.Pose
	picked ecs.EntityID
	hit    bool
}

func (v *fakeViewport) CameraPose() components.Pose {
	return v.camera
}

// ScreenToWorld 屏幕坐标直接作为相机平面上的偏移
func (v *fakeViewport) ScreenToWorld(screen mgl64.Vec2, depth float64) mgl64.Vec3 {
	return v.camera.TransformPoint(mgl64.Vec3{screen.X(), screen.Y(), depth})
}

func (v *fakeViewport) PickBody(screen mgl64.Vec2) (ecs.EntityID, bool) {
	return v.picked, v.hit
}

// fakeSurface 固定平面命中结果
type fakeSurface struct {
	pose components.Pose
	hit  bool
}

func (s *fakeSurface) RaycastSurface(screen mgl64.Vec2) (components.Pose, bool) {
	return s.pose, s.hit
}

// fakeSensor 固定加速度
type fakeSensor struct {
	acceleration mgl64.Vec3
}

func (s *fakeSensor) Acceleration() mgl64.Vec3 {
	return s.acceleration
}

// newTestWorld 创建空的实体管理器和脚本化物理世界
func newTestWorld() (*ecs.EntityManager, *scriptedPhysics) {
	return ecs.NewEntityManager(), newScriptedPhysics()
}
