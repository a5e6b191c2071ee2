package systems

import (
	"testing"

	"github.com/decker502/arbowling/pkg/components"
	"github.com/decker502/arbowling/pkg/config"
	"github.com/decker502/arbowling/pkg/ecs"
	"github.com/decker502/arbowling/pkg/game"
)

// knockdownFixture 已放置并复位好的十个球瓶
type knockdownFixture struct {
	em        *ecs.EntityManager
	physics   *scriptedPhysics
	timers    *TimerSystem
	sync      *PhysicsSyncSystem
	registry  *PinRegistrySystem
	score     *game.ScoreState
	knockdown *KnockdownSystem
	ball      ecs.EntityID
	cfg       config.PinsConfig
}

func newKnockdownFixture(t *testing.T) *knockdownFixture {
	t.Helper()
	em, physics := newTestWorld()
	cfg := config.DefaultBowlingConfig().Pins

	f := &knockdownFixture{
		em:       em,
		physics:  physics,
		timers:   NewTimerSystem(em),
		sync:     NewPhysicsSyncSystem(em, physics),
		registry: NewPinRegistrySystem(em, physics, cfg),
		score:    game.NewScoreState(),
		cfg:      cfg,
	}
	f.ball = em.CreateEntity()
	f.knockdown = NewKnockdownSystem(em, physics, f.timers, f.score, cfg, func(id ecs.EntityID) bool {
		return id == f.ball
	})

	f.registry.SpawnPins()
	f.registry.CaptureRestPoses(components.IdentityPose(), 6.0)
	f.registry.ResetAll()
	return f
}

func (f *knockdownFixture) pin(index int) (ecs.EntityID, *components.PinComponent) {
	id, _ := f.registry.PinEntity(index)
	pin, _ := ecs.GetComponent[*components.PinComponent](f.em, id)
	return id, pin
}

func TestKnockdownPollingScoresFallenPin(t *testing.T) {
	f := newKnockdownFixture(t)
	id, pin := f.pin(3)

	// 球瓶静静倒下，没有任何碰撞
	f.physics.tilt(id, 150)
	f.sync.Update()

	scored := f.knockdown.Update()
	if len(scored) != 1 || scored[0] != 3 {
		t.Fatalf("scored = %v, want [3]", scored)
	}
	if f.score.TotalScore != 1 {
		t.Errorf("TotalScore = %d, want 1", f.score.TotalScore)
	}
	if !f.score.IsCounted(3) || !pin.IsScored {
		t.Error("pin 3 should be marked counted")
	}

	// 计分当帧不隐藏
	if !pin.IsActive {
		t.Error("pin should stay visible until the hide delay elapses")
	}
	if f.timers.Pending(TimerPinHide) != 1 {
		t.Errorf("pending hide timers = %d, want 1", f.timers.Pending(TimerPinHide))
	}

	// 同一球瓶不会重复计分
	if again := f.knockdown.Update(); len(again) != 0 {
		t.Errorf("second Update scored %v", again)
	}
	if f.score.TotalScore != 1 {
		t.Errorf("TotalScore = %d after second Update, want 1", f.score.TotalScore)
	}

	f.timers.Update(f.cfg.HideDelay / 2)
	if !pin.IsActive {
		t.Error("pin hidden before the hide delay")
	}
	f.timers.Update(f.cfg.HideDelay)
	if pin.IsActive {
		t.Error("pin should be hidden after the hide delay")
	}
	if f.physics.body(id).active {
		t.Error("physics body should be deactivated")
	}
}

func TestKnockdownThreshold(t *testing.T) {
	tests := []struct {
		name      string
		tiltDeg   float64
		wantScore int
	}{
		{"直立", 0, 0},
		{"倾斜但未倒", 90, 0},
		{"阈值以下", 134, 0},
		{"刚过阈值", 136, 1},
		{"完全倒下", 150, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newKnockdownFixture(t)
			id, _ := f.pin(0)
			f.physics.tilt(id, tt.tiltDeg)
			f.sync.Update()
			f.knockdown.Update()

			if f.score.TotalScore != tt.wantScore {
				t.Errorf("tilt %.0f°: TotalScore = %d, want %d", tt.tiltDeg, f.score.TotalScore, tt.wantScore)
			}
		})
	}
}

func TestKnockdownCollisionReadsLivePose(t *testing.T) {
	f := newKnockdownFixture(t)
	id, _ := f.pin(5)

	// 物理引擎里已倒下，镜像尚未同步
	f.physics.tilt(id, 160)

	if !f.knockdown.OnCollision(f.ball, id) {
		t.Fatal("collision with a fallen pin should score")
	}
	if f.score.TotalScore != 1 {
		t.Errorf("TotalScore = %d, want 1", f.score.TotalScore)
	}

	// 再次碰撞或轮询都不会重复计分
	if f.knockdown.OnCollision(id, f.ball) {
		t.Error("repeated collision should not score again")
	}
	f.sync.Update()
	f.knockdown.Update()
	if f.score.TotalScore != 1 {
		t.Errorf("TotalScore = %d after polling, want 1", f.score.TotalScore)
	}
}

func TestKnockdownCollisionRequiresFallenPin(t *testing.T) {
	f := newKnockdownFixture(t)
	standing, _ := f.pin(1)
	fallen, _ := f.pin(2)
	f.physics.tilt(fallen, 150)

	if f.knockdown.OnCollision(f.ball, standing) {
		t.Error("collision with a standing pin should not score")
	}

	// 非球非瓶的物体碰撞不计分
	stranger := f.em.CreateEntity()
	if f.knockdown.OnCollision(stranger, fallen) {
		t.Error("collision with an unrelated entity should not score")
	}

	// 瓶瓶碰撞：只有倒下的那个计分
	if !f.knockdown.OnCollision(standing, fallen) {
		t.Error("pin-pin collision should score the fallen pin")
	}
	if !f.score.IsCounted(2) || f.score.IsCounted(1) {
		t.Errorf("counted = %v, want [2]", f.score.CountedPins())
	}
}

func TestKnockdownResetInvalidatesPendingHide(t *testing.T) {
	f := newKnockdownFixture(t)
	id, pin := f.pin(7)

	f.physics.tilt(id, 150)
	f.sync.Update()
	f.knockdown.Update()

	// 延迟隐藏到期前复位
	f.registry.ResetAll()
	f.timers.Update(f.cfg.HideDelay * 2)

	if !pin.IsActive {
		t.Error("stale hide callback should not hide a pin that was reset")
	}
	if !f.physics.body(id).active {
		t.Error("stale hide callback should not deactivate the physics body")
	}
}

func TestKnockdownSweepAndCounts(t *testing.T) {
	f := newKnockdownFixture(t)

	if f.knockdown.StandingCount() != components.PinCount {
		t.Fatalf("StandingCount = %d, want %d", f.knockdown.StandingCount(), components.PinCount)
	}
	if f.knockdown.AllPinsKnockedOrInactive() {
		t.Fatal("fresh rack should not be cleared")
	}

	for i := 0; i < 4; i++ {
		id, _ := f.pin(i)
		f.physics.tilt(id, 170)
	}
	f.sync.Update()

	if n := f.knockdown.SweepFallen(f.cfg.FallenSweepDelay); n != 4 {
		t.Errorf("SweepFallen = %d, want 4", n)
	}
	if f.knockdown.StandingCount() != 6 {
		t.Errorf("StandingCount = %d, want 6", f.knockdown.StandingCount())
	}

	// 其余球瓶全部隐藏
	for i := 4; i < components.PinCount; i++ {
		_, pin := f.pin(i)
		pin.IsActive = false
	}
	if !f.knockdown.AllPinsKnockedOrInactive() {
		t.Error("rack with only fallen or hidden pins should be cleared")
	}

	f.timers.Update(f.cfg.FallenSweepDelay)
	for i := 0; i < 4; i++ {
		_, pin := f.pin(i)
		if pin.IsActive {
			t.Errorf("pin %d should be hidden by the sweep", i)
		}
	}
}

func TestKnockdownOnScoredCallback(t *testing.T) {
	f := newKnockdownFixture(t)

	var totals []int
	f.knockdown.SetOnScored(func(pinIndex, total int) {
		totals = append(totals, total)
	})

	for _, idx := range []int{8, 9} {
		id, _ := f.pin(idx)
		f.physics.tilt(id, 150)
	}
	f.sync.Update()
	f.knockdown.Update()

	if len(totals) != 2 || totals[0] != 1 || totals[1] != 2 {
		t.Errorf("onScored totals = %v, want [1 2]", totals)
	}
}
