package systems

import (
	"testing"

	"github.com/decker502/arbowling/pkg/ecs"
)

func TestTimerSystemFiresAfterDelay(t *testing.T) {
	em := ecs.NewEntityManager()
	timers := NewTimerSystem(em)

	fired := 0
	timers.Schedule("respawn", 1.0, ecs.InvalidEntity, func() { fired++ })

	// 未到时间
	timers.Update(0.6)
	if fired != 0 {
		t.Fatalf("fired too early: %d", fired)
	}
	if timers.Pending("respawn") != 1 {
		t.Errorf("Pending = %d, want 1", timers.Pending("respawn"))
	}

	timers.Update(0.5)
	if fired != 1 {
		t.Fatalf("fired = %d, want 1", fired)
	}

	// 到期后不再重复触发
	timers.Update(5.0)
	if fired != 1 {
		t.Errorf("timer fired again: %d", fired)
	}
	if timers.Pending("") != 0 {
		t.Errorf("Pending = %d, want 0", timers.Pending(""))
	}
}

func TestTimerSystemFiresInCreationOrder(t *testing.T) {
	em := ecs.NewEntityManager()
	timers := NewTimerSystem(em)

	var order []string
	timers.Schedule("b", 0.5, ecs.InvalidEntity, func() { order = append(order, "first") })
	timers.Schedule("a", 0.1, ecs.InvalidEntity, func() { order = append(order, "second") })

	timers.Update(1.0)

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("order = %v, want [first second]", order)
	}
}

func TestTimerSystemCancel(t *testing.T) {
	em := ecs.NewEntityManager()
	timers := NewTimerSystem(em)

	fired := false
	id := timers.Schedule("respawn", 1.0, ecs.InvalidEntity, func() { fired = true })

	if !timers.Cancel(id) {
		t.Fatal("Cancel should report a pending timer")
	}
	if timers.Cancel(id) {
		t.Error("second Cancel should be a no-op")
	}
	if timers.Cancel(ecs.InvalidEntity) {
		t.Error("Cancel(InvalidEntity) should be a no-op")
	}

	timers.Update(2.0)
	if fired {
		t.Error("cancelled timer fired")
	}
}

func TestTimerSystemCancelByName(t *testing.T) {
	em := ecs.NewEntityManager()
	timers := NewTimerSystem(em)

	hidden := 0
	kept := 0
	timers.Schedule("pin_hide", 1.0, ecs.InvalidEntity, func() { hidden++ })
	timers.Schedule("pin_hide", 2.0, ecs.InvalidEntity, func() { hidden++ })
	timers.Schedule("respawn", 1.0, ecs.InvalidEntity, func() { kept++ })

	if n := timers.CancelByName("pin_hide"); n != 2 {
		t.Errorf("CancelByName = %d, want 2", n)
	}

	timers.Update(3.0)
	if hidden != 0 || kept != 1 {
		t.Errorf("hidden=%d kept=%d, want 0 and 1", hidden, kept)
	}
}

func TestTimerSystemDropsWhenOwnerDestroyed(t *testing.T) {
	em := ecs.NewEntityManager()
	timers := NewTimerSystem(em)

	owner := em.CreateEntity()
	fired := false
	timers.Schedule("respawn", 1.0, owner, func() { fired = true })

	em.DestroyEntity(owner)
	em.RemoveMarkedEntities()

	timers.Update(1.5)
	if fired {
		t.Error("timer owned by a destroyed entity should not fire")
	}
}

func TestTimerSystemCallbackCanCancelLaterTimer(t *testing.T) {
	em := ecs.NewEntityManager()
	timers := NewTimerSystem(em)

	secondFired := false
	var second ecs.EntityID
	timers.Schedule("first", 0.1, ecs.InvalidEntity, func() { timers.Cancel(second) })
	second = timers.Schedule("second", 0.1, ecs.InvalidEntity, func() { secondFired = true })

	timers.Update(0.5)
	if secondFired {
		t.Error("timer cancelled by an earlier callback in the same step should not fire")
	}
}

func TestTimerSystemScheduleFromCallbackStartsNextStep(t *testing.T) {
	em := ecs.NewEntityManager()
	timers := NewTimerSystem(em)

	nested := false
	timers.Schedule("outer", 0, ecs.InvalidEntity, func() {
		timers.Schedule("inner", 0, ecs.InvalidEntity, func() { nested = true })
	})

	timers.Update(0.016)
	if nested {
		t.Fatal("timer created inside a callback should not fire in the same step")
	}
	timers.Update(0.016)
	if !nested {
		t.Error("nested timer should fire on the next step")
	}
}
