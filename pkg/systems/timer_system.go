package systems

import (
	"log"

	"github.com/decker502/arbowling/pkg/components"
	"github.com/decker502/arbowling/pkg/ecs"
)

// TimerSystem 延迟动作调度
//
// 计时器以实体形式存放在 EntityManager 中（TimerComponent），
// 在模拟线程上随帧推进，不阻塞后续帧。
// 同一帧内多个计时器到期时按创建顺序触发；
// 回调中新建的计时器从下一帧开始计时。
type TimerSystem struct {
	entityManager *ecs.EntityManager
}

// NewTimerSystem 创建计时器系统
func NewTimerSystem(em *ecs.EntityManager) *TimerSystem {
	return &TimerSystem{entityManager: em}
}

// Schedule 创建一个延迟动作
//
// 参数:
//   - name: 计时器名称（用于按名取消和日志）
//   - delay: 延迟时间（秒），0 表示下一帧触发
//   - owner: 所属实体，到期时若该实体已销毁则放弃执行；传 ecs.InvalidEntity 表示无所属
//   - action: 到期时执行的动作
//
// 返回:
//   - ecs.EntityID: 计时器ID，可用于 Cancel
func (s *TimerSystem) Schedule(name string, delay float64, owner ecs.EntityID, action func()) ecs.EntityID {
	if delay < 0 {
		delay = 0
	}
	id := s.entityManager.CreateEntity()
	s.entityManager.AddComponent(id, &components.TimerComponent{
		Name:       name,
		TargetTime: delay,
		Owner:      owner,
		Action:     action,
	})
	return id
}

// Cancel 取消计时器，返回是否确实取消了一个未触发的计时器
func (s *TimerSystem) Cancel(timerID ecs.EntityID) bool {
	if timerID == ecs.InvalidEntity || !s.entityManager.IsAlive(timerID) {
		return false
	}
	if !ecs.HasComponent[*components.TimerComponent](s.entityManager, timerID) {
		return false
	}
	s.entityManager.DestroyEntity(timerID)
	return true
}

// CancelByName 取消所有同名计时器，返回取消数量
func (s *TimerSystem) CancelByName(name string) int {
	cancelled := 0
	for _, id := range ecs.GetEntitiesWith1[*components.TimerComponent](s.entityManager) {
		timer, ok := ecs.GetComponent[*components.TimerComponent](s.entityManager, id)
		if ok && timer.Name == name {
			s.entityManager.DestroyEntity(id)
			cancelled++
		}
	}
	return cancelled
}

// Pending 返回未触发的计时器数量（可按名称过滤，空字符串表示全部）
func (s *TimerSystem) Pending(name string) int {
	count := 0
	for _, id := range ecs.GetEntitiesWith1[*components.TimerComponent](s.entityManager) {
		timer, ok := ecs.GetComponent[*components.TimerComponent](s.entityManager, id)
		if ok && (name == "" || timer.Name == name) {
			count++
		}
	}
	return count
}

// Update 推进所有计时器并触发到期动作
func (s *TimerSystem) Update(dt float64) {
	// 快照：本帧回调中新建的计时器不参与本帧推进
	timers := ecs.GetEntitiesWith1[*components.TimerComponent](s.entityManager)

	for _, id := range timers {
		// 前面的回调可能已取消该计时器
		if !s.entityManager.IsAlive(id) {
			continue
		}
		timer, ok := ecs.GetComponent[*components.TimerComponent](s.entityManager, id)
		if !ok {
			continue
		}

		timer.CurrentTime += dt
		if timer.CurrentTime < timer.TargetTime {
			continue
		}

		timer.IsReady = true
		s.entityManager.DestroyEntity(id)

		if timer.Owner != ecs.InvalidEntity && !s.entityManager.IsAlive(timer.Owner) {
			log.Printf("[TimerSystem] 丢弃过期计时器: %s (owner=%d 已销毁)", timer.Name, timer.Owner)
			continue
		}
		if timer.Action != nil {
			timer.Action()
		}
	}
}
