package systems

import (
	"log"

	"github.com/decker502/arbowling/pkg/components"
	"github.com/decker502/arbowling/pkg/config"
	"github.com/decker502/arbowling/pkg/ecs"
	"github.com/decker502/arbowling/pkg/game"
	"github.com/decker502/arbowling/pkg/utils"
)

// 计时器名称
const (
	TimerPinHide = "pin_hide"
)

// KnockdownSystem 击倒计分系统
//
// 两个触发源共用同一套计分规则，CountedPins 保证每轮每个球瓶最多计分一次：
//  1. 轮询：每帧检查未计分的激活球瓶，倒下即计分
//  2. 碰撞：球瓶与保龄球或其他球瓶接触时，若此刻已倒下则计分
//
// 计分后延迟 HideDelay 隐藏球瓶，让倒下的动画播放完。
type KnockdownSystem struct {
	entityManager *ecs.EntityManager
	physics       game.PhysicsWorld
	timers        *TimerSystem
	score         *game.ScoreState
	config        config.PinsConfig

	// isBall 判断实体是否为当前保龄球
	isBall func(ecs.EntityID) bool

	// onScored 计分回调（可为 nil）
	onScored func(pinIndex, total int)
}

// NewKnockdownSystem 创建击倒计分系统
//
// 参数:
//   - em: 实体管理器
//   - physics: 物理协作者（碰撞时读取实时姿态、隐藏球瓶）
//   - timers: 计时器系统（延迟隐藏）
//   - score: 计分状态
//   - cfg: 球瓶配置（阈值、延迟）
//   - isBall: 判断实体是否为保龄球
func NewKnockdownSystem(
	em *ecs.EntityManager,
	physics game.PhysicsWorld,
	timers *TimerSystem,
	score *game.ScoreState,
	cfg config.PinsConfig,
	isBall func(ecs.EntityID) bool,
) *KnockdownSystem {
	return &KnockdownSystem{
		entityManager: em,
		physics:       physics,
		timers:        timers,
		score:         score,
		config:        cfg,
		isBall:        isBall,
	}
}

// SetOnScored 设置计分回调
func (s *KnockdownSystem) SetOnScored(fn func(pinIndex, total int)) {
	s.onScored = fn
}

// Update 轮询触发：为所有已倒下且未计分的激活球瓶计分
//
// 返回:
//   - []int: 本帧计分的球瓶编号
func (s *KnockdownSystem) Update() []int {
	var scored []int
	for _, id := range ecs.GetEntitiesWith2[*components.PinComponent, *components.TransformComponent](s.entityManager) {
		pin, _ := ecs.GetComponent[*components.PinComponent](s.entityManager, id)
		transform, _ := ecs.GetComponent[*components.TransformComponent](s.entityManager, id)
		if !pin.IsActive || s.score.IsCounted(pin.Index) {
			continue
		}
		if utils.IsPinKnockedOver(transform.Pose, s.config.StandingToleranceDeg) {
			if s.scorePin(id, pin) {
				scored = append(scored, pin.Index)
			}
		}
	}
	return scored
}

// OnCollision 碰撞触发
//
// 任一方为球瓶、另一方为保龄球或球瓶时，重新读取该球瓶此刻的姿态，
// 已倒下才计分。碰撞只是加速检测，不是计分的充分条件。
//
// 返回:
//   - bool: 是否有球瓶因此次碰撞计分
func (s *KnockdownSystem) OnCollision(a, b ecs.EntityID) bool {
	scoredA := s.tryScoreOnContact(a, b)
	scoredB := s.tryScoreOnContact(b, a)
	return scoredA || scoredB
}

// tryScoreOnContact 球瓶 pinID 与 other 接触时尝试计分
func (s *KnockdownSystem) tryScoreOnContact(pinID, other ecs.EntityID) bool {
	pin, ok := ecs.GetComponent[*components.PinComponent](s.entityManager, pinID)
	if !ok || !pin.IsActive || s.score.IsCounted(pin.Index) {
		return false
	}
	otherIsPin := ecs.HasComponent[*components.PinComponent](s.entityManager, other)
	if !otherIsPin && (s.isBall == nil || !s.isBall(other)) {
		return false
	}

	pose, ok := s.currentPose(pinID)
	if !ok || !utils.IsPinKnockedOver(pose, s.config.StandingToleranceDeg) {
		return false
	}
	return s.scorePin(pinID, pin)
}

// scorePin 计分：加入 CountedPins、总分加一、安排延迟隐藏
func (s *KnockdownSystem) scorePin(id ecs.EntityID, pin *components.PinComponent) bool {
	if !s.score.Count(pin.Index) {
		return false
	}
	pin.IsScored = true
	s.ScheduleHide(id, s.config.HideDelay)

	log.Printf("[KnockdownSystem] 球瓶倒下计分: pin=%d total=%d", pin.Index, s.score.TotalScore)
	if s.onScored != nil {
		s.onScored(pin.Index, s.score.TotalScore)
	}
	return true
}

// ScheduleHide 延迟隐藏球瓶
// 回调捕获当前 Generation，球瓶在此期间被复位则回调失效
func (s *KnockdownSystem) ScheduleHide(id ecs.EntityID, delay float64) ecs.EntityID {
	pin, ok := ecs.GetComponent[*components.PinComponent](s.entityManager, id)
	if !ok {
		return ecs.InvalidEntity
	}
	generation := pin.Generation

	return s.timers.Schedule(TimerPinHide, delay, id, func() {
		current, ok := ecs.GetComponent[*components.PinComponent](s.entityManager, id)
		if !ok || current.Generation != generation || !current.IsActive {
			return
		}
		current.IsActive = false
		s.physics.SetActive(id, false)
		log.Printf("[KnockdownSystem] 隐藏球瓶: pin=%d", current.Index)
	})
}

// SweepFallen 为所有已倒下的激活球瓶安排延迟隐藏，返回安排数量
func (s *KnockdownSystem) SweepFallen(delay float64) int {
	count := 0
	for _, id := range ecs.GetEntitiesWith2[*components.PinComponent, *components.TransformComponent](s.entityManager) {
		pin, _ := ecs.GetComponent[*components.PinComponent](s.entityManager, id)
		transform, _ := ecs.GetComponent[*components.TransformComponent](s.entityManager, id)
		if !pin.IsActive {
			continue
		}
		if utils.IsPinKnockedOver(transform.Pose, s.config.StandingToleranceDeg) {
			s.ScheduleHide(id, delay)
			count++
		}
	}
	return count
}

// AllPinsKnockedOrInactive 没有任何激活且直立的球瓶
func (s *KnockdownSystem) AllPinsKnockedOrInactive() bool {
	for _, id := range ecs.GetEntitiesWith2[*components.PinComponent, *components.TransformComponent](s.entityManager) {
		pin, _ := ecs.GetComponent[*components.PinComponent](s.entityManager, id)
		transform, _ := ecs.GetComponent[*components.TransformComponent](s.entityManager, id)
		if pin.IsActive && utils.IsPinStanding(transform.Pose, s.config.StandingToleranceDeg) {
			return false
		}
	}
	return true
}

// StandingCount 激活且直立的球瓶数量
func (s *KnockdownSystem) StandingCount() int {
	count := 0
	for _, id := range ecs.GetEntitiesWith2[*components.PinComponent, *components.TransformComponent](s.entityManager) {
		pin, _ := ecs.GetComponent[*components.PinComponent](s.entityManager, id)
		transform, _ := ecs.GetComponent[*components.TransformComponent](s.entityManager, id)
		if pin.IsActive && utils.IsPinStanding(transform.Pose, s.config.StandingToleranceDeg) {
			count++
		}
	}
	return count
}

// currentPose 碰撞瞬间的姿态：优先读物理引擎，回退到组件镜像
func (s *KnockdownSystem) currentPose(id ecs.EntityID) (components.Pose, bool) {
	if state, ok := s.physics.BodyState(id); ok {
		return state.Pose, true
	}
	transform, ok := ecs.GetComponent[*components.TransformComponent](s.entityManager, id)
	if !ok {
		return components.Pose{}, false
	}
	return transform.Pose, true
}
