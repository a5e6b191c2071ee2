package scenes

import (
	"errors"
	"fmt"
	"log"

	"github.com/decker502/arbowling/pkg/components"
	"github.com/decker502/arbowling/pkg/config"
	"github.com/decker502/arbowling/pkg/ecs"
	"github.com/decker502/arbowling/pkg/game"
	"github.com/decker502/arbowling/pkg/systems"
	"github.com/go-gl/mathgl/mgl64"
)

// RoundState 回合状态
type RoundState int

const (
	RoundStateAwaitingPlacement RoundState = iota // 等待放置球道
	RoundStateAwaitingThrow                       // 等待投掷
	RoundStateThrowInProgress                     // 投掷中
	RoundStateResolving                           // 结算中
	RoundStateRoundReset                          // 整局复位（瞬时状态）
)

// String 返回状态名称
func (s RoundState) String() string {
	switch s {
	case RoundStateAwaitingPlacement:
		return "AwaitingPlacement"
	case RoundStateAwaitingThrow:
		return "AwaitingThrow"
	case RoundStateThrowInProgress:
		return "ThrowInProgress"
	case RoundStateResolving:
		return "Resolving"
	case RoundStateRoundReset:
		return "RoundReset"
	default:
		return fmt.Sprintf("RoundState(%d)", int(s))
	}
}

// PlacementPromptText 放置提示文案
const PlacementPromptText = "Tap to place bowling alley"

// TimerBallRespawn 出界重生计时器名称
const TimerBallRespawn = "ball_respawn"

// ErrMissingCollaborator 缺少必需的协作者
var ErrMissingCollaborator = errors.New("missing collaborator")

// Collaborators 宿主注入的协作者
type Collaborators struct {
	Physics  game.PhysicsWorld  // 必需
	Viewport game.Viewport      // 必需
	Sensor   game.MotionSensor  // 必需
	Surface  game.SurfaceProbe  // 可选，拖拽时的平面射线
	Recorder game.ScoreRecorder // 可选，成绩持久化
}

// SessionView UI 可观察状态
type SessionView struct {
	CurrentScore    int
	PlacementPrompt string // 空字符串表示不显示
	StartEnabled    bool
	ResetEnabled    bool
	State           RoundState
	ThrowsInFrame   int
	FramesPlayed    int
	Strikes         int
}

// RoundController 回合状态机
//
// 持有所有实体（球道、球瓶、保龄球）和系统，宿主每帧调用一次 Update。
// 不是并发安全的：所有输入事件和 Update 必须在同一个模拟线程上串行调用。
type RoundController struct {
	config *config.BowlingConfig
	deps   Collaborators

	entityManager *ecs.EntityManager
	timers        *systems.TimerSystem
	physicsSync   *systems.PhysicsSyncSystem
	pins          *systems.PinRegistrySystem
	throw         *systems.ThrowSystem
	knockdown     *systems.KnockdownSystem
	score         *game.ScoreState

	state           RoundState
	lane            ecs.EntityID
	placementPrompt string

	// wasReset 手动复位后下一次开始投掷强制复位球瓶
	wasReset bool

	// rackCleared 本次投掷期间所有球瓶都已倒下或隐藏
	rackCleared bool

	// frameKnocked 本局内清台复位前已击倒的球瓶数
	frameKnocked int

	respawnTimer ecs.EntityID

	stateListener func(from, to RoundState)
}

// NewRoundController 创建回合控制器
//
// 参数:
//   - cfg: 调参配置，nil 表示使用默认配置
//   - deps: 协作者，Physics/Viewport/Sensor 必需
//
// 返回:
//   - *RoundController: 处于 AwaitingPlacement 状态的控制器，十个球瓶已创建并隐藏
//   - error: 配置非法或缺少协作者
func NewRoundController(cfg *config.BowlingConfig, deps Collaborators) (*RoundController, error) {
	if cfg == nil {
		cfg = config.DefaultBowlingConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch {
	case deps.Physics == nil:
		return nil, fmt.Errorf("%w: physics", ErrMissingCollaborator)
	case deps.Viewport == nil:
		return nil, fmt.Errorf("%w: viewport", ErrMissingCollaborator)
	case deps.Sensor == nil:
		return nil, fmt.Errorf("%w: motion sensor", ErrMissingCollaborator)
	}

	em := ecs.NewEntityManager()
	rc := &RoundController{
		config:          cfg,
		deps:            deps,
		entityManager:   em,
		timers:          systems.NewTimerSystem(em),
		physicsSync:     systems.NewPhysicsSyncSystem(em, deps.Physics),
		pins:            systems.NewPinRegistrySystem(em, deps.Physics, cfg.Pins),
		throw:           systems.NewThrowSystem(em, deps.Physics, deps.Viewport, deps.Surface, deps.Sensor, cfg.Ball),
		score:           game.NewScoreState(),
		state:           RoundStateAwaitingPlacement,
		placementPrompt: PlacementPromptText,
	}
	rc.knockdown = systems.NewKnockdownSystem(em, deps.Physics, rc.timers, rc.score, cfg.Pins, rc.isBall)
	rc.knockdown.SetOnScored(func(pinIndex, total int) {
		if rc.deps.Recorder != nil {
			rc.deps.Recorder.RecordScore(total)
		}
	})

	rc.pins.SpawnPins()
	log.Printf("[RoundController] 初始化完成，等待放置球道")
	return rc, nil
}

// SetStateListener 设置状态变化监听器
func (rc *RoundController) SetStateListener(fn func(from, to RoundState)) {
	rc.stateListener = fn
}

// State 当前状态
func (rc *RoundController) State() RoundState {
	return rc.state
}

// View UI 可观察状态快照
func (rc *RoundController) View() SessionView {
	return SessionView{
		CurrentScore:    rc.score.TotalScore,
		PlacementPrompt: rc.placementPrompt,
		StartEnabled:    rc.canStartThrow(),
		ResetEnabled:    rc.state != RoundStateAwaitingPlacement,
		State:           rc.state,
		ThrowsInFrame:   rc.score.ThrowsInFrame,
		FramesPlayed:    rc.score.FramesPlayed,
		Strikes:         rc.score.Strikes,
	}
}

// ========== 控制命令 ==========

// RequestPlacement 重新显示放置提示（仅在未放置时有效）
func (rc *RoundController) RequestPlacement() {
	if rc.state != RoundStateAwaitingPlacement {
		log.Printf("[RoundController] 球道已放置，忽略放置请求 (state=%s)", rc.state)
		return
	}
	rc.placementPrompt = PlacementPromptText
}

// OnSurfaceTap 平面点击：放置球道并记录球瓶静止位姿
//
// 参数:
//   - pose: 平面命中点位姿
//   - footprint: 检测到的平面尺寸（extents * 2）
//
// 返回:
//   - bool: 是否放置成功（非 AwaitingPlacement 状态时忽略）
func (rc *RoundController) OnSurfaceTap(pose components.Pose, footprint components.Footprint) bool {
	if rc.state != RoundStateAwaitingPlacement {
		log.Printf("[RoundController] 每个会话只能放置一次球道，忽略点击 (state=%s)", rc.state)
		return false
	}

	laneCfg := rc.config.Lane
	scale := systems.ComputeLaneScale(footprint, laneCfg.NativeLength, laneCfg.MinLength, laneCfg.MaxLength)
	offset := systems.LanePlacementOffset(pose.Rotation, scale.Length, laneCfg.VerticalOffset)
	origin := components.Pose{
		Position: pose.Position.Add(offset),
		Rotation: pose.Rotation,
	}

	rc.lane = rc.entityManager.CreateEntity()
	rc.entityManager.AddComponent(rc.lane, &components.LaneComponent{
		TapPose:         pose,
		Origin:          origin,
		Footprint:       footprint,
		ScaleFactor:     scale.ScaleFactor,
		Length:          scale.Length,
		PlacementOffset: offset,
	})
	rc.entityManager.AddComponent(rc.lane, &components.TransformComponent{Pose: origin})

	rc.pins.CaptureRestPoses(origin, scale.Length)
	rc.pins.ResetAll()

	rc.placementPrompt = ""
	log.Printf("[RoundController] 放置球道: footprint=%.2fx%.2f scale=%.3f length=%.2f",
		footprint.Width, footprint.Depth, scale.ScaleFactor, scale.Length)
	rc.transition(RoundStateAwaitingThrow)
	return true
}

// StartThrow 开始投掷：（重新）生成保龄球
//
// 所有球瓶都已倒下或刚手动复位过时，先把球瓶恢复到静止位姿。
func (rc *RoundController) StartThrow() {
	if !rc.canStartThrow() {
		log.Printf("[RoundController] 当前状态不能开始投掷，忽略 (state=%s)", rc.state)
		return
	}

	rc.prepareRack()
	rc.cancelRespawn()
	rc.throw.Spawn()
	rc.transition(RoundStateThrowInProgress)
}

// RequestReset 手动复位：销毁保龄球、复位球瓶、清空本局计数，总分保留
func (rc *RoundController) RequestReset() {
	if rc.state == RoundStateAwaitingPlacement {
		log.Printf("[RoundController] 尚未放置球道，忽略复位")
		return
	}

	rc.cancelRespawn()
	rc.throw.DestroyBall()
	rc.resetPins()
	rc.score.ResetFrame()
	rc.frameKnocked = 0
	rc.wasReset = true

	rc.transition(RoundStateRoundReset)
	rc.throw.Spawn()
	rc.transition(RoundStateAwaitingThrow)
	log.Printf("[RoundController] 手动复位完成: total=%d", rc.score.TotalScore)
}

// ========== 输入事件 ==========

// OnDragStart 手指按下
// 等待投掷时直接拖拽已生成的球视为开始投掷
func (rc *RoundController) OnDragStart(screen mgl64.Vec2) bool {
	if rc.state != RoundStateAwaitingThrow && rc.state != RoundStateThrowInProgress {
		return false
	}
	if !rc.throw.BeginDrag(screen) {
		return false
	}
	if rc.state == RoundStateAwaitingThrow {
		rc.prepareRack()
		rc.transition(RoundStateThrowInProgress)
	}
	return true
}

// OnDragMove 手指移动
func (rc *RoundController) OnDragMove(screen mgl64.Vec2) bool {
	if rc.state != RoundStateThrowInProgress {
		return false
	}
	return rc.throw.DragMove(screen)
}

// OnDragEnd 手指抬起
func (rc *RoundController) OnDragEnd() bool {
	if rc.state != RoundStateThrowInProgress {
		return false
	}
	return rc.throw.EndDrag()
}

// OnCollision 物理碰撞事件
func (rc *RoundController) OnCollision(a, b ecs.EntityID) {
	if rc.state == RoundStateAwaitingPlacement {
		return
	}
	rc.knockdown.OnCollision(a, b)
}

// ========== 模拟步进 ==========

// Update 推进一帧
//
// 顺序：计时器 → 物理镜像同步 → 投掷生命周期 → 轮询计分 → 清台检查 → 结算 → 清理实体。
// 轮询计分先于清台检查，打倒最后一个球瓶的那一帧就能看到清台。
func (rc *RoundController) Update(dt float64) {
	rc.timers.Update(dt)
	rc.physicsSync.Update()

	ballState, entered := rc.throw.Update(dt)

	if rc.state != RoundStateAwaitingPlacement {
		rc.knockdown.Update()
		if rc.knockdown.AllPinsKnockedOrInactive() {
			rc.rackCleared = true
		}
	}

	if entered && rc.state == RoundStateThrowInProgress {
		rc.onBallTerminal(ballState)
	}

	rc.entityManager.RemoveMarkedEntities()
}

// onBallTerminal 保龄球静止或出界
func (rc *RoundController) onBallTerminal(ballState components.BallState) {
	rc.transition(RoundStateResolving)
	throws := rc.score.RecordThrow()
	log.Printf("[RoundController] 投掷结束: ball=%s throws=%d/%d", ballState, throws, rc.config.Round.ThrowsPerFrame)

	if ballState == components.BallStateSettled {
		rc.resolve(rc.config.Pins.HideDelay)
		return
	}

	// 出界：延迟结算，让正在进行的碰撞计分先完成
	ball, _ := rc.throw.Ball()
	rc.respawnTimer = rc.timers.Schedule(TimerBallRespawn, rc.config.Ball.RespawnDelay, ball, func() {
		rc.respawnTimer = ecs.InvalidEntity
		rc.resolve(rc.config.Pins.FallenSweepDelay)
	})
}

// resolve 结算本次投掷
//
// 达到每局投掷次数：整局复位并计入已完成局数。
// 未达到次数但已清台：复位球瓶并清空计分集合，投掷计数保留。
// 其余情况只隐藏已倒下的球瓶。然后重新生成保龄球，回到 AwaitingThrow。
func (rc *RoundController) resolve(sweepDelay float64) {
	if rc.state != RoundStateResolving {
		return
	}

	if rc.knockdown.AllPinsKnockedOrInactive() {
		rc.rackCleared = true
	}
	if rc.rackCleared && rc.score.ThrowsInFrame == 1 {
		rc.score.Strikes++
	}

	switch {
	case rc.score.ThrowsInFrame >= rc.config.Round.ThrowsPerFrame:
		knocked := rc.frameKnocked + rc.score.CountedCount()
		rc.frameKnocked = 0

		rc.transition(RoundStateRoundReset)
		rc.resetPins()
		rc.score.EndFrame()
		log.Printf("[RoundController] 整局结束: knocked=%d total=%d frames=%d",
			knocked, rc.score.TotalScore, rc.score.FramesPlayed)
		if rc.deps.Recorder != nil {
			rc.deps.Recorder.RecordFrame(knocked)
		}

	case rc.rackCleared:
		rc.restoreRack()
		log.Printf("[RoundController] 清台，复位球瓶: throws=%d/%d",
			rc.score.ThrowsInFrame, rc.config.Round.ThrowsPerFrame)

	default:
		rc.knockdown.SweepFallen(sweepDelay)
	}

	rc.throw.Spawn()
	rc.transition(RoundStateAwaitingThrow)
}

// ========== 查询 ==========

// EntityManager 实体管理器（只读用途：渲染、调试）
func (rc *RoundController) EntityManager() *ecs.EntityManager {
	return rc.entityManager
}

// Lane 当前球道
func (rc *RoundController) Lane() (components.LaneComponent, bool) {
	lane, ok := ecs.GetComponent[*components.LaneComponent](rc.entityManager, rc.lane)
	if !ok {
		return components.LaneComponent{}, false
	}
	return *lane, true
}

// Ball 当前保龄球实体
func (rc *RoundController) Ball() (ecs.EntityID, bool) {
	return rc.throw.Ball()
}

// BallState 当前保龄球状态
func (rc *RoundController) BallState() (components.BallState, bool) {
	return rc.throw.BallState()
}

// Pins 按编号排列的球瓶实体
func (rc *RoundController) Pins() []ecs.EntityID {
	return rc.pins.Pins()
}

// RestPose 球瓶静止位姿
func (rc *RoundController) RestPose(index int) (components.Pose, error) {
	return rc.pins.RestPose(index)
}

// CountedPins 本局已计分的球瓶编号
func (rc *RoundController) CountedPins() []int {
	return rc.score.CountedPins()
}

// StandingPins 激活且直立的球瓶数量
func (rc *RoundController) StandingPins() int {
	return rc.knockdown.StandingCount()
}

// PendingTimers 未触发的计时器数量（空字符串表示全部）
func (rc *RoundController) PendingTimers(name string) int {
	return rc.timers.Pending(name)
}

// ========== 内部 ==========

func (rc *RoundController) canStartThrow() bool {
	switch rc.state {
	case RoundStateAwaitingThrow:
		return true
	case RoundStateThrowInProgress:
		state, ok := rc.throw.BallState()
		return !ok || state == components.BallStateIdle
	default:
		return false
	}
}

// prepareRack 投掷开始前的球瓶检查
// 手动复位后或所有球瓶都已倒下时，恢复整组球瓶并清空计分集合
func (rc *RoundController) prepareRack() {
	if !rc.wasReset && !rc.knockdown.AllPinsKnockedOrInactive() {
		return
	}
	rc.restoreRack()
	rc.wasReset = false
}

// restoreRack 局内恢复整组球瓶，已计分数量记入本局击倒数
func (rc *RoundController) restoreRack() {
	rc.frameKnocked += rc.score.CountedCount()
	rc.resetPins()
	rc.score.ClearCounted()
}

// resetPins 取消挂起的隐藏动作并复位所有球瓶
func (rc *RoundController) resetPins() {
	rc.timers.CancelByName(systems.TimerPinHide)
	rc.pins.ResetAll()
	rc.rackCleared = false
}

// cancelRespawn 取消挂起的出界重生
func (rc *RoundController) cancelRespawn() {
	if rc.respawnTimer != ecs.InvalidEntity {
		rc.timers.Cancel(rc.respawnTimer)
		rc.respawnTimer = ecs.InvalidEntity
	}
	rc.timers.CancelByName(TimerBallRespawn)
}

func (rc *RoundController) isBall(id ecs.EntityID) bool {
	ball, ok := rc.throw.Ball()
	return ok && ball == id
}

func (rc *RoundController) transition(to RoundState) {
	from := rc.state
	if from == to {
		return
	}
	rc.state = to
	log.Printf("[RoundController] 状态切换: %s -> %s", from, to)
	if rc.stateListener != nil {
		rc.stateListener(from, to)
	}
}
