package components

// BallState 保龄球投掷状态
type BallState int

const (
	BallStateIdle BallState = iota
	BallStateDragging
	BallStateInFlight
	BallStateSettled
	BallStateOutOfBounds
)

// String 返回状态名称（用于日志）
func (s BallState) String() string {
	switch s {
	case BallStateIdle:
		return "Idle"
	case BallStateDragging:
		return "Dragging"
	case BallStateInFlight:
		return "InFlight"
	case BallStateSettled:
		return "Settled"
	case BallStateOutOfBounds:
		return "OutOfBounds"
	default:
		return "Unknown"
	}
}

// IsTerminal 是否为终止状态（等待重生）
func (s BallState) IsTerminal() bool {
	return s == BallStateSettled || s == BallStateOutOfBounds
}

// BallComponent 保龄球组件
// 每次投掷都会销毁并重新创建，不跨投掷复用
type BallComponent struct {
	State BallState

	// FlightTime 出手后经过的时间（秒）
	FlightTime float64

	// PeakSpeed 本次投掷观测到的最大速度（限速后）
	PeakSpeed float64
}
