package components

import "github.com/decker502/arbowling/pkg/ecs"

// TimerComponent 延迟动作计时器
// 用于在单线程模拟循环上执行延迟行为（如延迟隐藏球瓶、出界后延迟重生）
type TimerComponent struct {
	Name        string  // 计时器名称，如 "pin_hide"
	TargetTime  float64 // 目标时间（秒）
	CurrentTime float64 // 当前已过时间（秒）
	IsReady     bool    // 计时器是否已完成

	// Owner 计时器所属实体，实体失效后计时器不再触发
	Owner ecs.EntityID

	// Action 到期时执行的动作
	Action func()
}
