// Package utils 提供通用工具函数
package utils

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// DragState 拖拽状态
type DragState int

const (
	// DragStateNone 无拖拽
	DragStateNone DragState = iota
	// DragStateStarted 拖拽开始（刚按下，只持续一帧）
	DragStateStarted
	// DragStateDragging 拖拽中（按住移动）
	DragStateDragging
	// DragStateEnded 拖拽结束（释放，只持续一帧）
	DragStateEnded
)

func (s DragState) String() string {
	switch s {
	case DragStateStarted:
		return "Started"
	case DragStateDragging:
		return "Dragging"
	case DragStateEnded:
		return "Ended"
	default:
		return "None"
	}
}

// DragInfo 拖拽信息
type DragInfo struct {
	// State 当前拖拽状态
	State DragState
	// Start 拖拽起始位置（屏幕坐标）
	Start mgl64.Vec2
	// Current 当前位置（屏幕坐标），释放后保留最后位置
	Current mgl64.Vec2
	// TouchID 当前跟踪的触摸ID（-1 表示鼠标）
	TouchID ebiten.TouchID
	// IsTouchInput 是否为触摸输入
	IsTouchInput bool
}

// pointerSample 一帧的原始指针采样
type pointerSample struct {
	justPressed bool
	held        bool
	position    mgl64.Vec2
	touchID     ebiten.TouchID
	isTouch     bool
}

// DragManager 拖拽管理器
// 同时跟踪鼠标左键和第一个触点，触摸优先
type DragManager struct {
	info DragInfo
}

// NewDragManager 创建拖拽管理器
func NewDragManager() *DragManager {
	return &DragManager{info: DragInfo{State: DragStateNone, TouchID: -1}}
}

// Update 读取本帧的鼠标/触摸输入并推进拖拽状态（每帧调用一次）
func (dm *DragManager) Update() {
	dm.advance(dm.sample())
}

// sample 读取 ebiten 输入
func (dm *DragManager) sample() pointerSample {
	switch dm.info.State {
	case DragStateStarted, DragStateDragging:
		if dm.info.IsTouchInput {
			for _, id := range ebiten.AppendTouchIDs(nil) {
				if id == dm.info.TouchID {
					x, y := ebiten.TouchPosition(id)
					return pointerSample{held: true, position: vec2(x, y), touchID: id, isTouch: true}
				}
			}
			return pointerSample{position: dm.info.Current, touchID: dm.info.TouchID, isTouch: true}
		}
		x, y := ebiten.CursorPosition()
		return pointerSample{
			held:     ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft),
			position: vec2(x, y),
			touchID:  -1,
		}
	}

	if ids := inpututil.AppendJustPressedTouchIDs(nil); len(ids) > 0 {
		x, y := ebiten.TouchPosition(ids[0])
		return pointerSample{justPressed: true, held: true, position: vec2(x, y), touchID: ids[0], isTouch: true}
	}
	x, y := ebiten.CursorPosition()
	return pointerSample{
		justPressed: inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft),
		held:        ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft),
		position:    vec2(x, y),
		touchID:     -1,
	}
}

// advance 状态转换
//
//	None/Ended --按下--> Started --按住--> Dragging --释放--> Ended
//
// Started 当帧就释放时直接进入 Ended，保证每次按下都有对应的结束帧。
func (dm *DragManager) advance(s pointerSample) {
	switch dm.info.State {
	case DragStateStarted, DragStateDragging:
		if !s.held {
			dm.info.State = DragStateEnded
			return
		}
		dm.info.State = DragStateDragging
		dm.info.Current = s.position

	default:
		dm.Reset()
		if s.justPressed {
			dm.info = DragInfo{
				State:        DragStateStarted,
				Start:        s.position,
				Current:      s.position,
				TouchID:      s.touchID,
				IsTouchInput: s.isTouch,
			}
		}
	}
}

// Reset 重置拖拽状态
func (dm *DragManager) Reset() {
	dm.info = DragInfo{
		State:   DragStateNone,
		TouchID: -1,
	}
}

// GetState 获取当前拖拽状态
func (dm *DragManager) GetState() DragState {
	return dm.info.State
}

// GetInfo 获取完整拖拽信息
func (dm *DragManager) GetInfo() DragInfo {
	return dm.info
}

// IsDragging 是否正在拖拽
func (dm *DragManager) IsDragging() bool {
	return dm.info.State == DragStateDragging
}

// JustStarted 是否刚开始拖拽（本帧）
func (dm *DragManager) JustStarted() bool {
	return dm.info.State == DragStateStarted
}

// JustEnded 是否刚结束拖拽（本帧）
func (dm *DragManager) JustEnded() bool {
	return dm.info.State == DragStateEnded
}

// GetDragDistance 获取拖拽位移（从起点到当前位置）
func (dm *DragManager) GetDragDistance() mgl64.Vec2 {
	return dm.info.Current.Sub(dm.info.Start)
}

func vec2(x, y int) mgl64.Vec2 {
	return mgl64.Vec2{float64(x), float64(y)}
}
