package game

import (
	"sort"
)

// ScoreState 计分状态
//
// 简化规则：每局两投，不计全中/补中奖励，只累计击倒的球瓶数。
// TotalScore 跨局累计，只增不减；CountedPins 和 ThrowsInFrame 在复位时清空。
type ScoreState struct {
	TotalScore    int
	ThrowsInFrame int
	FramesPlayed  int

	// Strikes 第一投即清台的局数（仅统计，不影响得分）
	Strikes int

	countedPins map[int]struct{}
}

// NewScoreState 创建空的计分状态
func NewScoreState() *ScoreState {
	return &ScoreState{
		countedPins: make(map[int]struct{}),
	}
}

// Count 为球瓶计分
// 返回 false 表示该球瓶本轮已计过分（幂等）
func (s *ScoreState) Count(pinIndex int) bool {
	if _, counted := s.countedPins[pinIndex]; counted {
		return false
	}
	s.countedPins[pinIndex] = struct{}{}
	s.TotalScore++
	return true
}

// IsCounted 球瓶本轮是否已计分
func (s *ScoreState) IsCounted(pinIndex int) bool {
	_, counted := s.countedPins[pinIndex]
	return counted
}

// CountedCount 本轮已计分的球瓶数
func (s *ScoreState) CountedCount() int {
	return len(s.countedPins)
}

// CountedPins 返回已计分球瓶编号（升序）
func (s *ScoreState) CountedPins() []int {
	result := make([]int, 0, len(s.countedPins))
	for idx := range s.countedPins {
		result = append(result, idx)
	}
	sort.Ints(result)
	return result
}

// ClearCounted 清空本轮计分集合，TotalScore 保持不变
func (s *ScoreState) ClearCounted() {
	for idx := range s.countedPins {
		delete(s.countedPins, idx)
	}
}

// RecordThrow 记录一次投掷，返回本局已投次数
func (s *ScoreState) RecordThrow() int {
	s.ThrowsInFrame++
	return s.ThrowsInFrame
}

// EndFrame 结束当前局：清空投掷计数与计分集合
func (s *ScoreState) EndFrame() {
	s.ThrowsInFrame = 0
	s.FramesPlayed++
	s.ClearCounted()
}

// ResetFrame 手动复位：清空投掷计数与计分集合，不计入已完成局数
func (s *ScoreState) ResetFrame() {
	s.ThrowsInFrame = 0
	s.ClearCounted()
}
