package game

import (
	"fmt"
	"log"
	"time"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

// ScoreRecord 持久化的成绩记录
type ScoreRecord struct {
	BestScore    int       `yaml:"bestScore"`    // 单次会话最高总分
	LifetimePins int       `yaml:"lifetimePins"` // 历史累计击倒数
	FramesPlayed int       `yaml:"framesPlayed"` // 历史累计局数
	LastPlayedAt time.Time `yaml:"lastPlayedAt"`
}

// 存储路径常量
const (
	scoreObject   = "scores"
	scoreProperty = "bowling"
)

// ScoreStore 成绩存储
// 实现 ScoreRecorder；gdataManager 为 nil 时降级为仅内存记录
type ScoreStore struct {
	gdataManager *gdata.Manager
	record       *ScoreRecord

	// lastTotal 本次会话最近一次记录的总分，用于计算增量
	lastTotal int
}

// NewScoreStore 创建成绩存储并尝试加载历史记录
//
// 参数：
//   - gdataManager: gdata 跨平台存储管理器，可为 nil（降级模式）
//
// 加载失败不是致命错误，使用空记录继续
func NewScoreStore(gdataManager *gdata.Manager) *ScoreStore {
	ss := &ScoreStore{
		gdataManager: gdataManager,
		record:       &ScoreRecord{},
	}
	if err := ss.Load(); err != nil {
		log.Printf("[ScoreStore] Warning: Failed to load scores: %v (starting fresh)", err)
	}
	return ss
}

// Load 从 gdata 加载成绩记录
func (ss *ScoreStore) Load() error {
	if ss.gdataManager == nil {
		return nil
	}
	if !ss.gdataManager.ObjectPropExists(scoreObject, scoreProperty) {
		return nil
	}

	data, err := ss.gdataManager.LoadObjectProp(scoreObject, scoreProperty)
	if err != nil {
		return fmt.Errorf("failed to load score record: %w", err)
	}

	var record ScoreRecord
	if err := yaml.Unmarshal(data, &record); err != nil {
		return fmt.Errorf("failed to unmarshal score record: %w", err)
	}
	ss.record = &record
	return nil
}

// Save 保存成绩记录到 gdata
// 降级模式下直接返回 nil
func (ss *ScoreStore) Save() error {
	if ss.gdataManager == nil {
		return nil
	}

	ss.record.LastPlayedAt = time.Now()
	data, err := yaml.Marshal(ss.record)
	if err != nil {
		return fmt.Errorf("failed to marshal score record: %w", err)
	}
	if err := ss.gdataManager.SaveObjectProp(scoreObject, scoreProperty, data); err != nil {
		return fmt.Errorf("failed to save score record: %w", err)
	}
	return nil
}

// Record 返回当前记录的副本
func (ss *ScoreStore) Record() ScoreRecord {
	return *ss.record
}

// RecordScore 实现 ScoreRecorder
func (ss *ScoreStore) RecordScore(total int) {
	if total > ss.lastTotal {
		ss.record.LifetimePins += total - ss.lastTotal
	}
	ss.lastTotal = total
	if total > ss.record.BestScore {
		ss.record.BestScore = total
	}
}

// RecordFrame 实现 ScoreRecorder，每局结束时持久化
func (ss *ScoreStore) RecordFrame(knocked int) {
	ss.record.FramesPlayed++
	if err := ss.Save(); err != nil {
		log.Printf("[ScoreStore] Warning: %v", err)
	}
}
