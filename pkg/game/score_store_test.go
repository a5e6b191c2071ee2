package game

import (
	"testing"

	"github.com/quasilyte/gdata/v2"
)

// TestScoreStoreNilGdata 测试降级模式
func TestScoreStoreNilGdata(t *testing.T) {
	ss := NewScoreStore(nil)

	ss.RecordScore(3)
	ss.RecordScore(7)
	ss.RecordFrame(7)

	rec := ss.Record()
	if rec.BestScore != 7 {
		t.Errorf("BestScore: got %d, want 7", rec.BestScore)
	}
	if rec.LifetimePins != 7 {
		t.Errorf("LifetimePins: got %d, want 7", rec.LifetimePins)
	}
	if rec.FramesPlayed != 1 {
		t.Errorf("FramesPlayed: got %d, want 1", rec.FramesPlayed)
	}
	if err := ss.Save(); err != nil {
		t.Errorf("Save() in degraded mode should not fail: %v", err)
	}
}

// TestScoreStoreRecordScoreIgnoresNonIncrease 总分不增加时不累计击倒数
func TestScoreStoreRecordScoreIgnoresNonIncrease(t *testing.T) {
	ss := NewScoreStore(nil)
	ss.RecordScore(4)
	ss.RecordScore(4)

	if got := ss.Record().LifetimePins; got != 4 {
		t.Errorf("LifetimePins: got %d, want 4", got)
	}
}

// TestScoreStoreLoadSave 测试持久化往返
func TestScoreStoreLoadSave(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	gdataManager, err := gdata.Open(gdata.Config{
		AppName: "test_bowling_scores",
	})
	if err != nil {
		t.Fatalf("Failed to create gdata manager: %v", err)
	}

	ss1 := NewScoreStore(gdataManager)
	ss1.RecordScore(9)
	ss1.RecordFrame(9)

	// 新会话：最高分保留，本次会话增量从 0 开始
	ss2 := NewScoreStore(gdataManager)
	rec := ss2.Record()
	if rec.BestScore != 9 {
		t.Errorf("Loaded BestScore: got %d, want 9", rec.BestScore)
	}
	if rec.FramesPlayed != 1 {
		t.Errorf("Loaded FramesPlayed: got %d, want 1", rec.FramesPlayed)
	}
	if rec.LastPlayedAt.IsZero() {
		t.Error("LastPlayedAt should be set after Save()")
	}

	ss2.RecordScore(2)
	if got := ss2.Record().LifetimePins; got != 11 {
		t.Errorf("LifetimePins after new session: got %d, want 11", got)
	}
	if got := ss2.Record().BestScore; got != 9 {
		t.Errorf("BestScore should stay 9, got %d", got)
	}
}
