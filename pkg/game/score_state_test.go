package game

import "testing"

func TestScoreStateCountIsIdempotent(t *testing.T) {
	s := NewScoreState()

	if !s.Count(3) {
		t.Fatal("first Count(3) should succeed")
	}
	if s.Count(3) {
		t.Error("second Count(3) should be rejected")
	}
	if s.TotalScore != 1 {
		t.Errorf("TotalScore = %d, want 1", s.TotalScore)
	}
	if !s.IsCounted(3) || s.IsCounted(4) {
		t.Error("IsCounted mismatch")
	}
}

func TestScoreStateEndFrameKeepsTotal(t *testing.T) {
	s := NewScoreState()
	for _, idx := range []int{5, 1, 9} {
		s.Count(idx)
	}
	s.RecordThrow()
	s.RecordThrow()

	if got := s.CountedPins(); len(got) != 3 || got[0] != 1 || got[2] != 9 {
		t.Errorf("CountedPins = %v, want sorted [1 5 9]", got)
	}

	s.EndFrame()

	if s.TotalScore != 3 {
		t.Errorf("TotalScore = %d, want 3 after EndFrame", s.TotalScore)
	}
	if s.ThrowsInFrame != 0 || s.CountedCount() != 0 {
		t.Errorf("frame counters not cleared: throws=%d counted=%d", s.ThrowsInFrame, s.CountedCount())
	}
	if s.FramesPlayed != 1 {
		t.Errorf("FramesPlayed = %d, want 1", s.FramesPlayed)
	}

	// 复位后同一球瓶可再次计分
	if !s.Count(5) {
		t.Error("pin 5 should be countable again after EndFrame")
	}
	if s.TotalScore != 4 {
		t.Errorf("TotalScore = %d, want 4", s.TotalScore)
	}
}

func TestScoreStateResetFrameDoesNotCountFrame(t *testing.T) {
	s := NewScoreState()
	s.Count(0)
	s.Count(2)
	s.RecordThrow()

	s.ResetFrame()

	if s.TotalScore != 2 {
		t.Errorf("TotalScore = %d, want 2 after ResetFrame", s.TotalScore)
	}
	if s.ThrowsInFrame != 0 || s.CountedCount() != 0 {
		t.Errorf("frame counters not cleared: throws=%d counted=%d", s.ThrowsInFrame, s.CountedCount())
	}
	if s.FramesPlayed != 0 {
		t.Errorf("FramesPlayed = %d, want 0 (manual reset is not a finished frame)", s.FramesPlayed)
	}
}
