package utils

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestDragManagerInitialState(t *testing.T) {
	dm := NewDragManager()

	if dm.GetState() != DragStateNone {
		t.Errorf("Expected initial state to be DragStateNone, got %v", dm.GetState())
	}
	if dm.IsDragging() || dm.JustStarted() || dm.JustEnded() {
		t.Error("Expected no drag activity initially")
	}
	if dm.GetInfo().TouchID != -1 {
		t.Errorf("Expected TouchID -1, got %d", dm.GetInfo().TouchID)
	}
}

func TestDragManagerStateTransitions(t *testing.T) {
	press := func(x, y float64) pointerSample {
		return pointerSample{justPressed: true, held: true, position: mgl64.Vec2{x, y}, touchID: -1}
	}
	hold := func(x, y float64) pointerSample {
		return pointerSample{held: true, position: mgl64.Vec2{x, y}, touchID: -1}
	}
	release := pointerSample{touchID: -1}

	tests := []struct {
		name    string
		samples []pointerSample
		want    []DragState
	}{
		{
			name:    "完整拖拽",
			samples: []pointerSample{press(10, 20), hold(15, 25), hold(30, 40), release, release},
			want:    []DragState{DragStateStarted, DragStateDragging, DragStateDragging, DragStateEnded, DragStateNone},
		},
		{
			name:    "按下立即释放",
			samples: []pointerSample{press(10, 20), release, release},
			want:    []DragState{DragStateStarted, DragStateEnded, DragStateNone},
		},
		{
			name:    "结束帧再次按下",
			samples: []pointerSample{press(0, 0), release, press(5, 5)},
			want:    []DragState{DragStateStarted, DragStateEnded, DragStateStarted},
		},
		{
			name:    "未按下时移动无效",
			samples: []pointerSample{hold(1, 1), release},
			want:    []DragState{DragStateNone, DragStateNone},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dm := NewDragManager()
			for i, s := range tt.samples {
				dm.advance(s)
				if got := dm.GetState(); got != tt.want[i] {
					t.Fatalf("step %d: state = %v, want %v", i, got, tt.want[i])
				}
			}
		})
	}
}

func TestDragManagerGetDragDistance(t *testing.T) {
	dm := NewDragManager()
	dm.advance(pointerSample{justPressed: true, held: true, position: mgl64.Vec2{100, 200}, touchID: -1})
	dm.advance(pointerSample{held: true, position: mgl64.Vec2{150, 180}, touchID: -1})

	if d := dm.GetDragDistance(); d != (mgl64.Vec2{50, -20}) {
		t.Errorf("Expected distance (50, -20), got %v", d)
	}

	// 释放后保留最后位置
	dm.advance(pointerSample{touchID: -1})
	if dm.GetInfo().Current != (mgl64.Vec2{150, 180}) {
		t.Errorf("Expected last position to be kept, got %v", dm.GetInfo().Current)
	}
}

func TestDragManagerTouchInput(t *testing.T) {
	dm := NewDragManager()
	dm.advance(pointerSample{justPressed: true, held: true, position: mgl64.Vec2{1, 2}, touchID: 3, isTouch: true})

	info := dm.GetInfo()
	if !info.IsTouchInput || info.TouchID != 3 {
		t.Errorf("Expected touch drag with ID 3, got %+v", info)
	}

	dm.Reset()
	if dm.GetInfo().IsTouchInput || dm.GetState() != DragStateNone {
		t.Error("Expected Reset to clear touch drag")
	}
}
