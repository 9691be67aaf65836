package telemetry

import "testing"

func hasBookmark(bms []Bookmark, typ BookmarkType) bool {
	for _, bm := range bms {
		if bm.Type == typ {
			return true
		}
	}
	return false
}

func TestBookmarkDetector_CollisionSpike(t *testing.T) {
	bd := NewBookmarkDetector(10)

	for i := 0; i < 5; i++ {
		bd.Check(WindowStats{WindowEndTick: int32(i * 100), Commands: 400, Robots: 4, MeanSpeed: 0.2, Collisions: 1})
	}

	bookmarks := bd.Check(WindowStats{WindowEndTick: 500, Commands: 400, Robots: 4, MeanSpeed: 0.2, Collisions: 6})
	if !hasBookmark(bookmarks, BookmarkCollisionSpike) {
		t.Error("expected collision_spike bookmark")
	}
}

func TestBookmarkDetector_NoSpikeWithoutHistory(t *testing.T) {
	bd := NewBookmarkDetector(10)

	bookmarks := bd.Check(WindowStats{Commands: 400, Robots: 4, MeanSpeed: 0.2, Collisions: 10})
	if hasBookmark(bookmarks, BookmarkCollisionSpike) {
		t.Error("collision_spike needs at least three windows of history")
	}
}

func TestBookmarkDetector_FallbackBurst(t *testing.T) {
	bd := NewBookmarkDetector(10)

	tests := []struct {
		name      string
		fallbacks int
		commands  int
		want      bool
	}{
		{"quiet", 2, 100, false},
		{"few but frequent", 4, 10, false},
		{"burst", 30, 100, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bms := bd.Check(WindowStats{Commands: tt.commands, Fallbacks: tt.fallbacks, Robots: 1, MeanSpeed: 0.2})
			if got := hasBookmark(bms, BookmarkFallbackBurst); got != tt.want {
				t.Errorf("fallback_burst = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBookmarkDetector_StallFiresOnce(t *testing.T) {
	bd := NewBookmarkDetector(10)
	slow := WindowStats{Commands: 100, Robots: 2, MeanSpeed: 0.001}

	if !hasBookmark(bd.Check(slow), BookmarkStall) {
		t.Fatal("expected stall bookmark")
	}
	if hasBookmark(bd.Check(slow), BookmarkStall) {
		t.Error("stall should not repeat while the fleet stays stalled")
	}

	bd.Check(WindowStats{Commands: 100, Robots: 2, MeanSpeed: 0.3})
	if !hasBookmark(bd.Check(slow), BookmarkStall) {
		t.Error("stall should re-arm after the fleet moves again")
	}
}

func TestBookmarkDetector_CleanRun(t *testing.T) {
	bd := NewBookmarkDetector(10)
	clean := WindowStats{Commands: 100, Robots: 2, MeanSpeed: 0.3}

	var count int
	for i := 0; i < 8; i++ {
		if hasBookmark(bd.Check(clean), BookmarkCleanRun) {
			count++
		}
	}
	if count != 1 {
		t.Errorf("clean_run fired %d times, want exactly 1", count)
	}

	bd.Check(WindowStats{Commands: 100, Robots: 2, MeanSpeed: 0.3, Collisions: 1})
	for i := 0; i < 4; i++ {
		if hasBookmark(bd.Check(clean), BookmarkCleanRun) {
			t.Fatal("clean_run fired before five clean windows after a collision")
		}
	}
	if !hasBookmark(bd.Check(clean), BookmarkCleanRun) {
		t.Error("clean_run should fire again after five clean windows")
	}
}

func TestBookmarkDetector_HistoryWraps(t *testing.T) {
	bd := NewBookmarkDetector(3)
	for i := 0; i < 7; i++ {
		bd.Check(WindowStats{WindowEndTick: int32(i)})
	}
	if got := len(bd.getHistory()); got != 3 {
		t.Errorf("history length = %d, want 3", got)
	}
}
