package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkCollisionSpike BookmarkType = "collision_spike"
	BookmarkFallbackBurst  BookmarkType = "fallback_burst"
	BookmarkStall          BookmarkType = "stall"
	BookmarkCleanRun       BookmarkType = "clean_run"
)

// Thresholds for the detectors.
const (
	fallbackBurstFraction = 0.2
	fallbackBurstMin      = 5
	stallSpeed            = 0.02 // m/s per robot
	cleanRunWindows       = 5
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type" json:"type"`
	Tick        int32        `csv:"tick" json:"tick"`
	Description string       `csv:"description" json:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// BookmarkDetector detects interesting moments in an arena run.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	cleanWindows int  // consecutive windows without a collision
	stalled      bool // a stall has been reported and not yet cleared
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 3 {
		historySize = 3
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if b := bd.checkCollisionSpike(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkFallbackBurst(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkStall(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkCleanRun(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	bd.addToHistory(stats)
	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []WindowStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

// checkCollisionSpike fires when a window has at least three collisions and
// more than twice the rolling average.
func (bd *BookmarkDetector) checkCollisionSpike(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 || stats.Collisions < 3 {
		return nil
	}

	var total int
	for _, h := range history {
		total += h.Collisions
	}
	avg := float64(total) / float64(len(history))
	if float64(stats.Collisions) <= avg*2 {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkCollisionSpike,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("%d collisions against a rolling average of %.2f", stats.Collisions, avg),
	}
}

func (bd *BookmarkDetector) checkFallbackBurst(stats WindowStats) *Bookmark {
	if stats.Commands == 0 || stats.Fallbacks < fallbackBurstMin {
		return nil
	}
	frac := float64(stats.Fallbacks) / float64(stats.Commands)
	if frac <= fallbackBurstFraction {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkFallbackBurst,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("%.0f%% of commands were fallbacks (%d no-rule-fired)", frac*100, stats.NoRuleFired),
	}
}

// checkStall fires once when the fleet stops making progress and re-arms
// when it moves again.
func (bd *BookmarkDetector) checkStall(stats WindowStats) *Bookmark {
	if stats.Robots == 0 || stats.Commands == 0 {
		return nil
	}
	if stats.MeanSpeed >= stallSpeed {
		bd.stalled = false
		return nil
	}
	if bd.stalled {
		return nil
	}
	bd.stalled = true
	return &Bookmark{
		Type:        BookmarkStall,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("mean speed %.3f m/s over %d robots", stats.MeanSpeed, stats.Robots),
	}
}

func (bd *BookmarkDetector) checkCleanRun(stats WindowStats) *Bookmark {
	if stats.Collisions > 0 || stats.Commands == 0 {
		bd.cleanWindows = 0
		return nil
	}
	bd.cleanWindows++
	if bd.cleanWindows != cleanRunWindows {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkCleanRun,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("no collisions over %d windows", cleanRunWindows),
	}
}
