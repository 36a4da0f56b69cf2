package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkPopulationCrash  BookmarkType = "population_crash"
	BookmarkPopulationBoom   BookmarkType = "population_boom"
	BookmarkFirstMating      BookmarkType = "first_mating"
	BookmarkSuckerAscendancy BookmarkType = "sucker_ascendancy"
	BookmarkStableEcosystem  BookmarkType = "stable_ecosystem"
)

// Bookmark marks an interesting moment in the run, for later inspection of
// the matching snapshot.
type Bookmark struct {
	Type        BookmarkType
	Tick        int32
	Description string
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// BookmarkDetector scans window stats for notable population events.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	// State tracking
	recentPeak      int // peak creature count since the last crash
	recentTrough    int // lowest creature count since the last boom
	firstMatingSeen bool
	suckerDominant  bool
	stableWindows   int
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 5 {
		historySize = 5 // minimum for stable ecosystem detection
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if bd.historyFull || bd.historyIdx > 0 {
		if b := bd.checkCrash(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkBoom(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkStableEcosystem(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}
	if b := bd.checkFirstMating(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkSuckerAscendancy(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	bd.addToHistory(stats)

	if stats.Creatures > bd.recentPeak {
		bd.recentPeak = stats.Creatures
	}
	if stats.Creatures < bd.recentTrough || bd.recentTrough == 0 {
		bd.recentTrough = stats.Creatures
	}

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

// checkCrash fires when the population halves from its recent peak.
func (bd *BookmarkDetector) checkCrash(stats WindowStats) *Bookmark {
	if bd.recentPeak < 10 {
		return nil
	}
	if stats.Creatures*2 < bd.recentPeak {
		oldPeak := bd.recentPeak
		bd.recentPeak = stats.Creatures
		bd.recentTrough = stats.Creatures

		return &Bookmark{
			Type:        BookmarkPopulationCrash,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Population crashed from peak %d to %d", oldPeak, stats.Creatures),
		}
	}
	return nil
}

// checkBoom fires when the population doubles from its recent trough.
func (bd *BookmarkDetector) checkBoom(stats WindowStats) *Bookmark {
	if bd.recentTrough < 3 {
		return nil
	}
	if stats.Creatures >= bd.recentTrough*2 && stats.Creatures >= 10 {
		oldTrough := bd.recentTrough
		bd.recentTrough = stats.Creatures
		bd.recentPeak = stats.Creatures

		return &Bookmark{
			Type:        BookmarkPopulationBoom,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Population boomed from %d to %d", oldTrough, stats.Creatures),
		}
	}
	return nil
}

// checkFirstMating fires once, on the first window with a sexual birth.
func (bd *BookmarkDetector) checkFirstMating(stats WindowStats) *Bookmark {
	if bd.firstMatingSeen || stats.BirthsMating == 0 {
		return nil
	}
	bd.firstMatingSeen = true
	return &Bookmark{
		Type:        BookmarkFirstMating,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("First sexual reproduction: %d mating births this window", stats.BirthsMating),
	}
}

// checkSuckerAscendancy fires on the transition to sucker nodes being the
// majority of all body nodes, and re-arms when they fall back under half.
func (bd *BookmarkDetector) checkSuckerAscendancy(stats WindowStats) *Bookmark {
	if stats.TotalNodes < 20 {
		return nil
	}
	dominant := stats.SuckerNodes*2 > stats.TotalNodes
	if dominant == bd.suckerDominant {
		return nil
	}
	bd.suckerDominant = dominant
	if !dominant {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkSuckerAscendancy,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Sucker nodes are the majority: %d of %d", stats.SuckerNodes, stats.TotalNodes),
	}
}

// checkStableEcosystem fires once after 5 consecutive windows of low
// population variance with ongoing turnover.
func (bd *BookmarkDetector) checkStableEcosystem(stats WindowStats) *Bookmark {
	if stats.Creatures < 10 || stats.Births == 0 || stats.Deaths == 0 {
		bd.stableWindows = 0
		return nil
	}

	history := bd.getHistory()
	if len(history) < 4 {
		return nil
	}

	var sum float64
	recent := history[len(history)-4:]
	for _, h := range recent {
		sum += float64(h.Creatures)
	}
	mean := sum / 4

	var variance float64
	for _, h := range recent {
		diff := float64(h.Creatures) - mean
		variance += diff * diff
	}
	variance /= 4

	// Coefficient of variation below 20%: CV^2 < 0.04.
	if mean > 0 && variance/(mean*mean) < 0.04 {
		bd.stableWindows++
	} else {
		bd.stableWindows = 0
	}

	if bd.stableWindows == 5 { // trigger exactly once at 5 windows
		return &Bookmark{
			Type:        BookmarkStableEcosystem,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Stable ecosystem with %d creatures over 5+ windows", stats.Creatures),
		}
	}
	return nil
}
