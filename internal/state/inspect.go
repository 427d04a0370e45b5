package state

import (
	"bufio"
	"os"
	"path/filepath"
	"time"

	"github.com/madhurim15/flow-shift-companion-sub000/internal/activity"
	"github.com/madhurim15/flow-shift-companion-sub000/internal/doomscroll"
	"github.com/madhurim15/flow-shift-companion-sub000/internal/history"
)

// Inspector provides read-only introspection over the engine's stores.
type Inspector struct {
	statePath string
	store     *history.Store
}

// NewInspector creates a state inspector. store may be nil if the history
// database could not be opened; session and pattern queries then report zero.
func NewInspector(statePath string, store *history.Store) *Inspector {
	return &Inspector{statePath: statePath, store: store}
}

// Summary holds counts across all state components.
type Summary struct {
	SessionsToday      int                   `json:"sessions_today"`
	InterventionsToday int                   `json:"interventions_today"`
	EventEntries       int                   `json:"event_entries"`
	Patterns           []history.PatternStat `json:"patterns,omitempty"`
	DoomScroll         doomscroll.Pattern    `json:"doom_scroll"`
}

// Summarize gathers counts from the history store, the event log, and the
// doom-scroll state file. Missing pieces degrade to zeros.
func (i *Inspector) Summarize() (*Summary, error) {
	s := &Summary{}

	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	if i.store != nil {
		if sessions, err := i.store.SessionsSince(midnight); err == nil {
			s.SessionsToday = len(sessions)
		}
		if interventions, err := i.store.InterventionsSince(midnight); err == nil {
			s.InterventionsToday = len(interventions)
		}
		if stats, err := i.store.PatternStats(); err == nil {
			s.Patterns = stats
		}
	}

	s.EventEntries = i.countJSONL(filepath.Join("system", "engine.jsonl"))
	s.DoomScroll = doomscroll.NewDetector(i.statePath).Snapshot()

	return s, nil
}

// RecentSessions returns today's completed sessions, most recent first.
func (i *Inspector) RecentSessions() ([]history.SessionRecord, error) {
	if i.store == nil {
		return nil, nil
	}
	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return i.store.SessionsSince(midnight)
}

// RecentInterventions returns interventions from the last 7 days.
func (i *Inspector) RecentInterventions() ([]history.InterventionRecord, error) {
	if i.store == nil {
		return nil, nil
	}
	return i.store.InterventionsSince(time.Now().Add(-7 * 24 * time.Hour))
}

// PatternStats returns the behavioral pattern counters.
func (i *Inspector) PatternStats() ([]history.PatternStat, error) {
	if i.store == nil {
		return nil, nil
	}
	return i.store.PatternStats()
}

// RecentEvents returns the last n engine event log entries.
func (i *Inspector) RecentEvents(n int) ([]activity.Entry, error) {
	return activity.New(i.statePath).Recent(n)
}

func (i *Inspector) countJSONL(relPath string) int {
	f, err := os.Open(filepath.Join(i.statePath, relPath))
	if err != nil {
		return 0
	}
	defer f.Close()

	count := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	for scanner.Scan() {
		if len(scanner.Bytes()) > 0 {
			count++
		}
	}
	return count
}
