// Package doomscroll detects compulsive return visits to tracked apps,
// independent of the live escalation ladder: many visits, quick bounces back,
// and long accumulated time all count toward a single persisted pattern that
// can trigger its own rate-limited intervention.
package doomscroll

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/madhurim15/flow-shift-companion-sub000/internal/logging"
)

// Pattern is the persisted doom-scroll state, one record per device.
type Pattern struct {
	VisitCount            int       `json:"visit_count"`
	LastVisitAt           time.Time `json:"last_visit_at"`
	TotalTimeSpentSeconds int       `json:"total_time_spent_seconds"`
	RapidReturnCount      int       `json:"rapid_return_count"`

	LastInterventionAt     time.Time `json:"last_intervention_at"`
	DailyInterventionCount int       `json:"daily_intervention_count"`
	LastInterventionDate   string    `json:"last_intervention_date"` // YYYY-MM-DD
	LastResetAt            time.Time `json:"last_reset_at"`
}

const (
	rapidReturnWindow    = 3 * time.Minute
	interventionCooldown = time.Hour
	maxPerDay            = 4
	displayDelay         = 2 * time.Second
	autoResetEvery       = 24 * time.Hour

	minVisits          = 4
	minRapidReturns    = 2
	heavyVisits        = 6
	totalTimeThreshold = 900 // seconds
)

// Detector owns the doom-scroll pattern and its display pacing. The host
// drives time: call Tick from a coarse timer so deferred displays fire
// without the detector running its own goroutines.
type Detector struct {
	mu      sync.Mutex
	pattern Pattern
	path    string

	pendingShowAt time.Time // zero = nothing pending
	showing       bool

	now    func() time.Time
	onShow func(Pattern)
}

// NewDetector loads (or initializes) the pattern state from the state
// directory. A missing or corrupt file degrades to a fresh pattern. The 24h
// auto-reset and the daily intervention-count rollover are both applied at
// load.
func NewDetector(statePath string) *Detector {
	d := &Detector{
		path: filepath.Join(statePath, "system", "doomscroll.json"),
		now:  time.Now,
	}
	d.load()
	return d
}

// SetShowCallback sets the sink invoked when a deferred intervention is due.
func (d *Detector) SetShowCallback(cb func(Pattern)) {
	d.onShow = cb
}

// RecordVisit notes an app-entry event. Returns quickly; persistence is
// best-effort.
func (d *Detector) RecordVisit() {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	d.pattern.VisitCount++
	if !d.pattern.LastVisitAt.IsZero() && now.Sub(d.pattern.LastVisitAt) < rapidReturnWindow {
		d.pattern.RapidReturnCount++
	}
	d.pattern.LastVisitAt = now
	d.save()
}

// AddTimeSpent accumulates foreground seconds into the pattern.
func (d *Detector) AddTimeSpent(seconds int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pattern.TotalTimeSpentSeconds += seconds
	d.save()
}

// IsLikelyDoomScrolling evaluates the detection rule against current state.
func (d *Detector) IsLikelyDoomScrolling() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.isLikelyLocked()
}

func (d *Detector) isLikelyLocked() bool {
	p := d.pattern
	if p.VisitCount >= minVisits && (p.RapidReturnCount >= minRapidReturns || p.VisitCount >= heavyVisits) {
		return true
	}
	return p.TotalTimeSpentSeconds > totalTimeThreshold
}

// ShouldIntervene reports whether a doom-scroll intervention may trigger now:
// the pattern is active, the hourly cooldown has passed, and the daily cap
// has room.
func (d *Detector) ShouldIntervene() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.isLikelyLocked() {
		return false
	}
	now := d.now()
	if !d.pattern.LastInterventionAt.IsZero() && now.Sub(d.pattern.LastInterventionAt) <= interventionCooldown {
		return false
	}
	d.rolloverDailyLocked(now)
	if d.pattern.DailyInterventionCount >= maxPerDay {
		return false
	}
	return !d.showing && d.pendingShowAt.IsZero()
}

// Trigger schedules the intervention, deferred a couple of seconds so it
// doesn't interrupt active navigation. The cooldown anchor is stamped
// immediately so a burst of triggers collapses to one.
func (d *Detector) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.showing || !d.pendingShowAt.IsZero() {
		return
	}
	now := d.now()
	d.pattern.LastInterventionAt = now
	d.pendingShowAt = now.Add(displayDelay)
	d.save()
	logging.Info("doomscroll", "intervention scheduled (visits=%d rapid=%d total=%ds)",
		d.pattern.VisitCount, d.pattern.RapidReturnCount, d.pattern.TotalTimeSpentSeconds)
}

// Tick advances deferred display. The host calls this from its timer loop;
// when a scheduled intervention comes due the show callback fires once.
func (d *Detector) Tick() {
	d.mu.Lock()
	if d.pendingShowAt.IsZero() || d.now().Before(d.pendingShowAt) {
		d.mu.Unlock()
		return
	}
	d.pendingShowAt = time.Time{}
	d.showing = true
	pattern := d.pattern
	cb := d.onShow
	d.mu.Unlock()

	if cb != nil {
		cb(pattern)
	}
}

// Dismiss resolves the shown intervention: counts it against the daily cap,
// stamps the date, and resets the cooldown anchor.
func (d *Detector) Dismiss() {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	today := dateString(now)
	if d.pattern.LastInterventionDate == today {
		d.pattern.DailyInterventionCount++
	} else {
		d.pattern.DailyInterventionCount = 1
	}
	d.pattern.LastInterventionDate = today
	d.pattern.LastInterventionAt = now
	d.showing = false
	d.pendingShowAt = time.Time{}
	d.save()
}

// Reset clears the whole pattern, keeping the reset timestamp.
func (d *Detector) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.resetLocked()
	d.save()
}

func (d *Detector) resetLocked() {
	now := d.now()
	d.pattern = Pattern{
		LastInterventionDate: dateString(now),
		LastResetAt:          now,
	}
	d.showing = false
	d.pendingShowAt = time.Time{}
}

// Snapshot returns a copy of the current pattern.
func (d *Detector) Snapshot() Pattern {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pattern
}

func (d *Detector) rolloverDailyLocked(now time.Time) {
	if d.pattern.LastInterventionDate != dateString(now) {
		d.pattern.DailyInterventionCount = 0
	}
}

func dateString(t time.Time) string {
	return t.Format("2006-01-02")
}

// Persistence

func (d *Detector) load() {
	data, err := os.ReadFile(d.path)
	if err != nil {
		// First run or unreadable file: fresh pattern.
		d.resetLocked()
		return
	}
	var p Pattern
	if err := json.Unmarshal(data, &p); err != nil {
		logging.Warn("doomscroll", "corrupt state file, resetting: %v", err)
		d.resetLocked()
		return
	}
	d.pattern = p

	now := d.now()
	if d.pattern.LastResetAt.IsZero() || now.Sub(d.pattern.LastResetAt) > autoResetEvery {
		logging.Info("doomscroll", "daily auto-reset")
		d.resetLocked()
		d.save()
		return
	}
	d.rolloverDailyLocked(now)
}

func (d *Detector) save() {
	data, err := json.MarshalIndent(d.pattern, "", "  ")
	if err != nil {
		return
	}
	if err := os.MkdirAll(filepath.Dir(d.path), 0755); err != nil {
		return
	}
	if err := os.WriteFile(d.path, data, 0644); err != nil {
		logging.Warn("doomscroll", "failed to persist pattern: %v", err)
	}
}
