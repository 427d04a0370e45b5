package patterns

import (
	"sync"
	"time"

	"github.com/madhurim15/flow-shift-companion-sub000/internal/activity"
	"github.com/madhurim15/flow-shift-companion-sub000/internal/history"
	"github.com/madhurim15/flow-shift-companion-sub000/internal/logging"
)

// Detector periodically scans the session history and maintains persisted
// pattern counters. It never gates the live loop; a store failure degrades to
// a no-op scan.
type Detector struct {
	mu     sync.Mutex
	store  *history.Store
	events *activity.Log

	lastDetected Type // credited when a later intervention is accepted
	now          func() time.Time
}

// NewDetector creates a detector over the history store. events may be nil.
func NewDetector(store *history.Store, events *activity.Log) *Detector {
	return &Detector{
		store:  store,
		events: events,
		now:    time.Now,
	}
}

// Scan classifies recent history and bumps the detected pattern's counter.
// Returns the detected pattern, if any.
func (d *Detector) Scan() (Type, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	records, err := d.store.SessionsSince(now.Add(-window))
	if err != nil {
		logging.Warn("patterns", "history read failed, skipping scan: %v", err)
		return "", false
	}

	pattern, ok := Detect(records, now)
	if !ok {
		return "", false
	}

	d.lastDetected = pattern
	if err := d.store.UpsertPatternDetection(string(pattern), now); err != nil {
		logging.Warn("patterns", "failed to persist detection: %v", err)
	}
	if d.events != nil {
		if err := d.events.LogPattern(string(pattern)); err != nil {
			logging.Debug("patterns", "event log write failed: %v", err)
		}
	}
	logging.Info("patterns", "detected: %s", pattern)
	return pattern, true
}

// RecordSuccess credits the most recently detected pattern with an accepted
// intervention. No-op if nothing has been detected yet.
func (d *Detector) RecordSuccess() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.lastDetected == "" {
		return
	}
	if err := d.store.MarkPatternSuccess(string(d.lastDetected)); err != nil {
		logging.Warn("patterns", "failed to credit %s: %v", d.lastDetected, err)
	}
}
