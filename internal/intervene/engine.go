// Package intervene is the live intervention loop: it owns the current
// foreground session, walks it up the escalation ladder as dwell time crosses
// catalog thresholds, gates every step behind the cooldown policy, and adapts
// to how the user answers each nudge.
package intervene

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/madhurim15/flow-shift-companion-sub000/internal/activity"
	"github.com/madhurim15/flow-shift-companion-sub000/internal/catalog"
	"github.com/madhurim15/flow-shift-companion-sub000/internal/history"
	"github.com/madhurim15/flow-shift-companion-sub000/internal/logging"
	"github.com/madhurim15/flow-shift-companion-sub000/internal/psych"
)

// Engine runs the per-session escalation ladder. All methods are safe for
// concurrent use; everything inside is synchronous, so the host can drive it
// from an event loop without fake timers.
type Engine struct {
	mu      sync.Mutex
	catalog *catalog.Catalog

	session *Session
	showing *Intervention

	// heldLevel is the highest candidate level already logged as suppressed,
	// so a 1 Hz duration feed doesn't flood the event log while cooldown runs.
	heldLevel int

	now func() time.Time

	onIntervene func(Intervention)
	store       *history.Store
	events      *activity.Log
}

// New creates an engine over the given threshold catalog.
func New(cat *catalog.Catalog) *Engine {
	return &Engine{
		catalog: cat,
		now:     time.Now,
	}
}

// SetInterventionCallback sets the sink that renders interventions.
func (e *Engine) SetInterventionCallback(cb func(Intervention)) {
	e.onIntervene = cb
}

// SetHistory attaches the persistent store. Writes are best-effort: failures
// are logged and never stall the engine.
func (e *Engine) SetHistory(s *history.Store) {
	e.store = s
}

// SetEventLog attaches the engine event log.
func (e *Engine) SetEventLog(l *activity.Log) {
	e.events = l
}

// Cooldown returns the minimum gap between interventions for a session with
// the given dismissal count. Dismissals shrink the gap from 5 minutes toward
// a 1 minute floor: a user who keeps swiping nudges away hears from us more
// often, not less.
func Cooldown(dismissalCount int) time.Duration {
	cd := 5 * time.Minute / time.Duration(dismissalCount+1)
	if cd < time.Minute {
		return time.Minute
	}
	return cd
}

// StartSession opens a session for the app entering foreground. No-op if a
// session for a different app is already open; the caller must end that one
// first.
func (e *Engine) StartSession(appID, appName string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session != nil && e.session.AppID != appID {
		logging.Debug("intervene", "ignoring start for %s: session open for %s", appID, e.session.AppID)
		return
	}
	if e.session != nil {
		// Same app reported again; keep the existing session.
		return
	}

	profile := e.catalog.Lookup(appID)
	if appName == "" {
		appName = profile.AppName
	}
	if appName == "" {
		appName = appID
	}

	e.session = &Session{
		AppID:     appID,
		AppName:   appName,
		StartedAt: e.now(),
		State:     profile.DefaultState,
	}
	e.heldLevel = 0

	logging.Info("intervene", "session started: %s (%s)", appName, appID)
	e.logEvent(func(l *activity.Log) error {
		return l.LogSessionStart(appID, appName, string(profile.DefaultState))
	})
}

// UpdateDuration feeds the latest foreground dwell for an app. Samples for
// any app other than the open session are stale and dropped silently. When
// the dwell crosses a new threshold the cooldown policy decides whether the
// nudge fires now or waits; a suppressed level keeps re-evaluating on every
// later sample, so it fires as soon as cooldown clears without needing the
// dwell to reach yet another threshold.
func (e *Engine) UpdateDuration(appID string, elapsedSeconds int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session == nil || e.session.AppID != appID {
		return
	}

	if elapsedSeconds > e.session.ElapsedSeconds {
		e.session.ElapsedSeconds = elapsedSeconds
	}

	profile := e.catalog.Lookup(appID)
	candidate := profile.LevelFor(e.session.ElapsedSeconds)
	if candidate <= e.session.CurrentLevel {
		return
	}

	// Only one intervention may be showing; concurrent candidates are
	// dropped, not queued.
	if e.showing != nil {
		return
	}

	now := e.now()
	if last := e.session.LastInterventionAt; !last.IsZero() {
		cooldown := Cooldown(e.session.DismissalCount)
		elapsed := now.Sub(last)
		if elapsed <= cooldown {
			if candidate > e.heldLevel {
				e.heldLevel = candidate
				logging.Debug("intervene", "level %d held for %s (cooldown %s remaining)",
					candidate, appID, cooldown-elapsed)
				e.logEvent(func(l *activity.Log) error {
					return l.LogNudgeHeld(appID, candidate, cooldown-elapsed)
				})
			}
			return
		}
	}

	e.fire(candidate, now)
}

// fire advances the session to level and emits the intervention.
// Caller holds e.mu.
func (e *Engine) fire(level int, now time.Time) {
	s := e.session

	// Re-classify at fire time so hour of day and dwell length shape the
	// message table, not just the catalog default.
	s.State = psych.Classify(s.AppID, s.ElapsedSeconds, now.Hour())
	s.CurrentLevel = level
	s.LastInterventionAt = now
	e.heldLevel = 0

	iv := SelectMessage(s.State, level, s.DismissalCount, now.Hour(), s.AppName)
	iv.ID = uuid.New().String()
	iv.AppID = s.AppID
	iv.AppName = s.AppName
	e.showing = &iv

	logging.Info("intervene", "level %d nudge for %s: %s", level, s.AppName, logging.Truncate(iv.Message, 80))
	e.logEvent(func(l *activity.Log) error {
		return l.LogNudgeFired(s.AppID, string(s.State), level, iv.Title)
	})
	if e.store != nil {
		if err := e.store.RecordIntervention(history.InterventionRecord{
			ID:        iv.ID,
			AppID:     s.AppID,
			State:     s.State,
			Level:     level,
			Title:     iv.Title,
			Message:   iv.Message,
			CreatedAt: now,
		}); err != nil {
			logging.Warn("intervene", "failed to record intervention: %v", err)
		}
	}

	if e.onIntervene != nil {
		e.onIntervene(iv)
	}
}

// Respond resolves the currently showing intervention. Never fails: unknown
// alternative ids are accepted as-is, and a response with nothing showing is
// treated as stale and dropped.
func (e *Engine) Respond(response Response, alternativeID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session == nil || e.showing == nil {
		logging.Debug("intervene", "dropping stale response: %s", response)
		return
	}

	shown := e.showing
	e.showing = nil
	s := e.session
	now := e.now()

	switch response {
	case ResponseDismissed:
		s.DismissalCount++
		logging.Info("intervene", "nudge dismissed (%d so far)", s.DismissalCount)
	case ResponseSnoozed:
		s.LastInterventionAt = now.Add(snoozeDelay)
		logging.Info("intervene", "nudges snoozed for %s", snoozeDelay)
	case ResponseAccepted:
		if s.DismissalCount > 0 {
			s.DismissalCount--
		}
		s.LastInterventionAt = now.Add(acceptDelay)
		logging.Info("intervene", "alternative accepted: %s", alternativeID)
	default:
		logging.Warn("intervene", "unknown response %q, clearing intervention", response)
	}

	e.logEvent(func(l *activity.Log) error {
		return l.LogResponse(s.AppID, string(response), alternativeID)
	})
	if e.store != nil {
		if err := e.store.RecordResponse(shown.ID, string(response), alternativeID); err != nil {
			logging.Warn("intervene", "failed to record response: %v", err)
		}
	}
}

// EndSession discards the session for an app leaving foreground. Idempotent;
// a mismatched app id is a stale event and ignored. The completed session is
// appended to history best-effort.
func (e *Engine) EndSession(appID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session == nil || e.session.AppID != appID {
		return
	}

	s := e.session
	e.session = nil
	e.showing = nil
	e.heldLevel = 0

	logging.Info("intervene", "session ended: %s (%ds)", s.AppName, s.ElapsedSeconds)
	e.logEvent(func(l *activity.Log) error {
		return l.LogSessionEnd(s.AppID, s.ElapsedSeconds)
	})
	if e.store != nil {
		if err := e.store.AppendSession(history.SessionRecord{
			AppID:           s.AppID,
			AppName:         s.AppName,
			Category:        psych.Categorize(s.AppID),
			State:           s.State,
			StartedAt:       s.StartedAt,
			EndedAt:         e.now(),
			DurationSeconds: s.ElapsedSeconds,
		}); err != nil {
			logging.Warn("intervene", "failed to append session: %v", err)
		}
	}
}

// Showing returns a copy of the currently displayed intervention, if any.
func (e *Engine) Showing() *Intervention {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.showing == nil {
		return nil
	}
	iv := *e.showing
	return &iv
}

// Snapshot returns a copy of the open session, if any, for inspection.
func (e *Engine) Snapshot() *Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return nil
	}
	s := *e.session
	return &s
}

func (e *Engine) logEvent(fn func(*activity.Log) error) {
	if e.events == nil {
		return
	}
	if err := fn(e.events); err != nil {
		logging.Debug("intervene", "event log write failed: %v", err)
	}
}
