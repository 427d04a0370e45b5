// Package patterns classifies recurring behavior over completed sessions:
// rapid app switching, endless scrolling, late-night use, and impulse
// shopping. It runs off the history store, outside the live nudge loop, and
// keeps running counts per pattern type.
package patterns

import (
	"time"

	"github.com/madhurim15/flow-shift-companion-sub000/internal/history"
	"github.com/madhurim15/flow-shift-companion-sub000/internal/psych"
)

// Type is a recognized behavioral pattern.
type Type string

const (
	RapidSwitching   Type = "rapid_switching"
	EndlessScrolling Type = "endless_scrolling"
	LateNightUsage   Type = "late_night_usage"
	ImpulseShopping  Type = "impulse_shopping"
)

// Detection rule constants.
const (
	window           = 24 * time.Hour
	switchingWindow  = 30 * time.Minute
	switchingApps    = 3
	scrollingSeconds = 45 * 60
	lateNightStart   = 23
	lateNightEnd     = 6
	shoppingSessions = 2
)

// Detect classifies the most significant pattern in the given sessions, or
// returns false if none match. Rules are checked in priority order over a
// 24-hour window ending at now.
func Detect(records []history.SessionRecord, now time.Time) (Type, bool) {
	if len(records) == 0 {
		return "", false
	}

	cutoff := now.Add(-window)
	var recent []history.SessionRecord
	for _, rec := range records {
		if rec.StartedAt.After(cutoff) {
			recent = append(recent, rec)
		}
	}

	// Rapid switching: several distinct apps inside half an hour.
	switchCutoff := now.Add(-switchingWindow)
	apps := make(map[string]struct{})
	for _, rec := range recent {
		if rec.StartedAt.After(switchCutoff) {
			apps[rec.AppID] = struct{}{}
		}
	}
	if len(apps) >= switchingApps {
		return RapidSwitching, true
	}

	// Endless scrolling: one long dwell in a feed-shaped app.
	for _, rec := range recent {
		if rec.DurationSeconds > scrollingSeconds &&
			(rec.Category == psych.CategorySocial || rec.Category == psych.CategoryEntertainment) {
			return EndlessScrolling, true
		}
	}

	// Late night: any session starting in the small hours.
	for _, rec := range recent {
		hour := rec.StartedAt.Hour()
		if hour >= lateNightStart || hour < lateNightEnd {
			return LateNightUsage, true
		}
	}

	// Impulse shopping: repeated shopping sessions.
	shopping := 0
	for _, rec := range recent {
		if rec.Category == psych.CategoryShopping {
			shopping++
		}
	}
	if shopping >= shoppingSessions {
		return ImpulseShopping, true
	}

	return "", false
}
