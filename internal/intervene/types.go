package intervene

import (
	"time"

	"github.com/madhurim15/flow-shift-companion-sub000/internal/psych"
)

// Session is the live state of the app currently in foreground. Owned
// exclusively by the Engine; at most one session is open at a time.
type Session struct {
	AppID   string
	AppName string

	StartedAt      time.Time
	ElapsedSeconds int // only ratchets upward while the session is open

	DismissalCount     int
	LastInterventionAt time.Time // zero = never
	CurrentLevel       int       // 0..len(thresholds), never decreases
	State              psych.State
}

// Alternative is one action offered instead of continued scrolling.
type Alternative struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Duration    string `json:"duration"`
}

// Intervention is the UI-facing nudge value. Ephemeral: recomputed each time
// a level fires, never persisted as-is.
type Intervention struct {
	ID           string        `json:"id"`
	AppID        string        `json:"app_id"`
	AppName      string        `json:"app_name"`
	Level        int           `json:"level"`
	State        psych.State   `json:"state"`
	Title        string        `json:"title"`
	Message      string        `json:"message"`
	Alternatives []Alternative `json:"alternatives"`
}

// Response is the user's resolution of a shown intervention.
type Response string

const (
	ResponseDismissed Response = "dismissed"
	ResponseSnoozed   Response = "snoozed"
	ResponseAccepted  Response = "accepted"
)

// Cooldown anchors pushed into the future by snooze/accept responses.
const (
	snoozeDelay = 5 * time.Minute
	acceptDelay = 15 * time.Minute
)
