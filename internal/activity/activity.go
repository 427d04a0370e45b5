package activity

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Type identifies what kind of engine event this is
type Type string

const (
	TypeSessionStart Type = "session_start" // Foreground session opened
	TypeSessionEnd   Type = "session_end"   // Foreground session closed
	TypeNudgeFired   Type = "nudge_fired"   // Intervention shown to the user
	TypeNudgeHeld    Type = "nudge_held"    // Candidate level suppressed by cooldown
	TypeResponse     Type = "response"      // User resolved an intervention
	TypePattern      Type = "pattern"       // Behavioral pattern detected
	TypeError        Type = "error"         // Something went wrong
)

// Entry represents a single engine event
type Entry struct {
	Timestamp time.Time      `json:"ts"`
	Type      Type           `json:"type"`
	Summary   string         `json:"summary"`
	AppID     string         `json:"app_id,omitempty"`
	Level     int            `json:"level,omitempty"`
	State     string         `json:"state,omitempty"`
	Response  string         `json:"response,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

// Log is the engine event logger, an append-only JSONL file
type Log struct {
	path string
	mu   sync.Mutex
}

// New creates an engine event logger under the state directory
func New(statePath string) *Log {
	return &Log{
		path: filepath.Join(statePath, "system", "engine.jsonl"),
	}
}

// Log appends an entry to the event log
func (l *Log) Log(entry Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return err
	}
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	_, err = f.Write(append(data, '\n'))
	return err
}

// Helper methods for common event types

// LogSessionStart logs a foreground session opening
func (l *Log) LogSessionStart(appID, appName, state string) error {
	return l.Log(Entry{
		Type:    TypeSessionStart,
		Summary: "session started: " + appName,
		AppID:   appID,
		State:   state,
	})
}

// LogSessionEnd logs a foreground session closing
func (l *Log) LogSessionEnd(appID string, durationSeconds int) error {
	return l.Log(Entry{
		Type:    TypeSessionEnd,
		Summary: "session ended",
		AppID:   appID,
		Data: map[string]any{
			"duration_seconds": durationSeconds,
		},
	})
}

// LogNudgeFired logs an intervention being shown
func (l *Log) LogNudgeFired(appID, state string, level int, title string) error {
	return l.Log(Entry{
		Type:    TypeNudgeFired,
		Summary: "nudge fired: " + title,
		AppID:   appID,
		Level:   level,
		State:   state,
	})
}

// LogNudgeHeld logs a candidate level transition suppressed by cooldown
func (l *Log) LogNudgeHeld(appID string, level int, remaining time.Duration) error {
	return l.Log(Entry{
		Type:    TypeNudgeHeld,
		Summary: "nudge held by cooldown",
		AppID:   appID,
		Level:   level,
		Data: map[string]any{
			"cooldown_remaining_sec": remaining.Seconds(),
		},
	})
}

// LogResponse logs the user resolving an intervention
func (l *Log) LogResponse(appID, response, alternativeID string) error {
	return l.Log(Entry{
		Type:     TypeResponse,
		Summary:  "response: " + response,
		AppID:    appID,
		Response: response,
		Data: map[string]any{
			"alternative_id": alternativeID,
		},
	})
}

// LogPattern logs a detected behavioral pattern
func (l *Log) LogPattern(patternType string) error {
	return l.Log(Entry{
		Type:    TypePattern,
		Summary: "pattern detected: " + patternType,
		Data: map[string]any{
			"pattern_type": patternType,
		},
	})
}

// LogError logs an error
func (l *Log) LogError(summary string, err error) error {
	return l.Log(Entry{
		Type:    TypeError,
		Summary: summary,
		Data: map[string]any{
			"error": err.Error(),
		},
	})
}

// Query methods

// Recent returns the last n entries
func (l *Log) Recent(n int) ([]Entry, error) {
	entries, err := l.readAll()
	if err != nil {
		return nil, err
	}

	if n >= len(entries) {
		return entries, nil
	}
	return entries[len(entries)-n:], nil
}

// Today returns entries from today
func (l *Log) Today() ([]Entry, error) {
	entries, err := l.readAll()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var result []Entry
	for _, e := range entries {
		if !e.Timestamp.Before(today) {
			result = append(result, e)
		}
	}
	return result, nil
}

// ByType returns the most recent entries of a specific type
func (l *Log) ByType(t Type, limit int) ([]Entry, error) {
	entries, err := l.readAll()
	if err != nil {
		return nil, err
	}

	var result []Entry
	for i := len(entries) - 1; i >= 0 && len(result) < limit; i-- {
		if entries[i].Type == t {
			result = append(result, entries[i])
		}
	}
	return result, nil
}

// ByApp returns the most recent entries for a specific app
func (l *Log) ByApp(appID string, limit int) ([]Entry, error) {
	entries, err := l.readAll()
	if err != nil {
		return nil, err
	}

	var result []Entry
	for i := len(entries) - 1; i >= 0 && len(result) < limit; i-- {
		if entries[i].AppID == appID {
			result = append(result, entries[i])
		}
	}
	return result, nil
}

// readAll reads all entries from the log file
func (l *Log) readAll() ([]Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var entries []Entry
	lines := strings.Split(string(data), "\n")
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var entry Entry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			continue // skip malformed entries
		}
		entries = append(entries, entry)
	}

	return entries, nil
}
