// Package history is the persistent record behind the engine: an append-only
// log of completed app sessions, the interventions that fired, and running
// counts for detected behavioral patterns. Writes are best-effort from the
// engine's point of view; callers log failures and keep going.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/madhurim15/flow-shift-companion-sub000/internal/psych"
)

// SessionRecord is one completed foreground dwell.
type SessionRecord struct {
	ID              int64
	AppID           string
	AppName         string
	Category        psych.Category
	State           psych.State
	StartedAt       time.Time
	EndedAt         time.Time
	DurationSeconds int
}

// InterventionRecord is one fired nudge and, eventually, the user's response.
type InterventionRecord struct {
	ID            string
	AppID         string
	State         psych.State
	Level         int
	Title         string
	Message       string
	Response      string // empty until the user responds
	AlternativeID string
	CreatedAt     time.Time
}

// PatternStat is the running counter for one behavioral pattern type.
type PatternStat struct {
	PatternType             string
	DetectedFrequency       int
	LastDetectedAt          time.Time
	SuccessfulInterventions int
}

// Store wraps the SQLite database holding historical records.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the history database under statePath.
func Open(statePath string) (*Store, error) {
	dbPath := filepath.Join(statePath, "system", "history.db")

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set journal mode: %w", err)
	}

	s := &Store{db: db, path: dbPath}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			app_id TEXT NOT NULL,
			app_name TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL DEFAULT 'other',
			state TEXT NOT NULL DEFAULT '',
			started_at TIMESTAMP NOT NULL,
			ended_at TIMESTAMP NOT NULL,
			duration_seconds INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_started ON sessions(started_at)`,
		`CREATE TABLE IF NOT EXISTS interventions (
			id TEXT PRIMARY KEY,
			app_id TEXT NOT NULL,
			state TEXT NOT NULL,
			level INTEGER NOT NULL,
			title TEXT NOT NULL,
			message TEXT NOT NULL,
			response TEXT NOT NULL DEFAULT '',
			alternative_id TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_interventions_created ON interventions(created_at)`,
		`CREATE TABLE IF NOT EXISTS behavioral_patterns (
			pattern_type TEXT PRIMARY KEY,
			detected_frequency INTEGER NOT NULL DEFAULT 0,
			last_detected_at TIMESTAMP,
			successful_interventions INTEGER NOT NULL DEFAULT 0
		)`,
	}
	for _, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// AppendSession records a completed session.
func (s *Store) AppendSession(rec SessionRecord) error {
	_, err := s.db.Exec(
		`INSERT INTO sessions (app_id, app_name, category, state, started_at, ended_at, duration_seconds)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.AppID, rec.AppName, string(rec.Category), string(rec.State),
		rec.StartedAt.UTC(), rec.EndedAt.UTC(), rec.DurationSeconds,
	)
	if err != nil {
		return fmt.Errorf("failed to append session: %w", err)
	}
	return nil
}

// SessionsSince returns completed sessions that started at or after cutoff,
// most recent first.
func (s *Store) SessionsSince(cutoff time.Time) ([]SessionRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, app_id, app_name, category, state, started_at, ended_at, duration_seconds
		 FROM sessions WHERE started_at >= ? ORDER BY started_at DESC`,
		cutoff.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var records []SessionRecord
	for rows.Next() {
		var rec SessionRecord
		var category, state string
		if err := rows.Scan(&rec.ID, &rec.AppID, &rec.AppName, &category, &state,
			&rec.StartedAt, &rec.EndedAt, &rec.DurationSeconds); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		rec.Category = psych.Category(category)
		rec.State = psych.State(state)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// RecordIntervention logs a fired intervention.
func (s *Store) RecordIntervention(rec InterventionRecord) error {
	_, err := s.db.Exec(
		`INSERT INTO interventions (id, app_id, state, level, title, message, response, alternative_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.AppID, string(rec.State), rec.Level, rec.Title, rec.Message,
		rec.Response, rec.AlternativeID, rec.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to record intervention: %w", err)
	}
	return nil
}

// RecordResponse stamps the user's response onto a fired intervention.
func (s *Store) RecordResponse(interventionID, response, alternativeID string) error {
	_, err := s.db.Exec(
		`UPDATE interventions SET response = ?, alternative_id = ? WHERE id = ?`,
		response, alternativeID, interventionID,
	)
	if err != nil {
		return fmt.Errorf("failed to record response: %w", err)
	}
	return nil
}

// InterventionsSince returns interventions created at or after cutoff, most
// recent first.
func (s *Store) InterventionsSince(cutoff time.Time) ([]InterventionRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, app_id, state, level, title, message, response, alternative_id, created_at
		 FROM interventions WHERE created_at >= ? ORDER BY created_at DESC`,
		cutoff.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query interventions: %w", err)
	}
	defer rows.Close()

	var records []InterventionRecord
	for rows.Next() {
		var rec InterventionRecord
		var state string
		if err := rows.Scan(&rec.ID, &rec.AppID, &state, &rec.Level, &rec.Title,
			&rec.Message, &rec.Response, &rec.AlternativeID, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan intervention: %w", err)
		}
		rec.State = psych.State(state)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// UpsertPatternDetection bumps the detection counter for a pattern type.
func (s *Store) UpsertPatternDetection(patternType string, detectedAt time.Time) error {
	_, err := s.db.Exec(
		`INSERT INTO behavioral_patterns (pattern_type, detected_frequency, last_detected_at, successful_interventions)
		 VALUES (?, 1, ?, 0)
		 ON CONFLICT(pattern_type) DO UPDATE SET
			detected_frequency = detected_frequency + 1,
			last_detected_at = excluded.last_detected_at`,
		patternType, detectedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert pattern: %w", err)
	}
	return nil
}

// MarkPatternSuccess credits a pattern type with an accepted intervention.
// No-op if the pattern has never been detected.
func (s *Store) MarkPatternSuccess(patternType string) error {
	_, err := s.db.Exec(
		`UPDATE behavioral_patterns SET successful_interventions = successful_interventions + 1
		 WHERE pattern_type = ?`,
		patternType,
	)
	if err != nil {
		return fmt.Errorf("failed to mark pattern success: %w", err)
	}
	return nil
}

// PatternStats returns all behavioral pattern counters.
func (s *Store) PatternStats() ([]PatternStat, error) {
	rows, err := s.db.Query(
		`SELECT pattern_type, detected_frequency, last_detected_at, successful_interventions
		 FROM behavioral_patterns ORDER BY pattern_type`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query patterns: %w", err)
	}
	defer rows.Close()

	var stats []PatternStat
	for rows.Next() {
		var st PatternStat
		var last sql.NullTime
		if err := rows.Scan(&st.PatternType, &st.DetectedFrequency, &last, &st.SuccessfulInterventions); err != nil {
			return nil, fmt.Errorf("failed to scan pattern: %w", err)
		}
		if last.Valid {
			st.LastDetectedAt = last.Time
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}
