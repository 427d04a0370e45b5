package history

import (
	"testing"
	"time"

	"github.com/madhurim15/flow-shift-companion-sub000/internal/psych"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSessionRoundTrip(t *testing.T) {
	store := openTestStore(t)

	started := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	rec := SessionRecord{
		AppID:           "com.instagram.android",
		AppName:         "Instagram",
		Category:        psych.CategorySocial,
		State:           psych.SeekingStimulation,
		StartedAt:       started,
		EndedAt:         started.Add(20 * time.Minute),
		DurationSeconds: 1200,
	}
	if err := store.AppendSession(rec); err != nil {
		t.Fatal(err)
	}

	got, err := store.SessionsSince(started.Add(-time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d sessions, want 1", len(got))
	}
	s := got[0]
	if s.AppID != rec.AppID || s.AppName != rec.AppName {
		t.Errorf("identity mismatch: %+v", s)
	}
	if s.Category != psych.CategorySocial || s.State != psych.SeekingStimulation {
		t.Errorf("category/state mismatch: %q %q", s.Category, s.State)
	}
	if s.DurationSeconds != 1200 {
		t.Errorf("duration = %d, want 1200", s.DurationSeconds)
	}
	if !s.StartedAt.Equal(started) {
		t.Errorf("started_at = %v, want %v", s.StartedAt, started)
	}
}

func TestSessionsSinceCutoffAndOrder(t *testing.T) {
	store := openTestStore(t)
	base := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

	for i, appID := range []string{"app.old", "app.mid", "app.new"} {
		started := base.Add(time.Duration(i) * time.Hour)
		if err := store.AppendSession(SessionRecord{
			AppID:     appID,
			StartedAt: started,
			EndedAt:   started.Add(time.Minute),
		}); err != nil {
			t.Fatal(err)
		}
	}

	got, err := store.SessionsSince(base.Add(30 * time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d sessions, want 2", len(got))
	}
	if got[0].AppID != "app.new" || got[1].AppID != "app.mid" {
		t.Errorf("order = [%s, %s], want newest first", got[0].AppID, got[1].AppID)
	}
}

func TestInterventionRecordAndResponse(t *testing.T) {
	store := openTestStore(t)
	created := time.Date(2026, 3, 10, 21, 30, 0, 0, time.UTC)

	rec := InterventionRecord{
		ID:        "iv-1",
		AppID:     "com.zhiliaoapp.musically",
		State:     psych.Avoidance,
		Level:     3,
		Title:     "Still scrolling?",
		Message:   "Your feed will be here tomorrow.",
		CreatedAt: created,
	}
	if err := store.RecordIntervention(rec); err != nil {
		t.Fatal(err)
	}

	got, err := store.InterventionsSince(created.Add(-time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d interventions, want 1", len(got))
	}
	if got[0].Response != "" || got[0].AlternativeID != "" {
		t.Errorf("fresh intervention should have no response: %+v", got[0])
	}
	if got[0].Level != 3 || got[0].State != psych.Avoidance {
		t.Errorf("level/state mismatch: %+v", got[0])
	}

	if err := store.RecordResponse("iv-1", "accepted", "breathing"); err != nil {
		t.Fatal(err)
	}
	got, _ = store.InterventionsSince(created.Add(-time.Minute))
	if got[0].Response != "accepted" || got[0].AlternativeID != "breathing" {
		t.Errorf("response not recorded: %+v", got[0])
	}
}

func TestPatternCounters(t *testing.T) {
	store := openTestStore(t)
	at := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	if err := store.UpsertPatternDetection("rapid_switching", at); err != nil {
		t.Fatal(err)
	}
	if err := store.UpsertPatternDetection("rapid_switching", at.Add(time.Hour)); err != nil {
		t.Fatal(err)
	}
	if err := store.UpsertPatternDetection("late_night_usage", at); err != nil {
		t.Fatal(err)
	}
	if err := store.MarkPatternSuccess("rapid_switching"); err != nil {
		t.Fatal(err)
	}
	// Crediting an unseen pattern touches no rows.
	if err := store.MarkPatternSuccess("impulse_shopping"); err != nil {
		t.Fatal(err)
	}

	stats, err := store.PatternStats()
	if err != nil {
		t.Fatal(err)
	}
	if len(stats) != 2 {
		t.Fatalf("got %d stats, want 2", len(stats))
	}

	byType := make(map[string]PatternStat)
	for _, st := range stats {
		byType[st.PatternType] = st
	}
	rs := byType["rapid_switching"]
	if rs.DetectedFrequency != 2 || rs.SuccessfulInterventions != 1 {
		t.Errorf("rapid_switching = %+v, want freq 2, successes 1", rs)
	}
	if !rs.LastDetectedAt.Equal(at.Add(time.Hour)) {
		t.Errorf("last_detected_at = %v, want most recent detection", rs.LastDetectedAt)
	}
	ln := byType["late_night_usage"]
	if ln.DetectedFrequency != 1 || ln.SuccessfulInterventions != 0 {
		t.Errorf("late_night_usage = %+v, want freq 1, successes 0", ln)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.AppendSession(SessionRecord{
		AppID:     "app.x",
		StartedAt: time.Now(),
		EndedAt:   time.Now(),
	}); err != nil {
		t.Fatal(err)
	}
	store.Close()

	// Reopening the same path migrates cleanly and keeps the data.
	store, err = Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	got, err := store.SessionsSince(time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Errorf("got %d sessions after reopen, want 1", len(got))
	}
}
