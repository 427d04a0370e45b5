package doomscroll

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestDetector(t *testing.T, clock *fakeClock) *Detector {
	t.Helper()
	d := &Detector{
		path: filepath.Join(t.TempDir(), "system", "doomscroll.json"),
		now:  clock.now,
	}
	d.load()
	return d
}

func reload(d *Detector, clock *fakeClock) *Detector {
	nd := &Detector{path: d.path, now: clock.now}
	nd.load()
	return nd
}

func TestRapidReturnCounting(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)}
	d := newTestDetector(t, clock)

	d.RecordVisit()
	clock.advance(2 * time.Minute)
	d.RecordVisit() // within 3 minutes: rapid
	clock.advance(10 * time.Minute)
	d.RecordVisit() // not rapid

	p := d.Snapshot()
	if p.VisitCount != 3 {
		t.Errorf("visits = %d, want 3", p.VisitCount)
	}
	if p.RapidReturnCount != 1 {
		t.Errorf("rapid returns = %d, want 1", p.RapidReturnCount)
	}
}

func TestDetectionRule(t *testing.T) {
	tests := []struct {
		name    string
		pattern Pattern
		want    bool
	}{
		{"fresh", Pattern{}, false},
		{"few visits", Pattern{VisitCount: 3, RapidReturnCount: 3}, false},
		{"visits with rapid returns", Pattern{VisitCount: 4, RapidReturnCount: 2}, true},
		{"visits without rapid returns", Pattern{VisitCount: 4, RapidReturnCount: 1}, false},
		{"heavy visits alone", Pattern{VisitCount: 6}, true},
		{"time threshold", Pattern{TotalTimeSpentSeconds: 901}, true},
		{"time at boundary", Pattern{TotalTimeSpentSeconds: 900}, false},
	}
	clock := &fakeClock{t: time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDetector(t, clock)
			d.pattern = tt.pattern
			if got := d.IsLikelyDoomScrolling(); got != tt.want {
				t.Errorf("IsLikelyDoomScrolling = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDeferredDisplay(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)}
	d := newTestDetector(t, clock)

	shown := 0
	d.SetShowCallback(func(Pattern) { shown++ })

	d.pattern.VisitCount = 6
	if !d.ShouldIntervene() {
		t.Fatal("expected intervention to be allowed")
	}
	d.Trigger()

	d.Tick() // 0s elapsed: still deferred
	if shown != 0 {
		t.Fatal("intervention shown before the display delay")
	}

	clock.advance(2 * time.Second)
	d.Tick()
	if shown != 1 {
		t.Fatalf("shown = %d, want 1", shown)
	}

	// Ticking again must not re-show.
	d.Tick()
	if shown != 1 {
		t.Fatalf("shown = %d after extra tick, want 1", shown)
	}
}

func TestDailyCap(t *testing.T) {
	// Scenario C: once 4 interventions have been dismissed on one calendar
	// day, no further doom-scroll nudge fires that day no matter how strong
	// the pattern is.
	clock := &fakeClock{t: time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)}
	d := newTestDetector(t, clock)
	d.SetShowCallback(func(Pattern) {})

	d.pattern.VisitCount = 10
	d.pattern.RapidReturnCount = 5
	d.pattern.TotalTimeSpentSeconds = 5000

	for i := 0; i < 4; i++ {
		if !d.ShouldIntervene() {
			t.Fatalf("intervention %d should be allowed", i+1)
		}
		d.Trigger()
		clock.advance(2 * time.Second)
		d.Tick()
		d.Dismiss()
		clock.advance(65 * time.Minute) // clear the hourly cooldown
	}

	if d.Snapshot().DailyInterventionCount != 4 {
		t.Fatalf("daily count = %d, want 4", d.Snapshot().DailyInterventionCount)
	}
	if d.ShouldIntervene() {
		t.Fatal("5th intervention allowed despite the daily cap")
	}
}

func TestDailyCapResetsNextDay(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 10, 22, 0, 0, 0, time.UTC)}
	d := newTestDetector(t, clock)

	d.pattern.VisitCount = 10
	d.pattern.RapidReturnCount = 5
	d.pattern.DailyInterventionCount = 4
	d.pattern.LastInterventionDate = "2026-03-10"
	d.pattern.LastInterventionAt = clock.t.Add(-2 * time.Hour)

	if d.ShouldIntervene() {
		t.Fatal("capped day should block interventions")
	}

	clock.advance(4 * time.Hour) // 02:00 next day
	if !d.ShouldIntervene() {
		t.Fatal("new calendar day should reset the daily count")
	}
}

func TestHourlyCooldown(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)}
	d := newTestDetector(t, clock)

	d.pattern.VisitCount = 10
	d.pattern.RapidReturnCount = 5
	d.pattern.LastInterventionAt = clock.t.Add(-30 * time.Minute)

	if d.ShouldIntervene() {
		t.Fatal("intervention allowed inside the hourly cooldown")
	}

	clock.advance(31 * time.Minute)
	if !d.ShouldIntervene() {
		t.Fatal("intervention blocked after the cooldown passed")
	}
}

func TestDismissStampsPattern(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)}
	d := newTestDetector(t, clock)

	d.Dismiss()
	p := d.Snapshot()
	if p.DailyInterventionCount != 1 {
		t.Errorf("daily count = %d, want 1", p.DailyInterventionCount)
	}
	if p.LastInterventionDate != "2026-03-10" {
		t.Errorf("date = %s, want 2026-03-10", p.LastInterventionDate)
	}
	if !p.LastInterventionAt.Equal(clock.t) {
		t.Errorf("anchor = %s, want %s", p.LastInterventionAt, clock.t)
	}
}

func TestPersistenceRoundTrip(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)}
	d := newTestDetector(t, clock)

	d.RecordVisit()
	clock.advance(time.Minute)
	d.RecordVisit()
	d.AddTimeSpent(120)

	nd := reload(d, clock)
	p := nd.Snapshot()
	if p.VisitCount != 2 || p.RapidReturnCount != 1 || p.TotalTimeSpentSeconds != 120 {
		t.Errorf("reloaded pattern = %+v", p)
	}
}

func TestAutoResetAfter24Hours(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)}
	d := newTestDetector(t, clock)

	d.RecordVisit()
	d.AddTimeSpent(500)

	clock.advance(25 * time.Hour)
	nd := reload(d, clock)
	p := nd.Snapshot()
	if p.VisitCount != 0 || p.TotalTimeSpentSeconds != 0 {
		t.Errorf("pattern should auto-reset after 24h, got %+v", p)
	}
	if !p.LastResetAt.Equal(clock.t) {
		t.Errorf("reset timestamp = %s, want %s", p.LastResetAt, clock.t)
	}
}

func TestCorruptStateFileResets(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)}
	d := newTestDetector(t, clock)
	d.RecordVisit() // creates the file and its directory

	if err := os.WriteFile(d.path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	nd := reload(d, clock)
	if nd.Snapshot().VisitCount != 0 {
		t.Error("corrupt state should reset to a fresh pattern")
	}
}
