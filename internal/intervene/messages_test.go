package intervene

import (
	"strings"
	"testing"

	"github.com/madhurim15/flow-shift-companion-sub000/internal/psych"
)

func TestSelectMessageIsTotal(t *testing.T) {
	states := []psych.State{
		psych.SeekingStimulation,
		psych.Avoidance,
		psych.EmotionalRegulation,
		psych.ImpulseDriven,
		psych.State("confused"), // unknown states fall back, never panic
	}
	levels := []int{0, 1, 2, 3, 4, 5, 99} // out-of-range levels clamp
	dismissals := []int{0, 1, 2, 3, 10, 1 << 20}
	hours := []int{2, 14, 23}

	for _, state := range states {
		for _, level := range levels {
			for _, d := range dismissals {
				for _, h := range hours {
					iv := SelectMessage(state, level, d, h, "AppX")
					if iv.Title == "" {
						t.Fatalf("empty title for (%s, %d, %d, %d)", state, level, d, h)
					}
					if iv.Message == "" {
						t.Fatalf("empty message for (%s, %d, %d, %d)", state, level, d, h)
					}
					if iv.Level < 1 || iv.Level > 4 {
						t.Fatalf("level %d not clamped to 1..4", iv.Level)
					}
					if len(iv.Alternatives) == 0 {
						t.Fatalf("no alternatives for (%s, %d)", state, level)
					}
				}
			}
		}
	}
}

func TestUnknownStateFallsBackToSeekingTable(t *testing.T) {
	unknown := SelectMessage(psych.State("confused"), 1, 0, 14, "AppX")
	seeking := SelectMessage(psych.SeekingStimulation, 1, 0, 14, "AppX")
	if unknown.Title != seeking.Title || unknown.Message != seeking.Message {
		t.Errorf("unknown state did not use the seeking_stimulation table: %q vs %q",
			unknown.Title, seeking.Title)
	}
}

func TestDismissalToneEscalates(t *testing.T) {
	// Within a cell the three tiers differ; counts past 2 clamp to the last.
	m0 := SelectMessage(psych.Avoidance, 2, 0, 14, "AppX")
	m1 := SelectMessage(psych.Avoidance, 2, 1, 14, "AppX")
	m2 := SelectMessage(psych.Avoidance, 2, 2, 14, "AppX")
	m9 := SelectMessage(psych.Avoidance, 2, 9999, 14, "AppX")

	if m0.Message == m1.Message || m1.Message == m2.Message {
		t.Error("tone tiers should differ within a cell")
	}
	if m9.Message != m2.Message {
		t.Error("large dismissal counts should clamp to tier 2")
	}
}

func TestLevel4InterpolatesAppName(t *testing.T) {
	for _, state := range []psych.State{
		psych.SeekingStimulation,
		psych.Avoidance,
		psych.EmotionalRegulation,
		psych.ImpulseDriven,
	} {
		iv := SelectMessage(state, 4, 0, 14, "TikTok")
		if !strings.Contains(iv.Message, "TikTok") {
			t.Errorf("level-4 %s message does not name the app: %q", state, iv.Message)
		}
	}

	// Lower levels never name the app.
	for level := 1; level <= 3; level++ {
		iv := SelectMessage(psych.SeekingStimulation, level, 0, 14, "TikTok")
		if strings.Contains(iv.Message, "TikTok") {
			t.Errorf("level-%d message names the app: %q", level, iv.Message)
		}
	}
}

func TestSnoozeOnlyAtHighLevels(t *testing.T) {
	hasSnooze := func(alts []Alternative) bool {
		for _, a := range alts {
			if a.ID == "snooze" {
				return true
			}
		}
		return false
	}

	for level := 1; level <= 4; level++ {
		iv := SelectMessage(psych.SeekingStimulation, level, 0, 14, "AppX")
		if got, want := hasSnooze(iv.Alternatives), level >= 3; got != want {
			t.Errorf("level %d: snooze present = %v, want %v", level, got, want)
		}
	}
}

func TestBaseAlternativesAlwaysOffered(t *testing.T) {
	iv := SelectMessage(psych.ImpulseDriven, 1, 0, 14, "AppX")
	want := []string{"breathing", "journal", "mood_check", "walk"}
	if len(iv.Alternatives) != len(want) {
		t.Fatalf("got %d alternatives, want %d", len(iv.Alternatives), len(want))
	}
	for i, id := range want {
		if iv.Alternatives[i].ID != id {
			t.Errorf("alternative %d = %s, want %s", i, iv.Alternatives[i].ID, id)
		}
	}
}

func TestNightVariants(t *testing.T) {
	day := SelectMessage(psych.Avoidance, 1, 0, 14, "AppX")
	night := SelectMessage(psych.Avoidance, 1, 0, 23, "AppX")
	if day.Message == night.Message {
		t.Error("level-1 avoidance should have a night variant")
	}
}
