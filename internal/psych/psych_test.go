package psych

import "testing"

func TestClassify_UnknownAppAlwaysSeeking(t *testing.T) {
	// Any app outside the category tables classifies as seeking_stimulation
	// regardless of duration or hour.
	hours := []int{0, 3, 7, 12, 20, 23}
	durations := []int{0, 60, 900, 3600, 100000}
	for _, h := range hours {
		for _, d := range durations {
			if got := Classify("com.example.unknownapp", d, h); got != SeekingStimulation {
				t.Errorf("Classify(unknown, %d, %d) = %s, want seeking_stimulation", d, h, got)
			}
		}
	}
}

func TestClassify_SocialApps(t *testing.T) {
	tests := []struct {
		name    string
		appID   string
		elapsed int
		hour    int
		want    State
	}{
		{"instagram daytime short", "com.instagram.android", 300, 14, SeekingStimulation},
		{"instagram daytime long", "com.instagram.android", 901, 14, Avoidance},
		{"instagram late night", "com.instagram.android", 300, 23, EmotionalRegulation},
		{"instagram early morning", "com.instagram.android", 2000, 5, EmotionalRegulation},
		{"tiktok boundary 900s", "com.zhiliaoapp.musically", 900, 12, SeekingStimulation},
		{"facebook long", "com.facebook.katana", 1000, 12, Avoidance},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.appID, tt.elapsed, tt.hour); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestClassify_YouTube(t *testing.T) {
	if got := Classify("com.google.android.youtube", 100, 6); got != EmotionalRegulation {
		t.Errorf("youtube at 6am = %s, want emotional_regulation", got)
	}
	if got := Classify("com.google.android.youtube", 1201, 12); got != Avoidance {
		t.Errorf("youtube 20+ min = %s, want avoidance", got)
	}
	if got := Classify("com.google.android.youtube", 1200, 12); got != SeekingStimulation {
		t.Errorf("youtube at exactly 1200s = %s, want seeking_stimulation", got)
	}
	// YouTube's night window starts later than the social apps'.
	if got := Classify("com.google.android.youtube", 100, 23); got != SeekingStimulation {
		t.Errorf("youtube at 11pm = %s, want seeking_stimulation", got)
	}
}

func TestClassify_Shopping(t *testing.T) {
	if got := Classify("com.amazon.mShop.android.shopping", 60, 21); got != ImpulseDriven {
		t.Errorf("amazon at night = %s, want impulse_driven", got)
	}
	if got := Classify("com.ebay.mobile", 60, 14); got != EmotionalRegulation {
		t.Errorf("ebay daytime = %s, want emotional_regulation", got)
	}
}

func TestClassify_Browser(t *testing.T) {
	if got := Classify("com.android.chrome", 1801, 12); got != Avoidance {
		t.Errorf("chrome 30+ min = %s, want avoidance", got)
	}
	if got := Classify("org.mozilla.browser", 60, 12); got != SeekingStimulation {
		t.Errorf("generic browser = %s, want seeking_stimulation", got)
	}
}

func TestClassify_Deterministic(t *testing.T) {
	for i := 0; i < 10; i++ {
		if got := Classify("com.instagram.android", 950, 15); got != Avoidance {
			t.Fatalf("call %d: got %s, want avoidance", i, got)
		}
	}
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		appID string
		want  Category
	}{
		{"com.instagram.android", CategorySocial},
		{"com.zhiliaoapp.musically", CategorySocial},
		{"com.facebook.katana", CategorySocial},
		{"com.google.android.youtube", CategoryEntertainment},
		{"com.android.chrome", CategoryBrowsing},
		{"com.amazon.mShop.android.shopping", CategoryShopping},
		{"com.shopify.arrive", CategoryShopping},
		{"org.mozilla.browser", CategoryBrowsing},
		{"com.example.game", CategoryOther},
	}
	for _, tt := range tests {
		if got := Categorize(tt.appID); got != tt.want {
			t.Errorf("Categorize(%s) = %s, want %s", tt.appID, got, tt.want)
		}
	}
}

func TestStateValid(t *testing.T) {
	for _, s := range []State{SeekingStimulation, Avoidance, EmotionalRegulation, ImpulseDriven} {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	if State("bored").Valid() {
		t.Error("unknown state should not be valid")
	}
}
