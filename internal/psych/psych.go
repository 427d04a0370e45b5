package psych

import "strings"

// State is a coarse classification of the likely motivation behind app usage
type State string

const (
	SeekingStimulation  State = "seeking_stimulation"
	Avoidance           State = "avoidance"
	EmotionalRegulation State = "emotional_regulation"
	ImpulseDriven       State = "impulse_driven"
)

// Valid reports whether s is one of the four known states
func (s State) Valid() bool {
	switch s {
	case SeekingStimulation, Avoidance, EmotionalRegulation, ImpulseDriven:
		return true
	}
	return false
}

// Category groups apps by usage shape for classification
type Category string

const (
	CategorySocial        Category = "social"
	CategoryEntertainment Category = "entertainment"
	CategoryShopping      Category = "shopping"
	CategoryBrowsing      Category = "browsing"
	CategoryOther         Category = "other"
)

// Well-known package identifiers used by the categorizer
const (
	pkgInstagram = "com.instagram.android"
	pkgTikTok    = "com.zhiliaoapp.musically"
	pkgFacebook  = "com.facebook.katana"
	pkgYouTube   = "com.google.android.youtube"
	pkgChrome    = "com.android.chrome"
)

// Categorize maps an app identifier to a usage category. Unknown apps are
// CategoryOther.
func Categorize(appID string) Category {
	switch appID {
	case pkgInstagram, pkgTikTok, pkgFacebook:
		return CategorySocial
	case pkgYouTube:
		return CategoryEntertainment
	case pkgChrome:
		return CategoryBrowsing
	}
	lower := strings.ToLower(appID)
	switch {
	case strings.Contains(lower, "shop"), strings.Contains(lower, "amazon"), strings.Contains(lower, "ebay"):
		return CategoryShopping
	case strings.Contains(lower, "browser"):
		return CategoryBrowsing
	}
	return CategoryOther
}

// Classify infers the psychological state behind a dwell of elapsedSeconds in
// the given app at the given hour of day (0-23). Deterministic, no side
// effects. Apps outside the known categories always classify as
// SeekingStimulation.
func Classify(appID string, elapsedSeconds int, hourOfDay int) State {
	switch appID {
	case pkgInstagram, pkgTikTok, pkgFacebook:
		// Short-form social: late-night use reads as self-soothing,
		// long daytime dwells as avoidance.
		if hourOfDay > 22 || hourOfDay < 6 {
			return EmotionalRegulation
		}
		if elapsedSeconds > 900 {
			return Avoidance
		}
		return SeekingStimulation
	case pkgYouTube:
		if hourOfDay > 23 || hourOfDay < 7 {
			return EmotionalRegulation
		}
		if elapsedSeconds > 1200 {
			return Avoidance
		}
		return SeekingStimulation
	}

	switch Categorize(appID) {
	case CategoryShopping:
		if hourOfDay > 20 {
			return ImpulseDriven
		}
		return EmotionalRegulation
	case CategoryBrowsing:
		if elapsedSeconds > 1800 {
			return Avoidance
		}
		return SeekingStimulation
	}

	return SeekingStimulation
}
