// Package catalog holds the per-app threshold configuration used by the
// intervention engine: how long a dwell can run before each escalation level,
// and which psychological state a session starts in.
package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/madhurim15/flow-shift-companion-sub000/internal/logging"
	"github.com/madhurim15/flow-shift-companion-sub000/internal/psych"
)

// Profile is the immutable threshold configuration for one app. Thresholds
// are dwell durations in seconds, ascending, one per escalation level.
// DebugThresholds is a compressed variant for manual testing.
type Profile struct {
	AppID           string         `yaml:"app_id"`
	AppName         string         `yaml:"app_name,omitempty"`
	Category        psych.Category `yaml:"category,omitempty"`
	DefaultState    psych.State    `yaml:"default_state"`
	Thresholds      []int          `yaml:"thresholds"`
	DebugThresholds []int          `yaml:"debug_thresholds,omitempty"`
}

// LevelFor returns the highest escalation level whose threshold elapsedSeconds
// has crossed (0 if none). The result never exceeds len(p.Thresholds).
func (p Profile) LevelFor(elapsedSeconds int) int {
	level := 0
	for i, threshold := range p.Thresholds {
		if elapsedSeconds >= threshold {
			level = i + 1
		}
	}
	return level
}

// Catalog resolves apps to threshold profiles. Built-in profiles can be
// overridden by YAML files in a profiles directory; unknown apps fall back to
// the default profile. The debug switch selects each profile's compressed
// thresholds instead of the normal ones.
type Catalog struct {
	mu       sync.RWMutex
	profiles map[string]Profile
	fallback Profile
	debug    bool
	dir      string

	watcher *watcher
}

// DefaultAppID keys the fallback profile in override files.
const DefaultAppID = "default"

// builtins mirror the shipped app configuration: well-known attention sinks
// get tighter ladders than the generic default.
func builtins() map[string]Profile {
	return map[string]Profile{
		"com.google.android.youtube": {
			AppID:           "com.google.android.youtube",
			AppName:         "YouTube",
			Category:        psych.CategoryEntertainment,
			DefaultState:    psych.Avoidance,
			Thresholds:      []int{15 * 60, 25 * 60, 35 * 60, 45 * 60},
			DebugThresholds: []int{30, 60, 120, 180},
		},
		"com.instagram.android": {
			AppID:           "com.instagram.android",
			AppName:         "Instagram",
			Category:        psych.CategorySocial,
			DefaultState:    psych.SeekingStimulation,
			Thresholds:      []int{15 * 60, 25 * 60, 35 * 60, 45 * 60},
			DebugThresholds: []int{25, 45, 90, 150},
		},
		"com.zhiliaoapp.musically": {
			AppID:           "com.zhiliaoapp.musically",
			AppName:         "TikTok",
			Category:        psych.CategorySocial,
			DefaultState:    psych.Avoidance,
			Thresholds:      []int{8 * 60, 15 * 60, 25 * 60, 35 * 60},
			DebugThresholds: []int{20, 40, 75, 120},
		},
		"com.facebook.katana": {
			AppID:           "com.facebook.katana",
			AppName:         "Facebook",
			Category:        psych.CategorySocial,
			DefaultState:    psych.EmotionalRegulation,
			Thresholds:      []int{12 * 60, 22 * 60, 32 * 60, 42 * 60},
			DebugThresholds: []int{30, 55, 100, 140},
		},
		"com.android.chrome": {
			AppID:           "com.android.chrome",
			AppName:         "Chrome",
			Category:        psych.CategoryBrowsing,
			DefaultState:    psych.SeekingStimulation,
			Thresholds:      []int{20 * 60, 35 * 60, 50 * 60, 65 * 60},
			DebugThresholds: []int{40, 70, 120, 180},
		},
	}
}

func defaultFallback() Profile {
	return Profile{
		AppID:           DefaultAppID,
		Category:        psych.CategoryOther,
		DefaultState:    psych.SeekingStimulation,
		Thresholds:      []int{15 * 60, 30 * 60, 45 * 60, 60 * 60},
		DebugThresholds: []int{30, 60, 120, 180},
	}
}

// New creates a catalog with the built-in profiles. profilesDir may be empty
// if no override files are used.
func New(profilesDir string) *Catalog {
	return &Catalog{
		profiles: builtins(),
		fallback: defaultFallback(),
		dir:      profilesDir,
	}
}

// SetDebug switches all lookups to each profile's compressed debug thresholds.
func (c *Catalog) SetDebug(debug bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.debug = debug
}

// Debug reports whether the compressed thresholds are active.
func (c *Catalog) Debug() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.debug
}

// Lookup resolves an app to its profile. The returned profile's Thresholds
// field already reflects the debug switch, so callers can use LevelFor
// directly. Unknown apps resolve to the default profile (with the caller's
// app id filled in).
func (c *Catalog) Lookup(appID string) Profile {
	c.mu.RLock()
	defer c.mu.RUnlock()

	p, ok := c.profiles[appID]
	if !ok {
		p = c.fallback
		p.AppID = appID
	}
	if c.debug && len(p.DebugThresholds) > 0 {
		p.Thresholds = append([]int(nil), p.DebugThresholds...)
	} else {
		p.Thresholds = append([]int(nil), p.Thresholds...)
	}
	return p
}

// Levels returns the number of escalation levels for an app.
func (c *Catalog) Levels(appID string) int {
	return len(c.Lookup(appID).Thresholds)
}

// LoadOverrides reads *.yaml/*.yml profile files from the profiles directory
// on top of the built-ins. A file keyed "default" replaces the fallback
// profile. Malformed files are logged and skipped; a missing directory is not
// an error.
func (c *Catalog) LoadOverrides() error {
	if c.dir == "" {
		return nil
	}
	if _, err := os.Stat(c.dir); os.IsNotExist(err) {
		return nil
	}

	files, err := filepath.Glob(filepath.Join(c.dir, "*.yaml"))
	if err != nil {
		return fmt.Errorf("failed to glob profiles: %w", err)
	}
	ymlFiles, err := filepath.Glob(filepath.Join(c.dir, "*.yml"))
	if err != nil {
		return fmt.Errorf("failed to glob profiles: %w", err)
	}
	files = append(files, ymlFiles...)
	sort.Strings(files)

	c.mu.Lock()
	defer c.mu.Unlock()

	// Rebuild from built-ins so deleted override files stop applying.
	c.profiles = builtins()
	c.fallback = defaultFallback()

	loaded := 0
	for _, file := range files {
		profile, err := loadProfileFile(file)
		if err != nil {
			logging.Warn("catalog", "failed to load %s: %v", file, err)
			continue
		}
		if profile.AppID == DefaultAppID {
			c.fallback = profile
		} else {
			c.profiles[profile.AppID] = profile
		}
		loaded++
		logging.Debug("catalog", "loaded profile: %s (%d levels)", profile.AppID, len(profile.Thresholds))
	}

	logging.Info("catalog", "loaded %d profile overrides (%d apps total)", loaded, len(c.profiles))
	return nil
}

func loadProfileFile(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, err
	}

	var profile Profile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return Profile{}, err
	}

	if profile.AppID == "" {
		return Profile{}, fmt.Errorf("profile missing app_id")
	}
	if len(profile.Thresholds) == 0 {
		return Profile{}, fmt.Errorf("profile %s has no thresholds", profile.AppID)
	}
	if !sort.IntsAreSorted(profile.Thresholds) {
		return Profile{}, fmt.Errorf("profile %s thresholds not ascending", profile.AppID)
	}
	if !profile.DefaultState.Valid() {
		profile.DefaultState = psych.SeekingStimulation
	}
	return profile, nil
}
