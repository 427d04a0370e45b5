package main

import (
	"bufio"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/madhurim15/flow-shift-companion-sub000/internal/activity"
	"github.com/madhurim15/flow-shift-companion-sub000/internal/catalog"
	"github.com/madhurim15/flow-shift-companion-sub000/internal/debounce"
	"github.com/madhurim15/flow-shift-companion-sub000/internal/doomscroll"
	"github.com/madhurim15/flow-shift-companion-sub000/internal/history"
	"github.com/madhurim15/flow-shift-companion-sub000/internal/intervene"
	"github.com/madhurim15/flow-shift-companion-sub000/internal/patterns"
)

// usageEvent is one JSONL line from the usage-monitoring source on stdin.
type usageEvent struct {
	Type          string `json:"type"` // app_changed, app_closed, duration, response, doom_response, resume
	AppID         string `json:"app_id,omitempty"`
	AppName       string `json:"app_name,omitempty"`
	Seconds       int    `json:"seconds,omitempty"`
	Response      string `json:"response,omitempty"`
	AlternativeID string `json:"alternative_id,omitempty"`
}

// outputLine is one JSONL line to the presentation layer on stdout.
type outputLine struct {
	Kind         string                  `json:"kind"`
	Intervention *intervene.Intervention `json:"intervention,omitempty"`
	DoomScroll   *doomscroll.Pattern     `json:"doom_scroll,omitempty"`
}

func main() {
	log.Println("flowshiftd - progressive behavioral intervention engine")

	// Load .env file (optional - won't error if missing)
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, using environment variables")
	} else {
		log.Println("[config] Loaded .env file")
	}

	statePath := os.Getenv("FLOWSHIFT_STATE_PATH")
	if statePath == "" {
		statePath = "state"
	}
	profilesDir := os.Getenv("FLOWSHIFT_PROFILES_DIR")
	debugThresholds := os.Getenv("FLOWSHIFT_DEBUG_THRESHOLDS") == "true"

	os.MkdirAll(statePath, 0755)

	// Stores
	store, err := history.Open(statePath)
	if err != nil {
		// The engine must keep nudging even without history.
		log.Printf("Warning: history store unavailable: %v", err)
		store = nil
	} else {
		defer store.Close()
	}
	events := activity.New(statePath)

	// Threshold catalog
	cat := catalog.New(profilesDir)
	cat.SetDebug(debugThresholds)
	if err := cat.LoadOverrides(); err != nil {
		log.Printf("Warning: failed to load profile overrides: %v", err)
	}
	if err := cat.Watch(func() {
		log.Println("[main] profiles reloaded")
	}); err != nil {
		log.Printf("Warning: profile watch unavailable: %v", err)
	}
	defer cat.StopWatch()

	// Output sink: JSONL on stdout
	out := json.NewEncoder(os.Stdout)
	emit := func(line outputLine) {
		if err := out.Encode(line); err != nil {
			log.Printf("Warning: failed to emit: %v", err)
		}
	}

	// Live intervention engine
	engine := intervene.New(cat)
	if store != nil {
		engine.SetHistory(store)
	}
	engine.SetEventLog(events)
	engine.SetInterventionCallback(func(iv intervene.Intervention) {
		emit(outputLine{Kind: "intervention", Intervention: &iv})
	})

	// Doom-scroll detector (secondary loop)
	doom := doomscroll.NewDetector(statePath)
	doom.SetShowCallback(func(p doomscroll.Pattern) {
		emit(outputLine{Kind: "doom_scroll_intervention", DoomScroll: &p})
	})

	// Behavioral pattern detector over history
	var detector *patterns.Detector
	if store != nil {
		detector = patterns.NewDetector(store, events)
	}

	resumes := debounce.New(time.Second)

	// Tick loop: display pacing and the periodic pattern scan
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	scanEvery := 10 * time.Minute
	lastScan := time.Now()

	done := make(chan struct{})
	go func() {
		defer close(done)
		scanner := bufio.NewScanner(os.Stdin)
		scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
		for scanner.Scan() {
			line := scanner.Bytes()
			if len(line) == 0 {
				continue
			}
			var ev usageEvent
			if err := json.Unmarshal(line, &ev); err != nil {
				log.Printf("Warning: malformed event: %v", err)
				continue
			}
			handleEvent(&ev, engine, doom, detector, resumes)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	log.Println("[main] engine running, reading usage events from stdin")

loop:
	for {
		select {
		case <-sigChan:
			break loop
		case <-done:
			break loop
		case <-ticker.C:
			doom.Tick()
			if detector != nil && time.Since(lastScan) >= scanEvery {
				lastScan = time.Now()
				detector.Scan()
			}
		}
	}

	log.Println("[main] Shutting down...")
	if snap := engine.Snapshot(); snap != nil {
		engine.EndSession(snap.AppID)
	}
	log.Println("[main] Goodbye!")
}

func handleEvent(ev *usageEvent, engine *intervene.Engine, doom *doomscroll.Detector, detector *patterns.Detector, resumes *debounce.Coalescer) {
	switch ev.Type {
	case "app_changed":
		if snap := engine.Snapshot(); snap != nil && snap.AppID != ev.AppID {
			doom.AddTimeSpent(snap.ElapsedSeconds)
			engine.EndSession(snap.AppID)
		}
		engine.StartSession(ev.AppID, ev.AppName)
		doom.RecordVisit()
		if doom.ShouldIntervene() {
			doom.Trigger()
		}
	case "app_closed":
		if snap := engine.Snapshot(); snap != nil && snap.AppID == ev.AppID {
			doom.AddTimeSpent(snap.ElapsedSeconds)
		}
		engine.EndSession(ev.AppID)
	case "duration":
		engine.UpdateDuration(ev.AppID, ev.Seconds)
	case "response":
		engine.Respond(intervene.Response(ev.Response), ev.AlternativeID)
		if ev.Response == string(intervene.ResponseAccepted) && detector != nil {
			detector.RecordSuccess()
		}
	case "doom_response":
		doom.Dismiss()
	case "resume":
		// Resume signals arrive in bursts; coalesce before re-evaluating.
		if !resumes.Allow("resume") {
			return
		}
		if doom.ShouldIntervene() {
			doom.Trigger()
		}
	default:
		log.Printf("Warning: unknown event type: %s", ev.Type)
	}
}
