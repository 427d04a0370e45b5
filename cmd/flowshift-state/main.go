package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/madhurim15/flow-shift-companion-sub000/internal/history"
	"github.com/madhurim15/flow-shift-companion-sub000/internal/logging"
	"github.com/madhurim15/flow-shift-companion-sub000/internal/state"
)

func main() {
	statePath := os.Getenv("FLOWSHIFT_STATE_PATH")
	if statePath == "" {
		statePath = "state"
	}

	store, err := history.Open(statePath)
	if err != nil {
		logging.Warn("state", "history unavailable: %v", err)
		store = nil
	} else {
		defer store.Close()
	}
	inspector := state.NewInspector(statePath, store)

	cmd := "summary"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	switch cmd {
	case "summary":
		handleSummary(inspector)
	case "sessions":
		handleSessions(inspector)
	case "patterns":
		handlePatterns(inspector)
	case "interventions":
		handleInterventions(inspector)
	case "doomscroll":
		handleDoomScroll(inspector)
	case "log":
		handleLog(inspector, os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`flowshift-state - Inspect the intervention engine's state

Usage: flowshift-state <command> [options]

Commands:
  summary        Overview of all state components (default)
  sessions       Today's completed app sessions
  patterns       Behavioral pattern counters
  interventions  Interventions fired in the last 7 days
  doomscroll     Current doom-scroll pattern
  log [n]        Last n engine events (default 20)

Environment:
  FLOWSHIFT_STATE_PATH  State directory (default "state")`)
}

func handleSummary(inspector *state.Inspector) {
	summary, err := inspector.Summarize()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Engine State Summary")
	fmt.Println("====================")
	fmt.Printf("Sessions today:       %d\n", summary.SessionsToday)
	fmt.Printf("Interventions today:  %d\n", summary.InterventionsToday)
	fmt.Printf("Engine log entries:   %d\n", summary.EventEntries)
	fmt.Println()

	ds := summary.DoomScroll
	fmt.Printf("Doom-scroll: %d visits, %d rapid returns, %ds total, %d/%d nudges today\n",
		ds.VisitCount, ds.RapidReturnCount, ds.TotalTimeSpentSeconds, ds.DailyInterventionCount, 4)

	if len(summary.Patterns) > 0 {
		fmt.Println("\nBehavioral patterns:")
		for _, p := range summary.Patterns {
			fmt.Printf("  %-18s detected %dx, %d successful interventions (last %s)\n",
				p.PatternType, p.DetectedFrequency, p.SuccessfulInterventions,
				p.LastDetectedAt.Format("2006-01-02 15:04"))
		}
	}
}

func handleSessions(inspector *state.Inspector) {
	sessions, err := inspector.RecentSessions()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(sessions) == 0 {
		fmt.Println("No sessions today")
		return
	}
	for _, s := range sessions {
		fmt.Printf("%s  %-30s %5ds  %s\n",
			s.StartedAt.Local().Format("15:04"), s.AppName, s.DurationSeconds, s.State)
	}
}

func handlePatterns(inspector *state.Inspector) {
	stats, err := inspector.PatternStats()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(stats) == 0 {
		fmt.Println("No patterns detected yet")
		return
	}
	for _, p := range stats {
		fmt.Printf("%-18s detected %dx, %d successful (last %s)\n",
			p.PatternType, p.DetectedFrequency, p.SuccessfulInterventions,
			p.LastDetectedAt.Format("2006-01-02 15:04"))
	}
}

func handleInterventions(inspector *state.Inspector) {
	records, err := inspector.RecentInterventions()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(records) == 0 {
		fmt.Println("No interventions in the last 7 days")
		return
	}
	for _, r := range records {
		response := r.Response
		if response == "" {
			response = "unresolved"
		}
		fmt.Printf("%s  L%d %-22s %-20s -> %s\n",
			r.CreatedAt.Local().Format("01-02 15:04"), r.Level, r.State, r.Title, response)
	}
}

func handleDoomScroll(inspector *state.Inspector) {
	summary, err := inspector.Summarize()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	data, _ := json.MarshalIndent(summary.DoomScroll, "", "  ")
	fmt.Println(string(data))
}

func handleLog(inspector *state.Inspector, args []string) {
	n := 20
	if len(args) > 0 {
		if parsed, err := strconv.Atoi(args[0]); err == nil && parsed > 0 {
			n = parsed
		}
	}
	entries, err := inspector.RecentEvents(n)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	for _, e := range entries {
		fmt.Printf("%s  %-14s %s\n", e.Timestamp.Local().Format(time.TimeOnly), e.Type, e.Summary)
	}
}
