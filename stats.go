// Package main - stats.go
//
// This file implements run statistics and the colored console summary.
//
// Tracked per activity:
//   - Outcome counts (success, failed, stamina low, skipped)
//   - Total time spent running the activity
//
// Tracked globally:
//   - Start time and completed rotation cycles
//
// The summary is printed when the bot stops and every time a rotation
// cycle completes.
package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// ActivityStats holds per-activity totals
type ActivityStats struct {
	Outcomes map[ActionOutcome]int
	Elapsed  time.Duration
}

// Runs returns how many times the activity ran
func (a ActivityStats) Runs() int {
	n := 0
	for _, c := range a.Outcomes {
		n += c
	}
	return n
}

// Statistics holds runtime statistics
type Statistics struct {
	clock      Clock
	StartTime  time.Time
	Cycles     int
	activities map[ActivityID]*ActivityStats
	mu         sync.RWMutex
}

// NewStatistics creates new statistics
func NewStatistics(clock Clock) *Statistics {
	return &Statistics{
		clock:      clock,
		StartTime:  clock.Now(),
		activities: make(map[ActivityID]*ActivityStats),
	}
}

// Record adds one activity outcome
func (s *Statistics) Record(id ActivityID, outcome ActionOutcome, elapsed time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.activities[id]
	if !ok {
		a = &ActivityStats{Outcomes: make(map[ActionOutcome]int)}
		s.activities[id] = a
	}
	a.Outcomes[outcome]++
	a.Elapsed += elapsed
}

// RecordCycle counts one completed rotation
func (s *Statistics) RecordCycle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Cycles++
}

// Activity returns a copy of the totals for id
func (s *Statistics) Activity(id ActivityID) ActivityStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := ActivityStats{Outcomes: make(map[ActionOutcome]int)}
	if a, ok := s.activities[id]; ok {
		for k, v := range a.Outcomes {
			out.Outcomes[k] = v
		}
		out.Elapsed = a.Elapsed
	}
	return out
}

// Uptime returns time since start
func (s *Statistics) Uptime() time.Duration {
	return s.clock.Now().Sub(s.StartTime)
}

var (
	summaryHeader = color.New(color.Bold, color.FgCyan)
	summaryOK     = color.New(color.FgGreen)
	summaryFail   = color.New(color.FgRed)
	summaryWarn   = color.New(color.FgYellow)
	summaryMuted  = color.New(color.Faint)
)

// PrintSummary writes a per-activity table to w
func (s *Statistics) PrintSummary(w io.Writer) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.activities))
	for id := range s.activities {
		ids = append(ids, string(id))
	}
	sort.Strings(ids)

	summaryHeader.Fprintf(w, "=== %d cycles, uptime %s ===\n", s.Cycles, FormatDuration(s.Uptime()))
	for _, id := range ids {
		a := s.activities[ActivityID(id)]
		fmt.Fprintf(w, "  %-18s ", id)
		summaryOK.Fprintf(w, "ok %-4d ", a.Outcomes[OutcomeSuccess])
		summaryFail.Fprintf(w, "fail %-4d ", a.Outcomes[OutcomeFailed])
		summaryWarn.Fprintf(w, "low %-4d ", a.Outcomes[OutcomeStaminaLow])
		summaryMuted.Fprintf(w, "skip %-4d ", a.Outcomes[OutcomeSkipped])
		fmt.Fprintf(w, "%s\n", FormatDuration(a.Elapsed))
	}
	fmt.Fprintln(w, strings.Repeat("-", 60))
}
