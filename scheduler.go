// Package main - scheduler.go
//
// This file implements the ActivityScheduler: the single worker loop that
// walks the rotation table and runs one activity per tick.
//
// Tick Algorithm:
//   1. If the current position is cooling down, advance first (idle if
//      every position is cooling)
//   2. Run the activity and apply the outcome:
//      - Success/Failed/StaminaLow increment the entry counter
//      - Skipped does not
//      - StaminaLow sets cooldown-until = now + recovery window
//   3. Optionally run the reconnect check (never counted)
//   4. Advance one position, skipping cooling activities, wrapping around;
//      every return to position 0 completes a cycle and prints the
//      summary; an idle tick never moves or completes a cycle
//   5. Sleep the inter-activity delay
//
// Cancellation:
// Run checks its context once per tick. An activity in progress is never
// interrupted.
package main

import (
	"context"
	"io"
	"math/rand"
	"time"
)

// ActivityRunner executes one activity by id
type ActivityRunner interface {
	RunActivity(id ActivityID) ActionOutcome
}

// RunActivity looks up id in the activity table and runs it
func (in *Interpreter) RunActivity(id ActivityID) ActionOutcome {
	act, ok := activityTable[id]
	if !ok {
		LogError("Unknown activity %q", id)
		return OutcomeFailed
	}
	return in.Run(act)
}

// TickResult reports what one tick did
type TickResult struct {
	Activity ActivityID
	Outcome  ActionOutcome
	Idle     bool
}

// ActivityScheduler rotates through a profile's activities.
//
// Not thread-safe. All state is owned by the goroutine calling Run/Tick.
type ActivityScheduler struct {
	rotation    RotationTable
	runner      ActivityRunner
	clock       Clock
	rng         *rand.Rand
	switchDelay DelayRange
	cooldown    time.Duration
	reconnect   bool
	stats       *Statistics
	summary     io.Writer

	states      map[ActivityID]*ActivityState
	position    int
	totalCycles int
}

// SchedulerOptions configures a scheduler
type SchedulerOptions struct {
	Rotation    RotationTable
	SwitchDelay DelayRange
	Cooldown    time.Duration
	Reconnect   bool
	Stats       *Statistics
	Rand        *rand.Rand
	// Summary receives the statistics table after every cycle; nil disables it
	Summary     io.Writer
}

// NewActivityScheduler creates a scheduler
func NewActivityScheduler(runner ActivityRunner, clock Clock, opts SchedulerOptions) *ActivityScheduler {
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	stats := opts.Stats
	if stats == nil {
		stats = NewStatistics(clock)
	}

	s := &ActivityScheduler{
		rotation:    opts.Rotation,
		runner:      runner,
		clock:       clock,
		rng:         rng,
		switchDelay: opts.SwitchDelay,
		cooldown:    opts.Cooldown,
		reconnect:   opts.Reconnect,
		stats:       stats,
		summary:     opts.Summary,
		states:      make(map[ActivityID]*ActivityState),
	}
	for _, id := range opts.Rotation.Distinct() {
		s.states[id] = &ActivityState{}
	}
	return s
}

func (s *ActivityScheduler) state(id ActivityID) *ActivityState {
	st, ok := s.states[id]
	if !ok {
		st = &ActivityState{}
		s.states[id] = st
	}
	return st
}

// State returns a copy of the state of id
func (s *ActivityScheduler) State(id ActivityID) ActivityState {
	return *s.state(id)
}

// Position returns the current rotation index
func (s *ActivityScheduler) Position() int {
	return s.position
}

// TotalCycles returns how many times the rotation wrapped to position 0
func (s *ActivityScheduler) TotalCycles() int {
	return s.totalCycles
}

// Stats returns the run statistics
func (s *ActivityScheduler) Stats() *Statistics {
	return s.stats
}

// advance moves to the next position that is not cooling down.
// It returns false, leaving position and cycle count untouched, if every
// position is cooling down.
func (s *ActivityScheduler) advance() bool {
	now := s.clock.Now()
	n := len(s.rotation)
	for step := 1; step <= n; step++ {
		next := (s.position + step) % n
		if s.state(s.rotation[next]).CoolingDown(now) {
			continue
		}
		if s.position+step >= n {
			s.completeCycle()
		}
		s.position = next
		return true
	}
	return false
}

// completeCycle records a return to position 0 and prints the summary
func (s *ActivityScheduler) completeCycle() {
	s.totalCycles++
	s.stats.RecordCycle()
	Log().Info().Int("cycle", s.totalCycles).Msg("Rotation cycle complete")
	if s.summary != nil {
		s.stats.PrintSummary(s.summary)
	}
}

// Tick runs exactly one rotation step
func (s *ActivityScheduler) Tick() TickResult {
	if len(s.rotation) == 0 {
		s.clock.Sleep(s.switchDelay.Pick(s.rng))
		return TickResult{Idle: true}
	}

	id := s.rotation[s.position]
	if s.state(id).CoolingDown(s.clock.Now()) {
		if !s.advance() {
			LogDebug("All activities cooling down, idling")
			s.clock.Sleep(s.switchDelay.Pick(s.rng))
			return TickResult{Idle: true}
		}
		id = s.rotation[s.position]
	}

	timer := NewTimer(string(id))
	Log().Info().Str("activity", string(id)).Int("position", s.position).Msg("Starting activity")
	outcome := s.runner.RunActivity(id)
	elapsed := timer.Stop()

	st := s.state(id)
	if outcome.Counted() {
		st.Count++
	}
	if outcome == OutcomeStaminaLow {
		st.ExtendCooldown(s.clock.Now().Add(s.cooldown))
		Log().Info().Str("activity", string(id)).Time("until", st.CooldownUntil).Msg("Cooldown set")
	}
	s.stats.Record(id, outcome, elapsed)

	Log().Info().
		Str("activity", string(id)).
		Str("outcome", outcome.String()).
		Int("count", st.Count).
		Dur("elapsed", elapsed).
		Msg("Activity finished")

	if s.reconnect {
		s.runner.RunActivity(ActivityReconnect)
	}

	s.advance()
	s.clock.Sleep(s.switchDelay.Pick(s.rng))
	return TickResult{Activity: id, Outcome: outcome}
}

// Run ticks until ctx is cancelled.
//
// Returns:
//   - error: ctx.Err() once cancellation is observed
func (s *ActivityScheduler) Run(ctx context.Context) error {
	LogInfo("Scheduler started with %d activities", len(s.rotation))
	for {
		select {
		case <-ctx.Done():
			LogInfo("Scheduler stopping after %d cycles", s.totalCycles)
			return ctx.Err()
		default:
		}
		s.Tick()
	}
}
