package main

import (
	"context"
	"math/rand"
	"reflect"
	"strings"
	"testing"
	"time"
)

// fakeRunner returns a fixed outcome per activity and records the call order
type fakeRunner struct {
	outcomes map[ActivityID]ActionOutcome
	calls    []ActivityID
	onRun    func(id ActivityID)
}

func (r *fakeRunner) RunActivity(id ActivityID) ActionOutcome {
	r.calls = append(r.calls, id)
	if r.onRun != nil {
		r.onRun(id)
	}
	return r.outcomes[id]
}

const (
	actA ActivityID = "a"
	actB ActivityID = "b"
)

func newTestScheduler(runner ActivityRunner, clock Clock, rotation RotationTable, reconnect bool) *ActivityScheduler {
	return NewActivityScheduler(runner, clock, SchedulerOptions{
		Rotation:    rotation,
		SwitchDelay: Ms(1000, 1000),
		Cooldown:    10 * time.Minute,
		Reconnect:   reconnect,
		Rand:        rand.New(rand.NewSource(1)),
	})
}

func TestSchedulerRotationWithCooldown(t *testing.T) {
	clock := newFakeClock()
	runner := &fakeRunner{outcomes: map[ActivityID]ActionOutcome{
		actA: OutcomeSuccess,
		actB: OutcomeStaminaLow,
	}}
	s := newTestScheduler(runner, clock, RotationTable{actA, actB}, false)

	for i := 0; i < 3; i++ {
		s.Tick()
	}

	if want := []ActivityID{actA, actB, actA}; !reflect.DeepEqual(runner.calls, want) {
		t.Fatalf("calls = %v, want %v", runner.calls, want)
	}
	if got := s.State(actA).Count; got != 2 {
		t.Errorf("count(a) = %d, want 2", got)
	}
	if got := s.State(actB).Count; got != 1 {
		t.Errorf("count(b) = %d, want 1", got)
	}
	if !s.State(actB).CoolingDown(clock.Now()) {
		t.Error("b should be cooling down")
	}
	if s.Position() != 0 {
		t.Errorf("position = %d, want 0", s.Position())
	}
	if s.TotalCycles() != 2 {
		t.Errorf("cycles = %d, want 2", s.TotalCycles())
	}

	// after the recovery window b is eligible again
	clock.Advance(10 * time.Minute)
	runner.outcomes[actB] = OutcomeSuccess
	s.Tick()
	s.Tick()
	if want := []ActivityID{actA, actB, actA, actA, actB}; !reflect.DeepEqual(runner.calls, want) {
		t.Errorf("calls = %v, want %v", runner.calls, want)
	}
}

func TestSchedulerSkippedNotCounted(t *testing.T) {
	clock := newFakeClock()
	runner := &fakeRunner{outcomes: map[ActivityID]ActionOutcome{actA: OutcomeSkipped, actB: OutcomeFailed}}
	s := newTestScheduler(runner, clock, RotationTable{actA, actB}, false)

	for i := 0; i < 4; i++ {
		s.Tick()
	}
	if got := s.State(actA).Count; got != 0 {
		t.Errorf("skipped activity counted %d times", got)
	}
	if got := s.State(actB).Count; got != 2 {
		t.Errorf("failed activity counted %d times, want 2", got)
	}
	stats := s.Stats().Activity(actA)
	if stats.Outcomes[OutcomeSkipped] != 2 || stats.Runs() != 2 {
		t.Errorf("stats(a) = %+v", stats)
	}
}

func TestSchedulerSwitchDelayEveryTick(t *testing.T) {
	clock := newFakeClock()
	runner := &fakeRunner{outcomes: map[ActivityID]ActionOutcome{}}
	s := newTestScheduler(runner, clock, RotationTable{actA}, false)

	for i := 0; i < 5; i++ {
		s.Tick()
	}
	if len(clock.sleeps) != 5 {
		t.Fatalf("sleeps = %v", clock.sleeps)
	}
	for _, d := range clock.sleeps {
		if d != time.Second {
			t.Errorf("switch delay %v, want 1s", d)
		}
	}
	if s.TotalCycles() != 5 {
		t.Errorf("single entry rotation: cycles = %d, want 5", s.TotalCycles())
	}
}

func TestSchedulerAllCooling(t *testing.T) {
	clock := newFakeClock()
	runner := &fakeRunner{outcomes: map[ActivityID]ActionOutcome{actB: OutcomeStaminaLow}}
	s := newTestScheduler(runner, clock, RotationTable{actB}, false)

	s.Tick()
	cycles, recorded := s.TotalCycles(), s.Stats().Cycles
	for i := 0; i < 100; i++ {
		if res := s.Tick(); !res.Idle {
			t.Fatalf("tick %d = %+v, want idle", i, res)
		}
	}
	if len(runner.calls) != 1 {
		t.Errorf("calls = %v, want only the first run", runner.calls)
	}
	if len(clock.sleeps) != 101 {
		t.Errorf("idle ticks slept %d times, want 101", len(clock.sleeps))
	}
	if s.TotalCycles() != cycles || s.Stats().Cycles != recorded {
		t.Errorf("idle ticks completed cycles: %d -> %d (stats %d -> %d)",
			cycles, s.TotalCycles(), recorded, s.Stats().Cycles)
	}
	if s.Position() != 0 {
		t.Errorf("position = %d, want 0", s.Position())
	}
}

func TestSchedulerIdleKeepsPosition(t *testing.T) {
	clock := newFakeClock()
	runner := &fakeRunner{outcomes: map[ActivityID]ActionOutcome{actA: OutcomeStaminaLow, actB: OutcomeStaminaLow}}
	s := newTestScheduler(runner, clock, RotationTable{actA, actB}, false)

	s.Tick()
	s.Tick()
	pos, cycles := s.Position(), s.TotalCycles()
	for i := 0; i < 10; i++ {
		s.Tick()
	}
	if s.Position() != pos || s.TotalCycles() != cycles {
		t.Errorf("idle ticks moved position %d -> %d, cycles %d -> %d", pos, s.Position(), cycles, s.TotalCycles())
	}
}

func TestSchedulerPrintsSummaryPerCycle(t *testing.T) {
	var sb strings.Builder
	runner := &fakeRunner{outcomes: map[ActivityID]ActionOutcome{actA: OutcomeSuccess}}
	s := NewActivityScheduler(runner, newFakeClock(), SchedulerOptions{
		Rotation:    RotationTable{actA, actB},
		SwitchDelay: Ms(1000, 1000),
		Cooldown:    10 * time.Minute,
		Rand:        rand.New(rand.NewSource(1)),
		Summary:     &sb,
	})

	s.Tick()
	if sb.Len() != 0 {
		t.Fatalf("summary printed mid cycle: %q", sb.String())
	}
	s.Tick()
	if !strings.Contains(sb.String(), "1 cycles") {
		t.Errorf("summary = %q", sb.String())
	}
}

func TestSchedulerReconnect(t *testing.T) {
	clock := newFakeClock()
	runner := &fakeRunner{outcomes: map[ActivityID]ActionOutcome{actA: OutcomeSuccess}}
	s := newTestScheduler(runner, clock, RotationTable{actA}, true)

	s.Tick()
	s.Tick()
	want := []ActivityID{actA, ActivityReconnect, actA, ActivityReconnect}
	if !reflect.DeepEqual(runner.calls, want) {
		t.Fatalf("calls = %v, want %v", runner.calls, want)
	}
	if got := s.State(ActivityReconnect).Count; got != 0 {
		t.Errorf("reconnect counted %d times", got)
	}
}

func TestSchedulerEmptyRotation(t *testing.T) {
	clock := newFakeClock()
	runner := &fakeRunner{}
	s := newTestScheduler(runner, clock, nil, false)

	if res := s.Tick(); !res.Idle {
		t.Errorf("tick = %+v, want idle", res)
	}
	if len(runner.calls) != 0 {
		t.Errorf("calls = %v", runner.calls)
	}
}

func TestSchedulerRunStopsOnCancel(t *testing.T) {
	t.Run("already cancelled", func(t *testing.T) {
		runner := &fakeRunner{}
		s := newTestScheduler(runner, newFakeClock(), RotationTable{actA}, false)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if err := s.Run(ctx); err != context.Canceled {
			t.Fatalf("Run() = %v, want context.Canceled", err)
		}
		if len(runner.calls) != 0 {
			t.Errorf("ran %v after cancellation", runner.calls)
		}
	})

	t.Run("cancelled mid activity", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		runner := &fakeRunner{outcomes: map[ActivityID]ActionOutcome{}}
		runner.onRun = func(id ActivityID) {
			if len(runner.calls) == 2 {
				cancel()
			}
		}
		s := newTestScheduler(runner, newFakeClock(), RotationTable{actA, actB}, false)

		if err := s.Run(ctx); err != context.Canceled {
			t.Fatalf("Run() = %v", err)
		}
		// the running activity finishes; no further tick starts
		if want := []ActivityID{actA, actB}; !reflect.DeepEqual(runner.calls, want) {
			t.Errorf("calls = %v, want %v", runner.calls, want)
		}
		if s.State(actB).Count != 1 {
			t.Errorf("interrupted activity was not recorded")
		}
	})
}

func TestStatisticsSummary(t *testing.T) {
	clock := newFakeClock()
	stats := NewStatistics(clock)
	stats.Record(actA, OutcomeSuccess, time.Second)
	stats.Record(actA, OutcomeFailed, 2*time.Second)
	stats.RecordCycle()
	clock.Advance(90 * time.Second)

	a := stats.Activity(actA)
	if a.Runs() != 2 || a.Elapsed != 3*time.Second {
		t.Errorf("stats = %+v", a)
	}
	if stats.Uptime() != 90*time.Second {
		t.Errorf("uptime = %v", stats.Uptime())
	}

	a.Outcomes[OutcomeSuccess] = 99
	if stats.Activity(actA).Outcomes[OutcomeSuccess] != 1 {
		t.Error("Activity() returned shared state")
	}

	var sb strings.Builder
	stats.PrintSummary(&sb)
	if out := sb.String(); !strings.Contains(out, "1 cycles") || !strings.Contains(out, "a ") {
		t.Errorf("summary = %q", out)
	}
}
