package main

import (
	"math/rand"
	"testing"
	"time"
)

func newTestExecutor(mode string, seed int64) (*ClickExecutor, *fakeInput, *fakeClock) {
	cfg := NewConfig().Motion
	cfg.Mode = mode
	input := &fakeInput{}
	clock := newFakeClock()
	return NewClickExecutor(input, clock, cfg, rand.New(rand.NewSource(seed))), input, clock
}

func TestOvershootChanceClamped(t *testing.T) {
	for _, tt := range []struct{ in, want float64 }{{-0.5, 0}, {0.3, 0.3}, {4, 1}} {
		cfg := NewConfig().Motion
		cfg.OvershootChance = tt.in
		c := NewClickExecutor(&fakeInput{}, newFakeClock(), cfg, rand.New(rand.NewSource(1)))
		if c.cfg.OvershootChance != tt.want {
			t.Errorf("OvershootChance(%v) = %v, want %v", tt.in, c.cfg.OvershootChance, tt.want)
		}
	}
}

func TestPlanHumanized(t *testing.T) {
	from := Point{X: 0, Y: 0}
	to := Point{X: 640, Y: 360}
	overshoots := 0

	for seed := int64(1); seed <= 300; seed++ {
		c, _, _ := newTestExecutor(MotionHumanized, seed)
		plan := c.Plan(from, to)

		if !plan.Humanized {
			t.Fatalf("seed %d: long move not humanized", seed)
		}
		if plan.Waypoints < 2 || plan.Waypoints > 6 {
			t.Errorf("seed %d: %d waypoints", seed, plan.Waypoints)
		}
		wantSegs := plan.Waypoints + 1
		if plan.Overshoot {
			wantSegs++
			overshoots++
		}
		if len(plan.Segments) != wantSegs {
			t.Errorf("seed %d: %d segments, want %d", seed, len(plan.Segments), wantSegs)
		}
		if plan.End() != to {
			t.Errorf("seed %d: ends at %v", seed, plan.End())
		}
		total := plan.Total()
		if total < 80*time.Millisecond || total > 350*time.Millisecond {
			t.Errorf("seed %d: total %v outside window", seed, total)
		}
		for i, s := range plan.Segments {
			if s.Duration < 0 {
				t.Errorf("seed %d: segment %d has negative duration", seed, i)
			}
		}
	}

	if overshoots == 0 || overshoots == 300 {
		t.Errorf("overshoot occurred %d/300 times", overshoots)
	}
}

func TestPlanShortMove(t *testing.T) {
	c, _, _ := newTestExecutor(MotionHumanized, 3)
	plan := c.Plan(Point{X: 100, Y: 100}, Point{X: 130, Y: 140})

	if len(plan.Segments) != 1 || plan.Waypoints != 0 || plan.Overshoot {
		t.Fatalf("short move plan = %+v", plan)
	}
	// lower third of 80-350ms
	if d := plan.Total(); d < 80*time.Millisecond || d > 170*time.Millisecond {
		t.Errorf("short move took %v", d)
	}
}

func TestPlanDirect(t *testing.T) {
	c, _, _ := newTestExecutor(MotionDirect, 3)
	plan := c.Plan(Point{}, Point{X: 900, Y: 500})

	if plan.Humanized || len(plan.Segments) != 1 {
		t.Fatalf("direct plan = %+v", plan)
	}
	if plan.Total() != 200*time.Millisecond {
		t.Errorf("direct duration = %v", plan.Total())
	}
}

func TestClickLandsOnTarget(t *testing.T) {
	for _, mode := range []string{MotionDirect, MotionHumanized} {
		c, input, clock := newTestExecutor(mode, 11)
		target := Point{X: 512, Y: 384}

		c.Click(target)

		if input.pos != target {
			t.Errorf("%s: pointer at %v, want %v", mode, input.pos, target)
		}
		if input.clicks != 1 {
			t.Errorf("%s: %d clicks", mode, input.clicks)
		}
		if len(clock.sleeps) == 0 {
			t.Errorf("%s: movement took no time", mode)
		}
	}
}

func TestPressKeyForwards(t *testing.T) {
	c, input, _ := newTestExecutor(MotionDirect, 1)
	c.PressKey(EscapeKey)
	if len(input.keys) != 1 || input.keys[0] != EscapeKey {
		t.Errorf("keys = %v", input.keys)
	}
}
