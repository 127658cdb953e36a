// Package main - movement.go
//
// This file implements the ClickExecutor that turns a screen coordinate into
// pointer motion and a click.
//
// Motion Modes:
//   - Direct: One eased segment with a constant duration
//   - Humanized: Long moves (> HumanizeThreshold px) follow a randomly
//     curved path through 2-6 intermediate waypoints; short moves use a
//     single short eased segment
//
// Humanized Path Construction:
//   1. Pick a total duration uniformly from the configured window
//   2. Pick a curve factor and a side; offsets run perpendicular to the
//      straight line, scaled by sin(pi*t) so the path leaves and rejoins it
//   3. Add per-waypoint jitter of a few pixels
//   4. Each segment draws its own easing curve
//   5. With OvershootChance, pass the target by a few pixels and correct
//
// Timing Strategy:
// Motion is executed as small pointer steps (StepMs apart). The whole plan
// stays inside the configured duration window (tens to a few hundred ms).
package main

import (
	"math"
	"math/rand"
	"time"
)

// Segment is one eased leg of a motion plan
type Segment struct {
	To       Point
	Duration time.Duration
	Ease     EaseFunc
}

// MotionPlan is an ordered list of segments ending on the target
type MotionPlan struct {
	Segments  []Segment
	Waypoints int
	Overshoot bool
	Humanized bool
}

// Total returns the planned motion duration
func (p MotionPlan) Total() time.Duration {
	var total time.Duration
	for _, s := range p.Segments {
		total += s.Duration
	}
	return total
}

// End returns the final pointer position
func (p MotionPlan) End() Point {
	if len(p.Segments) == 0 {
		return Point{}
	}
	return p.Segments[len(p.Segments)-1].To
}

// ClickExecutor moves the pointer and clicks.
//
// Not thread-safe. Should only be called from the scheduler goroutine.
type ClickExecutor struct {
	input InputDevice
	clock Clock
	rng   *rand.Rand
	cfg   MotionConfig
}

// NewClickExecutor creates a new click executor
func NewClickExecutor(input InputDevice, clock Clock, cfg MotionConfig, rng *rand.Rand) *ClickExecutor {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	cfg.OvershootChance = ClampFloat(cfg.OvershootChance, 0, 1)
	return &ClickExecutor{
		input: input,
		clock: clock,
		rng:   rng,
		cfg:   cfg,
	}
}

// Click moves to target and issues a left click
func (c *ClickExecutor) Click(target Point) {
	c.MoveTo(target)
	c.input.Click()
	LogDebug("Click at (%d, %d)", target.X, target.Y)
}

// MoveTo moves the pointer to target without clicking
func (c *ClickExecutor) MoveTo(target Point) {
	from := c.input.Location()
	plan := c.Plan(from, target)
	c.execute(from, plan)
}

// PressKey presses a single key
func (c *ClickExecutor) PressKey(key string) {
	if err := c.input.PressKey(key); err != nil {
		LogWarn("Key press %s failed: %v", key, err)
		return
	}
	LogDebug("Press key: %s", key)
}

// Plan builds the motion plan from one point to another
func (c *ClickExecutor) Plan(from, to Point) MotionPlan {
	if c.cfg.Mode != MotionHumanized {
		return MotionPlan{Segments: []Segment{{
			To:       to,
			Duration: time.Duration(c.cfg.DirectDurationMs) * time.Millisecond,
			Ease:     easeInOutQuad,
		}}}
	}

	if from.Distance(to) <= c.cfg.HumanizeThreshold {
		return MotionPlan{Humanized: true, Segments: []Segment{{
			To:       to,
			Duration: c.shortDuration(),
			Ease:     easeOutQuad,
		}}}
	}

	return c.planHumanized(from, to)
}

// shortDuration picks from the lower third of the duration window
func (c *ClickExecutor) shortDuration() time.Duration {
	w := c.cfg.Duration
	return Ms(w.MinMs, w.MinMs+(w.MaxMs-w.MinMs)/3).Pick(c.rng)
}

// planHumanized builds a curved multi-waypoint path.
//
// Parameters:
//   - from: Current pointer position
//   - to: Click target
//
// Returns:
//   - MotionPlan: 2-6 waypoints, optional overshoot, final segment on target
func (c *ClickExecutor) planHumanized(from, to Point) MotionPlan {
	total := c.cfg.Duration.Pick(c.rng)

	dx := float64(to.X - from.X)
	dy := float64(to.Y - from.Y)
	dist := math.Hypot(dx, dy)
	perpX, perpY := -dy/dist, dx/dist

	curveFactor := 0.1 + c.rng.Float64()*0.2
	if c.rng.Intn(2) == 0 {
		curveFactor = -curveFactor
	}
	curve := dist * curveFactor

	n := 2 + c.rng.Intn(5)
	points := make([]Point, 0, n+2)
	for i := 1; i <= n; i++ {
		t := float64(i) / float64(n+1)
		strength := math.Sin(math.Pi * t)
		x := float64(from.X) + dx*t + perpX*curve*strength + c.jitter(3)
		y := float64(from.Y) + dy*t + perpY*curve*strength + c.jitter(3)
		points = append(points, Point{X: int(math.Round(x)), Y: int(math.Round(y))})
	}

	overshoot := c.rng.Float64() < c.cfg.OvershootChance
	if overshoot {
		past := 3 + c.rng.Float64()*5
		x := float64(to.X) + dx/dist*past + c.jitter(1)
		y := float64(to.Y) + dy/dist*past + c.jitter(1)
		points = append(points, Point{X: int(math.Round(x)), Y: int(math.Round(y))})
	}
	points = append(points, to)

	// Weight segments randomly; the correction leg gets a small fixed share
	weights := make([]float64, len(points))
	var sum float64
	for i := range weights {
		weights[i] = 0.6 + c.rng.Float64()*0.8
		if overshoot && i == len(points)-1 {
			weights[i] = 0.3
		}
		sum += weights[i]
	}

	plan := MotionPlan{Humanized: true, Waypoints: n, Overshoot: overshoot}
	var used time.Duration
	for i, p := range points {
		d := time.Duration(float64(total) * weights[i] / sum)
		if i == len(points)-1 {
			d = total - used
		}
		used += d
		plan.Segments = append(plan.Segments, Segment{
			To:       p,
			Duration: d,
			Ease:     easings[c.rng.Intn(len(easings))],
		})
	}
	return plan
}

func (c *ClickExecutor) jitter(px float64) float64 {
	return (c.rng.Float64()*2 - 1) * px
}

// execute replays a plan as small pointer steps
func (c *ClickExecutor) execute(from Point, plan MotionPlan) {
	step := time.Duration(c.cfg.StepMs) * time.Millisecond
	if step <= 0 {
		step = 10 * time.Millisecond
	}

	start := from
	for _, seg := range plan.Segments {
		steps := int(seg.Duration / step)
		if steps < 1 {
			steps = 1
		}
		for i := 1; i <= steps; i++ {
			e := seg.Ease(float64(i) / float64(steps))
			x := float64(start.X) + float64(seg.To.X-start.X)*e
			y := float64(start.Y) + float64(seg.To.Y-start.Y)*e
			c.input.MoveTo(Point{X: int(math.Round(x)), Y: int(math.Round(y))})
			c.clock.Sleep(seg.Duration / time.Duration(steps))
		}
		// Land exactly on the segment end regardless of rounding
		c.input.MoveTo(seg.To)
		start = seg.To
	}
}
