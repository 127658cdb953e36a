// Package main - data.go
//
// This file defines the core data structures shared by the matcher, the
// action primitives, the activity sequences and the scheduler.
//
// Major Data Categories:
//
// 1. Geometric Types:
//    - Point: 2D screen coordinates with distance calculations
//    - Bounds: Rectangles with center/containment operations
//
// 2. Matching:
//    - ButtonSpec: Static description of a clickable UI element
//    - MatchResult: Outcome of one locate attempt (ephemeral)
//
// 3. Sequencing:
//    - ActionOutcome: Closed enumeration returned by activity sequences
//    - ActivityID: Identifier of one in-game task
//    - ActivityState: Per-activity counters and cooldown window
//    - RotationTable: Ordered round-robin list of activities
//
// 4. Timing:
//    - DelayRange: Uniform random delay window in milliseconds
//
// Thread Safety:
// All types here are value types. ActivityState is owned by the scheduler
// and must only be mutated from the scheduler goroutine.
package main

import (
	"math"
	"math/rand"
	"time"
)

// Point represents a 2D coordinate in screen space.
type Point struct {
	X int
	Y int
}

// Distance calculates Euclidean distance to another point
func (p Point) Distance(other Point) float64 {
	dx := float64(p.X - other.X)
	dy := float64(p.Y - other.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// Add returns the point translated by another point
func (p Point) Add(other Point) Point {
	return Point{X: p.X + other.X, Y: p.Y + other.Y}
}

// Bounds represents a rectangular area
type Bounds struct {
	X int // Top-left X coordinate
	Y int // Top-left Y coordinate
	W int // Width
	H int // Height
}

// NewBounds creates a new Bounds
func NewBounds(x, y, w, h int) Bounds {
	return Bounds{X: x, Y: y, W: w, H: h}
}

// Center returns the center point of the bounds
func (b Bounds) Center() Point {
	return Point{
		X: b.X + b.W/2,
		Y: b.Y + b.H/2,
	}
}

// Contains checks if a point is within the bounds
func (b Bounds) Contains(p Point) bool {
	return p.X >= b.X && p.X <= b.X+b.W &&
		p.Y >= b.Y && p.Y <= b.Y+b.H
}

// Empty reports whether the bounds cover no pixels
func (b Bounds) Empty() bool {
	return b.W <= 0 || b.H <= 0
}

// ButtonSpec identifies a clickable UI element.
//
// Fields:
//   - Name: Human-readable label, used only for diagnostics
//   - Asset: Reference image path relative to the asset directory
//   - Threshold: Minimum NCC score; a match requires score > Threshold
//   - Offset: Displacement applied to the match center before clicking
//
// ButtonSpecs are defined statically per activity and never mutated.
type ButtonSpec struct {
	Name      string
	Asset     string
	Threshold float64
	Offset    Point
}

// DefaultThreshold is used by buttons that do not set their own threshold
const DefaultThreshold = 0.7

// Button creates a ButtonSpec with the default threshold
func Button(name, asset string) ButtonSpec {
	return ButtonSpec{Name: name, Asset: asset, Threshold: DefaultThreshold}
}

// WithThreshold returns a copy of the spec using another threshold
func (s ButtonSpec) WithThreshold(threshold float64) ButtonSpec {
	s.Threshold = threshold
	return s
}

// WithOffset returns a copy of the spec clicking at an offset from the center
func (s ButtonSpec) WithOffset(dx, dy int) ButtonSpec {
	s.Offset = Point{X: dx, Y: dy}
	return s
}

// MatchResult is the outcome of one locate attempt.
// When Found is false, Bounds is zero and Score carries the best score seen
// (or 0 if the screen or asset could not be read).
type MatchResult struct {
	Found  bool
	Bounds Bounds
	Score  float64
}

// Target returns the click point for the match
func (m MatchResult) Target(spec ButtonSpec) Point {
	return m.Bounds.Center().Add(spec.Offset)
}

// ActionOutcome is the terminal result of one activity sequence.
type ActionOutcome int

const (
	// OutcomeSuccess means every step completed (or the activity was unnecessary)
	OutcomeSuccess ActionOutcome = iota
	// OutcomeFailed means a committed step exhausted its retries
	OutcomeFailed
	// OutcomeStaminaLow means troops were recalled to recover stamina
	OutcomeStaminaLow
	// OutcomeSkipped means the activity deliberately did nothing
	OutcomeSkipped
)

// String returns string representation of the outcome
func (o ActionOutcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "SUCCESS"
	case OutcomeFailed:
		return "FAILED"
	case OutcomeStaminaLow:
		return "STAMINA_LOW"
	case OutcomeSkipped:
		return "SKIPPED"
	default:
		return "UNKNOWN"
	}
}

// Counted reports whether the outcome increments the activity's entry counter
func (o ActionOutcome) Counted() bool {
	switch o {
	case OutcomeSuccess, OutcomeFailed, OutcomeStaminaLow:
		return true
	default:
		return false
	}
}

// ActivityID names one in-game task
type ActivityID string

const (
	ActivityFog             ActivityID = "fog"
	ActivityFogExplore      ActivityID = "fog_explore"
	ActivityBarbarian       ActivityID = "barbarian"
	ActivityBarbarianNoHome ActivityID = "barbarian_nohome"
	ActivityInfantry        ActivityID = "infantry"
	ActivityArchers         ActivityID = "archers"
	ActivityCavalry         ActivityID = "cavalry"
	ActivitySiege           ActivityID = "siege"
	ActivityResources       ActivityID = "resources"
	ActivityReconnect       ActivityID = "reconnect"
)

// ActivityState holds per-activity mutable counters.
type ActivityState struct {
	Count         int
	CooldownUntil time.Time
}

// CoolingDown reports whether the activity is inside its recovery window
func (s ActivityState) CoolingDown(now time.Time) bool {
	return !s.CooldownUntil.IsZero() && now.Before(s.CooldownUntil)
}

// ExtendCooldown moves the cooldown end forward, never backward
func (s *ActivityState) ExtendCooldown(until time.Time) {
	if until.After(s.CooldownUntil) {
		s.CooldownUntil = until
	}
}

// RotationTable is the fixed round-robin order of activities
type RotationTable []ActivityID

// Distinct returns each activity once, in first-appearance order
func (r RotationTable) Distinct() []ActivityID {
	seen := make(map[ActivityID]bool, len(r))
	out := make([]ActivityID, 0, len(r))
	for _, id := range r {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// DelayRange is a uniform random delay window in milliseconds
type DelayRange struct {
	MinMs int `json:"minMs"`
	MaxMs int `json:"maxMs"`
}

// Ms creates a DelayRange
func Ms(minMs, maxMs int) DelayRange {
	return DelayRange{MinMs: minMs, MaxMs: maxMs}
}

// Pick draws a duration from the window
func (d DelayRange) Pick(rng *rand.Rand) time.Duration {
	if d.MaxMs <= d.MinMs {
		return time.Duration(d.MinMs) * time.Millisecond
	}
	return time.Duration(d.MinMs+rng.Intn(d.MaxMs-d.MinMs+1)) * time.Millisecond
}
