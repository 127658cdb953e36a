// Package main - action.go
//
// This file implements the ButtonAction retry primitive and the StateProbe
// branch checks that activity sequences are composed from.
//
// Request Modes:
//   - Silent: One locate+click attempt. No delay, no retry, no escape.
//   - Try: One attempt; a click is followed by the button settle delay.
//   - Commit: Up to MaxRetries attempts separated by the retry delay. On
//     success, settle and return true. On exhaustion, press escape exactly
//     once and return false.
//   - Dismiss: Silent attempt on an optional overlay; a click costs one
//     step delay. Never fails the caller.
//
// StateProbe:
// Present/Count/Hover look at the screen without clicking and never retry.
//
// Logging:
// Not-found attempts are logged at debug level. Exhaustion is logged at warn
// and, with debug frames enabled, the last captured frame is saved.
package main

import (
	"image"
	"math/rand"
	"time"
)

// EscapeKey dismisses stray dialogs after a committed action gives up
const EscapeKey = "esc"

// Clicker is the pointer half of the click executor
type Clicker interface {
	Click(target Point)
	MoveTo(target Point)
	PressKey(key string)
}

// frameSource is implemented by locators that keep their last capture
type frameSource interface {
	LastFrame() image.Image
}

// ButtonAction locates and clicks named buttons.
//
// Each request is independent; ButtonAction holds no per-activity state.
type ButtonAction struct {
	locator    Locator
	clicker    Clicker
	clock      Clock
	rng        *rand.Rand
	timing     TimingConfig
	maxRetries int
}

// NewButtonAction creates a button action runner
func NewButtonAction(locator Locator, clicker Clicker, clock Clock, timing TimingConfig, maxRetries int, rng *rand.Rand) *ButtonAction {
	if maxRetries < 1 {
		maxRetries = 1
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &ButtonAction{
		locator:    locator,
		clicker:    clicker,
		clock:      clock,
		rng:        rng,
		timing:     timing,
		maxRetries: maxRetries,
	}
}

// MaxRetries returns the attempt budget of committed actions
func (a *ButtonAction) MaxRetries() int {
	return a.maxRetries
}

// attempt performs one locate+click
func (a *ButtonAction) attempt(spec ButtonSpec) bool {
	m := a.locator.Locate(spec)
	if !m.Found {
		return false
	}
	a.clicker.Click(m.Target(spec))
	return true
}

// Silent tries spec once with no delay and no fallback
func (a *ButtonAction) Silent(spec ButtonSpec) bool {
	return a.attempt(spec)
}

// Try clicks spec once and settles if it was clicked
func (a *ButtonAction) Try(spec ButtonSpec) bool {
	if !a.attempt(spec) {
		LogDebug("Try %s: not found", spec.Name)
		return false
	}
	LogInfo("Clicked %s", spec.Name)
	a.Sleep(a.timing.Button)
	return true
}

// Dismiss clears an optional overlay. It reports whether anything was clicked.
func (a *ButtonAction) Dismiss(spec ButtonSpec) bool {
	if !a.attempt(spec) {
		return false
	}
	LogInfo("Dismissed %s", spec.Name)
	a.Sleep(a.timing.Step)
	return true
}

// Commit clicks spec with the configured retry budget
func (a *ButtonAction) Commit(spec ButtonSpec) bool {
	return a.CommitN(spec, a.maxRetries)
}

// CommitN clicks spec with an explicit retry budget.
//
// Parameters:
//   - spec: Button to click
//   - retries: Maximum locate attempts (at least 1)
//
// Returns:
//   - bool: true once clicked; false after exactly retries attempts and one escape
func (a *ButtonAction) CommitN(spec ButtonSpec, retries int) bool {
	if retries < 1 {
		retries = 1
	}

	for i := 1; i <= retries; i++ {
		if a.attempt(spec) {
			Log().Info().Str("button", spec.Name).Int("attempt", i).Int("max", retries).Msg("Clicked")
			a.Sleep(a.timing.Button)
			return true
		}
		LogDebug("Commit %s: attempt %d/%d not found", spec.Name, i, retries)
		if i < retries {
			a.Sleep(a.timing.Retry)
		}
	}

	Log().Warn().Str("button", spec.Name).Int("attempts", retries).Msg("Retries exhausted, pressing escape")
	if fs, ok := a.locator.(frameSource); ok {
		SaveDebugFrame("exhausted_"+spec.Name, fs.LastFrame())
	}
	a.clicker.PressKey(EscapeKey)
	a.Sleep(a.timing.Retry)
	return false
}

// Escape presses the escape key and settles
func (a *ButtonAction) Escape() {
	a.clicker.PressKey(EscapeKey)
	a.Sleep(a.timing.Step)
}

// ClickAt clicks the match location of spec shifted by offset, once
func (a *ButtonAction) ClickAt(spec ButtonSpec, offset Point) bool {
	m := a.locator.Locate(spec)
	if !m.Found {
		return false
	}
	a.clicker.Click(m.Target(spec.WithOffset(offset.X, offset.Y)))
	LogInfo("Clicked %s at offset (%d, %d)", spec.Name, offset.X, offset.Y)
	a.Sleep(a.timing.Button)
	return true
}

// Sleep blocks for a duration drawn from r
func (a *ButtonAction) Sleep(r DelayRange) {
	a.clock.Sleep(r.Pick(a.rng))
}

// Wait blocks for a fixed duration
func (a *ButtonAction) Wait(d time.Duration) {
	a.clock.Sleep(d)
}

// Pick returns a random index in [0, n)
func (a *ButtonAction) Pick(n int) int {
	return a.rng.Intn(n)
}

// StateProbe answers yes/no questions about the screen.
type StateProbe struct {
	locator Locator
	clicker Clicker
}

// NewStateProbe creates a probe
func NewStateProbe(locator Locator, clicker Clicker) *StateProbe {
	return &StateProbe{locator: locator, clicker: clicker}
}

// Present reports whether spec is visible above its threshold
func (p *StateProbe) Present(spec ButtonSpec) bool {
	found := p.locator.Locate(spec).Found
	LogDebug("Probe %s: %v", spec.Name, found)
	return found
}

// Count returns how many of specs are visible
func (p *StateProbe) Count(specs ...ButtonSpec) int {
	n := 0
	for _, spec := range specs {
		if p.Present(spec) {
			n++
		}
	}
	return n
}

// Hover reports whether spec is visible and, if so, rests the pointer on it
func (p *StateProbe) Hover(spec ButtonSpec) bool {
	m := p.locator.Locate(spec)
	if !m.Found {
		return false
	}
	p.clicker.MoveTo(m.Target(spec))
	return true
}
