// Package main - utils.go
//
// This file provides utility functions and helper structures used throughout the bot.
//
// Major Components:
//
// 1. Clock:
//    - Clock interface abstracts wall time and blocking sleeps
//    - realClock is used in production, tests inject a virtual clock
//
// 2. Performance Timing:
//    - Timer struct for measuring operation duration
//    - Used around template matching, OCR and whole activity runs
//
// 3. Utility Functions:
//    - FormatDuration: Converts duration to human-readable string (e.g., "2m 30s")
//    - ClampFloat: Restricts values to min/max range
//    - Easing curves used by the click executor
//    - SafeGo: Launches goroutines with panic recovery
package main

import (
	"fmt"
	"math"
	"time"
)

// Clock abstracts time so the scheduler and retry loops can be tested
// without real sleeps.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type realClock struct{}

// RealClock returns the wall clock
func RealClock() Clock {
	return realClock{}
}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) Sleep(d time.Duration) {
	if d > 0 {
		time.Sleep(d)
	}
}

// Timer provides performance timing functionality
type Timer struct {
	name      string
	startTime time.Time
}

// NewTimer creates and starts a new timer with given name
func NewTimer(name string) *Timer {
	return &Timer{
		name:      name,
		startTime: time.Now(),
	}
}

// Elapsed returns the elapsed time since timer creation
func (t *Timer) Elapsed() time.Duration {
	return time.Since(t.startTime)
}

// Stop logs the elapsed time and returns the duration
func (t *Timer) Stop() time.Duration {
	elapsed := t.Elapsed()
	LogDebug("Timer [%s] stopped: %v", t.name, elapsed)
	return elapsed
}

// FormatDuration formats a duration into human-readable string
func FormatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	} else if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%ds", seconds)
}

// ClampFloat restricts a float value between min and max
func ClampFloat(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// EaseFunc maps linear progress t in [0,1] to eased progress in [0,1]
type EaseFunc func(t float64) float64

func easeLinear(t float64) float64 { return t }

func easeInOutQuad(t float64) float64 {
	if t < 0.5 {
		return 2 * t * t
	}
	return 1 - math.Pow(-2*t+2, 2)/2
}

func easeOutQuad(t float64) float64 {
	return 1 - (1-t)*(1-t)
}

func easeInOutSine(t float64) float64 {
	return -(math.Cos(math.Pi*t) - 1) / 2
}

func easeOutCubic(t float64) float64 {
	return 1 - math.Pow(1-t, 3)
}

// easings is the pool humanized segments draw from
var easings = []EaseFunc{easeInOutQuad, easeOutQuad, easeInOutSine, easeOutCubic, easeLinear}

// SafeGo runs a function in a goroutine with panic recovery
func SafeGo(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				LogError("Panic recovered in goroutine: %v", r)
			}
		}()
		fn()
	}()
}
