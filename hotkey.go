// Package main - hotkey.go
//
// This file implements the global stop-key listener. A key-down of the
// configured key (F12 by default) cancels the run context; the scheduler
// notices on its next tick.
package main

import (
	"context"

	hook "github.com/robotn/gohook"
)

// StartStopListener registers the stop key and starts the hook loop.
//
// Parameters:
//   - key: gohook key name (e.g. "f12")
//   - cancel: Cancels the run context; safe to call more than once
//
// Returns:
//   - func(): Stops the hook loop
func StartStopListener(key string, cancel context.CancelFunc) func() {
	hook.Register(hook.KeyDown, []string{key}, func(e hook.Event) {
		LogInfo("Stop key %s pressed, finishing current activity", key)
		cancel()
	})

	events := hook.Start()
	SafeGo(func() {
		<-hook.Process(events)
		LogDebug("Hook loop ended")
	})

	LogInfo("Press %s to stop", key)
	return hook.End
}
