// Package main - sequence.go
//
// This file implements the data-driven activity sequence interpreter.
//
// An activity is an ordered list of Steps. Each step has a Role:
//   - RoleDismiss: Optional overlay/navigation click; never fails
//   - RoleSilent: Optional click with no delay; never fails
//   - RoleTry: Single attempt; a miss fails the sequence
//   - RoleCommit: Bounded retries with escape on exhaustion; a miss fails
//   - RoleWait: Fixed pause
//   - RoleHook: Named branch decision returning a tail of steps or a
//     terminal outcome
//
// Hooks are the only place control flow branches. A hook either returns
// more steps (run immediately, in order, before the remaining steps) or
// finishes the sequence with an outcome.
//
// Panic Boundary:
// Run recovers any panic raised while executing a sequence, logs it with a
// stack trace and reports OutcomeFailed so the rotation keeps going.
package main

import (
	"fmt"
	"runtime/debug"
	"time"
)

// Role is what a step does with its button
type Role int

const (
	RoleDismiss Role = iota
	RoleSilent
	RoleTry
	RoleCommit
	RoleWait
	RoleHook
)

// String returns string representation of the role
func (r Role) String() string {
	switch r {
	case RoleDismiss:
		return "dismiss"
	case RoleSilent:
		return "silent"
	case RoleTry:
		return "try"
	case RoleCommit:
		return "commit"
	case RoleWait:
		return "wait"
	case RoleHook:
		return "hook"
	default:
		return "unknown"
	}
}

// Step is one entry of an activity table
type Step struct {
	Role    Role
	Button  ButtonSpec
	Hook    string
	Retries int // 0 means the profile default
	Wait    time.Duration
}

// DismissStep clears an optional overlay
func DismissStep(b ButtonSpec) Step { return Step{Role: RoleDismiss, Button: b} }

// SilentStep clicks b if present
func SilentStep(b ButtonSpec) Step { return Step{Role: RoleSilent, Button: b} }

// TryStep clicks b once
func TryStep(b ButtonSpec) Step { return Step{Role: RoleTry, Button: b} }

// CommitStep clicks b with retries
func CommitStep(b ButtonSpec) Step { return Step{Role: RoleCommit, Button: b} }

// WaitStep pauses for d
func WaitStep(d time.Duration) Step { return Step{Role: RoleWait, Wait: d} }

// HookStep runs a named branch
func HookStep(name string) Step { return Step{Role: RoleHook, Hook: name} }

// String describes the step for logs
func (s Step) String() string {
	switch s.Role {
	case RoleHook:
		return "hook:" + s.Hook
	case RoleWait:
		return "wait:" + s.Wait.String()
	default:
		return s.Role.String() + ":" + s.Button.Name
	}
}

// Buttons returns every ButtonSpec referenced directly by steps
func Buttons(steps []Step) []ButtonSpec {
	var out []ButtonSpec
	for _, s := range steps {
		if s.Role != RoleHook && s.Role != RoleWait {
			out = append(out, s.Button)
		}
	}
	return out
}

// Decision is what a hook returns
type Decision struct {
	Tail    []Step
	Done    bool
	Outcome ActionOutcome
}

// Continue runs tail and then the remaining steps
func Continue(tail ...Step) Decision {
	return Decision{Tail: tail}
}

// Finish ends the sequence with outcome
func Finish(outcome ActionOutcome) Decision {
	return Decision{Done: true, Outcome: outcome}
}

// Env gives hooks access to the primitives
type Env struct {
	Actions  *ButtonAction
	Probe    *StateProbe
	Stamina  *StaminaReader
	Config   *Config
	Activity ActivityID
}

// HookFunc makes a branch decision
type HookFunc func(env *Env) Decision

// Hook pairs a branch decision with the buttons it may touch, so start-up
// validation can see assets that only appear in branches.
type Hook struct {
	Decide  HookFunc
	Buttons []ButtonSpec
}

// Activity is one entry of the declarative activity table
type Activity struct {
	ID    ActivityID
	Steps []Step
}

// Interpreter executes activities against an environment
type Interpreter struct {
	env   *Env
	hooks map[string]Hook
}

// NewInterpreter creates an interpreter over env and a hook registry
func NewInterpreter(env *Env, hooks map[string]Hook) *Interpreter {
	return &Interpreter{env: env, hooks: hooks}
}

// Run executes one activity and returns its outcome.
//
// Returns:
//   - ActionOutcome: Success when every step completed, Failed when a try
//     or commit step missed, or the outcome a hook finished with
func (in *Interpreter) Run(act Activity) (outcome ActionOutcome) {
	defer func() {
		if r := recover(); r != nil {
			Log().Error().
				Str("activity", string(act.ID)).
				Str("panic", fmt.Sprint(r)).
				Bytes("stack", debug.Stack()).
				Msg("Activity panicked")
			outcome = OutcomeFailed
		}
	}()

	env := *in.env
	env.Activity = act.ID
	outcome, _ = in.execute(&env, act.Steps)
	return outcome
}

// execute runs steps in order. stop is true when the sequence must end
// with the returned outcome instead of continuing with later steps.
func (in *Interpreter) execute(env *Env, steps []Step) (outcome ActionOutcome, stop bool) {
	for _, step := range steps {
		switch step.Role {
		case RoleDismiss:
			env.Actions.Dismiss(step.Button)

		case RoleSilent:
			env.Actions.Silent(step.Button)

		case RoleTry:
			if !env.Actions.Try(step.Button) {
				Log().Info().Str("activity", string(env.Activity)).Str("step", step.String()).Msg("Step missed")
				return OutcomeFailed, true
			}

		case RoleCommit:
			retries := step.Retries
			if retries == 0 {
				retries = env.Actions.MaxRetries()
			}
			if !env.Actions.CommitN(step.Button, retries) {
				Log().Info().Str("activity", string(env.Activity)).Str("step", step.String()).Msg("Step exhausted")
				return OutcomeFailed, true
			}

		case RoleWait:
			env.Actions.Wait(step.Wait)

		case RoleHook:
			hook, ok := in.hooks[step.Hook]
			if !ok {
				panic(fmt.Sprintf("unknown hook %q", step.Hook))
			}
			d := hook.Decide(env)
			if d.Done {
				Log().Info().Str("activity", string(env.Activity)).Str("hook", step.Hook).
					Str("outcome", d.Outcome.String()).Msg("Hook finished activity")
				return d.Outcome, true
			}
			if out, halt := in.execute(env, d.Tail); halt {
				return out, true
			}

		default:
			panic(fmt.Sprintf("unknown step role %d", step.Role))
		}
	}
	return OutcomeSuccess, false
}
