// Package main - farming.go
//
// This file implements the named branch hooks referenced by the activity
// table. Each hook inspects the screen through StateProbe (or reads stamina)
// and either appends a tail of steps or finishes the activity.
//
// Hooks:
//   - stamina_gate: Read stamina; below the minimum, recall troops and
//     finish StaminaLow (Failed if the recall cannot be completed)
//   - commander_branch: Commander-assisted vs manual troop dispatch
//   - troop_available: End a no-home barbarian run when no troop is free
//   - in_training: End a training run if the building is already busy
//   - confirm_train / confirm_train_rss: Confirm training, top up resources
//   - helpers_active: Skip gathering when 3+ auto-gather helpers are out
//   - pick_resource: Choose a random resource node type
//   - keep_troops: Toggle the keep-troops checkbox next to its label
//   - reconnect: Click the reconnect dialog and wait for the session
//
// Outcome Mapping:
// Deliberate early exits (nothing to train, no free troop, already training)
// finish as Skipped so the scheduler does not count them. The helper gate
// finishes as Success because the task is already being covered.
package main

import "time"

const (
	hookStaminaGate     = "stamina_gate"
	hookCommanderBranch = "commander_branch"
	hookTroopAvailable  = "troop_available"
	hookInTraining      = "in_training"
	hookConfirmTrain    = "confirm_train"
	hookConfirmTrainRSS = "confirm_train_rss"
	hookAddRSS          = "add_rss"
	hookHelpersActive   = "helpers_active"
	hookPickResource    = "pick_resource"
	hookKeepTroops      = "keep_troops"
	hookReconnect       = "reconnect"
)

// helpersForSkip is how many active helpers make manual gathering unnecessary
const helpersForSkip = 3

// reconnectSettle is how long the client needs after a reconnect click
const reconnectSettle = 3 * time.Second

// DefaultHooks returns the hook registry used by the activity table
func DefaultHooks() map[string]Hook {
	return map[string]Hook{
		hookStaminaGate: {
			Decide:  staminaGate,
			Buttons: []ButtonSpec{barRecall, barRecallConfirm},
		},
		hookCommanderBranch: {
			Decide: commanderBranch,
			Buttons: []ButtonSpec{
				barCommander, barTroopIcon, barSendAvailable,
				barAddTroop, barSelectTroop, barSendTroop,
			},
		},
		hookTroopAvailable: {
			Decide:  troopAvailable,
			Buttons: []ButtonSpec{barTroopIcon},
		},
		hookInTraining: {
			Decide: inTraining,
		},
		hookConfirmTrain: {
			Decide:  confirmTrain,
			Buttons: []ButtonSpec{troopConfirm},
		},
		hookConfirmTrainRSS: {
			Decide:  confirmTrainRSS,
			Buttons: []ButtonSpec{troopConfirm, troopAddRSS},
		},
		hookAddRSS: {
			Decide:  addRSS,
			Buttons: []ButtonSpec{troopAddRSS, troopConfirm},
		},
		hookHelpersActive: {
			Decide:  helpersActive,
			Buttons: rssHelpers,
		},
		hookPickResource: {
			Decide:  pickResource,
			Buttons: rssNodes,
		},
		hookKeepTroops: {
			Decide:  keepTroops,
			Buttons: []ButtonSpec{rssSaveTroop},
		},
		hookReconnect: {
			Decide:  reconnect,
			Buttons: []ButtonSpec{btnReconnect},
		},
	}
}

// staminaGate recalls troops when stamina is too low to farm.
//
// Algorithm:
//   1. Skip the gate when disabled or no reader is configured
//   2. Read stamina; 0 means unknown and the run proceeds
//   3. At or above the minimum, proceed
//   4. Below the minimum, commit recall then recall confirmation
//   5. Finish StaminaLow if both clicks landed, Failed otherwise
func staminaGate(env *Env) Decision {
	cfg := env.Config.Stamina
	if !cfg.Enabled || env.Stamina == nil {
		return Continue()
	}

	stamina := env.Stamina.Read()
	if stamina == 0 {
		LogInfo("Stamina unreadable, proceeding")
		return Continue()
	}
	if stamina >= cfg.Minimum {
		Log().Info().Int("stamina", stamina).Int("minimum", cfg.Minimum).Msg("Stamina ok")
		return Continue()
	}

	Log().Info().Int("stamina", stamina).Int("minimum", cfg.Minimum).Msg("Stamina low, recalling troops")
	if !env.Actions.Commit(barRecall) || !env.Actions.Commit(barRecallConfirm) {
		LogWarn("Recall could not be completed")
		return Finish(OutcomeFailed)
	}
	return Finish(OutcomeStaminaLow)
}

// commanderBranch selects the troop dispatch flow
func commanderBranch(env *Env) Decision {
	if env.Probe.Present(barCommander) {
		if !env.Probe.Present(barTroopIcon) {
			LogInfo("Commander present but no troop available, ending run")
			env.Actions.Escape()
			return Finish(OutcomeSkipped)
		}
		LogInfo("Commander present, using commander dispatch")
		return Continue(CommitStep(barTroopIcon.WithThreshold(DefaultThreshold)), CommitStep(barSendAvailable))
	}

	LogInfo("No commander, using manual troop selection")
	return Continue(CommitStep(barAddTroop), CommitStep(barSelectTroop), CommitStep(barSendTroop))
}

// troopAvailable ends the run early when no troop is free
func troopAvailable(env *Env) Decision {
	if !env.Probe.Present(barTroopIcon.WithThreshold(0.8)) {
		LogInfo("No troops available, ending run")
		return Finish(OutcomeSkipped)
	}
	env.Actions.Sleep(env.Config.Timing.Step)
	return Continue()
}

// inTraining ends the run when the building is already training
func inTraining(env *Env) Decision {
	t, ok := trainers[env.Activity]
	if !ok || t.marker.Asset == "" {
		return Continue()
	}

	var busy bool
	if t.hover {
		busy = env.Probe.Hover(t.marker)
	} else {
		busy = env.Probe.Present(t.marker)
	}
	if busy {
		LogInfo("%s already training, ending run", env.Activity)
		return Finish(OutcomeSkipped)
	}
	return Continue()
}

// confirmTrain commits the confirm dialog, or escapes if none appeared
func confirmTrain(env *Env) Decision {
	if !env.Probe.Present(troopConfirm) {
		LogInfo("Confirm train not found, ending run")
		env.Actions.Escape()
		return Finish(OutcomeSkipped)
	}
	return Continue(CommitStep(troopConfirm))
}

// confirmTrainRSS is confirmTrain followed by the resource top-up check
func confirmTrainRSS(env *Env) Decision {
	d := confirmTrain(env)
	if d.Done {
		return d
	}
	return Continue(append(d.Tail, HookStep(hookAddRSS))...)
}

// addRSS tops up missing resources and confirms again
func addRSS(env *Env) Decision {
	if env.Actions.Dismiss(troopAddRSS) {
		LogInfo("Resources topped up, confirming again")
		return Continue(CommitStep(troopConfirm))
	}
	return Continue()
}

// helpersActive skips gathering when helpers already cover it
func helpersActive(env *Env) Decision {
	n := env.Probe.Count(rssHelpers...)
	Log().Info().Int("active", n).Int("of", len(rssHelpers)).Msg("Gather helpers")
	if n >= helpersForSkip {
		return Finish(OutcomeSuccess)
	}
	return Continue()
}

// pickResource chooses a random node type to search for
func pickResource(env *Env) Decision {
	node := rssNodes[env.Actions.Pick(len(rssNodes))]
	LogInfo("Selected resource: %s", node.Name)
	return Continue(TryStep(node))
}

// keepTroops clicks the checkbox left of the keep-troops label if shown
func keepTroops(env *Env) Decision {
	if !env.Actions.ClickAt(rssSaveTroop, saveTroopOffset) {
		LogDebug("Keep troops toggle not shown")
	}
	return Continue()
}

// reconnect clicks the reconnect dialog if the session dropped
func reconnect(env *Env) Decision {
	if env.Actions.Silent(btnReconnect) {
		LogInfo("Reconnecting")
		env.Actions.Wait(reconnectSettle)
	}
	return Continue()
}
