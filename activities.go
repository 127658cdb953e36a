// Package main - activities.go
//
// This file holds the declarative activity table: every in-game task as an
// ordered list of steps over statically defined buttons.
//
// Asset Layout (relative to the asset directory):
//   - *.png: Shared overlays and navigation (help, close, home, outside, reconnect)
//   - fog/: Scout camp and exploration dialog
//   - barbarian/: Barbarian search, attack, troop dispatch, recall, stamina icon
//   - troop/: Training buildings, train/confirm buttons, in-training markers
//   - resources/: Resource search, gather flow, auto-gather helper portraits
//
// Branching behaviour lives in farming.go as named hooks.
package main

import "time"

// Shared overlays and navigation
var (
	btnHelp      = Button("help_button", "help_button.png")
	btnCloseEsc  = Button("close_esc", "close_esc.png")
	btnGoHome    = Button("go_home", "go_home.png")
	btnGoOutside = Button("go_outside", "go_outside.png")
	btnReconnect = Button("reconnect_button", "reconnect_button.png")
)

// Fog scouting
var (
	fogScoutCamp     = Button("scout_camp", "fog/scout_camp.png")
	fogExplore       = Button("explore_button", "fog/explore_button.png")
	fogConfirm       = Button("confirm_button", "fog/confirm_button.png")
	fogSecondConfirm = Button("second_confirm_button", "fog/second_confirm_button.png")
	fogSend          = Button("send_button", "fog/send_button.png")
	fogBack          = Button("back_button", "fog/back_button.png")
)

// Barbarian farming
var (
	barFind          = Button("find_bar_button", "barbarian/find_bar_button.png")
	barConfirmFind   = Button("confirm_find_button", "barbarian/confirm_find_button.png")
	barAttack        = Button("attack_button", "barbarian/attack_button.png")
	barCommander     = Button("commander_barbarian", "barbarian/commander_barbarian.png").WithThreshold(0.6)
	barTroopIcon     = Button("icon_troop_available", "barbarian/icon_troop_available.png").WithThreshold(0.6)
	barSendAvailable = Button("send_troop_available", "barbarian/send_troop_available.png")
	barAddTroop      = Button("add_troop_button", "barbarian/add_troop_button.png")
	barSelectTroop   = Button("select_troop_button", "barbarian/select_troop_button.png")
	barSendTroop     = Button("send_troop_button", "barbarian/send_troop_button.png")
	barRecall        = Button("recall_button", "barbarian/recall_button.png")
	barRecallConfirm = Button("recall_confirm", "barbarian/recall_confirm.png")
)

// Troop training
var (
	troopConfirm = Button("confirm_train", "troop/confirm_train.png").WithThreshold(0.8)
	troopAddRSS  = Button("add_rss", "troop/add_rss.png")
)

// trainer describes one training building
type trainer struct {
	house  ButtonSpec
	train  ButtonSpec
	marker ButtonSpec // in-training banner; zero Asset if the type has none
	hover  bool       // rest the pointer on the marker when found
}

func newTrainer(kind string) trainer {
	return trainer{
		house: Button(kind+"_house", "troop/"+kind+"_house.png"),
		train: Button(kind+"_train", "troop/"+kind+"_train.png"),
	}
}

var trainers = map[ActivityID]trainer{
	ActivityInfantry: newTrainer("infantry"),
	ActivityArchers:  newTrainer("archers"),
	ActivityCavalry: func() trainer {
		t := newTrainer("cavalry")
		t.marker = Button("cavalry_training_check", "troop/cavalry_training_check.png").WithThreshold(0.6)
		t.hover = true
		return t
	}(),
	ActivitySiege: func() trainer {
		t := newTrainer("siege")
		t.marker = Button("siege_training_check", "troop/siege_training_check.png").WithThreshold(0.9)
		return t
	}(),
}

// Resource gathering
var (
	rssFind         = Button("find_bar_button", "resources/find_bar_button.png")
	rssConfirmFind  = Button("confirm_find_button", "resources/confirm_find_button.png")
	rssGather       = Button("gather", "resources/gather.png")
	rssAddTroop     = Button("add_troop_button", "resources/add_troop_button.png")
	rssSendTroop    = Button("send_troop_button", "resources/send_troop_button.png")
	rssRemoveSecond = Button("remove_second_commander", "resources/remove_second_commander.png")
	rssSaveTroop    = Button("save_troop", "resources/save_troop.png").WithThreshold(0.8)
	rssHomeCenter   = Button("home_center", "resources/home_center.png")
	rssNodes        = []ButtonSpec{
		Button("lua", "resources/lua.png"),
		Button("go", "resources/go.png"),
		Button("da", "resources/da.png"),
	}
	rssHelpers = []ButtonSpec{
		Button("joan", "resources/joan.png").WithThreshold(0.8),
		Button("gaius", "resources/gaius.png").WithThreshold(0.8),
		Button("constance", "resources/constance.png").WithThreshold(0.8),
		Button("sarka", "resources/sarka.png").WithThreshold(0.8),
	}
)

// saveTroopOffset is where the keep-troops toggle sits relative to its label
var saveTroopOffset = Point{X: -30, Y: 0}

func homePreconditions() []Step {
	return []Step{DismissStep(btnHelp), DismissStep(btnCloseEsc), DismissStep(btnGoHome)}
}

func outsidePreconditions() []Step {
	return []Step{DismissStep(btnHelp), DismissStep(btnCloseEsc), DismissStep(btnGoOutside)}
}

func steps(groups ...[]Step) []Step {
	var out []Step
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

func trainingSteps(id ActivityID) []Step {
	t := trainers[id]
	if t.marker.Asset == "" {
		return steps(homePreconditions(), []Step{
			TryStep(t.house),
			TryStep(t.train),
			HookStep(hookConfirmTrain),
		})
	}
	return steps(homePreconditions(), []Step{
		HookStep(hookInTraining),
		TryStep(t.house),
		TryStep(t.house),
		TryStep(t.train),
		HookStep(hookConfirmTrainRSS),
	})
}

// activityTable maps every activity to its ordered steps
var activityTable = map[ActivityID]Activity{
	ActivityFog: {ID: ActivityFog, Steps: steps(homePreconditions(), []Step{
		TryStep(fogScoutCamp),
		TryStep(fogExplore),
		CommitStep(fogConfirm),
		CommitStep(fogSecondConfirm),
		CommitStep(fogSend),
	})},

	ActivityFogExplore: {ID: ActivityFogExplore, Steps: []Step{
		CommitStep(fogScoutCamp),
		WaitStep(2 * time.Second),
		CommitStep(fogExplore),
		CommitStep(fogConfirm),
		CommitStep(fogConfirm),
		CommitStep(fogSend),
		CommitStep(fogBack),
	}},

	ActivityBarbarian: {ID: ActivityBarbarian, Steps: steps([]Step{HookStep(hookStaminaGate)}, outsidePreconditions(), []Step{
		TryStep(barFind),
		CommitStep(barConfirmFind),
		CommitStep(barAttack),
		HookStep(hookCommanderBranch),
	})},

	ActivityBarbarianNoHome: {ID: ActivityBarbarianNoHome, Steps: steps(outsidePreconditions(), []Step{
		HookStep(hookTroopAvailable),
		TryStep(barFind),
		CommitStep(barConfirmFind),
		CommitStep(barAttack),
		CommitStep(barTroopIcon.WithThreshold(DefaultThreshold)),
		CommitStep(barSendAvailable),
	})},

	ActivityInfantry: {ID: ActivityInfantry, Steps: trainingSteps(ActivityInfantry)},
	ActivityArchers:  {ID: ActivityArchers, Steps: trainingSteps(ActivityArchers)},
	ActivityCavalry:  {ID: ActivityCavalry, Steps: trainingSteps(ActivityCavalry)},
	ActivitySiege:    {ID: ActivitySiege, Steps: trainingSteps(ActivitySiege)},

	ActivityResources: {ID: ActivityResources, Steps: steps([]Step{HookStep(hookHelpersActive)}, outsidePreconditions(), []Step{
		SilentStep(rssHomeCenter),
		WaitStep(500 * time.Millisecond),
		TryStep(rssFind),
		HookStep(hookPickResource),
		CommitStep(rssConfirmFind),
		TryStep(rssGather),
		CommitStep(rssAddTroop),
		SilentStep(rssRemoveSecond),
		HookStep(hookKeepTroops),
		CommitStep(rssSendTroop),
	})},

	ActivityReconnect: {ID: ActivityReconnect, Steps: []Step{
		HookStep(hookReconnect),
	}},
}

// ActivityButtons returns every button an activity may touch, including
// those only reached through hooks.
func ActivityButtons(id ActivityID, hooks map[string]Hook) []ButtonSpec {
	act, ok := activityTable[id]
	if !ok {
		return nil
	}
	out := Buttons(act.Steps)
	for _, s := range act.Steps {
		if s.Role == RoleHook {
			out = append(out, hooks[s.Hook].Buttons...)
		}
	}
	if t, ok := trainers[id]; ok && t.marker.Asset != "" {
		out = append(out, t.marker)
	}
	return out
}

// ProfileButtons returns every button a profile may touch
func ProfileButtons(p Profile, hooks map[string]Hook) []ButtonSpec {
	ids := p.Rotation.Distinct()
	if p.Reconnect {
		ids = append(ids, ActivityReconnect)
	}
	var out []ButtonSpec
	for _, id := range ids {
		out = append(out, ActivityButtons(id, hooks)...)
	}
	return out
}
