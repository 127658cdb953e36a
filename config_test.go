package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := NewConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	for _, name := range cfg.ProfileNames() {
		cfg.Profile = name
		if err := cfg.Validate(); err != nil {
			t.Errorf("profile %s: %v", name, err)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"unknown backend", func(c *Config) { c.Capture.Backend = "vnc" }, "unknown capture backend"},
		{"browser without url", func(c *Config) { c.Capture.Backend = BackendBrowser }, "browserUrl"},
		{"unknown motion", func(c *Config) { c.Motion.Mode = "teleport" }, "unknown motion mode"},
		{"inverted delay", func(c *Config) { c.Timing.Retry = Ms(900, 100) }, "timing.retry"},
		{"unknown profile", func(c *Config) { c.Profile = "nope" }, "unknown profile"},
		{"empty rotation", func(c *Config) {
			c.Profiles["fog-bar-troop"] = Profile{MaxRetries: 2}
		}, "empty rotation"},
		{"zero retries", func(c *Config) {
			c.Profiles["fog-bar-troop"] = Profile{Rotation: RotationTable{ActivityFog}}
		}, "maxRetries"},
		{"unknown activity", func(c *Config) {
			c.Profiles["fog-bar-troop"] = Profile{Rotation: RotationTable{"dragons"}, MaxRetries: 1}
		}, "unknown activity"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() = nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestStaminaCooldown(t *testing.T) {
	cfg := NewConfig()
	if got := cfg.Stamina.Cooldown().Minutes(); got != 10 {
		t.Errorf("Cooldown() = %vm, want 10m", got)
	}
}

func TestLoadConfigMissingWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Profile != "fog-bar-troop" {
		t.Errorf("profile = %q", cfg.Profile)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("defaults not written: %v", err)
	}

	again, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("reload error = %v", err)
	}
	if again.Timing.Retry != cfg.Timing.Retry || len(again.Profiles) != len(cfg.Profiles) {
		t.Errorf("round trip changed config: %+v", again.Timing)
	}
}

func TestLoadConfigReportsUnwritableDefaults(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	var out strings.Builder
	InitConsoleLogger(&out)
	defer CloseLogger()

	cfg, err := LoadConfig(filepath.Join(blocker, "config.json"))
	if err != nil || cfg == nil {
		t.Fatalf("LoadConfig() = %v, %v; want defaults", cfg, err)
	}
	if !strings.Contains(out.String(), "Failed to write default config") {
		t.Errorf("console output = %q", out.String())
	}
}

func TestLoadConfigOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{"profile": "fog-bar", "timing": {"startupMs": 0}, "stamina": {"minimum": 80}}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Profile != "fog-bar" || cfg.Timing.StartupMs != 0 || cfg.Stamina.Minimum != 80 {
		t.Errorf("overlay not applied: %+v", cfg)
	}
	if cfg.Timing.Step != Ms(1500, 2500) {
		t.Errorf("missing key lost its default: %+v", cfg.Timing.Step)
	}
	if cfg.Stamina.Anchor == "" || !cfg.Stamina.Enabled {
		t.Errorf("stamina defaults lost: %+v", cfg.Stamina)
	}
	if _, ok := cfg.Profiles["bar-farm"]; !ok {
		t.Error("built-in profiles missing")
	}
}

func TestLoadConfigCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("corrupt config accepted")
	}
}

func TestProfileButtonsCoverHooks(t *testing.T) {
	hooks := DefaultHooks()
	for _, act := range activityTable {
		for _, s := range act.Steps {
			if s.Role == RoleHook {
				if _, ok := hooks[s.Hook]; !ok {
					t.Errorf("%s: hook %q not registered", act.ID, s.Hook)
				}
			}
		}
	}

	has := func(buttons []ButtonSpec, name string) bool {
		for _, b := range buttons {
			if b.Name == name {
				return true
			}
		}
		return false
	}

	cfg := NewConfig()
	rss := ProfileButtons(cfg.Profiles["fog-troop-rss"], hooks)
	for _, name := range []string{"reconnect_button", "joan", "lua", "save_troop", "cavalry_training_check", "add_rss"} {
		if !has(rss, name) {
			t.Errorf("fog-troop-rss buttons missing %s", name)
		}
	}
	bar := ProfileButtons(cfg.Profiles["fog-bar"], hooks)
	for _, name := range []string{"recall_button", "recall_confirm", "commander_barbarian", "select_troop_button"} {
		if !has(bar, name) {
			t.Errorf("fog-bar buttons missing %s", name)
		}
	}
	if has(bar, "reconnect_button") {
		t.Error("fog-bar includes reconnect without the flag")
	}

	for _, b := range allButtons(hooks) {
		if b.Asset == "" || b.Threshold < 0.6 || b.Threshold > 0.9 {
			t.Errorf("button %s: asset %q threshold %v", b.Name, b.Asset, b.Threshold)
		}
	}
}
