// Package main - config.go
//
// This file defines the bot configuration and its defaults.
//
// Configuration Sections:
//   - Capture: Which screen/input backend to use (robotgo, screenshot, browser)
//   - Motion: Direct or humanized pointer movement parameters
//   - Timing: Randomized delay windows between steps, buttons, retries and activities
//   - Stamina: Farming stamina gate and recovery cooldown
//   - OCR: Injected tesseract data location and languages
//   - Hotkey: Stop key for the global key listener
//   - Log/Debug: Log levels, log directory and debug frame dumps
//   - Profiles: Named rotation tables with their retry budgets
//
// Defaults reproduce the behaviour of the combo bots: 2 retries for committed
// actions, 1.5-2.5s settle delays and 1.3-1.5s between activities.
package main

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// Capture backends
const (
	BackendRobotgo    = "robotgo"
	BackendScreenshot = "screenshot"
	BackendBrowser    = "browser"
)

// Motion modes
const (
	MotionDirect    = "direct"
	MotionHumanized = "humanized"
)

// CaptureConfig selects the screen/input provider
type CaptureConfig struct {
	Backend         string `json:"backend"`
	Display         int    `json:"display"`
	BrowserURL      string `json:"browserUrl"`
	BrowserHeadless bool   `json:"browserHeadless"`
}

// MotionConfig controls the click executor
type MotionConfig struct {
	Mode              string     `json:"mode"`
	HumanizeThreshold float64    `json:"humanizeThreshold"`
	DirectDurationMs  int        `json:"directDurationMs"`
	Duration          DelayRange `json:"duration"`
	OvershootChance   float64    `json:"overshootChance"`
	StepMs            int        `json:"stepMs"`
}

// TimingConfig holds every randomized delay window
type TimingConfig struct {
	Step      DelayRange `json:"step"`
	Button    DelayRange `json:"button"`
	Retry     DelayRange `json:"retry"`
	Switch    DelayRange `json:"switch"`
	StartupMs int        `json:"startupMs"`
}

// StaminaConfig controls the farming stamina gate
type StaminaConfig struct {
	Enabled         bool   `json:"enabled"`
	Minimum         int    `json:"minimum"`
	CooldownMinutes int    `json:"cooldownMinutes"`
	Anchor          string `json:"anchor"`
	CropWidth       int    `json:"cropWidth"`
	CropPadding     int    `json:"cropPadding"`
}

// Cooldown returns the recovery window as a duration
func (s StaminaConfig) Cooldown() time.Duration {
	return time.Duration(s.CooldownMinutes) * time.Minute
}

// OCRConfig describes the text recognizer
type OCRConfig struct {
	Enabled        bool     `json:"enabled"`
	TessdataPrefix string   `json:"tessdataPrefix"`
	Languages      []string `json:"languages"`
}

// HotkeyConfig describes the stop key listener
type HotkeyConfig struct {
	Enabled bool   `json:"enabled"`
	StopKey string `json:"stopKey"`
}

// LogConfig describes logger outputs
type LogConfig struct {
	Dir          string `json:"dir"`
	ConsoleLevel string `json:"consoleLevel"`
	FileLevel    string `json:"fileLevel"`
}

// DebugConfig controls debug frame dumps
type DebugConfig struct {
	SaveFrames bool   `json:"saveFrames"`
	Dir        string `json:"dir"`
}

// Profile is one named rotation of activities
type Profile struct {
	Rotation   RotationTable `json:"rotation"`
	MaxRetries int           `json:"maxRetries"`
	Reconnect  bool          `json:"reconnect"`
}

// Config holds all bot settings
type Config struct {
	AssetDir string             `json:"assetDir"`
	Profile  string             `json:"profile"`
	Capture  CaptureConfig      `json:"capture"`
	Motion   MotionConfig       `json:"motion"`
	Timing   TimingConfig       `json:"timing"`
	Stamina  StaminaConfig      `json:"stamina"`
	OCR      OCRConfig          `json:"ocr"`
	Hotkey   HotkeyConfig       `json:"hotkey"`
	Log      LogConfig          `json:"log"`
	Debug    DebugConfig        `json:"debug"`
	Profiles map[string]Profile `json:"profiles"`
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		AssetDir: "assets",
		Profile:  "fog-bar-troop",
		Capture: CaptureConfig{
			Backend:         BackendRobotgo,
			Display:         0,
			BrowserURL:      "",
			BrowserHeadless: false,
		},
		Motion: MotionConfig{
			Mode:              MotionHumanized,
			HumanizeThreshold: 50,
			DirectDurationMs:  200,
			Duration:          Ms(80, 350),
			OvershootChance:   0.3,
			StepMs:            8,
		},
		Timing: TimingConfig{
			Step:      Ms(1500, 2500),
			Button:    Ms(1500, 2500),
			Retry:     Ms(1500, 2500),
			Switch:    Ms(1300, 1500),
			StartupMs: 2000,
		},
		Stamina: StaminaConfig{
			Enabled:         true,
			Minimum:         50,
			CooldownMinutes: 10,
			Anchor:          "barbarian/stamina_icon.png",
			CropWidth:       160,
			CropPadding:     6,
		},
		OCR: OCRConfig{
			Enabled:        true,
			TessdataPrefix: "",
			Languages:      []string{"eng"},
		},
		Hotkey: HotkeyConfig{
			Enabled: true,
			StopKey: "f12",
		},
		Log: LogConfig{
			Dir:          "logs",
			ConsoleLevel: "info",
			FileLevel:    "debug",
		},
		Debug: DebugConfig{
			SaveFrames: false,
			Dir:        "debug",
		},
		Profiles: DefaultProfiles(),
	}
}

// DefaultProfiles returns the built-in rotation profiles
func DefaultProfiles() map[string]Profile {
	return map[string]Profile{
		"fog-bar": {
			Rotation:   RotationTable{ActivityFog, ActivityBarbarian},
			MaxRetries: 2,
		},
		"fog-bar-troop": {
			Rotation: RotationTable{
				ActivityFog, ActivityBarbarian,
				ActivityInfantry, ActivityArchers, ActivityCavalry, ActivitySiege,
			},
			MaxRetries: 2,
		},
		"fog-troop-rss": {
			Rotation: RotationTable{
				ActivityFog, ActivityInfantry,
				ActivityFog, ActivityResources, ActivityArchers,
				ActivityFog, ActivityResources, ActivityCavalry,
				ActivityFog, ActivityResources, ActivitySiege,
			},
			MaxRetries: 2,
			Reconnect:  true,
		},
		"fog-scout": {
			Rotation:   RotationTable{ActivityFogExplore},
			MaxRetries: 200,
		},
		"bar-farm": {
			Rotation:   RotationTable{ActivityBarbarianNoHome},
			MaxRetries: 50,
		},
	}
}

// ProfileNames returns the configured profile names, sorted
func (c *Config) ProfileNames() []string {
	names := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ActiveProfile returns the selected profile
func (c *Config) ActiveProfile() (Profile, error) {
	p, ok := c.Profiles[c.Profile]
	if !ok {
		return Profile{}, fmt.Errorf("unknown profile %q (available: %v)", c.Profile, c.ProfileNames())
	}
	return p, nil
}

// Validate checks the configuration for values the bot cannot run with
func (c *Config) Validate() error {
	var errs []error

	switch c.Capture.Backend {
	case BackendRobotgo, BackendScreenshot:
	case BackendBrowser:
		if c.Capture.BrowserURL == "" {
			errs = append(errs, errors.New("capture.browserUrl is required for the browser backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown capture backend %q", c.Capture.Backend))
	}

	if c.Motion.Mode != MotionDirect && c.Motion.Mode != MotionHumanized {
		errs = append(errs, fmt.Errorf("unknown motion mode %q", c.Motion.Mode))
	}

	for name, d := range map[string]DelayRange{
		"timing.step":     c.Timing.Step,
		"timing.button":   c.Timing.Button,
		"timing.retry":    c.Timing.Retry,
		"timing.switch":   c.Timing.Switch,
		"motion.duration": c.Motion.Duration,
	} {
		if d.MinMs < 0 || d.MaxMs < d.MinMs {
			errs = append(errs, fmt.Errorf("%s: invalid range %d-%dms", name, d.MinMs, d.MaxMs))
		}
	}

	p, err := c.ActiveProfile()
	if err != nil {
		errs = append(errs, err)
	} else {
		if len(p.Rotation) == 0 {
			errs = append(errs, fmt.Errorf("profile %q has an empty rotation", c.Profile))
		}
		if p.MaxRetries < 1 {
			errs = append(errs, fmt.Errorf("profile %q: maxRetries must be at least 1", c.Profile))
		}
		for _, id := range p.Rotation {
			if _, ok := activityTable[id]; !ok {
				errs = append(errs, fmt.Errorf("profile %q: unknown activity %q", c.Profile, id))
			}
		}
	}

	return errors.Join(errs...)
}
