// Package main - main.go
//
// Entry point of the bot. Wires configuration, logging, the screen/input
// backend, the matcher, OCR, the activity interpreter and the scheduler.
//
// Flags:
//   -config <path>   Configuration file (default config.json, created if missing)
//   -profile <name>  Rotation profile to run (overrides the config file)
//   -validate        Check that every asset of the profile loads, then exit
//   -match <png>     Offline match mode against a saved screenshot
//   -no-hotkey       Do not install the global stop key listener
//
// Exit Codes:
//   0: Clean stop (stop key, SIGINT/SIGTERM, or -validate/-match success)
//   1: Fatal start-up error (config, logger, backend, missing assets)
//   2: Unhandled panic
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"
)

// Bot owns every long-lived component of a run
type Bot struct {
	cfg       *Config
	profile   Profile
	clock     Clock
	provider  *Provider
	assets    *AssetStore
	ocr       *TesseractRecognizer
	hooks     map[string]Hook
	scheduler *ActivityScheduler
}

// NewBot assembles the bot for the active profile.
//
// Initialization Sequence:
//   1. Resolve the profile
//   2. Open the screen/input backend
//   3. Create the asset store and template matcher
//   4. Start OCR (optional; stamina reads as unknown without it)
//   5. Build click executor, button actions, probes and the interpreter
//   6. Build the scheduler over the profile rotation
func NewBot(cfg *Config) (*Bot, error) {
	profile, err := cfg.ActiveProfile()
	if err != nil {
		return nil, err
	}

	provider, err := NewProvider(cfg.Capture)
	if err != nil {
		return nil, fmt.Errorf("capture backend: %w", err)
	}

	b := &Bot{
		cfg:      cfg,
		profile:  profile,
		clock:    RealClock(),
		provider: provider,
		assets:   NewAssetStore(cfg.AssetDir),
		hooks:    DefaultHooks(),
	}

	var recognizer TextRecognizer
	if ocr, err := NewTesseractRecognizer(cfg.OCR); err != nil {
		LogWarn("OCR unavailable, stamina gate disabled: %v", err)
	} else {
		b.ocr = ocr
		recognizer = ocr
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	matcher := NewTemplateMatcher(provider.Screen, b.assets)
	clicker := NewClickExecutor(provider.Input, b.clock, cfg.Motion, rng)

	env := &Env{
		Actions: NewButtonAction(matcher, clicker, b.clock, cfg.Timing, profile.MaxRetries, rng),
		Probe:   NewStateProbe(matcher, clicker),
		Config:  cfg,
	}
	if recognizer != nil {
		env.Stamina = NewStaminaReader(provider.Screen, matcher, recognizer, cfg.Stamina)
	}

	b.scheduler = NewActivityScheduler(NewInterpreter(env, b.hooks), b.clock, SchedulerOptions{
		Rotation:    profile.Rotation,
		SwitchDelay: cfg.Timing.Switch,
		Cooldown:    cfg.Stamina.Cooldown(),
		Reconnect:   profile.Reconnect,
		Rand:        rng,
		Summary:     os.Stdout,
	})
	return b, nil
}

// RequiredButtons returns every asset the profile can reach
func (b *Bot) RequiredButtons() []ButtonSpec {
	buttons := ProfileButtons(b.profile, b.hooks)
	if b.cfg.Stamina.Enabled && b.ocr != nil {
		for _, id := range b.profile.Rotation {
			if id == ActivityBarbarian {
				buttons = append(buttons, Button("stamina_icon", b.cfg.Stamina.Anchor))
				break
			}
		}
	}
	return buttons
}

// Validate loads every reachable asset once
func (b *Bot) Validate() error {
	return b.assets.Validate(b.RequiredButtons())
}

// Run waits the start-up delay and then runs the scheduler until ctx ends
func (b *Bot) Run(ctx context.Context) error {
	LogInfo("Starting in %dms (profile=%s, %d activities, %d retries)",
		b.cfg.Timing.StartupMs, b.cfg.Profile, len(b.profile.Rotation), b.profile.MaxRetries)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(time.Duration(b.cfg.Timing.StartupMs) * time.Millisecond):
	}

	return b.scheduler.Run(ctx)
}

// Close releases all resources
func (b *Bot) Close() {
	b.scheduler.Stats().PrintSummary(os.Stdout)
	if b.ocr != nil {
		b.ocr.Close()
	}
	b.assets.Close()
	b.provider.Close()
}

func main() {
	os.Exit(run())
}

// run is main with an exit code, so deferred cleanup always executes.
func run() (code int) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "PANIC: %v\n", r)
			LogError("PANIC in main: %v", r)
			CloseLogger()
			code = 2
		}
	}()

	configPath := flag.String("config", defaultConfigFile, "configuration file")
	profileName := flag.String("profile", "", "rotation profile to run")
	validateOnly := flag.Bool("validate", false, "validate assets and exit")
	matchShot := flag.String("match", "", "score every asset against a saved screenshot")
	noHotkey := flag.Bool("no-hotkey", false, "disable the global stop key")
	flag.Parse()

	InitConsoleLogger(os.Stdout)
	cfg, err := LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}
	if *profileName != "" {
		cfg.Profile = *profileName
	}

	if err := InitLogger(cfg.Log); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}
	defer func() {
		LogInfo("=== RoK Bot Shutdown ===")
		CloseLogger()
	}()

	LogInfo("=== RoK Bot Started (%s/%s) ===", runtime.GOOS, runtime.GOARCH)

	if cfg.Debug.SaveFrames {
		if err := EnableDebugFrames(cfg.Debug.Dir); err != nil {
			LogWarn("Debug frames disabled: %v", err)
		}
	}

	if *matchShot != "" {
		if err := MatchMode(*matchShot, "result.png", cfg, os.Stdout); err != nil {
			LogError("Match mode failed: %v", err)
			return 1
		}
		return 0
	}

	if err := cfg.Validate(); err != nil {
		LogError("Invalid configuration: %v", err)
		return 1
	}

	bot, err := NewBot(cfg)
	if err != nil {
		LogError("Failed to create bot: %v", err)
		return 1
	}
	defer bot.Close()

	if err := bot.Validate(); err != nil {
		LogError("Asset validation failed: %v", err)
		return 1
	}
	if *validateOnly {
		LogInfo("Assets OK")
		return 0
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if cfg.Hotkey.Enabled && !*noHotkey {
		stop := StartStopListener(cfg.Hotkey.StopKey, cancel)
		defer stop()
	}

	if err := bot.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		LogError("Bot stopped with error: %v", err)
		return 1
	}
	LogInfo("Bot stopped cleanly")
	return 0
}
