// Package main - persistence.go
//
// This file loads and saves the bot configuration (config.json).
//
// File Format:
// JSON with 2-space indentation for readability. Example structure:
// {
//   "assetDir": "assets",
//   "profile": "fog-bar-troop",
//   "timing": {
//     "step": { "minMs": 1500, "maxMs": 2500 },
//     ...
//   },
//   "profiles": {
//     "fog-bar": { "rotation": ["fog", "barbarian"], "maxRetries": 2 },
//     ...
//   }
// }
//
// Load Behavior:
//   - If the file exists: Decode over the defaults, so missing keys keep defaults
//   - If the file doesn't exist: Use defaults and write them back for editing
//   - If the file is corrupted: Return an error (the bot refuses to start)
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

const defaultConfigFile = "config.json"

// SaveConfig writes the configuration to path.
//
// Parameters:
//   - path: Destination file, created or truncated
//   - cfg: Configuration to encode
//
// Returns:
//   - error: File creation or encoding error, nil on success
func SaveConfig(path string, cfg *Config) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	LogInfo("Config saved to %s", path)
	return nil
}

// LoadConfig reads the configuration from path.
//
// Returns:
//   - *Config: Defaults overlaid with the file contents
//   - error: Read or decode error; a missing file is not an error
func LoadConfig(path string) (*Config, error) {
	cfg := NewConfig()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		LogInfo("No config at %s, using defaults", path)
		if err := SaveConfig(path, cfg); err != nil {
			LogWarn("Failed to write default config: %v", err)
		}
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	if len(cfg.Profiles) == 0 {
		cfg.Profiles = DefaultProfiles()
	}

	LogInfo("Config loaded from %s (profile=%s)", path, cfg.Profile)
	return cfg, nil
}
