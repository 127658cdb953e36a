// Package main - debug.go
//
// This file implements centralized logging and debug frame dumps.
//
// Major Components:
//
// 1. Logging System:
//    - zerolog logger fanned out to two writers
//    - Console: human-readable ConsoleWriter at the configured console level
//    - File: JSON lines rotated by lumberjack (logs/bot.log)
//    - Global logger instance accessible via convenience functions
//
// 2. Debug Frames:
//    - When enabled, screenshots of failed committed actions are saved
//      to the debug directory for later inspection with -match
//
// Logging Levels:
//   - DEBUG: Transient not-found, match scores, OCR raw text
//   - INFO: Clicks, branch choices, activity outcomes, cycle summaries
//   - WARN: Retry exhaustion, OCR unavailable, capture failures
//   - ERROR: Recovered panics, fatal start-up problems
package main

import (
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/vcaesar/imgo"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	logger     = zerolog.Nop()
	logFile    io.Closer
	debugDir   string
	saveFrames bool
)

// InitLogger initializes the global logger.
//
// Parameters:
//   - cfg: Logging section of the configuration
//
// Returns:
//   - error: Log directory creation or level parse error, nil on success
//
// Writers:
//   1. Console writer on stdout filtered to cfg.ConsoleLevel
//   2. Rotating JSON file (10MB, 3 backups, 7 days) at cfg.FileLevel
func InitLogger(cfg LogConfig) error {
	consoleLevel, err := zerolog.ParseLevel(strings.ToLower(cfg.ConsoleLevel))
	if err != nil {
		return fmt.Errorf("console log level %q: %w", cfg.ConsoleLevel, err)
	}
	fileLevel, err := zerolog.ParseLevel(strings.ToLower(cfg.FileLevel))
	if err != nil {
		return fmt.Errorf("file log level %q: %w", cfg.FileLevel, err)
	}

	if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create log dir: %w", err)
	}

	lj := &lumberjack.Logger{
		Filename:   filepath.Join(cfg.Dir, "bot.log"),
		MaxSize:    10, // 10MB
		MaxBackups: 3,
		MaxAge:     7,
		LocalTime:  true,
	}

	console := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.TimeOnly}

	writer := zerolog.MultiLevelWriter(
		&zerolog.FilteredLevelWriter{
			Writer: zerolog.LevelWriterAdapter{Writer: console},
			Level:  consoleLevel,
		},
		&zerolog.FilteredLevelWriter{
			Writer: zerolog.LevelWriterAdapter{Writer: lj},
			Level:  fileLevel,
		},
	)

	logger = zerolog.New(writer).With().Timestamp().Logger()
	logFile = lj

	LogInfo("Logger initialized (console=%s file=%s)", consoleLevel, fileLevel)
	return nil
}

// InitConsoleLogger installs a console-only logger at info level, used
// until the configuration has been read and InitLogger replaces it
func InitConsoleLogger(w io.Writer) {
	console := zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	logger = zerolog.New(console).Level(zerolog.InfoLevel).With().Timestamp().Logger()
}

// CloseLogger flushes and closes the log file
func CloseLogger() {
	if logFile != nil {
		LogInfo("Logger closing")
		logFile.Close()
		logFile = nil
	}
	logger = zerolog.Nop()
}

// Log returns the global logger for structured events
func Log() *zerolog.Logger {
	return &logger
}

// LogDebug is a convenience function for debug logging
func LogDebug(format string, v ...interface{}) {
	logger.Debug().Msgf(format, v...)
}

// LogInfo is a convenience function for info logging
func LogInfo(format string, v ...interface{}) {
	logger.Info().Msgf(format, v...)
}

// LogWarn is a convenience function for warning logging
func LogWarn(format string, v ...interface{}) {
	logger.Warn().Msgf(format, v...)
}

// LogError is a convenience function for error logging
func LogError(format string, v ...interface{}) {
	logger.Error().Msgf(format, v...)
}

// EnableDebugFrames turns on frame dumps into dir
func EnableDebugFrames(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create debug dir: %w", err)
	}
	debugDir = dir
	saveFrames = true
	return nil
}

// SaveDebugFrame writes img as <debugDir>/<timestamp>_<label>.png.
// It is a no-op unless debug frames are enabled.
func SaveDebugFrame(label string, img image.Image) {
	if !saveFrames || img == nil {
		return
	}
	name := fmt.Sprintf("%s_%s.png", time.Now().Format("20060102_150405.000"), sanitizeLabel(label))
	path := filepath.Join(debugDir, name)
	if err := imgo.Save(path, img); err != nil {
		LogWarn("Failed to save debug frame %s: %v", path, err)
		return
	}
	LogDebug("Saved debug frame %s", path)
}

func sanitizeLabel(label string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, label)
}
