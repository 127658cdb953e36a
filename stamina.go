// Package main - stamina.go
//
// This file implements the StaminaReader: it finds the stamina icon, reads
// the "current/max" text to its right and parses the current value.
//
// Parsing:
// Patterns are tried in order, most specific first:
//   1. Thousands-separated current with the known 1,500 maximum
//   2. Thousands-separated current with any thousands-separated maximum
//   3. Any digits / any digits
// Thousands separators ('.' or ',') are stripped before conversion.
//
// Degradation:
// Every failure (anchor missing, capture failed, no recognizer, no pattern
// matched) returns 0. Callers treat 0 as unknown and proceed.
package main

import (
	"image"
	"regexp"
	"strconv"
	"strings"
)

var staminaPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(\d{1,3}(?:[.,]\d{3})*)\s*/\s*1[.,]?500\b`),
	regexp.MustCompile(`\b(\d{1,3}(?:[.,]\d{3})*)\s*/\s*\d{1,3}(?:[.,]\d{3})+\b`),
	regexp.MustCompile(`(\d+)\s*/\s*\d+`),
}

var separators = strings.NewReplacer(".", "", ",", "")

// ParseStamina extracts the current value from OCR text, 0 if unreadable
func ParseStamina(text string) int {
	for _, re := range staminaPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		v, err := strconv.Atoi(separators.Replace(m[1]))
		if err != nil {
			continue
		}
		return v
	}
	return 0
}

// StaminaReader reads the farming stamina readout
type StaminaReader struct {
	screen     ScreenCapture
	matcher    FrameLocator
	recognizer TextRecognizer
	anchor     ButtonSpec
	cropWidth  int
	padding    int
}

// NewStaminaReader creates a reader. recognizer may be nil.
func NewStaminaReader(screen ScreenCapture, matcher FrameLocator, recognizer TextRecognizer, cfg StaminaConfig) *StaminaReader {
	return &StaminaReader{
		screen:     screen,
		matcher:    matcher,
		recognizer: recognizer,
		anchor:     Button("stamina_icon", cfg.Anchor).WithThreshold(0.7),
		cropWidth:  cfg.CropWidth,
		padding:    cfg.CropPadding,
	}
}

// Anchor returns the icon the reader searches for
func (r *StaminaReader) Anchor() ButtonSpec {
	return r.anchor
}

// Read returns the current stamina or 0 if it cannot be determined.
//
// Algorithm:
//   1. Capture one frame
//   2. Locate the anchor icon in it
//   3. Crop cropWidth px to the right of the icon, padded vertically
//   4. OCR the crop in single-line then single-block mode
//   5. Return the first mode whose text parses
func (r *StaminaReader) Read() int {
	if r == nil || r.recognizer == nil {
		LogDebug("Stamina: no recognizer")
		return 0
	}

	frame, err := r.screen.Capture()
	if err != nil || frame == nil {
		LogDebug("Stamina: capture failed: %v", err)
		return 0
	}

	m := r.matcher.LocateIn(frame, r.anchor)
	if !m.Found {
		LogDebug("Stamina: anchor not found")
		return 0
	}

	region := r.region(m.Bounds).Intersect(frame.Bounds())
	if region.Empty() {
		LogDebug("Stamina: readout region outside frame")
		return 0
	}
	crop := cropImage(frame, region)

	for _, mode := range []OCRMode{OCRSingleLine, OCRSingleBlock} {
		text, err := r.recognizer.RecognizeText(crop, mode)
		if err != nil {
			LogDebug("Stamina OCR (%s) failed: %v", mode, err)
			continue
		}
		if v := ParseStamina(text); v > 0 {
			LogInfo("Stamina: %d (%s, %q)", v, mode, text)
			return v
		}
		LogDebug("Stamina OCR (%s) unparsed: %q", mode, text)
	}
	return 0
}

// region is the readout rectangle to the right of the anchor
func (r *StaminaReader) region(anchor Bounds) image.Rectangle {
	x := anchor.X + anchor.W
	return image.Rect(x, anchor.Y-r.padding, x+r.cropWidth, anchor.Y+anchor.H+r.padding)
}
