// Package main - train.go
//
// Offline match mode for tuning thresholds and checking assets.
// Loads a saved screenshot, scores every known button against it, draws the
// best location of each button and saves the result.
//
// Usage:
//   1. Save a screenshot of the game (or use a frame from the debug dir)
//   2. Run: rok-bot -match shot.png
//   3. Read the score table on the console, check result.png
//
// Boxes are green for a hit (score > threshold) and red for a miss.
package main

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"sort"

	"github.com/vcaesar/imgo"
	"gocv.io/x/gocv"
)

// staticScreen replays one image as the screen
type staticScreen struct {
	img image.Image
}

func (s staticScreen) Capture() (image.Image, error) {
	return s.img, nil
}

// matchRow is one line of the offline report
type matchRow struct {
	spec  ButtonSpec
	score float64
	at    Bounds
	err   error
}

func (r matchRow) hit() bool {
	return r.err == nil && acceptMatch(r.score, r.spec.Threshold)
}

// allButtons returns every distinct button of every activity, sorted by asset
func allButtons(hooks map[string]Hook) []ButtonSpec {
	seen := make(map[string]bool)
	var out []ButtonSpec
	for id := range activityTable {
		for _, b := range ActivityButtons(id, hooks) {
			key := b.Asset + fmt.Sprintf("@%.2f", b.Threshold)
			if !seen[key] {
				seen[key] = true
				out = append(out, b)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Asset != out[j].Asset {
			return out[i].Asset < out[j].Asset
		}
		return out[i].Threshold < out[j].Threshold
	})
	return out
}

// MatchMode runs every button against a saved screenshot.
//
// Parameters:
//   - shotPath: Screenshot to analyse
//   - outPath: Annotated output image
//   - cfg: Configuration (asset dir, OCR, stamina anchor)
//   - w: Report destination
//
// Returns:
//   - error: Screenshot load or result save error
func MatchMode(shotPath, outPath string, cfg *Config, w io.Writer) error {
	LogInfo("=== Match Mode Started ===")

	img, err := imgo.Read(shotPath)
	if err != nil {
		return fmt.Errorf("load %s: %w", shotPath, err)
	}
	LogInfo("Image loaded: %dx%d", img.Bounds().Dx(), img.Bounds().Dy())

	assets := NewAssetStore(cfg.AssetDir)
	defer assets.Close()

	var rows []matchRow
	for _, spec := range allButtons(DefaultHooks()) {
		score, at, err := assets.Correlate(img, spec.Asset)
		rows = append(rows, matchRow{spec: spec, score: score, at: at, err: err})
	}

	fmt.Fprintf(w, "%-48s %6s %6s  %s\n", "asset", "score", "thr", "result")
	for _, r := range rows {
		switch {
		case r.err != nil:
			fmt.Fprintf(w, "%-48s %6s %6.2f  error: %v\n", r.spec.Asset, "-", r.spec.Threshold, r.err)
		case r.hit():
			fmt.Fprintf(w, "%-48s %6.3f %6.2f  HIT at (%d, %d)\n", r.spec.Asset, r.score, r.spec.Threshold, r.at.X, r.at.Y)
		default:
			fmt.Fprintf(w, "%-48s %6.3f %6.2f  miss\n", r.spec.Asset, r.score, r.spec.Threshold)
		}
	}

	if rec, err := NewTesseractRecognizer(cfg.OCR); err == nil {
		screen := staticScreen{img: img}
		reader := NewStaminaReader(screen, NewTemplateMatcher(screen, assets), rec, cfg.Stamina)
		fmt.Fprintf(w, "stamina: %d\n", reader.Read())
		rec.Close()
	} else {
		LogDebug("Stamina check skipped: %v", err)
	}

	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return fmt.Errorf("convert image: %w", err)
	}
	defer mat.Close()

	green := color.RGBA{0, 255, 0, 255}
	red := color.RGBA{255, 0, 0, 255}
	for _, r := range rows {
		if r.err != nil {
			continue
		}
		col := red
		if r.hit() {
			col = green
		}
		rect := image.Rect(r.at.X, r.at.Y, r.at.X+r.at.W, r.at.Y+r.at.H)
		gocv.Rectangle(&mat, rect, col, 2)
		gocv.PutText(&mat, fmt.Sprintf("%s %.2f", r.spec.Name, r.score),
			image.Pt(r.at.X, r.at.Y-4), gocv.FontHersheyPlain, 1.0, col, 1)
	}

	if ok := gocv.IMWrite(outPath, mat); !ok {
		return fmt.Errorf("failed to write %s", outPath)
	}
	LogInfo("=== Match Mode Complete: %s ===", outPath)
	return nil
}
