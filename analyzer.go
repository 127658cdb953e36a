// Package main - analyzer.go
//
// Image analysis module: locates reference images inside the live screen.
//
// Key responsibilities:
//   - Reference image loading and caching (AssetStore)
//   - Grayscale normalized cross-correlation (TM_CCOEFF_NORMED) via gocv
//   - Strict threshold acceptance (score must exceed the threshold)
//   - Start-up validation of every asset a profile references
//
// Failure Model:
// Capture failures and asset load failures are soft: Locate returns a
// no-match result and logs at debug level. Callers treat this exactly like
// "button not on screen yet" and keep retrying.
package main

import (
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gocv.io/x/gocv"
)

// ErrAssetMissing is returned when a reference image cannot be loaded
var ErrAssetMissing = errors.New("asset missing")

// Locator finds a button on the current screen
type Locator interface {
	Locate(spec ButtonSpec) MatchResult
}

// FrameLocator finds a button inside an already captured frame
type FrameLocator interface {
	LocateIn(frame image.Image, spec ButtonSpec) MatchResult
}

// correlator scores the best placement of an asset inside a frame
type correlator interface {
	Correlate(frame image.Image, asset string) (score float64, at Bounds, err error)
}

// acceptMatch implements the strict greater-than threshold rule
func acceptMatch(score, threshold float64) bool {
	return score > threshold
}

// AssetStore loads reference images from disk as grayscale Mats.
//
// Templates are loaded lazily and cached for the lifetime of the process.
// Load failures are not cached so a file fixed on disk is picked up on
// the next attempt.
type AssetStore struct {
	dir   string
	mu    sync.Mutex
	cache map[string]gocv.Mat
}

// NewAssetStore creates an asset store rooted at dir
func NewAssetStore(dir string) *AssetStore {
	return &AssetStore{
		dir:   dir,
		cache: make(map[string]gocv.Mat),
	}
}

// Path resolves an asset name to a file path
func (s *AssetStore) Path(asset string) string {
	return filepath.Join(s.dir, filepath.FromSlash(asset))
}

// Template returns the grayscale reference image for asset
func (s *AssetStore) Template(asset string) (gocv.Mat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if mat, ok := s.cache[asset]; ok {
		return mat, nil
	}

	path := s.Path(asset)
	mat := gocv.IMRead(path, gocv.IMReadGrayScale)
	if mat.Empty() {
		mat.Close()
		return gocv.Mat{}, fmt.Errorf("%w: %s", ErrAssetMissing, path)
	}

	s.cache[asset] = mat
	return mat, nil
}

// Validate loads every distinct asset and reports all that fail.
//
// Returns:
//   - error: nil if all assets load, otherwise one error naming every missing file
func (s *AssetStore) Validate(specs []ButtonSpec) error {
	seen := make(map[string]bool)
	var missing []string
	for _, spec := range specs {
		if seen[spec.Asset] {
			continue
		}
		seen[spec.Asset] = true
		if _, err := s.Template(spec.Asset); err != nil {
			missing = append(missing, s.Path(spec.Asset))
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("%w (%d): %s", ErrAssetMissing, len(missing), strings.Join(missing, ", "))
	}
	LogInfo("Validated %d assets in %s", len(seen), s.dir)
	return nil
}

// Close releases all cached Mats
func (s *AssetStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name, mat := range s.cache {
		mat.Close()
		delete(s.cache, name)
	}
}

// Correlate runs grayscale NCC of the asset over the frame.
//
// Algorithm:
//   1. Load (cached) grayscale template
//   2. Convert the frame to a BGR Mat, then to single channel
//   3. Reject templates larger than the frame
//   4. MatchTemplate with TmCcoeffNormed, take the MinMaxLoc maximum
func (s *AssetStore) Correlate(frame image.Image, asset string) (float64, Bounds, error) {
	tmpl, err := s.Template(asset)
	if err != nil {
		return 0, Bounds{}, err
	}

	screen, err := grayMat(frame)
	if err != nil {
		return 0, Bounds{}, err
	}
	defer screen.Close()

	score, loc, err := bestMatch(screen, tmpl)
	if err != nil {
		return 0, Bounds{}, err
	}
	return score, NewBounds(loc.X, loc.Y, tmpl.Cols(), tmpl.Rows()), nil
}

// grayMat converts an image into a single-channel Mat
func grayMat(img image.Image) (gocv.Mat, error) {
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("convert frame: %w", err)
	}
	defer mat.Close()

	gray := gocv.NewMat()
	gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)
	return gray, nil
}

// bestMatch returns the best TM_CCOEFF_NORMED score and its top-left corner
func bestMatch(screen, tmpl gocv.Mat) (float64, image.Point, error) {
	if tmpl.Cols() > screen.Cols() || tmpl.Rows() > screen.Rows() {
		return 0, image.Point{}, fmt.Errorf("template %dx%d larger than screen %dx%d",
			tmpl.Cols(), tmpl.Rows(), screen.Cols(), screen.Rows())
	}

	result := gocv.NewMat()
	defer result.Close()
	mask := gocv.NewMat()
	defer mask.Close()

	gocv.MatchTemplate(screen, tmpl, &result, gocv.TmCcoeffNormed, mask)
	_, maxVal, _, maxLoc := gocv.MinMaxLoc(result)
	return float64(maxVal), maxLoc, nil
}

// TemplateMatcher locates buttons on the live screen.
type TemplateMatcher struct {
	screen    ScreenCapture
	corr      correlator
	lastFrame image.Image
}

// NewTemplateMatcher creates a matcher over a screen and an asset store
func NewTemplateMatcher(screen ScreenCapture, assets *AssetStore) *TemplateMatcher {
	return &TemplateMatcher{screen: screen, corr: assets}
}

// Locate captures the screen and searches it for spec
func (m *TemplateMatcher) Locate(spec ButtonSpec) MatchResult {
	frame, err := m.screen.Capture()
	if err != nil || frame == nil {
		LogDebug("Capture failed while locating %s: %v", spec.Name, err)
		return MatchResult{}
	}
	m.lastFrame = frame
	return m.LocateIn(frame, spec)
}

// LocateIn searches an existing frame for spec
func (m *TemplateMatcher) LocateIn(frame image.Image, spec ButtonSpec) MatchResult {
	score, at, err := m.corr.Correlate(frame, spec.Asset)
	if err != nil {
		LogDebug("Locate %s: %v", spec.Name, err)
		return MatchResult{}
	}

	if !acceptMatch(score, spec.Threshold) {
		LogDebug("%s not found (score %.3f <= %.2f)", spec.Name, score, spec.Threshold)
		return MatchResult{Score: score}
	}

	LogDebug("%s found at (%d, %d) score %.3f", spec.Name, at.X, at.Y, score)
	return MatchResult{Found: true, Bounds: at, Score: score}
}

// LastFrame returns the most recent captured frame, if any
func (m *TemplateMatcher) LastFrame() image.Image {
	return m.lastFrame
}
