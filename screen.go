// Package main - screen.go
//
// This file implements the desktop screen/input provider.
//
// Interfaces:
//   - ScreenCapture: Full-screen image of the game display
//   - InputDevice: Synchronous pointer moves, clicks and key presses
//
// Backends:
//   - robotgo: Capture via robotgo.CaptureScreen, input via robotgo
//   - screenshot: Capture via kbinani/screenshot (multi-monitor aware),
//     input via robotgo translated by the display origin
//   - browser: See browser.go
//
// Coordinates:
// All points handed to InputDevice are in capture space (pixel 0,0 is the
// top-left of the captured image). Backends translate to global desktop
// coordinates when the captured display is not at the desktop origin.
package main

import (
	"errors"
	"fmt"
	"image"

	"github.com/go-vgo/robotgo"
	"github.com/kbinani/screenshot"
)

// ErrCaptureFailed is returned when a backend produced no image
var ErrCaptureFailed = errors.New("screen capture failed")

// ScreenCapture supplies the current screen image
type ScreenCapture interface {
	Capture() (image.Image, error)
}

// InputDevice drives the pointer and keyboard
type InputDevice interface {
	MoveTo(p Point)
	Location() Point
	Click()
	PressKey(key string) error
}

// Provider bundles the capture and input halves of a backend
type Provider struct {
	Screen ScreenCapture
	Input  InputDevice
	close  func()
}

// Close releases backend resources
func (p *Provider) Close() {
	if p.close != nil {
		p.close()
	}
}

// NewProvider builds the backend selected in the configuration
func NewProvider(cfg CaptureConfig) (*Provider, error) {
	switch cfg.Backend {
	case BackendRobotgo:
		return &Provider{Screen: robotgoScreen{}, Input: &robotgoInput{}}, nil

	case BackendScreenshot:
		n := screenshot.NumActiveDisplays()
		if cfg.Display < 0 || cfg.Display >= n {
			return nil, fmt.Errorf("display %d not available (%d active)", cfg.Display, n)
		}
		origin := screenshot.GetDisplayBounds(cfg.Display).Min
		LogInfo("Capturing display %d at origin (%d, %d)", cfg.Display, origin.X, origin.Y)
		return &Provider{
			Screen: displayScreen{index: cfg.Display},
			Input:  &robotgoInput{origin: Point{X: origin.X, Y: origin.Y}},
		}, nil

	case BackendBrowser:
		b := NewBrowser(cfg)
		if err := b.Start(); err != nil {
			b.Close()
			return nil, err
		}
		return &Provider{Screen: b, Input: b, close: b.Close}, nil

	default:
		return nil, fmt.Errorf("unknown capture backend %q", cfg.Backend)
	}
}

// robotgoScreen captures the main display through robotgo
type robotgoScreen struct{}

func (robotgoScreen) Capture() (image.Image, error) {
	bit := robotgo.CaptureScreen()
	if bit == nil {
		return nil, ErrCaptureFailed
	}
	defer robotgo.FreeBitmap(bit)

	img := robotgo.ToImage(bit)
	if img == nil || img.Bounds().Empty() {
		return nil, ErrCaptureFailed
	}
	return img, nil
}

// displayScreen captures one monitor through kbinani/screenshot
type displayScreen struct {
	index int
}

func (d displayScreen) Capture() (image.Image, error) {
	img, err := screenshot.CaptureDisplay(d.index)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCaptureFailed, err)
	}
	// Rebase to 0,0 so matches are in capture space
	if img.Rect.Min != (image.Point{}) {
		img.Rect = img.Rect.Sub(img.Rect.Min)
	}
	return img, nil
}

// robotgoInput drives the real pointer and keyboard
type robotgoInput struct {
	origin Point
}

func (r *robotgoInput) MoveTo(p Point) {
	robotgo.Move(p.X+r.origin.X, p.Y+r.origin.Y)
}

func (r *robotgoInput) Location() Point {
	x, y := robotgo.Location()
	return Point{X: x - r.origin.X, Y: y - r.origin.Y}
}

func (r *robotgoInput) Click() {
	robotgo.Click("left")
}

func (r *robotgoInput) PressKey(key string) error {
	return robotgo.KeyTap(key)
}
