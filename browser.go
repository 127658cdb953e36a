// Package main - browser.go
//
// This file implements the Browser backend that drives a browser-hosted
// game client through chromedp. It satisfies both ScreenCapture and
// InputDevice, so the matcher and click executor work unchanged.
//
// Key Responsibilities:
//   - Chromedp browser lifecycle management (start, navigate, close)
//   - Screenshot capture with timeout protection (5s)
//   - Synthetic pointer moves/clicks and key presses via CDP input events
//
// Browser Architecture:
// The Browser uses nested contexts for proper resource management:
//   - allocCtx: Allocator context for browser process management
//   - ctx: Browser context for page operations
// Both contexts have cancel functions for graceful cleanup.
//
// Timeout Strategy:
//   - Navigation: 60 seconds (slow network tolerance)
//   - Screenshot: 5 seconds (prevent hanging)
//   - Input events: 2 seconds
package main

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/png"
	"sync"
	"time"

	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
)

// Browser manages the chromedp browser instance for game interaction.
//
// Lifecycle:
//   1. NewBrowser(): Create instance from capture configuration
//   2. Start(): Initialize chromedp contexts and navigate to the client URL
//   3. Capture()/MoveTo()/Click()/PressKey(): Driven by the bot loop
//   4. Close(): Clean up contexts and browser process
//
// Error Handling:
// All chromedp operations use context timeouts to prevent indefinite blocking.
// Input errors are logged but do not crash the application.
type Browser struct {
	url         string
	headless    bool
	ctx         context.Context
	cancel      context.CancelFunc
	allocCtx    context.Context
	allocCancel context.CancelFunc

	mu     sync.Mutex
	cursor Point
}

// NewBrowser creates a new browser instance
func NewBrowser(cfg CaptureConfig) *Browser {
	return &Browser{
		url:      cfg.BrowserURL,
		headless: cfg.BrowserHeadless,
	}
}

// Start launches the browser and navigates to the game client.
//
// Returns:
//   - error: Navigation error or timeout, nil on success
func (b *Browser) Start() error {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", b.headless),
		chromedp.Flag("enable-automation", false),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(1280, 720),
	)

	b.allocCtx, b.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	b.ctx, b.cancel = chromedp.NewContext(b.allocCtx, chromedp.WithLogf(func(format string, args ...interface{}) {
		LogDebug(format, args...)
	}))
	LogInfo("Browser context created")

	navCtx, navCancel := context.WithTimeout(b.ctx, 60*time.Second)
	defer navCancel()

	LogInfo("Navigating to %s", b.url)
	if err := chromedp.Run(navCtx, chromedp.Navigate(b.url)); err != nil {
		return fmt.Errorf("navigate %s: %w", b.url, err)
	}

	LogInfo("Navigation completed successfully")
	return nil
}

func (b *Browser) alive() bool {
	return b.ctx != nil && b.ctx.Err() == nil
}

// Capture takes a screenshot of the current browser viewport.
//
// Returns:
//   - image.Image: Decoded PNG screenshot
//   - error: Capture error (timeout, invalid context, decode), nil on success
func (b *Browser) Capture() (image.Image, error) {
	if !b.alive() {
		return nil, fmt.Errorf("%w: browser context is invalid", ErrCaptureFailed)
	}

	var buf []byte
	captureCtx, cancel := context.WithTimeout(b.ctx, 5*time.Second)
	defer cancel()

	if err := chromedp.Run(captureCtx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCaptureFailed, err)
	}

	img, _, err := image.Decode(bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrCaptureFailed, err)
	}
	return img, nil
}

func (b *Browser) run(actions ...chromedp.Action) error {
	if !b.alive() {
		return fmt.Errorf("browser context is invalid")
	}
	ctx, cancel := context.WithTimeout(b.ctx, 2*time.Second)
	defer cancel()
	return chromedp.Run(ctx, actions...)
}

// MoveTo dispatches a mouse-moved event
func (b *Browser) MoveTo(p Point) {
	if err := b.run(chromedp.MouseEvent(input.MouseMoved, float64(p.X), float64(p.Y))); err != nil {
		LogDebug("Browser move failed: %v", err)
		return
	}
	b.mu.Lock()
	b.cursor = p
	b.mu.Unlock()
}

// Location returns the last dispatched pointer position
func (b *Browser) Location() Point {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cursor
}

// Click presses and releases the left button at the pointer position
func (b *Browser) Click() {
	p := b.Location()
	if err := b.run(chromedp.MouseClickXY(float64(p.X), float64(p.Y))); err != nil {
		LogWarn("Browser click at (%d, %d) failed: %v", p.X, p.Y, err)
	}
}

// PressKey sends a single key press
func (b *Browser) PressKey(key string) error {
	k, ok := browserKeys[key]
	if !ok {
		k = key
	}
	return b.run(chromedp.KeyEvent(k))
}

var browserKeys = map[string]string{
	"esc":    kb.Escape,
	"escape": kb.Escape,
	"enter":  kb.Enter,
	"space":  " ",
}

// Close closes the browser
func (b *Browser) Close() {
	LogInfo("Closing browser...")
	if b.cancel != nil {
		b.cancel()
	}
	if b.allocCancel != nil {
		b.allocCancel()
	}
	LogInfo("Browser closed successfully")
}
