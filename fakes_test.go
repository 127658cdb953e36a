package main

import (
	"errors"
	"image"
	"math/rand"
	"time"
)

// fakeClock is a virtual clock; Sleep advances Now and is recorded
type fakeClock struct {
	now    time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(d time.Duration) {
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
}

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// fakeLocator scripts which buttons are on screen, by name
type fakeLocator struct {
	visible    map[string]bool
	script     map[string][]bool
	calls      map[string]int
	thresholds map[string][]float64
	last       string
}

func newFakeLocator(visible ...string) *fakeLocator {
	l := &fakeLocator{
		visible:    make(map[string]bool),
		script:     make(map[string][]bool),
		calls:      make(map[string]int),
		thresholds: make(map[string][]float64),
	}
	for _, name := range visible {
		l.visible[name] = true
	}
	return l
}

func (l *fakeLocator) Locate(spec ButtonSpec) MatchResult {
	l.calls[spec.Name]++
	l.thresholds[spec.Name] = append(l.thresholds[spec.Name], spec.Threshold)
	found := l.visible[spec.Name]
	if s := l.script[spec.Name]; len(s) > 0 {
		found = s[0]
		l.script[spec.Name] = s[1:]
	}
	if !found {
		return MatchResult{Score: 0.1}
	}
	l.last = spec.Name
	return MatchResult{Found: true, Bounds: NewBounds(100, 200, 40, 20), Score: 0.95}
}

func (l *fakeLocator) LocateIn(_ image.Image, spec ButtonSpec) MatchResult {
	return l.Locate(spec)
}

// fakeClicker records clicks (by the name the locator last found), moves and keys
type fakeClicker struct {
	loc    *fakeLocator
	clicks []string
	points []Point
	moves  []Point
	keys   []string
}

func (c *fakeClicker) Click(p Point) {
	name := ""
	if c.loc != nil {
		name = c.loc.last
	}
	c.clicks = append(c.clicks, name)
	c.points = append(c.points, p)
}

func (c *fakeClicker) MoveTo(p Point) { c.moves = append(c.moves, p) }

func (c *fakeClicker) PressKey(key string) { c.keys = append(c.keys, key) }

// fakeInput is an InputDevice that remembers the pointer position
type fakeInput struct {
	pos    Point
	moves  []Point
	clicks int
	keys   []string
}

func (f *fakeInput) MoveTo(p Point) {
	f.pos = p
	f.moves = append(f.moves, p)
}

func (f *fakeInput) Location() Point { return f.pos }

func (f *fakeInput) Click() { f.clicks++ }

func (f *fakeInput) PressKey(key string) error {
	f.keys = append(f.keys, key)
	return nil
}

// fakeScreen returns a fixed image or an error
type fakeScreen struct {
	img   image.Image
	err   error
	calls int
}

func newBlankScreen(w, h int) *fakeScreen {
	return &fakeScreen{img: image.NewRGBA(image.Rect(0, 0, w, h))}
}

func (s *fakeScreen) Capture() (image.Image, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.img, nil
}

// fakeCorrelator returns a fixed score
type fakeCorrelator struct {
	score float64
	at    Bounds
	err   error
	calls int
}

func (f *fakeCorrelator) Correlate(_ image.Image, _ string) (float64, Bounds, error) {
	f.calls++
	return f.score, f.at, f.err
}

// fakeRecognizer returns canned text per mode
type fakeRecognizer struct {
	text  map[OCRMode]string
	err   error
	modes []OCRMode
}

func (r *fakeRecognizer) RecognizeText(_ image.Image, mode OCRMode) (string, error) {
	r.modes = append(r.modes, mode)
	if r.err != nil {
		return "", r.err
	}
	return r.text[mode], nil
}

var errFake = errors.New("fake failure")

// testEnv bundles an Env over fakes
type testEnv struct {
	env     *Env
	loc     *fakeLocator
	clicker *fakeClicker
	clock   *fakeClock
}

func newTestEnv(loc *fakeLocator, retries int) *testEnv {
	clock := newFakeClock()
	clicker := &fakeClicker{loc: loc}
	cfg := NewConfig()
	rng := rand.New(rand.NewSource(1))
	return &testEnv{
		env: &Env{
			Actions: NewButtonAction(loc, clicker, clock, cfg.Timing, retries, rng),
			Probe:   NewStateProbe(loc, clicker),
			Config:  cfg,
		},
		loc:     loc,
		clicker: clicker,
		clock:   clock,
	}
}
