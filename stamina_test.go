package main

import "testing"

func TestParseStamina(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"352/1.500", 352},
		{"352/1,500", 352},
		{"352/1500", 352},
		{"352 / 1500", 352},
		{"1.234/1.500", 1234},
		{"1,234 / 1,500", 1234},
		{"Stamina 48/1500\n", 48},
		{"87/120", 87},
		{"900/2,000", 900},
		{"", 0},
		{"garbage", 0},
		{"352", 0},
		{"/1500", 0},
	}
	for _, tt := range tests {
		if got := ParseStamina(tt.text); got != tt.want {
			t.Errorf("ParseStamina(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}

func TestParseStaminaStable(t *testing.T) {
	for _, text := range []string{"352/1.500", "1,234/1,500", "7/10"} {
		first := ParseStamina(text)
		for i := 0; i < 3; i++ {
			if got := ParseStamina(text); got != first {
				t.Fatalf("ParseStamina(%q) changed from %d to %d", text, first, got)
			}
		}
	}
}

func newTestStaminaReader(loc *fakeLocator, rec TextRecognizer) (*StaminaReader, *fakeScreen) {
	screen := newBlankScreen(800, 600)
	return NewStaminaReader(screen, loc, rec, NewConfig().Stamina), screen
}

func TestStaminaReaderRead(t *testing.T) {
	t.Run("single line parses", func(t *testing.T) {
		rec := &fakeRecognizer{text: map[OCRMode]string{OCRSingleLine: "352/1.500"}}
		r, _ := newTestStaminaReader(newFakeLocator("stamina_icon"), rec)
		if got := r.Read(); got != 352 {
			t.Fatalf("Read() = %d, want 352", got)
		}
		if len(rec.modes) != 1 {
			t.Errorf("modes tried = %v, want only single line", rec.modes)
		}
	})

	t.Run("falls back to block mode", func(t *testing.T) {
		rec := &fakeRecognizer{text: map[OCRMode]string{
			OCRSingleLine:  "~~",
			OCRSingleBlock: "48/1500",
		}}
		r, _ := newTestStaminaReader(newFakeLocator("stamina_icon"), rec)
		if got := r.Read(); got != 48 {
			t.Fatalf("Read() = %d, want 48", got)
		}
		if len(rec.modes) != 2 || rec.modes[1] != OCRSingleBlock {
			t.Errorf("modes tried = %v", rec.modes)
		}
	})

	t.Run("unparsable is unknown", func(t *testing.T) {
		rec := &fakeRecognizer{text: map[OCRMode]string{}}
		r, _ := newTestStaminaReader(newFakeLocator("stamina_icon"), rec)
		if got := r.Read(); got != 0 {
			t.Fatalf("Read() = %d, want 0", got)
		}
	})

	t.Run("recognizer error is unknown", func(t *testing.T) {
		rec := &fakeRecognizer{err: errFake}
		r, _ := newTestStaminaReader(newFakeLocator("stamina_icon"), rec)
		if got := r.Read(); got != 0 {
			t.Fatalf("Read() = %d, want 0", got)
		}
	})

	t.Run("anchor missing", func(t *testing.T) {
		rec := &fakeRecognizer{text: map[OCRMode]string{OCRSingleLine: "352/1500"}}
		r, _ := newTestStaminaReader(newFakeLocator(), rec)
		if got := r.Read(); got != 0 {
			t.Fatalf("Read() = %d, want 0", got)
		}
		if len(rec.modes) != 0 {
			t.Errorf("recognizer called without an anchor")
		}
	})

	t.Run("capture failure", func(t *testing.T) {
		rec := &fakeRecognizer{text: map[OCRMode]string{OCRSingleLine: "352/1500"}}
		r, screen := newTestStaminaReader(newFakeLocator("stamina_icon"), rec)
		screen.err = ErrCaptureFailed
		if got := r.Read(); got != 0 {
			t.Fatalf("Read() = %d, want 0", got)
		}
	})

	t.Run("no recognizer", func(t *testing.T) {
		r, screen := newTestStaminaReader(newFakeLocator("stamina_icon"), nil)
		if got := r.Read(); got != 0 {
			t.Fatalf("Read() = %d, want 0", got)
		}
		if screen.calls != 0 {
			t.Errorf("captured %d frames without a recognizer", screen.calls)
		}
	})
}

func TestStaminaRegion(t *testing.T) {
	r, _ := newTestStaminaReader(newFakeLocator(), nil)
	got := r.region(NewBounds(100, 200, 40, 20))
	if got.Min.X != 140 || got.Max.X != 300 || got.Min.Y != 194 || got.Max.Y != 226 {
		t.Errorf("region = %v", got)
	}
}
