// Package main - ocr.go
//
// This file implements the OCR provider used by the stamina reader.
//
// Pipeline:
//   1. Upscale the crop 4x with bicubic interpolation (nfnt/resize)
//   2. Grayscale, threshold at ~180/255 and invert so bright digits become
//      black on white (gift)
//   3. Pad with a 20px white border
//   4. Hand the PNG bytes to tesseract with a digit whitelist and the
//      requested page segmentation mode (gosseract)
//
// The tesseract data location is injected from configuration. If the engine
// cannot be initialised the bot runs without a recognizer and stamina reads
// as unknown.
package main

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"strings"

	"github.com/disintegration/gift"
	"github.com/nfnt/resize"
	"github.com/otiai10/gosseract/v2"
)

// ErrNoRecognizer is returned when OCR is disabled or unavailable
var ErrNoRecognizer = errors.New("text recognizer unavailable")

// OCRMode selects the recognizer's page layout assumption
type OCRMode int

const (
	// OCRSingleLine treats the image as one line of text
	OCRSingleLine OCRMode = iota
	// OCRSingleBlock treats the image as a uniform block of text
	OCRSingleBlock
)

// String returns string representation of the mode
func (m OCRMode) String() string {
	switch m {
	case OCRSingleLine:
		return "single-line"
	case OCRSingleBlock:
		return "single-block"
	default:
		return "unknown"
	}
}

// TextRecognizer turns an image into text
type TextRecognizer interface {
	RecognizeText(img image.Image, mode OCRMode) (string, error)
}

const (
	ocrScale     = 4
	ocrPadding   = 20
	ocrWhitelist = "0123456789/.,"
)

// ocrFilter binarizes and inverts the upscaled crop
var ocrFilter = gift.New(
	gift.Grayscale(),
	gift.Contrast(20),
	gift.Threshold(70),
	gift.Invert(),
)

// TesseractRecognizer wraps a gosseract client.
//
// Not thread-safe; the scheduler goroutine is the only caller.
type TesseractRecognizer struct {
	client *gosseract.Client
}

// NewTesseractRecognizer creates a recognizer from configuration.
//
// Returns:
//   - *TesseractRecognizer: Ready client
//   - error: ErrNoRecognizer if disabled, or a wrapped engine setup error
func NewTesseractRecognizer(cfg OCRConfig) (*TesseractRecognizer, error) {
	if !cfg.Enabled {
		return nil, ErrNoRecognizer
	}

	client := gosseract.NewClient()
	if cfg.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(cfg.TessdataPrefix); err != nil {
			client.Close()
			return nil, fmt.Errorf("%w: tessdata prefix: %v", ErrNoRecognizer, err)
		}
	}
	if len(cfg.Languages) > 0 {
		if err := client.SetLanguage(cfg.Languages...); err != nil {
			client.Close()
			return nil, fmt.Errorf("%w: language: %v", ErrNoRecognizer, err)
		}
	}
	if err := client.SetWhitelist(ocrWhitelist); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: whitelist: %v", ErrNoRecognizer, err)
	}

	LogInfo("OCR ready (tessdata=%q languages=%s)", cfg.TessdataPrefix, strings.Join(cfg.Languages, "+"))
	return &TesseractRecognizer{client: client}, nil
}

// RecognizeText runs tesseract over img in the given mode
func (t *TesseractRecognizer) RecognizeText(img image.Image, mode OCRMode) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, PrepareForOCR(img)); err != nil {
		return "", fmt.Errorf("encode ocr input: %w", err)
	}

	psm := gosseract.PSM_SINGLE_LINE
	if mode == OCRSingleBlock {
		psm = gosseract.PSM_SINGLE_BLOCK
	}
	if err := t.client.SetPageSegMode(psm); err != nil {
		return "", fmt.Errorf("page seg mode: %w", err)
	}
	if err := t.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}

	text, err := t.client.Text()
	if err != nil {
		return "", fmt.Errorf("ocr %s: %w", mode, err)
	}
	return strings.TrimSpace(text), nil
}

// Close releases the tesseract engine
func (t *TesseractRecognizer) Close() {
	if t.client != nil {
		t.client.Close()
	}
}

// PrepareForOCR upscales, binarizes and pads an image for digit recognition
func PrepareForOCR(img image.Image) image.Image {
	b := img.Bounds()
	big := resize.Resize(uint(b.Dx()*ocrScale), uint(b.Dy()*ocrScale), img, resize.Bicubic)

	bin := image.NewGray(ocrFilter.Bounds(big.Bounds()))
	ocrFilter.Draw(bin, big)

	padded := image.NewGray(image.Rect(0, 0, bin.Bounds().Dx()+ocrPadding*2, bin.Bounds().Dy()+ocrPadding*2))
	draw.Draw(padded, padded.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(padded, bin.Bounds().Add(image.Pt(ocrPadding, ocrPadding)), bin, bin.Bounds().Min, draw.Src)
	return padded
}

// cropImage copies the rect out of img
func cropImage(img image.Image, rect image.Rectangle) image.Image {
	g := gift.New(gift.Crop(rect))
	dst := image.NewRGBA(g.Bounds(img.Bounds()))
	g.Draw(dst, img)
	return dst
}
