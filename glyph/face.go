// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package glyph

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
)

// ErrNoGlyph is returned when a face has no glyph for a rune.
var ErrNoGlyph = errors.New("glyph: no glyph for rune")

// Face rasterizes runes with a font.Face.
type Face struct {
	face font.Face
}

// NewFace returns a Rasterizer backed by f.
func NewFace(f font.Face) *Face {
	return &Face{face: f}
}

// Default returns the built-in 7x13 fixed face.
func Default() *Face {
	return NewFace(basicfont.Face7x13)
}

// ParseTrueType parses a TrueType font and returns a face of the given size
// in points at 72 DPI, so that size is also the pixel height.
func ParseTrueType(ttf []byte, size float64) (*Face, error) {
	f, err := truetype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("glyph: parsing font: %w", err)
	}
	return NewFace(truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})), nil
}

// GoRegular returns the Go Regular font at the given size.
func GoRegular(size float64) (*Face, error) {
	return ParseTrueType(goregular.TTF, size)
}

// Glyph implements Rasterizer.
//
// Coverage returned by the face is inverted into intensity, so a fully
// covered pixel is 0.
func (f *Face) Glyph(r rune) (*Bitmap, int, error) {
	dr, mask, mp, adv, ok := f.face.Glyph(fixed.Point26_6{}, r)
	if !ok {
		return nil, 0, fmt.Errorf("%w %q", ErrNoGlyph, r)
	}
	b := &Bitmap{
		Width:     dr.Dx(),
		Height:    dr.Dy(),
		XOffset:   dr.Min.X,
		YOffset:   dr.Min.Y,
		Intensity: make([]byte, dr.Dx()*dr.Dy()),
	}
	for j := 0; j < b.Height; j++ {
		for i := 0; i < b.Width; i++ {
			a := color.AlphaModel.Convert(mask.At(mp.X+i, mp.Y+j)).(color.Alpha).A
			b.Intensity[j*b.Width+i] = 255 - a
		}
	}
	return b, adv.Round(), nil
}

// LineHeight returns the distance between consecutive baselines in pixels.
func (f *Face) LineHeight() int {
	return f.face.Metrics().Height.Ceil()
}

// Ascent returns the height above the baseline in pixels.
func (f *Face) Ascent() int {
	return f.face.Metrics().Ascent.Ceil()
}
