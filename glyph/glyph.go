// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package glyph converts rasterized glyphs to the packed monochrome format of
// a framebuffer and lays out strings with them.
package glyph

import (
	"fmt"

	"github.com/GermanBionicSystems/einkpanel/framebuffer"
)

// Threshold is the intensity below which a glyph pixel is drawn black.
const Threshold = 128

// Bitmap is a rasterized glyph.
//
// Intensity holds Width*Height bytes in row-major order, 0 being black and
// 255 white. XOffset and YOffset position the top-left corner of the bitmap
// relative to the pen position on the baseline.
type Bitmap struct {
	Width     int
	Height    int
	XOffset   int
	YOffset   int
	Intensity []byte
}

// Active reports whether the glyph pixel (i, j) is drawn black. Pixels with
// no intensity data are white.
func (b *Bitmap) Active(i, j int) bool {
	if i < 0 || i >= b.Width || j < 0 || j >= b.Height {
		return false
	}
	k := j*b.Width + i
	return k < len(b.Intensity) && b.Intensity[k] < Threshold
}

// Pack returns the glyph as rows of (Width+7)/8 bytes, most significant bit
// first, with cleared bits for black pixels. Padding bits past Width are
// always set.
func Pack(b *Bitmap) [][]byte {
	if b.Width <= 0 || b.Height <= 0 {
		return nil
	}
	stride := (b.Width + 7) / 8
	rows := make([][]byte, b.Height)
	for j := range rows {
		row := make([]byte, stride)
		for n := range row {
			row[n] = 0xFF
		}
		for i := 0; i < b.Width; i++ {
			if b.Active(i, j) {
				row[i/8] &^= 0x80 >> uint(i%8)
			}
		}
		rows[j] = row
	}
	return rows
}

// Blit draws the glyph into fb with its origin at (x, y). Both black and
// white glyph pixels are written; pixels falling outside fb are dropped.
func Blit(fb *framebuffer.Framebuffer, b *Bitmap, x, y int) {
	w, h := fb.Width(), fb.Height()
	for j, row := range Pack(b) {
		py := y + b.YOffset + j
		if py < 0 || py >= h {
			continue
		}
		for i := 0; i < b.Width; i++ {
			px := x + b.XOffset + i
			if px < 0 || px >= w {
				continue
			}
			_ = fb.SetPixel(px, py, row[i/8]&(0x80>>uint(i%8)) == 0)
		}
	}
}

// Rasterizer produces glyph bitmaps for runes.
type Rasterizer interface {
	// Glyph returns the bitmap for r and the horizontal pen advance in
	// pixels.
	Glyph(r rune) (*Bitmap, int, error)
}

// DrawString renders s with its baseline starting at (x, y), advancing the
// pen by each glyph's advance. It returns the pen position after the last
// glyph.
func DrawString(fb *framebuffer.Framebuffer, r Rasterizer, x, y int, s string) (int, error) {
	for _, c := range s {
		b, adv, err := r.Glyph(c)
		if err != nil {
			return x, fmt.Errorf("glyph: drawing %q: %w", s, err)
		}
		Blit(fb, b, x, y)
		x += adv
	}
	return x, nil
}
