// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"image"
	"image/color"
	"image/draw"
	"strings"

	"github.com/fogleman/gg"

	"github.com/GermanBionicSystems/einkpanel/framebuffer"
	"github.com/GermanBionicSystems/einkpanel/glyph"
)

const (
	margin       = 6
	stripePeriod = 16
)

// screen is what the tool draws.
type screen struct {
	face    *glyph.Face
	text    string
	pattern bool
	border  bool
}

func (s *screen) compose(fb *framebuffer.Framebuffer) error {
	if s.pattern {
		fb.Stripes(stripePeriod)
	}
	if s.border {
		drawBorder(fb)
	}
	if s.text == "" {
		return nil
	}
	y := margin + s.face.Ascent()
	for _, line := range strings.Split(s.text, "\n") {
		if _, err := glyph.DrawString(fb, s.face, margin, y, line); err != nil {
			return err
		}
		y += s.face.LineHeight()
	}
	return nil
}

// drawBorder strokes a rounded rectangle just inside the edges. The rest of
// fb is left untouched.
func drawBorder(fb *framebuffer.Framebuffer) {
	w, h := float64(fb.Width()), float64(fb.Height())
	dc := gg.NewContext(fb.Width(), fb.Height())
	dc.SetColor(color.Black)
	dc.SetLineWidth(2)
	dc.DrawRoundedRectangle(2, 2, w-4, h-4, 8)
	dc.Stroke()
	draw.Draw(fb, fb.Bounds(), dc.Image(), image.Point{}, draw.Over)
}
