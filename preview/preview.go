// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package preview renders a framebuffer to a terminal using ANSI color codes.
//
// Useful to lay out a screen without a panel attached, or when the next full
// refresh is seconds away.
package preview

import (
	"bytes"
	"fmt"
	"image/color"
	"io"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"

	"github.com/GermanBionicSystems/einkpanel/framebuffer"
)

// Opts represents the options available for the preview.
type Opts struct {
	// Scale is the side in pixels of the square rendered as one block.
	// Partially covered blocks are drawn gray.
	Scale   int
	Palette *ansi256.Palette
	// W defaults to a colorable stdout.
	W io.Writer
}

// Dev writes framebuffers to the console.
type Dev struct {
	w       io.Writer
	scale   int
	palette ansi256.Palette

	buf bytes.Buffer
}

// New returns a Dev that displays at the console.
func New(opts *Opts) *Dev {
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	w := opts.W
	if w == nil {
		w = colorable.NewColorableStdout()
	}
	return &Dev{
		w:       w,
		scale:   max(opts.Scale, 1),
		palette: *p,
	}
}

func (d *Dev) String() string {
	return fmt.Sprintf("Preview{scale: %d}", d.scale)
}

// Halt resets the terminal colors.
func (d *Dev) Halt() error {
	_, err := io.WriteString(d.w, "\033[0m")
	return err
}

// Render writes fb, one line of blocks per Scale pixel rows.
func (d *Dev) Render(fb *framebuffer.Framebuffer) error {
	// Built in one buffer so the terminal receives a single write.
	d.buf.Reset()
	for y := 0; y < fb.Height(); y += d.scale {
		_, _ = d.buf.WriteString("\033[0m")
		for x := 0; x < fb.Width(); x += d.scale {
			_, _ = io.WriteString(&d.buf, d.palette.Block(d.cell(fb, x, y)))
		}
		_, _ = d.buf.WriteString("\033[0m\n")
	}
	_, err := d.buf.WriteTo(d.w)
	return err
}

// cell averages the block whose top-left pixel is (x, y).
func (d *Dev) cell(fb *framebuffer.Framebuffer, x, y int) color.NRGBA {
	total, active := 0, 0
	for j := y; j < y+d.scale && j < fb.Height(); j++ {
		for i := x; i < x+d.scale && i < fb.Width(); i++ {
			total++
			if fb.Active(i, j) {
				active++
			}
		}
	}
	g := byte(255 - 255*active/total)
	return color.NRGBA{R: g, G: g, B: g, A: 255}
}
