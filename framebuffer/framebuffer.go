// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package framebuffer implements the packed 1 bit per pixel buffer streamed
// to an e-paper controller.
//
// Rows are stored top to bottom, each (width+7)/8 bytes long, most
// significant bit first. A cleared bit is a black (active) pixel and a set
// bit a white (inactive) one, matching the controller RAM polarity.
//
// A Framebuffer is also a draw.Image in the image1bit color model, with
// image1bit.On for white and image1bit.Off for black.
package framebuffer

import (
	"fmt"
	"image"
	"image/color"

	"periph.io/x/devices/v3/ssd1306/image1bit"

	"github.com/GermanBionicSystems/einkpanel/common"
)

// Framebuffer is a fixed size monochrome bitmap.
type Framebuffer struct {
	width  int
	height int
	stride int
	pix    []byte
}

// New returns a white framebuffer. Negative dimensions are treated as zero.
func New(width, height int) *Framebuffer {
	width, height = max(width, 0), max(height, 0)
	stride := (width + 7) / 8
	f := &Framebuffer{
		width:  width,
		height: height,
		stride: stride,
		pix:    make([]byte, stride*height),
	}
	f.Fill(false)
	return f
}

// Width returns the width in pixels.
func (f *Framebuffer) Width() int { return f.width }

// Height returns the height in pixels.
func (f *Framebuffer) Height() int { return f.height }

// Stride returns the length of a row in bytes.
func (f *Framebuffer) Stride() int { return f.stride }

func (f *Framebuffer) inBounds(x, y int) bool {
	return x >= 0 && x < f.width && y >= 0 && y < f.height
}

func (f *Framebuffer) set(x, y int, active bool) {
	i := y*f.stride + x/8
	m := byte(0x80) >> uint(x%8)
	if active {
		f.pix[i] &^= m
	} else {
		f.pix[i] |= m
	}
}

// SetPixel paints the pixel at (x, y) black when active is true and white
// otherwise. Coordinates are never clamped.
func (f *Framebuffer) SetPixel(x, y int, active bool) error {
	if !f.inBounds(x, y) {
		return common.Wrap("framebuffer.SetPixel", common.ErrOutOfRange,
			fmt.Errorf("(%d, %d) outside %dx%d", x, y, f.width, f.height))
	}
	f.set(x, y, active)
	return nil
}

// Active reports whether the pixel at (x, y) is black. Pixels outside the
// buffer are reported white.
func (f *Framebuffer) Active(x, y int) bool {
	if !f.inBounds(x, y) {
		return false
	}
	return f.pix[y*f.stride+x/8]&(0x80>>uint(x%8)) == 0
}

// Fill paints every pixel, including the padding bits of each row.
func (f *Framebuffer) Fill(active bool) {
	v := byte(0xFF)
	if active {
		v = 0x00
	}
	for i := range f.pix {
		f.pix[i] = v
	}
}

// Stripes draws the controller test pattern: a pair of white rows every
// period rows on a black background.
func (f *Framebuffer) Stripes(period int) {
	if period < 2 {
		f.Fill(false)
		return
	}
	for y, row := range f.Rows() {
		v := byte(0x00)
		if y%period == 0 || (y+1)%period == 0 {
			v = 0xFF
		}
		for i := range row {
			row[i] = v
		}
	}
}

// Rows returns the packed rows in the order they are streamed to the
// controller. The slices alias the buffer and must be treated as read-only
// by callers outside this package.
func (f *Framebuffer) Rows() [][]byte {
	rows := make([][]byte, f.height)
	for y := range rows {
		off := y * f.stride
		rows[y] = f.pix[off : off+f.stride : off+f.stride]
	}
	return rows
}

// ColorModel implements image.Image.
func (f *Framebuffer) ColorModel() color.Model {
	return image1bit.BitModel
}

// Bounds implements image.Image.
func (f *Framebuffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, f.width, f.height)
}

// At implements image.Image.
func (f *Framebuffer) At(x, y int) color.Color {
	return image1bit.Bit(!f.Active(x, y))
}

// Set implements draw.Image. Pixels outside the buffer are ignored.
func (f *Framebuffer) Set(x, y int, c color.Color) {
	if !f.inBounds(x, y) {
		return
	}
	f.set(x, y, image1bit.BitModel.Convert(c).(image1bit.Bit) == image1bit.Off)
}

// String returns a short description of the buffer geometry.
func (f *Framebuffer) String() string {
	return fmt.Sprintf("framebuffer.Framebuffer{%dx%d, stride %d}", f.width, f.height, f.stride)
}
