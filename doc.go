// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package einkpanel is a container for the 2.13 inch monochrome e-paper
// panel driver.
//
// The panel itself is driven by package epd, on top of a transport.Port that
// owns the SPI device and the reset, data/command and busy GPIO lines. Pixels
// are drawn into a framebuffer.Framebuffer, either directly, through
// image/draw, or with glyphs from package glyph. Package preview renders a
// framebuffer in a terminal.
package einkpanel
