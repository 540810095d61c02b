// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package epd controls 2.13 inch 122x250 monochrome e-paper panels built on
// the SSD1680 controller, such as the Waveshare 2.13 inch V3 and V4 HATs.
//
// Datasheet:
// https://files.waveshare.com/upload/5/59/2.13inch_e-Paper_V3_Specificition.pdf
//
// The panel is driven over SPI plus three GPIO lines: reset, data/command and
// busy. Only full refreshes are supported. A panel left powered without being
// put to deep sleep may be damaged over time, so every exit path should call
// Halt or Cleanup.
package epd
