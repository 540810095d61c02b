// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package transport provides the SPI and GPIO plumbing used to talk to an
// e-paper panel controller.
//
// A Port bundles one SPI connection with a set of three GPIO lines: reset and
// data/command as outputs, busy as input. Lines are addressed by bit masks
// built from the Reset, DataCommand and Busy indices; how an index maps to a
// physical pin is decided by Config.
//
// Two backends are available. OpenPeriph and OpenHat use periph.io pin
// drivers. OpenCdev requests the lines from the GPIO character device
// through go-gpiocdev, the same kernel interface a C program would use.
package transport

import (
	"errors"
	"fmt"
	"io"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// Mask selects lines by index.
type Mask uint8

// Line indices.
const (
	Reset       = 0
	DataCommand = 1
	Busy        = 2
)

// Bit returns the mask selecting line i.
func Bit(i int) Mask {
	return 1 << uint(i)
}

// Outputs selects the reset and data/command lines.
var Outputs = Bit(Reset) | Bit(DataCommand)

// Port is an open session with the panel hardware.
type Port interface {
	fmt.Stringer

	// Tx writes w as a single SPI transaction.
	Tx(w []byte) error
	// SetLines drives the output lines selected by mask to the matching bits.
	SetLines(mask, bits Mask) error
	// GetLines samples the lines selected by mask.
	GetLines(mask Mask) (Mask, error)
	// Close releases the SPI device and the GPIO lines.
	Close() error
}

// Opener opens a Port. The hardware is single-owner; opening a second Port
// on the same devices fails with common.ErrResourceUnavailable.
type Opener func() (Port, error)

// Lines is a set of requested GPIO lines.
type Lines interface {
	SetLines(mask, bits Mask) error
	GetLines(mask Mask) (Mask, error)
	Close() error
}

// Config describes how the panel is wired.
type Config struct {
	// SPI device, mode, clock and word size.
	SPIDev      string
	Mode        spi.Mode
	Clock       physic.Frequency
	BitsPerWord int

	// GPIO chip and line offsets.
	Chip        string
	Reset       int
	DataCommand int
	Busy        int

	// Consumer is the label attached to the line request.
	Consumer string
}

// DefaultConfig is the wiring of the Waveshare 2.13" HAT on a Raspberry Pi.
var DefaultConfig = Config{
	SPIDev:      "/dev/spidev0.0",
	Mode:        spi.Mode0,
	Clock:       20 * physic.MegaHertz,
	BitsPerWord: 8,
	Chip:        "gpiochip0",
	Reset:       17,
	DataCommand: 25,
	Busy:        24,
	Consumer:    "eInk Display",
}

type port struct {
	c     conn.Conn
	bus   io.Closer
	lines Lines
}

// NewPort assembles a Port from an SPI connection and a line set. bus, if
// not nil, is closed together with the lines.
func NewPort(c conn.Conn, bus io.Closer, lines Lines) Port {
	return &port{c: c, bus: bus, lines: lines}
}

func (p *port) String() string {
	if p.c == nil {
		return "closed"
	}
	return p.c.String()
}

func (p *port) Tx(w []byte) error {
	if p.c == nil {
		return errors.New("transport: port closed")
	}
	return p.c.Tx(w, nil)
}

func (p *port) SetLines(mask, bits Mask) error {
	if p.lines == nil {
		return errors.New("transport: port closed")
	}
	return p.lines.SetLines(mask, bits)
}

func (p *port) GetLines(mask Mask) (Mask, error) {
	if p.lines == nil {
		return 0, errors.New("transport: port closed")
	}
	return p.lines.GetLines(mask)
}

// Close is idempotent.
func (p *port) Close() error {
	var errs []error
	if p.lines != nil {
		errs = append(errs, p.lines.Close())
		p.lines = nil
	}
	if p.bus != nil {
		errs = append(errs, p.bus.Close())
		p.bus = nil
	}
	p.c = nil
	return errors.Join(errs...)
}
