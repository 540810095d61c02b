// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package transport

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
	"periph.io/x/host/v3/rpi"

	"github.com/GermanBionicSystems/einkpanel/common"
)

// PinLines drives the panel lines through periph.io pins.
type PinLines struct {
	out    [Busy]gpio.PinOut
	busy   gpio.PinIn
	levels Mask
}

// NewPinLines configures busy as a floating input and returns the line set.
func NewPinLines(rst, dc gpio.PinOut, busy gpio.PinIn) (*PinLines, error) {
	if err := busy.In(gpio.Float, gpio.NoEdge); err != nil {
		return nil, err
	}
	l := &PinLines{busy: busy}
	l.out[Reset] = rst
	l.out[DataCommand] = dc
	return l, nil
}

// SetLines implements Lines.
func (l *PinLines) SetLines(mask, bits Mask) error {
	if mask&Bit(Busy) != 0 {
		return errors.New("transport: busy is an input line")
	}
	for i, p := range l.out {
		b := Bit(i)
		if mask&b == 0 {
			continue
		}
		if err := p.Out(gpio.Level(bits&b != 0)); err != nil {
			return err
		}
		l.levels = l.levels&^b | bits&b
	}
	return nil
}

// GetLines implements Lines. Output lines report the last level driven.
func (l *PinLines) GetLines(mask Mask) (Mask, error) {
	bits := l.levels & mask & Outputs
	if mask&Bit(Busy) != 0 && l.busy.Read() == gpio.High {
		bits |= Bit(Busy)
	}
	return bits, nil
}

// Close implements Lines.
func (l *PinLines) Close() error {
	var errs []error
	for _, p := range l.out {
		errs = append(errs, p.Halt())
	}
	errs = append(errs, l.busy.Halt())
	return errors.Join(errs...)
}

// openBus opens and configures the SPI device named in cfg.
func openBus(cfg *Config) (spi.PortCloser, spi.Conn, error) {
	if _, err := host.Init(); err != nil {
		return nil, nil, err
	}
	p, err := spireg.Open(cfg.SPIDev)
	if err != nil {
		return nil, nil, err
	}
	c, err := p.Connect(cfg.Clock, cfg.Mode, cfg.BitsPerWord)
	if err != nil {
		_ = p.Close()
		return nil, nil, err
	}
	return p, c, nil
}

// OpenPeriph returns an Opener using periph.io pins looked up by their BCM
// name, e.g. "GPIO17" for offset 17.
func OpenPeriph(cfg Config) Opener {
	return func() (Port, error) {
		const op = "transport.OpenPeriph"
		p, c, err := openBus(&cfg)
		if err != nil {
			return nil, common.Wrap(op, common.ErrResourceUnavailable, err)
		}
		var pins [3]gpio.PinIO
		for i, n := range []int{cfg.Reset, cfg.DataCommand, cfg.Busy} {
			name := fmt.Sprintf("GPIO%d", n)
			if pins[i] = gpioreg.ByName(name); pins[i] == nil {
				_ = p.Close()
				return nil, common.Wrap(op, common.ErrResourceUnavailable, fmt.Errorf("gpio %s not found", name))
			}
		}
		l, err := NewPinLines(pins[Reset], pins[DataCommand], pins[Busy])
		if err != nil {
			_ = p.Close()
			return nil, common.Wrap(op, common.ErrResourceUnavailable, err)
		}
		return NewPort(c, p, l), nil
	}
}

// OpenHat returns an Opener for the Waveshare HAT header pins. Only the SPI
// settings of cfg are used.
func OpenHat(cfg Config) Opener {
	return func() (Port, error) {
		const op = "transport.OpenHat"
		p, c, err := openBus(&cfg)
		if err != nil {
			return nil, common.Wrap(op, common.ErrResourceUnavailable, err)
		}
		l, err := NewPinLines(rpi.P1_11, rpi.P1_22, rpi.P1_18)
		if err != nil {
			_ = p.Close()
			return nil, common.Wrap(op, common.ErrResourceUnavailable, err)
		}
		return NewPort(c, p, l), nil
	}
}
