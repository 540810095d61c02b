// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package transport

import (
	"errors"

	"github.com/warthog618/go-gpiocdev"

	"github.com/GermanBionicSystems/einkpanel/common"
)

// cdevLines holds lines requested from the GPIO character device. The
// outputs share one request; busy is requested separately since the kernel
// refuses value updates on requests mixing directions.
type cdevLines struct {
	out    *gpiocdev.Lines
	busy   *gpiocdev.Line
	levels Mask
}

func requestCdevLines(cfg *Config) (*cdevLines, error) {
	out, err := gpiocdev.RequestLines(cfg.Chip, []int{cfg.Reset, cfg.DataCommand},
		gpiocdev.AsOutput(0, 0), gpiocdev.WithConsumer(cfg.Consumer))
	if err != nil {
		return nil, err
	}
	busy, err := gpiocdev.RequestLine(cfg.Chip, cfg.Busy,
		gpiocdev.AsInput, gpiocdev.WithConsumer(cfg.Consumer))
	if err != nil {
		_ = out.Close()
		return nil, err
	}
	return &cdevLines{out: out, busy: busy}, nil
}

func (l *cdevLines) SetLines(mask, bits Mask) error {
	if mask&Bit(Busy) != 0 {
		return errors.New("transport: busy is an input line")
	}
	levels := l.levels&^mask | bits&mask
	values := []int{0, 0}
	for i := range values {
		if levels&Bit(i) != 0 {
			values[i] = 1
		}
	}
	if err := l.out.SetValues(values); err != nil {
		return err
	}
	l.levels = levels
	return nil
}

func (l *cdevLines) GetLines(mask Mask) (Mask, error) {
	bits := l.levels & mask & Outputs
	if mask&Bit(Busy) != 0 {
		v, err := l.busy.Value()
		if err != nil {
			return 0, err
		}
		if v != 0 {
			bits |= Bit(Busy)
		}
	}
	return bits, nil
}

func (l *cdevLines) Close() error {
	var errs []error
	if l.out != nil {
		errs = append(errs, l.out.Close())
		l.out = nil
	}
	if l.busy != nil {
		errs = append(errs, l.busy.Close())
		l.busy = nil
	}
	return errors.Join(errs...)
}

// OpenCdev returns an Opener that requests the GPIO lines from cfg.Chip
// through the character device and opens cfg.SPIDev with periph.io.
func OpenCdev(cfg Config) Opener {
	return func() (Port, error) {
		const op = "transport.OpenCdev"
		l, err := requestCdevLines(&cfg)
		if err != nil {
			return nil, common.Wrap(op, common.ErrResourceUnavailable, err)
		}
		p, c, err := openBus(&cfg)
		if err != nil {
			_ = l.Close()
			return nil, common.Wrap(op, common.ErrResourceUnavailable, err)
		}
		return NewPort(c, p, l), nil
	}
}
