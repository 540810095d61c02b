// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package transporttest implements a recording transport.Port for tests.
package transporttest

import (
	"errors"

	"github.com/GermanBionicSystems/einkpanel/common"
	"github.com/GermanBionicSystems/einkpanel/transport"
)

// IO is one SPI transaction together with the data/command level it was
// sent under.
type IO struct {
	Data bool
	W    []byte
}

// LineIO is one SetLines call.
type LineIO struct {
	Mask transport.Mask
	Bits transport.Mask
}

// Record is a command byte followed by the data bytes sent after it.
type Record struct {
	Cmd  byte
	Data []byte
}

// Port records every transaction. The zero value is ready to use.
type Port struct {
	Ops   []IO
	Lines []LineIO

	// BusyReads is the number of busy line samples reporting busy before the
	// line reads free. A negative value keeps the line busy forever.
	BusyReads int
	// Reads counts busy line samples.
	Reads int

	// TxErr is returned by the FailTx-th call to Tx (1-based). FailTx zero
	// disables the failure.
	TxErr  error
	FailTx int

	// OpenErr, if set, is returned by the opener.
	OpenErr error
	// Opens counts successful opens; Closes counts Close calls.
	Opens  int
	Closes int

	levels transport.Mask
	open   bool
	txs    int
}

// Opener returns a transport.Opener handing out p. Opening p while it is
// already open fails like an exclusive device node would.
func (p *Port) Opener() transport.Opener {
	return func() (transport.Port, error) {
		if p.OpenErr != nil {
			return nil, common.Wrap("transporttest.Open", common.ErrResourceUnavailable, p.OpenErr)
		}
		if p.open {
			return nil, common.Wrap("transporttest.Open", common.ErrResourceUnavailable, errors.New("device busy"))
		}
		p.open = true
		p.Opens++
		return p, nil
	}
}

// IsOpen reports whether the port is held.
func (p *Port) IsOpen() bool {
	return p.open
}

// Level reports the last level driven on output line i.
func (p *Port) Level(i int) bool {
	return p.levels&transport.Bit(i) != 0
}

func (p *Port) String() string {
	return "transporttest"
}

// Tx implements transport.Port.
func (p *Port) Tx(w []byte) error {
	p.txs++
	if p.TxErr != nil && p.txs == p.FailTx {
		return p.TxErr
	}
	p.Ops = append(p.Ops, IO{
		Data: p.Level(transport.DataCommand),
		W:    append([]byte(nil), w...),
	})
	return nil
}

// SetLines implements transport.Port.
func (p *Port) SetLines(mask, bits transport.Mask) error {
	p.Lines = append(p.Lines, LineIO{Mask: mask, Bits: bits & mask})
	p.levels = p.levels&^mask | bits&mask
	return nil
}

// GetLines implements transport.Port.
func (p *Port) GetLines(mask transport.Mask) (transport.Mask, error) {
	bits := p.levels & mask & transport.Outputs
	if mask&transport.Bit(transport.Busy) != 0 {
		p.Reads++
		if p.BusyReads != 0 {
			if p.BusyReads > 0 {
				p.BusyReads--
			}
			bits |= transport.Bit(transport.Busy)
		}
	}
	return bits, nil
}

// Close implements transport.Port.
func (p *Port) Close() error {
	p.Closes++
	p.open = false
	return nil
}

// Records groups the recorded transactions by command. Data sent before the
// first command is dropped.
func (p *Port) Records() []Record {
	var out []Record
	for _, op := range p.Ops {
		if !op.Data {
			for _, c := range op.W {
				out = append(out, Record{Cmd: c})
			}
			continue
		}
		if len(out) > 0 {
			cur := &out[len(out)-1]
			cur.Data = append(cur.Data, op.W...)
		}
	}
	return out
}

// Reset forgets recorded transactions.
func (p *Port) Reset() {
	p.Ops = nil
	p.Lines = nil
	p.Reads = 0
	p.txs = 0
}
