// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package transport

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"periph.io/x/conn/v3/conntest"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spitest"
)

type testPort struct {
	Port
	record        *spitest.Record
	rst, dc, busy *gpiotest.Pin
}

func newTestPort(t *testing.T) *testPort {
	t.Helper()

	record := &spitest.Record{}
	c, err := record.Connect(20*physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		t.Fatalf("Connect() failed: %v", err)
	}

	tp := &testPort{
		record: record,
		rst:    &gpiotest.Pin{N: "RST"},
		dc:     &gpiotest.Pin{N: "DC"},
		busy:   &gpiotest.Pin{N: "BUSY"},
	}

	l, err := NewPinLines(tp.rst, tp.dc, tp.busy)
	if err != nil {
		t.Fatalf("NewPinLines() failed: %v", err)
	}

	tp.Port = NewPort(c, nil, l)
	return tp
}

func TestPortTx(t *testing.T) {
	p := newTestPort(t)

	for _, w := range [][]byte{{0x12}, {0xF9, 0x00, 0x00}, make([]byte, 16)} {
		if err := p.Tx(w); err != nil {
			t.Fatalf("Tx(%v) failed: %v", w, err)
		}
	}

	// Every transaction carries exactly the bytes handed in.
	want := []conntest.IO{
		{W: []byte{0x12}},
		{W: []byte{0xF9, 0x00, 0x00}},
		{W: make([]byte, 16)},
	}

	if diff := cmp.Diff(p.record.Ops, want, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("Tx() difference (-got +want):\n%s", diff)
	}
}

func TestPinLines(t *testing.T) {
	p := newTestPort(t)

	if err := p.SetLines(Outputs, Bit(Reset)|Bit(DataCommand)); err != nil {
		t.Fatalf("SetLines() failed: %v", err)
	}
	if p.rst.L != gpio.High || p.dc.L != gpio.High {
		t.Errorf("levels rst=%s dc=%s, want High High", p.rst.L, p.dc.L)
	}

	if err := p.SetLines(Bit(DataCommand), 0); err != nil {
		t.Fatalf("SetLines() failed: %v", err)
	}
	if p.rst.L != gpio.High || p.dc.L != gpio.Low {
		t.Errorf("levels rst=%s dc=%s, want High Low", p.rst.L, p.dc.L)
	}

	if err := p.SetLines(Bit(Busy), Bit(Busy)); err == nil {
		t.Error("SetLines(Busy) succeeded, want error")
	}

	for _, tc := range []struct {
		level gpio.Level
		want  Mask
	}{
		{gpio.Low, Bit(Reset)},
		{gpio.High, Bit(Reset) | Bit(Busy)},
	} {
		p.busy.L = tc.level
		got, err := p.GetLines(Outputs | Bit(Busy))
		if err != nil {
			t.Fatalf("GetLines() failed: %v", err)
		}
		if got != tc.want {
			t.Errorf("GetLines() with busy %s = %03b, want %03b", tc.level, got, tc.want)
		}
	}
}

func TestPortClose(t *testing.T) {
	p := newTestPort(t)

	for i := 0; i < 2; i++ {
		if err := p.Close(); err != nil {
			t.Errorf("Close() #%d failed: %v", i, err)
		}
	}
	if err := p.Tx([]byte{0}); err == nil {
		t.Error("Tx() after Close() succeeded")
	}
	if _, err := p.GetLines(Bit(Busy)); err == nil {
		t.Error("GetLines() after Close() succeeded")
	}
	if diff := cmp.Diff(p.String(), "closed"); diff != "" {
		t.Errorf("String() difference (-got +want):\n%s", diff)
	}
}

func TestDefaultConfig(t *testing.T) {
	want := Config{
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
	if diff := cmp.Diff(DefaultConfig, want); diff != "" {
		t.Errorf("DefaultConfig difference (-got +want):\n%s", diff)
	}
}
