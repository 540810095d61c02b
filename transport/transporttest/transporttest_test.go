// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package transporttest

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/GermanBionicSystems/einkpanel/common"
	"github.com/GermanBionicSystems/einkpanel/transport"
)

func TestRecords(t *testing.T) {
	p := &Port{}
	dc := transport.Bit(transport.DataCommand)

	steps := []struct {
		data bool
		w    []byte
	}{
		{true, []byte{0xAA}}, // before any command, dropped
		{false, []byte{0x24}},
		{true, []byte{0x01, 0x02}},
		{true, []byte{0x03}},
		{false, []byte{0x20}},
	}
	for _, s := range steps {
		var bits transport.Mask
		if s.data {
			bits = dc
		}
		if err := p.SetLines(dc, bits); err != nil {
			t.Fatal(err)
		}
		if err := p.Tx(s.w); err != nil {
			t.Fatal(err)
		}
	}

	want := []Record{
		{Cmd: 0x24, Data: []byte{0x01, 0x02, 0x03}},
		{Cmd: 0x20},
	}
	if diff := cmp.Diff(p.Records(), want, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("Records() difference (-got +want):\n%s", diff)
	}
}

func TestOpenerExclusive(t *testing.T) {
	p := &Port{}
	open := p.Opener()

	if _, err := open(); err != nil {
		t.Fatal(err)
	}
	if _, err := open(); !errors.Is(err, common.ErrResourceUnavailable) {
		t.Errorf("second open = %v, want ErrResourceUnavailable", err)
	}
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := open(); err != nil {
		t.Errorf("open after Close() failed: %v", err)
	}
	if p.Opens != 2 {
		t.Errorf("Opens = %d, want 2", p.Opens)
	}
}

func TestBusyAndFailures(t *testing.T) {
	cause := errors.New("boom")
	p := &Port{BusyReads: 1, TxErr: cause, FailTx: 2}
	busy := transport.Bit(transport.Busy)

	for i, want := range []transport.Mask{busy, 0} {
		got, err := p.GetLines(busy)
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("sample %d = %03b, want %03b", i, got, want)
		}
	}
	if err := p.Tx([]byte{1}); err != nil {
		t.Fatal(err)
	}
	if err := p.Tx([]byte{2}); !errors.Is(err, cause) {
		t.Errorf("second Tx() = %v, want %v", err, cause)
	}
	if len(p.Ops) != 1 {
		t.Errorf("%d recorded transactions, want 1", len(p.Ops))
	}
}
