// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package epd

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/GermanBionicSystems/einkpanel/common"
	"github.com/GermanBionicSystems/einkpanel/transport"
	"github.com/GermanBionicSystems/einkpanel/transport/transporttest"
)

type sleepRecorder []time.Duration

func (s *sleepRecorder) sleep(d time.Duration) {
	*s = append(*s, d)
}

func newTestSession(p *transporttest.Port) (*session, *sleepRecorder) {
	var sleeps sleepRecorder
	return newSession(p, sleeps.sleep), &sleeps
}

func TestHardwareReset(t *testing.T) {
	p := &transporttest.Port{}
	s, sleeps := newTestSession(p)

	if err := s.hardwareReset(); err != nil {
		t.Fatal(err)
	}

	rst := transport.Bit(transport.Reset)
	wantLines := []transporttest.LineIO{
		{Mask: transport.Outputs, Bits: 0},
		{Mask: rst, Bits: rst},
	}
	if diff := cmp.Diff(p.Lines, wantLines); diff != "" {
		t.Errorf("hardwareReset() lines (-got +want):\n%s", diff)
	}
	if diff := cmp.Diff([]time.Duration(*sleeps), []time.Duration{10 * time.Millisecond, 20 * time.Millisecond}); diff != "" {
		t.Errorf("hardwareReset() delays (-got +want):\n%s", diff)
	}
}

func TestSendModes(t *testing.T) {
	p := &transporttest.Port{}
	s, _ := newTestSession(p)

	if err := s.sendCommand(0x44); err != nil {
		t.Fatal(err)
	}
	if err := s.sendData([]byte{0x00, 0x0F}); err != nil {
		t.Fatal(err)
	}
	if err := s.sendData(make([]byte, 300)); err != nil {
		t.Fatal(err)
	}

	want := []transporttest.IO{
		{Data: false, W: []byte{0x44}},
		{Data: true, W: []byte{0x00, 0x0F}},
		{Data: true, W: make([]byte, 300)},
	}
	if diff := cmp.Diff(p.Ops, want); diff != "" {
		t.Errorf("transactions (-got +want):\n%s", diff)
	}
	// D/C is driven before every transaction.
	if got := len(p.Lines); got != 3 {
		t.Errorf("%d line writes, want 3", got)
	}
}

func TestSendDataEmpty(t *testing.T) {
	p := &transporttest.Port{}
	s, _ := newTestSession(p)

	if err := s.sendData(nil); err != nil {
		t.Fatal(err)
	}
	if len(p.Ops) != 0 || len(p.Lines) != 0 {
		t.Errorf("sendData(nil) touched the port: %d transactions, %d line writes", len(p.Ops), len(p.Lines))
	}
}

func TestSendCommandFailure(t *testing.T) {
	cause := errors.New("ioctl failed")
	p := &transporttest.Port{TxErr: cause, FailTx: 1}
	s, _ := newTestSession(p)

	err := s.sendCommand(0x12)
	if !errors.Is(err, common.ErrTransport) || !errors.Is(err, cause) {
		t.Errorf("sendCommand() = %v, want ErrTransport wrapping the cause", err)
	}
}

func TestWaitUntilFree(t *testing.T) {
	for _, tc := range []struct {
		name      string
		busyReads int
		maxPolls  int
		wantReads int
		wantErr   error
	}{
		{name: "free", busyReads: 0, maxPolls: 5, wantReads: 1},
		{name: "busy then free", busyReads: 3, maxPolls: 5, wantReads: 4},
		{name: "last poll", busyReads: 4, maxPolls: 5, wantReads: 5},
		{name: "timeout", busyReads: -1, maxPolls: 5, wantReads: 5, wantErr: common.ErrTimeout},
		{name: "zero polls", busyReads: -1, maxPolls: 0, wantReads: 1, wantErr: common.ErrTimeout},
	} {
		t.Run(tc.name, func(t *testing.T) {
			p := &transporttest.Port{BusyReads: tc.busyReads}
			s, sleeps := newTestSession(p)

			err := s.waitUntilFree(tc.maxPolls, time.Millisecond)
			if diff := cmp.Diff(err, tc.wantErr, cmpopts.EquateErrors()); diff != "" {
				t.Errorf("waitUntilFree() error (-got +want):\n%s", diff)
			}
			if p.Reads != tc.wantReads {
				t.Errorf("%d busy samples, want %d", p.Reads, tc.wantReads)
			}
			if len(*sleeps) != tc.wantReads-1 {
				t.Errorf("%d sleeps, want %d", len(*sleeps), tc.wantReads-1)
			}
		})
	}
}

func TestSessionClose(t *testing.T) {
	p := &transporttest.Port{}
	open := p.Opener()
	port, err := open()
	if err != nil {
		t.Fatal(err)
	}
	s := newSession(port, func(time.Duration) {})
	if err := s.assertReset(false); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 2; i++ {
		if err := s.close(); err != nil {
			t.Errorf("close() #%d failed: %v", i, err)
		}
	}
	if p.Closes != 1 {
		t.Errorf("port closed %d times, want 1", p.Closes)
	}
	if p.Level(transport.Reset) || p.Level(transport.DataCommand) {
		t.Error("outputs left high after close()")
	}
	if p.IsOpen() {
		t.Error("port still open")
	}
}
