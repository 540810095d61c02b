// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package epd

import (
	"errors"
	"fmt"
	"time"

	"github.com/GermanBionicSystems/einkpanel/common"
	"github.com/GermanBionicSystems/einkpanel/transport"
)

// Hardware reset timing of the controller.
const (
	resetHold   = 10 * time.Millisecond
	resetSettle = 20 * time.Millisecond
)

type mode bool

const (
	modeCommand mode = false
	modeData    mode = true
)

// session is an open panel: the transport port plus the GPIO discipline
// around it. Nothing else touches the lines.
type session struct {
	port   transport.Port
	sleep  func(time.Duration)
	closed bool
}

func newSession(p transport.Port, sleep func(time.Duration)) *session {
	return &session{port: p, sleep: sleep}
}

func (s *session) setLines(op string, mask, bits transport.Mask) error {
	if err := s.port.SetLines(mask, bits); err != nil {
		return common.Wrap(op, common.ErrTransport, err)
	}
	return nil
}

// assertReset holds the panel in reset when active is true.
func (s *session) assertReset(active bool) error {
	var bits transport.Mask
	if !active {
		bits = transport.Bit(transport.Reset)
	}
	return s.setLines("epd.assertReset", transport.Bit(transport.Reset), bits)
}

func (s *session) hardwareReset() error {
	if err := s.setLines("epd.hardwareReset", transport.Outputs, 0); err != nil {
		return err
	}
	s.sleep(resetHold)
	if err := s.assertReset(false); err != nil {
		return err
	}
	s.sleep(resetSettle)
	return nil
}

func (s *session) setMode(m mode) error {
	var bits transport.Mask
	if m == modeData {
		bits = transport.Bit(transport.DataCommand)
	}
	return s.setLines("epd.setMode", transport.Bit(transport.DataCommand), bits)
}

func (s *session) readBusy() (bool, error) {
	bits, err := s.port.GetLines(transport.Bit(transport.Busy))
	if err != nil {
		return false, common.Wrap("epd.readBusy", common.ErrTransport, err)
	}
	return bits&transport.Bit(transport.Busy) != 0, nil
}

// waitUntilFree samples the busy line up to maxPolls times, at least once,
// sleeping interval between samples.
func (s *session) waitUntilFree(maxPolls int, interval time.Duration) error {
	for i := 1; ; i++ {
		busy, err := s.readBusy()
		if err != nil {
			return err
		}
		if !busy {
			return nil
		}
		if i >= maxPolls {
			return common.Wrap("epd.waitUntilFree", common.ErrTimeout,
				fmt.Errorf("still busy after %d polls %s apart", i, interval))
		}
		s.sleep(interval)
	}
}

// close drives the outputs low and releases the port. It is safe to call
// more than once.
func (s *session) close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return errors.Join(
		s.setLines("epd.close", transport.Outputs, 0),
		s.port.Close(),
	)
}
