// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package epd

import (
	"fmt"

	"github.com/GermanBionicSystems/einkpanel/common"
)

func (s *session) sendCommand(cmd byte) error {
	if err := s.setMode(modeCommand); err != nil {
		return err
	}
	if err := s.port.Tx([]byte{cmd}); err != nil {
		return common.Wrap("epd.sendCommand", common.ErrTransport, fmt.Errorf("command %#02x: %w", cmd, err))
	}
	return nil
}

// sendData sends data in a single transaction. Empty data sends nothing.
func (s *session) sendData(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	if err := s.setMode(modeData); err != nil {
		return err
	}
	if err := s.port.Tx(data); err != nil {
		return common.Wrap("epd.sendData", common.ErrTransport, fmt.Errorf("%d bytes: %w", len(data), err))
	}
	return nil
}
