// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package epd

import "time"

// errorHandler is a wrapper for error management. After the first failure
// every further call is a no-op.
type errorHandler struct {
	s        *session
	polls    int
	interval time.Duration
	err      error
}

func (eh *errorHandler) sendCommand(cmd byte) {
	if eh.err != nil {
		return
	}
	eh.err = eh.s.sendCommand(cmd)
}

func (eh *errorHandler) sendData(data []byte) {
	if eh.err != nil {
		return
	}
	eh.err = eh.s.sendData(data)
}

func (eh *errorHandler) sendByte(b byte) {
	eh.sendData([]byte{b})
}

func (eh *errorHandler) waitUntilFree() {
	if eh.err != nil {
		return
	}
	eh.err = eh.s.waitUntilFree(eh.polls, eh.interval)
}
