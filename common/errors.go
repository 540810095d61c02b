// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package common contains definitions used across multiple packages. For
// example, the error kinds reported by the panel driver and its framebuffer.
package common

import (
	"errors"
	"fmt"
)

// Error kinds. Match them with errors.Is.
var (
	// ErrResourceUnavailable is returned when a device node or GPIO line
	// cannot be opened or is held by another owner.
	ErrResourceUnavailable = errors.New("resource unavailable")
	// ErrTransport is returned when an SPI transfer or line update fails. The
	// panel must be initialized again before further use.
	ErrTransport = errors.New("transport error")
	// ErrTimeout is returned when the busy line does not clear in time.
	ErrTimeout = errors.New("timeout waiting for panel")
	// ErrOutOfRange is returned for framebuffer coordinates outside the panel.
	ErrOutOfRange = errors.New("coordinate out of range")
	// ErrInvalidState is returned when an operation is not permitted in the
	// current driver state.
	ErrInvalidState = errors.New("invalid state")
)

// Error records the operation that failed, its kind and the underlying
// cause, if any.
type Error struct {
	Op   string
	Kind error
	Err  error
}

// Wrap returns an *Error for op. A nil err yields an error carrying only the
// kind.
func Wrap(op string, kind, err error) error {
	return &Error{Op: op, Kind: kind, Err: err}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
