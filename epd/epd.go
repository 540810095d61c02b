// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package epd

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/display"
	"periph.io/x/devices/v3/ssd1306/image1bit"

	"github.com/GermanBionicSystems/einkpanel/common"
	"github.com/GermanBionicSystems/einkpanel/framebuffer"
	"github.com/GermanBionicSystems/einkpanel/transport"
)

// State is the lifecycle state of a panel.
type State uint8

const (
	// Uninitialized means no session is open.
	Uninitialized State = iota
	// Resetting is the hardware reset step of Init.
	Resetting
	// Configuring is the command sequence step of Init.
	Configuring
	// Idle means the panel is ready for Refresh or Sleep.
	Idle
	// Updating means a refresh is in flight, or failed and requires Init.
	Updating
	// Sleeping means the panel is in deep sleep and requires Init.
	Sleeping
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "Uninitialized"
	case Resetting:
		return "Resetting"
	case Configuring:
		return "Configuring"
	case Idle:
		return "Idle"
	case Updating:
		return "Updating"
	case Sleeping:
		return "Sleeping"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// Opts defines the structure of the display configuration.
type Opts struct {
	Width  int
	Height int

	// BorderWaveform is sent with borderWaveformControl (0x3C).
	BorderWaveform byte
	// UpdateControl1 is sent with displayUpdateControl1 (0x21).
	UpdateControl1 [2]byte
	// UpdateSequence is sent with displayUpdateControl2 (0x22) on every
	// refresh. Revisions of the vendor code use FullUpdate (0xF7) and 0x91;
	// only FullUpdate has been verified on hardware.
	UpdateSequence byte
	// SleepMode is sent with deepSleepMode (0x10).
	SleepMode byte

	// BusyPolls bounds every wait on the busy line, BusyInterval is the
	// delay between samples.
	BusyPolls    int
	BusyInterval time.Duration

	// RewindWindow programs the RAM window and cursor again before each
	// frame upload.
	RewindWindow bool

	// Logger receives state transitions. Nil discards.
	Logger logrus.FieldLogger
}

// EPD2in13 contains display configuration for the Waveshare 2.13 inch V3
// and V4.
var EPD2in13 = Opts{
	Width:          122,
	Height:         250,
	BorderWaveform: 0x05,
	UpdateControl1: [2]byte{0x00, 0x80},
	UpdateSequence: FullUpdate,
	SleepMode:      0x03,
	BusyPolls:      200,
	BusyInterval:   500 * time.Millisecond,
}

// Dev defines the handler which is used to access the display.
type Dev struct {
	open  transport.Opener
	opts  Opts
	log   logrus.FieldLogger
	sleep func(time.Duration)

	s     *session
	state State
	fb    *framebuffer.Framebuffer
}

// New creates a handler for the display. No hardware is touched until Init
// opens a session through open.
func New(open transport.Opener, opts *Opts) (*Dev, error) {
	if opts.Width <= 0 || opts.Height <= 0 || opts.Width > 8*256 || opts.Height > 1<<16 {
		return nil, fmt.Errorf("epd: unsupported geometry %dx%d", opts.Width, opts.Height)
	}
	o := *opts
	if o.BusyPolls <= 0 {
		o.BusyPolls = EPD2in13.BusyPolls
	}
	if o.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		o.Logger = l
	}
	return &Dev{
		open:  open,
		opts:  o,
		log:   o.Logger.WithField("device", "epd"),
		sleep: time.Sleep,
		fb:    framebuffer.New(o.Width, o.Height),
	}, nil
}

// NewHat creates a handler using the Waveshare HAT wiring on a Raspberry Pi
// and the default SPI port.
func NewHat(opts *Opts) (*Dev, error) {
	return New(transport.OpenHat(transport.DefaultConfig), opts)
}

func (d *Dev) setState(s State) {
	if s == d.state {
		return
	}
	d.log.WithFields(logrus.Fields{"from": d.state, "to": s}).Debug("state change")
	d.state = s
}

func (d *Dev) handler() *errorHandler {
	return &errorHandler{s: d.s, polls: d.opts.BusyPolls, interval: d.opts.BusyInterval}
}

func (d *Dev) warn(op string, err error) {
	entry := d.log.WithError(err).WithField("op", op)
	if errors.Is(err, common.ErrTimeout) {
		entry.Warn("panel stuck busy")
		return
	}
	entry.Debug("operation failed")
}

// Init resets and configures the display. It opens a session when none is
// held and reuses the current one when the panel sleeps or a refresh failed.
// On failure the session is released.
func (d *Dev) Init() error {
	switch d.state {
	case Uninitialized:
		p, err := d.open()
		if err != nil {
			return err
		}
		d.s = newSession(p, d.sleep)
	case Sleeping, Updating:
	default:
		return common.Wrap("epd.Init", common.ErrResourceUnavailable,
			fmt.Errorf("session already open (%s)", d.state))
	}

	d.setState(Resetting)
	if err := d.s.hardwareReset(); err != nil {
		return d.abort("Init", err)
	}

	d.setState(Configuring)
	eh := d.handler()
	initDisplay(eh, &d.opts)
	if eh.err != nil {
		return d.abort("Init", eh.err)
	}

	d.setState(Idle)
	return nil
}

func (d *Dev) abort(op string, err error) error {
	d.warn(op, err)
	if cerr := d.s.close(); cerr != nil {
		d.log.WithError(cerr).Warn("releasing lines failed")
	}
	d.s = nil
	d.setState(Uninitialized)
	return err
}

func (d *Dev) requireIdle(op string) error {
	if d.state != Idle {
		return common.Wrap(op, common.ErrInvalidState, fmt.Errorf("panel is %s", d.state))
	}
	return nil
}

// Refresh uploads the framebuffer and redraws the panel. A failed refresh
// leaves the panel Updating; call Init to recover.
func (d *Dev) Refresh() error {
	if err := d.requireIdle("epd.Refresh"); err != nil {
		return err
	}
	d.setState(Updating)

	eh := d.handler()
	if d.opts.RewindWindow {
		setWindow(eh, 0, 0, d.opts.Width-1, d.opts.Height-1)
		setCursor(eh, 0, 0)
	}
	writeFrame(eh, d.fb.Rows())
	turnOnDisplay(eh, d.opts.UpdateSequence)
	if eh.err != nil {
		d.warn("Refresh", eh.err)
		return eh.err
	}

	d.setState(Idle)
	return nil
}

// Sleep makes the controller enter deep sleep mode. It can be woken up by
// calling Init again.
func (d *Dev) Sleep() error {
	if err := d.requireIdle("epd.Sleep"); err != nil {
		return err
	}
	eh := d.handler()
	deepSleep(eh, d.opts.SleepMode)
	if eh.err != nil {
		return eh.err
	}
	d.setState(Sleeping)
	return nil
}

// Clear paints the framebuffer white and refreshes the panel.
func (d *Dev) Clear() error {
	if err := d.requireIdle("epd.Clear"); err != nil {
		return err
	}
	d.fb.Fill(false)
	return d.Refresh()
}

// Cleanup puts an idle panel to sleep, drives the outputs low and releases
// the session. It is a no-op without a session.
func (d *Dev) Cleanup() error {
	if d.s == nil {
		return nil
	}
	var errs []error
	if d.state == Idle {
		errs = append(errs, d.Sleep())
	}
	errs = append(errs, d.s.close())
	d.s = nil
	d.setState(Uninitialized)

	err := errors.Join(errs...)
	if err != nil {
		d.log.WithError(err).Warn("cleanup failed")
	}
	return err
}

// Halt clears an idle panel, then calls Cleanup.
func (d *Dev) Halt() error {
	var err error
	if d.state == Idle {
		err = d.Clear()
	}
	return errors.Join(err, d.Cleanup())
}

// ColorModel returns a 1Bit color model.
func (d *Dev) ColorModel() color.Model {
	return image1bit.BitModel
}

// Bounds returns the bounds for the configurated display.
func (d *Dev) Bounds() image.Rectangle {
	return d.fb.Bounds()
}

// Draw renders src into the framebuffer and refreshes the panel.
func (d *Dev) Draw(dstRect image.Rectangle, src image.Image, srcPts image.Point) error {
	if err := d.requireIdle("epd.Draw"); err != nil {
		return err
	}
	draw.Draw(d.fb, dstRect, src, srcPts, draw.Src)
	return d.Refresh()
}

// Framebuffer returns the buffer uploaded by Refresh.
func (d *Dev) Framebuffer() *framebuffer.Framebuffer {
	return d.fb
}

// State returns the lifecycle state.
func (d *Dev) State() State {
	return d.state
}

// String returns a string containing configuration information.
func (d *Dev) String() string {
	port := "closed"
	if d.s != nil {
		port = d.s.port.String()
	}
	return fmt.Sprintf("epd.Dev{%s, %s, Width: %d, Height: %d}", port, d.state, d.opts.Width, d.opts.Height)
}

var _ display.Drawer = &Dev{}
