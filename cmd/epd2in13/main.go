// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// epd2in13 draws text and test patterns on a 2.13 inch e-paper panel.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/GermanBionicSystems/einkpanel/epd"
	"github.com/GermanBionicSystems/einkpanel/framebuffer"
	"github.com/GermanBionicSystems/einkpanel/glyph"
	"github.com/GermanBionicSystems/einkpanel/preview"
	"github.com/GermanBionicSystems/einkpanel/transport"
)

func opener(backend string, cfg transport.Config) (transport.Opener, error) {
	switch backend {
	case "periph":
		return transport.OpenPeriph(cfg), nil
	case "cdev":
		return transport.OpenCdev(cfg), nil
	case "hat":
		return transport.OpenHat(cfg), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", backend)
	}
}

func loadFace(path string, size float64) (*glyph.Face, error) {
	switch {
	case path != "":
		ttf, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return glyph.ParseTrueType(ttf, max(size, 8))
	case size > 0:
		return glyph.GoRegular(size)
	default:
		return glyph.Default(), nil
	}
}

func mainImpl() error {
	cfg := transport.DefaultConfig
	backend := flag.String("backend", "cdev", "GPIO backend: cdev, periph or hat")
	flag.StringVar(&cfg.SPIDev, "spi", cfg.SPIDev, "SPI port")
	flag.Var(&cfg.Clock, "clock", "SPI clock")
	flag.StringVar(&cfg.Chip, "chip", cfg.Chip, "GPIO chip (cdev backend)")
	flag.IntVar(&cfg.Reset, "rst", cfg.Reset, "reset line offset")
	flag.IntVar(&cfg.DataCommand, "dc", cfg.DataCommand, "data/command line offset")
	flag.IntVar(&cfg.Busy, "busy", cfg.Busy, "busy line offset")

	fontPath := flag.String("font", "", "TrueType font file; default is Go Regular or the 7x13 fixed font")
	size := flag.Float64("size", 0, "font size in pixels; 0 selects the 7x13 fixed font")
	text := flag.String("text", "Hello", "text to draw, lines separated by \\n")
	pattern := flag.Bool("pattern", false, "draw the stripe test pattern")
	border := flag.Bool("border", true, "draw a rounded border")
	clearOnly := flag.Bool("clear", false, "clear the panel and exit")
	rewind := flag.Bool("rewind", false, "program the RAM window before every refresh")

	usePreview := flag.Bool("preview", false, "render to the terminal instead of the panel")
	scale := flag.Int("scale", 2, "pixels per terminal block with -preview")

	verbose := flag.Bool("v", false, "verbose logging")
	jsonLog := flag.Bool("json", false, "log as JSON")
	flag.Parse()
	if flag.NArg() != 0 {
		return errors.New("unexpected argument, try -help")
	}

	log := logrus.New()
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	if *jsonLog {
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	face, err := loadFace(*fontPath, *size)
	if err != nil {
		return err
	}
	s := screen{face: face, text: *text, pattern: *pattern, border: *border}

	opts := epd.EPD2in13
	opts.RewindWindow = *rewind
	opts.Logger = log

	if *usePreview {
		fb := framebuffer.New(opts.Width, opts.Height)
		if err := s.compose(fb); err != nil {
			return err
		}
		p := preview.New(&preview.Opts{Scale: *scale})
		defer p.Halt()
		return p.Render(fb)
	}

	open, err := opener(*backend, cfg)
	if err != nil {
		return err
	}
	dev, err := epd.New(open, &opts)
	if err != nil {
		return err
	}
	if *clearOnly {
		if err := dev.Init(); err != nil {
			return err
		}
		return dev.Halt()
	}
	return show(dev, &s, log)
}

// show draws s on the panel and puts it to sleep, whatever happens.
func show(dev *epd.Dev, s *screen, log logrus.FieldLogger) (err error) {
	if err := dev.Init(); err != nil {
		return err
	}
	defer func() {
		if cerr := dev.Cleanup(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()
	log.WithField("device", dev).Info("panel ready")

	if err := s.compose(dev.Framebuffer()); err != nil {
		return err
	}
	return dev.Refresh()
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "epd2in13: %s.\n", err)
		os.Exit(1)
	}
}
