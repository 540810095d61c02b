// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package epd

type controller interface {
	sendCommand(byte)
	sendData([]byte)
	sendByte(byte)
	waitUntilFree()
}

// Commands
const (
	driverOutputControl            byte = 0x01
	deepSleepMode                  byte = 0x10
	dataEntryModeSetting           byte = 0x11
	swReset                        byte = 0x12
	tempSensorSelect               byte = 0x18
	masterActivation               byte = 0x20
	displayUpdateControl1          byte = 0x21
	displayUpdateControl2          byte = 0x22
	writeRAMBW                     byte = 0x24
	borderWaveformControl          byte = 0x3C
	setRAMXAddressStartEndPosition byte = 0x44
	setRAMYAddressStartEndPosition byte = 0x45
	setRAMXAddressCounter          byte = 0x4E
	setRAMYAddressCounter          byte = 0x4F
)

const (
	// X increments, then Y: matches the row-major framebuffer layout.
	dataEntryXIncYInc  byte = 0x03
	internalTempSensor byte = 0x80
)

// Flags for the displayUpdateControl2 command
const (
	displayUpdateDisableClock byte = 1 << iota
	displayUpdateDisableAnalog
	displayUpdateDisplay
	displayUpdateMode2
	displayUpdateLoadLUTFromOTP
	displayUpdateLoadTemperature
	displayUpdateEnableClock
	displayUpdateEnableAnalog
)

// FullUpdate is the displayUpdateControl2 sequence for a full refresh:
// enable clock and analog, load temperature and LUT, display, then disable
// analog and clock.
const FullUpdate = displayUpdateEnableClock |
	displayUpdateEnableAnalog |
	displayUpdateLoadTemperature |
	displayUpdateLoadLUTFromOTP |
	displayUpdateDisplay |
	displayUpdateDisableAnalog |
	displayUpdateDisableClock

func initDisplay(ctrl controller, opts *Opts) {
	ctrl.sendCommand(swReset)
	ctrl.waitUntilFree()

	// Gate lines and scan direction.
	ctrl.sendCommand(driverOutputControl)
	ctrl.sendData([]byte{byte((opts.Height - 1) & 0xFF), byte((opts.Height - 1) >> 8), 0x00})

	ctrl.sendCommand(dataEntryModeSetting)
	ctrl.sendByte(dataEntryXIncYInc)

	setWindow(ctrl, 0, 0, opts.Width-1, opts.Height-1)
	setCursor(ctrl, 0, 0)

	ctrl.sendCommand(borderWaveformControl)
	ctrl.sendByte(opts.BorderWaveform)

	ctrl.sendCommand(displayUpdateControl1)
	ctrl.sendData(opts.UpdateControl1[:])

	ctrl.sendCommand(tempSensorSelect)
	ctrl.sendByte(internalTempSensor)
	ctrl.waitUntilFree()
}

// setWindow sets the RAM window. X coordinates are in pixels and rounded
// down to bytes.
func setWindow(ctrl controller, xStart, yStart, xEnd, yEnd int) {
	ctrl.sendCommand(setRAMXAddressStartEndPosition)
	ctrl.sendData([]byte{byte((xStart >> 3) & 0xFF), byte((xEnd >> 3) & 0xFF)})

	ctrl.sendCommand(setRAMYAddressStartEndPosition)
	ctrl.sendData([]byte{byte(yStart & 0xFF), byte((yStart >> 8) & 0xFF), byte(yEnd & 0xFF), byte((yEnd >> 8) & 0xFF)})
}

// setCursor positions the RAM address counter.
func setCursor(ctrl controller, x, y int) {
	ctrl.sendCommand(setRAMXAddressCounter)
	// x point must be the multiple of 8 or the last 3 bits will be ignored
	ctrl.sendData([]byte{byte((x >> 3) & 0xFF)})

	ctrl.sendCommand(setRAMYAddressCounter)
	ctrl.sendData([]byte{byte(y & 0xFF), byte((y >> 8) & 0xFF)})
}

// writeFrame uploads rows to the black/white RAM, one transaction per row.
func writeFrame(ctrl controller, rows [][]byte) {
	ctrl.sendCommand(writeRAMBW)
	for _, row := range rows {
		ctrl.sendData(row)
	}
}

// turnOnDisplay runs the update sequence and waits for the panel to finish
// redrawing.
func turnOnDisplay(ctrl controller, sequence byte) {
	ctrl.sendCommand(displayUpdateControl2)
	ctrl.sendByte(sequence)
	ctrl.sendCommand(masterActivation)
	ctrl.waitUntilFree()
}

func deepSleep(ctrl controller, mode byte) {
	ctrl.sendCommand(deepSleepMode)
	ctrl.sendByte(mode)
}
