// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"github.com/GermanBionicSystems/lcdbackpack/pcf857x"
)

type writeMode byte

// Expander byte layout. The data nibble sits on D4-D7, R/W is always low.
const (
	modeCommand writeMode = 0
	modeData    writeMode = 1 << pcf857x.PinRS

	bitEnable    byte = 1 << pcf857x.PinE
	bitBacklight byte = 1 << pcf857x.PinBacklight
	nibbleShift       = pcf857x.PinD4
)

// expanderByte builds the byte that puts nibble on the data lines. The
// backlight bit rides along in every byte.
func (d Display) expanderByte(nibble byte, mode writeMode, enable bool) byte {
	b := (nibble&0x0f)<<nibbleShift | byte(mode)
	if d.backlight {
		b |= bitBacklight
	}
	if enable {
		b |= bitEnable
	}
	return b
}

// pulse latches one nibble: E high with the data, then E low with the same
// data. The controller samples on the falling edge.
func (d Display) pulse(nibble byte, mode writeMode) error {
	if err := d.expanderWrite(d.expanderByte(nibble, mode, true)); err != nil {
		return err
	}
	return d.expanderWrite(d.expanderByte(nibble, mode, false))
}

// send transmits a full byte as high nibble then low nibble.
func (d Display) send(value byte, mode writeMode) error {
	if err := d.pulse(value>>4, mode); err != nil {
		return err
	}
	return d.pulse(value&0x0f, mode)
}

func (d Display) instruction(value byte) error {
	return d.send(value, modeCommand)
}

func (d Display) data(value byte) error {
	return d.send(value, modeData)
}

func (d Display) expanderWrite(b byte) error {
	return d.bus.Tx(d.addr, []byte{b}, nil)
}
