// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package pcf857x provides direct line access to the TI/NXP PCF857X I²C I/O
// expander found on the common LCD1602/LCD2004 backpacks. The PCF8574 has 8
// "quasi-bidirectional" lines, the PCF8575 has 16 and reads and writes two
// bytes at a time.
//
// The hd44780 driver does not go through this package: it writes whole
// expander bytes itself, since every nibble has to reach the controller as
// exactly two bus writes. This package is for poking individual lines, e.g.
// to check the wiring of a backpack or to drive the spare lines of a PCF8575.
//
// # Datasheet
//
// https://www.ti.com/lit/ds/symlink/pcf8574.pdf
//
// A good description of the I²C LCD backpack usage can be found here:
//
// https://www.handsontec.com/dataspecs/I2C_2004_LCD.pdf
//
// # Notes
//
// Reading a line consists of writing a High to it and then reading back
// whether something pulled it low. Setting a line to Low activates an open
// drain to ground. The chip has no register map: a write sets all the lines, a
// read returns all the lines.
package pcf857x

import (
	"errors"
	"fmt"
	"sync"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c"
)

// Variant represents the actual chip model.
type Variant string

const (
	PCF8574 Variant = "PCF8574"
	PCF8575 Variant = "PCF8575"

	// DefaultAddress is the address of the PCF8574 with A0-A2 pulled high,
	// the way most LCD backpacks ship.
	DefaultAddress uint16 = 0x27
)

// Line numbers of the PCF8574 on an LCD backpack.
const (
	PinRS        = 0
	PinRW        = 1
	PinE         = 2
	PinBacklight = 3
	PinD4        = 4
	PinD5        = 5
	PinD6        = 6
	PinD7        = 7
)

var (
	ErrNotImplemented = errors.New("pcf857x: not implemented")
	errHalted         = errors.New("pcf857x: device halted")
)

// Dev is representation of a PCF857x device.
type Dev struct {
	// The lines exposed by the device. 8 for the PCF8574, 16 for the PCF8575.
	Pins []gpio.PinIO

	variant Variant
	width   int
	mask    gpio.GPIOValue

	mu     sync.Mutex
	d      *i2c.Dev
	latch  gpio.GPIOValue
	synced bool
	halted bool
}

// New returns a PCF857x expander on the bus. Nothing is written until the
// first output or read.
func New(bus i2c.Bus, address uint16, variant Variant) (*Dev, error) {
	var width int
	switch variant {
	case PCF8574:
		width = 8
	case PCF8575:
		width = 16
	default:
		return nil, fmt.Errorf("pcf857x: unknown variant %q", variant)
	}
	if address > 0x7f {
		return nil, fmt.Errorf("pcf857x: invalid address %#x", address)
	}
	dev := &Dev{
		d:       &i2c.Dev{Bus: bus, Addr: address},
		variant: variant,
		width:   width,
		mask:    gpio.GPIOValue(1)<<width - 1,
	}
	dev.Pins = make([]gpio.PinIO, width)
	for ix := range width {
		dev.Pins[ix] = &line{dev: dev, number: ix, name: fmt.Sprintf("%s_GPIO%d", dev, ix)}
	}
	return dev, nil
}

// Width returns the number of lines of the expander.
func (dev *Dev) Width() int {
	return dev.width
}

// Out sets the lines selected by mask to the matching bits of value. The
// other lines keep the last value written. A zero mask selects every line.
func (dev *Dev) Out(value, mask gpio.GPIOValue) error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	return dev.write(value, mask)
}

// Read returns the level of the lines selected by mask. The lines are first
// released high so that anything driving them low can be seen.
func (dev *Dev) Read(mask gpio.GPIOValue) (gpio.GPIOValue, error) {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	if mask == 0 {
		mask = dev.mask
	}
	if err := dev.write(mask, mask); err != nil {
		return 0, err
	}
	r := make([]byte, dev.width/8)
	if err := dev.d.Tx(nil, r); err != nil {
		return 0, fmt.Errorf("pcf857x: %w", err)
	}
	var v gpio.GPIOValue
	for ix, b := range r {
		v |= gpio.GPIOValue(b) << (8 * ix)
	}
	return v & mask, nil
}

// Latch returns the value last written to the expander.
func (dev *Dev) Latch() gpio.GPIOValue {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	return dev.latch
}

// Halt drives every line low and detaches the pins.
func (dev *Dev) Halt() error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	if dev.halted {
		return nil
	}
	err := dev.write(0, dev.mask)
	dev.halted = true
	return err
}

func (dev *Dev) String() string {
	return fmt.Sprintf("%s_%x", dev.variant, dev.d.Addr)
}

// write merges value into the cached latch and sends it. The first write is
// always sent because the power-on state of the chip is unknown to us.
//
// dev.mu must be held.
func (dev *Dev) write(value, mask gpio.GPIOValue) error {
	if dev.halted {
		return errHalted
	}
	if mask == 0 {
		mask = dev.mask
	}
	mask &= dev.mask
	next := dev.latch&^mask | value&mask
	if dev.synced && next == dev.latch {
		return nil
	}
	w := make([]byte, dev.width/8)
	for ix := range w {
		w[ix] = byte(next >> (8 * ix))
	}
	if err := dev.d.Tx(w, nil); err != nil {
		return fmt.Errorf("pcf857x: %w", err)
	}
	dev.latch = next
	dev.synced = true
	return nil
}

var _ conn.Resource = &Dev{}
