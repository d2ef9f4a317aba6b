// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"errors"
	"fmt"
	"sync"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/i2c"
)

// ErrNotImplemented is returned by Device methods the controller has no
// instruction for.
var ErrNotImplemented = fmt.Errorf("hd44780: %w", display.ErrNotImplemented)

// Device holds a Display behind a mutex and implements
// periph.io/x/conn/v3/display.TextDisplay. Rows and columns are 1 based, as
// the interface requires.
type Device struct {
	mu     sync.Mutex
	d      Display
	halted bool
}

var errHalted = errors.New("hd44780: device halted")

// NewDevice starts a display as described by cfg.
func NewDevice(cfg Config) (*Device, error) {
	d, err := Start(cfg)
	if err != nil {
		return nil, err
	}
	return &Device{d: d}, nil
}

// NewPCF857xBackpack returns a display on a PCF8574 backpack at address on an
// already opened bus. Halt does not close bus.
func NewPCF857xBackpack(bus i2c.Bus, address uint16, rows, cols int) (*Device, error) {
	return NewDevice(Config{
		Name:    bus.String(),
		Address: address,
		Rows:    rows,
		Cols:    cols,
		Opener: OpenerFunc(func(string) (i2c.BusCloser, error) {
			return nopCloser{bus}, nil
		}),
	})
}

// exec runs cmd and keeps the resulting Display.
func (dev *Device) exec(cmd Command) error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	if dev.halted {
		return errHalted
	}
	next, ok, err := dev.d.Execute(cmd)
	if !ok {
		return fmt.Errorf("hd44780: unsupported command %q: %w", cmd.Name(), display.ErrNotImplemented)
	}
	dev.d = next
	return err
}

// Snapshot returns a copy of the current Display.
func (dev *Device) Snapshot() Display {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	return dev.d
}

// Enable/Disable auto scroll
func (dev *Device) AutoScroll(enabled bool) error {
	return dev.exec(Autoscroll{On: enabled})
}

// Clears the screen and moves the cursor to the first position.
func (dev *Device) Clear() error {
	return dev.exec(Clear{})
}

// Return the number of columns the display supports
func (dev *Device) Cols() int {
	return dev.Snapshot().Cols()
}

// Set the cursor mode. You can pass multiple arguments.
// Cursor(CursorOff, CursorUnderline)
func (dev *Device) Cursor(modes ...display.CursorMode) error {
	underline, blink := false, false
	for _, mode := range modes {
		switch mode {
		case display.CursorOff:
			underline, blink = false, false
		case display.CursorUnderline:
			underline = true
		case display.CursorBlock, display.CursorBlink:
			blink = true
		default:
			return fmt.Errorf("hd44780: unexpected cursor: %d", mode)
		}
	}
	if err := dev.exec(Cursor{On: underline}); err != nil {
		return err
	}
	return dev.exec(Blink{On: blink})
}

// Move the cursor home (MinRow(),MinCol())
func (dev *Device) Home() error {
	return dev.exec(Home{})
}

// Return the min column position.
func (dev *Device) MinCol() int {
	return 1
}

// Return the min row position.
func (dev *Device) MinRow() int {
	return 1
}

// Move the cursor forward or backward.
func (dev *Device) Move(dir display.CursorDirection) error {
	switch dir {
	case display.Backward:
		return dev.exec(Left{N: 1})
	case display.Forward:
		return dev.exec(Right{N: 1})
	}
	return ErrNotImplemented
}

// Move the cursor to arbitrary position.
func (dev *Device) MoveTo(row, col int) error {
	d := dev.Snapshot()
	if row < dev.MinRow() || row > d.Rows() || col < dev.MinCol() || col > d.Cols() {
		return fmt.Errorf("hd44780: MoveTo(%d,%d) value out of range", row, col)
	}
	return dev.exec(SetCursor{Row: row - 1, Col: col - 1})
}

// Return the number of rows the display supports.
func (dev *Device) Rows() int {
	return dev.Snapshot().Rows()
}

// Return info about the display.
func (dev *Device) String() string {
	return dev.Snapshot().String()
}

// Turn the display on / off
func (dev *Device) Display(on bool) error {
	return dev.exec(Power{On: on})
}

// Write a set of bytes to the display. The bytes are character codes and are
// sent untranslated.
func (dev *Device) Write(p []byte) (int, error) {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	if dev.halted {
		return 0, errHalted
	}
	for n, b := range p {
		if err := dev.d.data(b); err != nil {
			return n, err
		}
	}
	return len(p), nil
}

// Write a string output to the display. See Print for the character mapping.
func (dev *Device) WriteString(text string) (int, error) {
	if err := dev.exec(Print{Text: text}); err != nil {
		return 0, err
	}
	return len(text), nil
}

// Backlight turns the backlight on for any non zero intensity.
func (dev *Device) Backlight(intensity display.Intensity) error {
	return dev.exec(Backlight{On: intensity > 0})
}

// CreateChar programs custom character index (0-7). Print it with
// string(rune(index)).
func (dev *Device) CreateChar(index int, bitmap []byte) error {
	if index < 0 || index > 7 || len(bitmap) != 8 {
		return fmt.Errorf("hd44780: invalid custom character %d with %d rows", index, len(bitmap))
	}
	return dev.exec(Char{Index: index, Bitmap: bitmap})
}

// Scroll shifts the display n cells, to the left when n is negative.
func (dev *Device) Scroll(n int) error {
	return dev.exec(Scroll{N: n})
}

// Halt turns the display off and releases the bus. The Device cannot be used
// afterwards.
func (dev *Device) Halt() error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	if dev.halted {
		return nil
	}
	dev.halted = true
	return dev.d.Stop()
}

var _ display.TextDisplay = &Device{}
var _ display.DisplayBacklight = &Device{}
var _ conn.Resource = &Device{}
