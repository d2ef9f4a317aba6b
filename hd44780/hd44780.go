// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package hd44780 controls the Hitachi LCD display chipset HD-44780 wired to
// a PCF8574 I²C backpack, the LCD1602/LCD2004 modules sold everywhere.
//
// The controller runs in 4-bit mode: every byte goes out as two nibbles on
// D4-D7 and every nibble is latched by an enable pulse, i.e. two writes to the
// expander. The backlight line shares the expander byte so its state is part
// of every write.
//
// A Display is a value. Execute returns the updated Display and the caller
// keeps using the returned copy. A Display must not be used from more than
// one goroutine at a time; Device wraps one behind a mutex and implements
// periph.io/x/conn/v3/display.TextDisplay.
//
// # Datasheet
//
// https://www.sparkfun.com/datasheets/LCD/HD44780.pdf
//
// https://www.handsontec.com/dataspecs/I2C_2004_LCD.pdf
package hd44780

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

const (
	DefaultBus            = "i2c-1"
	DefaultAddress uint16 = 0x27
	DefaultRows           = 2
	DefaultCols           = 16

	// MaxRows is the number of rows the DDRAM address map can express.
	MaxRows = 4
	// MaxCols is the length of one DDRAM line.
	MaxCols = 40
)

// Settle times from the datasheet, rounded up.
const (
	delayProbeFirst  = 5 * time.Millisecond
	delayProbeSecond = 5 * time.Millisecond
	delayProbeThird  = 1 * time.Millisecond
	delayClear       = 2 * time.Millisecond
)

// ErrInvalidConfig is returned by Start for configuration values the
// controller cannot honour.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config describes a display. Every field is optional.
type Config struct {
	// Name identifies the display in logs. Defaults to Bus.
	Name string
	// Bus is the I²C bus name given to Opener, e.g. "i2c-1", "I2C1" or "1".
	Bus string
	// Address is the 7 bit address of the backpack. Defaults to 0x27.
	Address uint16
	// Rows is 1 to 4. Defaults to 2.
	Rows int
	// Cols is 1 to 40. Defaults to 16.
	Cols int
	// Font defaults to Font5x8.
	Font FontSize
	// Speed, when not zero, is set on the bus after opening it.
	Speed physic.Frequency
	// Opener defaults to HostOpener.
	Opener Opener
	// Logger defaults to logrus.StandardLogger(). The driver only logs at
	// debug level.
	Logger logrus.FieldLogger
}

// withDefaults returns a copy of cfg with the zero fields filled in.
func (cfg Config) withDefaults() Config {
	if cfg.Bus == "" {
		cfg.Bus = DefaultBus
	}
	if cfg.Name == "" {
		cfg.Name = cfg.Bus
	}
	if cfg.Address == 0 {
		cfg.Address = DefaultAddress
	}
	if cfg.Rows == 0 {
		cfg.Rows = DefaultRows
	}
	if cfg.Cols == 0 {
		cfg.Cols = DefaultCols
	}
	if cfg.Font == "" {
		cfg.Font = Font5x8
	}
	if cfg.Opener == nil {
		cfg.Opener = HostOpener
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	return cfg
}

func (cfg Config) validate() error {
	switch {
	case cfg.Address > 0x7f:
		return fmt.Errorf("hd44780: %w: address %#x is not a 7 bit address", ErrInvalidConfig, cfg.Address)
	case cfg.Rows < 1 || cfg.Rows > MaxRows:
		return fmt.Errorf("hd44780: %w: rows=%d", ErrInvalidConfig, cfg.Rows)
	case cfg.Cols < 1 || cfg.Cols > MaxCols:
		return fmt.Errorf("hd44780: %w: cols=%d", ErrInvalidConfig, cfg.Cols)
	case cfg.Font != Font5x8 && cfg.Font != Font5x10:
		return fmt.Errorf("hd44780: %w: font_size=%q", ErrInvalidConfig, cfg.Font)
	case cfg.Speed < 0:
		return fmt.Errorf("hd44780: %w: speed=%s", ErrInvalidConfig, cfg.Speed)
	}
	return nil
}

// Display is the state of one LCD. It owns its bus until Stop.
type Display struct {
	bus       i2c.BusCloser
	addr      uint16
	name      string
	rows      int
	cols      int
	font      FontSize
	entry     EntryMode
	control   DisplayControl
	backlight bool

	log   logrus.FieldLogger
	sleep func(time.Duration)
}

// State is a snapshot of the fields of a Display.
type State struct {
	Name           string
	Address        uint16
	Rows           int
	Cols           int
	Font           FontSize
	EntryMode      EntryMode
	DisplayControl DisplayControl
	Backlight      bool
}

// Start opens the bus, runs the initialization sequence and returns the ready
// Display: display on, cursor and blink off, text left to right, no
// autoscroll, backlight on.
//
// Bus errors are returned as is. The bus is closed on failure.
func Start(cfg Config) (Display, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return Display{}, err
	}
	bus, err := cfg.Opener.Open(cfg.Bus)
	if err != nil {
		return Display{}, err
	}
	if cfg.Speed != 0 {
		if err = bus.SetSpeed(cfg.Speed); err != nil {
			_ = bus.Close()
			return Display{}, err
		}
	}
	d := newDisplay(bus, cfg)
	if err = d.init(); err != nil {
		_ = bus.Close()
		return Display{}, err
	}
	d.log.WithFields(logrus.Fields{
		"display": d.name,
		"bus":     cfg.Bus,
		"address": fmt.Sprintf("%#x", d.addr),
		"rows":    d.rows,
		"cols":    d.cols,
	}).Debug("hd44780: display ready")
	return d, nil
}

func newDisplay(bus i2c.BusCloser, cfg Config) Display {
	return Display{
		bus:       bus,
		addr:      cfg.Address,
		name:      cfg.Name,
		rows:      cfg.Rows,
		cols:      cfg.Cols,
		font:      cfg.Font,
		entry:     entryModeSet | EntryIncrement,
		control:   displayControlSet | ControlDisplay,
		backlight: true,
		log:       cfg.Logger,
		sleep:     time.Sleep,
	}
}

// init runs the power-on sequence of the datasheet (figure 24, 4-bit
// interface). The controller may be in 8-bit mode, or in 4-bit mode halfway
// through a byte, so it is first forced into 8-bit mode with three single
// nibble function sets before switching to 4-bit.
func (d Display) init() error {
	probe := (instrFunctionSet | function8Bit) >> 4
	for _, delay := range []time.Duration{delayProbeFirst, delayProbeSecond, delayProbeThird} {
		if err := d.pulse(probe, modeCommand); err != nil {
			return err
		}
		d.sleep(delay)
	}
	if err := d.pulse(instrFunctionSet>>4, modeCommand); err != nil {
		return err
	}
	// Lines and font can only be set here; the function set is never sent
	// again.
	if err := d.instruction(functionSet(d.rows, d.font)); err != nil {
		return err
	}
	if err := d.instruction(byte(d.control)); err != nil {
		return err
	}
	if err := d.clear(); err != nil {
		return err
	}
	return d.instruction(byte(d.entry))
}

// Stop turns the display off and releases the bus. The bus is closed even if
// the display could not be turned off; the first error is returned.
func (d Display) Stop() error {
	_, _, err := d.Execute(Power{On: false})
	if cerr := d.bus.Close(); err == nil {
		err = cerr
	}
	d.log.WithField("display", d.name).Debug("hd44780: display stopped")
	return err
}

// Release closes the bus and leaves the controller as it is, so the text
// stays on screen after the process exits.
func (d Display) Release() error {
	return d.bus.Close()
}

// State returns a snapshot of the display fields.
func (d Display) State() State {
	return State{
		Name:           d.name,
		Address:        d.addr,
		Rows:           d.rows,
		Cols:           d.cols,
		Font:           d.font,
		EntryMode:      d.entry,
		DisplayControl: d.control,
		Backlight:      d.backlight,
	}
}

// Rows returns the number of rows.
func (d Display) Rows() int {
	return d.rows
}

// Cols returns the number of columns.
func (d Display) Cols() int {
	return d.cols
}

func (d Display) String() string {
	return fmt.Sprintf("HD44780 %s@%#x - Rows: %d, Cols: %d", d.name, d.addr, d.rows, d.cols)
}
