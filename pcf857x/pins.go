// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pcf857x

import (
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

// line is one expander line. It implements gpio.PinIO.
type line struct {
	dev    *Dev
	number int
	name   string
}

func (l *line) bit() gpio.GPIOValue {
	return gpio.GPIOValue(1) << l.number
}

func (l *line) DefaultPull() gpio.Pull {
	return gpio.PullUp
}

// Function is part of pin.Pin. The chip has no direction register.
func (l *line) Function() string {
	return "In/Out"
}

func (l *line) Halt() error {
	return nil
}

// In releases the line high. The chip has a weak internal pull-up and no
// pull-down, so pull is ignored. Edge detection is not supported.
func (l *line) In(pull gpio.Pull, edge gpio.Edge) error {
	if edge != gpio.NoEdge {
		return ErrNotImplemented
	}
	return l.dev.Out(l.bit(), l.bit())
}

func (l *line) Name() string {
	return l.name
}

func (l *line) Number() int {
	return l.number
}

func (l *line) Out(level gpio.Level) error {
	var v gpio.GPIOValue
	if level {
		v = l.bit()
	}
	return l.dev.Out(v, l.bit())
}

func (l *line) Pull() gpio.Pull {
	return gpio.PullUp
}

// Read returns Low on bus errors.
func (l *line) Read() gpio.Level {
	v, err := l.dev.Read(l.bit())
	if err != nil {
		return gpio.Low
	}
	return v != 0
}

func (l *line) PWM(duty gpio.Duty, f physic.Frequency) error {
	return ErrNotImplemented
}

func (l *line) String() string {
	return l.name
}

// The INT output of the chip fires on any line change; it has to be wired to
// a host GPIO to be useful.
func (l *line) WaitForEdge(timeout time.Duration) bool {
	return false
}

var _ gpio.PinIO = &line{}
