// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c"

	"github.com/GermanBionicSystems/lcdbackpack/hd44780"
	"github.com/GermanBionicSystems/lcdbackpack/pcf857x"
)

// runPin opens the bus and drives one expander line.
func runPin(fc *fileConfig, log logrus.FieldLogger, args []string) error {
	bus, err := hd44780.HostOpener.Open(fc.I2CBus)
	if err != nil {
		return err
	}
	defer bus.Close()
	out, err := pin(bus, uint16(fc.I2CAddress), args)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"bus": fc.I2CBus, "address": fmt.Sprintf("%#x", uint16(fc.I2CAddress))}).Debugf("pin %s", args[0])
	if out != "" {
		fmt.Println(out)
	}
	return nil
}

// pin runs "<line> high|low|read" on the expander at addr. It returns the
// level read, if any.
func pin(bus i2c.Bus, addr uint16, args []string) (string, error) {
	if len(args) != 2 {
		return "", fmt.Errorf("pin: %w: want <line> high|low|read", errUsage)
	}
	dev, err := pcf857x.New(bus, addr, pcf857x.PCF8574)
	if err != nil {
		return "", err
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 0 || n >= len(dev.Pins) {
		return "", fmt.Errorf("pin: invalid line %q", args[0])
	}
	p := dev.Pins[n]
	switch args[1] {
	case "high":
		return "", p.Out(gpio.High)
	case "low":
		return "", p.Out(gpio.Low)
	case "read":
		v, err := dev.Read(gpio.GPIOValue(1) << n)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s=%s", p.Name(), gpio.Level(v != 0)), nil
	}
	return "", fmt.Errorf("pin: want high, low or read, got %q", args[1])
}
