// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/naoina/toml"
	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/physic"

	"github.com/GermanBionicSystems/lcdbackpack/hd44780"
)

// fileConfig is the TOML configuration file. Every key is optional:
//
//	display_name = "front panel"
//	i2c_bus      = "i2c-1"
//	i2c_address  = "0x27"
//	rows         = 4
//	cols         = 20
//	font_size    = "5x8"
//	i2c_speed    = "100kHz"
//	log_level    = "info"
type fileConfig struct {
	DisplayName string    `toml:"display_name"`
	I2CBus      string    `toml:"i2c_bus"`
	I2CAddress  address   `toml:"i2c_address"`
	Rows        int       `toml:"rows"`
	Cols        int       `toml:"cols"`
	FontSize    string    `toml:"font_size"`
	I2CSpeed    frequency `toml:"i2c_speed"`
	LogLevel    string    `toml:"log_level"`
}

func defaultConfig() fileConfig {
	return fileConfig{
		I2CBus:     hd44780.DefaultBus,
		I2CAddress: address(hd44780.DefaultAddress),
		Rows:       hd44780.DefaultRows,
		Cols:       hd44780.DefaultCols,
		FontSize:   string(hd44780.Font5x8),
		LogLevel:   logrus.InfoLevel.String(),
	}
}

// loadConfig reads path over the defaults.
func loadConfig(path string) (fileConfig, error) {
	fc := defaultConfig()
	if path == "" {
		return fc, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err = toml.Unmarshal(b, &fc); err != nil {
		return fc, fmt.Errorf("%s: %w", path, err)
	}
	return fc, nil
}

// driver returns the hd44780 configuration.
func (fc *fileConfig) driver(log logrus.FieldLogger) hd44780.Config {
	return hd44780.Config{
		Name:    fc.DisplayName,
		Bus:     fc.I2CBus,
		Address: uint16(fc.I2CAddress),
		Rows:    fc.Rows,
		Cols:    fc.Cols,
		Font:    hd44780.FontSize(fc.FontSize),
		Speed:   physic.Frequency(fc.I2CSpeed),
		Logger:  log,
	}
}

// address is a 7 bit I²C address. It accepts decimal, 0x hexadecimal and 0o
// octal notation, both on the command line and as a TOML string or integer.
type address uint16

func (a *address) Set(s string) error {
	v, err := strconv.ParseUint(s, 0, 7)
	if err != nil {
		return fmt.Errorf("invalid I²C address %q", s)
	}
	*a = address(v)
	return nil
}

func (a *address) String() string {
	return fmt.Sprintf("%#x", uint16(*a))
}

func (a *address) UnmarshalText(b []byte) error {
	return a.Set(string(b))
}

// frequency is a bus speed such as "400kHz".
type frequency physic.Frequency

func (f *frequency) Set(s string) error {
	return (*physic.Frequency)(f).Set(s)
}

func (f *frequency) String() string {
	return physic.Frequency(*f).String()
}

func (f *frequency) UnmarshalText(b []byte) error {
	return f.Set(string(b))
}
