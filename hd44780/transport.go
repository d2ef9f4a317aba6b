// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"strings"
	"sync"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// Opener acquires the I²C bus a display is attached to. The returned bus is
// owned by the Display and closed by Stop.
type Opener interface {
	Open(name string) (i2c.BusCloser, error)
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(name string) (i2c.BusCloser, error)

func (f OpenerFunc) Open(name string) (i2c.BusCloser, error) {
	return f(name)
}

// HostOpener opens buses through the periph.io host drivers. host.Init() is
// called on first use.
var HostOpener Opener = &hostOpener{}

type hostOpener struct {
	once sync.Once
	err  error
}

func (h *hostOpener) Open(name string) (i2c.BusCloser, error) {
	h.once.Do(func() {
		_, h.err = host.Init()
	})
	if h.err != nil {
		return nil, h.err
	}
	return i2creg.Open(registryName(name))
}

// registryName maps the Linux device name "i2c-1" to the name the sysfs
// driver registers, "/dev/i2c-1". Aliases ("I2C1"), bus numbers and the empty
// default are passed through.
func registryName(name string) string {
	if strings.HasPrefix(name, "i2c-") {
		return "/dev/" + name
	}
	return name
}

// nopCloser lends a bus owned by someone else to a Display.
type nopCloser struct {
	i2c.Bus
}

func (nopCloser) Close() error {
	return nil
}
