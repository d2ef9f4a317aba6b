// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"bytes"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2ctest"

	"github.com/GermanBionicSystems/lcdbackpack/hd44780"
	"github.com/GermanBionicSystems/lcdbackpack/lcdsim"
)

func TestRun(t *testing.T) {
	var logs bytes.Buffer
	log := logrus.New()
	log.SetOutput(&logs)
	sim := lcdsim.New(0x27, 2, 8)
	d, err := hd44780.Start(hd44780.Config{
		Rows:   2,
		Cols:   8,
		Logger: log,
		Opener: hd44780.OpenerFunc(func(string) (i2c.BusCloser, error) {
			return sim, nil
		}),
	})
	if err != nil {
		t.Fatal(err)
	}
	cmds, err := parseScript(bytes.NewBufferString("clear\nprint hi\nsleep 1ms\nrainbow\nset_cursor 1 2\nprint there\nbacklight off\n"))
	if err != nil {
		t.Fatal(err)
	}
	d, err = run(d, cmds, log)
	if err != nil {
		t.Fatal(err)
	}
	if d.State().Backlight {
		t.Error("returned Display still has the backlight on")
	}
	want := []string{"hi      ", "  there "}
	if diff := cmp.Diff(want, sim.Lines()); diff != "" {
		t.Fatalf("lines (-want +got):\n%s", diff)
	}
	if !bytes.Contains(logs.Bytes(), []byte("command=rainbow")) {
		t.Fatalf("unsupported command not logged: %q", logs.String())
	}
	if err = d.Release(); err != nil {
		t.Fatal(err)
	}
	if st := sim.State(); !st.Closed || st.Control&0x04 == 0 {
		t.Fatalf("after Release: %+v", st)
	}
}

func TestRunBusError(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	sim := lcdsim.New(0x27, 2, 16)
	d, err := hd44780.Start(hd44780.Config{
		Logger: log,
		Opener: hd44780.OpenerFunc(func(string) (i2c.BusCloser, error) {
			return sim, nil
		}),
	})
	if err != nil {
		t.Fatal(err)
	}
	_ = sim.Close()
	if _, err = run(d, []hd44780.Command{hd44780.Clear{}}, log); err == nil {
		t.Fatal("run() succeeded on a closed bus")
	}
}

func TestPin(t *testing.T) {
	bus := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: 0x27, W: []byte{0x08}},
			{Addr: 0x27, W: []byte{0x00}},
			{Addr: 0x27, W: []byte{0x10}},
			{Addr: 0x27, R: []byte{0x10}},
		},
		DontPanic: true,
	}
	for _, line := range []struct {
		args []string
		want string
	}{
		{[]string{"3", "high"}, ""},
		{[]string{"3", "low"}, ""},
		{[]string{"4", "read"}, "PCF8574_27_GPIO4=High"},
	} {
		got, err := pin(bus, 0x27, line.args)
		if err != nil {
			t.Fatalf("pin(%q): %v", line.args, err)
		}
		if got != line.want {
			t.Errorf("pin(%q) = %q, want %q", line.args, got, line.want)
		}
	}
	if err := bus.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestPinErrors(t *testing.T) {
	bus := &i2ctest.Playback{DontPanic: true}
	for _, args := range [][]string{nil, {"3"}, {"8", "high"}, {"-1", "low"}, {"x", "read"}, {"3", "toggle"}} {
		if _, err := pin(bus, 0x27, args); err == nil {
			t.Errorf("pin(%q) succeeded", args)
		}
	}
}
