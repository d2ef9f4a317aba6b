// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/display/displaytest"

	"github.com/GermanBionicSystems/lcdbackpack/lcdsim"
)

func getDevice(t *testing.T, rows, cols int) (*Device, *lcdsim.Controller) {
	t.Helper()
	sim := lcdsim.New(testAddr, rows, cols)
	dev, err := NewDevice(Config{Rows: rows, Cols: cols, Opener: busOpener(sim), Logger: quietLogger()})
	if err != nil {
		t.Fatal(err)
	}
	return dev, sim
}

func TestDeviceInterface(t *testing.T) {
	for _, geometry := range [][2]int{{2, 16}, {4, 20}} {
		dev, sim := getDevice(t, geometry[0], geometry[1])
		for _, err := range displaytest.TestTextDisplay(dev, false) {
			t.Errorf("%dx%d: %v", geometry[0], geometry[1], err)
		}
		if !sim.State().FourBit {
			t.Error("controller left 8-bit mode")
		}
		if err := dev.Halt(); err != nil {
			t.Error(err)
		}
	}
}

func TestDeviceBasic(t *testing.T) {
	dev, sim := getDevice(t, 2, 16)
	if dev.Rows() != 2 || dev.Cols() != 16 || dev.MinRow() != 1 || dev.MinCol() != 1 {
		t.Fatalf("geometry %d,%d %d,%d", dev.Rows(), dev.Cols(), dev.MinRow(), dev.MinCol())
	}
	if _, err := dev.WriteString("1234567890"); err != nil {
		t.Fatal(err)
	}
	if err := dev.MoveTo(2, 2); err != nil {
		t.Fatal(err)
	}
	if n, err := dev.Write([]byte("2345678901")); n != 10 || err != nil {
		t.Fatalf("Write() = %d, %v", n, err)
	}
	want := []string{"1234567890      ", " 2345678901     "}
	if diff := cmp.Diff(want, sim.Lines()); diff != "" {
		t.Fatalf("lines (-want +got):\n%s", diff)
	}
	if err := dev.MoveTo(3, 1); err == nil {
		t.Fatal("MoveTo(3,1) succeeded")
	}
}

func TestDeviceCursor(t *testing.T) {
	dev, sim := getDevice(t, 2, 16)
	data := []struct {
		modes []display.CursorMode
		want  byte
	}{
		{[]display.CursorMode{display.CursorUnderline}, 0x0e},
		{[]display.CursorMode{display.CursorBlink}, 0x0d},
		{[]display.CursorMode{display.CursorBlock}, 0x0d},
		{[]display.CursorMode{display.CursorUnderline, display.CursorBlink}, 0x0f},
		{[]display.CursorMode{display.CursorBlink, display.CursorOff}, 0x0c},
		{nil, 0x0c},
	}
	for _, line := range data {
		if err := dev.Cursor(line.modes...); err != nil {
			t.Fatal(err)
		}
		if got := sim.State().Control; got != line.want {
			t.Errorf("Cursor(%v): control %#x, want %#x", line.modes, got, line.want)
		}
	}
	if err := dev.Cursor(display.CursorBlink + 1); err == nil {
		t.Error("invalid cursor mode accepted")
	}
}

func TestDeviceMove(t *testing.T) {
	dev, sim := getDevice(t, 2, 16)
	if _, err := dev.WriteString("ab"); err != nil {
		t.Fatal(err)
	}
	if err := dev.Move(display.Backward); err != nil {
		t.Fatal(err)
	}
	if _, err := dev.WriteString("c"); err != nil {
		t.Fatal(err)
	}
	if err := dev.Move(display.Forward); err != nil {
		t.Fatal(err)
	}
	if _, err := dev.WriteString("d"); err != nil {
		t.Fatal(err)
	}
	if got := sim.Lines()[0]; got != "ac d            " {
		t.Fatalf("line %q", got)
	}
	for _, dir := range []display.CursorDirection{display.Up, display.Down} {
		if err := dev.Move(dir); !errors.Is(err, display.ErrNotImplemented) {
			t.Errorf("Move(%d) = %v", dir, err)
		}
	}
}

func TestDeviceBacklight(t *testing.T) {
	dev, sim := getDevice(t, 2, 16)
	if err := dev.Backlight(0); err != nil {
		t.Fatal(err)
	}
	if sim.State().Backlight || dev.Snapshot().State().Backlight {
		t.Fatal("backlight still on")
	}
	if err := dev.Backlight(255); err != nil {
		t.Fatal(err)
	}
	if !sim.State().Backlight {
		t.Fatal("backlight still off")
	}
}

func TestDeviceCreateChar(t *testing.T) {
	dev, sim := getDevice(t, 2, 16)
	heart := []byte{0x00, 0x0a, 0x1f, 0x1f, 0x0e, 0x04, 0x00, 0x00}
	if err := dev.CreateChar(5, heart); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(heart, sim.Glyph(5)); diff != "" {
		t.Fatalf("glyph (-want +got):\n%s", diff)
	}
	if err := dev.CreateChar(8, heart); err == nil {
		t.Fatal("index 8 accepted")
	}
	if err := dev.CreateChar(0, heart[:4]); err == nil {
		t.Fatal("short bitmap accepted")
	}
}

func TestDeviceHalt(t *testing.T) {
	dev, sim := getDevice(t, 2, 16)
	if err := dev.Halt(); err != nil {
		t.Fatal(err)
	}
	if !sim.State().Closed {
		t.Fatal("bus not closed")
	}
	if err := dev.Halt(); err != nil {
		t.Fatalf("second Halt() = %v", err)
	}
	if err := dev.Clear(); err == nil {
		t.Fatal("Clear() after Halt succeeded")
	}
	if _, err := dev.Write([]byte{'x'}); err == nil {
		t.Fatal("Write() after Halt succeeded")
	}
}

func TestPCF857xBackpack(t *testing.T) {
	sim := lcdsim.New(0x3f, 4, 20)
	dev, err := NewPCF857xBackpack(sim, 0x3f, 4, 20)
	if err != nil {
		t.Fatal(err)
	}
	if _, err = dev.WriteString("hi"); err != nil {
		t.Fatal(err)
	}
	if err = dev.Halt(); err != nil {
		t.Fatal(err)
	}
	// The bus belongs to the caller.
	if sim.State().Closed {
		t.Fatal("bus closed by Halt")
	}
	if s := dev.String(); s != "HD44780 lcdsim(0x3f)@0x3f - Rows: 4, Cols: 20" {
		t.Fatalf("String() = %q", s)
	}
}
