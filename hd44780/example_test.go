// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780_test

import (
	"fmt"
	"log"
	"time"

	"periph.io/x/conn/v3/display/displaytest"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/GermanBionicSystems/lcdbackpack/hd44780"
)

// This example drives a 20x4 display through the command API. The Display
// value returned by each Execute replaces the previous one.
func Example() {
	d, err := hd44780.Start(hd44780.Config{Bus: "i2c-1", Address: 0x27, Rows: 4, Cols: 20})
	if err != nil {
		log.Fatal(err)
	}
	defer d.Stop()

	degree := []byte{0x0c, 0x12, 0x12, 0x0c, 0x00, 0x00, 0x00, 0x00}
	for _, cmd := range []hd44780.Command{
		hd44780.Char{Index: 0, Bitmap: degree},
		hd44780.Clear{},
		hd44780.Print{Text: "Temperature"},
		hd44780.SetCursor{Row: 1, Col: 0},
		hd44780.Print{Text: "21.5\x00C"},
		hd44780.Blink{On: true},
	} {
		next, ok, err := d.Execute(cmd)
		if err != nil {
			log.Fatal(err)
		}
		if !ok {
			fmt.Printf("%s is not supported\n", cmd.Name())
			continue
		}
		d = next
	}
	time.Sleep(5 * time.Second)
}

// This example uses a backpack on a bus opened by the caller, as a
// periph.io/x/conn/v3/display.TextDisplay.
func ExampleNewPCF857xBackpack() {
	if _, err := host.Init(); err != nil {
		log.Fatal(err)
	}
	bus, err := i2creg.Open("")
	if err != nil {
		log.Fatal(err)
	}
	defer bus.Close()

	dev, err := hd44780.NewPCF857xBackpack(bus, 0x27, 2, 16)
	if err != nil {
		log.Fatal(err)
	}
	defer dev.Halt()
	for _, e := range displaytest.TestTextDisplay(dev, true) {
		fmt.Println(e)
	}
}
