// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"fmt"
	"strings"
)

// Instructions.
const (
	instrClear       byte = 0x01
	instrHome        byte = 0x02
	instrShift       byte = 0x10
	instrFunctionSet byte = 0x20
	instrSetCGRAM    byte = 0x40
	instrSetDDRAM    byte = 0x80

	// Cursor/display shift flags.
	shiftDisplay byte = 0x08
	shiftRight   byte = 0x04

	// Function set flags.
	function8Bit  byte = 0x10
	functionLines byte = 0x08
	function5x10  byte = 0x04
)

// EntryMode is the entry mode set register. The class tag 0x04 is always
// present.
type EntryMode byte

const (
	entryModeSet EntryMode = 0x04

	// EntryIncrement moves the cursor right after each write, i.e. text runs
	// left to right.
	EntryIncrement EntryMode = 0x02
	// EntryShift shifts the whole display on each write (autoscroll).
	EntryShift EntryMode = 0x01
)

func (e EntryMode) with(flag EntryMode, on bool) EntryMode {
	if on {
		return entryModeSet | e | flag
	}
	return entryModeSet | e&^flag
}

// Has reports whether every bit of flag is set.
func (e EntryMode) Has(flag EntryMode) bool {
	return e&flag == flag
}

func (e EntryMode) String() string {
	dir := "rtl"
	if e.Has(EntryIncrement) {
		dir = "ltr"
	}
	return fmt.Sprintf("EntryMode(0x%02x %s autoscroll=%t)", byte(e), dir, e.Has(EntryShift))
}

// DisplayControl is the display on/off control register. The class tag 0x08
// is always present.
type DisplayControl byte

const (
	displayControlSet DisplayControl = 0x08

	ControlDisplay DisplayControl = 0x04
	ControlCursor  DisplayControl = 0x02
	ControlBlink   DisplayControl = 0x01
)

func (c DisplayControl) with(flag DisplayControl, on bool) DisplayControl {
	if on {
		return displayControlSet | c | flag
	}
	return displayControlSet | c&^flag
}

// Has reports whether every bit of flag is set.
func (c DisplayControl) Has(flag DisplayControl) bool {
	return c&flag == flag
}

func (c DisplayControl) String() string {
	var on []string
	for _, f := range []struct {
		flag DisplayControl
		name string
	}{{ControlDisplay, "display"}, {ControlCursor, "cursor"}, {ControlBlink, "blink"}} {
		if c.Has(f.flag) {
			on = append(on, f.name)
		}
	}
	return fmt.Sprintf("DisplayControl(0x%02x %s)", byte(c), strings.Join(on, "|"))
}

// FontSize selects the character matrix. It is only honoured by one-line
// displays; the controller ignores it in two-line mode.
type FontSize string

const (
	Font5x8  FontSize = "5x8"
	Font5x10 FontSize = "5x10"
)

// functionSet returns the function set instruction for a 4-bit interface.
func functionSet(rows int, font FontSize) byte {
	v := instrFunctionSet
	if rows > 1 {
		v |= functionLines
	}
	if font == Font5x10 {
		v |= function5x10
	}
	return v
}

// ddramAddress returns the DDRAM address of a cell. Four line displays are
// two long lines folded in half: rows 2 and 3 continue rows 0 and 1.
func ddramAddress(row, col, cols int) byte {
	base := 0
	if row%2 == 1 {
		base = 0x40
	}
	if row >= 2 {
		base += cols
	}
	return byte(base + col)
}
