// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package lcdsim emulates an HD44780 character LCD behind a PCF8574 I²C
// backpack. Controller implements i2c.BusCloser: it decodes the expander
// bytes written to it into nibbles and runs them through a model of the
// controller, so the visible text can be checked without hardware.
//
// The model covers what a write-only backpack can reach: interface width
// switching, the instruction set, DDRAM and CGRAM. Reads are not supported
// because the R/W line is tied low on these backpacks.
package lcdsim

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"

	"github.com/GermanBionicSystems/lcdbackpack/pcf857x"
)

// Expander line layout of the common backpacks.
const (
	lineRS        byte = 1 << pcf857x.PinRS
	lineRW        byte = 1 << pcf857x.PinRW
	lineE         byte = 1 << pcf857x.PinE
	lineBacklight byte = 1 << pcf857x.PinBacklight
	nibbleShift        = pcf857x.PinD4
)

const (
	ddramSize = 0x80
	cgramSize = 0x40
	lineLen   = 40
)

var errRead = errors.New("lcdsim: reads are not supported")

// Controller is an emulated backpack and controller pair.
type Controller struct {
	mu   sync.Mutex
	addr uint16
	rows int
	cols int

	prev    byte
	fourBit bool
	pending bool
	high    byte

	ddram  [ddramSize]byte
	cgram  [cgramSize]byte
	ac     byte
	cgMode bool
	shift  int

	entry       byte
	control     byte
	function    byte
	functionSet int
	backlight   bool
	closed      bool

	writes int
	log    []Op
}

// Op is one decoded transfer to the controller.
type Op struct {
	Data  bool
	Value byte
}

func (o Op) String() string {
	if o.Data {
		return fmt.Sprintf("data(0x%02x)", o.Value)
	}
	return fmt.Sprintf("instr(0x%02x)", o.Value)
}

// New returns a controller answering at addr with the given geometry. The
// geometry only matters for Lines.
func New(addr uint16, rows, cols int) *Controller {
	c := &Controller{addr: addr, rows: rows, cols: cols}
	for i := range c.ddram {
		c.ddram[i] = ' '
	}
	return c
}

func (c *Controller) String() string {
	return fmt.Sprintf("lcdsim(%#x)", c.addr)
}

// Tx implements i2c.Bus.
func (c *Controller) Tx(addr uint16, w, r []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errors.New("lcdsim: bus closed")
	}
	if addr != c.addr {
		return fmt.Errorf("lcdsim: no device at %#x", addr)
	}
	if len(r) != 0 {
		return errRead
	}
	for _, b := range w {
		c.expander(b)
	}
	return nil
}

// SetSpeed implements i2c.Bus.
func (c *Controller) SetSpeed(f physic.Frequency) error {
	return nil
}

// Close implements i2c.BusCloser.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// expander handles one byte written to the PCF8574.
func (c *Controller) expander(b byte) {
	c.writes++
	c.backlight = b&lineBacklight != 0
	falling := c.prev&lineE != 0 && b&lineE == 0
	c.prev = b
	if !falling || b&lineRW != 0 {
		return
	}
	nibble := b >> nibbleShift
	rs := b&lineRS != 0
	if !c.fourBit {
		// D0-D3 are not wired, they read as 0.
		c.transfer(rs, nibble<<4)
		return
	}
	if !c.pending {
		c.high = nibble
		c.pending = true
		return
	}
	c.pending = false
	c.transfer(rs, c.high<<4|nibble)
}

func (c *Controller) transfer(rs bool, v byte) {
	c.log = append(c.log, Op{Data: rs, Value: v})
	if rs {
		c.write(v)
		return
	}
	c.instruction(v)
}

func (c *Controller) instruction(v byte) {
	switch {
	case v&0x80 != 0:
		c.ac = v & 0x7f
		c.cgMode = false
	case v&0x40 != 0:
		c.ac = v & 0x3f
		c.cgMode = true
	case v&0x20 != 0:
		// Only count the ones sent as a full byte, not the reset nibbles.
		if c.fourBit {
			c.functionSet++
		}
		c.function = v
		c.fourBit = v&0x10 == 0
	case v&0x10 != 0:
		step := -1
		if v&0x04 != 0 {
			step = 1
		}
		if v&0x08 != 0 {
			c.shift = (c.shift - step + lineLen) % lineLen
		} else {
			c.moveAC(step)
		}
	case v&0x08 != 0:
		c.control = v
	case v&0x04 != 0:
		c.entry = v
	case v&0x02 != 0:
		c.ac = 0
		c.cgMode = false
		c.shift = 0
	case v&0x01 != 0:
		for i := range c.ddram {
			c.ddram[i] = ' '
		}
		c.ac = 0
		c.cgMode = false
		c.shift = 0
		c.entry |= 0x02
	}
}

func (c *Controller) write(v byte) {
	step := -1
	if c.entry&0x02 != 0 {
		step = 1
	}
	if c.cgMode {
		c.cgram[c.ac&(cgramSize-1)] = v
		c.ac = byte(int(c.ac)+step) & (cgramSize - 1)
		return
	}
	c.ddram[c.ac] = v
	c.moveAC(step)
	if c.entry&0x01 != 0 {
		c.shift = (c.shift + step + lineLen) % lineLen
	}
}

// moveAC moves the DDRAM address counter, skipping the holes of the two line
// address map.
func (c *Controller) moveAC(step int) {
	if c.function&0x08 == 0 {
		c.ac = byte((int(c.ac) + step + 2*lineLen) % (2 * lineLen))
		return
	}
	base := c.ac & 0x40
	off := (int(c.ac&0x3f) + step + lineLen) % lineLen
	if step > 0 && off == 0 || step < 0 && off == lineLen-1 {
		base ^= 0x40
	}
	c.ac = base | byte(off)
}

// Cell returns the character code shown at a zero based cell, taking display
// shift into account.
func (c *Controller) Cell(row, col int) byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cell(row, col)
}

func (c *Controller) cell(row, col int) byte {
	return c.ddram[c.address(row, col)]
}

// address returns the DDRAM address shown at a visible cell.
func (c *Controller) address(row, col int) byte {
	off := (row/2)*c.cols + col + c.shift
	if c.function&0x08 == 0 {
		return byte(off % (2 * lineLen))
	}
	base := 0
	if row%2 == 1 {
		base = 0x40
	}
	return byte(base + off%lineLen)
}

// Lines returns the visible text, one string per row. Custom characters
// (codes 0-7) show as '#', other codes outside printable ASCII as '?'. A
// display that is off shows blank lines.
func (c *Controller) Lines() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	lines := make([]string, c.rows)
	for row := range c.rows {
		var sb strings.Builder
		for col := range c.cols {
			ch := c.cell(row, col)
			switch {
			case c.control&0x04 == 0:
				ch = ' '
			case ch < 8:
				ch = '#'
			case ch < 0x20 || ch > 0x7d:
				ch = '?'
			}
			sb.WriteByte(ch)
		}
		lines[row] = sb.String()
	}
	return lines
}

// Glyph returns the 8 rows of custom character index.
func (c *Controller) Glyph(index int) []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	g := make([]byte, 8)
	copy(g, c.cgram[(index&7)<<3:])
	return g
}

// State is a snapshot of the controller registers.
type State struct {
	FourBit      bool
	Function     byte
	FunctionSets int
	EntryMode    byte
	Control      byte
	Backlight    bool
	Address      byte
	CGRAM        bool
	Shift        int
	Writes       int
	Closed       bool
}

// State returns the controller registers.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		FourBit:      c.fourBit,
		Function:     c.function,
		FunctionSets: c.functionSet,
		EntryMode:    c.entry,
		Control:      c.control,
		Backlight:    c.backlight,
		Address:      c.ac,
		CGRAM:        c.cgMode,
		Shift:        c.shift,
		Writes:       c.writes,
		Closed:       c.closed,
	}
}

// Ops returns the decoded transfers since the last call.
func (c *Controller) Ops() []Op {
	c.mu.Lock()
	defer c.mu.Unlock()
	ops := c.log
	c.log = nil
	return ops
}

var _ i2c.BusCloser = &Controller{}
