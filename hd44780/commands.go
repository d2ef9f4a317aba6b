// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

// Command is a display operation for Execute. Commands defined outside this
// package are accepted and reported as unsupported.
type Command interface {
	Name() string
}

// TextDirection is the direction the cursor moves after a write.
type TextDirection int

const (
	LeftToRight TextDirection = iota
	RightToLeft
)

func (t TextDirection) String() string {
	if t == RightToLeft {
		return "rtl"
	}
	return "ltr"
}

// Clear blanks the display and moves the cursor home.
type Clear struct{}

// Home moves the cursor to (0,0) and undoes any display shift.
type Home struct{}

// Print writes Text at the cursor. There is no line wrapping: the cursor
// follows the controller's address map.
type Print struct {
	Text string
}

// SetCursor moves the cursor to a zero based cell. Out of range values are
// clamped to the display.
type SetCursor struct {
	Row, Col int
}

// Cursor shows or hides the underline cursor.
type Cursor struct {
	On bool
}

// Blink turns the blinking block cursor on or off.
type Blink struct {
	On bool
}

// Power turns the display output on or off. DDRAM content is kept.
type Power struct {
	On bool
}

// Autoscroll shifts the display on every write so the cursor stays put.
type Autoscroll struct {
	On bool
}

// Direction sets the text direction.
type Direction struct {
	Dir TextDirection
}

// Backlight turns the backlight on or off.
type Backlight struct {
	On bool
}

// Scroll shifts the whole display N cells, to the left when N is negative.
type Scroll struct {
	N int
}

// Left moves the cursor N cells left.
type Left struct {
	N int
}

// Right moves the cursor N cells right.
type Right struct {
	N int
}

// Char programs custom character Index (0-7) with one byte per pixel row.
// Only the 5 low bits of each row are displayed. Bitmap must hold 8 rows.
type Char struct {
	Index  int
	Bitmap []byte
}

func (Clear) Name() string      { return "clear" }
func (Home) Name() string       { return "home" }
func (Print) Name() string      { return "print" }
func (SetCursor) Name() string  { return "set_cursor" }
func (Cursor) Name() string     { return "cursor" }
func (Blink) Name() string      { return "blink" }
func (Power) Name() string      { return "display" }
func (Autoscroll) Name() string { return "autoscroll" }
func (Direction) Name() string  { return "text_direction" }
func (Backlight) Name() string  { return "backlight" }
func (Scroll) Name() string     { return "scroll" }
func (Left) Name() string       { return "left" }
func (Right) Name() string      { return "right" }
func (Char) Name() string       { return "char" }

// Execute sends cmd to the display and returns the updated Display.
//
// ok is false when the command is not one of this package's commands or its
// arguments are malformed (see Char); nothing is sent and d is returned
// unchanged. err reports a bus failure, returned as is; the command may have
// been partially sent and the returned Display keeps the state of d.
func (d Display) Execute(cmd Command) (next Display, ok bool, err error) {
	switch c := cmd.(type) {
	case Clear:
		return d, true, d.clear()
	case Home:
		err = d.instruction(instrHome)
		if err == nil {
			d.sleep(delayClear)
		}
		return d, true, err
	case Print:
		for _, b := range encodeText(c.Text) {
			if err = d.data(b); err != nil {
				break
			}
		}
		return d, true, err
	case SetCursor:
		row := clamp(c.Row, d.rows)
		col := clamp(c.Col, d.cols)
		return d, true, d.instruction(instrSetDDRAM | ddramAddress(row, col, d.cols))
	case Cursor:
		return d.setControl(ControlCursor, c.On)
	case Blink:
		return d.setControl(ControlBlink, c.On)
	case Power:
		return d.setControl(ControlDisplay, c.On)
	case Autoscroll:
		return d.setEntry(EntryShift, c.On)
	case Direction:
		return d.setEntry(EntryIncrement, c.Dir != RightToLeft)
	case Backlight:
		next = d
		next.backlight = c.On
		// Nothing to say to the controller: a zero byte without an enable
		// pulse puts the new backlight bit on the expander.
		return commit(d, next, next.expanderWrite(next.expanderByte(0, modeCommand, false)))
	case Scroll:
		if c.N < 0 {
			return d, true, d.repeat(instrShift|shiftDisplay, -c.N)
		}
		return d, true, d.repeat(instrShift|shiftDisplay|shiftRight, c.N)
	case Left:
		return d, true, d.repeat(instrShift, c.N)
	case Right:
		return d, true, d.repeat(instrShift|shiftRight, c.N)
	case Char:
		if c.Index < 0 || c.Index > 7 || len(c.Bitmap) != 8 {
			return d.unsupported(cmd)
		}
		if err = d.instruction(instrSetCGRAM | byte(c.Index)<<3); err != nil {
			return d, true, err
		}
		for _, row := range c.Bitmap {
			if err = d.data(row); err != nil {
				break
			}
		}
		return d, true, err
	}
	return d.unsupported(cmd)
}

func (d Display) unsupported(cmd Command) (Display, bool, error) {
	name := "<nil>"
	if cmd != nil {
		name = cmd.Name()
	}
	d.log.WithField("display", d.name).Debugf("hd44780: unsupported command %s %+v", name, cmd)
	return d, false, nil
}

func (d Display) clear() error {
	if err := d.instruction(instrClear); err != nil {
		return err
	}
	d.sleep(delayClear)
	return nil
}

// setControl updates one display control flag and sends the whole register.
func (d Display) setControl(flag DisplayControl, on bool) (Display, bool, error) {
	next := d
	next.control = d.control.with(flag, on)
	return commit(d, next, d.instruction(byte(next.control)))
}

// setEntry updates one entry mode flag and sends the whole register.
func (d Display) setEntry(flag EntryMode, on bool) (Display, bool, error) {
	next := d
	next.entry = d.entry.with(flag, on)
	return commit(d, next, d.instruction(byte(next.entry)))
}

// commit returns next once the write went through and the unchanged prev
// otherwise.
func commit(prev, next Display, err error) (Display, bool, error) {
	if err != nil {
		return prev, true, err
	}
	return next, true, nil
}

func (d Display) repeat(instr byte, n int) error {
	for range n {
		if err := d.instruction(instr); err != nil {
			return err
		}
	}
	return nil
}

func clamp(v, n int) int {
	return max(0, min(v, n-1))
}
