// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package lcdsim

import (
	"bytes"
	"image/color"
	"io"
	"strings"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
)

var (
	// BacklightOn is the colour of the classic yellow-green module.
	BacklightOn = color.NRGBA{R: 0x9b, G: 0xc6, B: 0x1c, A: 0xff}
	// BacklightOff is the colour of an unlit panel.
	BacklightOff = color.NRGBA{R: 0x30, G: 0x38, B: 0x10, A: 0xff}
)

// Terminal draws a Controller on a terminal using ANSI colours. The strips
// above and below the text show the backlight colour.
type Terminal struct {
	w       io.Writer
	palette ansi256.Palette
	buf     bytes.Buffer
}

// NewTerminal returns a Terminal writing to w, or to a colour capable stdout
// when w is nil.
func NewTerminal(w io.Writer) *Terminal {
	if w == nil {
		w = colorable.NewColorableStdout()
	}
	return &Terminal{w: w, palette: *ansi256.Default}
}

// Render draws the current screen of c.
func (t *Terminal) Render(c *Controller) error {
	lines := c.Lines()
	bl := BacklightOff
	if c.State().Backlight {
		bl = BacklightOn
	}
	width := 0
	if len(lines) != 0 {
		width = len(lines[0])
	}
	t.buf.Reset()
	t.strip(bl, width+2)
	for _, l := range lines {
		_, _ = t.buf.WriteString(t.palette.Block(bl))
		_, _ = t.buf.WriteString(l)
		_, _ = t.buf.WriteString(t.palette.Block(bl))
		_, _ = t.buf.WriteString("\033[0m\n")
	}
	t.strip(bl, width+2)
	_, err := t.buf.WriteTo(t.w)
	return err
}

func (t *Terminal) strip(c color.NRGBA, n int) {
	_, _ = t.buf.WriteString(strings.Repeat(t.palette.Block(c), n))
	_, _ = t.buf.WriteString("\033[0m\n")
}
