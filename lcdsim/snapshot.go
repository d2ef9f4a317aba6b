// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package lcdsim

import (
	"image"
	"image/color"
	"io"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/gomono"
)

// Cell geometry of a snapshot: a 5x8 dot matrix, each dot dotSize pixels,
// one dot of gap between cells.
const (
	dotSize = 4
	cellW   = 6 * dotSize
	cellH   = 9 * dotSize
	margin  = 2 * dotSize
)

var pixelOn = color.NRGBA{R: 0x10, G: 0x18, B: 0x08, A: 0xff}

// Snapshot renders the screen of c. Printable ASCII is drawn with the Go Mono
// face, custom characters from CGRAM dot by dot. The cursor is drawn as an
// underline when enabled.
func Snapshot(c *Controller) (image.Image, error) {
	f, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return nil, err
	}
	st := c.State()
	w := 2*margin + c.cols*cellW
	h := 2*margin + c.rows*cellH
	dc := gg.NewContext(w, h)
	if st.Backlight {
		dc.SetColor(BacklightOn)
	} else {
		dc.SetColor(BacklightOff)
	}
	dc.Clear()
	if st.Control&0x04 == 0 {
		return dc.Image(), nil
	}
	dc.SetFontFace(truetype.NewFace(f, &truetype.Options{Size: float64(cellH) * 0.7}))
	dc.SetColor(pixelOn)
	for row := range c.rows {
		for col := range c.cols {
			x := float64(margin + col*cellW)
			y := float64(margin + row*cellH)
			ch := c.Cell(row, col)
			switch {
			case ch < 8:
				drawGlyph(dc, c.Glyph(int(ch)), x, y)
			case ch > 0x20 && ch < 0x7e:
				dc.DrawStringAnchored(string(rune(ch)), x+cellW/2, y+cellH/2, 0.5, 0.5)
			}
		}
	}
	if st.Control&0x02 != 0 && !st.CGRAM {
		if row, col, ok := c.cursorCell(); ok {
			dc.DrawRectangle(float64(margin+col*cellW), float64(margin+row*cellH+8*dotSize), 5*dotSize, dotSize)
			dc.Fill()
		}
	}
	return dc.Image(), nil
}

// WritePNG renders the screen of c as a PNG image to w.
func WritePNG(w io.Writer, c *Controller) error {
	img, err := Snapshot(c)
	if err != nil {
		return err
	}
	return gg.NewContextForImage(img).EncodePNG(w)
}

func drawGlyph(dc *gg.Context, rows []byte, x, y float64) {
	for dy, bits := range rows {
		for dx := range 5 {
			if bits&(0x10>>dx) != 0 {
				dc.DrawRectangle(x+float64(dx*dotSize), y+float64(dy*dotSize), dotSize, dotSize)
			}
		}
	}
	dc.Fill()
}

// cursorCell returns the visible cell holding the address counter.
func (c *Controller) cursorCell() (row, col int, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for row = range c.rows {
		for col = range c.cols {
			if c.address(row, col) == c.ac {
				return row, col, true
			}
		}
	}
	return 0, 0, false
}
