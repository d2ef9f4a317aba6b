// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// replacementChar is written for runes that have no single byte form.
const replacementChar byte = '?'

// encodeText converts text into character codes, one byte per cell.
//
// Runes up to 0xff are sent as is. Larger runes are decomposed (NFKD) with
// combining marks dropped, so "ō" prints as "o" and "Ａ" as "A"; whatever is
// still out of range becomes '?'. Bytes that are not valid UTF-8 are sent
// untouched, which lets callers address the character ROM directly, e.g.
// "\xdf" for the degree sign on A00 ROMs.
func encodeText(text string) []byte {
	out := make([]byte, 0, len(text))
	for len(text) > 0 {
		r, size := utf8.DecodeRuneInString(text)
		switch {
		case r == utf8.RuneError && size == 1:
			out = append(out, text[0])
		case r <= 0xff:
			out = append(out, byte(r))
		default:
			out = append(out, foldRune(r)...)
		}
		text = text[size:]
	}
	return out
}

func foldRune(r rune) []byte {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	s, _, err := transform.String(t, string(r))
	if err != nil {
		return []byte{replacementChar}
	}
	out := make([]byte, 0, len(s))
	for _, f := range s {
		if f <= 0xff {
			out = append(out, byte(f))
		} else {
			out = append(out, replacementChar)
		}
	}
	if len(out) == 0 {
		out = append(out, replacementChar)
	}
	return out
}
