// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/GermanBionicSystems/lcdbackpack/hd44780"
)

// pause waits between two commands. It is handled by the runner and never
// reaches the driver.
type pause struct {
	d time.Duration
}

func (pause) Name() string { return "sleep" }

// named is a command this tool doesn't know. It is handed to the driver as
// is, which reports it as unsupported.
type named struct {
	name string
	args []string
}

func (n named) Name() string { return n.name }

var errUsage = errors.New("invalid usage")

// splitArgs splits the command line into commands at "--".
func splitArgs(args []string) [][]string {
	var out [][]string
	start := 0
	for i, a := range args {
		if a == "--" {
			if i > start {
				out = append(out, args[start:i])
			}
			start = i + 1
		}
	}
	if start < len(args) {
		out = append(out, args[start:])
	}
	return out
}

// parseArgs parses one command, its name first.
func parseArgs(args []string) (hd44780.Command, error) {
	if len(args) == 0 {
		return nil, errUsage
	}
	name, rest := args[0], args[1:]
	switch name {
	case "clear":
		return hd44780.Clear{}, want(name, rest, 0)
	case "home":
		return hd44780.Home{}, want(name, rest, 0)
	case "print":
		return parseText(strings.Join(rest, " "))
	case "cursor", "blink", "display", "autoscroll", "backlight":
		if err := want(name, rest, 1); err != nil {
			return nil, err
		}
		on, err := parseOnOff(rest[0])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return toggle(name, on), nil
	case "direction":
		if err := want(name, rest, 1); err != nil {
			return nil, err
		}
		switch rest[0] {
		case "ltr":
			return hd44780.Direction{Dir: hd44780.LeftToRight}, nil
		case "rtl":
			return hd44780.Direction{Dir: hd44780.RightToLeft}, nil
		}
		return nil, fmt.Errorf("direction: want ltr or rtl, got %q", rest[0])
	case "set_cursor":
		if err := want(name, rest, 2); err != nil {
			return nil, err
		}
		n, err := parseInts(rest)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return hd44780.SetCursor{Row: n[0], Col: n[1]}, nil
	case "scroll", "left", "right":
		n := []int{1}
		if len(rest) != 0 {
			if err := want(name, rest, 1); err != nil {
				return nil, err
			}
			var err error
			if n, err = parseInts(rest); err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
		}
		switch name {
		case "scroll":
			return hd44780.Scroll{N: n[0]}, nil
		case "left":
			return hd44780.Left{N: n[0]}, nil
		}
		return hd44780.Right{N: n[0]}, nil
	case "char":
		if len(rest) == 0 {
			return nil, fmt.Errorf("char: %w: want an index and 8 rows", errUsage)
		}
		index, err := strconv.Atoi(rest[0])
		if err != nil {
			return nil, fmt.Errorf("char: invalid index %q", rest[0])
		}
		// The driver checks the index and the number of rows.
		bitmap := make([]byte, 0, len(rest)-1)
		for _, s := range rest[1:] {
			v, err := strconv.ParseUint(s, 0, 8)
			if err != nil {
				return nil, fmt.Errorf("char: invalid row %q", s)
			}
			bitmap = append(bitmap, byte(v))
		}
		return hd44780.Char{Index: index, Bitmap: bitmap}, nil
	case "sleep":
		if err := want(name, rest, 1); err != nil {
			return nil, err
		}
		d, err := time.ParseDuration(rest[0])
		if err != nil || d < 0 {
			return nil, fmt.Errorf("sleep: invalid duration %q", rest[0])
		}
		return pause{d: d}, nil
	}
	return named{name: name, args: rest}, nil
}

// parseText returns a Print. Text in double quotes is unquoted with Go
// escapes, so "\x00" prints custom character 0.
func parseText(text string) (hd44780.Command, error) {
	if len(text) >= 2 && text[0] == '"' && text[len(text)-1] == '"' {
		s, err := strconv.Unquote(text)
		if err != nil {
			return nil, fmt.Errorf("print: %w", err)
		}
		text = s
	}
	return hd44780.Print{Text: text}, nil
}

func toggle(name string, on bool) hd44780.Command {
	switch name {
	case "cursor":
		return hd44780.Cursor{On: on}
	case "blink":
		return hd44780.Blink{On: on}
	case "display":
		return hd44780.Power{On: on}
	case "autoscroll":
		return hd44780.Autoscroll{On: on}
	}
	return hd44780.Backlight{On: on}
}

func want(name string, args []string, n int) error {
	if len(args) != n {
		return fmt.Errorf("%s: %w: want %d arguments, got %d", name, errUsage, n, len(args))
	}
	return nil
}

func parseOnOff(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "true", "1":
		return true, nil
	case "off", "false", "0":
		return false, nil
	}
	return false, fmt.Errorf("want on or off, got %q", s)
}

func parseInts(args []string) ([]int, error) {
	out := make([]int, len(args))
	for i, s := range args {
		v, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", s)
		}
		out[i] = v
	}
	return out, nil
}

// parseScript reads one command per line. Blank lines and lines starting
// with '#' are skipped. The text of print is taken verbatim after the first
// space.
func parseScript(r io.Reader) ([]hd44780.Command, error) {
	var cmds []hd44780.Command
	s := bufio.NewScanner(r)
	for n := 1; s.Scan(); n++ {
		line := strings.TrimRight(s.Text(), "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || trimmed[0] == '#' {
			continue
		}
		var cmd hd44780.Command
		var err error
		if name, text, _ := strings.Cut(strings.TrimLeft(line, " \t"), " "); name == "print" {
			cmd, err = parseText(text)
		} else {
			cmd, err = parseArgs(strings.Fields(trimmed))
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
		cmds = append(cmds, cmd)
	}
	return cmds, s.Err()
}
