// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// lcdctl writes to an HD44780 character display on a PCF8574 I²C backpack.
//
//	lcdctl clear -- print Hello -- set_cursor 1 0 -- print World
//	lcdctl -rows 4 -cols 20 -script commands.txt
//	lcdctl -simulate -png screen.png print "\x00 ready"
//	lcdctl pin 3 low
//
// Use -simulate to run the commands against an emulated display and print
// the result on the terminal.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/i2c"

	"github.com/GermanBionicSystems/lcdbackpack/hd44780"
	"github.com/GermanBionicSystems/lcdbackpack/lcdsim"
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), `usage: lcdctl [flags] <command> [args] [-- <command> [args]]...
       lcdctl [flags] -script <file|->
       lcdctl [flags] pin <0-7> high|low|read

commands:
  clear | home | print <text> | set_cursor <row> <col>
  cursor|blink|display|autoscroll|backlight on|off
  direction ltr|rtl | scroll|left|right <n>
  char <index> <row0> ... <row7> | sleep <duration>

flags:
`)
	flag.PrintDefaults()
}

func mainImpl() error {
	configPath := flag.String("config", "", "TOML configuration file")
	bus := flag.String("bus", "", "I²C bus (default \""+hd44780.DefaultBus+"\")")
	var addr address
	flag.Var(&addr, "addr", "I²C address of the backpack (default 0x27)")
	rows := flag.Int("rows", 0, "number of rows (default 2)")
	cols := flag.Int("cols", 0, "number of columns (default 16)")
	font := flag.String("font", "", "font size, 5x8 or 5x10")
	var speed frequency
	flag.Var(&speed, "speed", "I²C bus speed, e.g. 400kHz")
	verbose := flag.Bool("v", false, "verbose mode")
	simulate := flag.Bool("simulate", false, "run against an emulated display and print it")
	pngPath := flag.String("png", "", "with -simulate, save the screen as a PNG file")
	script := flag.String("script", "", "read commands from a file, one per line, - for stdin")
	flag.Usage = usage
	flag.Parse()

	fc, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "bus":
			fc.I2CBus = *bus
		case "addr":
			fc.I2CAddress = addr
		case "rows":
			fc.Rows = *rows
		case "cols":
			fc.Cols = *cols
		case "font":
			fc.FontSize = *font
		case "speed":
			fc.I2CSpeed = speed
		}
	})

	log := logrus.New()
	log.SetOutput(os.Stderr)
	level, err := logrus.ParseLevel(fc.LogLevel)
	if err != nil {
		return err
	}
	log.SetLevel(level)
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	args := flag.Args()
	if len(args) != 0 && args[0] == "pin" {
		if *simulate {
			return fmt.Errorf("pin: %w: -simulate is not supported", errUsage)
		}
		return runPin(&fc, log, args[1:])
	}

	var cmds []hd44780.Command
	switch {
	case *script != "" && len(args) != 0:
		return fmt.Errorf("%w: -script and commands are exclusive", errUsage)
	case *script != "":
		if cmds, err = readScript(*script); err != nil {
			return err
		}
	default:
		for _, a := range splitArgs(args) {
			cmd, err := parseArgs(a)
			if err != nil {
				return err
			}
			cmds = append(cmds, cmd)
		}
	}
	if len(cmds) == 0 {
		return fmt.Errorf("%w: no command", errUsage)
	}
	if *pngPath != "" && !*simulate {
		return fmt.Errorf("%w: -png requires -simulate", errUsage)
	}

	cfg := fc.driver(log)
	var sim *lcdsim.Controller
	if *simulate {
		sim = lcdsim.New(uint16(fc.I2CAddress), fc.Rows, fc.Cols)
		cfg.Opener = hd44780.OpenerFunc(func(string) (i2c.BusCloser, error) {
			return sim, nil
		})
	}
	d, err := hd44780.Start(cfg)
	if err != nil {
		return err
	}
	d, err = run(d, cmds, log)
	if err == nil && sim != nil {
		err = render(sim, *pngPath)
	}
	if rerr := d.Release(); err == nil {
		err = rerr
	}
	return err
}

// run executes cmds in order and returns the last Display.
func run(d hd44780.Display, cmds []hd44780.Command, log logrus.FieldLogger) (hd44780.Display, error) {
	for _, cmd := range cmds {
		if p, ok := cmd.(pause); ok {
			time.Sleep(p.d)
			continue
		}
		next, ok, err := d.Execute(cmd)
		if err != nil {
			return d, fmt.Errorf("%s: %w", cmd.Name(), err)
		}
		if !ok {
			log.WithField("command", cmd.Name()).Warnf("unsupported command %+v", cmd)
			continue
		}
		d = next
	}
	return d, nil
}

func render(sim *lcdsim.Controller, pngPath string) error {
	if err := lcdsim.NewTerminal(nil).Render(sim); err != nil {
		return err
	}
	if pngPath == "" {
		return nil
	}
	f, err := os.Create(pngPath)
	if err != nil {
		return err
	}
	if err = lcdsim.WritePNG(f, sim); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func readScript(path string) ([]hd44780.Command, error) {
	var r io.Reader = os.Stdin
	name := "stdin"
	if path != "-" {
		name = path
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	cmds, err := parseScript(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return cmds, nil
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "lcdctl: %s.\n", err)
		os.Exit(1)
	}
}
