// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package lcdbackpack drives HD44780 character displays through the PCF8574
// I²C backpacks they are usually sold with.
//
// The driver lives in package hd44780, the expander in pcf857x and an
// emulated display for tests and dry runs in lcdsim. cmd/lcdctl is a command
// line tool built on them.
package lcdbackpack
