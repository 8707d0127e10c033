// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package rsc

import (
	"fmt"
	"strings"
)

// Mode is a converter data rate preset, the DR, MODE and CM fields of
// ADS1220 register 1. Continuous conversion is always on.
type Mode uint8

const (
	NormalMode20Hz   Mode = 0b00000100
	NormalMode45Hz   Mode = 0b00100100
	NormalMode90Hz   Mode = 0b01000100
	NormalMode175Hz  Mode = 0b01100100
	NormalMode330Hz  Mode = 0b10000100
	NormalMode600Hz  Mode = 0b10100100
	NormalMode1000Hz Mode = 0b11000100
	FastMode40Hz     Mode = 0b00010100
	FastMode90Hz     Mode = 0b00110100
	FastMode180Hz    Mode = 0b01010100
	FastMode350Hz    Mode = 0b01110100
	FastMode660Hz    Mode = 0b10010100
	FastMode1200Hz   Mode = 0b10110100
	FastMode2000Hz   Mode = 0b11010100
)

var modeNames = []struct {
	m    Mode
	name string
}{
	{NormalMode20Hz, "normal_20hz"},
	{NormalMode45Hz, "normal_45hz"},
	{NormalMode90Hz, "normal_90hz"},
	{NormalMode175Hz, "normal_175hz"},
	{NormalMode330Hz, "normal_330hz"},
	{NormalMode600Hz, "normal_600hz"},
	{NormalMode1000Hz, "normal_1000hz"},
	{FastMode40Hz, "fast_40hz"},
	{FastMode90Hz, "fast_90hz"},
	{FastMode180Hz, "fast_180hz"},
	{FastMode350Hz, "fast_350hz"},
	{FastMode660Hz, "fast_660hz"},
	{FastMode1200Hz, "fast_1200hz"},
	{FastMode2000Hz, "fast_2000hz"},
}

func (m Mode) String() string {
	for _, n := range modeNames {
		if n.m == m {
			return n.name
		}
	}
	return fmt.Sprintf("Mode(0x%02X)", uint8(m))
}

// Valid reports whether m is one of the named presets.
func (m Mode) Valid() bool {
	for _, n := range modeNames {
		if n.m == m {
			return true
		}
	}
	return false
}

// ParseMode parses a preset name such as "normal_20hz" or "FAST_2000HZ".
func ParseMode(s string) (Mode, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for _, n := range modeNames {
		if n.name == key {
			return n.m, nil
		}
	}
	return 0, fmt.Errorf("rsc: unknown mode %q", s)
}
