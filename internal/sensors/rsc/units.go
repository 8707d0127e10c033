// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package rsc

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownUnit is returned when the EEPROM names a pressure unit the
// driver cannot convert to pascals.
var ErrUnknownUnit = errors.New("rsc: unrecognized pressure unit")

// Conversion factors to pascals.
const (
	inH2OToPa = 248.84
	psiToPa   = 0.45359237 * 9.80665 / 0.0254 / 0.0254
	mbarToPa  = 100
	barToPa   = 100000
	kPaToPa   = 1000
)

// UnitScale returns the factor converting a pressure in unit to pascals.
// The match is case-insensitive and ignores NUL and space padding.
func UnitScale(unit string) (float64, error) {
	switch strings.ToLower(trimText([]byte(unit))) {
	case "inh2o":
		return inH2OToPa, nil
	case "psi":
		return psiToPa, nil
	case "mbar":
		return mbarToPa, nil
	case "bar":
		return barToPa, nil
	case "pa":
		return 1, nil
	case "kpa":
		return kPaToPa, nil
	}
	return 0, fmt.Errorf("%w %q", ErrUnknownUnit, unit)
}

// trimText turns a fixed-length EEPROM text field into a string, stopping
// at the first NUL and dropping padding.
func trimText(b []byte) string {
	for i, c := range b {
		if c == 0 {
			b = b[:i]
			break
		}
	}
	return strings.TrimSpace(string(b))
}
