// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package rsc

import (
	"fmt"

	"periph.io/x/conn/v3/spi"
)

// ChipSelect names one of the two sub-devices on the sensor.
type ChipSelect uint8

const (
	// EEPROM is the calibration memory.
	EEPROM ChipSelect = iota
	// ADC is the measurement converter.
	ADC
)

func (c ChipSelect) String() string {
	switch c {
	case EEPROM:
		return "eeprom"
	case ADC:
		return "adc"
	default:
		return fmt.Sprintf("ChipSelect(%d)", uint8(c))
	}
}

// Transport moves bytes between the host and one sub-device.
//
// Tx must hold the bus for the whole assert, transfer, release sequence so
// that EEPROM and ADC transactions never interleave. r may be nil for
// write-only transfers, otherwise len(r) == len(w).
type Transport interface {
	// Idle drives both chip selects to their inactive (high) level.
	Idle() error
	// Tx asserts cs, clocks out w with the given SPI mode while reading
	// into r, then releases cs.
	Tx(cs ChipSelect, mode spi.Mode, w, r []byte) error
}
