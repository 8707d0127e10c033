// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package rsc

import "fmt"

// Measurement is what the converter is set up to convert.
type Measurement uint8

const (
	Pressure Measurement = iota
	Temperature
)

func (m Measurement) String() string {
	switch m {
	case Pressure:
		return "pressure"
	case Temperature:
		return "temperature"
	default:
		return fmt.Sprintf("Measurement(%d)", uint8(m))
	}
}

// Reading-type bit of ADS1220 register 1 (TS: temperature sensor mode).
const (
	pressureReading    = 0x00
	temperatureReading = 0x02
)

func (m Measurement) configBits() byte {
	if m == Temperature {
		return temperatureReading
	}
	return pressureReading
}

// acquisition interleaves temperature and pressure conversions. meas is
// the conversion last commanded, which is what the next data read returns.
type acquisition struct {
	meas  Measurement
	count uint8
	srd   uint8
}

// advance is called after the result of a meas conversion was read. It
// returns the measurement to convert next and whether the converter has to
// be reprogrammed for it.
func (a *acquisition) advance() (Measurement, bool) {
	switch a.meas {
	case Temperature:
		a.count = 0
		a.meas = Pressure
		return Pressure, true
	default:
		a.count++
		if a.count > a.srd {
			a.count = 0
			a.meas = Temperature
			return Temperature, true
		}
		return Pressure, false
	}
}
