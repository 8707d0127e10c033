// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package rsc

// Temperature resolution of the ADS1220 internal sensor, °C per LSB.
const tempLSB = 0.03125

const tempSignBit = 0x2000

// tempCode extracts the left-justified 14-bit temperature code.
func tempCode(b []byte) uint16 {
	return (uint16(b[0])<<8 | uint16(b[1])) >> 2
}

// tempCelsius converts a 14-bit two's complement code to °C.
func tempCelsius(code uint16) float64 {
	if code&tempSignBit != 0 {
		mag := (^(code << 2))>>2 + 1
		return float64(mag) * -tempLSB
	}
	return float64(code) * tempLSB
}

// pressureCode sign-extends the 24-bit big-endian conversion result.
func pressureCode(b []byte) int32 {
	return int32(uint32(b[0])<<24|uint32(b[1])<<16|uint32(b[2])<<8) >> 8
}

// Sample is the latest reading. Only one slot is kept; each Poll
// overwrites part of it.
type Sample struct {
	// TempCode is the raw code of the latest temperature conversion. It is
	// the temperature input of the pressure compensation.
	TempCode    uint16  `json:"temp_code"`
	Temperature float64 `json:"temp_c"`
	// Pressure is in the unit named by the calibration record.
	Pressure   float64 `json:"pressure"`
	PressurePa float64 `json:"pressure_pa"`
}

func (s *Sample) setTemperature(b []byte) {
	s.TempCode = tempCode(b)
	s.Temperature = tempCelsius(s.TempCode)
}

func (s *Sample) setPressure(b []byte, c *Calibration, scale float64) {
	s.Pressure = c.Compensate(pressureCode(b), s.TempCode)
	s.PressurePa = s.Pressure * scale
}
