// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package rsc

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

// Coefficients is a cubic polynomial; index i is the coefficient of x^i.
type Coefficients [4]float32

// Eval evaluates the polynomial at x.
func (c Coefficients) Eval(x float64) float64 {
	return ((float64(c[3])*x+float64(c[2]))*x+float64(c[1]))*x + float64(c[0])
}

// Calibration is the factory record stored in the sensor EEPROM.
type Calibration struct {
	ProductName  string `json:"product_name"`
	SerialNumber string `json:"serial_number"`

	PressureRange float32 `json:"pressure_range"`
	PressureMin   float32 `json:"pressure_min"`
	// PressureUnit is lower-cased, e.g. "psi" or "inh2o".
	PressureUnit string `json:"pressure_unit"`
	// PressureReference is 'D' (differential), 'G' (gauge) or 'A' (absolute).
	PressureReference byte `json:"pressure_reference"`

	// ADCConfig is written to ADS1220 registers 0-3 at startup.
	ADCConfig [4]byte `json:"adc_config"`

	Offset Coefficients `json:"offset"`
	Span   Coefficients `json:"span"`
	Shape  Coefficients `json:"shape"`
}

// Compensate converts a raw pressure code to the sensor's native unit using
// the raw 14-bit temperature code of the latest temperature conversion.
func (c *Calibration) Compensate(pressure int32, temperature uint16) float64 {
	t := float64(temperature)
	p := float64(pressure)
	x := (p - c.Offset.Eval(t)) / c.Span.Eval(t)
	return c.Shape.Eval(x)*float64(c.PressureRange) + float64(c.PressureMin)
}

// readCalibration loads the whole record in one pass. It stops at the unit
// field when the unit is not one UnitScale knows, so a failed record is
// never half used.
func readCalibration(p protocol) (Calibration, float64, error) {
	var c Calibration
	read := func(f Field) ([]byte, error) {
		b, err := p.readEEPROM(f.Addr, f.Len)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", strings.ToLower(f.Name), err)
		}
		return b, nil
	}

	b, err := read(fieldProductName)
	if err != nil {
		return c, 0, err
	}
	c.ProductName = trimText(b)

	if b, err = read(fieldSerialNumber); err != nil {
		return c, 0, err
	}
	c.SerialNumber = trimText(b)

	if b, err = read(fieldPressRange); err != nil {
		return c, 0, err
	}
	c.PressureRange = float32le(b)

	if b, err = read(fieldPressMin); err != nil {
		return c, 0, err
	}
	c.PressureMin = float32le(b)

	if b, err = read(fieldPressUnit); err != nil {
		return c, 0, err
	}
	c.PressureUnit = strings.ToLower(trimText(b))
	scale, err := UnitScale(c.PressureUnit)
	if err != nil {
		return c, 0, err
	}

	if b, err = read(fieldPressRef); err != nil {
		return c, 0, err
	}
	c.PressureReference = b[0]

	for i, f := range fieldADCConfig {
		if b, err = read(f); err != nil {
			return c, 0, err
		}
		c.ADCConfig[i] = b[0]
	}

	sets := []struct {
		fields *[4]Field
		dst    *Coefficients
	}{
		{&fieldOffset, &c.Offset},
		{&fieldSpan, &c.Span},
		{&fieldShape, &c.Shape},
	}
	for _, s := range sets {
		for i, f := range s.fields {
			if b, err = read(f); err != nil {
				return c, 0, err
			}
			s.dst[i] = float32le(b)
		}
	}
	return c, scale, nil
}

// float32le decodes an IEEE-754 single stored least significant byte first.
func float32le(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}
