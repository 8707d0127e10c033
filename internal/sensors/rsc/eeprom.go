// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package rsc

// EEPROMSize is the size of the calibration memory in bytes.
const EEPROMSize = 512

// Field is one entry of the factory calibration layout in the EEPROM.
type Field struct {
	Name string
	Addr uint16
	Len  int
}

// Calibration record layout. Addresses and lengths are fixed by the
// sensor and read in this order.
var (
	fieldProductName  = Field{"PRODUCT_NAME", 0, 16}
	fieldSerialNumber = Field{"SERIAL_NUMBER", 16, 11}
	fieldPressRange   = Field{"PRESSURE_RANGE", 27, 4}
	fieldPressMin     = Field{"PRESSURE_MIN", 31, 4}
	fieldPressUnit    = Field{"PRESSURE_UNIT", 35, 5}
	fieldPressRef     = Field{"PRESSURE_REF", 40, 1}

	fieldADCConfig = [4]Field{
		{"ADC_CONFIG_0", 61, 1},
		{"ADC_CONFIG_1", 63, 1},
		{"ADC_CONFIG_2", 65, 1},
		{"ADC_CONFIG_3", 67, 1},
	}
	fieldOffset = [4]Field{
		{"OFFSET_COEFF_0", 130, 4},
		{"OFFSET_COEFF_1", 134, 4},
		{"OFFSET_COEFF_2", 138, 4},
		{"OFFSET_COEFF_3", 142, 4},
	}
	fieldSpan = [4]Field{
		{"SPAN_COEFF_0", 210, 4},
		{"SPAN_COEFF_1", 214, 4},
		{"SPAN_COEFF_2", 218, 4},
		{"SPAN_COEFF_3", 222, 4},
	}
	fieldShape = [4]Field{
		{"SHAPE_COEFF_0", 290, 4},
		{"SHAPE_COEFF_1", 294, 4},
		{"SHAPE_COEFF_2", 298, 4},
		{"SHAPE_COEFF_3", 302, 4},
	}
)

// Layout returns the calibration fields in the order New reads them.
func Layout() []Field {
	out := []Field{
		fieldProductName,
		fieldSerialNumber,
		fieldPressRange,
		fieldPressMin,
		fieldPressUnit,
		fieldPressRef,
	}
	out = append(out, fieldADCConfig[:]...)
	out = append(out, fieldOffset[:]...)
	out = append(out, fieldSpan[:]...)
	out = append(out, fieldShape[:]...)
	return out
}
