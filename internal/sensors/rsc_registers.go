// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"
	"strings"

	"github.com/relabs-tech/pressure_computer/internal/sensors/rsc"
)

// BitField describes one field of a register.
type BitField struct {
	Bits        string `json:"bits"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Values      string `json:"values,omitempty"`
}

// RegisterInfo describes one register or EEPROM field.
type RegisterInfo struct {
	Address     string     `json:"address"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Access      string     `json:"access"` // "R", "W", "RW"
	Length      int        `json:"length,omitempty"`
	Default     string     `json:"default,omitempty"`
	BitFields   []BitField `json:"bit_fields,omitempty"`
}

var eepromDescriptions = map[string]string{
	"PRODUCT_NAME":   "Catalog listing, ASCII",
	"SERIAL_NUMBER":  "Serial number, ASCII (YYYY DDD XXXX)",
	"PRESSURE_RANGE": "Full scale pressure range, float32 LE",
	"PRESSURE_MIN":   "Pressure at code 0, float32 LE",
	"PRESSURE_UNIT":  "Pressure unit, ASCII",
	"PRESSURE_REF":   "Pressure reference: D=differential, G=gauge, A=absolute",
}

// RegisterMap returns the register map of device, "eeprom" or "ads1220".
func RegisterMap(device string) ([]RegisterInfo, error) {
	switch device {
	case "eeprom":
		return getEEPROMRegisterMap(), nil
	case "ads1220":
		return getADS1220RegisterMap(), nil
	default:
		return nil, fmt.Errorf("unknown device %q", device)
	}
}

// getEEPROMRegisterMap lists the calibration fields the driver reads.
func getEEPROMRegisterMap() []RegisterInfo {
	layout := rsc.Layout()
	out := make([]RegisterInfo, 0, len(layout))
	for _, f := range layout {
		desc, ok := eepromDescriptions[f.Name]
		if !ok {
			desc = coefficientDescription(f.Name)
		}
		out = append(out, RegisterInfo{
			Address:     fmt.Sprintf("0x%03X", f.Addr),
			Name:        f.Name,
			Description: desc,
			Access:      "R",
			Length:      f.Len,
		})
	}
	return out
}

func coefficientDescription(name string) string {
	if i, ok := strings.CutPrefix(name, "ADC_CONFIG_"); ok {
		return "Factory value of ADS1220 register " + i
	}
	if kind, i, ok := strings.Cut(name, "_COEFF_"); ok {
		return fmt.Sprintf("%s polynomial coefficient %s, float32 LE", strings.ToLower(kind), i)
	}
	return ""
}

// getADS1220RegisterMap returns metadata for the ADS1220 configuration registers.
func getADS1220RegisterMap() []RegisterInfo {
	return []RegisterInfo{
		{Address: "0x00", Name: "CONFIG0", Description: "Input multiplexer and gain", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "7:4", Name: "MUX", Description: "Input multiplexer", Values: "0=AIN0/AIN1, 1=AIN0/AIN2, ... 14=(AVDD+AVSS)/2"},
				{Bits: "3:1", Name: "GAIN", Description: "Gain", Values: "0=1, 1=2, 2=4, 3=8, 4=16, 5=32, 6=64, 7=128"},
				{Bits: "0", Name: "PGA_BYPASS", Description: "PGA bypass", Values: "0=PGA enabled, 1=Bypassed"},
			}},
		{Address: "0x01", Name: "CONFIG1", Description: "Data rate, mode and temperature sensor", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "7:5", Name: "DR", Description: "Data rate", Values: "Normal: 0=20, 1=45, 2=90, 3=175, 4=330, 5=600, 6=1000 SPS; Turbo: twice"},
				{Bits: "4:3", Name: "MODE", Description: "Operating mode", Values: "0=Normal, 1=Duty-cycle, 2=Turbo"},
				{Bits: "2", Name: "CM", Description: "Conversion mode", Values: "0=Single-shot, 1=Continuous"},
				{Bits: "1", Name: "TS", Description: "Temperature sensor", Values: "0=Disabled, 1=Enabled"},
				{Bits: "0", Name: "BCS", Description: "Burn-out current sources", Values: "0=Off, 1=On"},
			}},
		{Address: "0x02", Name: "CONFIG2", Description: "Reference, filter and excitation", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "7:6", Name: "VREF", Description: "Voltage reference", Values: "0=Internal 2.048V, 1=REFP0/REFN0, 2=AIN0/AIN3, 3=AVDD"},
				{Bits: "5:4", Name: "50/60", Description: "FIR filter", Values: "0=None, 1=50+60Hz, 2=50Hz, 3=60Hz"},
				{Bits: "3", Name: "PSW", Description: "Low-side power switch", Values: "0=Open, 1=Auto close"},
				{Bits: "2:0", Name: "IDAC", Description: "IDAC current", Values: "0=Off, 1=10uA, 2=50uA, 3=100uA, 4=250uA, 5=500uA, 6=1000uA, 7=1500uA"},
			}},
		{Address: "0x03", Name: "CONFIG3", Description: "IDAC routing and data ready", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "7:5", Name: "I1MUX", Description: "IDAC1 routing", Values: "0=Disabled, 1=AIN0 ... 6=REFN0"},
				{Bits: "4:2", Name: "I2MUX", Description: "IDAC2 routing", Values: "0=Disabled, 1=AIN0 ... 6=REFN0"},
				{Bits: "1", Name: "DRDYM", Description: "DRDY mode", Values: "0=DRDY only, 1=DOUT/DRDY and DRDY"},
			}},
	}
}
