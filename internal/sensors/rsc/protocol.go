// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package rsc

import (
	"fmt"

	"periph.io/x/conn/v3/spi"
)

const (
	// EEPROM READ instruction: 0000 A8 011.
	eepromRead   = 0x03
	eepromA8Mask = 0x100

	// ADS1220 commands.
	adcWReg      = 0x40
	adcRegMask   = 0x0C
	adcCountMask = 0x03
	adcReset     = 0x06
	adcStart     = 0x10

	// ADS1220 configuration registers.
	adcConfReg    = 0x00
	adcUsrConfReg = 0x01

	eepromMode = spi.Mode0
	adcMode    = spi.Mode1
)

// protocol frames the EEPROM and ADS1220 register commands. Every method is
// exactly one chip-select transaction on the transport.
type protocol struct {
	t Transport
}

// readEEPROM reads n bytes starting at the 9-bit address addr.
func (p protocol) readEEPROM(addr uint16, n int) ([]byte, error) {
	if n <= 0 {
		return nil, fmt.Errorf("rsc: invalid EEPROM read length %d", n)
	}
	if addr > 0x1FF {
		return nil, fmt.Errorf("rsc: EEPROM address 0x%03X out of range", addr)
	}
	w := make([]byte, 2+n)
	w[0] = eepromRead | byte((addr&eepromA8Mask)>>5)
	w[1] = byte(addr & 0xFF)
	r := make([]byte, len(w))
	if err := p.t.Tx(EEPROM, eepromMode, w, r); err != nil {
		return nil, fmt.Errorf("rsc: read EEPROM 0x%03X: %w", addr, err)
	}
	return r[2:], nil
}

// writeADC writes data to consecutive ADS1220 registers starting at reg.
func (p protocol) writeADC(reg uint8, data []byte) error {
	if len(data) == 0 || len(data) > 4 {
		return fmt.Errorf("rsc: invalid ADC register write length %d", len(data))
	}
	w := make([]byte, 1+len(data))
	w[0] = adcWReg | (reg<<2)&adcRegMask | byte(len(data)-1)&adcCountMask
	copy(w[1:], data)
	if err := p.t.Tx(ADC, adcMode, w, nil); err != nil {
		return fmt.Errorf("rsc: write ADC register %d: %w", reg, err)
	}
	return nil
}

// readADC sends START/SYNC and clocks out n bytes of the last conversion.
func (p protocol) readADC(n int) ([]byte, error) {
	if n <= 0 {
		return nil, fmt.Errorf("rsc: invalid ADC read length %d", n)
	}
	w := make([]byte, 1+n)
	w[0] = adcStart
	r := make([]byte, len(w))
	if err := p.t.Tx(ADC, adcMode, w, r); err != nil {
		return nil, fmt.Errorf("rsc: read ADC data: %w", err)
	}
	return r[1:], nil
}

func (p protocol) resetADC() error {
	if err := p.t.Tx(ADC, adcMode, []byte{adcReset}, nil); err != nil {
		return fmt.Errorf("rsc: reset ADC: %w", err)
	}
	return nil
}
