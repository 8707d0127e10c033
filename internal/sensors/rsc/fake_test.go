// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package rsc

import (
	"encoding/binary"
	"math"
	"testing"
	"time"

	"periph.io/x/conn/v3/spi"
)

// txOp is one recorded chip-select transaction.
type txOp struct {
	cs   ChipSelect
	mode spi.Mode
	w    []byte
}

// fakeSensor simulates the EEPROM and the ADS1220 behind a Transport. A
// data read returns the temperature bytes when register 1 selects the
// temperature sensor and the pressure bytes otherwise.
type fakeSensor struct {
	eeprom [EEPROMSize]byte
	regs   [4]byte
	temp   [3]byte
	press  [3]byte

	idle  bool
	ops   []txOp
	reads []Measurement
	err   error
}

func (f *fakeSensor) Idle() error {
	f.idle = true
	return nil
}

func (f *fakeSensor) Tx(cs ChipSelect, mode spi.Mode, w, r []byte) error {
	if f.err != nil {
		return f.err
	}
	f.ops = append(f.ops, txOp{cs: cs, mode: mode, w: append([]byte(nil), w...)})
	switch cs {
	case EEPROM:
		addr := int(w[0]&0x08)<<5 | int(w[1])
		copy(r[2:], f.eeprom[addr:])
	case ADC:
		switch {
		case w[0] == adcStart:
			if f.regs[1]&temperatureReading != 0 {
				copy(r[1:], f.temp[:])
				f.reads = append(f.reads, Temperature)
			} else {
				copy(r[1:], f.press[:])
				f.reads = append(f.reads, Pressure)
			}
		case w[0] == adcReset:
			f.regs = [4]byte{}
		case w[0]&0xF0 == adcWReg:
			reg := (w[0] & adcRegMask) >> 2
			n := int(w[0]&adcCountMask) + 1
			copy(f.regs[reg:], w[1:1+n])
		}
	}
	return nil
}

// adcWrites returns the payload of every ADC register write.
func (f *fakeSensor) adcWrites() [][]byte {
	var out [][]byte
	for _, op := range f.ops {
		if op.cs == ADC && op.w[0]&0xF0 == adcWReg {
			out = append(out, op.w)
		}
	}
	return out
}

func (f *fakeSensor) setTempCode(code uint16) {
	binary.BigEndian.PutUint16(f.temp[:], code<<2)
}

func (f *fakeSensor) setPressureCode(code int32) {
	f.press = [3]byte{byte(code >> 16), byte(code >> 8), byte(code)}
}

type record struct {
	name, serial, unit string
	ref                byte
	rng, min           float32
	adc                [4]byte
	offset, span       Coefficients
	shape              Coefficients
}

// identity is a model where pressure = code*range + min.
var identity = record{
	name:   "RSCDRRI001NDSE3",
	serial: "P2100012345",
	unit:   "inH2O",
	ref:    'D',
	rng:    2,
	min:    -1,
	adc:    [4]byte{0x3E, 0x04, 0x10, 0x00},
	span:   Coefficients{1},
	shape:  Coefficients{0, 1},
}

func newFakeSensor(rec record) *fakeSensor {
	f := &fakeSensor{}
	putText := func(fd Field, s string) {
		copy(f.eeprom[fd.Addr:int(fd.Addr)+fd.Len], s)
	}
	putFloat := func(fd Field, v float32) {
		binary.LittleEndian.PutUint32(f.eeprom[fd.Addr:], math.Float32bits(v))
	}
	putText(fieldProductName, rec.name)
	putText(fieldSerialNumber, rec.serial)
	putFloat(fieldPressRange, rec.rng)
	putFloat(fieldPressMin, rec.min)
	putText(fieldPressUnit, rec.unit)
	f.eeprom[fieldPressRef.Addr] = rec.ref
	for i, fd := range fieldADCConfig {
		f.eeprom[fd.Addr] = rec.adc[i]
	}
	for i := 0; i < 4; i++ {
		putFloat(fieldOffset[i], rec.offset[i])
		putFloat(fieldSpan[i], rec.span[i])
		putFloat(fieldShape[i], rec.shape[i])
	}
	return f
}

// noSleep disables the settling delay and records the requested waits.
func noSleep(t *testing.T) *[]time.Duration {
	var slept []time.Duration
	old := doSleep
	doSleep = func(d time.Duration) { slept = append(slept, d) }
	t.Cleanup(func() { doSleep = old })
	return &slept
}

func approxEqual(a, b float64) bool {
	if a == b {
		return true
	}
	return math.Abs(a-b) <= 1e-9*math.Max(math.Abs(a), math.Abs(b))
}
