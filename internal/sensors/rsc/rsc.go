// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package rsc

import (
	"fmt"
	"io"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

// settleTime is the wait between commanding a conversion and reading it
// during priming. The 20 Hz preset needs 50 ms for one conversion.
const settleTime = 65 * time.Millisecond

// dataLen is the length of one ADS1220 conversion result.
const dataLen = 3

// Opts holds the configuration options.
type Opts struct {
	// Mode is the converter data rate.
	Mode Mode
	// TempSRD is the number of extra pressure readings between two
	// temperature readings.
	TempSRD uint8
	// Speed is the SPI clock used by NewSPI.
	Speed physic.Frequency
}

// DefaultOpts is the recommended default options.
var DefaultOpts = Opts{
	Mode:  NormalMode20Hz,
	Speed: DefaultSpeed,
}

// Dev is a handle to an initialized TruStability RSC sensor.
type Dev struct {
	proto  protocol
	closer io.Closer

	cal   Calibration
	scale float64

	mode   Mode
	acq    acquisition
	sample Sample
}

// NewSPI opens the sensor on the SPI device spiDev with the given chip
// select pins and initializes it.
func NewSPI(spiDev string, eepromCS, adcCS gpio.PinOut, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	t, err := NewSPITransport(spiDev, eepromCS, adcCS, opts.Speed)
	if err != nil {
		return nil, err
	}
	d, err := New(t, opts)
	if err != nil {
		t.Close()
		return nil, err
	}
	d.closer = t
	return d, nil
}

// New reads the factory calibration through t, programs the converter and
// takes one temperature and one pressure reading. It fails with
// ErrUnknownUnit when the EEPROM names an unsupported pressure unit.
func New(t Transport, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	if !opts.Mode.Valid() {
		return nil, fmt.Errorf("rsc: invalid mode 0x%02X", uint8(opts.Mode))
	}
	if err := t.Idle(); err != nil {
		return nil, err
	}
	d := &Dev{
		proto: protocol{t: t},
		mode:  opts.Mode,
		acq:   acquisition{srd: opts.TempSRD},
	}
	var err error
	if d.cal, d.scale, err = readCalibration(d.proto); err != nil {
		return nil, fmt.Errorf("rsc: read calibration: %w", err)
	}
	if err := d.configure(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("TruStability RSC %s (%s)", d.cal.ProductName, d.cal.SerialNumber)
}

// Calibration returns a copy of the factory calibration record.
func (d *Dev) Calibration() Calibration {
	return d.cal
}

// ProductName returns the catalog listing of the sensor.
func (d *Dev) ProductName() string {
	return d.cal.ProductName
}

// SerialNumber returns the sensor serial number.
func (d *Dev) SerialNumber() string {
	return d.cal.SerialNumber
}

// UnitScale returns the factor from the native pressure unit to pascals.
func (d *Dev) UnitScale() float64 {
	return d.scale
}

// SetSampleRateDivider sets how many pressure readings beyond the first
// are taken between two temperature readings. 0 alternates them.
func (d *Dev) SetSampleRateDivider(n uint8) {
	d.acq.srd = n
}

// SampleRateDivider returns the temperature sample rate divider.
func (d *Dev) SampleRateDivider() uint8 {
	return d.acq.srd
}

// Mode returns the converter data rate preset.
func (d *Dev) Mode() Mode {
	return d.mode
}

// SetMode changes the converter data rate and takes a fresh temperature
// and pressure reading, blocking for about 130 ms.
func (d *Dev) SetMode(m Mode) error {
	if !m.Valid() {
		return fmt.Errorf("rsc: invalid mode 0x%02X", uint8(m))
	}
	d.mode = m
	return d.prime()
}

// Poll reads the conversion commanded on the previous call, updates the
// sample and commands the next conversion when it changes kind.
func (d *Dev) Poll() error {
	b, err := d.proto.readADC(dataLen)
	if err != nil {
		return err
	}
	switch d.acq.meas {
	case Temperature:
		d.sample.setTemperature(b)
	case Pressure:
		d.sample.setPressure(b, &d.cal, d.scale)
	}
	if next, changed := d.acq.advance(); changed {
		return d.command(next)
	}
	return nil
}

// PressurePa returns the latest compensated pressure in pascals.
func (d *Dev) PressurePa() float64 {
	return d.sample.PressurePa
}

// DieTemperature returns the latest sensor die temperature in °C.
func (d *Dev) DieTemperature() float64 {
	return d.sample.Temperature
}

// Sample returns the latest reading.
func (d *Dev) Sample() Sample {
	return d.sample
}

// Sense polls once and stores the latest temperature and pressure in e.
func (d *Dev) Sense(e *physic.Env) error {
	if err := d.Poll(); err != nil {
		return err
	}
	e.Temperature = physic.ZeroCelsius + physic.Temperature(d.sample.Temperature*float64(physic.Celsius))
	e.Pressure = physic.Pressure(d.sample.PressurePa * float64(physic.Pascal))
	return nil
}

// Reset resets the converter, writes the factory configuration again and
// primes a new temperature and pressure reading.
func (d *Dev) Reset() error {
	if err := d.proto.resetADC(); err != nil {
		return err
	}
	return d.configure()
}

// ReadEEPROM returns n raw bytes of the calibration memory at addr.
func (d *Dev) ReadEEPROM(addr uint16, n int) ([]byte, error) {
	if int(addr)+n > EEPROMSize {
		return nil, fmt.Errorf("rsc: EEPROM read 0x%03X+%d past end", addr, n)
	}
	return d.proto.readEEPROM(addr, n)
}

// Close releases the bus when the Dev was created by NewSPI.
func (d *Dev) Close() error {
	if d.closer == nil {
		return nil
	}
	err := d.closer.Close()
	d.closer = nil
	return err
}

func (d *Dev) configure() error {
	if err := d.proto.writeADC(adcConfReg, d.cal.ADCConfig[:]); err != nil {
		return fmt.Errorf("rsc: load factory ADC config: %w", err)
	}
	return d.prime()
}

// prime takes one temperature and one pressure reading back to back and
// leaves a pressure conversion running.
func (d *Dev) prime() error {
	for _, m := range []Measurement{Temperature, Pressure} {
		if err := d.command(m); err != nil {
			return err
		}
		doSleep(settleTime)
		b, err := d.proto.readADC(dataLen)
		if err != nil {
			return err
		}
		if m == Temperature {
			d.sample.setTemperature(b)
		} else {
			d.sample.setPressure(b, &d.cal, d.scale)
		}
	}
	d.acq.meas = Pressure
	d.acq.count = 0
	return nil
}

func (d *Dev) command(m Measurement) error {
	if err := d.proto.writeADC(adcUsrConfReg, []byte{byte(d.mode) | m.configBits()}); err != nil {
		return fmt.Errorf("rsc: start %s conversion: %w", m, err)
	}
	d.acq.meas = m
	return nil
}

var doSleep = time.Sleep
