// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/relabs-tech/pressure_computer/internal/config"
	"github.com/relabs-tech/pressure_computer/internal/env"
	"github.com/relabs-tech/pressure_computer/internal/sensors/rsc"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// ErrNotInitialized is returned by PressureManager methods called before a
// successful Init.
var ErrNotInitialized = errors.New("pressure sensor not initialized")

// pressureDevice is the part of *rsc.Dev the manager uses.
type pressureDevice interface {
	Poll() error
	Sample() rsc.Sample
	Calibration() rsc.Calibration
	UnitScale() float64
	Mode() rsc.Mode
	SetMode(rsc.Mode) error
	SampleRateDivider() uint8
	SetSampleRateDivider(uint8)
	ReadEEPROM(addr uint16, n int) ([]byte, error)
	Reset() error
	Close() error
}

// openRSC brings up the sensor described by the global configuration.
var openRSC = func() (pressureDevice, error) {
	cfg := config.Get()
	if cfg == nil {
		return nil, errors.New("config not loaded")
	}
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("RSC: periph host init: %w", err)
	}
	eeprom := gpioreg.ByName(cfg.RSCEEPROMCSPin)
	if eeprom == nil {
		return nil, fmt.Errorf("RSC: EEPROM CS pin %q not found", cfg.RSCEEPROMCSPin)
	}
	adc := gpioreg.ByName(cfg.RSCADCCSPin)
	if adc == nil {
		return nil, fmt.Errorf("RSC: ADC CS pin %q not found", cfg.RSCADCCSPin)
	}
	dev, err := rsc.NewSPI(cfg.RSCSPIDevice, eeprom, adc, cfg.RSCOpts())
	if err != nil {
		return nil, fmt.Errorf("RSC: init on %s: %w", cfg.RSCSPIDevice, err)
	}
	log.Printf("RSC: %s on %s, mode %s, temperature every %d readings",
		dev, cfg.RSCSPIDevice, dev.Mode(), int(dev.SampleRateDivider())+1)
	return dev, nil
}

// PressureManager owns the process-wide sensor. All bus access goes through
// it so a poll never interleaves with a maintenance request.
type PressureManager struct {
	once    sync.Once
	initErr error

	mu     sync.Mutex
	dev    pressureDevice
	cal    rsc.Calibration
	latest env.Sample
	have   bool
	polls  uint64
	errs   uint64
}

var (
	pressureManager     *PressureManager
	pressureManagerOnce sync.Once
)

// GetPressureManager returns the singleton manager.
func GetPressureManager() *PressureManager {
	pressureManagerOnce.Do(func() {
		pressureManager = &PressureManager{}
	})
	return pressureManager
}

// Init opens the sensor once. Later calls return the first result.
func (m *PressureManager) Init() error {
	m.once.Do(func() {
		dev, err := openRSC()
		if err != nil {
			m.initErr = err
			return
		}
		m.mu.Lock()
		m.dev = dev
		m.cal = dev.Calibration()
		m.mu.Unlock()
	})
	return m.initErr
}

// Read polls the sensor once and returns the latest reading.
func (m *PressureManager) Read() (env.Sample, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dev == nil {
		return env.Sample{}, ErrNotInitialized
	}
	m.polls++
	if err := m.dev.Poll(); err != nil {
		m.errs++
		return env.Sample{}, fmt.Errorf("RSC poll: %w", err)
	}
	m.latest = m.sampleLocked(time.Now())
	m.have = true
	return m.latest, nil
}

func (m *PressureManager) sampleLocked(now time.Time) env.Sample {
	s := m.dev.Sample()
	return env.Sample{
		Source:      m.cal.SerialNumber,
		Time:        now,
		Temperature: s.Temperature,
		Pressure:    s.Pressure,
		Unit:        m.cal.PressureUnit,
		PressurePa:  s.PressurePa,
		PressureHPa: s.PressurePa / 100.0, // 1 hPa = 100 Pa
	}
}

// Latest returns the last reading without touching the bus.
func (m *PressureManager) Latest() (env.Sample, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.latest, m.have
}

// Stats returns the number of polls attempted and how many failed.
func (m *PressureManager) Stats() (polls, errs uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.polls, m.errs
}

// Calibration returns the factory record read at Init.
func (m *PressureManager) Calibration() (rsc.Calibration, float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dev == nil {
		return rsc.Calibration{}, 0, ErrNotInitialized
	}
	return m.cal, m.dev.UnitScale(), nil
}

// Settings returns the converter mode and temperature divider.
func (m *PressureManager) Settings() (rsc.Mode, uint8, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dev == nil {
		return 0, 0, ErrNotInitialized
	}
	return m.dev.Mode(), m.dev.SampleRateDivider(), nil
}

// SetMode changes the converter rate. It blocks while the sensor re-primes.
func (m *PressureManager) SetMode(mode rsc.Mode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dev == nil {
		return ErrNotInitialized
	}
	if err := m.dev.SetMode(mode); err != nil {
		return err
	}
	log.Printf("RSC: mode set to %s", mode)
	return nil
}

// SetSampleRateDivider changes how often temperature is converted.
func (m *PressureManager) SetSampleRateDivider(n uint8) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dev == nil {
		return ErrNotInitialized
	}
	m.dev.SetSampleRateDivider(n)
	log.Printf("RSC: temperature sample rate divider set to %d", n)
	return nil
}

// ReadEEPROM reads raw calibration memory.
func (m *PressureManager) ReadEEPROM(addr uint16, n int) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dev == nil {
		return nil, ErrNotInitialized
	}
	return m.dev.ReadEEPROM(addr, n)
}

// DumpEEPROM reads the whole calibration memory.
func (m *PressureManager) DumpEEPROM() ([]byte, error) {
	return m.ReadEEPROM(0, rsc.EEPROMSize)
}

// Reset resets the converter and reloads its factory configuration.
func (m *PressureManager) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dev == nil {
		return ErrNotInitialized
	}
	if err := m.dev.Reset(); err != nil {
		return fmt.Errorf("RSC reset: %w", err)
	}
	m.latest = m.sampleLocked(time.Now())
	m.have = true
	log.Println("RSC: converter reset")
	return nil
}

// Close releases the bus.
func (m *PressureManager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dev == nil {
		return nil
	}
	err := m.dev.Close()
	m.dev = nil
	return err
}
