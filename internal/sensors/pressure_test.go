// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"errors"
	"testing"

	"github.com/relabs-tech/pressure_computer/internal/sensors/rsc"
)

type stubDevice struct {
	sample  rsc.Sample
	pollErr error
	polls   int
	resets  int
	mode    rsc.Mode
	srd     uint8
	closed  bool
	eeprom  [rsc.EEPROMSize]byte
}

func (d *stubDevice) Poll() error {
	d.polls++
	return d.pollErr
}

func (d *stubDevice) Sample() rsc.Sample { return d.sample }

func (d *stubDevice) Calibration() rsc.Calibration {
	return rsc.Calibration{SerialNumber: "P2100012345", PressureUnit: "psi"}
}

func (d *stubDevice) UnitScale() float64           { return 6894.757 }
func (d *stubDevice) Mode() rsc.Mode               { return d.mode }
func (d *stubDevice) SetMode(m rsc.Mode) error     { d.mode = m; return nil }
func (d *stubDevice) SampleRateDivider() uint8     { return d.srd }
func (d *stubDevice) SetSampleRateDivider(n uint8) { d.srd = n }
func (d *stubDevice) Reset() error                 { d.resets++; return nil }
func (d *stubDevice) Close() error                 { d.closed = true; return nil }

func (d *stubDevice) ReadEEPROM(addr uint16, n int) ([]byte, error) {
	return d.eeprom[addr : int(addr)+n], nil
}

func withDevice(t *testing.T, dev pressureDevice, err error) *PressureManager {
	t.Helper()
	old := openRSC
	openRSC = func() (pressureDevice, error) { return dev, err }
	t.Cleanup(func() { openRSC = old })
	return &PressureManager{}
}

func TestPressureManagerRead(t *testing.T) {
	dev := &stubDevice{sample: rsc.Sample{Temperature: 25, Pressure: 1, PressurePa: 6894.757}}
	m := withDevice(t, dev, nil)

	if _, err := m.Read(); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("read before init: %v", err)
	}
	if _, ok := m.Latest(); ok {
		t.Error("latest before any read")
	}
	if err := m.Init(); err != nil {
		t.Fatal(err)
	}
	s, err := m.Read()
	if err != nil {
		t.Fatal(err)
	}
	if s.Source != "P2100012345" || s.Unit != "psi" || s.Temperature != 25 {
		t.Errorf("got %+v", s)
	}
	if s.PressurePa != 6894.757 || s.PressureHPa != s.PressurePa/100 {
		t.Errorf("pressure %v Pa %v hPa", s.PressurePa, s.PressureHPa)
	}
	if l, ok := m.Latest(); !ok || l != s {
		t.Errorf("latest %+v", l)
	}

	dev.pollErr = errors.New("bus")
	if _, err := m.Read(); !errors.Is(err, dev.pollErr) {
		t.Errorf("got %v", err)
	}
	if polls, errs := m.Stats(); polls != 2 || errs != 1 {
		t.Errorf("stats %d/%d", polls, errs)
	}
	if l, _ := m.Latest(); l != s {
		t.Error("failed poll replaced latest sample")
	}
}

func TestPressureManagerInitOnce(t *testing.T) {
	calls := 0
	old := openRSC
	openRSC = func() (pressureDevice, error) {
		calls++
		return nil, errors.New("no sensor")
	}
	t.Cleanup(func() { openRSC = old })

	m := &PressureManager{}
	if err := m.Init(); err == nil {
		t.Fatal("expected error")
	}
	if err := m.Init(); err == nil || calls != 1 {
		t.Errorf("init retried: calls=%d err=%v", calls, err)
	}
	if err := m.Reset(); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("reset: %v", err)
	}
}

func TestPressureManagerMaintenance(t *testing.T) {
	dev := &stubDevice{mode: rsc.NormalMode20Hz}
	copy(dev.eeprom[:], "RSCDRRI001NDSE3")
	m := withDevice(t, dev, nil)
	if err := m.Init(); err != nil {
		t.Fatal(err)
	}

	b, err := m.DumpEEPROM()
	if err != nil || len(b) != rsc.EEPROMSize || string(b[:3]) != "RSC" {
		t.Errorf("dump %d bytes, %v", len(b), err)
	}
	if err := m.SetMode(rsc.FastMode90Hz); err != nil {
		t.Fatal(err)
	}
	if err := m.SetSampleRateDivider(4); err != nil {
		t.Fatal(err)
	}
	if mode, srd, _ := m.Settings(); mode != rsc.FastMode90Hz || srd != 4 {
		t.Errorf("settings %s %d", mode, srd)
	}
	if err := m.Reset(); err != nil || dev.resets != 1 {
		t.Errorf("reset %v (%d)", err, dev.resets)
	}
	if _, ok := m.Latest(); !ok {
		t.Error("reset did not refresh latest")
	}
	if err := m.Close(); err != nil || !dev.closed {
		t.Errorf("close %v", err)
	}
}

func TestRegisterMap(t *testing.T) {
	ee, err := RegisterMap("eeprom")
	if err != nil {
		t.Fatal(err)
	}
	if len(ee) != 22 {
		t.Fatalf("got %d EEPROM fields", len(ee))
	}
	if ee[0].Address != "0x000" || ee[0].Length != 16 {
		t.Errorf("first %+v", ee[0])
	}
	last := ee[len(ee)-1]
	if last.Address != "0x12E" || last.Description != "shape polynomial coefficient 3, float32 LE" {
		t.Errorf("last %+v", last)
	}
	if ee[6].Description != "Factory value of ADS1220 register 0" {
		t.Errorf("adc config %+v", ee[6])
	}

	adc, err := RegisterMap("ads1220")
	if err != nil || len(adc) != 4 {
		t.Fatalf("ads1220 map: %d, %v", len(adc), err)
	}
	if _, err := RegisterMap("mpu9250"); err == nil {
		t.Error("expected error for unknown device")
	}
}
