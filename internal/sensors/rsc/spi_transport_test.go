// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package rsc

import (
	"bytes"
	"errors"
	"testing"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// levelPin records every level written to a gpiotest.Pin.
type levelPin struct {
	*gpiotest.Pin
	levels []gpio.Level
}

func (p *levelPin) Out(l gpio.Level) error {
	p.levels = append(p.levels, l)
	return p.Pin.Out(l)
}

// fakePort is an spi.PortCloser answering every Tx with the next reply.
type fakePort struct {
	mode    spi.Mode
	freq    physic.Frequency
	writes  [][]byte
	replies [][]byte
	closed  bool
}

func (p *fakePort) String() string                      { return "fake-spi" }
func (p *fakePort) LimitSpeed(f physic.Frequency) error { return nil }
func (p *fakePort) Close() error                        { p.closed = true; return nil }
func (p *fakePort) Halt() error                         { return nil }
func (p *fakePort) Duplex() conn.Duplex                 { return conn.Full }
func (p *fakePort) TxPackets(pkts []spi.Packet) error   { return errors.New("not supported") }

func (p *fakePort) Connect(f physic.Frequency, mode spi.Mode, bits int) (spi.Conn, error) {
	if bits != 8 {
		return nil, errors.New("bits")
	}
	p.freq, p.mode = f, mode
	return p, nil
}

func (p *fakePort) Tx(w, r []byte) error {
	p.writes = append(p.writes, append([]byte(nil), w...))
	if len(p.replies) > 0 {
		copy(r, p.replies[0])
		p.replies = p.replies[1:]
	}
	return nil
}

func TestSPITransport(t *testing.T) {
	ee := &levelPin{Pin: &gpiotest.Pin{N: "GPIO20"}}
	adc := &levelPin{Pin: &gpiotest.Pin{N: "GPIO19"}}
	tr, err := NewSPITransport("SPI0.0", ee, adc, 0)
	if err != nil {
		t.Fatal(err)
	}
	var ports []*fakePort
	tr.open = func(name string) (spi.PortCloser, error) {
		if name != "SPI0.0" {
			t.Errorf("opened %q", name)
		}
		p := &fakePort{replies: [][]byte{{0, 0, 'R', 'S'}}}
		ports = append(ports, p)
		return p, nil
	}

	if err := tr.Idle(); err != nil {
		t.Fatal(err)
	}
	p := protocol{t: tr}
	b, err := p.readEEPROM(0, 2)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "RS" {
		t.Errorf("read %q", b)
	}
	if _, err := p.readEEPROM(16, 2); err != nil {
		t.Fatal(err)
	}
	if len(ports) != 1 {
		t.Fatalf("same mode reopened the port %d times", len(ports))
	}
	if ports[0].mode != spi.Mode0|spi.NoCS || ports[0].freq != DefaultSpeed {
		t.Errorf("connected with mode %v at %s", ports[0].mode, ports[0].freq)
	}

	if err := p.resetADC(); err != nil {
		t.Fatal(err)
	}
	if len(ports) != 2 || !ports[0].closed {
		t.Fatalf("mode change did not reconnect: %d ports", len(ports))
	}
	if ports[1].mode != spi.Mode1|spi.NoCS {
		t.Errorf("ADC mode %v", ports[1].mode)
	}
	if !bytes.Equal(ports[1].writes[0], []byte{0x06}) {
		t.Errorf("wrote %x", ports[1].writes[0])
	}

	wantEE := []gpio.Level{gpio.High, gpio.Low, gpio.High, gpio.Low, gpio.High}
	if !levelsEqual(ee.levels, wantEE) {
		t.Errorf("EEPROM CS %v, want %v", ee.levels, wantEE)
	}
	wantADC := []gpio.Level{gpio.High, gpio.Low, gpio.High}
	if !levelsEqual(adc.levels, wantADC) {
		t.Errorf("ADC CS %v, want %v", adc.levels, wantADC)
	}

	if err := tr.Close(); err != nil {
		t.Fatal(err)
	}
	if !ports[1].closed {
		t.Error("port left open")
	}
}

func TestSPITransportNilPin(t *testing.T) {
	if _, err := NewSPITransport("SPI0.0", nil, &gpiotest.Pin{N: "CS"}, 0); err == nil {
		t.Error("expected error")
	}
}

func levelsEqual(a, b []gpio.Level) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
