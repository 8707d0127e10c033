// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package rsc

import (
	"errors"
	"fmt"
	"sync"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
)

// DefaultSpeed is the bus clock used by the sensor's reference firmware.
const DefaultSpeed = 5 * physic.MegaHertz

// SPITransport is a Transport over a periph SPI port with both chip selects
// driven as GPIOs.
//
// A periph port is connected once with a fixed mode, so switching between
// the EEPROM (mode 0) and the ADC (mode 1) closes the port and opens it
// again. After initialization the ADC is the only device talked to and the
// port stays connected.
type SPITransport struct {
	mu    sync.Mutex
	name  string
	speed physic.Frequency
	cs    [2]gpio.PinOut
	open  func(name string) (spi.PortCloser, error)

	port spi.PortCloser
	conn spi.Conn
	mode spi.Mode
}

// NewSPITransport returns a transport on the SPI device spiDev (for example
// "/dev/spidev0.0" or "SPI0.0") using eepromCS and adcCS as chip selects.
// The port is opened lazily on the first transfer.
func NewSPITransport(spiDev string, eepromCS, adcCS gpio.PinOut, speed physic.Frequency) (*SPITransport, error) {
	if eepromCS == nil {
		return nil, errors.New("rsc: EEPROM chip select pin is nil")
	}
	if adcCS == nil {
		return nil, errors.New("rsc: ADC chip select pin is nil")
	}
	if speed <= 0 {
		speed = DefaultSpeed
	}
	return &SPITransport{
		name:  spiDev,
		speed: speed,
		cs:    [2]gpio.PinOut{EEPROM: eepromCS, ADC: adcCS},
		open:  spireg.Open,
	}, nil
}

func (t *SPITransport) String() string {
	return fmt.Sprintf("rsc-spi(%s, cs=%s/%s)", t.name, t.cs[EEPROM], t.cs[ADC])
}

// Idle implements Transport.
func (t *SPITransport) Idle() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, p := range t.cs {
		if err := p.Out(gpio.High); err != nil {
			return fmt.Errorf("rsc: release %s chip select: %w", ChipSelect(i), err)
		}
	}
	return nil
}

// Tx implements Transport.
func (t *SPITransport) Tx(cs ChipSelect, mode spi.Mode, w, r []byte) error {
	if int(cs) >= len(t.cs) {
		return fmt.Errorf("rsc: unknown chip select %s", cs)
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.connect(mode); err != nil {
		return err
	}
	pin := t.cs[cs]
	if err := pin.Out(gpio.Low); err != nil {
		return fmt.Errorf("rsc: assert %s chip select: %w", cs, err)
	}
	txErr := t.conn.Tx(w, r)
	if err := pin.Out(gpio.High); err != nil && txErr == nil {
		return fmt.Errorf("rsc: release %s chip select: %w", cs, err)
	}
	if txErr != nil {
		return fmt.Errorf("rsc: %s transfer: %w", cs, txErr)
	}
	return nil
}

// Close releases the SPI port.
func (t *SPITransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.disconnect()
}

func (t *SPITransport) connect(mode spi.Mode) error {
	if t.conn != nil && t.mode == mode {
		return nil
	}
	if err := t.disconnect(); err != nil {
		return err
	}
	port, err := t.open(t.name)
	if err != nil {
		return fmt.Errorf("rsc: open %s: %w", t.name, err)
	}
	// Chip selects are GPIOs, keep the controller's own CS out of the way.
	conn, err := port.Connect(t.speed, mode|spi.NoCS, 8)
	if err != nil {
		port.Close()
		return fmt.Errorf("rsc: connect %s in mode %v: %w", t.name, mode, err)
	}
	t.port = port
	t.conn = conn
	t.mode = mode
	return nil
}

func (t *SPITransport) disconnect() error {
	if t.port == nil {
		return nil
	}
	err := t.port.Close()
	t.port = nil
	t.conn = nil
	if err != nil {
		return fmt.Errorf("rsc: close %s: %w", t.name, err)
	}
	return nil
}
