// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package rsc drives a Honeywell TruStability RSC pressure sensor over SPI.
//
// The sensor is two devices behind one bus: an EEPROM holding the factory
// calibration (SPI mode 0) and an ADS1220 converter (SPI mode 1), each with
// its own chip select. New reads the calibration once, programs the
// converter with the factory configuration and primes one temperature and
// one pressure conversion. Poll then alternates the converter between
// pressure and temperature, resampling temperature every 1+divider pressure
// readings, and compensates each raw pressure code with the offset, span
// and shape polynomials from the EEPROM.
//
// A Dev is not safe for concurrent use; callers serialize access.
//
// # Datasheets
//
// https://prod-edam.honeywell.com/content/dam/honeywell-edam/sps/siot/en-us/products/sensors/pressure-sensors/board-mount-pressure-sensors/trustability-rsc-series/documents/sps-siot-rsc-series-data-sheet-32321348-ciid-164408.pdf
//
// https://www.ti.com/lit/ds/symlink/ads1220.pdf
package rsc
