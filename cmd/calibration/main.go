// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Reads the factory calibration record of the RSC sensor and stores it,
// with the unit scale and the configured converter settings, in
// ./rsc_calibration.json.
//
// Run:
//
//	sudo ./calibration -config pressure_config.txt
package main

import (
	"flag"
	"log"

	"github.com/relabs-tech/pressure_computer/internal/app"
	"github.com/relabs-tech/pressure_computer/internal/config"
)

func main() {
	configPath := flag.String("config", "pressure_config.txt", "Path to configuration file")
	out := flag.String("out", "rsc_calibration.json", "output file")
	flag.Parse()

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunCalibrationDump(*out); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
