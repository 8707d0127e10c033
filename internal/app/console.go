// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/relabs-tech/pressure_computer/internal/config"
	"github.com/relabs-tech/pressure_computer/internal/env"
	"github.com/relabs-tech/pressure_computer/internal/sensors"
)

// RunConsole polls the sensor directly and prints one line per reading.
func RunConsole() error {
	cfg := config.Get()

	mgr := sensors.GetPressureManager()
	if err := mgr.Init(); err != nil {
		return err
	}
	defer mgr.Close()

	ticker := time.NewTicker(config.Every(cfg.SampleInterval))
	defer ticker.Stop()

	fmt.Println("pressure_pa\tdie_temp_c")
	for range ticker.C {
		s, err := mgr.Read()
		if err != nil {
			return err
		}
		printSample(os.Stdout, s)
	}
	return nil
}

func printSample(w io.Writer, s env.Sample) {
	fmt.Fprintf(w, "%.2f\t%.2f\n", s.PressurePa, s.Temperature)
}
