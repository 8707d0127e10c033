// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/relabs-tech/pressure_computer/internal/sensors"
	"github.com/relabs-tech/pressure_computer/internal/sensors/rsc"
)

// CalibrationDump is the content of rsc_calibration.json.
type CalibrationDump struct {
	Timestamp   string          `json:"timestamp"`
	Calibration rsc.Calibration `json:"calibration"`
	UnitScale   float64         `json:"unit_scale"`
	Mode        string          `json:"mode"`
	TempSRD     uint8           `json:"temp_srd"`
}

type calibrationSource interface {
	Calibration() (rsc.Calibration, float64, error)
	Settings() (rsc.Mode, uint8, error)
}

func buildCalibrationDump(src calibrationSource, now time.Time) (CalibrationDump, error) {
	cal, scale, err := src.Calibration()
	if err != nil {
		return CalibrationDump{}, err
	}
	mode, srd, err := src.Settings()
	if err != nil {
		return CalibrationDump{}, err
	}
	return CalibrationDump{
		Timestamp:   now.Format(time.RFC3339),
		Calibration: cal,
		UnitScale:   scale,
		Mode:        mode.String(),
		TempSRD:     srd,
	}, nil
}

// RunCalibrationDump reads the factory calibration and saves it to path.
func RunCalibrationDump(path string) error {
	mgr := sensors.GetPressureManager()
	if err := mgr.Init(); err != nil {
		return fmt.Errorf("failed to initialize pressure sensor: %w", err)
	}
	defer mgr.Close()

	dump, err := buildCalibrationDump(mgr, time.Now())
	if err != nil {
		return err
	}
	c := dump.Calibration
	fmt.Printf("Product:   %s\n", c.ProductName)
	fmt.Printf("Serial:    %s\n", c.SerialNumber)
	fmt.Printf("Range:     %g %s from %g (reference %c)\n", c.PressureRange, c.PressureUnit, c.PressureMin, c.PressureReference)
	fmt.Printf("ADC conf:  % X\n", c.ADCConfig[:])
	fmt.Printf("Offset:    %v\n", c.Offset)
	fmt.Printf("Span:      %v\n", c.Span)
	fmt.Printf("Shape:     %v\n", c.Shape)
	fmt.Printf("1 %s = %g Pa\n", c.PressureUnit, dump.UnitScale)

	b, err := json.MarshalIndent(dump, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return err
	}
	log.Printf("calibration: saved to %s", path)
	return nil
}
