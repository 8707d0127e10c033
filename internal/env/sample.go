package env

import "time"

// Sample represents a single pressure measurement (RSC).
type Sample struct {
	Source string    `json:"source"` // sensor serial number
	Time   time.Time `json:"time"`

	Temperature float64 `json:"temp_c"`      // °C, sensor die
	Pressure    float64 `json:"pressure"`    // in Unit
	Unit        string  `json:"unit"`        // "psi", "inh2o", ...
	PressurePa  float64 `json:"pressure_pa"` // Pa
	PressureHPa float64 `json:"pressure_hpa"`
}
