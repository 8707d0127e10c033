// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/relabs-tech/pressure_computer/internal/env"
)

// sampleStats is what the exporter reads. *sensors.PressureManager
// satisfies it; none of the calls touch the bus.
type sampleStats interface {
	Latest() (env.Sample, bool)
	Stats() (polls, errs uint64)
}

// registerMetrics adds the pressure gauges to reg.
func registerMetrics(reg prometheus.Registerer, src sampleStats, now func() time.Time) {
	f := promauto.With(reg)

	latest := func(get func(env.Sample) float64) func() float64 {
		return func() float64 {
			s, ok := src.Latest()
			if !ok {
				return 0
			}
			return get(s)
		}
	}

	f.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "sensors",
		Subsystem: "rsc",
		Name:      "pressure_pascals",
	}, latest(func(s env.Sample) float64 { return s.PressurePa }))

	f.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "sensors",
		Subsystem: "rsc",
		Name:      "temperature_degC",
	}, latest(func(s env.Sample) float64 { return s.Temperature }))

	f.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "sensors",
		Subsystem: "rsc",
		Name:      "sample_age_seconds",
	}, latest(func(s env.Sample) float64 { return now().Sub(s.Time).Seconds() }))

	f.NewCounterFunc(prometheus.CounterOpts{
		Namespace: "sensors",
		Subsystem: "rsc",
		Name:      "polls_total",
	}, func() float64 {
		polls, _ := src.Stats()
		return float64(polls)
	})

	f.NewCounterFunc(prometheus.CounterOpts{
		Namespace: "sensors",
		Subsystem: "rsc",
		Name:      "poll_errors_total",
	}, func() float64 {
		_, errs := src.Stats()
		return float64(errs)
	})
}

// serveMetrics exposes the gauges on addr/metrics. It blocks.
func serveMetrics(addr string, src sampleStats) error {
	reg := prometheus.NewRegistry()
	registerMetrics(reg, src, time.Now)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	log.Printf("metrics: listening on %s", addr)
	return http.ListenAndServe(addr, mux)
}
