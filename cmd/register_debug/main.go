// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"

	"github.com/relabs-tech/pressure_computer/internal/app"
	"github.com/relabs-tech/pressure_computer/internal/config"
	"github.com/relabs-tech/pressure_computer/internal/sensors"
)

func main() {
	configPath := flag.String("config", "pressure_config.txt", "Path to configuration file")
	flag.Parse()

	log.Println("starting RSC register debug tool (standalone)")

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := config.Get()

	log.Println("Initializing pressure manager...")
	mgr := sensors.GetPressureManager()
	if err := mgr.Init(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
	defer mgr.Close()

	if cal, scale, err := mgr.Calibration(); err == nil {
		log.Printf("RSC %s (%s), %g %s full scale, 1 %s = %g Pa",
			cal.ProductName, cal.SerialNumber, cal.PressureRange, cal.PressureUnit, cal.PressureUnit, scale)
	}

	http.HandleFunc("/ws", app.NewRegisterDebugHandler(mgr))

	// API endpoint for live pressure data
	http.HandleFunc("/api/pressure", app.HandlePressureData(mgr))

	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "web/register_debug.html")
	})

	addr := fmt.Sprintf(":%d", cfg.RegisterDebugPort)
	log.Printf("Register debug tool listening on %s", addr)
	log.Printf("Open http://localhost%s in your browser", addr)
	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
