package main

import (
	"flag"
	"log"

	"github.com/relabs-tech/pressure_computer/internal/app"
	"github.com/relabs-tech/pressure_computer/internal/config"
)

func main() {
	configPath := flag.String("config", "pressure_config.txt", "Path to configuration file")
	flag.Parse()

	log.Println("starting pressure-computer MQTT producer")

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunPressureProducer(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
