package app

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/relabs-tech/pressure_computer/internal/config"
	"github.com/relabs-tech/pressure_computer/internal/env"
	"github.com/relabs-tech/pressure_computer/internal/sensors"
	"github.com/relabs-tech/pressure_computer/internal/store"
)

type sampleReader interface {
	Read() (env.Sample, error)
}

type sampleRecorder interface {
	Add(env.Sample) error
}

// producer publishes one reading per tick.
type producer struct {
	src     sampleReader
	publish func(payload []byte) error
	rec     sampleRecorder // nil when recording is disabled

	published, failed int
	last              env.Sample
}

func (p *producer) step() error {
	s, err := p.src.Read()
	if err != nil {
		p.failed++
		return err
	}
	payload, err := json.Marshal(s)
	if err != nil {
		p.failed++
		return fmt.Errorf("json marshal error: %w", err)
	}
	if err := p.publish(payload); err != nil {
		p.failed++
		return fmt.Errorf("MQTT publish error: %w", err)
	}
	p.published++
	p.last = s
	if p.rec != nil {
		if err := p.rec.Add(s); err != nil {
			// Publishing succeeded; a recorder failure is only logged.
			log.Printf("producer: recorder error: %v", err)
		}
	}
	return nil
}

// summary logs what happened since the previous summary.
func (p *producer) summary(t time.Time) {
	log.Printf("%s tick: published=%d failed=%d | P=%.1f Pa (%.4f %s) T=%.2f°C",
		t.Format(time.RFC3339), p.published, p.failed,
		p.last.PressurePa, p.last.Pressure, p.last.Unit, p.last.Temperature)
	p.published, p.failed = 0, 0
}

func RunPressureProducer() error {
	log.Println("starting pressure-computer producer")

	cfg := config.Get()

	mgr := sensors.GetPressureManager()
	if err := mgr.Init(); err != nil {
		return fmt.Errorf("failed to initialize pressure sensor: %w", err)
	}
	defer mgr.Close()

	var rec sampleRecorder
	if cfg.RecorderDBPath != "" {
		r, err := store.Open(cfg.RecorderDBPath)
		if err != nil {
			return fmt.Errorf("failed to open recorder: %w", err)
		}
		defer r.Close()
		rec = r
		log.Printf("producer: recording to %s", cfg.RecorderDBPath)
	}

	if cfg.MetricsAddr != "" {
		go func() {
			if err := serveMetrics(cfg.MetricsAddr, mgr); err != nil {
				log.Printf("metrics: %v", err)
			}
		}()
	}

	// --- connect to MQTT ---
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDProducer)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("MQTT connect error: %w", token.Error())
	}
	defer client.Disconnect(250)

	log.Println("connected to MQTT, starting publish loop")

	p := &producer{
		src: mgr,
		publish: func(payload []byte) error {
			if token := client.Publish(cfg.TopicPressure, 0, true, payload); token.Wait() && token.Error() != nil {
				return token.Error()
			}
			return nil
		},
		rec: rec,
	}

	ticker := time.NewTicker(config.Every(cfg.SampleInterval))
	defer ticker.Stop()
	logEvery := config.Every(cfg.ConsoleLogInterval)
	lastLog := time.Now()

	for t := range ticker.C {
		if err := p.step(); err != nil {
			log.Printf("producer: %v", err)
		}
		if t.Sub(lastLog) >= logEvery {
			p.summary(t)
			lastLog = t
		}
	}
	return nil
}
