package app

import (
	"encoding/json"
	"fmt"
	"image"
	"log"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/pressure_computer/internal/config"
	"github.com/relabs-tech/pressure_computer/internal/env"
)

// A sample older than this is shown as stale.
const staleAfter = 5 * time.Second

// DisplayData holds the latest data for display
type DisplayData struct {
	mu sync.RWMutex

	sample     env.Sample
	haveSample bool
	received   time.Time
}

// fixedAddrBus sends every transfer to addr. The ssd1306 driver always
// addresses 0x3C; panels strapped to 0x3D need the redirect.
type fixedAddrBus struct {
	i2c.Bus
	addr uint16
}

func (b *fixedAddrBus) Tx(_ uint16, w, r []byte) error {
	return b.Bus.Tx(b.addr, w, r)
}

func RunDisplay() error {
	cfg := config.Get()

	// Initialize periph
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("failed to initialize periph: %w", err)
	}

	// Open I2C bus
	bus, err := i2creg.Open(cfg.DisplayI2CBus)
	if err != nil {
		return fmt.Errorf("failed to open I2C bus: %w", err)
	}
	defer bus.Close()

	dev, err := ssd1306.NewI2C(&fixedAddrBus{Bus: bus, addr: cfg.DisplayI2CAddr}, &ssd1306.DefaultOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize display: %w", err)
	}
	log.Printf("display: initialized at 0x%02X", cfg.DisplayI2CAddr)

	if err := dev.Draw(dev.Bounds(), renderLines("RSC Pressure", "Waiting..."), image.Point{}); err != nil {
		log.Printf("display: error showing splash: %v", err)
	}

	data := &DisplayData{}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDDisplay)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("display: connected to MQTT broker at %s", cfg.MQTTBroker)

	token := client.Subscribe(cfg.TopicPressure, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var s env.Sample
		if err := json.Unmarshal(msg.Payload(), &s); err != nil {
			log.Printf("display: pressure unmarshal error: %v", err)
			return
		}
		data.mu.Lock()
		data.sample = s
		data.haveSample = true
		data.received = time.Now()
		data.mu.Unlock()
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("display: subscribed to %s", cfg.TopicPressure)

	ticker := time.NewTicker(config.Every(cfg.DisplayUpdateInterval))
	defer ticker.Stop()

	log.Println("display: starting update loop")

	for t := range ticker.C {
		data.mu.RLock()
		s, have, received := data.sample, data.haveSample, data.received
		data.mu.RUnlock()

		img := renderLines(pressureLines(s, have, t.Sub(received))...)
		if err := dev.Draw(dev.Bounds(), img, image.Point{}); err != nil {
			log.Printf("display: error updating display: %v", err)
		}
	}

	return nil
}

// pressureLines formats a sample for the 128x64 panel, at most 4 lines of
// 18 characters.
func pressureLines(s env.Sample, have bool, age time.Duration) []string {
	if !have {
		return []string{"RSC Pressure", "Waiting..."}
	}
	var p string
	switch {
	case s.PressurePa >= 100000 || s.PressurePa <= -100000:
		p = fmt.Sprintf("P:%9.3f kPa", s.PressurePa/1000)
	default:
		p = fmt.Sprintf("P:%9.1f Pa", s.PressurePa)
	}
	lines := []string{
		p,
		fmt.Sprintf("  %9.4f %s", s.Pressure, s.Unit),
		fmt.Sprintf("T:%6.2f C", s.Temperature),
	}
	if age > staleAfter {
		lines = append(lines, fmt.Sprintf("STALE %ds", int(age.Seconds())))
	} else {
		lines = append(lines, s.Source)
	}
	return lines
}

func renderLines(lines ...string) *image1bit.VerticalLSB {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, 128, 64))

	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}
	for i, l := range lines {
		if i == 4 {
			break
		}
		drawer.Dot = fixed.P(0, 13*(i+1))
		drawer.DrawString(l)
	}
	return img
}
