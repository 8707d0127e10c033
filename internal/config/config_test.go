package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/relabs-tech/pressure_computer/internal/sensors/rsc"
	"periph.io/x/conn/v3/physic"
)

const minimal = `
# pressure computer
MQTT_BROKER=tcp://localhost:1883
RSC_SPI_DEVICE=/dev/spidev0.0
RSC_EEPROM_CS_PIN=GPIO8
RSC_ADC_CS_PIN=GPIO7
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "pressure_config.txt")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimal))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MQTTBroker != "tcp://localhost:1883" || cfg.RSCADCCSPin != "GPIO7" {
		t.Errorf("got %+v", cfg)
	}
	if cfg.RSCMode != rsc.NormalMode20Hz || cfg.RSCTempSRD != 0 {
		t.Errorf("mode %s srd %d", cfg.RSCMode, cfg.RSCTempSRD)
	}
	if cfg.RSCSPISpeedHz != 5000000 {
		t.Errorf("speed %d", cfg.RSCSPISpeedHz)
	}
	if cfg.TopicPressure != "pressure/rsc" || cfg.DisplayI2CAddr != 0x3C {
		t.Errorf("topic %q addr 0x%X", cfg.TopicPressure, cfg.DisplayI2CAddr)
	}
	if o := cfg.RSCOpts(); o.Speed != rsc.DefaultSpeed || o.Mode != rsc.NormalMode20Hz {
		t.Errorf("opts %+v", o)
	}
}

func TestLoadOverrides(t *testing.T) {
	body := minimal + `
RSC_MODE=fast_2000hz
RSC_TEMP_SRD = 9
RSC_SPI_SPEED_HZ=1000000
SAMPLE_INTERVAL=5
DISPLAY_I2C_ADDR=0x3D
METRICS_ADDR=:9100
RECORDER_DB_PATH=/var/lib/pressure.db
`
	cfg, err := Load(writeConfig(t, body))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.RSCMode != rsc.FastMode2000Hz || cfg.RSCTempSRD != 9 {
		t.Errorf("mode %s srd %d", cfg.RSCMode, cfg.RSCTempSRD)
	}
	if cfg.RSCOpts().Speed != physic.MegaHertz {
		t.Errorf("speed %s", cfg.RSCOpts().Speed)
	}
	if cfg.SampleInterval != 5 || cfg.DisplayI2CAddr != 0x3D {
		t.Errorf("interval %d addr 0x%X", cfg.SampleInterval, cfg.DisplayI2CAddr)
	}
	if cfg.MetricsAddr != ":9100" || cfg.RecorderDBPath != "/var/lib/pressure.db" {
		t.Errorf("metrics %q db %q", cfg.MetricsAddr, cfg.RecorderDBPath)
	}
}

func TestLoadErrors(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"missing broker", "RSC_SPI_DEVICE=x\nRSC_EEPROM_CS_PIN=a\nRSC_ADC_CS_PIN=b\n", "MQTT_BROKER is required"},
		{"missing pin", "MQTT_BROKER=b\nRSC_SPI_DEVICE=x\nRSC_EEPROM_CS_PIN=a\n", "RSC_ADC_CS_PIN is required"},
		{"same pins", "MQTT_BROKER=b\nRSC_SPI_DEVICE=x\nRSC_EEPROM_CS_PIN=a\nRSC_ADC_CS_PIN=a\n", "must differ"},
		{"no equals", minimal + "RSC_MODE\n", "invalid config line"},
		{"unknown key", minimal + "IMU_LEFT_CS_PIN=GPIO5\n", "unknown config key"},
		{"bad mode", minimal + "RSC_MODE=normal_21hz\n", "invalid RSC_MODE"},
		{"srd range", minimal + "RSC_TEMP_SRD=256\n", "must be 0-255"},
		{"speed range", minimal + "RSC_SPI_SPEED_HZ=8000000\n", "must be 10000-5000000"},
		{"interval", minimal + "SAMPLE_INTERVAL=0\n", "SAMPLE_INTERVAL must be positive"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.body))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Errorf("got %v, want %q", err, tc.want)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error")
	}
}
