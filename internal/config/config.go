package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/relabs-tech/pressure_computer/internal/sensors/rsc"
	"periph.io/x/conn/v3/physic"
)

// Config holds all application configuration values.
type Config struct {
	// MQTT
	MQTTBroker           string
	MQTTClientIDProducer string
	MQTTClientIDConsole  string
	MQTTClientIDWeb      string
	MQTTClientIDDisplay  string

	// Topics
	TopicPressure string

	// RSC Hardware
	RSCSPIDevice   string
	RSCEEPROMCSPin string
	RSCADCCSPin    string
	RSCSPISpeedHz  int64

	// RSC Conversion
	RSCMode    rsc.Mode
	RSCTempSRD byte // pressure readings per temperature reading, minus one

	// Timing
	SampleInterval     int // milliseconds
	ConsoleLogInterval int // milliseconds

	// Servers
	WebServerPort     int
	RegisterDebugPort int
	MetricsAddr       string // empty disables the exporter

	// Recorder
	RecorderDBPath string // empty disables recording

	// Display
	DisplayI2CBus         string
	DisplayI2CAddr        uint16
	DisplayUpdateInterval int // milliseconds
}

// Package-level unexported variables for singleton pattern:
//   - globalConfig: only reachable through InitGlobal and Get.
//   - configOnce: ensures InitGlobal() only runs once, even if called multiple times.
//   - configMu: write lock for initialization, read lock for Get().
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Default returns a Config with every optional value set.
func Default() *Config {
	return &Config{
		MQTTClientIDProducer:  "pressure-producer",
		MQTTClientIDConsole:   "pressure-console",
		MQTTClientIDWeb:       "pressure-web",
		MQTTClientIDDisplay:   "pressure-display",
		TopicPressure:         "pressure/rsc",
		RSCSPISpeedHz:         int64(rsc.DefaultSpeed / physic.Hertz),
		RSCMode:               rsc.NormalMode20Hz,
		SampleInterval:        50,
		ConsoleLogInterval:    1000,
		WebServerPort:         8080,
		RegisterDebugPort:     8081,
		DisplayI2CAddr:        0x3C,
		DisplayUpdateInterval: 500,
	}
}

// Load reads the configuration file and returns a Config struct.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := Default()
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_PRODUCER":
		c.MQTTClientIDProducer = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value
	case "MQTT_CLIENT_ID_DISPLAY":
		c.MQTTClientIDDisplay = value

	// Topics
	case "TOPIC_PRESSURE":
		c.TopicPressure = value

	// RSC Hardware
	case "RSC_SPI_DEVICE":
		c.RSCSPIDevice = value
	case "RSC_EEPROM_CS_PIN":
		c.RSCEEPROMCSPin = value
	case "RSC_ADC_CS_PIN":
		c.RSCADCCSPin = value
	case "RSC_SPI_SPEED_HZ":
		hz, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid RSC_SPI_SPEED_HZ %q: %w", value, err)
		}
		// The EEPROM tops out at 5 MHz.
		if hz < 10000 || hz > 5000000 {
			return fmt.Errorf("RSC_SPI_SPEED_HZ must be 10000-5000000, got %d", hz)
		}
		c.RSCSPISpeedHz = hz

	// RSC Conversion
	case "RSC_MODE":
		m, err := rsc.ParseMode(value)
		if err != nil {
			return fmt.Errorf("invalid RSC_MODE: %w", err)
		}
		c.RSCMode = m
	case "RSC_TEMP_SRD":
		val, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid RSC_TEMP_SRD %q: %w", value, err)
		}
		if val < 0 || val > 255 {
			return fmt.Errorf("RSC_TEMP_SRD must be 0-255, got %d", val)
		}
		c.RSCTempSRD = byte(val)

	// Timing
	case "SAMPLE_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid SAMPLE_INTERVAL %q: %w", value, err)
		}
		c.SampleInterval = interval
	case "CONSOLE_LOG_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid CONSOLE_LOG_INTERVAL %q: %w", value, err)
		}
		c.ConsoleLogInterval = interval

	// Servers
	case "WEB_SERVER_PORT":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid WEB_SERVER_PORT %q: %w", value, err)
		}
		c.WebServerPort = port
	case "REGISTER_DEBUG_PORT":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid REGISTER_DEBUG_PORT %q: %w", value, err)
		}
		c.RegisterDebugPort = port
	case "METRICS_ADDR":
		c.MetricsAddr = value

	// Recorder
	case "RECORDER_DB_PATH":
		c.RecorderDBPath = value

	// Display
	case "DISPLAY_I2C_BUS":
		c.DisplayI2CBus = value
	case "DISPLAY_I2C_ADDR":
		addr, err := strconv.ParseUint(value, 0, 16)
		if err != nil {
			return fmt.Errorf("invalid DISPLAY_I2C_ADDR %q: %w", value, err)
		}
		c.DisplayI2CAddr = uint16(addr)
	case "DISPLAY_UPDATE_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid DISPLAY_UPDATE_INTERVAL %q: %w", value, err)
		}
		c.DisplayUpdateInterval = interval

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

// validate checks that all required fields are set.
func (c *Config) validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	if c.RSCSPIDevice == "" {
		return fmt.Errorf("RSC_SPI_DEVICE is required")
	}
	if c.RSCEEPROMCSPin == "" {
		return fmt.Errorf("RSC_EEPROM_CS_PIN is required")
	}
	if c.RSCADCCSPin == "" {
		return fmt.Errorf("RSC_ADC_CS_PIN is required")
	}
	if c.RSCEEPROMCSPin == c.RSCADCCSPin {
		return fmt.Errorf("RSC_EEPROM_CS_PIN and RSC_ADC_CS_PIN must differ, both are %q", c.RSCADCCSPin)
	}
	if c.SampleInterval <= 0 {
		return fmt.Errorf("SAMPLE_INTERVAL must be positive, got %d", c.SampleInterval)
	}
	if c.ConsoleLogInterval <= 0 {
		return fmt.Errorf("CONSOLE_LOG_INTERVAL must be positive, got %d", c.ConsoleLogInterval)
	}
	return nil
}

// RSCOpts returns the driver options described by the configuration.
func (c *Config) RSCOpts() *rsc.Opts {
	return &rsc.Opts{
		Mode:    c.RSCMode,
		TempSRD: c.RSCTempSRD,
		Speed:   physic.Frequency(c.RSCSPISpeedHz) * physic.Hertz,
	}
}

// Every converts a millisecond setting to a time.Duration.
func Every(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// InitGlobal initializes the global configuration from file.
// Uses sync.Once to ensure this only runs once, even if called multiple times.
// This is the only function that can set globalConfig.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
