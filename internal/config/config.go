// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/relabs-tech/glove_computer/internal/motion"
)

// EnvPrefix lets any key be overridden from the environment, e.g.
// GLOVE_MQTT_BROKER=tcp://pi.local:1883.
const EnvPrefix = "GLOVE"

// Glove sources.
const (
	SourceSerial = "serial"
	SourceMQTT   = "mqtt"
	SourceMock   = "mock"
)

// Config holds all application configuration values.
type Config struct {
	// MQTT
	MQTTBroker            string
	MQTTClientIDProducer  string
	MQTTClientIDConsole   string
	MQTTClientIDWeb       string
	MQTTClientIDDisplay   string
	MQTTClientIDSimulator string
	MQTTEmbeddedBroker    bool   // run an in-process broker inside the producer
	MQTTEmbeddedAddr      string // listen address of the embedded broker

	// Topics
	TopicSamples string // binary glove frames (mqtt source, simulator)
	TopicStats   string // session updates, retained
	TopicCommand string // {"command":"reset"}

	// Glove link
	GloveSource         string // serial, mqtt or mock
	GloveSerialPort     string
	GloveBaudRate       int
	GloveAzOffsetG      float64
	GloveReconnectDelay int // milliseconds

	// Processing
	SampleInterval int    // milliseconds between polls of the mock glove, 0 disables pacing
	ForcePeakScope string // event or session
	HistoryLength  int

	// Web Server
	WebServerPort   int
	StatsStaleAfter int // milliseconds

	// Display
	DisplayI2CBus         string // empty selects the first bus
	DisplayI2CAddr        uint16
	DisplayUpdateInterval int // milliseconds

	LogLevel string
}

var defaults = map[string]any{
	"MQTT_BROKER":              "tcp://localhost:1883",
	"MQTT_CLIENT_ID_PRODUCER":  "glove-producer",
	"MQTT_CLIENT_ID_CONSOLE":   "glove-console",
	"MQTT_CLIENT_ID_WEB":       "glove-web",
	"MQTT_CLIENT_ID_DISPLAY":   "glove-display",
	"MQTT_CLIENT_ID_SIMULATOR": "glove-simulator",
	"MQTT_EMBEDDED_BROKER":     false,
	"MQTT_EMBEDDED_ADDR":       ":1883",
	"TOPIC_SAMPLES":            "glove/samples",
	"TOPIC_STATS":              "glove/stats",
	"TOPIC_COMMAND":            "glove/command",
	"GLOVE_SOURCE":             SourceSerial,
	"GLOVE_SERIAL_PORT":        "/dev/ttyUSB0",
	"GLOVE_BAUD_RATE":          115200,
	"GLOVE_AZ_OFFSET_G":        1.0,
	"GLOVE_RECONNECT_DELAY":    5000,
	"SAMPLE_INTERVAL":          100,
	"FORCE_PEAK_SCOPE":         "event",
	"HISTORY_LENGTH":           1000,
	"WEB_SERVER_PORT":          8080,
	"STATS_STALE_AFTER":        5000,
	"DISPLAY_I2C_BUS":          "",
	"DISPLAY_I2C_ADDR":         "0x3C",
	"DISPLAY_UPDATE_INTERVAL":  200,
	"LOG_LEVEL":                "info",
}

// Package-level singleton. InitGlobal sets it once, Get reads it.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Load reads a KEY=VALUE configuration file. Lines starting with # are
// comments; keys missing from the file take their defaults.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()
	return Parse(file)
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg, err := Parse(strings.NewReader(""))
	if err != nil {
		// The defaults table is static; failing here is a programming error.
		panic(err)
	}
	return cfg
}

// Parse reads configuration from r. Environment variables prefixed with
// EnvPrefix override both the file and the defaults.
func Parse(r io.Reader) (*Config, error) {
	v := viper.New()
	v.SetConfigType("env")
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config: %w", err)
	}

	// viper lower-cases keys; anything not in the defaults table is unknown.
	keys := v.AllKeys()
	sort.Strings(keys)
	cfg := &Config{}
	for _, key := range keys {
		name := strings.ToUpper(key)
		if _, ok := defaults[name]; !ok {
			return nil, fmt.Errorf("unknown config key: %q", name)
		}
		if err := cfg.setValue(name, v.Get(key)); err != nil {
			return nil, err
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key string, value any) error {
	var err error
	switch key {
	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker, err = stringValue(key, value)
	case "MQTT_CLIENT_ID_PRODUCER":
		c.MQTTClientIDProducer, err = stringValue(key, value)
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole, err = stringValue(key, value)
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb, err = stringValue(key, value)
	case "MQTT_CLIENT_ID_DISPLAY":
		c.MQTTClientIDDisplay, err = stringValue(key, value)
	case "MQTT_CLIENT_ID_SIMULATOR":
		c.MQTTClientIDSimulator, err = stringValue(key, value)
	case "MQTT_EMBEDDED_BROKER":
		c.MQTTEmbeddedBroker, err = cast.ToBoolE(value)
		if err != nil {
			err = fmt.Errorf("invalid %s %q: %w", key, fmt.Sprint(value), err)
		}
	case "MQTT_EMBEDDED_ADDR":
		c.MQTTEmbeddedAddr, err = stringValue(key, value)

	// Topics
	case "TOPIC_SAMPLES":
		c.TopicSamples, err = stringValue(key, value)
	case "TOPIC_STATS":
		c.TopicStats, err = stringValue(key, value)
	case "TOPIC_COMMAND":
		c.TopicCommand, err = stringValue(key, value)

	// Glove link
	case "GLOVE_SOURCE":
		c.GloveSource, err = stringValue(key, value)
		c.GloveSource = strings.ToLower(c.GloveSource)
	case "GLOVE_SERIAL_PORT":
		c.GloveSerialPort, err = stringValue(key, value)
	case "GLOVE_BAUD_RATE":
		c.GloveBaudRate, err = intValue(key, value)
	case "GLOVE_AZ_OFFSET_G":
		c.GloveAzOffsetG, err = cast.ToFloat64E(value)
		if err != nil {
			err = fmt.Errorf("invalid %s %q: %w", key, fmt.Sprint(value), err)
		}
	case "GLOVE_RECONNECT_DELAY":
		c.GloveReconnectDelay, err = intValue(key, value)

	// Processing
	case "SAMPLE_INTERVAL":
		c.SampleInterval, err = intValue(key, value)
	case "FORCE_PEAK_SCOPE":
		c.ForcePeakScope, err = stringValue(key, value)
		c.ForcePeakScope = strings.ToLower(c.ForcePeakScope)
	case "HISTORY_LENGTH":
		c.HistoryLength, err = intValue(key, value)

	// Web Server
	case "WEB_SERVER_PORT":
		c.WebServerPort, err = intValue(key, value)
	case "STATS_STALE_AFTER":
		c.StatsStaleAfter, err = intValue(key, value)

	// Display
	case "DISPLAY_I2C_BUS":
		c.DisplayI2CBus, err = stringValue(key, value)
	case "DISPLAY_I2C_ADDR":
		s, serr := stringValue(key, value)
		if serr != nil {
			return serr
		}
		addr, perr := strconv.ParseUint(s, 0, 16)
		if perr != nil {
			return fmt.Errorf("invalid DISPLAY_I2C_ADDR %q: %w", s, perr)
		}
		c.DisplayI2CAddr = uint16(addr)
	case "DISPLAY_UPDATE_INTERVAL":
		c.DisplayUpdateInterval, err = intValue(key, value)

	case "LOG_LEVEL":
		c.LogLevel, err = stringValue(key, value)

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}
	return err
}

func stringValue(key string, value any) (string, error) {
	s, err := cast.ToStringE(value)
	if err != nil {
		return "", fmt.Errorf("invalid %s %v: %w", key, value, err)
	}
	return strings.TrimSpace(s), nil
}

func intValue(key string, value any) (int, error) {
	if s, ok := value.(string); ok {
		value = strings.TrimSpace(s)
	}
	n, err := cast.ToIntE(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, fmt.Sprint(value), err)
	}
	return n, nil
}

// validate checks required fields and ranges.
func (c *Config) validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	if c.TopicSamples == "" || c.TopicStats == "" || c.TopicCommand == "" {
		return fmt.Errorf("TOPIC_SAMPLES, TOPIC_STATS and TOPIC_COMMAND are required")
	}
	switch c.GloveSource {
	case SourceSerial:
		if c.GloveSerialPort == "" {
			return fmt.Errorf("GLOVE_SERIAL_PORT is required when GLOVE_SOURCE=serial")
		}
		if c.GloveBaudRate <= 0 {
			return fmt.Errorf("GLOVE_BAUD_RATE must be positive, got %d", c.GloveBaudRate)
		}
	case SourceMQTT, SourceMock:
	default:
		return fmt.Errorf("GLOVE_SOURCE must be serial, mqtt or mock, got %q", c.GloveSource)
	}
	if c.GloveReconnectDelay <= 0 {
		return fmt.Errorf("GLOVE_RECONNECT_DELAY must be positive, got %d", c.GloveReconnectDelay)
	}
	if c.SampleInterval < 0 {
		return fmt.Errorf("SAMPLE_INTERVAL must be >= 0, got %d", c.SampleInterval)
	}
	if _, err := motion.ParsePeakScope(c.ForcePeakScope); err != nil {
		return fmt.Errorf("FORCE_PEAK_SCOPE: %w", err)
	}
	if c.HistoryLength <= 0 {
		return fmt.Errorf("HISTORY_LENGTH must be positive, got %d", c.HistoryLength)
	}
	if c.WebServerPort <= 0 || c.WebServerPort > 65535 {
		return fmt.Errorf("WEB_SERVER_PORT must be 1-65535, got %d", c.WebServerPort)
	}
	if c.StatsStaleAfter <= 0 {
		return fmt.Errorf("STATS_STALE_AFTER must be positive, got %d", c.StatsStaleAfter)
	}
	if c.DisplayUpdateInterval <= 0 {
		return fmt.Errorf("DISPLAY_UPDATE_INTERVAL must be positive, got %d", c.DisplayUpdateInterval)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// PeakScope is ForcePeakScope parsed. validate guarantees it succeeds.
func (c *Config) PeakScope() motion.PeakScope {
	scope, _ := motion.ParsePeakScope(c.ForcePeakScope)
	return scope
}

// SlogLevel parses LOG_LEVEL (debug, info, warn, error).
func (c *Config) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid LOG_LEVEL %q: %w", c.LogLevel, err)
	}
	return lvl, nil
}

// Millis converts one of the millisecond settings to a Duration.
func Millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// InitGlobal initializes the global configuration from file. Only the
// first call has any effect.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance, nil before InitGlobal.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
