// Package config loads the analyzer's init-time constants from a TOML
// file via viper, falling back to a documented default set if none is
// found.
package config

import (
	"github.com/spf13/viper"
)

// TransportKind selects which byte-stream glue cmd/sump-server wires up.
type TransportKind string

const (
	TransportSerial TransportKind = "serial"
	TransportTCP    TransportKind = "tcp"
)

// Analyzer mirrors analyzer.BeginParams plus the engine-variant and
// pin-source selection that live outside the core, in entrypoint config.
// Transport settings are in Transport.
type Analyzer struct {
	StartPin        int    `mapstructure:"start_pin"`
	PinCount        int    `mapstructure:"pin_count"`
	WordBits        int    `mapstructure:"word_bits"`
	MaxCaptureSize  int    `mapstructure:"max_capture_size"`
	MaxSupportedHz  uint32 `mapstructure:"max_supported_hz"`
	DeviceID        string `mapstructure:"device_id"`
	DeviceDesc      string `mapstructure:"device_description"`
	FirmwareVersion string `mapstructure:"firmware_version"`
	Variant         string `mapstructure:"variant"`    // "software" or "dma"
	PinSource       string `mapstructure:"pin_source"` // "sim" or "gpio"
	// GPIORegAddr is the physical address of the GPIO input register,
	// used only when PinSource is "gpio".
	GPIORegAddr int64 `mapstructure:"gpio_reg_addr"`
}

// Transport selects and configures the byte-stream glue.
type Transport struct {
	Kind TransportKind `mapstructure:"kind"`
	// Device is the serial port path (e.g. /dev/ttyACM0) when Kind is serial.
	Device string `mapstructure:"device"`
	Baud   int    `mapstructure:"baud"`
	// Addr is the host:port cmd/sump-server dials when Kind is tcp.
	Addr string `mapstructure:"addr"`
}

// Config is the top-level, viper-unmarshaled configuration document.
type Config struct {
	Analyzer  Analyzer  `mapstructure:"analyzer"`
	Transport Transport `mapstructure:"transport"`
}

// Default returns the sane built-in configuration used when no config
// file is found: these are not guaranteed to be correct for any
// particular board, but they are enough to bring a device up.
func Default() Config {
	return Config{
		Analyzer: Analyzer{
			StartPin:        0,
			PinCount:        8,
			WordBits:        8,
			MaxCaptureSize:  4096,
			MaxSupportedHz:  1_000_000,
			DeviceID:        "1ALS",
			DeviceDesc:      "WARNING: using default config, logicanalyzer.toml not found",
			FirmwareVersion: "0.1.0",
			Variant:         "software",
			PinSource:       "sim",
		},
		Transport: Transport{
			Kind:   TransportSerial,
			Device: "/dev/ttyACM0",
			Baud:   115200,
		},
	}
}

// Load reads logicanalyzer.toml from /opt (the board's SD card root) and
// then the working directory, for convenience during development. It
// returns the default configuration, unmodified, if no file was found.
func Load() (Config, bool) {
	viper.SetConfigName("logicanalyzer")
	viper.SetConfigType("toml")
	viper.AddConfigPath("/opt")
	viper.AddConfigPath(".")

	cfg := Default()
	if err := viper.ReadInConfig(); err != nil {
		return cfg, false
	}
	if err := viper.Unmarshal(&cfg); err != nil {
		return Default(), false
	}
	return cfg, true
}
