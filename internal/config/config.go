package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Config is the complete daemon configuration.
type Config struct {
	Voice   VoiceConfig   `yaml:"voice"`
	Chat    ChatConfig    `yaml:"chat"`
	Diag    DiagConfig    `yaml:"diag"`
	Logging LoggingConfig `yaml:"logging"`
}

// VoiceConfig controls the UDP voice engine.
type VoiceConfig struct {
	BindAddr        string  `yaml:"bind_addr"`
	Target          string  `yaml:"target"`
	InputDevice     string  `yaml:"input_device"`
	OutputDevice    string  `yaml:"output_device"`
	SampleRate      float64 `yaml:"sample_rate"`       // 0 = device default
	Channels        int     `yaml:"channels"`          // 0 = mono
	FramesPerBuffer int     `yaml:"frames_per_buffer"` // 0 = engine default
}

// ChatConfig holds the optional Matrix text-chat settings.
type ChatConfig struct {
	Homeserver string `yaml:"homeserver"`
	User       string `yaml:"user"`
	Room       string `yaml:"room"`
}

// DiagConfig controls the local diagnostics HTTP listener.
type DiagConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Voice: VoiceConfig{
			BindAddr:        "0.0.0.0:0",
			Channels:        1,
			FramesPerBuffer: 512,
		},
		Diag: DiagConfig{
			Enabled: true,
			Addr:    "127.0.0.1:8642",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads the config file at path, or the platform default path when path
// is empty. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Voice.Validate(); err != nil {
		return fmt.Errorf("voice config: %w", err)
	}

	if err := c.Diag.Validate(); err != nil {
		return fmt.Errorf("diag config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// Validate validates voice configuration
func (v *VoiceConfig) Validate() error {
	if v.BindAddr == "" {
		return fmt.Errorf("bind_addr cannot be empty")
	}

	if v.Target != "" {
		if _, _, err := net.SplitHostPort(v.Target); err != nil {
			return fmt.Errorf("target must be host:port, got %q: %w", v.Target, err)
		}
	}

	if v.SampleRate < 0 {
		return fmt.Errorf("sample_rate cannot be negative, got %f", v.SampleRate)
	}

	if v.Channels < 0 || v.Channels > 32 {
		return fmt.Errorf("channels must be between 0 and 32, got %d", v.Channels)
	}

	if v.FramesPerBuffer < 0 || v.FramesPerBuffer > 65536 {
		return fmt.Errorf("frames_per_buffer must be between 0 and 65536, got %d", v.FramesPerBuffer)
	}

	return nil
}

// Validate validates diagnostics configuration
func (d *DiagConfig) Validate() error {
	if d.Enabled && d.Addr == "" {
		return fmt.Errorf("addr cannot be empty when diagnostics are enabled")
	}

	return nil
}

// Validate validates logging configuration
func (l *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"trace": true, "debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[l.Level] {
		return fmt.Errorf("level must be one of [trace, debug, info, warn, error], got %q", l.Level)
	}

	return nil
}

// Save writes the config to path, or the platform default path when path is
// empty.
func (c *Config) Save(path string) error {
	if path == "" {
		path = DefaultPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultPath returns the platform-specific config file path
func DefaultPath() string {
	var base string

	switch runtime.GOOS {
	case "darwin":
		base = os.Getenv("HOME") + "/Library/Application Support"
	case "windows":
		base = os.Getenv("APPDATA")
	default: // linux
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			base = xdg
		} else {
			base = os.Getenv("HOME") + "/.config"
		}
	}

	return filepath.Join(base, "gamechat", "config.yaml")
}
