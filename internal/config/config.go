// Package config provides configuration loading for the stegd HTTP service.
//
// Configuration is loaded from a single YAML file named by:
//   - STEG_CONFIG environment variable, or
//   - --config flag passed to the command
//
// Environment variables never override values inside the file. The only
// expansion performed is ${VAR} substitution in static_dir.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable Load reads the config path from.
const EnvVar = "STEG_CONFIG"

// Config is the configuration of the HTTP service.
type Config struct {
	// ListenAddr is the TCP address the service listens on.
	// Default: :8080
	ListenAddr string `yaml:"listen_addr"`

	// StaticDir holds index.html and the front-end assets served under /.
	// Default: static
	StaticDir string `yaml:"static_dir"`

	// MaxUploadBytes caps the size of an uploaded image.
	// Default: 10 MiB
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`

	// MaxImagePixels caps width*height as declared by an uploaded image's header,
	// checked before the pixels are decoded.
	// Default: 89478485
	MaxImagePixels int64 `yaml:"max_image_pixels"`

	// MaxPayloadBytes caps the UTF-8 length of text accepted by /embed.
	// This is an application limit, separate from image capacity.
	// Default: 3500
	MaxPayloadBytes int `yaml:"max_payload_bytes"`

	// AllowedExtensions lists the accepted upload file extensions, without dots.
	AllowedExtensions []string `yaml:"allowed_extensions"`

	// LogLevel is one of debug, info, warn, error.
	// Default: info
	LogLevel string `yaml:"log_level"`

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 5s
	ShutdownTimeout string `yaml:"shutdown_timeout"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		ListenAddr:        ":8080",
		StaticDir:         "static",
		MaxUploadBytes:    10 * 1024 * 1024,
		MaxImagePixels:    89478485,
		MaxPayloadBytes:   3500,
		AllowedExtensions: []string{"png", "jpg", "jpeg", "gif", "bmp", "webp"},
		LogLevel:          "info",
		ShutdownTimeout:   "5s",
	}
}

// Load loads configuration from the file named by STEG_CONFIG.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvVar)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your stegd.yaml config file, or use --config flag", EnvVar)
	}

	return LoadFile(configPath)
}

// LoadFile loads configuration from the file at path, on top of Default().
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	cfg.StaticDir = os.ExpandEnv(cfg.StaticDir)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that every field holds a usable value.
func (c *Config) Validate() error {
	var errs []error

	if c.ListenAddr == "" {
		errs = append(errs, errors.New("listen_addr is required"))
	}
	if c.StaticDir == "" {
		errs = append(errs, errors.New("static_dir is required"))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, fmt.Errorf("max_upload_bytes must be positive, got %d", c.MaxUploadBytes))
	}
	if c.MaxImagePixels <= 0 {
		errs = append(errs, fmt.Errorf("max_image_pixels must be positive, got %d", c.MaxImagePixels))
	}
	if c.MaxPayloadBytes <= 0 {
		errs = append(errs, fmt.Errorf("max_payload_bytes must be positive, got %d", c.MaxPayloadBytes))
	}
	if len(c.AllowedExtensions) == 0 {
		errs = append(errs, errors.New("allowed_extensions must not be empty"))
	}
	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.ShutdownDuration(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// SlogLevel parses LogLevel.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log_level: %w", err)
	}
	return level, nil
}

// ShutdownDuration parses ShutdownTimeout.
func (c *Config) ShutdownDuration() (time.Duration, error) {
	d, err := time.ParseDuration(c.ShutdownTimeout)
	if err != nil {
		return 0, fmt.Errorf("shutdown_timeout: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("shutdown_timeout must not be negative, got %s", d)
	}
	return d, nil
}

// AllowedExtension reports whether filename has one of the allowed extensions, ignoring case.
func (c *Config) AllowedExtension(filename string) bool {
	i := strings.LastIndexByte(filename, '.')
	if i < 0 {
		return false
	}
	ext := strings.ToLower(filename[i+1:])
	for _, allowed := range c.AllowedExtensions {
		if strings.ToLower(allowed) == ext {
			return true
		}
	}
	return false
}
