// Package config loads server settings from an optional YAML file and the environment
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

const (
	DefaultPort              = 5000
	DefaultTempDir           = "temp"
	DefaultMaxUploadBytes    = 16 << 20
	DefaultMinPasswordLength = 4
	DefaultMaxPixels         = 89478485
	DefaultMinPSNR           = 40.0
	DefaultOutputTTLMinutes  = 60
)

type Config struct {
	Port              int      `yaml:"port"`
	AllowedOrigins    []string `yaml:"allowed_origins"`
	TempDir           string   `yaml:"temp_dir"`
	MaxUploadBytes    int64    `yaml:"max_upload_bytes"`
	MinPasswordLength int      `yaml:"min_password_length"`
	MaxPixels         int      `yaml:"max_pixels"`
	MinPSNR           float64  `yaml:"min_psnr"`
	OutputTTLMinutes  int      `yaml:"output_ttl_minutes"`
	LogLevel          string   `yaml:"log_level"`
}

// Load reads path if it exists, fills in defaults and applies PORT,
// STEGO_TEMP_DIR and STEGO_LOG_LEVEL from the environment.
func Load(path string) (Config, error) {
	var config Config

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return config, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &config); err != nil {
				return config, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	if config.Port == 0 {
		config.Port = DefaultPort
	}
	if len(config.AllowedOrigins) == 0 {
		config.AllowedOrigins = []string{"http://localhost:3000"}
	}
	if config.TempDir == "" {
		config.TempDir = DefaultTempDir
	}
	if config.MaxUploadBytes == 0 {
		config.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if config.MinPasswordLength == 0 {
		config.MinPasswordLength = DefaultMinPasswordLength
	}
	if config.MaxPixels == 0 {
		config.MaxPixels = DefaultMaxPixels
	}
	if config.MinPSNR == 0 {
		config.MinPSNR = DefaultMinPSNR
	}
	if config.OutputTTLMinutes == 0 {
		config.OutputTTLMinutes = DefaultOutputTTLMinutes
	}
	if config.LogLevel == "" {
		config.LogLevel = logrus.InfoLevel.String()
	}

	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return config, fmt.Errorf("invalid PORT %q: %w", port, err)
		}
		config.Port = p
	}
	if dir := os.Getenv("STEGO_TEMP_DIR"); dir != "" {
		config.TempDir = dir
	}
	if level := os.Getenv("STEGO_LOG_LEVEL"); level != "" {
		config.LogLevel = level
	}

	if config.OutputTTLMinutes < 0 || config.MaxPixels < 0 {
		return config, fmt.Errorf("output_ttl_minutes and max_pixels must be positive")
	}

	if _, err := logrus.ParseLevel(config.LogLevel); err != nil {
		return config, fmt.Errorf("invalid log level: %w", err)
	}

	return config, nil
}

// OutputTTL is how long encoded images stay downloadable.
func (c Config) OutputTTL() time.Duration {
	return time.Duration(c.OutputTTLMinutes) * time.Minute
}

// Level returns the parsed log level; Load has already validated it.
func (c Config) Level() logrus.Level {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}
