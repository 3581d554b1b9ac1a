package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// WorkerConfig defines how the worker process is launched.
type WorkerConfig struct {
	Path string   `toml:"path"`
	Args []string `toml:"args"`
	Cwd  string   `toml:"cwd"`
}

// LoggingConfig defines basic logging knobs for the host binary.
type LoggingConfig struct {
	Level string `toml:"level"`
}

// FileConfig aggregates host binary configuration loaded from a TOML file.
type FileConfig struct {
	Worker             WorkerConfig  `toml:"worker"`
	CallTimeoutSeconds int           `toml:"callTimeoutSeconds"`
	Events             []string      `toml:"events"`
	Logging            LoggingConfig `toml:"logging"`
}

// LoadFile reads host configuration from a TOML file at path.
func LoadFile(path string) (*FileConfig, error) {
	var cfg FileConfig

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (cfg *FileConfig) validate() error {
	if cfg.CallTimeoutSeconds < 0 {
		return fmt.Errorf("callTimeoutSeconds must not be negative")
	}

	switch cfg.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown logging level %q", cfg.Logging.Level)
	}

	return nil
}

// CallTimeout returns the configured per-call timeout or the default.
func (cfg *FileConfig) CallTimeout() time.Duration {
	if cfg.CallTimeoutSeconds > 0 {
		return time.Duration(cfg.CallTimeoutSeconds) * time.Second
	}

	return DefaultCallTimeout
}

// LogLevel maps the configured level string to a slog level.
func (cfg *FileConfig) LogLevel() slog.Level {
	switch cfg.Logging.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
