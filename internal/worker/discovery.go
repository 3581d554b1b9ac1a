package worker

import (
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/botwright/sidecar/internal/errors"
)

const (
	// BinaryName is the name of the worker executable searched for in PATH.
	BinaryName = "botwright-worker"

	// PathEnvVar overrides discovery with an explicit worker path.
	PathEnvVar = "BOTWRIGHT_WORKER"
)

// Config holds configuration for worker discovery.
type Config struct {
	// WorkerPath is an explicit worker path that skips all searching.
	WorkerPath string

	// Logger is an optional logger for discovery operations.
	// If nil, a no-op logger is used.
	Logger *slog.Logger
}

// Discoverer locates the worker executable.
type Discoverer interface {
	// Discover returns the path to the worker executable or a
	// *errors.WorkerNotFoundError listing everywhere it looked.
	Discover() (string, error)
}

// discoverer implements the Discoverer interface.
type discoverer struct {
	cfg *Config
	log *slog.Logger
}

// Compile-time verification that discoverer implements Discoverer.
var _ Discoverer = (*discoverer)(nil)

// NewDiscoverer creates a new worker discoverer with the given configuration.
func NewDiscoverer(cfg *Config) Discoverer {
	if cfg == nil {
		cfg = &Config{}
	}

	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError + 1}))
	}

	return &discoverer{
		cfg: cfg,
		log: log,
	}
}

// Discover locates the worker executable.
func (d *discoverer) Discover() (string, error) {
	// If explicit path provided, use it and only it
	if d.cfg.WorkerPath != "" {
		d.log.Debug("Using explicit worker path", "worker_path", d.cfg.WorkerPath)

		if _, err := os.Stat(d.cfg.WorkerPath); err == nil {
			return d.cfg.WorkerPath, nil
		}

		d.log.Debug("Explicit worker path not found", "worker_path", d.cfg.WorkerPath)

		return "", &errors.WorkerNotFoundError{SearchedPaths: []string{d.cfg.WorkerPath}}
	}

	searchedPaths := make([]string, 0, 5)

	// Environment override
	if envPath := os.Getenv(PathEnvVar); envPath != "" {
		d.log.Debug("Checking worker path from environment", "path", envPath)

		if _, err := os.Stat(envPath); err == nil {
			return envPath, nil
		}

		searchedPaths = append(searchedPaths, envPath)
	}

	// Search in PATH
	d.log.Debug("Searching for worker in PATH", "binary", BinaryName)

	if path, err := exec.LookPath(BinaryName); err == nil {
		d.log.Debug("Found worker in PATH", "path", path)

		return path, nil
	}

	searchedPaths = append(searchedPaths, "$PATH")

	// Check common locations
	commonPaths := []string{
		filepath.Join("/usr/local/bin", BinaryName),
		filepath.Join("/usr/bin", BinaryName),
	}

	if homeDir, err := os.UserHomeDir(); err == nil {
		commonPaths = append(commonPaths, filepath.Join(homeDir, ".local/bin", BinaryName))
	}

	for _, path := range commonPaths {
		searchedPaths = append(searchedPaths, path)
		d.log.Debug("Checking common path", "path", path)

		if _, err := os.Stat(path); err == nil {
			d.log.Debug("Found worker at common path", "path", path)

			return path, nil
		}
	}

	d.log.Warn("Worker executable not found in any searched paths", "searched_paths", searchedPaths)

	return "", &errors.WorkerNotFoundError{SearchedPaths: searchedPaths}
}
