package sidecar

import (
	"log/slog"
	"time"

	"github.com/botwright/sidecar/internal/config"
)

// Options configures the supervisor. Use the functional options below; the
// underlying struct lives in internal/config.
type Options = config.Options

// Option configures Options using the functional options pattern.
type Option func(*Options)

// applyOptions applies functional options to an Options struct.
func applyOptions(opts []Option) *Options {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}

	return options
}

// WithLogger sets the logger for debug output.
// If not set, logging is disabled (silent operation).
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithWorkerPath sets an explicit path to the worker executable,
// skipping discovery.
func WithWorkerPath(path string) Option {
	return func(o *Options) {
		o.WorkerPath = path
	}
}

// WithWorkerArgs sets extra arguments passed to the worker executable.
func WithWorkerArgs(args ...string) Option {
	return func(o *Options) {
		o.WorkerArgs = args
	}
}

// WithCwd sets the working directory for the worker process.
func WithCwd(cwd string) Option {
	return func(o *Options) {
		o.Cwd = cwd
	}
}

// WithEnv appends environment variables ("KEY=value") for the worker process.
func WithEnv(env ...string) Option {
	return func(o *Options) {
		o.Env = env
	}
}

// WithCallTimeout overrides the per-call response timeout (default 30s).
func WithCallTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		o.CallTimeout = timeout
	}
}

// WithStderr sets a callback receiving each line of the worker's stderr.
func WithStderr(callback func(line string)) Option {
	return func(o *Options) {
		o.Stderr = callback
	}
}

// WithTransport overrides the default subprocess transport.
// Used for testing with mock transports.
func WithTransport(transport Transport) Option {
	return func(o *Options) {
		o.Transport = transport
	}
}
