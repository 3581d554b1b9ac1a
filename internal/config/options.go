package config

import (
	"log/slog"
	"time"
)

// DefaultCallTimeout is how long a call waits for a response before failing.
const DefaultCallTimeout = 30 * time.Second

// Options configures the behavior of the sidecar supervisor.
type Options struct {
	// Logger is the slog logger for debug output.
	// If nil, logging is disabled (silent operation).
	Logger *slog.Logger

	// WorkerPath is an explicit path to the worker executable.
	// If empty, the worker is discovered via the environment and PATH.
	WorkerPath string

	// WorkerArgs are extra arguments passed to the worker executable.
	WorkerArgs []string

	// Cwd is the working directory for the worker process.
	// If empty, the current working directory is used.
	Cwd string

	// Env is extra environment variables for the worker process, in
	// "KEY=value" form. Appended to the current process environment.
	Env []string

	// CallTimeout is the per-call response timeout.
	// If zero, DefaultCallTimeout is used.
	CallTimeout time.Duration

	// Stderr receives each line of the worker's stderr verbatim.
	// If nil, stderr lines are only logged.
	Stderr func(line string)

	// Transport overrides the default subprocess transport.
	// Used for testing with mock transports.
	Transport Transport
}

// EffectiveCallTimeout returns the configured call timeout or the default.
func (o *Options) EffectiveCallTimeout() time.Duration {
	if o != nil && o.CallTimeout > 0 {
		return o.CallTimeout
	}

	return DefaultCallTimeout
}
