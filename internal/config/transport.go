// Package config provides configuration types for the sidecar supervisor.
package config

import "context"

// Transport defines the interface for worker process communication.
// Implement this to provide custom transports for testing, mocking,
// or alternative communication methods.
//
// The default implementation is WorkerTransport which spawns a subprocess.
// Custom transports can be injected via Options.Transport.
type Transport interface {
	// Start initializes the transport and prepares it for communication.
	// This is called before any messages are sent or received.
	Start(ctx context.Context) error

	// ReadMessages returns channels for receiving messages and errors.
	// The message channel yields parsed JSON objects from the worker's stdout.
	// The error channel yields any errors that occur during reading; a
	// *WorkerJSONDecodeError is recoverable, anything else is fatal.
	// Both channels are closed when reading completes.
	//
	// Calling ReadMessages also arranges for the worker's stderr to be
	// drained line by line, so no output is dropped between spawn and the
	// first call.
	ReadMessages(ctx context.Context) (<-chan map[string]any, <-chan error)

	// SendMessage sends one JSON line to the worker's stdin.
	// The data should be a complete JSON message (newline is appended if
	// missing). This method must be safe for concurrent use; writes from
	// concurrent callers never interleave.
	SendMessage(ctx context.Context, data []byte) error

	// Close terminates the transport and releases resources.
	// It's safe to call Close multiple times.
	Close() error

	// IsReady returns true if the transport is ready for communication.
	IsReady() bool
}
