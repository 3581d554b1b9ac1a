package sidecar

import "github.com/botwright/sidecar/internal/config"

// Transport defines the interface for worker process communication.
// Implement this to provide custom transports for testing, mocking,
// or alternative communication methods.
//
// The default implementation is WorkerTransport which spawns a subprocess.
// Custom transports can be injected via WithTransport.
type Transport = config.Transport
