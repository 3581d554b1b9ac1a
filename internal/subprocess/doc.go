// Package subprocess provides the subprocess-based transport for the worker.
//
// This package implements the Transport interface by spawning the worker as
// a child process and communicating via stdin/stdout. It handles process
// lifecycle management, line framing, stderr forwarding, and error handling.
package subprocess
