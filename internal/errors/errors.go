package errors

import (
	"errors"
	"fmt"
)

// SidecarError is the base interface for all errors produced by this module.
type SidecarError interface {
	error
	IsSidecarError() bool
}

// Compile-time verification that all error types implement SidecarError.
var (
	_ SidecarError = (*WorkerNotFoundError)(nil)
	_ SidecarError = (*ConnectionError)(nil)
	_ SidecarError = (*ProcessError)(nil)
	_ SidecarError = (*RemoteError)(nil)
	_ SidecarError = (*WorkerJSONDecodeError)(nil)
)

// Sentinel errors for commonly checked conditions.
var (
	// ErrNotStarted indicates a call was attempted before any worker session exists.
	ErrNotStarted = errors.New("worker not started")

	// ErrAlreadyStarted indicates Start was called on a supervisor with a live session.
	ErrAlreadyStarted = errors.New("worker already started")

	// ErrTransportNotConnected indicates the transport is not connected.
	ErrTransportNotConnected = errors.New("transport not connected")

	// ErrRequestTimeout indicates a call received no response within its timeout.
	ErrRequestTimeout = errors.New("request timeout")

	// ErrRouterStopped indicates the message router stopped before a call resolved.
	// Callers observe this instead of hanging when the worker goes away mid-call.
	ErrRouterStopped = errors.New("rpc router stopped")

	// ErrStdinClosed indicates the worker's stdin was closed due to context cancellation.
	ErrStdinClosed = errors.New("stdin closed")
)

// WorkerNotFoundError indicates the worker executable was not found.
type WorkerNotFoundError struct {
	SearchedPaths []string
}

func (e *WorkerNotFoundError) Error() string {
	return fmt.Sprintf("worker executable not found in: %v", e.SearchedPaths)
}

// IsSidecarError implements SidecarError.
func (e *WorkerNotFoundError) IsSidecarError() bool { return true }

// ConnectionError indicates the worker process could not be spawned or connected.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to connect to worker: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// IsSidecarError implements SidecarError.
func (e *ConnectionError) IsSidecarError() bool { return true }

// ProcessError indicates the worker process exited abnormally.
type ProcessError struct {
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ProcessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("worker process failed (exit %d): %v", e.ExitCode, e.Err)
	}

	return fmt.Sprintf("worker process failed (exit %d): %s", e.ExitCode, e.Stderr)
}

func (e *ProcessError) Unwrap() error {
	return e.Err
}

// IsSidecarError implements SidecarError.
func (e *ProcessError) IsSidecarError() bool { return true }

// RemoteError carries an error reported by the worker for a specific request.
type RemoteError struct {
	Method  string
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("worker error for %q: %s", e.Method, e.Message)
}

// IsSidecarError implements SidecarError.
func (e *RemoteError) IsSidecarError() bool { return true }

// WorkerJSONDecodeError indicates a line from the worker's stdout failed to
// parse as JSON. These are logged and skipped; they are never fatal to the
// session and never surface to callers of Call.
type WorkerJSONDecodeError struct {
	RawData string
	Err     error
}

func (e *WorkerJSONDecodeError) Error() string {
	return fmt.Sprintf("failed to decode JSON from worker: %v", e.Err)
}

func (e *WorkerJSONDecodeError) Unwrap() error {
	return e.Err
}

// IsSidecarError implements SidecarError.
func (e *WorkerJSONDecodeError) IsSidecarError() bool { return true }
