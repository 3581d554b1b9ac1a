package sidecar

import "github.com/botwright/sidecar/internal/errors"

// Re-export error types from internal package

// WorkerNotFoundError indicates the worker executable was not found.
type WorkerNotFoundError = errors.WorkerNotFoundError

// ConnectionError indicates the worker process could not be spawned.
type ConnectionError = errors.ConnectionError

// ProcessError indicates the worker process exited abnormally.
type ProcessError = errors.ProcessError

// RemoteError carries an error reported by the worker for a specific request.
type RemoteError = errors.RemoteError

// WorkerJSONDecodeError indicates a worker stdout line failed to parse as JSON.
type WorkerJSONDecodeError = errors.WorkerJSONDecodeError

// SidecarError is the base interface for all errors produced by this module.
type SidecarError = errors.SidecarError

// Re-export sentinel errors from internal package.
var (
	// ErrNotStarted indicates a call was attempted before any worker session exists.
	ErrNotStarted = errors.ErrNotStarted

	// ErrAlreadyStarted indicates Start was called on a supervisor with a live session.
	ErrAlreadyStarted = errors.ErrAlreadyStarted

	// ErrRequestTimeout indicates a call received no response within its timeout.
	ErrRequestTimeout = errors.ErrRequestTimeout

	// ErrRouterStopped indicates the session ended before a call resolved.
	ErrRouterStopped = errors.ErrRouterStopped

	// ErrTransportNotConnected indicates the transport is not connected.
	ErrTransportNotConnected = errors.ErrTransportNotConnected
)
