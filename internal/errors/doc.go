// Package errors defines error types for the sidecar supervisor.
//
// This package provides structured error types that wrap the failure
// scenarios of spawning and talking to the worker process. All error types
// support error unwrapping and can be checked using errors.Is and errors.As.
package errors
