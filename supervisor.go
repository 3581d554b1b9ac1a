package sidecar

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/botwright/sidecar/internal/config"
	"github.com/botwright/sidecar/internal/errors"
	"github.com/botwright/sidecar/internal/events"
	"github.com/botwright/sidecar/internal/rpc"
	"github.com/botwright/sidecar/internal/subprocess"
)

// shutdownGraceTimeout bounds the final best-effort shutdown RPC so that
// Shutdown never blocks process exit indefinitely.
const shutdownGraceTimeout = 3 * time.Second

// Supervisor owns the lifecycle of one worker session: the child process,
// its streams, the pending-call bookkeeping, and the event fan-out.
//
// At most one live session exists per Supervisor. Start spawns the worker
// and the stream readers; Call issues requests against the live session;
// Shutdown tries one final "shutdown" RPC and then terminates the process
// unconditionally.
//
// All methods are safe for concurrent use.
type Supervisor struct {
	mu        sync.Mutex
	log       *slog.Logger
	options   *config.Options
	sessionID string

	transport config.Transport
	router    *rpc.Router
	broker    *events.Broker

	sessionCancel context.CancelFunc
	started       bool
	closed        bool
}

// New creates a new Supervisor. Call Start to spawn the worker session.
func New() *Supervisor {
	return &Supervisor{
		log:    NopLogger(),
		broker: events.NewBroker(NopLogger()),
	}
}

// Start spawns the worker process and begins reading its streams.
//
// Both stream readers are running before Start returns, so no worker output
// is dropped between spawn and the first call. Start is idempotent-intent:
// a second call on a live session fails with ErrAlreadyStarted.
//
// The worker session outlives ctx; it ends on Shutdown, on worker exit, or
// when the supervising process exits.
func (s *Supervisor) Start(ctx context.Context, opts ...Option) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return errors.ErrAlreadyStarted
	}

	if s.closed {
		return errors.ErrNotStarted
	}

	s.options = applyOptions(opts)

	log := s.options.Logger
	if log == nil {
		log = NopLogger()
	}

	s.sessionID = ulid.Make().String()
	s.log = log.With("session_id", s.sessionID)
	s.broker.SetLogger(s.log)

	// The session gets its own lifetime, detached from the caller's ctx.
	sessionCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.sessionCancel = cancel

	transport := s.options.Transport
	if transport == nil {
		transport = subprocess.NewWorkerTransport(s.log, s.options)
	}

	s.transport = transport

	if err := transport.Start(sessionCtx); err != nil {
		cancel()

		return fmt.Errorf("start worker: %w", err)
	}

	s.router = rpc.NewRouter(s.log, transport, s.broker)
	s.router.Start(sessionCtx)

	s.started = true
	s.log.Info("Worker session started")

	return nil
}

// Call sends one request to the worker and waits for the matching response.
//
// Returns ErrNotStarted if no live session exists. Params may be nil, in
// which case an empty object is sent. The call races the configured timeout
// (default 30s); on timeout the pending entry is cleaned up so a stray late
// response has no effect.
func (s *Supervisor) Call(ctx context.Context, method string, params any) (any, error) {
	s.mu.Lock()
	router := s.router
	started := s.started
	timeout := s.options.EffectiveCallTimeout()
	s.mu.Unlock()

	if !started || router == nil {
		return nil, errors.ErrNotStarted
	}

	return router.Call(ctx, method, params, timeout)
}

// Subscribe registers interest in worker events with the given name.
//
// May be called before Start; events that arrive with no subscribers are
// discarded. The returned cancel function removes the subscription and
// closes the channel.
func (s *Supervisor) Subscribe(event string) (<-chan any, func()) {
	return s.broker.Subscribe(event)
}

// Done returns a channel that is closed when the session ends.
// Returns nil if Start has not been called.
func (s *Supervisor) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.router == nil {
		return nil
	}

	return s.router.Done()
}

// Err returns the fatal session error, if any, once Done is closed.
func (s *Supervisor) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.router == nil {
		return nil
	}

	return s.router.FatalError()
}

// Shutdown gracefully stops the worker session.
//
// It issues one final "shutdown" RPC with a short best-effort wait, then
// unconditionally terminates the process and releases all resources. Calls
// still pending resolve with ErrRouterStopped. Safe to call multiple times.
func (s *Supervisor) Shutdown(ctx context.Context) error {
	s.mu.Lock()

	if !s.started || s.closed {
		s.mu.Unlock()

		return nil
	}

	s.closed = true
	router := s.router
	transport := s.transport
	cancel := s.sessionCancel
	s.mu.Unlock()

	s.log.Info("Shutting down worker session")

	// Best-effort: give the worker a chance to exit cleanly, but never
	// block process exit on it.
	graceCtx, graceCancel := context.WithTimeout(ctx, shutdownGraceTimeout)
	defer graceCancel()

	if _, err := router.Call(graceCtx, "shutdown", map[string]any{}, shutdownGraceTimeout); err != nil {
		s.log.Debug("Shutdown RPC did not complete", "error", err)
	}

	closeErr := transport.Close()

	cancel()
	router.Stop()
	s.broker.Close()

	s.mu.Lock()
	s.started = false
	s.mu.Unlock()

	s.log.Info("Worker session stopped")

	return closeErr
}
