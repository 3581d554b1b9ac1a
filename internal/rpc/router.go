package rpc

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/segmentio/encoding/json"

	"github.com/botwright/sidecar/internal/errors"
)

// Transport defines the minimal interface needed by the router.
//
// This interface is satisfied by subprocess.WorkerTransport but allows for
// testing with mock transports.
type Transport interface {
	ReadMessages(ctx context.Context) (<-chan map[string]any, <-chan error)
	SendMessage(ctx context.Context, data []byte) error
}

// EventSink receives unsolicited events demultiplexed off the worker stream.
type EventSink interface {
	Publish(name string, data any)
}

// Router correlates outgoing requests with incoming responses for one
// worker session.
//
// The Router handles:
//   - Assigning monotonically increasing request ids
//   - Tracking one pending completion channel per id
//   - Per-call timeout enforcement with proactive cleanup
//   - Classifying incoming lines as responses or events
//
// The Router must be started with Start() before use and manages its own
// goroutine for reading and routing messages.
type Router struct {
	log       *slog.Logger
	transport Transport
	events    EventSink

	// Request id counter; first id handed out is 1.
	nextID atomic.Uint64

	// Pending call tracking. Every entry is removed by exactly one of:
	// a matching response, the caller's timeout path, or caller cancellation.
	pendingMu sync.Mutex
	pending   map[uint64]*pendingCall

	// Fatal error handling - stores error and broadcasts via done channel
	errMu    sync.RWMutex
	fatalErr error

	// Lifecycle management
	closeOnce sync.Once
	done      chan struct{}
	wg        sync.WaitGroup
}

// pendingCall tracks one outgoing request awaiting its response.
type pendingCall struct {
	method string
	result chan callResult
}

// callResult is the single-use completion value for one pending call.
type callResult struct {
	value any
	err   error
}

// NewRouter creates a new router.
//
// The logger receives debug, info, warn, and error messages during routing.
// The transport must be connected before calling Start(). Events demuxed off
// the stream are published to sink; sink must not be nil.
func NewRouter(log *slog.Logger, transport Transport, sink EventSink) *Router {
	return &Router{
		log:       log.With("component", "rpc"),
		transport: transport,
		events:    sink,
		pending:   make(map[uint64]*pendingCall, 10),
		done:      make(chan struct{}),
	}
}

// closeDone safely closes the done channel exactly once.
func (r *Router) closeDone() {
	r.closeOnce.Do(func() {
		close(r.done)
	})
}

// setFatalError stores a fatal error and broadcasts to all waiters by
// closing done. Every pending call observes the broadcast and resolves
// immediately instead of waiting out its own timeout.
func (r *Router) setFatalError(err error) {
	r.errMu.Lock()

	if r.fatalErr == nil {
		r.fatalErr = err
	}

	r.errMu.Unlock()

	r.closeDone()
}

// FatalError returns the fatal error if one occurred.
func (r *Router) FatalError() error {
	r.errMu.RLock()
	defer r.errMu.RUnlock()

	return r.fatalErr
}

// Done returns a channel that is closed when the router stops.
func (r *Router) Done() <-chan struct{} {
	return r.done
}

// Start begins reading messages from the transport and routing them.
//
// This method spawns a goroutine that reads from the transport, resolves
// responses against pending calls, and publishes events. The goroutine
// stops when the context is cancelled or the transport closes.
func (r *Router) Start(ctx context.Context) {
	r.log.Debug("Starting rpc router")

	messages, errs := r.transport.ReadMessages(ctx)

	r.wg.Add(1)

	go r.readLoop(ctx, messages, errs)

	r.log.Info("RPC router started")
}

// Stop shuts down the router and waits for the read loop to exit.
// Any call still awaiting a response resolves with ErrRouterStopped.
// It's safe to call Stop multiple times.
func (r *Router) Stop() {
	r.log.Debug("Stopping rpc router")

	r.closeDone()
	r.wg.Wait()
	r.log.Info("RPC router stopped")
}

// Call sends one request and waits for the matching response.
//
// A fresh id is assigned, the request is serialized to a single line and
// written to the transport, and the caller blocks until the response
// arrives, the timeout expires, the router stops, or ctx is cancelled.
//
// Exactly one pending entry is created and removed per call. On timeout
// the entry is removed proactively, so a stray late response is silently
// dropped rather than resurrected.
func (r *Router) Call(
	ctx context.Context,
	method string,
	params any,
	timeout time.Duration,
) (any, error) {
	id := r.nextID.Add(1)

	r.log.Debug("Sending request", "id", id, "method", method)

	pending := &pendingCall{
		method: method,
		result: make(chan callResult, 1),
	}

	r.pendingMu.Lock()
	r.pending[id] = pending
	r.pendingMu.Unlock()

	if params == nil {
		params = map[string]any{}
	}

	req := &Request{ID: id, Method: method, Params: params}

	data, err := json.Marshal(req)
	if err != nil {
		r.cancel(id)
		r.log.Error("Failed to marshal request", "id", id, "error", err)

		return nil, fmt.Errorf("marshal request: %w", err)
	}

	if err := r.transport.SendMessage(ctx, data); err != nil {
		r.cancel(id)
		r.log.Error("Failed to send request", "id", id, "error", err)

		return nil, fmt.Errorf("send request: %w", err)
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-pending.result:
		if res.err != nil {
			r.log.Warn("Request returned error", "id", id, "error", res.err)

			return nil, res.err
		}

		r.log.Debug("Received response", "id", id)

		return res.value, nil

	case <-r.done:
		// Router stopped (worker gone or shutdown) - fail fast
		r.cancel(id)

		if err := r.FatalError(); err != nil {
			r.log.Warn("Transport error during request", "id", id, "error", err)

			return nil, fmt.Errorf("transport error: %w", err)
		}

		r.log.Debug("Router stopped during request", "id", id)

		return nil, errors.ErrRouterStopped

	case <-timer.C:
		r.cancel(id)
		r.log.Warn("Request timed out", "id", id, "method", method, "timeout", timeout)

		return nil, fmt.Errorf("%w after %s", errors.ErrRequestTimeout, timeout)

	case <-ctx.Done():
		r.cancel(id)
		r.log.Debug("Request cancelled", "id", id)

		return nil, ctx.Err()
	}
}

// cancel removes and discards the pending entry for id without fulfilling it.
// A no-op if the entry was already resolved.
func (r *Router) cancel(id uint64) {
	r.pendingMu.Lock()
	delete(r.pending, id)
	r.pendingMu.Unlock()
}

// readLoop reads messages from the transport and routes them.
func (r *Router) readLoop(
	ctx context.Context,
	messages <-chan map[string]any,
	errs <-chan error,
) {
	defer r.wg.Done()
	defer r.closeDone()
	defer r.log.Debug("RPC read loop stopped")

	for {
		select {
		case msg, ok := <-messages:
			if !ok {
				r.log.Debug("Message channel closed")

				return
			}

			r.handleMessage(msg)

		case err, ok := <-errs:
			if !ok {
				r.log.Debug("Error channel closed")

				return
			}

			if err == nil {
				continue
			}

			// Malformed lines are logged and skipped; the session survives.
			var decodeErr *errors.WorkerJSONDecodeError
			if stderrors.As(err, &decodeErr) {
				r.log.Warn("Dropping malformed worker line", "line", decodeErr.RawData)

				continue
			}

			r.log.Debug("Transport error in router", "error", err)
			r.setFatalError(err)

			return

		case <-r.done:
			r.log.Debug("Router stop signal received")

			return

		case <-ctx.Done():
			r.log.Debug("Context cancelled in rpc read loop")

			return
		}
	}
}

// handleMessage classifies one decoded line and routes it.
//
// Presence of an "event" field makes it an event; otherwise a numeric "id"
// makes it a response. Anything else is dropped.
func (r *Router) handleMessage(msg map[string]any) {
	if name, ok := eventName(msg); ok {
		r.log.Debug("Received event", "event", name)
		r.events.Publish(name, msg["data"])

		return
	}

	if id, ok := responseID(msg); ok {
		r.handleResponse(id, msg)

		return
	}

	r.log.Debug("Dropping message with unrecognized shape")
}

// handleResponse resolves the pending call for id with the response outcome.
func (r *Router) handleResponse(id uint64, msg map[string]any) {
	// Find and claim the pending call atomically. Whichever of this path
	// and the caller's timeout path removes the entry first wins; the
	// loser observes an absent entry and does nothing.
	r.pendingMu.Lock()

	pending, exists := r.pending[id]
	if exists {
		delete(r.pending, id)
	}

	r.pendingMu.Unlock()

	if !exists {
		// Expected for late responses after timeout.
		r.log.Debug("No pending call for response", "id", id)

		return
	}

	var res callResult

	if errVal, isErr := msg["error"]; isErr && errVal != nil {
		res.err = &errors.RemoteError{
			Method:  pending.method,
			Message: errorMessage(errVal),
		}
	} else {
		res.value = msg["result"]
	}

	// We own the entry now; the channel is buffered so this never blocks.
	pending.result <- res
}
