// Package sidecar supervises a long-running worker process and exposes its
// capabilities through request/response calls and asynchronous events.
//
// The Supervisor spawns the worker as a child process and speaks a
// line-delimited JSON protocol over its standard streams: one JSON value per
// newline-terminated line. Concurrent calls are correlated to responses by a
// monotonically increasing request id, each call races a 30 second timeout,
// and unsolicited event lines are fanned out to subscribers by event name.
//
// # Basic Usage
//
//	s := sidecar.New()
//
//	err := s.Start(ctx,
//	    sidecar.WithLogger(slog.Default()),
//	    sidecar.WithWorkerPath("/opt/botwright/botwright-worker"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer s.Shutdown(ctx)
//
//	servers, err := s.GetServers(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Events
//
// The worker pushes events at any time; subscribe by name before or after
// Start:
//
//	logs, cancel := s.Subscribe("logUpdate")
//	defer cancel()
//
//	for data := range logs {
//	    fmt.Println(data)
//	}
//
// Delivery is best-effort: events with no subscribers are discarded, and a
// subscriber that stops draining its channel misses events.
//
// # Error Handling
//
// Per-call failures are local to that call: a timeout, a worker-reported
// error, or a write failure never aborts other in-flight calls or the
// session. Typed errors distinguish the failure modes:
//
//	result, err := s.Call(ctx, "getStatus", params)
//	switch {
//	case errors.Is(err, sidecar.ErrRequestTimeout):
//	    // no response within the call timeout
//	case errors.Is(err, sidecar.ErrRouterStopped):
//	    // the worker went away mid-call
//	default:
//	    var remoteErr *sidecar.RemoteError
//	    if errors.As(err, &remoteErr) {
//	        // the worker reported an error for this request
//	    }
//	}
package sidecar
