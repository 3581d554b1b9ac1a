// Package rpc implements request/response correlation for the worker protocol.
//
// The rpc package provides a Router that owns the request id counter and the
// pending-call map for one worker session. It reads every message coming off
// the transport, resolves responses to their waiting callers by id, and hands
// unsolicited events to the event sink.
//
// Example usage:
//
//	transport := subprocess.NewWorkerTransport(log, options)
//	transport.Start(ctx)
//
//	router := rpc.NewRouter(log, transport, broker)
//	router.Start(ctx)
//
//	// Send a request with timeout
//	result, err := router.Call(ctx, "getServers", map[string]any{}, 30*time.Second)
package rpc
