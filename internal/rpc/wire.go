package rpc

// Request is one outgoing request line.
//
// Wire format:
//
//	{"id": 1, "method": "getServers", "params": {}}
type Request struct {
	// ID correlates the response to this request. Unique for the lifetime
	// of one worker session, strictly increasing, starting at 1.
	ID uint64 `json:"id"`

	// Method names the operation to invoke on the worker.
	Method string `json:"method"`

	// Params carries the operation arguments as a JSON value.
	Params any `json:"params"`
}

// Incoming lines are not declared as structs: the worker's responses and
// events are classified dynamically from the decoded map, matching the
// loose shapes the protocol allows.
//
//	{"id": 1, "result": ...}
//	{"id": 1, "error": {"message": "...", ...}}
//	{"event": "logUpdate", "data": {...}}

// eventName extracts the event name if msg is an event line.
func eventName(msg map[string]any) (string, bool) {
	name, ok := msg["event"].(string)

	return name, ok
}

// responseID extracts the correlation id if msg is a response line.
// JSON numbers decode as float64; anything that is not a non-negative
// integral number is rejected.
func responseID(msg map[string]any) (uint64, bool) {
	raw, ok := msg["id"]
	if !ok {
		return 0, false
	}

	f, ok := raw.(float64)
	if !ok || f < 0 || f != float64(uint64(f)) {
		return 0, false
	}

	return uint64(f), true
}

// errorMessage extracts the message from a response's error object.
func errorMessage(errVal any) string {
	if m, ok := errVal.(map[string]any); ok {
		if msg, ok := m["message"].(string); ok && msg != "" {
			return msg
		}
	}

	return "unknown worker error"
}
