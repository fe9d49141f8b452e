// Package protocol defines the wire types exchanged on the gateway's two
// channels: discrete requests posted to the message endpoint and
// correlated responses pushed back over the event stream.
package protocol

import (
	"encoding/json"
	"strings"
)

// Method namespaces. A request method is "<kind>:<key>", split on the
// first colon so resource URIs may themselves contain colons.
const (
	MethodKindTool     = "tool"
	MethodKindResource = "resource"
	MethodKindPrompt   = "prompt"
)

// Request is one call delivered on the request channel.
type Request struct {
	RequestID string          `json:"requestId"`
	Method    string          `json:"method"`
	Params    json.RawMessage `json:"params,omitempty"`
}

// SplitMethod separates a request method into its kind and key.
// "tool:getAsset" yields ("tool", "getAsset");
// "resource:das://docs/overview" yields ("resource", "das://docs/overview").
// A method without a namespace yields an empty kind.
func SplitMethod(method string) (kind, key string) {
	parts := strings.SplitN(method, ":", 2)
	if len(parts) != 2 {
		return "", method
	}
	return parts[0], parts[1]
}

// ErrorObject is the failure payload carried in a pushed response.
type ErrorObject struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Response is the correlated outcome pushed back on the active session's
// event stream. Exactly one of Result and Error is set.
type Response struct {
	RequestID string          `json:"requestId"`
	Result    json.RawMessage `json:"result,omitempty"`
	Error     *ErrorObject    `json:"error,omitempty"`
}

// Ack statuses returned by the request endpoint. The ack only reports
// whether the request was routed; the call outcome arrives on the push
// channel.
const (
	AckAccepted        = "accepted"
	AckNoActiveSession = "no_active_session"
)

// Ack is the request endpoint's synchronous reply.
type Ack struct {
	Status    string `json:"status"`
	RequestID string `json:"requestId,omitempty"`
}
