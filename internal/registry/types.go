// Package registry holds the gateway's catalog of tools, resources, and
// prompts, and dispatches calls into it. Dispatch never lets a handler
// failure escape: every outcome is normalized into a CallResult before it
// reaches the transport.
package registry

import (
	"context"

	"github.com/assetgate/assetgate/internal/mcperrors"
	"github.com/assetgate/assetgate/internal/schema"
)

// ToolHandler executes a tool call against already-validated arguments.
// The returned payload must be JSON-serializable.
type ToolHandler func(ctx context.Context, args map[string]any) (any, error)

// ToolDefinition describes one named, schema-validated operation.
// Definitions are registered at startup and immutable afterwards.
type ToolDefinition struct {
	Name        string
	Description string
	Input       schema.Shape
	Handler     ToolHandler
}

// FetchFunc retrieves the content behind a resource URI.
type FetchFunc func(ctx context.Context, uri string) (string, error)

// ResourceTemplate describes one fixed, URI-addressed content source.
type ResourceTemplate struct {
	URI         string
	Name        string
	Description string
	MIMEType    string
	Fetch       FetchFunc
}

// ResourceContent is the payload produced by resolving a resource.
type ResourceContent struct {
	URI      string `json:"uri"`
	MIMEType string `json:"mimeType"`
	Text     string `json:"text"`
}

// PromptMessage is one entry in a rendered prompt's ordered message
// sequence.
type PromptMessage struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// RenderFunc produces a prompt's message sequence from validated
// arguments. Render functions are pure: no I/O, total over valid args.
type RenderFunc func(args map[string]any) ([]PromptMessage, error)

// PromptDefinition describes one named prompt template. Args is optional;
// nil means the prompt takes no arguments.
type PromptDefinition struct {
	Name        string
	Description string
	Args        *schema.Shape
	Render      RenderFunc
}

// CallResult is the tagged outcome of any dispatch: success with a
// payload, or failure with a code and a human-readable message. It is
// data, never a raised fault.
type CallResult struct {
	OK      bool
	Payload any
	Code    mcperrors.ErrorCode
	Message string
}

// Success wraps a payload in a successful CallResult.
func Success(payload any) CallResult {
	return CallResult{OK: true, Payload: payload}
}

// Failure converts an error into a failed CallResult, preserving its
// taxonomy code. For taxonomy errors the message is the base message,
// without the code prefix and cause chain noise.
func Failure(err error) CallResult {
	if base, ok := mcperrors.AsBase(err); ok {
		return CallResult{OK: false, Code: base.Code, Message: base.Message}
	}
	return CallResult{OK: false, Code: mcperrors.CodeInternal, Message: err.Error()}
}
