package registry

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/assetgate/assetgate/internal/logging"
	"github.com/assetgate/assetgate/internal/mcperrors"
	"github.com/assetgate/assetgate/internal/protocol"
	"github.com/assetgate/assetgate/internal/schema"
)

// toolEntry pairs a definition with its compiled input validator.
type toolEntry struct {
	def       ToolDefinition
	validator *schema.Validator
}

// promptEntry pairs a definition with its compiled argument validator,
// nil when the prompt declares no arguments.
type promptEntry struct {
	def       PromptDefinition
	validator *schema.Validator
}

// Registry is the catalog of registered definitions. Registration happens
// during startup only, never concurrently with dispatch, so the tables
// need no locking: they are read-only once the server starts serving.
type Registry struct {
	logger logging.Logger

	tools     map[string]*toolEntry
	toolOrder []string

	resources     map[string]*ResourceTemplate
	resourceOrder []string

	prompts     map[string]*promptEntry
	promptOrder []string
}

// New creates an empty Registry.
func New(logger logging.Logger) *Registry {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	return &Registry{
		logger:    logger.WithField("component", "registry"),
		tools:     make(map[string]*toolEntry),
		resources: make(map[string]*ResourceTemplate),
		prompts:   make(map[string]*promptEntry),
	}
}

// RegisterTool adds a tool definition. A duplicate name or a malformed
// input shape fails without modifying the catalog; both indicate a
// programming defect and should abort startup.
func (r *Registry) RegisterTool(def ToolDefinition) error {
	if def.Name == "" {
		return errors.New("tool definition missing name")
	}
	if def.Handler == nil {
		return errors.Newf("tool %q missing handler", def.Name)
	}
	if _, exists := r.tools[def.Name]; exists {
		return mcperrors.NewDuplicateNameError("tool", def.Name)
	}
	validator, err := schema.Compile(def.Input)
	if err != nil {
		return errors.Wrapf(err, "compiling input shape for tool %q", def.Name)
	}
	r.tools[def.Name] = &toolEntry{def: def, validator: validator}
	r.toolOrder = append(r.toolOrder, def.Name)
	r.logger.Debug("Registered tool.", "tool", def.Name)
	return nil
}

// RegisterResource adds a resource template keyed by its URI.
func (r *Registry) RegisterResource(def ResourceTemplate) error {
	if def.URI == "" {
		return errors.New("resource template missing URI")
	}
	if def.Fetch == nil {
		return errors.Newf("resource %q missing fetch handler", def.URI)
	}
	if _, exists := r.resources[def.URI]; exists {
		return mcperrors.NewDuplicateNameError("resource", def.URI)
	}
	stored := def
	r.resources[def.URI] = &stored
	r.resourceOrder = append(r.resourceOrder, def.URI)
	r.logger.Debug("Registered resource.", "uri", def.URI)
	return nil
}

// RegisterPrompt adds a prompt definition.
func (r *Registry) RegisterPrompt(def PromptDefinition) error {
	if def.Name == "" {
		return errors.New("prompt definition missing name")
	}
	if def.Render == nil {
		return errors.Newf("prompt %q missing render function", def.Name)
	}
	if _, exists := r.prompts[def.Name]; exists {
		return mcperrors.NewDuplicateNameError("prompt", def.Name)
	}
	entry := &promptEntry{def: def}
	if def.Args != nil {
		validator, err := schema.Compile(*def.Args)
		if err != nil {
			return errors.Wrapf(err, "compiling argument shape for prompt %q", def.Name)
		}
		entry.validator = validator
	}
	r.prompts[def.Name] = entry
	r.promptOrder = append(r.promptOrder, def.Name)
	r.logger.Debug("Registered prompt.", "prompt", def.Name)
	return nil
}

// Tools returns the registered tool definitions in registration order.
func (r *Registry) Tools() []ToolDefinition {
	out := make([]ToolDefinition, 0, len(r.toolOrder))
	for _, name := range r.toolOrder {
		out = append(out, r.tools[name].def)
	}
	return out
}

// Resources returns the registered resource templates in registration order.
func (r *Registry) Resources() []ResourceTemplate {
	out := make([]ResourceTemplate, 0, len(r.resourceOrder))
	for _, uri := range r.resourceOrder {
		out = append(out, *r.resources[uri])
	}
	return out
}

// Prompts returns the registered prompt definitions in registration order.
func (r *Registry) Prompts() []PromptDefinition {
	out := make([]PromptDefinition, 0, len(r.promptOrder))
	for _, name := range r.promptOrder {
		out = append(out, r.prompts[name].def)
	}
	return out
}

// DispatchTool looks up, validates, and invokes a tool. Any failure the
// handler produces, including a panic, is converted into a failure
// CallResult: one bad call must never take down the registry or the
// session.
func (r *Registry) DispatchTool(ctx context.Context, name string, rawInput json.RawMessage) CallResult {
	entry, ok := r.tools[name]
	if !ok {
		r.logger.Warn("Dispatch against unknown tool.", "tool", name)
		return Failure(mcperrors.NewUnknownToolError(name))
	}

	args, err := entry.validator.Validate(rawInput)
	if err != nil {
		r.logger.Debug("Tool input failed validation.", "tool", name, "error", err)
		return Failure(mcperrors.NewValidationError(err.Error(), err))
	}

	return r.invokeIsolated(name, func() (any, error) {
		return entry.def.Handler(ctx, args)
	})
}

// ResolveResource resolves a URI by exact match and fetches its content.
// A fetch failure is reported inside the content payload, not as a
// failure result: the resource exists, its backing document was just
// unreachable.
func (r *Registry) ResolveResource(ctx context.Context, uri string) CallResult {
	tmpl, ok := r.resources[uri]
	if !ok {
		r.logger.Warn("Resolve against unknown resource.", "uri", uri)
		return Failure(mcperrors.NewNotFoundError(uri))
	}

	result := r.invokeIsolated(uri, func() (any, error) {
		text, err := tmpl.Fetch(ctx, uri)
		if err != nil {
			return nil, err
		}
		return ResourceContent{URI: tmpl.URI, MIMEType: tmpl.MIMEType, Text: text}, nil
	})
	if !result.OK {
		r.logger.Warn("Resource fetch failed.", "uri", uri, "error", result.Message)
		return Success(ResourceContent{
			URI:      tmpl.URI,
			MIMEType: "text/plain",
			Text:     fmt.Sprintf("Error fetching %s: %s", uri, result.Message),
		})
	}
	return result
}

// RenderPrompt validates declared arguments and renders the prompt's
// message sequence. Render functions are pure, so no panic isolation is
// layered here; a render error still becomes a failure result.
func (r *Registry) RenderPrompt(name string, rawArgs json.RawMessage) CallResult {
	entry, ok := r.prompts[name]
	if !ok {
		r.logger.Warn("Render against unknown prompt.", "prompt", name)
		return Failure(mcperrors.NewUnknownPromptError(name))
	}

	args := map[string]any{}
	if entry.validator != nil {
		validated, err := entry.validator.Validate(rawArgs)
		if err != nil {
			r.logger.Debug("Prompt arguments failed validation.", "prompt", name, "error", err)
			return Failure(mcperrors.NewValidationError(err.Error(), err))
		}
		args = validated
	}

	messages, err := entry.def.Render(args)
	if err != nil {
		return Failure(mcperrors.NewInternalError(fmt.Sprintf("rendering prompt %s", name), err))
	}
	return Success(messages)
}

// Dispatch routes a namespaced method ("tool:getAsset",
// "resource:das://docs/overview", "prompt:asset-lookup") to the matching
// catalog operation. It always returns a CallResult.
func (r *Registry) Dispatch(ctx context.Context, method string, params json.RawMessage) CallResult {
	kind, key := protocol.SplitMethod(method)
	switch kind {
	case protocol.MethodKindTool:
		return r.DispatchTool(ctx, key, params)
	case protocol.MethodKindResource:
		return r.ResolveResource(ctx, key)
	case protocol.MethodKindPrompt:
		return r.RenderPrompt(key, params)
	default:
		return Failure(mcperrors.NewValidationError(
			fmt.Sprintf("unsupported method %q: expected tool:, resource:, or prompt: namespace", method), nil))
	}
}

// invokeIsolated runs fn and converts every failure mode, error or panic,
// into a CallResult. This is the call-isolation boundary.
func (r *Registry) invokeIsolated(key string, fn func() (any, error)) (result CallResult) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("Handler panicked; converted to failure result.", "key", key, "panic", rec)
			result = Failure(mcperrors.NewInternalError(fmt.Sprintf("handler panic: %v", rec), nil))
		}
	}()

	payload, err := fn()
	if err != nil {
		if _, ok := mcperrors.AsBase(err); ok {
			return Failure(err)
		}
		// Untyped handler errors come from the backend collaborators.
		return Failure(mcperrors.NewBackendError(err.Error(), err))
	}
	return Success(payload)
}
