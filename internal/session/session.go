// Package session owns the lifecycle of the gateway's single active push
// channel and the correlation of delivered requests to it. The lifecycle
// is a three-state machine (idle, connected, closed); the active channel
// sink is a single slot swapped atomically on establish.
package session

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/cockroachdb/errors"
	lfsm "github.com/looplab/fsm"

	"github.com/assetgate/assetgate/internal/logging"
	"github.com/assetgate/assetgate/internal/mcperrors"
	"github.com/assetgate/assetgate/internal/protocol"
	"github.com/assetgate/assetgate/internal/registry"
)

// Lifecycle states.
const (
	StateIdle      = "idle"
	StateConnected = "connected"
	StateClosed    = "closed"
)

// Lifecycle events.
const (
	eventEstablish = "establish"
	eventClose     = "close"
)

// Sink is the write capability of one push channel. Send must be safe to
// call from multiple goroutines; Close must be idempotent.
type Sink interface {
	// ID identifies the channel, used to match a departing connection
	// against the currently active slot.
	ID() string
	// Send serializes one correlated response onto the channel.
	Send(resp protocol.Response) error
	// Close releases the channel resource.
	Close()
}

// Dispatcher routes a delivered request into the call registry. Dispatch
// always returns a CallResult, never an error.
type Dispatcher interface {
	Dispatch(ctx context.Context, method string, params json.RawMessage) registry.CallResult
}

// Transport correlates the request channel with the active push channel.
// At most one sink is active at any instant; establishing a new one is a
// silent takeover of the previous.
type Transport struct {
	logger     logging.Logger
	dispatcher Dispatcher

	mu      sync.Mutex
	machine *lfsm.FSM
	active  Sink
}

// NewTransport creates a Transport in the idle state.
func NewTransport(dispatcher Dispatcher, logger logging.Logger) *Transport {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	machine := lfsm.NewFSM(
		StateIdle,
		lfsm.Events{
			// Establish is legal from every state: first connection,
			// takeover, and reconnect after close.
			{Name: eventEstablish, Src: []string{StateIdle, StateConnected, StateClosed}, Dst: StateConnected},
			{Name: eventClose, Src: []string{StateConnected}, Dst: StateClosed},
		},
		lfsm.Callbacks{},
	)
	return &Transport{
		logger:     logger.WithField("component", "session_transport"),
		dispatcher: dispatcher,
		machine:    machine,
	}
}

// State returns the current lifecycle state.
func (t *Transport) State() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.machine.Current()
}

// Establish records sink as the active push channel, replacing and
// closing any previous one. The swap happens atomically under the
// transport lock; the displaced sink is closed outside it.
func (t *Transport) Establish(ctx context.Context, sink Sink) error {
	t.mu.Lock()
	prev := t.active
	t.active = sink
	err := t.machine.Event(ctx, eventEstablish)
	t.mu.Unlock()

	if err != nil && !isNoTransition(err) {
		// Establish is defined from every state, so this is a defect,
		// not a runtime condition.
		return errors.Wrap(err, "establishing session")
	}

	if prev != nil {
		t.logger.Info("Session takeover: closing previous push channel.",
			"previous", prev.ID(), "active", sink.ID())
		prev.Close()
	} else {
		t.logger.Info("Session established.", "sink", sink.ID())
	}
	return nil
}

// Deliver routes one request into the dispatcher and arranges for the
// result to be pushed back on the active channel. It returns
// NoActiveSessionError when no channel is established; the caller
// acknowledges that on the request channel, not the push channel.
//
// Dispatch runs concurrently: Deliver returns as soon as the request is
// accepted, and responses are correlated by request ID, not send order.
func (t *Transport) Deliver(ctx context.Context, req protocol.Request) error {
	t.mu.Lock()
	connected := t.machine.Current() == StateConnected && t.active != nil
	t.mu.Unlock()

	if !connected {
		t.logger.Warn("Request delivered with no active session; dropping.",
			"requestId", req.RequestID, "method", req.Method)
		return mcperrors.NewNoActiveSessionError()
	}

	// The request outlives the HTTP exchange that delivered it; detach
	// from that exchange's cancellation.
	dispatchCtx := context.WithoutCancel(ctx)
	go func() {
		result := t.dispatcher.Dispatch(dispatchCtx, req.Method, req.Params)
		t.Push(req.RequestID, result)
	}()
	return nil
}

// Push serializes the correlated result onto whichever sink is active at
// push time. If the session has since closed or been replaced, the push
// is logged and dropped, never retried: the in-flight handler already
// completed, only its audience is gone.
func (t *Transport) Push(requestID string, result registry.CallResult) {
	resp := toResponse(requestID, result)

	t.mu.Lock()
	sink := t.active
	connected := t.machine.Current() == StateConnected && sink != nil
	t.mu.Unlock()

	if !connected {
		t.logger.Warn("Dropping push: no active session.", "requestId", requestID)
		return
	}
	if err := sink.Send(resp); err != nil {
		t.logger.Warn("Dropping push: channel write failed.",
			"requestId", requestID, "sink", sink.ID(), "error", err)
	}
}

// CloseSink transitions the session to closed if the departing sink is
// still the active one. A stale sink closing after a takeover is ignored;
// the takeover already displaced it.
func (t *Transport) CloseSink(id string) {
	t.mu.Lock()
	if t.active == nil || t.active.ID() != id {
		t.mu.Unlock()
		t.logger.Debug("Ignoring close for non-active sink.", "sink", id)
		return
	}
	sink := t.active
	t.active = nil
	err := t.machine.Event(context.Background(), eventClose)
	t.mu.Unlock()

	if err != nil && !isNoTransition(err) {
		t.logger.Error("Close transition failed.", "sink", id, "error", err)
	}
	sink.Close()
	t.logger.Info("Session closed.", "sink", id)
}

// Close tears down whatever session is currently active.
func (t *Transport) Close() {
	t.mu.Lock()
	sink := t.active
	t.mu.Unlock()
	if sink != nil {
		t.CloseSink(sink.ID())
	}
}

// isNoTransition reports whether err is looplab's marker for an event
// that keeps the machine in its current state, which establish does on a
// takeover (connected to connected).
func isNoTransition(err error) bool {
	var nt lfsm.NoTransitionError
	return errors.As(err, &nt)
}

// toResponse converts a CallResult into the wire response for requestID.
func toResponse(requestID string, result registry.CallResult) protocol.Response {
	if !result.OK {
		return protocol.Response{
			RequestID: requestID,
			Error:     &protocol.ErrorObject{Code: int(result.Code), Message: result.Message},
		}
	}
	payload, err := json.Marshal(result.Payload)
	if err != nil {
		return protocol.Response{
			RequestID: requestID,
			Error: &protocol.ErrorObject{
				Code:    int(mcperrors.CodeInternal),
				Message: "result payload is not JSON-serializable: " + err.Error(),
			},
		}
	}
	return protocol.Response{RequestID: requestID, Result: payload}
}
