package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/assetgate/assetgate/internal/protocol"
	"github.com/assetgate/assetgate/internal/session"
)

// sseEventBuffer is how many pushed responses a slow client may lag
// behind before sends start failing.
const sseEventBuffer = 64

// sseHeartbeatInterval is how often a comment frame keeps an otherwise
// quiet stream alive through proxies.
const sseHeartbeatInterval = 30 * time.Second

// sseSink adapts one event-stream connection to the session.Sink
// interface. Responses are queued on a buffered channel and written by
// the connection's serve loop; one SSE event per pushed response.
type sseSink struct {
	id        string
	events    chan protocol.Response
	done      chan struct{}
	closeOnce sync.Once
}

var _ session.Sink = (*sseSink)(nil)

func newSSESink() *sseSink {
	return &sseSink{
		id:     uuid.NewString(),
		events: make(chan protocol.Response, sseEventBuffer),
		done:   make(chan struct{}),
	}
}

// ID implements session.Sink.
func (s *sseSink) ID() string { return s.id }

// Send implements session.Sink. It queues the response for the serve
// loop and fails when the channel is closed or the client has fallen too
// far behind.
func (s *sseSink) Send(resp protocol.Response) error {
	select {
	case <-s.done:
		return errors.New("push channel closed")
	default:
	}
	select {
	case s.events <- resp:
		return nil
	case <-s.done:
		return errors.New("push channel closed")
	default:
		return errors.Newf("push channel buffer full (%d events pending)", sseEventBuffer)
	}
}

// Close implements session.Sink. Safe to call more than once.
func (s *sseSink) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

// serve writes the event stream until the client disconnects or the sink
// is closed (takeover or shutdown). It runs on the connection's handler
// goroutine.
func (s *sseSink) serve(w http.ResponseWriter, r *http.Request, flusher http.Flusher) {
	ticker := time.NewTicker(sseHeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-s.done:
			return
		case resp := <-s.events:
			if err := writeSSEEvent(w, "message", resp); err != nil {
				return
			}
			flusher.Flush()
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": heartbeat\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// writeSSEEvent frames one event in the event-stream convention.
func writeSSEEvent(w http.ResponseWriter, event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return errors.Wrap(err, "encoding SSE event")
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload)
	return err
}
