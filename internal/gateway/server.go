// Package gateway wires the session transport and the call registry to
// the network boundary: an SSE push channel, a request-delivery endpoint,
// catalog listings, and the startup port scan.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/assetgate/assetgate/internal/logging"
	"github.com/assetgate/assetgate/internal/mcperrors"
	"github.com/assetgate/assetgate/internal/protocol"
	"github.com/assetgate/assetgate/internal/registry"
	"github.com/assetgate/assetgate/internal/session"
)

// Server exposes the gateway over HTTP.
type Server struct {
	logger    logging.Logger
	registry  *registry.Registry
	transport *session.Transport
	router    *chi.Mux
}

// New constructs a Server with its routes and middleware configured.
func New(reg *registry.Registry, transport *session.Transport, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	s := &Server{
		logger:    logger.WithField("component", "gateway"),
		registry:  reg,
		transport: transport,
		router:    chi.NewRouter(),
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.New(cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler)

	s.router.Get("/health", s.handleHealth)
	s.router.Get("/sse", s.handleSSE)
	s.router.Post("/messages", s.handleMessage)
	s.router.Get("/tools", s.handleListTools)
	s.router.Get("/resources", s.handleListResources)
	s.router.Get("/prompts", s.handleListPrompts)

	return s
}

// Router exposes the root HTTP handler.
func (s *Server) Router() http.Handler { return s.router }

// Run finds the first free port at or above floor, binds it, and serves
// until ctx is canceled. The bound port is logged; a fully occupied port
// range is the one bind failure allowed to be fatal.
func (s *Server) Run(ctx context.Context, floor int) error {
	port, err := FindAvailablePort(floor)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: s.router,
		// The push channel is long-lived; write timeouts would sever it.
		WriteTimeout:      0,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.logger.Info("Gateway listening.", "port", port)

	select {
	case <-ctx.Done():
		s.transport.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"session": s.transport.State(),
	})
}

// handleSSE is the channel-establishment entry point. It upgrades the
// connection to an event stream, installs a fresh sink as the active
// session, and keeps the connection open until the client disconnects.
func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	sink := newSSESink()
	// Tell the client where to deliver requests before any response can
	// arrive on the stream.
	if err := writeSSEEvent(w, "endpoint", map[string]string{"uri": "/messages"}); err != nil {
		s.logger.Warn("Failed to write endpoint event.", "error", err)
		return
	}
	flusher.Flush()

	if err := s.transport.Establish(r.Context(), sink); err != nil {
		s.logger.Error("Failed to establish session.", "error", err)
		return
	}

	sink.serve(w, r, flusher)
	s.transport.CloseSink(sink.ID())
}

// handleMessage is the request-delivery entry point. The body carries a
// request ID and a method invocation; the result is pushed back on the
// active session's stream, so the HTTP reply is only an acknowledgement.
func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	var req protocol.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	if req.RequestID == "" || req.Method == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "requestId and method are required"})
		return
	}

	if err := s.transport.Deliver(r.Context(), req); err != nil {
		if mcperrors.CodeOf(err) == mcperrors.CodeNoActiveSession {
			writeJSON(w, http.StatusOK, protocol.Ack{
				Status:    protocol.AckNoActiveSession,
				RequestID: req.RequestID,
			})
			return
		}
		s.logger.Error("Delivery failed.", "requestId", req.RequestID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "delivery failed"})
		return
	}

	writeJSON(w, http.StatusAccepted, protocol.Ack{
		Status:    protocol.AckAccepted,
		RequestID: req.RequestID,
	})
}

// toolListing is the catalog DTO for one tool.
type toolListing struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

func (s *Server) handleListTools(w http.ResponseWriter, _ *http.Request) {
	defs := s.registry.Tools()
	listings := make([]toolListing, 0, len(defs))
	for _, def := range defs {
		doc, err := def.Input.Document()
		if err != nil {
			// Shapes were compiled at registration; this cannot happen
			// for a registered tool.
			s.logger.Error("Failed to render input schema.", "tool", def.Name, "error", err)
			continue
		}
		listings = append(listings, toolListing{
			Name:        def.Name,
			Description: def.Description,
			InputSchema: doc,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"tools": listings})
}

type resourceListing struct {
	URI         string `json:"uri"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	MIMEType    string `json:"mimeType,omitempty"`
}

func (s *Server) handleListResources(w http.ResponseWriter, _ *http.Request) {
	defs := s.registry.Resources()
	listings := make([]resourceListing, 0, len(defs))
	for _, def := range defs {
		listings = append(listings, resourceListing{
			URI:         def.URI,
			Name:        def.Name,
			Description: def.Description,
			MIMEType:    def.MIMEType,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"resources": listings})
}

type promptListing struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	ArgsSchema  map[string]any `json:"argsSchema,omitempty"`
}

func (s *Server) handleListPrompts(w http.ResponseWriter, _ *http.Request) {
	defs := s.registry.Prompts()
	listings := make([]promptListing, 0, len(defs))
	for _, def := range defs {
		listing := promptListing{Name: def.Name, Description: def.Description}
		if def.Args != nil {
			if doc, err := def.Args.Document(); err == nil {
				listing.ArgsSchema = doc
			}
		}
		listings = append(listings, listing)
	}
	writeJSON(w, http.StatusOK, map[string]any{"prompts": listings})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
