// Package httpapi exposes simulation sessions over a REST gateway.
package httpapi

import (
	_ "embed"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/espalier-dev/espalier/internal/logging"
	"github.com/espalier-dev/espalier/internal/presentation/graph"
	"github.com/espalier-dev/espalier/pkg/domain"
	"github.com/espalier-dev/espalier/pkg/session"
)

//go:embed openapi.yaml
var openapiSpec []byte

// Server drives simulation sessions over REST.
type Server struct {
	sessions *session.Manager
	logger   *slog.Logger
	metrics  *metrics
	version  string
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithVersion sets the build version reported by /info.
func WithVersion(v string) Option {
	return func(s *Server) { s.version = strings.TrimSpace(v) }
}

// NewHandler creates the HTTP handler for a session manager.
func NewHandler(sessions *session.Manager, opts ...Option) http.Handler {
	s := &Server{
		sessions: sessions,
		logger:   logging.NewNop(),
		metrics:  newMetrics(),
		version:  "dev",
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()

	r.Get("/health", s.getHealth)
	r.Get("/info", s.getInfo)
	r.Get("/flow", s.getFlow)
	r.Handle("/metrics", s.metrics.handler())

	r.Get("/openapi.yaml", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(openapiSpec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.listSessions)
		r.Post("/", s.createSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getSession)
			r.Delete("/", s.deleteSession)
			r.Post("/start", s.startSession)
			r.Post("/stop", s.stopSession)
			r.Post("/input", s.submitInput)
			r.Get("/graph", s.getSessionGraph)
		})
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Custom-Header")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "error", err)
	}
}

// writeError maps domain errors onto HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var inputErr *domain.InputError

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrRunNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrNotAwaitingInput), errors.Is(err, domain.ErrNoStartNode):
		status = http.StatusConflict
	case errors.As(err, &inputErr):
		status = http.StatusUnprocessableEntity
	}

	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) getHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getInfo(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":         "espalier-http",
		"version":     s.version,
		"api_version": apiVersion(),
	})
}

// apiVersion pulls info.version out of the embedded document without a
// full schema parse.
func apiVersion() string {
	for _, line := range strings.Split(string(openapiSpec), "\n") {
		trimmed := strings.TrimSpace(line)
		if v, ok := strings.CutPrefix(trimmed, "version:"); ok {
			return strings.TrimSpace(v)
		}
	}
	return "unknown"
}

func (s *Server) getFlow(w http.ResponseWriter, r *http.Request) {
	ids, err := s.sessions.List(r.Context())
	if err == nil && len(ids) > 0 {
		if flow, err := s.sessions.Flow(r.Context(), ids[0]); err == nil {
			s.writeJSON(w, http.StatusOK, flow)
			return
		}
	}

	id, err := s.sessions.Create(r.Context())
	if err != nil {
		s.logger.Error("flow probe failed", "error", err)
		s.writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}
	defer s.sessions.Delete(r.Context(), id)

	flow, err := s.sessions.Flow(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, flow)
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.sessions.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"sessions": ids})
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	id, err := s.sessions.Create(r.Context())
	if err != nil {
		s.logger.Warn("session create rejected", "error", err)
		s.writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}
	s.metrics.activeSessions.Inc()
	s.writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	snap, err := s.sessions.Snapshot(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.sessions.Delete(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	s.metrics.activeSessions.Dec()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) startSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.sessions.Start(r.Context(), id); err != nil {
		s.logger.Warn("start failed", "session", id, "error", err)
		s.writeError(w, err)
		return
	}
	s.metrics.runsStarted.Inc()
	s.respondWithSnapshot(w, r, id)
}

func (s *Server) stopSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.sessions.Stop(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	s.respondWithSnapshot(w, r, id)
}

func (s *Server) submitInput(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var body struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("input: invalid request body", "error", err)
		return
	}

	if err := s.sessions.Input(r.Context(), id, body.Text); err != nil {
		s.metrics.inputsRejected.Inc()
		s.logger.Warn("input rejected", "session", id, "error", err)
		s.writeError(w, err)
		return
	}
	s.metrics.inputsAccepted.Inc()
	s.respondWithSnapshot(w, r, id)
}

func (s *Server) respondWithSnapshot(w http.ResponseWriter, r *http.Request, id string) {
	snap, err := s.sessions.Snapshot(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	switch snap.Status {
	case domain.StatusCompleted:
		s.metrics.runsCompleted.Inc()
	case domain.StatusError:
		s.metrics.runsFailed.Inc()
	}
	s.writeJSON(w, http.StatusOK, snap)
}

func (s *Server) getSessionGraph(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	flow, err := s.sessions.Flow(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	snap, err := s.sessions.Snapshot(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(graph.GenerateMermaid(flow, graph.OverlayFromSnapshot(snap))))
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Espalier API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`
