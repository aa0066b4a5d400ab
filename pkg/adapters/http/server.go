// Package http exposes the dialogue engine over a small JSON API. One
// route per capability: turns, session inspection, receipts, schemes.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/opencivic/sahayak/internal/logging"
	"github.com/opencivic/sahayak/internal/presentation/receipt"
	"github.com/opencivic/sahayak/pkg/domain"
	"github.com/opencivic/sahayak/pkg/scheme"
)

// Engine is the slice of the dialogue core the HTTP surface needs.
type Engine interface {
	HandleTurn(ctx context.Context, sessionID, rawInput string, meta *domain.TurnMeta) (*domain.TurnResult, error)
	Session(ctx context.Context, sessionID string) (*domain.Session, error)
	Sessions(ctx context.Context) ([]string, error)
	Scheme(name string) (*scheme.Scheme, error)
	Catalog() scheme.Catalog
}

// Server handles the JSON API.
type Server struct {
	engine Engine
	logger *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewHandler builds the API router over the engine.
func NewHandler(engine Engine, opts ...Option) http.Handler {
	s := &Server{
		engine: engine,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Get("/healthz", s.health)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/schemes", s.listSchemes)
	r.Get("/schemes/{name}", s.getScheme)
	r.Get("/sessions", s.listSessions)
	r.Get("/sessions/{id}", s.getSession)
	r.Get("/sessions/{id}/receipt", s.getReceipt)
	r.Post("/sessions/{id}/turns", s.postTurn)
	return r
}

// turnRequest is the POST /sessions/{id}/turns body.
type turnRequest struct {
	Input string           `json:"input"`
	Meta  *domain.TurnMeta `json:"meta,omitempty"`
}

func (s *Server) postTurn(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	var body turnRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		s.logger.Warn("Invalid turn request body", "session_id", sessionID, "err", err)
		return
	}

	result, err := s.engine.HandleTurn(r.Context(), sessionID, body.Input, body.Meta)
	if err != nil {
		http.Error(w, "turn failed", http.StatusInternalServerError)
		s.logger.Error("Turn failed", "session_id", sessionID, "err", err)
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	sess, err := s.engine.Session(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to load session", http.StatusInternalServerError)
		s.logger.Error("Failed to load session", "session_id", sessionID, "err", err)
		return
	}

	// Transports see the public view only.
	s.writeJSON(w, http.StatusOK, map[string]any{
		"id":            sess.ID,
		"current_state": sess.CurrentState,
		"data":          sess.PublicData(),
		"created_at":    sess.CreatedAt,
		"updated_at":    sess.UpdatedAt,
	})
}

func (s *Server) getReceipt(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	sess, err := s.engine.Session(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to load session", http.StatusInternalServerError)
		s.logger.Error("Failed to load session", "session_id", sessionID, "err", err)
		return
	}

	rec, err := domain.ReceiptFromSession(sess)
	if err != nil {
		http.Error(w, "failed to decode receipt", http.StatusInternalServerError)
		s.logger.Error("Failed to decode receipt", "session_id", sessionID, "err", err)
		return
	}
	if rec == nil {
		http.Error(w, "no receipt on file", http.StatusNotFound)
		return
	}

	if r.URL.Query().Get("format") == "markdown" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		_, _ = w.Write([]byte(receipt.Markdown(rec)))
		return
	}

	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Server) listSchemes(w http.ResponseWriter, r *http.Request) {
	names := s.engine.Catalog().Names()

	type schemeInfo struct {
		Name        string `json:"name"`
		DisplayName string `json:"display_name,omitempty"`
		SlotCount   int    `json:"slot_count"`
	}

	out := make([]schemeInfo, 0, len(names))
	for _, name := range names {
		if sch, ok := s.engine.Catalog().GetScheme(name); ok {
			out = append(out, schemeInfo{
				Name:        sch.Name,
				DisplayName: sch.DisplayName,
				SlotCount:   len(sch.Slots),
			})
		}
	}

	s.writeJSON(w, http.StatusOK, map[string]any{"schemes": out})
}

func (s *Server) getScheme(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	sch, err := s.engine.Scheme(name)
	if err != nil {
		if errors.Is(err, domain.ErrSchemeNotFound) {
			http.Error(w, "scheme not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to load scheme", http.StatusInternalServerError)
		s.logger.Error("Failed to load scheme", "scheme", name, "err", err)
		return
	}

	s.writeJSON(w, http.StatusOK, sch)
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.engine.Sessions(r.Context())
	if err != nil {
		http.Error(w, "failed to list sessions", http.StatusInternalServerError)
		s.logger.Error("Failed to list sessions", "err", err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"sessions": ids})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", "err", err)
	}
}
