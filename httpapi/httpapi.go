// Package httpapi exposes the interview engine over a small JSON HTTP
// surface. It is a thin boundary: request decoding, error mapping and
// response encoding only; all interview semantics live in the engine.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/interviewkit/interviewkit/core"
	"github.com/interviewkit/interviewkit/engine"
	"github.com/interviewkit/interviewkit/logging"
)

// Options configures a Server.
type Options struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Results      core.ResultStore
	Logger       logging.Logger
}

// Server serves the interview JSON API.
type Server struct {
	engine  *engine.Engine
	results core.ResultStore
	logger  logging.Logger
	httpSrv *http.Server
}

// New constructs a Server around the engine.
func New(eng *engine.Engine, optFns ...func(o *Options)) *Server {
	opts := Options{
		Addr:         ":8080",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		Logger:       logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	s := &Server{
		engine:  eng,
		results: opts.Results,
		logger:  opts.Logger,
	}
	s.httpSrv = &http.Server{
		Addr:         opts.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler returns the route table. Exposed separately so tests can drive the
// API without a listener.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("POST /api/interviews", s.handleStart)
	mux.HandleFunc("POST /api/interviews/{id}/answers", s.handleAnswer)
	mux.HandleFunc("GET /api/interviews/{id}", s.handleStatus)
	mux.HandleFunc("DELETE /api/interviews/{id}", s.handleEnd)
	mux.HandleFunc("GET /api/candidates/{name}/history", s.handleHistory)
	return mux
}

// Start begins serving and blocks until the listener stops.
func (s *Server) Start() error {
	s.logger.Info("http api listening", "addr", s.httpSrv.Addr)
	if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http api: %w", err)
	}
	return nil
}

// Stop drains in-flight requests and shuts the listener down.
func (s *Server) Stop(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

type startRequest struct {
	SessionID     string `json:"session_id"`
	CandidateName string `json:"candidate_name"`
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.CandidateName == "" {
		writeError(w, http.StatusBadRequest, "candidate_name is required")
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	result, err := s.engine.StartInterview(r.Context(), req.SessionID, req.CandidateName)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

type answerRequest struct {
	Answer string `json:"answer"`
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Answer == "" {
		writeError(w, http.StatusBadRequest, "answer is required")
		return
	}

	result, err := s.engine.ProcessAnswer(r.Context(), r.PathValue("id"), req.Answer)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := s.engine.GetStatus(r.PathValue("id"))
	if !status.Exists {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleEnd(w http.ResponseWriter, r *http.Request) {
	s.engine.Cleanup(r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.results == nil {
		writeError(w, http.StatusNotFound, "history is not available")
		return
	}
	records, err := s.results.History(r.Context(), r.PathValue("name"))
	if err != nil {
		s.logger.Error("fetch candidate history", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"candidate_name": r.PathValue("name"),
		"records":        records,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.engine.SessionCount(),
	})
}

// writeEngineError maps engine sentinels to HTTP statuses. Anything
// unexpected is reported as a generic 500 without leaking internals.
func (s *Server) writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrCandidateNotFound):
		writeError(w, http.StatusNotFound, "candidate not found")
	case errors.Is(err, core.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "session not found")
	case errors.Is(err, engine.ErrSessionExists):
		writeError(w, http.StatusConflict, "session already exists")
	case errors.Is(err, core.ErrSessionNotActive):
		writeError(w, http.StatusConflict, "session not active")
	default:
		s.logger.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
