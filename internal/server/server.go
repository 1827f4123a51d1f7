// Package server exposes the engine over HTTP.
package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/HartBrook/shrink/internal/engine"
	"github.com/HartBrook/shrink/internal/errors"
	"github.com/HartBrook/shrink/internal/kind"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// envelopeSlack covers the JSON envelope and string escaping around the
// text of a request.
const envelopeSlack = 64 << 10

const shutdownTimeout = 5 * time.Second

// Server serves the validation and minification API.
type Server struct {
	engine *engine.Engine
	logger *slog.Logger
	router chi.Router
}

// New creates a Server backed by e.
func New(e *engine.Engine, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{engine: e, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Route("/v1", func(r chi.Router) {
		r.Get("/kinds", s.handleKinds)
		r.Post("/validate", s.handleValidate)
		r.Post("/minify", s.handleMinify)
	})

	s.router = r
	return s
}

// Handler returns the HTTP handler for the API.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelError),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// Request is the body of the validate and minify endpoints.
type Request struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code   errors.ErrorCode `json:"code"`
	Reason string           `json:"reason"`
	Offset int              `json:"offset"`
	Hint   string           `json:"hint,omitempty"`
}

// KindResponse describes one supported kind.
type KindResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	DisplayName string   `json:"display_name"`
	Suffixes    []string `json:"suffixes"`
	MediaType   string   `json:"media_type"`
}

func (s *Server) handleKinds(w http.ResponseWriter, _ *http.Request) {
	var out []KindResponse
	for _, k := range kind.All() {
		info := kind.Lookup(k)
		out = append(out, KindResponse{
			ID:          info.ID,
			Name:        info.Name,
			DisplayName: info.DisplayName,
			Suffixes:    info.Suffixes,
			MediaType:   info.MediaType,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	req, k, ok := s.decode(w, r)
	if !ok {
		return
	}
	result := s.engine.Validate(req.Text, k)
	status := http.StatusOK
	if err := result.Err(); err != nil {
		se, _ := errors.As(err)
		status = statusFor(se)
	}
	writeJSON(w, status, result)
}

func (s *Server) handleMinify(w http.ResponseWriter, r *http.Request) {
	req, k, ok := s.decode(w, r)
	if !ok {
		return
	}
	report, err := s.engine.Process(req.Text, k)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// decode reads a Request and resolves its kind, writing the error response
// itself when either fails.
func (s *Server) decode(w http.ResponseWriter, r *http.Request) (*Request, kind.Kind, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.engine.MaxInputBytes()+envelopeSlack)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			writeError(w, errors.New(errors.ErrOversizedInput, errors.ReasonOversizedInput,
				fmt.Sprintf("Request bodies are limited to %d bytes", tooLarge.Limit)))
			return nil, kind.Unknown, false
		}
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Code:   errors.ErrInvalidRequest,
			Reason: "invalid request body: " + err.Error(),
			Offset: -1,
		})
		return nil, kind.Unknown, false
	}

	k, err := kind.Parse(req.Kind)
	if err != nil {
		writeError(w, err)
		return nil, kind.Unknown, false
	}
	return &req, k, true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	se, ok := errors.As(err)
	if !ok {
		se = errors.Internal("request failed", err)
	}
	writeJSON(w, statusFor(se), ErrorResponse{
		Code:   se.Code,
		Reason: se.Message,
		Offset: se.Offset,
		Hint:   se.Hint,
	})
}

func statusFor(se *errors.ShrinkError) int {
	switch {
	case se.IsValidation() && se.Code == errors.ErrOversizedInput:
		return http.StatusRequestEntityTooLarge
	case se.IsValidation():
		return http.StatusUnprocessableEntity
	case se.Code == errors.ErrUnknownKind:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
