package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/koustreak/dbsnap/internal/errs"
	"github.com/koustreak/dbsnap/internal/report"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(r.Context()); err != nil {
		s.writeError(w, r, errs.Wrap(errs.ErrKindConnectionFailed, "database unreachable", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	format, err := s.format(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	snap, err := s.capture(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeReport(w, r, report.Build(snap, s.now()), format)
}

func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	format, err := s.format(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	snap, err := s.capture(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	name := chi.URLParam(r, "table")
	t, ok := report.BuildTable(snap, name)
	if !ok {
		s.writeError(w, r, errs.New(errs.ErrKindNotFound, "table "+name+" not found in "+snap.Schema()))
		return
	}
	s.writeReport(w, r, t, format)
}

func (s *Server) writeReport(w http.ResponseWriter, r *http.Request, v any, format string) {
	// encode first so a failure can still become a proper error response
	var buf bytes.Buffer
	if err := report.Encode(&buf, v, format); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", report.ContentType(format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := errs.KindOf(err)
	status := statusFor(kind)
	if status >= http.StatusInternalServerError {
		s.log.ErrorWith("request failed", err, map[string]any{
			"path":       r.URL.Path,
			"request_id": middleware.GetReqID(r.Context()),
		})
	}
	writeJSON(w, status, errorBody{Error: err.Error(), Kind: kind.String()})
}

func statusFor(kind errs.ErrKind) int {
	switch kind {
	case errs.ErrKindNotFound:
		return http.StatusNotFound
	case errs.ErrKindInvalidInput:
		return http.StatusBadRequest
	case errs.ErrKindPermissionDenied:
		return http.StatusForbidden
	case errs.ErrKindTimeout:
		return http.StatusGatewayTimeout
	case errs.ErrKindConnectionFailed:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		s.log.With().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Str("request_id", middleware.GetReqID(r.Context())).
			Any("duration", time.Since(start).String()).
			Logger().
			Debug("request")
	})
}
