// Package api exposes the course pipeline over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/courseforge/course-engine/internal/config"
	"github.com/courseforge/course-engine/internal/domain"
	"github.com/courseforge/course-engine/internal/observability"
	"github.com/courseforge/course-engine/internal/pipeline"
	"github.com/courseforge/course-engine/internal/source"
)

// Server handles course generation requests.
type Server struct {
	orch           *pipeline.Orchestrator
	logger         *observability.Logger
	maxUploadBytes int64
	requestTimeout time.Duration
}

// NewServer creates the HTTP surface over an assembled pipeline.
func NewServer(orch *pipeline.Orchestrator, cfg config.ServerConfig, logger *observability.Logger) *Server {
	return &Server{
		orch:           orch,
		logger:         logger.WithComponent("api"),
		maxUploadBytes: cfg.MaxUploadBytes,
		requestTimeout: cfg.WriteTimeout,
	}
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.requestTimeout))

	r.Get("/health", s.handleHealth)
	r.Post("/courses", s.handleCreateCourse)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type createCourseRequest struct {
	URL  string `json:"url"`
	Text string `json:"text"`
}

// handleCreateCourse accepts either a multipart upload under the "document"
// field or a JSON body carrying a url or raw text.
func (s *Server) handleCreateCourse(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		userID = "anonymous"
	}

	doc, err := s.resolveDocument(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	course, err := s.orch.Process(r.Context(), doc, userID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, course)
}

func (s *Server) resolveDocument(r *http.Request) (pipeline.Document, error) {
	contentType := r.Header.Get("Content-Type")

	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
			return nil, domain.ExtractionError("failed to parse multipart upload", err)
		}
		file, header, err := r.FormFile("document")
		if err != nil {
			return nil, domain.ExtractionError("missing document field", err)
		}
		defer file.Close()

		payload, err := io.ReadAll(io.LimitReader(file, s.maxUploadBytes))
		if err != nil {
			return nil, domain.ExtractionError("failed to read upload", err)
		}
		return source.FromUpload(header.Filename, payload)
	}

	var req createCourseRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, s.maxUploadBytes)).Decode(&req); err != nil {
		return nil, domain.ExtractionError("invalid request body", err)
	}

	switch {
	case req.URL != "":
		return source.FromURL(r.Context(), req.URL)
	case strings.TrimSpace(req.Text) != "":
		return source.FromText(req.Text), nil
	default:
		return nil, domain.ExtractionError("request must carry a document, url, or text", nil)
	}
}

// writeError maps domain error types to HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	var domErr *domain.DomainError
	if errors.As(err, &domErr) {
		switch domErr.Type {
		case domain.ErrorTypeExtraction:
			status = http.StatusBadRequest
		case domain.ErrorTypeModel:
			status = http.StatusBadGateway
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		status = http.StatusGatewayTimeout
	}

	s.logger.Error().Err(err).Int("status", status).Msg("request failed")
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// requestLogger emits one structured line per request.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request")
	})
}
