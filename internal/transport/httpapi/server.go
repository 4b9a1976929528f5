// Package httpapi serves the generator over HTTP.
package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"payfile-synth/internal/domain"
	"payfile-synth/internal/format"
	"payfile-synth/internal/logger"
	"payfile-synth/internal/transport"
)

const maxBodyBytes = 1 << 20

// Options configures a Server.
type Options struct {
	RequestTimeout     time.Duration
	RateLimitPerMinute int
	MaxRows            int
	// RPC, when set, is mounted at /rpc behind the same middleware.
	RPC http.Handler
}

// Server is the HTTP API.
type Server struct {
	svc      transport.Service
	requests *transport.RequestValidator
	limit    func(http.Handler) http.Handler
	log      *logrus.Entry
	router   *chi.Mux
	rpc      http.Handler
	timeout  time.Duration
}

// NewServer wires routes and middleware.
func NewServer(svc transport.Service, log *logger.Logger, opts Options) (*Server, error) {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}
	if opts.RateLimitPerMinute <= 0 {
		opts.RateLimitPerMinute = 60
	}
	if opts.MaxRows <= 0 {
		opts.MaxRows = 100000
	}
	requests, err := transport.NewRequestValidator(opts.MaxRows)
	if err != nil {
		return nil, err
	}
	s := &Server{
		svc:      svc,
		requests: requests,
		limit:    rateLimiter(opts.RateLimitPerMinute),
		log:      log.WithComponent("http"),
		rpc:      opts.RPC,
		timeout:  opts.RequestTimeout,
	}
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.timeout))

	r.Get("/api/v1/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(s.limit)

		r.Get("/api/v1/formats", s.handleFormats)
		r.Post("/api/v1/generate", s.handleGenerate)
		r.Route("/api/v1/files/{namespace}", func(r chi.Router) {
			r.Get("/", s.handleListFiles)
			r.Get("/{name}/preview", s.handlePreview)
		})
		if s.rpc != nil {
			r.Method(http.MethodPost, "/rpc", s.rpc)
		}
	})

	s.router = r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// GenerateResponse is the body of a successful generate call.
type GenerateResponse struct {
	Namespace string          `json:"namespace"`
	Filename  string          `json:"filename"`
	Path      string          `json:"path"`
	Size      int64           `json:"size"`
	Meta      domain.FileMeta `json:"meta"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":  "healthy",
		"formats": len(s.svc.Formats()),
	})
}

func (s *Server) handleFormats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string][]format.Info{"formats": s.svc.Formats()})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	req, err := s.requests.Decode(body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid generation request", err)
		return
	}

	namespace := r.Header.Get(ClientIDHeader)
	if namespace == "" {
		namespace = uuid.NewString()
	}

	file, stored, err := s.svc.GenerateAndStore(r.Context(), req, namespace)
	if err != nil {
		s.respondServiceError(w, "generation failed", err)
		return
	}

	respondJSON(w, http.StatusCreated, GenerateResponse{
		Namespace: stored.Namespace,
		Filename:  file.Filename,
		Path:      stored.Path,
		Size:      stored.Size,
		Meta:      file.Meta,
	})
}

func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	namespace := chi.URLParam(r, "namespace")
	files, err := s.svc.ListFiles(r.Context(), namespace)
	if err != nil {
		s.respondServiceError(w, "could not list files", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"namespace": namespace,
		"files":     files,
	})
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	namespace := chi.URLParam(r, "namespace")
	name := chi.URLParam(r, "name")

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer", nil)
			return
		}
		limit = n
	}

	rows, err := s.svc.PreviewFile(r.Context(), namespace, name, limit)
	if err != nil {
		s.respondServiceError(w, "could not preview file", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"namespace": namespace,
		"name":      name,
		"rows":      rows,
	})
}

func (s *Server) respondServiceError(w http.ResponseWriter, message string, err error) {
	switch transport.Classify(err) {
	case transport.KindInvalid:
		respondError(w, http.StatusBadRequest, message, err)
	case transport.KindNotFound:
		respondError(w, http.StatusNotFound, message, err)
	default:
		s.log.WithError(err).Error(message)
		respondError(w, http.StatusInternalServerError, message, err)
	}
}

// Helper functions
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string, err error) {
	response := map[string]string{
		"error": message,
	}
	if err != nil {
		response["details"] = err.Error()
	}
	respondJSON(w, status, response)
}
