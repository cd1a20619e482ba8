package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/livegamesio/pfn/internal/scan"
	"github.com/livegamesio/pfn/internal/store"
)

// Server exposes the verification surface over HTTP. The core engine stays
// free of I/O; everything here is a thin layer over games, scan, and store.
type Server struct {
	db      store.DB
	scanner *scan.Scanner
	logger  zerolog.Logger
}

// NewServer wires a server. db may be nil, which disables persistence of
// scan runs but keeps all verification endpoints working.
func NewServer(db store.DB, logger zerolog.Logger) *Server {
	return &Server{
		db:      db,
		scanner: scan.NewScanner(),
		logger:  logger,
	}
}

// Routes builds the router with standard middleware.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", s.handleHealth)
	r.Get("/health/live", s.handleHealth)
	r.Get("/health/ready", s.handleReady)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/verify", s.handleVerify)
		r.Post("/scan", s.handleScan)
		r.Get("/games", s.handleListGames)
		r.Post("/seed/hash", s.handleSeedHash)
		r.Get("/rounds", s.handleListRounds)
		r.Get("/rounds/{id}", s.handleGetRound)
		r.Post("/rounds", s.handleSaveRound)
		r.Post("/rounds/{id}/reveal", s.handleRevealRound)
	})

	return r
}

// requestLogger logs one line per request with latency and status.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("request_id", middleware.GetReqID(r.Context())).
			Int("status", ww.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error().Err(err).Msg("response encoding failed")
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, errType, message string, context map[string]any) {
	requestID := middleware.GetReqID(r.Context())
	s.writeJSON(w, status, newEngineError(errType, message, requestID, context))
}
