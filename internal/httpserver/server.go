// internal/httpserver/server.go
//
// HTTP server wiring for the word-chain backend.
// Responsibilities:
//   - Router + middleware (request IDs, request logging, panic recovery,
//     timeouts, JSON, CORS).
//   - Public endpoints: "/", "/health", "/metrics".
//   - Game endpoints (optional auth): /game/*.
//   - Daily puzzle endpoints (optional auth): /daily/*.
//   - Auth + stats endpoints: /auth/*, /stats/me.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - Validation rejections are ordinary 200 responses carrying the outcome;
//     non-2xx statuses are reserved for malformed requests and session state
//     errors.

package httpserver

import (
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/linkdle/internal/config"
	"github.com/robalobadob/linkdle/internal/daily"
	"github.com/robalobadob/linkdle/internal/game"
	"github.com/robalobadob/linkdle/internal/metrics"
	"github.com/robalobadob/linkdle/internal/store"
	"github.com/robalobadob/linkdle/internal/words"
)

// Server bundles the router with the session store, database and the
// validation pipeline every new session is wired to.
type Server struct {
	r         *chi.Mux
	cfg       config.ServerConfig
	salt      string
	store     store.Store
	db        *sql.DB
	daily     *daily.Store
	validator game.Validator
	catalog   *words.Catalog
	now       func() time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithClock overrides time.Now for sessions and daily selection (tests).
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// New constructs a Server, installs middleware, and registers routes.
func New(cfg *config.Config, st store.Store, db *sql.DB, v game.Validator, catalog *words.Catalog, opts ...Option) *Server {
	s := &Server{
		r:         chi.NewRouter(),
		cfg:       cfg.Server,
		salt:      cfg.Daily.Salt,
		store:     st,
		db:        db,
		daily:     daily.NewStore(db),
		validator: v,
		catalog:   catalog,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(requestLogger)
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(s.cfg.RequestTimeout))
	s.r.Use(jsonContentType)
	s.r.Use(s.cors)

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"service": "linkdle",
			"endpoints": []string{
				"/health", "/metrics",
				"POST /game/new", "GET /game/{id}", "POST /game/submit", "POST /game/complete", "POST /game/reset",
				"/daily/today", "/daily/leaderboard", "/auth/*", "/stats/me",
			},
		})
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	s.r.Method(http.MethodGet, "/metrics", metrics.Handler())

	s.mountGame(s.r.With(s.withOptionalAuth()))
	s.mountDaily(s.r.With(s.withOptionalAuth()))
	s.mountAuthRoutes()

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// Router exposes the router for the HTTP listener and tests.
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for the configured client origin.
func (s *Server) cors(next http.Handler) http.Handler {
	origin := s.cfg.ClientOrigin
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requestLogger logs one line per request through the global zerolog logger.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			log.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("elapsed", time.Since(start)).
				Str("request_id", chimw.GetReqID(r.Context())).
				Msg("request")
		}()
		next.ServeHTTP(ww, r)
	})
}

// ------------------------------- replies -----------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("encode response")
	}
}

// writeError answers with {"error": code} and, when present, details.
func writeError(w http.ResponseWriter, status int, code string, details ...any) {
	body := map[string]any{"error": code}
	if len(details) > 0 && details[0] != nil {
		body["details"] = details[0]
	}
	writeJSON(w, status, body)
}

// decode reads a JSON body into v. An empty body leaves v untouched.
func decode(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
