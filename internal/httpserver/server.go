// internal/httpserver/server.go
//
// HTTP server wiring for the QGIS card game.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs, request log).
//   - Public endpoints: "/", "/health", "/drawer", "/openapi.json", "/docs".
//   - Round endpoints (session required, except POST /round/new): see routes_round.go.
//   - Server lifecycle: Run until Shutdown.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - The server holds no game logic; every round mutation goes through puzzle.Engine
//     under the session's lock.

package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
	"github.com/swaggest/swgui/v5emb"
	"golang.org/x/text/language"

	"github.com/pierridotite/QGISGame/internal/advisory"
	"github.com/pierridotite/QGISGame/internal/catalog"
	"github.com/pierridotite/QGISGame/internal/puzzle"
	"github.com/pierridotite/QGISGame/internal/store"
)

// Options configures a Server.
type Options struct {
	Addr         string
	Catalog      *catalog.Catalog
	Store        store.Store
	Session      SessionConfig
	ClientOrigin string
	DefaultLang  language.Tag

	// NewSource supplies the random source of each new session engine.
	NewSource func() (puzzle.Source, error)
}

// Server bundles router, catalog, and session store.
type Server struct {
	r       *chi.Mux
	srv     *http.Server
	cat     *catalog.Catalog
	store   store.Store
	session SessionConfig
	lang    language.Tag
	source  func() (puzzle.Source, error)
	now     func() time.Time
}

// New constructs a Server, installs middleware, and registers routes.
func New(opts Options) *Server {
	s := &Server{
		r:       chi.NewRouter(),
		cat:     opts.Catalog,
		store:   opts.Store,
		session: opts.Session,
		lang:    advisory.Normalize(opts.DefaultLang),
		source:  opts.NewSource,
		now:     time.Now,
	}
	if s.source == nil {
		s.source = func() (puzzle.Source, error) { return puzzle.NewRandomSource() }
	}
	origin := opts.ClientOrigin
	if origin == "" {
		origin = "http://localhost:5173"
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(requestLogger)                   // one log line per request
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
	s.r.Use(cors(origin))                    // credentials-friendly CORS

	// --- docs ---
	s.r.Get("/openapi.json", handleOpenAPI())
	s.r.Mount("/docs", v5emb.New("QGIS card game API", "/openapi.json", "/docs"))

	s.r.Group(func(r chi.Router) {
		r.Use(jsonContentType)

		// --- diagnostics ---
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{
				"service":   "qgisgame",
				"endpoints": []string{"/health", "/drawer", "POST /round/new", "/round", "/docs"},
			})
		})
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, HealthResponse{OK: true})
		})
		r.Get("/debug/catalog", s.handleDebugCatalog)

		r.Get("/drawer", s.handleDrawer)
		s.mountRound(r)
	})

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	s.srv = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.r,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Run serves HTTP on the configured address until Shutdown.
func (s *Server) Run(_ context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.srv.Addr, err)
	}
	log.Info().Str("addr", ln.Addr().String()).Msg("http server listening")

	err = s.srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting connections and waits for in-flight requests
// until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ServeHTTP makes Server an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.r.ServeHTTP(w, r) }

// handleDebugCatalog reports card, chain and live session counts.
func (s *Server) handleDebugCatalog(w http.ResponseWriter, r *http.Request) {
	cards, chains := s.cat.Stats()
	writeJSON(w, http.StatusOK, DebugCatalogResponse{Cards: cards, Chains: chains, Sessions: s.store.Len()})
}
