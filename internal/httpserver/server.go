// internal/httpserver/server.go
//
// HTTP server wiring for the matching game.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", "/catalog", "/results".
//   - Session endpoints: POST /game creates a session; /game/* drive it.
//   - Logging game events and recording finished runs.
//
// Notes:
//   - One session belongs to one client. The client proves ownership with a signed
//     token (Authorization: Bearer or the session cookie) that names the game id.
//   - Timed transitions (mismatch clear, level settle) happen server-side; clients
//     poll GET /game to observe them.

package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/qmcDevelopment/auditoria-iso/internal/content"
	"github.com/qmcDevelopment/auditoria-iso/internal/game"
	"github.com/qmcDevelopment/auditoria-iso/internal/results"
	"github.com/qmcDevelopment/auditoria-iso/internal/store"
)

// Results is the completed-runs history. *results.Store implements it.
type Results interface {
	Record(ctx context.Context, r results.Result) error
	Leaderboard(ctx context.Context, date string, limit int) ([]results.Result, error)
}

// Options carries the server's dependencies and settings.
type Options struct {
	Catalog       *content.Catalog
	Sessions      store.Store
	Results       Results // optional; nil disables /results and recording
	Rules         game.Config
	Scheduler     game.Scheduler // optional; defaults to game.SystemScheduler
	SessionSecret string
	SessionTTL    time.Duration
	SecureCookies bool
	ClientOrigin  string
	DailySalt     string
	Now           func() time.Time // optional; defaults to time.Now
}

// Server bundles the router and its dependencies.
type Server struct {
	r    *chi.Mux
	opts Options
}

// New constructs a Server, installs middleware, and registers routes.
func New(opts Options) *Server {
	if opts.Scheduler == nil {
		opts.Scheduler = game.SystemScheduler
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 2 * time.Hour
	}
	s := &Server{r: chi.NewRouter(), opts: opts}

	// --- middleware ---
	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(10 * time.Second))
	s.r.Use(jsonContentType)
	s.r.Use(cors(opts.ClientOrigin))

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"service":"auditoria-iso","endpoints":["/health","/catalog","/results","POST /game","/game/*"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	s.r.Get("/catalog", s.handleCatalog)
	s.r.Get("/results", s.handleResults)

	s.r.Route("/game", func(r chi.Router) {
		r.Post("/", s.handleNewGame)
		r.Group(func(r chi.Router) {
			r.Use(s.withSession)
			r.Get("/", s.handleView)
			r.Post("/start", s.handleStart)
			r.Post("/select", s.handleSelect)
			r.Post("/next", s.handleNext)
			r.Delete("/", s.handleQuit)
		})
	})

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// Handler exposes the router (useful for tests and http.Server).
func (s *Server) Handler() http.Handler { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for a single origin.
func cors(origin string) func(http.Handler) http.Handler {
	if origin == "" {
		origin = "http://localhost:5173"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ------------------------------ CATALOG ------------------------------------

type levelSummary struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	PairCount   int    `json:"pairCount"`
}

type catalogRes struct {
	Title    string         `json:"title"`
	Subtitle string         `json:"subtitle"`
	Intro    []string       `json:"intro"`
	Levels   []levelSummary `json:"levels"`
}

// handleCatalog returns the intro screen text and the level list.
func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	cat := s.opts.Catalog
	res := catalogRes{Title: cat.Title, Subtitle: cat.Subtitle, Intro: cat.Intro}
	for _, lvl := range cat.Levels {
		res.Levels = append(res.Levels, levelSummary{
			Name:        lvl.Name,
			Description: lvl.Description,
			PairCount:   len(lvl.Pairs),
		})
	}
	_ = json.NewEncoder(w).Encode(res)
}
