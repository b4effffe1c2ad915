// Package web provides the HTTP server and JSON API for the import engine.
package web

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/koitrade/backoffice/internal/config"
	"github.com/koitrade/backoffice/internal/importer"
	"github.com/koitrade/backoffice/internal/store"
	"github.com/koitrade/backoffice/internal/web/middleware"
)

// Importer is the engine surface the handlers need.
type Importer interface {
	Validate(ctx context.Context, rows []importer.RawRow) (*importer.ValidationReport, error)
	Map(ctx context.Context, rows []importer.RawRow) (*importer.MappingResult, error)
	References(ctx context.Context) (*importer.ReferenceSet, error)
}

// Archive is the persistence surface the handlers need beyond the engine:
// committing mapped records, reading batch history, and the catalog
// maintenance the operator does between imports (adding the breeders and
// varieties a validation run reported missing, setting the rates).
type Archive interface {
	InsertKoiRecords(ctx context.Context, records []importer.CanonicalRecord, failedCount int) (*store.CommitResult, error)
	ListImportBatches(ctx context.Context, limit int) ([]store.ImportBatch, error)

	CreateBreeder(ctx context.Context, name string) (int, error)
	CreateVariety(ctx context.Context, name string) (int, error)
	SaveConfiguration(ctx context.Context, cfg importer.Configuration) error

	Ping(ctx context.Context) error
}

// Options tune the server independently of the engine.
type Options struct {
	MaxRows       int  // per-batch row cap, 0 = default
	RatePerMinute int  // per-IP request budget, 0 = default
	RateDisabled  bool // turn off the per-IP limiter (tests, trusted nets)

	// Security carries trusted proxy CIDRs and optional API key auth.
	// Nil means no trusted proxies and no auth.
	Security *config.SecurityConfig
}

// DefaultMaxRows caps a single import batch.
const DefaultMaxRows = 10000

// Server is the HTTP server for the import API.
type Server struct {
	engine  Importer
	archive Archive
	maxRows int
	router  *chi.Mux
	server  *http.Server
}

// NewServer wires the router, middleware and routes.
func NewServer(engine Importer, archive Archive, opts Options) *Server {
	if opts.MaxRows <= 0 {
		opts.MaxRows = DefaultMaxRows
	}
	if opts.RatePerMinute <= 0 {
		opts.RatePerMinute = 100
	}

	s := &Server{
		engine:  engine,
		archive: archive,
		maxRows: opts.MaxRows,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware(opts)
	s.setupRoutes(opts)
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware(opts Options) {
	s.router.Use(chimw.RequestID)

	if opts.Security != nil && len(opts.Security.TrustedProxies) > 0 {
		s.router.Use(middleware.TrustedRealIP(opts.Security.TrustedProxies))
	} else {
		s.router.Use(chimw.RealIP)
	}

	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(chimw.Compress(5))
	s.router.Use(chimw.Timeout(60 * time.Second))

	s.router.Use(securityHeaders)

	if !opts.RateDisabled {
		limiter := newRateLimiter(opts.RatePerMinute, time.Minute)
		s.router.Use(limiter.middleware)
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes(opts Options) {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		if opts.Security != nil {
			r.Use(middleware.APIKeyAuth(opts.Security))
		}

		// Import operations
		r.Post("/import", s.handleImport)
		r.Post("/import/commit", s.handleCommit)
		r.Get("/import/history", s.handleImportHistory)

		// Reference data for the operator screens, plus the catalog
		// maintenance validation runs point the operator at
		r.Get("/references", s.handleReferences)
		r.Post("/references/breeders", s.handleCreateBreeder)
		r.Post("/references/varieties", s.handleCreateVariety)
		r.Put("/configuration", s.handleSaveConfiguration)
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("starting server", "addr", addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'none'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		next.ServeHTTP(w, r)
	})
}

// rateLimiter implements a simple token bucket rate limiter per IP.
type rateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     int           // requests per window
	window   time.Duration // time window
}

type visitor struct {
	tokens    int
	lastReset time.Time
}

// newRateLimiter creates a rate limiter with the specified rate per window.
func newRateLimiter(rate int, window time.Duration) *rateLimiter {
	rl := &rateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate,
		window:   window,
	}
	go rl.cleanup()
	return rl
}

// cleanup removes stale visitor entries every minute.
func (rl *rateLimiter) cleanup() {
	for {
		time.Sleep(time.Minute)
		rl.mu.Lock()
		for ip, v := range rl.visitors {
			if time.Since(v.lastReset) > rl.window*2 {
				delete(rl.visitors, ip)
			}
		}
		rl.mu.Unlock()
	}
}

// allow checks if the request should be allowed and consumes a token if so.
func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[ip]
	if !exists {
		rl.visitors[ip] = &visitor{
			tokens:    rl.rate - 1,
			lastReset: time.Now(),
		}
		return true
	}

	if time.Since(v.lastReset) > rl.window {
		v.tokens = rl.rate - 1
		v.lastReset = time.Now()
		return true
	}

	if v.tokens <= 0 {
		return false
	}

	v.tokens--
	return true
}

// middleware returns an HTTP middleware that rate limits by IP.
func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := r.RemoteAddr
		if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
			ip = realIP
		}

		if !rl.allow(ip) {
			w.Header().Set("Retry-After", "60")
			respondErrorJSON(w, importer.UserMessage{
				Message: "Too many requests",
				Action:  "Please wait a moment before trying again",
				Code:    "RATE001",
			}, http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}
