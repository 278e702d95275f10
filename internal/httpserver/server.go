// internal/httpserver/server.go
//
// HTTP server wiring for the Turing backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs,
//     request logging).
//   - Public endpoints: "/", "/health", "/problems", "/problems/daily",
//     "/validators", "/metrics".
//   - Game endpoints: POST /games creates a session and returns a bearer
//     token; every /games/{id}/... route requires that token.
//
// Notes:
//   - One Game per session; the store serializes access per session.
//   - Secrets never leave the server except through the outcome of a guess.

package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/turing/internal/daily"
	"github.com/robalobadob/turing/internal/metrics"
	"github.com/robalobadob/turing/internal/problem"
	"github.com/robalobadob/turing/internal/store"
	"github.com/robalobadob/turing/internal/validator"
)

// Options carries the server's dependencies and settings.
type Options struct {
	Store          store.Store
	Problems       []problem.Problem
	Metrics        *metrics.Recorder   // nil disables game metrics
	Gatherer       prometheus.Gatherer // nil disables /metrics
	JWTSecret      string
	TokenTTL       time.Duration
	ClientOrigin   string
	DailySalt      string
	RequestTimeout time.Duration
	Now            func() time.Time
}

// Server bundles router, session store and the loaded problem set.
type Server struct {
	r        *chi.Mux
	store    store.Store
	problems []problem.Problem
	metrics  *metrics.Recorder
	tokens   tokenIssuer
	salt     string
	now      func() time.Time
}

// New constructs a Server, installs middleware, and registers routes.
func New(opts Options) *Server {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 10 * time.Second
	}
	s := &Server{
		r:        chi.NewRouter(),
		store:    opts.Store,
		problems: opts.Problems,
		metrics:  opts.Metrics,
		tokens:   tokenIssuer{secret: []byte(opts.JWTSecret), ttl: opts.TokenTTL, now: opts.Now},
		salt:     opts.DailySalt,
		now:      opts.Now,
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                    // add X-Request-ID
	s.r.Use(chimw.RealIP)                       // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(requestLogger)                      // one log line per request
	s.r.Use(chimw.Recoverer)                    // recover from panics
	s.r.Use(chimw.Timeout(opts.RequestTimeout)) // bound handler time
	s.r.Use(jsonContentType)                    // default JSON responses
	s.r.Use(cors(originOrDefault(opts.ClientOrigin)))

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"turing-go","endpoints":["/health","/problems","/validators","POST /games","/games/{id}/*"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	if opts.Gatherer != nil {
		s.r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	// --- catalogue ---
	s.r.Get("/problems", s.handleProblems)
	s.r.Get("/problems/daily", s.handleDaily)
	s.r.Get("/validators", s.handleValidators)

	// --- games ---
	s.mountGames()

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// Run serves HTTP on addr until ctx is cancelled, then drains in-flight
// requests.
func (s *Server) Run(ctx context.Context, addr string) error {
	hs := &http.Server{Addr: addr, Handler: s.r, ReadHeaderTimeout: 5 * time.Second}
	errc := make(chan error, 1)
	go func() { errc <- hs.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info().Msg("shutting down")
		return hs.Shutdown(shutdownCtx)
	}
}

// Handler exposes the router (useful for tests and custom http.Servers).
func (s *Server) Handler() http.Handler { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

func originOrDefault(origin string) string {
	if origin == "" {
		return "http://localhost:5173"
	}
	return origin
}

// cors enables CORS for a single origin. Session tokens travel in the
// Authorization header, so credentials are not needed.
func cors(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requestLogger writes one zerolog line per request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("elapsed", time.Since(start)).
			Str("requestId", chimw.GetReqID(r.Context())).
			Msg("request")
	})
}

// ------------------------------ catalogue ----------------------------------

type ruleView struct {
	ID          int    `json:"id"`
	Family      string `json:"family"`
	Description string `json:"description"`
}

func viewRule(r validator.Rule) ruleView {
	return ruleView{ID: r.ID, Family: r.Kind.String(), Description: r.Description}
}

type problemView struct {
	Index      int        `json:"index"`
	Number     int        `json:"number"`
	Difficulty int        `json:"difficulty"`
	Luck       int        `json:"luck"`
	Validators []ruleView `json:"validators"`
}

// handleProblems lists the playable problems without their secrets.
func (s *Server) handleProblems(w http.ResponseWriter, r *http.Request) {
	out := make([]problemView, 0, len(s.problems))
	for i, p := range s.problems {
		pv := problemView{Index: i, Number: p.Number(), Difficulty: p.Difficulty(), Luck: p.Luck()}
		for _, rule := range p.Rules() {
			pv.Validators = append(pv.Validators, viewRule(rule))
		}
		out = append(out, pv)
	}
	writeJSON(w, http.StatusOK, out)
}

// handleValidators lists the full validator library.
func (s *Server) handleValidators(w http.ResponseWriter, r *http.Request) {
	lib := validator.Library()
	out := make([]ruleView, len(lib))
	for i, rule := range lib {
		out[i] = viewRule(rule)
	}
	writeJSON(w, http.StatusOK, out)
}

type dailyRes struct {
	Date   string `json:"date"`
	Index  int    `json:"index"`
	Number int    `json:"number"`
}

// handleDaily reports today's problem.
func (s *Server) handleDaily(w http.ResponseWriter, r *http.Request) {
	if len(s.problems) == 0 {
		writeError(w, errNoProblemsLoaded, nil)
		return
	}
	now := s.now()
	idx := daily.ProblemIndex(now, s.salt, len(s.problems))
	writeJSON(w, http.StatusOK, dailyRes{Date: daily.DateKey(now), Index: idx, Number: s.problems[idx].Number()})
}

// ------------------------------- helpers -----------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("encode response")
	}
}
