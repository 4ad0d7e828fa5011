// Package server exposes the assessment engine over an HTTP JSON API.
//
// Routes:
//
//	POST /v1/assessments        score one utterance
//	POST /v1/assessments/batch  score up to [MaxBatchSize] utterances
//	GET  /v1/languages          list languages with dedicated tables
//	GET  /v1/languages/{code}   show one language table
//	GET  /healthz, /readyz      liveness and readiness
//	GET  /metrics               Prometheus scrape endpoint
//
// The engine is held in an atomic pointer so a configuration reload can swap
// in a rebuilt engine while requests are in flight.
package server

import (
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/MrWong99/elocution/internal/assess"
	"github.com/MrWong99/elocution/internal/health"
	"github.com/MrWong99/elocution/internal/observe"
)

// MaxBatchSize is the largest number of requests accepted in one batch call.
const MaxBatchSize = 100

const defaultMaxBodyBytes = 1 << 20

var errTooManyRequests = errors.New("rate limit exceeded")

// Option is a functional option for configuring a [Server].
type Option func(*Server)

// WithMetrics sets the metrics used by the request middleware. Default:
// [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithGatherer sets the Prometheus gatherer served on /metrics. Default:
// [prometheus.DefaultGatherer].
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithMaxBodyBytes caps request body size. Default: 1 MiB.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

// WithRateLimit limits the /v1/ API to perSecond requests per second with
// the given burst. Requests over the limit get 429. perSecond <= 0 disables
// limiting (the default).
func WithRateLimit(perSecond float64, burst int) Option {
	return func(s *Server) {
		if perSecond <= 0 {
			s.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// Server serves the assessment API. It is safe for concurrent use.
type Server struct {
	engine atomic.Pointer[assess.Engine]

	metrics      *observe.Metrics
	gatherer     prometheus.Gatherer
	maxBodyBytes int64
	limiter      *rate.Limiter

	health  *health.Handler
	handler http.Handler
}

// New creates a [Server] around eng. eng may be nil, in which case the
// server reports not ready and rejects assessments until [Server.SetEngine]
// is called.
func New(eng *assess.Engine, opts ...Option) *Server {
	s := &Server{
		gatherer:     prometheus.DefaultGatherer,
		maxBodyBytes: defaultMaxBodyBytes,
	}
	for _, o := range opts {
		o(s)
	}
	if s.metrics == nil {
		s.metrics = observe.DefaultMetrics()
	}
	if eng != nil {
		s.engine.Store(eng)
	}

	engineLoaded := health.Loaded("engine", func() bool { return s.engine.Load() != nil })
	s.health = health.New(engineLoaded)

	mux := http.NewServeMux()
	mux.Handle("POST /v1/assessments", s.limit(s.handleAssess))
	mux.Handle("POST /v1/assessments/batch", s.limit(s.handleBatch))
	mux.Handle("GET /v1/languages", s.limit(s.handleLanguages))
	mux.Handle("GET /v1/languages/{code}", s.limit(s.handleLanguage))
	s.health.Register(mux)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	s.handler = observe.Middleware(s.metrics)(mux)
	return s
}

// limit wraps h with the configured rate limiter, if any.
func (s *Server) limit(h http.HandlerFunc) http.Handler {
	if s.limiter == nil {
		return h
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			w.Header().Set("Retry-After", "1")
			writeError(w, r, http.StatusTooManyRequests, errTooManyRequests)
			return
		}
		h(w, r)
	})
}

// SetEngine atomically replaces the engine used for new requests.
func (s *Server) SetEngine(eng *assess.Engine) {
	s.engine.Store(eng)
}

// Engine returns the engine currently serving requests, or nil.
func (s *Server) Engine() *assess.Engine {
	return s.engine.Load()
}

// SetDraining makes /readyz fail so traffic drains before shutdown.
func (s *Server) SetDraining() {
	s.health.SetDraining()
}

// ServeHTTP implements [http.Handler].
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}
