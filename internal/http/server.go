// Package http exposes localized resource lookups over HTTP, with health
// checks and prometheus metrics.
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"locres/internal/core"
	"locres/internal/ratelimit"
	"locres/internal/registry"
	"locres/pkg/langmatch"
	"locres/pkg/locfile"
)

type Server struct {
	config   *core.ServerConfig
	logger   *zap.Logger
	registry *registry.Registry
	language string
	limiter  *ratelimit.Limiter
	server   *http.Server
	metrics  *Metrics
}

type Metrics struct {
	LookupsTotal     *prometheus.CounterVec
	FallbacksTotal   prometheus.Counter
	StoreLoadErrors  prometheus.Counter
	RateLimitedTotal prometheus.Counter
	RequestDuration  *prometheus.HistogramVec
}

// lookupResponse is the body for successful template lookups. The template is
// returned raw: color markers and variable placeholders are the caller's to
// process.
type lookupResponse struct {
	Language string `json:"language"`
	Template string `json:"template"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewServer wires the lookup routes and registers metrics on the global
// prometheus registry. defaultLanguage is used when neither the lang query
// parameter nor the Accept-Language header selects an available language.
func NewServer(config *core.ServerConfig, logger *zap.Logger, reg *registry.Registry, defaultLanguage string) *Server {
	metrics := newMetrics()

	prometheus.MustRegister(
		metrics.LookupsTotal,
		metrics.FallbacksTotal,
		metrics.StoreLoadErrors,
		metrics.RateLimitedTotal,
		metrics.RequestDuration,
	)

	s := &Server{
		config:   config,
		logger:   logger,
		registry: reg,
		language: defaultLanguage,
		metrics:  metrics,
	}
	if config.RateLimitPerMinute > 0 {
		s.limiter = ratelimit.New(config.RateLimitPerMinute)
	}
	s.server = createHTTPServer(config, s.setupRoutes())

	return s
}

func newMetrics() *Metrics {
	return &Metrics{
		LookupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "locres_lookups_total",
				Help: "Total number of template lookups",
			},
			[]string{"table", "status"},
		),
		FallbacksTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "locres_language_fallbacks_total",
				Help: "Total number of lookups answered by the default language",
			},
		),
		StoreLoadErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "locres_store_load_errors_total",
				Help: "Total number of failed resource store loads",
			},
		),
		RateLimitedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "locres_rate_limited_total",
				Help: "Total number of requests rejected by rate limiting",
			},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "locres_request_duration_seconds",
				Help:    "Time spent serving lookup requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
	}
}

func createHTTPServer(config *core.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      handler,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	}
}

func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok","service":"locres"}`))
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ready","service":"locres"}`))
	})

	mux.Handle("/metrics", promhttp.Handler())

	mux.Handle("GET /v1/errors/{code}", s.limited(s.handleErrorLookup))
	mux.Handle("GET /v1/messages/{key}", s.limited(s.handleMessageLookup))
	mux.Handle("GET /v1/languages", s.limited(s.handleLanguages))

	return mux
}

// limited wraps a lookup handler with per-client rate limiting, keyed by
// remote address.
func (s *Server) limited(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil {
			host, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				host = r.RemoteAddr
			}
			if !s.limiter.Allow(host) {
				s.metrics.RateLimitedTotal.Inc()
				writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded"})
				return
			}
		}
		next(w, r)
	})
}

func (s *Server) handleErrorLookup(w http.ResponseWriter, r *http.Request) {
	defer s.observeDuration("errors", time.Now())

	code, err := strconv.Atoi(r.PathValue("code"))
	if err != nil {
		s.metrics.LookupsTotal.WithLabelValues("error_codes", "bad_request").Inc()
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "error code must be an integer"})
		return
	}

	store, ok := s.storeFor(w, r, "error_codes")
	if !ok {
		return
	}

	template, err := store.GetErrorMsg(code)
	if err != nil {
		s.metrics.LookupsTotal.WithLabelValues("error_codes", "miss").Inc()
		writeJSON(w, http.StatusNotFound, errorResponse{Error: fmt.Sprintf("unknown error code %d", code)})
		return
	}

	s.metrics.LookupsTotal.WithLabelValues("error_codes", "hit").Inc()
	writeJSON(w, http.StatusOK, lookupResponse{Language: store.ResolvedLanguage(), Template: template})
}

func (s *Server) handleMessageLookup(w http.ResponseWriter, r *http.Request) {
	defer s.observeDuration("messages", time.Now())

	key := r.PathValue("key")

	store, ok := s.storeFor(w, r, "messages")
	if !ok {
		return
	}

	template, err := store.GetMsg(key)
	if err != nil {
		s.metrics.LookupsTotal.WithLabelValues("messages", "miss").Inc()
		writeJSON(w, http.StatusNotFound, errorResponse{Error: fmt.Sprintf("unknown message key %q", key)})
		return
	}

	s.metrics.LookupsTotal.WithLabelValues("messages", "hit").Inc()
	writeJSON(w, http.StatusOK, lookupResponse{Language: store.ResolvedLanguage(), Template: template})
}

func (s *Server) handleLanguages(w http.ResponseWriter, _ *http.Request) {
	defer s.observeDuration("languages", time.Now())

	languages, err := s.registry.Languages()
	if err != nil {
		s.logger.Error("Failed to list languages", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "cannot list languages"})
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"languages": languages})
}

// storeFor resolves the request's language and fetches the matching store.
// On failure it writes the error response and returns ok=false.
func (s *Server) storeFor(w http.ResponseWriter, r *http.Request, table string) (*locfile.Store, bool) {
	language := s.selectLanguage(r)

	store, err := s.registry.Get(language)
	if err != nil {
		s.metrics.StoreLoadErrors.Inc()
		s.metrics.LookupsTotal.WithLabelValues(table, "unavailable").Inc()
		s.logger.Error("Failed to load resource store",
			zap.String("language", language),
			zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "no resource file available"})
		return nil, false
	}

	if store.ResolvedLanguage() != language {
		s.metrics.FallbacksTotal.Inc()
	}

	return store, true
}

// selectLanguage picks the language for a request: explicit lang parameter
// first, then Accept-Language against the languages on disk, then the
// configured default.
func (s *Server) selectLanguage(r *http.Request) string {
	if lang := r.URL.Query().Get("lang"); lang != "" {
		return lang
	}

	if header := r.Header.Get("Accept-Language"); header != "" {
		available, err := s.registry.Languages()
		if err == nil {
			if lang, ok := langmatch.Pick(available, langmatch.FromHeader(header)...); ok {
				return lang
			}
		}
	}

	return s.language
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (s *Server) observeDuration(endpoint string, start time.Time) {
	s.metrics.RequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}

func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting HTTP server",
		zap.String("addr", s.server.Addr))

	go func() {
		<-ctx.Done()
		s.logger.Info("Shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Failed to shutdown HTTP server gracefully", zap.Error(err))
		}

		if s.limiter != nil {
			s.limiter.Stop()
		}
	}()

	if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	return nil
}

func (s *Server) GetMetrics() *Metrics {
	return s.metrics
}
