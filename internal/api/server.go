// Package api exposes the dose calculation engine over HTTP: calculation,
// sensitivity, sweep, PDF worksheet, and beam dataset validation
// endpoints, plus health and Prometheus metrics. The engine is shared
// read-only across requests; each request decodes its own Inputs value.
package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/mucalc/mucalc/dose"
	"github.com/mucalc/mucalc/internal/config"
)

// Server wires the engine, config, metrics, and router together.
type Server struct {
	engine  *dose.Engine
	cfg     *config.Config
	metrics *Metrics
	limiter *rate.Limiter
	router  *mux.Router
}

// NewServer builds the HTTP surface over an engine. The registry may be
// shared with other subsystems; pass prometheus.NewRegistry() in tests.
func NewServer(engine *dose.Engine, cfg *config.Config, reg *prometheus.Registry) *Server {
	s := &Server{
		engine:  engine,
		cfg:     cfg,
		metrics: NewMetrics(reg),
	}
	if cfg.RateLimitRPS > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	}

	r := mux.NewRouter()
	r.Use(s.logging, s.cors, s.rateLimit)

	v1 := r.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/calculate", s.handleCalculate).Methods(http.MethodPost, http.MethodOptions)
	v1.HandleFunc("/sensitivity", s.handleSensitivity).Methods(http.MethodPost, http.MethodOptions)
	v1.HandleFunc("/sweep", s.handleSweep).Methods(http.MethodPost, http.MethodOptions)
	v1.HandleFunc("/report", s.handleReport).Methods(http.MethodPost, http.MethodOptions)
	v1.HandleFunc("/beamdata/import", s.handleBeamDataImport).Methods(http.MethodPost, http.MethodOptions)
	v1.HandleFunc("/beamdata", s.handleBeamDataInfo).Methods(http.MethodGet)

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	s.router = r
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }
