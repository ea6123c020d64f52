// Package metrics owns the process wide Prometheus registry and serves it over HTTP when enabled.
package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/myLogic207/boundedbuf/config"
	log "github.com/myLogic207/boundedbuf/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ErrInitConfig     = errors.New("error initializing metrics config")
	ErrListen         = errors.New("could not open metrics listener")
	ErrAlreadyServing = errors.New("metrics server already running")
	defaultConfig     = map[string]interface{}{
		"ACTIVE":  false,
		"ADDRESS": ":9090",
		"LOGGER": map[string]interface{}{
			"PREFIX": "METRICS",
		},
	}
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	registry *prometheus.Registry
	logger   log.Logger
	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
	served   chan struct{}
}

// NewServer creates a registry with Go runtime and process collectors.
// The registry is usable before Init, serving only starts in Init.
func NewServer() *Server {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &Server{
		registry: registry,
		logger:   log.Nop(),
	}
}

func (s *Server) Registry() *prometheus.Registry {
	return s.registry
}

// Handler serves /metrics and a /health probe.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{Registry: s.registry}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

func (s *Server) Init(ctx context.Context, options *config.Config) error {
	cfg, err := config.WithInitialValuesAndOptions(ctx, defaultConfig, options)
	if err != nil {
		return errors.Join(ErrInitConfig, err)
	}
	loggerConfig, err := cfg.GetConfig(ctx, "LOGGER")
	if err != nil {
		return errors.Join(ErrInitConfig, err)
	}
	logger, err := log.Init(ctx, loggerConfig)
	if err != nil {
		return errors.Join(ErrInitConfig, err)
	}
	active, err := cfg.GetBool(ctx, "ACTIVE")
	if err != nil {
		return errors.Join(ErrInitConfig, err)
	}
	address, _ := cfg.Get(ctx, "ADDRESS")

	s.mu.Lock()
	defer s.mu.Unlock()
	s.logger = logger
	if !active {
		s.logger.Debug(ctx, "Metrics endpoint disabled")
		return nil
	}
	if s.server != nil {
		return ErrAlreadyServing
	}

	listener, err := net.Listen("tcp", address)
	if err != nil {
		return errors.Join(ErrListen, err)
	}
	s.listener = listener
	s.server = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	s.served = make(chan struct{})
	go func() {
		defer close(s.served)
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error(context.Background(), "Metrics server failed: %s", err.Error())
		}
	}()
	s.logger.Info(ctx, "Serving metrics on %s", listener.Addr().String())
	return nil
}

// Addr returns the address the endpoint listens on, or "" when it is not serving.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *Server) Shutdown() error {
	s.mu.Lock()
	server, served := s.server, s.served
	s.server, s.listener, s.served = nil, nil, nil
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	var err error
	if server != nil {
		err = server.Shutdown(ctx)
		<-served
		s.logger.Info(ctx, "Metrics endpoint closed")
	}
	return errors.Join(err, s.logger.Shutdown(ctx))
}
