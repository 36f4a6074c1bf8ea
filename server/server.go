package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	cfg "github.com/go-kyugo/productapi/config"
	"github.com/go-kyugo/productapi/logger"
	"github.com/go-kyugo/productapi/middleware"
	"github.com/go-kyugo/productapi/router"
)

// Options configures the created server.
type Options struct {
	// Config carries the full application configuration. When nil the
	// package-level cfg.ConfigVar is used.
	Config *cfg.Config
	Logger *logger.Logger
	// Registry receives the HTTP metrics and backs /metrics. A fresh
	// registry with Go and process collectors is created when nil.
	Registry *prometheus.Registry
	// HealthCheck backs /healthcheck. A nil check always reports healthy.
	HealthCheck func(ctx context.Context) error
	// DefaultMiddlewares are applied after the built-in chain, in order.
	DefaultMiddlewares []func(http.Handler) http.Handler
}

type Server struct {
	srv    *http.Server
	logger *logger.Logger
	config *cfg.Config
	// services holds arbitrary service instances registered with the server.
	services map[string]interface{}
	svcMu    sync.RWMutex
	router   *router.Router
	shutdown time.Duration
}

// New builds the router with the standard middleware chain, mounts the
// health and metrics endpoints and prepares the http.Server.
func New(opts Options) (*Server, error) {
	c := opts.Config
	if c == nil {
		c = &cfg.ConfigVar
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}

	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector())
		reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}

	rt := router.New()
	rt.Use(
		middleware.RequestID,
		middleware.Logger(log),
		chimw.Recoverer,
		middleware.NewMetrics(reg, "productapi").Handler,
		middleware.CORS(c.Server.Cors),
	)
	if c.Server.MaxRequestBodyBytes > 0 {
		rt.Use(chimw.RequestSize(c.Server.MaxRequestBodyBytes))
	}
	rt.Use(opts.DefaultMiddlewares...)

	root := rt.Group("")
	root.Get("/healthcheck", healthHandler(log, opts.HealthCheck))
	root.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	srv := &http.Server{
		Addr:         c.Server.Addr(),
		Handler:      rt.Handler(),
		ReadTimeout:  time.Duration(c.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(c.Server.WriteTimeoutSeconds) * time.Second,
	}

	return &Server{
		srv:      srv,
		logger:   log,
		config:   c,
		services: make(map[string]interface{}),
		router:   rt,
		shutdown: time.Duration(c.Server.ShutdownTimeoutSecs) * time.Second,
	}, nil
}

func healthHandler(log *logger.Logger, check func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(r.Context()); err != nil {
				log.Warn("healthcheck failed", logger.Fields{"error": err.Error()})
				http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}

// RegisterRoutes invokes RegisterRoutes(*router.Router) on every controller
// that implements it.
func (s *Server) RegisterRoutes(ctrls ...interface{}) {
	for _, c := range ctrls {
		if r, ok := c.(interface{ RegisterRoutes(*router.Router) }); ok {
			r.RegisterRoutes(s.router)
		}
	}
}

// Handler returns the fully assembled handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

func (s *Server) Logger() *logger.Logger {
	return s.logger
}

func (s *Server) Config() *cfg.Config {
	return s.config
}

// Start serves until ctx is cancelled, then drains in-flight requests for up
// to the configured shutdown timeout.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("listen failed: %w", err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Start on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.logger.Info(fmt.Sprintf("Server.Start %s=%s", logger.Colorize("addr", "36"), ln.Addr().String()), nil)

	errCh := make(chan error, 1)
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("Server.Shutdown", logger.Fields{"timeout": s.shutdown.String()})
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdown)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return <-errCh
}

// RegisterService stores a service instance under the provided name.
func (s *Server) RegisterService(name string, svc interface{}) {
	if s == nil {
		return
	}
	s.svcMu.Lock()
	defer s.svcMu.Unlock()
	s.services[name] = svc
}

// Service returns a previously registered service by name or nil if not found.
func (s *Server) Service(name string) interface{} {
	if s == nil {
		return nil
	}
	s.svcMu.RLock()
	defer s.svcMu.RUnlock()
	return s.services[name]
}
