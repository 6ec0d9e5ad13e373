package http

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"amortize/internal/format"
	applog "amortize/internal/log"
	"amortize/internal/middleware/ratelimit"
	"amortize/internal/middleware/security"
	"amortize/internal/middleware/trace"
	"amortize/internal/services"
	appweb "amortize/web"
)

// ReadinessCheck reports whether a dependency is usable.
type ReadinessCheck func(ctx context.Context) error

// Options configures a Server.
type Options struct {
	Addr       string
	Calculator *services.Calculator
	Logger     *applog.Logger

	// Formatter renders amounts; format.Default when nil.
	Formatter *format.Formatter

	// Limiter throttles the computation endpoints; nil disables it.
	Limiter *ratelimit.Limiter

	// Checks run on /readyz, keyed by dependency name.
	Checks map[string]ReadinessCheck

	// TrustedProxies are CIDRs whose forwarding headers are honoured
	// in addition to loopback and the private ranges.
	TrustedProxies []string
}

type Server struct {
	http.Server
	templates *template.Template
	calc      *services.Calculator
	format    *format.Formatter
	logger    *applog.Logger
	slog      *applog.StructuredLogger
	tracer    *trace.Middleware
	limiter   *ratelimit.Limiter
	checks    map[string]ReadinessCheck
	started   time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(opts Options) (*Server, error) {
	if opts.Calculator == nil {
		return nil, fmt.Errorf("new server: calculator is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = applog.Discard()
	}
	logger = logger.WithComponent(applog.ComponentHTTP)
	f := opts.Formatter
	if f == nil {
		f = format.Default
	}

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	ips := security.NewClientIPResolver()
	for _, cidr := range opts.TrustedProxies {
		if err := ips.AddTrustedProxy(cidr); err != nil {
			return nil, err
		}
	}

	s := &Server{
		templates: t,
		calc:      opts.Calculator,
		format:    f,
		logger:    logger,
		slog:      applog.NewStructuredLogger(logger),
		tracer:    trace.NewMiddleware(logger, ips.ClientIP),
		limiter:   opts.Limiter,
		checks:    opts.Checks,
		started:   time.Now(),
	}

	mux := http.NewServeMux()

	sub, err := fs.Sub(appweb.StaticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("mount static assets: %w", err)
	}
	static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
	mux.Handle("/static/", security.StaticAssetMiddleware(3600)(static))

	compute := func(h http.HandlerFunc, onLimit func(http.ResponseWriter, *http.Request)) http.Handler {
		if s.limiter == nil {
			return h
		}
		return s.limiter.Middleware(ips.ClientIP, onLimit)(h)
	}

	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.Handle("/ui/schedule", compute(s.handleSchedule, s.onLimitUI))
	mux.Handle("/api/schedule", compute(s.handleAPISchedule, s.onLimitAPI))

	var handler http.Handler = mux
	handler = security.Headers(security.DefaultHeadersConfig())(handler)
	handler = s.tracer.Handler(handler)

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.logger.InfoContext(ctx, "HTTP server shutting down", applog.FieldOperation, applog.OpShutdown)
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// RequestMetrics exposes the trace counters.
func (s *Server) RequestMetrics() trace.Metrics {
	return s.tracer.Metrics()
}

func (s *Server) onLimitUI(w http.ResponseWriter, r *http.Request) {
	s.logger.WithComponent(applog.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded", applog.FieldPath, r.URL.Path)
	TooManyRequestsError("Too many updates, please slow down.").Write(w)
}

func (s *Server) onLimitAPI(w http.ResponseWriter, r *http.Request) {
	s.logger.WithComponent(applog.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded", applog.FieldPath, r.URL.Path)
	_ = writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
}
