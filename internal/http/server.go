// Package http serves the calculator site: server-rendered pages resolved by
// the route dispatcher, HTMX calculation endpoints, the schedule CSV export,
// the offline worker and the operational endpoints.
package http

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"fincalc/internal/amqp"
	"fincalc/internal/cache"
	"fincalc/internal/calculators"
	"fincalc/internal/catalog"
	"fincalc/internal/format"
	"fincalc/internal/log"
	"fincalc/internal/middleware/ratelimit"
	"fincalc/internal/middleware/security"
	"fincalc/internal/middleware/trace"
	"fincalc/internal/router"
	appweb "fincalc/web"
)

// Options wires the server to its collaborators. Zero values get working
// defaults: the embedded catalog, every calculator, no result cache and no
// event publishing.
type Options struct {
	Addr                string
	Catalog             *catalog.Catalog
	Registry            *calculators.Registry
	Results             *cache.ResultCache
	Publisher           amqp.Publisher
	Logger              *log.Logger
	RateLimitPerMinute  int
	OfflineCacheVersion string
	// LiveRateLimitPerMinute budgets recalculations sent while the user
	// types. Defaults to four times RateLimitPerMinute.
	LiveRateLimitPerMinute int
	TrustedProxies         []string
}

// liveRecalcHeader marks a calculation fired by typing rather than a submit.
const liveRecalcHeader = "X-Calc-Live"

// Server is the calculator web server.
type Server struct {
	http.Server

	logger    *log.Logger
	catalog   *catalog.Catalog
	registry  *calculators.Registry
	results   *cache.ResultCache
	publisher amqp.Publisher
	formatter *format.Formatter
	renderer  *renderer
	pages     *router.Dispatcher[Page]

	offlineVersion string
	precache       []string

	rateLimiter      *ratelimit.Limiter
	liveLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware

	appMetrics   appMetrics
	events       sync.WaitGroup
	shutdownOnce sync.Once
}

type appMetrics struct {
	calculations    atomic.Int64
	invalidInputs   atomic.Int64
	exports         atomic.Int64
	publishFailures atomic.Int64
	uptime          time.Time
}

// NewServer configures routes, templates and middleware, returning a
// ready-to-run server.
func NewServer(opts Options) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewNop()
	}
	registry := opts.Registry
	if registry == nil {
		registry = calculators.Default()
	}
	cat := opts.Catalog
	if cat == nil {
		var err error
		if cat, err = catalog.Load(registry.Kinds()...); err != nil {
			return nil, fmt.Errorf("load catalog: %w", err)
		}
	}
	results := opts.Results
	if results == nil {
		results = cache.NewResultCache(cache.NopStore{}, logger)
	}
	publisher := opts.Publisher
	if publisher == nil {
		publisher = amqp.NopPublisher{}
	}
	version := opts.OfflineCacheVersion
	if version == "" {
		version = "v1"
	}

	rend, err := newRenderer(appweb.TemplatesFS, appweb.ServiceWorker)
	if err != nil {
		return nil, err
	}
	static, err := fs.Sub(appweb.StaticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("mount static assets: %w", err)
	}

	limitConfig := ratelimit.DefaultConfig()
	if opts.RateLimitPerMinute > 0 {
		limitConfig.RequestsPerMinute = opts.RateLimitPerMinute
	}
	liveConfig := limitConfig
	liveConfig.RequestsPerMinute = 4 * limitConfig.RequestsPerMinute
	if opts.LiveRateLimitPerMinute > 0 {
		liveConfig.RequestsPerMinute = opts.LiveRateLimitPerMinute
	}

	detector := security.NewDetector()
	for _, cidr := range opts.TrustedProxies {
		if err := detector.AddTrustedProxy(cidr); err != nil {
			return nil, err
		}
	}

	s := &Server{
		logger:           logger.WithComponent(log.ComponentHTTP),
		catalog:          cat,
		registry:         registry,
		results:          results,
		publisher:        publisher,
		formatter:        format.USD(),
		renderer:         rend,
		offlineVersion:   version,
		rateLimiter:      ratelimit.NewLimiter(limitConfig),
		liveLimiter:      ratelimit.NewLimiter(liveConfig),
		securityDetector: detector,
	}
	s.appMetrics.uptime = time.Now()
	s.traceMiddleware = trace.NewMiddleware(logger, s.securityDetector.ExtractClientIP)
	s.pages = s.newPages()

	featured := make([]string, 0)
	for _, e := range cat.Featured() {
		featured = append(featured, e.ID)
	}
	s.precache = precacheAssets(static, featured)

	mux := http.NewServeMux()

	staticHandler := http.StripPrefix("/static/", http.FileServer(http.FS(static)))
	mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(staticHandler))
	mux.Handle("GET /sw.js", security.NoCacheMiddleware(http.HandlerFunc(s.handleServiceWorker)))

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	limited := s.rateLimiter.Middleware(s.securityDetector.ExtractClientIP, s.handleRateLimited)
	liveLimited := s.liveLimiter.Middleware(s.securityDetector.ExtractClientIP, s.handleRateLimited)
	calculate := http.HandlerFunc(s.handleCalculate)
	mux.Handle("POST /calculator/{id}", byRecalcMode(liveLimited(calculate), limited(calculate)))
	mux.Handle("GET "+exportPath, limited(http.HandlerFunc(s.handleExport)))

	// Every other GET is a page resolved by the dispatcher, including 404s.
	mux.HandleFunc("GET /", s.handlePage)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	var handler http.Handler = mux
	handler = headers.Middleware(handler)
	handler = s.securityDetector.Middleware(handler)
	handler = s.traceMiddleware.Middleware(handler)

	s.Server = http.Server{
		Addr:           opts.Addr,
		Handler:        handler,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16,
	}
	return s, nil
}

// byRecalcMode sends live recalculations and submits through separate
// rate-limit budgets.
func byRecalcMode(live, submit http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(liveRecalcHeader) == "true" {
			live.ServeHTTP(w, r)
			return
		}
		submit.ServeHTTP(w, r)
	})
}

// Pages exposes the page route table.
func (s *Server) Pages() *router.Dispatcher[Page] {
	return s.pages
}

// Shutdown stops accepting requests, waits for in-flight event publishing
// and stops the rate limiters.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		shutdownErr = s.Server.Shutdown(ctx)

		done := make(chan struct{})
		go func() {
			s.events.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-ctx.Done():
			s.logger.Warn("Shutdown timed out waiting for event publishing", log.FieldOperation, log.OpShutdown)
		}

		s.rateLimiter.Stop()
		s.liveLimiter.Stop()
	})

	return shutdownErr
}
