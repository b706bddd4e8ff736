package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"fincalc/internal/amqp"
	"fincalc/internal/calculators"
	"fincalc/internal/finance"
	"fincalc/internal/format"
	"fincalc/internal/log"
	"fincalc/internal/middleware/trace"
)

const publishTimeout = 5 * time.Second

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// handlePage resolves the request path through the page dispatcher. Unknown
// paths render the not-found page with a 404.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	res := s.pages.Dispatch(r.URL.Path)
	page := res.Value
	page.Path = res.Path

	logger := log.FromContext(r.Context()).WithComponent(log.ComponentRouter)
	logger.DebugContext(r.Context(), "Route dispatched",
		log.FieldOperation, log.OpDispatch,
		log.FieldPath, res.Path,
		log.FieldRoute, page.Template,
		log.FieldNotFound, page.Status == http.StatusNotFound)

	s.writePage(w, r, page)
}

func (s *Server) writePage(w http.ResponseWriter, r *http.Request, page Page) {
	if page.Breadcrumbs == nil {
		page.Breadcrumbs = breadcrumbs(page.Path)
	}
	body, err := s.renderer.page(page)
	if err != nil {
		log.FromContext(r.Context()).WithComponent(log.ComponentTemplate).ErrorContext(r.Context(), "Page render failed",
			log.FieldError, err,
			log.FieldOperation, log.OpRender,
			"template", page.Template)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	status := page.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// handleCalculate runs a calculator on a submitted form. HTMX requests get
// the results fragment; plain form posts get the whole page back.
func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.FromContext(ctx).WithComponent(log.ComponentCalculator)
	id := r.PathValue("id")

	entry, calc, ok := s.lookupCalculator(id)
	if !ok {
		if isHTMX(r) {
			NotFoundError("Unknown calculator").Write(w)
			return
		}
		page := notFoundPage(nil)
		page.Path = r.URL.Path
		s.writePage(w, r, page)
		return
	}

	if err := r.ParseForm(); err != nil {
		logger.WarnContext(ctx, "Parse form error", log.FieldError, err, log.FieldCalculator, id)
		BadRequestError("Invalid form submission").Write(w)
		return
	}

	fields := calc.Fields()
	view := &CalculatorView{Entry: entry}

	in, err := calculators.ParseInput(fields, r.PostForm)
	if err != nil {
		var fieldErrs calculators.FieldErrors
		if !errors.As(err, &fieldErrs) {
			fieldErrs = calculators.FieldErrors{{Label: "Input", Reason: err.Error()}}
		}
		s.appMetrics.invalidInputs.Add(1)
		log.NewStructuredLogger(logger).LogRejectedInput(ctx, id, fieldErrs)

		view.Fields = fieldViews(fields, r.PostForm, fieldErrs)
		view.Results = invalidView(id, fieldErrs)
		s.writeCalculation(w, r, view, http.StatusUnprocessableEntity, func(b *HTMXResponseBuilder) {
			names := make([]string, len(fieldErrs))
			for i, fe := range fieldErrs {
				names[i] = fe.Field
			}
			b.TriggerValidationFailed(names)
		})
		return
	}

	start := time.Now()
	rs, cached, err := s.results.Compute(ctx, calc, in)
	if err != nil {
		if errors.Is(err, finance.ErrInvalidInput) {
			s.appMetrics.invalidInputs.Add(1)
			fieldErrs := engineFieldErrors(err, fields)
			view.Fields = fieldViews(fields, r.PostForm, fieldErrs)
			view.Results = invalidView(id, fieldErrs)
			s.writeCalculation(w, r, view, http.StatusUnprocessableEntity, nil)
			return
		}
		log.NewStructuredLogger(logger).LogError(ctx, "Calculation failed", err,
			log.ErrorTypeInternal, log.OpCompute, log.NewFields().WithCalculation(id, entry.Kind, false))
		InternalServerError("Calculation failed").Write(w)
		return
	}

	s.appMetrics.calculations.Add(1)
	log.NewStructuredLogger(logger).LogCalculation(ctx, id, entry.Kind, cached, time.Since(start))
	s.publish(ctx, amqp.NewCalculationEvent(id, entry.Kind, in, cached, trace.GetRequestID(ctx)))

	view.Fields = fieldViews(fields, r.PostForm, nil)
	view.Results = resultsView(id, rs, fields, in, s.formatter)
	s.writeCalculation(w, r, view, http.StatusOK, func(b *HTMXResponseBuilder) {
		b.TriggerCalculated(id, cached)
	})
}

// engineFieldErrors maps an engine precondition failure onto a form field
// with the same name where possible.
func engineFieldErrors(err error, fields []calculators.Field) calculators.FieldErrors {
	fe := &calculators.FieldError{Label: "Input", Reason: err.Error()}
	var inv *finance.InvalidInputError
	if errors.As(err, &inv) {
		fe.Label = inv.Field
		fe.Reason = inv.Reason
		for _, f := range fields {
			if f.Name == inv.Field {
				fe.Field = f.Name
				fe.Label = f.Label
			}
		}
	}
	return calculators.FieldErrors{fe}
}

func (s *Server) writeCalculation(w http.ResponseWriter, r *http.Request, view *CalculatorView, status int, decorate func(*HTMXResponseBuilder)) {
	if !isHTMX(r) {
		s.writePage(w, r, Page{
			Template:   "calculator",
			Title:      view.Entry.Name,
			Path:       "/calculator/" + view.Entry.ID,
			Status:     status,
			Calculator: view,
		})
		return
	}

	body, err := s.renderer.partial("results", view.Results)
	if err != nil {
		log.FromContext(r.Context()).WithComponent(log.ComponentTemplate).ErrorContext(r.Context(), "Results render failed",
			log.FieldError, err,
			log.FieldOperation, log.OpRender)
		InternalServerError("Could not render results").Write(w)
		return
	}
	b := NewHTMXResponse().Status(status).BodyHTML(body)
	if decorate != nil {
		decorate(b)
	}
	b.Write(w)
}

// publish sends the event without holding up the response. Shutdown waits
// for outstanding publishes.
func (s *Server) publish(ctx context.Context, event *amqp.CalculationEvent) {
	logger := log.FromContext(ctx).WithComponent(log.ComponentAMQP)
	ctx = context.WithoutCancel(ctx)

	s.events.Add(1)
	go func() {
		defer s.events.Done()
		ctx, cancel := context.WithTimeout(ctx, publishTimeout)
		defer cancel()
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.appMetrics.publishFailures.Add(1)
			errType := log.ErrorTypeNetwork
			if errors.Is(err, context.DeadlineExceeded) {
				errType = log.ErrorTypeTimeout
			}
			log.NewStructuredLogger(logger).LogWarning(ctx, "Failed to publish calculation event", err,
				errType, log.OpPublish, log.NewFields().WithCalculation(event.Calculator, event.Kind, event.CacheHit))
		}
	}()
}

// handleExport streams the amortization schedule for the query's loan as CSV.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.FromContext(ctx).WithComponent(log.ComponentHTTP)

	calc, ok := s.registry.Get(calculators.KindAmortization)
	if !ok {
		http.NotFound(w, r)
		return
	}
	in, err := calculators.ParseInput(calc.Fields(), r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	rs, _, err := s.results.Compute(ctx, calc, in)
	if err != nil {
		if errors.Is(err, finance.ErrInvalidInput) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		logger.ErrorContext(ctx, "Schedule export failed", log.FieldError, err, log.FieldOperation, log.OpExport)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="amortization-schedule.csv"`)
	if err := format.WriteScheduleCSV(w, rs.Schedule); err != nil {
		logger.ErrorContext(ctx, "Schedule export interrupted", log.FieldError, err, log.FieldOperation, log.OpExport)
		return
	}
	s.appMetrics.exports.Add(1)
	logger.InfoContext(ctx, "Schedule exported", log.FieldOperation, log.OpExport, log.FieldPeriods, len(rs.Schedule))
}

func (s *Server) handleServiceWorker(w http.ResponseWriter, r *http.Request) {
	body, err := s.renderer.serviceWorker(s.offlineVersion, s.precache)
	if err != nil {
		log.FromContext(r.Context()).WithComponent(log.ComponentTemplate).ErrorContext(r.Context(), "Service worker render failed", log.FieldError, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
	w.Header().Set("Service-Worker-Allowed", "/")
	_, _ = w.Write(body)
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WithComponent(log.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.securityDetector.ExtractClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path,
		"live", r.Header.Get(liveRecalcHeader) == "true")

	const msg = "Too many calculations. Please wait a moment and try again."
	if r.Header.Get(liveRecalcHeader) == "true" {
		// Keep the last results on screen while the user is typing.
		NewHTMXResponse().
			Status(http.StatusTooManyRequests).
			Header("HX-Reswap", "none").
			TriggerErrorNotification(msg).
			Write(w)
		return
	}
	TooManyRequestsError(msg).Write(w)
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.appMetrics.uptime).String(),
	})
}

// handleReady checks the result cache backend
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := map[string]any{
		"templates":   "ok",
		"calculators": len(s.registry.Kinds()),
		"routes":      len(s.pages.Routes()),
	}

	if err := s.results.Ping(ctx); err != nil {
		checks["cache"] = fmt.Sprintf("failed: %v", err)
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["cache"] = map[string]any{"backend": s.results.Backend(), "status": "ok"}
	}
	checks["rate_limiter"] = map[string]any{
		"active_clients":      s.rateLimiter.ActiveClients(),
		"active_live_clients": s.liveLimiter.ActiveClients(),
		"status":              "ok",
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics provides application and security metrics in plain text format
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	securityMetrics := s.securityDetector.GetMetrics()
	rateLimitMetrics := s.rateLimiter.GetMetrics()
	liveLimitMetrics := s.liveLimiter.GetMetrics()
	traceMetrics := s.traceMiddleware.GetMetrics()
	cacheStats := s.results.Stats()

	w.WriteHeader(http.StatusOK)

	counter := func(name, help string, value int64) {
		fmt.Fprintf(w, "# HELP %s %s\n", name, help)
		fmt.Fprintf(w, "# TYPE %s counter\n", name)
		fmt.Fprintf(w, "%s %d\n\n", name, value)
	}
	gauge := func(name, help string, value int64) {
		fmt.Fprintf(w, "# HELP %s %s\n", name, help)
		fmt.Fprintf(w, "# TYPE %s gauge\n", name)
		fmt.Fprintf(w, "%s %d\n\n", name, value)
	}

	counter("http_requests_total", "Total number of HTTP requests", traceMetrics.TotalRequests)
	counter("http_client_errors_total", "Responses with a 4xx status", traceMetrics.ClientErrors)
	counter("http_server_errors_total", "Responses with a 5xx status", traceMetrics.ServerErrors)
	gauge("http_response_time_avg_microseconds", "Average response time", traceMetrics.AverageResponseTime)

	counter("calculations_total", "Completed calculations", s.appMetrics.calculations.Load())
	counter("calculation_invalid_inputs_total", "Rejected calculator submissions", s.appMetrics.invalidInputs.Load())
	counter("schedule_exports_total", "Amortization schedules exported as CSV", s.appMetrics.exports.Load())
	counter("event_publish_failures_total", "Calculation events that could not be published", s.appMetrics.publishFailures.Load())

	counter("cache_hits_total", "Result cache hits", cacheStats.Hits)
	counter("cache_misses_total", "Result cache misses", cacheStats.Misses)
	counter("cache_shared_total", "Calculations shared with an identical in-flight request", cacheStats.Shared)
	counter("cache_failures_total", "Result cache backend failures", cacheStats.Failures)

	counter("rate_limit_hits_total", "Total rate limit hits", rateLimitMetrics.TotalHits)
	gauge("active_rate_limit_clients", "Currently tracked rate limit clients", rateLimitMetrics.ClientCount)
	counter("live_rate_limit_hits_total", "Live recalculations rejected by the rate limit", liveLimitMetrics.TotalHits)
	counter("suspicious_requests_total", "Total suspicious requests detected", securityMetrics.SuspiciousRequests)
	counter("invalid_forwarded_ip_total", "Malformed forwarding headers from trusted proxies", securityMetrics.InvalidForwardedIP)

	fmt.Fprintf(w, "# HELP uptime_seconds Application uptime in seconds\n")
	fmt.Fprintf(w, "# TYPE uptime_seconds gauge\n")
	fmt.Fprintf(w, "uptime_seconds %.0f\n", time.Since(s.appMetrics.uptime).Seconds())
}
