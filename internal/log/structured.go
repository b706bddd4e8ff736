package log

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// StructuredLogger writes the request and calculation records that share a
// fixed set of fields.
type StructuredLogger struct {
	logger *Logger
}

func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{
		logger: logger,
	}
}

// LogHTTPStart logs the start of an HTTP request
func (sl *StructuredLogger) LogHTTPStart(ctx context.Context, r *http.Request, clientIP string) {
	fields := NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.Header.Get("User-Agent"), r.Header.Get("Referer")).
		WithClientIP(clientIP)

	sl.logger.WithComponent(ComponentHTTP).InfoContext(ctx, "HTTP request started", fields.ToSlice()...)
}

// LogHTTPEnd logs the completion of an HTTP request. 4xx responses log at
// warn and 5xx at error.
func (sl *StructuredLogger) LogHTTPEnd(ctx context.Context, r *http.Request, statusCode int, durationMs int64, clientIP string) {
	level := slog.LevelInfo
	if statusCode >= 400 && statusCode < 500 {
		level = slog.LevelWarn
	} else if statusCode >= 500 {
		level = slog.LevelError
	}

	fields := NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, "", "").
		WithHTTPResponse(statusCode, durationMs, statusCode < 400).
		WithClientIP(clientIP).
		WithComponent(ComponentHTTP)

	sl.logger.Logger.Log(ctx, level, "HTTP request completed", fields.ToSlice()...)
}

// LogCalculation logs a completed calculator run
func (sl *StructuredLogger) LogCalculation(ctx context.Context, id, kind string, cacheHit bool, duration time.Duration) {
	fields := NewFields().
		WithCalculation(id, kind, cacheHit).
		WithOperation(OpCompute).
		ToSlice()

	fields = append(fields, FieldDuration, duration.Milliseconds(), FieldDurationHuman, duration.String())

	sl.logger.WithComponent(ComponentCalculator).InfoContext(ctx, "Calculation completed", fields...)
}

// LogRejectedInput records a form that failed validation. Users mistype
// all the time, so it only shows at debug level.
func (sl *StructuredLogger) LogRejectedInput(ctx context.Context, id string, err error) {
	fields := NewFields().
		WithFailure(err, ErrorTypeValidation).
		WithOperation(OpValidate)
	fields[FieldCalculator] = id

	sl.logger.DebugContext(ctx, "Rejected calculator input", fields.ToSlice()...)
}

// LogError logs err at error level, tagged with its category.
func (sl *StructuredLogger) LogError(ctx context.Context, msg string, err error, errType, operation string, fields LogFields) {
	sl.logFailure(ctx, slog.LevelError, msg, err, errType, operation, fields)
}

// LogWarning is LogError for failures the request survives.
func (sl *StructuredLogger) LogWarning(ctx context.Context, msg string, err error, errType, operation string, fields LogFields) {
	sl.logFailure(ctx, slog.LevelWarn, msg, err, errType, operation, fields)
}

func (sl *StructuredLogger) logFailure(ctx context.Context, level slog.Level, msg string, err error, errType, operation string, fields LogFields) {
	if fields == nil {
		fields = NewFields()
	}
	fields.WithFailure(err, errType).
		WithOperation(operation).
		WithComponent(sl.logger.Component())

	sl.logger.Logger.Log(ctx, level, msg, fields.ToSlice()...)
}
