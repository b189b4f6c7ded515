// Package logger configures the process-wide structured logger and the
// request correlation middleware.
package logger

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CorrelationIDHeader carries the request correlation id back to callers.
const CorrelationIDHeader = "X-Correlation-ID"

const correlationIDKey = "correlation_id"

type correlationCtxKey struct{}

// Init builds a JSON logger honoring the LOG_LEVEL environment variable
// (debug, info, warn, error; default info) and installs it as the process
// default. Records logged with a request context carry that request's
// correlation id.
func Init() (*slog.Logger, error) {
	level, err := parseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		return nil, err
	}

	log := slog.New(newContextHandler(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})))
	slog.SetDefault(log)
	return log, nil
}

func parseLevel(raw string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", raw)
	}
}

// Middleware tags every request with a correlation id: exposed to handlers
// via CorrelationID, stored in the request context for log records, and
// echoed in the response headers.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(CorrelationIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(correlationIDKey, id)
		c.Header(CorrelationIDHeader, id)

		ctx := context.WithValue(c.Request.Context(), correlationCtxKey{}, id)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// CorrelationID returns the request's correlation id, empty when the
// middleware did not run.
func CorrelationID(c *gin.Context) string {
	return c.GetString(correlationIDKey)
}

// contextHandler decorates records logged through a request context with
// that request's correlation id.
type contextHandler struct {
	slog.Handler
}

func newContextHandler(h slog.Handler) slog.Handler {
	return contextHandler{Handler: h}
}

func (h contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if id, ok := ctx.Value(correlationCtxKey{}).(string); ok && id != "" {
		r = r.Clone()
		r.AddAttrs(slog.String(correlationIDKey, id))
	}
	return h.Handler.Handle(ctx, r)
}

func (h contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return contextHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h contextHandler) WithGroup(name string) slog.Handler {
	return contextHandler{Handler: h.Handler.WithGroup(name)}
}
