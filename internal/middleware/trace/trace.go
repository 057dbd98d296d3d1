package trace

import (
	"context"
	"log/slog"
	"net/http"
	"regexp"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

type ContextKey string

const (
	RequestIDKey ContextKey = "request_id"

	// HeaderRequestID is read from the request and echoed on the response.
	HeaderRequestID = "X-Request-ID"
)

var validRequestID = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

// Middleware handles request tracing and logging
type Middleware struct {
	extractIP func(*http.Request) string
	metrics   *Metrics
}

type Metrics struct {
	TotalRequests  int64
	ServerErrors   int64
	LastDurationMs int64
}

func NewMiddleware(extractIP func(*http.Request) string) *Middleware {
	return &Middleware{
		extractIP: extractIP,
		metrics:   &Metrics{},
	}
}

func (m *Middleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := ""
		if m.extractIP != nil {
			clientIP = m.extractIP(r)
		}

		requestID := r.Header.Get(HeaderRequestID)
		if !validRequestID.MatchString(requestID) {
			requestID = GenerateRequestID()
		}
		w.Header().Set(HeaderRequestID, requestID)

		ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
		r = r.WithContext(ctx)

		slog.DebugContext(ctx, "HTTP request started",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"query", r.URL.RawQuery,
			"client_ip", clientIP,
			"htmx", r.Header.Get("HX-Request") == "true")

		atomic.AddInt64(&m.metrics.TotalRequests, 1)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start)
		atomic.StoreInt64(&m.metrics.LastDurationMs, duration.Milliseconds())

		logLevel := slog.LevelInfo
		if rw.statusCode >= 400 && rw.statusCode < 500 {
			logLevel = slog.LevelWarn
		} else if rw.statusCode >= 500 {
			logLevel = slog.LevelError
			atomic.AddInt64(&m.metrics.ServerErrors, 1)
		}

		slog.Log(ctx, logLevel, "HTTP request completed",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status_code", rw.statusCode,
			"duration_ms", duration.Milliseconds(),
			"duration_human", duration.String(),
			"client_ip", clientIP,
			"success", rw.statusCode < 400)
	})
}

// responseWriter captures the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}

func GenerateRequestID() string {
	return "req_" + uuid.NewString()
}

func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

// RequestIDFromRequest adapts GetRequestID for request based callers.
func RequestIDFromRequest(r *http.Request) string {
	return GetRequestID(r.Context())
}

func (m *Middleware) GetMetrics() Metrics {
	return Metrics{
		TotalRequests:  atomic.LoadInt64(&m.metrics.TotalRequests),
		ServerErrors:   atomic.LoadInt64(&m.metrics.ServerErrors),
		LastDurationMs: atomic.LoadInt64(&m.metrics.LastDurationMs),
	}
}
