package router

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-auth-go/internal/account"
	"github.com/ovaphlow/pitchfork/service-auth-go/internal/gate"
	"github.com/ovaphlow/pitchfork/service-auth-go/internal/health"
	"github.com/ovaphlow/pitchfork/service-auth-go/internal/metrics"
	"github.com/ovaphlow/pitchfork/service-auth-go/pkg/utilities"
)

// RequestIDHeader carries the per-request id, echoed back to the client.
const RequestIDHeader = "X-Request-ID"

// loggingResponseWriter wraps http.ResponseWriter to capture status and size.
type loggingResponseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.status = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Write(b []byte) (int, error) {
	if lrw.status == 0 {
		lrw.status = http.StatusOK
	}
	n, err := lrw.ResponseWriter.Write(b)
	lrw.size += n
	return n, err
}

// LoggingMiddleware logs each request at debug level and records it in m.
func LoggingMiddleware(logger *zap.SugaredLogger, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lrw := &loggingResponseWriter{ResponseWriter: w}
			next.ServeHTTP(lrw, r)
			dur := time.Since(start)
			status := lrw.status
			if status == 0 {
				status = http.StatusOK
			}
			m.RecordRequest(r.Method, routeLabel(r), status, dur.Seconds())
			logger.Debugw("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"request_id", w.Header().Get(RequestIDHeader),
				"remote", r.RemoteAddr,
				"status", status,
				"duration_ms", float64(dur.Microseconds())/1000.0,
				"size", lrw.size,
			)
		})
	}
}

// RequestIDMiddleware keeps a caller-supplied X-Request-ID or assigns a
// snowflake id, and sets it on the response.
func RequestIDMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(RequestIDHeader)
			if id == "" || len(id) > 128 {
				id = utilities.NewSnowflakeID()
			}
			w.Header().Set(RequestIDHeader, id)
			next.ServeHTTP(w, r)
		})
	}
}

// SecurityHeadersMiddleware returns a middleware that sets common HTTP security headers.
func SecurityHeadersMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "no-referrer")
			// responses carry tokens
			w.Header().Set("Cache-Control", "no-store")
			if w.Header().Get("Content-Security-Policy") == "" {
				w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none';")
			}
			if r.TLS != nil {
				w.Header().Set("Strict-Transport-Security", "max-age=2592000; includeSubDomains")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Deps are the handlers the routes dispatch to.
type Deps struct {
	Logger  *zap.SugaredLogger
	Account *account.Handler
	Gate    *gate.Gate
	Health  *health.Handler
	Metrics *metrics.Metrics
}

// RegisterRoutes mounts HTTP handlers on the standard library's http.ServeMux.
func RegisterRoutes(d Deps) http.Handler {
	if d.Logger == nil {
		d.Logger = zap.NewNop().Sugar()
	}
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/signup", d.Account.Signup)
	mux.HandleFunc("POST /api/auth/login", d.Account.Login)

	authenticated := d.Gate.Middleware("authenticate", d.Gate.Authenticate)
	admin := d.Gate.Middleware("require_admin", d.Gate.RequireAdmin)
	mux.Handle("GET /api/auth/me", authenticated(http.HandlerFunc(d.Account.Me)))
	mux.Handle("GET /api/tenant", admin(http.HandlerFunc(d.Account.Tenant)))

	if d.Health != nil {
		mux.HandleFunc("GET /api/health", d.Health.Health)
		mux.HandleFunc("GET /api/health/simple", d.Health.Simple)
	}
	if d.Metrics != nil {
		mux.Handle("GET /metrics", d.Metrics.Handler())
	}

	return RequestIDMiddleware()(LoggingMiddleware(d.Logger, d.Metrics)(SecurityHeadersMiddleware()(mux)))
}

// routeLabel bounds metric cardinality to the known routes.
func routeLabel(r *http.Request) string {
	switch p := r.URL.Path; p {
	case "/api/auth/signup", "/api/auth/login", "/api/auth/me", "/api/tenant",
		"/api/health", "/api/health/simple", "/metrics":
		return p
	default:
		return "other"
	}
}
