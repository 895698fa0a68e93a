package middlewares

import (
	"net"
	"net/http"
	"time"

	"portal/internal/helpers"

	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Logger attaches a request-scoped logger and the client address to the
// context and logs every completed request. It expects chi's RequestID and
// RealIP to run first.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ip := clientIP(r)

		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
		}
		if requestID := middleware.GetReqID(r.Context()); requestID != "" {
			w.Header().Set(middleware.RequestIDHeader, requestID)
			fields = append(fields, zap.String("request_id", requestID))
		}
		if span := trace.SpanContextFromContext(r.Context()); span.HasTraceID() {
			fields = append(fields, zap.String("trace_id", span.TraceID().String()))
		}
		logger := zap.L().With(fields...)

		ctx := helpers.WithLogger(r.Context(), logger)
		ctx = helpers.WithClientIP(ctx, ip)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		logger.Info("Request completed",
			zap.Int("status", status),
			zap.Int("bytes", ww.BytesWritten()),
			zap.String("client_ip", ip),
			zap.Duration("duration", time.Since(start)))
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
