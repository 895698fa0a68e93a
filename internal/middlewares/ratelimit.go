package middlewares

import (
	"net/http"
	"strconv"

	"portal/internal/cache"
	apierrors "portal/internal/errors"
	"portal/internal/helpers"

	"go.uber.org/zap"
)

// RateLimit counts requests per client address in the shared cache and
// answers 429 with Retry-After once requestsPerMinute is exceeded. Cache
// failures let the request through.
func RateLimit(c cache.ICache, requestsPerMinute int, views ErrorRenderer) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			ip := helpers.GetClientIP(r.Context())
			if ip == "" {
				ip = clientIP(r)
			}

			retryAfter, err := c.GetRateLimit(ip, requestsPerMinute)
			if err != nil {
				helpers.GetLogger(r.Context()).Error("Failed to check rate limit", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			if retryAfter > 0 {
				helpers.GetLogger(r.Context()).Warn("Rate limit exceeded",
					zap.String("client_ip", ip),
					zap.Int("retry_after", retryAfter))
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				if helpers.WantsJSON(r) {
					helpers.RespondWithError(w, apierrors.ErrTooManyTries.Code, []string{apierrors.ErrTooManyTries.Status})
					return
				}
				views.RenderError(w, r, apierrors.ErrTooManyTries)
				return
			}

			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(fn)
	}
}
