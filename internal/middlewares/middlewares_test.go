package middlewares

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"portal/internal/cache"
	"portal/internal/configuration"
	apierrors "portal/internal/errors"
	"portal/internal/helpers"
	"portal/internal/models"
	"portal/internal/tests"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testJWTSecret  = "test-secret-key-for-guest-testing"
	testCSRFSecret = "0123456789abcdef0123456789abcdef"
	testCookie     = "portal_session"
)

type errorRecorder struct {
	errs []error
}

func (e *errorRecorder) RenderError(w http.ResponseWriter, _ *http.Request, err error) {
	e.errs = append(e.errs, err)
	code := http.StatusInternalServerError
	var apiErr *apierrors.APIError
	if errors.As(err, &apiErr) {
		code = apiErr.Code
	}
	w.WriteHeader(code)
}

func okHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
}

func TestLogger(t *testing.T) {
	t.Run("should expose logger, client ip and request id", func(t *testing.T) {
		var ip string
		var hasLogger bool
		handler := middleware.RequestID(Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip = helpers.GetClientIP(r.Context())
			hasLogger = helpers.GetLogger(r.Context()) != nil
			w.WriteHeader(http.StatusTeapot)
		})))

		req := httptest.NewRequest(http.MethodGet, "/forgot", nil)
		req.RemoteAddr = "203.0.113.7:51234"
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusTeapot, recorder.Code)
		assert.Equal(t, "203.0.113.7", ip)
		assert.True(t, hasLogger)
		assert.NotEmpty(t, recorder.Header().Get(middleware.RequestIDHeader))
	})
}

func TestGuest(t *testing.T) {
	user := &models.User{ID: uuid.New(), Email: "user@example.com"}
	guest := Guest(testJWTSecret, testCookie, "/admin")

	t.Run("should let anonymous requests through", func(t *testing.T) {
		var called bool
		recorder := httptest.NewRecorder()
		guest(okHandler(&called)).ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/admin/forgot", nil))

		assert.True(t, called)
		assert.Equal(t, http.StatusOK, recorder.Code)
	})

	t.Run("should ignore an invalid session cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/forgot", nil)
		req.AddCookie(&http.Cookie{Name: testCookie, Value: "garbage"})

		var called bool
		guest(okHandler(&called)).ServeHTTP(httptest.NewRecorder(), req)
		assert.True(t, called)
	})

	t.Run("should redirect a signed-in user home", func(t *testing.T) {
		token, err := helpers.NewSessionToken(testJWTSecret, user, time.Hour)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/admin/forgot", nil)
		req.AddCookie(&http.Cookie{Name: testCookie, Value: token})
		recorder := httptest.NewRecorder()

		var called bool
		guest(okHandler(&called)).ServeHTTP(recorder, req)

		assert.False(t, called)
		assert.Equal(t, http.StatusFound, recorder.Code)
		assert.Equal(t, "/admin", recorder.Header().Get("Location"))
	})

	t.Run("should answer JSON clients with forbidden", func(t *testing.T) {
		token, err := helpers.NewSessionToken(testJWTSecret, user, time.Hour)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/admin/forgot", nil)
		req.Header.Set("Accept", "application/json")
		req.AddCookie(&http.Cookie{Name: testCookie, Value: token})
		recorder := httptest.NewRecorder()

		var called bool
		guest(okHandler(&called)).ServeHTTP(recorder, req)

		expected := models.Error{Status: http.StatusForbidden, Error: []string{"ALREADY_AUTHENTICATED"}}
		tests.AssertJSONResponse(t, recorder, http.StatusForbidden, expected)
	})
}

// csrfCookie performs a GET and returns the issued cookie and token.
func csrfCookie(t *testing.T, handler http.Handler) (*http.Cookie, string) {
	t.Helper()

	var token string
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/forgot", nil))

	cookies := recorder.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, configuration.CSRFCookieName, cookies[0].Name)

	token, _, _ = strings.Cut(cookies[0].Value, ".")
	return cookies[0], token
}

func TestCSRF(t *testing.T) {
	views := &errorRecorder{}
	var seen string
	handler := CSRF(testCSRFSecret, "/", false, views)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = helpers.GetCSRFToken(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	postWith := func(cookie *http.Cookie, token string) *httptest.ResponseRecorder {
		form := url.Values{"email": {"user@example.com"}}
		if token != "" {
			form.Set(configuration.CSRFFieldName, token)
		}
		req := httptest.NewRequest(http.MethodPost, "/forgot", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		if cookie != nil {
			req.AddCookie(cookie)
		}
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, req)
		return recorder
	}

	t.Run("should issue a token on safe requests", func(t *testing.T) {
		_, token := csrfCookie(t, handler)
		assert.Len(t, token, 2*csrfTokenBytes)
		assert.Equal(t, token, seen)
	})

	t.Run("should accept a matching form token", func(t *testing.T) {
		cookie, token := csrfCookie(t, handler)

		recorder := postWith(cookie, token)
		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Empty(t, recorder.Result().Cookies(), "a valid cookie is not reissued")
	})

	t.Run("should accept the token in the header", func(t *testing.T) {
		cookie, token := csrfCookie(t, handler)

		req := httptest.NewRequest(http.MethodPost, "/forgot/reset", nil)
		req.Header.Set(configuration.CSRFHeaderName, token)
		req.AddCookie(cookie)
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusOK, recorder.Code)
	})

	t.Run("should reject a missing token", func(t *testing.T) {
		cookie, _ := csrfCookie(t, handler)
		views.errs = nil

		recorder := postWith(cookie, "")
		assert.Equal(t, apierrors.ErrCSRFMismatch.Code, recorder.Code)
		require.Len(t, views.errs, 1)
		assert.Equal(t, apierrors.ErrCSRFMismatch, views.errs[0])
	})

	t.Run("should reject a forged cookie", func(t *testing.T) {
		forged := &http.Cookie{Name: configuration.CSRFCookieName, Value: "abc.def"}

		recorder := postWith(forged, "abc")
		assert.Equal(t, apierrors.ErrCSRFMismatch.Code, recorder.Code)
	})

	t.Run("should reject a post without cookie", func(t *testing.T) {
		recorder := postWith(nil, "abc")
		assert.Equal(t, apierrors.ErrCSRFMismatch.Code, recorder.Code)
	})

	t.Run("should answer JSON clients with a JSON error", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/forgot", nil)
		req.Header.Set("Accept", "application/json")
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, req)

		expected := models.Error{Status: 419, Error: []string{"CSRF_TOKEN_MISMATCH"}}
		tests.AssertJSONResponse(t, recorder, 419, expected)
	})
}

type failingCache struct {
	cache.ICache
}

func (failingCache) GetRateLimit(string, int) (int, error) {
	return 0, errors.New("cache unavailable")
}

func TestRateLimit(t *testing.T) {
	t.Run("should answer 429 with Retry-After past the limit", func(t *testing.T) {
		views := &errorRecorder{}
		limiter := RateLimit(cache.NewMemoryCache(), 2, views)

		var calls int
		handler := limiter(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls++
			w.WriteHeader(http.StatusOK)
		}))

		var recorder *httptest.ResponseRecorder
		for range 3 {
			req := httptest.NewRequest(http.MethodPost, "/forgot", nil)
			req.RemoteAddr = "198.51.100.1:4000"
			recorder = httptest.NewRecorder()
			handler.ServeHTTP(recorder, req)
		}

		assert.Equal(t, 2, calls)
		assert.Equal(t, http.StatusTooManyRequests, recorder.Code)
		assert.NotEmpty(t, recorder.Header().Get("Retry-After"))
		require.Len(t, views.errs, 1)
		assert.Equal(t, apierrors.ErrTooManyTries, views.errs[0])
	})

	t.Run("should count clients separately", func(t *testing.T) {
		limiter := RateLimit(cache.NewMemoryCache(), 1, &errorRecorder{})

		for _, addr := range []string{"198.51.100.1:4000", "198.51.100.2:4000"} {
			var called bool
			req := httptest.NewRequest(http.MethodPost, "/forgot", nil)
			req.RemoteAddr = addr
			limiter(okHandler(&called)).ServeHTTP(httptest.NewRecorder(), req)
			assert.True(t, called, addr)
		}
	})

	t.Run("should let requests through when the cache fails", func(t *testing.T) {
		var called bool
		limiter := RateLimit(failingCache{}, 1, &errorRecorder{})
		limiter(okHandler(&called)).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/forgot", nil))

		assert.True(t, called)
	})
}
