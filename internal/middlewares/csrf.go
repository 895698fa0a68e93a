package middlewares

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"

	"portal/internal/configuration"
	apierrors "portal/internal/errors"
	"portal/internal/helpers"

	"go.uber.org/zap"
)

const csrfTokenBytes = 32

// ErrorRenderer renders the generic error page.
type ErrorRenderer interface {
	RenderError(w http.ResponseWriter, r *http.Request, err error)
}

// CSRF implements the double-submit cookie check. Every request gets a token
// in its context; state changing requests must echo it back in the form field
// or the header, and the cookie must carry a valid signature.
func CSRF(secret string, path string, secure bool, views ErrorRenderer) func(next http.Handler) http.Handler {
	key := []byte(secret)
	if path == "" {
		path = "/"
	}

	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			token, ok := readCSRFCookie(r, key)

			if !isSafeMethod(r.Method) {
				submitted := r.Header.Get(configuration.CSRFHeaderName)
				if submitted == "" {
					submitted = r.PostFormValue(configuration.CSRFFieldName)
				}
				if !ok || subtle.ConstantTimeCompare([]byte(submitted), []byte(token)) != 1 {
					helpers.GetLogger(r.Context()).Warn("CSRF token mismatch",
						zap.Bool("cookie_valid", ok),
						zap.Bool("token_submitted", submitted != ""))
					rejectCSRF(w, r, views)
					return
				}
			}

			if !ok {
				var err error
				token, err = newCSRFToken()
				if err != nil {
					helpers.GetLogger(r.Context()).Error("Failed to generate CSRF token", zap.Error(err))
					views.RenderError(w, r, apierrors.ErrInternal)
					return
				}
				http.SetCookie(w, &http.Cookie{
					Name:     configuration.CSRFCookieName,
					Value:    token + "." + signCSRF(key, token),
					Path:     path,
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := helpers.WithCSRFToken(r.Context(), token)
			next.ServeHTTP(w, r.WithContext(ctx))
		}
		return http.HandlerFunc(fn)
	}
}

func rejectCSRF(w http.ResponseWriter, r *http.Request, views ErrorRenderer) {
	if helpers.WantsJSON(r) {
		helpers.RespondWithError(w, apierrors.ErrCSRFMismatch.Code, []string{apierrors.ErrCSRFMismatch.Status})
		return
	}
	views.RenderError(w, r, apierrors.ErrCSRFMismatch)
}

// readCSRFCookie returns the token of the request cookie when its signature
// matches.
func readCSRFCookie(r *http.Request, key []byte) (string, bool) {
	cookie, err := r.Cookie(configuration.CSRFCookieName)
	if err != nil {
		return "", false
	}

	token, signature, found := strings.Cut(cookie.Value, ".")
	if !found || token == "" {
		return "", false
	}
	if !hmac.Equal([]byte(signature), []byte(signCSRF(key, token))) {
		return "", false
	}
	return token, true
}

func newCSRFToken() (string, error) {
	b := make([]byte, csrfTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func signCSRF(key []byte, token string) string {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(token))
	return hex.EncodeToString(mac.Sum(nil))
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	default:
		return false
	}
}
