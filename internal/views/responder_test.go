package views

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"portal/internal/configuration"
	apierrors "portal/internal/errors"
	"portal/internal/helpers"
	"portal/internal/lang"
	"portal/internal/models"
	"portal/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestResponder(t *testing.T) (*Responder, *session.FlashStore) {
	t.Helper()
	translator, err := lang.New("en")
	require.NoError(t, err)
	store := session.NewFlashStore(testSecret, "/", false)
	responder, err := New(store, translator, "/admin")
	require.NoError(t, err)
	return responder, store
}

// followRedirect replays the cookies set by rec on a new request to path.
func followRedirect(rec *httptest.ResponseRecorder, path string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, cookie := range rec.Result().Cookies() {
		req.AddCookie(cookie)
	}
	return req
}

func TestRender(t *testing.T) {
	responder, _ := newTestResponder(t)

	t.Run("should render the forgot form with csrf token and base path", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/forgot", nil)
		req = req.WithContext(helpers.WithCSRFToken(req.Context(), "csrf-value"))
		rec := httptest.NewRecorder()

		err := responder.Render(rec, req, ViewForgotIndex, Data{"title": "Forgot Password"})
		require.NoError(t, err)

		body := rec.Body.String()
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
		assert.Contains(t, body, "<title>Forgot Password</title>")
		assert.Contains(t, body, `action="/admin/forgot"`)
		assert.Contains(t, body, `name="`+configuration.CSRFFieldName+`" value="csrf-value"`)
	})

	t.Run("should reject unknown views", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		err := responder.Render(httptest.NewRecorder(), req, "missing", nil)
		assert.Error(t, err)
	})
}

func TestRedirectWithMessage(t *testing.T) {
	responder, _ := newTestResponder(t)

	req := httptest.NewRequest(http.MethodPost, "/admin/forgot", nil)
	rec := httptest.NewRecorder()
	responder.RedirectWithMessage(rec, req, "/admin/forgot", models.Message{
		Body:     "We have e-mailed your password reset link!",
		Severity: models.SeverityInfo,
	})

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/admin/forgot", rec.Header().Get("Location"))

	next := httptest.NewRecorder()
	require.NoError(t, responder.Render(next, followRedirect(rec, "/admin/forgot"), ViewForgotIndex, nil))
	assert.Contains(t, next.Body.String(), "alert-info")
	assert.Contains(t, next.Body.String(), "We have e-mailed your password reset link!")
}

func TestRedirectWithErrors(t *testing.T) {
	responder, _ := newTestResponder(t)

	errs := models.ValidationErrors{}
	errs.Add("email", "The email must be a valid e-mail address.")

	req := httptest.NewRequest(http.MethodPost, "/admin/forgot", nil)
	rec := httptest.NewRecorder()
	responder.RedirectWithErrors(rec, req, "/admin/forgot", errs, map[string]string{"email": "not-an-email"})
	assert.Equal(t, http.StatusFound, rec.Code)

	next := httptest.NewRecorder()
	require.NoError(t, responder.Render(next, followRedirect(rec, "/admin/forgot"), ViewForgotIndex, nil))
	body := next.Body.String()
	assert.Contains(t, body, `value="not-an-email"`)
	assert.Contains(t, body, "The email must be a valid e-mail address.")
}

func TestRenderError(t *testing.T) {
	responder, _ := newTestResponder(t)

	t.Run("should keep api error status", func(t *testing.T) {
		rec := httptest.NewRecorder()
		responder.RenderError(rec, httptest.NewRequest(http.MethodGet, "/", nil), apierrors.ErrPageNotFound)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), apierrors.ErrPageNotFound.Status)
	})

	t.Run("should turn other errors into 500", func(t *testing.T) {
		rec := httptest.NewRecorder()
		responder.RenderError(rec, httptest.NewRequest(http.MethodGet, "/", nil), assert.AnError)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
