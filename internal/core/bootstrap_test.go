package core

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	c "portal/internal/cache"
	"portal/internal/configuration"
	"portal/internal/database"
	apierrors "portal/internal/errors"
	"portal/internal/helpers"
	"portal/internal/lang"
	"portal/internal/models"
	"portal/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var csrfInput = regexp.MustCompile(`name="_token" value="([0-9a-f]+)"`)

type portalFixture struct {
	handler http.Handler
	events  *EventsManager
	cookies map[string]*http.Cookie
}

func newPortal(t *testing.T) *portalFixture {
	t.Helper()

	config := models.Configuration{
		App: models.AppConfiguration{
			BasePath:          "/admin",
			WebURL:            "http://localhost:8080",
			JWTSecret:         "jwt-secret-for-router-tests",
			CSRFSecret:        "0123456789abcdef0123456789abcdef",
			SessionCookie:     "portal_session",
			ResetTokenExpiry:  60,
			ResetThrottle:     60,
			RequestsPerMinute: 5,
		},
		Events: models.EventsConfiguration{Type: configuration.ProviderMemory, Topic: "notifications"},
	}

	db, err := database.Open(models.DatabaseConfiguration{
		Type: configuration.ProviderSQLite,
		Path: filepath.Join(t.TempDir(), "portal.db"),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(context.Background(), db, configuration.ProviderSQLite))
	require.NoError(t, db.Create(&models.User{Email: "user@example.com", Fullname: "Jane Doe"}).Error)

	translator, err := lang.New("en")
	require.NoError(t, err)

	events, err := NewEventsManager(config.Events, true)
	require.NoError(t, err)
	t.Cleanup(events.Close)

	handler, err := NewRouter(
		config,
		db,
		c.NewMemoryCache(),
		nil,
		events,
		translator,
		validation.NewEngine(translator),
	)
	require.NoError(t, err)

	return &portalFixture{handler: handler, events: events, cookies: map[string]*http.Cookie{}}
}

// do sends a request with the cookies collected so far, like a browser would.
func (p *portalFixture) do(method, path string, form url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for _, cookie := range p.cookies {
		req.AddCookie(cookie)
	}

	recorder := httptest.NewRecorder()
	p.handler.ServeHTTP(recorder, req)

	for _, cookie := range recorder.Result().Cookies() {
		if cookie.MaxAge < 0 {
			delete(p.cookies, cookie.Name)
			continue
		}
		p.cookies[cookie.Name] = cookie
	}
	return recorder
}

func (p *portalFixture) csrfToken(t *testing.T, body string) string {
	t.Helper()
	match := csrfInput.FindStringSubmatch(body)
	require.Len(t, match, 2, "form carries no CSRF token")
	return match[1]
}

func TestHealthz(t *testing.T) {
	p := newPortal(t)

	recorder := p.do(http.MethodGet, "/healthz", nil)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"status":"ok"}`, recorder.Body.String())
}

func TestUnknownPage(t *testing.T) {
	p := newPortal(t)

	assert.Equal(t, http.StatusNotFound, p.do(http.MethodGet, "/admin/nowhere", nil).Code)
	assert.Equal(t, http.StatusNotFound, p.do(http.MethodGet, "/elsewhere", nil).Code)
}

func TestRequestFormNeedsCSRF(t *testing.T) {
	p := newPortal(t)

	recorder := p.do(http.MethodPost, "/admin/forgot", url.Values{"email": {"user@example.com"}})
	assert.Equal(t, apierrors.ErrCSRFMismatch.Code, recorder.Code)
}

func TestSignedInUserIsSentHome(t *testing.T) {
	p := newPortal(t)

	token, err := helpers.NewSessionToken("jwt-secret-for-router-tests", &models.User{Email: "user@example.com"}, time.Hour)
	require.NoError(t, err)
	p.cookies["portal_session"] = &http.Cookie{Name: "portal_session", Value: token}

	recorder := p.do(http.MethodGet, "/admin/forgot", nil)
	assert.Equal(t, http.StatusFound, recorder.Code)
	assert.Equal(t, "/admin", recorder.Header().Get("Location"))
}

func TestPasswordResetFlow(t *testing.T) {
	p := newPortal(t)
	messages := p.events.GetSubscriber().Subscribe()
	require.NotNil(t, messages)

	page := p.do(http.MethodGet, "/admin/forgot", nil)
	require.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Body.String(), "Forgot Password")
	csrf := p.csrfToken(t, page.Body.String())

	recorder := p.do(http.MethodPost, "/admin/forgot", url.Values{
		"_token": {csrf},
		"email":  {"user@example.com"},
	})
	require.Equal(t, http.StatusFound, recorder.Code)
	assert.Equal(t, "/admin/forgot", recorder.Header().Get("Location"))

	page = p.do(http.MethodGet, "/admin/forgot", nil)
	assert.Contains(t, page.Body.String(), "Please check your e-mail to continue with the password reset process.")
	assert.Contains(t, page.Body.String(), "alert-info")

	var resetURL string
	select {
	case msg := <-messages:
		msg.Ack()
		var payload struct {
			ResetURL string `json:"reset_url"`
		}
		require.NoError(t, json.Unmarshal(msg.Payload, &payload))
		resetURL = payload.ResetURL
	case <-time.After(2 * time.Second):
		t.Fatal("no reset notification published")
	}

	resetPath := strings.TrimPrefix(resetURL, "http://localhost:8080")
	require.True(t, strings.HasPrefix(resetPath, "/admin/forgot/reset/"), resetURL)
	token := strings.TrimPrefix(resetPath, "/admin/forgot/reset/")

	page = p.do(http.MethodGet, resetPath, nil)
	require.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Body.String(), token)

	recorder = p.do(http.MethodPost, "/admin/forgot/reset", url.Values{
		"_token":                {csrf},
		"email":                 {"user@example.com"},
		"password":              {"short"},
		"password_confirmation": {"short"},
		"token":                 {token},
	})
	require.Equal(t, http.StatusFound, recorder.Code)
	assert.Equal(t, resetPath, recorder.Header().Get("Location"))

	recorder = p.do(http.MethodPost, "/admin/forgot/reset", url.Values{
		"_token":                {csrf},
		"email":                 {"user@example.com"},
		"password":              {"NewSecret123"},
		"password_confirmation": {"NewSecret123"},
		"token":                 {token},
	})
	require.Equal(t, http.StatusFound, recorder.Code)
	assert.Equal(t, "/admin", recorder.Header().Get("Location"))

	page = p.do(http.MethodGet, "/admin", nil)
	assert.Contains(t, page.Body.String(), "Your password has been updated. You may now sign in.")
}
