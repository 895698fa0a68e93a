package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"portal/internal/configuration"
	h "portal/internal/helpers"
	"portal/internal/lang"
	"portal/internal/models"
	"portal/internal/views"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// PasswordBroker issues reset tokens and applies new passwords. Business
// failures are reported through the outcome; a non-nil error is a fault.
type PasswordBroker interface {
	Create(ctx context.Context, input models.ResetRequest) (models.BrokerOutcome, error)
	Reset(ctx context.Context, input models.ResetSubmission) (models.BrokerOutcome, error)
}

type Renderer interface {
	Render(w http.ResponseWriter, r *http.Request, view string, data views.Data) error
	RenderError(w http.ResponseWriter, r *http.Request, err error)
}

type Redirector interface {
	RedirectWithMessage(w http.ResponseWriter, r *http.Request, path string, message models.Message)
	RedirectWithErrors(
		w http.ResponseWriter,
		r *http.Request,
		path string,
		errs models.ValidationErrors,
		old map[string]string,
	)
}

// PasswordResetController serves the forgot / reset password pages. It only
// maps broker outcomes onto renders and redirects.
type PasswordResetController struct {
	Broker     PasswordBroker
	Views      Renderer
	Redirect   Redirector
	Translator lang.Translator
	BasePath   string
}

// Routes mounts below /forgot. throttle guards the reset link request.
func (c PasswordResetController) Routes(throttle func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	if throttle == nil {
		throttle = func(next http.Handler) http.Handler { return next }
	}

	r.Get("/", c.ShowRequestForm)
	r.With(throttle).Post("/", c.SubmitRequest)

	r.Post("/reset", c.SubmitReset)
	r.Get("/reset/{token}", c.ShowResetForm)

	return r
}

func (c PasswordResetController) ShowRequestForm(w http.ResponseWriter, r *http.Request) {
	c.render(w, r, views.ViewForgotIndex, views.Data{
		"title": c.Translator.Translate(lang.TitleForgotPassword),
	})
}

func (c PasswordResetController) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	input := models.ResetRequest{Email: r.PostFormValue("email")}

	outcome, err := c.Broker.Create(r.Context(), input)
	if err != nil {
		h.GetLogger(r.Context()).Error("Password reset request failed", zap.Error(err))
		c.Views.RenderError(w, r, err)
		return
	}

	switch outcome.Kind {
	case models.OutcomeValidationFailed:
		c.RequestValidationFailed(w, r, outcome.Errors)
	case models.OutcomeCreateFailed:
		c.CreateFailed(w, r, outcome.Key)
	case models.OutcomeCreateSucceed:
		c.CreateSucceed(w, r, outcome.Key)
	default:
		c.unexpected(w, r, outcome)
	}
}

// RequestValidationFailed sends the user back to the request form with the
// field errors and the submitted e-mail.
func (c PasswordResetController) RequestValidationFailed(
	w http.ResponseWriter,
	r *http.Request,
	errs models.ValidationErrors,
) {
	c.Redirect.RedirectWithErrors(w, r, c.path(configuration.RouteForgot), errs, map[string]string{
		"email": r.PostFormValue("email"),
	})
}

func (c PasswordResetController) CreateFailed(w http.ResponseWriter, r *http.Request, key string) {
	c.Redirect.RedirectWithMessage(w, r, c.path(configuration.RouteForgot), c.message(key, models.SeverityError))
}

func (c PasswordResetController) CreateSucceed(w http.ResponseWriter, r *http.Request, key string) {
	c.Redirect.RedirectWithMessage(w, r, c.path(configuration.RouteForgot), c.message(key, models.SeverityInfo))
}

// ShowResetForm passes the token from the link through to the form. chi
// matches on the raw path when there is one, so such a token is decoded first.
func (c PasswordResetController) ShowResetForm(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if r.URL.RawPath != "" {
		if decoded, err := url.PathUnescape(token); err == nil {
			token = decoded
		}
	}

	c.render(w, r, views.ViewForgotReset, views.Data{
		"title": c.Translator.Translate(lang.TitleResetPassword),
		"token": token,
	})
}

func (c PasswordResetController) SubmitReset(w http.ResponseWriter, r *http.Request) {
	input := models.ResetSubmission{
		Email:                r.PostFormValue("email"),
		Password:             r.PostFormValue("password"),
		PasswordConfirmation: r.PostFormValue("password_confirmation"),
		Token:                r.PostFormValue("token"),
	}

	outcome, err := c.Broker.Reset(r.Context(), input)
	if err != nil {
		h.GetLogger(r.Context()).Error("Password reset failed", zap.Error(err))
		c.Views.RenderError(w, r, err)
		return
	}

	switch outcome.Kind {
	case models.OutcomeValidationFailed:
		c.Redirect.RedirectWithErrors(w, r, c.resetFormPath(r), outcome.Errors, map[string]string{
			"email": input.Email,
		})
	case models.OutcomeResetFailed:
		c.ResetFailed(w, r, outcome.Key)
	case models.OutcomeResetSucceed:
		c.ResetSucceed(w, r)
	default:
		c.unexpected(w, r, outcome)
	}
}

// ResetFailed returns to the reset form of the token the user submitted.
func (c PasswordResetController) ResetFailed(w http.ResponseWriter, r *http.Request, key string) {
	c.Redirect.RedirectWithMessage(w, r, c.resetFormPath(r), c.message(key, models.SeverityError))
}

func (c PasswordResetController) ResetSucceed(w http.ResponseWriter, r *http.Request) {
	c.Redirect.RedirectWithMessage(
		w,
		r,
		c.path(configuration.RouteHome),
		c.message(lang.ResponsePasswordUpdate, models.SeverityInfo),
	)
}

// resetFormPath rebuilds the reset form URL from the token of the current
// request. Without a token there is no form to return to.
func (c PasswordResetController) resetFormPath(r *http.Request) string {
	token := r.PostFormValue("token")
	if token == "" {
		return c.path(configuration.RouteForgot)
	}
	return h.Handles(c.BasePath, configuration.RouteResetForm, token)
}

func (c PasswordResetController) path(route string) string {
	return h.Handles(c.BasePath, route)
}

func (c PasswordResetController) message(key string, severity models.Severity) models.Message {
	return models.Message{Body: c.Translator.Translate(key), Severity: severity}
}

func (c PasswordResetController) render(w http.ResponseWriter, r *http.Request, view string, data views.Data) {
	if err := c.Views.Render(w, r, view, data); err != nil {
		h.GetLogger(r.Context()).Error("Failed to render view", zap.String("view", view), zap.Error(err))
		c.Views.RenderError(w, r, err)
	}
}

func (c PasswordResetController) unexpected(w http.ResponseWriter, r *http.Request, outcome models.BrokerOutcome) {
	err := fmt.Errorf("unexpected broker outcome %s", outcome.Kind)
	h.GetLogger(r.Context()).Error("Password broker misbehaved", zap.Error(err))
	c.Views.RenderError(w, r, err)
}
