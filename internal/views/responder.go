// Package views renders the HTML pages and issues redirects that carry
// flash data to the next page.
package views

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"

	"portal/internal/configuration"
	apierrors "portal/internal/errors"
	"portal/internal/helpers"
	"portal/internal/lang"
	"portal/internal/models"
	"portal/internal/session"

	"go.uber.org/zap"
)

//go:embed templates
var templateFS embed.FS

// View names.
const (
	ViewHome        = "home"
	ViewError       = "error"
	ViewForgotIndex = "forgot/index"
	ViewForgotReset = "forgot/reset"
)

var pageViews = []string{ViewHome, ViewError, ViewForgotIndex, ViewForgotReset}

// Data is the view-specific payload of a page.
type Data map[string]any

type page struct {
	Title     string
	Flash     models.Flash
	CSRFToken string
	CSRFField string
	Data      Data
}

type Responder struct {
	pages      map[string]*template.Template
	flash      *session.FlashStore
	translator lang.Translator
	basePath   string
}

type localeTranslator interface {
	Locale() string
}

func New(flash *session.FlashStore, translator lang.Translator, basePath string) (*Responder, error) {
	locale := "en"
	if t, ok := translator.(localeTranslator); ok {
		locale = t.Locale()
	}

	funcs := template.FuncMap{
		"trans":  func(key string) string { return translator.Translate(key) },
		"url":    func(route string) string { return helpers.Handles(basePath, route) },
		"locale": func() string { return locale },
	}

	pages := make(map[string]*template.Template, len(pageViews))
	for _, view := range pageViews {
		tmpl, err := template.New(view).Funcs(funcs).ParseFS(
			templateFS,
			"templates/layout.html",
			"templates/"+view+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("failed to parse view %s: %w", view, err)
		}
		pages[view] = tmpl
	}

	return &Responder{
		pages:      pages,
		flash:      flash,
		translator: translator,
		basePath:   basePath,
	}, nil
}

// Render writes view with the flash of the request, which is consumed.
// The "title" entry of data is used as page title.
func (v *Responder) Render(w http.ResponseWriter, r *http.Request, view string, data Data) error {
	return v.render(w, r, http.StatusOK, view, data)
}

func (v *Responder) render(w http.ResponseWriter, r *http.Request, status int, view string, data Data) error {
	tmpl, ok := v.pages[view]
	if !ok {
		return fmt.Errorf("unknown view %s", view)
	}

	title, _ := data["title"].(string)
	p := page{
		Title:     title,
		Flash:     v.flash.Pop(w, r),
		CSRFToken: helpers.GetCSRFToken(r.Context()),
		CSRFField: configuration.CSRFFieldName,
		Data:      data,
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", p); err != nil {
		return fmt.Errorf("failed to render view %s: %w", view, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// RedirectWithMessage redirects to path with a one-shot message.
func (v *Responder) RedirectWithMessage(w http.ResponseWriter, r *http.Request, path string, message models.Message) {
	v.redirect(w, r, path, models.Flash{Message: &message})
}

// RedirectWithErrors redirects to path with field errors and the input to
// refill the form with.
func (v *Responder) RedirectWithErrors(
	w http.ResponseWriter,
	r *http.Request,
	path string,
	errs models.ValidationErrors,
	old map[string]string,
) {
	v.redirect(w, r, path, models.Flash{Errors: errs, OldInput: old})
}

func (v *Responder) redirect(w http.ResponseWriter, r *http.Request, path string, flash models.Flash) {
	if err := v.flash.Put(w, flash); err != nil {
		helpers.GetLogger(r.Context()).Error("Failed to attach flash", zap.Error(err))
	}
	http.Redirect(w, r, path, http.StatusFound)
}

// RenderError shows the generic error page. APIError codes are kept, any
// other error is a 500.
func (v *Responder) RenderError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := apierrors.ErrInternal
	var target *apierrors.APIError
	if errors.As(err, &target) {
		apiErr = target
	}

	data := Data{
		"title":  v.translator.Translate(lang.TitleError),
		"status": apiErr.Status,
	}
	if renderErr := v.render(w, r, apiErr.Code, ViewError, data); renderErr != nil {
		helpers.GetLogger(r.Context()).Error("Failed to render error page", zap.Error(renderErr))
		http.Error(w, http.StatusText(apiErr.Code), apiErr.Code)
	}
}
