package services

import (
	"net/http"

	h "portal/internal/helpers"
	"portal/internal/lang"
	"portal/internal/views"

	"go.uber.org/zap"
)

// HomeController renders the landing page flash messages end up on.
type HomeController struct {
	Views      Renderer
	Translator lang.Translator
}

func (c HomeController) Show(w http.ResponseWriter, r *http.Request) {
	err := c.Views.Render(w, r, views.ViewHome, views.Data{
		"title": c.Translator.Translate(lang.TitleHome),
	})
	if err != nil {
		h.GetLogger(r.Context()).Error("Failed to render home", zap.Error(err))
		c.Views.RenderError(w, r, err)
	}
}
