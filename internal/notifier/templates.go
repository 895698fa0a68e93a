package notifier

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
)

// Template names.
const (
	TemplatePasswordReset          = "password_reset"
	TemplatePasswordResetCompleted = "password_reset_completed"
)

//go:embed templates
var templateFS embed.FS

type renderedMail struct {
	Text string
	HTML string
}

// render produces the plain text body and its HTML alternative of templateName.
func render(templateName string, data any) (renderedMail, error) {
	textTmpl, err := texttemplate.ParseFS(templateFS, "templates/"+templateName+".txt")
	if err != nil {
		return renderedMail{}, fmt.Errorf("unknown template %s: %w", templateName, err)
	}
	htmlTmpl, err := htmltemplate.ParseFS(templateFS, "templates/"+templateName+".html")
	if err != nil {
		return renderedMail{}, fmt.Errorf("unknown template %s: %w", templateName, err)
	}

	var text, html bytes.Buffer
	if err = textTmpl.Execute(&text, data); err != nil {
		return renderedMail{}, fmt.Errorf("failed to render %s: %w", templateName, err)
	}
	if err = htmlTmpl.Execute(&html, data); err != nil {
		return renderedMail{}, fmt.Errorf("failed to render %s: %w", templateName, err)
	}

	return renderedMail{Text: text.String(), HTML: html.String()}, nil
}
