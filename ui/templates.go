package ui

import (
	"bytes"
	"html/template"
	"net/http"
)

type reportPage struct {
	Title string
	Body  template.HTML
}

// renderTemplate renders into a buffer first so template errors never send a
// partial page
func (a *App) renderTemplate(w http.ResponseWriter, templateName string, data interface{}) {
	var buf bytes.Buffer
	if err := a.templates.ExecuteTemplate(&buf, templateName, data); err != nil {
		a.logger.Error("template rendering failed", "template", templateName, "err", err)
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		a.logger.Warn("writing template response", "err", err)
	}
}
