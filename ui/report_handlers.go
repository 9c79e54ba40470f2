package ui

import (
	"encoding/json"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"

	"taguchi/app"
	apperrors "taguchi/internal/errors"
)

// handleReport renders an inspection report for a posted matrix
func (a *App) handleReport(w http.ResponseWriter, r *http.Request) {
	var req matrixRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, apperrors.InvalidInput(err.Error()))
		return
	}
	a.renderReport(w, r, req.Matrix, app.InspectOptions{Name: req.Name, ClaimedStrength: req.ClaimedStrength})
}

// handleStoredReport renders an inspection report for a stored array
func (a *App) handleStoredReport(w http.ResponseWriter, r *http.Request) {
	data, err := a.service.GetArray(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	opts := app.InspectOptions{Name: data.ID}
	if data.Metadata.Name != nil {
		opts.Name = *data.Metadata.Name
	}
	a.renderReport(w, r, data.Data, opts)
}

// handleCatalogueReport renders an inspection report for a standard array
func (a *App) handleCatalogueReport(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	data, err := a.service.GetStandardArray(r.Context(), name)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.renderReport(w, r, data.Data, app.InspectOptions{Name: name})
}

func (a *App) renderReport(w http.ResponseWriter, r *http.Request, matrix [][]int, opts app.InspectOptions) {
	body, err := a.service.ReportHTML(r.Context(), matrix, opts)
	if err != nil {
		a.writeError(w, err)
		return
	}
	title := opts.Name
	if title == "" {
		title = "Orthogonal array"
	}
	a.renderTemplate(w, "report.html", reportPage{Title: title, Body: template.HTML(body)})
}

func (a *App) writeError(w http.ResponseWriter, err error) {
	appErr := apperrors.FromDomain(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apperrors.HTTPStatus(err))
	if encErr := json.NewEncoder(w).Encode(map[string]string{"error": appErr.Message, "code": appErr.Code}); encErr != nil {
		a.logger.Warn("writing error response", "err", encErr)
	}
}
