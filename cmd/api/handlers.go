package main

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/harchamaq/informes/internal/response"
)

func (app *application) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	data := map[string]string{
		"status":  "available",
		"quarter": app.report.Quarter,
		"run_id":  app.report.RunID.String(),
	}

	if err := writeJSON(w, http.StatusOK, data); err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
	}
}

func (app *application) dashboardHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := app.dashboard.Render(w, app.report); err != nil {
		app.logger.Error("rendering dashboard", zap.Error(err))
	}
}

func (app *application) handleGetReport(w http.ResponseWriter, r *http.Request) {
	if err := writeJSON(w, http.StatusOK, response.OK(app.report)); err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
	}
}

func (app *application) handleGetTotals(w http.ResponseWriter, r *http.Request) {
	if err := writeJSON(w, http.StatusOK, response.OK(app.report.Totals)); err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
	}
}

func (app *application) handleGetWorkshop(w http.ResponseWriter, r *http.Request) {
	if err := writeJSON(w, http.StatusOK, response.OK(app.report.Workshop)); err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
	}
}

func (app *application) handleGetMachines(w http.ResponseWriter, r *http.Request) {
	if err := writeJSON(w, http.StatusOK, response.OK(app.report.Machines)); err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
	}
}

func (app *application) handleGetMachine(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(chi.URLParam(r, "code"))

	for _, m := range app.report.Machines {
		if m.MachineCode != code {
			continue
		}

		var months []any
		for _, mm := range app.report.MachineMonths {
			if mm.MachineCode == code {
				months = append(months, mm)
			}
		}

		data := map[string]any{
			"machine": m,
			"months":  months,
		}
		if err := writeJSON(w, http.StatusOK, response.OK(data)); err != nil {
			writeJSONError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSONError(w, http.StatusNotFound, "machine not found in report")
}
