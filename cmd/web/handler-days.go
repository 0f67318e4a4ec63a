package main

import (
	"net/http"

	"github.com/mtoivane/valmento/internal/cycle"
	"github.com/mtoivane/valmento/internal/i18n"
)

// dayResponse is the training state of one date with its derived guidance.
type dayResponse struct {
	cycle.Status
	Label       string            `json:"label"`
	Multipliers cycle.Multipliers `json:"multipliers"`
	Hydration   cycle.Hydration   `json:"hydration"`
}

func newDayResponse(status cycle.Status, lang i18n.Language) dayResponse {
	labelKey := "day.rest"
	if status.Trained {
		labelKey = "day.training"
	}
	return dayResponse{
		Status:      status,
		Label:       i18n.Translate(lang, labelKey),
		Multipliers: status.Multipliers(),
		Hydration:   status.Hydration(),
	}
}

// dayGET returns the training state of a date.
func (app *application) dayGET(w http.ResponseWriter, r *http.Request) {
	date, ok := app.parseDateParam(w, r)
	if !ok {
		return
	}

	status, err := app.cycleService.StatusFor(r.Context(), date)
	if err != nil {
		app.writeError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, newDayResponse(status, requestLanguage(r)))
}

// dayCompletePOST marks a date as a training day. Re-marking fails with 409.
func (app *application) dayCompletePOST(w http.ResponseWriter, r *http.Request) {
	date, ok := app.parseDateParam(w, r)
	if !ok {
		return
	}

	status, err := app.cycleService.MarkTrainingDay(r.Context(), date)
	if err != nil {
		app.writeError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, newDayResponse(status, requestLanguage(r)))
}

// dayMacrosGET returns the current plan's totals rescaled by the date's
// day-type multipliers.
func (app *application) dayMacrosGET(w http.ResponseWriter, r *http.Request) {
	date, ok := app.parseDateParam(w, r)
	if !ok {
		return
	}

	target, err := app.dietService.AdjustedMacros(r.Context(), date)
	if err != nil {
		app.writeError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, target)
}
