package main

import (
	"net/http"
)

// targetsGET returns the nutrition target for the given date, including the
// date's day-type adjustment. The date defaults to today.
func (app *application) targetsGET(w http.ResponseWriter, r *http.Request) {
	date, ok := app.parseDateQuery(w, r)
	if !ok {
		return
	}

	target, err := app.dietService.Targets(r.Context(), date)
	if err != nil {
		app.writeError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, target)
}
