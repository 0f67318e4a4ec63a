package main

import (
	"net/http"

	"github.com/mtoivane/valmento/internal/i18n"
	"github.com/mtoivane/valmento/internal/training"
)

// workoutResponse wraps a weekly workout plan with localized split labels.
type workoutResponse struct {
	training.WeeklyPlan
	FocusLabels map[string]string `json:"focus_labels"`
}

func newWorkoutResponse(plan training.WeeklyPlan, lang i18n.Language) workoutResponse {
	labels := make(map[string]string, len(plan.Days))
	for _, day := range plan.Days {
		labels[string(day.Focus)] = i18n.Translate(lang, "split."+string(day.Focus))
	}
	return workoutResponse{
		WeeklyPlan:  plan,
		FocusLabels: labels,
	}
}

// workoutPOST generates and stores a new weekly workout plan.
func (app *application) workoutPOST(w http.ResponseWriter, r *http.Request) {
	plan, err := app.trainingService.Generate(r.Context())
	if err != nil {
		app.writeError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, newWorkoutResponse(plan, requestLanguage(r)))
}

// workoutGET returns the current weekly workout plan.
func (app *application) workoutGET(w http.ResponseWriter, r *http.Request) {
	plan, err := app.trainingService.Latest(r.Context())
	if err != nil {
		app.writeError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, newWorkoutResponse(plan, requestLanguage(r)))
}
