package main

import (
	"net/http"

	"github.com/mtoivane/valmento/internal/diet"
	"github.com/mtoivane/valmento/internal/i18n"
)

const defaultMealCount = 4

type dietPOSTRequest struct {
	MealCount int `json:"meal_count"`
}

type dietSubstitutionPOSTRequest struct {
	MealIndex    int    `json:"meal_index"`
	FoodIndex    int    `json:"food_index"`
	RequestedKey string `json:"requested_key"`
}

// planResponse wraps a diet plan with localized labels and plan warnings.
type planResponse struct {
	diet.Plan
	MealLabels map[string]string `json:"meal_labels"`
	Warnings   []string          `json:"warnings,omitempty"`
}

func newPlanResponse(plan diet.Plan, lang i18n.Language) planResponse {
	labels := make(map[string]string, len(plan.Meals))
	for _, meal := range plan.Meals {
		labels[meal.Name] = i18n.Translate(lang, "meal."+meal.Name)
	}
	var warnings []string
	if plan.DeviationKcal != 0 {
		warnings = append(warnings, i18n.Translate(lang, "warning.macro_deviation"))
	}
	return planResponse{
		Plan:       plan,
		MealLabels: labels,
		Warnings:   warnings,
	}
}

// dietPOST generates and stores a new diet plan.
func (app *application) dietPOST(w http.ResponseWriter, r *http.Request) {
	var req dietPOSTRequest
	if !app.decodeJSON(w, r, &req) {
		return
	}
	if req.MealCount == 0 {
		req.MealCount = defaultMealCount
	}

	plan, err := app.dietService.Generate(r.Context(), req.MealCount)
	if err != nil {
		app.writeError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, newPlanResponse(plan, requestLanguage(r)))
}

// dietGET returns the current diet plan.
func (app *application) dietGET(w http.ResponseWriter, r *http.Request) {
	plan, err := app.dietService.Latest(r.Context())
	if err != nil {
		app.writeError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, newPlanResponse(plan, requestLanguage(r)))
}

// dietSubstitutionPOST replaces one portion of the current plan and stores
// the result as a new plan.
func (app *application) dietSubstitutionPOST(w http.ResponseWriter, r *http.Request) {
	var req dietSubstitutionPOSTRequest
	if !app.decodeJSON(w, r, &req) {
		return
	}

	plan, err := app.dietService.Substitute(r.Context(), req.MealIndex, req.FoodIndex, req.RequestedKey)
	if err != nil {
		app.writeError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, newPlanResponse(plan, requestLanguage(r)))
}
