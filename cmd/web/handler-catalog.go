package main

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/mtoivane/valmento/internal/diet"
	"github.com/mtoivane/valmento/internal/i18n"
	"github.com/mtoivane/valmento/internal/training"
	"github.com/yuin/goldmark"
)

// renderMarkdownToHTML renders catalog description markdown to HTML. The
// descriptions come from the seeded catalog or the AI generator, not from
// request input.
func renderMarkdownToHTML(markdown string) (string, error) {
	if markdown == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}

type foodResponse struct {
	diet.Food
	CategoryLabel   string `json:"category_label"`
	DescriptionHTML string `json:"description_html,omitempty"`
}

type foodGeneratePOSTRequest struct {
	Name     string        `json:"name"`
	Category diet.Category `json:"category"`
}

func (app *application) newFoodResponse(food diet.Food, lang i18n.Language) (foodResponse, error) {
	html, err := renderMarkdownToHTML(food.DescriptionMarkdown)
	if err != nil {
		return foodResponse{}, err
	}
	return foodResponse{
		Food:            food,
		CategoryLabel:   i18n.Translate(lang, "category."+string(food.Category)),
		DescriptionHTML: html,
	}, nil
}

// foodsGET returns the full food catalog.
func (app *application) foodsGET(w http.ResponseWriter, r *http.Request) {
	foods, err := app.dietService.ListFoods(r.Context())
	if err != nil {
		app.writeError(w, r, err)
		return
	}

	lang := requestLanguage(r)
	resp := make([]foodResponse, 0, len(foods))
	for _, food := range foods {
		fr, err := app.newFoodResponse(food, lang)
		if err != nil {
			app.serverError(w, r, err)
			return
		}
		resp = append(resp, fr)
	}
	app.writeJSON(w, r, http.StatusOK, resp)
}

// foodGeneratePOST creates a new food catalog entry for the named food.
func (app *application) foodGeneratePOST(w http.ResponseWriter, r *http.Request) {
	var req foodGeneratePOSTRequest
	if !app.decodeJSON(w, r, &req) {
		return
	}
	if req.Name == "" {
		app.writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: "name is required"})
		return
	}

	food, err := app.dietService.GenerateFood(r.Context(), req.Name, req.Category)
	if err != nil {
		app.writeError(w, r, err)
		return
	}

	resp, err := app.newFoodResponse(food, requestLanguage(r))
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusCreated, resp)
}

type exerciseResponse struct {
	training.Exercise
	DescriptionHTML string `json:"description_html,omitempty"`
}

// exercisesGET returns the full exercise catalog.
func (app *application) exercisesGET(w http.ResponseWriter, r *http.Request) {
	exercises, err := app.trainingService.ListExercises(r.Context())
	if err != nil {
		app.writeError(w, r, err)
		return
	}

	resp := make([]exerciseResponse, 0, len(exercises))
	for _, exercise := range exercises {
		html, err := renderMarkdownToHTML(exercise.DescriptionMarkdown)
		if err != nil {
			app.serverError(w, r, err)
			return
		}
		resp = append(resp, exerciseResponse{
			Exercise:        exercise,
			DescriptionHTML: html,
		})
	}
	app.writeJSON(w, r, http.StatusOK, resp)
}
