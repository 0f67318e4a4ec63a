package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mtoivane/valmento/internal/cycle"
	"github.com/mtoivane/valmento/internal/diet"
	"github.com/mtoivane/valmento/internal/errors"
	"github.com/mtoivane/valmento/internal/i18n"
	"github.com/mtoivane/valmento/internal/profile"
	"github.com/mtoivane/valmento/internal/training"
)

type errorResponse struct {
	Error string `json:"error"`
}

func (app *application) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		app.logger.LogAttrs(r.Context(), slog.LevelError, "encode response", errors.SlogError(err))
	}
}

// decodeJSON decodes the request body into dst. An empty body leaves dst at
// its zero value so that optional request bodies work.
func (app *application) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err != nil && !errors.Is(err, io.EOF) {
		app.writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: "malformed JSON body"})
		return false
	}
	return true
}

func (app *application) serverError(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.LogAttrs(r.Context(), slog.LevelError, "server error", errors.SlogError(err))
	app.writeJSON(w, r, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
}

// writeError maps domain errors to HTTP statuses. Unrecognized errors become
// opaque 500 responses.
func (app *application) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var status int
	switch {
	case errors.Is(err, profile.ErrNotFound),
		errors.Is(err, diet.ErrPlanNotFound),
		errors.Is(err, diet.ErrFoodNotFound),
		errors.Is(err, diet.ErrSubstitutionNotFound),
		errors.Is(err, training.ErrPlanNotFound):
		status = http.StatusNotFound
	case errors.Is(err, cycle.ErrAlreadyMarked):
		status = http.StatusConflict
	case errors.Is(err, profile.ErrInvalidParameters),
		errors.Is(err, diet.ErrInvalidPlanLocation),
		errors.Is(err, diet.ErrInsufficientFoodVariety),
		errors.Is(err, training.ErrInsufficientVariety):
		status = http.StatusUnprocessableEntity
	default:
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, status, errorResponse{Error: err.Error()})
}

// parseDateParam parses the "date" path parameter from the request URL.
// On failure, sends HTTP 404 response automatically.
func (app *application) parseDateParam(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	dateStr := r.PathValue("date")
	date, err := time.Parse(time.DateOnly, dateStr)
	if err != nil {
		app.writeJSON(w, r, http.StatusNotFound, errorResponse{Error: "invalid date"})
		return time.Time{}, false
	}
	return date, true
}

// parseDateQuery parses the optional "date" query parameter, defaulting to
// today. On failure, sends HTTP 400 response automatically.
func (app *application) parseDateQuery(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		return time.Now().UTC(), true
	}
	date, err := time.Parse(time.DateOnly, dateStr)
	if err != nil {
		app.writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: "invalid date query parameter"})
		return time.Time{}, false
	}
	return date, true
}

// requestLanguage resolves the response language from the Accept-Language
// header, falling back to English.
func requestLanguage(r *http.Request) i18n.Language {
	header := r.Header.Get("Accept-Language")
	for _, part := range strings.Split(header, ",") {
		tag := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if idx := strings.Index(tag, "-"); idx > 0 {
			tag = tag[:idx]
		}
		if lang := i18n.Language(strings.ToLower(tag)); i18n.IsSupported(lang) {
			return lang
		}
	}
	return i18n.DefaultLanguage
}
