package main

import (
	"net/http"

	"github.com/mtoivane/valmento/internal/profile"
)

// profileGET returns the authenticated user's profile.
func (app *application) profileGET(w http.ResponseWriter, r *http.Request) {
	p, err := app.profileService.Get(r.Context())
	if err != nil {
		app.writeError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, p)
}

// profilePUT validates and replaces the authenticated user's profile.
func (app *application) profilePUT(w http.ResponseWriter, r *http.Request) {
	var p profile.Profile
	if !app.decodeJSON(w, r, &p) {
		return
	}
	if err := app.profileService.Set(r.Context(), p); err != nil {
		app.writeError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, p)
}
