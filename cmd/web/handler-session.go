package main

import (
	"net/http"
)

// sessionKeyUserID is the session key holding the signed-in user's id.
const sessionKeyUserID = "userID"

type sessionPOSTRequest struct {
	UserID      int    `json:"user_id"`
	DisplayName string `json:"display_name"`
}

type sessionPOSTResponse struct {
	UserID int `json:"user_id"`
}

// sessionPOST signs the client in. A known user_id resumes that account, a
// fresh session without one gets a newly created user account, and an
// existing session keeps its user.
func (app *application) sessionPOST(w http.ResponseWriter, r *http.Request) {
	var req sessionPOSTRequest
	if !app.decodeJSON(w, r, &req) {
		return
	}

	ctx := r.Context()
	// Renew the token on sign-in to prevent session fixation.
	if err := app.sessionManager.RenewToken(ctx); err != nil {
		app.serverError(w, r, err)
		return
	}

	userID := app.sessionManager.GetInt(ctx, sessionKeyUserID)
	switch {
	case req.UserID != 0:
		exists, err := app.profileService.UserExists(ctx, req.UserID)
		if err != nil {
			app.serverError(w, r, err)
			return
		}
		if !exists {
			app.writeJSON(w, r, http.StatusNotFound, errorResponse{Error: "unknown user"})
			return
		}
		userID = req.UserID
		app.sessionManager.Put(ctx, sessionKeyUserID, userID)
	case userID == 0:
		var err error
		if userID, err = app.profileService.CreateUser(ctx, req.DisplayName); err != nil {
			app.serverError(w, r, err)
			return
		}
		app.sessionManager.Put(ctx, sessionKeyUserID, userID)
	}

	app.writeJSON(w, r, http.StatusOK, sessionPOSTResponse{UserID: userID})
}

// sessionDELETE signs the client out.
func (app *application) sessionDELETE(w http.ResponseWriter, r *http.Request) {
	if err := app.sessionManager.Destroy(r.Context()); err != nil {
		app.serverError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
