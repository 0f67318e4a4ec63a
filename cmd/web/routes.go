package main

import (
	"net/http"

	"github.com/rs/cors"
)

func (app *application) routes() http.Handler {
	mux := http.NewServeMux()

	var (
		base = func(next http.Handler) http.Handler {
			return app.logAndTraceRequest(secureHeaders(app.crossOriginProtection(app.timeout(next))))
		}
		session = func(next http.Handler) http.Handler {
			return app.recoverPanic(noCache(app.sessionManager.LoadAndSave(app.authenticate(base(next)))))
		}
		mustSession = func(next http.Handler) http.Handler {
			return session(app.mustAuthenticate(next))
		}
	)

	mux.Handle("GET /api/healthy", session(http.HandlerFunc(app.healthy)))

	mux.Handle("POST /api/session", session(http.HandlerFunc(app.sessionPOST)))
	mux.Handle("DELETE /api/session", mustSession(http.HandlerFunc(app.sessionDELETE)))

	mux.Handle("GET /api/profile", mustSession(http.HandlerFunc(app.profileGET)))
	mux.Handle("PUT /api/profile", mustSession(http.HandlerFunc(app.profilePUT)))

	mux.Handle("GET /api/targets", mustSession(http.HandlerFunc(app.targetsGET)))

	mux.Handle("POST /api/diet", mustSession(http.HandlerFunc(app.dietPOST)))
	mux.Handle("GET /api/diet", mustSession(http.HandlerFunc(app.dietGET)))
	mux.Handle("POST /api/diet/substitutions", mustSession(http.HandlerFunc(app.dietSubstitutionPOST)))

	mux.Handle("POST /api/workout", mustSession(http.HandlerFunc(app.workoutPOST)))
	mux.Handle("GET /api/workout", mustSession(http.HandlerFunc(app.workoutGET)))

	mux.Handle("GET /api/days/{date}", mustSession(http.HandlerFunc(app.dayGET)))
	mux.Handle("POST /api/days/{date}/complete", mustSession(http.HandlerFunc(app.dayCompletePOST)))
	mux.Handle("GET /api/days/{date}/macros", mustSession(http.HandlerFunc(app.dayMacrosGET)))

	mux.Handle("GET /api/foods", mustSession(http.HandlerFunc(app.foodsGET)))
	mux.Handle("POST /api/foods/generate", mustSession(http.HandlerFunc(app.foodGeneratePOST)))
	mux.Handle("GET /api/exercises", mustSession(http.HandlerFunc(app.exercisesGET)))

	if len(app.allowedOrigins) == 0 {
		return mux
	}
	return cors.New(cors.Options{
		AllowedOrigins:   app.allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders:   []string{"Content-Type", "Accept-Language"},
		AllowCredentials: true,
	}).Handler(mux)
}
