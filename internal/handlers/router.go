package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	appmw "github.com/blocklift/blocklift/internal/middleware"
)

// NewRouter wires every API route behind session, logging and security
// middleware. Coach-only groups sit behind RequireCoach; per-entity
// ownership is enforced in the models layer. Login is throttled per IP,
// and every authenticated mutation requires the session's CSRF token.
func NewRouter(db *sql.DB, sm *scs.SessionManager, loginLimiter *appmw.RateLimiter, log *slog.Logger) http.Handler {
	auth := &Auth{DB: db, Sessions: sm, Log: log}
	students := &Students{DB: db, Log: log}
	blocks := &Blocks{DB: db, Log: log}
	workouts := &Workouts{DB: db, Log: log}
	sections := &Sections{DB: db, Log: log}
	duplicates := &Duplicates{DB: db, Log: log}
	imports := &Imports{DB: db, Log: log}

	r := chi.NewRouter()
	r.Use(appmw.RequestLogging(log))
	r.Use(appmw.SecurityHeaders)
	r.Use(sm.LoadAndSave)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.With(loginLimiter.Limit).Post("/api/login", auth.Login)
	r.Post("/api/logout", auth.Logout)

	r.Group(func(r chi.Router) {
		r.Use(appmw.RequireAuth(sm, db, log))
		r.Use(appmw.CSRFProtect(sm))

		// Visible to students and coaches alike; the models layer scopes
		// results to what the actor may see.
		r.Get("/api/students/{id}/blocks", blocks.ListForStudent)
		r.Get("/api/blocks/{id}", blocks.Show)
		r.Get("/api/weeks/{id}/workouts", workouts.ListByWeek)
		r.Get("/api/workouts/{id}", workouts.Show)

		// Students may log their own sets.
		r.Put("/api/sections/{id}", sections.Update)
		r.Post("/api/sections/batch", sections.BatchUpdate)

		r.Group(func(r chi.Router) {
			r.Use(appmw.RequireCoach)

			r.Get("/api/students", students.List)
			r.Post("/api/students", students.Create)
			r.Delete("/api/students/{id}", students.Delete)

			r.Post("/api/students/{id}/blocks", blocks.Create)
			r.Patch("/api/blocks/{id}", blocks.Update)
			r.Delete("/api/blocks/{id}", blocks.Delete)

			r.Post("/api/weeks/{id}/workouts", workouts.Create)
			r.Post("/api/weeks/{id}/duplicate", duplicates.Week)

			r.Put("/api/workouts/{id}", workouts.Save)
			r.Delete("/api/workouts/{id}", workouts.Delete)
			r.Post("/api/workouts/{id}/duplicate", duplicates.Workout)

			r.Delete("/api/exercises/{id}", workouts.DeleteExercise)
			r.Delete("/api/sections/{id}", sections.Delete)

			r.Post("/api/imports", imports.Parse)
			r.Post("/api/imports/validate", imports.Validate)
			r.Post("/api/imports/commit", imports.Commit)
		})
	})

	return r
}
