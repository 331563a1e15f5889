package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/blocklift/blocklift/internal/middleware"
	"github.com/blocklift/blocklift/internal/models"
)

// Students is the thin account-management boundary: coaches create and list
// their students here; everything else about accounts lives outside the
// training core.
type Students struct {
	DB  *sql.DB
	Log *slog.Logger
}

// List returns the students visible to the actor.
func (h *Students) List(w http.ResponseWriter, r *http.Request) {
	actor := middleware.UserFromContext(r.Context()).Actor()

	students, err := models.ListStudents(h.DB, actor)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	views := make([]studentView, 0, len(students))
	for _, s := range students {
		views = append(views, newStudentView(s))
	}
	writeJSON(w, http.StatusOK, views)
}

type createStudentRequest struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Email    string `json:"email"`
	CoachID  int64  `json:"coach_id,omitempty"` // admins only
}

// Create adds a student account under the acting coach.
func (h *Students) Create(w http.ResponseWriter, r *http.Request) {
	actor := middleware.UserFromContext(r.Context()).Actor()

	var req createStudentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.Log, err)
		return
	}

	student, err := models.CreateStudent(h.DB, actor, req.Username, req.Name, req.Password, req.Email, req.CoachID)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, newStudentView(student))
}

// Delete removes a student account and all of their plan data.
func (h *Students) Delete(w http.ResponseWriter, r *http.Request) {
	actor := middleware.UserFromContext(r.Context()).Actor()

	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	if err := models.DeleteUser(h.DB, actor, id); err != nil {
		writeError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
