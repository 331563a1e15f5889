package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/blocklift/blocklift/internal/middleware"
	"github.com/blocklift/blocklift/internal/models"
)

// Duplicates handles subtree copies: a whole week's workouts into another
// week, or a single workout into another week.
type Duplicates struct {
	DB  *sql.DB
	Log *slog.Logger
}

type duplicateWeekRequest struct {
	TargetWeekID int64 `json:"target_week_id"`
}

type duplicateWeekResponse struct {
	WorkoutsCopied int `json:"workouts_copied"`
}

// Week copies every workout under the source week into the target week.
func (h *Duplicates) Week(w http.ResponseWriter, r *http.Request) {
	actor := middleware.UserFromContext(r.Context()).Actor()

	sourceID, err := idParam(r, "id")
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	var req duplicateWeekRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.Log, err)
		return
	}

	copied, err := models.DuplicateWeek(h.DB, actor, sourceID, req.TargetWeekID)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, duplicateWeekResponse{WorkoutsCopied: copied})
}

type duplicateWorkoutRequest struct {
	TargetWeekID int64  `json:"target_week_id"`
	Name         string `json:"name"`
	Day          string `json:"day"`
}

// Workout copies one workout subtree into the target week under a new name
// and day.
func (h *Duplicates) Workout(w http.ResponseWriter, r *http.Request) {
	actor := middleware.UserFromContext(r.Context()).Actor()

	sourceID, err := idParam(r, "id")
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	var req duplicateWorkoutRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.Log, err)
		return
	}

	workout, err := models.DuplicateWorkout(h.DB, actor, sourceID, req.TargetWeekID, req.Name, req.Day)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, newWorkoutView(workout))
}
