package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/blocklift/blocklift/internal/middleware"
	"github.com/blocklift/blocklift/internal/models"
)

// Workouts handles workout trees: create/update with nested exercises and
// sections, plus deletes at every level.
type Workouts struct {
	DB  *sql.DB
	Log *slog.Logger
}

// ListByWeek returns a week's workouts with their full trees.
func (h *Workouts) ListByWeek(w http.ResponseWriter, r *http.Request) {
	actor := middleware.UserFromContext(r.Context()).Actor()

	weekID, err := idParam(r, "id")
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	workouts, err := models.ListWorkoutsByWeek(h.DB, actor, weekID)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	views := make([]workoutView, 0, len(workouts))
	for _, wo := range workouts {
		views = append(views, newWorkoutView(wo))
	}
	writeJSON(w, http.StatusOK, views)
}

// workoutTreeRequest mirrors models.WorkoutTreeParams: children carry
// optional ids and destroy markers.
type workoutTreeRequest struct {
	Name            string                `json:"name"`
	Day             string                `json:"day"`
	DurationMinutes *int                  `json:"duration_minutes"`
	Description     *string               `json:"description"`
	Exercises       []exerciseNodeRequest `json:"exercises"`
}

type exerciseNodeRequest struct {
	ID       int64                `json:"id,omitempty"`
	Destroy  bool                 `json:"destroy,omitempty"`
	Name     string               `json:"name"`
	Sections []sectionNodeRequest `json:"sections"`
}

type sectionNodeRequest struct {
	ID      int64 `json:"id,omitempty"`
	Destroy bool  `json:"destroy,omitempty"`
	sectionParamsRequest
}

type sectionParamsRequest struct {
	Load      *float64 `json:"load"`
	LoadUnit  string   `json:"load_unit"`
	Series    int      `json:"series"`
	Reps      *int     `json:"reps"`
	Equipment *string  `json:"equipment"`
	RPE       *float64 `json:"rpe"`
	Done      bool     `json:"done"`
}

func (req *workoutTreeRequest) toParams(weekID int64) models.WorkoutTreeParams {
	params := models.WorkoutTreeParams{
		WeekID:          weekID,
		Name:            req.Name,
		Day:             req.Day,
		DurationMinutes: req.DurationMinutes,
		Description:     req.Description,
	}
	for _, e := range req.Exercises {
		node := models.ExerciseNode{ID: e.ID, Destroy: e.Destroy, Name: e.Name}
		for _, s := range e.Sections {
			node.Sections = append(node.Sections, models.SectionNode{
				ID:            s.ID,
				Destroy:       s.Destroy,
				SectionParams: s.toParams(),
			})
		}
		params.Exercises = append(params.Exercises, node)
	}
	return params
}

func (req *sectionParamsRequest) toParams() models.SectionParams {
	return models.SectionParams{
		Load:      req.Load,
		LoadUnit:  req.LoadUnit,
		Series:    req.Series,
		Reps:      req.Reps,
		Equipment: req.Equipment,
		RPE:       req.RPE,
		Done:      req.Done,
	}
}

// Create adds a workout tree to a week.
func (h *Workouts) Create(w http.ResponseWriter, r *http.Request) {
	actor := middleware.UserFromContext(r.Context()).Actor()

	weekID, err := idParam(r, "id")
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	var req workoutTreeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.Log, err)
		return
	}

	workout, err := models.SaveWorkoutTree(h.DB, actor, 0, req.toParams(weekID))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, newWorkoutView(workout))
}

// Show returns one workout with its tree.
func (h *Workouts) Show(w http.ResponseWriter, r *http.Request) {
	actor := middleware.UserFromContext(r.Context()).Actor()

	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	workout, err := models.GetWorkoutTree(h.DB, actor, id)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, newWorkoutView(workout))
}

// Save applies a full tree update to an existing workout.
func (h *Workouts) Save(w http.ResponseWriter, r *http.Request) {
	actor := middleware.UserFromContext(r.Context()).Actor()

	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	var req workoutTreeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.Log, err)
		return
	}

	workout, err := models.SaveWorkoutTree(h.DB, actor, id, req.toParams(0))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, newWorkoutView(workout))
}

// Delete removes a workout and its tree.
func (h *Workouts) Delete(w http.ResponseWriter, r *http.Request) {
	actor := middleware.UserFromContext(r.Context()).Actor()

	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	if err := models.DeleteWorkout(h.DB, actor, id); err != nil {
		writeError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteExercise removes one exercise and its sections.
func (h *Workouts) DeleteExercise(w http.ResponseWriter, r *http.Request) {
	actor := middleware.UserFromContext(r.Context()).Actor()

	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	if err := models.DeleteExercise(h.DB, actor, id); err != nil {
		writeError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
