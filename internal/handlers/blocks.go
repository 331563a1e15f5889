package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/blocklift/blocklift/internal/middleware"
	"github.com/blocklift/blocklift/internal/models"
)

// Blocks handles training block CRUD.
type Blocks struct {
	DB  *sql.DB
	Log *slog.Logger
}

// ListForStudent returns a student's blocks, most recent first.
func (h *Blocks) ListForStudent(w http.ResponseWriter, r *http.Request) {
	actor := middleware.UserFromContext(r.Context()).Actor()

	studentID, err := idParam(r, "id")
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	blocks, err := models.ListBlocksForStudent(h.DB, actor, studentID)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	views := make([]blockView, 0, len(blocks))
	for _, b := range blocks {
		views = append(views, newBlockView(b))
	}
	writeJSON(w, http.StatusOK, views)
}

type createBlockRequest struct {
	Title      string `json:"title"`
	StartDate  string `json:"start_date"`
	WeeksCount int    `json:"weeks_count"`
}

// Create adds a block for a student, tiling its weeks.
func (h *Blocks) Create(w http.ResponseWriter, r *http.Request) {
	actor := middleware.UserFromContext(r.Context()).Actor()

	studentID, err := idParam(r, "id")
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	var req createBlockRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.Log, err)
		return
	}

	block, err := models.CreateBlock(h.DB, actor, studentID, req.Title, req.StartDate, req.WeeksCount)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, newBlockView(block))
}

// Show returns a block with its weeks.
func (h *Blocks) Show(w http.ResponseWriter, r *http.Request) {
	actor := middleware.UserFromContext(r.Context()).Actor()

	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	block, err := models.GetBlock(h.DB, actor, id)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, newBlockView(block))
}

type updateBlockRequest struct {
	Title      *string `json:"title"`
	StartDate  *string `json:"start_date"`
	WeeksCount *int    `json:"weeks_count"`
}

// Update retitles or resizes a block. Resizing re-tiles the weeks and is
// rejected once the block has workouts.
func (h *Blocks) Update(w http.ResponseWriter, r *http.Request) {
	actor := middleware.UserFromContext(r.Context()).Actor()

	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	var req updateBlockRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.Log, err)
		return
	}

	block, err := models.UpdateBlock(h.DB, actor, id, models.UpdateBlockParams{
		Title:      req.Title,
		StartDate:  req.StartDate,
		WeeksCount: req.WeeksCount,
	})
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, newBlockView(block))
}

// Delete removes a block and everything under it.
func (h *Blocks) Delete(w http.ResponseWriter, r *http.Request) {
	actor := middleware.UserFromContext(r.Context()).Actor()

	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	if err := models.DeleteBlock(h.DB, actor, id); err != nil {
		writeError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
