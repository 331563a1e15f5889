package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/blocklift/blocklift/internal/middleware"
	"github.com/blocklift/blocklift/internal/models"
)

// Sections handles per-set logging: single edits, the batched "save changes"
// flush, and deletes.
type Sections struct {
	DB  *sql.DB
	Log *slog.Logger
}

// Update writes one section's fields and refreshes its estimated PR.
func (h *Sections) Update(w http.ResponseWriter, r *http.Request) {
	actor := middleware.UserFromContext(r.Context()).Actor()

	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	var req sectionParamsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.Log, err)
		return
	}

	section, err := models.UpdateSection(h.DB, actor, id, req.toParams())
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, newSectionView(section))
}

type sectionBatchRequest struct {
	Sections []sectionBatchItem `json:"sections"`
}

type sectionBatchItem struct {
	ID int64 `json:"id"`
	sectionParamsRequest
}

// BatchUpdate applies all dirty sections in one transaction.
func (h *Sections) BatchUpdate(w http.ResponseWriter, r *http.Request) {
	actor := middleware.UserFromContext(r.Context()).Actor()

	var req sectionBatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.Log, err)
		return
	}

	updates := make([]models.SectionUpdate, 0, len(req.Sections))
	for _, item := range req.Sections {
		updates = append(updates, models.SectionUpdate{ID: item.ID, Params: item.toParams()})
	}

	sections, err := models.UpdateSections(h.DB, actor, updates)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	views := make([]sectionView, 0, len(sections))
	for _, s := range sections {
		views = append(views, newSectionView(s))
	}
	writeJSON(w, http.StatusOK, views)
}

// Delete removes a single section.
func (h *Sections) Delete(w http.ResponseWriter, r *http.Request) {
	actor := middleware.UserFromContext(r.Context()).Actor()

	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	if err := models.DeleteSection(h.DB, actor, id); err != nil {
		writeError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
