package handlers

import (
	"database/sql"
	"io"
	"log/slog"
	"net/http"

	"github.com/blocklift/blocklift/internal/importers"
	"github.com/blocklift/blocklift/internal/middleware"
	"github.com/blocklift/blocklift/internal/models"
)

// maxUploadBytes bounds one import request body (spreadsheets are small).
const maxUploadBytes = 16 << 20

// Imports handles the spreadsheet import flow: parse uploads into drafts,
// validate drafts against a target block, and commit the reviewed batch.
// Draft state between steps is held by the client, not the server.
type Imports struct {
	DB  *sql.DB
	Log *slog.Logger
}

type parseResponse struct {
	Drafts []*importers.ParsedBlockWeek `json:"drafts"`
	Errors []importers.FileError        `json:"errors,omitempty"`
}

// Parse accepts 1-5 spreadsheet files as multipart form data ("files") and
// returns the drafts that parsed plus per-file errors for those that did not.
func (h *Imports) Parse(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid multipart body: " + err.Error()})
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "no files uploaded"})
		return
	}
	if len(files) > importers.MaxUploadFiles {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "at most 5 files per import"})
		return
	}

	uploads := make([]importers.Upload, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			writeError(w, h.Log, err)
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			writeError(w, h.Log, err)
			return
		}
		uploads = append(uploads, importers.Upload{Name: fh.Filename, Data: data})
	}

	drafts, fileErrors := importers.ParseUploads(uploads)
	writeJSON(w, http.StatusOK, parseResponse{Drafts: drafts, Errors: fileErrors})
}

type validateRequest struct {
	BlockID int64                        `json:"block_id"`
	Drafts  []*importers.ParsedBlockWeek `json:"drafts"`
}

// Validate matches each draft's declared week number against the target
// block's weeks and returns per-draft results.
func (h *Imports) Validate(w http.ResponseWriter, r *http.Request) {
	actor := middleware.UserFromContext(r.Context()).Actor()

	var req validateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.Log, err)
		return
	}

	validations, err := models.ValidateDrafts(h.DB, actor, req.BlockID, req.Drafts)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, validations)
}

// Commit writes the reviewed drafts into the target block atomically.
func (h *Imports) Commit(w http.ResponseWriter, r *http.Request) {
	actor := middleware.UserFromContext(r.Context()).Actor()

	var req validateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.Log, err)
		return
	}

	result, err := models.CommitImport(h.DB, actor, req.BlockID, req.Drafts)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}
