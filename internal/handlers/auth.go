package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/blocklift/blocklift/internal/models"
)

// Auth handles login and logout.
type Auth struct {
	DB       *sql.DB
	Sessions *scs.SessionManager
	Log      *slog.Logger
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

// Login verifies credentials and starts a session.
func (h *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.Log, err)
		return
	}

	user, err := models.Authenticate(h.DB, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid username or password"})
			return
		}
		writeError(w, h.Log, err)
		return
	}

	// Rotate the session token on privilege change.
	if err := h.Sessions.RenewToken(r.Context()); err != nil {
		writeError(w, h.Log, err)
		return
	}
	h.Sessions.Put(r.Context(), "userID", user.ID)

	writeJSON(w, http.StatusOK, loginResponse{
		ID:       user.ID,
		Username: user.Username,
		Name:     user.Name,
		Role:     user.Role,
	})
}

// Logout destroys the session.
func (h *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.Destroy(r.Context()); err != nil {
		writeError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
