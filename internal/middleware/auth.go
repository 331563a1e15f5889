package middleware

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/blocklift/blocklift/internal/models"
)

type contextKey string

const userContextKey contextKey = "user"

// RequireAuth resolves the session's user and puts it on the request
// context. Unauthenticated requests get a 401 JSON body.
func RequireAuth(sm *scs.SessionManager, db *sql.DB, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := sm.GetInt64(r.Context(), "userID")
			if userID == 0 {
				writeAuthError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			user, err := models.GetUserByID(db, userID)
			if err != nil {
				log.Warn("session user load failed", "user_id", userID, "error", err)
				sm.Destroy(r.Context())
				writeAuthError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireCoach rejects actors that are neither coaches nor admins. Handlers
// still enforce ownership per entity; this gates whole route groups.
func RequireCoach(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := UserFromContext(r.Context())
		if user == nil || (user.Role != models.RoleCoach && user.Role != models.RoleAdmin) {
			writeAuthError(w, http.StatusForbidden, "coach access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// UserFromContext retrieves the authenticated user from the request context.
// Returns nil if no user is set (should not happen behind RequireAuth).
func UserFromContext(ctx context.Context) *models.User {
	u, _ := ctx.Value(userContextKey).(*models.User)
	return u
}

// WithUser returns a request carrying the given user, bypassing session
// resolution. Intended for handler tests.
func WithUser(r *http.Request, user *models.User) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), userContextKey, user))
}

func writeAuthError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"error":"` + msg + `"}`))
}
