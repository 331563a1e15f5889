package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"

	"github.com/alexedwards/scs/v2"
)

const csrfSessionKey = "csrfToken"

// CSRFProtect issues a per-session CSRF token and validates it on
// state-changing requests (POST, PUT, PATCH, DELETE). The token is exposed to
// the client in the X-CSRF-Token response header; mutating requests must echo
// it back in the same request header. Clients read the header from any safe
// request after login.
//
// Must run inside scs LoadAndSave so the session is available.
func CSRFProtect(sm *scs.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := sm.GetString(r.Context(), csrfSessionKey)
			if token == "" {
				token = newCSRFToken()
				sm.Put(r.Context(), csrfSessionKey, token)
			}
			w.Header().Set("X-CSRF-Token", token)

			switch r.Method {
			case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
				if !csrfTokensMatch(token, r.Header.Get("X-CSRF-Token")) {
					writeAuthError(w, http.StatusForbidden, "invalid CSRF token")
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// newCSRFToken returns a 32-byte hex-encoded random string.
func newCSRFToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand does not fail on supported platforms.
		panic("middleware: generate CSRF token: " + err.Error())
	}
	return hex.EncodeToString(b)
}

// csrfTokensMatch compares tokens in constant time.
func csrfTokensMatch(expected, actual string) bool {
	if expected == "" || actual == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(actual)) == 1
}
