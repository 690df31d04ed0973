package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/reverie-app/reverie-backend/internal/services"
)

// validateSession is swapped out in tests so handlers can be exercised
// without Redis.
var validateSession = services.ValidateSession

// extractBearerToken pulls the token out of an Authorization header.
func extractBearerToken(header string) string {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// requireAuth validates the session and returns the authenticated user's ID.
// Returns ("", false) if not authenticated.
func requireAuth(r *http.Request) (string, bool) {
	token := extractBearerToken(r.Header.Get("Authorization"))
	if token == "" {
		return "", false
	}
	userID, ok, err := validateSession(token)
	if err != nil || !ok {
		return "", false
	}
	return userID.String(), true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"success": false,
		"message": message,
	})
}
