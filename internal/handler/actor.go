package handler

import (
	"net/http"

	"task-manager-api/internal/middleware"
)

// actorFromRequest returns the authenticated user's ID, or "" for
// unauthenticated requests.
func actorFromRequest(r *http.Request) string {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		return ""
	}

	return claims.Subject
}
