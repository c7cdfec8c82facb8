package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"novara/internal/httputil"
	"novara/internal/transport/http/middleware"
)

// pathID parses the {id} URL parameter. Ids that do not parse as positive
// integers cannot name any record, so they are reported as not found.
func pathID(w http.ResponseWriter, r *http.Request, notFound string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httputil.WriteNotFound(w, notFound)
		return 0, false
	}
	return id, true
}

// callerID returns the authenticated user, writing a 401 when there is none.
func callerID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return 0, false
	}
	return userID, true
}
