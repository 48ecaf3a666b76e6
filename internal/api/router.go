// internal/api/router.go
package api

import (
	"net/http"
)

// RegisterRoutes mounts every authenticated API route on mux.
func RegisterRoutes(mux *http.ServeMux, h *Handler, authn func(http.Handler) http.Handler) {
	handle := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, authn(fn))
	}

	// Problems
	handle("POST /problems", h.createProblem)
	handle("PATCH /problems/{problemID}/status", h.updateProblemStatus)

	// Problem sets
	handle("POST /problem-sets", h.createProblemSet)
	handle("GET /problem-sets/{setID}", h.getProblemSet)

	// Sessions
	handle("POST /problem-sets/{setID}/sessions", h.startSession)
	handle("GET /sessions/{sessionID}", h.getSession)
	handle("POST /sessions/{sessionID}/progress", h.recordProgress)
	handle("POST /sessions/{sessionID}/complete", h.completeSession)
	handle("DELETE /sessions/{sessionID}", h.deleteSession)
}
