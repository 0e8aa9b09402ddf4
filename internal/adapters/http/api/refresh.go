package api

import (
	"net/http"
)

// RefreshHandler queues background refreshes.
type RefreshHandler struct {
	deps RefreshDependencies
}

// NewRefreshHandler creates a new refresh handler.
func NewRefreshHandler(deps RefreshDependencies) *RefreshHandler {
	return &RefreshHandler{deps: deps}
}

// HandleRefresh handles POST /api/credit-reports/users/{userId}/refresh.
// A queued job is answered with 202, a pending duplicate with 200.
func (h *RefreshHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	ticket, err := h.deps.Refresh(r.Context(), r.PathValue("userId"))
	if err != nil {
		writeError(w, Wrap("api.refresh", err))
		return
	}
	status := http.StatusAccepted
	if ticket.Duplicate {
		status = http.StatusOK
	}
	writeJSON(w, status, ticket)
}
