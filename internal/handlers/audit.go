package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/jobtrackhq/jobtrack/internal/models"
	"github.com/jobtrackhq/jobtrack/internal/repo"
)

// AuditHandler exposes the caller's own audit trail.
type AuditHandler struct {
	Repo *repo.AuditRepo
}

// ListAudit returns the authenticated user's recent audit entries, newest first.
func (h *AuditHandler) ListAudit(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	limit := 50
	offset := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		if val, err := strconv.Atoi(l); err == nil && val > 0 {
			limit = val
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if val, err := strconv.Atoi(o); err == nil && val >= 0 {
			offset = val
		}
	}

	entries, err := h.Repo.ListByUser(r.Context(), owner, limit, offset)
	if err != nil {
		slog.Error("list audit", "error", err, "owner", owner)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	if entries == nil {
		entries = []models.AuditEntry{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"entries": entries})
}
