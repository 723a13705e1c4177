package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/jobtrackhq/jobtrack/internal/metrics"
	"github.com/jobtrackhq/jobtrack/internal/middleware"
	"github.com/jobtrackhq/jobtrack/internal/models"
	"github.com/jobtrackhq/jobtrack/internal/repo"
)

// ==========================
// JobHandler
// ==========================
// The owner id for every repo call comes from the authenticated context,
// never from the request body or query, so a caller cannot operate on
// another user's records.
type JobHandler struct {
	Repo      *repo.JobRepo
	AuditRepo *repo.AuditRepo
}

// ownerID pulls the authenticated user id out of the context. The JWT
// middleware guarantees it for protected routes; a miss means the route is
// wired wrong, answered with a 401 rather than a panic.
func ownerID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, ok := middleware.GetUserID(r.Context())
	if !ok {
		JSONError(w, "unauthorized", http.StatusUnauthorized)
		return 0, false
	}
	return id, true
}

func jobID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "invalid job id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// ==========================
// Create Job
// ==========================
func (h *JobHandler) CreateJob(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	var input struct {
		Company  string `json:"company" validate:"required,min=1,max=100"`
		Position string `json:"position" validate:"required,min=1,max=200"`
		Status   string `json:"status" validate:"omitempty,oneof=pending interview declined"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	if err := validate.Struct(input); err != nil {
		JSONValidationError(w, "validation failed", validationFields(err), http.StatusBadRequest)
		return
	}

	status := input.Status
	if status == "" {
		status = models.StatusPending
	}

	job, err := h.Repo.Create(r.Context(), owner, input.Company, input.Position, status)
	if err != nil {
		slog.Error("create job", "error", err, "owner", owner)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	h.audit(r, owner, "create", job.ID)
	metrics.IncJobMutation("create")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{"job": job})
}

// ==========================
// List Jobs
// ==========================
func (h *JobHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
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

	jobs, err := h.Repo.ListByOwner(r.Context(), owner, limit, offset)
	if err != nil {
		slog.Error("list jobs", "error", err, "owner", owner)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	count, err := h.Repo.CountByOwner(r.Context(), owner)
	if err != nil {
		slog.Error("count jobs", "error", err, "owner", owner)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	if jobs == nil {
		jobs = []models.Job{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"jobs":  jobs,
		"count": count,
	})
}

// ==========================
// Get Job
// ==========================
func (h *JobHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}
	id, ok := jobID(w, r)
	if !ok {
		return
	}

	job, err := h.Repo.Get(r.Context(), owner, id)
	if err != nil {
		h.jobError(w, err, owner)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"job": job})
}

// ==========================
// Update Job (partial)
// ==========================
func (h *JobHandler) UpdateJob(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}
	id, ok := jobID(w, r)
	if !ok {
		return
	}

	var input struct {
		Company  *string `json:"company" validate:"omitempty,min=1,max=100"`
		Position *string `json:"position" validate:"omitempty,min=1,max=200"`
		Status   *string `json:"status" validate:"omitempty,oneof=pending interview declined"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	if err := validate.Struct(input); err != nil {
		JSONValidationError(w, "validation failed", validationFields(err), http.StatusBadRequest)
		return
	}

	job, err := h.Repo.Update(r.Context(), owner, id, repo.JobUpdate{
		Company:  input.Company,
		Position: input.Position,
		Status:   input.Status,
	})
	if err != nil {
		h.jobError(w, err, owner)
		return
	}

	h.audit(r, owner, "update", job.ID)
	metrics.IncJobMutation("update")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"job": job})
}

// ==========================
// Delete Job
// ==========================
func (h *JobHandler) DeleteJob(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}
	id, ok := jobID(w, r)
	if !ok {
		return
	}

	job, err := h.Repo.Delete(r.Context(), owner, id)
	if err != nil {
		h.jobError(w, err, owner)
		return
	}

	h.audit(r, owner, "delete", job.ID)
	metrics.IncJobMutation("delete")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"job": job})
}

// jobError maps repo errors to responses. A job owned by someone else and a
// job that does not exist produce the identical 404.
func (h *JobHandler) jobError(w http.ResponseWriter, err error, owner int) {
	if errors.Is(err, repo.ErrNotFound) {
		JSONError(w, "job not found", http.StatusNotFound)
		return
	}
	slog.Error("job storage", "error", err, "owner", owner)
	JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
}

// audit records the mutation when an audit repo is wired. Failures are
// logged, never surfaced; the job operation already succeeded.
func (h *JobHandler) audit(r *http.Request, owner int, action string, jobID int) {
	if h.AuditRepo == nil {
		return
	}
	if err := h.AuditRepo.Log(r.Context(), owner, action, "job", jobID, ""); err != nil {
		slog.Error("audit log", "error", err, "action", action, "job_id", jobID)
	}
}
