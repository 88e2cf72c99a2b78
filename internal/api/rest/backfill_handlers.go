package rest

import (
	"encoding/json"
	"net/http"

	"github.com/fortuna/gridiron/internal/backfill"
	"github.com/gorilla/mux"
)

// BackfillHandler proxies API calls to the backfill service.
type BackfillHandler struct {
	service *backfill.Service
}

// NewBackfillHandler wires the REST layer to the backfill service.
func NewBackfillHandler(service *backfill.Service) *BackfillHandler {
	return &BackfillHandler{service: service}
}

type apiBackfillRequest struct {
	JobType     string `json:"job_type"`
	Season      int    `json:"season"`
	Seasons     []int  `json:"seasons"`
	Weeks       []int  `json:"weeks"`
	RequestedBy string `json:"requested_by"`
}

// EnqueueJob handles POST /api/v1/backfill/jobs
func (h *BackfillHandler) EnqueueJob(w http.ResponseWriter, r *http.Request) {
	var req apiBackfillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	backfillReq := backfill.Request{
		JobType:     req.JobType,
		Seasons:     req.Seasons,
		Weeks:       req.Weeks,
		RequestedBy: req.RequestedBy,
	}
	if req.Season != 0 {
		backfillReq.Seasons = append(backfillReq.Seasons, req.Season)
	}

	job, err := h.service.Enqueue(r.Context(), backfillReq)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Failed to enqueue backfill job", err)
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]interface{}{
		"job": jobPayload(job),
	})
}

// ListJobs handles GET /api/v1/backfill/jobs
func (h *BackfillHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.GetStatus(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch status", err)
		return
	}

	respondJSON(w, http.StatusOK, buildStatusPayload(summary))
}

// GetJob handles GET /api/v1/backfill/jobs/{jobID}
func (h *BackfillHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["jobID"]

	job, err := h.service.GetJob(r.Context(), jobID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch job", err)
		return
	}
	if job == nil {
		respondError(w, http.StatusNotFound, "Job not found", nil)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"job": jobPayload(job),
	})
}

// CancelJob handles DELETE /api/v1/backfill/jobs/{jobID}
func (h *BackfillHandler) CancelJob(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["jobID"]

	if err := h.service.Cancel(r.Context(), jobID); err != nil {
		respondError(w, http.StatusConflict, "Failed to cancel job", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Job cancelled",
		"job_id":  jobID,
	})
}

func buildStatusPayload(summary *backfill.StatusSummary) map[string]interface{} {
	response := map[string]interface{}{
		"status":  "idle",
		"message": "No active jobs",
		"history": []map[string]interface{}{},
	}

	if summary.ActiveJob != nil {
		response["status"] = summary.ActiveJob.Status
		if summary.ActiveJob.StatusMessage.Valid {
			response["message"] = summary.ActiveJob.StatusMessage.String
		}
		response["active_job"] = jobPayload(summary.ActiveJob)
	}

	history := make([]map[string]interface{}, 0, len(summary.History))
	for _, job := range summary.History {
		history = append(history, jobPayload(job))
	}

	response["history"] = history
	return response
}

func jobPayload(job *backfill.Job) map[string]interface{} {
	if job == nil {
		return nil
	}

	payload := map[string]interface{}{
		"job_id":           job.JobID,
		"job_type":         job.JobType,
		"status":           job.Status,
		"seasons":          job.Seasons,
		"progress_current": job.ProgressCurrent,
		"progress_total":   job.ProgressTotal,
		"records_loaded":   job.RecordsLoaded,
		"created_at":       job.CreatedAt,
		"updated_at":       job.UpdatedAt,
	}

	if job.StatusMessage.Valid {
		payload["status_message"] = job.StatusMessage.String
	}
	if len(job.Weeks) > 0 {
		payload["weeks"] = job.Weeks
	}
	if job.RequestedBy.Valid {
		payload["requested_by"] = job.RequestedBy.String
	}
	if job.StartedAt.Valid {
		payload["started_at"] = job.StartedAt.Time
	}
	if job.CompletedAt.Valid {
		payload["completed_at"] = job.CompletedAt.Time
	}
	if job.LastError.Valid {
		payload["last_error"] = job.LastError.String
	}

	return payload
}
