package execution

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"gitlab.com/codearena.net/internal/core/ports/primary"
	execution2 "gitlab.com/codearena.net/internal/core/services/execution"
	"gitlab.com/codearena.net/internal/domain"
	"gitlab.com/codearena.net/internal/handlers/response"
	"gitlab.com/codearena.net/internal/static/errs"
)

// ExecutionHandler handles code execution API requests
type ExecutionHandler struct {
	executionService execution2.IExecutionService
	logger           primary.Logger
}

// NewExecutionHandler creates a new execution handler
func NewExecutionHandler(executionService execution2.IExecutionService, logger primary.Logger) *ExecutionHandler {
	return &ExecutionHandler{
		executionService: executionService,
		logger:           logger,
	}
}

// RegisterRoutes registers the API routes for ExecutionHandler
func (h *ExecutionHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/execute", h.Execute).Methods("POST")
	router.HandleFunc("/api/jobs/{jobId}", h.GetJob).Methods("GET")
	router.HandleFunc("/api/run", h.Run).Methods("POST")
	router.HandleFunc("/health", h.Health).Methods("GET")
}

// Execute handles submission grading requests. It answers as soon as the
// job is queued; callers poll GetJob for the report.
func (h *ExecutionHandler) Execute(w http.ResponseWriter, r *http.Request) {
	var req ExecuteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("Failed to decode request", "error", err)
		response.WriteError(w, response.ErrorMessage{Error: "invalid request body", StatusCode: http.StatusBadRequest})
		return
	}

	sub := domain.NewSubmission(req.Code, domain.Language(req.Language), req.TestCases)
	sub.EntryPoint = req.EntryPoint
	sub.BattleID = req.BattleID
	sub.UserID = req.UserID

	jobID, err := h.executionService.SubmitCode(r.Context(), sub)
	if err != nil {
		if errs.IsValidation(err) {
			response.WriteError(w, response.ErrorMessage{Error: err.Error(), StatusCode: http.StatusBadRequest})
			return
		}
		h.logger.Error("Failed to submit code", "error", err)
		response.WriteError(w, response.ErrorMessage{Error: "failed to submit code", StatusCode: http.StatusInternalServerError})
		return
	}

	response.WriteJSON(w, http.StatusAccepted, ExecuteResponse{
		JobID:  jobID,
		Status: "queued",
	})
}

// GetJob handles job status polling requests
func (h *ExecutionHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	jobIDStr := vars["jobId"]

	// IDs are always uuids; anything else can never name a job.
	if _, err := uuid.Parse(jobIDStr); err != nil {
		h.logger.Debug("Malformed job ID", "id", jobIDStr)
		response.WriteError(w, response.ErrorMessage{Error: "job not found", StatusCode: http.StatusNotFound})
		return
	}

	record, err := h.executionService.GetJob(r.Context(), jobIDStr)
	if err != nil {
		if errors.Is(err, errs.JobNotFound) {
			response.WriteError(w, response.ErrorMessage{Error: "job not found", StatusCode: http.StatusNotFound})
			return
		}
		h.logger.Error("Failed to get job", "error", err)
		response.WriteError(w, response.ErrorMessage{Error: "failed to get job", StatusCode: http.StatusInternalServerError})
		return
	}

	response.WriteJSON(w, http.StatusOK, record)
}

// Run handles synchronous single-shot execution requests
func (h *ExecutionHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("Failed to decode request", "error", err)
		response.WriteError(w, response.ErrorMessage{Error: "invalid request body", StatusCode: http.StatusBadRequest})
		return
	}

	outcome, err := h.executionService.RunCode(r.Context(), req.Code, domain.Language(req.Language), req.Input, req.EntryPoint)
	if err != nil {
		if errs.IsValidation(err) {
			response.WriteError(w, response.ErrorMessage{Error: err.Error(), StatusCode: http.StatusBadRequest})
			return
		}
		h.logger.Error("Failed to run code", "error", err)
		response.WriteError(w, response.ErrorMessage{Error: "failed to run code", StatusCode: http.StatusInternalServerError})
		return
	}

	response.WriteJSON(w, http.StatusOK, outcome)
}

// Health handles liveness probes
func (h *ExecutionHandler) Health(w http.ResponseWriter, r *http.Request) {
	response.WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "execution-service",
	})
}
