package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"boq_engine/internal/engine"
	"boq_engine/internal/middleware"
	"boq_engine/internal/models"
	"boq_engine/internal/storage"
	"boq_engine/internal/utils"
)

// CalculateResponse is the body of a successful calculation.
type CalculateResponse struct {
	Success            bool                     `json:"success"`
	BoQID              uuid.UUID                `json:"boq_id"`
	ResourcesProcessed int                      `json:"resources_processed"`
	Summary            models.BoQSummary        `json:"summary"`
	Results            []*models.BoQLineItem    `json:"results"`
	Skipped            []engine.SkippedResource `json:"skipped,omitempty"`
}

// FailureResponse is the structured body of a failed calculation.
type FailureResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// handleCalculate runs a calculation over the requested resource scope.
func (d *Dependencies) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var req engine.Request
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
			return
		}
	}

	// Keys may be scoped to a set of projects.
	if record, ok := middleware.GetAPIKeyRecord(r.Context()); ok {
		for _, projectID := range req.Filter.ProjectIDs {
			if !record.AllowsProject(projectID) {
				utils.RespondWithError(w, http.StatusForbidden, "API key is not allowed to access project "+projectID)
				return
			}
		}
	}

	result, err := d.Calculator.Calculate(r.Context(), req)
	if err != nil {
		if errors.Is(err, engine.ErrNoMatchingResources) {
			utils.RespondWithJSON(w, http.StatusNotFound, FailureResponse{
				Success: false,
				Message: err.Error(),
			})
			return
		}
		d.Log.Error("calculation failed", zap.Error(err))
		utils.RespondWithJSON(w, http.StatusInternalServerError, FailureResponse{
			Success: false,
			Message: "calculation failed: " + err.Error(),
		})
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, CalculateResponse{
		Success:            true,
		BoQID:              result.BoQID,
		ResourcesProcessed: result.Processed,
		Summary:            result.Summary,
		Results:            result.LineItems,
		Skipped:            result.Skipped,
	})
}

// BoQResponse is the body of a past-run lookup.
type BoQResponse struct {
	Summary models.BoQSummary     `json:"summary"`
	Results []*models.BoQLineItem `json:"results"`
}

// handleGetBoQ returns the line items and summary of a past run.
func (d *Dependencies) handleGetBoQ(w http.ResponseWriter, r *http.Request) {
	boqID, err := uuid.Parse(r.PathValue("boq_id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid BoQ id")
		return
	}

	items, err := d.BoQ.GetByBoQID(r.Context(), boqID)
	if err != nil {
		if errors.Is(err, storage.ErrBoQNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "BoQ not found")
			return
		}
		d.Log.Error("boq lookup failed", zap.String("boq_id", boqID.String()), zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to load BoQ")
		return
	}

	generatedAt := time.Now().UTC()
	if len(items) > 0 {
		generatedAt = items[0].CreatedAt
	}

	utils.RespondWithJSON(w, http.StatusOK, BoQResponse{
		Summary: engine.Summarize(boqID, items, generatedAt),
		Results: items,
	})
}
