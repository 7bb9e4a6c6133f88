package api

import (
	"errors"
	"net/http"
	"time"

	"opentrainer/plan-service/internal/domain"
	"opentrainer/plan-service/internal/repository"
	"opentrainer/plan-service/internal/storage"

	"github.com/gin-gonic/gin"
)

// PlanHandler holds the plan store and archive dependencies.
type PlanHandler struct {
	repo    repository.PlanRepository
	archive storage.PlanArchive // optional; nil disables schedule URLs
}

// NewPlanHandler creates a new PlanHandler.
func NewPlanHandler(repo repository.PlanRepository, archive storage.PlanArchive) *PlanHandler {
	return &PlanHandler{repo: repo, archive: archive}
}

// --- DTOs for API (Data Transfer Objects) ---

// PlanResponse is the DTO for returning plan record details.
type PlanResponse struct {
	UserID          string            `json:"userId"`
	PlanID          string            `json:"planId"`
	Title           string            `json:"title"`
	Description     string            `json:"description,omitempty"`
	DurationWeeks   *int              `json:"durationWeeks,omitempty"`
	DifficultyLevel string            `json:"difficultyLevel,omitempty"`
	Status          string            `json:"status"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
	Metadata        map[string]string `json:"metadata,omitempty"`
	ScheduleURL     string            `json:"scheduleUrl,omitempty"`
}

// MapPlanToResponse converts a domain.PlanRecord to a PlanResponse DTO.
func MapPlanToResponse(record *domain.PlanRecord, scheduleURL string) PlanResponse {
	if record == nil {
		return PlanResponse{}
	}
	return PlanResponse{
		UserID:          record.UserID,
		PlanID:          record.PlanID,
		Title:           record.Title,
		Description:     record.Description,
		DurationWeeks:   record.DurationWeeks,
		DifficultyLevel: record.DifficultyLevel,
		Status:          string(record.Status),
		CreatedAt:       record.CreatedAt,
		UpdatedAt:       record.UpdatedAt,
		Metadata:        record.Metadata,
		ScheduleURL:     scheduleURL,
	}
}

// --- Handler Methods ---

// ListPlans returns all plan records for a user, newest first.
func (h *PlanHandler) ListPlans(c *gin.Context) {
	userID := c.Param("userId")
	if userID == "" {
		abortWithError(c, http.StatusBadRequest, "userId is required")
		return
	}

	records, err := h.repo.QueryByUserID(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to query plans")
		return
	}

	responses := make([]PlanResponse, len(records))
	for i := range records {
		responses[i] = MapPlanToResponse(&records[i], "")
	}
	c.JSON(http.StatusOK, responses)
}

// GetPlan returns a single plan record. When the record carries an archived
// schedule document, the response includes a presigned URL for it.
func (h *PlanHandler) GetPlan(c *gin.Context) {
	userID := c.Param("userId")
	planID := c.Param("planId")

	record, err := h.repo.GetByKey(c.Request.Context(), userID, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			abortWithError(c, http.StatusNotFound, "Plan not found")
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to load plan")
		return
	}

	scheduleURL := ""
	if objectKey, ok := record.Metadata[domain.MetaScheduleObjectKey]; ok && h.archive != nil {
		// Best-effort: a presign failure leaves scheduleUrl empty rather than
		// failing the whole response.
		if url, err := h.archive.PresignedScheduleURL(c.Request.Context(), objectKey, storage.DefaultPresignedURLExpiry); err == nil {
			scheduleURL = url
		}
	}

	c.JSON(http.StatusOK, MapPlanToResponse(record, scheduleURL))
}

// DeletePlan removes a plan record (administrative operation) along with its
// archived schedule document when present.
func (h *PlanHandler) DeletePlan(c *gin.Context) {
	userID := c.Param("userId")
	planID := c.Param("planId")

	record, err := h.repo.GetByKey(c.Request.Context(), userID, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			abortWithError(c, http.StatusNotFound, "Plan not found")
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to load plan")
		return
	}

	if objectKey, ok := record.Metadata[domain.MetaScheduleObjectKey]; ok && h.archive != nil {
		// Best-effort cleanup; the metadata record is the source of truth.
		_ = h.archive.DeleteObject(c.Request.Context(), objectKey)
	}

	if err := h.repo.DeleteByKey(c.Request.Context(), userID, planID); err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to delete plan")
		return
	}

	c.Status(http.StatusNoContent)
}
