package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-goals/internal/core/services"
)

type ProgressHandler struct {
	svc *services.ProgressService
}

func NewProgressHandler(svc *services.ProgressService) *ProgressHandler {
	return &ProgressHandler{svc: svc}
}

type recordProgressRequest struct {
	Week  int    `json:"week"`
	Value *int   `json:"value" binding:"required"`
	Notes string `json:"notes"`
}

type updateProgressRequest struct {
	Value   *int   `json:"value" binding:"required"`
	Notes   string `json:"notes"`
	Version int    `json:"version"`
}

func (h *ProgressHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/goals/:id/progress", h.ListByGoal)
	router.POST("/goals/:id/progress", h.Record)

	progress := router.Group("/progress")
	{
		progress.GET("/sync", h.Sync)
		progress.PUT("/:id", h.Update)
		progress.DELETE("/:id", h.Delete)
	}
}

// Record godoc
// @Summary  Log progress for a week (omit week for the current one)
// @Tags     progress
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    id   path string                true "Goal ID"
// @Param    body body recordProgressRequest true "Progress"
// @Success  201 {object} domain.WeeklyProgress
// @Failure  400,403,404,422 {object} map[string]string
// @Router   /goals/{id}/progress [post]
func (h *ProgressHandler) Record(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req recordProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	entry, err := h.svc.Record(c.Request.Context(), services.RecordProgressInput{
		GoalID: c.Param("id"),
		UserID: userID,
		Week:   req.Week,
		Value:  *req.Value,
		Notes:  req.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// ListByGoal godoc
// @Summary  Progress entries of a goal ordered by week
// @Tags     progress
// @Produce  json
// @Security BearerAuth
// @Param    id path string true "Goal ID"
// @Success  200 {array} domain.WeeklyProgress
// @Router   /goals/{id}/progress [get]
func (h *ProgressHandler) ListByGoal(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	entries, err := h.svc.ListByGoalID(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, entries)
}

// Update godoc
// @Summary  Change a logged value
// @Tags     progress
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    id   path string                true "Progress ID"
// @Param    body body updateProgressRequest true "Changes"
// @Success  200 {object} domain.WeeklyProgress
// @Failure  400,404,409,422 {object} map[string]string
// @Router   /progress/{id} [put]
func (h *ProgressHandler) Update(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req updateProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	entry, err := h.svc.Update(c.Request.Context(), services.UpdateProgressInput{
		ID:      c.Param("id"),
		UserID:  userID,
		Value:   *req.Value,
		Notes:   req.Notes,
		Version: req.Version,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, entry)
}

// Delete godoc
// @Summary  Soft-delete a progress entry
// @Tags     progress
// @Security BearerAuth
// @Param    id path string true "Progress ID"
// @Success  204
// @Router   /progress/{id} [delete]
func (h *ProgressHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Sync godoc
// @Summary  Progress changed since last_sync, including deletions
// @Tags     progress
// @Produce  json
// @Security BearerAuth
// @Param    last_sync query string false "RFC3339 timestamp"
// @Success  200 {object} map[string]interface{}
// @Router   /progress/sync [get]
func (h *ProgressHandler) Sync(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	lastSync, ok := parseLastSync(c)
	if !ok {
		return
	}

	deltas, err := h.svc.GetDelta(c.Request.Context(), userID, lastSync)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"changes":   deltas,
		"timestamp": time.Now().UTC(),
	})
}
