package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-goals/internal/core/services"
)

const dateLayout = "2006-01-02"

type GoalHandler struct {
	svc *services.GoalService
}

func NewGoalHandler(svc *services.GoalService) *GoalHandler {
	return &GoalHandler{svc: svc}
}

type createGoalRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	Color       string  `json:"color"`
	Icon        string  `json:"icon"`
	Type        string  `json:"type"`
	Unit        string  `json:"unit"`
	TargetValue int     `json:"target_value"`
	CycleWeeks  int     `json:"cycle_weeks"`
	StartDate   string  `json:"start_date"`
	GroupID     *string `json:"group_id"`
}

type updateGoalRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       string `json:"color"`
	Icon        string `json:"icon"`
	Type        string `json:"type"`
	Unit        string `json:"unit"`
	TargetValue int    `json:"target_value"`
	CycleWeeks  int    `json:"cycle_weeks"`
	StartDate   string `json:"start_date"`
	SortOrder   *int   `json:"sort_order"`
	Version     int    `json:"version"`
}

type weekResponse struct {
	Week      int       `json:"week"`
	StartDate time.Time `json:"week_start"`
	EndDate   time.Time `json:"week_end"`
	Label     string    `json:"label"`
}

func (h *GoalHandler) RegisterRoutes(router *gin.RouterGroup) {
	goals := router.Group("/goals")
	{
		goals.POST("", h.Create)
		goals.GET("", h.List)
		goals.GET("/sync", h.Sync)
		goals.GET("/:id", h.Get)
		goals.PUT("/:id", h.Update)
		goals.DELETE("/:id", h.Delete)
		goals.GET("/:id/cycle", h.Cycle)
		goals.GET("/:id/weeks/:week", h.Week)
	}
}

// parseDate accepts an empty string as "not provided".
func parseDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create godoc
// @Summary  Create a goal
// @Tags     goals
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    body body createGoalRequest true "Goal"
// @Success  201 {object} domain.Goal
// @Failure  400,403,404 {object} map[string]string
// @Router   /goals [post]
func (h *GoalHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req createGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	start, err := parseDate(req.StartDate)
	if err != nil {
		badRequest(c, "invalid start_date format, expected YYYY-MM-DD")
		return
	}

	goal, err := h.svc.Create(c.Request.Context(), services.CreateGoalInput{
		UserID:      userID,
		GroupID:     req.GroupID,
		Title:       req.Title,
		Description: req.Description,
		Color:       req.Color,
		Icon:        req.Icon,
		Type:        req.Type,
		Unit:        req.Unit,
		TargetValue: req.TargetValue,
		CycleWeeks:  req.CycleWeeks,
		StartDate:   start,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, goal)
}

// List godoc
// @Summary  List the caller's goals
// @Tags     goals
// @Produce  json
// @Security BearerAuth
// @Success  200 {array} domain.Goal
// @Router   /goals [get]
func (h *GoalHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	list, err := h.svc.ListByUserID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// Sync godoc
// @Summary  Goals changed since last_sync, including deletions
// @Tags     goals
// @Produce  json
// @Security BearerAuth
// @Param    last_sync query string false "RFC3339 timestamp"
// @Success  200 {object} map[string]interface{}
// @Router   /goals/sync [get]
func (h *GoalHandler) Sync(c *gin.Context) {
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

func parseLastSync(c *gin.Context) (time.Time, bool) {
	raw := c.Query("last_sync")
	if raw == "" {
		return time.Time{}, true
	}

	lastSync, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		badRequest(c, "invalid last_sync format, use RFC3339")
		return time.Time{}, false
	}
	return lastSync, true
}

// Get godoc
// @Summary  Fetch one goal
// @Tags     goals
// @Produce  json
// @Security BearerAuth
// @Param    id path string true "Goal ID"
// @Success  200 {object} domain.Goal
// @Failure  404 {object} map[string]string
// @Router   /goals/{id} [get]
func (h *GoalHandler) Get(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	goal, err := h.svc.Get(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, goal)
}

// Update godoc
// @Summary  Update a goal with optimistic locking on version
// @Tags     goals
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    id   path string            true "Goal ID"
// @Param    body body updateGoalRequest true "Changes"
// @Success  200 {object} domain.Goal
// @Failure  400,404,409 {object} map[string]string
// @Router   /goals/{id} [put]
func (h *GoalHandler) Update(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req updateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	start, err := parseDate(req.StartDate)
	if err != nil {
		badRequest(c, "invalid start_date format, expected YYYY-MM-DD")
		return
	}

	goal, err := h.svc.Update(c.Request.Context(), services.UpdateGoalInput{
		ID:          c.Param("id"),
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Color:       req.Color,
		Icon:        req.Icon,
		Type:        req.Type,
		Unit:        req.Unit,
		TargetValue: req.TargetValue,
		CycleWeeks:  req.CycleWeeks,
		StartDate:   start,
		SortOrder:   req.SortOrder,
		Version:     req.Version,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, goal)
}

// Delete godoc
// @Summary  Soft-delete a goal
// @Tags     goals
// @Security BearerAuth
// @Param    id path string true "Goal ID"
// @Success  204
// @Failure  404 {object} map[string]string
// @Router   /goals/{id} [delete]
func (h *GoalHandler) Delete(c *gin.Context) {
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

// Cycle godoc
// @Summary  Week-by-week report of a goal's cycle
// @Tags     goals
// @Produce  json
// @Security BearerAuth
// @Param    id path string true "Goal ID"
// @Success  200 {object} domain.GoalCycleReport
// @Failure  404 {object} map[string]string
// @Router   /goals/{id}/cycle [get]
func (h *GoalHandler) Cycle(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	report, err := h.svc.Report(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// Week godoc
// @Summary  Date range of one week of the cycle
// @Tags     goals
// @Produce  json
// @Security BearerAuth
// @Param    id   path string true "Goal ID"
// @Param    week path int    true "Week number (1-based)"
// @Success  200 {object} weekResponse
// @Failure  400,404,422 {object} map[string]string
// @Router   /goals/{id}/weeks/{week} [get]
func (h *GoalHandler) Week(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	week, err := strconv.Atoi(c.Param("week"))
	if err != nil {
		badRequest(c, "week must be a number")
		return
	}

	r, err := h.svc.Week(c.Request.Context(), c.Param("id"), userID, week)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, weekResponse{
		Week:      r.Index,
		StartDate: r.Start,
		EndDate:   r.End,
		Label:     r.Label(),
	})
}
