package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-goals/internal/core/services"
)

type GroupHandler struct {
	svc *services.GroupService
}

func NewGroupHandler(svc *services.GroupService) *GroupHandler {
	return &GroupHandler{svc: svc}
}

type createGroupRequest struct {
	Name string `json:"name" binding:"required"`
}

type addMemberRequest struct {
	Email string `json:"email" binding:"required,email"`
}

func (h *GroupHandler) RegisterRoutes(router *gin.RouterGroup) {
	groups := router.Group("/groups")
	{
		groups.POST("", h.Create)
		groups.GET("", h.List)
		groups.POST("/:id/members", h.AddMember)
		groups.GET("/:id/overview", h.Overview)
	}
}

// Create godoc
// @Summary  Create a group owned by the caller
// @Tags     groups
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    body body createGroupRequest true "Group"
// @Success  201 {object} domain.Group
// @Router   /groups [post]
func (h *GroupHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req createGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	group, err := h.svc.Create(c.Request.Context(), userID, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, group)
}

// List godoc
// @Summary  Groups the caller belongs to
// @Tags     groups
// @Produce  json
// @Security BearerAuth
// @Success  200 {array} domain.Group
// @Router   /groups [get]
func (h *GroupHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	groups, err := h.svc.ListForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, groups)
}

// AddMember godoc
// @Summary  Invite a registered user by email
// @Tags     groups
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    id   path string           true "Group ID"
// @Param    body body addMemberRequest true "Member"
// @Success  200 {object} domain.Group
// @Failure  403,404,409 {object} map[string]string
// @Router   /groups/{id}/members [post]
func (h *GroupHandler) AddMember(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req addMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	group, err := h.svc.AddMember(c.Request.Context(), c.Param("id"), userID, req.Email)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, group)
}

// Overview godoc
// @Summary  This week's completion of every member
// @Tags     groups
// @Produce  json
// @Security BearerAuth
// @Param    id path string true "Group ID"
// @Success  200 {object} domain.GroupOverview
// @Failure  403,404 {object} map[string]string
// @Router   /groups/{id}/overview [get]
func (h *GroupHandler) Overview(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	overview, err := h.svc.Overview(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, overview)
}
