package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-goals/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/kanso-goals/internal/core/cycle"
	"github.com/comitanigiacomo/kanso-goals/internal/core/domain"
)

type errorMapping struct {
	target error
	status int
}

// First match wins.
var errorMappings = []errorMapping{
	{domain.ErrGoalNotFound, http.StatusNotFound},
	{domain.ErrProgressNotFound, http.StatusNotFound},
	{domain.ErrGroupNotFound, http.StatusNotFound},
	{domain.ErrUserNotFound, http.StatusNotFound},

	{domain.ErrGoalConflict, http.StatusConflict},
	{domain.ErrProgressConflict, http.StatusConflict},
	{domain.ErrEmailAlreadyExists, http.StatusConflict},
	{domain.ErrAlreadyGroupMember, http.StatusConflict},

	{domain.ErrUnauthorized, http.StatusForbidden},
	{domain.ErrNotGroupMember, http.StatusForbidden},
	{domain.ErrInvalidCredentials, http.StatusUnauthorized},

	{domain.ErrGoalUnscheduled, http.StatusUnprocessableEntity},
	{domain.ErrGoalNotStarted, http.StatusUnprocessableEntity},
	{domain.ErrCycleComplete, http.StatusUnprocessableEntity},
	{domain.ErrWeekNotOpen, http.StatusUnprocessableEntity},
	{domain.ErrGoalArchived, http.StatusUnprocessableEntity},

	{domain.ErrInvalidProgress, http.StatusBadRequest},
	{domain.ErrGoalTitleEmpty, http.StatusBadRequest},
	{domain.ErrGoalTitleTooLong, http.StatusBadRequest},
	{domain.ErrGoalDescTooLong, http.StatusBadRequest},
	{domain.ErrInvalidColor, http.StatusBadRequest},
	{domain.ErrInvalidTarget, http.StatusBadRequest},
	{domain.ErrInvalidGoalType, http.StatusBadRequest},
	{domain.ErrInvalidCycleWeeks, http.StatusBadRequest},
	{domain.ErrGroupNameEmpty, http.StatusBadRequest},
	{domain.ErrGroupNameTooLong, http.StatusBadRequest},
	{domain.ErrInvalidEmail, http.StatusBadRequest},
	{domain.ErrPasswordTooShort, http.StatusBadRequest},
	{domain.ErrDisplayNameTooLong, http.StatusBadRequest},
	{cycle.ErrInvalidDuration, http.StatusBadRequest},
	{cycle.ErrInvalidWeekIndex, http.StatusBadRequest},
}

func statusFor(err error) int {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.status
		}
	}
	return http.StatusInternalServerError
}

// respondError writes the JSON error body. Unknown errors are attached to
// the gin context for the request logger and hidden from the client.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}

	body := gin.H{"error": err.Error()}
	if status == http.StatusConflict && !errors.Is(err, domain.ErrEmailAlreadyExists) && !errors.Is(err, domain.ErrAlreadyGroupMember) {
		body["message"] = "Data has been modified elsewhere. Please sync."
	}
	c.JSON(status, body)
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

func currentUser(c *gin.Context) (string, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok || userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return "", false
	}
	return userID, true
}
