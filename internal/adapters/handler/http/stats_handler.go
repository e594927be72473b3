package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-goals/internal/core/domain"
	"github.com/comitanigiacomo/kanso-goals/internal/core/services"
)

type StatsHandler struct {
	svc *services.StatsService
}

func NewStatsHandler(svc *services.StatsService) *StatsHandler {
	return &StatsHandler{svc: svc}
}

func (h *StatsHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/stats/weekly", h.GetWeeklyOverview)
}

// GetWeeklyOverview godoc
// @Summary  Every goal's standing in the week containing date (default today)
// @Tags     stats
// @Produce  json
// @Security BearerAuth
// @Param    date query string false "YYYY-MM-DD"
// @Success  200 {object} domain.WeeklyOverview
// @Failure  400 {object} map[string]string
// @Router   /stats/weekly [get]
func (h *StatsHandler) GetWeeklyOverview(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var date time.Time
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			badRequest(c, "invalid date format, expected YYYY-MM-DD")
			return
		}
		date = parsed
	}

	overview, err := h.svc.GetWeeklyOverview(c.Request.Context(), domain.StatsInput{
		UserID: userID,
		Date:   date,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, overview)
}
