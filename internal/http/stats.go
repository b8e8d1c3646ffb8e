package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type StatsController struct {
	reports Reports
}

func NewStatsController(rep Reports) *StatsController {
	return &StatsController{reports: rep}
}

// GetStats returns the dashboard aggregates.
// GET /api/stats
func (sc *StatsController) GetStats(c *gin.Context) {
	stats, err := sc.reports.Dashboard(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "dashboard stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}
