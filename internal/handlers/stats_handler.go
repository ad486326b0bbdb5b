package handlers

import (
	"time"

	"copool/internal/services"
	"copool/internal/utils"

	"github.com/gin-gonic/gin"
)

type StatsHandler struct {
	statsService services.StatsService
}

func NewStatsHandler(statsService services.StatsService) *StatsHandler {
	return &StatsHandler{
		statsService: statsService,
	}
}

// DailyStats returns ride counts for a day, defaulting to today
func (h *StatsHandler) DailyStats(c *gin.Context) {
	date := c.DefaultQuery("date", time.Now().Format(utils.DateLayout))
	if _, err := time.Parse(utils.DateLayout, date); err != nil {
		utils.BadRequestResponse(c, "Invalid date")
		return
	}

	stats, err := h.statsService.DailyStats(c.Request.Context(), date)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Stats retrieved successfully", stats)
}
