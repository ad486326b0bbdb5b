package routes

import (
	"copool/internal/handlers"

	"github.com/gin-gonic/gin"
)

// SetupStatsRoutes sets up the public stats routes
func SetupStatsRoutes(r *gin.RouterGroup, statsHandler *handlers.StatsHandler) {
	r.GET("/stats/daily", statsHandler.DailyStats)
}
