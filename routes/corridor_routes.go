package routes

import (
	"copool/internal/handlers"
	"copool/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupCorridorRoutes sets up the city/corridor directory routes
func SetupCorridorRoutes(r *gin.RouterGroup, corridorHandler *handlers.CorridorHandler, jwtSecret string) {
	directory := r.Group("")
	directory.Use(middleware.AuthRequired(jwtSecret))
	{
		directory.GET("/cities", corridorHandler.ListCities)
		directory.GET("/corridors", corridorHandler.ListCorridors)
		directory.GET("/corridors/:id", corridorHandler.GetCorridor)
		directory.GET("/corridors/mine", corridorHandler.MyCorridors)
	}
}
