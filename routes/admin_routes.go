package routes

import (
	"copool/internal/handlers"
	"copool/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupAdminRoutes sets up directory administration and payment override
// routes, all behind the admin role check
func SetupAdminRoutes(r *gin.RouterGroup, adminHandler *handlers.AdminHandler, userHandler *handlers.UserHandler, jwtSecret string) {
	admin := r.Group("/admin")
	admin.Use(middleware.AuthRequired(jwtSecret), middleware.AdminRequired())
	{
		admin.POST("/cities", adminHandler.CreateCity)
		admin.PUT("/cities/:id/status", adminHandler.SetCityStatus)

		admin.POST("/corridors", adminHandler.CreateCorridor)
		admin.PUT("/corridors/:id", adminHandler.UpdateCorridor)
		admin.DELETE("/corridors/:id", adminHandler.DeleteCorridor)
		admin.POST("/corridors/:id/assign", adminHandler.AssignCorridor)

		admin.GET("/users", userHandler.ListUsers)
		admin.GET("/users/:id", userHandler.GetUser)
		admin.PUT("/users/:id/role", userHandler.SetUserRole)
		admin.POST("/users/:id/credits", userHandler.AdjustCredits)

		admin.PUT("/rides/:id/payments/:rider_id", adminHandler.OverridePayment)
	}
}
