package routes

import (
	"time"

	"copool/internal/handlers"
	"copool/internal/middleware"
	"copool/internal/services"
	"copool/internal/utils"

	"github.com/gin-gonic/gin"
)

// SetupAuthRoutes sets up registration, login and profile routes
func SetupAuthRoutes(r *gin.RouterGroup, authHandler *handlers.AuthHandler, userHandler *handlers.UserHandler, cache services.CacheService, jwtSecret string) {
	auth := r.Group("/auth")
	{
		// Credential endpoints carry a tighter rate limit than the rest of
		// the API.
		auth.POST("/register", middleware.RateLimitMiddleware(cache, "auth", utils.LoginRateLimit, time.Minute), authHandler.Register)
		auth.POST("/login", middleware.RateLimitMiddleware(cache, "auth", utils.LoginRateLimit, time.Minute), authHandler.Login)
		auth.POST("/refresh", authHandler.RefreshToken)
	}

	profile := r.Group("/profile")
	profile.Use(middleware.AuthRequired(jwtSecret))
	{
		profile.GET("", authHandler.GetProfile)
		profile.PUT("", authHandler.UpdateProfile)
		profile.GET("/credits", userHandler.MyCredits)
	}
}
