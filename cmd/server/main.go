package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"copool/internal/config"
	"copool/internal/handlers"
	"copool/internal/middleware"
	"copool/internal/observability"
	"copool/internal/repositories/mongodb"
	"copool/internal/services"
	"copool/pkg/cache"
	"copool/pkg/database"
	"copool/pkg/logger"
	"copool/routes"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(&logger.Config{
		Level:  logger.LogLevel(cfg.App.LogLevel),
		Format: cfg.App.LogFormat,
		Output: "stdout",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}

	location, err := time.LoadLocation(cfg.App.Timezone)
	if err != nil {
		log.WithError(err).Warn("Unknown timezone, falling back to local")
		location = time.Local
	}

	db, err := database.NewMongoDB(&database.DatabaseConfig{
		URI:            cfg.Database.URI,
		Database:       cfg.Database.Database,
		MaxPoolSize:    cfg.Database.MaxPoolSize,
		MinPoolSize:    cfg.Database.MinPoolSize,
		ConnectTimeout: cfg.Database.ConnectTimeout,
		SocketTimeout:  cfg.Database.SocketTimeout,
	})
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	defer db.Close()

	if err := database.NewMigrator(db.Database).Up(); err != nil {
		log.WithError(err).Fatal("Failed to run migrations")
	}

	redisCache, err := cache.NewRedisCache(&cache.RedisConfig{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to Redis")
	}
	defer redisCache.Close()

	cacheService := services.NewCacheService(redisCache)

	// Repositories
	userRepo := mongodb.NewUserRepository(db.Database)
	rideRepo := mongodb.NewRideRepository(db.Database, cacheService)
	paymentRepo := mongodb.NewPaymentRepository(db.Database)
	messageRepo := mongodb.NewMessageRepository(db.Database)
	corridorRepo := mongodb.NewCorridorRepository(db.Database, cacheService)
	cityRepo := mongodb.NewCityRepository(db.Database)
	vehicleRepo := mongodb.NewVehicleRepository(db.Database)
	creditRepo := mongodb.NewCarbonCreditRepository(db.Database)

	// Services
	authService := services.NewAuthService(userRepo, cfg.Security.JWTSecret, log)
	rideService := services.NewRideService(rideRepo, paymentRepo, userRepo, corridorRepo, cityRepo, vehicleRepo, creditRepo, log, location)
	paymentService := services.NewPaymentService(paymentRepo, userRepo, log)
	chatService := services.NewChatService(messageRepo, rideRepo, log)
	vehicleService := services.NewVehicleService(vehicleRepo, log)
	corridorService := services.NewCorridorService(corridorRepo, cityRepo, userRepo, log)
	statsService := services.NewStatsService(rideRepo, cacheService, log)
	userService := services.NewUserService(userRepo, creditRepo, log)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	rideHandler := handlers.NewRideHandler(rideService)
	chatHandler := handlers.NewChatHandler(chatService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	vehicleHandler := handlers.NewVehicleHandler(vehicleService)
	corridorHandler := handlers.NewCorridorHandler(corridorService)
	adminHandler := handlers.NewAdminHandler(corridorService, paymentService)
	statsHandler := handlers.NewStatsHandler(statsService)
	userHandler := handlers.NewUserHandler(userService)

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.LoggingMiddleware(log))
	router.Use(observability.Middleware())

	router.GET("/health", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "down"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": cfg.App.Version})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	api.Use(middleware.RateLimitMiddleware(cacheService, "api", int64(cfg.Security.RateLimitPerMinute), time.Minute))

	routes.SetupAuthRoutes(api, authHandler, userHandler, cacheService, cfg.Security.JWTSecret)
	routes.SetupRideRoutes(api, rideHandler, chatHandler, paymentHandler, cfg.Security.JWTSecret)
	routes.SetupVehicleRoutes(api, vehicleHandler, cfg.Security.JWTSecret)
	routes.SetupCorridorRoutes(api, corridorHandler, cfg.Security.JWTSecret)
	routes.SetupAdminRoutes(api, adminHandler, userHandler, cfg.Security.JWTSecret)
	routes.SetupStatsRoutes(api, statsHandler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.App.Port).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Forced shutdown")
	}
	log.Info("Server stopped")
}
