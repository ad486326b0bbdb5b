package handlers

import (
	"copool/internal/services"
	"copool/internal/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CorridorHandler struct {
	corridorService services.CorridorService
}

func NewCorridorHandler(corridorService services.CorridorService) *CorridorHandler {
	return &CorridorHandler{
		corridorService: corridorService,
	}
}

// ListCities lists all cities with their active/locked state
func (h *CorridorHandler) ListCities(c *gin.Context) {
	cities, err := h.corridorService.ListCities(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Cities retrieved successfully", cities)
}

// ListCorridors lists corridors, optionally scoped to a city
func (h *CorridorHandler) ListCorridors(c *gin.Context) {
	var cityID *primitive.ObjectID
	if city := c.Query("city_id"); city != "" {
		id, err := primitive.ObjectIDFromHex(city)
		if err != nil {
			utils.BadRequestResponse(c, "Invalid city_id")
			return
		}
		cityID = &id
	}
	activeOnly := c.DefaultQuery("active", "true") == "true"

	corridors, err := h.corridorService.ListCorridors(c.Request.Context(), cityID, activeOnly)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Corridors retrieved successfully", corridors)
}

// GetCorridor returns one corridor with its pickup points and terms
func (h *CorridorHandler) GetCorridor(c *gin.Context) {
	corridorID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	corridor, err := h.corridorService.GetCorridor(c.Request.Context(), corridorID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Corridor retrieved successfully", corridor)
}

// MyCorridors lists the corridors assigned to the caller
func (h *CorridorHandler) MyCorridors(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	corridors, err := h.corridorService.ListUserCorridors(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Corridors retrieved successfully", corridors)
}
