package handlers

import (
	"copool/internal/services"
	"copool/internal/utils"
	"copool/internal/validators"

	"github.com/gin-gonic/gin"
)

type VehicleHandler struct {
	vehicleService services.VehicleService
}

func NewVehicleHandler(vehicleService services.VehicleService) *VehicleHandler {
	return &VehicleHandler{
		vehicleService: vehicleService,
	}
}

// RegisterVehicle adds a vehicle to the caller's garage
func (h *VehicleHandler) RegisterVehicle(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var request services.RegisterVehicleRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateStruct(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs.Fields())
		return
	}

	vehicle, err := h.vehicleService.RegisterVehicle(c.Request.Context(), userID, &request)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, "Vehicle registered successfully", vehicle)
}

// ListVehicles lists the caller's vehicles
func (h *VehicleHandler) ListVehicles(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	vehicles, err := h.vehicleService.ListVehicles(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Vehicles retrieved successfully", vehicles)
}

// GetVehicle returns one of the caller's vehicles
func (h *VehicleHandler) GetVehicle(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	vehicleID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	vehicle, err := h.vehicleService.GetVehicle(c.Request.Context(), userID, vehicleID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Vehicle retrieved successfully", vehicle)
}

// UpdateVehicle edits seat counts or color
func (h *VehicleHandler) UpdateVehicle(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	vehicleID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	var request services.UpdateVehicleRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	vehicle, err := h.vehicleService.UpdateVehicle(c.Request.Context(), userID, vehicleID, &request)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Vehicle updated successfully", vehicle)
}

// DeleteVehicle removes a vehicle from the caller's garage
func (h *VehicleHandler) DeleteVehicle(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	vehicleID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	if err := h.vehicleService.DeleteVehicle(c.Request.Context(), userID, vehicleID); err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Vehicle deleted successfully", nil)
}
