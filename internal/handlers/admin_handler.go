package handlers

import (
	"copool/internal/models"
	"copool/internal/services"
	"copool/internal/utils"
	"copool/internal/validators"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AdminHandler groups the directory-administration and override endpoints.
// Routes mounting it sit behind the admin role check.
type AdminHandler struct {
	corridorService services.CorridorService
	paymentService  services.PaymentService
}

func NewAdminHandler(corridorService services.CorridorService, paymentService services.PaymentService) *AdminHandler {
	return &AdminHandler{
		corridorService: corridorService,
		paymentService:  paymentService,
	}
}

type createCityRequest struct {
	Name string `json:"name" validate:"required"`
}

// CreateCity adds a city to the directory
func (h *AdminHandler) CreateCity(c *gin.Context) {
	var request createCityRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	city, err := h.corridorService.CreateCity(c.Request.Context(), request.Name)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, "City created successfully", city)
}

type setCityStatusRequest struct {
	Status models.CityStatus `json:"status" validate:"required"`
}

// SetCityStatus locks or unlocks a city for new rides
func (h *AdminHandler) SetCityStatus(c *gin.Context) {
	cityID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	var request setCityStatusRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	if err := h.corridorService.SetCityStatus(c.Request.Context(), cityID, request.Status); err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "City status updated", nil)
}

// CreateCorridor adds a corridor to a city
func (h *AdminHandler) CreateCorridor(c *gin.Context) {
	var request services.CreateCorridorRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateStruct(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs.Fields())
		return
	}

	corridor, err := h.corridorService.CreateCorridor(c.Request.Context(), &request)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, "Corridor created successfully", corridor)
}

type updateCorridorRequest struct {
	Name            *string  `json:"name"`
	PickupPoints    []string `json:"pickup_points"`
	TermsConditions *string  `json:"terms_conditions"`
	IsActive        *bool    `json:"is_active"`
}

// UpdateCorridor edits corridor details or retires it
func (h *AdminHandler) UpdateCorridor(c *gin.Context) {
	corridorID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	var request updateCorridorRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	updates := map[string]interface{}{}
	if request.Name != nil {
		updates["name"] = *request.Name
	}
	if request.PickupPoints != nil {
		updates["pickup_points"] = request.PickupPoints
	}
	if request.TermsConditions != nil {
		updates["terms_conditions"] = *request.TermsConditions
	}
	if request.IsActive != nil {
		updates["is_active"] = *request.IsActive
	}

	if err := h.corridorService.UpdateCorridor(c.Request.Context(), corridorID, updates); err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Corridor updated successfully", nil)
}

// DeleteCorridor removes a corridor and its user assignments
func (h *AdminHandler) DeleteCorridor(c *gin.Context) {
	corridorID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	if err := h.corridorService.DeleteCorridor(c.Request.Context(), corridorID); err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Corridor deleted successfully", nil)
}

type assignCorridorRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

// AssignCorridor grants a user access to a corridor
func (h *AdminHandler) AssignCorridor(c *gin.Context) {
	corridorID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	var request assignCorridorRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	userID, err := primitive.ObjectIDFromHex(request.UserID)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user_id")
		return
	}

	if err := h.corridorService.AssignCorridor(c.Request.Context(), userID, corridorID); err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Corridor assigned successfully", nil)
}

type overridePaymentRequest struct {
	RiderStatus *models.RiderPaymentStatus `json:"rider_status"`
	GiverStatus *models.GiverPaymentStatus `json:"giver_status"`
}

// OverridePayment settles a disputed record on either party's behalf
func (h *AdminHandler) OverridePayment(c *gin.Context) {
	rideID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	riderID, ok := pathObjectID(c, "rider_id")
	if !ok {
		return
	}

	var request overridePaymentRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if request.RiderStatus == nil && request.GiverStatus == nil {
		utils.BadRequestResponse(c, "Nothing to override")
		return
	}

	if request.RiderStatus != nil {
		if err := h.paymentService.OverrideRiderStatus(c.Request.Context(), rideID, riderID, *request.RiderStatus); err != nil {
			handleServiceError(c, err)
			return
		}
	}
	if request.GiverStatus != nil {
		if err := h.paymentService.OverrideGiverStatus(c.Request.Context(), rideID, riderID, *request.GiverStatus); err != nil {
			handleServiceError(c, err)
			return
		}
	}

	utils.SuccessResponse(c, "Payment overridden successfully", nil)
}
