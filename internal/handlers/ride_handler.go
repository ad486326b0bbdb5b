package handlers

import (
	"errors"
	"time"

	"copool/internal/models"
	"copool/internal/observability"
	"copool/internal/repositories/interfaces"
	"copool/internal/services"
	"copool/internal/utils"
	"copool/internal/validators"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RideHandler struct {
	rideService services.RideService
}

func NewRideHandler(rideService services.RideService) *RideHandler {
	return &RideHandler{
		rideService: rideService,
	}
}

// OfferRide publishes a new ride on a corridor
func (h *RideHandler) OfferRide(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var request services.OfferRideRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateStruct(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs.Fields())
		return
	}

	ride, err := h.rideService.OfferRide(c.Request.Context(), userID, &request)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	observability.RidesOffered.Inc()

	utils.CreatedResponse(c, "Ride offered successfully", ride)
}

// UpdateRide edits a ride's details. Giver only; price changes never touch
// payment records already opened.
func (h *RideHandler) UpdateRide(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	rideID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	var request services.UpdateRideRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	ride, err := h.rideService.UpdateRide(c.Request.Context(), userID, rideID, &request)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Ride updated successfully", ride)
}

// ListRides lists rides filtered by corridor, date and status. Without an
// explicit date filter it shows the current booking window.
func (h *RideHandler) ListRides(c *gin.Context) {
	filter := &interfaces.RideListFilter{}

	if corridor := c.Query("corridor_id"); corridor != "" {
		corridorID, err := primitive.ObjectIDFromHex(corridor)
		if err != nil {
			utils.BadRequestResponse(c, "Invalid corridor_id")
			return
		}
		filter.CorridorID = &corridorID
	}
	if date := c.Query("date"); date != "" {
		if _, err := time.Parse(utils.DateLayout, date); err != nil {
			utils.BadRequestResponse(c, "Invalid date")
			return
		}
		filter.Dates = []string{date}
	} else {
		filter.Dates = utils.BookingWindow(time.Now())
	}
	if status := c.Query("status"); status != "" {
		filter.Statuses = []models.RideStatus{models.RideStatus(status)}
	} else {
		filter.Statuses = []models.RideStatus{models.RideStatusOpen, models.RideStatusFull}
	}

	params := utils.GetPaginationParams(c)
	rides, total, err := h.rideService.ListRides(c.Request.Context(), filter, params)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Rides retrieved successfully", rides, &utils.Meta{
		Pagination: utils.NewPaginationMeta(params, total),
	})
}

// MyRides lists rides the caller offered or joined
func (h *RideHandler) MyRides(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	filter := &interfaces.RideListFilter{}
	switch c.DefaultQuery("role", "giver") {
	case "giver":
		filter.GiverID = &userID
	case "rider":
		filter.RiderID = &userID
	default:
		utils.BadRequestResponse(c, "role must be giver or rider")
		return
	}

	params := utils.GetPaginationParams(c)
	rides, total, err := h.rideService.ListRides(c.Request.Context(), filter, params)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Rides retrieved successfully", rides, &utils.Meta{
		Pagination: utils.NewPaginationMeta(params, total),
	})
}

// GetRide returns ride detail including current reservations
func (h *RideHandler) GetRide(c *gin.Context) {
	rideID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	ride, err := h.rideService.GetRide(c.Request.Context(), rideID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Ride retrieved successfully", ride)
}

type joinRideRequest struct {
	Seats int `json:"seats" validate:"required,min=1"`
}

// JoinRide reserves seats and opens the payment record
func (h *RideHandler) JoinRide(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	rideID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	var request joinRideRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	result, err := h.rideService.JoinRide(c.Request.Context(), userID, rideID, request.Seats)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCapacityExceeded):
			observability.JoinRejected.WithLabelValues("capacity").Inc()
		case errors.Is(err, services.ErrConflict):
			observability.JoinRejected.WithLabelValues("conflict").Inc()
		}
		handleServiceError(c, err)
		return
	}

	observability.SeatsJoined.Add(float64(request.Seats))

	utils.SuccessResponse(c, "Joined ride successfully", result)
}

// LeaveRide releases the caller's reservation and voids the payment record
func (h *RideHandler) LeaveRide(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	rideID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	if err := h.rideService.LeaveRide(c.Request.Context(), userID, rideID); err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Left ride successfully", nil)
}

// CancelRide cancels the ride and releases all reservations
func (h *RideHandler) CancelRide(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	rideID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	if err := h.rideService.CancelRide(c.Request.Context(), userID, currentUserRole(c), rideID); err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Ride cancelled successfully", nil)
}

// CompleteRide marks the ride completed and awards carbon credits
func (h *RideHandler) CompleteRide(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	rideID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	if err := h.rideService.CompleteRide(c.Request.Context(), userID, currentUserRole(c), rideID); err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Ride completed successfully", nil)
}
