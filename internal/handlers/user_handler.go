package handlers

import (
	"copool/internal/models"
	"copool/internal/services"
	"copool/internal/utils"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// ListUsers returns the paginated user directory
func (h *UserHandler) ListUsers(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	users, total, err := h.userService.ListUsers(c.Request.Context(), params)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Users retrieved successfully", users, &utils.Meta{
		Pagination: utils.NewPaginationMeta(params, total),
		Total:      total,
	})
}

// GetUser returns one user's directory entry
func (h *UserHandler) GetUser(c *gin.Context) {
	userID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	user, err := h.userService.GetUser(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "User retrieved successfully", user)
}

type setUserRoleRequest struct {
	Role models.UserRole `json:"role" validate:"required"`
}

// SetUserRole promotes or demotes a user
func (h *UserHandler) SetUserRole(c *gin.Context) {
	userID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	var request setUserRoleRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	if err := h.userService.SetUserRole(c.Request.Context(), userID, request.Role); err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "User role updated", nil)
}

type adjustCreditsRequest struct {
	Delta  int    `json:"delta" validate:"required"`
	Reason string `json:"reason"`
}

// AdjustCredits applies a manual carbon credit correction
func (h *UserHandler) AdjustCredits(c *gin.Context) {
	userID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	var request adjustCreditsRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	if err := h.userService.AdjustCarbonCredits(c.Request.Context(), userID, request.Delta, request.Reason); err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Carbon credits adjusted", nil)
}

// MyCredits returns the caller's carbon credit ledger
func (h *UserHandler) MyCredits(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	entries, err := h.userService.ListCarbonCredits(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Carbon credit entries retrieved successfully", entries, &utils.Meta{
		Count: len(entries),
	})
}
