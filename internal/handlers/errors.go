package handlers

import (
	"errors"
	"net/http"

	"copool/internal/models"
	"copool/internal/services"
	"copool/internal/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// handleServiceError is the single place service errors become HTTP
// responses. Everything not in the taxonomy is reported as internal without
// leaking the underlying error to the client.
func handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		utils.ErrorResponse(c, http.StatusBadRequest, "INVALID_INPUT", err.Error())
	case errors.Is(err, services.ErrCapacityExceeded):
		utils.ErrorResponse(c, http.StatusConflict, "CAPACITY_EXCEEDED", "not enough seats available")
	case errors.Is(err, services.ErrForbidden):
		utils.ErrorResponse(c, http.StatusForbidden, "FORBIDDEN", err.Error())
	case errors.Is(err, services.ErrNotFound):
		utils.ErrorResponse(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, services.ErrPrecondition):
		utils.ErrorResponse(c, http.StatusPreconditionFailed, "PRECONDITION_FAILED", err.Error())
	case errors.Is(err, services.ErrConflict):
		utils.ErrorResponse(c, http.StatusConflict, "CONFLICT", err.Error())
	default:
		utils.InternalServerErrorResponse(c)
	}
}

// currentUserID reads the identity the auth middleware stored on the context.
func currentUserID(c *gin.Context) (primitive.ObjectID, bool) {
	value, exists := c.Get("user_id")
	if !exists {
		utils.UnauthorizedResponse(c)
		return primitive.NilObjectID, false
	}
	userID, ok := value.(primitive.ObjectID)
	if !ok {
		utils.UnauthorizedResponse(c)
		return primitive.NilObjectID, false
	}
	return userID, true
}

func currentUserRole(c *gin.Context) models.UserRole {
	value, exists := c.Get("user_role")
	if !exists {
		return models.UserRoleUser
	}
	role, ok := value.(models.UserRole)
	if !ok {
		return models.UserRoleUser
	}
	return role
}

// pathObjectID parses an ObjectID path parameter, responding 400 on failure.
func pathObjectID(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid "+name)
		return primitive.NilObjectID, false
	}
	return id, true
}
