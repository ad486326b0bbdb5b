package handlers

import (
	"strconv"

	"copool/internal/observability"
	"copool/internal/services"
	"copool/internal/utils"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	chatService services.ChatService
}

func NewChatHandler(chatService services.ChatService) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
	}
}

type postMessageRequest struct {
	Content string `json:"content" validate:"required,max=1000"`
}

// PostMessage appends a message to the ride's chat log
func (h *ChatHandler) PostMessage(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	rideID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	var request postMessageRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	msg, err := h.chatService.PostMessage(c.Request.Context(), userID, rideID, request.Content)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	observability.MessagesPosted.Inc()

	utils.CreatedResponse(c, "Message posted successfully", msg)
}

// ListMessages returns messages after the caller's cursor. Clients poll with
// ?last_seq=<highest seen> and append the result to their local log.
func (h *ChatHandler) ListMessages(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	rideID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	lastSeq, err := strconv.ParseInt(c.DefaultQuery("last_seq", "0"), 10, 64)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid last_seq")
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid limit")
		return
	}

	messages, err := h.chatService.MessagesSince(c.Request.Context(), userID, rideID, lastSeq, limit)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	// Total lets clients detect how far behind their cursor is.
	total, err := h.chatService.MessageCount(c.Request.Context(), userID, rideID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Messages retrieved successfully", messages, &utils.Meta{
		Count: len(messages),
		Total: total,
	})
}
