package handlers

import (
	"strconv"

	"forkly/internal/services"
	"forkly/internal/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationHandler struct {
	notificationService services.NotificationService
}

func NewNotificationHandler(notificationService services.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
	}
}

// GetFeed returns the caller's in-app notifications, newest first.
func (h *NotificationHandler) GetFeed(c *gin.Context) {
	accountID, ok := accountIDFromContext(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(utils.DefaultFeedSize)))
	if limit <= 0 || limit > utils.MaxPageSize {
		limit = utils.DefaultFeedSize
	}

	notifications, err := h.notificationService.Feed(c.Request.Context(), accountID, limit)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Notifications retrieved successfully", notifications)
}

// MarkRead marks a single notification as read.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	accountID, ok := accountIDFromContext(c)
	if !ok {
		return
	}

	notificationID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid notification ID")
		return
	}

	if err := h.notificationService.MarkRead(c.Request.Context(), accountID, notificationID); err != nil {
		serviceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Notification marked as read", nil)
}
