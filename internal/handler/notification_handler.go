package handler

import (
	"net/http"

	"github.com/yourorg/internship-platform/internal/model"
	"github.com/yourorg/internship-platform/internal/service"
	"github.com/yourorg/internship-platform/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	notificationService *service.NotificationService
	logger              *zap.Logger
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notificationService *service.NotificationService, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
		logger:              logger,
	}
}

// GetNotifications handles retrieving the current user's notifications, newest
// first, one ?page= of ?limit= entries at a time
// GET /api/v1/notifications
func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	page := utils.ParsePage(c, 100, 200)

	notifications, err := h.notificationService.GetNotifications(c.Request.Context(), actor.UID, page.Limit, page.Offset())
	if err != nil {
		respondError(c, h.logger, err, "Failed to get notifications")
		return
	}

	c.JSON(http.StatusOK, notifications)
}

// GetUnreadCount handles retrieving unread notification count
// GET /api/v1/notifications/count
func (h *NotificationHandler) GetUnreadCount(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	count, err := h.notificationService.GetUnreadCount(c.Request.Context(), actor.UID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to get notification count")
		return
	}

	c.JSON(http.StatusOK, model.NotificationCountResponse{Count: count})
}

// MarkAsRead handles marking a notification as read
// PUT /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	if err := h.notificationService.MarkAsRead(c.Request.Context(), actor.UID, c.Param("id")); err != nil {
		respondError(c, h.logger, err, "Failed to update notification")
		return
	}

	c.Status(http.StatusNoContent)
}

// MarkAllAsRead handles marking all notifications as read
// PUT /api/v1/notifications/read-all
func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	count, err := h.notificationService.MarkAllAsRead(c.Request.Context(), actor.UID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to update notifications")
		return
	}

	c.JSON(http.StatusOK, model.NotificationMarkResponse{Success: true, MarkedCount: count})
}

// Dispatch handles an admin dispatching a notification to a single user
// POST /api/v1/admin/notifications
func (h *NotificationHandler) Dispatch(c *gin.Context) {
	var event model.NotificationEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.notificationService.Dispatch(c.Request.Context(), event)
	if err != nil {
		respondError(c, h.logger, err, "Failed to dispatch notification")
		return
	}

	c.JSON(http.StatusCreated, result)
}
