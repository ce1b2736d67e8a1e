package controllers

import (
	"net/http"

	"github.com/otoor/marketplace-backend/middleware"
	"github.com/otoor/marketplace-backend/services"

	"github.com/gin-gonic/gin"
)

// NotificationController handles HTTP requests for user notifications.
type NotificationController struct {
	notificationService services.NotificationService
}

// NewNotificationController creates a new NotificationController.
func NewNotificationController(notificationService services.NotificationService) *NotificationController {
	return &NotificationController{notificationService: notificationService}
}

// List handles GET /notifications.
func (nc *NotificationController) List(ctx *gin.Context) {
	userID, err := middleware.GetUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	page, limit := parsePaginationParams(ctx)

	notifications, total, svcErr := nc.notificationService.List(ctx.Request.Context(), userID, page, limit)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"meta": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// MarkRead handles PATCH /notifications/:id/read.
func (nc *NotificationController) MarkRead(ctx *gin.Context) {
	userID, err := middleware.GetUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	notificationID, ok := parsePathID(ctx, "id")
	if !ok {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification id"})
		return
	}

	if svcErr := nc.notificationService.MarkRead(ctx.Request.Context(), userID, notificationID); svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}
