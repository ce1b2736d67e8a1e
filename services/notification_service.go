package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/otoor/marketplace-backend/common/errors"
	"github.com/otoor/marketplace-backend/kafka"
	"github.com/otoor/marketplace-backend/models"
	"github.com/otoor/marketplace-backend/repository"

	"go.uber.org/zap"
)

// NotificationService defines the interface for user notifications.
type NotificationService interface {
	// Notify persists a notification and publishes it. Best-effort: every
	// failure is logged and swallowed, so callers cannot be failed by it.
	Notify(ctx context.Context, userID uint, title, message string, data map[string]interface{})

	List(ctx context.Context, userID uint, page, limit int) ([]models.Notification, int64, *errors.Error)
	MarkRead(ctx context.Context, userID, notificationID uint) *errors.Error
}

type notificationServiceImpl struct {
	repo     repository.NotificationRepository
	producer *kafka.Producer
	logger   *zap.Logger
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(repo repository.NotificationRepository, producer *kafka.Producer, logger *zap.Logger) NotificationService {
	return &notificationServiceImpl{repo: repo, producer: producer, logger: logger}
}

func (s *notificationServiceImpl) Notify(ctx context.Context, userID uint, title, message string, data map[string]interface{}) {
	payload := ""
	if data != nil {
		if b, err := json.Marshal(data); err == nil {
			payload = string(b)
		}
	}

	notification := &models.Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
		Data:    payload,
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		s.logger.Error("Failed to persist notification",
			zap.Uint("user_id", userID), zap.Error(err))
	}

	if s.producer != nil {
		s.producer.SendNotificationEvent(ctx, models.NotificationEvent{
			EventType: "notification_created",
			UserID:    userID,
			Title:     title,
			Message:   message,
			Data:      payload,
			Timestamp: time.Now(),
		})
	}
}

func (s *notificationServiceImpl) List(ctx context.Context, userID uint, page, limit int) ([]models.Notification, int64, *errors.Error) {
	notifications, total, err := s.repo.ListByUser(ctx, userID, page, limit)
	if err != nil {
		s.logger.Error("Failed to list notifications", zap.Error(err))
		return nil, 0, errors.Internal("Failed to list notifications", err)
	}
	return notifications, total, nil
}

func (s *notificationServiceImpl) MarkRead(ctx context.Context, userID, notificationID uint) *errors.Error {
	if err := s.repo.MarkRead(ctx, userID, notificationID); err != nil {
		return errors.NotFound("Notification not found")
	}
	return nil
}
