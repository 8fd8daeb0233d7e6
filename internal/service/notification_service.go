package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jortiz/teammatch/internal/domain"
	"github.com/jortiz/teammatch/internal/repository"
	"github.com/sirupsen/logrus"
)

type NotificationService struct {
	repo      repository.NotificationRepository
	deliverer Deliverer
	log       *logrus.Logger
}

func NewNotificationService(repo repository.NotificationRepository, log *logrus.Logger) *NotificationService {
	return &NotificationService{
		repo: repo,
		log:  log,
	}
}

func (s *NotificationService) BindDeliverer(d Deliverer) {
	s.deliverer = d
}

// Notify persists a notification and pushes it to the recipient's live
// connection. Notification creation is a secondary effect: failures are
// logged, never returned, so the primary operation that triggered it
// succeeds regardless of notification-store health.
func (s *NotificationService) Notify(ctx context.Context, userID uuid.UUID, typ domain.NotificationType, title, message string, metadata map[string]interface{}) {
	n := &domain.Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      typ,
		Title:     title,
		Message:   message,
		CreatedAt: time.Now(),
	}

	if metadata != nil {
		raw, err := json.Marshal(metadata)
		if err != nil {
			s.log.WithError(err).Warn("failed to encode notification metadata")
		} else {
			n.Metadata = raw
		}
	}

	if err := s.repo.Create(ctx, n); err != nil {
		s.log.WithFields(logrus.Fields{
			"userId": userID,
			"type":   typ,
		}).WithError(err).Error("failed to persist notification")
		return
	}

	if s.deliverer != nil {
		s.deliverer.Deliver(userID, "newNotification", n)
	}
}

func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.repo.GetByUserID(ctx, userID, limit, offset)
}

func (s *NotificationService) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	return s.repo.MarkRead(ctx, id, userID)
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}
