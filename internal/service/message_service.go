package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jortiz/teammatch/internal/domain"
	"github.com/jortiz/teammatch/internal/repository"
	"github.com/sirupsen/logrus"
)

var (
	ErrEmptyMessage     = fmt.Errorf("message content must not be empty: %w", domain.ErrValidation)
	ErrReceiverNotFound = fmt.Errorf("receiver not found: %w", domain.ErrNotFound)
	ErrMessageNotFound  = fmt.Errorf("message not found: %w", domain.ErrNotFound)
)

type MessageService struct {
	repo          repository.MessageRepository
	userRepo      repository.UserRepository
	notifications *NotificationService
	deliverer     Deliverer
	log           *logrus.Logger
}

func NewMessageService(repo repository.MessageRepository, userRepo repository.UserRepository, notifications *NotificationService, log *logrus.Logger) *MessageService {
	return &MessageService{
		repo:          repo,
		userRepo:      userRepo,
		notifications: notifications,
		log:           log,
	}
}

func (s *MessageService) BindDeliverer(d Deliverer) {
	s.deliverer = d
}

type messageReadEvent struct {
	MessageID uuid.UUID `json:"messageId"`
	ReadBy    uuid.UUID `json:"readBy"`
}

// SendMessage persists the message first so it has a stable id and
// timestamp, then pushes it to the receiver's live connection and queues
// a notification. Both side effects are independent of the persisted
// message and of each other.
func (s *MessageService) SendMessage(ctx context.Context, senderID, receiverID uuid.UUID, content string) (*domain.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyMessage
	}

	sender, err := s.userRepo.GetByID(ctx, senderID)
	if err != nil {
		return nil, err
	}
	if _, err := s.userRepo.GetByID(ctx, receiverID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrReceiverNotFound
		}
		return nil, err
	}

	msg := &domain.Message{
		ID:         uuid.New(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		CreatedAt:  time.Now(),
	}

	if err := s.repo.Create(ctx, msg); err != nil {
		return nil, err
	}

	if s.deliverer != nil {
		s.deliverer.Deliver(receiverID, "newMessage", msg)
	}

	// Fire-and-forget: a notification-store failure must not surface to
	// the sender. Notify already suppresses its own errors.
	go s.notifications.Notify(context.WithoutCancel(ctx), receiverID,
		domain.NotificationTypeMessage,
		"New message",
		fmt.Sprintf("%s sent you a message", sender.DisplayName),
		map[string]interface{}{"messageId": msg.ID, "senderId": senderID},
	)

	return msg, nil
}

// MarkRead flips the read flag and, when the sender is live, delivers a
// read receipt carrying the message id and the reader.
func (s *MessageService) MarkRead(ctx context.Context, messageID, readerID uuid.UUID) (*domain.Message, error) {
	msg, err := s.repo.MarkRead(ctx, messageID, readerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}

	if s.deliverer != nil {
		s.deliverer.Deliver(msg.SenderID, "messageRead", messageReadEvent{
			MessageID: msg.ID,
			ReadBy:    readerID,
		})
	}
	return msg, nil
}

func (s *MessageService) Conversation(ctx context.Context, userID, otherID uuid.UUID, limit, offset int) ([]*domain.Message, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.repo.GetConversation(ctx, userID, otherID, limit, offset)
}

func (s *MessageService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}
