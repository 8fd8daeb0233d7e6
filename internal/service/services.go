package service

import (
	"github.com/google/uuid"
	"github.com/jortiz/teammatch/internal/config"
	"github.com/jortiz/teammatch/internal/identity"
	"github.com/jortiz/teammatch/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Deliverer pushes an event to a user's live connection if one exists.
// Implemented by the websocket hub; delivery is best-effort and must never
// fail the operation that triggered it.
type Deliverer interface {
	Deliver(userID uuid.UUID, event string, payload interface{})
}

type Services struct {
	Auth         *AuthService
	Project      *ProjectService
	Reputation   *ReputationService
	Matching     *MatchingService
	Message      *MessageService
	Notification *NotificationService
}

func NewServices(repos *repository.Repositories, cfg *config.Config, verifier *identity.JWTVerifier, cache *redis.Client, log *logrus.Logger) *Services {
	notifications := NewNotificationService(repos.Notification, log)

	return &Services{
		Auth:         NewAuthService(repos.User, verifier),
		Project:      NewProjectService(repos.Project, repos.Membership, notifications),
		Reputation:   NewReputationService(repos.Reputation, repos.User, notifications),
		Matching:     NewMatchingService(repos.User, cfg, cache, log),
		Message:      NewMessageService(repos.Message, repos.User, notifications, log),
		Notification: notifications,
	}
}

// BindDeliverer wires the live-delivery hub in after construction; the hub
// itself depends on these services, so the link is set up last.
func (s *Services) BindDeliverer(d Deliverer) {
	s.Notification.BindDeliverer(d)
	s.Message.BindDeliverer(d)
}
