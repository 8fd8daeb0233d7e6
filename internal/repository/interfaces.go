package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jortiz/teammatch/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByDisplayName(ctx context.Context, displayName string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	SetAvailability(ctx context.Context, id uuid.UUID, available bool) error

	// Profile directory reads used by the ranking engine.
	GetSkillIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	GetDomainIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	ReplaceSkills(ctx context.Context, userID uuid.UUID, skillIDs []uuid.UUID) error
	ReplaceDomains(ctx context.Context, userID uuid.UUID, domainIDs []uuid.UUID) error

	// GetCandidatePool returns available users other than excludeID with
	// reputation >= minReputation, ordered by reputation descending then
	// registration order, capped at limit.
	GetCandidatePool(ctx context.Context, excludeID uuid.UUID, minReputation, limit int) ([]*domain.User, error)
}

type ProjectRepository interface {
	// CreateWithLeader atomically creates the project, the creator's
	// leader membership and increments the creator's active-project
	// count. Fails with domain.ErrCapacityExceeded at the cap.
	CreateWithLeader(ctx context.Context, project *domain.Project) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error)
	GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Project, error)

	// CompleteWithMembers marks the project completed and decrements the
	// active-project count of every current member in one transaction.
	// Returns the member user ids. Fails with domain.ErrConflict if the
	// project is already completed.
	CompleteWithMembers(ctx context.Context, projectID uuid.UUID) ([]uuid.UUID, error)
}

type MembershipRepository interface {
	// Join atomically checks the project is active, enforces the cap via
	// a conditional increment and inserts the membership row (the unique
	// (project, user) index turns duplicate joins into domain.ErrConflict).
	Join(ctx context.Context, m *domain.ProjectMembership) error

	// Leave deletes the membership and decrements the user's
	// active-project count only while the project is still active.
	Leave(ctx context.Context, projectID, userID uuid.UUID) error

	GetByProjectAndUser(ctx context.Context, projectID, userID uuid.UUID) (*domain.ProjectMembership, error)
	GetByProjectID(ctx context.Context, projectID uuid.UUID) ([]*domain.ProjectMembership, error)
	CountActiveByUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

type ReputationRepository interface {
	// Append inserts the log entry and applies its adjustment to the
	// rated user's score (floored at zero) as one transaction. A second
	// entry for the same (rater, rated, project) triple fails with
	// domain.ErrConflict.
	Append(ctx context.Context, entry *domain.ReputationLogEntry) error
	GetByRatedUser(ctx context.Context, userID uuid.UUID) ([]*domain.ReputationLogEntry, error)
	AverageAdjustment(ctx context.Context, userID uuid.UUID) (float64, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Notification, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) error
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
}

type MessageRepository interface {
	Create(ctx context.Context, m *domain.Message) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Message, error)
	// MarkRead sets the read flag on a message owned by readerID as
	// receiver and returns the updated row.
	MarkRead(ctx context.Context, id, readerID uuid.UUID) (*domain.Message, error)
	GetConversation(ctx context.Context, a, b uuid.UUID, limit, offset int) ([]*domain.Message, error)
	CountUnread(ctx context.Context, receiverID uuid.UUID) (int64, error)
}

type Repositories struct {
	User         UserRepository
	Project      ProjectRepository
	Membership   MembershipRepository
	Reputation   ReputationRepository
	Notification NotificationRepository
	Message      MessageRepository
}
