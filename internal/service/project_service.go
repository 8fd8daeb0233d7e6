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
)

var (
	ErrProjectNotFound    = fmt.Errorf("project not found: %w", domain.ErrNotFound)
	ErrMembershipNotFound = fmt.Errorf("membership not found: %w", domain.ErrNotFound)
	ErrProjectCapReached  = fmt.Errorf("active project cap reached: %w", domain.ErrCapacityExceeded)
	ErrAlreadyMember      = fmt.Errorf("user is already a member: %w", domain.ErrConflict)
	ErrProjectNotActive   = fmt.Errorf("project is not active: %w", domain.ErrInvalidState)
	ErrAlreadyCompleted   = fmt.Errorf("project already completed: %w", domain.ErrConflict)
	ErrNotProjectCreator  = fmt.Errorf("only the project creator can complete it: %w", domain.ErrForbidden)
	ErrEmptyTitle         = fmt.Errorf("project title must not be empty: %w", domain.ErrValidation)
)

// ProjectService is the membership state machine. All cap and atomicity
// guarantees live in the repository transactions; this layer validates
// input, maps errors and emits the follow-up notifications.
type ProjectService struct {
	projectRepo    repository.ProjectRepository
	membershipRepo repository.MembershipRepository
	notifications  *NotificationService
}

func NewProjectService(projectRepo repository.ProjectRepository, membershipRepo repository.MembershipRepository, notifications *NotificationService) *ProjectService {
	return &ProjectService{
		projectRepo:    projectRepo,
		membershipRepo: membershipRepo,
		notifications:  notifications,
	}
}

type CreateProjectInput struct {
	Title       string
	Description string
}

func (s *ProjectService) CreateProject(ctx context.Context, creatorID uuid.UUID, input CreateProjectInput) (*domain.Project, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrEmptyTitle
	}

	project := &domain.Project{
		ID:          uuid.New(),
		CreatedBy:   creatorID,
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Status:      domain.ProjectStatusActive,
		CreatedAt:   time.Now(),
	}

	if err := s.projectRepo.CreateWithLeader(ctx, project); err != nil {
		if errors.Is(err, domain.ErrCapacityExceeded) {
			return nil, ErrProjectCapReached
		}
		return nil, err
	}

	return s.projectRepo.GetByID(ctx, project.ID)
}

func (s *ProjectService) JoinProject(ctx context.Context, userID, projectID uuid.UUID) (*domain.ProjectMembership, error) {
	membership := &domain.ProjectMembership{
		ID:        uuid.New(),
		ProjectID: projectID,
		UserID:    userID,
		Role:      domain.RoleMember,
	}

	if err := s.membershipRepo.Join(ctx, membership); err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return nil, ErrProjectNotFound
		case errors.Is(err, domain.ErrInvalidState):
			return nil, ErrProjectNotActive
		case errors.Is(err, domain.ErrConflict):
			return nil, ErrAlreadyMember
		case errors.Is(err, domain.ErrCapacityExceeded):
			return nil, ErrProjectCapReached
		}
		return nil, err
	}

	if project, err := s.projectRepo.GetByID(ctx, projectID); err == nil {
		s.notifications.Notify(ctx, project.CreatedBy,
			domain.NotificationTypeProjectJoined,
			"New teammate",
			fmt.Sprintf("Someone joined your project %q", project.Title),
			map[string]interface{}{"projectId": projectID, "userId": userID},
		)
	}

	return s.membershipRepo.GetByProjectAndUser(ctx, projectID, userID)
}

func (s *ProjectService) LeaveProject(ctx context.Context, userID, projectID uuid.UUID) error {
	if err := s.membershipRepo.Leave(ctx, projectID, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrMembershipNotFound
		}
		return err
	}

	if project, err := s.projectRepo.GetByID(ctx, projectID); err == nil && project.CreatedBy != userID {
		s.notifications.Notify(ctx, project.CreatedBy,
			domain.NotificationTypeProjectLeft,
			"Teammate left",
			fmt.Sprintf("A member left your project %q", project.Title),
			map[string]interface{}{"projectId": projectID, "userId": userID},
		)
	}
	return nil
}

func (s *ProjectService) CompleteProject(ctx context.Context, requesterID, projectID uuid.UUID) (*domain.Project, error) {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	if project.CreatedBy != requesterID {
		return nil, ErrNotProjectCreator
	}

	memberIDs, err := s.projectRepo.CompleteWithMembers(ctx, projectID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return nil, ErrProjectNotFound
		case errors.Is(err, domain.ErrConflict):
			return nil, ErrAlreadyCompleted
		}
		return nil, err
	}

	for _, memberID := range memberIDs {
		if memberID == requesterID {
			continue
		}
		s.notifications.Notify(ctx, memberID,
			domain.NotificationTypeProjectCompleted,
			"Project completed",
			fmt.Sprintf("Project %q has been marked complete", project.Title),
			map[string]interface{}{"projectId": projectID},
		)
	}

	return s.projectRepo.GetByID(ctx, projectID)
}

func (s *ProjectService) GetProject(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return project, nil
}

func (s *ProjectService) GetUserProjects(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Project, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.projectRepo.GetByUserID(ctx, userID, limit, offset)
}

func (s *ProjectService) GetMembers(ctx context.Context, projectID uuid.UUID) ([]*domain.ProjectMembership, error) {
	return s.membershipRepo.GetByProjectID(ctx, projectID)
}
