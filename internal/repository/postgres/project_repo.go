package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jortiz/teammatch/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type projectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *projectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) CreateWithLeader(ctx context.Context, project *domain.Project) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := incrementActiveProjects(tx, project.CreatedBy); err != nil {
			return err
		}
		if err := tx.Create(project).Error; err != nil {
			return err
		}
		membership := &domain.ProjectMembership{
			ID:        uuid.New(),
			ProjectID: project.ID,
			UserID:    project.CreatedBy,
			Role:      domain.RoleLeader,
		}
		return tx.Create(membership).Error
	})
}

func (r *projectRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	var project domain.Project
	err := r.db.WithContext(ctx).
		Preload("Creator").
		Preload("Members").
		Preload("Members.User").
		First(&project, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &project, nil
}

func (r *projectRepository) GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Project, error) {
	var projects []*domain.Project
	err := r.db.WithContext(ctx).
		Joins("JOIN project_memberships pm ON pm.project_id = projects.id").
		Where("pm.user_id = ?", userID).
		Order("projects.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *projectRepository) CompleteWithMembers(ctx context.Context, projectID uuid.UUID) ([]uuid.UUID, error) {
	var memberIDs []uuid.UUID

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var project domain.Project
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&project, "id = ?", projectID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		if project.Status != domain.ProjectStatusActive {
			return domain.ErrConflict
		}

		if err := tx.Table("project_memberships").
			Where("project_id = ?", projectID).
			Pluck("user_id", &memberIDs).Error; err != nil {
			return err
		}

		now := time.Now()
		if err := tx.Model(&project).Updates(map[string]interface{}{
			"status":       domain.ProjectStatusCompleted,
			"completed_at": now,
		}).Error; err != nil {
			return err
		}

		return decrementActiveProjects(tx, memberIDs...)
	})
	if err != nil {
		return nil, err
	}
	return memberIDs, nil
}
