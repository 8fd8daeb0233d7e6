package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jortiz/teammatch/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type membershipRepository struct {
	db *gorm.DB
}

func NewMembershipRepository(db *gorm.DB) *membershipRepository {
	return &membershipRepository{db: db}
}

func (r *membershipRepository) Join(ctx context.Context, m *domain.ProjectMembership) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var project domain.Project
		err := tx.Clauses(clause.Locking{Strength: "SHARE"}).
			First(&project, "id = ?", m.ProjectID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		if project.Status != domain.ProjectStatusActive {
			return domain.ErrInvalidState
		}

		var count int64
		err = tx.Model(&domain.ProjectMembership{}).
			Where("project_id = ? AND user_id = ?", m.ProjectID, m.UserID).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return domain.ErrConflict
		}

		if err := incrementActiveProjects(tx, m.UserID); err != nil {
			return err
		}

		// The unique (project, user) index closes the race two concurrent
		// joins could otherwise slip through; the rollback undoes the
		// increment.
		if err := tx.Create(m).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domain.ErrConflict
			}
			return err
		}
		return nil
	})
}

func (r *membershipRepository) Leave(ctx context.Context, projectID, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var project domain.Project
		err := tx.Clauses(clause.Locking{Strength: "SHARE"}).
			First(&project, "id = ?", projectID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}

		res := tx.Where("project_id = ? AND user_id = ?", projectID, userID).
			Delete(&domain.ProjectMembership{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}

		// Completion already decremented every member; leaving a
		// completed project must not decrement again.
		if project.Status != domain.ProjectStatusActive {
			return nil
		}
		return decrementActiveProjects(tx, userID)
	})
}

func (r *membershipRepository) GetByProjectAndUser(ctx context.Context, projectID, userID uuid.UUID) (*domain.ProjectMembership, error) {
	var m domain.ProjectMembership
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("project_id = ? AND user_id = ?", projectID, userID).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *membershipRepository) GetByProjectID(ctx context.Context, projectID uuid.UUID) ([]*domain.ProjectMembership, error) {
	var members []*domain.ProjectMembership
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("project_id = ?", projectID).
		Order("joined_at").
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

func (r *membershipRepository) CountActiveByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.ProjectMembership{}).
		Joins("JOIN projects p ON p.id = project_memberships.project_id").
		Where("project_memberships.user_id = ? AND p.status = ?", userID, domain.ProjectStatusActive).
		Count(&count).Error
	return count, err
}
