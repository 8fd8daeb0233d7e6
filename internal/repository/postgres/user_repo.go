package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jortiz/teammatch/internal/domain"
	"gorm.io/gorm"
)

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *userRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		// The unique display-name index is the real guard; callers may
		// pre-check but cannot rely on it under concurrency.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrConflict
		}
		return err
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).
		Preload("Skills").
		Preload("Domains").
		First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByDisplayName(ctx context.Context, displayName string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).First(&user, "display_name = ?", displayName).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *userRepository) SetAvailability(ctx context.Context, id uuid.UUID, available bool) error {
	res := r.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", id).
		UpdateColumn("is_available", available)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *userRepository) GetSkillIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Table("user_skills").
		Where("user_id = ?", userID).
		Pluck("skill_id", &ids).Error
	return ids, err
}

func (r *userRepository) GetDomainIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Table("user_domains").
		Where("user_id = ?", userID).
		Pluck("work_domain_id", &ids).Error
	return ids, err
}

func (r *userRepository) ReplaceSkills(ctx context.Context, userID uuid.UUID, skillIDs []uuid.UUID) error {
	skills := make([]domain.Skill, len(skillIDs))
	for i, id := range skillIDs {
		skills[i] = domain.Skill{ID: id}
	}
	return r.db.WithContext(ctx).
		Model(&domain.User{ID: userID}).
		Association("Skills").
		Replace(skills)
}

func (r *userRepository) ReplaceDomains(ctx context.Context, userID uuid.UUID, domainIDs []uuid.UUID) error {
	domains := make([]domain.WorkDomain, len(domainIDs))
	for i, id := range domainIDs {
		domains[i] = domain.WorkDomain{ID: id}
	}
	return r.db.WithContext(ctx).
		Model(&domain.User{ID: userID}).
		Association("Domains").
		Replace(domains)
}

func (r *userRepository) GetCandidatePool(ctx context.Context, excludeID uuid.UUID, minReputation, limit int) ([]*domain.User, error) {
	var users []*domain.User
	err := r.db.WithContext(ctx).
		Where("id <> ? AND is_available = ? AND reputation_score >= ?", excludeID, true, minReputation).
		Order("reputation_score DESC, created_at ASC").
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// incrementActiveProjects is the cap guard: a single conditional update so
// two concurrent joins can never both pass the check.
func incrementActiveProjects(tx *gorm.DB, userID uuid.UUID) error {
	res := tx.Model(&domain.User{}).
		Where("id = ? AND active_project_count < ?", userID, domain.MaxActiveProjects).
		UpdateColumn("active_project_count", gorm.Expr("active_project_count + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrCapacityExceeded
	}
	return nil
}

func decrementActiveProjects(tx *gorm.DB, userIDs ...uuid.UUID) error {
	if len(userIDs) == 0 {
		return nil
	}
	return tx.Model(&domain.User{}).
		Where("id IN ?", userIDs).
		UpdateColumn("active_project_count", gorm.Expr("GREATEST(active_project_count - 1, 0)")).
		Error
}
