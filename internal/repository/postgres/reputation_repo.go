package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jortiz/teammatch/internal/domain"
	"gorm.io/gorm"
)

type reputationRepository struct {
	db *gorm.DB
}

func NewReputationRepository(db *gorm.DB) *reputationRepository {
	return &reputationRepository{db: db}
}

func (r *reputationRepository) Append(ctx context.Context, entry *domain.ReputationLogEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(entry).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domain.ErrConflict
			}
			return err
		}

		res := tx.Model(&domain.User{}).
			Where("id = ?", entry.RatedUserID).
			UpdateColumn("reputation_score", gorm.Expr("GREATEST(reputation_score + ?, 0)", entry.Adjustment))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

func (r *reputationRepository) GetByRatedUser(ctx context.Context, userID uuid.UUID) ([]*domain.ReputationLogEntry, error) {
	var entries []*domain.ReputationLogEntry
	err := r.db.WithContext(ctx).
		Preload("Rater").
		Where("rated_user_id = ?", userID).
		Order("created_at").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *reputationRepository) AverageAdjustment(ctx context.Context, userID uuid.UUID) (float64, error) {
	var avg *float64
	err := r.db.WithContext(ctx).
		Model(&domain.ReputationLogEntry{}).
		Where("rated_user_id = ?", userID).
		Select("AVG(adjustment)").
		Scan(&avg).Error
	if err != nil {
		return 0, err
	}
	if avg == nil {
		return 0, nil
	}
	return *avg, nil
}
