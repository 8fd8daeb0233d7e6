package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jortiz/teammatch/internal/domain"
	"github.com/jortiz/teammatch/internal/repository"
)

var (
	ErrRatingOutOfRange = fmt.Errorf("rating must be between 1 and 5: %w", domain.ErrValidation)
	ErrSelfRating       = fmt.Errorf("users cannot rate themselves: %w", domain.ErrValidation)
	ErrAlreadyRated     = fmt.Errorf("user already rated for this project: %w", domain.ErrConflict)
	ErrRatedUserMissing = fmt.Errorf("rated user not found: %w", domain.ErrNotFound)
)

// ReputationService is the reputation ledger: bounded, auditable score
// adjustments with one-vote-per-(rater, rated, project) enforcement.
type ReputationService struct {
	repo          repository.ReputationRepository
	userRepo      repository.UserRepository
	notifications *NotificationService
}

func NewReputationService(repo repository.ReputationRepository, userRepo repository.UserRepository, notifications *NotificationService) *ReputationService {
	return &ReputationService{
		repo:          repo,
		userRepo:      userRepo,
		notifications: notifications,
	}
}

func (s *ReputationService) Rate(ctx context.Context, raterID, ratedUserID, projectID uuid.UUID, rating int) (*domain.ReputationLogEntry, error) {
	if rating < domain.MinRating || rating > domain.MaxRating {
		return nil, ErrRatingOutOfRange
	}
	if raterID == ratedUserID {
		return nil, ErrSelfRating
	}

	entry := &domain.ReputationLogEntry{
		ID:          uuid.New(),
		RatedUserID: ratedUserID,
		RaterID:     raterID,
		ProjectID:   projectID,
		Rating:      rating,
		Adjustment:  domain.AdjustmentForRating(rating),
		CreatedAt:   time.Now(),
	}

	if err := s.repo.Append(ctx, entry); err != nil {
		switch {
		case errors.Is(err, domain.ErrConflict):
			return nil, ErrAlreadyRated
		case errors.Is(err, domain.ErrNotFound):
			return nil, ErrRatedUserMissing
		}
		return nil, err
	}

	s.notifications.Notify(ctx, ratedUserID,
		domain.NotificationTypeRating,
		"New rating",
		fmt.Sprintf("A teammate rated your collaboration %d/5", rating),
		map[string]interface{}{"projectId": projectID, "adjustment": entry.Adjustment},
	)

	return entry, nil
}

func (s *ReputationService) History(ctx context.Context, userID uuid.UUID) ([]*domain.ReputationLogEntry, error) {
	return s.repo.GetByRatedUser(ctx, userID)
}

// Summary reports the rated user's current score together with the average
// adjustment across all log entries. Informational only; no cap or
// threshold logic reads it.
type ReputationSummary struct {
	UserID            uuid.UUID `json:"userId"`
	ReputationScore   int       `json:"reputationScore"`
	RatingCount       int       `json:"ratingCount"`
	AverageAdjustment float64   `json:"averageAdjustment"`
}

func (s *ReputationService) Summary(ctx context.Context, userID uuid.UUID) (*ReputationSummary, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	entries, err := s.repo.GetByRatedUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	avg, err := s.repo.AverageAdjustment(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &ReputationSummary{
		UserID:            userID,
		ReputationScore:   user.ReputationScore,
		RatingCount:       len(entries),
		AverageAdjustment: math.Round(avg*100) / 100,
	}, nil
}
