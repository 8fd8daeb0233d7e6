package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	MinRating = 1
	MaxRating = 5
)

// ReputationLogEntry is an immutable audit record of one rating event.
// The composite unique index is the duplicate-rating guard: at most one
// entry per (rater, rated, project) triple, enforced by the database.
type ReputationLogEntry struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	RatedUserID uuid.UUID `json:"ratedUserId" gorm:"type:uuid;not null;uniqueIndex:idx_rating_once;index"`
	RaterID     uuid.UUID `json:"raterId" gorm:"type:uuid;not null;uniqueIndex:idx_rating_once"`
	ProjectID   uuid.UUID `json:"projectId" gorm:"type:uuid;not null;uniqueIndex:idx_rating_once"`
	Rating      int       `json:"rating" gorm:"not null"`
	Adjustment  int       `json:"adjustment" gorm:"not null"`
	CreatedAt   time.Time `json:"createdAt"`

	// Relations
	Rater *User `json:"rater,omitempty" gorm:"foreignKey:RaterID"`
}

func (ReputationLogEntry) TableName() string {
	return "reputation_log"
}

// AdjustmentForRating maps a 1-5 rating to its signed score delta.
func AdjustmentForRating(rating int) int {
	switch {
	case rating <= 1:
		return -15
	case rating <= 3:
		return -5
	case rating == 4:
		return 5
	default:
		return 10
	}
}
