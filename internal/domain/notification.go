package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type NotificationType string

const (
	NotificationTypeMessage          NotificationType = "message"
	NotificationTypeProjectJoined    NotificationType = "project_joined"
	NotificationTypeProjectLeft      NotificationType = "project_left"
	NotificationTypeProjectCompleted NotificationType = "project_completed"
	NotificationTypeRating           NotificationType = "rating"
)

type Notification struct {
	ID        uuid.UUID        `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID    uuid.UUID        `json:"userId" gorm:"type:uuid;not null;index"`
	Type      NotificationType `json:"type" gorm:"type:varchar(32);not null"`
	Title     string           `json:"title" gorm:"not null"`
	Message   string           `json:"message"`
	Metadata  datatypes.JSON   `json:"metadata,omitempty"`
	IsRead    bool             `json:"isRead" gorm:"not null;default:false"`
	CreatedAt time.Time        `json:"createdAt"`
}
