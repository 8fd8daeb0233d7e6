package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message is a direct message between two users. Immutable after creation
// except for the read flag.
type Message struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	SenderID   uuid.UUID `json:"senderId" gorm:"type:uuid;not null;index"`
	ReceiverID uuid.UUID `json:"receiverId" gorm:"type:uuid;not null;index"`
	Content    string    `json:"content" gorm:"not null"`
	IsRead     bool      `json:"isRead" gorm:"not null;default:false"`
	CreatedAt  time.Time `json:"createdAt"`

	// Relations
	Sender *User `json:"sender,omitempty" gorm:"foreignKey:SenderID"`
}
