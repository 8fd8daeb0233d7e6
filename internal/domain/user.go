package domain

import (
	"time"

	"github.com/google/uuid"
)

// MaxActiveProjects is the hard cap of concurrently active projects a user
// may belong to. Enforced atomically by the user repository.
const MaxActiveProjects = 2

// DefaultReputation is the score assigned to a newly registered user.
const DefaultReputation = 100

type User struct {
	ID                 uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	PasswordHash       string    `json:"-" gorm:"not null"`
	DisplayName        string    `json:"displayName" gorm:"uniqueIndex;not null"`
	ReputationScore    int       `json:"reputationScore" gorm:"not null;default:100"`
	ActiveProjectCount int       `json:"activeProjectCount" gorm:"not null;default:0"`
	IsAvailable        bool      `json:"isAvailable" gorm:"not null;default:true"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`

	// Relations
	Skills  []Skill      `json:"skills,omitempty" gorm:"many2many:user_skills"`
	Domains []WorkDomain `json:"domains,omitempty" gorm:"many2many:user_domains"`
}

// Skill is a taggable capability (e.g. "go", "react") owned by the profile
// layer; the ranking engine only reads the id sets.
type Skill struct {
	ID   uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name string    `json:"name" gorm:"uniqueIndex;not null"`
}

// WorkDomain is an area of interest (e.g. "fintech", "gamedev").
type WorkDomain struct {
	ID   uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name string    `json:"name" gorm:"uniqueIndex;not null"`
}

func (WorkDomain) TableName() string {
	return "work_domains"
}
