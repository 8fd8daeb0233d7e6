package domain

import (
	"time"

	"github.com/google/uuid"
)

type ProjectStatus string

const (
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusCompleted ProjectStatus = "completed"
)

type MembershipRole string

const (
	RoleLeader MembershipRole = "leader"
	RoleMember MembershipRole = "member"
)

type Project struct {
	ID          uuid.UUID     `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CreatedBy   uuid.UUID     `json:"createdBy" gorm:"type:uuid;not null;index"`
	Title       string        `json:"title" gorm:"not null"`
	Description string        `json:"description"`
	Status      ProjectStatus `json:"status" gorm:"not null;default:'active'"`
	CreatedAt   time.Time     `json:"createdAt"`
	CompletedAt *time.Time    `json:"completedAt"`

	// Relations
	Creator *User               `json:"creator,omitempty" gorm:"foreignKey:CreatedBy"`
	Members []ProjectMembership `json:"members,omitempty" gorm:"foreignKey:ProjectID"`
}

// ProjectMembership links a user to a project. At most one row per
// (project, user) pair; the creator's leader row is created atomically
// with the project itself.
type ProjectMembership struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ProjectID uuid.UUID      `json:"projectId" gorm:"type:uuid;not null;uniqueIndex:idx_project_member"`
	UserID    uuid.UUID      `json:"userId" gorm:"type:uuid;not null;uniqueIndex:idx_project_member"`
	Role      MembershipRole `json:"role" gorm:"type:varchar(10);not null;default:'member'"`
	JoinedAt  time.Time      `json:"joinedAt" gorm:"autoCreateTime"`

	// Relations
	User    *User    `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Project *Project `json:"-" gorm:"foreignKey:ProjectID"`
}

func (ProjectMembership) TableName() string {
	return "project_memberships"
}
