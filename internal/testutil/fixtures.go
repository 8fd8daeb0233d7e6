package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jortiz/teammatch/internal/domain"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	displayName string
	password    string
	reputation  int
	available   bool
	skills      []domain.Skill
	domains     []domain.WorkDomain
}

// NewUserBuilder creates a new UserBuilder with default values
func NewUserBuilder() *UserBuilder {
	return &UserBuilder{
		displayName: fmt.Sprintf("testuser_%s", uuid.New().String()[:8]),
		password:    "testpassword123",
		reputation:  domain.DefaultReputation,
		available:   true,
	}
}

func (b *UserBuilder) WithDisplayName(name string) *UserBuilder {
	b.displayName = name
	return b
}

func (b *UserBuilder) WithReputation(score int) *UserBuilder {
	b.reputation = score
	return b
}

func (b *UserBuilder) WithAvailability(available bool) *UserBuilder {
	b.available = available
	return b
}

func (b *UserBuilder) WithSkills(skills ...domain.Skill) *UserBuilder {
	b.skills = append(b.skills, skills...)
	return b
}

func (b *UserBuilder) WithDomains(domains ...domain.WorkDomain) *UserBuilder {
	b.domains = append(b.domains, domains...)
	return b
}

// Build creates the user in the database and returns the user with the raw password
func (b *UserBuilder) Build(t *testing.T, db *gorm.DB) (*domain.User, string) {
	t.Helper()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(b.password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &domain.User{
		ID:              uuid.New(),
		DisplayName:     b.displayName,
		PasswordHash:    string(hashedPassword),
		ReputationScore: b.reputation,
		IsAvailable:     b.available,
		Skills:          b.skills,
		Domains:         b.domains,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}

	// Select("*") forces zero-valued fields (e.g. IsAvailable=false) to be
	// inserted instead of being dropped in favor of the column defaults.
	if err := db.Select("*").Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user, b.password
}

// NewSkill creates a skill row for fixtures
func NewSkill(t *testing.T, db *gorm.DB, name string) domain.Skill {
	t.Helper()

	skill := domain.Skill{ID: uuid.New(), Name: name}
	if err := db.Create(&skill).Error; err != nil {
		t.Fatalf("failed to create skill: %v", err)
	}
	return skill
}

// NewWorkDomain creates a work domain row for fixtures
func NewWorkDomain(t *testing.T, db *gorm.DB, name string) domain.WorkDomain {
	t.Helper()

	wd := domain.WorkDomain{ID: uuid.New(), Name: name}
	if err := db.Create(&wd).Error; err != nil {
		t.Fatalf("failed to create work domain: %v", err)
	}
	return wd
}
