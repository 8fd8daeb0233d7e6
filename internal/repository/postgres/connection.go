package postgres

import (
	"github.com/jortiz/teammatch/internal/domain"
	"github.com/jortiz/teammatch/internal/repository"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewConnection(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate creates or updates the schema, including the unique indexes the
// membership and reputation guards rely on.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.Skill{},
		&domain.WorkDomain{},
		&domain.Project{},
		&domain.ProjectMembership{},
		&domain.ReputationLogEntry{},
		&domain.Notification{},
		&domain.Message{},
	)
}

func NewRepositories(db *gorm.DB) *repository.Repositories {
	return &repository.Repositories{
		User:         NewUserRepository(db),
		Project:      NewProjectRepository(db),
		Membership:   NewMembershipRepository(db),
		Reputation:   NewReputationRepository(db),
		Notification: NewNotificationRepository(db),
		Message:      NewMessageRepository(db),
	}
}
