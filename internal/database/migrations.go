package database

import (
	"fmt"

	"github.com/yukikurage/kanban-api/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Models lists every table the relational store needs.
var Models = []interface{}{
	&models.User{},
	&models.Project{},
	&models.ProjectMember{},
	&models.Task{},
	&models.TaskAssignment{},
}

// Migrate creates or updates the relational schema. Indexes come from the
// gorm struct tags.
func Migrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("running database migrations")
	if err := db.AutoMigrate(Models...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info("database migrations completed")
	return nil
}
