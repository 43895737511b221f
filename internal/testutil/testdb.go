// Package testutil provides an in-memory store for tests.
package testutil

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/kanban-api/internal/auth"
	"github.com/yukikurage/kanban-api/internal/database"
	"github.com/yukikurage/kanban-api/internal/models"
	"github.com/yukikurage/kanban-api/internal/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewInMemoryDB creates an in-memory SQLite DB and runs migrations. A single
// connection is used so every query sees the same database.
func NewInMemoryDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, db.AutoMigrate(database.Models...))
	return db
}

// NewStore returns GORM repositories over a fresh in-memory database.
func NewStore(t *testing.T) repository.Store {
	t.Helper()
	return repository.NewGormStore(NewInMemoryDB(t))
}

// CreateUser stores a user whose password is "password".
func CreateUser(t *testing.T, users repository.UserRepository, name, email string) *models.User {
	t.Helper()

	hash, err := auth.HashPassword("password")
	require.NoError(t, err)

	user := &models.User{Name: name, Email: email, PasswordHash: hash}
	require.NoError(t, users.Create(context.Background(), user))
	return user
}

// CreateProject stores a project owned by ownerID with the given members.
func CreateProject(t *testing.T, projects repository.ProjectRepository, name string, ownerID uint64, memberIDs ...uint64) *models.Project {
	t.Helper()

	project := &models.Project{Name: name, OwnerID: ownerID, MemberIDs: memberIDs}
	require.NoError(t, projects.Create(context.Background(), project))
	return project
}

// CreateTask stores an active planned task.
func CreateTask(t *testing.T, tasks repository.TaskRepository, projectID, creatorID uint64, title string) *models.Task {
	t.Helper()

	status := models.TaskStatusPlanned
	task := &models.Task{
		ProjectID:      projectID,
		Title:          title,
		Status:         status,
		PreviousStatus: &status,
		CreatedByID:    creatorID,
	}
	require.NoError(t, tasks.Create(context.Background(), task))
	return task
}
