package repository

import (
	"context"
	"errors"

	"github.com/yukikurage/kanban-api/internal/models"
	"gorm.io/gorm"
)

// ErrNotFound is returned by every implementation when the requested
// record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrDuplicateEmail is returned when a user write collides with the unique
// email index.
var ErrDuplicateEmail = errors.New("email already in use")

// TaskView selects which lifecycle bucket of a project's tasks to list.
type TaskView string

const (
	// TaskViewBoard lists active tasks, due date ascending with undated
	// tasks last, then newest first.
	TaskViewBoard TaskView = "board"
	// TaskViewArchived lists archived, not deleted tasks, recently
	// updated first.
	TaskViewArchived TaskView = "archived"
	// TaskViewDeleted lists deleted tasks regardless of the archive flag,
	// recently updated first.
	TaskViewDeleted TaskView = "deleted"
)

// Valid reports whether v names a known view.
func (v TaskView) Valid() bool {
	switch v {
	case TaskViewBoard, TaskViewArchived, TaskViewDeleted:
		return true
	}
	return false
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uint64) (*models.User, error)

	// FindByEmail finds a user by normalized email
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// FindByIDs returns the users that exist among ids, in no particular order
	FindByIDs(ctx context.Context, ids []uint64) ([]models.User, error)

	// FindByEmails returns the users that exist among emails, in no particular order
	FindByEmails(ctx context.Context, emails []string) ([]models.User, error)

	// Update saves name, email and password hash
	Update(ctx context.Context, user *models.User) error
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	// Create creates a project together with its member list
	Create(ctx context.Context, project *models.Project) error

	// FindByID finds a project by ID with MemberIDs loaded
	FindByID(ctx context.Context, id uint64) (*models.Project, error)

	// ListForUser lists projects the user owns or is a member of, most
	// recently updated first
	ListForUser(ctx context.Context, userID uint64) ([]models.Project, error)

	// Update saves name, description and last editor
	Update(ctx context.Context, project *models.Project) error

	// AddMember appends a member and touches the project
	AddMember(ctx context.Context, projectID, userID uint64) error

	// RemoveMember removes a member and touches the project; removing a
	// non-member is not an error
	RemoveMember(ctx context.Context, projectID, userID uint64) error

	// Delete deletes the project and its member list. Tasks are not touched.
	Delete(ctx context.Context, id uint64) error
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task with its assignees
	Create(ctx context.Context, task *models.Task) error

	// FindByID finds a task by ID with AssigneeIDs loaded
	FindByID(ctx context.Context, id uint64) (*models.Task, error)

	// ListByProject lists one view of a project's tasks
	ListByProject(ctx context.Context, projectID uint64, view TaskView) ([]models.Task, error)

	// Update saves every mutable field including assignees
	Update(ctx context.Context, task *models.Task) error

	// Delete permanently removes a task
	Delete(ctx context.Context, id uint64) error

	// DeleteByProject permanently removes every task of a project and
	// returns how many were removed
	DeleteByProject(ctx context.Context, projectID uint64) (int64, error)
}

// Store bundles the repositories of one backend.
type Store struct {
	Users    UserRepository
	Projects ProjectRepository
	Tasks    TaskRepository
}

// NewGormStore builds the repositories backed by a GORM connection.
func NewGormStore(db *gorm.DB) Store {
	return Store{
		Users:    NewUserRepository(db),
		Projects: NewProjectRepository(db),
		Tasks:    NewTaskRepository(db),
	}
}
