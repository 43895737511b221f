package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/yukikurage/kanban-api/internal/constants"
	"github.com/yukikurage/kanban-api/internal/dto"
	apierrors "github.com/yukikurage/kanban-api/internal/errors"
	"github.com/yukikurage/kanban-api/internal/models"
	"github.com/yukikurage/kanban-api/internal/policy"
	"github.com/yukikurage/kanban-api/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// TaskService handles task business logic
type TaskService struct {
	tasks      repository.TaskRepository
	projects   repository.ProjectRepository
	users      repository.UserRepository
	resolver   *UserResolver
	purge      policy.PurgePolicy
	purgeLimit int
	log        *zap.Logger
}

// TaskServiceConfig tunes permanent deletion.
type TaskServiceConfig struct {
	PurgePolicy      policy.PurgePolicy
	PurgeConcurrency int
}

// NewTaskService creates a new TaskService
func NewTaskService(store repository.Store, resolver *UserResolver, cfg TaskServiceConfig, log *zap.Logger) *TaskService {
	if cfg.PurgePolicy == "" {
		cfg.PurgePolicy = policy.PurgeAny
	}
	if cfg.PurgeConcurrency < 1 {
		cfg.PurgeConcurrency = constants.DefaultPurgeConcurrency
	}
	return &TaskService{
		tasks:      store.Tasks,
		projects:   store.Projects,
		users:      store.Users,
		resolver:   resolver,
		purge:      cfg.PurgePolicy,
		purgeLimit: cfg.PurgeConcurrency,
		log:        log,
	}
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	ProjectID   uint64
	Title       string
	Description string
	DueDate     *time.Time
	Status      models.TaskStatus
	Urgent      bool
	AssignedTo  []uint64
}

// UpdateTaskInput represents input for updating a task. Nil fields are
// left unchanged.
type UpdateTaskInput struct {
	Title        *string
	Description  *string
	DueDate      *time.Time
	ClearDueDate bool
	Status       *models.TaskStatus
	Urgent       *bool
	AssignedTo   *[]uint64
}

// CreateTask creates an active task in a project the caller belongs to
func (s *TaskService) CreateTask(ctx context.Context, userID uint64, input CreateTaskInput) (*dto.TaskDTO, error) {
	if input.ProjectID == 0 {
		return nil, ErrProjectIDRequired
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	status := input.Status
	if status == "" {
		status = models.TaskStatusPlanned
	}
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	// previous_status mirrors the requested status and stays unset when
	// none was given; restore falls back to planned either way.
	var previous *models.TaskStatus
	if input.Status != "" {
		requested := input.Status
		previous = &requested
	}

	if _, err := s.findEditableProject(ctx, userID, input.ProjectID); err != nil {
		return nil, err
	}

	assignees, err := s.validateAssignees(ctx, input.AssignedTo)
	if err != nil {
		return nil, err
	}

	task := &models.Task{
		ProjectID:      input.ProjectID,
		Title:          title,
		Description:    input.Description,
		DueDate:        inUTC(input.DueDate),
		Status:         status,
		PreviousStatus: previous,
		Urgent:         input.Urgent,
		CreatedByID:    userID,
		UpdatedByID:    &userID,
		AssigneeIDs:    assignees,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return s.resolver.Task(ctx, task)
}

// UpdateTask edits task fields in any lifecycle state
func (s *TaskService) UpdateTask(ctx context.Context, userID, taskID uint64, input UpdateTaskInput) (*dto.TaskDTO, error) {
	return s.mutate(ctx, userID, taskID, func(task *models.Task) error {
		if input.Title != nil {
			title := strings.TrimSpace(*input.Title)
			if title == "" {
				return ErrTitleEmpty
			}
			task.Title = title
		}
		if input.Description != nil {
			task.Description = *input.Description
		}
		if input.ClearDueDate {
			task.DueDate = nil
		} else if input.DueDate != nil {
			task.DueDate = inUTC(input.DueDate)
		}
		if input.Status != nil {
			if !input.Status.Valid() {
				return ErrInvalidStatus
			}
			task.Status = *input.Status
		}
		if input.Urgent != nil {
			task.Urgent = *input.Urgent
		}
		if input.AssignedTo != nil {
			assignees, err := s.validateAssignees(ctx, *input.AssignedTo)
			if err != nil {
				return err
			}
			task.AssigneeIDs = assignees
		}
		return nil
	})
}

// ArchiveTask moves a task off the board into the archive
func (s *TaskService) ArchiveTask(ctx context.Context, userID, taskID uint64) (*dto.TaskDTO, error) {
	return s.mutate(ctx, userID, taskID, func(task *models.Task) error {
		snapshotStatus(task)
		task.IsArchived = true
		return nil
	})
}

// SoftDeleteTask moves a task to the trash. The archive flag is kept.
func (s *TaskService) SoftDeleteTask(ctx context.Context, userID, taskID uint64) (*dto.TaskDTO, error) {
	return s.mutate(ctx, userID, taskID, func(task *models.Task) error {
		snapshotStatus(task)
		task.IsDeleted = true
		return nil
	})
}

// RestoreTask returns a task to the board with its remembered status
func (s *TaskService) RestoreTask(ctx context.Context, userID, taskID uint64) (*dto.TaskDTO, error) {
	return s.mutate(ctx, userID, taskID, func(task *models.Task) error {
		task.IsArchived = false
		task.IsDeleted = false
		if task.PreviousStatus != nil && task.PreviousStatus.Valid() {
			task.Status = *task.PreviousStatus
		} else {
			task.Status = models.TaskStatusPlanned
		}
		task.PreviousStatus = nil
		return nil
	})
}

// PermanentDeleteTask removes a task for good, subject to the purge policy.
// Under policy.PurgeAny a task that no longer exists is not an error.
func (s *TaskService) PermanentDeleteTask(ctx context.Context, userID, taskID uint64) error {
	if s.purge.RequiresProject() {
		task, err := s.findTask(ctx, taskID)
		if err != nil {
			return err
		}
		project, err := findProject(ctx, s.projects, task.ProjectID)
		if err != nil {
			return err
		}
		if !s.purge.CanPurge(userID, project) {
			return ErrProjectForbidden
		}
	}

	if err := s.tasks.Delete(ctx, taskID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			if s.purge.RequiresProject() {
				return ErrTaskNotFound
			}
			return nil
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}

	s.log.Info("task permanently deleted",
		zap.Uint64("task_id", taskID),
		zap.Uint64("user_id", userID),
	)
	return nil
}

// ListTasks returns one lifecycle view of a project's tasks
func (s *TaskService) ListTasks(ctx context.Context, userID, projectID uint64, view repository.TaskView) ([]dto.TaskDTO, error) {
	if !view.Valid() {
		return nil, ErrInvalidView
	}

	project, err := findProject(ctx, s.projects, projectID)
	if err != nil {
		return nil, err
	}
	if !policy.CanReadProject(userID, project) {
		return nil, ErrProjectForbidden
	}

	tasks, err := s.tasks.ListByProject(ctx, projectID, view)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return s.resolver.Tasks(ctx, tasks)
}

// PurgeTasks permanently deletes every task in one view of a project. The
// deletes run concurrently and independently; the count of removed tasks
// is returned together with the first failure, if any.
func (s *TaskService) PurgeTasks(ctx context.Context, userID, projectID uint64, view repository.TaskView) (int, error) {
	if !view.Valid() {
		return 0, ErrInvalidView
	}

	project, err := findProject(ctx, s.projects, projectID)
	if err != nil {
		return 0, err
	}
	if !policy.CanManageProject(userID, project) {
		return 0, ErrOwnerOnly
	}

	tasks, err := s.tasks.ListByProject(ctx, projectID, view)
	if err != nil {
		return 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	var (
		g       errgroup.Group
		deleted atomic.Int64
	)
	g.SetLimit(s.purgeLimit)
	for _, task := range tasks {
		id := task.ID
		g.Go(func() error {
			if err := s.tasks.Delete(ctx, id); err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return nil
				}
				return fmt.Errorf("failed to delete task %d: %w", id, err)
			}
			deleted.Add(1)
			return nil
		})
	}
	err = g.Wait()

	s.log.Info("tasks purged",
		zap.Uint64("project_id", projectID),
		zap.String("view", string(view)),
		zap.Int64("deleted", deleted.Load()),
		zap.Int("listed", len(tasks)),
		zap.Error(err),
	)
	return int(deleted.Load()), err
}

// mutate loads a task the caller may edit, applies fn and saves it
// stamped with the caller as last updater.
func (s *TaskService) mutate(ctx context.Context, userID, taskID uint64, fn func(*models.Task) error) (*dto.TaskDTO, error) {
	task, err := s.findTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if _, err := s.findEditableProject(ctx, userID, task.ProjectID); err != nil {
		return nil, err
	}

	if err := fn(task); err != nil {
		return nil, err
	}
	task.UpdatedByID = &userID

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return s.resolver.Task(ctx, task)
}

func (s *TaskService) findTask(ctx context.Context, taskID uint64) (*models.Task, error) {
	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

func (s *TaskService) findEditableProject(ctx context.Context, userID, projectID uint64) (*models.Project, error) {
	project, err := findProject(ctx, s.projects, projectID)
	if err != nil {
		return nil, err
	}
	if !policy.CanEditTasks(userID, project) {
		return nil, ErrProjectForbidden
	}
	return project, nil
}

// validateAssignees dedupes ids and rejects any that are not registered users.
func (s *TaskService) validateAssignees(ctx context.Context, ids []uint64) ([]uint64, error) {
	seen := make(map[uint64]struct{}, len(ids))
	unique := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	if len(unique) == 0 {
		return unique, nil
	}

	users, err := s.users.FindByIDs(ctx, unique)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve assignees: %w", err)
	}
	found := make(map[uint64]struct{}, len(users))
	for _, u := range users {
		found[u.ID] = struct{}{}
	}

	var missing []uint64
	for _, id := range unique {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
		return nil, apierrors.
			Validation("assignees not found: %v", missing).
			WithDetails(map[string]interface{}{"ids": missing})
	}
	return unique, nil
}

func snapshotStatus(task *models.Task) {
	previous := task.Status
	task.PreviousStatus = &previous
}

// inUTC stores due dates as UTC so every backend orders them by instant.
func inUTC(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
