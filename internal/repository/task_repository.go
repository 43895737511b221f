package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/yukikurage/kanban-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task and its assignment rows
func (r *GormTaskRepository) Create(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(task).Error; err != nil {
			return fmt.Errorf("failed to create task: %w", err)
		}
		return replaceAssignments(tx, task.ID, task.AssigneeIDs)
	})
}

// FindByID finds a task by ID
func (r *GormTaskRepository) FindByID(ctx context.Context, id uint64) (*models.Task, error) {
	db := r.db.WithContext(ctx)

	var task models.Task
	if err := db.First(&task, id).Error; err != nil {
		return nil, translateGormError(err)
	}

	assignees, err := assigneeIDs(db, []uint64{task.ID})
	if err != nil {
		return nil, err
	}
	task.AssigneeIDs = assignees[task.ID]

	return &task, nil
}

// ListByProject lists one lifecycle view of a project's tasks
func (r *GormTaskRepository) ListByProject(ctx context.Context, projectID uint64, view TaskView) ([]models.Task, error) {
	db := r.db.WithContext(ctx)
	query := db.Where("project_id = ?", projectID)

	switch view {
	case TaskViewBoard:
		query = query.
			Where("is_deleted = ? AND is_archived = ?", false, false).
			Order("CASE WHEN due_date IS NULL THEN 1 ELSE 0 END").
			Order("due_date ASC").
			Order("created_at DESC")
	case TaskViewArchived:
		query = query.
			Where("is_deleted = ? AND is_archived = ?", false, true).
			Order("updated_at DESC")
	case TaskViewDeleted:
		query = query.
			Where("is_deleted = ?", true).
			Order("updated_at DESC")
	default:
		return nil, fmt.Errorf("unknown task view %q", view)
	}

	var tasks []models.Task
	if err := query.Order("id DESC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	ids := make([]uint64, len(tasks))
	for i := range tasks {
		ids[i] = tasks[i].ID
	}
	assignees, err := assigneeIDs(db, ids)
	if err != nil {
		return nil, err
	}
	for i := range tasks {
		tasks[i].AssigneeIDs = assignees[tasks[i].ID]
	}

	return tasks, nil
}

// Update saves the task and replaces its assignment rows
func (r *GormTaskRepository) Update(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(task).Error; err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}
		return replaceAssignments(tx, task.ID, task.AssigneeIDs)
	})
}

// Delete permanently deletes a task and its assignment rows
func (r *GormTaskRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&models.TaskAssignment{}).Error; err != nil {
			return fmt.Errorf("failed to delete task assignments: %w", err)
		}

		res := tx.Delete(&models.Task{}, id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete task: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// DeleteByProject permanently deletes every task of a project
func (r *GormTaskRepository) DeleteByProject(ctx context.Context, projectID uint64) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taskIDs := tx.Model(&models.Task{}).Select("id").Where("project_id = ?", projectID)
		if err := tx.Where("task_id IN (?)", taskIDs).Delete(&models.TaskAssignment{}).Error; err != nil {
			return fmt.Errorf("failed to delete task assignments: %w", err)
		}

		res := tx.Where("project_id = ?", projectID).Delete(&models.Task{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete project tasks: %w", res.Error)
		}
		deleted = res.RowsAffected
		return nil
	})
	return deleted, err
}

// replaceAssignments makes the assignment rows of taskID equal userIDs
func replaceAssignments(tx *gorm.DB, taskID uint64, userIDs []uint64) error {
	if err := tx.Where("task_id = ?", taskID).Delete(&models.TaskAssignment{}).Error; err != nil {
		return fmt.Errorf("failed to clear task assignments: %w", err)
	}
	if len(userIDs) == 0 {
		return nil
	}

	now := time.Now()
	assignments := make([]models.TaskAssignment, len(userIDs))
	for i, userID := range userIDs {
		assignments[i] = models.TaskAssignment{
			TaskID:    taskID,
			UserID:    userID,
			CreatedAt: now,
		}
	}

	return tx.
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&assignments).Error
}

// assigneeIDs loads assignee ids for the given tasks keyed by task id
func assigneeIDs(db *gorm.DB, taskIDs []uint64) (map[uint64][]uint64, error) {
	result := make(map[uint64][]uint64, len(taskIDs))
	if len(taskIDs) == 0 {
		return result, nil
	}

	var rows []models.TaskAssignment
	if err := db.
		Where("task_id IN ?", taskIDs).
		Order("created_at ASC").
		Order("user_id ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load task assignments: %w", err)
	}
	for _, row := range rows {
		result[row.TaskID] = append(result[row.TaskID], row.UserID)
	}
	return result, nil
}
