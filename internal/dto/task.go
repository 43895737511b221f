package dto

import (
	"time"

	"github.com/yukikurage/kanban-api/internal/models"
)

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID             uint64             `json:"id"`
	ProjectID      uint64             `json:"project_id"`
	Title          string             `json:"title"`
	Description    string             `json:"description"`
	DueDate        *time.Time         `json:"due_date"`
	Status         models.TaskStatus  `json:"status"`
	PreviousStatus *models.TaskStatus `json:"previous_status"`
	Urgent         bool               `json:"urgent"`
	AssignedTo     []UserDTO          `json:"assigned_to"`
	CreatedBy      UserDTO            `json:"created_by"`
	UpdatedBy      *UserDTO           `json:"updated_by"`
	IsArchived     bool               `json:"is_archived"`
	IsDeleted      bool               `json:"is_deleted"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

// PurgeResponse reports how many tasks a bulk delete removed
type PurgeResponse struct {
	Deleted int `json:"deleted"`
}

// ToTaskDTO converts a Task model using users resolved in dir
func ToTaskDTO(task models.Task, dir Directory) TaskDTO {
	return TaskDTO{
		ID:             task.ID,
		ProjectID:      task.ProjectID,
		Title:          task.Title,
		Description:    task.Description,
		DueDate:        task.DueDate,
		Status:         task.Status,
		PreviousStatus: task.PreviousStatus,
		Urgent:         task.Urgent,
		AssignedTo:     dir.Refs(task.AssigneeIDs),
		CreatedBy:      dir.Ref(task.CreatedByID),
		UpdatedBy:      dir.OptionalRef(task.UpdatedByID),
		IsArchived:     task.IsArchived,
		IsDeleted:      task.IsDeleted,
		CreatedAt:      task.CreatedAt,
		UpdatedAt:      task.UpdatedAt,
	}
}

// ToTaskDTOs converts a list of tasks sharing one directory
func ToTaskDTOs(tasks []models.Task, dir Directory) []TaskDTO {
	out := make([]TaskDTO, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, ToTaskDTO(t, dir))
	}
	return out
}
