package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/kanban-api/internal/dto"
	apierrors "github.com/yukikurage/kanban-api/internal/errors"
	"github.com/yukikurage/kanban-api/internal/models"
	"github.com/yukikurage/kanban-api/internal/repository"
	"github.com/yukikurage/kanban-api/internal/services"
	"go.uber.org/zap"
)

// TaskHandler handles task-related requests
type TaskHandler struct {
	taskService *services.TaskService
	log         *zap.Logger
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(taskService *services.TaskService, log *zap.Logger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		log:         log,
	}
}

// dueDate distinguishes an absent due date from an explicit null or "".
// Both RFC 3339 timestamps and plain dates are accepted.
type dueDate struct {
	Set   bool
	Value *time.Time
}

func (d *dueDate) UnmarshalJSON(data []byte) error {
	d.Set = true
	if string(data) == "null" {
		d.Value = nil
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		d.Value = nil
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			d.Value = &t
			return nil
		}
	}
	return fmt.Errorf("invalid due_date %q", s)
}

// CreateTask creates a new task
func (h *TaskHandler) CreateTask(c *gin.Context) {
	type CreateTaskRequest struct {
		ProjectID   uint64            `json:"project_id"`
		Title       string            `json:"title"`
		Description string            `json:"description"`
		DueDate     dueDate           `json:"due_date"`
		Status      models.TaskStatus `json:"status"`
		Urgent      bool              `json:"urgent"`
		AssignedTo  []uint64          `json:"assigned_to"`
	}

	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), userID, services.CreateTaskInput{
		ProjectID:   req.ProjectID,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate.Value,
		Status:      req.Status,
		Urgent:      req.Urgent,
		AssignedTo:  req.AssignedTo,
	})
	if err != nil {
		apierrors.Respond(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, task)
}

// UpdateTask updates an existing task
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	type UpdateTaskRequest struct {
		Title       *string            `json:"title"`
		Description *string            `json:"description"`
		DueDate     dueDate            `json:"due_date"`
		Status      *models.TaskStatus `json:"status"`
		Urgent      *bool              `json:"urgent"`
		AssignedTo  *[]uint64          `json:"assigned_to"`
	}

	userID, taskID, ok := requireUserAndID(c, "id")
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Urgent:      req.Urgent,
		AssignedTo:  req.AssignedTo,
	}
	if req.DueDate.Set {
		input.DueDate = req.DueDate.Value
		input.ClearDueDate = req.DueDate.Value == nil
	}

	task, err := h.taskService.UpdateTask(c.Request.Context(), userID, taskID, input)
	if err != nil {
		apierrors.Respond(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// ArchiveTask moves a task into the archive
func (h *TaskHandler) ArchiveTask(c *gin.Context) {
	h.transition(c, h.taskService.ArchiveTask)
}

// SoftDeleteTask moves a task into the trash
func (h *TaskHandler) SoftDeleteTask(c *gin.Context) {
	h.transition(c, h.taskService.SoftDeleteTask)
}

// RestoreTask brings a task back to the board
func (h *TaskHandler) RestoreTask(c *gin.Context) {
	h.transition(c, h.taskService.RestoreTask)
}

type transitionFunc func(ctx context.Context, userID, taskID uint64) (*dto.TaskDTO, error)

func (h *TaskHandler) transition(c *gin.Context, fn transitionFunc) {
	userID, taskID, ok := requireUserAndID(c, "id")
	if !ok {
		return
	}

	task, err := fn(c.Request.Context(), userID, taskID)
	if err != nil {
		apierrors.Respond(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// PermanentDeleteTask removes a task for good
func (h *TaskHandler) PermanentDeleteTask(c *gin.Context) {
	userID, taskID, ok := requireUserAndID(c, "id")
	if !ok {
		return
	}

	if err := h.taskService.PermanentDeleteTask(c.Request.Context(), userID, taskID); err != nil {
		apierrors.Respond(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task permanently deleted",
	})
}

// ListTasks returns a handler listing one view of a project's tasks
func (h *TaskHandler) ListTasks(view repository.TaskView) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, projectID, ok := requireUserAndID(c, "projectId")
		if !ok {
			return
		}

		tasks, err := h.taskService.ListTasks(c.Request.Context(), userID, projectID, view)
		if err != nil {
			apierrors.Respond(c, h.log, err)
			return
		}

		c.JSON(http.StatusOK, tasks)
	}
}

// PurgeTasks returns a handler permanently deleting one view of a project's tasks
func (h *TaskHandler) PurgeTasks(view repository.TaskView) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, projectID, ok := requireUserAndID(c, "projectId")
		if !ok {
			return
		}

		deleted, err := h.taskService.PurgeTasks(c.Request.Context(), userID, projectID, view)
		if err != nil {
			h.log.Warn("purge incomplete",
				zap.Uint64("project_id", projectID),
				zap.Int("deleted", deleted),
			)
			apierrors.Respond(c, h.log, err)
			return
		}

		c.JSON(http.StatusOK, dto.PurgeResponse{Deleted: deleted})
	}
}
