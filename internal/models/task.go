package models

import "time"

type TaskStatus string

const (
	TaskStatusPlanned    TaskStatus = "planned"
	TaskStatusInProgress TaskStatus = "inProgress"
	TaskStatusDone       TaskStatus = "done"
)

// Valid reports whether s is one of the board columns.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPlanned, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}

type Task struct {
	ID             uint64      `gorm:"primarykey" bson:"_id" json:"id"`
	ProjectID      uint64      `gorm:"not null;index" bson:"project_id" json:"project_id"`
	Title          string      `gorm:"not null" bson:"title" json:"title"`
	Description    string      `gorm:"type:text" bson:"description" json:"description"`
	DueDate        *time.Time  `gorm:"index" bson:"due_date,omitempty" json:"due_date"`
	Status         TaskStatus  `gorm:"type:varchar(20);not null;default:'planned'" bson:"status" json:"status"`
	PreviousStatus *TaskStatus `gorm:"type:varchar(20)" bson:"previous_status,omitempty" json:"previous_status"`
	Urgent         bool        `gorm:"not null;default:false" bson:"urgent" json:"urgent"`
	CreatedByID    uint64      `gorm:"not null" bson:"created_by" json:"created_by_id"`
	UpdatedByID    *uint64     `bson:"updated_by,omitempty" json:"updated_by_id"`
	IsArchived     bool        `gorm:"not null;default:false;index" bson:"is_archived" json:"is_archived"`
	IsDeleted      bool        `gorm:"not null;default:false;index" bson:"is_deleted" json:"is_deleted"`
	CreatedAt      time.Time   `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time   `bson:"updated_at" json:"updated_at"`

	// AssigneeIDs is kept in task_assignments by the relational store and
	// inline by the document store.
	AssigneeIDs []uint64 `gorm:"-" bson:"assigned_to" json:"assignee_ids"`
}
