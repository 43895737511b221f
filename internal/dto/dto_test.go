package dto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/yukikurage/kanban-api/internal/models"
)

func TestDirectory(t *testing.T) {
	dir := NewDirectory([]models.User{
		{ID: 1, Name: "Alice", Email: "alice@example.com"},
		{ID: 2, Name: "Bob", Email: "bob@example.com"},
	})

	assert.Equal(t, "Alice", dir.Ref(1).Name)
	assert.Equal(t, UserDTO{ID: 9}, dir.Ref(9))
	assert.Nil(t, dir.OptionalRef(nil))

	id := uint64(2)
	assert.Equal(t, "bob@example.com", dir.OptionalRef(&id).Email)
	assert.Equal(t, []UserDTO{}, dir.Refs(nil))
}

func TestToProjectDTO(t *testing.T) {
	editor := uint64(2)
	dir := NewDirectory([]models.User{
		{ID: 1, Name: "Alice", Email: "alice@example.com"},
		{ID: 2, Name: "Bob", Email: "bob@example.com"},
	})
	project := models.Project{
		ID:             7,
		Name:           "Launch",
		OwnerID:        1,
		MemberIDs:      []uint64{2},
		LastEditedByID: &editor,
	}

	got := ToProjectDTO(project, dir)
	assert.Equal(t, uint64(7), got.ID)
	assert.Equal(t, "Alice", got.Owner.Name)
	assert.Equal(t, []UserDTO{{ID: 2, Name: "Bob", Email: "bob@example.com"}}, got.Members)
	assert.Equal(t, "Bob", got.LastEditedBy.Name)

	members := ToMembersResponse(project, dir)
	assert.Equal(t, uint64(7), members.ProjectID)
	assert.Len(t, members.Members, 1)
}

func TestToTaskDTO(t *testing.T) {
	due := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	prev := models.TaskStatusInProgress
	dir := NewDirectory([]models.User{{ID: 1, Name: "Alice"}, {ID: 3, Name: "Carol"}})
	task := models.Task{
		ID:             5,
		ProjectID:      7,
		Title:          "Write docs",
		DueDate:        &due,
		Status:         models.TaskStatusDone,
		PreviousStatus: &prev,
		CreatedByID:    1,
		AssigneeIDs:    []uint64{3},
		IsArchived:     true,
		IsDeleted:      true,
	}

	got := ToTaskDTO(task, dir)
	assert.Equal(t, "Alice", got.CreatedBy.Name)
	assert.Nil(t, got.UpdatedBy)
	assert.Equal(t, "Carol", got.AssignedTo[0].Name)
	assert.Equal(t, &prev, got.PreviousStatus)
	assert.True(t, got.IsArchived)
	assert.True(t, got.IsDeleted)

	assert.Len(t, ToTaskDTOs([]models.Task{task, task}, dir), 2)
}
