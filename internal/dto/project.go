package dto

import (
	"time"

	"github.com/yukikurage/kanban-api/internal/models"
)

// ProjectDTO represents a project in API responses
type ProjectDTO struct {
	ID           uint64    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Owner        UserDTO   `json:"owner"`
	Members      []UserDTO `json:"members"`
	LastEditedBy *UserDTO  `json:"last_edited_by"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// MembersResponse is returned by share and unshare
type MembersResponse struct {
	ProjectID uint64    `json:"project_id"`
	Members   []UserDTO `json:"members"`
}

// ToProjectDTO converts a Project model using users resolved in dir
func ToProjectDTO(project models.Project, dir Directory) ProjectDTO {
	return ProjectDTO{
		ID:           project.ID,
		Name:         project.Name,
		Description:  project.Description,
		Owner:        dir.Ref(project.OwnerID),
		Members:      dir.Refs(project.MemberIDs),
		LastEditedBy: dir.OptionalRef(project.LastEditedByID),
		CreatedAt:    project.CreatedAt,
		UpdatedAt:    project.UpdatedAt,
	}
}

func ToMembersResponse(project models.Project, dir Directory) MembersResponse {
	return MembersResponse{
		ProjectID: project.ID,
		Members:   dir.Refs(project.MemberIDs),
	}
}
