package dto

import "github.com/yukikurage/kanban-api/internal/models"

// UserDTO represents a user in API responses
type UserDTO struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AuthResponse is returned by register and login
type AuthResponse struct {
	User  UserDTO `json:"user"`
	Token string  `json:"token"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	}
}

// Directory maps user ids to their display form.
type Directory map[uint64]UserDTO

// NewDirectory indexes users by id.
func NewDirectory(users []models.User) Directory {
	dir := make(Directory, len(users))
	for _, u := range users {
		dir[u.ID] = ToUserDTO(u)
	}
	return dir
}

// Ref returns the display form for id. Unknown ids keep their id with
// empty name and email.
func (d Directory) Ref(id uint64) UserDTO {
	if u, ok := d[id]; ok {
		return u
	}
	return UserDTO{ID: id}
}

// OptionalRef is Ref for nullable pointers.
func (d Directory) OptionalRef(id *uint64) *UserDTO {
	if id == nil {
		return nil
	}
	ref := d.Ref(*id)
	return &ref
}

// Refs resolves ids in order.
func (d Directory) Refs(ids []uint64) []UserDTO {
	refs := make([]UserDTO, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, d.Ref(id))
	}
	return refs
}
