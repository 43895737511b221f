package services

import (
	"context"
	"fmt"

	"github.com/yukikurage/kanban-api/internal/dto"
	"github.com/yukikurage/kanban-api/internal/models"
	"github.com/yukikurage/kanban-api/internal/repository"
)

// UserResolver turns the user ids referenced by projects and tasks into
// display form with one batched lookup per response.
type UserResolver struct {
	users repository.UserRepository
}

func NewUserResolver(users repository.UserRepository) *UserResolver {
	return &UserResolver{users: users}
}

// refs collects distinct user ids.
type refs map[uint64]struct{}

func (r refs) add(ids ...uint64) {
	for _, id := range ids {
		if id != 0 {
			r[id] = struct{}{}
		}
	}
}

func (r refs) addOptional(id *uint64) {
	if id != nil {
		r.add(*id)
	}
}

func (r refs) project(p *models.Project) {
	r.add(p.OwnerID)
	r.addOptional(p.LastEditedByID)
	r.add(p.MemberIDs...)
}

func (r refs) task(t *models.Task) {
	r.add(t.CreatedByID)
	r.addOptional(t.UpdatedByID)
	r.add(t.AssigneeIDs...)
}

// directory loads every collected id.
func (u *UserResolver) directory(ctx context.Context, ids refs) (dto.Directory, error) {
	if len(ids) == 0 {
		return dto.Directory{}, nil
	}
	list := make([]uint64, 0, len(ids))
	for id := range ids {
		list = append(list, id)
	}
	users, err := u.users.FindByIDs(ctx, list)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve users: %w", err)
	}
	return dto.NewDirectory(users), nil
}

func (u *UserResolver) Project(ctx context.Context, project *models.Project) (*dto.ProjectDTO, error) {
	ids := refs{}
	ids.project(project)
	dir, err := u.directory(ctx, ids)
	if err != nil {
		return nil, err
	}
	view := dto.ToProjectDTO(*project, dir)
	return &view, nil
}

func (u *UserResolver) Projects(ctx context.Context, projects []models.Project) ([]dto.ProjectDTO, error) {
	ids := refs{}
	for i := range projects {
		ids.project(&projects[i])
	}
	dir, err := u.directory(ctx, ids)
	if err != nil {
		return nil, err
	}
	views := make([]dto.ProjectDTO, 0, len(projects))
	for _, p := range projects {
		views = append(views, dto.ToProjectDTO(p, dir))
	}
	return views, nil
}

// Members resolves only the member list of a project.
func (u *UserResolver) Members(ctx context.Context, project *models.Project) (*dto.MembersResponse, error) {
	ids := refs{}
	ids.add(project.MemberIDs...)
	dir, err := u.directory(ctx, ids)
	if err != nil {
		return nil, err
	}
	view := dto.ToMembersResponse(*project, dir)
	return &view, nil
}

func (u *UserResolver) Task(ctx context.Context, task *models.Task) (*dto.TaskDTO, error) {
	ids := refs{}
	ids.task(task)
	dir, err := u.directory(ctx, ids)
	if err != nil {
		return nil, err
	}
	view := dto.ToTaskDTO(*task, dir)
	return &view, nil
}

func (u *UserResolver) Tasks(ctx context.Context, tasks []models.Task) ([]dto.TaskDTO, error) {
	ids := refs{}
	for i := range tasks {
		ids.task(&tasks[i])
	}
	dir, err := u.directory(ctx, ids)
	if err != nil {
		return nil, err
	}
	return dto.ToTaskDTOs(tasks, dir), nil
}
