package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/kanban-api/internal/dto"
	apierrors "github.com/yukikurage/kanban-api/internal/errors"
	"github.com/yukikurage/kanban-api/internal/models"
	"github.com/yukikurage/kanban-api/internal/policy"
	"github.com/yukikurage/kanban-api/internal/repository"
	"go.uber.org/zap"
)

// ProjectService handles project business logic
type ProjectService struct {
	projects repository.ProjectRepository
	tasks    repository.TaskRepository
	users    repository.UserRepository
	resolver *UserResolver
	log      *zap.Logger
}

// NewProjectService creates a new ProjectService
func NewProjectService(store repository.Store, resolver *UserResolver, log *zap.Logger) *ProjectService {
	return &ProjectService{
		projects: store.Projects,
		tasks:    store.Tasks,
		users:    store.Users,
		resolver: resolver,
		log:      log,
	}
}

// CreateProjectInput represents input for creating a project
type CreateProjectInput struct {
	OwnerID      uint64
	Name         string
	Description  string
	MemberEmails []string
}

// UpdateProjectInput represents input for updating a project
type UpdateProjectInput struct {
	Name        *string
	Description *string
}

// CreateProject creates a project owned by the caller. Every member email
// must belong to a registered user or nothing is stored.
func (s *ProjectService) CreateProject(ctx context.Context, input CreateProjectInput) (*dto.ProjectDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrProjectNameRequired
	}

	memberIDs, err := s.resolveMemberEmails(ctx, input.MemberEmails)
	if err != nil {
		return nil, err
	}

	project := &models.Project{
		Name:        name,
		Description: input.Description,
		OwnerID:     input.OwnerID,
		MemberIDs:   memberIDs,
	}
	if err := s.projects.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return s.resolver.Project(ctx, project)
}

// ListProjects returns projects the user owns or belongs to
func (s *ProjectService) ListProjects(ctx context.Context, userID uint64) ([]dto.ProjectDTO, error) {
	projects, err := s.projects.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return s.resolver.Projects(ctx, projects)
}

// GetProject returns a project visible to the user
func (s *ProjectService) GetProject(ctx context.Context, userID, projectID uint64) (*dto.ProjectDTO, error) {
	project, err := s.findProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !policy.CanReadProject(userID, project) {
		return nil, ErrProjectForbidden
	}
	return s.resolver.Project(ctx, project)
}

// UpdateProject changes name and description. A blank name keeps the
// current one; the description may be cleared.
func (s *ProjectService) UpdateProject(ctx context.Context, userID, projectID uint64, input UpdateProjectInput) (*dto.ProjectDTO, error) {
	project, err := s.findOwnedProject(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if name := strings.TrimSpace(*input.Name); name != "" {
			project.Name = name
		}
	}
	if input.Description != nil {
		project.Description = *input.Description
	}
	project.LastEditedByID = &userID

	if err := s.projects.Update(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	return s.resolver.Project(ctx, project)
}

// DeleteProject removes every task of the project and then the project.
func (s *ProjectService) DeleteProject(ctx context.Context, userID, projectID uint64) error {
	if _, err := s.findOwnedProject(ctx, userID, projectID); err != nil {
		return err
	}

	removed, err := s.tasks.DeleteByProject(ctx, projectID)
	if err != nil {
		return fmt.Errorf("failed to delete project tasks: %w", err)
	}

	if err := s.projects.Delete(ctx, projectID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("failed to delete project: %w", err)
	}

	s.log.Info("project deleted",
		zap.Uint64("project_id", projectID),
		zap.Uint64("user_id", userID),
		zap.Int64("tasks_removed", removed),
	)
	return nil
}

// ShareProject adds the user with the given email as a member
func (s *ProjectService) ShareProject(ctx context.Context, userID, projectID uint64, email string) (*dto.MembersResponse, error) {
	project, err := s.findOwnedProject(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}

	email = NormalizeEmail(email)
	if email == "" {
		return nil, ErrEmailRequired
	}

	member, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if policy.IsMember(member.ID, project) {
		return nil, ErrAlreadyMember
	}

	if err := s.projects.AddMember(ctx, projectID, member.ID); err != nil {
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	return s.members(ctx, projectID)
}

// UnshareProject removes a member. Removing a non-member changes nothing.
func (s *ProjectService) UnshareProject(ctx context.Context, userID, projectID, memberID uint64) (*dto.MembersResponse, error) {
	project, err := s.findOwnedProject(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}

	if !project.HasMember(memberID) {
		return s.resolver.Members(ctx, project)
	}

	if err := s.projects.RemoveMember(ctx, projectID, memberID); err != nil {
		return nil, fmt.Errorf("failed to remove member: %w", err)
	}

	return s.members(ctx, projectID)
}

func (s *ProjectService) members(ctx context.Context, projectID uint64) (*dto.MembersResponse, error) {
	project, err := s.findProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return s.resolver.Members(ctx, project)
}

func (s *ProjectService) findProject(ctx context.Context, projectID uint64) (*models.Project, error) {
	return findProject(ctx, s.projects, projectID)
}

func (s *ProjectService) findOwnedProject(ctx context.Context, userID, projectID uint64) (*models.Project, error) {
	project, err := s.findProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !policy.CanManageProject(userID, project) {
		return nil, ErrOwnerOnly
	}
	return project, nil
}

// resolveMemberEmails maps emails to user ids in the order given. Blank
// and repeated addresses are skipped.
func (s *ProjectService) resolveMemberEmails(ctx context.Context, emails []string) ([]uint64, error) {
	seen := make(map[string]struct{}, len(emails))
	normalized := make([]string, 0, len(emails))
	for _, e := range emails {
		e = NormalizeEmail(e)
		if e == "" {
			continue
		}
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		normalized = append(normalized, e)
	}
	if len(normalized) == 0 {
		return []uint64{}, nil
	}

	users, err := s.users.FindByEmails(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve members: %w", err)
	}
	byEmail := make(map[string]uint64, len(users))
	for _, u := range users {
		byEmail[u.Email] = u.ID
	}

	ids := make([]uint64, 0, len(normalized))
	var missing []string
	for _, e := range normalized {
		id, ok := byEmail[e]
		if !ok {
			missing = append(missing, e)
			continue
		}
		ids = append(ids, id)
	}
	if len(missing) > 0 {
		return nil, apierrors.
			Validation("members not found: %s", strings.Join(missing, ", ")).
			WithDetails(map[string]interface{}{"emails": missing})
	}
	return ids, nil
}

// findProject loads a project and maps a missing record to ErrProjectNotFound.
func findProject(ctx context.Context, projects repository.ProjectRepository, projectID uint64) (*models.Project, error) {
	project, err := projects.FindByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return project, nil
}
