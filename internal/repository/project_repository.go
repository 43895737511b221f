package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/yukikurage/kanban-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

// Create creates the project and its member rows in a transaction
func (r *GormProjectRepository) Create(ctx context.Context, project *models.Project) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(project).Error; err != nil {
			return fmt.Errorf("failed to create project: %w", err)
		}
		if len(project.MemberIDs) == 0 {
			return nil
		}

		now := time.Now()
		members := make([]models.ProjectMember, len(project.MemberIDs))
		for i, userID := range project.MemberIDs {
			members[i] = models.ProjectMember{
				ProjectID: project.ID,
				UserID:    userID,
				JoinedAt:  now,
			}
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&members).Error; err != nil {
			return fmt.Errorf("failed to add project members: %w", err)
		}
		return nil
	})
}

// FindByID finds a project by ID
func (r *GormProjectRepository) FindByID(ctx context.Context, id uint64) (*models.Project, error) {
	db := r.db.WithContext(ctx)

	var project models.Project
	if err := db.First(&project, id).Error; err != nil {
		return nil, translateGormError(err)
	}

	memberIDs, err := r.memberIDs(db, []uint64{project.ID})
	if err != nil {
		return nil, err
	}
	project.MemberIDs = memberIDs[project.ID]

	return &project, nil
}

// ListForUser lists projects the user owns or belongs to
func (r *GormProjectRepository) ListForUser(ctx context.Context, userID uint64) ([]models.Project, error) {
	db := r.db.WithContext(ctx)

	memberOf := db.Model(&models.ProjectMember{}).
		Select("project_id").
		Where("user_id = ?", userID)

	var projects []models.Project
	if err := db.
		Where("owner_id = ?", userID).
		Or("id IN (?)", memberOf).
		Order("updated_at DESC").
		Order("id DESC").
		Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	ids := make([]uint64, len(projects))
	for i := range projects {
		ids[i] = projects[i].ID
	}
	memberIDs, err := r.memberIDs(db, ids)
	if err != nil {
		return nil, err
	}
	for i := range projects {
		projects[i].MemberIDs = memberIDs[projects[i].ID]
	}

	return projects, nil
}

// Update updates the editable project fields
func (r *GormProjectRepository) Update(ctx context.Context, project *models.Project) error {
	err := r.db.WithContext(ctx).
		Model(project).
		Select("name", "description", "last_edited_by_id", "updated_at").
		Updates(project).Error
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	return nil
}

// AddMember adds a member row and touches the project
func (r *GormProjectRepository) AddMember(ctx context.Context, projectID, userID uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		member := models.ProjectMember{
			ProjectID: projectID,
			UserID:    userID,
			JoinedAt:  time.Now(),
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&member).Error; err != nil {
			return fmt.Errorf("failed to add project member: %w", err)
		}
		return touchProject(tx, projectID)
	})
}

// RemoveMember removes a member row and touches the project
func (r *GormProjectRepository) RemoveMember(ctx context.Context, projectID, userID uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ? AND user_id = ?", projectID, userID).
			Delete(&models.ProjectMember{}).Error; err != nil {
			return fmt.Errorf("failed to remove project member: %w", err)
		}
		return touchProject(tx, projectID)
	})
}

// Delete deletes a project and its member rows
func (r *GormProjectRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", id).Delete(&models.ProjectMember{}).Error; err != nil {
			return fmt.Errorf("failed to delete project members: %w", err)
		}

		res := tx.Delete(&models.Project{}, id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete project: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// memberIDs loads member ids for the given projects keyed by project id
func (r *GormProjectRepository) memberIDs(db *gorm.DB, projectIDs []uint64) (map[uint64][]uint64, error) {
	result := make(map[uint64][]uint64, len(projectIDs))
	if len(projectIDs) == 0 {
		return result, nil
	}

	var rows []models.ProjectMember
	if err := db.
		Where("project_id IN ?", projectIDs).
		Order("joined_at ASC").
		Order("user_id ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load project members: %w", err)
	}
	for _, row := range rows {
		result[row.ProjectID] = append(result[row.ProjectID], row.UserID)
	}
	return result, nil
}

func touchProject(tx *gorm.DB, projectID uint64) error {
	if err := tx.Model(&models.Project{}).
		Where("id = ?", projectID).
		Update("updated_at", time.Now()).Error; err != nil {
		return fmt.Errorf("failed to touch project: %w", err)
	}
	return nil
}
