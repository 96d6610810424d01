package service

import (
	"context"
	"fmt"
	"log/slog"

	"claimdesk/internal/models"
	"claimdesk/internal/storage"
)

// ProjectService owns project administration.
type ProjectService struct {
	store storage.Store
}

// NewProjectService creates a ProjectService.
func NewProjectService(store storage.Store) *ProjectService {
	return &ProjectService{store: store}
}

// Create registers a new project.
func (s *ProjectService) Create(ctx context.Context, name, code string) (*models.Project, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: project name is required", models.ErrValidation)
	}
	if code == "" {
		return nil, fmt.Errorf("%w: project code is required", models.ErrValidation)
	}

	project := &models.Project{Name: name, Code: code}
	if err := s.store.CreateProject(ctx, project); err != nil {
		return nil, err
	}
	slog.Info("Project created", "project_id", project.ID, "code", project.Code)
	return project, nil
}

// List returns projects, optionally including archived ones.
func (s *ProjectService) List(ctx context.Context, includeArchived bool) ([]*models.Project, error) {
	return s.store.ListProjects(ctx, includeArchived)
}

// SetArchived archives or restores a project. Archived projects keep their
// claim history but accept no new claims.
func (s *ProjectService) SetArchived(ctx context.Context, projectID string, archived bool) error {
	if err := s.store.SetProjectArchived(ctx, projectID, archived); err != nil {
		return err
	}
	slog.Info("Project archived flag changed", "project_id", projectID, "archived", archived)
	return nil
}
