package sqlite

import (
	"context"
	"time"

	"github.com/google/uuid"

	"claimdesk/internal/models"
)

const projectColumns = "id, name, code, archived, created_at"

func scanProject(row interface{ Scan(...any) error }) (*models.Project, error) {
	project := &models.Project{}
	err := row.Scan(&project.ID, &project.Name, &project.Code,
		&project.Archived, &project.CreatedAt)
	if err != nil {
		return nil, err
	}
	return project, nil
}

// CreateProject persists a new project.
func (s *SQLiteStore) CreateProject(ctx context.Context, project *models.Project) error {
	if project.ID == "" {
		project.ID = uuid.New().String()
	}
	if project.CreatedAt == 0 {
		project.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO projects (`+projectColumns+`) VALUES (?, ?, ?, ?, ?)`,
		project.ID, project.Name, project.Code, project.Archived, project.CreatedAt,
	)
	return wrapErr("create project", err)
}

// GetProject retrieves a project by ID.
func (s *SQLiteStore) GetProject(ctx context.Context, id string) (*models.Project, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	project, err := scanProject(row)
	if err != nil {
		return nil, wrapErr("get project", err)
	}
	return project, nil
}

// ListProjects returns projects ordered by name; archived ones only when
// asked for.
func (s *SQLiteStore) ListProjects(ctx context.Context, includeArchived bool) ([]*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects`
	if !includeArchived {
		query += ` WHERE archived = 0`
	}
	query += ` ORDER BY name, id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, wrapErr("list projects", err)
	}
	defer rows.Close()

	var projects []*models.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, wrapErr("scan project", err)
		}
		projects = append(projects, project)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("list projects", err)
	}
	return projects, nil
}

// SetProjectArchived flips a project's archived flag.
func (s *SQLiteStore) SetProjectArchived(ctx context.Context, id string, archived bool) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE projects SET archived = ? WHERE id = ?", archived, id)
	return s.requireRow("set project archived", res, err, id)
}
