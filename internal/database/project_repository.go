package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/thenoetrevino/pasosync/internal/models"
)

const projectColumns = `id, name, description, status, created_at, updated_at`

// ProjectRepo handles all project-related database operations.
type ProjectRepo struct {
	db    *sql.DB
	hooks Hooks
}

// Create inserts p. An empty p.ID gets a generated UUID; a proposed id must
// parse as a UUID and must not exist yet.
func (r *ProjectRepo) Create(ctx context.Context, p models.Project) (*models.Project, error) {
	id, err := resolveID(p.ID)
	if err != nil {
		return nil, err
	}
	p.ID = id
	if p.Status == "" {
		p.Status = models.DefaultProjectStatus
	}
	p.CreatedAt = now()
	p.UpdatedAt = p.CreatedAt

	err = withTx(ctx, r.db, func(tx *sql.Tx) error {
		taken, err := exists(ctx, tx, "projects", p.ID)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("project %s: %w", p.ID, models.ErrConflict)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO projects (`+projectColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
			p.ID, p.Name, p.Description, string(p.Status), p.CreatedAt, p.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert project '%s': %w", p.Name, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	created := p
	r.hooks.AfterInsert(models.EntityProject, &created)
	return &p, nil
}

// GetByID retrieves a project by its ID
func (r *ProjectRepo) GetByID(ctx context.Context, id string) (*models.Project, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	p, err := scanProject(row)
	if err != nil {
		return nil, notFound(err, "project", id)
	}
	return p, nil
}

// GetAll retrieves all projects ordered by creation time
func (r *ProjectRepo) GetAll(ctx context.Context) ([]*models.Project, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query all projects: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	projects := make([]*models.Project, 0, 10)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project row: %w", err)
		}
		projects = append(projects, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating project rows: %w", err)
	}
	return projects, nil
}

// Update replaces the mutable fields of p and returns the stored result
func (r *ProjectRepo) Update(ctx context.Context, p models.Project) (*models.Project, error) {
	updatedAt := now()
	res, err := r.db.ExecContext(ctx,
		`UPDATE projects SET name = ?, description = ?, status = ?, updated_at = ? WHERE id = ?`,
		p.Name, p.Description, string(p.Status), updatedAt, p.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update project %s: %w", p.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, fmt.Errorf("project %s: %w", p.ID, models.ErrNotFound)
	}

	updated, err := r.GetByID(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	r.hooks.AfterUpdate(models.EntityProject, updated)
	return updated, nil
}

// Delete removes a project and its tasks (cascade) and returns the project
// as it was before removal
func (r *ProjectRepo) Delete(ctx context.Context, id string) (*models.Project, error) {
	var deleted *models.Project
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
		p, err := scanProject(row)
		if err != nil {
			return notFound(err, "project", id)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete project %s: %w", id, err)
		}
		deleted = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.hooks.AfterDelete(models.EntityProject, deleted)
	return deleted, nil
}

// TaskCount returns the number of tasks in a project
func (r *ProjectRepo) TaskCount(ctx context.Context, projectID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks WHERE project_id = ?`, projectID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get task count for project %s: %w", projectID, err)
	}
	return count, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(s scanner) (*models.Project, error) {
	p := &models.Project{}
	var status string
	if err := s.Scan(&p.ID, &p.Name, &p.Description, &status, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Status = models.ProjectStatus(status)
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return p, nil
}
