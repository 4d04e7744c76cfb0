package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/thenoetrevino/pasosync/internal/models"
)

const taskColumns = `id, project_id, title, description, state, due_date, created_at, updated_at`

// TaskRepo handles all task-related database operations.
type TaskRepo struct {
	db    *sql.DB
	hooks Hooks
}

// Create inserts t into its project. An empty t.ID gets a generated UUID.
func (r *TaskRepo) Create(ctx context.Context, t models.Task) (*models.Task, error) {
	id, err := resolveID(t.ID)
	if err != nil {
		return nil, err
	}
	t.ID = id
	if t.State == "" {
		t.State = models.DefaultTaskState
	}
	t.CreatedAt = now()
	t.UpdatedAt = t.CreatedAt

	err = withTx(ctx, r.db, func(tx *sql.Tx) error {
		ok, err := exists(ctx, tx, "projects", t.ProjectID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("project %s: %w", t.ProjectID, models.ErrNotFound)
		}

		taken, err := exists(ctx, tx, "tasks", t.ID)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("task %s: %w", t.ID, models.ErrConflict)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO tasks (`+taskColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, t.ProjectID, t.Title, t.Description, string(t.State),
			timePtrToNull(t.DueDate), t.CreatedAt, t.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert task '%s': %w", t.Title, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	created := t
	r.hooks.AfterInsert(models.EntityTask, &created)
	return &t, nil
}

// GetByID retrieves a task by its ID
func (r *TaskRepo) GetByID(ctx context.Context, id string) (*models.Task, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err != nil {
		return nil, notFound(err, "task", id)
	}
	return t, nil
}

// GetByProject retrieves the tasks of one project, or of every project when
// projectID is empty, oldest first
func (r *TaskRepo) GetByProject(ctx context.Context, projectID string) ([]*models.Task, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if projectID == "" {
		rows, err = r.db.QueryContext(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY created_at, id`)
	} else {
		rows, err = r.db.QueryContext(ctx,
			`SELECT `+taskColumns+` FROM tasks WHERE project_id = ? ORDER BY created_at, id`, projectID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	tasks := make([]*models.Task, 0, 20)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task row: %w", err)
		}
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating task rows: %w", err)
	}
	return tasks, nil
}

// Update replaces the mutable fields of t and returns the stored result
func (r *TaskRepo) Update(ctx context.Context, t models.Task) (*models.Task, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET title = ?, description = ?, state = ?, due_date = ?, updated_at = ? WHERE id = ?`,
		t.Title, t.Description, string(t.State), timePtrToNull(t.DueDate), now(), t.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update task %s: %w", t.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, fmt.Errorf("task %s: %w", t.ID, models.ErrNotFound)
	}

	updated, err := r.GetByID(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	r.hooks.AfterUpdate(models.EntityTask, updated)
	return updated, nil
}

// Delete removes a task and returns it as it was before removal
func (r *TaskRepo) Delete(ctx context.Context, id string) (*models.Task, error) {
	var deleted *models.Task
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
		t, err := scanTask(row)
		if err != nil {
			return notFound(err, "task", id)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete task %s: %w", id, err)
		}
		deleted = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.hooks.AfterDelete(models.EntityTask, deleted)
	return deleted, nil
}

func scanTask(s scanner) (*models.Task, error) {
	t := &models.Task{}
	var (
		state string
		due   sql.NullTime
	)
	err := s.Scan(&t.ID, &t.ProjectID, &t.Title, &t.Description, &state, &due, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	t.State = models.TaskState(state)
	t.DueDate = nullTimeToPtr(due)
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return t, nil
}

// IsNotFound reports whether err means the entity does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, models.ErrNotFound)
}
