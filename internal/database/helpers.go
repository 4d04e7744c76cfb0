package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/thenoetrevino/pasosync/internal/models"
)

// withTx executes a function within a database transaction.
// It automatically handles begin, rollback on error, and commit on success.
func withTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			slog.Error("failed to rollback transaction", "error", err)
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// resolveID returns proposed if it is a valid UUID, or a fresh one when empty
func resolveID(proposed string) (string, error) {
	if proposed == "" {
		return uuid.NewString(), nil
	}
	id, err := uuid.Parse(proposed)
	if err != nil {
		return "", fmt.Errorf("invalid id %q: %w", proposed, err)
	}
	return id.String(), nil
}

// exists reports whether a row with id is present in table
func exists(ctx context.Context, tx *sql.Tx, table, id string) (bool, error) {
	var n int
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE id = ?", table)
	if err := tx.QueryRowContext(ctx, query, id).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to check %s %s: %w", table, id, err)
	}
	return n > 0, nil
}

// notFound maps sql.ErrNoRows onto models.ErrNotFound
func notFound(err error, what, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", what, id, models.ErrNotFound)
	}
	return fmt.Errorf("failed to get %s %s: %w", what, id, err)
}

// now returns the timestamp written to created_at/updated_at
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// nullTimeToPtr converts sql.NullTime to *time.Time.
// Returns nil if the value is not valid.
func nullTimeToPtr(nt sql.NullTime) *time.Time {
	if nt.Valid {
		t := nt.Time.UTC()
		return &t
	}
	return nil
}

// timePtrToNull converts *time.Time to sql.NullTime
func timePtrToNull(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
