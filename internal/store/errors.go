package store

import (
	"errors"

	"github.com/thenoetrevino/pasosync/internal/models"
)

func isNotFound(err error) bool {
	return errors.Is(err, models.ErrNotFound)
}
