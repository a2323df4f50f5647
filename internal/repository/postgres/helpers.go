package postgres

import (
	"database/sql"

	ierr "github.com/recibohq/recibo/internal/errors"
)

// requireRowAffected turns a zero-row UPDATE into a not found error so
// writes against deleted or missing rows fail loudly.
func requireRowAffected(result sql.Result, entity, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return ierr.WithError(err).
			WithHint("failed to read affected rows").
			Mark(ierr.ErrDatabase)
	}
	if rows == 0 {
		return ierr.NewError(entity + " not found").
			WithHintf("no %s with id %s", entity, id).
			Mark(ierr.ErrNotFound)
	}
	return nil
}
