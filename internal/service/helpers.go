package service

import (
	"database/sql"
	"errors"

	"github.com/google/uuid"

	appErrors "github.com/noah-isme/academy-api/pkg/errors"
)

// validID reports whether id has the shape of a stored identifier. Malformed
// ids can never match a row, so callers treat them as not found.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func notFound(message string) error {
	return appErrors.Clone(appErrors.ErrNotFound, message)
}
