package service

import (
	"errors"

	"soundwars/internal/apperr"
	"soundwars/internal/database"

	"gorm.io/gorm"
)

// notFound turns a missing row into a NotFound error and passes anything else through.
func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("%s not found", what)
	}
	return err
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// conflictOr maps a unique index violation to e, leaving other errors untouched.
func conflictOr(err error, e *apperr.Error) error {
	if database.IsUniqueViolation(err) {
		e.Err = err
		return e
	}
	return err
}
