package repository

import (
	"errors"
	"strings"

	"foodgram/internal/apperr"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// postgres SQLSTATE codes
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeInvalidText         = "22P02"
)

// violations says which domain error each class of store failure becomes
// for one call site. A nil entry leaves that failure untranslated.
type violations struct {
	duplicate  *apperr.Error
	foreignKey *apperr.Error
	check      *apperr.Error
	notFound   *apperr.Error
	// malformed covers a key the column type cannot hold, e.g. a non-uuid
	// user id. Such a row cannot exist.
	malformed *apperr.Error
	// byConstraint overrides duplicate for a specific constraint name.
	byConstraint map[string]*apperr.Error
}

// translate maps store constraint violations onto the domain taxonomy, so
// a conflict caught by the database looks the same as one caught earlier.
func translate(err error, v violations) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			for name, e := range v.byConstraint {
				if strings.Contains(pgErr.ConstraintName, name) {
					return e.WithCause(err)
				}
			}
			if v.duplicate != nil {
				return v.duplicate.WithCause(err)
			}
		case codeForeignKeyViolation:
			if v.foreignKey != nil {
				return v.foreignKey.WithCause(err)
			}
		case codeCheckViolation:
			if v.check != nil {
				return v.check.WithCause(err)
			}
		case codeInvalidText:
			if v.malformed != nil {
				return v.malformed.WithCause(err)
			}
		}
		return err
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound) && v.notFound != nil:
		return v.notFound
	case errors.Is(err, gorm.ErrDuplicatedKey) && v.duplicate != nil:
		return v.duplicate.WithCause(err)
	case errors.Is(err, gorm.ErrForeignKeyViolated) && v.foreignKey != nil:
		return v.foreignKey.WithCause(err)
	case errors.Is(err, gorm.ErrCheckConstraintViolated) && v.check != nil:
		return v.check.WithCause(err)
	}
	return err
}

// IsUniqueViolation reports whether err is a unique constraint failure.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == codeUniqueViolation
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// isMalformed reports whether err is postgres rejecting a key literal for
// its column type.
func isMalformed(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeInvalidText
}
