package repository

import (
	"errors"
	"fmt"
	"testing"

	"foodgram/internal/apperr"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestTranslate_PgCodes(t *testing.T) {
	v := violations{
		duplicate:  apperr.ErrAlreadyExists,
		foreignKey: apperr.ErrUnknownTag,
		check:      apperr.ErrSelfReferenceForbidden,
	}

	dup := &pgconn.PgError{Code: codeUniqueViolation, ConstraintName: "idx_favorite_pair"}
	assert.ErrorIs(t, translate(dup, v), apperr.ErrAlreadyExists)

	fk := fmt.Errorf("insert: %w", &pgconn.PgError{Code: codeForeignKeyViolation})
	assert.ErrorIs(t, translate(fk, v), apperr.ErrUnknownTag)

	chk := &pgconn.PgError{Code: codeCheckViolation, ConstraintName: "chk_subscription_not_self"}
	assert.ErrorIs(t, translate(chk, v), apperr.ErrSelfReferenceForbidden)
}

func TestTranslate_MalformedKey(t *testing.T) {
	err := &pgconn.PgError{Code: codeInvalidText, Message: `invalid input syntax for type uuid: "abc"`}

	assert.ErrorIs(t, translate(err, userViolations), apperr.ErrUserNotFound)
	assert.Equal(t, error(err), translate(err, violations{}))
	assert.True(t, isMalformed(fmt.Errorf("find: %w", err)))
}

func TestTranslate_ByConstraint(t *testing.T) {
	err := &pgconn.PgError{Code: codeUniqueViolation, ConstraintName: "idx_users_email"}

	got := translate(err, userViolations)
	assert.ErrorIs(t, got, apperr.ErrEmailTaken)
	assert.NotErrorIs(t, got, apperr.ErrUsernameTaken)

	err = &pgconn.PgError{Code: codeUniqueViolation, ConstraintName: "idx_users_username"}
	assert.ErrorIs(t, translate(err, userViolations), apperr.ErrUsernameTaken)
}

func TestTranslate_GormSentinels(t *testing.T) {
	v := violations{notFound: apperr.ErrRecipeNotFound, duplicate: apperr.ErrDuplicateTag}

	assert.ErrorIs(t, translate(gorm.ErrRecordNotFound, v), apperr.ErrRecipeNotFound)
	assert.ErrorIs(t, translate(gorm.ErrDuplicatedKey, v), apperr.ErrDuplicateTag)
}

func TestTranslate_Passthrough(t *testing.T) {
	raw := errors.New("connection refused")

	assert.Nil(t, translate(nil, violations{}))
	assert.Equal(t, raw, translate(raw, violations{duplicate: apperr.ErrAlreadyExists}))

	unmapped := &pgconn.PgError{Code: codeCheckViolation}
	assert.Equal(t, error(unmapped), translate(unmapped, violations{}))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(fmt.Errorf("x: %w", &pgconn.PgError{Code: codeUniqueViolation})))
	assert.True(t, IsUniqueViolation(gorm.ErrDuplicatedKey))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: codeForeignKeyViolation}))
	assert.False(t, IsUniqueViolation(errors.New("boom")))
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\%\_off\\`, escapeLike(`50%_off\`))
}
