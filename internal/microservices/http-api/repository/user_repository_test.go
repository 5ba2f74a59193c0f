package repository

import (
	"context"
	"errors"
	"testing"

	"foodgram/internal/apperr"
	"foodgram/internal/microservices/http-api/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserCreate_DuplicateEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectExec(`INSERT INTO "users"`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "idx_users_email"})

	err := repo.Create(context.Background(), &models.User{Username: "alice", Email: "a@x.io"})
	assert.ErrorIs(t, err, apperr.ErrEmailTaken)
}

func TestUserFindByUsername_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE username = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username"}))

	user, err := repo.FindByUsername(context.Background(), "ghost")
	assert.Nil(t, user)
	assert.ErrorIs(t, err, apperr.ErrUserNotFound)
}

func TestUserFindByIDs_Empty(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	users, err := repo.FindByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserUpdateRole(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		execErr  error
		wantErr  error
	}{
		{name: "promoted", affected: 1},
		{name: "unknown user", affected: 0, wantErr: apperr.ErrUserNotFound},
		{name: "db failure", execErr: errors.New("connection reset")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			repo := NewUserRepository(db)

			exp := mock.ExpectExec(`UPDATE "users" SET "role"=\$1`)
			if tt.execErr != nil {
				exp.WillReturnError(tt.execErr)
			} else {
				exp.WillReturnResult(sqlmock.NewResult(0, tt.affected))
			}

			err := repo.UpdateRole(context.Background(), "alice", models.RoleAdmin)
			switch {
			case tt.execErr != nil:
				assert.ErrorContains(t, err, "update role")
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func TestUserMalformedIDIsNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user, err := repo.FindByID(ctx, "abc")
	assert.Nil(t, user)
	assert.ErrorIs(t, err, apperr.ErrUserNotFound)

	assert.ErrorIs(t, repo.UpdateAvatar(ctx, "abc", nil), apperr.ErrUserNotFound)
	assert.ErrorIs(t, repo.UpdatePassword(ctx, "abc", "hash"), apperr.ErrUserNotFound)

	users, err := repo.FindByIDs(ctx, []string{"abc", "1"})
	require.NoError(t, err)
	assert.Empty(t, users)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserFindByIDs_SkipsMalformed(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)
	id := "5f0c6c3e-8f7a-4a59-9d43-2f1c6f3b9a10"

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE id IN \(\$1\)`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username"}).AddRow(id, "alice"))

	users, err := repo.FindByIDs(context.Background(), []string{"abc", id})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "alice", users[0].Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}
