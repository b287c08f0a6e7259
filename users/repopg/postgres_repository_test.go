package repopg

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	apperrors "github.com/jrsteele09/go-ssi-auth-server/internal/errors"
	"github.com/jrsteele09/go-ssi-auth-server/internal/utils"
	"github.com/jrsteele09/go-ssi-auth-server/users"
	"github.com/stretchr/testify/require"
)

var columns = []string{"id", "username", "email", "provider", "password_hash", "first_name", "last_name",
	"did", "confirmed", "confirmation_token", "blocked", "role_id", "created_at", "updated_at"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

func TestCreate(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`(?s)^INSERT\s+INTO\s+users`).
		WithArgs(sqlmock.AnyArg(), "alice", "alice@example.com", users.ProviderLocal, "", "", "",
			sqlmock.AnyArg(), false, "tok", false, "1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	u := &users.User{
		Username:          "alice",
		Email:             "alice@example.com",
		Provider:          users.ProviderLocal,
		ConfirmationToken: utils.Ptr("tok"),
		RoleID:            "1",
	}
	require.NoError(t, repo.Create(context.Background(), u))
	require.NotEmpty(t, u.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUniqueViolations(t *testing.T) {
	tests := []struct {
		name       string
		constraint string
		want       error
	}{
		{name: "username", constraint: "users_username_key", want: users.ErrUsernameTaken},
		{name: "email", constraint: "users_email_provider_key", want: users.ErrEmailTaken},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo, mock := newRepoWithMock(t)
			mock.ExpectExec(`(?s)^INSERT\s+INTO\s+users`).
				WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: tc.constraint})

			err := repo.Create(context.Background(), &users.User{Username: "a", Email: "a@b.co"})
			require.ErrorIs(t, err, tc.want)
			require.ErrorIs(t, err, apperrors.ErrAlreadyExists)
		})
	}
}

func TestFindUnconfirmedByToken(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	rows := sqlmock.NewRows(columns).
		AddRow("u-1", "alice", "alice@example.com", "local", "", "", "", nil, false, "tok", false, "1", now, now)
	mock.ExpectQuery(`(?s)FROM\s+users\s+WHERE\s+confirmed\s*=\s*FALSE\s+AND\s+confirmation_token\s*=\s*\$1`).
		WithArgs("tok").
		WillReturnRows(rows)

	u, err := repo.FindUnconfirmedByToken(context.Background(), "tok")
	require.NoError(t, err)
	require.Equal(t, "u-1", u.ID)
	require.Nil(t, u.DID)
	require.Equal(t, "tok", utils.Value(u.ConfirmationToken))
	require.Equal(t, "1", u.RoleID)
}

func TestFindConfirmedByDID(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	rows := sqlmock.NewRows(columns).
		AddRow("u-1", "alice", "alice@example.com", "local", "", "", "", "did:ex:1", true, nil, false, "1", now, now)
	mock.ExpectQuery(`(?s)FROM\s+users\s+WHERE\s+confirmed\s*=\s*TRUE\s+AND\s+did\s*=\s*\$1`).
		WithArgs("did:ex:1").
		WillReturnRows(rows)

	u, err := repo.FindConfirmedByDID(context.Background(), "did:ex:1")
	require.NoError(t, err)
	require.True(t, u.CanSignIn())
	require.Nil(t, u.ConfirmationToken)
}

func TestLookupsNotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)FROM\s+users\s+WHERE\s+email\s*=\s*\$1`).
		WithArgs("ghost@example.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "ghost@example.com")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestLookupDBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)FROM\s+users\s+WHERE\s+id\s*=\s*\$1`).
		WithArgs("u-1").
		WillReturnError(errors.New("db down"))

	_, err := repo.GetByID(context.Background(), "u-1")
	require.ErrorContains(t, err, "db error: db down")
	require.False(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestConfirmDID(t *testing.T) {
	q := `(?s)^UPDATE\s+users\s+SET\s+did\s*=\s*\$1,\s*confirmed\s*=\s*TRUE.*WHERE\s+id\s*=\s*\$2\s+AND\s+confirmed\s*=\s*FALSE\s+AND\s+confirmation_token\s*=\s*\$3`

	t.Run("applied", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectExec(q).WithArgs("did:ex:1", "u-1", "tok").WillReturnResult(sqlmock.NewResult(0, 1))
		require.NoError(t, repo.ConfirmDID(context.Background(), "u-1", "tok", "did:ex:1"))
	})

	t.Run("already consumed", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectExec(q).WithArgs("did:ex:1", "u-1", "tok").WillReturnResult(sqlmock.NewResult(0, 0))
		require.ErrorIs(t, repo.ConfirmDID(context.Background(), "u-1", "tok", "did:ex:1"), apperrors.ErrConflict)
	})
}
