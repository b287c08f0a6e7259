package fakeuserrepo

import (
	"context"
	"testing"

	apperrors "github.com/jrsteele09/go-ssi-auth-server/internal/errors"
	"github.com/jrsteele09/go-ssi-auth-server/internal/utils"
	"github.com/jrsteele09/go-ssi-auth-server/users"
	"github.com/stretchr/testify/require"
)

func newUser(email, username, token string) *users.User {
	return &users.User{
		Email:             email,
		Username:          username,
		Provider:          users.ProviderLocal,
		ConfirmationToken: utils.Ptr(token),
	}
}

func TestCreateEnforcesUniqueness(t *testing.T) {
	ctx := context.Background()
	repo := NewFakeUserRepo()

	require.NoError(t, repo.Create(ctx, newUser("a@b.co", "a", "t1")))

	err := repo.Create(ctx, newUser("a@b.co", "other", "t2"))
	require.ErrorIs(t, err, users.ErrEmailTaken)
	require.ErrorIs(t, err, apperrors.ErrAlreadyExists)

	err = repo.Create(ctx, newUser("c@b.co", "a", "t3"))
	require.ErrorIs(t, err, users.ErrUsernameTaken)

	u := newUser("a@b.co", "a-google", "t4")
	u.Provider = "google"
	require.NoError(t, repo.Create(ctx, u))
}

func TestConfirmDIDIsConditional(t *testing.T) {
	ctx := context.Background()
	repo := NewFakeUserRepo()

	u := newUser("a@b.co", "a", "tok")
	require.NoError(t, repo.Create(ctx, u))

	found, err := repo.FindUnconfirmedByToken(ctx, "tok")
	require.NoError(t, err)
	require.Equal(t, u.ID, found.ID)

	require.NoError(t, repo.ConfirmDID(ctx, u.ID, "tok", "did:example:1"))
	require.ErrorIs(t, repo.ConfirmDID(ctx, u.ID, "tok", "did:example:2"), apperrors.ErrConflict)

	_, err = repo.FindUnconfirmedByToken(ctx, "tok")
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	confirmed, err := repo.FindConfirmedByDID(ctx, "did:example:1")
	require.NoError(t, err)
	require.True(t, confirmed.Confirmed)
	require.Nil(t, confirmed.ConfirmationToken)
	require.True(t, confirmed.CanSignIn())
}

func TestReturnedUsersAreCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewFakeUserRepo()

	u := newUser("a@b.co", "a", "tok")
	require.NoError(t, repo.Create(ctx, u))

	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	got.Confirmed = true
	*got.ConfirmationToken = "changed"

	again, err := repo.GetByEmail(ctx, "a@b.co")
	require.NoError(t, err)
	require.False(t, again.Confirmed)
	require.Equal(t, "tok", *again.ConfirmationToken)
}

func TestGetByIDNotFound(t *testing.T) {
	_, err := NewFakeUserRepo().GetByID(context.Background(), "missing")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}
