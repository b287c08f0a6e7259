package fakerolerepo

import (
	"context"
	"testing"

	apperrors "github.com/jrsteele09/go-ssi-auth-server/internal/errors"
	"github.com/jrsteele09/go-ssi-auth-server/roles"
	"github.com/stretchr/testify/require"
)

func TestFakeRoleRepo(t *testing.T) {
	repo := NewFakeRoleRepo()
	role, err := repo.GetByType(context.Background(), roles.TypeAuthenticated)
	require.NoError(t, err)
	require.Equal(t, "Authenticated", role.Name)

	_, err = NewFakeRoleRepo(roles.Role{ID: "9", Type: "editor"}).GetByType(context.Background(), roles.TypeAuthenticated)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}
