package errors_test

import (
	"testing"

	apperrors "github.com/jrsteele09/go-ssi-auth-server/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestWrapf(t *testing.T) {
	require.NoError(t, apperrors.Wrapf(nil, "nothing to wrap"))

	err := apperrors.Wrapf(apperrors.ErrStoreUnavailable, "set %s", "tok")
	require.EqualError(t, err, "set tok: store unavailable")
	require.True(t, apperrors.Is(err, apperrors.ErrStoreUnavailable))
	require.False(t, apperrors.Is(err, apperrors.ErrNotFound))
}
