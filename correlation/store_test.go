package correlation

import (
	"errors"
	"testing"
	"time"

	apperrors "github.com/jrsteele09/go-ssi-auth-server/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestClampTTL(t *testing.T) {
	maxTTL := 15 * time.Minute
	require.Equal(t, time.Minute, ClampTTL(time.Minute, maxTTL))
	require.Equal(t, maxTTL, ClampTTL(time.Hour, maxTTL))
	require.Equal(t, maxTTL, ClampTTL(0, maxTTL))
	require.Equal(t, maxTTL, ClampTTL(-time.Second, maxTTL))
	require.Equal(t, time.Hour, ClampTTL(time.Hour, 0))
}

func TestLookupValues(t *testing.T) {
	require.Equal(t, Lookup{ConnectionID: "c1", Found: true}, Hit("c1"))
	require.False(t, Absent().Found)
}

func TestErrStoreUnavailableIsShared(t *testing.T) {
	require.True(t, errors.Is(ErrStoreUnavailable, apperrors.ErrStoreUnavailable))
}
