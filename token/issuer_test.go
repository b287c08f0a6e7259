package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	apperrors "github.com/jrsteele09/go-ssi-auth-server/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	issuer := NewIssuer(NewHMACSigner("secret"), time.Hour)

	raw, err := issuer.Issue("user-1")
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	id, err := issuer.Parse(raw)
	require.NoError(t, err)
	require.Equal(t, "user-1", id)

	id, err = issuer.Parse("Bearer " + raw)
	require.NoError(t, err)
	require.Equal(t, "user-1", id)
}

func TestParseRejectsOtherSecret(t *testing.T) {
	raw, err := NewIssuer(NewHMACSigner("one"), time.Hour).Issue("user-1")
	require.NoError(t, err)

	_, err = NewIssuer(NewHMACSigner("two"), time.Hour).Parse(raw)
	require.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestParseExpired(t *testing.T) {
	orig := NowTimeFunc
	defer func() { NowTimeFunc = orig }()

	issuer := NewIssuer(NewHMACSigner("secret"), time.Minute)
	NowTimeFunc = func() time.Time { return time.Now().Add(-time.Hour) }
	raw, err := issuer.Issue("user-1")
	require.NoError(t, err)

	NowTimeFunc = orig
	_, err = issuer.Parse(raw)
	require.ErrorIs(t, err, apperrors.ErrTokenExpired)
}

func TestParseRejectsMissingID(t *testing.T) {
	signer := NewHMACSigner("secret")
	raw, err := signer.Sign(jwt.MapClaims{"sub": "x"})
	require.NoError(t, err)

	_, err = NewIssuer(signer, time.Hour).Parse(raw)
	require.ErrorIs(t, err, apperrors.ErrInvalidToken)

	_, err = NewIssuer(signer, time.Hour).Parse("")
	require.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestIssueRequiresUser(t *testing.T) {
	_, err := NewIssuer(NewHMACSigner("secret"), time.Hour).Issue("")
	require.Error(t, err)
}
