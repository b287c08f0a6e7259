// Package token issues and parses the session credential handed to a user
// once sign-up or sign-in resolves.
package token

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	apperrors "github.com/jrsteele09/go-ssi-auth-server/internal/errors"
	"github.com/pkg/errors"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Issuer creates session JWTs carrying the account id
type Issuer struct {
	signer Signer
	expiry time.Duration
}

func NewIssuer(signer Signer, expiry time.Duration) *Issuer {
	return &Issuer{signer: signer, expiry: expiry}
}

// Issue signs {id, iat, exp} for the account
func (i *Issuer) Issue(userID string) (string, error) {
	if userID == "" {
		return "", errors.New("cannot issue a session token without a user id")
	}
	now := NowTimeFunc()
	claims := jwt.MapClaims{
		"id":  userID,
		"iat": now.Unix(),
	}
	if i.expiry > 0 {
		claims["exp"] = now.Add(i.expiry).Unix()
	}
	return i.signer.Sign(claims)
}

// Parse verifies raw and returns the account id it was issued for
func (i *Issuer) Parse(raw string) (string, error) {
	raw = strings.TrimSpace(strings.TrimPrefix(raw, "Bearer "))
	if raw == "" {
		return "", apperrors.ErrInvalidToken
	}

	parsed, err := jwt.ParseWithClaims(raw, jwt.MapClaims{}, i.signer.GetVerificationKey,
		jwt.WithValidMethods([]string{i.signer.GetSigningMethod().Alg()}),
		jwt.WithTimeFunc(NowTimeFunc))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", apperrors.ErrTokenExpired
		}
		return "", apperrors.Wrapf(apperrors.ErrInvalidToken, "%v", err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return "", apperrors.ErrInvalidToken
	}
	id, _ := claims["id"].(string)
	if id == "" {
		return "", apperrors.ErrInvalidToken
	}
	return id, nil
}
