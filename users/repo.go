package users

import (
	"context"
	"fmt"

	apperrors "github.com/jrsteele09/go-ssi-auth-server/internal/errors"
)

var (
	// ErrEmailTaken is returned when email and provider collide with an existing account
	ErrEmailTaken = fmt.Errorf("email %w", apperrors.ErrAlreadyExists)
	// ErrUsernameTaken is returned when the username is already in use
	ErrUsernameTaken = fmt.Errorf("username %w", apperrors.ErrAlreadyExists)
)

// UserRepo is the account directory. Lookups return apperrors.ErrNotFound when nothing matches.
type UserRepo interface {
	// Create stores a new account, assigning an ID when empty.
	// Uniqueness of (email, provider) and username is enforced here.
	Create(ctx context.Context, user *User) error

	GetByID(ctx context.Context, id string) (*User, error)

	// GetByEmail returns the first account with this email, whatever its provider
	GetByEmail(ctx context.Context, email string) (*User, error)

	// FindUnconfirmedByToken matches confirmed = false and confirmation_token = token
	FindUnconfirmedByToken(ctx context.Context, token string) (*User, error)

	// FindConfirmedByDID matches did = did and confirmed = true
	FindConfirmedByDID(ctx context.Context, did string) (*User, error)

	// ConfirmDID sets the DID, marks the account confirmed and clears the token,
	// but only while token is still the outstanding confirmation token.
	// Returns apperrors.ErrConflict when the token was already consumed.
	ConfirmDID(ctx context.Context, id, token, did string) error
}
