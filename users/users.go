package users

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// ProviderLocal is the provider of accounts registered through this server
const ProviderLocal = "local"

// confirmationTokenBytes gives a 40 character hex token
const confirmationTokenBytes = 20

// User is an account that can be confirmed with a DID and then used to sign in.
// PasswordHash and ConfirmationToken are never serialized.
type User struct {
	ID                string    `json:"id,omitempty"`         // Unique identifier for the user
	Username          string    `json:"username,omitempty"`   // Unique username
	Email             string    `json:"email,omitempty"`      // Lower-cased email, unique per provider
	Provider          string    `json:"provider,omitempty"`   // Where the account was registered
	PasswordHash      string    `json:"-"`                    // Optional, set when a password was supplied at sign up
	FirstName         string    `json:"first_name,omitempty"` // First name of the user
	LastName          string    `json:"last_name,omitempty"`  // Last name of the user
	DID               *string   `json:"did"`                  // Decentralized identifier, nil until confirmed
	Confirmed         bool      `json:"confirmed"`            // Confirmed, has the user proven control of the DID
	ConfirmationToken *string   `json:"-"`                    // Outstanding confirmation token, nil once consumed
	Blocked           bool      `json:"blocked"`              // Blocked, has the user been blocked from signing in
	RoleID            string    `json:"role,omitempty"`       // Role reference
	CreatedAt         time.Time `json:"created_at,omitempty"`
	UpdatedAt         time.Time `json:"updated_at,omitempty"`
}

// CanSignIn reports whether the account is confirmed and bound to a DID
func (u *User) CanSignIn() bool {
	return u.Confirmed && u.DID != nil && *u.DID != "" && !u.Blocked
}

// Clone returns a deep copy so repositories never share pointers with callers
func (u *User) Clone() *User {
	c := *u
	if u.DID != nil {
		did := *u.DID
		c.DID = &did
	}
	if u.ConfirmationToken != nil {
		tok := *u.ConfirmationToken
		c.ConfirmationToken = &tok
	}
	return &c
}

// NewConfirmationToken returns a random hex token used to confirm an account
func NewConfirmationToken() (string, error) {
	b := make([]byte, confirmationTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// DefaultUsername returns username when set, otherwise the lower-cased email.
// Emails are unique per provider, so the default never collides for local accounts.
func DefaultUsername(username, email string) string {
	if username != "" {
		return username
	}
	return strings.ToLower(email)
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
