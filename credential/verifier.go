// Package credential decides whether a presented proof is acceptable for a
// challenge. Cryptographic verification of verifiable presentations happens
// behind the Verifier interface.
package credential

import (
	"context"
	"encoding/json"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation"
)

// didPattern follows the W3C DID syntax: did:<method>:<method-specific-id>
var didPattern = regexp.MustCompile(`^did:[a-z0-9]+:(?:[A-Za-z0-9._-]|%[0-9A-Fa-f]{2})*(?::(?:[A-Za-z0-9._-]|%[0-9A-Fa-f]{2})*)*[A-Za-z0-9._-]$`)

// Presentation is what the out-of-band actor submits
type Presentation struct {
	DID       string          // subject claimed by the holder
	Challenge string          // confirmation token or sign-in challenge
	Proof     json.RawMessage // verifiable presentation, opaque here
}

// Decision is the verifier outcome. DID is the subject to act on when accepted.
type Decision struct {
	Accepted bool
	DID      string
	Reason   string
}

func Accept(did string) Decision {
	return Decision{Accepted: true, DID: did}
}

func Reject(reason string) Decision {
	return Decision{Reason: reason}
}

// Verifier returns an error only when it could not reach a decision
type Verifier interface {
	Verify(ctx context.Context, p Presentation) (Decision, error)
}

// VerifierFunc adapts a function to Verifier
type VerifierFunc func(ctx context.Context, p Presentation) (Decision, error)

func (f VerifierFunc) Verify(ctx context.Context, p Presentation) (Decision, error) {
	return f(ctx, p)
}

// SyntaxVerifier accepts any presentation whose DID is well formed and which
// names a challenge. It does not check signatures.
type SyntaxVerifier struct{}

func NewSyntaxVerifier() SyntaxVerifier {
	return SyntaxVerifier{}
}

func (SyntaxVerifier) Verify(_ context.Context, p Presentation) (Decision, error) {
	err := validation.ValidateStruct(&p,
		validation.Field(&p.DID, validation.Required, validation.Match(didPattern).Error("must be a valid DID")),
		validation.Field(&p.Challenge, validation.Required),
	)
	if err != nil {
		return Reject(err.Error()), nil
	}
	return Accept(p.DID), nil
}

// IsDID reports whether s is a syntactically valid DID
func IsDID(s string) bool {
	return didPattern.MatchString(s)
}
