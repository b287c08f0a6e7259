package ssi

import (
	"context"

	"github.com/jrsteele09/go-ssi-auth-server/credential"
	apperrors "github.com/jrsteele09/go-ssi-auth-server/internal/errors"
	"github.com/jrsteele09/go-ssi-auth-server/users"
	"github.com/pkg/errors"
)

type ResolveSignInRequest struct {
	Challenge string
	DID       string
	Proof     []byte
}

type SignInResult struct {
	JWT  string      `json:"jwt"`
	User *users.User `json:"user"`
}

// BindSignIn records which connection waits on a sign-in challenge. An empty
// challenge is replaced by a freshly generated one, which is returned.
func (s *Service) BindSignIn(ctx context.Context, challenge, connectionID string) (string, error) {
	if challenge == "" {
		var err error
		if challenge, err = s.newChallenge(); err != nil {
			return "", err
		}
	}
	if err := s.bind(ctx, challenge, connectionID); err != nil {
		return "", err
	}
	return challenge, nil
}

// ResolveSignIn signs in the confirmed account bound to the presented DID.
// The session token is returned and also pushed to any connection waiting
// on the challenge.
func (s *Service) ResolveSignIn(ctx context.Context, req ResolveSignInRequest) (*SignInResult, error) {
	decision, err := s.deps.Verifier.Verify(ctx, credential.Presentation{
		DID:       req.DID,
		Challenge: req.Challenge,
		Proof:     req.Proof,
	})
	if err != nil {
		return nil, errors.Wrap(err, "credential verifier failed")
	}
	if !decision.Accepted {
		return nil, errVerificationRejected(decision.Reason)
	}

	user, err := s.deps.Users.FindConfirmedByDID(ctx, decision.DID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, errNotRegistered()
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to look up account by DID")
	}
	if user.Blocked {
		return nil, errBlocked()
	}

	jwt, err := s.deps.Tokens.Issue(user.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to issue session token")
	}
	s.log.Info().Str("user_id", user.ID).Str("did", decision.DID).Msg("signed in with DID")

	s.deliver(ctx, req.Challenge, jwt)
	return &SignInResult{JWT: jwt, User: user}, nil
}
