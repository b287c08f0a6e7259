package ssi

import (
	"context"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/jrsteele09/go-ssi-auth-server/credential"
	apperrors "github.com/jrsteele09/go-ssi-auth-server/internal/errors"
	"github.com/jrsteele09/go-ssi-auth-server/internal/utils"
	"github.com/jrsteele09/go-ssi-auth-server/users"
	"github.com/pkg/errors"
)

var emailPattern = regexp.MustCompile(`^(([^<>()\[\]\\.,;:\s@"]+(\.[^<>()\[\]\\.,;:\s@"]+)*)|(".+"))@((\[[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\])|(([a-zA-Z\-0-9]+\.)+[a-zA-Z]{2,}))$`)

// SignUpRequest carries the profile fields accepted at sign up. Fields such as
// confirmed or confirmationToken have no place here and are dropped when the
// body is decoded. Provider is always overwritten with users.ProviderLocal.
type SignUpRequest struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Provider  string `json:"provider"`
}

// SignUpResult has JWT set only when email confirmation is disabled
type SignUpResult struct {
	JWT  string      `json:"jwt,omitempty"`
	User *users.User `json:"user"`
}

type ResolveSignUpRequest struct {
	ConfirmationToken string
	DID               string
	Proof             []byte
}

// SignUp creates an unconfirmed account with a fresh confirmation token
func (s *Service) SignUp(ctx context.Context, req SignUpRequest) (*SignUpResult, error) {
	settings, err := s.deps.Settings.Advanced(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load advanced settings")
	}

	if !settings.AllowRegister {
		return nil, errRegisterDisabled()
	}

	if req.Email == "" {
		return nil, errEmailProvide()
	}

	role, err := s.deps.Roles.GetByType(ctx, settings.DefaultRole)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, errRoleNotFound()
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve default role")
	}

	if err := validation.Validate(req.Email, validation.Match(emailPattern)); err != nil {
		return nil, errEmailFormat()
	}
	email := strings.ToLower(req.Email)
	provider := users.ProviderLocal

	// Fast path only. The directory's unique constraints are what actually
	// reject a concurrent duplicate.
	existing, err := s.deps.Users.GetByEmail(ctx, email)
	switch {
	case err == nil && existing.Provider == provider:
		return nil, errEmailTaken()
	case err == nil && settings.UniqueEmail:
		return nil, errEmailTaken()
	case err != nil && !errors.Is(err, apperrors.ErrNotFound):
		return nil, errors.Wrap(err, "failed to look up account by email")
	}

	confirmationToken, err := users.NewConfirmationToken()
	if err != nil {
		return nil, err
	}

	user := &users.User{
		Username:          users.DefaultUsername(req.Username, email),
		Email:             email,
		Provider:          provider,
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		Confirmed:         false,
		ConfirmationToken: utils.Ptr(confirmationToken),
		RoleID:            role.ID,
	}
	if req.Password != "" {
		if user.PasswordHash, err = users.HashPassword(req.Password); err != nil {
			return nil, errors.Wrap(err, "failed to hash password")
		}
	}

	if err := s.deps.Users.Create(ctx, user); err != nil {
		switch {
		case errors.Is(err, users.ErrUsernameTaken):
			return nil, errUsernameTaken()
		case errors.Is(err, users.ErrEmailTaken):
			return nil, errEmailTaken()
		}
		return nil, errors.Wrap(err, "failed to create account")
	}
	s.log.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("account created, waiting for SSI confirmation")

	if settings.EmailConfirmation {
		if err := s.deps.Confirmations.SendConfirmation(ctx, user); err != nil {
			s.log.Error().Err(err).Str("user_id", user.ID).Msg("failed to send confirmation email")
			return nil, errDelivery(err)
		}
		return &SignUpResult{User: user}, nil
	}

	jwt, err := s.deps.Tokens.Issue(user.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to issue session token")
	}
	return &SignUpResult{JWT: jwt, User: user}, nil
}

// BindSignUp records which connection waits on a confirmation token. The
// account is not looked up; binding may happen before or after sign up.
func (s *Service) BindSignUp(ctx context.Context, confirmationToken, connectionID string) error {
	return s.bind(ctx, confirmationToken, connectionID)
}

// ResolveSignUp confirms the account holding the token with the presented DID.
// Unknown, stale and rejected tokens all end the same way: nil, with nothing
// changed. Only a directory failure is returned.
func (s *Service) ResolveSignUp(ctx context.Context, req ResolveSignUpRequest) error {
	if req.ConfirmationToken == "" {
		return nil
	}

	decision, err := s.deps.Verifier.Verify(ctx, credential.Presentation{
		DID:       req.DID,
		Challenge: req.ConfirmationToken,
		Proof:     req.Proof,
	})
	if err != nil {
		s.log.Error().Err(err).Msg("credential verifier failed, sign up not confirmed")
		return nil
	}
	if !decision.Accepted {
		s.log.Info().Str("reason", decision.Reason).Msg("sign up presentation rejected")
		return nil
	}

	user, err := s.deps.Users.FindUnconfirmedByToken(ctx, req.ConfirmationToken)
	if errors.Is(err, apperrors.ErrNotFound) {
		s.log.Debug().Str("token", redact(req.ConfirmationToken)).Msg("no unconfirmed account for token")
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "failed to look up account by confirmation token")
	}

	err = s.deps.Users.ConfirmDID(ctx, user.ID, req.ConfirmationToken, decision.DID)
	if errors.Is(err, apperrors.ErrConflict) || errors.Is(err, apperrors.ErrNotFound) {
		// Another resolution consumed the token first
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "failed to confirm account")
	}
	s.log.Info().Str("user_id", user.ID).Str("did", decision.DID).Msg("account confirmed")

	jwt, err := s.deps.Tokens.Issue(user.ID)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("failed to issue session token")
		return nil
	}
	s.deliver(ctx, req.ConfirmationToken, jwt)
	return nil
}
