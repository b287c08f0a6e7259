// Package ssi drives SSI sign-up and sign-in. An HTTP request or a live
// connection binds a correlation token to a connection id, an out-of-band
// presentation later resolves the token, and the issued session token is
// pushed to whichever connection is waiting on it.
package ssi

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/jrsteele09/go-ssi-auth-server/correlation"
	"github.com/jrsteele09/go-ssi-auth-server/credential"
	"github.com/jrsteele09/go-ssi-auth-server/internal/config"
	"github.com/jrsteele09/go-ssi-auth-server/roles"
	"github.com/jrsteele09/go-ssi-auth-server/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	defaultCorrelationTTL = 10 * time.Minute
	challengeBytes        = 32
)

// Notifier delivers the session token to a live connection
type Notifier interface {
	CredentialIssued(connectionID, jwt string) bool
}

// TokenIssuer signs session tokens
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

// ConfirmationMailer sends the confirmation link of a new account
type ConfirmationMailer interface {
	SendConfirmation(ctx context.Context, user *users.User) error
}

// Deps holds every collaborator of the Service
type Deps struct {
	Users         users.UserRepo
	Roles         roles.RoleRepo
	Store         correlation.Store
	Notifier      Notifier
	Verifier      credential.Verifier
	Tokens        TokenIssuer
	Settings      config.SettingsProvider
	Confirmations ConfirmationMailer
}

type Service struct {
	deps         Deps
	ttl          time.Duration
	log          zerolog.Logger
	newChallenge func() (string, error)
}

type Option func(*Service)

// WithCorrelationTTL sets how long a bound token waits for resolution
func WithCorrelationTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) {
		s.log = l
	}
}

// WithChallengeGenerator replaces the random sign-in challenge source
func WithChallengeGenerator(gen func() (string, error)) Option {
	return func(s *Service) {
		s.newChallenge = gen
	}
}

func NewService(deps Deps, options ...Option) (*Service, error) {
	if deps.Users == nil {
		return nil, errors.New("[NewService] Users repo is required")
	}
	if deps.Roles == nil {
		return nil, errors.New("[NewService] Roles repo is required")
	}
	if deps.Store == nil {
		return nil, errors.New("[NewService] correlation Store is required")
	}
	if deps.Notifier == nil {
		return nil, errors.New("[NewService] Notifier is required")
	}
	if deps.Verifier == nil {
		return nil, errors.New("[NewService] Verifier is required")
	}
	if deps.Tokens == nil {
		return nil, errors.New("[NewService] Tokens issuer is required")
	}
	if deps.Settings == nil {
		return nil, errors.New("[NewService] Settings provider is required")
	}
	if deps.Confirmations == nil {
		return nil, errors.New("[NewService] Confirmations mailer is required")
	}

	s := &Service{
		deps:         deps,
		ttl:          defaultCorrelationTTL,
		log:          log.Logger,
		newChallenge: randomChallenge,
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// bind stores token -> connectionID. Confirmation tokens and sign-in
// challenges share one key space.
func (s *Service) bind(ctx context.Context, token, connectionID string) error {
	if token == "" {
		return errTokenProvide()
	}
	if connectionID == "" {
		// Nothing is waiting, so there is nothing to correlate
		s.log.Debug().Str("token", redact(token)).Msg("bind without a connection id")
		return nil
	}
	if err := s.deps.Store.Set(ctx, token, connectionID, s.ttl); err != nil {
		return errors.Wrap(err, "failed to bind correlation token")
	}
	s.log.Debug().Str("token", redact(token)).Str("connection_id", connectionID).Msg("correlation token bound")
	return nil
}

// deliver takes the connection waiting on token and pushes jwt to it.
// A store outage or an absent mapping only means no live delivery.
func (s *Service) deliver(ctx context.Context, token, jwt string) bool {
	if token == "" {
		return false
	}
	lookup, err := s.deps.Store.Take(ctx, token)
	if err != nil {
		s.log.Error().Err(err).Str("token", redact(token)).Msg("correlation store unavailable, credential not delivered")
		return false
	}
	if !lookup.Found {
		s.log.Debug().Str("token", redact(token)).Msg("no connection waiting on token")
		return false
	}
	delivered := s.deps.Notifier.CredentialIssued(lookup.ConnectionID, jwt)
	s.log.Info().Str("connection_id", lookup.ConnectionID).Bool("delivered", delivered).Msg("credential issued")
	return delivered
}

// Subscribe binds a token announced over a live connection
func (s *Service) Subscribe(ctx context.Context, token, connectionID string) error {
	return s.bind(ctx, token, connectionID)
}

func randomChallenge() (string, error) {
	b := make([]byte, challengeBytes)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Wrap(err, "failed to generate challenge")
	}
	return hex.EncodeToString(b), nil
}

// redact keeps tokens out of the logs
func redact(token string) string {
	if len(token) <= 6 {
		return "***"
	}
	return token[:6] + "***"
}
