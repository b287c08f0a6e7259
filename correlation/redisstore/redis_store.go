// Package redisstore is the Redis-backed correlation.Store shared by all
// server instances.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jrsteele09/go-ssi-auth-server/correlation"
	"github.com/jrsteele09/go-ssi-auth-server/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var _ correlation.Store = (*Store)(nil)

const (
	defaultOpTimeout = 2 * time.Second
	defaultMaxTTL    = 15 * time.Minute
)

type Options struct {
	KeyPrefix string
	OpTimeout time.Duration // context deadline of every call; see New
	MaxTTL    time.Duration
	Logger    *zerolog.Logger
}

type Store struct {
	client    redis.UniversalClient
	keyPrefix string
	opTimeout time.Duration
	maxTTL    time.Duration
	log       zerolog.Logger
}

// New wraps an existing client. Zero options fall back to package defaults.
// OpTimeout only bounds socket I/O when the client was created with
// ContextTimeoutEnabled; otherwise go-redis falls back to its own read and
// write timeouts.
func New(client redis.UniversalClient, opts Options) *Store {
	s := &Store{
		client:    client,
		keyPrefix: opts.KeyPrefix,
		opTimeout: opts.OpTimeout,
		maxTTL:    opts.MaxTTL,
		log:       log.Logger,
	}
	if s.opTimeout <= 0 {
		s.opTimeout = defaultOpTimeout
	}
	if s.maxTTL <= 0 {
		s.maxTTL = defaultMaxTTL
	}
	if opts.Logger != nil {
		s.log = *opts.Logger
	}
	return s
}

// NewFromConfig dials Redis from REDIS_* settings
func NewFromConfig(cfg config.StoreConfig) *Store {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.GetRedisAddr(),
		Password:     cfg.GetRedisPassword(),
		DB:           cfg.GetRedisDB(),
		DialTimeout:  cfg.GetRedisOpTimeout(),
		ReadTimeout:  cfg.GetRedisOpTimeout(),
		WriteTimeout: cfg.GetRedisOpTimeout(),

		ContextTimeoutEnabled: true,
	})
	return New(client, Options{
		KeyPrefix: cfg.GetRedisKeyPrefix(),
		OpTimeout: cfg.GetRedisOpTimeout(),
		MaxTTL:    cfg.GetCorrelationMaxTTL(),
	})
}

func (s *Store) key(token string) string {
	return s.keyPrefix + token
}

func (s *Store) Set(ctx context.Context, token, connectionID string, ttl time.Duration) error {
	if token == "" || connectionID == "" {
		return correlation.ErrEmptyToken
	}
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	if err := s.client.Set(ctx, s.key(token), connectionID, correlation.ClampTTL(ttl, s.maxTTL)).Err(); err != nil {
		return unavailable("set", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, token string) (correlation.Lookup, error) {
	if token == "" {
		return correlation.Absent(), nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	return s.lookup("get", s.client.Get(ctx, s.key(token)))
}

// Take uses GETDEL so concurrent resolutions see the mapping at most once
func (s *Store) Take(ctx context.Context, token string) (correlation.Lookup, error) {
	if token == "" {
		return correlation.Absent(), nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	return s.lookup("getdel", s.client.GetDel(ctx, s.key(token)))
}

func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	if err := s.client.Ping(ctx).Err(); err != nil {
		return unavailable("ping", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) lookup(op string, cmd *redis.StringCmd) (correlation.Lookup, error) {
	val, err := cmd.Result()
	switch {
	case errors.Is(err, redis.Nil):
		return correlation.Absent(), nil
	case err != nil:
		s.log.Warn().Err(err).Str("op", op).Msg("correlation store call failed")
		return correlation.Absent(), unavailable(op, err)
	}
	return correlation.Hit(val), nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: redis %s: %v", correlation.ErrStoreUnavailable, op, err)
}
