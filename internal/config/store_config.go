package config

import (
	"fmt"
	"time"
)

type StoreConfig interface {
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
	GetRedisKeyPrefix() string
	GetRedisOpTimeout() time.Duration
	GetCorrelationTTL() time.Duration
	GetCorrelationMaxTTL() time.Duration
}

type Store struct{}

var _ StoreConfig = Store{}

// GetRedisAddr returns host:port. An empty REDIS_HOST selects the in-memory store.
func (Store) GetRedisAddr() string {
	host := GetEnv("REDIS_HOST", "")
	if host == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", host, GetEnvInt("REDIS_PORT", 6379))
}

func (Store) GetRedisPassword() string {
	return GetEnv("REDIS_PASSWORD", "")
}

func (Store) GetRedisDB() int {
	return GetEnvInt("REDIS_DB", 0)
}

func (Store) GetRedisKeyPrefix() string {
	return GetEnv("REDIS_KEY_PREFIX", "ssi:correlation:")
}

func (Store) GetRedisOpTimeout() time.Duration {
	return GetEnvDuration("REDIS_OP_TIMEOUT", 2*time.Second)
}

// GetCorrelationTTL is how long a token stays bound to a connection
func (s Store) GetCorrelationTTL() time.Duration {
	ttl := GetEnvDuration("CORRELATION_TTL", 10*time.Minute)
	if maxTTL := s.GetCorrelationMaxTTL(); ttl > maxTTL {
		return maxTTL
	}
	return ttl
}

func (Store) GetCorrelationMaxTTL() time.Duration {
	return GetEnvDuration("CORRELATION_MAX_TTL", 15*time.Minute)
}
