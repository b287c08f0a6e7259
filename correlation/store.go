// Package correlation maps one-time correlation tokens (confirmation tokens and
// sign-in challenges) to the id of the live connection waiting on them.
//
// The store is the only authority on that mapping. Values are connection ids,
// never connection handles, so any server instance can resolve a token bound
// on another.
package correlation

import (
	"context"
	"errors"
	"time"

	apperrors "github.com/jrsteele09/go-ssi-auth-server/internal/errors"
)

// ErrStoreUnavailable means the backing store could not be reached.
// An absent key is never reported as an error.
var ErrStoreUnavailable = apperrors.ErrStoreUnavailable

// ErrEmptyToken is returned when a token or connection id is blank
var ErrEmptyToken = errors.New("correlation token and connection id must not be empty")

// Lookup is the result of reading a token: a connection id, or absent
type Lookup struct {
	ConnectionID string
	Found        bool
}

func Hit(connectionID string) Lookup {
	return Lookup{ConnectionID: connectionID, Found: true}
}

func Absent() Lookup {
	return Lookup{}
}

// Store is the Token Store client
type Store interface {
	// Set stores or overwrites token -> connectionID for ttl
	Set(ctx context.Context, token, connectionID string, ttl time.Duration) error

	// Get reads the mapping without side effects
	Get(ctx context.Context, token string) (Lookup, error)

	// Take reads and deletes the mapping in one atomic step
	Take(ctx context.Context, token string) (Lookup, error)

	// Ping checks the backing store is reachable
	Ping(ctx context.Context) error

	Close() error
}

// ClampTTL bounds ttl to (0, maxTTL]. A non-positive ttl becomes maxTTL.
func ClampTTL(ttl, maxTTL time.Duration) time.Duration {
	if maxTTL <= 0 {
		return ttl
	}
	if ttl <= 0 || ttl > maxTTL {
		return maxTTL
	}
	return ttl
}
