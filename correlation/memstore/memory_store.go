// Package memstore is an in-process correlation.Store for development and
// tests. It does not share state between server instances.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/jrsteele09/go-ssi-auth-server/correlation"
)

var _ correlation.Store = (*Store)(nil)

const defaultSweepInterval = time.Minute

type entry struct {
	connectionID string
	expiresAt    time.Time
}

// Store is a thread-safe TTL map. A background goroutine sweeps expired
// entries; reads also treat expired entries as absent.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry
	maxTTL  time.Duration
	now     func() time.Time
	done    chan struct{}
	closed  bool
}

// New starts the sweeper. Call Close to stop it.
func New(maxTTL time.Duration) *Store {
	return newStore(maxTTL, defaultSweepInterval, time.Now)
}

func newStore(maxTTL, sweepInterval time.Duration, now func() time.Time) *Store {
	s := &Store{
		entries: make(map[string]entry),
		maxTTL:  maxTTL,
		now:     now,
		done:    make(chan struct{}),
	}
	go s.sweep(sweepInterval)
	return s
}

func (s *Store) Set(_ context.Context, token, connectionID string, ttl time.Duration) error {
	if token == "" || connectionID == "" {
		return correlation.ErrEmptyToken
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[token] = entry{
		connectionID: connectionID,
		expiresAt:    s.now().Add(correlation.ClampTTL(ttl, s.maxTTL)),
	}
	return nil
}

func (s *Store) Get(_ context.Context, token string) (correlation.Lookup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[token]
	if !ok || !s.now().Before(e.expiresAt) {
		return correlation.Absent(), nil
	}
	return correlation.Hit(e.connectionID), nil
}

func (s *Store) Take(_ context.Context, token string) (correlation.Lookup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[token]
	if !ok {
		return correlation.Absent(), nil
	}
	delete(s.entries, token)
	if !s.now().Before(e.expiresAt) {
		return correlation.Absent(), nil
	}
	return correlation.Hit(e.connectionID), nil
}

func (s *Store) Ping(context.Context) error {
	return nil
}

// Len counts stored entries, expired or not
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Close stops the sweeper. It is safe to call multiple times.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		close(s.done)
		s.closed = true
	}
	return nil
}

func (s *Store) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.removeExpired()
		case <-s.done:
			return
		}
	}
}

func (s *Store) removeExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for token, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, token)
		}
	}
}
