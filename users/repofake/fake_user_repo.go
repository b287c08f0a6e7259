package fakeuserrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/go-ssi-auth-server/internal/errors"
	"github.com/jrsteele09/go-ssi-auth-server/users"
)

var _ users.UserRepo = (*FakeUserRepo)(nil)

type FakeUserRepo struct {
	users       map[string]*users.User
	usernameIds map[string]string // username to user id
	lock        sync.RWMutex
}

func NewFakeUserRepo() *FakeUserRepo {
	return &FakeUserRepo{
		users:       make(map[string]*users.User),
		usernameIds: make(map[string]string),
	}
}

func (ur *FakeUserRepo) Create(_ context.Context, user *users.User) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	if _, ok := ur.usernameIds[user.Username]; ok {
		return users.ErrUsernameTaken
	}
	for _, u := range ur.users {
		if u.Email == user.Email && u.Provider == user.Provider {
			return users.ErrEmailTaken
		}
	}

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	ur.users[user.ID] = user.Clone()
	ur.usernameIds[user.Username] = user.ID
	return nil
}

func (ur *FakeUserRepo) GetByID(_ context.Context, id string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	u, ok := ur.users[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return u.Clone(), nil
}

func (ur *FakeUserRepo) GetByEmail(_ context.Context, email string) (*users.User, error) {
	return ur.first(func(u *users.User) bool {
		return u.Email == email
	})
}

func (ur *FakeUserRepo) FindUnconfirmedByToken(_ context.Context, token string) (*users.User, error) {
	return ur.first(func(u *users.User) bool {
		return !u.Confirmed && u.ConfirmationToken != nil && *u.ConfirmationToken == token
	})
}

func (ur *FakeUserRepo) FindConfirmedByDID(_ context.Context, did string) (*users.User, error) {
	return ur.first(func(u *users.User) bool {
		return u.Confirmed && u.DID != nil && *u.DID == did
	})
}

func (ur *FakeUserRepo) ConfirmDID(_ context.Context, id, token, did string) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	u, ok := ur.users[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	if u.Confirmed || u.ConfirmationToken == nil || *u.ConfirmationToken != token {
		return apperrors.ErrConflict
	}
	u.DID = &did
	u.Confirmed = true
	u.ConfirmationToken = nil
	u.UpdatedAt = time.Now().UTC()
	return nil
}

// SetBlocked is used by tests to block an account
func (ur *FakeUserRepo) SetBlocked(id string, blocked bool) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	u, ok := ur.users[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	u.Blocked = blocked
	return nil
}

// first returns the oldest matching account, mirroring ORDER BY created_at
func (ur *FakeUserRepo) first(match func(*users.User) bool) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	matches := make([]*users.User, 0)
	for _, u := range ur.users {
		if match(u) {
			matches = append(matches, u)
		}
	}
	if len(matches) == 0 {
		return nil, apperrors.ErrNotFound
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].ID < matches[j].ID
		}
		return matches[i].CreatedAt.Before(matches[j].CreatedAt)
	})
	return matches[0].Clone(), nil
}
