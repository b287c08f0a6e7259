package fakerolerepo

import (
	"context"
	"sync"

	apperrors "github.com/jrsteele09/go-ssi-auth-server/internal/errors"
	"github.com/jrsteele09/go-ssi-auth-server/roles"
)

var _ roles.RoleRepo = (*FakeRoleRepo)(nil)

type FakeRoleRepo struct {
	byType map[string]roles.Role
	lock   sync.RWMutex
}

// NewFakeRoleRepo seeds the repo with rs, or roles.Defaults when none are given
func NewFakeRoleRepo(rs ...roles.Role) *FakeRoleRepo {
	if len(rs) == 0 {
		rs = roles.Defaults()
	}
	r := &FakeRoleRepo{byType: make(map[string]roles.Role)}
	for _, role := range rs {
		r.byType[role.Type] = role
	}
	return r
}

func (r *FakeRoleRepo) GetByType(_ context.Context, roleType string) (*roles.Role, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	role, ok := r.byType[roleType]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &role, nil
}
