// Package repopg is the Postgres implementation of roles.RoleRepo.
package repopg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jrsteele09/go-ssi-auth-server/internal/database"
	apperrors "github.com/jrsteele09/go-ssi-auth-server/internal/errors"
	"github.com/jrsteele09/go-ssi-auth-server/roles"
)

var _ roles.RoleRepo = (*PostgresRepository)(nil)

type PostgresRepository struct {
	db database.DBTX
}

func NewPostgresRepository(db database.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetByType(ctx context.Context, roleType string) (*roles.Role, error) {
	query := `SELECT id, name, type, description FROM roles WHERE type = $1`

	role := &roles.Role{}
	err := r.db.QueryRowContext(ctx, query, roleType).Scan(&role.ID, &role.Name, &role.Type, &role.Description)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return role, nil
}
