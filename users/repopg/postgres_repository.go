// Package repopg is the Postgres implementation of users.UserRepo.
package repopg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-ssi-auth-server/internal/database"
	apperrors "github.com/jrsteele09/go-ssi-auth-server/internal/errors"
	"github.com/jrsteele09/go-ssi-auth-server/internal/utils"
	"github.com/jrsteele09/go-ssi-auth-server/users"
)

var _ users.UserRepo = (*PostgresRepository)(nil)

const userColumns = `id, username, email, provider, password_hash, first_name, last_name,
       did, confirmed, confirmation_token, blocked, role_id, created_at, updated_at`

type PostgresRepository struct {
	db database.DBTX
}

func NewPostgresRepository(db database.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *users.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	query := `INSERT INTO users (id, username, email, provider, password_hash, first_name, last_name,
       did, confirmed, confirmation_token, blocked, role_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Username, user.Email, user.Provider, user.PasswordHash, user.FirstName, user.LastName,
		utils.NullString(user.DID), user.Confirmed, utils.NullString(user.ConfirmationToken), user.Blocked,
		utils.NullString(&user.RoleID), user.CreatedAt, user.UpdatedAt)
	if err != nil {
		if constraint, ok := database.UniqueConstraint(err); ok {
			if constraint == "users_username_key" {
				return users.ErrUsernameTaken
			}
			return users.ErrEmailTaken
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*users.User, error) {
	return r.queryOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	return r.queryOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1 ORDER BY created_at LIMIT 1`, email)
}

func (r *PostgresRepository) FindUnconfirmedByToken(ctx context.Context, token string) (*users.User, error) {
	return r.queryOne(ctx,
		`SELECT `+userColumns+` FROM users WHERE confirmed = FALSE AND confirmation_token = $1 ORDER BY created_at LIMIT 1`,
		token)
}

func (r *PostgresRepository) FindConfirmedByDID(ctx context.Context, did string) (*users.User, error) {
	return r.queryOne(ctx,
		`SELECT `+userColumns+` FROM users WHERE confirmed = TRUE AND did = $1 ORDER BY created_at LIMIT 1`,
		did)
}

func (r *PostgresRepository) ConfirmDID(ctx context.Context, id, token, did string) error {
	query := `UPDATE users SET did = $1, confirmed = TRUE, confirmation_token = NULL, updated_at = now()
WHERE id = $2 AND confirmed = FALSE AND confirmation_token = $3`

	res, err := r.db.ExecContext(ctx, query, did, id, token)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return apperrors.ErrConflict
	}
	return nil
}

func (r *PostgresRepository) queryOne(ctx context.Context, query string, args ...any) (*users.User, error) {
	var (
		u      users.User
		did    sql.NullString
		token  sql.NullString
		roleID sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&u.ID, &u.Username, &u.Email, &u.Provider, &u.PasswordHash, &u.FirstName, &u.LastName,
		&did, &u.Confirmed, &token, &u.Blocked, &roleID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	u.DID = utils.StringPtr(did)
	u.ConfirmationToken = utils.StringPtr(token)
	u.RoleID = roleID.String
	return &u, nil
}
