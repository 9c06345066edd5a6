package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/saddagada1/bella-server-web/pkg/pg"
	"github.com/saddagada1/bella-server-web/svc/auth"
)

// Unique constraints declared by the users migration.
const (
	constraintEmail    = "users_email_key"
	constraintUsername = "users_username_key"
)

// DBTX is the subset of database/sql used by the repository.
// Both *sql.DB and *sql.Tx satisfy it.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const userColumns = `id, email, username, password_hash, verified, oauth_user, token_version,
	first_name, last_name, bio, created_at, updated_at`

// UserRepository implements auth.CredentialStore on Postgres.
type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row *sql.Row) (*auth.User, error) {
	u := &auth.User{}
	err := row.Scan(
		&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.Verified, &u.OAuthUser, &u.TokenVersion,
		&u.FirstName, &u.LastName, &u.Bio, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) findOne(ctx context.Context, column string, arg any) (*auth.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + column + ` = $1`

	u, err := scanUser(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, auth.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user by %s: %w", column, err)
	}
	return u, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	return r.findOne(ctx, "email", email)
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*auth.User, error) {
	return r.findOne(ctx, "id", id)
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*auth.User, error) {
	return r.findOne(ctx, "username", username)
}

func (r *UserRepository) CreateUser(ctx context.Context, user *auth.User) (*auth.User, error) {
	query := `INSERT INTO users (id, email, username, password_hash, verified, oauth_user, first_name, last_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + userColumns

	id := user.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	u, err := scanUser(r.db.QueryRowContext(ctx, query,
		id, user.Email, user.Username, nullBytes(user.PasswordHash), user.Verified, user.OAuthUser,
		user.FirstName, user.LastName,
	))
	if err != nil {
		if dup := duplicateIdentity(err); dup != nil {
			return nil, dup
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return u, nil
}

// UpdateUser applies every set field of upd, and the token_version
// increment when requested, in one UPDATE statement.
func (r *UserRepository) UpdateUser(ctx context.Context, id uuid.UUID, upd auth.UserUpdate) (*auth.User, error) {
	if upd.IsEmpty() {
		return r.FindByID(ctx, id)
	}

	query := `UPDATE users SET
		username      = COALESCE($2, username),
		email         = COALESCE($3, email),
		password_hash = COALESCE($4, password_hash),
		verified      = COALESCE($5, verified),
		oauth_user    = COALESCE($6, oauth_user),
		first_name    = COALESCE($7, first_name),
		last_name     = COALESCE($8, last_name),
		bio           = COALESCE($9, bio),
		token_version = token_version + $10,
		updated_at    = now()
		WHERE id = $1
		RETURNING ` + userColumns

	bump := 0
	if upd.BumpTokenVersion {
		bump = 1
	}

	u, err := scanUser(r.db.QueryRowContext(ctx, query,
		id, upd.Username, upd.Email, nullBytes(upd.PasswordHash), upd.Verified, upd.OAuthUser,
		upd.FirstName, upd.LastName, upd.Bio, bump,
	))
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, auth.ErrNotFound
		}
		if dup := duplicateIdentity(err); dup != nil {
			return nil, dup
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return u, nil
}

// duplicateIdentity maps a unique violation to the identity field it covers.
func duplicateIdentity(err error) error {
	if !pg.IsDuplicateKeyError(err) {
		return nil
	}
	switch pg.ConstraintName(err) {
	case constraintEmail:
		return &auth.DuplicateIdentityError{Field: auth.FieldEmail}
	case constraintUsername:
		return &auth.DuplicateIdentityError{Field: auth.FieldUsername}
	}
	return nil
}

func nullBytes(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}

var _ auth.CredentialStore = (*UserRepository)(nil)
