package storage

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saddagada1/bella-server-web/svc/auth"
)

var columns = []string{
	"id", "email", "username", "password_hash", "verified", "oauth_user", "token_version",
	"first_name", "last_name", "bio", "created_at", "updated_at",
}

func newRepoWithMock(t *testing.T) (*UserRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return NewUserRepository(db), mock
}

func userRow(id uuid.UUID, version int) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(columns).AddRow(
		id.String(), "alice@example.com", "alice", []byte("hash"), false, false, version,
		"", "", "", now, now,
	)
}

func TestFind(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	id := uuid.New()

	t.Run("by email", func(t *testing.T) {
		t.Parallel()
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(`(?s)^SELECT .+ FROM users WHERE email = \$1$`).
			WithArgs("alice@example.com").
			WillReturnRows(userRow(id, 2))

		u, err := repo.FindByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, id, u.ID)
		assert.Equal(t, "alice", u.Username)
		assert.Equal(t, []byte("hash"), u.PasswordHash)
		assert.Equal(t, 2, u.TokenVersion)
	})

	t.Run("by id", func(t *testing.T) {
		t.Parallel()
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(`(?s)^SELECT .+ FROM users WHERE id = \$1$`).
			WithArgs(id.String()).
			WillReturnRows(userRow(id, 0))

		u, err := repo.FindByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, id, u.ID)
	})

	t.Run("by username not found", func(t *testing.T) {
		t.Parallel()
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(`(?s)^SELECT .+ FROM users WHERE username = \$1$`).
			WithArgs("ghost").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.FindByUsername(ctx, "ghost")
		assert.ErrorIs(t, err, auth.ErrNotFound)
	})

	t.Run("db failure is not a miss", func(t *testing.T) {
		t.Parallel()
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(`(?s)^SELECT .+ FROM users WHERE email = \$1$`).
			WillReturnError(errors.New("connection reset"))

		_, err := repo.FindByEmail(ctx, "alice@example.com")
		require.Error(t, err)
		assert.NotErrorIs(t, err, auth.ErrNotFound)
	})
}

func TestCreateUser(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	insert := `(?s)^INSERT INTO users \(id, email, username, password_hash, verified, oauth_user, first_name, last_name\)\s+VALUES \(\$1, \$2, \$3, \$4, \$5, \$6, \$7, \$8\)\s+RETURNING .+$`

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		repo, mock := newRepoWithMock(t)
		id := uuid.New()
		mock.ExpectQuery(insert).
			WithArgs(id.String(), "alice@example.com", "alice", []byte("hash"), false, false, "", "").
			WillReturnRows(userRow(id, 0))

		u, err := repo.CreateUser(ctx, &auth.User{ID: id, Email: "alice@example.com", Username: "alice", PasswordHash: []byte("hash")})
		require.NoError(t, err)
		assert.Equal(t, id, u.ID)
	})

	t.Run("provider account stores no hash", func(t *testing.T) {
		t.Parallel()
		repo, mock := newRepoWithMock(t)
		id := uuid.New()
		mock.ExpectQuery(insert).
			WithArgs(id.String(), "gina@example.com", "gina", nil, true, true, "", "").
			WillReturnRows(userRow(id, 0))

		_, err := repo.CreateUser(ctx, &auth.User{ID: id, Email: "gina@example.com", Username: "gina", Verified: true, OAuthUser: true})
		require.NoError(t, err)
	})

	t.Run("names are stored", func(t *testing.T) {
		t.Parallel()
		repo, mock := newRepoWithMock(t)
		id := uuid.New()
		now := time.Now()
		mock.ExpectQuery(insert).
			WithArgs(id.String(), "alice@example.com", "alice", []byte("hash"), false, false, "Alice", "Wonder").
			WillReturnRows(sqlmock.NewRows(columns).AddRow(
				id.String(), "alice@example.com", "alice", []byte("hash"), false, false, 0,
				"Alice", "Wonder", "", now, now,
			))

		u, err := repo.CreateUser(ctx, &auth.User{
			ID:           id,
			Email:        "alice@example.com",
			Username:     "alice",
			PasswordHash: []byte("hash"),
			FirstName:    "Alice",
			LastName:     "Wonder",
		})
		require.NoError(t, err)
		assert.Equal(t, "Alice", u.FirstName)
		assert.Equal(t, "Wonder", u.LastName)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	for name, tc := range map[string]struct {
		constraint string
		field      string
	}{
		"duplicate email":    {constraint: "users_email_key", field: auth.FieldEmail},
		"duplicate username": {constraint: "users_username_key", field: auth.FieldUsername},
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			repo, mock := newRepoWithMock(t)
			mock.ExpectQuery(insert).
				WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: tc.constraint})

			_, err := repo.CreateUser(ctx, &auth.User{ID: uuid.New(), Email: "a@example.com", Username: "a"})
			dup, ok := auth.AsDuplicateIdentity(err)
			require.True(t, ok)
			assert.Equal(t, tc.field, dup.Field)
		})
	}

	t.Run("other unique violation is not an identity clash", func(t *testing.T) {
		t.Parallel()
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(insert).
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_pkey"})

		_, err := repo.CreateUser(ctx, &auth.User{ID: uuid.New(), Email: "a@example.com", Username: "a"})
		require.Error(t, err)
		_, ok := auth.AsDuplicateIdentity(err)
		assert.False(t, ok)
	})
}

func TestUpdateUser(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	update := `(?s)^UPDATE users SET.+token_version = token_version \+ \$10.+WHERE id = \$1\s+RETURNING .+$`

	t.Run("password change bumps version in the same statement", func(t *testing.T) {
		t.Parallel()
		repo, mock := newRepoWithMock(t)
		id := uuid.New()
		oauth := false
		mock.ExpectQuery(update).
			WithArgs(id.String(), nil, nil, []byte("new-hash"), nil, false, nil, nil, nil, 1).
			WillReturnRows(userRow(id, 1))

		u, err := repo.UpdateUser(ctx, id, auth.UserUpdate{PasswordHash: []byte("new-hash"), OAuthUser: &oauth, BumpTokenVersion: true})
		require.NoError(t, err)
		assert.Equal(t, 1, u.TokenVersion)
	})

	t.Run("profile fields", func(t *testing.T) {
		t.Parallel()
		repo, mock := newRepoWithMock(t)
		id := uuid.New()
		first, bio := "Alice", "hello"
		mock.ExpectQuery(update).
			WithArgs(id.String(), nil, nil, nil, nil, nil, "Alice", nil, "hello", 0).
			WillReturnRows(userRow(id, 0))

		_, err := repo.UpdateUser(ctx, id, auth.UserUpdate{FirstName: &first, Bio: &bio})
		require.NoError(t, err)
	})

	t.Run("missing user", func(t *testing.T) {
		t.Parallel()
		repo, mock := newRepoWithMock(t)
		verified := true
		mock.ExpectQuery(update).WillReturnError(sql.ErrNoRows)

		_, err := repo.UpdateUser(ctx, uuid.New(), auth.UserUpdate{Verified: &verified})
		assert.ErrorIs(t, err, auth.ErrNotFound)
	})

	t.Run("duplicate username", func(t *testing.T) {
		t.Parallel()
		repo, mock := newRepoWithMock(t)
		name := "bob"
		mock.ExpectQuery(update).
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"})

		_, err := repo.UpdateUser(ctx, uuid.New(), auth.UserUpdate{Username: &name})
		dup, ok := auth.AsDuplicateIdentity(err)
		require.True(t, ok)
		assert.Equal(t, auth.FieldUsername, dup.Field)
	})

	t.Run("empty update reads the row", func(t *testing.T) {
		t.Parallel()
		repo, mock := newRepoWithMock(t)
		id := uuid.New()
		mock.ExpectQuery(`(?s)^SELECT .+ FROM users WHERE id = \$1$`).
			WithArgs(id.String()).
			WillReturnRows(userRow(id, 4))

		u, err := repo.UpdateUser(ctx, id, auth.UserUpdate{})
		require.NoError(t, err)
		assert.Equal(t, 4, u.TokenVersion)
	})
}

func TestMigrations(t *testing.T) {
	t.Parallel()

	files, err := fs.Glob(Migrations, MigrationsDir+"/*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	raw, err := fs.ReadFile(Migrations, files[0])
	require.NoError(t, err)
	body := string(raw)
	assert.Contains(t, body, "-- +goose Up")
	assert.Contains(t, body, "-- +goose Down")
	assert.Regexp(t, regexp.MustCompile(`CONSTRAINT users_email_key UNIQUE \(email\)`), body)
	assert.Regexp(t, regexp.MustCompile(`CONSTRAINT users_username_key UNIQUE \(username\)`), body)
	assert.Contains(t, body, "token_version integer")
}
