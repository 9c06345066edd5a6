package pg_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"testing/fstest"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/saddagada1/bella-server-web/pkg/logger"
	"github.com/saddagada1/bella-server-web/pkg/pg"
)

func TestErrorClassification(t *testing.T) {
	t.Parallel()

	dup := &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
	fk := &pgconn.PgError{Code: "23503", ConstraintName: "posts_user_id_fkey"}
	wrapped := fmt.Errorf("failed to insert user: %w", dup)

	t.Run("duplicate key", func(t *testing.T) {
		t.Parallel()
		assert.True(t, pg.IsDuplicateKeyError(dup))
		assert.True(t, pg.IsDuplicateKeyError(wrapped))
		assert.False(t, pg.IsDuplicateKeyError(fk))
		assert.False(t, pg.IsDuplicateKeyError(errors.New("duplicate key value violates unique constraint")))
		assert.False(t, pg.IsDuplicateKeyError(nil))
	})

	t.Run("constraint name", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "users_email_key", pg.ConstraintName(wrapped))
		assert.Empty(t, pg.ConstraintName(errors.New("plain")))
		assert.Empty(t, pg.ConstraintName(nil))
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()
		assert.True(t, pg.IsNotFoundError(pgx.ErrNoRows))
		assert.True(t, pg.IsNotFoundError(fmt.Errorf("failed to find user: %w", sql.ErrNoRows)))
		assert.False(t, pg.IsNotFoundError(dup))
		assert.False(t, pg.IsNotFoundError(nil))
	})
}

func TestMigrateArguments(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	log := logger.Discard()

	t.Run("nil filesystem", func(t *testing.T) {
		t.Parallel()
		err := pg.Migrate(ctx, nil, pg.Config{MigrationsDir: "migrations"}, nil, log)
		assert.ErrorIs(t, err, pg.ErrFailedToApplyMigrations)
		assert.ErrorIs(t, err, pg.ErrMigrationsFSNotProvided)
	})

	t.Run("empty dir", func(t *testing.T) {
		t.Parallel()
		err := pg.Migrate(ctx, nil, pg.Config{}, fstest.MapFS{}, log)
		assert.ErrorIs(t, err, pg.ErrMigrationPathNotProvided)
	})

	t.Run("missing dir", func(t *testing.T) {
		t.Parallel()
		fsys := fstest.MapFS{"other/0001_init.sql": &fstest.MapFile{Data: []byte("-- +goose Up")}}
		err := pg.Migrate(ctx, nil, pg.Config{MigrationsDir: "migrations"}, fsys, log)
		assert.ErrorIs(t, err, pg.ErrFailedToApplyMigrations)
	})
}

func TestConnectArguments(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	_, err := pg.Connect(ctx, pg.Config{})
	assert.ErrorIs(t, err, pg.ErrEmptyConnectionString)

	_, err = pg.Connect(ctx, pg.Config{ConnectionString: "postgres://%zz"})
	assert.ErrorIs(t, err, pg.ErrFailedToParseDBConfig)
}
