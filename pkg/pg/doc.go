// Package pg bootstraps PostgreSQL access with pgx/v5: a retrying pool
// constructor, goose migrations applied from an embedded filesystem, a health
// probe and helpers that classify *pgconn.PgError values.
//
// Typical wiring:
//
//	var cfg pg.Config
//	config.MustLoad(&cfg)
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, storage.Migrations, log); err != nil {
//		return err
//	}
//
// Constraint violations are classified by SQLSTATE and constraint name, never
// by message text:
//
//	if pg.IsDuplicateKeyError(err) && pg.ConstraintName(err) == "users_email_key" {
//		// email already registered
//	}
package pg
