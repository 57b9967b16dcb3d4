// Package db provides the PostgreSQL plumbing used by the mailing engine.
//
// It wraps [github.com/jackc/pgx/v5/pgxpool] with retrying connection setup,
// a transaction helper, and goose-based schema migrations for the mailing
// tables. Configuration comes from environment variables:
//
//	MAILING_DATABASE_URL             - PostgreSQL connection URL (required)
//	MAILING_DATABASE_MAX_CONNS       - Maximum pool connections (default: 10)
//	MAILING_DATABASE_MIN_CONNS       - Minimum idle connections (default: 2)
//	MAILING_DATABASE_RETRY_ATTEMPTS  - Startup connection attempts (default: 3)
//	MAILING_DATABASE_RETRY_INTERVAL  - Base retry interval (default: 5s)
//	MAILING_DATABASE_MIGRATIONS_TABLE- Migrations table (default: mailing_schema_migrations)
//
// Usage:
//
//	pool, err := db.Connect(ctx, cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer pool.Close()
//
//	if err := db.Migrate(ctx, pool, postgres.Migrations, cfg.MigrationsTable, log); err != nil {
//		log.Fatal(err)
//	}
package db
