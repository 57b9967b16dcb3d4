// Package postgres implements the mailing.Storage interface on PostgreSQL
// using pgx. Schema migrations are embedded and applied with db.Migrate:
//
//	pool, err := db.Connect(ctx, dbCfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := db.Migrate(ctx, pool, postgres.Migrations, dbCfg.MigrationsTable, log); err != nil {
//		log.Fatal(err)
//	}
//	store := postgres.New(pool)
//
// Deletion semantics follow the data model: a deleted campaign nulls the
// back-reference on its mails so sent history survives, while headers and
// attachments cascade with their owning row.
package postgres
