// Package pg connects to PostgreSQL with pgx, applies goose migrations from an
// fs.FS and exposes a readiness probe.
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	if err := pg.Migrate(ctx, pool, cfg, migrations.FS, ".", log); err != nil {
//		return err
//	}
//
// Repositories call Conn(ctx, pool) so they take part in a transaction
// attached with WithTx.
package pg
