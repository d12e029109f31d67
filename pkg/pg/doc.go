// Package pg connects to PostgreSQL through pgx/v5 and applies schema
// migrations with goose.
//
//	cfg, err := config.Load[pg.Config]()
//	pool, err := pg.Connect(ctx, cfg)
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, postgres.Migrations, log); err != nil {
//		return err
//	}
//
// Migrations are read from an fs.FS, usually an embedded directory, so the
// binary carries its own schema. Healthcheck adapts the pool to the
// func(context.Context) error probes served by the HTTP server.
package pg
