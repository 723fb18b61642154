// Package pg bootstraps the PostgreSQL layer: connection pooling via
// pgx/v5, schema migrations via goose/v3, a health check closure, and
// error classification helpers used by the store packages.
//
// Typical startup:
//
//	var cfg pg.Config
//	config.MustLoad(&cfg)
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, slog.Default()); err != nil {
//	    return err
//	}
package pg
