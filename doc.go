// Package realtimekit is the realtime backbone for a venue and brewery
// discovery product: it multiplexes database change events over a small
// fixed set of pub/sub channels and fans the interesting ones out into
// per-user notification records.
//
// The module is organized as independent packages under pkg/ that
// compose through small interfaces:
//
//   - pkg/realtime: the channel multiplexer. Many logical subscriptions
//     (one per event category) share three physical channels; channels
//     open lazily on first use and close when the last interested
//     subscriber is gone. Transports are pluggable, with a Redis pub/sub
//     implementation and an in-memory one for tests.
//   - pkg/notify: the notification fan-out engine and the binder that
//     attaches it to the change stream. Each trigger resolves recipient
//     candidates, gates them on per-user preference flags, deduplicates,
//     and issues one batched write.
//   - pkg/store: the datastore interfaces the engine depends on, with a
//     PostgreSQL implementation on pgx and an in-memory one.
//   - pkg/logger, pkg/config, pkg/pg, pkg/redis: the ambient plumbing
//     shared by the domain packages.
//
// A typical service wires the pieces like this:
//
//	var pgCfg pg.Config
//	var redisCfg redis.Config
//	config.MustLoad(&pgCfg)
//	config.MustLoad(&redisCfg)
//
//	pool, _ := pg.Connect(ctx, pgCfg)
//	rdb, _ := redis.Connect(ctx, redisCfg)
//
//	st := store.NewPGStore(pool)
//	mux := realtime.NewMux(realtime.NewRedisTransport(rdb))
//	engine := notify.NewEngine(notify.Stores{
//		Favorites:      st,
//		EventInterests: st,
//		Preferences:    st,
//		Directory:      st,
//		Notifications:  st,
//	})
//
//	binder, _ := notify.BindChangeEvents(ctx, mux, engine)
//	defer binder.Close()
//	go mux.Run(ctx)
package realtimekit
