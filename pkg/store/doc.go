// Package store holds the datastore-facing repositories the fan-out engine
// and multiplexer depend on: favorite/interest relations, notification
// preferences, display-name lookups, and the notification records
// themselves.
//
// Two implementations are provided: PGStore on pgx/v5 for production and
// MemoryStore for tests and local development. All interfaces are simple
// request/response calls; no transaction spans a whole fan-out.
package store
