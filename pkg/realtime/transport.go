package realtime

import "context"

// Status reports transport channel lifecycle transitions to status callbacks.
type Status string

const (
	StatusSubscribed Status = "subscribed"
	StatusClosed     Status = "closed"
	StatusError      Status = "error"
)

// TableHandler receives raw table events from a transport channel.
type TableHandler func(TableEvent)

// StatusFunc receives channel status transitions. The error is non-nil
// only for StatusError.
type StatusFunc func(Status, error)

// Transport is the change-stream service the multiplexer runs on. The
// multiplexer treats it as opaque: at-least-once delivery per open channel,
// no ordering across channels.
type Transport interface {
	// OpenChannel opens a named physical channel. Opening the same name
	// twice yields two independent channels; the multiplexer guarantees it
	// holds at most one live channel per name.
	OpenChannel(ctx context.Context, name string) (TransportChannel, error)
}

// TransportChannel is one physical subscription to the change stream.
type TransportChannel interface {
	// OnTableChange attaches a handler for row-level changes on a table.
	// Must be called before Subscribe.
	OnTableChange(ctx context.Context, table string, h TableHandler) error

	// Subscribe activates the channel and registers a status callback.
	Subscribe(ctx context.Context, status StatusFunc) error

	// Close tears the channel down. Idempotent.
	Close() error
}
