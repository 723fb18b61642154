package realtime

import "errors"

var (
	// ErrMuxClosed is returned when subscribing on a closed multiplexer.
	ErrMuxClosed = errors.New("realtime: mux is closed")

	// ErrUnknownCategory is returned for a category outside the static mapping.
	ErrUnknownCategory = errors.New("realtime: unknown event category")

	// ErrNilCallback is returned when subscribing without a callback.
	ErrNilCallback = errors.New("realtime: subscription callback must not be nil")

	// ErrChannelClosed is returned by transport channels after Close.
	ErrChannelClosed = errors.New("realtime: transport channel is closed")

	// ErrOpenChannelFailed wraps transport failures while opening a channel.
	ErrOpenChannelFailed = errors.New("realtime: failed to open transport channel")
)
