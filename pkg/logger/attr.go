package logger

import (
	"log/slog"
)

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// UserID records the user identifier under the key "user_id".
// If id is nil, it returns an empty Attr.
func UserID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("user_id", id)
}

// VenueID records the venue identifier under the key "venue_id".
// If id is nil, it returns an empty Attr.
func VenueID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("venue_id", id)
}

// EventID records the venue event identifier under the key "event_id".
// If id is nil, it returns an empty Attr.
func EventID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("event_id", id)
}

// ClaimID records the brewery claim identifier under the key "claim_id".
// If id is nil, it returns an empty Attr.
func ClaimID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("claim_id", id)
}

// SubscriptionID records the subscription identifier under the key "subscription_id".
func SubscriptionID(id string) slog.Attr {
	return slog.String("subscription_id", id)
}

// Category records an event category under the key "category".
func Category(c any) slog.Attr {
	return slog.Any("category", c)
}

// Channel records a physical channel name under the key "channel".
func Channel(name string) slog.Attr {
	return slog.String("channel", name)
}

// Table records a table name under the key "table".
func Table(name string) slog.Attr {
	return slog.String("table", name)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Count records an integer count under the key "count".
func Count(n int) slog.Attr {
	return slog.Int("count", n)
}
