package store

import "errors"

var (
	// ErrNotificationNotFound is returned when a notification is not found.
	ErrNotificationNotFound = errors.New("store: notification not found")

	// ErrVenueNotFound is returned when a venue display name cannot be resolved.
	ErrVenueNotFound = errors.New("store: venue not found")

	// ErrBreweryNotFound is returned when a brewery display name cannot be resolved.
	ErrBreweryNotFound = errors.New("store: brewery not found")
)
