package store

import (
	"context"
	"time"
)

// Preferences holds one user's notification opt-in flags. A user with no
// preference row is opted out of everything; stores return only the rows
// that exist and callers treat absence as all-false.
type Preferences struct {
	UserID              string
	VenueUpdates        bool
	HappyHourUpdates    bool
	DailySpecialUpdates bool
	EventUpdates        bool
	ClaimUpdates        bool
}

// Notification is a persisted notification record. Records are immutable
// once written except for the read flag.
type Notification struct {
	ID                string
	UserID            string
	Type              string
	Content           string
	RelatedEntityID   string
	RelatedEntityType string
	Read              bool
	ReadAt            *time.Time
	CreatedAt         time.Time
}

// ListOptions provides filtering and pagination for listing notifications.
type ListOptions struct {
	Limit      int  // Maximum number of notifications to return (0 = no limit)
	Offset     int  // Number of notifications to skip for pagination
	OnlyUnread bool // When true, only return unread notifications
}

// Favorites resolves the users who favorited a venue.
type Favorites interface {
	UsersByVenue(ctx context.Context, venueID string) ([]string, error)
}

// EventInterests resolves the users interested in a specific venue event.
type EventInterests interface {
	UsersByEvent(ctx context.Context, eventID string) ([]string, error)
}

// PreferenceStore fetches notification preferences in one batched call.
type PreferenceStore interface {
	// ByUserIDs returns preference rows keyed by user id. Users without a
	// row are simply absent from the result.
	ByUserIDs(ctx context.Context, userIDs []string) (map[string]Preferences, error)
}

// Directory looks up display names for composing notification content.
type Directory interface {
	VenueName(ctx context.Context, venueID string) (string, error)
	BreweryName(ctx context.Context, breweryID string) (string, error)
}

// Notifications persists and reads notification records. CreateBatch is the
// fan-out engine's only write; the remaining operations serve the UI layer.
type Notifications interface {
	// CreateBatch inserts all records in one batched write.
	CreateBatch(ctx context.Context, notifs []Notification) error

	// Get retrieves a single notification scoped to its owner.
	Get(ctx context.Context, userID, notifID string) (*Notification, error)

	// List returns a user's notifications, newest first.
	List(ctx context.Context, userID string, opts ListOptions) ([]Notification, error)

	// MarkRead marks notification(s) as read.
	MarkRead(ctx context.Context, userID string, notifIDs ...string) error

	// MarkAllRead marks every unread notification of a user as read.
	MarkAllRead(ctx context.Context, userID string) error

	// Delete removes notification(s).
	Delete(ctx context.Context, userID string, notifIDs ...string) error

	// CountUnread returns the unread count for a user.
	CountUnread(ctx context.Context, userID string) (int, error)
}
