package notify

import "github.com/pintpoint/realtimekit/pkg/store"

// Category is a user-preference-gated notification category. Each category
// maps to exactly one boolean preference flag; several categories may share
// a flag (venue and kitchen hours are both gated by venue updates, claim
// approval and rejection by claim updates).
type Category string

const (
	CategoryVenueHoursUpdate   Category = "venue_hours_update"
	CategoryKitchenHoursUpdate Category = "kitchen_hours_update"
	CategoryHappyHoursUpdate   Category = "happy_hours_update"
	CategoryDailySpecialUpdate Category = "daily_special_update"
	CategoryEventCreated       Category = "event_created"
	CategoryEventUpdated       Category = "event_updated"
	CategoryClaimApproved      Category = "claim_approved"
	CategoryClaimRejected      Category = "claim_rejected"
)

// enabled reports whether the user's preference flag for this category is
// explicitly set. Callers must treat a missing preference row as opted out;
// this only inspects rows that exist.
func (c Category) enabled(p store.Preferences) bool {
	switch c {
	case CategoryVenueHoursUpdate, CategoryKitchenHoursUpdate:
		return p.VenueUpdates
	case CategoryHappyHoursUpdate:
		return p.HappyHourUpdates
	case CategoryDailySpecialUpdate:
		return p.DailySpecialUpdates
	case CategoryEventCreated, CategoryEventUpdated:
		return p.EventUpdates
	case CategoryClaimApproved, CategoryClaimRejected:
		return p.ClaimUpdates
	default:
		return false
	}
}

// VenueUpdateKind distinguishes which hours changed on a venue.
type VenueUpdateKind string

const (
	VenueHours   VenueUpdateKind = "venue_hours"
	KitchenHours VenueUpdateKind = "kitchen_hours"
)

// EventUpdateKind distinguishes a freshly created event from a change to an
// existing one; the two resolve recipients differently.
type EventUpdateKind string

const (
	EventCreated EventUpdateKind = "created"
	EventUpdated EventUpdateKind = "updated"
)

// ClaimStatus is the decision on a brewery ownership claim.
type ClaimStatus string

const (
	ClaimApproved ClaimStatus = "approved"
	ClaimRejected ClaimStatus = "rejected"
)
