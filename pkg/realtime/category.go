package realtime

// EventCategory identifies which domain table a change event or
// subscription concerns.
type EventCategory string

const (
	CategoryVenueUpdated         EventCategory = "venue_updated"
	CategoryVenueHoursUpdated    EventCategory = "venue_hours_updated"
	CategoryHappyHourUpdated     EventCategory = "happy_hour_updated"
	CategoryDailySpecialUpdated  EventCategory = "daily_special_updated"
	CategoryVenueEventsUpdated   EventCategory = "venue_events_updated"
	CategoryBreweryUpdated       EventCategory = "brewery_updated"
	CategoryBreweryOwnersUpdated EventCategory = "brewery_owners_updated"
	CategoryBreweryClaimsUpdated EventCategory = "brewery_claims_updated"
	CategoryNotificationReceived EventCategory = "notification_received"
	CategoryCheckinCreated       EventCategory = "checkin_created"
)

// Physical channel names. Each channel multiplexes a fixed, disjoint set
// of categories; the mapping below is static and total.
const (
	ChannelVenue   = "venue"
	ChannelBrewery = "brewery"
	ChannelUser    = "user"
)

type categoryBinding struct {
	table   string
	channel string
}

var categoryBindings = map[EventCategory]categoryBinding{
	CategoryVenueUpdated:         {table: "venues", channel: ChannelVenue},
	CategoryVenueHoursUpdated:    {table: "venue_hours", channel: ChannelVenue},
	CategoryHappyHourUpdated:     {table: "happy_hours", channel: ChannelVenue},
	CategoryDailySpecialUpdated:  {table: "daily_specials", channel: ChannelVenue},
	CategoryVenueEventsUpdated:   {table: "venue_events", channel: ChannelVenue},
	CategoryBreweryUpdated:       {table: "breweries", channel: ChannelBrewery},
	CategoryBreweryOwnersUpdated: {table: "brewery_owners", channel: ChannelBrewery},
	CategoryBreweryClaimsUpdated: {table: "brewery_claims", channel: ChannelBrewery},
	CategoryNotificationReceived: {table: "notifications", channel: ChannelUser},
	CategoryCheckinCreated:       {table: "checkins", channel: ChannelUser},
}

// channelCategories lists the categories each channel serves, in the order
// their table listeners are attached when the channel opens.
var channelCategories = map[string][]EventCategory{
	ChannelVenue: {
		CategoryVenueUpdated,
		CategoryVenueHoursUpdated,
		CategoryHappyHourUpdated,
		CategoryDailySpecialUpdated,
		CategoryVenueEventsUpdated,
	},
	ChannelBrewery: {
		CategoryBreweryUpdated,
		CategoryBreweryOwnersUpdated,
		CategoryBreweryClaimsUpdated,
	},
	ChannelUser: {
		CategoryNotificationReceived,
		CategoryCheckinCreated,
	},
}

// Valid reports whether the category is part of the static mapping.
func (c EventCategory) Valid() bool {
	_, ok := categoryBindings[c]
	return ok
}

// Table returns the underlying table name for the category, or the empty
// string for an unknown category.
func (c EventCategory) Table() string {
	return categoryBindings[c].table
}

// ChannelName returns the physical channel the category is multiplexed on,
// or the empty string for an unknown category.
func (c EventCategory) ChannelName() string {
	return categoryBindings[c].channel
}

// categoryForTable resolves the category of a raw table event delivered on
// the given channel. Table names are unique across channels, but scoping
// the lookup to the channel keeps a misrouted event from being tagged.
func categoryForTable(channelName, table string) (EventCategory, bool) {
	for _, c := range channelCategories[channelName] {
		if categoryBindings[c].table == table {
			return c, true
		}
	}
	return "", false
}
