package realtime

import "fmt"

// Filter narrows a subscription to events whose row matches every listed
// field exactly. Filters are matched against the event's After snapshot,
// falling back to Before for deletes.
//
// Call sites should build filters through the typed constructors below
// rather than spelling raw column names.
type Filter map[string]string

// FilterVenue matches events for a single venue.
func FilterVenue(venueID string) Filter {
	return Filter{"venue_id": venueID}
}

// FilterEvent matches events for a single venue event.
func FilterEvent(eventID string) Filter {
	return Filter{"event_id": eventID}
}

// FilterBrewery matches events for a single brewery.
func FilterBrewery(breweryID string) Filter {
	return Filter{"brewery_id": breweryID}
}

// FilterUser matches events for a single user.
func FilterUser(userID string) Filter {
	return Filter{"user_id": userID}
}

// matches reports whether the event's snapshot satisfies every filter key.
// An event with no snapshot at all only matches an empty filter.
func (f Filter) matches(e ChangeEvent) bool {
	if len(f) == 0 {
		return true
	}

	row := e.Snapshot()
	if row == nil {
		return false
	}

	for key, want := range f {
		got, ok := row[key]
		if !ok {
			return false
		}
		if fmt.Sprint(got) != want {
			return false
		}
	}
	return true
}

// merge combines filters; later filters win on key conflicts.
func mergeFilters(filters []Filter) Filter {
	if len(filters) == 0 {
		return nil
	}
	if len(filters) == 1 {
		return filters[0]
	}

	merged := make(Filter)
	for _, f := range filters {
		for k, v := range f {
			merged[k] = v
		}
	}
	return merged
}
