package store

import (
	"context"
	"slices"
	"sync"
	"time"
)

// MemoryStore is an in-memory implementation of every store interface.
// Suitable for development and testing.
type MemoryStore struct {
	mu            sync.RWMutex
	favorites     map[string][]string // venueID -> userIDs
	interests     map[string][]string // eventID -> userIDs
	preferences   map[string]Preferences
	venueNames    map[string]string
	breweryNames  map[string]string
	notifications map[string][]Notification // userID -> notifications
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		favorites:     make(map[string][]string),
		interests:     make(map[string][]string),
		preferences:   make(map[string]Preferences),
		venueNames:    make(map[string]string),
		breweryNames:  make(map[string]string),
		notifications: make(map[string][]Notification),
	}
}

// AddFavorite records that a user favorited a venue.
func (s *MemoryStore) AddFavorite(userID, venueID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !slices.Contains(s.favorites[venueID], userID) {
		s.favorites[venueID] = append(s.favorites[venueID], userID)
	}
}

// AddEventInterest records that a user is interested in a venue event.
func (s *MemoryStore) AddEventInterest(userID, eventID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !slices.Contains(s.interests[eventID], userID) {
		s.interests[eventID] = append(s.interests[eventID], userID)
	}
}

// SetPreferences stores a user's preference row.
func (s *MemoryStore) SetPreferences(p Preferences) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.preferences[p.UserID] = p
}

// SetVenueName stores a venue display name.
func (s *MemoryStore) SetVenueName(venueID, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.venueNames[venueID] = name
}

// SetBreweryName stores a brewery display name.
func (s *MemoryStore) SetBreweryName(breweryID, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.breweryNames[breweryID] = name
}

func (s *MemoryStore) UsersByVenue(ctx context.Context, venueID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.favorites[venueID]), nil
}

func (s *MemoryStore) UsersByEvent(ctx context.Context, eventID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.interests[eventID]), nil
}

func (s *MemoryStore) ByUserIDs(ctx context.Context, userIDs []string) (map[string]Preferences, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]Preferences, len(userIDs))
	for _, id := range userIDs {
		if p, ok := s.preferences[id]; ok {
			result[id] = p
		}
	}
	return result, nil
}

func (s *MemoryStore) VenueName(ctx context.Context, venueID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	name, ok := s.venueNames[venueID]
	if !ok {
		return "", ErrVenueNotFound
	}
	return name, nil
}

func (s *MemoryStore) BreweryName(ctx context.Context, breweryID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	name, ok := s.breweryNames[breweryID]
	if !ok {
		return "", ErrBreweryNotFound
	}
	return name, nil
}

func (s *MemoryStore) CreateBatch(ctx context.Context, notifs []Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for _, n := range notifs {
		if n.CreatedAt.IsZero() {
			n.CreatedAt = now
		}
		s.notifications[n.UserID] = append(s.notifications[n.UserID], n)
	}
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, userID, notifID string) (*Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, n := range s.notifications[userID] {
		if n.ID == notifID {
			// Return a copy to prevent external mutation of stored data.
			notif := n
			return &notif, nil
		}
	}
	return nil, ErrNotificationNotFound
}

func (s *MemoryStore) List(ctx context.Context, userID string, opts ListOptions) ([]Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var filtered []Notification
	for _, n := range s.notifications[userID] {
		if opts.OnlyUnread && n.Read {
			continue
		}
		filtered = append(filtered, n)
	}

	slices.SortStableFunc(filtered, func(a, b Notification) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	if opts.Offset > 0 {
		if opts.Offset >= len(filtered) {
			return []Notification{}, nil
		}
		filtered = filtered[opts.Offset:]
	}
	if opts.Limit > 0 && opts.Limit < len(filtered) {
		filtered = filtered[:opts.Limit]
	}
	return filtered, nil
}

func (s *MemoryStore) MarkRead(ctx context.Context, userID string, notifIDs ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	list := s.notifications[userID]
	for i := range list {
		if slices.Contains(notifIDs, list[i].ID) && !list[i].Read {
			list[i].Read = true
			list[i].ReadAt = &now
		}
	}
	return nil
}

func (s *MemoryStore) MarkAllRead(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	list := s.notifications[userID]
	for i := range list {
		if !list[i].Read {
			list[i].Read = true
			list[i].ReadAt = &now
		}
	}
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, userID string, notifIDs ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notifications[userID] = slices.DeleteFunc(s.notifications[userID], func(n Notification) bool {
		return slices.Contains(notifIDs, n.ID)
	})
	return nil
}

func (s *MemoryStore) CountUnread(ctx context.Context, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, n := range s.notifications[userID] {
		if !n.Read {
			count++
		}
	}
	return count, nil
}
