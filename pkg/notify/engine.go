package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pintpoint/realtimekit/pkg/logger"
	"github.com/pintpoint/realtimekit/pkg/store"
)

const (
	relatedTypeVenue = "venue"
	relatedTypeEvent = "event"
	relatedTypeClaim = "claim"
)

// Stores groups the datastore repositories the engine reads and writes.
type Stores struct {
	Favorites      store.Favorites
	EventInterests store.EventInterests
	Preferences    store.PreferenceStore
	Directory      store.Directory
	Notifications  store.Notifications
}

// Engine turns domain triggers into preference-gated notification records.
//
// Every invocation is stateless: resolve candidates, fetch preferences in
// one batched call, keep users whose flag is explicitly true, dedupe by
// user id, then issue a single batched write. Delivery is best effort and
// at most once; failures are returned for the caller to log or ignore, and
// nothing is ever retried or queued.
type Engine struct {
	stores Stores
	log    *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithEngineLogger sets the logger for the Engine.
func WithEngineLogger(log *slog.Logger) EngineOption {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// NewEngine creates a fan-out engine on the given stores.
func NewEngine(stores Stores, opts ...EngineOption) *Engine {
	e := &Engine{
		stores: stores,
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NotifyVenueUpdate notifies everyone who favorited the venue that its
// hours changed. kind selects venue vs kitchen hours wording and gating
// category. An empty content is composed from the venue's display name.
func (e *Engine) NotifyVenueUpdate(ctx context.Context, venueID string, kind VenueUpdateKind, content string) error {
	category := CategoryVenueHoursUpdate
	phrase := "updated their hours"
	if kind == KitchenHours {
		category = CategoryKitchenHoursUpdate
		phrase = "updated their kitchen hours"
	}
	if content == "" {
		content = fmt.Sprintf("%s %s", e.VenueDisplayName(ctx, venueID), phrase)
	}

	candidates, err := e.stores.Favorites.UsersByVenue(ctx, venueID)
	if err != nil {
		return errors.Join(ErrResolveRecipients, err)
	}
	return e.fanOut(ctx, candidates, category, content, venueID, relatedTypeVenue)
}

// NotifyHappyHourUpdate notifies everyone who favorited the venue about a
// happy hour change.
func (e *Engine) NotifyHappyHourUpdate(ctx context.Context, venueID, content string) error {
	if content == "" {
		content = fmt.Sprintf("%s updated their happy hour", e.VenueDisplayName(ctx, venueID))
	}

	candidates, err := e.stores.Favorites.UsersByVenue(ctx, venueID)
	if err != nil {
		return errors.Join(ErrResolveRecipients, err)
	}
	return e.fanOut(ctx, candidates, CategoryHappyHoursUpdate, content, venueID, relatedTypeVenue)
}

// NotifyDailySpecialUpdate notifies everyone who favorited the venue about
// a daily special change.
func (e *Engine) NotifyDailySpecialUpdate(ctx context.Context, venueID, content string) error {
	if content == "" {
		content = fmt.Sprintf("%s updated their daily special", e.VenueDisplayName(ctx, venueID))
	}

	candidates, err := e.stores.Favorites.UsersByVenue(ctx, venueID)
	if err != nil {
		return errors.Join(ErrResolveRecipients, err)
	}
	return e.fanOut(ctx, candidates, CategoryDailySpecialUpdate, content, venueID, relatedTypeVenue)
}

// NotifyEventUpdate notifies about a venue event. A created event reaches
// users who favorited the venue; an updated event additionally reaches
// users who expressed interest in that specific event. A user qualifying
// through both sources receives exactly one record.
func (e *Engine) NotifyEventUpdate(ctx context.Context, eventID, venueID string, kind EventUpdateKind, content string) error {
	category := CategoryEventCreated
	phrase := "posted a new event"
	if kind == EventUpdated {
		category = CategoryEventUpdated
		phrase = "updated an event"
	}
	if content == "" {
		content = fmt.Sprintf("%s %s", e.VenueDisplayName(ctx, venueID), phrase)
	}

	candidates, err := e.stores.Favorites.UsersByVenue(ctx, venueID)
	if err != nil {
		return errors.Join(ErrResolveRecipients, err)
	}

	if kind == EventUpdated {
		interested, err := e.stores.EventInterests.UsersByEvent(ctx, eventID)
		if err != nil {
			return errors.Join(ErrResolveRecipients, err)
		}
		candidates = append(candidates, interested...)
	}

	return e.fanOut(ctx, candidates, category, content, eventID, relatedTypeEvent)
}

// NotifyClaimStatusUpdate notifies the single owning user of a brewery
// claim decision.
func (e *Engine) NotifyClaimStatusUpdate(ctx context.Context, userID, claimID string, status ClaimStatus, breweryName string) error {
	var category Category
	var content string
	switch status {
	case ClaimApproved:
		category = CategoryClaimApproved
		content = fmt.Sprintf("Your claim for %s has been approved! You can now manage this brewery.", breweryName)
	case ClaimRejected:
		category = CategoryClaimRejected
		content = fmt.Sprintf("Your claim for %s was not approved.", breweryName)
	default:
		return ErrUnknownClaimStatus
	}

	return e.fanOut(ctx, []string{userID}, category, content, claimID, relatedTypeClaim)
}

// VenueDisplayName resolves a venue's display name for notification
// content, falling back to a generic phrase when the lookup fails. A
// missing name never aborts a fan-out.
func (e *Engine) VenueDisplayName(ctx context.Context, venueID string) string {
	name, err := e.stores.Directory.VenueName(ctx, venueID)
	if err != nil {
		e.log.LogAttrs(ctx, slog.LevelWarn, "Failed to resolve venue display name",
			logger.Component("fanout"),
			logger.VenueID(venueID),
			logger.Error(err),
		)
		return "A venue you favorited"
	}
	return name
}

// BreweryDisplayName resolves a brewery's display name, falling back to a
// generic phrase when the lookup fails.
func (e *Engine) BreweryDisplayName(ctx context.Context, breweryID string) string {
	name, err := e.stores.Directory.BreweryName(ctx, breweryID)
	if err != nil {
		e.log.LogAttrs(ctx, slog.LevelWarn, "Failed to resolve brewery display name",
			logger.Component("fanout"),
			slog.String("brewery_id", breweryID),
			logger.Error(err),
		)
		return "the brewery"
	}
	return name
}

// fanOut runs steps 2-6 of a trigger: batched preference fetch, gating,
// dedup, record construction and one batched write. Candidates are
// deduplicated by user id before records are built, so a user qualifying
// through several relationship sources gets at most one record per trigger.
func (e *Engine) fanOut(ctx context.Context, candidates []string, category Category, content, relatedID, relatedType string) error {
	unique := dedupe(candidates)
	if len(unique) == 0 {
		return nil
	}

	prefs, err := e.stores.Preferences.ByUserIDs(ctx, unique)
	if err != nil {
		return errors.Join(ErrFetchPreferences, err)
	}

	now := time.Now()
	notifs := make([]store.Notification, 0, len(unique))
	for _, userID := range unique {
		// A user with no preference row is opted out of everything.
		p, ok := prefs[userID]
		if !ok || !category.enabled(p) {
			continue
		}
		notifs = append(notifs, store.Notification{
			ID:                uuid.New().String(),
			UserID:            userID,
			Type:              string(category),
			Content:           content,
			RelatedEntityID:   relatedID,
			RelatedEntityType: relatedType,
			CreatedAt:         now,
		})
	}

	// No eligible recipients is a normal outcome, not an error.
	if len(notifs) == 0 {
		return nil
	}

	if err := e.stores.Notifications.CreateBatch(ctx, notifs); err != nil {
		e.log.LogAttrs(ctx, slog.LevelWarn, "Failed to write notification batch",
			logger.Component("fanout"),
			logger.Category(category),
			logger.Count(len(notifs)),
			logger.Error(err),
		)
		return errors.Join(ErrWriteNotifications, err)
	}
	return nil
}

// dedupe returns the unique user ids preserving first-seen order.
func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	return unique
}
