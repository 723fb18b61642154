package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pintpoint/realtimekit/pkg/logger"
	"github.com/pintpoint/realtimekit/pkg/realtime"
)

// Binder wires the fan-out engine to the change stream: one subscription
// per notification-bearing category, each with a thin handler that extracts
// the entity id and wording cues from the event and invokes the engine.
//
// Engine errors are logged and dropped inside the handlers - a failed
// fan-out must never surface to the mutation that produced the change
// event.
type Binder struct {
	mux    *realtime.Mux
	engine *Engine
	log    *slog.Logger
	subs   []*realtime.Subscription
}

// BinderOption configures a Binder.
type BinderOption func(*Binder)

// WithBinderLogger sets the logger for the Binder.
func WithBinderLogger(log *slog.Logger) BinderOption {
	return func(b *Binder) {
		if log != nil {
			b.log = log
		}
	}
}

// BindChangeEvents subscribes the engine's trigger handlers to the
// multiplexer. The returned Binder must be closed to release the
// subscriptions. If any subscription fails, none are left behind.
func BindChangeEvents(ctx context.Context, mux *realtime.Mux, engine *Engine, opts ...BinderOption) (*Binder, error) {
	b := &Binder{
		mux:    mux,
		engine: engine,
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}

	bindings := []struct {
		category realtime.EventCategory
		handler  realtime.Callback
	}{
		{realtime.CategoryVenueHoursUpdated, b.onVenueHoursChange},
		{realtime.CategoryHappyHourUpdated, b.onHappyHourChange},
		{realtime.CategoryDailySpecialUpdated, b.onDailySpecialChange},
		{realtime.CategoryVenueEventsUpdated, b.onVenueEventChange},
		{realtime.CategoryBreweryClaimsUpdated, b.onClaimChange},
	}

	for _, binding := range bindings {
		sub, err := mux.Subscribe(ctx, binding.category, binding.handler)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("bind %s: %w", binding.category, err)
		}
		b.subs = append(b.subs, sub)
	}

	return b, nil
}

// Close releases all change-event subscriptions. Idempotent.
func (b *Binder) Close() error {
	for _, sub := range b.subs {
		_ = sub.Close()
	}
	b.subs = nil
	return nil
}

func (b *Binder) onVenueHoursChange(e realtime.ChangeEvent) {
	venueID := rowValue(e, "venue_id")
	if venueID == "" {
		b.dropMalformed(e)
		return
	}

	// Kitchen-hours wording only when the kitchen columns moved and the
	// regular ones did not; a mixed change reads as a venue hours update.
	kind := VenueHours
	if fieldsChanged(e, "kitchen_open_time", "kitchen_close_time") &&
		!fieldsChanged(e, "open_time", "close_time") {
		kind = KitchenHours
	}

	b.run(e, func(ctx context.Context) error {
		return b.engine.NotifyVenueUpdate(ctx, venueID, kind, "")
	})
}

func (b *Binder) onHappyHourChange(e realtime.ChangeEvent) {
	venueID := rowValue(e, "venue_id")
	if venueID == "" {
		b.dropMalformed(e)
		return
	}

	var phrase string
	switch e.Op {
	case realtime.OpInsert:
		phrase = "added a new happy hour"
	case realtime.OpDelete:
		phrase = "ended their happy hour"
	default:
		phrase = "updated their happy hour"
	}

	b.run(e, func(ctx context.Context) error {
		content := fmt.Sprintf("%s %s", b.engine.VenueDisplayName(ctx, venueID), phrase)
		return b.engine.NotifyHappyHourUpdate(ctx, venueID, content)
	})
}

func (b *Binder) onDailySpecialChange(e realtime.ChangeEvent) {
	venueID := rowValue(e, "venue_id")
	if venueID == "" {
		b.dropMalformed(e)
		return
	}

	var phrase string
	switch e.Op {
	case realtime.OpInsert:
		phrase = "added a new daily special"
	case realtime.OpDelete:
		phrase = "removed their daily special"
	default:
		phrase = "updated their daily special"
	}

	b.run(e, func(ctx context.Context) error {
		content := fmt.Sprintf("%s %s", b.engine.VenueDisplayName(ctx, venueID), phrase)
		return b.engine.NotifyDailySpecialUpdate(ctx, venueID, content)
	})
}

func (b *Binder) onVenueEventChange(e realtime.ChangeEvent) {
	eventID := rowValue(e, "id")
	venueID := rowValue(e, "venue_id")
	if eventID == "" || venueID == "" {
		b.dropMalformed(e)
		return
	}

	kind := EventUpdated
	var phrase string
	switch e.Op {
	case realtime.OpInsert:
		kind = EventCreated
		phrase = "posted a new event"
	case realtime.OpDelete:
		phrase = "cancelled an event"
	default:
		phrase = "updated an event"
	}

	b.run(e, func(ctx context.Context) error {
		content := fmt.Sprintf("%s %s", b.engine.VenueDisplayName(ctx, venueID), phrase)
		return b.engine.NotifyEventUpdate(ctx, eventID, venueID, kind, content)
	})
}

func (b *Binder) onClaimChange(e realtime.ChangeEvent) {
	// Only a decision transition notifies; pending inserts and deletions
	// are silent.
	if e.Op != realtime.OpUpdate {
		return
	}

	status := ClaimStatus(rowValue(e, "status"))
	if status != ClaimApproved && status != ClaimRejected {
		return
	}
	if e.Before != nil && fmt.Sprint(e.Before["status"]) == string(status) {
		return
	}

	userID := rowValue(e, "user_id")
	claimID := rowValue(e, "id")
	breweryID := rowValue(e, "brewery_id")
	if userID == "" || claimID == "" {
		b.dropMalformed(e)
		return
	}

	b.run(e, func(ctx context.Context) error {
		breweryName := b.engine.BreweryDisplayName(ctx, breweryID)
		return b.engine.NotifyClaimStatusUpdate(ctx, userID, claimID, status, breweryName)
	})
}

// run invokes one trigger and swallows its error after logging it.
func (b *Binder) run(e realtime.ChangeEvent, trigger func(context.Context) error) {
	ctx := context.Background()
	if err := trigger(ctx); err != nil {
		b.log.LogAttrs(ctx, slog.LevelWarn, "Fan-out for change event failed",
			logger.Component("binder"),
			logger.Category(e.Category),
			slog.String("op", string(e.Op)),
			logger.Error(err),
		)
	}
}

func (b *Binder) dropMalformed(e realtime.ChangeEvent) {
	b.log.LogAttrs(context.Background(), slog.LevelWarn, "Dropping change event without entity id",
		logger.Component("binder"),
		logger.Category(e.Category),
		slog.String("op", string(e.Op)),
	)
}

// rowValue reads a field from the event's snapshot row as a string,
// falling back to Before when After is absent (deletes).
func rowValue(e realtime.ChangeEvent, key string) string {
	v, ok := e.Field(key)
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// fieldsChanged reports whether any of the keys differ between the
// event's Before and After rows. With only one snapshot present every
// field counts as changed.
func fieldsChanged(e realtime.ChangeEvent, keys ...string) bool {
	if e.Before == nil || e.After == nil {
		return true
	}
	for _, key := range keys {
		if fmt.Sprint(e.Before[key]) != fmt.Sprint(e.After[key]) {
			return true
		}
	}
	return false
}
