package realtime

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pintpoint/realtimekit/pkg/logger"
)

// Callback receives change events for a subscription.
type Callback func(ChangeEvent)

// Subscription is a logical subscription to one event category. It is a
// caller-owned resource: Close (or Mux.Unsubscribe with the same id) must
// be called to release it. Close is idempotent.
type Subscription struct {
	id       string
	category EventCategory
	callback Callback
	filter   Filter
	mux      *Mux
}

// ID returns the unique subscription id.
func (s *Subscription) ID() string { return s.id }

// Category returns the subscribed event category.
func (s *Subscription) Category() EventCategory { return s.category }

// Close removes the subscription and releases its channel if no other
// subscription needs it. Safe to call multiple times.
func (s *Subscription) Close() error {
	s.mux.Unsubscribe(s.id)
	return nil
}

type muxChannel struct {
	name    string
	handle  TransportChannel
	healthy bool
}

// Mux multiplexes many logical subscriptions over few physical transport
// channels. Channels are opened lazily on the first subscriber for any of
// their categories and closed when the last interested subscriber is gone.
//
// Whether a channel is still needed is always recomputed from the live
// subscription set at the moment of the check, so subscribes and
// unsubscribes may interleave in any order.
type Mux struct {
	transport Transport
	cfg       Config
	log       *slog.Logger

	mu       sync.Mutex
	subs     map[string]*Subscription
	channels map[string]*muxChannel
	closed   bool
}

// MuxOption configures a Mux.
type MuxOption func(*Mux)

// WithLogger sets the logger for the Mux.
func WithLogger(log *slog.Logger) MuxOption {
	return func(m *Mux) {
		if log != nil {
			m.log = log
		}
	}
}

// WithConfig sets the Mux configuration.
func WithConfig(cfg Config) MuxOption {
	return func(m *Mux) {
		m.cfg = cfg
	}
}

// NewMux creates a multiplexer on top of the given transport.
func NewMux(transport Transport, opts ...MuxOption) *Mux {
	m := &Mux{
		transport: transport,
		cfg:       defaultConfig(),
		log:       slog.Default(),
		subs:      make(map[string]*Subscription),
		channels:  make(map[string]*muxChannel),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Subscribe registers a callback for one event category. The backing
// physical channel is opened on first use; if opening fails the
// subscription is not registered and the error is returned synchronously.
//
// The returned Subscription must be closed when no longer needed. Many
// subscriptions may share one category.
func (m *Mux) Subscribe(ctx context.Context, category EventCategory, cb Callback, filters ...Filter) (*Subscription, error) {
	if !category.Valid() {
		return nil, ErrUnknownCategory
	}
	if cb == nil {
		return nil, ErrNilCallback
	}

	sub := &Subscription{
		id:       uuid.New().String(),
		category: category,
		callback: cb,
		filter:   mergeFilters(filters),
		mux:      m,
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrMuxClosed
	}
	m.subs[sub.id] = sub
	name := category.ChannelName()
	_, channelExists := m.channels[name]
	m.mu.Unlock()

	if channelExists {
		return sub, nil
	}

	if err := m.ensureChannel(ctx, name); err != nil {
		m.mu.Lock()
		delete(m.subs, sub.id)
		m.mu.Unlock()
		return nil, err
	}

	return sub, nil
}

// Unsubscribe removes a subscription by id. Unknown ids are a no-op, so
// cleanup paths may call it unconditionally. After removal the backing
// channel is released if nothing else needs it.
func (m *Mux) Unsubscribe(id string) {
	m.mu.Lock()
	sub, ok := m.subs[id]
	if !ok {
		m.mu.Unlock()
		return
	}
	delete(m.subs, id)
	name := sub.category.ChannelName()
	handle := m.releaseIfUnusedLocked(name)
	m.mu.Unlock()

	if handle != nil {
		m.closeHandle(name, handle)
	}
}

// SubscriberCount returns the number of live subscriptions for a category.
func (m *Mux) SubscriberCount(category EventCategory) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for _, sub := range m.subs {
		if sub.category == category {
			count++
		}
	}
	return count
}

// ChannelNames returns the names of currently open physical channels.
func (m *Mux) ChannelNames() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := make([]string, 0, len(m.channels))
	for name := range m.channels {
		names = append(names, name)
	}
	return names
}

// Close tears down every channel and drops all subscriptions.
func (m *Mux) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true

	handles := make(map[string]TransportChannel, len(m.channels))
	for name, ch := range m.channels {
		handles[name] = ch.handle
	}
	clear(m.channels)
	clear(m.subs)
	m.mu.Unlock()

	for name, handle := range handles {
		m.closeHandle(name, handle)
	}
	return nil
}

// HealthCheck recreates channels whose transport reported a disconnect.
// Repair is from scratch: the dead handle is closed and a fresh channel is
// opened with all sibling listeners reattached. Channels that became
// unneeded since the disconnect are simply dropped.
func (m *Mux) HealthCheck(ctx context.Context) error {
	m.mu.Lock()
	var dead []*muxChannel
	for _, ch := range m.channels {
		if !ch.healthy {
			dead = append(dead, ch)
		}
	}
	m.mu.Unlock()

	var errs []error
	for _, ch := range dead {
		m.mu.Lock()
		current, ok := m.channels[ch.name]
		if !ok || current != ch {
			m.mu.Unlock()
			continue
		}
		delete(m.channels, ch.name)
		needed := m.channelNeededLocked(ch.name)
		m.mu.Unlock()

		m.closeHandle(ch.name, ch.handle)

		if !needed {
			continue
		}
		if err := m.ensureChannel(ctx, ch.name); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Run periodically health-checks channels until the context is cancelled.
func (m *Mux) Run(ctx context.Context) {
	ticker := time.NewTicker(m.cfg.HealthCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := m.HealthCheck(ctx); err != nil {
				m.log.LogAttrs(ctx, slog.LevelWarn, "Channel health check failed",
					logger.Component("mux"),
					logger.Error(err),
				)
			}
		case <-ctx.Done():
			return
		}
	}
}

// ensureChannel opens the named physical channel and attaches a table
// listener for every category the channel serves, not just the one that
// triggered the open. An open channel must be able to serve any future
// subscriber for its sibling categories without reopening.
func (m *Mux) ensureChannel(ctx context.Context, name string) error {
	handle, err := m.transport.OpenChannel(ctx, name)
	if err != nil {
		return errors.Join(ErrOpenChannelFailed, err)
	}

	ch := &muxChannel{name: name, handle: handle, healthy: true}

	attach := func() error {
		for _, category := range channelCategories[name] {
			table := category.Table()
			if err := handle.OnTableChange(ctx, table, func(te TableEvent) {
				m.onTransportEvent(name, te)
			}); err != nil {
				return err
			}
		}
		return handle.Subscribe(ctx, func(status Status, err error) {
			m.onChannelStatus(ch, status, err)
		})
	}

	if err := attach(); err != nil {
		_ = handle.Close()
		return errors.Join(ErrOpenChannelFailed, err)
	}

	// The subscription set may have changed while the open was in flight:
	// a racing open may have won, the subscriber that wanted this channel
	// may be gone already, or the mux may have been closed.
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		m.closeHandle(name, handle)
		return ErrMuxClosed
	}
	if _, exists := m.channels[name]; exists {
		m.mu.Unlock()
		m.closeHandle(name, handle)
		return nil
	}
	if !m.channelNeededLocked(name) {
		m.mu.Unlock()
		m.closeHandle(name, handle)
		return nil
	}
	m.channels[name] = ch
	m.mu.Unlock()

	m.log.LogAttrs(ctx, slog.LevelDebug, "Opened realtime channel",
		logger.Component("mux"),
		logger.Channel(name),
	)
	return nil
}

// releaseIfUnusedLocked recomputes whether any live subscription still
// references a category on the named channel. If none does, the channel is
// removed from the map and its handle returned for closing outside the
// lock. Callers must hold m.mu.
func (m *Mux) releaseIfUnusedLocked(name string) TransportChannel {
	if m.channelNeededLocked(name) {
		return nil
	}

	ch, ok := m.channels[name]
	if !ok {
		return nil
	}
	delete(m.channels, name)
	return ch.handle
}

// channelNeededLocked reports whether any live subscription's category is
// served by the named channel. Callers must hold m.mu.
func (m *Mux) channelNeededLocked(name string) bool {
	for _, sub := range m.subs {
		if sub.category.ChannelName() == name {
			return true
		}
	}
	return false
}

// onTransportEvent translates a raw table event into a ChangeEvent tagged
// with the category derived from the originating table, then dispatches it.
func (m *Mux) onTransportEvent(channelName string, te TableEvent) {
	category, ok := categoryForTable(channelName, te.Table)
	if !ok {
		m.log.LogAttrs(context.Background(), slog.LevelWarn, "Dropping event for unmapped table",
			logger.Component("mux"),
			logger.Channel(channelName),
			logger.Table(te.Table),
		)
		return
	}

	m.dispatch(ChangeEvent{
		Category: category,
		Op:       te.Op,
		Before:   te.Before,
		After:    te.After,
	})
}

// dispatch fans an event out synchronously to every matching subscription.
// No ordering is guaranteed between subscribers. A panicking callback is
// logged and must never block the remaining subscribers.
func (m *Mux) dispatch(e ChangeEvent) {
	m.mu.Lock()
	matched := make([]*Subscription, 0, len(m.subs))
	for _, sub := range m.subs {
		if sub.category != e.Category {
			continue
		}
		if !sub.filter.matches(e) {
			continue
		}
		matched = append(matched, sub)
	}
	m.mu.Unlock()

	for _, sub := range matched {
		m.invoke(sub, e)
	}
}

func (m *Mux) invoke(sub *Subscription, e ChangeEvent) {
	defer func() {
		if r := recover(); r != nil {
			m.log.LogAttrs(context.Background(), slog.LevelError, "Subscriber callback panicked",
				logger.Component("mux"),
				logger.SubscriptionID(sub.id),
				logger.Category(sub.category),
				slog.Any("panic", r),
			)
		}
	}()
	sub.callback(e)
}

func (m *Mux) onChannelStatus(ch *muxChannel, status Status, err error) {
	switch status {
	case StatusSubscribed:
		m.mu.Lock()
		ch.healthy = true
		m.mu.Unlock()
	case StatusClosed, StatusError:
		m.mu.Lock()
		ch.healthy = false
		m.mu.Unlock()
		m.log.LogAttrs(context.Background(), slog.LevelWarn, "Realtime channel went down",
			logger.Component("mux"),
			logger.Channel(ch.name),
			slog.String("status", string(status)),
			logger.Error(err),
		)
	}
}

func (m *Mux) closeHandle(name string, handle TransportChannel) {
	if err := handle.Close(); err != nil {
		m.log.LogAttrs(context.Background(), slog.LevelWarn, "Failed to close transport channel",
			logger.Component("mux"),
			logger.Channel(name),
			logger.Error(err),
		)
	}
}
