package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/pintpoint/realtimekit/pkg/logger"
)

// topicPrefix namespaces change-stream topics in the shared Redis keyspace.
const topicPrefix = "cdc."

// wireEvent is the JSON envelope published per row-level change.
type wireEvent struct {
	Table  string `json:"table"`
	Op     Op     `json:"op"`
	Before Row    `json:"before,omitempty"`
	After  Row    `json:"after,omitempty"`
}

// PublishChange publishes a row-level change to the table's change-stream
// topic. Used by the side of the system that bridges database changes into
// Redis; tests use it to simulate the stream.
func PublishChange(ctx context.Context, client redis.UniversalClient, table string, op Op, before, after Row) error {
	payload, err := json.Marshal(wireEvent{
		Table:  table,
		Op:     op,
		Before: before,
		After:  after,
	})
	if err != nil {
		return fmt.Errorf("marshal change event: %w", err)
	}
	if err := client.Publish(ctx, topicPrefix+table, payload).Err(); err != nil {
		return fmt.Errorf("publish change event: %w", err)
	}
	return nil
}

// RedisTransport implements Transport over Redis pub/sub. Each physical
// channel is one PubSub connection subscribed to the topics of its tables.
type RedisTransport struct {
	client redis.UniversalClient
	log    *slog.Logger
}

// RedisTransportOption configures a RedisTransport.
type RedisTransportOption func(*RedisTransport)

// WithRedisLogger sets the logger for the transport.
func WithRedisLogger(log *slog.Logger) RedisTransportOption {
	return func(t *RedisTransport) {
		if log != nil {
			t.log = log
		}
	}
}

// NewRedisTransport creates a Redis-backed change-stream transport.
func NewRedisTransport(client redis.UniversalClient, opts ...RedisTransportOption) *RedisTransport {
	t := &RedisTransport{
		client: client,
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *RedisTransport) OpenChannel(ctx context.Context, name string) (TransportChannel, error) {
	// Subscribe with no topics yet; OnTableChange adds them before the
	// channel goes live.
	ps := t.client.Subscribe(ctx)

	return &redisChannel{
		transport: t,
		name:      name,
		ps:        ps,
		handlers:  make(map[string][]TableHandler),
	}, nil
}

type redisChannel struct {
	transport *RedisTransport
	name      string
	ps        *redis.PubSub

	mu       sync.Mutex
	handlers map[string][]TableHandler
	status   []StatusFunc
	started  bool
	closed   bool
}

func (c *redisChannel) OnTableChange(ctx context.Context, table string, h TableHandler) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrChannelClosed
	}

	if err := c.ps.Subscribe(ctx, topicPrefix+table); err != nil {
		return fmt.Errorf("subscribe to table topic %q: %w", table, err)
	}
	c.handlers[table] = append(c.handlers[table], h)
	return nil
}

func (c *redisChannel) Subscribe(ctx context.Context, status StatusFunc) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrChannelClosed
	}
	if status != nil {
		c.status = append(c.status, status)
	}
	start := !c.started
	c.started = true
	c.mu.Unlock()

	if start {
		go c.readLoop()
	}
	if status != nil {
		status(StatusSubscribed, nil)
	}
	return nil
}

func (c *redisChannel) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	// Closing the PubSub terminates the read loop.
	return c.ps.Close()
}

// readLoop consumes the PubSub message stream until the channel is closed.
// Malformed payloads are logged and skipped; a closed stream is reported to
// status callbacks so the multiplexer's health check can recreate the
// channel from scratch.
func (c *redisChannel) readLoop() {
	for msg := range c.ps.Channel() {
		var we wireEvent
		if err := json.Unmarshal([]byte(msg.Payload), &we); err != nil {
			c.transport.log.LogAttrs(context.Background(), slog.LevelWarn, "Dropping malformed change event",
				logger.Component("redis_transport"),
				logger.Channel(c.name),
				slog.String("topic", msg.Channel),
				logger.Error(err),
			)
			continue
		}

		c.mu.Lock()
		handlers := make([]TableHandler, len(c.handlers[we.Table]))
		copy(handlers, c.handlers[we.Table])
		c.mu.Unlock()

		te := TableEvent{Table: we.Table, Op: we.Op, Before: we.Before, After: we.After}
		for _, h := range handlers {
			h(te)
		}
	}

	c.mu.Lock()
	deliberate := c.closed
	fns := make([]StatusFunc, len(c.status))
	copy(fns, c.status)
	c.mu.Unlock()

	status := StatusClosed
	if !deliberate {
		status = StatusError
	}
	for _, fn := range fns {
		fn(status, nil)
	}
}
