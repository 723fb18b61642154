package realtime

import (
	"context"
	"sync"
)

// MemoryTransport is an in-process Transport implementation. Suitable for
// development and testing; events are delivered synchronously on the
// caller's goroutine via Emit.
type MemoryTransport struct {
	mu       sync.Mutex
	channels []*memoryChannel
	openErr  error
	opened   int
}

// NewMemoryTransport creates a new in-memory transport.
func NewMemoryTransport() *MemoryTransport {
	return &MemoryTransport{}
}

// FailNextOpen makes the next OpenChannel call fail with err.
func (t *MemoryTransport) FailNextOpen(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.openErr = err
}

func (t *MemoryTransport) OpenChannel(ctx context.Context, name string) (TransportChannel, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.openErr != nil {
		err := t.openErr
		t.openErr = nil
		return nil, err
	}

	ch := &memoryChannel{
		transport: t,
		name:      name,
		handlers:  make(map[string][]TableHandler),
	}
	t.channels = append(t.channels, ch)
	t.opened++
	return ch, nil
}

// Emit delivers a table event to every open channel listening on the table.
func (t *MemoryTransport) Emit(te TableEvent) {
	t.mu.Lock()
	channels := make([]*memoryChannel, len(t.channels))
	copy(channels, t.channels)
	t.mu.Unlock()

	for _, ch := range channels {
		ch.deliver(te)
	}
}

// Disconnect reports a transport-level failure on every open channel
// without closing them, as a broken connection would.
func (t *MemoryTransport) Disconnect(err error) {
	t.mu.Lock()
	channels := make([]*memoryChannel, len(t.channels))
	copy(channels, t.channels)
	t.mu.Unlock()

	for _, ch := range channels {
		ch.reportStatus(StatusError, err)
	}
}

// OpenChannelCount returns the number of currently open channels.
func (t *MemoryTransport) OpenChannelCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.channels)
}

// TotalOpened returns how many channels were ever opened.
func (t *MemoryTransport) TotalOpened() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.opened
}

func (t *MemoryTransport) remove(ch *memoryChannel) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i, c := range t.channels {
		if c == ch {
			t.channels = append(t.channels[:i], t.channels[i+1:]...)
			return
		}
	}
}

type memoryChannel struct {
	transport *MemoryTransport
	name      string

	mu       sync.Mutex
	handlers map[string][]TableHandler
	status   []StatusFunc
	closed   bool
}

func (c *memoryChannel) OnTableChange(ctx context.Context, table string, h TableHandler) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrChannelClosed
	}
	c.handlers[table] = append(c.handlers[table], h)
	return nil
}

func (c *memoryChannel) Subscribe(ctx context.Context, status StatusFunc) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrChannelClosed
	}
	c.status = append(c.status, status)
	c.mu.Unlock()

	status(StatusSubscribed, nil)
	return nil
}

func (c *memoryChannel) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.transport.remove(c)
	return nil
}

func (c *memoryChannel) deliver(te TableEvent) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	handlers := make([]TableHandler, len(c.handlers[te.Table]))
	copy(handlers, c.handlers[te.Table])
	c.mu.Unlock()

	for _, h := range handlers {
		h(te)
	}
}

func (c *memoryChannel) reportStatus(status Status, err error) {
	c.mu.Lock()
	fns := make([]StatusFunc, len(c.status))
	copy(fns, c.status)
	c.mu.Unlock()

	for _, fn := range fns {
		fn(status, err)
	}
}
