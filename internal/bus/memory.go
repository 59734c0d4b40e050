package bus

import (
	"fmt"
	"log/slog"
	"sync"
)

// MemoryBus is an in-process bus for tests and local runs. Publish
// dispatches to every subscribed handler in subscription order before
// returning. A publish made from inside a handler is queued and
// delivered after that handler returns, the way a queued transport
// would, so a handler chain never re-enters itself while holding job
// locks. A handler error or panic is logged and does not stop fan-out.
type MemoryBus struct {
	mu       sync.Mutex
	handlers map[string][]Handler
	queue    []delivery
	draining bool
}

type delivery struct {
	topic string
	body  []byte
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{handlers: make(map[string][]Handler)}
}

func (b *MemoryBus) Publish(topic string, body []byte) error {
	b.mu.Lock()
	b.queue = append(b.queue, delivery{topic: topic, body: body})
	if b.draining {
		// A drain loop further up the stack will deliver this.
		b.mu.Unlock()
		return nil
	}
	b.draining = true
	b.mu.Unlock()

	for {
		b.mu.Lock()
		if len(b.queue) == 0 {
			b.draining = false
			b.mu.Unlock()
			return nil
		}
		d := b.queue[0]
		b.queue = b.queue[1:]
		handlers := append([]Handler(nil), b.handlers[d.topic]...)
		b.mu.Unlock()

		for _, h := range handlers {
			b.dispatch(d.topic, h, d.body)
		}
	}
}

func (b *MemoryBus) dispatch(topic string, h Handler, body []byte) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("handler panic", "topic", topic, "panic", fmt.Sprint(r))
		}
	}()
	if err := h(body); err != nil {
		slog.Error("handler error", "topic", topic, "error", err)
	}
}

func (b *MemoryBus) Subscribe(topic string, h Handler) error {
	b.mu.Lock()
	b.handlers[topic] = append(b.handlers[topic], h)
	b.mu.Unlock()
	return nil
}
