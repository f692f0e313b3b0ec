package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

const subscriberBuffer = 8

// Broadcaster fans values out to in-process subscribers. Slow subscribers miss
// values rather than block the publisher.
type Broadcaster[T any] struct {
	mu     sync.RWMutex
	subs   map[int]chan T
	next   int
	closed bool
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster[T any]() *Broadcaster[T] {
	return &Broadcaster[T]{subs: make(map[int]chan T)}
}

// Publish delivers value to every subscriber with buffer room.
func (b *Broadcaster[T]) Publish(value T) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- value:
		default:
		}
	}
}

// Subscribe returns a channel of values and a cancel func. Subscribing to a closed
// broadcaster returns a closed channel.
func (b *Broadcaster[T]) Subscribe() (<-chan T, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan T, subscriberBuffer)
	if b.closed {
		close(ch)
		return ch, func() {}
	}
	id := b.next
	b.next++
	b.subs[id] = ch
	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Subscribers reports the number of active subscriptions.
func (b *Broadcaster[T]) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close ends every subscription.
func (b *Broadcaster[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}

// CommandBus carries chrome commands for one dashboard session. Each subscriber
// owns an unbounded FIFO queue; commands are never dropped.
type CommandBus struct {
	mu     sync.Mutex
	subs   map[int]*commandQueue
	next   int
	closed bool
}

// NewCommandBus creates a session command bus.
func NewCommandBus() *CommandBus {
	return &CommandBus{subs: make(map[int]*commandQueue)}
}

// Publish enqueues cmd for every subscriber. It never blocks.
func (b *CommandBus) Publish(cmd LayoutCommand) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, q := range b.subs {
		q.push(cmd)
	}
}

// Subscribe returns a channel of commands and a cancel func. Subscribing to a
// closed bus returns a closed channel.
func (b *CommandBus) Subscribe() (<-chan LayoutCommand, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		ch := make(chan LayoutCommand)
		close(ch)
		return ch, func() {}
	}
	q := newCommandQueue()
	id := b.next
	b.next++
	b.subs[id] = q
	go q.run()
	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			sub.stop()
		}
	}
	return q.out, cancel
}

// Subscribers reports the number of active subscriptions.
func (b *CommandBus) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Close ends every subscription. Queued commands are discarded.
func (b *CommandBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, q := range b.subs {
		delete(b.subs, id)
		q.stop()
	}
}

type commandQueue struct {
	mu      sync.Mutex
	pending []LayoutCommand
	wake    chan struct{}
	done    chan struct{}
	once    sync.Once
	out     chan LayoutCommand
}

func newCommandQueue() *commandQueue {
	return &commandQueue{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
		out:  make(chan LayoutCommand),
	}
}

func (q *commandQueue) push(cmd LayoutCommand) {
	q.mu.Lock()
	q.pending = append(q.pending, cmd)
	q.mu.Unlock()
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *commandQueue) stop() {
	q.once.Do(func() { close(q.done) })
}

// run moves queued commands to out one at a time until stop.
func (q *commandQueue) run() {
	defer close(q.out)
	for {
		q.mu.Lock()
		if len(q.pending) == 0 {
			q.mu.Unlock()
			select {
			case <-q.wake:
				continue
			case <-q.done:
				return
			}
		}
		cmd := q.pending[0]
		q.pending = q.pending[1:]
		q.mu.Unlock()
		select {
		case q.out <- cmd:
		case <-q.done:
			return
		}
	}
}

// EventBroadcaster is an EventHook that streams coordinator events to subscribers.
type EventBroadcaster struct {
	*Broadcaster[DashboardEvent]
}

var _ EventHook = (*EventBroadcaster)(nil)

// NewEventBroadcaster creates an event broadcaster.
func NewEventBroadcaster() *EventBroadcaster {
	return &EventBroadcaster{Broadcaster: NewBroadcaster[DashboardEvent]()}
}

// DashboardUpdated broadcasts the event.
func (h *EventBroadcaster) DashboardUpdated(_ context.Context, event DashboardEvent) error {
	h.Publish(event)
	return nil
}

// EventSink is the minimal writer a streaming transport needs.
type EventSink interface {
	WriteJSON(v any) error
}

// Stream writes events to sink until ctx ends, the subscription closes or a write
// fails. When session is non-empty only that session's events are forwarded.
func (h *EventBroadcaster) Stream(ctx context.Context, sink EventSink, session string) error {
	events, cancel := h.Subscribe()
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}
			if session != "" && event.SessionID != session {
				continue
			}
			if err := sink.WriteJSON(event); err != nil {
				return err
			}
		}
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket upgrades the request and streams events as JSON. The optional
// session query parameter filters events.
func (h *EventBroadcaster) ServeWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	_ = h.Stream(r.Context(), conn, r.URL.Query().Get("session"))
}

// ServeSSE provides a Server-Sent Events endpoint for coordinator events.
func (h *EventBroadcaster) ServeSSE(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	_ = h.Stream(r.Context(), &sseSink{w: w}, r.URL.Query().Get("session"))
}

type sseSink struct {
	w http.ResponseWriter
}

func (s *sseSink) WriteJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := s.w.Write(append(append([]byte("data: "), data...), '\n', '\n')); err != nil {
		return err
	}
	if flusher, ok := s.w.(http.Flusher); ok {
		flusher.Flush()
	}
	return nil
}
