package coordinator

import (
	"sync"

	"github.com/autopeer-io/qrlookup/internal/lookup/core"
)

// Broadcaster fans events out to every active subscription. Publish never
// blocks: each subscription owns an unbounded queue drained by its own
// goroutine, so a slow subscriber only delays itself.
type Broadcaster struct {
	mu     sync.Mutex
	subs   map[*Subscription]struct{}
	closed bool
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[*Subscription]struct{})}
}

// Subscribe registers a new subscription whose channel has the given buffer
// size. Only events published after Subscribe returns are delivered.
func (b *Broadcaster) Subscribe(buffer int) *Subscription {
	if buffer < 0 {
		buffer = 0
	}

	s := &Subscription{
		b:      b,
		ch:     make(chan core.Event, buffer),
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		s.once.Do(func() { close(s.done) })
		close(s.ch)
		return s
	}
	b.subs[s] = struct{}{}
	b.mu.Unlock()

	go s.pump()
	return s
}

// SubscribeFunc calls fn for every event on a dedicated goroutine, in order.
// The returned function unsubscribes.
func (b *Broadcaster) SubscribeFunc(fn func(core.Event)) (unsubscribe func()) {
	s := b.Subscribe(0)
	go func() {
		for e := range s.Events() {
			fn(e)
		}
	}()
	return s.Close
}

// Publish queues e on every current subscription.
func (b *Broadcaster) Publish(e core.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for s := range b.subs {
		s.enqueue(e)
	}
}

// Len returns the number of active subscriptions.
func (b *Broadcaster) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Close ends every subscription. Events still queued are delivered first and
// the subscription channels are closed afterwards.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	subs := b.subs
	b.subs = make(map[*Subscription]struct{})
	b.mu.Unlock()

	for s := range subs {
		s.finish()
	}
}

func (b *Broadcaster) remove(s *Subscription) {
	b.mu.Lock()
	delete(b.subs, s)
	b.mu.Unlock()
}

// Subscription is one listener of a Broadcaster.
type Subscription struct {
	b  *Broadcaster
	ch chan core.Event

	mu    sync.Mutex
	queue []core.Event
	// draining is set by Broadcaster.Close: deliver what is queued, then stop.
	draining bool

	notify chan struct{}
	done   chan struct{}
	once   sync.Once
}

// Events returns the delivery channel. It is closed after Close.
func (s *Subscription) Events() <-chan core.Event {
	return s.ch
}

// Close unsubscribes. Undelivered events are dropped. Safe to call more than once.
func (s *Subscription) Close() {
	s.b.remove(s)
	s.once.Do(func() { close(s.done) })
}

func (s *Subscription) finish() {
	s.mu.Lock()
	s.draining = true
	s.mu.Unlock()
	s.signal()
}

func (s *Subscription) enqueue(e core.Event) {
	s.mu.Lock()
	s.queue = append(s.queue, e)
	s.mu.Unlock()
	s.signal()
}

func (s *Subscription) signal() {
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

func (s *Subscription) next() (core.Event, bool, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.queue) == 0 {
		return core.Event{}, false, s.draining
	}
	e := s.queue[0]
	s.queue[0] = core.Event{}
	s.queue = s.queue[1:]
	return e, true, false
}

func (s *Subscription) pump() {
	defer close(s.ch)

	for {
		e, ok, drained := s.next()
		if drained {
			return
		}
		if !ok {
			select {
			case <-s.notify:
				continue
			case <-s.done:
				return
			}
		}

		select {
		case s.ch <- e:
		case <-s.done:
			return
		}
	}
}
