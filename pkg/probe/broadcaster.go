package probe

import "sync"

// subscriptionBuffer is the channel depth of one subscription. Mechanisms
// block when a subscriber falls this far behind instead of dropping events.
const subscriptionBuffer = 512

// Broadcaster fans protocol events out to run-owned subscriptions. A
// subscription is acquired before a pass starts and released on every exit
// path, so repeated runs never leak handlers onto the shared mechanism.
type Broadcaster struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]*Subscription
}

// NewBroadcaster returns an empty Broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[int]*Subscription)}
}

// Subscription is one registered consumer. Events arrive on C until Close
// is called. Close is idempotent.
type Subscription struct {
	C chan Event

	id   int
	b    *Broadcaster
	done chan struct{}
	once sync.Once
}

// Subscribe registers a new subscription and returns its handle.
func (b *Broadcaster) Subscribe() *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	s := &Subscription{
		C:    make(chan Event, subscriptionBuffer),
		id:   b.nextID,
		b:    b,
		done: make(chan struct{}),
	}
	b.subs[s.id] = s
	return s
}

// Close unregisters the subscription. Events published afterwards are no
// longer delivered to it.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.b.mu.Lock()
		delete(s.b.subs, s.id)
		s.b.mu.Unlock()
		close(s.done)
	})
}

// Subscribers returns the number of active subscriptions.
func (b *Broadcaster) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Publish delivers the event to every active subscription. Delivery to a
// closed subscription is skipped.
func (b *Broadcaster) Publish(ev Event) {
	b.mu.RLock()
	subs := make([]*Subscription, 0, len(b.subs))
	for _, s := range b.subs {
		subs = append(subs, s)
	}
	b.mu.RUnlock()

	for _, s := range subs {
		select {
		case s.C <- ev:
		case <-s.done:
		}
	}
}

// PublishResponse publishes a KindResponse event for one target.
func (b *Broadcaster) PublishResponse(r Response) {
	b.Publish(Event{Kind: KindResponse, Response: &r})
}

// PublishComplete publishes the terminal KindComplete event.
func (b *Broadcaster) PublishComplete(report *Report) {
	b.Publish(Event{Kind: KindComplete, Report: report})
}

// PublishError publishes the terminal KindError event.
func (b *Broadcaster) PublishError(err error) {
	b.Publish(Event{Kind: KindError, Err: err})
}
