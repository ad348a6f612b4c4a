package host

import "sync"

// Stream fans host events out to subscribers. Callbacks run on the
// publishing goroutine; subscribers must not block.
type Stream struct {
	mu   sync.RWMutex
	next int
	subs map[int]func(Event)
}

func NewStream() *Stream {
	return &Stream{subs: make(map[int]func(Event))}
}

// Subscribe registers fn and returns a cancel func. Cancel is idempotent.
func (s *Stream) Subscribe(fn func(Event)) func() {
	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

// Publish delivers ev to every subscriber in turn.
func (s *Stream) Publish(ev Event) {
	s.mu.RLock()
	fns := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// SubscriberCount reports the number of live subscriptions.
func (s *Stream) SubscriberCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}

// Bus is a topic-keyed publish/subscribe channel between the host's
// subsystems. Payload types are fixed per topic (see events.go).
type Bus struct {
	mu   sync.RWMutex
	next int
	subs map[string]map[int]func(any)
}

func NewBus() *Bus {
	return &Bus{subs: make(map[string]map[int]func(any))}
}

// Subscribe registers fn for topic and returns a cancel func.
func (b *Bus) Subscribe(topic string, fn func(any)) func() {
	b.mu.Lock()
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[int]func(any))
	}
	id := b.next
	b.next++
	b.subs[topic][id] = fn
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs[topic], id)
			b.mu.Unlock()
		})
	}
}

// Publish delivers payload to every subscriber of topic.
func (b *Bus) Publish(topic string, payload any) {
	b.mu.RLock()
	fns := make([]func(any), 0, len(b.subs[topic]))
	for _, fn := range b.subs[topic] {
		fns = append(fns, fn)
	}
	b.mu.RUnlock()

	for _, fn := range fns {
		fn(payload)
	}
}

// SubscriberCount reports live subscriptions for topic.
func (b *Bus) SubscriberCount(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[topic])
}
