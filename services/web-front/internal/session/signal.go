package session

import (
	"sync"
	"time"
)

// Reasons an expiry was signalled.
const (
	ReasonUnauthorized = "unauthorized"
	ReasonExpired      = "expired"
	ReasonInvalid      = "invalid"
	ReasonRefreshFail  = "refresh_failed"
)

type ExpiryEvent struct {
	Reason string
	Path   string
	At     time.Time
}

// ExpirySignal is the observable the transport and the monitor publish to
// when a session ends. Subscribers run synchronously in Publish.
type ExpirySignal struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func(ExpiryEvent)
}

func NewExpirySignal() *ExpirySignal {
	return &ExpirySignal{subs: make(map[int]func(ExpiryEvent))}
}

// Subscribe registers fn and returns the function that removes it.
func (s *ExpirySignal) Subscribe(fn func(ExpiryEvent)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
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

func (s *ExpirySignal) Publish(ev ExpiryEvent) {
	s.mu.Lock()
	fns := make([]func(ExpiryEvent), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}

func (s *ExpirySignal) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}
