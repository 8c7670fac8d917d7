package scheduler

import (
	"errors"
	"slices"
	"sync"
	"time"
)

// Store errors.
var (
	// ErrCapacityExceeded is returned by Insert when the store is full.
	ErrCapacityExceeded = errors.New("too many timers running")

	// ErrTimerNotFound is returned by RemoveByID when no timer has the id.
	ErrTimerNotFound = errors.New("timer doesn't exist")
)

// Store is a bounded list of Timers ordered by ExpiresAt, earliest first.
// Timers with equal deadlines keep their insertion order.
//
// Every mutation signals the channel returned by Wake so a waiting loop can
// re-evaluate its deadline.
type Store struct {
	mu       sync.Mutex
	timers   []Timer
	capacity int
	wake     chan struct{}
}

// NewStore returns an empty store holding at most capacity timers.
func NewStore(capacity int) *Store {
	if capacity < 1 {
		capacity = DefaultMaxTimers
	}
	return &Store{
		timers:   make([]Timer, 0, capacity),
		capacity: capacity,
		wake:     make(chan struct{}, 1),
	}
}

// Wake returns the channel signalled after every insert or removal.
// A signal sent while nobody waits stays pending until it is received.
func (s *Store) Wake() <-chan struct{} {
	return s.wake
}

func (s *Store) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Capacity returns the maximum number of timers.
func (s *Store) Capacity() int {
	return s.capacity
}

// Len returns the number of live timers.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Insert adds t and restores expiry order. It fails with ErrCapacityExceeded
// and leaves the store untouched when the store is full.
func (s *Store) Insert(t Timer) error {
	s.mu.Lock()
	if len(s.timers) >= s.capacity {
		s.mu.Unlock()
		return ErrCapacityExceeded
	}
	s.timers = append(s.timers, t)
	slices.SortStableFunc(s.timers, func(a, b Timer) int {
		return a.ExpiresAt.Compare(b.ExpiresAt)
	})
	s.mu.Unlock()
	s.signal()
	return nil
}

// RemoveByID removes the first timer with the given id and returns it.
func (s *Store) RemoveByID(id uint64) (Timer, error) {
	s.mu.Lock()
	for i, t := range s.timers {
		if t.ID == id {
			s.timers = slices.Delete(s.timers, i, i+1)
			s.mu.Unlock()
			s.signal()
			return t, nil
		}
	}
	s.mu.Unlock()
	return Timer{}, ErrTimerNotFound
}

// Peek returns the earliest timer without removing it.
func (s *Store) Peek() (Timer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.timers) == 0 {
		return Timer{}, false
	}
	return s.timers[0], true
}

// PopIfExpired removes and returns the earliest timer if it has run out at now.
func (s *Store) PopIfExpired(now time.Time) (Timer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.timers) == 0 || !s.timers[0].RanOut(now) {
		return Timer{}, false
	}
	t := s.timers[0]
	s.timers = slices.Delete(s.timers, 0, 1)
	return t, true
}

// List returns a copy of all timers in expiry order.
func (s *Store) List() []Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.timers)
}
