package store

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/i474232898/road-trip-weather/internal/observability"
	"github.com/i474232898/road-trip-weather/internal/trip"
)

var (
	// ErrNotFound is returned when no session exists for a given id.
	ErrNotFound = errors.New("session not found")
)

// Session is one user's page-lifetime state.
type Session struct {
	ID           string
	CreatedAt    time.Time
	Orchestrator *trip.Orchestrator

	lastSeen time.Time
}

// MemoryStore is a concurrency-safe in-memory session registry.
// Nothing outlives the process.
type MemoryStore struct {
	mu sync.RWMutex

	// key: session id
	data map[string]*Session

	clock   clockwork.Clock
	idleTTL time.Duration // sessions untouched for longer are swept (0 = never)
	metrics *observability.Metrics
}

// NewMemoryStore creates a new MemoryStore.
// If idleTTL is <= 0, sessions never expire.
func NewMemoryStore(idleTTL time.Duration, clock clockwork.Clock, metrics *observability.Metrics) *MemoryStore {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &MemoryStore{
		data:    make(map[string]*Session),
		clock:   clock,
		idleTTL: idleTTL,
		metrics: metrics,
	}
}

// Create registers an orchestrator under a fresh session id.
func (s *MemoryStore) Create(o *trip.Orchestrator) *Session {
	now := s.clock.Now()
	sess := &Session{
		ID:           uuid.NewString(),
		CreatedAt:    now,
		Orchestrator: o,
		lastSeen:     now,
	}

	s.mu.Lock()
	s.data[sess.ID] = sess
	n := len(s.data)
	s.mu.Unlock()

	s.metrics.ActiveSessions.Set(float64(n))
	return sess
}

// Get returns the session and marks it as recently used.
func (s *MemoryStore) Get(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.data[id]
	if !ok {
		return nil, ErrNotFound
	}
	sess.lastSeen = s.clock.Now()
	return sess, nil
}

// Delete closes and forgets the session.
func (s *MemoryStore) Delete(id string) error {
	s.mu.Lock()
	sess, ok := s.data[id]
	if ok {
		delete(s.data, id)
	}
	n := len(s.data)
	s.mu.Unlock()

	if !ok {
		return ErrNotFound
	}
	sess.Orchestrator.Close()
	s.metrics.ActiveSessions.Set(float64(n))
	return nil
}

// Len returns the number of live sessions.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Sweep evicts sessions idle for longer than the TTL. Sessions with a batch
// in flight are kept until it settles. It returns the number evicted.
func (s *MemoryStore) Sweep() int {
	if s.idleTTL <= 0 {
		return 0
	}
	cutoff := s.clock.Now().Add(-s.idleTTL)

	var expired []*Session

	s.mu.Lock()
	for id, sess := range s.data {
		if sess.lastSeen.After(cutoff) || sess.Orchestrator.Loading() {
			continue
		}
		expired = append(expired, sess)
		delete(s.data, id)
	}
	n := len(s.data)
	s.mu.Unlock()

	for _, sess := range expired {
		sess.Orchestrator.Close()
	}
	s.metrics.ActiveSessions.Set(float64(n))
	s.metrics.SessionsExpired.Add(float64(len(expired)))
	return len(expired)
}
