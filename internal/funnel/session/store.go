// Package session provides the in-memory funnel session store. Sessions
// are visit-scoped and never shared across instances, so there is no
// external backing store; expiry is handled by a sweeper goroutine.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"noticedesk_backend/internal/funnel/domain"
	"noticedesk_backend/platform/apperr"
	"noticedesk_backend/platform/logger"
)

const (
	sessionNotFoundMessage = "session not found"
	sessionExpiredMessage  = "session expired, please start over"

	sweepInterval = 1 * time.Minute
)

type entry struct {
	mu        sync.Mutex
	session   domain.FormSession
	expiresAt time.Time
}

// Store holds live funnel sessions with a fixed TTL.
type Store struct {
	mu       sync.RWMutex
	entries  map[uuid.UUID]*entry
	ttl      time.Duration
	now      func() time.Time
	log      *logger.Logger
	onExpire func(domain.FormSession)
}

// NewStore creates a session store with the given TTL.
func NewStore(ttl time.Duration, log *logger.Logger) *Store {
	return &Store{
		entries: make(map[uuid.UUID]*entry),
		ttl:     ttl,
		now:     time.Now,
		log:     log,
	}
}

// OnExpire registers a callback invoked with each expired session after
// removal. Set it before any sessions are stored; it runs outside the
// store locks.
func (s *Store) OnExpire(fn func(domain.FormSession)) {
	s.onExpire = fn
}

// Put stores a freshly created session.
func (s *Store) Put(session domain.FormSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[session.ID] = &entry{
		session:   session,
		expiresAt: s.now().Add(s.ttl),
	}
}

// Get returns a copy of the session.
func (s *Store) Get(id uuid.UUID) (domain.FormSession, error) {
	ent, err := s.lookup(id)
	if err != nil {
		return domain.FormSession{}, err
	}

	ent.mu.Lock()
	defer ent.mu.Unlock()
	return ent.session, nil
}

// Update applies fn to the session atomically. fn receives a copy; the
// returned value replaces the stored session only when fn succeeds. The
// per-session lock makes this the mutual-exclusion point for all funnel
// transitions, including the in-flight-order guard.
func (s *Store) Update(id uuid.UUID, fn func(domain.FormSession) (domain.FormSession, error)) (domain.FormSession, error) {
	ent, err := s.lookup(id)
	if err != nil {
		return domain.FormSession{}, err
	}

	ent.mu.Lock()
	defer ent.mu.Unlock()

	next, err := fn(ent.session)
	if err != nil {
		return ent.session, err
	}
	next.UpdatedAt = s.now()
	ent.session = next
	ent.expiresAt = s.now().Add(s.ttl)
	return next, nil
}

// Delete removes a session.
func (s *Store) Delete(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *Store) lookup(id uuid.UUID) (*entry, error) {
	s.mu.RLock()
	ent, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok {
		return nil, apperr.NotFound(sessionNotFoundMessage)
	}

	if s.now().After(ent.expiresAt) {
		s.mu.Lock()
		delete(s.entries, id)
		s.mu.Unlock()
		if s.onExpire != nil {
			s.onExpire(ent.session)
		}
		return nil, apperr.Gone(sessionExpiredMessage)
	}
	return ent, nil
}

// StartSweeper runs expiry sweeps until the context is cancelled.
func (s *Store) StartSweeper(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweep()
			}
		}
	}()
}

func (s *Store) sweep() {
	now := s.now()

	var expired []domain.FormSession
	s.mu.Lock()
	for id, ent := range s.entries {
		if now.After(ent.expiresAt) {
			delete(s.entries, id)
			expired = append(expired, ent.session)
		}
	}
	remaining := len(s.entries)
	s.mu.Unlock()

	if len(expired) == 0 {
		return
	}
	s.log.Debug("expired funnel sessions removed", "count", len(expired), "remaining", remaining)
	if s.onExpire != nil {
		for _, sess := range expired {
			s.onExpire(sess)
		}
	}
}
