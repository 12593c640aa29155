// Package session owns the client's authentication state: one Session record
// held in memory as the source of truth and mirrored into a durable file so
// it survives restarts and is visible to other scanview processes sharing the
// same state directory.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"scanview/internal/domain"
)

// ErrInvalidSession rejects Set calls that carry no credential token. A
// session without a token is not a valid authenticated state; logout is
// expressed with Clear.
var ErrInvalidSession = errors.New("session has no credential token")

// Session is the client's record of current authentication state. Only the
// presence of Token decides whether the user counts as authenticated; the
// cached Identity exists for display and may be stale.
type Session struct {
	Token    string           `json:"token"`
	Identity *domain.Identity `json:"identity,omitempty"`
}

func (s *Session) clone() *Session {
	if s == nil {
		return nil
	}
	out := &Session{Token: s.Token}
	if s.Identity != nil {
		id := *s.Identity
		out.Identity = &id
	}
	return out
}

// Equal reports whether two session values describe the same durable state.
func (s *Session) Equal(other *Session) bool {
	if s == nil || other == nil {
		return s == nil && other == nil
	}
	if s.Token != other.Token {
		return false
	}
	if (s.Identity == nil) != (other.Identity == nil) {
		return false
	}
	return s.Identity == nil || *s.Identity == *other.Identity
}

// Store is the single authoritative holder of the Session. All consumers
// (route guard, gateway, views) read through it; only the store itself writes
// the durable record.
type Store struct {
	mu        sync.Mutex
	current   *Session
	listeners map[int]func(*Session)
	nextID    int
	file      *File
	logger    *slog.Logger
}

// NewStore builds a store backed by the given durable file and primes the
// in-memory session from whatever the file already holds. A missing or
// unreadable file starts the store logged out.
func NewStore(file *File, logger *slog.Logger) *Store {
	st := &Store{
		listeners: make(map[int]func(*Session)),
		file:      file,
		logger:    logger,
	}
	if file != nil {
		loaded, err := file.Load()
		if err != nil {
			logger.Warn("ignoring unreadable session file", "path", file.Path(), "error", err)
		} else {
			st.current = loaded
		}
	}
	return st
}

// Current returns a copy of the held session, or nil when logged out.
func (s *Store) Current() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.clone()
}

// Set installs a new authenticated session and persists it. Listeners fire
// only when the call flips the authenticated boundary; refreshing the cached
// identity of an already authenticated session stays silent.
func (s *Store) Set(sess Session) error {
	if sess.Token == "" {
		return ErrInvalidSession
	}

	s.mu.Lock()
	wasAuthed := s.current != nil
	s.current = sess.clone()
	notify := s.boundaryListeners(!wasAuthed)
	var persistErr error
	if s.file != nil {
		persistErr = s.file.Save(s.current)
	}
	snapshot := s.current.clone()
	s.mu.Unlock()

	for _, fn := range notify {
		fn(snapshot)
	}
	if persistErr != nil {
		return fmt.Errorf("persist session: %w", persistErr)
	}
	return nil
}

// Clear drops the session and removes the durable record. Calling it while
// already logged out is a no-op.
func (s *Store) Clear() error {
	s.mu.Lock()
	wasAuthed := s.current != nil
	s.current = nil
	notify := s.boundaryListeners(wasAuthed)
	var persistErr error
	if s.file != nil {
		persistErr = s.file.Remove()
	}
	s.mu.Unlock()

	for _, fn := range notify {
		fn(nil)
	}
	if persistErr != nil {
		return fmt.Errorf("remove durable session: %w", persistErr)
	}
	return nil
}

// Reconcile adopts a session value observed in the durable store by another
// process. It updates memory and notifies boundary listeners but never writes
// the file back, keeping cross-process reconciliation one-directional.
func (s *Store) Reconcile(latest *Session) {
	s.mu.Lock()
	if s.current.Equal(latest) {
		s.mu.Unlock()
		return
	}
	wasAuthed := s.current != nil
	s.current = latest.clone()
	notify := s.boundaryListeners(wasAuthed != (latest != nil))
	snapshot := s.current.clone()
	s.mu.Unlock()

	for _, fn := range notify {
		fn(snapshot)
	}
}

// OnChange registers a listener invoked synchronously whenever Set, Clear or
// Reconcile flips the authenticated boundary. The returned function removes
// the listener.
func (s *Store) OnChange(fn func(*Session)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// boundaryListeners snapshots the listener set when crossed is true. Caller
// must hold the lock.
func (s *Store) boundaryListeners(crossed bool) []func(*Session) {
	if !crossed {
		return nil
	}
	out := make([]func(*Session), 0, len(s.listeners))
	for _, fn := range s.listeners {
		out = append(out, fn)
	}
	return out
}
