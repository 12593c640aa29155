package backend

import (
	"context"
	"errors"
	"sync"

	"scanview/internal/domain"
)

// ErrNotFound keeps store-level 404s consistent across implementations.
var ErrNotFound = errors.New("record not found")

// Stores are interface-driven so the handlers stay testable and a future
// persistent implementation can slot in without rewiring them.
type UserStore interface {
	Save(ctx context.Context, user User) error
	FindByID(ctx context.Context, id string) (User, error)
	FindByEmail(ctx context.Context, email string) (User, error)
}

type ReportStore interface {
	Append(ctx context.Context, userID string, report domain.Report) error
	ListByUser(ctx context.Context, userID string) ([]domain.Report, error)
}

// In-memory stores keep the development backend dependency-free. They
// intentionally favor clarity over performance.
type InMemoryUserStore struct {
	mu    sync.RWMutex
	users map[string]User
}

func NewInMemoryUserStore() *InMemoryUserStore {
	return &InMemoryUserStore{users: make(map[string]User)}
}

func (s *InMemoryUserStore) Save(_ context.Context, user User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = user
	return nil
}

func (s *InMemoryUserStore) FindByID(_ context.Context, id string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if user, ok := s.users[id]; ok {
		return user, nil
	}
	return User{}, ErrNotFound
}

func (s *InMemoryUserStore) FindByEmail(_ context.Context, email string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return User{}, ErrNotFound
}

type InMemoryReportStore struct {
	mu      sync.RWMutex
	reports map[string][]domain.Report
}

func NewInMemoryReportStore() *InMemoryReportStore {
	return &InMemoryReportStore{reports: make(map[string][]domain.Report)}
}

func (s *InMemoryReportStore) Append(_ context.Context, userID string, report domain.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[userID] = append(s.reports[userID], report)
	return nil
}

func (s *InMemoryReportStore) ListByUser(_ context.Context, userID string) ([]domain.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Report, len(s.reports[userID]))
	copy(out, s.reports[userID])
	return out, nil
}
