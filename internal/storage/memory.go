package storage

import (
	"context"
	"sync"

	"github.com/Doremi203/LeetCodeBot/internal/domain"
)

// MemoryUsers is a mutex-guarded in-memory Users implementation for tests and
// local development. It mirrors the coalesce semantics of the Postgres store.
type MemoryUsers struct {
	mu    sync.RWMutex
	users map[int64]domain.User
}

// NewMemoryUsers constructs an empty in-memory profile store.
func NewMemoryUsers() *MemoryUsers {
	return &MemoryUsers{users: make(map[int64]domain.User)}
}

// Create inserts a new profile.
func (s *MemoryUsers) Create(_ context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = user
	return nil
}

// Get returns the profile or domain.ErrUserNotFound.
func (s *MemoryUsers) Get(_ context.Context, id int64) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return user, nil
}

// Update applies only the set fields of the update.
func (s *MemoryUsers) Update(_ context.Context, upd domain.UserUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[upd.ID]
	if !ok {
		return domain.ErrUserNotFound
	}
	if upd.State != nil {
		user.State = *upd.State
	}
	if upd.Difficulty != nil {
		user.Difficulty = *upd.Difficulty
	}
	if upd.TimeSlot != nil {
		user.TimeSlot = *upd.TimeSlot
	}
	if upd.Premium != nil {
		user.Premium = *upd.Premium
	}
	s.users[upd.ID] = user
	return nil
}

// Delete removes the profile if present.
func (s *MemoryUsers) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
	return nil
}

// ListByTimeSlot returns registered profiles with the given notification slot.
func (s *MemoryUsers) ListByTimeSlot(_ context.Context, slot domain.TimeSlot) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.User
	for _, user := range s.users {
		if user.TimeSlot == slot && user.State == domain.StateRegistered {
			out = append(out, user)
		}
	}
	return out, nil
}

// MemorySolved is the in-memory ledger twin, deduplicating on (user, problem).
type MemorySolved struct {
	mu      sync.RWMutex
	records map[int64]map[int]domain.SolvedRecord
}

// NewMemorySolved constructs an empty in-memory ledger.
func NewMemorySolved() *MemorySolved {
	return &MemorySolved{records: make(map[int64]map[int]domain.SolvedRecord)}
}

// Add appends a record unless the (user, problem) pair already exists.
func (s *MemorySolved) Add(_ context.Context, rec domain.SolvedRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	byProblem, ok := s.records[rec.UserID]
	if !ok {
		byProblem = make(map[int]domain.SolvedRecord)
		s.records[rec.UserID] = byProblem
	}
	if _, exists := byProblem[rec.ProblemID]; exists {
		return nil
	}
	byProblem[rec.ProblemID] = rec
	return nil
}

// ProblemIDs returns the acknowledged problem ids for the user.
func (s *MemorySolved) ProblemIDs(_ context.Context, userID int64) (map[int]struct{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set := make(map[int]struct{}, len(s.records[userID]))
	for id := range s.records[userID] {
		set[id] = struct{}{}
	}
	return set, nil
}
