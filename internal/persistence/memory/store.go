// Package memory provides an in-process activity store for tests and local development.
package memory

import (
	"context"
	"slices"
	"sort"
	"sync"

	"example.com/extracurricular/internal/domain"
)

var _ domain.ActivityRepository = (*Store)(nil)

// Store keeps activities in a map guarded by a RWMutex. Values are cloned on
// the way in and out so callers never share roster slices with the store.
type Store struct {
	mu         sync.RWMutex
	activities map[string]domain.Activity
}

// NewStore constructs an empty Store.
func NewStore() *Store {
	return &Store{activities: make(map[string]domain.Activity)}
}

// Count implements domain.ActivityRepository.
func (s *Store) Count(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.activities)), nil
}

// Insert implements domain.ActivityRepository.
func (s *Store) Insert(ctx context.Context, activity domain.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.activities[activity.Name]; exists {
		return domain.ErrDuplicateKey
	}
	s.activities[activity.Name] = activity.Clone()
	return nil
}

// Get implements domain.ActivityRepository.
func (s *Store) Get(ctx context.Context, name string) (*domain.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	activity, ok := s.activities[name]
	if !ok {
		return nil, nil
	}
	cp := activity.Clone()
	return &cp, nil
}

// ListAll implements domain.ActivityRepository.
func (s *Store) ListAll(ctx context.Context) ([]domain.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Activity, 0, len(s.activities))
	for _, activity := range s.activities {
		out = append(out, activity.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// AppendParticipant implements domain.ActivityRepository.
func (s *Store) AppendParticipant(ctx context.Context, name, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	activity, ok := s.activities[name]
	if !ok || activity.HasParticipant(email) {
		return false, nil
	}
	activity.Participants = append(activity.Participants, email)
	s.activities[name] = activity
	return true, nil
}

// RemoveParticipant implements domain.ActivityRepository.
func (s *Store) RemoveParticipant(ctx context.Context, name, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	activity, ok := s.activities[name]
	if !ok || !activity.HasParticipant(email) {
		return false, nil
	}
	activity.Participants = slices.DeleteFunc(activity.Participants, func(p string) bool { return p == email })
	s.activities[name] = activity
	return true, nil
}
