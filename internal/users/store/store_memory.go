package store

import (
	"context"
	"strings"
	"sync"

	"jobboard/internal/users/models"
	id "jobboard/pkg/domain"
	"jobboard/pkg/platform/sentinel"
)

// InMemory is a map-backed user store for tests and single-process runs.
type InMemory struct {
	mu    sync.RWMutex
	users map[id.UserID]*models.User
}

func NewInMemory() *InMemory {
	return &InMemory{users: make(map[id.UserID]*models.User)}
}

// Save inserts or replaces a user. Emails are unique case-insensitively.
func (s *InMemory) Save(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for existingID, u := range s.users {
		if existingID != user.ID && strings.EqualFold(u.Email, user.Email) {
			return sentinel.ErrConflict
		}
	}
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *InMemory) FindByID(_ context.Context, userID id.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *u
	return &cp, nil
}
