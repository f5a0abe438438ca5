package memory

import (
	"context"
	"fmt"

	"safetrip/internal/domain"
	"safetrip/pkg/e"
)

func (s *Store) GetUser(_ context.Context, id string) (*domain.User, error) {
	const op = "memory.User.Get"

	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, e.ErrNotFound)
	}
	return copyUser(u), nil
}

func (s *Store) GetUserByPhone(_ context.Context, phone string) (*domain.User, error) {
	const op = "memory.User.GetByPhone"

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Phone == phone {
			return copyUser(u), nil
		}
	}
	return nil, fmt.Errorf("%s: %w", op, e.ErrNotFound)
}

// UpsertUser creates the profile or updates its name and phone. Phones are
// unique across users.
func (s *Store) UpsertUser(_ context.Context, u *domain.User) (*domain.User, error) {
	const op = "memory.User.Upsert"

	s.mu.Lock()
	defer s.mu.Unlock()

	for id, other := range s.users {
		if id != u.ID && other.Phone == u.Phone {
			return nil, fmt.Errorf("%s: %w", op, e.ErrUniqueViolation)
		}
	}

	existing, ok := s.users[u.ID]
	if !ok {
		c := copyUser(u)
		if c.CreatedAt.IsZero() {
			c.CreatedAt = s.clock.Now()
		}
		if c.Guardians == nil {
			c.Guardians = []domain.Guardian{}
		}
		if c.PushTokens == nil {
			c.PushTokens = []string{}
		}
		s.users[u.ID] = c
		return copyUser(c), nil
	}

	existing.Name = u.Name
	existing.Phone = u.Phone
	return copyUser(existing), nil
}

// UpdateUser replaces guardians and push tokens of an existing profile.
func (s *Store) UpdateUser(_ context.Context, u *domain.User) error {
	const op = "memory.User.Update"

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.users[u.ID]
	if !ok {
		return fmt.Errorf("%s: %w", op, e.ErrNotFound)
	}
	existing.Guardians = append([]domain.Guardian{}, u.Guardians...)
	existing.PushTokens = append([]string{}, u.PushTokens...)
	return nil
}
