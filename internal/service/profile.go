package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"safetrip/internal/domain"
	"safetrip/pkg/e"
)

type profileService struct {
	users  UserRepository
	logger *slog.Logger
}

func NewProfileService(users UserRepository, logger *slog.Logger) ProfileService {
	return &profileService{users: users, logger: logger}
}

func (s *profileService) UpsertProfile(ctx context.Context, userID string, req domain.UpsertProfileRequest) (*domain.User, error) {
	const op = "service.Profile.Upsert"

	u, err := s.users.UpsertUser(ctx, &domain.User{
		ID:    userID,
		Name:  strings.TrimSpace(req.Name),
		Phone: req.Phone,
	})
	if err != nil {
		if errors.Is(err, e.ErrUniqueViolation) {
			return nil, fmt.Errorf("%s: phone already registered: %w", op, e.ErrConflict)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

func (s *profileService) Guardians(ctx context.Context, userID string) ([]domain.Guardian, error) {
	const op = "service.Profile.Guardians"

	u, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u.Guardians, nil
}

func (s *profileService) AddGuardian(ctx context.Context, userID string, g domain.Guardian) ([]domain.Guardian, error) {
	const op = "service.Profile.AddGuardian"

	g.Name = strings.TrimSpace(g.Name)
	if g.Name == "" || g.Phone == "" {
		return nil, fmt.Errorf("%s: name and phone are required: %w", op, e.ErrInvalidInput)
	}

	u, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if g.Phone == u.Phone {
		return nil, fmt.Errorf("%s: cannot add yourself: %w", op, e.ErrInvalidInput)
	}
	for _, existing := range u.Guardians {
		if existing.Phone == g.Phone {
			return nil, fmt.Errorf("%s: guardian %s already added: %w", op, g.Phone, e.ErrConflict)
		}
	}

	u.Guardians = append(u.Guardians, g)
	if err := s.users.UpdateUser(ctx, u); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.logger.Info("guardian added", slog.String("user_id", userID), slog.Int("guardians", len(u.Guardians)))
	return u.Guardians, nil
}

func (s *profileService) RemoveGuardian(ctx context.Context, userID, phone string) ([]domain.Guardian, error) {
	const op = "service.Profile.RemoveGuardian"

	u, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	kept := slices.DeleteFunc(slices.Clone(u.Guardians), func(g domain.Guardian) bool {
		return g.Phone == phone
	})
	if len(kept) == len(u.Guardians) {
		return nil, fmt.Errorf("%s: guardian %s: %w", op, phone, e.ErrNotFound)
	}

	u.Guardians = kept
	if err := s.users.UpdateUser(ctx, u); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.logger.Info("guardian removed", slog.String("user_id", userID), slog.Int("guardians", len(kept)))
	return kept, nil
}

// RegisterPushToken adds token to the user's set. Registering a known token is
// a no-op.
func (s *profileService) RegisterPushToken(ctx context.Context, userID, token string) error {
	const op = "service.Profile.RegisterPushToken"

	u, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if slices.Contains(u.PushTokens, token) {
		return nil
	}

	u.PushTokens = append(u.PushTokens, token)
	if err := s.users.UpdateUser(ctx, u); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
