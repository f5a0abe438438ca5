package notify

import (
	"context"
	"errors"
	"fmt"

	"safetrip/internal/domain"
	"safetrip/pkg/e"
)

// GuardianDirectory resolves the people to alert for an owner.
type GuardianDirectory interface {
	Recipients(ctx context.Context, ownerID string) ([]domain.Recipient, error)
}

type UserLookup interface {
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByPhone(ctx context.Context, phone string) (*domain.User, error)
}

// UserDirectory maps each guardian phone to the push tokens of the account
// registered under it.
type UserDirectory struct {
	users UserLookup
}

func NewUserDirectory(users UserLookup) *UserDirectory {
	return &UserDirectory{users: users}
}

func (d *UserDirectory) Recipients(ctx context.Context, ownerID string) ([]domain.Recipient, error) {
	const op = "notify.UserDirectory.Recipients"

	owner, err := d.users.GetUser(ctx, ownerID)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]domain.Recipient, 0, len(owner.Guardians))
	for _, g := range owner.Guardians {
		r := domain.Recipient{Guardian: g}
		u, err := d.users.GetUserByPhone(ctx, g.Phone)
		switch {
		case err == nil:
			r.Tokens = append(r.Tokens, u.PushTokens...)
		case errors.Is(err, e.ErrNotFound):
		default:
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, r)
	}
	return out, nil
}
