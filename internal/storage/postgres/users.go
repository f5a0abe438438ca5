package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"safetrip/internal/clock"
	"safetrip/internal/domain"
	"safetrip/pkg/e"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepo struct {
	pool   *pgxpool.Pool
	clock  clock.Clock
	logger *slog.Logger
}

func NewUserRepo(pool *pgxpool.Pool, clk clock.Clock, logger *slog.Logger) *UserRepo {
	return &UserRepo{pool: pool, clock: clk, logger: logger}
}

const userColumns = `id, phone, name, guardians, push_tokens, created_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(
		&u.ID,
		&u.Phone,
		&u.Name,
		&u.Guardians,
		&u.PushTokens,
		&u.CreatedAt,
	); err != nil {
		return nil, err
	}
	if u.Guardians == nil {
		u.Guardians = []domain.Guardian{}
	}
	if u.PushTokens == nil {
		u.PushTokens = []string{}
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return &u, nil
}

func (r *UserRepo) GetUser(ctx context.Context, id string) (*domain.User, error) {
	const op = "postgres.User.Get"

	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, e.WrapError(ctx, op, err)
	}
	return u, nil
}

func (r *UserRepo) GetUserByPhone(ctx context.Context, phone string) (*domain.User, error) {
	const op = "postgres.User.GetByPhone"

	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE phone = $1`, phone))
	if err != nil {
		return nil, e.WrapError(ctx, op, err)
	}
	return u, nil
}

// UpsertUser creates the profile or refreshes its name and phone, keeping
// guardians and push tokens.
func (r *UserRepo) UpsertUser(ctx context.Context, u *domain.User) (*domain.User, error) {
	const op = "postgres.User.Upsert"

	const query = `
		INSERT INTO users (id, phone, name, guardians, push_tokens, created_at)
		VALUES ($1, $2, $3, '[]'::jsonb, '{}', $4)
		ON CONFLICT (id) DO UPDATE
		SET phone = EXCLUDED.phone,
			name = EXCLUDED.name
		RETURNING ` + userColumns

	saved, err := scanUser(r.pool.QueryRow(ctx, query, u.ID, u.Phone, u.Name, r.clock.Now()))
	if err != nil {
		werr := e.WrapError(ctx, op, err)
		if !e.IsDuplicate(werr) {
			r.logger.Error("db upsert failed", slog.String("op", op), slog.Any("error", err))
		}
		return nil, werr
	}
	return saved, nil
}

func (r *UserRepo) UpdateUser(ctx context.Context, u *domain.User) error {
	const op = "postgres.User.Update"

	guardians := u.Guardians
	if guardians == nil {
		guardians = []domain.Guardian{}
	}
	tokens := u.PushTokens
	if tokens == nil {
		tokens = []string{}
	}

	const query = `UPDATE users SET guardians = $2, push_tokens = $3 WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, u.ID, guardians, tokens)
	if err != nil {
		r.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err), slog.String("id", u.ID))
		return e.WrapError(ctx, op, err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, e.ErrNotFound)
	}
	return nil
}
