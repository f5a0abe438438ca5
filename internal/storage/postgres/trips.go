package postgres

import (
	"context"
	"log/slog"
	"time"

	"safetrip/internal/clock"
	"safetrip/internal/domain"
	"safetrip/pkg/e"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TripRepo struct {
	pool   *pgxpool.Pool
	clock  clock.Clock
	logger *slog.Logger
}

func NewTripRepo(pool *pgxpool.Pool, clk clock.Clock, logger *slog.Logger) *TripRepo {
	return &TripRepo{pool: pool, clock: clk, logger: logger}
}

const tripColumns = `id, owner_id, started_at, eta_minutes, active,
	last_lat, last_lng, last_accuracy, last_location_at, last_update_at`

func scanTrip(row pgx.Row) (*domain.Trip, error) {
	var (
		t        domain.Trip
		lat, lng *float64
		accuracy *float64
		locAt    *time.Time
	)
	if err := row.Scan(
		&t.ID,
		&t.OwnerID,
		&t.StartedAt,
		&t.ETAMinutes,
		&t.Active,
		&lat,
		&lng,
		&accuracy,
		&locAt,
		&t.LastUpdateAt,
	); err != nil {
		return nil, err
	}
	if lat != nil && lng != nil {
		loc := domain.Location{Lat: *lat, Lng: *lng, Accuracy: accuracy}
		if locAt != nil {
			loc.Timestamp = locAt.UTC()
		}
		t.LastLocation = &loc
	}
	t.StartedAt = t.StartedAt.UTC()
	return &t, nil
}

func locationArgs(loc *domain.Location) (lat, lng, accuracy *float64, at *time.Time) {
	if loc == nil {
		return nil, nil, nil, nil
	}
	la, ln := loc.Lat, loc.Lng
	ts := loc.Timestamp
	return &la, &ln, loc.Accuracy, &ts
}

func (r *TripRepo) CreateTrip(ctx context.Context, t *domain.Trip) error {
	const op = "postgres.Trip.Create"

	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.StartedAt.IsZero() {
		t.StartedAt = r.clock.Now()
	}

	const query = `
		INSERT INTO trips (id, owner_id, started_at, eta_minutes, active,
			last_lat, last_lng, last_accuracy, last_location_at, last_update_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	lat, lng, acc, at := locationArgs(t.LastLocation)
	_, err := r.pool.Exec(ctx, query,
		t.ID,
		t.OwnerID,
		t.StartedAt,
		t.ETAMinutes,
		t.Active,
		lat,
		lng,
		acc,
		at,
		t.LastUpdateAt,
	)
	if err != nil {
		r.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err))
		return e.WrapError(ctx, op, err)
	}
	return nil
}

func (r *TripRepo) GetTrip(ctx context.Context, id uuid.UUID) (*domain.Trip, error) {
	const op = "postgres.Trip.Get"

	t, err := scanTrip(r.pool.QueryRow(ctx, `SELECT `+tripColumns+` FROM trips WHERE id = $1`, id))
	if err != nil {
		return nil, e.WrapError(ctx, op, err)
	}
	return t, nil
}

// UpdateTrip merges the patch under a row lock so the newer-sample check and
// the write see the same row.
func (r *TripRepo) UpdateTrip(ctx context.Context, id uuid.UUID, patch domain.TripPatch) (*domain.Trip, error) {
	const op = "postgres.Trip.Update"

	var updated *domain.Trip
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		t, err := scanTrip(tx.QueryRow(ctx, `SELECT `+tripColumns+` FROM trips WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			return err
		}

		patch.Apply(t, r.clock.Now())

		const query = `
			UPDATE trips
			SET active = $2,
				last_lat = $3,
				last_lng = $4,
				last_accuracy = $5,
				last_location_at = $6,
				last_update_at = $7
			WHERE id = $1
		`
		lat, lng, acc, at := locationArgs(t.LastLocation)
		if _, err := tx.Exec(ctx, query, t.ID, t.Active, lat, lng, acc, at, t.LastUpdateAt); err != nil {
			return err
		}
		updated = t
		return nil
	})
	if err != nil {
		r.logger.Error("trip update failed", slog.String("op", op), slog.Any("error", err), slog.String("id", id.String()))
		return nil, e.WrapError(ctx, op, err)
	}
	return updated, nil
}

func (r *TripRepo) ListTripsByOwner(ctx context.Context, ownerID string) ([]*domain.Trip, error) {
	const op = "postgres.Trip.ListByOwner"
	return r.list(ctx, op, `SELECT `+tripColumns+` FROM trips WHERE owner_id = $1 ORDER BY started_at DESC`, ownerID)
}

func (r *TripRepo) ListActiveTrips(ctx context.Context) ([]*domain.Trip, error) {
	const op = "postgres.Trip.ListActive"
	return r.list(ctx, op, `SELECT `+tripColumns+` FROM trips WHERE active ORDER BY started_at`)
}

func (r *TripRepo) list(ctx context.Context, op, query string, args ...any) ([]*domain.Trip, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("db query failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	defer rows.Close()

	trips := make([]*domain.Trip, 0)
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			r.logger.Error("row scan failed", slog.String("op", op), slog.Any("error", err))
			return nil, e.WrapError(ctx, op, err)
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("rows err", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	return trips, nil
}
