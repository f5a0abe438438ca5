package postgres

import (
	"context"
	"log/slog"

	"safetrip/internal/domain"
	"safetrip/pkg/e"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type IncidentRepo struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewIncidentRepo(pool *pgxpool.Pool, logger *slog.Logger) *IncidentRepo {
	return &IncidentRepo{pool: pool, logger: logger}
}

const incidentColumns = `id, trip_id, owner_id, lat, lng, location_known,
	trigger, status, created_at, resolved_at`

func scanIncident(row pgx.Row) (*domain.Incident, error) {
	var inc domain.Incident
	if err := row.Scan(
		&inc.ID,
		&inc.TripID,
		&inc.OwnerID,
		&inc.Lat,
		&inc.Lng,
		&inc.LocationKnown,
		&inc.Trigger,
		&inc.Status,
		&inc.CreatedAt,
		&inc.ResolvedAt,
	); err != nil {
		return nil, err
	}
	inc.CreatedAt = inc.CreatedAt.UTC()
	return &inc, nil
}

// CreateIncident relies on the partial unique index: a second open incident
// for the trip fails with e.ErrUniqueViolation.
func (r *IncidentRepo) CreateIncident(ctx context.Context, inc *domain.Incident) error {
	const op = "postgres.Incident.Create"

	if inc.ID == uuid.Nil {
		inc.ID = uuid.New()
	}

	const query = `
		INSERT INTO incidents (id, trip_id, owner_id, lat, lng, location_known,
			trigger, status, created_at, resolved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.pool.Exec(ctx, query,
		inc.ID,
		inc.TripID,
		inc.OwnerID,
		inc.Lat,
		inc.Lng,
		inc.LocationKnown,
		inc.Trigger,
		inc.Status,
		inc.CreatedAt,
		inc.ResolvedAt,
	)
	if err != nil {
		werr := e.WrapError(ctx, op, err)
		if !e.IsDuplicate(werr) {
			r.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err))
		}
		return werr
	}
	return nil
}

func (r *IncidentRepo) GetIncident(ctx context.Context, id uuid.UUID) (*domain.Incident, error) {
	const op = "postgres.Incident.Get"

	inc, err := scanIncident(r.pool.QueryRow(ctx, `SELECT `+incidentColumns+` FROM incidents WHERE id = $1`, id))
	if err != nil {
		return nil, e.WrapError(ctx, op, err)
	}
	return inc, nil
}

func (r *IncidentRepo) UpdateIncident(ctx context.Context, id uuid.UUID, patch domain.IncidentPatch) (*domain.Incident, error) {
	const op = "postgres.Incident.Update"

	var updated *domain.Incident
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		inc, err := scanIncident(tx.QueryRow(ctx, `SELECT `+incidentColumns+` FROM incidents WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			return err
		}

		patch.Apply(inc)

		const query = `UPDATE incidents SET status = $2, resolved_at = $3 WHERE id = $1`
		if _, err := tx.Exec(ctx, query, inc.ID, inc.Status, inc.ResolvedAt); err != nil {
			return err
		}
		updated = inc
		return nil
	})
	if err != nil {
		r.logger.Error("incident update failed", slog.String("op", op), slog.Any("error", err), slog.String("id", id.String()))
		return nil, e.WrapError(ctx, op, err)
	}
	return updated, nil
}

func (r *IncidentRepo) OpenIncidentForTrip(ctx context.Context, tripID uuid.UUID) (*domain.Incident, error) {
	const op = "postgres.Incident.OpenForTrip"

	const query = `SELECT ` + incidentColumns + ` FROM incidents WHERE trip_id = $1 AND status <> 'resolved'`
	inc, err := scanIncident(r.pool.QueryRow(ctx, query, tripID))
	if err != nil {
		return nil, e.WrapError(ctx, op, err)
	}
	return inc, nil
}

func (r *IncidentRepo) ListIncidentsByOwner(ctx context.Context, ownerID string) ([]*domain.Incident, error) {
	const op = "postgres.Incident.ListByOwner"

	const query = `SELECT ` + incidentColumns + ` FROM incidents WHERE owner_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		r.logger.Error("db query failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	defer rows.Close()

	incidents := make([]*domain.Incident, 0)
	for rows.Next() {
		inc, err := scanIncident(rows)
		if err != nil {
			r.logger.Error("row scan failed", slog.String("op", op), slog.Any("error", err))
			return nil, e.WrapError(ctx, op, err)
		}
		incidents = append(incidents, inc)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("rows err", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	return incidents, nil
}
