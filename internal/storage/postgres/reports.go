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

type ReportRepo struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewReportRepo(pool *pgxpool.Pool, logger *slog.Logger) *ReportRepo {
	return &ReportRepo{pool: pool, logger: logger}
}

const reportColumns = `id, lat, lng, category, text, anonymous, geohash, created_at`

func scanReport(row pgx.Row) (*domain.Report, error) {
	var r domain.Report
	if err := row.Scan(
		&r.ID,
		&r.Lat,
		&r.Lng,
		&r.Category,
		&r.Text,
		&r.Anonymous,
		&r.Geohash,
		&r.CreatedAt,
	); err != nil {
		return nil, err
	}
	r.CreatedAt = r.CreatedAt.UTC()
	return &r, nil
}

func (p *ReportRepo) CreateReport(ctx context.Context, r *domain.Report) error {
	const op = "postgres.Report.Create"

	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}

	const query = `
		INSERT INTO reports (id, lat, lng, category, text, anonymous, geohash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := p.pool.Exec(ctx, query,
		r.ID,
		r.Lat,
		r.Lng,
		r.Category,
		r.Text,
		r.Anonymous,
		r.Geohash,
		r.CreatedAt,
	)
	if err != nil {
		p.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err))
		return e.WrapError(ctx, op, err)
	}
	return nil
}

func (p *ReportRepo) GetReport(ctx context.Context, id uuid.UUID) (*domain.Report, error) {
	const op = "postgres.Report.Get"

	r, err := scanReport(p.pool.QueryRow(ctx, `SELECT `+reportColumns+` FROM reports WHERE id = $1`, id))
	if err != nil {
		return nil, e.WrapError(ctx, op, err)
	}
	return r, nil
}

// ListReports filters by category and by a planar radius in degrees around a
// point, newest first.
func (p *ReportRepo) ListReports(ctx context.Context, f domain.ReportFilter) ([]*domain.Report, error) {
	const op = "postgres.Report.List"

	var category *string
	if f.Category != nil {
		c := string(*f.Category)
		category = &c
	}
	var lat, lng, radius *float64
	if f.Lat != nil && f.Lng != nil && f.RadiusM != nil {
		deg := f.RadiusDegrees()
		lat, lng, radius = f.Lat, f.Lng, &deg
	}

	const query = `
		SELECT ` + reportColumns + `
		FROM reports
		WHERE ($1::text IS NULL OR category = $1)
		  AND ($2::float8 IS NULL
		       OR (lat - $2) * (lat - $2) + (lng - $3::float8) * (lng - $3::float8) <= $4::float8 * $4::float8)
		ORDER BY created_at DESC
	`

	rows, err := p.pool.Query(ctx, query, category, lat, lng, radius)
	if err != nil {
		p.logger.Error("db query failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	defer rows.Close()

	reports := make([]*domain.Report, 0)
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			p.logger.Error("row scan failed", slog.String("op", op), slog.Any("error", err))
			return nil, e.WrapError(ctx, op, err)
		}
		reports = append(reports, r)
	}
	if err := rows.Err(); err != nil {
		p.logger.Error("rows err", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	return reports, nil
}
