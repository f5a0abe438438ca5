package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"safetrip/internal/clock"
	"safetrip/internal/domain"
	"safetrip/pkg/e"

	"github.com/google/uuid"
	"github.com/mmcloughlin/geohash"
)

const geohashPrecision = 8

type reportService struct {
	repo   ReportRepository
	clock  clock.Clock
	logger *slog.Logger
}

func NewReportService(repo ReportRepository, clk clock.Clock, logger *slog.Logger) ReportService {
	return &reportService{repo: repo, clock: clk, logger: logger}
}

func (s *reportService) Create(ctx context.Context, req domain.CreateReportRequest) (*domain.Report, error) {
	const op = "service.Report.Create"

	if req.Lat < -90 || req.Lat > 90 || req.Lng < -180 || req.Lng > 180 {
		return nil, fmt.Errorf("%s: %w", op, e.ErrInvalidCoordinates)
	}
	category, ok := domain.ParseReportCategory(req.Category)
	if !ok {
		return nil, fmt.Errorf("%s: unknown category %q: %w", op, req.Category, e.ErrInvalidInput)
	}

	var text *string
	if req.Text != nil {
		if t := strings.TrimSpace(*req.Text); t != "" {
			text = &t
		}
	}

	r := &domain.Report{
		ID:        uuid.New(),
		Lat:       req.Lat,
		Lng:       req.Lng,
		Category:  category,
		Text:      text,
		Anonymous: req.Anonymous,
		Geohash:   geohash.EncodeWithPrecision(req.Lat, req.Lng, geohashPrecision),
		CreatedAt: s.clock.Now(),
	}
	if err := s.repo.CreateReport(ctx, r); err != nil {
		s.logger.Error("create report failed", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.logger.Info("report created",
		slog.String("report_id", r.ID.String()),
		slog.String("category", string(r.Category)),
		slog.String("geohash", r.Geohash),
	)
	return r, nil
}

func (s *reportService) List(ctx context.Context, filter domain.ReportFilter) ([]*domain.Report, error) {
	const op = "service.Report.List"

	if filter.RadiusM != nil && *filter.RadiusM <= 0 {
		return nil, fmt.Errorf("%s: radius must be positive: %w", op, e.ErrInvalidInput)
	}
	if (filter.Lat == nil) != (filter.Lng == nil) {
		return nil, fmt.Errorf("%s: lat and lng go together: %w", op, e.ErrInvalidInput)
	}

	reports, err := s.repo.ListReports(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return reports, nil
}
