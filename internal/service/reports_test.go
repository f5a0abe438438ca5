package service_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/golang/mock/gomock"

	"safetrip/internal/clock"
	"safetrip/internal/domain"
	"safetrip/internal/service"
	mock_service "safetrip/internal/service/mocks"
	"safetrip/pkg/e"
)

// --- helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), &slog.HandlerOptions{Level: slog.LevelError}))
}

func f64ptr(v float64) *float64 { return &v }
func strptr(s string) *string   { return &s }

func mustTime(t *testing.T) time.Time {
	t.Helper()
	return time.Date(2025, 12, 23, 12, 0, 0, 0, time.UTC)
}

// --- Create ---

func TestReportService_Create_OK_Geohash(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock_service.NewMockReportRepository(ctrl)
	clk := clock.NewManual(mustTime(t))
	svc := service.NewReportService(repo, clk, newTestLogger())

	var saved *domain.Report
	repo.EXPECT().
		CreateReport(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, r *domain.Report) error {
			saved = r
			return nil
		}).
		Times(1)

	got, err := svc.Create(context.Background(), domain.CreateReportRequest{
		Lat:      28.6139,
		Lng:      77.2090,
		Category: "poor_lighting",
		Text:     strptr("  street light broken  "),
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got != saved {
		t.Fatalf("expected returned report to be the saved one")
	}
	if len(got.Geohash) != 8 {
		t.Fatalf("expected geohash of 8 chars, got %q", got.Geohash)
	}
	if got.Geohash != "ttnfucjb" {
		t.Fatalf("unexpected geohash: %q", got.Geohash)
	}
	if got.Category != domain.CategoryPoorLighting {
		t.Fatalf("unexpected category: %q", got.Category)
	}
	if got.Text == nil || *got.Text != "street light broken" {
		t.Fatalf("expected trimmed text, got %v", got.Text)
	}
	if !got.CreatedAt.Equal(mustTime(t)) {
		t.Fatalf("expected created_at from clock, got %v", got.CreatedAt)
	}
}

func TestReportService_Create_BlankTextDropped(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock_service.NewMockReportRepository(ctrl)
	svc := service.NewReportService(repo, clock.NewManual(mustTime(t)), newTestLogger())

	repo.EXPECT().CreateReport(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	got, err := svc.Create(context.Background(), domain.CreateReportRequest{
		Lat: 1, Lng: 1, Category: "other", Text: strptr("   "), Anonymous: true,
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got.Text != nil {
		t.Fatalf("expected nil text, got %q", *got.Text)
	}
	if !got.Anonymous {
		t.Fatalf("expected anonymous report")
	}
}

func TestReportService_Create_InvalidInput_NoRepoCall(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		req  domain.CreateReportRequest
		want error
	}{
		{"bad lat", domain.CreateReportRequest{Lat: 91, Lng: 0, Category: "other"}, e.ErrInvalidCoordinates},
		{"bad lng", domain.CreateReportRequest{Lat: 0, Lng: -181, Category: "other"}, e.ErrInvalidCoordinates},
		{"bad category", domain.CreateReportRequest{Lat: 0, Lng: 0, Category: "noise"}, e.ErrInvalidInput},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := mock_service.NewMockReportRepository(ctrl)
			svc := service.NewReportService(repo, clock.NewManual(mustTime(t)), newTestLogger())

			_, err := svc.Create(context.Background(), tc.req)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestReportService_Create_RepoError(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock_service.NewMockReportRepository(ctrl)
	svc := service.NewReportService(repo, clock.NewManual(mustTime(t)), newTestLogger())

	repo.EXPECT().CreateReport(gomock.Any(), gomock.Any()).Return(e.ErrInternal).Times(1)

	if _, err := svc.Create(context.Background(), domain.CreateReportRequest{Lat: 1, Lng: 1, Category: "other"}); !errors.Is(err, e.ErrInternal) {
		t.Fatalf("expected ErrInternal, got %v", err)
	}
}

// --- List ---

func TestReportService_List_PassesFilter(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock_service.NewMockReportRepository(ctrl)
	svc := service.NewReportService(repo, clock.NewManual(mustTime(t)), newTestLogger())

	cat := domain.CategoryStrayDogs
	filter := domain.ReportFilter{Category: &cat, Lat: f64ptr(1), Lng: f64ptr(2), RadiusM: f64ptr(500)}
	want := []*domain.Report{{Category: cat}}

	repo.EXPECT().ListReports(gomock.Any(), filter).Return(want, nil).Times(1)

	got, err := svc.List(context.Background(), filter)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(got) != 1 || got[0] != want[0] {
		t.Fatalf("unexpected reports: %+v", got)
	}
}

func TestReportService_List_InvalidFilter(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock_service.NewMockReportRepository(ctrl)
	svc := service.NewReportService(repo, clock.NewManual(mustTime(t)), newTestLogger())

	if _, err := svc.List(context.Background(), domain.ReportFilter{RadiusM: f64ptr(0)}); !errors.Is(err, e.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for zero radius, got %v", err)
	}
	if _, err := svc.List(context.Background(), domain.ReportFilter{Lat: f64ptr(1)}); !errors.Is(err, e.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for lat without lng, got %v", err)
	}
}
