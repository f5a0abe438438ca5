package reports_test

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"

	"safetrip/internal/api/handlers/http/reports"
	mock_reports "safetrip/internal/api/handlers/http/reports/mocks"
	"safetrip/internal/domain"
	"safetrip/pkg/e"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), &slog.HandlerOptions{Level: slog.LevelError}))
}

func f64ptr(v float64) *float64 { return &v }

func TestReportCreate_Created(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := mock_reports.NewMockReports(ctrl)
	h := reports.NewHandler(newTestLogger(), svc)

	want := domain.CreateReportRequest{Lat: 28.6, Lng: 77.2, Category: "harassment", Anonymous: true}
	svc.EXPECT().
		Create(gomock.Any(), want).
		Return(&domain.Report{ID: uuid.New(), Category: domain.CategoryHarassment}, nil).
		Times(1)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reports", bytes.NewBufferString(`{"lat":28.6,"lng":77.2,"category":"harassment","anonymous":true}`))
	rr := httptest.NewRecorder()
	h.ReportCreate(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected %d got %d body=%s", http.StatusCreated, rr.Code, rr.Body.String())
	}
}

func TestReportCreate_Invalid_400(t *testing.T) {
	t.Parallel()

	bodies := []string{
		`{"lat":28.6,"lng":77.2,"category":"noise"}`,
		`{"lat":28.6,"lng":277.2,"category":"other"}`,
		`{"lat":28.6,"lng":77.2}`,
		`not json`,
	}
	for _, body := range bodies {
		ctrl := gomock.NewController(t)
		h := reports.NewHandler(newTestLogger(), mock_reports.NewMockReports(ctrl))

		rr := httptest.NewRecorder()
		h.ReportCreate(rr, httptest.NewRequest(http.MethodPost, "/api/v1/reports", bytes.NewBufferString(body)))

		if rr.Code != http.StatusBadRequest {
			t.Fatalf("body %s: expected %d got %d", body, http.StatusBadRequest, rr.Code)
		}
		ctrl.Finish()
	}
}

func TestReportList_ParsesFilter(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := mock_reports.NewMockReports(ctrl)
	h := reports.NewHandler(newTestLogger(), svc)

	cat := domain.CategoryPoorLighting
	want := domain.ReportFilter{Category: &cat, Lat: f64ptr(28.6), Lng: f64ptr(77.2), RadiusM: f64ptr(500)}
	svc.EXPECT().List(gomock.Any(), want).Return(nil, nil).Times(1)

	rr := httptest.NewRecorder()
	h.ReportList(rr, httptest.NewRequest(http.MethodGet, "/api/v1/reports?category=poor_lighting&lat=28.6&lng=77.2&radius=500", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected %d got %d body=%s", http.StatusOK, rr.Code, rr.Body.String())
	}
}

func TestReportList_BadQuery_400(t *testing.T) {
	t.Parallel()

	for _, q := range []string{"?category=noise", "?lat=abc", "?radius=1e"} {
		ctrl := gomock.NewController(t)
		h := reports.NewHandler(newTestLogger(), mock_reports.NewMockReports(ctrl))

		rr := httptest.NewRecorder()
		h.ReportList(rr, httptest.NewRequest(http.MethodGet, "/api/v1/reports"+q, nil))

		if rr.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected %d got %d", q, http.StatusBadRequest, rr.Code)
		}
		ctrl.Finish()
	}
}

func TestReportList_ServiceRejectsFilter_400(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := mock_reports.NewMockReports(ctrl)
	h := reports.NewHandler(newTestLogger(), svc)

	svc.EXPECT().List(gomock.Any(), gomock.Any()).Return(nil, errors.Join(errors.New("service.Report.List"), e.ErrInvalidInput)).Times(1)

	rr := httptest.NewRecorder()
	h.ReportList(rr, httptest.NewRequest(http.MethodGet, "/api/v1/reports?lat=1", nil))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected %d got %d", http.StatusBadRequest, rr.Code)
	}
}
