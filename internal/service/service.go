package service

import (
	"context"

	"safetrip/internal/domain"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=mocks/mock.go
type TripService interface {
	StartTrip(ctx context.Context, ownerID string, etaMinutes int) (*domain.Trip, error)
	GetTrip(ctx context.Context, ownerID string, tripID uuid.UUID) (*domain.Trip, error)
	ListTrips(ctx context.Context, ownerID string) ([]*domain.Trip, error)
	RecordLocation(ctx context.Context, ownerID string, tripID uuid.UUID, loc domain.Location) (*domain.Trip, error)
	TriggerSOS(ctx context.Context, ownerID string, tripID uuid.UUID) (*domain.Incident, error)
	MarkSafe(ctx context.Context, ownerID string, tripID uuid.UUID) (*domain.Trip, error)
	View(t *domain.Trip) domain.TripView
}

// IncidentEngine is the part of the escalation engine incidents are read and
// resolved through.
type IncidentEngine interface {
	GetIncident(ctx context.Context, incidentID uuid.UUID) (*domain.Incident, error)
	ListIncidents(ctx context.Context, ownerID string) ([]*domain.Incident, error)
	ResolveIncident(ctx context.Context, ownerID string, incidentID uuid.UUID) (*domain.Incident, error)
}

type IncidentService interface {
	IncidentEngine
	FallbackLink(ctx context.Context, incidentID uuid.UUID) (domain.FallbackLinkResponse, error)
}

type FallbackLinker interface {
	FallbackLink(inc *domain.Incident) string
}

type ReportService interface {
	Create(ctx context.Context, req domain.CreateReportRequest) (*domain.Report, error)
	List(ctx context.Context, filter domain.ReportFilter) ([]*domain.Report, error)
}

type ReportRepository interface {
	CreateReport(ctx context.Context, r *domain.Report) error
	GetReport(ctx context.Context, id uuid.UUID) (*domain.Report, error)
	ListReports(ctx context.Context, filter domain.ReportFilter) ([]*domain.Report, error)
}

type ProfileService interface {
	UpsertProfile(ctx context.Context, userID string, req domain.UpsertProfileRequest) (*domain.User, error)
	Guardians(ctx context.Context, userID string) ([]domain.Guardian, error)
	AddGuardian(ctx context.Context, userID string, g domain.Guardian) ([]domain.Guardian, error)
	RemoveGuardian(ctx context.Context, userID, phone string) ([]domain.Guardian, error)
	RegisterPushToken(ctx context.Context, userID, token string) error
}

type UserRepository interface {
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByPhone(ctx context.Context, phone string) (*domain.User, error)
	UpsertUser(ctx context.Context, u *domain.User) (*domain.User, error)
	UpdateUser(ctx context.Context, u *domain.User) error
}

type Service struct {
	Trips     TripService
	Incidents IncidentService
	Reports   ReportService
	Profile   ProfileService
}

func NewService(
	trips TripService,
	incidents IncidentService,
	reports ReportService,
	profile ProfileService,
) *Service {
	return &Service{
		Trips:     trips,
		Incidents: incidents,
		Reports:   reports,
		Profile:   profile,
	}
}
