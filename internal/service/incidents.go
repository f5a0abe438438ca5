package service

import (
	"context"
	"fmt"

	"safetrip/internal/domain"

	"github.com/google/uuid"
)

type incidentService struct {
	IncidentEngine
	linker FallbackLinker
}

func NewIncidentService(engine IncidentEngine, linker FallbackLinker) IncidentService {
	return &incidentService{IncidentEngine: engine, linker: linker}
}

// FallbackLink returns the messaging-relay link for an incident. Anyone holding
// the incident id may ask for it.
func (s *incidentService) FallbackLink(ctx context.Context, incidentID uuid.UUID) (domain.FallbackLinkResponse, error) {
	const op = "service.Incident.FallbackLink"

	inc, err := s.GetIncident(ctx, incidentID)
	if err != nil {
		return domain.FallbackLinkResponse{}, fmt.Errorf("%s: %w", op, err)
	}
	return domain.FallbackLinkResponse{
		IncidentID: inc.ID,
		URL:        s.linker.FallbackLink(inc),
	}, nil
}
