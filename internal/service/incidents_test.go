package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"

	"safetrip/internal/domain"
	"safetrip/internal/service"
	mock_service "safetrip/internal/service/mocks"
	"safetrip/pkg/e"
)

func TestIncidentService_FallbackLink_OK(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	engine := mock_service.NewMockIncidentEngine(ctrl)
	linker := mock_service.NewMockFallbackLinker(ctrl)
	svc := service.NewIncidentService(engine, linker)

	inc := &domain.Incident{ID: uuid.New(), Status: domain.IncidentBroadcasting}
	engine.EXPECT().GetIncident(gomock.Any(), inc.ID).Return(inc, nil).Times(1)
	linker.EXPECT().FallbackLink(inc).Return("https://wa.me/?text=help").Times(1)

	got, err := svc.FallbackLink(context.Background(), inc.ID)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got.IncidentID != inc.ID || got.URL != "https://wa.me/?text=help" {
		t.Fatalf("unexpected response: %+v", got)
	}
}

func TestIncidentService_FallbackLink_NotFound(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	engine := mock_service.NewMockIncidentEngine(ctrl)
	linker := mock_service.NewMockFallbackLinker(ctrl)
	svc := service.NewIncidentService(engine, linker)

	id := uuid.New()
	engine.EXPECT().GetIncident(gomock.Any(), id).Return(nil, e.ErrNotFound).Times(1)

	if _, err := svc.FallbackLink(context.Background(), id); !errors.Is(err, e.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestIncidentService_DelegatesToEngine(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	engine := mock_service.NewMockIncidentEngine(ctrl)
	svc := service.NewIncidentService(engine, mock_service.NewMockFallbackLinker(ctrl))

	inc := &domain.Incident{ID: uuid.New(), OwnerID: ownerID, Status: domain.IncidentResolved}
	engine.EXPECT().ResolveIncident(gomock.Any(), ownerID, inc.ID).Return(inc, nil).Times(1)
	engine.EXPECT().ListIncidents(gomock.Any(), ownerID).Return([]*domain.Incident{inc}, nil).Times(1)

	got, err := svc.ResolveIncident(context.Background(), ownerID, inc.ID)
	if err != nil || got != inc {
		t.Fatalf("unexpected resolve result: %+v, %v", got, err)
	}
	list, err := svc.ListIncidents(context.Background(), ownerID)
	if err != nil || len(list) != 1 {
		t.Fatalf("unexpected list result: %+v, %v", list, err)
	}
}
