//go:build integration

package postgres

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"safetrip/internal/clock"
	"safetrip/internal/domain"
	"safetrip/pkg/e"
)

var (
	testPool *pgxpool.Pool
	tc       testcontainers.Container
)

func TestMain(m *testing.M) {
	ctx := context.Background()

	user := "postgres"
	pass := "postgres"
	db := "postgres"

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     user,
			"POSTGRES_PASSWORD": pass,
			"POSTGRES_DB":       db,
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("5432/tcp"),
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		).WithDeadline(90 * time.Second),
	}

	var err error
	tc, err = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		fmt.Println("cannot start container:", err)
		os.Exit(1)
	}

	host, _ := tc.Host(ctx)
	mappedPort, _ := tc.MappedPort(ctx, "5432/tcp")

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, pass, host, mappedPort.Port(), db)

	testPool, err = pgxpool.New(ctx, dsn)
	if err != nil {
		fmt.Println("pgxpool.New:", err)
		_ = tc.Terminate(ctx)
		os.Exit(1)
	}

	if err := testPool.Ping(ctx); err != nil {
		fmt.Println("pool.Ping:", err)
		testPool.Close()
		_ = tc.Terminate(ctx)
		os.Exit(1)
	}

	if err := Migrate(ctx, testPool); err != nil {
		fmt.Println("Migrate:", err)
		testPool.Close()
		_ = tc.Terminate(ctx)
		os.Exit(1)
	}

	code := m.Run()

	testPool.Close()
	_ = tc.Terminate(ctx)
	os.Exit(code)
}

var epoch = time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC)

func newRepos(t *testing.T) (*Postgres, *clock.Manual) {
	t.Helper()

	_, err := testPool.Exec(context.Background(), `TRUNCATE TABLE incidents, trips, reports, users`)
	if err != nil {
		t.Fatalf("truncate: %v", err)
	}
	clk := clock.NewManual(epoch)
	return New(testPool, clk, slog.New(slog.NewTextHandler(io.Discard, nil))), clk
}

func TestMigrate_Idempotent(t *testing.T) {
	if err := Migrate(context.Background(), testPool); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}
}

func TestTrip_CreateGetUpdate(t *testing.T) {
	pg, clk := newRepos(t)
	ctx := context.Background()

	trip := &domain.Trip{OwnerID: "u1", StartedAt: epoch, ETAMinutes: 30, Active: true}
	if err := pg.Trips.CreateTrip(ctx, trip); err != nil {
		t.Fatalf("CreateTrip: %v", err)
	}
	if trip.ID == uuid.Nil {
		t.Fatalf("expected ID set")
	}

	newer := domain.Location{Lat: 28.61, Lng: 77.20, Timestamp: epoch.Add(2 * time.Minute)}
	older := domain.Location{Lat: 1, Lng: 1, Timestamp: epoch.Add(time.Minute)}

	clk.Advance(time.Minute)
	if _, err := pg.Trips.UpdateTrip(ctx, trip.ID, domain.TripPatch{LastLocation: &newer}); err != nil {
		t.Fatalf("UpdateTrip: %v", err)
	}
	got, err := pg.Trips.UpdateTrip(ctx, trip.ID, domain.TripPatch{LastLocation: &older})
	if err != nil {
		t.Fatalf("UpdateTrip: %v", err)
	}
	if got.LastLocation == nil || got.LastLocation.Lat != newer.Lat {
		t.Fatalf("older sample overwrote newer: %+v", got.LastLocation)
	}

	inactive := false
	if _, err := pg.Trips.UpdateTrip(ctx, trip.ID, domain.TripPatch{Active: &inactive}); err != nil {
		t.Fatalf("UpdateTrip: %v", err)
	}
	reactivate := true
	got, err = pg.Trips.UpdateTrip(ctx, trip.ID, domain.TripPatch{Active: &reactivate})
	if err != nil {
		t.Fatalf("UpdateTrip: %v", err)
	}
	if got.Active {
		t.Fatalf("trip was reactivated")
	}

	fetched, err := pg.Trips.GetTrip(ctx, trip.ID)
	if err != nil {
		t.Fatalf("GetTrip: %v", err)
	}
	if fetched.LastUpdateAt == nil || !fetched.LastUpdateAt.Equal(epoch.Add(time.Minute)) {
		t.Fatalf("last_update_at = %v", fetched.LastUpdateAt)
	}

	active, err := pg.Trips.ListActiveTrips(ctx)
	if err != nil {
		t.Fatalf("ListActiveTrips: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("expected no active trips, got %d", len(active))
	}
}

func TestTrip_GetNotFound(t *testing.T) {
	pg, _ := newRepos(t)

	_, err := pg.Trips.GetTrip(context.Background(), uuid.New())
	if !errors.Is(err, e.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestIncident_PartialUniqueIndex(t *testing.T) {
	pg, _ := newRepos(t)
	ctx := context.Background()

	trip := &domain.Trip{OwnerID: "u1", StartedAt: epoch, ETAMinutes: 30, Active: true}
	if err := pg.Trips.CreateTrip(ctx, trip); err != nil {
		t.Fatalf("CreateTrip: %v", err)
	}

	first := &domain.Incident{TripID: trip.ID, OwnerID: "u1", Trigger: domain.TriggerTimer, Status: domain.IncidentPending, CreatedAt: epoch}
	if err := pg.Incidents.CreateIncident(ctx, first); err != nil {
		t.Fatalf("CreateIncident: %v", err)
	}

	second := &domain.Incident{TripID: trip.ID, OwnerID: "u1", Trigger: domain.TriggerManual, Status: domain.IncidentPending, CreatedAt: epoch}
	if err := pg.Incidents.CreateIncident(ctx, second); !errors.Is(err, e.ErrUniqueViolation) {
		t.Fatalf("expected ErrUniqueViolation, got %v", err)
	}

	pending := domain.IncidentPending
	broadcasting := domain.IncidentBroadcasting
	if _, err := pg.Incidents.UpdateIncident(ctx, first.ID, domain.IncidentPatch{Status: &broadcasting}); err != nil {
		t.Fatalf("UpdateIncident: %v", err)
	}
	got, err := pg.Incidents.UpdateIncident(ctx, first.ID, domain.IncidentPatch{Status: &pending})
	if err != nil {
		t.Fatalf("UpdateIncident: %v", err)
	}
	if got.Status != domain.IncidentBroadcasting {
		t.Fatalf("status moved backwards to %s", got.Status)
	}

	resolved := domain.IncidentResolved
	at := epoch.Add(time.Hour)
	if _, err := pg.Incidents.UpdateIncident(ctx, first.ID, domain.IncidentPatch{Status: &resolved, ResolvedAt: &at}); err != nil {
		t.Fatalf("UpdateIncident: %v", err)
	}
	if _, err := pg.Incidents.OpenIncidentForTrip(ctx, trip.ID); !errors.Is(err, e.ErrNotFound) {
		t.Fatalf("expected no open incident, got %v", err)
	}
	if err := pg.Incidents.CreateIncident(ctx, second); err != nil {
		t.Fatalf("CreateIncident after resolve: %v", err)
	}

	list, err := pg.Incidents.ListIncidentsByOwner(ctx, "u1")
	if err != nil {
		t.Fatalf("ListIncidentsByOwner: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 incidents, got %d", len(list))
	}
}

func TestReport_ListFilters(t *testing.T) {
	pg, _ := newRepos(t)
	ctx := context.Background()

	reports := []*domain.Report{
		{Lat: 28.6139, Lng: 77.2090, Category: domain.CategoryHarassment, Geohash: "ttnfv2u0", CreatedAt: epoch},
		{Lat: 28.6140, Lng: 77.2091, Category: domain.CategoryStrayDogs, Geohash: "ttnfv2u0", CreatedAt: epoch.Add(time.Minute)},
		{Lat: 28.7000, Lng: 77.3000, Category: domain.CategoryHarassment, Geohash: "ttngb1ny", CreatedAt: epoch.Add(2 * time.Minute)},
	}
	for _, r := range reports {
		if err := pg.Reports.CreateReport(ctx, r); err != nil {
			t.Fatalf("CreateReport: %v", err)
		}
	}

	all, err := pg.Reports.ListReports(ctx, domain.ReportFilter{})
	if err != nil {
		t.Fatalf("ListReports: %v", err)
	}
	if len(all) != 3 || all[0].ID != reports[2].ID {
		t.Fatalf("expected newest first, got %+v", all)
	}

	cat := domain.CategoryHarassment
	lat, lng, radius := 28.6139, 77.2090, 500.0
	near, err := pg.Reports.ListReports(ctx, domain.ReportFilter{Category: &cat, Lat: &lat, Lng: &lng, RadiusM: &radius})
	if err != nil {
		t.Fatalf("ListReports: %v", err)
	}
	if len(near) != 1 || near[0].ID != reports[0].ID {
		t.Fatalf("unexpected nearby reports %+v", near)
	}
}

func TestUser_UpsertAndGuardians(t *testing.T) {
	pg, _ := newRepos(t)
	ctx := context.Background()

	u, err := pg.Users.UpsertUser(ctx, &domain.User{ID: "u1", Phone: "+100", Name: "A"})
	if err != nil {
		t.Fatalf("UpsertUser: %v", err)
	}
	if len(u.Guardians) != 0 || len(u.PushTokens) != 0 {
		t.Fatalf("expected empty guardians/tokens, got %+v", u)
	}

	if _, err := pg.Users.UpsertUser(ctx, &domain.User{ID: "u2", Phone: "+100", Name: "B"}); !errors.Is(err, e.ErrUniqueViolation) {
		t.Fatalf("expected ErrUniqueViolation, got %v", err)
	}

	u.Guardians = []domain.Guardian{{Name: "Mum", Phone: "+200"}}
	u.PushTokens = []string{"token-1"}
	if err := pg.Users.UpdateUser(ctx, u); err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}

	renamed, err := pg.Users.UpsertUser(ctx, &domain.User{ID: "u1", Phone: "+101", Name: "A2"})
	if err != nil {
		t.Fatalf("UpsertUser: %v", err)
	}
	if renamed.Name != "A2" || len(renamed.Guardians) != 1 || renamed.PushTokens[0] != "token-1" {
		t.Fatalf("upsert lost data: %+v", renamed)
	}

	byPhone, err := pg.Users.GetUserByPhone(ctx, "+101")
	if err != nil {
		t.Fatalf("GetUserByPhone: %v", err)
	}
	if byPhone.ID != "u1" {
		t.Fatalf("unexpected user %+v", byPhone)
	}

	if err := pg.Users.UpdateUser(ctx, &domain.User{ID: "ghost"}); !errors.Is(err, e.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
