package postgres

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"

	"safetrip/internal/clock"
	"safetrip/internal/config"
	"safetrip/pkg/e"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schema string

type Postgres struct {
	Pool      *pgxpool.Pool
	Trips     *TripRepo
	Incidents *IncidentRepo
	Reports   *ReportRepo
	Users     *UserRepo
}

func NewPostgres(ctx context.Context, cfg *config.Config, clk clock.Clock, logger *slog.Logger) (*Postgres, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Postgres.Host,
		cfg.Postgres.Port,
		cfg.Postgres.User,
		cfg.Postgres.Password,
		cfg.Postgres.Database,
		cfg.Postgres.SSLMode,
	)

	logger.Info("Connecting to Postgres",
		slog.String("host", cfg.Postgres.Host),
		slog.String("db", cfg.Postgres.Database))

	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("Failed to parse pgx config", slog.Any("error", err))
		return nil, e.Wrap("storage.pg.NewPostgres.ParseConfig", err)
	}
	poolCfg.MaxConns = cfg.Postgres.MaxConns
	poolCfg.MinConns = cfg.Postgres.MinConns
	poolCfg.MaxConnLifetime = cfg.Postgres.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		logger.Error("Failed to create pgx pool", slog.Any("error", err))
		return nil, e.Wrap("storage.pg.NewPostgres.NewWithConfig", err)
	}

	if err := pool.Ping(ctx); err != nil {
		logger.Error("Failed to ping Postgres database", slog.Any("error", err))
		pool.Close()
		return nil, e.Wrap("storage.pg.NewPostgres.Ping", err)
	}

	if err := Migrate(ctx, pool); err != nil {
		logger.Error("Failed to apply schema", slog.Any("error", err))
		pool.Close()
		return nil, err
	}
	logger.Info("Connected to Postgres successfully")

	return New(pool, clk, logger), nil
}

// New wires the repositories over an existing pool.
func New(pool *pgxpool.Pool, clk clock.Clock, logger *slog.Logger) *Postgres {
	return &Postgres{
		Pool:      pool,
		Trips:     NewTripRepo(pool, clk, logger),
		Incidents: NewIncidentRepo(pool, logger),
		Reports:   NewReportRepo(pool, logger),
		Users:     NewUserRepo(pool, clk, logger),
	}
}

func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return e.Wrap("storage.pg.Migrate", err)
	}
	return nil
}
