package components

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"safetrip/internal/api"
	"safetrip/internal/api/handlers/http/profile"
	"safetrip/internal/api/handlers/http/reports"
	"safetrip/internal/api/handlers/http/safety"
	"safetrip/internal/api/handlers/http/system"
	"safetrip/internal/api/handlers/ws"
	"safetrip/internal/broker"
	"safetrip/internal/clock"
	"safetrip/internal/config"
	"safetrip/internal/escalation"
	"safetrip/internal/events"
	"safetrip/internal/location"
	"safetrip/internal/middleware"
	"safetrip/internal/notify"
	"safetrip/internal/observability/metrics"
	"safetrip/internal/redis"
	"safetrip/internal/render"
	"safetrip/internal/service"
	"safetrip/internal/storage/memory"
	"safetrip/internal/storage/postgres"
	"safetrip/internal/workers"
	"safetrip/pkg/logger"
)

// storage is what one persistence backend provides.
type storage struct {
	escalation escalation.Repository
	reports    service.ReportRepository
	users      service.UserRepository
	active     workers.ActiveTrips
}

type Components struct {
	logger     *slog.Logger
	HttpServer *api.Server
	Engine     *escalation.Engine
	Hub        *events.Hub
	Postgres   *postgres.Postgres
	Redis      *redis.Redis
	Broker     *broker.IncidentBroker
	Sweeper    *workers.TripSweeper
	PushSender *workers.PushSender
	// Outbox holds what the log push channel sent. Nil while real pushes
	// are queued.
	Outbox *notify.Log

	wg sync.WaitGroup
}

func InitComponents(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Components, error) {
	metrics.Init()

	c := &Components{logger: logger}
	clk := clock.System{}

	var (
		store   storage
		source  location.Source
		channel notify.Channel
		checks  = map[string]system.Check{}
	)

	switch cfg.Mode {
	case config.ModeLive:
		logger.Info("Initializing Postgres")
		pg, err := postgres.NewPostgres(ctx, cfg, clk, logger)
		if err != nil {
			logger.Error("Failed to init postgres", slog.Any("error", err))
			return nil, fmt.Errorf("failed to init postgres: %w", err)
		}
		c.Postgres = pg
		metrics.RegisterPool(pg.Pool)
		checks["postgres"] = pg.Pool.Ping
		store = storage{escalation: pg.Escalation(), reports: pg.Reports, users: pg.Users, active: pg.Trips}

		logger.Info("Initializing Redis")
		rdb, err := redis.NewRedis(ctx, cfg, logger)
		if err != nil {
			c.ShutdownAll()
			return nil, fmt.Errorf("failed to init redis: %w", err)
		}
		c.Redis = rdb
		checks["redis"] = func(ctx context.Context) error { return rdb.Client.Ping(ctx).Err() }

		source = location.NewRelay(redis.NewLocationStore(rdb, cfg.Redis.LocationTTL), logger, time.Second)

		queue := redis.NewPushQueue(rdb.Client, cfg.Push.QueueKey)
		channel, c.Outbox = livePush(cfg.Push, queue, logger)
		if !cfg.Push.Disabled {
			gateway, err := notify.NewHTTPPush(cfg.Push.URL, cfg.Push.ServerKey, 5*time.Second)
			if err != nil {
				c.ShutdownAll()
				return nil, fmt.Errorf("failed to init push gateway: %w", err)
			}
			c.PushSender = workers.NewPushSender(logger, cfg.Push, queue, gateway)
		}

	default:
		logger.Info("Running in demo mode: in-memory storage, simulated location, logged pushes")
		mem := memory.New(clk)
		store = storage{escalation: mem, reports: mem, users: mem, active: mem}
		source = location.NewSimulator(clk, cfg.Trip.WatchInterval)
		c.Outbox = notify.NewLog(logger)
		channel = c.Outbox

		if token, err := middleware.IssueToken(cfg.Auth.JWTSecret, "demo-user", 24*time.Hour); err == nil {
			logger.Info("demo bearer token", slog.String("sub", "demo-user"), slog.String("token", token))
		}
	}

	c.Hub = events.NewHub(logger)
	if cfg.AMQP.URL != "" {
		logger.Info("Initializing RabbitMQ", slog.String("exchange", cfg.AMQP.Exchange))
		b, err := broker.Dial(cfg.AMQP.URL, cfg.AMQP.Exchange, logger)
		if err != nil {
			c.ShutdownAll()
			return nil, fmt.Errorf("failed to init rabbitmq: %w", err)
		}
		c.Broker = b
		c.Hub.AddSink(b)
	}

	linker := notify.NewLinker(cfg.Fallback.SiteURL)
	fanOut := notify.NewFanOut(
		notify.NewUserDirectory(store.users),
		channel,
		linker,
		logger,
		notify.WithParallel(cfg.Trip.FanOutParallel),
	)

	c.Engine = escalation.NewEngine(store.escalation, source, fanOut, logger,
		escalation.WithClock(clk),
		escalation.WithPublisher(c.Hub),
		escalation.WithTickInterval(cfg.Trip.TickInterval),
		escalation.WithSampleTimeout(cfg.Trip.SampleTimeout),
		escalation.WithFanOutTimeout(cfg.Trip.FanOutTimeout),
	)
	c.Sweeper = workers.NewTripSweeper(store.active, c.Engine, logger, cfg.Trip.SweepInterval, cfg.Trip.SweepWorkers)

	incidents := service.NewIncidentService(c.Engine, linker)
	svc := service.NewService(
		c.Engine,
		incidents,
		service.NewReportService(store.reports, clk, logger),
		service.NewProfileService(store.users, logger),
	)

	pages, err := render.NewRenderer()
	if err != nil {
		c.ShutdownAll()
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	c.HttpServer = api.NewServer(cfg, logger, api.Handlers{
		Safety:  safety.NewHandler(logger, svc.Trips, svc.Incidents, pages),
		Reports: reports.NewHandler(logger, svc.Reports),
		Profile: profile.NewHandler(logger, svc.Profile),
		System:  system.NewHandler(logger, checks),
		Stream:  ws.NewHandler(logger, c.Hub, svc.Trips, svc.Incidents),
	})
	logger.Info("Initialized server", slog.String("mode", cfg.Mode))

	return c, nil
}

// livePush picks the live push channel. With the sender disabled nothing
// drains the queue, so messages are only logged.
func livePush(cfg config.PushConfig, queue notify.Enqueuer, logger *slog.Logger) (notify.Channel, *notify.Log) {
	if cfg.Disabled {
		outbox := notify.NewLog(logger)
		return outbox, outbox
	}
	return notify.NewQueuedPush(queue), nil
}

// RunWorkers starts the background workers. They stop when ctx is done.
func (c *Components) RunWorkers(ctx context.Context) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.Sweeper.Run(ctx)
	}()

	if c.PushSender != nil {
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			c.PushSender.Run(ctx)
		}()
	}
}

func SetupLogger(env string) *slog.Logger {
	switch env {
	case "local":
		return logger.SetupPrettySlog()
	case "dev":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}),
		)
	case "prod":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	default:
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	}
}

// ShutdownAll waits for the workers, drains the engine and closes every
// connection that was opened. Safe on partially initialized components.
func (c *Components) ShutdownAll() {
	start := time.Now()
	c.logger.Info("Component shutdown started")

	c.wg.Wait()

	if c.Engine != nil {
		c.Engine.Shutdown()
	}
	if c.Hub != nil {
		c.Hub.Close()
	}
	if c.Broker != nil {
		if err := c.Broker.Close(); err != nil {
			c.logger.Error("RabbitMQ close failed", slog.Any("error", err))
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.logger.Error("Redis close failed", slog.Any("error", err))
		}
	}
	if c.Postgres != nil {
		c.Postgres.Pool.Close()
	}

	c.logger.Info("All components stopped",
		slog.Duration("latency", time.Since(start)))
}
