package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"safetrip/internal/api/handlers/http/profile"
	"safetrip/internal/api/handlers/http/reports"
	"safetrip/internal/api/handlers/http/safety"
	"safetrip/internal/api/handlers/http/system"
	"safetrip/internal/api/handlers/ws"
	"safetrip/internal/config"
	"safetrip/internal/middleware"
)

type Server struct {
	logger *slog.Logger
	router *chi.Mux
	cfg    config.Config
}

// Handlers groups everything the router mounts.
type Handlers struct {
	Safety  *safety.Handler
	Reports *reports.Handler
	Profile *profile.Handler
	System  *system.Handler
	Stream  *ws.Handler
}

func NewServer(cfg *config.Config, logger *slog.Logger, h Handlers) *Server {
	r := InitRouter(cfg, h, logger)

	return &Server{
		logger: logger,
		router: r,
		cfg:    *cfg,
	}
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func InitRouter(cfg *config.Config, h Handlers, logger *slog.Logger) *chi.Mux {
	r := chi.NewMux()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Logger)

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/incident/{id}", h.Safety.IncidentPage)

	sosLimit := middleware.PerMinute(cfg.Limits.SOSPerMinute, logger)
	reportLimit := middleware.PerMinute(cfg.Limits.ReportPerMinute, logger)
	locationLimit := middleware.PerMinute(cfg.Limits.LocationPerMinute, logger)

	r.Route("/api/v1", func(api chi.Router) {
		// SYSTEM
		api.Get("/health", h.System.SystemHealth)

		api.Group(func(pr chi.Router) {
			pr.Use(middleware.Auth(cfg.Auth.JWTSecret, logger))

			// PROFILE
			pr.Route("/me", func(mr chi.Router) {
				mr.Put("/", h.Profile.ProfileUpsert)
				mr.Get("/guardians", h.Profile.GuardianList)
				mr.Post("/guardians", h.Profile.GuardianAdd)
				mr.Delete("/guardians/{phone}", h.Profile.GuardianRemove)
				mr.Post("/push-tokens", h.Profile.PushTokenRegister)
			})

			// TRIPS
			pr.Route("/trips", func(tr chi.Router) {
				tr.Post("/", h.Safety.TripStart)
				tr.Get("/", h.Safety.TripList)

				tr.Route("/{id}", func(rr chi.Router) {
					rr.Get("/", h.Safety.TripGet)
					rr.With(locationLimit).Post("/location", h.Safety.TripLocation)
					rr.With(sosLimit).Post("/sos", h.Safety.TripSOS)
					rr.Post("/safe", h.Safety.TripSafe)
				})
			})

			// INCIDENTS
			pr.Route("/incidents", func(ir chi.Router) {
				ir.Get("/", h.Safety.IncidentList)

				ir.Route("/{id}", func(rr chi.Router) {
					rr.Get("/", h.Safety.IncidentGet)
					rr.Post("/resolve", h.Safety.IncidentResolve)
					rr.Get("/fallback", h.Safety.IncidentFallback)
				})
			})

			// REPORTS
			pr.Route("/reports", func(rr chi.Router) {
				rr.Get("/", h.Reports.ReportList)
				rr.With(reportLimit).Post("/", h.Reports.ReportCreate)
			})

			// LIVE UPDATES
			pr.Get("/ws/trips/{id}", h.Stream.TripStream)
			pr.Get("/ws/incidents/{id}", h.Stream.IncidentStream)
		})
	})

	return r
}

func (s *Server) Run(ctx context.Context) error {
	port := s.cfg.Http.Port
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	srv := &http.Server{
		Addr:         port,
		Handler:      s.router,
		ReadTimeout:  s.cfg.Http.ReadTimeout,
		WriteTimeout: s.cfg.Http.WriteTimeout,
		IdleTimeout:  30 * time.Second,
	}

	errChan := make(chan error, 1)

	go func() {
		s.logger.Info("🚀 Starting HTTP server",
			slog.String("addr", srv.Addr),
			slog.String("mode", s.cfg.Mode),
			slog.Duration("read_timeout", s.cfg.Http.ReadTimeout),
			slog.Duration("write_timeout", s.cfg.Http.WriteTimeout),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("ListenAndServe error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("🛑 Shutting down HTTP server", slog.String("reason", ctx.Err().Error()))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Http.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Server shutdown failed", slog.Any("error", err))
			return err
		}
		return nil

	case err := <-errChan:
		return err
	}
}
