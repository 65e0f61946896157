// Package server exposes profile lookup and analysis over HTTP, including a
// server-sent events stream of section updates.
package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/drpaneas/devgrowth/internal/notify"
	"github.com/drpaneas/devgrowth/internal/orchestrator"
	"github.com/drpaneas/devgrowth/internal/profile"
	"github.com/drpaneas/devgrowth/internal/report"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
)

// DefaultRequestTimeout bounds one profile lookup or one analysis.
const DefaultRequestTimeout = 60 * time.Second

// ProfileBuilder builds a developer profile for a handle. *profile.Aggregator
// implements it.
type ProfileBuilder interface {
	Build(ctx context.Context, username string) (*profile.DeveloperProfile, error)
}

// AnalysisRunner runs the section analyses for a profile.
// *orchestrator.Orchestrator implements it.
type AnalysisRunner interface {
	Run(ctx context.Context, p *profile.DeveloperProfile, onUpdate orchestrator.UpdateFunc) (*report.Report, error)
}

// Deps are the collaborators a Server dispatches to. Tracker and Mailer
// default to log-backed implementations.
type Deps struct {
	Profiles ProfileBuilder
	Analysis AnalysisRunner
	Tracker  notify.Tracker
	Mailer   notify.Mailer
	Log      *slog.Logger
}

// Server is the HTTP transport.
type Server struct {
	app     *fiber.App
	deps    Deps
	log     *slog.Logger
	timeout time.Duration
}

// New builds the fiber app and registers every route. A non-positive
// requestTimeout selects DefaultRequestTimeout.
func New(deps Deps, requestTimeout time.Duration) *Server {
	if requestTimeout <= 0 {
		requestTimeout = DefaultRequestTimeout
	}
	if deps.Log == nil {
		deps.Log = slog.Default()
	}
	if deps.Tracker == nil {
		deps.Tracker = notify.NewLogTracker(deps.Log)
	}
	if deps.Mailer == nil {
		deps.Mailer = notify.NewLogMailer(deps.Log)
	}

	s := &Server{deps: deps, log: deps.Log, timeout: requestTimeout}

	// Streams outlive the handler, so no write timeout here; each analysis
	// enforces requestTimeout itself.
	app := fiber.New(fiber.Config{
		AppName:               "devgrowth",
		DisableStartupMessage: true,
		ReadTimeout:           requestTimeout,
	})
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(RequestLogger(deps.Log))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	api := app.Group("/api")
	api.Get("/github/:username", s.getProfile)
	api.Post("/analyze", s.analyze)
	api.Post("/report/email", s.emailReport)

	s.app = app
	return s
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App { return s.app }

// Listen serves on addr until Shutdown is called.
func (s *Server) Listen(addr string) error {
	s.log.Info("listening", "addr", addr)
	return s.app.Listen(addr)
}

// Shutdown stops accepting connections and waits for open requests, or for
// ctx to expire.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) track(event, label string) {
	go s.deps.Tracker.Track(context.Background(), event, notify.CategoryAnalysis, label)
}
