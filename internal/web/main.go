// Package web serves the bridge over a loopback HTTP listener.
package web

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/ledgerdesk/ledgerdesk/internal/bridge"
	"github.com/ledgerdesk/ledgerdesk/internal/config"
	fiberlog "github.com/ledgerdesk/ledgerdesk/internal/logger/adapter/fiber"
	"github.com/ledgerdesk/ledgerdesk/internal/notify"
	"github.com/ledgerdesk/ledgerdesk/internal/web/handler"
	"github.com/ledgerdesk/ledgerdesk/internal/web/handler/channel"
	"github.com/ledgerdesk/ledgerdesk/internal/web/handler/events"
	"github.com/ledgerdesk/ledgerdesk/internal/web/middleware/auth"
)

const (
	// HealthPath answers 200 while the service accepts calls and 503 during shutdown.
	HealthPath = "/healthz"
	// MetricsPath exposes prometheus metrics.
	MetricsPath = "/metrics"

	appName = "LedgerDesk"
)

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
	done         chan struct{}
	doneOnce     sync.Once
}

// Start starts the web service on the given address and blocks until it stops.
func (s *Service) Start(addr string) error {
	var doneFiber = make(chan error, 1)

	go func() {
		err := s.App.Listen(addr)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			doneFiber <- err
			return
		}

		doneFiber <- nil
	}()

	return <-doneFiber
}

// WaitShutdown waits for SIGINT or SIGTERM and stops the service gracefully.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	s.Shutdown()
}

// Shutdown ends the push streams and stops the http server.
// In-flight bridge calls get ShutDownTime seconds to finish unless fast shutdown is set.
func (s *Service) Shutdown() {
	s.alive.Store(false)
	s.doneOnce.Do(func() { close(s.done) })

	grace := time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second
	if s.fastShutDown || grace <= 0 {
		grace = time.Second
	}

	log.Info().Dur("grace", grace).Msg("stopping http server ...")

	if err := s.App.ShutdownWithTimeout(grace); err != nil {
		log.Error().Err(err).Msg("http server shutdown")
	}

	log.Info().Msg("http server was stopped ... good bye...")
}

// SetFastShutdown skips the grace period on shutdown.
func (s *Service) SetFastShutdown(fast bool) {
	s.fastShutDown = fast
}

// New creates a new web service with the given configuration.
func New(cfg *config.Config, b *bridge.Bridge, hub *notify.Hub) *Service {
	if cfg == nil {
		panic("config cannot be nil")
	}

	if b == nil || hub == nil {
		panic(handler.ErrNilDepsFatalLogMsg)
	}

	app := fiber.New(
		fiber.Config{
			AppName:               appName,
			CaseSensitive:         true,
			Prefork:               false,
			Immutable:             true,
			DisableStartupMessage: !cfg.DevMode,
			ReadTimeout:           time.Duration(cfg.Webserver.ReadTimeout) * time.Second,
			WriteTimeout:          time.Duration(cfg.Webserver.WriteTimeout) * time.Second,
			BodyLimit:             64 << 20, //nolint:mnd
		},
	)

	service := &Service{
		cfg:  cfg,
		App:  app,
		done: make(chan struct{}),
	}
	service.alive.Store(true)

	app.Use(recover.New(recover.Config{EnableStackTrace: cfg.DevMode}))

	app.Use(fiberlog.New(fiberlog.Config{
		Config:    cfg.Log,
		SkipPaths: []string{HealthPath, MetricsPath},
	}))

	if cfg.Webserver.CORSOrigins != "" {
		app.Use(cors.New(cors.Config{
			AllowOrigins: cfg.Webserver.CORSOrigins,
			AllowMethods: "GET,POST,OPTIONS",
			AllowHeaders: "Content-Type," + auth.HeaderToken,
		}))
	}

	app.Use(auth.New(auth.Config{
		Token:     cfg.Webserver.Token,
		SkipPaths: []string{HealthPath, MetricsPath},
	}))

	app.Get(HealthPath, func(c *fiber.Ctx) error {
		if !service.alive.Load() {
			return c.SendStatus(fiber.StatusServiceUnavailable)
		}

		return c.SendString("ok")
	})

	app.Get(MetricsPath, adaptor.HTTPHandler(promhttp.Handler()))

	deps := handler.Deps{Cfg: cfg, Bridge: b, Hub: hub, Done: service.done}

	// the event route goes first so GET /bridge/events never reaches the channel route
	for _, h := range []handler.Service{&events.Handler, &channel.Handler} {
		if err := h.Init(app, deps); err != nil {
			log.Fatal().Err(err).Msg("init web handler")
		}
	}

	return service
}
