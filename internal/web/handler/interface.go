package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ledgerdesk/ledgerdesk/internal/bridge"
	"github.com/ledgerdesk/ledgerdesk/internal/config"
	"github.com/ledgerdesk/ledgerdesk/internal/notify"
)

// Deps are the shared dependencies handed to every handler.
type Deps struct {
	Cfg    *config.Config
	Bridge *bridge.Bridge
	Hub    *notify.Hub
	// Done is closed when the web service shuts down; long lived streams end on it.
	Done <-chan struct{}
}

// Service is the interface for a web handler service.
type Service interface {
	Init(app *fiber.App, deps Deps) error
}
