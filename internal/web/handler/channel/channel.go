// Package channel serves the request/response bridge channels over HTTP.
package channel

import (
	"bytes"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/ledgerdesk/ledgerdesk/internal/bridge"
	"github.com/ledgerdesk/ledgerdesk/internal/web/handler"
)

const (
	// Path is the route of a channel call; the channel name is the last segment.
	Path = handler.BridgePath + "/:channel"
)

// Service is the channel handler service.
type Service struct {
	bridge *bridge.Bridge
}

// Handler is the channel handler.
var Handler = Service{} //nolint:gochecknoglobals

// Init registers the channel route.
func (s *Service) Init(app *fiber.App, deps handler.Deps) error {
	if app == nil || deps.Bridge == nil {
		return errors.New(handler.ErrNilDepsFatalLogMsg) //nolint:err113
	}

	s.bridge = deps.Bridge

	app.Post(Path, s.Post)

	return nil
}

// Post runs the channel named in the path with the request body.
// The answer is always 200 with the outcome object; failures live inside it.
func (s *Service) Post(c *fiber.Ctx) error {
	body := bytes.Clone(c.Body())

	result := s.bridge.Call(c.UserContext(), c.Params("channel"), body)

	return c.Status(fiber.StatusOK).JSON(result)
}
