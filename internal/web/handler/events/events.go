// Package events streams push notifications to the UI as server-sent events.
package events

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/valyala/fasthttp"

	"github.com/ledgerdesk/ledgerdesk/internal/notify"
	"github.com/ledgerdesk/ledgerdesk/internal/web/handler"
)

const (
	// Path is the push stream route.
	Path = handler.BridgePath + "/events"

	// SubscriberParam is the query parameter carrying the stable subscriber id.
	SubscriberParam = "subscriber"

	bufferSize = 16
	keepAlive  = 25 * time.Second
)

// Service is the push stream handler service.
type Service struct {
	hub  *notify.Hub
	done <-chan struct{}
}

// Handler is the push stream handler.
var Handler = Service{} //nolint:gochecknoglobals

// Init registers the push stream route.
func (s *Service) Init(app *fiber.App, deps handler.Deps) error {
	if app == nil || deps.Hub == nil {
		return errors.New(handler.ErrNilDepsFatalLogMsg) //nolint:err113
	}

	s.hub = deps.Hub
	s.done = deps.Done

	app.Get(Path, s.Get)

	return nil
}

// Get subscribes the caller and streams events until the client goes away or the service stops.
func (s *Service) Get(c *fiber.Ctx) error {
	id := c.Query(SubscriberParam)
	if id == "" {
		id = uuid.NewString()
	}

	queue := make(chan notify.Event, bufferSize)

	detach, err := s.hub.Attach(id, func(e notify.Event) {
		select {
		case queue <- e:
		default:
			log.Warn().Str("subscriber", id).Str("channel", e.Channel).Msg("push queue full, event dropped")
		}
	})
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": err.Error()})
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	done := s.done

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer detach()

		log.Debug().Str("subscriber", id).Msg("push stream opened")

		if writeEvent(w, "ready", map[string]string{"subscriber": id}) != nil {
			return
		}

		ticker := time.NewTicker(keepAlive)
		defer ticker.Stop()

		for {
			select {
			case e := <-queue:
				if writeEvent(w, e.Channel, e) != nil {
					return
				}
			case <-ticker.C:
				if _, errW := w.WriteString(": keep-alive\n\n"); errW != nil || w.Flush() != nil {
					return
				}
			case <-done:
				drain(w, queue)
				log.Debug().Str("subscriber", id).Msg("push stream closed by shutdown")

				return
			}
		}
	}))

	return nil
}

func drain(w *bufio.Writer, queue <-chan notify.Event) {
	for {
		select {
		case e := <-queue:
			if writeEvent(w, e.Channel, e) != nil {
				return
			}
		default:
			return
		}
	}
}

// writeEvent writes one SSE frame and flushes it.
func writeEvent(w *bufio.Writer, name string, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err //nolint:wrapcheck
	}

	if _, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, raw); err != nil {
		return err //nolint:wrapcheck
	}

	return w.Flush() //nolint:wrapcheck
}
