// Package auth guards the bridge routes with a shared access token.
//
// The desktop shell reads the token from the daemon and sends it with every call,
// either in the X-Bridge-Token header or, for EventSource streams that can not
// set headers, in the token query parameter.
package auth

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

const (
	// HeaderToken carries the token on regular calls.
	HeaderToken = "X-Bridge-Token"
	// QueryToken carries the token on push streams.
	QueryToken = "token"
)

// Config of the token middleware.
type Config struct {
	// Token is the expected secret. An empty token disables the check.
	Token string

	// SkipPaths are served without a token, e.g. the health check.
	SkipPaths []string
}

// New creates the token middleware.
func New(cfg Config) fiber.Handler {
	if cfg.Token == "" {
		log.Warn().Msg("bridge token is empty, calls are not authenticated")

		return func(c *fiber.Ctx) error { return c.Next() }
	}

	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	want := []byte(cfg.Token)

	return func(c *fiber.Ctx) error {
		if _, ok := skip[c.Path()]; ok || c.Method() == fiber.MethodOptions {
			return c.Next()
		}

		got := c.Get(HeaderToken)
		if got == "" {
			got = c.Query(QueryToken)
		}

		if subtle.ConstantTimeCompare([]byte(got), want) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   "invalid bridge token",
			})
		}

		return c.Next()
	}
}
