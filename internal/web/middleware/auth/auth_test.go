package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(token string) *fiber.App {
	app := fiber.New()
	app.Use(New(Config{Token: token, SkipPaths: []string{"/healthz"}}))

	ok := func(c *fiber.Ctx) error { return c.SendString("ok") }
	app.Get("/healthz", ok)
	app.Post("/bridge/:channel", ok)
	app.Get("/bridge/events", ok)

	return app
}

func TestMiddleware(t *testing.T) {
	app := newTestApp("s3cret")

	testCases := []struct {
		name   string
		method string
		target string
		header string
		want   int
	}{
		{name: "missing token", method: http.MethodPost, target: "/bridge/db-query", want: fiber.StatusUnauthorized},
		{name: "wrong token", method: http.MethodPost, target: "/bridge/db-query", header: "nope", want: fiber.StatusUnauthorized},
		{name: "header token", method: http.MethodPost, target: "/bridge/db-query", header: "s3cret", want: fiber.StatusOK},
		{name: "query token", method: http.MethodGet, target: "/bridge/events?token=s3cret", want: fiber.StatusOK},
		{name: "skipped path", method: http.MethodGet, target: "/healthz", want: fiber.StatusOK},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.target, nil)
			if tc.header != "" {
				req.Header.Set(HeaderToken, tc.header)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tc.want, resp.StatusCode)
		})
	}
}

func TestEmptyTokenDisablesCheck(t *testing.T) {
	resp, err := newTestApp("").Test(httptest.NewRequest(http.MethodPost, "/bridge/db-query", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
