package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureValidTokenRejectsMalformedHeaders(t *testing.T) {
	t.Setenv("AUTH0_DOMAIN", "avigate.test")
	t.Setenv("AUTH0_AUDIENCE", "https://api.avigate.test")

	app := fiber.New()
	app.Use(EnsureValidToken())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	// Headers shorter than or unlike a bearer token must be rejected, not
	// crash the handler
	for _, header := range []string{"", "abc", "Bearer", "Token abcdef"} {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			request.Header.Set("Authorization", header)
		}

		response, err := app.Test(request)
		require.NoError(t, err, header)
		assert.Equal(t, fiber.StatusUnauthorized, response.StatusCode, header)
	}
}
