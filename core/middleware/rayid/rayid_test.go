package rayid

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	app := fiber.New()
	app.Use(New())

	var seen string
	app.Get("/", func(c *fiber.Ctx) error {
		seen, _ = c.Locals(LocalsKey).(string)
		return c.SendStatus(fiber.StatusNoContent)
	})

	t.Run("Generates id", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
		require.NoError(t, err)

		header := resp.Header.Get(HeaderName)
		_, parseErr := uuid.Parse(header)
		assert.NoError(t, parseErr)
		assert.Equal(t, header, seen)
	})

	t.Run("Reuses incoming id", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set(HeaderName, "caller-123")
		resp, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, "caller-123", resp.Header.Get(HeaderName))
		assert.Equal(t, "caller-123", seen)
	})
}
