package routes

import (
	"errors"

	"github.com/AvigateGroup/avigate-app-sub000/pkg/transit"
	"github.com/gofiber/fiber/v2"
)

// renderEngineError maps the engine's typed errors onto HTTP statuses,
// anything unrecognised becomes a 500
func renderEngineError(c *fiber.Ctx, err error) error {
	var notFound transit.NotFoundError
	var duplicateTrip transit.DuplicateActiveTripError
	var invalidState transit.InvalidTripStateError

	switch {
	case errors.As(err, &notFound):
		c.SendStatus(fiber.StatusNotFound)
	case errors.As(err, &duplicateTrip):
		c.SendStatus(fiber.StatusConflict)
	case errors.As(err, &invalidState):
		c.SendStatus(fiber.StatusConflict)
	default:
		c.SendStatus(fiber.StatusInternalServerError)
	}

	return c.JSON(fiber.Map{
		"error": err.Error(),
	})
}
