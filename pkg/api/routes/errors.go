package routes

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/sirensim/sirensim/pkg/dispatch"
)

// commandError maps engine command errors onto HTTP statuses: unknown
// resources are 404, everything else the engine declines is a 409 since the
// request was well-formed but the world said no.
func commandError(c *fiber.Ctx, err error) error {
	status := fiber.StatusConflict

	switch {
	case errors.Is(err, dispatch.ErrUnknownMission), errors.Is(err, dispatch.ErrUnknownStation):
		status = fiber.StatusNotFound
	case errors.Is(err, dispatch.ErrInvalidGameSpeed):
		status = fiber.StatusBadRequest
	}

	c.SendStatus(status)
	return c.JSON(fiber.Map{
		"error": err.Error(),
	})
}
