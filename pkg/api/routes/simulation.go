package routes

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/sirensim/sirensim/pkg/dispatch"
)

func SimulationRouter(router fiber.Router, engine *dispatch.Engine) {
	router.Get("/state", getState(engine))

	router.Post("/pause", postPause(engine))
	router.Post("/resume", postResume(engine))
	router.Post("/speed/:multiplier", postSpeed(engine))
}

func getState(engine *dispatch.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(engine.Snapshot())
	}
}

func postPause(engine *dispatch.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		engine.Pause()

		return c.SendStatus(fiber.StatusNoContent)
	}
}

func postResume(engine *dispatch.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		engine.Resume()

		return c.SendStatus(fiber.StatusNoContent)
	}
}

func postSpeed(engine *dispatch.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		multiplier, err := strconv.Atoi(c.Params("multiplier"))
		if err != nil {
			c.SendStatus(fiber.StatusBadRequest)
			return c.JSON(fiber.Map{
				"error": "Speed multiplier should be an integer",
			})
		}

		if err := engine.SetGameSpeed(multiplier); err != nil {
			return commandError(c, err)
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
