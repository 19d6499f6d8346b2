package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/paulmach/orb"

	"github.com/sirensim/sirensim/pkg/dispatch"
)

func MissionsRouter(router fiber.Router, engine *dispatch.Engine) {
	router.Get("/", listMissions(engine))
	router.Post("/", createMission(engine))
	router.Post("/:identifier/dispatch", dispatchMission(engine))
}

func listMissions(engine *dispatch.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(engine.Snapshot().Missions)
	}
}

type createMissionBody struct {
	Type     string     `json:"type"`
	Position [2]float64 `json:"position"`
}

func createMission(engine *dispatch.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body createMissionBody
		if err := c.BodyParser(&body); err != nil {
			c.SendStatus(fiber.StatusBadRequest)
			return c.JSON(fiber.Map{
				"error": "Invalid request body",
			})
		}

		mission := engine.SpawnMissionAt(dispatch.MissionType(body.Type), orb.Point(body.Position))
		if mission == nil {
			c.SendStatus(fiber.StatusBadRequest)
			return c.JSON(fiber.Map{
				"error": "Unknown mission type",
			})
		}

		return c.JSON(fiber.Map{
			"id": mission.ID,
		})
	}
}

func dispatchMission(engine *dispatch.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := engine.DispatchVehicle(c.Params("identifier")); err != nil {
			return commandError(c, err)
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
