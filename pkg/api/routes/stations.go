package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/paulmach/orb"

	"github.com/sirensim/sirensim/pkg/dispatch"
)

func StationsRouter(router fiber.Router, engine *dispatch.Engine) {
	router.Get("/", listStations(engine))
	router.Post("/", placeStation(engine))

	router.Post("/:identifier/upgrade", upgradeStation(engine))
	router.Post("/:identifier/sell", sellStation(engine))
	router.Post("/:identifier/staff", hireStaff(engine))
	router.Post("/:identifier/vehicles", purchaseVehicle(engine))
}

func listStations(engine *dispatch.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(engine.Snapshot().Stations)
	}
}

type placeStationBody struct {
	Type     string     `json:"type"`
	Position [2]float64 `json:"position"`
}

func placeStation(engine *dispatch.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body placeStationBody
		if err := c.BodyParser(&body); err != nil {
			c.SendStatus(fiber.StatusBadRequest)
			return c.JSON(fiber.Map{
				"error": "Invalid request body",
			})
		}

		id, err := engine.PlaceBuilding(dispatch.StationType(body.Type), orb.Point(body.Position))
		if err != nil {
			return commandError(c, err)
		}

		return c.JSON(fiber.Map{
			"id": id,
		})
	}
}

func upgradeStation(engine *dispatch.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := engine.UpgradeBuilding(c.Params("identifier")); err != nil {
			return commandError(c, err)
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}

func sellStation(engine *dispatch.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := engine.SellBuilding(c.Params("identifier")); err != nil {
			return commandError(c, err)
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}

func hireStaff(engine *dispatch.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := engine.HireStaff(c.Params("identifier")); err != nil {
			return commandError(c, err)
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}

func purchaseVehicle(engine *dispatch.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := engine.PurchaseVehicle(c.Params("identifier"))
		if err != nil {
			return commandError(c, err)
		}

		return c.JSON(fiber.Map{
			"id": id,
		})
	}
}
