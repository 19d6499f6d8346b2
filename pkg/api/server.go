package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sirensim/sirensim/pkg/api/routes"
	"github.com/sirensim/sirensim/pkg/dispatch"
)

func SetupServer(listen string, engine *dispatch.Engine) error {
	return createServer(engine).Listen(listen)
}

func createServer(engine *dispatch.Engine) *fiber.App {
	webApp := fiber.New()
	webApp.Use(NewLogger())

	group := webApp.Group("/sim")

	group.Get("version", routes.APIVersion)

	routes.SimulationRouter(group, engine)

	routes.MissionsRouter(group.Group("/missions"), engine)
	routes.StationsRouter(group.Group("/stations"), engine)

	return webApp
}
