package api

import (
	"github.com/AvigateGroup/avigate-app-sub000/pkg/api/routes"
	"github.com/gofiber/fiber/v2"
)

func SetupServer(listen string) error {
	webApp := fiber.New()
	webApp.Use(NewLogger())

	group := webApp.Group("/core")

	group.Get("version", routes.APIVersion)

	routes.LocationsRouter(group.Group("/locations"))
	routes.SegmentsRouter(group.Group("/segments"))

	routes.PlannerRouter(group.Group("/planner"))

	routes.TripsRouter(group.Group("/trips", EnsureValidToken()))

	routes.AccountRouter(group.Group("/account", EnsureValidToken()))

	return webApp.Listen(listen)
}
