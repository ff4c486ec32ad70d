package web_api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/optimode/paxstats/pkg/reports"
	"github.com/optimode/paxstats/pkg/web_api/routes"
)

func NewApp(runner *reports.Runner, defaults reports.Parameters) *fiber.App {
	webApp := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	webApp.Use(NewLogger())

	group := webApp.Group("/reports")

	group.Get("version", routes.APIVersion)
	routes.ReportsRouter(group, runner, defaults)

	return webApp
}

func SetupServer(listen string, runner *reports.Runner, defaults reports.Parameters) error {
	return NewApp(runner, defaults).Listen(listen)
}
