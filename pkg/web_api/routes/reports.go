package routes

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/optimode/paxstats/pkg/reports"
	"github.com/optimode/paxstats/pkg/util"
)

func ReportsRouter(router fiber.Router, runner *reports.Runner, defaults reports.Parameters) {
	router.Get("/", listReports)
	router.Get("/:name", func(c *fiber.Ctx) error {
		return getReport(c, runner, defaults)
	})
}

func listReports(c *fiber.Ctx) error {
	list := []fiber.Map{}
	for _, report := range reports.Reports() {
		list = append(list, fiber.Map{
			"name":        report.Name,
			"description": report.Description,
		})
	}

	return c.JSON(list)
}

func parametersFromQuery(c *fiber.Ctx, defaults reports.Parameters) reports.Parameters {
	parameters := defaults

	parameters.YearMonth = c.Query("month", parameters.YearMonth)
	parameters.Origin = c.Query("origin", parameters.Origin)
	parameters.Destination = c.Query("destination", parameters.Destination)
	parameters.OriginCountry = c.Query("origin_country", parameters.OriginCountry)
	parameters.DestinationCountry = c.Query("destination_country", parameters.DestinationCountry)
	parameters.ToProcess = c.QueryBool("to_process", parameters.ToProcess)

	if providers := c.Query("providers"); providers != "" {
		parameters.Providers = util.RemoveDuplicateStrings(strings.Split(providers, ","), nil)
	}

	return parameters
}

func sendError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, reports.ErrUnknownReport):
		status = fiber.StatusNotFound
	case errors.Is(err, reports.ErrInvalidParameters):
		status = fiber.StatusBadRequest
	}

	c.Status(status)
	return c.JSON(fiber.Map{
		"error": err.Error(),
	})
}

func getReport(c *fiber.Ctx, runner *reports.Runner, defaults reports.Parameters) error {
	name := c.Params("name")
	parameters := parametersFromQuery(c, defaults)
	format := c.Query("format", reports.FormatJSON)

	if format != reports.FormatJSON && format != reports.FormatCSV {
		c.Status(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "format must be json or csv",
		})
	}

	var results []*reports.Result
	if name == "all" {
		var err error
		results, err = runner.RunAll(c.UserContext(), parameters)
		if err != nil {
			return sendError(c, err)
		}
	} else {
		result, err := runner.Run(c.UserContext(), name, parameters)
		if err != nil {
			return sendError(c, err)
		}
		results = []*reports.Result{result}
	}

	if format == reports.FormatCSV {
		c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
		return reports.Render(c, reports.FormatCSV, results...)
	}

	if name == "all" {
		return c.JSON(results)
	}
	return c.JSON(results[0])
}
