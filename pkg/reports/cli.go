package reports

import (
	"fmt"
	"os"

	"github.com/optimode/paxstats/pkg/elastic_client"
	"github.com/optimode/paxstats/pkg/util"
	"github.com/urfave/cli/v2"
)

// ParameterFlags are shared by every command that runs reports
func ParameterFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "config",
			Usage: "YAML file overriding the default report parameters",
		},
		&cli.StringFlag{
			Name:  "fixtures",
			Usage: "directory of <collection>.json exports to aggregate in memory instead of MongoDB",
		},
		&cli.StringFlag{
			Name:  "month",
			Usage: "reporting month (YYYY-MM)",
		},
		&cli.StringFlag{
			Name:  "origin",
			Usage: "route origin airport",
		},
		&cli.StringFlag{
			Name:  "destination",
			Usage: "route destination airport",
		},
		&cli.StringFlag{
			Name:  "origin-country",
			Usage: "origin country name for pax-by-airline",
		},
		&cli.StringFlag{
			Name:  "destination-country",
			Usage: "destination country name for pax-by-airline",
		},
		&cli.StringSliceFlag{
			Name:  "provider",
			Usage: "restrict provider reports to these providers",
		},
		&cli.BoolFlag{
			Name:  "to-process",
			Usage: "only check providers flagged for import",
		},
	}
}

// ParametersFromCLI applies the config file then any flag explicitly set
func ParametersFromCLI(c *cli.Context) (Parameters, error) {
	parameters := DefaultParameters()

	if path := c.String("config"); path != "" {
		var err error
		parameters, err = LoadParameters(path)
		if err != nil {
			return parameters, err
		}
	}

	if c.IsSet("month") {
		parameters.YearMonth = c.String("month")
	}
	if c.IsSet("origin") {
		parameters.Origin = c.String("origin")
	}
	if c.IsSet("destination") {
		parameters.Destination = c.String("destination")
	}
	if c.IsSet("origin-country") {
		parameters.OriginCountry = c.String("origin-country")
	}
	if c.IsSet("destination-country") {
		parameters.DestinationCountry = c.String("destination-country")
	}
	if c.IsSet("provider") {
		parameters.Providers = util.RemoveDuplicateStrings(c.StringSlice("provider"), nil)
	}
	if c.IsSet("to-process") {
		parameters.ToProcess = c.Bool("to-process")
	}

	return parameters, parameters.Validate()
}

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "Runs the passenger segment reports",
		Subcommands: []*cli.Command{
			{
				Name:      "run",
				Usage:     "run one report, or all of them",
				ArgsUsage: "<report name|all>",
				Flags: append(ParameterFlags(),
					&cli.StringFlag{
						Name:  "format",
						Value: FormatJSON,
						Usage: "output format: json, csv or pretty",
					},
					&cli.BoolFlag{
						Name:  "index",
						Usage: "also index the rows into Elasticsearch",
					},
				),
				Action: func(c *cli.Context) error {
					name := c.Args().First()
					if name == "" {
						return fmt.Errorf("report name required, one of all, %v", ReportNames())
					}

					if !util.ContainsString(Formats, c.String("format")) {
						return fmt.Errorf("unknown output format %q, expected one of %v", c.String("format"), Formats)
					}

					parameters, err := ParametersFromCLI(c)
					if err != nil {
						return err
					}

					if c.Bool("index") {
						if err := elastic_client.Connect(true); err != nil {
							return err
						}
					}

					engine, closeEngine, err := OpenEngine(c.Context, c.String("fixtures"))
					if err != nil {
						return err
					}
					defer closeEngine()

					runner := NewRunner(engine)

					var results []*Result
					if name == "all" {
						results, err = runner.RunAll(c.Context, parameters)
					} else {
						var result *Result
						result, err = runner.Run(c.Context, name, parameters)
						results = []*Result{result}
					}
					if err != nil {
						return err
					}

					if c.Bool("index") {
						for _, result := range results {
							if err := Publish(result); err != nil {
								return err
							}
						}

						if err := elastic_client.WaitUntilQueueEmpty(); err != nil {
							return err
						}
					}

					return Render(os.Stdout, c.String("format"), results...)
				},
			},
			{
				Name:  "list",
				Usage: "list the available reports",
				Action: func(c *cli.Context) error {
					for _, report := range Reports() {
						fmt.Fprintf(os.Stdout, "%-20s %s\n", report.Name, report.Description)
					}
					return nil
				},
			},
		},
	}
}
