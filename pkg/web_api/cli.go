package web_api

import (
	"github.com/optimode/paxstats/pkg/reports"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Provides the report API endpoints",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run stats server",
				Flags: append(reports.ParameterFlags(),
					&cli.StringFlag{
						Name:  "listen",
						Value: ":8081",
						Usage: "listen target for the web server",
					},
				),
				Action: func(c *cli.Context) error {
					defaults, err := reports.ParametersFromCLI(c)
					if err != nil {
						return err
					}

					engine, closeEngine, err := reports.OpenEngine(c.Context, c.String("fixtures"))
					if err != nil {
						return err
					}
					defer closeEngine()

					log.Info().Str("listen", c.String("listen")).Str("engine", engine.Name()).Msg("Starting report API")

					return SetupServer(c.String("listen"), reports.NewRunner(engine), defaults)
				},
			},
		},
	}
}
