package main

import (
	"os"
	"time"

	"github.com/optimode/paxstats/pkg/database"
	"github.com/optimode/paxstats/pkg/reports"
	"github.com/optimode/paxstats/pkg/web_api"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func main() {
	// Report output goes to stdout, keep the logs apart
	if os.Getenv("PAXSTATS_LOG_FORMAT") != "JSON" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	if os.Getenv("PAXSTATS_DEBUG") == "YES" {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	} else {
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
	}

	app := &cli.App{
		Name:        "paxstats",
		Description: "Passenger statistics reports over the segment database",

		Commands: []*cli.Command{
			reports.RegisterCLI(),
			web_api.RegisterCLI(),
			database.RegisterCLI(),
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal().Err(err).Send()
	}
}
