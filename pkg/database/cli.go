package database

import (
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "database",
		Usage: "Maintenance commands for the segment database",
		Subcommands: []*cli.Command{
			{
				Name:  "indexes",
				Usage: "create the indexes used by the report match stages",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "segments-collection",
						Value: "segment_initial_data",
					},
					&cli.StringFlag{
						Name:  "external-segments-collection",
						Value: "external_segment_laurent_tests",
					},
					&cli.StringFlag{
						Name:  "providers-collection",
						Value: "provider",
					},
				},
				Action: func(c *cli.Context) error {
					if err := Connect(); err != nil {
						return err
					}
					defer Disconnect(c.Context)

					return CreateIndexes(c.Context, CollectionIndexes(
						c.String("segments-collection"),
						c.String("external-segments-collection"),
						c.String("providers-collection"),
					))
				},
			},
		},
	}
}
