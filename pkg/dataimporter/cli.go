package dataimporter

import (
	"fmt"

	"github.com/AvigateGroup/avigate-app-sub000/pkg/database"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "data-importer",
		Usage: "Import curated reference data into the database",
		Subcommands: []*cli.Command{
			{
				Name:  "file",
				Usage: "Import a CSV file of locations or segments",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "type",
						Usage:    "Record type contained in the file (locations or segments)",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "file",
						Usage:    "Path of the CSV file",
						Required: true,
					},
				},
				Action: func(c *cli.Context) error {
					if err := database.Connect(); err != nil {
						return err
					}

					path := c.String("file")

					switch c.String("type") {
					case "locations":
						return ImportLocationsFile(path)
					case "segments":
						return ImportSegmentsFile(path)
					default:
						return fmt.Errorf("unknown record type %s", c.String("type"))
					}
				},
			},
		},
	}
}
