package main

import (
	"os"
	"time"

	"github.com/AvigateGroup/avigate-app-sub000/pkg/api"
	"github.com/AvigateGroup/avigate-app-sub000/pkg/dataimporter"
	"github.com/AvigateGroup/avigate-app-sub000/pkg/events"
	"github.com/AvigateGroup/avigate-app-sub000/pkg/notify"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	_ "time/tzdata"
)

func main() {
	if os.Getenv("AVIGATE_LOG_FORMAT") != "JSON" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	if os.Getenv("AVIGATE_DEBUG") == "YES" {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	} else {
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
	}

	app := &cli.App{
		Name:        "avigate",
		Description: "Single binary of truth for Avigate - runs all the services",

		Commands: []*cli.Command{
			api.RegisterCLI(),
			events.RegisterCLI(),
			notify.RegisterCLI(),
			dataimporter.RegisterCLI(),
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal().Err(err).Send()
	}
}
