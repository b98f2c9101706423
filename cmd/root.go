package cmd

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func RootApp() *cli.App {
	return &cli.App{
		Name:  "claims",
		Usage: "Analytics backend for fossil fuel social media monitoring",
		Description: `Serves the climate communication dashboard API.

Claims loads a classified export of fossil fuel companies' social media
posts, derives category flags and the green/brown classification for each
post, and serves the filterable feed, the aggregated metric tables and a
cached embed proxy over HTTP.

Flags can generally be set via environment variables, e.g.:

--config => CLAIMS_CONFIG=config.toml
--port => CLAIMS_PORT=8080
`,
		Commands: []*cli.Command{
			serveCmd(),
			exportCmd(),
			fetchCmd(),
		},
		Action: func(ctx *cli.Context) error {
			// Show help if no command is specified
			return ctx.App.Run([]string{"", "help"})
		},
	}
}

func Execute() {
	app := RootApp()
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
