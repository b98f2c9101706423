package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"time"

	"claims/db"
	"claims/proxy"
	"claims/refdata"
	"claims/server"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the dashboard API",
		Description: `Builds the post table from the configured data files and starts
the HTTP server.

The table is built once at startup and held in memory; restart the server
to pick up a new export. Serves the paginated post feed, the metric tables,
the filter options and the post embed proxy.`,
		Flags: append(dataFlags(),
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to listen on, overrides the config file",
				EnvVars: []string{"CLAIMS_PORT"},
			},
		),
		Action: func(ctx *cli.Context) error {
			cfg, err := loadSettings(ctx)
			if err != nil {
				return err
			}
			if port := ctx.Int("port"); port != 0 {
				cfg.Server.Port = port
			}

			posts, err := buildTable(cfg)
			if err != nil {
				return err
			}

			var ratios refdata.CapexTable
			if cfg.Data.LowCarbonCSV != "" {
				ratios, err = refdata.LoadCapexRatios(cfg.Data.LowCarbonCSV)
				if err != nil {
					return fmt.Errorf("failed to load low carbon ratios: %w", err)
				}
			}

			var codebook refdata.Codebook
			if cfg.Data.Codebook != "" {
				codebook, err = refdata.LoadCodebook(cfg.Data.Codebook)
				if err != nil {
					return fmt.Errorf("failed to load codebook: %w", err)
				}
			}

			embedProxy, err := proxy.New(cfg.Proxy.BaseURL, cfg.Proxy.CacheDir, time.Duration(cfg.Proxy.TTLHours)*time.Hour)
			if err != nil {
				return fmt.Errorf("failed to set up embed proxy: %w", err)
			}

			app := server.Server(&server.ServerConfig{
				Hostname:       cfg.Server.Hostname,
				Posts:          posts,
				Codebook:       codebook,
				Ratios:         ratios,
				MinSeriesYears: cfg.Analytics.MinSeriesYears,
				Proxy:          embedProxy,
			})

			// Graceful shutdown
			c := make(chan os.Signal, 1)
			signal.Notify(c, os.Interrupt)
			var wg sync.WaitGroup

			go func() {
				<-c
				log.Info("Gracefully shutting down...")
				app.ShutdownWithTimeout(60 * time.Second)
				defer wg.Add(-1)
			}()

			go func() {
				log.WithFields(log.Fields{
					"port": cfg.Server.Port,
				}).Info("Starting server...")
				if err := app.Listen(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil {
					log.Panic(err)
				}
			}()

			wg.Add(1)
			wg.Wait()

			log.Info("Done!")

			return nil
		},
	}
}

// exportCmd writes the processed post table to a SQLite file.
func exportCmd() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export the processed post table to SQLite",
		Description: `Builds the post table from the configured data files and writes it
to a SQLite database.

Runs the same pipeline as serve, so the exported rows carry the derived
category flags and the green/brown classification. Useful for inspecting
the dataset with external tooling.`,
		Flags: append(dataFlags(),
			&cli.StringFlag{
				Name:    "database",
				Aliases: []string{"d"},
				Value:   "claims.db",
				Usage:   "Path to the SQLite database to write",
				EnvVars: []string{"CLAIMS_DATABASE"},
			},
		),
		Action: func(ctx *cli.Context) error {
			cfg, err := loadSettings(ctx)
			if err != nil {
				return err
			}

			posts, err := buildTable(cfg)
			if err != nil {
				return err
			}

			runID, err := db.Export(ctx.String("database"), posts)
			if err != nil {
				return fmt.Errorf("failed to export posts: %w", err)
			}

			fmt.Printf("Exported %d posts to %s (run %s)\n", len(posts), ctx.String("database"), runID)
			return nil
		},
	}
}
