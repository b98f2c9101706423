package cmd

import (
	"fmt"

	"claims/config"
	"claims/ingest"
	"claims/models"
	"claims/process"
	"claims/refdata"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

// dataFlags are shared between the commands that build the post table.
func dataFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Value:   "config.toml",
			Usage:   "Path to the configuration file",
			EnvVars: []string{"CLAIMS_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "posts",
			Usage:   "Path to the classified posts JSON export, overrides the config file",
			EnvVars: []string{"CLAIMS_POSTS"},
		},
	}
}

func loadSettings(ctx *cli.Context) (*config.TomlConfig, error) {
	cfg, err := config.LoadConfig(ctx.String("config"))
	if err != nil {
		log.WithFields(log.Fields{
			"path":  ctx.String("config"),
			"error": err,
		}).Warn("Could not read config file, using defaults")
		cfg = config.Default()
	}
	if posts := ctx.String("posts"); posts != "" {
		cfg.Data.Posts = posts
	}
	return cfg, nil
}

// buildTable runs the full data pipeline: load and normalize the raw export,
// derive the per-post flags, join companies and order the table.
func buildTable(cfg *config.TomlConfig) ([]models.Post, error) {
	if cfg.Data.Posts == "" {
		return nil, fmt.Errorf("no posts file configured")
	}

	raw, err := ingest.LoadPosts(cfg.Data.Posts)
	if err != nil {
		return nil, fmt.Errorf("failed to load posts: %w", err)
	}

	var mapping []refdata.ChannelRow
	if cfg.Data.ChannelMapping != "" {
		mapping, err = refdata.LoadChannelMapping(cfg.Data.ChannelMapping)
		if err != nil {
			return nil, fmt.Errorf("failed to load channel mapping: %w", err)
		}
	}

	posts := process.Posts(raw, cfg.Taxonomy, mapping)

	log.WithFields(log.Fields{
		"posts": len(posts),
	}).Info("Post table ready")

	return posts, nil
}
