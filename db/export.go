package db

import (
	"database/sql"
	"time"

	"claims/models"

	"github.com/google/uuid"
	sqlbuilder "github.com/huandu/go-sqlbuilder"
	log "github.com/sirupsen/logrus"
)

const insertBatchSize = 500

var postColumns = []string{
	"id", "published_at", "year", "company", "channel_name", "platform_name",
	"title", "text", "engagement",
	"fossil_fuel", "primary_product", "petrochemical_product", "infrastructure_production",
	"green", "renewable_energy", "emissions_reduction", "false_solutions", "recycling",
	"misc", "other_green", "other_fossil", "green_brown", "duplicate",
}

// Export writes the processed post table to a SQLite database so it can be
// inspected with external tooling. Each export is recorded as a run with a
// generated id. Returns the run id.
func Export(database string, posts []models.Post) (string, error) {
	if err := Migrate(database); err != nil {
		return "", err
	}

	db, err := connection(database)
	if err != nil {
		return "", err
	}
	defer db.Close()

	runID := uuid.NewString()

	for start := 0; start < len(posts); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(posts) {
			end = len(posts)
		}
		if err := insertPosts(db, posts[start:end]); err != nil {
			return "", err
		}
	}

	insertRun := sqlbuilder.NewInsertBuilder()
	query, args := insertRun.InsertInto("export_runs").
		Cols("id", "exported_at", "post_count").
		Values(runID, time.Now().Unix(), len(posts)).
		Build()
	if _, err := db.Exec(query, args...); err != nil {
		log.Error("Error recording export run", err)
		return "", err
	}

	log.WithFields(log.Fields{
		"run":   runID,
		"posts": len(posts),
	}).Info("Exported posts")

	return runID, nil
}

func insertPosts(db *sql.DB, posts []models.Post) error {
	insert := sqlbuilder.NewInsertBuilder()
	insert.ReplaceInto("posts").Cols(postColumns...)
	for _, post := range posts {
		insert.Values(
			post.ID, post.PublishedAt.Unix(), post.Year, post.Company,
			post.ChannelName, post.PlatformName, post.Title, post.Text,
			post.Engagement,
			post.FossilFuel, post.PrimaryProduct, post.PetrochemicalProduct,
			post.InfrastructureProduction,
			post.Green, post.RenewableEnergy, post.EmissionsReduction,
			post.FalseSolutions, post.Recycling,
			post.Misc, post.OtherGreen, post.OtherFossil,
			post.GreenBrown, post.Duplicate,
		)
	}
	query, args := insert.Build()

	if _, err := db.Exec(query, args...); err != nil {
		log.Error("Error inserting posts", err)
		return err
	}
	return nil
}
