// Package ingest reads a raw classifier export and projects it down to the
// fixed set of logical columns the processing pipeline consumes, tolerating
// the column naming drift between export generations.
package ingest

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/labstack/gommon/bytes"
	log "github.com/sirupsen/logrus"
)

// LoadPosts reads and normalizes the raw post export at path.
func LoadPosts(path string) ([]RawPost, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading post export: %w", err)
	}

	log.WithFields(log.Fields{
		"path": path,
		"size": bytes.Format(int64(len(data))),
	}).Info("Loading post export")

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("error parsing post export: %w", err)
	}

	posts, err := Normalize(doc)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"posts": len(posts),
	}).Info("Normalized post export")

	return posts, nil
}
