package cmd

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/cqroot/prompt"
	"github.com/cqroot/prompt/input"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

// fetchCmd pulls the post content for a labelled id list from the Junkipedia
// API and writes a combined CSV that the labelling pipeline can consume.
func fetchCmd() *cli.Command {
	return &cli.Command{
		Name:  "fetch",
		Usage: "Fetch post content for labelled post ids",
		Description: `Reads a CSV of post ids with classifier labels, fetches each post
from the Junkipedia API and writes a combined CSV with the post content
and the labels.

An API key is required. Pass it via the CLAIMS_JUNKIPEDIA_KEY environment
variable or enter it at the prompt.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "labels",
				Aliases:  []string{"l"},
				Usage:    "Path to the CSV of post ids and labels",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Value:   "posts.csv",
				Usage:   "Path to the combined CSV to write",
			},
			&cli.StringFlag{
				Name:    "base-url",
				Value:   "https://www.junkipedia.org",
				Usage:   "Junkipedia API base URL",
				EnvVars: []string{"CLAIMS_JUNKIPEDIA_URL"},
			},
			&cli.StringFlag{
				Name:    "api-key",
				Usage:   "Junkipedia API key",
				EnvVars: []string{"CLAIMS_JUNKIPEDIA_KEY"},
			},
		},
		Action: func(ctx *cli.Context) error {
			apiKey := ctx.String("api-key")
			if apiKey == "" {
				key, err := prompt.New().Ask("API key:").Input("", input.WithEchoMode(input.EchoNone))
				if err != nil {
					return err
				}
				apiKey = key
			}

			rows, err := readLabelRows(ctx.String("labels"))
			if err != nil {
				return fmt.Errorf("failed to read labels: %w", err)
			}

			client := &http.Client{Timeout: 30 * time.Second}

			out, err := os.Create(ctx.String("output"))
			if err != nil {
				return err
			}
			defer out.Close()

			writer := csv.NewWriter(out)
			header := []string{"id", "published_at", "channel_name", "platform_name", "title", "text", "likes", "comments", "y_pred"}
			if err := writer.Write(header); err != nil {
				return err
			}

			fetched := 0
			for _, row := range rows {
				post, err := fetchPost(client, ctx.String("base-url"), apiKey, row.id)
				if err != nil {
					log.WithFields(log.Fields{
						"postId": row.id,
						"error":  err,
					}).Warn("Skipping post")
					continue
				}
				post = append(post, row.labels)
				if err := writer.Write(post); err != nil {
					return err
				}
				fetched++
			}
			writer.Flush()
			if err := writer.Error(); err != nil {
				return err
			}

			fmt.Printf("Fetched %d of %d posts to %s\n", fetched, len(rows), ctx.String("output"))
			return nil
		},
	}
}

type labelRow struct {
	id     string
	labels string
}

// readLabelRows reads the id and label columns from the labelled CSV. The
// first two columns are used; a header row is detected by a non-numeric
// first cell.
func readLabelRows(path string) ([]labelRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	var rows []labelRow
	first := true
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(record) < 2 {
			continue
		}
		if first {
			first = false
			if strings.EqualFold(record[0], "id") || strings.EqualFold(record[0], "uid") {
				continue
			}
		}
		rows = append(rows, labelRow{id: strings.TrimSpace(record[0]), labels: record[1]})
	}
	return rows, nil
}

func fetchPost(client *http.Client, baseURL, apiKey, postID string) ([]string, error) {
	req, err := http.NewRequest(http.MethodGet, fmt.Sprintf("%s/apiv1/posts/%s", strings.TrimRight(baseURL, "/"), postID), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var body struct {
		Data struct {
			Attributes map[string]any `json:"attributes"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	attrs := body.Data.Attributes

	return []string{
		postID,
		attrString(attrs, "published_at"),
		attrString(attrs, "channel_name"),
		attrString(attrs, "platform_name"),
		attrString(attrs, "post_title"),
		attrString(attrs, "search_data_fields", "description"),
		attrString(attrs, "engagement_fields", "likes_count"),
		attrString(attrs, "engagement_fields", "comments_count"),
	}, nil
}

// attrString walks a path of nested maps and renders the leaf as a string.
func attrString(attrs map[string]any, path ...string) string {
	var current any = attrs
	for _, key := range path {
		m, ok := current.(map[string]any)
		if !ok {
			return ""
		}
		current, ok = m[key]
		if !ok {
			return ""
		}
	}
	switch v := current.(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%.0f", v)
	case bool:
		return fmt.Sprintf("%t", v)
	case nil:
		return ""
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(encoded)
	}
}
