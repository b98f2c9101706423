package proxy

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// cacheMeta is the sidecar state for one cached post template.
type cacheMeta struct {
	FetchedAt    int64  `json:"fetched_at"`
	ETag         string `json:"etag,omitempty"`
	LastModified string `json:"last_modified,omitempty"`
}

func (p *Proxy) cachePaths(postID string) (string, string) {
	// Post ids come straight from the URL; keep only filename-safe runes.
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return -1
	}, postID)
	return filepath.Join(p.cacheDir, safe+".html"), filepath.Join(p.cacheDir, safe+".json")
}

func (p *Proxy) loadCache(postID string) (string, cacheMeta, bool) {
	bodyPath, metaPath := p.cachePaths(postID)

	body, err := os.ReadFile(bodyPath)
	if err != nil {
		return "", cacheMeta{}, false
	}

	var meta cacheMeta
	if raw, err := os.ReadFile(metaPath); err == nil {
		// A corrupt meta file degrades to an always-stale entry.
		_ = json.Unmarshal(raw, &meta)
	}

	return string(body), meta, true
}

// saveCache is best effort; a full disk must not break the request.
func (p *Proxy) saveCache(postID string, template string, meta cacheMeta) {
	bodyPath, metaPath := p.cachePaths(postID)
	if err := os.WriteFile(bodyPath, []byte(template), 0o644); err != nil {
		return
	}
	if raw, err := json.Marshal(meta); err == nil {
		_ = os.WriteFile(metaPath, raw, 0o644)
	}
}

func (p *Proxy) stale(meta cacheMeta) bool {
	return time.Since(time.Unix(meta.FetchedAt, 0)) > p.ttl
}
