// Package proxy serves minimal HTML embeddings of single upstream posts. It
// keeps a persistent disk cache of processed templates with a TTL and
// conditional revalidation, falls back to stale content when the upstream
// fails and injects an optional highlight term at serve time so the cache
// does not fragment by term.
package proxy

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"
)

// hlPlaceholder is the token in cached templates that gets replaced by the
// JSON-encoded highlight term when serving.
const hlPlaceholder = "__HL_PLACEHOLDER__"

var (
	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "claims_proxy_cache_hits_total",
		Help: "Embed proxy requests served from fresh cache.",
	})
	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "claims_proxy_cache_misses_total",
		Help: "Embed proxy requests that required an upstream fetch.",
	})
	staleServed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "claims_proxy_stale_served_total",
		Help: "Embed proxy requests served stale cache after upstream failure.",
	})
)

// Proxy fetches, caches and serves single-post embed HTML.
type Proxy struct {
	baseURL  string
	cacheDir string
	ttl      time.Duration
	client   *http.Client
}

// New creates a proxy caching under cacheDir with the given TTL.
func New(baseURL, cacheDir string, ttl time.Duration) (*Proxy, error) {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("error creating proxy cache dir: %w", err)
	}
	return &Proxy{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		cacheDir: cacheDir,
		ttl:      ttl,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}, nil
}

// Fetch returns the embed HTML for a post with the highlight term injected,
// plus the HTTP status to serve. On upstream failure it serves last known
// good cache when present; otherwise the upstream status is surfaced.
func (p *Proxy) Fetch(postID string, highlight string) (string, int, error) {
	cached, meta, haveCache := p.loadCache(postID)

	if haveCache && !p.stale(meta) {
		cacheHits.Inc()
		return p.finalize(cached, highlight), http.StatusOK, nil
	}
	cacheMisses.Inc()

	template, status, newMeta, err := p.revalidate(postID, meta)
	switch {
	case err == nil && status == http.StatusNotModified && haveCache:
		p.saveCache(postID, cached, newMeta)
		return p.finalize(cached, highlight), http.StatusOK, nil
	case err == nil && status == http.StatusOK:
		p.saveCache(postID, template, newMeta)
		return p.finalize(template, highlight), http.StatusOK, nil
	}

	// Upstream failed or returned an error status; fall back to stale cache
	// if we have anything at all.
	if haveCache {
		staleServed.Inc()
		log.WithFields(log.Fields{
			"postId": postID,
			"status": status,
		}).Warn("Serving stale embed after upstream failure")
		return p.finalize(cached, highlight), http.StatusOK, nil
	}

	if err != nil {
		return "", http.StatusBadGateway, fmt.Errorf("upstream fetch failed: %w", err)
	}
	return "", status, fmt.Errorf("upstream returned status %d", status)
}

// revalidate fetches the post page from the upstream, sending conditional
// headers when cached metadata allows. Transient errors retry with
// exponential backoff.
func (p *Proxy) revalidate(postID string, cached cacheMeta) (string, int, cacheMeta, error) {
	url := fmt.Sprintf("%s/posts/%s", p.baseURL, postID)

	var body string
	var status int

	operation := func() error {
		req, err := http.NewRequest(http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		if cached.ETag != "" {
			req.Header.Set("If-None-Match", cached.ETag)
		}
		if cached.LastModified != "" {
			req.Header.Set("If-Modified-Since", cached.LastModified)
		}

		resp, err := p.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		status = resp.StatusCode
		if status == http.StatusNotModified {
			return nil
		}
		if status != http.StatusOK {
			// Error statuses are not retried; the caller decides whether to
			// serve stale.
			return nil
		}

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}

		body = p.buildTemplate(string(raw), postID)
		cached = cacheMeta{
			FetchedAt:    time.Now().Unix(),
			ETag:         resp.Header.Get("ETag"),
			LastModified: resp.Header.Get("Last-Modified"),
		}
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 200 * time.Millisecond
	policy.MaxInterval = 2 * time.Second
	policy.MaxElapsedTime = 10 * time.Second

	if err := backoff.Retry(operation, policy); err != nil {
		return "", 0, cached, err
	}

	if status == http.StatusNotModified {
		cached.FetchedAt = time.Now().Unix()
	}

	return body, status, cached, nil
}

// finalize replaces the highlight placeholder with a JSON string of the
// term, or null when no term was requested.
func (p *Proxy) finalize(template string, highlight string) string {
	term := "null"
	if highlight != "" {
		if encoded, err := json.Marshal(highlight); err == nil {
			term = string(encoded)
		}
	}
	return strings.ReplaceAll(template, hlPlaceholder, term)
}
