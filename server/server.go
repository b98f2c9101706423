package server

import (
	"strings"
	"time"

	"claims/feed"
	"claims/metrics"
	"claims/models"
	"claims/proxy"
	"claims/refdata"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cache"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

var requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "claims_http_requests_total",
	Help: "HTTP requests by route and status.",
}, []string{"route", "status"})

type ServerConfig struct {

	// The hostname to use for the server
	Hostname string

	// The canonical post table, immutable after construction
	Posts []models.Post

	// Category taxonomy for the proportion metric axes
	Codebook refdata.Codebook

	// External low-carbon CAPEX ratios for the greenwashing score
	Ratios refdata.CapexTable

	// Companies with fewer qualifying years are flagged short-history
	MinSeriesYears int

	// Embed proxy for single-post HTML
	Proxy *proxy.Proxy
}

// Returns a fiber.App instance serving the dashboard query surface: the
// paginated post feed, the aggregated metric tables and the embed proxy.
func Server(config *ServerConfig) *fiber.App {

	app := fiber.New()

	// Middleware to track the latency of each request
	app.Use(func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		log.WithFields(log.Fields{
			"method":  c.Method(),
			"route":   c.Route().Path,
			"latency": time.Since(start),
		}).Info("Request")

		requestsTotal.WithLabelValues(c.Route().Path, statusLabel(c.Response().StatusCode())).Inc()
		return err
	})

	app.Use(requestid.New(requestid.ConfigDefault))
	app.Use(compress.New())
	app.Use(cors.New(cors.Config{
		AllowHeaders: "Cache-Control",
	}))

	// Cache the read-only API responses; the table never changes within a
	// process, so responses only vary by query string.
	app.Use(cache.New(cache.Config{
		Expiration: 5 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			if c.Method() != "GET" {
				return true
			}
			return !strings.HasPrefix(c.Path(), "/api/")
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.Request().URI().String()
		},
	}))

	app.Get("/api/posts", func(c *fiber.Ctx) error {
		filters := parseFilters(c)
		page := c.QueryInt("page", 0)
		pageSize := c.QueryInt("page_size", 10)
		if pageSize < 1 || pageSize > 100 {
			pageSize = 10
		}

		filtered := feed.Apply(config.Posts, filters)

		if c.Query("view") == "compare" {
			left := c.Query("left", "green")
			right := c.Query("right", "brown")
			return c.JSON(feed.Compare(filtered, left, right, page, pageSize))
		}

		return c.JSON(feed.Page(filtered, page, pageSize))
	})

	app.Get("/api/options", func(c *fiber.Ctx) error {
		return c.JSON(feed.Options(config.Posts))
	})

	app.Get("/api/metrics/overview", func(c *fiber.Ctx) error {
		filtered := feed.Apply(config.Posts, parseFilters(c))
		return c.JSON(fiber.Map{
			"totals":      metrics.ClassTotals(filtered),
			"proportions": metrics.Proportions(filtered, config.Codebook),
		})
	})

	app.Get("/api/metrics/greenwashing", func(c *fiber.Ctx) error {
		filtered := feed.Apply(config.Posts, parseFilters(c))
		rows := metrics.GreenwashingScores(filtered, config.Ratios)
		if rows == nil {
			rows = []models.GreenwashingRow{}
		}
		return c.JSON(rows)
	})

	app.Get("/api/metrics/green-share", func(c *fiber.Ctx) error {
		filtered := feed.Apply(config.Posts, parseFilters(c))
		rows := metrics.GreenShare(filtered, config.MinSeriesYears)
		if rows == nil {
			rows = []models.GreenShareRow{}
		}
		return c.JSON(rows)
	})

	app.Get("/embed/:id", func(c *fiber.Ctx) error {
		html, status, err := config.Proxy.Fetch(c.Params("id"), c.Query("hl"))
		if err != nil {
			// Scoped failure: the embed iframe shows the error, the rest of
			// the page keeps working.
			log.WithFields(log.Fields{
				"postId": c.Params("id"),
				"error":  err,
			}).Error("Error loading embedded post")
			return c.Status(status).SendString("Unable to load post.")
		}
		c.Set("Content-Type", "text/html")
		c.Set("Cache-Control", "public, max-age=86400")
		return c.Status(status).SendString(html)
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	return app
}

func statusLabel(code int) string {
	switch {
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
