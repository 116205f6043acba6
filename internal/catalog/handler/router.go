// Package handler exposes the catalog over HTTP.
package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/narwhalmedia/catalog/internal/metrics"
	"github.com/narwhalmedia/catalog/pkg/interfaces"
	"github.com/narwhalmedia/catalog/pkg/logger"
)

// RouterConfig configures the HTTP surface.
type RouterConfig struct {
	StaticRoot         string
	MediaRoot          string
	MediaURL           string
	CORSAllowedOrigins []string
	RateLimitRequests  int
	RateLimitWindow    time.Duration
	MetricsEnabled     bool
	MetricsPath        string
}

// NewRouter wires the catalog routes and middleware.
func NewRouter(h *Handler, cfg RouterConfig, log interfaces.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(logger.HTTPMiddleware(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(instrument)

	origins := cfg.CORSAllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/healthz", h.Health)
	r.Get("/readyz", h.Ready)
	if cfg.MetricsEnabled {
		r.Handle(cfg.MetricsPath, promhttp.Handler())
	}

	serveDir(r, "/static/", cfg.StaticRoot)
	serveDir(r, cfg.MediaURL, cfg.MediaRoot)

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.RateLimitRequests > 0 {
			r.Use(httprate.LimitByIP(cfg.RateLimitRequests, cfg.RateLimitWindow))
		}

		r.Route("/movies", func(r chi.Router) {
			r.Get("/", h.ListMovies)
			r.Get("/{id}", h.GetMovie)
			r.Get("/{id}/file", h.GetMovieFile)
		})
		r.Get("/persons", h.ListPersons)
		r.Get("/persons/", h.ListPersons)
	})

	return r
}

// serveDir serves files below root under prefix. Nothing is mounted when
// either is empty.
func serveDir(r chi.Router, prefix, root string) {
	if prefix == "" || root == "" {
		return
	}
	prefix = "/" + strings.Trim(prefix, "/") + "/"
	fs := http.StripPrefix(prefix, http.FileServer(http.Dir(root)))
	r.Get(prefix+"*", fs.ServeHTTP)
}

// instrument records request count and latency by route pattern.
func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		metrics.TrackActiveRequest(true)
		defer metrics.TrackActiveRequest(false)

		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = strings.TrimSuffix(pattern, "/*")
			}
		}
		metrics.RecordAPIRequest(r.Method, route, ww.Status(), time.Since(start))
	})
}
