package http

import (
	"net/http"
	"strings"

	"github.com/linkatalog/linkatalog/internal/auth"
	"github.com/linkatalog/linkatalog/internal/catalog"
	"github.com/linkatalog/linkatalog/internal/config"
	"github.com/linkatalog/linkatalog/internal/infrastructure/telemetry"
	"github.com/linkatalog/linkatalog/internal/transport/http/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var spanNames = map[string]string{
	"GET /health":                          "health",
	"GET /metrics":                         "metrics",
	"POST /api/auth/login":                 "auth.login",
	"GET /api/links":                       "links.list",
	"GET /api/links/featured":              "links.featured",
	"GET /api/links/category/{categoryId}": "links.by_category",
	"PUT /api/links/click/{id}":            "links.click",
	"GET /api/categories":                  "categories.list",
	"GET /api/admin/links":                 "admin.links.list",
	"POST /api/admin/links":                "admin.links.create",
	"PUT /api/admin/links/{id}":            "admin.links.update",
	"DELETE /api/admin/links/{id}":         "admin.links.delete",
	"POST /api/admin/categories":           "admin.categories.create",
	"PUT /api/admin/categories/{id}":       "admin.categories.update",
	"DELETE /api/admin/categories/{id}":    "admin.categories.delete",
	"GET /api/admin/stats":                 "admin.stats",
	"GET /api/admin/links/{id}/stats":      "admin.links.stats",
}

type RouterOptions struct {
	EnableCORS    bool
	EnableLogging bool
	EnableMetrics bool
}

func DefaultRouterOptions() RouterOptions {
	return RouterOptions{
		EnableCORS:    true,
		EnableLogging: true,
		EnableMetrics: true,
	}
}

func NewRouter(cfg *config.Config, catalogSvc *catalog.Service, authSvc *auth.Service) http.Handler {
	return NewRouterWithOptions(cfg, catalogSvc, authSvc, DefaultRouterOptions())
}

func NewRouterWithOptions(cfg *config.Config, catalogSvc *catalog.Service, authSvc *auth.Service, opts RouterOptions) http.Handler {
	mux := http.NewServeMux()

	healthHandler := NewHealthHandler()
	authHandler := NewAuthHandler(authSvc)
	linksHandler := NewLinksHandler(catalogSvc)
	categoriesHandler := NewCategoriesHandler(catalogSvc)
	statsHandler := NewStatsHandler(catalogSvc)

	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.Handle("GET /metrics", healthHandler.Metrics())

	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	mux.HandleFunc("GET /api/links", linksHandler.List)
	mux.HandleFunc("GET /api/links/featured", linksHandler.ListFeatured)
	mux.HandleFunc("GET /api/links/category/{categoryId}", linksHandler.ListByCategory)
	mux.HandleFunc("PUT /api/links/click/{id}", linksHandler.Click)
	mux.HandleFunc("GET /api/categories", categoriesHandler.List)

	mux.Handle("GET /uploads/", http.StripPrefix("/uploads/",
		http.FileServer(http.Dir(cfg.Uploads.Dir))))

	requireAuth := middleware.AuthMiddleware(authSvc)
	admin := func(h http.HandlerFunc) http.Handler {
		return middleware.Chain(h, requireAuth)
	}

	mux.Handle("GET /api/admin/links", admin(linksHandler.List))
	mux.Handle("POST /api/admin/links", admin(linksHandler.Create))
	mux.Handle("PUT /api/admin/links/{id}", admin(linksHandler.Update))
	mux.Handle("DELETE /api/admin/links/{id}", admin(linksHandler.Delete))
	mux.Handle("POST /api/admin/categories", admin(categoriesHandler.Create))
	mux.Handle("PUT /api/admin/categories/{id}", admin(categoriesHandler.Update))
	mux.Handle("DELETE /api/admin/categories/{id}", admin(categoriesHandler.Delete))
	mux.Handle("GET /api/admin/stats", admin(statsHandler.Summary))
	mux.Handle("GET /api/admin/links/{id}/stats", admin(statsHandler.LinkDaily))

	var innerHandler http.Handler = mux
	if opts.EnableCORS {
		innerHandler = middleware.CORSMiddleware(innerHandler)
	}
	if opts.EnableLogging {
		innerHandler = middleware.LoggingMiddleware(innerHandler)
	}
	if opts.EnableMetrics {
		innerHandler = middleware.MetricsMiddleware(innerHandler)
	}

	otelOptions := []otelhttp.Option{
		otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
			key := r.Method + " " + r.Pattern
			if name, ok := spanNames[key]; ok {
				return name
			}
			if r.Pattern != "" {
				return r.Pattern
			}
			path := strings.TrimSpace(r.URL.Path)
			if path == "" {
				path = "/"
			}
			return path
		}),
	}

	if telemetry.TracerProvider != nil {
		otelOptions = append(otelOptions, otelhttp.WithTracerProvider(telemetry.TracerProvider))
	}

	return otelhttp.NewHandler(innerHandler, cfg.App.Name, otelOptions...)
}
