package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"boq_engine/internal/auth"
	"boq_engine/internal/catalog"
	"boq_engine/internal/config"
	"boq_engine/internal/engine"
	"boq_engine/internal/feed"
	"boq_engine/internal/middleware"
	"boq_engine/internal/pricing"
	"boq_engine/internal/storage"
)

// Dependencies aggregates all services the HTTP layer needs.
type Dependencies struct {
	Calculator *engine.Calculator
	Refresher  *catalog.Refresher
	Catalog    *storage.CatalogRepository
	BoQ        *storage.BoQRepository
	AdminStore auth.AdminStore
	APIKeys    auth.APIKeyStore
	DB         *storage.DB
	PriceCache *storage.PriceCache // nil when Redis is disabled
	FeedSource feed.Source         // nil when the feed is disabled
	Log        *zap.Logger
	Config     *config.Config
}

// NewRouter creates an HTTP router with all dependencies wired up
func NewRouter(ctx context.Context, cfg *config.Config, log *zap.Logger) (*http.ServeMux, *Dependencies, error) {
	db, err := storage.NewDB(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Repositories
	catalogRepo := db.NewCatalogRepository(cfg.Pricing.InsertBatchSize)
	resourceRepo := db.NewResourceRepository()
	boqRepo := db.NewBoQRepository(cfg.Pricing.InsertBatchSize)
	adminRepo := db.NewAdminUserRepository()

	// Shared price cache, optional
	var priceCache *storage.PriceCache
	if cfg.Redis.Enabled {
		priceCache, err = storage.NewPriceCache(ctx, cfg.Redis, log)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize price cache: %w", err)
		}
	}

	// Resolver and calculator
	var resolverCache pricing.Cache
	if priceCache != nil {
		resolverCache = priceCache
	}
	resolver := pricing.NewResolver(catalogRepo, resolverCache, cfg.Pricing, log)
	calculator := engine.NewCalculator(resourceRepo, resolver, boqRepo, cfg.Pricing, log)

	// Catalog refresh pipeline, optional
	var (
		source    feed.Source
		refresher *catalog.Refresher
	)
	if cfg.Feed.Enabled {
		source, err = feed.NewCloudCatalogSource(ctx, feed.CloudCatalogConfig{
			ServiceID:       cfg.Feed.ServiceID,
			CredentialsJSON: cfg.Feed.CredentialsJSON,
			RequestTimeout:  cfg.Feed.RequestTimeout,
		}, log)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize pricing feed: %w", err)
		}

		lifecycle := catalog.NewLifecycle(catalogRepo, cfg.Pricing.RetentionWindow, log)
		var refreshCache catalog.PriceCache
		if priceCache != nil {
			refreshCache = priceCache
		}
		refresher = catalog.NewRefresher(source, lifecycle, refreshCache, log)
	}

	deps := &Dependencies{
		Calculator: calculator,
		Refresher:  refresher,
		Catalog:    catalogRepo,
		BoQ:        boqRepo,
		AdminStore: adminRepo,
		APIKeys:    auth.NewInMemoryAPIKeyStore(cfg.APIKeys),
		DB:         db,
		PriceCache: priceCache,
		FeedSource: source,
		Log:        log,
		Config:     cfg,
	}

	mux := http.NewServeMux()
	registerRoutes(mux, deps, cfg)

	return mux, deps, nil
}

func registerRoutes(mux *http.ServeMux, deps *Dependencies, cfg *config.Config) {
	// Calculation endpoints, protected with API key middleware
	apiKeyMiddleware := middleware.APIKeyMiddleware(deps.APIKeys)
	mux.Handle("POST /v1/boq/calculate", apiKeyMiddleware(http.HandlerFunc(deps.handleCalculate)))
	mux.Handle("GET /v1/boq/{boq_id}", apiKeyMiddleware(http.HandlerFunc(deps.handleGetBoQ)))

	// Admin authentication, public
	mux.HandleFunc("POST /v1/admin/login", deps.handleAdminLogin)

	// Catalog management, JWT protected
	adminOnly := middleware.AdminJWTMiddleware(cfg.JWTSecret, auth.RoleAdmin.String())
	viewerOrAdmin := middleware.AdminJWTMiddleware(cfg.JWTSecret, auth.RoleViewer.String())
	mux.Handle("POST /v1/catalog/refresh", adminOnly(http.HandlerFunc(deps.handleCatalogRefresh)))
	mux.Handle("GET /v1/catalog/skus", viewerOrAdmin(http.HandlerFunc(deps.handleListSKUs)))

	// Health check endpoint, public
	mux.HandleFunc("GET /healthz", deps.handleHealth)
}

// Close releases the resources held by the dependency graph.
func (d *Dependencies) Close() error {
	if closer, ok := d.FeedSource.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			d.Log.Warn("failed to close pricing feed", zap.Error(err))
		}
	}
	if d.PriceCache != nil {
		if err := d.PriceCache.Close(); err != nil {
			d.Log.Warn("failed to close price cache", zap.Error(err))
		}
	}
	return d.DB.Close()
}
