package routes

import (
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/pagecraft/analytics-api/internal/application/usecases"
	"github.com/pagecraft/analytics-api/internal/domain/repositories"
	"github.com/pagecraft/analytics-api/internal/infrastructure/cache"
	"github.com/pagecraft/analytics-api/internal/infrastructure/geoip"
	"github.com/pagecraft/analytics-api/internal/infrastructure/realtime"
	"github.com/pagecraft/analytics-api/internal/interfaces/http/handlers"
	"github.com/pagecraft/analytics-api/internal/interfaces/http/middleware"
)

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	app.Use(etag.New())

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// Repositories
	pageRepo := repositories.NewPageRepository(db)
	trackingRepo := repositories.NewTrackingRepository(db)
	analyticsRepo := repositories.NewAnalyticsRepository(db)

	// Infrastructure
	aggregateCache := cache.New()
	realtimeStore := realtime.NewStore()
	geoResolver := geoip.NewHTTPResolver(os.Getenv("GEOIP_API_URL"))

	// Use Cases
	trackingUseCase := usecases.NewTrackingUseCase(trackingRepo, realtimeStore, geoResolver, os.Getenv("APP_SECRET"))
	analyticsUseCase := usecases.NewAnalyticsUseCase(analyticsRepo, aggregateCache, realtimeStore)
	exportUseCase := usecases.NewExportUseCase(analyticsRepo)

	// Handlers
	trackHandler := handlers.NewTrackHandler(trackingUseCase, pageRepo)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsUseCase, exportUseCase, pageRepo)

	groups := middleware.SetupRouteGroups(app, middleware.JWTAuth(os.Getenv("JWT_SECRET")))

	// Public page serving with tracking
	groups.Public.Use(middleware.RateLimit(rate.Limit(5), 10))
	groups.Public.Use(middleware.Session())
	groups.Public.Get("/:clientSlug/:pageSlug", trackHandler.ServePage)

	// Authenticated dashboard routes
	groups.Analytics.Get("/pages/:id", analyticsHandler.GetPageAnalytics)
	groups.Analytics.Get("/pages/:id/realtime", analyticsHandler.GetRealTimeVisitors)
	groups.Analytics.Get("/pages/:id/timeline", analyticsHandler.GetVisitorTimeline)
	groups.Analytics.Get("/pages/:id/geographic", analyticsHandler.GetGeographicData)
	groups.Analytics.Get("/pages/:id/devices", analyticsHandler.GetDeviceAnalytics)
	groups.Analytics.Get("/pages/:id/traffic", analyticsHandler.GetTrafficSources)
	groups.Analytics.Get("/pages/:id/export", analyticsHandler.ExportPageAnalytics)
	groups.Analytics.Get("/client", analyticsHandler.GetClientAnalytics)
	groups.Analytics.Get("/client/top-pages", analyticsHandler.GetTopPages)
}
