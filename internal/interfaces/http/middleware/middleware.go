package middleware

import (
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func SetupMiddlewares(app *fiber.App) {
	origins := os.Getenv("ALLOWED_ORIGINS")
	if origins == "" {
		origins = "http://localhost:3000"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))
}

// RouteGroups splits the API surface in two: the public page-serving routes
// and the authenticated dashboard routes.
type RouteGroups struct {
	Public    fiber.Router
	Analytics fiber.Router
}

func SetupRouteGroups(app *fiber.App, authMiddleware func(c *fiber.Ctx) error) RouteGroups {
	public := app.Group("/p")

	analytics := app.Group("/analytics")
	analytics.Use(authMiddleware)

	return RouteGroups{
		Public:    public,
		Analytics: analytics,
	}
}
