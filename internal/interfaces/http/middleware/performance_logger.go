package middleware

import (
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// PerformanceLogger measures response time on the heavy aggregation routes.
func PerformanceLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()

		monitoredRoutes := []string{
			"/analytics",
		}

		shouldMonitor := false
		for _, route := range monitoredRoutes {
			if strings.HasPrefix(path, route) {
				shouldMonitor = true
				break
			}
		}

		if !shouldMonitor {
			return c.Next()
		}

		start := time.Now()
		err := c.Next()

		log.Printf(
			"[PERFORMANCE] %s %s - %d - Duration: %v",
			c.Method(),
			path,
			c.Response().StatusCode(),
			time.Since(start),
		)

		return err
	}
}
