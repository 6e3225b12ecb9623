package main

import (
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"

	"github.com/pagecraft/analytics-api/internal/infrastructure/database"
	"github.com/pagecraft/analytics-api/internal/interfaces/http/middleware"
	"github.com/pagecraft/analytics-api/internal/interfaces/http/routes"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ No .env file found, using system environment variables")
	}

	if os.Getenv("APP_SECRET") == "" {
		log.Fatal("❌ APP_SECRET must be set; visitor identity depends on it")
	}

	if os.Getenv("JWT_SECRET") == "" {
		log.Fatal("❌ JWT_SECRET must be set; an empty key would accept any token")
	}

	// Initialize database
	db, err := database.SetupDatabase()
	if err != nil {
		log.Fatalf("❌ Error setting up database: %v", err)
	}

	app := fiber.New(fiber.Config{
		Concurrency:  256 * 1024,
		BodyLimit:    10 * 1024 * 1024, // 10MB
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	})

	// Setup middleware
	middleware.SetupMiddlewares(app)
	app.Use(middleware.PerformanceLogger())

	// Setup routes
	routes.SetupRoutes(app, db)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("🚀 Server is running on port %s", port)
	log.Fatal(app.Listen(":" + port))
}
