package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/mumbaitrails/trails_core/internal/api"
	"github.com/mumbaitrails/trails_core/internal/cache"
	"github.com/mumbaitrails/trails_core/internal/db"
	"github.com/mumbaitrails/trails_core/internal/itinerary"
	"github.com/mumbaitrails/trails_core/internal/middleware"
	"github.com/mumbaitrails/trails_core/internal/poisearch"
	"github.com/mumbaitrails/trails_core/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	log.Println("Starting Mumbai Trails API server...")

	pool, err := db.GetDB()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Database connection established")

	redisClient, err := cache.GetClient()
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer cache.Close()
	log.Println("Redis connection established")

	// Wire stores and services
	poiStore := store.NewPoiStore(pool)
	userStore := store.NewUserStore(pool)
	itineraryStore := store.NewItineraryStore(pool)
	statsStore := store.NewStatsStore(pool)

	builder := itinerary.NewBuilder(poiStore, userStore, itineraryStore)
	filter := poisearch.NewFilter(poiStore)
	server := api.NewServer(builder, filter, poiStore, itineraryStore, statsStore)

	app := fiber.New(fiber.Config{
		AppName:      "Mumbai Trails API",
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "${time} | ${status} | ${latency} | ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	rateLimit, _ := strconv.Atoi(getEnv("RATE_LIMIT_PER_MINUTE", "120"))
	app.Use(middleware.RateLimitMiddleware(redisClient, rateLimit, time.Minute))

	secret := middleware.JWTSecret()

	// Routes
	app.Get("/health", server.Health)

	app.Get("/v1/search", server.Search)
	app.Get("/v1/pois", server.ListPois)
	app.Get("/v1/pois/:id", server.GetPoi)

	app.Post("/v1/itineraries", middleware.OptionalAuth(secret), server.CreateItinerary)
	app.Get("/v1/itineraries", middleware.RequireAuth(secret), server.ListItineraries)
	app.Get("/v1/itineraries/:id", server.GetItinerary)
	app.Get("/v1/share/:token", server.GetSharedItinerary)

	app.Get("/v1/analytics/overview", server.AnalyticsOverview)

	admin := app.Group("/v1/admin", middleware.RequireAuth(secret), middleware.RequireRole("ADMIN"))
	admin.Post("/pois", server.CreatePoi)
	admin.Put("/pois/:id", server.UpdatePoi)
	admin.Delete("/pois/:id", server.DeletePoi)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(404).JSON(fiber.Map{
			"error": "endpoint not found",
		})
	})

	port := getEnv("API_PORT", "8080")
	addr := fmt.Sprintf(":%s", port)

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down gracefully...")
		if err := app.Shutdown(); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	}()

	log.Printf("Server listening on http://localhost%s", addr)
	log.Printf("POI search: http://localhost%s/v1/search?q=NAME&bbox=LAT,LON,LAT,LON", addr)
	log.Printf("Health check: http://localhost%s/health", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// customErrorHandler handles errors returned from handlers
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	log.Printf("Error: %v", err)

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
