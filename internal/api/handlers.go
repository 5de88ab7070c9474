package api

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/mumbaitrails/trails_core/internal/cache"
	"github.com/mumbaitrails/trails_core/internal/db"
	"github.com/mumbaitrails/trails_core/internal/itinerary"
	"github.com/mumbaitrails/trails_core/internal/models"
	"github.com/mumbaitrails/trails_core/internal/poisearch"
	"github.com/mumbaitrails/trails_core/internal/store"
)

// Server holds the handlers' dependencies. Handlers are methods so the
// stores and services are injected once at startup instead of reached
// through globals.
type Server struct {
	builder     *itinerary.Builder
	filter      *poisearch.Filter
	pois        *store.PoiStore
	itineraries *store.ItineraryStore
	stats       *store.StatsStore
}

// NewServer wires the handler set to its services
func NewServer(builder *itinerary.Builder, filter *poisearch.Filter, pois *store.PoiStore, itineraries *store.ItineraryStore, stats *store.StatsStore) *Server {
	return &Server{
		builder:     builder,
		filter:      filter,
		pois:        pois,
		itineraries: itineraries,
		stats:       stats,
	}
}

// Health handles the /health endpoint
func (s *Server) Health(c *fiber.Ctx) error {
	ctx := c.Context()

	dbErr := db.HealthCheck(ctx)
	dbStatus := "ok"
	if dbErr != nil {
		dbStatus = dbErr.Error()
	}

	redisErr := cache.HealthCheck(ctx)
	redisStatus := "ok"
	if redisErr != nil {
		redisStatus = redisErr.Error()
	}

	status := "healthy"
	httpStatus := 200
	if dbErr != nil || redisErr != nil {
		status = "unhealthy"
		httpStatus = 503
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status": status,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
	})
}

// Search handles GET /v1/search
func (s *Server) Search(c *fiber.Ctx) error {
	filters := poisearch.Filters{
		Query:    c.Query("q"),
		Category: c.Query("category"),
		Tag:      c.Query("tag"),
		OpenAt:   c.Query("open_at"),
		Weekday:  strings.ToUpper(c.Query("weekday")),
	}

	if raw := c.Query("min_rating"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{
				"error": fmt.Sprintf("invalid min_rating: %v", err),
			})
		}
		filters.MinRating = &v
	}

	if raw := c.Query("max_price"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{
				"error": fmt.Sprintf("invalid max_price: %v", err),
			})
		}
		filters.MaxPrice = &v
	}

	if raw := c.Query("bbox"); raw != "" {
		bbox, err := parseBBox(raw)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{
				"error": fmt.Sprintf("invalid bbox: %v", err),
			})
		}
		filters.BBox = bbox
	}

	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{
				"error": fmt.Sprintf("invalid limit: %v", err),
			})
		}
		filters.Limit = v
	}

	ctx := c.Context()
	cacheKey := cache.SearchKey(filters)

	if cached, err := cache.GetSearchResults(ctx, cacheKey); err == nil && cached != nil {
		return c.JSON(fiber.Map{"results": cached})
	}

	results, err := s.filter.Search(ctx, filters)
	if err != nil {
		return err
	}

	if err := cache.SetSearchResults(ctx, cacheKey, results, cache.TTL()); err != nil {
		log.Printf("Failed to cache search results: %v", err)
	}

	return c.JSON(fiber.Map{"results": results})
}

// parseBBox parses "lat1,lon1,lat2,lon2" into four floats
func parseBBox(raw string) ([]float64, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 4 {
		return nil, fmt.Errorf("expected format: lat1,lon1,lat2,lon2")
	}

	values := make([]float64, 4)
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid coordinate %q: %w", part, err)
		}
		values[i] = v
	}
	return values, nil
}

// notFoundOr maps missing-entity errors to 404 and leaves the rest to
// the app-level error handler
func notFoundOr(c *fiber.Ctx, err error) error {
	if errors.Is(err, models.ErrNotFound) {
		return c.Status(404).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return err
}
