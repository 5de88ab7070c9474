package api

import (
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gofiber/fiber/v2"
	"github.com/mumbaitrails/trails_core/internal/cache"
	"github.com/mumbaitrails/trails_core/internal/itinerary"
	"github.com/mumbaitrails/trails_core/internal/middleware"
	"github.com/mumbaitrails/trails_core/internal/models"
)

const (
	maxTitleLen = 160
	maxNoteLen  = 240

	// Shared itineraries never change after creation
	shareCacheTTL = time.Hour
)

// CreateItineraryRequest is the POST /v1/itineraries body
type CreateItineraryRequest struct {
	Title string                      `json:"title"`
	Date  string                      `json:"date"`
	Mode  string                      `json:"mode"`
	Stops []models.ItineraryStopInput `json:"stops"`
}

var validModes = map[models.TravelMode]bool{
	models.ModeWalk:  true,
	models.ModeMetro: true,
	models.ModeBus:   true,
	models.ModeCar:   true,
	models.ModeAuto:  true,
	models.ModeMixed: true,
}

// CreateItinerary handles POST /v1/itineraries. Anonymous requests are
// attributed to the shared guest account.
func (s *Server) CreateItinerary(c *fiber.Ctx) error {
	var req CreateItineraryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" || utf8.RuneCountInString(req.Title) > maxTitleLen {
		return c.Status(400).JSON(fiber.Map{
			"error": "title is required and must be at most 160 characters",
		})
	}
	if len(req.Stops) == 0 {
		return c.Status(400).JSON(fiber.Map{
			"error": "at least one stop is required",
		})
	}
	for i, stop := range req.Stops {
		if strings.TrimSpace(stop.PoiID) == "" {
			return c.Status(400).JSON(fiber.Map{
				"error": "every stop requires a poi_id",
			})
		}
		if utf8.RuneCountInString(stop.Note) > maxNoteLen {
			return c.Status(400).JSON(fiber.Map{
				"error": "stop notes must be at most 240 characters",
			})
		}
		req.Stops[i].PoiID = strings.TrimSpace(stop.PoiID)
	}

	mode := models.TravelMode(strings.ToUpper(strings.TrimSpace(req.Mode)))
	if mode != "" && !validModes[mode] {
		return c.Status(400).JSON(fiber.Map{
			"error": "mode must be one of WALK, METRO, BUS, CAR, AUTO, MIXED",
		})
	}

	input := itinerary.CreateInput{
		Title: req.Title,
		Date:  req.Date,
		Mode:  mode,
		Stops: req.Stops,
	}
	if user := middleware.UserFromLocals(c); user != nil {
		input.UserID = user.UserID
	}

	it, err := s.builder.Create(c.Context(), input)
	if err != nil {
		return notFoundOr(c, err)
	}

	return c.Status(201).JSON(it)
}

// GetItinerary handles GET /v1/itineraries/:id
func (s *Server) GetItinerary(c *fiber.Ctx) error {
	it, err := s.builder.Get(c.Context(), c.Params("id"))
	if err != nil {
		return notFoundOr(c, err)
	}
	return c.JSON(it)
}

// ListItineraries handles GET /v1/itineraries for the authenticated user
func (s *Server) ListItineraries(c *fiber.Ctx) error {
	user := middleware.UserFromLocals(c)
	if user == nil {
		return c.Status(401).JSON(fiber.Map{
			"error": "authentication required",
		})
	}

	itineraries, err := s.builder.List(c.Context(), user.UserID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"itineraries": itineraries})
}

// GetSharedItinerary handles GET /v1/share/:token. Lookups go through
// Redis first because shared links get the bulk of repeat traffic.
func (s *Server) GetSharedItinerary(c *fiber.Ctx) error {
	token := c.Params("token")
	ctx := c.Context()
	cacheKey := cache.ShareKey(token)

	if cached, err := cache.GetItinerary(ctx, cacheKey); err == nil && cached != nil {
		return c.JSON(cached)
	}

	it, err := s.builder.GetByShareToken(ctx, token)
	if err != nil {
		return notFoundOr(c, err)
	}

	if err := cache.SetItinerary(ctx, cacheKey, it, shareCacheTTL); err != nil {
		log.Printf("Failed to cache shared itinerary: %v", err)
	}

	return c.JSON(it)
}
