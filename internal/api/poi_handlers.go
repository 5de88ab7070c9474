package api

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/mumbaitrails/trails_core/internal/importer"
)

const (
	defaultListLimit = 100
	maxListLimit     = 200
)

// AdminPoiRequest is the admin create/update body. It goes through the
// same normalization as CSV import rows so slugs, tags, and opening
// hours behave identically on both paths.
type AdminPoiRequest struct {
	Name         string                 `json:"name"`
	Description  string                 `json:"description"`
	Address      string                 `json:"address"`
	Locality     string                 `json:"locality"`
	City         string                 `json:"city"`
	Latitude     float64                `json:"latitude"`
	Longitude    float64                `json:"longitude"`
	Rating       *float64               `json:"rating"`
	PriceLevel   *int                   `json:"price_level"`
	TicketPrice  *int                   `json:"ticket_price_inr"`
	TimeSpentMin *int                   `json:"time_spent_min"`
	WebsiteURL   string                 `json:"website_url"`
	Phone        string                 `json:"phone"`
	ImageURL     string                 `json:"image_url"`
	Category     string                 `json:"category"`
	Tags         []string               `json:"tags"`
	OpeningHours map[string][][2]string `json:"opening_hours"`
}

// ListPois handles GET /v1/pois
func (s *Server) ListPois(c *fiber.Ctx) error {
	limit := defaultListLimit
	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			return c.Status(400).JSON(fiber.Map{
				"error": "invalid limit",
			})
		}
		limit = v
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	pois, err := s.pois.ListPublic(c.Context(), limit)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"pois": pois})
}

// GetPoi handles GET /v1/pois/:id
func (s *Server) GetPoi(c *fiber.Ctx) error {
	poi, err := s.pois.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return notFoundOr(c, err)
	}
	return c.JSON(poi)
}

// CreatePoi handles POST /v1/admin/pois
func (s *Server) CreatePoi(c *fiber.Ctx) error {
	normalized, errResp := s.normalizeAdminRequest(c)
	if normalized == nil {
		return errResp
	}

	if err := s.pois.Upsert(c.Context(), &normalized.Poi, normalized.Category, normalized.Tags); err != nil {
		return err
	}

	poi, err := s.pois.GetByID(c.Context(), normalized.Poi.ID)
	if err != nil {
		return err
	}
	return c.Status(201).JSON(poi)
}

// UpdatePoi handles PUT /v1/admin/pois/:id. The id and slug of the
// existing row are preserved; everything else is replaced.
func (s *Server) UpdatePoi(c *fiber.Ctx) error {
	existing, err := s.pois.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return notFoundOr(c, err)
	}

	normalized, errResp := s.normalizeAdminRequest(c)
	if normalized == nil {
		return errResp
	}
	normalized.Poi.ID = existing.ID
	normalized.Poi.Slug = existing.Slug
	normalized.Poi.CreatedAt = existing.CreatedAt

	if err := s.pois.Upsert(c.Context(), &normalized.Poi, normalized.Category, normalized.Tags); err != nil {
		return err
	}

	poi, err := s.pois.GetByID(c.Context(), existing.ID)
	if err != nil {
		return err
	}
	return c.JSON(poi)
}

// DeletePoi handles DELETE /v1/admin/pois/:id
func (s *Server) DeletePoi(c *fiber.Ctx) error {
	if err := s.pois.Delete(c.Context(), c.Params("id")); err != nil {
		return notFoundOr(c, err)
	}
	return c.SendStatus(204)
}

// AnalyticsOverview handles GET /v1/analytics/overview
func (s *Server) AnalyticsOverview(c *fiber.Ctx) error {
	overview, err := s.stats.GetOverview(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(overview)
}

// normalizeAdminRequest parses and normalizes an admin POI body. On
// failure it returns a nil row and the already-written error response.
func (s *Server) normalizeAdminRequest(c *fiber.Ctx) (*importer.NormalizedRow, error) {
	var req AdminPoiRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, c.Status(400).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	hoursJSON := ""
	if len(req.OpeningHours) > 0 {
		encoded, err := json.Marshal(req.OpeningHours)
		if err != nil {
			return nil, c.Status(400).JSON(fiber.Map{
				"error": "invalid opening_hours",
			})
		}
		hoursJSON = string(encoded)
	}

	tags := ""
	for i, tag := range req.Tags {
		if i > 0 {
			tags += "|"
		}
		tags += tag
	}

	row := importer.Row{
		Name:         req.Name,
		Description:  req.Description,
		Address:      req.Address,
		Locality:     req.Locality,
		City:         req.City,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		Rating:       req.Rating,
		PriceLevel:   req.PriceLevel,
		TicketPrice:  req.TicketPrice,
		TimeSpentMin: req.TimeSpentMin,
		WebsiteURL:   req.WebsiteURL,
		Phone:        req.Phone,
		ImageURL:     req.ImageURL,
		Category:     req.Category,
		Tags:         tags,
		OpeningHours: hoursJSON,
	}

	takenSlugs, err := s.pois.ListSlugs(c.Context())
	if err != nil {
		return nil, err
	}

	normalized, err := importer.NormalizeRow(row, takenSlugs)
	if err != nil {
		return nil, c.Status(400).JSON(fiber.Map{
			"error": fmt.Sprintf("invalid poi: %v", err),
		})
	}
	return normalized, nil
}
