package itinerary

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
	"github.com/mumbaitrails/trails_core/internal/geo"
	"github.com/mumbaitrails/trails_core/internal/hours"
	"github.com/mumbaitrails/trails_core/internal/models"
	"github.com/mumbaitrails/trails_core/internal/travel"
)

// PoiReader resolves POI coordinates in one batch
type PoiReader interface {
	FindManyByIDs(ctx context.Context, ids []string) ([]models.PoiPoint, error)
}

// UserStore resolves itinerary owners
type UserStore interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	UpsertGuest(ctx context.Context) (*models.User, error)
}

// ItineraryStore persists and reads itineraries with their ordered legs
type ItineraryStore interface {
	CreateWithLegs(ctx context.Context, it *models.Itinerary) error
	FindByID(ctx context.Context, id string) (*models.Itinerary, error)
	FindByShareToken(ctx context.Context, token string) (*models.Itinerary, error)
	FindManyByOwner(ctx context.Context, userID string) ([]models.Itinerary, error)
}

// Builder assembles and persists itineraries from caller-supplied stop
// lists. Stop order is the visiting order; no reordering happens here.
type Builder struct {
	pois        PoiReader
	users       UserStore
	itineraries ItineraryStore
}

// NewBuilder wires the builder to its repositories
func NewBuilder(pois PoiReader, users UserStore, itineraries ItineraryStore) *Builder {
	return &Builder{pois: pois, users: users, itineraries: itineraries}
}

// CreateInput is the validated request for a new itinerary
type CreateInput struct {
	UserID string
	Title  string
	Date   string
	Mode   models.TravelMode
	Stops  []models.ItineraryStopInput
}

// Create builds an itinerary: it resolves the owner (falling back to the
// canonical guest account), resolves every stop's POI in one batch, derives
// each leg from the immediately preceding stop, accumulates totals, and
// persists the whole thing atomically. Any missing POI or user aborts the
// creation before a single row is written.
func (b *Builder) Create(ctx context.Context, input CreateInput) (*models.Itinerary, error) {
	if len(input.Stops) == 0 {
		return nil, fmt.Errorf("itinerary requires at least one stop")
	}

	userID := input.UserID
	if userID == "" {
		guest, err := b.users.UpsertGuest(ctx)
		if err != nil {
			return nil, fmt.Errorf("resolve guest user: %w", err)
		}
		userID = guest.ID
	} else {
		if _, err := b.users.FindByID(ctx, userID); err != nil {
			return nil, err
		}
	}

	poiIDs := make([]string, len(input.Stops))
	for i, stop := range input.Stops {
		poiIDs[i] = stop.PoiID
	}
	points, err := b.pois.FindManyByIDs(ctx, poiIDs)
	if err != nil {
		return nil, err
	}
	poiMap := make(map[string]models.PoiPoint, len(points))
	for _, p := range points {
		poiMap[p.ID] = p
	}
	for _, id := range poiIDs {
		if _, ok := poiMap[id]; !ok {
			return nil, fmt.Errorf("poi %s: %w", id, models.ErrNotFound)
		}
	}

	mode := input.Mode
	if mode == "" {
		mode = models.ModeMixed
	}

	legs := buildLegs(input.Stops, poiMap, mode)

	var totalDistance float64
	totalTime := 0
	for _, leg := range legs {
		totalDistance += leg.LegDistanceKm
		totalTime += leg.LegTimeMin
	}

	it := &models.Itinerary{
		ID:              uuid.NewString(),
		UserID:          userID,
		Title:           input.Title,
		Date:            hours.ParseLocal(input.Date),
		ShareToken:      newShareToken(),
		TotalDistanceKm: geo.RoundKm(totalDistance),
		TotalTimeMin:    totalTime,
		Items:           legs,
	}

	if err := b.itineraries.CreateWithLegs(ctx, it); err != nil {
		return nil, err
	}
	return it, nil
}

// Get returns an itinerary with its legs in visiting order
func (b *Builder) Get(ctx context.Context, id string) (*models.Itinerary, error) {
	return b.itineraries.FindByID(ctx, id)
}

// GetByShareToken returns an itinerary via its opaque share token,
// requiring no owner identity
func (b *Builder) GetByShareToken(ctx context.Context, token string) (*models.Itinerary, error) {
	return b.itineraries.FindByShareToken(ctx, token)
}

// List returns an owner's itineraries, most recent first
func (b *Builder) List(ctx context.Context, userID string) ([]models.Itinerary, error) {
	return b.itineraries.FindManyByOwner(ctx, userID)
}

// buildLegs derives the ordered legs. The first stop never has a
// preceding leg, so its distance and time are zero; every later leg is
// computed solely from the previous stop's coordinates.
func buildLegs(stops []models.ItineraryStopInput, poiMap map[string]models.PoiPoint, mode models.TravelMode) []models.ItineraryLeg {
	legs := make([]models.ItineraryLeg, len(stops))
	for i, stop := range stops {
		legs[i] = models.ItineraryLeg{
			OrderIndex: i,
			PoiID:      stop.PoiID,
			PoiName:    poiMap[stop.PoiID].Name,
			StartTime:  hours.ParseLocal(stop.StartTime),
			EndTime:    hours.ParseLocal(stop.EndTime),
			Note:       optional(stop.Note),
		}
		if i == 0 {
			continue
		}
		prev := poiMap[stops[i-1].PoiID]
		curr := poiMap[stop.PoiID]
		leg := travel.EstimateLeg(prev.Latitude, prev.Longitude, curr.Latitude, curr.Longitude, mode)
		legs[i].LegDistanceKm = leg.DistanceKm
		legs[i].LegTimeMin = leg.TimeMin
	}
	return legs
}

// newShareToken returns 16 hex characters from a cryptographically random
// source. Uniqueness is best-effort; the store surfaces a conflict as a
// storage error if the unique constraint ever fires.
func newShareToken() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	return hex.EncodeToString(buf)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
