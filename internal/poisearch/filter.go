package poisearch

import (
	"context"

	"github.com/mumbaitrails/trails_core/internal/geo"
	"github.com/mumbaitrails/trails_core/internal/hours"
	"github.com/mumbaitrails/trails_core/internal/models"
)

const (
	// DefaultLimit applies when the caller does not specify one
	DefaultLimit = 25
	// MaxLimit caps the result window regardless of the requested limit
	MaxLimit = 50
)

// PoiSearcher runs the composed predicate set against the catalog and
// returns candidates with their opening hours loaded, ordered by rating
// descending.
type PoiSearcher interface {
	Search(ctx context.Context, q models.SearchQuery) ([]models.Poi, error)
}

// Filter composes search predicates and annotates the fetched candidates
// with open-now status and distance from the bounding-box center.
type Filter struct {
	pois PoiSearcher
}

// NewFilter wires the filter to its POI repository
func NewFilter(pois PoiSearcher) *Filter {
	return &Filter{pois: pois}
}

// Filters are the caller-supplied search criteria. All fields are
// optional and AND-combined. BBox, when present, holds the four corner
// values minLat,minLon,maxLat,maxLon as parsed at the boundary; corner
// order is normalized here.
type Filters struct {
	Query     string
	Category  string
	Tag       string
	MinRating *float64
	MaxPrice  *int
	BBox      []float64
	OpenAt    string
	Weekday   string
	Limit     int
}

// Search builds the predicate set, delegates fetching to the repository,
// then annotates each candidate locally. open_now appears only when an
// open-at context was supplied; distance_km only when a bbox was.
func (f *Filter) Search(ctx context.Context, filters Filters) ([]models.SearchResult, error) {
	limit := filters.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	query := models.SearchQuery{
		Text:      filters.Query,
		Category:  filters.Category,
		Tag:       filters.Tag,
		MinRating: filters.MinRating,
		MaxPrice:  filters.MaxPrice,
		Limit:     limit,
	}

	var bbox *models.BoundingBox
	if len(filters.BBox) == 4 {
		box := models.NewBoundingBox(filters.BBox[0], filters.BBox[1], filters.BBox[2], filters.BBox[3])
		bbox = &box
		query.BBox = bbox
	}

	openCtx := hours.NormalizeOpenAt(filters.OpenAt)
	if openCtx != nil {
		query.OpenAt = openCtx
	} else if models.IsValidWeekday(filters.Weekday) {
		query.Weekday = models.Weekday(filters.Weekday)
	}

	pois, err := f.pois.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	results := make([]models.SearchResult, 0, len(pois))
	for _, poi := range pois {
		row := models.SearchResult{
			ID:         poi.ID,
			Name:       poi.Name,
			Lat:        poi.Latitude,
			Lon:        poi.Longitude,
			Rating:     poi.Rating,
			PriceLevel: poi.PriceLevel,
			ImageURL:   poi.ImageURL,
		}
		if openCtx != nil {
			open := hours.IsOpenAt(poi.OpeningHours, openCtx.Weekday, openCtx.Time)
			row.OpenNow = &open
		}
		if bbox != nil {
			centerLat, centerLon := bbox.Center()
			distance := geo.RoundKm(geo.DistanceKm(centerLat, centerLon, poi.Latitude, poi.Longitude))
			row.DistanceKm = &distance
		}
		results = append(results, row)
	}
	return results, nil
}
