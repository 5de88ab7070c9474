package poisearch

import (
	"context"
	"testing"

	"github.com/mumbaitrails/trails_core/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSearcher struct {
	lastQuery models.SearchQuery
	results   []models.Poi
}

func (f *fakeSearcher) Search(_ context.Context, q models.SearchQuery) ([]models.Poi, error) {
	f.lastQuery = q
	return f.results, nil
}

func ratingPtr(v float64) *float64 { return &v }

func testPois() []models.Poi {
	return []models.Poi{
		{
			ID: "gateway", Name: "Gateway of India",
			Latitude: 18.9220, Longitude: 72.8347,
			Rating: ratingPtr(4.6),
			OpeningHours: []models.OpeningHour{
				{Day: models.Monday, OpenTime: "07:00", CloseTime: "19:00"},
			},
		},
		{
			ID: "nightmarket", Name: "Night Market",
			Latitude: 19.0596, Longitude: 72.8295,
			Rating: ratingPtr(4.1),
			OpeningHours: []models.OpeningHour{
				{Day: models.Monday, OpenTime: "18:00", CloseTime: "23:30"},
			},
		},
	}
}

func TestSearchQueryComposition(t *testing.T) {
	ctx := context.Background()

	t.Run("Defaults", func(t *testing.T) {
		searcher := &fakeSearcher{}
		filter := NewFilter(searcher)

		_, err := filter.Search(ctx, Filters{})
		require.NoError(t, err)
		assert.Equal(t, DefaultLimit, searcher.lastQuery.Limit)
		assert.Nil(t, searcher.lastQuery.BBox)
		assert.Nil(t, searcher.lastQuery.OpenAt)
	})

	t.Run("Limit is capped", func(t *testing.T) {
		searcher := &fakeSearcher{}
		filter := NewFilter(searcher)

		_, err := filter.Search(ctx, Filters{Limit: 500})
		require.NoError(t, err)
		assert.Equal(t, MaxLimit, searcher.lastQuery.Limit)
	})

	t.Run("BBox corners are normalized", func(t *testing.T) {
		searcher := &fakeSearcher{}
		filter := NewFilter(searcher)

		// corners given max-first
		_, err := filter.Search(ctx, Filters{BBox: []float64{19.2, 73.0, 18.9, 72.8}})
		require.NoError(t, err)
		require.NotNil(t, searcher.lastQuery.BBox)
		assert.Equal(t, 18.9, searcher.lastQuery.BBox.MinLat)
		assert.Equal(t, 19.2, searcher.lastQuery.BBox.MaxLat)
		assert.Equal(t, 72.8, searcher.lastQuery.BBox.MinLon)
		assert.Equal(t, 73.0, searcher.lastQuery.BBox.MaxLon)
	})

	t.Run("OpenAt takes precedence over weekday", func(t *testing.T) {
		searcher := &fakeSearcher{}
		filter := NewFilter(searcher)

		_, err := filter.Search(ctx, Filters{OpenAt: "2024-01-15T10:30:00", Weekday: "SAT"})
		require.NoError(t, err)
		require.NotNil(t, searcher.lastQuery.OpenAt)
		assert.Equal(t, models.Monday, searcher.lastQuery.OpenAt.Weekday)
		assert.Equal(t, models.Weekday(""), searcher.lastQuery.Weekday)
	})

	t.Run("Malformed open_at falls back to weekday filter", func(t *testing.T) {
		searcher := &fakeSearcher{}
		filter := NewFilter(searcher)

		_, err := filter.Search(ctx, Filters{OpenAt: "garbage", Weekday: "SAT"})
		require.NoError(t, err)
		assert.Nil(t, searcher.lastQuery.OpenAt)
		assert.Equal(t, models.Saturday, searcher.lastQuery.Weekday)
	})
}

func TestSearchAnnotations(t *testing.T) {
	ctx := context.Background()

	t.Run("No context means no annotations", func(t *testing.T) {
		searcher := &fakeSearcher{results: testPois()}
		filter := NewFilter(searcher)

		results, err := filter.Search(ctx, Filters{})
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Nil(t, results[0].OpenNow)
		assert.Nil(t, results[0].DistanceKm)
	})

	t.Run("Open-now annotation per candidate", func(t *testing.T) {
		searcher := &fakeSearcher{results: testPois()}
		filter := NewFilter(searcher)

		// Monday 10:30 local: gateway open, night market closed
		results, err := filter.Search(ctx, Filters{OpenAt: "2024-01-15T10:30:00"})
		require.NoError(t, err)
		require.Len(t, results, 2)
		require.NotNil(t, results[0].OpenNow)
		require.NotNil(t, results[1].OpenNow)
		assert.True(t, *results[0].OpenNow)
		assert.False(t, *results[1].OpenNow)
	})

	t.Run("Distance from bbox center", func(t *testing.T) {
		searcher := &fakeSearcher{results: testPois()}
		filter := NewFilter(searcher)

		results, err := filter.Search(ctx, Filters{BBox: []float64{18.9, 72.8, 19.1, 72.9}})
		require.NoError(t, err)
		require.Len(t, results, 2)
		require.NotNil(t, results[0].DistanceKm)
		require.NotNil(t, results[1].DistanceKm)
		assert.Greater(t, *results[0].DistanceKm, 0.0)
	})

	t.Run("Empty result set stays empty, not nil", func(t *testing.T) {
		searcher := &fakeSearcher{}
		filter := NewFilter(searcher)

		results, err := filter.Search(ctx, Filters{Query: "nothing"})
		require.NoError(t, err)
		assert.NotNil(t, results)
		assert.Len(t, results, 0)
	})
}
