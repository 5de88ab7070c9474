package itinerary

import (
	"context"
	"fmt"
	"testing"

	"github.com/mumbaitrails/trails_core/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePoiReader struct {
	points map[string]models.PoiPoint
}

func (f *fakePoiReader) FindManyByIDs(_ context.Context, ids []string) ([]models.PoiPoint, error) {
	var out []models.PoiPoint
	seen := make(map[string]bool)
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if p, ok := f.points[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeUserStore struct {
	users       map[string]models.User
	guestCalls  int
	guestUserID string
}

func (f *fakeUserStore) FindByID(_ context.Context, id string) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		return &u, nil
	}
	return nil, fmt.Errorf("user %s: %w", id, models.ErrNotFound)
}

func (f *fakeUserStore) UpsertGuest(_ context.Context) (*models.User, error) {
	f.guestCalls++
	return &models.User{ID: f.guestUserID, Email: "guest@mumbai-trails.local", Name: "Guest"}, nil
}

type fakeItineraryStore struct {
	created []models.Itinerary
}

func (f *fakeItineraryStore) CreateWithLegs(_ context.Context, it *models.Itinerary) error {
	f.created = append(f.created, *it)
	return nil
}

func (f *fakeItineraryStore) FindByID(_ context.Context, id string) (*models.Itinerary, error) {
	for i := range f.created {
		if f.created[i].ID == id {
			return &f.created[i], nil
		}
	}
	return nil, fmt.Errorf("itinerary %s: %w", id, models.ErrNotFound)
}

func (f *fakeItineraryStore) FindByShareToken(_ context.Context, token string) (*models.Itinerary, error) {
	for i := range f.created {
		if f.created[i].ShareToken == token {
			return &f.created[i], nil
		}
	}
	return nil, fmt.Errorf("itinerary: %w", models.ErrNotFound)
}

func (f *fakeItineraryStore) FindManyByOwner(_ context.Context, userID string) ([]models.Itinerary, error) {
	var out []models.Itinerary
	for i := len(f.created) - 1; i >= 0; i-- {
		if f.created[i].UserID == userID {
			out = append(out, f.created[i])
		}
	}
	return out, nil
}

func newTestBuilder() (*Builder, *fakePoiReader, *fakeUserStore, *fakeItineraryStore) {
	pois := &fakePoiReader{points: map[string]models.PoiPoint{
		"gateway": {ID: "gateway", Name: "Gateway of India", Latitude: 19.0760, Longitude: 72.8777},
		"bandra":  {ID: "bandra", Name: "Bandra Fort", Latitude: 19.0596, Longitude: 72.8295},
		"sanjay":  {ID: "sanjay", Name: "Sanjay Gandhi NP", Latitude: 19.2183, Longitude: 72.9781},
	}}
	users := &fakeUserStore{
		users:       map[string]models.User{"u1": {ID: "u1", Email: "asha@example.com"}},
		guestUserID: "guest-1",
	}
	store := &fakeItineraryStore{}
	return NewBuilder(pois, users, store), pois, users, store
}

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("Walking itinerary with two stops", func(t *testing.T) {
		builder, _, _, store := newTestBuilder()

		it, err := builder.Create(ctx, CreateInput{
			UserID: "u1",
			Title:  "South Mumbai walk",
			Mode:   models.ModeWalk,
			Stops: []models.ItineraryStopInput{
				{PoiID: "gateway", StartTime: "2024-01-15T09:00:00"},
				{PoiID: "bandra", Note: "sunset point"},
			},
		})
		require.NoError(t, err)
		require.Len(t, it.Items, 2)

		// first stop has no preceding leg
		assert.Equal(t, 0.0, it.Items[0].LegDistanceKm)
		assert.Equal(t, 0, it.Items[0].LegTimeMin)
		assert.Equal(t, 0, it.Items[0].OrderIndex)

		assert.InDelta(t, 5.38, it.Items[1].LegDistanceKm, 0.01)
		assert.Equal(t, 81, it.Items[1].LegTimeMin)
		assert.Equal(t, 1, it.Items[1].OrderIndex)
		require.NotNil(t, it.Items[1].Note)
		assert.Equal(t, "sunset point", *it.Items[1].Note)

		assert.Equal(t, it.Items[1].LegDistanceKm, it.TotalDistanceKm)
		assert.Equal(t, it.Items[1].LegTimeMin, it.TotalTimeMin)
		assert.Len(t, it.ShareToken, 16)

		require.Len(t, store.created, 1)
		assert.Equal(t, it.ID, store.created[0].ID)
	})

	t.Run("Totals accumulate across legs", func(t *testing.T) {
		builder, _, _, _ := newTestBuilder()

		it, err := builder.Create(ctx, CreateInput{
			UserID: "u1",
			Title:  "Grand tour",
			Mode:   models.ModeCar,
			Stops: []models.ItineraryStopInput{
				{PoiID: "gateway"},
				{PoiID: "bandra"},
				{PoiID: "sanjay"},
			},
		})
		require.NoError(t, err)
		require.Len(t, it.Items, 3)

		var distance float64
		timeMin := 0
		for _, leg := range it.Items {
			distance += leg.LegDistanceKm
			timeMin += leg.LegTimeMin
		}
		assert.InDelta(t, distance, it.TotalDistanceKm, 0.005)
		assert.Equal(t, timeMin, it.TotalTimeMin)
	})

	t.Run("Missing POI aborts with nothing persisted", func(t *testing.T) {
		builder, _, _, store := newTestBuilder()

		_, err := builder.Create(ctx, CreateInput{
			UserID: "u1",
			Title:  "Broken plan",
			Stops: []models.ItineraryStopInput{
				{PoiID: "gateway"},
				{PoiID: "atlantis"},
			},
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, models.ErrNotFound)
		assert.Contains(t, err.Error(), "atlantis")
		assert.Empty(t, store.created)
	})

	t.Run("Unknown owner aborts before POI resolution", func(t *testing.T) {
		builder, _, _, store := newTestBuilder()

		_, err := builder.Create(ctx, CreateInput{
			UserID: "nobody",
			Title:  "Orphan plan",
			Stops:  []models.ItineraryStopInput{{PoiID: "gateway"}},
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, models.ErrNotFound)
		assert.Empty(t, store.created)
	})

	t.Run("Missing owner falls back to guest", func(t *testing.T) {
		builder, _, users, _ := newTestBuilder()

		it, err := builder.Create(ctx, CreateInput{
			Title: "Anonymous wander",
			Stops: []models.ItineraryStopInput{{PoiID: "gateway"}},
		})
		require.NoError(t, err)
		assert.Equal(t, "guest-1", it.UserID)
		assert.Equal(t, 1, users.guestCalls)
	})

	t.Run("Empty mode defaults to mixed", func(t *testing.T) {
		builder, _, _, _ := newTestBuilder()

		mixed, err := builder.Create(ctx, CreateInput{
			UserID: "u1",
			Title:  "Default mode",
			Stops: []models.ItineraryStopInput{
				{PoiID: "gateway"},
				{PoiID: "bandra"},
			},
		})
		require.NoError(t, err)

		explicit, err := builder.Create(ctx, CreateInput{
			UserID: "u1",
			Title:  "Explicit mixed",
			Mode:   models.ModeMixed,
			Stops: []models.ItineraryStopInput{
				{PoiID: "gateway"},
				{PoiID: "bandra"},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, explicit.Items[1].LegTimeMin, mixed.Items[1].LegTimeMin)
	})

	t.Run("Unparseable stop times degrade to nil", func(t *testing.T) {
		builder, _, _, _ := newTestBuilder()

		it, err := builder.Create(ctx, CreateInput{
			UserID: "u1",
			Title:  "Loose schedule",
			Stops: []models.ItineraryStopInput{
				{PoiID: "gateway", StartTime: "whenever", EndTime: ""},
			},
		})
		require.NoError(t, err)
		assert.Nil(t, it.Items[0].StartTime)
		assert.Nil(t, it.Items[0].EndTime)
	})

	t.Run("No stops is rejected", func(t *testing.T) {
		builder, _, _, _ := newTestBuilder()
		_, err := builder.Create(ctx, CreateInput{UserID: "u1", Title: "Empty"})
		assert.Error(t, err)
	})

	t.Run("Share tokens differ between itineraries", func(t *testing.T) {
		builder, _, _, _ := newTestBuilder()
		first, err := builder.Create(ctx, CreateInput{
			UserID: "u1", Title: "A",
			Stops: []models.ItineraryStopInput{{PoiID: "gateway"}},
		})
		require.NoError(t, err)
		second, err := builder.Create(ctx, CreateInput{
			UserID: "u1", Title: "B",
			Stops: []models.ItineraryStopInput{{PoiID: "gateway"}},
		})
		require.NoError(t, err)
		assert.NotEqual(t, first.ShareToken, second.ShareToken)
	})
}

func TestGetAndList(t *testing.T) {
	ctx := context.Background()
	builder, _, _, _ := newTestBuilder()

	created, err := builder.Create(ctx, CreateInput{
		UserID: "u1",
		Title:  "Harbour loop",
		Mode:   models.ModeWalk,
		Stops: []models.ItineraryStopInput{
			{PoiID: "gateway"},
			{PoiID: "bandra"},
		},
	})
	require.NoError(t, err)

	t.Run("Get returns legs in order", func(t *testing.T) {
		got, err := builder.Get(ctx, created.ID)
		require.NoError(t, err)
		require.Len(t, got.Items, 2)
		assert.Equal(t, "gateway", got.Items[0].PoiID)
		assert.Equal(t, "bandra", got.Items[1].PoiID)
	})

	t.Run("Get unknown id fails NotFound", func(t *testing.T) {
		_, err := builder.Get(ctx, "missing")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("Share token lookup", func(t *testing.T) {
		got, err := builder.GetByShareToken(ctx, created.ShareToken)
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
	})

	t.Run("List returns the owner's itineraries", func(t *testing.T) {
		list, err := builder.List(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, created.ID, list[0].ID)
	})
}
