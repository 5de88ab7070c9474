package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mumbaitrails/trails_core/internal/models"
)

// ItineraryStore is the PostgreSQL-backed itinerary repository
type ItineraryStore struct {
	pool *pgxpool.Pool
}

// NewItineraryStore creates an itinerary store on a connection pool
func NewItineraryStore(pool *pgxpool.Pool) *ItineraryStore {
	return &ItineraryStore{pool: pool}
}

// CreateWithLegs persists the itinerary header and its legs in one
// transaction. Timestamps come back from the database so the returned
// struct matches what was stored.
func (s *ItineraryStore) CreateWithLegs(ctx context.Context, it *models.Itinerary) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO itinerary (id, user_id, title, date, share_token, total_distance_km, total_time_min)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`, it.ID, it.UserID, it.Title, it.Date, it.ShareToken, it.TotalDistanceKm, it.TotalTimeMin).
		Scan(&it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert itinerary: %w", err)
	}

	for _, leg := range it.Items {
		_, err := tx.Exec(ctx, `
			INSERT INTO itinerary_item (itinerary_id, order_index, poi_id, start_time, end_time,
			                            leg_distance_km, leg_time_min, note)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, it.ID, leg.OrderIndex, leg.PoiID, leg.StartTime, leg.EndTime,
			leg.LegDistanceKm, leg.LegTimeMin, leg.Note)
		if err != nil {
			return fmt.Errorf("insert itinerary item %d: %w", leg.OrderIndex, err)
		}
	}

	return tx.Commit(ctx)
}

// FindByID returns an itinerary with its legs in stop order
func (s *ItineraryStore) FindByID(ctx context.Context, id string) (*models.Itinerary, error) {
	return s.findOne(ctx, "id = $1", id)
}

// FindByShareToken resolves a shared itinerary from its token
func (s *ItineraryStore) FindByShareToken(ctx context.Context, token string) (*models.Itinerary, error) {
	return s.findOne(ctx, "share_token = $1", token)
}

func (s *ItineraryStore) findOne(ctx context.Context, where string, arg interface{}) (*models.Itinerary, error) {
	var it models.Itinerary
	err := s.pool.QueryRow(ctx, `
		SELECT id, user_id, title, date, share_token, total_distance_km, total_time_min,
		       created_at, updated_at
		FROM itinerary
		WHERE `+where, arg).
		Scan(&it.ID, &it.UserID, &it.Title, &it.Date, &it.ShareToken,
			&it.TotalDistanceKm, &it.TotalTimeMin, &it.CreatedAt, &it.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("itinerary: %w", models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query itinerary: %w", err)
	}

	itemsByItinerary, err := s.loadItems(ctx, []string{it.ID})
	if err != nil {
		return nil, err
	}
	it.Items = itemsByItinerary[it.ID]

	return &it, nil
}

// FindManyByOwner lists an owner's itineraries, newest first, legs
// included
func (s *ItineraryStore) FindManyByOwner(ctx context.Context, userID string) ([]models.Itinerary, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, title, date, share_token, total_distance_km, total_time_min,
		       created_at, updated_at
		FROM itinerary
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list itineraries: %w", err)
	}
	defer rows.Close()

	var itineraries []models.Itinerary
	var ids []string
	for rows.Next() {
		var it models.Itinerary
		if err := rows.Scan(&it.ID, &it.UserID, &it.Title, &it.Date, &it.ShareToken,
			&it.TotalDistanceKm, &it.TotalTimeMin, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan itinerary: %w", err)
		}
		itineraries = append(itineraries, it)
		ids = append(ids, it.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(itineraries) == 0 {
		return []models.Itinerary{}, nil
	}

	itemsByItinerary, err := s.loadItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range itineraries {
		itineraries[i].Items = itemsByItinerary[itineraries[i].ID]
	}

	return itineraries, nil
}

// Count returns the total number of itineraries
func (s *ItineraryStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM itinerary`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count itineraries: %w", err)
	}
	return count, nil
}

func (s *ItineraryStore) loadItems(ctx context.Context, itineraryIDs []string) (map[string][]models.ItineraryLeg, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT i.itinerary_id, i.order_index, i.poi_id, p.name, i.start_time, i.end_time,
		       i.leg_distance_km, i.leg_time_min, i.note
		FROM itinerary_item i
		JOIN poi p ON p.id = i.poi_id
		WHERE i.itinerary_id = ANY($1)
		ORDER BY i.itinerary_id, i.order_index
	`, itineraryIDs)
	if err != nil {
		return nil, fmt.Errorf("query itinerary items: %w", err)
	}
	defer rows.Close()

	byItinerary := make(map[string][]models.ItineraryLeg)
	for rows.Next() {
		var itineraryID string
		var leg models.ItineraryLeg
		if err := rows.Scan(&itineraryID, &leg.OrderIndex, &leg.PoiID, &leg.PoiName,
			&leg.StartTime, &leg.EndTime, &leg.LegDistanceKm, &leg.LegTimeMin, &leg.Note); err != nil {
			return nil, fmt.Errorf("scan itinerary item: %w", err)
		}
		byItinerary[itineraryID] = append(byItinerary[itineraryID], leg)
	}
	return byItinerary, rows.Err()
}
