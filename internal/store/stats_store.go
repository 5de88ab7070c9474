package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mumbaitrails/trails_core/internal/models"
)

// Overview aggregates catalog-wide numbers for the analytics endpoint
type Overview struct {
	PoiCount       int                  `json:"poi_count"`
	ItineraryCount int                  `json:"itinerary_count"`
	Categories     []models.CategoryStat `json:"categories"`
}

// StatsStore runs the aggregate queries behind the analytics overview
type StatsStore struct {
	pool *pgxpool.Pool
}

// NewStatsStore creates a stats store on a connection pool
func NewStatsStore(pool *pgxpool.Pool) *StatsStore {
	return &StatsStore{pool: pool}
}

// GetOverview returns catalog totals and per-category breakdowns
func (s *StatsStore) GetOverview(ctx context.Context) (*Overview, error) {
	var overview Overview

	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM poi`).Scan(&overview.PoiCount); err != nil {
		return nil, fmt.Errorf("count pois: %w", err)
	}
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM itinerary`).Scan(&overview.ItineraryCount); err != nil {
		return nil, fmt.Errorf("count itineraries: %w", err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT c.slug, c.display_name, COUNT(pc.poi_id), AVG(p.rating)
		FROM category c
		LEFT JOIN poi_category pc ON pc.category_id = c.id
		LEFT JOIN poi p ON p.id = pc.poi_id
		GROUP BY c.slug, c.display_name
		ORDER BY COUNT(pc.poi_id) DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("category stats: %w", err)
	}
	defer rows.Close()

	overview.Categories = []models.CategoryStat{}
	for rows.Next() {
		var stat models.CategoryStat
		if err := rows.Scan(&stat.Slug, &stat.Name, &stat.Count, &stat.AvgRating); err != nil {
			return nil, fmt.Errorf("scan category stat: %w", err)
		}
		overview.Categories = append(overview.Categories, stat)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &overview, nil
}
