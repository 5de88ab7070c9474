package store

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mumbaitrails/trails_core/internal/models"
)

// PoiStore is the PostgreSQL-backed POI repository
type PoiStore struct {
	pool *pgxpool.Pool
}

// NewPoiStore creates a POI store on a connection pool
func NewPoiStore(pool *pgxpool.Pool) *PoiStore {
	return &PoiStore{pool: pool}
}

// FindManyByIDs resolves POI coordinates in one batch. Missing ids are
// simply absent from the result; the caller decides whether that is fatal.
func (s *PoiStore) FindManyByIDs(ctx context.Context, ids []string) ([]models.PoiPoint, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, latitude, longitude
		FROM poi
		WHERE id = ANY($1)
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("query pois by ids: %w", err)
	}
	defer rows.Close()

	var points []models.PoiPoint
	for rows.Next() {
		var p models.PoiPoint
		if err := rows.Scan(&p.ID, &p.Name, &p.Latitude, &p.Longitude); err != nil {
			return nil, fmt.Errorf("scan poi point: %w", err)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// Search runs the AND-combined predicate set and returns candidates with
// their opening hours loaded, ordered by rating descending.
func (s *PoiStore) Search(ctx context.Context, q models.SearchQuery) ([]models.Poi, error) {
	query := `
		SELECT p.id, p.slug, p.name, p.description, p.latitude, p.longitude,
		       p.rating, p.price_level, p.image_url
		FROM poi p
		WHERE 1=1
	`

	args := []interface{}{}
	argCount := 0

	if q.Text != "" {
		argCount++
		query += fmt.Sprintf(" AND (p.name ILIKE '%%' || $%d || '%%' OR p.description ILIKE '%%' || $%d || '%%')", argCount, argCount)
		args = append(args, q.Text)
	}

	if q.Category != "" {
		argCount++
		query += fmt.Sprintf(` AND EXISTS (
			SELECT 1 FROM poi_category pc
			JOIN category c ON c.id = pc.category_id
			WHERE pc.poi_id = p.id AND c.slug = $%d
		)`, argCount)
		args = append(args, q.Category)
	}

	if q.Tag != "" {
		argCount++
		query += fmt.Sprintf(` AND EXISTS (
			SELECT 1 FROM poi_tag pt
			JOIN tag t ON t.id = pt.tag_id
			WHERE pt.poi_id = p.id AND t.slug = $%d
		)`, argCount)
		args = append(args, q.Tag)
	}

	if q.MinRating != nil {
		argCount++
		query += fmt.Sprintf(" AND p.rating >= $%d", argCount)
		args = append(args, *q.MinRating)
	}

	if q.MaxPrice != nil {
		argCount++
		query += fmt.Sprintf(" AND p.price_level <= $%d", argCount)
		args = append(args, *q.MaxPrice)
	}

	if q.BBox != nil {
		query += fmt.Sprintf(" AND p.latitude BETWEEN $%d AND $%d AND p.longitude BETWEEN $%d AND $%d",
			argCount+1, argCount+2, argCount+3, argCount+4)
		args = append(args, q.BBox.MinLat, q.BBox.MaxLat, q.BBox.MinLon, q.BBox.MaxLon)
		argCount += 4
	}

	if q.OpenAt != nil {
		query += fmt.Sprintf(` AND EXISTS (
			SELECT 1 FROM opening_hour oh
			WHERE oh.poi_id = p.id AND oh.day = $%d
			  AND oh.open_time <= $%d AND oh.close_time >= $%d
		)`, argCount+1, argCount+2, argCount+2)
		args = append(args, string(q.OpenAt.Weekday), q.OpenAt.Time)
		argCount += 2
	} else if q.Weekday != "" {
		argCount++
		query += fmt.Sprintf(` AND EXISTS (
			SELECT 1 FROM opening_hour oh
			WHERE oh.poi_id = p.id AND oh.day = $%d
		)`, argCount)
		args = append(args, string(q.Weekday))
	}

	query += " ORDER BY p.rating DESC NULLS LAST"

	argCount++
	query += fmt.Sprintf(" LIMIT $%d", argCount)
	args = append(args, q.Limit)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search pois: %w", err)
	}
	defer rows.Close()

	var pois []models.Poi
	var ids []string
	for rows.Next() {
		var p models.Poi
		if err := rows.Scan(&p.ID, &p.Slug, &p.Name, &p.Description, &p.Latitude, &p.Longitude,
			&p.Rating, &p.PriceLevel, &p.ImageURL); err != nil {
			return nil, fmt.Errorf("scan poi: %w", err)
		}
		pois = append(pois, p)
		ids = append(ids, p.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(pois) == 0 {
		return pois, nil
	}

	hoursByPoi, err := s.loadOpeningHours(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range pois {
		pois[i].OpeningHours = hoursByPoi[pois[i].ID]
	}

	return pois, nil
}

// GetByID returns the full POI detail: categories, tags, and opening
// hours sorted in weekday display order
func (s *PoiStore) GetByID(ctx context.Context, id string) (*models.Poi, error) {
	var p models.Poi
	err := s.pool.QueryRow(ctx, `
		SELECT id, slug, name, description, address, locality, city,
		       latitude, longitude, rating, price_level, ticket_price_inr,
		       time_spent_min, website_url, phone, image_url, created_at, updated_at
		FROM poi
		WHERE id = $1
	`, id).Scan(&p.ID, &p.Slug, &p.Name, &p.Description, &p.Address, &p.Locality, &p.City,
		&p.Latitude, &p.Longitude, &p.Rating, &p.PriceLevel, &p.TicketPrice,
		&p.TimeSpentMin, &p.WebsiteURL, &p.Phone, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("poi %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query poi: %w", err)
	}

	hoursByPoi, err := s.loadOpeningHours(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	p.OpeningHours = hoursByPoi[id]
	sortHoursByWeekday(p.OpeningHours)

	p.Categories, err = s.loadLabels(ctx, id, "poi_category", "category", "category_id")
	if err != nil {
		return nil, err
	}
	p.Tags, err = s.loadLabels(ctx, id, "poi_tag", "tag", "tag_id")
	if err != nil {
		return nil, err
	}

	return &p, nil
}

// ListPublic returns the catalog ordered by rating, for unauthenticated
// browsing
func (s *PoiStore) ListPublic(ctx context.Context, limit int) ([]models.Poi, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, slug, name, description, latitude, longitude,
		       rating, price_level, image_url
		FROM poi
		ORDER BY rating DESC NULLS LAST
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list pois: %w", err)
	}
	defer rows.Close()

	var pois []models.Poi
	for rows.Next() {
		var p models.Poi
		if err := rows.Scan(&p.ID, &p.Slug, &p.Name, &p.Description, &p.Latitude, &p.Longitude,
			&p.Rating, &p.PriceLevel, &p.ImageURL); err != nil {
			return nil, fmt.Errorf("scan poi: %w", err)
		}
		pois = append(pois, p)
	}
	return pois, rows.Err()
}

// ListSlugs returns every slug in the catalog, used to keep newly
// generated slugs unique
func (s *PoiStore) ListSlugs(ctx context.Context) (map[string]bool, error) {
	rows, err := s.pool.Query(ctx, `SELECT slug FROM poi`)
	if err != nil {
		return nil, fmt.Errorf("list slugs: %w", err)
	}
	defer rows.Close()

	slugs := make(map[string]bool)
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			return nil, err
		}
		slugs[slug] = true
	}
	return slugs, rows.Err()
}

// FindIDBySlug resolves a POI id from its slug
func (s *PoiStore) FindIDBySlug(ctx context.Context, slug string) (string, error) {
	var id string
	err := s.pool.QueryRow(ctx, `SELECT id FROM poi WHERE slug = $1`, slug).Scan(&id)
	if err == pgx.ErrNoRows {
		return "", fmt.Errorf("poi slug %s: %w", slug, models.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("query poi by slug: %w", err)
	}
	return id, nil
}

// Upsert writes a POI and rebuilds its opening hours, category, and tag
// links in one transaction. Existing rows are updated in place; link
// tables are wiped and re-created so removed hours do not linger.
func (s *PoiStore) Upsert(ctx context.Context, poi *models.Poi, category *models.LabelRef, tags []models.LabelRef) error {
	now := time.Now()
	if poi.CreatedAt.IsZero() {
		poi.CreatedAt = now
	}
	poi.UpdatedAt = now

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO poi (id, slug, name, description, address, locality, city,
		                 latitude, longitude, rating, price_level, ticket_price_inr,
		                 time_spent_min, website_url, phone, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		ON CONFLICT (id) DO UPDATE SET
			slug = EXCLUDED.slug,
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			address = EXCLUDED.address,
			locality = EXCLUDED.locality,
			city = EXCLUDED.city,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			rating = EXCLUDED.rating,
			price_level = EXCLUDED.price_level,
			ticket_price_inr = EXCLUDED.ticket_price_inr,
			time_spent_min = EXCLUDED.time_spent_min,
			website_url = EXCLUDED.website_url,
			phone = EXCLUDED.phone,
			image_url = EXCLUDED.image_url,
			updated_at = NOW()
	`, poi.ID, poi.Slug, poi.Name, poi.Description, poi.Address, poi.Locality, poi.City,
		poi.Latitude, poi.Longitude, poi.Rating, poi.PriceLevel, poi.TicketPrice,
		poi.TimeSpentMin, poi.WebsiteURL, poi.Phone, poi.ImageURL, poi.CreatedAt, poi.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert poi: %w", err)
	}

	for _, table := range []string{"opening_hour", "poi_category", "poi_tag"} {
		if _, err := tx.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE poi_id = $1", table), poi.ID); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	if category != nil {
		categoryID, err := ensureLabel(ctx, tx, "category", category.Slug, category.Name)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO poi_category (poi_id, category_id) VALUES ($1, $2)`,
			poi.ID, categoryID); err != nil {
			return fmt.Errorf("link category: %w", err)
		}
	}

	for _, tag := range tags {
		tagID, err := ensureLabel(ctx, tx, "tag", tag.Slug, tag.Name)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO poi_tag (poi_id, tag_id) VALUES ($1, $2)`,
			poi.ID, tagID); err != nil {
			return fmt.Errorf("link tag: %w", err)
		}
	}

	for _, hour := range poi.OpeningHours {
		if _, err := tx.Exec(ctx,
			`INSERT INTO opening_hour (poi_id, day, open_time, close_time) VALUES ($1, $2, $3, $4)`,
			poi.ID, string(hour.Day), hour.OpenTime, hour.CloseTime); err != nil {
			return fmt.Errorf("insert opening hour: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// Exists reports whether a POI row exists
func (s *PoiStore) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM poi WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check poi exists: %w", err)
	}
	return exists, nil
}

// Delete removes a POI and its dependent rows
func (s *PoiStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM poi WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete poi: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("poi %s: %w", id, models.ErrNotFound)
	}
	return nil
}

func (s *PoiStore) loadOpeningHours(ctx context.Context, poiIDs []string) (map[string][]models.OpeningHour, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT poi_id, day, open_time, close_time
		FROM opening_hour
		WHERE poi_id = ANY($1)
	`, poiIDs)
	if err != nil {
		return nil, fmt.Errorf("query opening hours: %w", err)
	}
	defer rows.Close()

	byPoi := make(map[string][]models.OpeningHour)
	for rows.Next() {
		var poiID string
		var h models.OpeningHour
		if err := rows.Scan(&poiID, &h.Day, &h.OpenTime, &h.CloseTime); err != nil {
			return nil, fmt.Errorf("scan opening hour: %w", err)
		}
		byPoi[poiID] = append(byPoi[poiID], h)
	}
	return byPoi, rows.Err()
}

func (s *PoiStore) loadLabels(ctx context.Context, poiID, linkTable, labelTable, fkColumn string) ([]models.LabelRef, error) {
	query := fmt.Sprintf(`
		SELECT l.slug, l.display_name
		FROM %s link
		JOIN %s l ON l.id = link.%s
		WHERE link.poi_id = $1
		ORDER BY l.slug
	`, linkTable, labelTable, fkColumn)

	rows, err := s.pool.Query(ctx, query, poiID)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", labelTable, err)
	}
	defer rows.Close()

	labels := []models.LabelRef{}
	for rows.Next() {
		var l models.LabelRef
		if err := rows.Scan(&l.Slug, &l.Name); err != nil {
			return nil, err
		}
		labels = append(labels, l)
	}
	return labels, rows.Err()
}

// ensureLabel upserts a category or tag by slug and returns its id
func ensureLabel(ctx context.Context, tx pgx.Tx, table, slug, displayName string) (string, error) {
	var id string
	query := fmt.Sprintf(`
		INSERT INTO %s (id, slug, display_name)
		VALUES ($1, $2, $3)
		ON CONFLICT (slug) DO UPDATE SET display_name = EXCLUDED.display_name
		RETURNING id
	`, table)
	err := tx.QueryRow(ctx, query, uuid.NewString(), slug, displayName).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("ensure %s %s: %w", table, slug, err)
	}
	return id, nil
}

func sortHoursByWeekday(hours []models.OpeningHour) {
	order := make(map[models.Weekday]int, len(models.WeekdayOrder))
	for i, d := range models.WeekdayOrder {
		order[d] = i
	}
	sort.SliceStable(hours, func(i, j int) bool {
		if order[hours[i].Day] != order[hours[j].Day] {
			return order[hours[i].Day] < order[hours[j].Day]
		}
		return hours[i].OpenTime < hours[j].OpenTime
	})
}
