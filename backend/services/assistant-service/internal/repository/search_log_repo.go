package repository

import (
	"context"
	"database/sql"
	"time"
)

// SearchRecord is one logged station search.
type SearchRecord struct {
	ID        int64     `db:"id" json:"id"`
	SessionID string    `db:"session_id" json:"session_id,omitempty"`
	Latitude  float64   `db:"latitude" json:"latitude"`
	Longitude float64   `db:"longitude" json:"longitude"`
	RadiusKm  float64   `db:"radius_km" json:"radius_km"`
	Results   int       `db:"results" json:"results"`
	TopScore  int       `db:"top_score" json:"top_score"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// SearchLogRepository persists station search history.
type SearchLogRepository struct {
	db *sql.DB
}

// NewSearchLogRepository returns repository.
func NewSearchLogRepository(db *sql.DB) *SearchLogRepository {
	return &SearchLogRepository{db: db}
}

// Insert stores one search record and fills in its id and timestamp.
func (r *SearchLogRepository) Insert(ctx context.Context, record *SearchRecord) error {
	const query = `
		INSERT INTO station_searches (session_id, latitude, longitude, radius_km, results, top_score, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING id, created_at
	`
	return r.db.QueryRowContext(ctx, query,
		record.SessionID,
		record.Latitude,
		record.Longitude,
		record.RadiusKm,
		record.Results,
		record.TopScore,
	).Scan(&record.ID, &record.CreatedAt)
}

// Recent returns the latest searches, newest first.
func (r *SearchLogRepository) Recent(ctx context.Context, limit int) ([]SearchRecord, error) {
	const query = `
		SELECT id, session_id, latitude, longitude, radius_km, results, top_score, created_at
		FROM station_searches
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []SearchRecord
	for rows.Next() {
		var record SearchRecord
		if err := rows.Scan(
			&record.ID,
			&record.SessionID,
			&record.Latitude,
			&record.Longitude,
			&record.RadiusKm,
			&record.Results,
			&record.TopScore,
			&record.CreatedAt,
		); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}
