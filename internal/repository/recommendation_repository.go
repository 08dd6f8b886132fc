package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/keirin-edge/internal/database"
	"github.com/yourusername/keirin-edge/internal/models"
)

// PostgresRecommendationRepository implements RecommendationRepository
// for PostgreSQL
type PostgresRecommendationRepository struct {
	db *database.DB
}

// NewPostgresRecommendationRepository creates a new recommendation repository
func NewPostgresRecommendationRepository(db *database.DB) RecommendationRepository {
	return &PostgresRecommendationRepository{db: db}
}

const recommendationColumns = `
	id, place, date, race_number, strategy_kind, archetype, confidence,
	reason, tickets, top_car, created_at
`

// Save inserts a stored recommendation row. Rows are append-only: the
// settler deduplicates by newest created_at per race and strategy kind.
func (r *PostgresRecommendationRepository) Save(ctx context.Context, rec *models.StoredRecommendation) error {
	query := `
		INSERT INTO recommendations (` + recommendationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.GetPool().Exec(ctx, query,
		rec.ID, rec.Place, rec.Date, rec.RaceNumber, rec.StrategyKind,
		rec.Archetype, rec.Confidence, rec.Reason, rec.Tickets, rec.TopCar,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save recommendation: %w", err)
	}
	return nil
}

// GetByRaceKey retrieves all stored recommendations for one race
func (r *PostgresRecommendationRepository) GetByRaceKey(ctx context.Context, place, date string, raceNumber int) ([]*models.StoredRecommendation, error) {
	query := `
		SELECT ` + recommendationColumns + `
		FROM recommendations
		WHERE place = $1 AND date = $2 AND race_number = $3
		ORDER BY created_at DESC
	`
	rows, err := r.db.GetPool().Query(ctx, query, place, date, raceNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to query recommendations: %w", err)
	}
	defer rows.Close()
	return scanRecommendations(rows)
}

// GetSince retrieves every stored recommendation created at or after the
// given instant
func (r *PostgresRecommendationRepository) GetSince(ctx context.Context, since time.Time) ([]*models.StoredRecommendation, error) {
	query := `
		SELECT ` + recommendationColumns + `
		FROM recommendations
		WHERE created_at >= $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.GetPool().Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query recommendations: %w", err)
	}
	defer rows.Close()
	return scanRecommendations(rows)
}

func scanRecommendations(rows pgx.Rows) ([]*models.StoredRecommendation, error) {
	var recs []*models.StoredRecommendation
	for rows.Next() {
		rec := &models.StoredRecommendation{}
		err := rows.Scan(
			&rec.ID, &rec.Place, &rec.Date, &rec.RaceNumber, &rec.StrategyKind,
			&rec.Archetype, &rec.Confidence, &rec.Reason, &rec.Tickets,
			&rec.TopCar, &rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recommendation: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read recommendations: %w", err)
	}
	return recs, nil
}
