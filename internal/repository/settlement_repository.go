package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/yourusername/keirin-edge/internal/database"
	"github.com/yourusername/keirin-edge/internal/models"
)

// PostgresSettlementRepository implements SettlementRepository for
// PostgreSQL
type PostgresSettlementRepository struct {
	db *database.DB
}

// NewPostgresSettlementRepository creates a new settlement repository
func NewPostgresSettlementRepository(db *database.DB) SettlementRepository {
	return &PostgresSettlementRepository{db: db}
}

// Upsert writes a settlement row keyed by race and strategy kind, so
// re-running a batch on identical inputs leaves the table unchanged
// apart from settled_at.
func (r *PostgresSettlementRepository) Upsert(ctx context.Context, record *models.SettlementRecord) error {
	tickets, err := json.Marshal(record.Tickets)
	if err != nil {
		return fmt.Errorf("failed to encode ticket settlements: %w", err)
	}

	query := `
		INSERT INTO settlements (
			id, recommendation_id, place, date, race_number, strategy_kind,
			archetype, status, investment, returned, hit, hit_detail,
			result_top3, tickets, settled_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (place, date, race_number, strategy_kind) DO UPDATE SET
			recommendation_id = EXCLUDED.recommendation_id,
			archetype = EXCLUDED.archetype,
			status = EXCLUDED.status,
			investment = EXCLUDED.investment,
			returned = EXCLUDED.returned,
			hit = EXCLUDED.hit,
			hit_detail = EXCLUDED.hit_detail,
			result_top3 = EXCLUDED.result_top3,
			tickets = EXCLUDED.tickets,
			settled_at = EXCLUDED.settled_at
	`
	_, err = r.db.GetPool().Exec(ctx, query,
		record.ID, record.RecommendationID, record.Place, record.Date,
		record.RaceNumber, record.StrategyKind, record.Archetype,
		record.Status, record.Investment, record.Return, record.Hit,
		record.HitDetail, record.ResultTop3, tickets, record.SettledAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert settlement: %w", err)
	}
	return nil
}

// GetSince retrieves settlement rows settled at or after the given instant
func (r *PostgresSettlementRepository) GetSince(ctx context.Context, since time.Time) ([]*models.SettlementRecord, error) {
	query := `
		SELECT id, recommendation_id, place, date, race_number, strategy_kind,
		       archetype, status, investment, returned, hit, hit_detail,
		       result_top3, tickets, settled_at
		FROM settlements
		WHERE settled_at >= $1
		ORDER BY settled_at DESC
	`
	rows, err := r.db.GetPool().Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query settlements: %w", err)
	}
	defer rows.Close()

	var records []*models.SettlementRecord
	for rows.Next() {
		rec := &models.SettlementRecord{}
		var tickets []byte
		err := rows.Scan(
			&rec.ID, &rec.RecommendationID, &rec.Place, &rec.Date,
			&rec.RaceNumber, &rec.StrategyKind, &rec.Archetype, &rec.Status,
			&rec.Investment, &rec.Return, &rec.Hit, &rec.HitDetail,
			&rec.ResultTop3, &tickets, &rec.SettledAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		if len(tickets) > 0 {
			if err := json.Unmarshal(tickets, &rec.Tickets); err != nil {
				return nil, fmt.Errorf("failed to decode ticket settlements: %w", err)
			}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read settlements: %w", err)
	}
	return records, nil
}
