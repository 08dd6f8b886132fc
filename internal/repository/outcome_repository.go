package repository

import (
	"context"
	"fmt"

	"github.com/yourusername/keirin-edge/internal/database"
	"github.com/yourusername/keirin-edge/internal/models"
)

// outcomeChunkSize caps the IN-list length of a bulk outcome query.
// External result stores reject larger identifier lists.
const outcomeChunkSize = 900

// PostgresOutcomeRepository implements OutcomeRepository for PostgreSQL
type PostgresOutcomeRepository struct {
	db *database.DB

	chunkSize int
}

// NewPostgresOutcomeRepository creates a new outcome repository
func NewPostgresOutcomeRepository(db *database.DB) OutcomeRepository {
	return &PostgresOutcomeRepository{db: db, chunkSize: outcomeChunkSize}
}

// GetByRaceKeys bulk-loads outcomes for the given race keys, chunking
// the identifier list. Keys without a stored outcome are simply absent
// from the result map.
func (r *PostgresOutcomeRepository) GetByRaceKeys(ctx context.Context, keys []string) (map[string]*models.RaceOutcome, error) {
	out := make(map[string]*models.RaceOutcome, len(keys))
	for start := 0; start < len(keys); start += r.chunkSize {
		end := start + r.chunkSize
		if end > len(keys) {
			end = len(keys)
		}
		if err := r.loadChunk(ctx, keys[start:end], out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *PostgresOutcomeRepository) loadChunk(ctx context.Context, keys []string, out map[string]*models.RaceOutcome) error {
	query := `
		SELECT place, date, race_number, finish_order,
		       exacta, trifecta, quinella, trio, wide1, wide2, wide3,
		       recorded_at
		FROM outcomes
		WHERE race_key = ANY($1)
	`
	rows, err := r.db.GetPool().Query(ctx, query, keys)
	if err != nil {
		return fmt.Errorf("failed to query outcomes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		o := &models.RaceOutcome{}
		err := rows.Scan(
			&o.Place, &o.Date, &o.RaceNumber, &o.FinishOrder,
			&o.Payouts.Exacta, &o.Payouts.Trifecta, &o.Payouts.Quinella,
			&o.Payouts.Trio, &o.Payouts.Wide1, &o.Payouts.Wide2,
			&o.Payouts.Wide3, &o.RecordedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to scan outcome: %w", err)
		}
		out[o.RaceKey()] = o
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read outcomes: %w", err)
	}
	return nil
}

// Upsert writes an official outcome, overwriting any previous row for
// the same race
func (r *PostgresOutcomeRepository) Upsert(ctx context.Context, outcome *models.RaceOutcome) error {
	query := `
		INSERT INTO outcomes (
			race_key, place, date, race_number, finish_order,
			exacta, trifecta, quinella, trio, wide1, wide2, wide3,
			recorded_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (race_key) DO UPDATE SET
			finish_order = EXCLUDED.finish_order,
			exacta = EXCLUDED.exacta,
			trifecta = EXCLUDED.trifecta,
			quinella = EXCLUDED.quinella,
			trio = EXCLUDED.trio,
			wide1 = EXCLUDED.wide1,
			wide2 = EXCLUDED.wide2,
			wide3 = EXCLUDED.wide3,
			recorded_at = EXCLUDED.recorded_at
	`
	_, err := r.db.GetPool().Exec(ctx, query,
		outcome.RaceKey(), outcome.Place, outcome.Date, outcome.RaceNumber,
		outcome.FinishOrder, outcome.Payouts.Exacta, outcome.Payouts.Trifecta,
		outcome.Payouts.Quinella, outcome.Payouts.Trio, outcome.Payouts.Wide1,
		outcome.Payouts.Wide2, outcome.Payouts.Wide3, outcome.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert outcome: %w", err)
	}
	return nil
}
