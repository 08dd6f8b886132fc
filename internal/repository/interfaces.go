package repository

import (
	"context"
	"time"

	"github.com/yourusername/keirin-edge/internal/models"
)

// RaceRepository defines the interface for normalized race-card access
type RaceRepository interface {
	GetByDate(ctx context.Context, date string) ([]*models.Race, error)
	GetByPlaceAndDate(ctx context.Context, place, date string) ([]*models.Race, error)
	Save(ctx context.Context, race *models.Race) error
}

// RecommendationRepository defines the interface for stored recommendations
type RecommendationRepository interface {
	Save(ctx context.Context, rec *models.StoredRecommendation) error
	GetByRaceKey(ctx context.Context, place, date string, raceNumber int) ([]*models.StoredRecommendation, error)
	GetSince(ctx context.Context, since time.Time) ([]*models.StoredRecommendation, error)
}

// OutcomeRepository defines the interface for official race results.
// GetByRaceKeys must chunk its IN-lists to respect store limits.
type OutcomeRepository interface {
	GetByRaceKeys(ctx context.Context, keys []string) (map[string]*models.RaceOutcome, error)
	Upsert(ctx context.Context, outcome *models.RaceOutcome) error
}

// SettlementRepository defines the interface for settlement rows. Upsert
// is keyed by (place, date, race number, strategy kind) so re-running a
// batch overwrites identical rows.
type SettlementRepository interface {
	Upsert(ctx context.Context, record *models.SettlementRecord) error
	GetSince(ctx context.Context, since time.Time) ([]*models.SettlementRecord, error)
}
