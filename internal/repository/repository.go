package repository

import (
	"fmt"

	"github.com/yourusername/keirin-edge/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Race           RaceRepository
	Recommendation RecommendationRepository
	Outcome        OutcomeRepository
	Settlement     SettlementRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Race:           NewPostgresRaceRepository(db),
		Recommendation: NewPostgresRecommendationRepository(db),
		Outcome:        NewPostgresOutcomeRepository(db),
		Settlement:     NewPostgresSettlementRepository(db),
	}, nil
}
