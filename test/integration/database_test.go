//go:build integration

package integration

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/keirin-edge/internal/database"
	"github.com/yourusername/keirin-edge/internal/models"
	"github.com/yourusername/keirin-edge/internal/repository"
)

const skipIntegration = "Skipping integration test in short mode"

// TestDatabaseRepositoryIntegration tests all repositories against a real Postgres
func TestDatabaseRepositoryIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip(skipIntegration)
	}

	ctx := context.Background()
	db := database.SetupTestDB(t)
	defer database.TeardownTestDB(t, db)
	database.TruncateTestTables(t, db)

	const (
		place = "Kokura"
		date  = "2026-08-29"
	)

	t.Run("RaceRepository", func(t *testing.T) {
		repo := repository.NewPostgresRaceRepository(db)

		race := &models.Race{
			Place:           place,
			Date:            date,
			Number:          11,
			Tier:            models.TierElite,
			Region:          "Fukuoka",
			StraightLength:  56.9,
			BankingAngle:    34.0,
			TrackLength:     400,
			LineComposition: "136 257 49",
			Riders: []models.Rider{
				{CarNumber: 1, Name: "Tanaka", BaseScore: 95.2, HomeRegion: "Fukuoka", EscapeCount: 4, BackCount: 12},
				{CarNumber: 2, Name: "Sato", BaseScore: 91.8, ChaseJumpCount: 6},
				{CarNumber: 3, Name: "Suzuki", BaseScore: 88.1, CloserCount: 5},
			},
		}

		err := repo.Save(ctx, race)
		require.NoError(t, err)

		races, err := repo.GetByPlaceAndDate(ctx, place, date)
		require.NoError(t, err)
		require.Len(t, races, 1)

		retrieved := races[0]
		assert.Equal(t, 11, retrieved.Number)
		assert.Equal(t, "136 257 49", retrieved.LineComposition)
		require.Len(t, retrieved.Riders, 3)
		assert.Equal(t, 95.2, retrieved.Riders[0].BaseScore)

		// Save is an upsert: re-saving the same race must not duplicate it
		err = repo.Save(ctx, race)
		require.NoError(t, err)
		races, err = repo.GetByDate(ctx, date)
		require.NoError(t, err)
		assert.Len(t, races, 1)
	})

	recID := uuid.New()

	t.Run("RecommendationRepository", func(t *testing.T) {
		repo := repository.NewPostgresRecommendationRepository(db)

		rec := &models.StoredRecommendation{
			ID:           recID,
			Place:        place,
			Date:         date,
			RaceNumber:   11,
			StrategyKind: models.StrategyKindMain,
			Archetype:    models.ArchetypeSujiFix,
			Confidence:   models.ConfidenceHigh,
			Reason:       "line trust",
			Tickets:      []string{"trifecta: 1 -> 3 -> 2,4", "exacta: 1 -> 3"},
			TopCar:       1,
			CreatedAt:    time.Now().UTC(),
		}

		err := repo.Save(ctx, rec)
		require.NoError(t, err)

		byRace, err := repo.GetByRaceKey(ctx, place, date, 11)
		require.NoError(t, err)
		require.Len(t, byRace, 1)
		assert.Equal(t, models.ArchetypeSujiFix, byRace[0].Archetype)
		assert.Equal(t, rec.Tickets, byRace[0].Tickets)

		since, err := repo.GetSince(ctx, time.Now().Add(-time.Hour))
		require.NoError(t, err)
		assert.Len(t, since, 1)
	})

	t.Run("OutcomeRepository", func(t *testing.T) {
		repo := repository.NewPostgresOutcomeRepository(db)

		outcome := &models.RaceOutcome{
			Place:       place,
			Date:        date,
			RaceNumber:  11,
			FinishOrder: []int{1, 3, 2},
			Payouts: models.PayoutTable{
				Exacta:   decimal.NewFromInt(1500),
				Trifecta: decimal.NewFromInt(9800),
				Wide1:    decimal.NewFromInt(400),
			},
			RecordedAt: time.Now().UTC(),
		}

		err := repo.Upsert(ctx, outcome)
		require.NoError(t, err)

		key := models.RaceKey(place, date, 11)
		found, err := repo.GetByRaceKeys(ctx, []string{key, models.RaceKey(place, date, 12)})
		require.NoError(t, err)
		require.Contains(t, found, key)
		assert.Equal(t, []int{1, 3, 2}, found[key].FinishOrder)
		assert.True(t, found[key].Payouts.Trifecta.Equal(decimal.NewFromInt(9800)))
	})

	t.Run("SettlementRepository", func(t *testing.T) {
		repo := repository.NewPostgresSettlementRepository(db)

		record := &models.SettlementRecord{
			ID:               uuid.New(),
			RecommendationID: recID,
			Place:            place,
			Date:             date,
			RaceNumber:       11,
			StrategyKind:     models.StrategyKindMain,
			Archetype:        models.ArchetypeSujiFix,
			Status:           models.SettlementSettled,
			Investment:       decimal.NewFromInt(500),
			Return:           decimal.NewFromInt(1500),
			Hit:              true,
			HitDetail:        "exacta: 1 -> 3 pays 1500",
			ResultTop3:       []int{1, 3, 2},
			Tickets: []models.TicketSettlement{
				{Notation: "exacta: 1 -> 3", Kind: models.BetKindExacta, Combinations: 1,
					Stake: decimal.NewFromInt(100), Return: decimal.NewFromInt(1500), Hit: true},
			},
			SettledAt: time.Now().UTC(),
		}

		err := repo.Upsert(ctx, record)
		require.NoError(t, err)

		// Re-running the batch overwrites the same row
		record.Return = decimal.NewFromInt(1500)
		err = repo.Upsert(ctx, record)
		require.NoError(t, err)

		since, err := repo.GetSince(ctx, time.Now().Add(-time.Hour))
		require.NoError(t, err)
		require.Len(t, since, 1)
		assert.True(t, since[0].Hit)
		require.Len(t, since[0].Tickets, 1)
		assert.Equal(t, models.BetKindExacta, since[0].Tickets[0].Kind)
	})
}
