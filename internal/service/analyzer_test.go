package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/keirin-edge/internal/classify"
	"github.com/yourusername/keirin-edge/internal/config"
	"github.com/yourusername/keirin-edge/internal/models"
	"github.com/yourusername/keirin-edge/internal/scoring"
	"github.com/yourusername/keirin-edge/internal/tickets"
)

// MockRaceRepository mocks race-card access
type MockRaceRepository struct {
	mock.Mock
}

func (m *MockRaceRepository) GetByDate(ctx context.Context, date string) ([]*models.Race, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Race), args.Error(1)
}

func (m *MockRaceRepository) GetByPlaceAndDate(ctx context.Context, place, date string) ([]*models.Race, error) {
	args := m.Called(ctx, place, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Race), args.Error(1)
}

func (m *MockRaceRepository) Save(ctx context.Context, race *models.Race) error {
	args := m.Called(ctx, race)
	return args.Error(0)
}

// MockRecommendationRepository mocks stored recommendation access
type MockRecommendationRepository struct {
	mock.Mock
}

func (m *MockRecommendationRepository) Save(ctx context.Context, rec *models.StoredRecommendation) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockRecommendationRepository) GetByRaceKey(ctx context.Context, place, date string, raceNumber int) ([]*models.StoredRecommendation, error) {
	args := m.Called(ctx, place, date, raceNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.StoredRecommendation), args.Error(1)
}

func (m *MockRecommendationRepository) GetSince(ctx context.Context, since time.Time) ([]*models.StoredRecommendation, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.StoredRecommendation), args.Error(1)
}

func testConfig() *config.Config {
	return &config.Config{
		Scoring:    scoring.DefaultConfig(),
		Classifier: classify.DefaultConfig(),
		Generator:  tickets.DefaultConfig(),
	}
}

func testRace(baseScores ...float64) *models.Race {
	race := &models.Race{
		Place:  "Kokura",
		Date:   "2026-08-29",
		Number: 11,
	}
	for i, s := range baseScores {
		race.Riders = append(race.Riders, models.Rider{CarNumber: i + 1, BaseScore: s})
	}
	return race
}

func newTestAnalyzer(raceRepo *MockRaceRepository, recRepo *MockRecommendationRepository) *Analyzer {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return NewAnalyzer(raceRepo, recRepo, testConfig(), log)
}

func TestAnalyzeRacePersistsRecommendation(t *testing.T) {
	raceRepo := new(MockRaceRepository)
	recRepo := new(MockRecommendationRepository)
	analyzer := newTestAnalyzer(raceRepo, recRepo)

	var saved *models.StoredRecommendation
	recRepo.On("Save", mock.Anything, mock.AnythingOfType("*models.StoredRecommendation")).
		Run(func(args mock.Arguments) {
			saved = args.Get(1).(*models.StoredRecommendation)
		}).Return(nil)

	rec, err := analyzer.AnalyzeRace(context.Background(), testRace(95, 90, 88, 85, 80, 78, 75))

	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, models.ArchetypeStandard, rec.Archetype)
	assert.Equal(t, models.StrategyKindMain, rec.StrategyKind)
	assert.NotEmpty(t, rec.Tickets)

	require.NotNil(t, saved)
	assert.Equal(t, "Kokura", saved.Place)
	assert.Equal(t, rec.ID, saved.ID)
	assert.Len(t, saved.Tickets, len(rec.Tickets))
	for _, notation := range saved.Tickets {
		assert.Contains(t, notation, ":")
	}
	recRepo.AssertExpectations(t)
}

func TestAnalyzeRacePersistsBonusStream(t *testing.T) {
	raceRepo := new(MockRaceRepository)
	recRepo := new(MockRecommendationRepository)
	analyzer := newTestAnalyzer(raceRepo, recRepo)

	race := testRace(95, 90, 88, 85)
	// Car 3 accrues a tactic bonus, making it the bonus-stream axis.
	race.Riders[2].Tactics = []models.Tactic{models.TacticEscape, models.TacticChaseJump}

	var saves []*models.StoredRecommendation
	recRepo.On("Save", mock.Anything, mock.AnythingOfType("*models.StoredRecommendation")).
		Run(func(args mock.Arguments) {
			saves = append(saves, args.Get(1).(*models.StoredRecommendation))
		}).Return(nil)

	rec, err := analyzer.AnalyzeRace(context.Background(), race)

	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, models.StrategyKindMain, rec.StrategyKind)

	require.Len(t, saves, 2)
	bonus := saves[1]
	assert.Equal(t, models.StrategyKindBonus, bonus.StrategyKind)
	assert.Equal(t, models.ArchetypeSpecialBonus, bonus.Archetype)
	assert.Equal(t, models.ConfidenceLow, bonus.Confidence)
	assert.Equal(t, 3, bonus.TopCar)
	assert.NotEmpty(t, bonus.Tickets)
	// The two streams settle independently.
	assert.NotEqual(t, saves[0].DedupKey(), bonus.DedupKey())
}

func TestAnalyzeRaceBonusSaveFailureKeepsMainStream(t *testing.T) {
	raceRepo := new(MockRaceRepository)
	recRepo := new(MockRecommendationRepository)
	analyzer := newTestAnalyzer(raceRepo, recRepo)

	race := testRace(95, 90, 88, 85)
	race.Riders[2].Tactics = []models.Tactic{models.TacticEscape}

	recRepo.On("Save", mock.Anything, mock.Anything).Return(nil).Once()
	recRepo.On("Save", mock.Anything, mock.Anything).Return(errors.New("connection lost"))

	rec, err := analyzer.AnalyzeRace(context.Background(), race)

	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, models.StrategyKindMain, rec.StrategyKind)
}

func TestAnalyzeRaceInsufficientDataStillPersisted(t *testing.T) {
	raceRepo := new(MockRaceRepository)
	recRepo := new(MockRecommendationRepository)
	analyzer := newTestAnalyzer(raceRepo, recRepo)

	var saved *models.StoredRecommendation
	recRepo.On("Save", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			saved = args.Get(1).(*models.StoredRecommendation)
		}).Return(nil)

	rec, err := analyzer.AnalyzeRace(context.Background(), testRace(90, 85))

	require.NoError(t, err)
	assert.Equal(t, models.ArchetypeInsufficientData, rec.Archetype)
	assert.Empty(t, rec.Tickets)

	require.NotNil(t, saved)
	assert.Empty(t, saved.Tickets)
}

func TestAnalyzeRaceSaveError(t *testing.T) {
	raceRepo := new(MockRaceRepository)
	recRepo := new(MockRecommendationRepository)
	analyzer := newTestAnalyzer(raceRepo, recRepo)

	recRepo.On("Save", mock.Anything, mock.Anything).Return(errors.New("connection lost"))

	rec, err := analyzer.AnalyzeRace(context.Background(), testRace(95, 90, 88, 85))

	assert.Error(t, err)
	assert.Nil(t, rec)
	assert.Contains(t, err.Error(), "Kokura_2026-08-29_11R")
}

func TestAnalyzeDateIsolatesFailures(t *testing.T) {
	raceRepo := new(MockRaceRepository)
	recRepo := new(MockRecommendationRepository)
	analyzer := newTestAnalyzer(raceRepo, recRepo)

	first := testRace(95, 90, 88, 85)
	second := testRace(92, 91, 87, 84)
	second.Number = 12
	raceRepo.On("GetByDate", mock.Anything, "2026-08-29").
		Return([]*models.Race{first, second}, nil)

	recRepo.On("Save", mock.Anything, mock.Anything).Return(errors.New("connection lost")).Once()
	recRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

	recs, err := analyzer.AnalyzeDate(context.Background(), "2026-08-29")

	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, 12, recs[0].RaceNumber)
}

func TestAnalyzeDateLoadError(t *testing.T) {
	raceRepo := new(MockRaceRepository)
	recRepo := new(MockRecommendationRepository)
	analyzer := newTestAnalyzer(raceRepo, recRepo)

	raceRepo.On("GetByDate", mock.Anything, "2026-08-29").
		Return(nil, errors.New("connection lost"))

	recs, err := analyzer.AnalyzeDate(context.Background(), "2026-08-29")

	assert.Error(t, err)
	assert.Nil(t, recs)
}

func TestAnalyzePlaceAndDate(t *testing.T) {
	raceRepo := new(MockRaceRepository)
	recRepo := new(MockRecommendationRepository)
	analyzer := newTestAnalyzer(raceRepo, recRepo)

	raceRepo.On("GetByPlaceAndDate", mock.Anything, "Kokura", "2026-08-29").
		Return([]*models.Race{testRace(95, 90, 88, 85)}, nil)
	recRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

	recs, err := analyzer.AnalyzePlaceAndDate(context.Background(), "Kokura", "2026-08-29")

	require.NoError(t, err)
	assert.Len(t, recs, 1)
}
