package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/keirin-edge/internal/classify"
	"github.com/yourusername/keirin-edge/internal/config"
	"github.com/yourusername/keirin-edge/internal/logger"
	"github.com/yourusername/keirin-edge/internal/metrics"
	"github.com/yourusername/keirin-edge/internal/models"
	"github.com/yourusername/keirin-edge/internal/repository"
	"github.com/yourusername/keirin-edge/internal/scoring"
	"github.com/yourusername/keirin-edge/internal/settlement"
	"github.com/yourusername/keirin-edge/internal/tickets"
)

// Analyzer runs the full analysis pipeline for race cards: score the
// field, classify the race into an archetype, generate the wager plan
// and persist the recommendation.
type Analyzer struct {
	raceRepo    repository.RaceRepository
	recRepo     repository.RecommendationRepository
	scoringCfg  scoring.Config
	classifyCfg classify.Config
	ticketCfg   tickets.Config
	log         *logger.AnalysisLogger
}

// NewAnalyzer creates an analyzer wired to the given repositories.
func NewAnalyzer(
	raceRepo repository.RaceRepository,
	recRepo repository.RecommendationRepository,
	cfg *config.Config,
	baseLogger *logrus.Logger,
) *Analyzer {
	return &Analyzer{
		raceRepo:    raceRepo,
		recRepo:     recRepo,
		scoringCfg:  cfg.Scoring,
		classifyCfg: cfg.Classifier,
		ticketCfg:   cfg.Generator,
		log:         logger.NewAnalysisLogger(baseLogger),
	}
}

// AnalyzeRace analyzes a single race and persists the result. Races the
// classifier declines (SKIP, INSUFFICIENT_DATA) are still persisted, with
// an empty ticket list, so the decision is auditable.
func (a *Analyzer) AnalyzeRace(ctx context.Context, race *models.Race) (*models.StrategyRecommendation, error) {
	start := time.Now()

	scored := scoring.ScoreRace(race, a.scoringCfg)
	if len(scored.Riders) > 0 {
		top := scored.Top()
		a.log.LogRaceScored(race.Key(), len(scored.Riders), top.Rider.CarNumber, top.Score,
			float64(time.Since(start).Microseconds())/1000)
	}

	verdict := classify.Classify(scored, race, a.classifyCfg)
	a.log.LogClassification(race.Key(), string(verdict.Archetype), string(verdict.Confidence),
		verdict.Reason, verdict.Strict, verdict.Gap)

	wagers, units := tickets.Generate(verdict, scored, race, a.ticketCfg)

	rec := &models.StrategyRecommendation{
		ID:           uuid.New(),
		Place:        race.Place,
		Date:         race.Date,
		RaceNumber:   race.Number,
		StrategyKind: models.StrategyKindMain,
		Archetype:    verdict.Archetype,
		Confidence:   verdict.Confidence,
		Reason:       verdict.Reason,
		StrictPick:   verdict.Strict,
		Tickets:      wagers,
		UnitCounts:   units,
		TopCar:       verdict.TopCar,
		CreatedAt:    time.Now().UTC(),
	}

	if err := a.recRepo.Save(ctx, storedFrom(rec)); err != nil {
		metrics.RecordAnalysisFailure()
		a.log.LogAnalysisFailure(race.Key(), err)
		return nil, fmt.Errorf("failed to save recommendation for %s: %w", race.Key(), err)
	}

	elapsed := time.Since(start)
	metrics.RecordRaceAnalyzed(string(verdict.Archetype), elapsed.Seconds())

	if len(wagers) == 0 {
		a.log.LogRaceSkipped(race.Key(), string(verdict.Archetype), verdict.Reason)
	} else {
		a.log.LogTicketsGenerated(race.Key(), string(verdict.Archetype), len(wagers), totalUnits(units))
	}

	a.analyzeBonus(ctx, race, scored)

	return rec, nil
}

// analyzeBonus persists the bonus-axis play as a second recommendation
// stream for the race. A failure here never fails the main stream.
func (a *Analyzer) analyzeBonus(ctx context.Context, race *models.Race, scored *scoring.Result) {
	play, ok := tickets.GenerateBonus(scored, a.ticketCfg)
	if !ok {
		a.log.LogRaceSkipped(race.Key(), string(models.ArchetypeSpecialBonus), "no rider with a positive bonus")
		return
	}

	rec := &models.StrategyRecommendation{
		ID:           uuid.New(),
		Place:        race.Place,
		Date:         race.Date,
		RaceNumber:   race.Number,
		StrategyKind: models.StrategyKindBonus,
		Archetype:    models.ArchetypeSpecialBonus,
		Confidence:   play.Confidence,
		Reason:       play.Reason,
		Tickets:      play.Tickets,
		UnitCounts:   tickets.UnitCounts(play.Tickets),
		TopCar:       play.Axis,
		CreatedAt:    time.Now().UTC(),
	}

	if err := a.recRepo.Save(ctx, storedFrom(rec)); err != nil {
		metrics.RecordAnalysisFailure()
		a.log.LogAnalysisFailure(race.Key(), err)
		return
	}
	a.log.LogTicketsGenerated(race.Key(), string(models.ArchetypeSpecialBonus),
		len(play.Tickets), totalUnits(rec.UnitCounts))
}

// AnalyzeDate analyzes every race on the given date. Failures on
// individual races are logged and skipped so one bad card does not abort
// the day.
func (a *Analyzer) AnalyzeDate(ctx context.Context, date string) ([]*models.StrategyRecommendation, error) {
	races, err := a.raceRepo.GetByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load races for %s: %w", date, err)
	}
	return a.analyzeAll(ctx, races)
}

// AnalyzePlaceAndDate analyzes one velodrome's card for the given date.
func (a *Analyzer) AnalyzePlaceAndDate(ctx context.Context, place, date string) ([]*models.StrategyRecommendation, error) {
	races, err := a.raceRepo.GetByPlaceAndDate(ctx, place, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load races for %s %s: %w", place, date, err)
	}
	return a.analyzeAll(ctx, races)
}

func (a *Analyzer) analyzeAll(ctx context.Context, races []*models.Race) ([]*models.StrategyRecommendation, error) {
	recs := make([]*models.StrategyRecommendation, 0, len(races))
	for _, race := range races {
		if err := ctx.Err(); err != nil {
			return recs, err
		}
		rec, err := a.AnalyzeRace(ctx, race)
		if err != nil {
			continue
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// storedFrom converts a structured recommendation to its persisted shape,
// serializing each ticket to textual notation.
func storedFrom(rec *models.StrategyRecommendation) *models.StoredRecommendation {
	notations := make([]string, 0, len(rec.Tickets))
	for _, t := range rec.Tickets {
		notations = append(notations, settlement.Format(t))
	}
	return &models.StoredRecommendation{
		ID:           rec.ID,
		Place:        rec.Place,
		Date:         rec.Date,
		RaceNumber:   rec.RaceNumber,
		StrategyKind: rec.StrategyKind,
		Archetype:    rec.Archetype,
		Confidence:   rec.Confidence,
		Reason:       rec.Reason,
		Tickets:      notations,
		TopCar:       rec.TopCar,
		CreatedAt:    rec.CreatedAt,
	}
}

func totalUnits(units map[models.BetKind]int) int {
	total := 0
	for _, n := range units {
		total += n
	}
	return total
}
