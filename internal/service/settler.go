package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/keirin-edge/internal/logger"
	"github.com/yourusername/keirin-edge/internal/metrics"
	"github.com/yourusername/keirin-edge/internal/models"
	"github.com/yourusername/keirin-edge/internal/repository"
	"github.com/yourusername/keirin-edge/internal/settlement"
)

// Settler reconciles stored recommendations against official race
// outcomes and persists the resulting settlement rows.
type Settler struct {
	recRepo     repository.RecommendationRepository
	outcomeRepo repository.OutcomeRepository
	settleRepo  repository.SettlementRepository
	log         *logger.SettlementLogger
	now         func() time.Time
}

// NewSettler creates a settler wired to the given repositories.
func NewSettler(
	recRepo repository.RecommendationRepository,
	outcomeRepo repository.OutcomeRepository,
	settleRepo repository.SettlementRepository,
	baseLogger *logrus.Logger,
) *Settler {
	return &Settler{
		recRepo:     recRepo,
		outcomeRepo: outcomeRepo,
		settleRepo:  settleRepo,
		log:         logger.NewSettlementLogger(baseLogger),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Run settles every recommendation created since the given time. When a
// race has been re-analyzed only the most recent recommendation per
// (race, strategy kind) is settled. Failures on individual rows are
// logged and skipped. The run is idempotent: settlement rows are upserted
// on their dedup key, so re-running a window overwrites identical rows.
func (s *Settler) Run(ctx context.Context, since time.Time) (settlement.Summary, error) {
	start := s.now()

	recs, err := s.recRepo.GetSince(ctx, since)
	if err != nil {
		return settlement.Summary{}, fmt.Errorf("failed to load recommendations since %s: %w",
			since.Format("2006-01-02"), err)
	}

	latest := latestPerDedupKey(recs)
	s.log.LogRunStarted(since.Format("2006-01-02"), len(latest))

	if len(latest) == 0 {
		return settlement.Aggregate(nil), nil
	}

	keys := raceKeysOf(latest)
	fetchStart := s.now()
	outcomes, err := s.outcomeRepo.GetByRaceKeys(ctx, keys)
	if err != nil {
		return settlement.Summary{}, fmt.Errorf("failed to load outcomes: %w", err)
	}
	s.log.LogOutcomeFetch(len(keys), len(outcomes), durationMs(fetchStart, s.now()))

	records := make([]models.SettlementRecord, 0, len(latest))
	for _, stored := range latest {
		if err := ctx.Err(); err != nil {
			return settlement.Aggregate(records), err
		}

		record := settlement.SettleRace(stored, outcomes[stored.RaceKey()], s.now())
		for _, ts := range record.Tickets {
			if ts.Error != "" {
				s.log.LogMalformedTicket(stored.RaceKey(), string(stored.Archetype), ts.Notation,
					fmt.Errorf("%s", ts.Error))
			}
		}

		if err := s.settleRepo.Upsert(ctx, &record); err != nil {
			s.log.WithError(err).WithField("race_key", stored.RaceKey()).
				Error("Failed to persist settlement row")
			continue
		}

		inv, _ := record.Investment.Float64()
		ret, _ := record.Return.Float64()
		s.log.LogRaceSettled(stored.RaceKey(), string(record.Archetype), string(record.Status), inv, ret)
		records = append(records, record)
	}

	summary := settlement.Aggregate(records)
	elapsed := s.now().Sub(start)
	metrics.RecordSettlementRun(summary.Settled.Count, summary.Pending, summary.Errors,
		summary.Settled.HitRate(), summary.Settled.RecoveryRate(), elapsed.Seconds())
	s.log.LogRunSummary(summary.Settled.Count, summary.Pending, summary.Errors,
		summary.Settled.HitRate(), summary.Settled.RecoveryRate(), float64(elapsed.Milliseconds()))

	return summary, nil
}

// latestPerDedupKey keeps only the most recent recommendation per
// (race, strategy kind), ordered by date, place and race number so runs
// log deterministically.
func latestPerDedupKey(recs []*models.StoredRecommendation) []*models.StoredRecommendation {
	byKey := make(map[string]*models.StoredRecommendation)
	for _, rec := range recs {
		key := rec.DedupKey()
		// Ties on CreatedAt break toward the later slice position.
		if cur, ok := byKey[key]; !ok || !cur.CreatedAt.After(rec.CreatedAt) {
			byKey[key] = rec
		}
	}

	latest := make([]*models.StoredRecommendation, 0, len(byKey))
	for _, rec := range byKey {
		latest = append(latest, rec)
	}
	sort.Slice(latest, func(i, j int) bool {
		a, b := latest[i], latest[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.Place != b.Place {
			return a.Place < b.Place
		}
		return a.RaceNumber < b.RaceNumber
	})
	return latest
}

func raceKeysOf(recs []*models.StoredRecommendation) []string {
	seen := make(map[string]struct{}, len(recs))
	keys := make([]string, 0, len(recs))
	for _, rec := range recs {
		key := rec.RaceKey()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	return keys
}

func durationMs(from, to time.Time) float64 {
	return float64(to.Sub(from).Microseconds()) / 1000
}
