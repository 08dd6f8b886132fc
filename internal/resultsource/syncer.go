package resultsource

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/keirin-edge/internal/repository"
)

// Syncer pulls settled results from the results API into the outcome
// store so settlement runs can price against them.
type Syncer struct {
	client *Client
	repo   repository.OutcomeRepository
	logger *logrus.Logger
}

// NewSyncer creates a syncer over the given client and outcome store
func NewSyncer(client *Client, repo repository.OutcomeRepository, logger *logrus.Logger) *Syncer {
	return &Syncer{client: client, repo: repo, logger: logger}
}

// SyncDate fetches and stores every result for one date, returning the
// number of outcomes written. Individual upsert failures are logged and
// skipped.
func (s *Syncer) SyncDate(ctx context.Context, date string) (int, error) {
	outcomes, err := s.client.FetchDay(ctx, date)
	if err != nil {
		return 0, err
	}

	written := 0
	for _, outcome := range outcomes {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		if err := s.repo.Upsert(ctx, outcome); err != nil {
			if s.logger != nil {
				s.logger.WithError(err).WithField("race_key", outcome.RaceKey()).
					Error("Failed to store race outcome")
			}
			continue
		}
		written++
	}

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{
			"date":    date,
			"written": written,
			"fetched": len(outcomes),
		}).Info("Race outcomes synced")
	}
	return written, nil
}

// SyncRange fetches and stores results for every date in the inclusive
// range, walking backwards from the end date.
func (s *Syncer) SyncRange(ctx context.Context, start, end time.Time) (int, error) {
	if end.Before(start) {
		return 0, fmt.Errorf("invalid range: end %s before start %s",
			end.Format("2006-01-02"), start.Format("2006-01-02"))
	}

	total := 0
	for d := end; !d.Before(start); d = d.AddDate(0, 0, -1) {
		written, err := s.SyncDate(ctx, d.Format("2006-01-02"))
		total += written
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
