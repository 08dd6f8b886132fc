// Package logger provides settlement-specific logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// SettlementLogger provides dedicated logging for settlement operations.
type SettlementLogger struct {
	*logrus.Entry
}

// NewSettlementLogger creates a new settlement logger.
func NewSettlementLogger(baseLogger *logrus.Logger) *SettlementLogger {
	return &SettlementLogger{
		Entry: baseLogger.WithField("component", "settlement"),
	}
}

// LogRunStarted logs the start of a settlement run.
func (sl *SettlementLogger) LogRunStarted(since string, candidates int) {
	sl.WithFields(logrus.Fields{
		"since":      since,
		"candidates": candidates,
	}).Info("Settlement run started")
}

// LogRaceSettled logs a single settled recommendation.
func (sl *SettlementLogger) LogRaceSettled(raceKey, archetype, status string, investment, returned float64) {
	sl.WithFields(logrus.Fields{
		"race_key":   raceKey,
		"archetype":  archetype,
		"status":     status,
		"investment": investment,
		"returned":   returned,
	}).Info("Recommendation settled")
}

// LogMalformedTicket logs a ticket that failed notation parsing during settlement.
func (sl *SettlementLogger) LogMalformedTicket(raceKey, archetype, notation string, err error) {
	sl.WithFields(logrus.Fields{
		"race_key":  raceKey,
		"archetype": archetype,
		"notation":  notation,
		"error":     err.Error(),
	}).Warn("Malformed ticket notation")
}

// LogOutcomeFetch logs a batch fetch of race outcomes.
func (sl *SettlementLogger) LogOutcomeFetch(requested, found int, durationMs float64) {
	sl.WithFields(logrus.Fields{
		"requested":         requested,
		"found":             found,
		"fetch_duration_ms": durationMs,
	}).Info("Race outcomes fetched")
}

// LogRunSummary logs the aggregate result of a settlement run.
func (sl *SettlementLogger) LogRunSummary(settled, pending, errors int, hitRate, recoveryRate, durationMs float64) {
	sl.WithFields(logrus.Fields{
		"settled":         settled,
		"pending":         pending,
		"errors":          errors,
		"hit_rate":        hitRate,
		"recovery_rate":   recoveryRate,
		"run_duration_ms": durationMs,
	}).Info("Settlement run completed")
}
