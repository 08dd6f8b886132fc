// Package logger provides analysis-specific logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// AnalysisLogger provides dedicated logging for race analysis operations.
type AnalysisLogger struct {
	*logrus.Entry
}

// NewAnalysisLogger creates a new analysis logger.
func NewAnalysisLogger(baseLogger *logrus.Logger) *AnalysisLogger {
	return &AnalysisLogger{
		Entry: baseLogger.WithField("component", "analysis"),
	}
}

// LogRaceScored logs the outcome of the scoring pass for a single race.
func (al *AnalysisLogger) LogRaceScored(raceKey string, riders int, topCar int, topScore float64, durationMs float64) {
	al.WithFields(logrus.Fields{
		"race_key":            raceKey,
		"riders":              riders,
		"top_car":             topCar,
		"top_score":           topScore,
		"scoring_duration_ms": durationMs,
	}).Info("Race scored")
}

// LogClassification logs the archetype verdict for a race.
func (al *AnalysisLogger) LogClassification(raceKey, archetype, confidence, reason string, strict bool, gap float64) {
	al.WithFields(logrus.Fields{
		"race_key":   raceKey,
		"archetype":  archetype,
		"confidence": confidence,
		"reason":     reason,
		"strict":     strict,
		"score_gap":  gap,
	}).Info("Race classified")
}

// LogTicketsGenerated logs the generated wager plan for a race.
func (al *AnalysisLogger) LogTicketsGenerated(raceKey, archetype string, tickets, units int) {
	al.WithFields(logrus.Fields{
		"race_key":  raceKey,
		"archetype": archetype,
		"tickets":   tickets,
		"units":     units,
	}).Info("Wager tickets generated")
}

// LogRaceSkipped logs a race that produced no recommendation.
func (al *AnalysisLogger) LogRaceSkipped(raceKey, archetype, reason string) {
	al.WithFields(logrus.Fields{
		"race_key":  raceKey,
		"archetype": archetype,
		"reason":    reason,
	}).Info("Race skipped, no tickets generated")
}

// LogAnalysisFailure logs a race analysis that could not complete.
func (al *AnalysisLogger) LogAnalysisFailure(raceKey string, err error) {
	al.WithFields(logrus.Fields{
		"race_key": raceKey,
		"error":    err.Error(),
	}).Error("Race analysis failed")
}
