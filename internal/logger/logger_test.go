package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLogger() (*logrus.Logger, *bytes.Buffer) {
	log := logrus.New()
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.DebugLevel)
	return log, buf
}

func parseLogOutput(buf *bytes.Buffer) map[string]interface{} {
	var logEntry map[string]interface{}
	err := json.Unmarshal(buf.Bytes(), &logEntry)
	if err != nil {
		return nil
	}
	return logEntry
}

func TestNewLoggerInvalidLevel(t *testing.T) {
	log := NewLogger("not-a-level")
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}

func TestNewLoggerDebugLevel(t *testing.T) {
	log := NewLogger("debug")
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
}

func TestNewLoggerStampsServiceField(t *testing.T) {
	t.Setenv("KEIRIN_EDGE_SERVICE", "settle")

	log := NewLogger("debug")
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	log.SetFormatter(&logrus.JSONFormatter{})

	log.Info("scheduler started")

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "settle", logEntry["service"])
}

func TestAnalysisLoggerRaceScored(t *testing.T) {
	log, buf := setupTestLogger()
	analysisLogger := NewAnalysisLogger(log)

	analysisLogger.LogRaceScored("kokura-20260830-11", 9, 3, 94.5, 1.8)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "kokura-20260830-11", logEntry["race_key"])
	assert.Equal(t, "analysis", logEntry["component"])
	assert.Equal(t, float64(3), logEntry["top_car"])
}

func TestAnalysisLoggerClassification(t *testing.T) {
	log, buf := setupTestLogger()
	analysisLogger := NewAnalysisLogger(log)

	analysisLogger.LogClassification("kokura-20260830-11", "SUJI_FIX", "B", "line trust", true, 4.5)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "SUJI_FIX", logEntry["archetype"])
	assert.Equal(t, true, logEntry["strict"])
}

func TestAnalysisLoggerRaceSkipped(t *testing.T) {
	log, buf := setupTestLogger()
	analysisLogger := NewAnalysisLogger(log)

	analysisLogger.LogRaceSkipped("kokura-20260830-11", "SKIP", "score share below floor")

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "SKIP", logEntry["archetype"])
	assert.Equal(t, "score share below floor", logEntry["reason"])
}

func TestAnalysisLoggerFailure(t *testing.T) {
	log, buf := setupTestLogger()
	analysisLogger := NewAnalysisLogger(log)

	analysisLogger.LogAnalysisFailure("kokura-20260830-11", errors.New("rider list empty"))

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "error", logEntry["level"])
	assert.Equal(t, "rider list empty", logEntry["error"])
}

func TestSettlementLoggerRaceSettled(t *testing.T) {
	log, buf := setupTestLogger()
	settlementLogger := NewSettlementLogger(log)

	settlementLogger.LogRaceSettled("kokura-20260830-11", "TEPPAN", "SETTLED", 600, 1750)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "settlement", logEntry["component"])
	assert.Equal(t, "SETTLED", logEntry["status"])
	assert.Equal(t, float64(1750), logEntry["returned"])
}

func TestSettlementLoggerMalformedTicket(t *testing.T) {
	log, buf := setupTestLogger()
	settlementLogger := NewSettlementLogger(log)

	settlementLogger.LogMalformedTicket("kokura-20260830-11", "CHAOS", "trifecta: 1 ->", errors.New("dangling separator"))

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "warning", logEntry["level"])
	assert.Equal(t, "trifecta: 1 ->", logEntry["notation"])
}

func TestSettlementLoggerRunSummary(t *testing.T) {
	log, buf := setupTestLogger()
	settlementLogger := NewSettlementLogger(log)

	settlementLogger.LogRunSummary(12, 3, 1, 25.0, 112.4, 840.0)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, float64(12), logEntry["settled"])
	assert.Equal(t, 112.4, logEntry["recovery_rate"])
}

func TestLoggerJSONFormat(t *testing.T) {
	log, buf := setupTestLogger()
	analysisLogger := NewAnalysisLogger(log)

	analysisLogger.LogTicketsGenerated("kokura-20260830-11", "STAR_CHASE_JUMP", 3, 8)

	var logEntry map[string]interface{}
	err := json.Unmarshal(buf.Bytes(), &logEntry)
	assert.NoError(t, err)
	assert.NotEmpty(t, logEntry)
}

func BenchmarkAnalysisLoggerRaceScored(b *testing.B) {
	log := logrus.New()
	log.SetOutput(&bytes.Buffer{})
	analysisLogger := NewAnalysisLogger(log)

	for i := 0; i < b.N; i++ {
		analysisLogger.LogRaceScored("kokura-20260830-11", 9, 3, 94.5, 1.8)
	}
}
