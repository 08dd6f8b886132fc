// Package logger provides the structured logging used by the analysis
// and settlement pipelines.
package logger

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// NewLogger builds the base logger the binaries share. Every entry
// carries the service name so the analyze and settle logs can be
// separated downstream. Output is JSON when KEIRIN_EDGE_ENV=production,
// coloured text otherwise.
func NewLogger(logLevel string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		log.Warnf("Invalid log level '%s', defaulting to info", logLevel)
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if os.Getenv("KEIRIN_EDGE_ENV") == "production" {
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339,
		})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
	}

	log.AddHook(&serviceHook{service: serviceName()})
	return log
}

func serviceName() string {
	if name := os.Getenv("KEIRIN_EDGE_SERVICE"); name != "" {
		return name
	}
	return "keirin-edge"
}

// serviceHook stamps every entry with the service name.
type serviceHook struct {
	service string
}

func (h *serviceHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h *serviceHook) Fire(entry *logrus.Entry) error {
	if _, ok := entry.Data["service"]; !ok {
		entry.Data["service"] = h.service
	}
	return nil
}
