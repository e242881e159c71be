package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// AuditLogger provides dedicated audit trail logging.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogRunStored records a persisted forecast run.
func (al *AuditLogger) LogRunStored(runID, source, algorithm string, createdAt time.Time) {
	al.WithFields(logrus.Fields{
		"run_id":     runID,
		"source":     source,
		"algorithm":  algorithm,
		"created_at": createdAt.Unix(),
	}).Info("Forecast run recorded")
}

// LogScheduledRun records a cron-triggered forecast.
func (al *AuditLogger) LogScheduledRun(schedule, source string, success bool, durationMs float64) {
	al.WithFields(logrus.Fields{
		"schedule":    schedule,
		"source":      source,
		"success":     success,
		"duration_ms": durationMs,
	}).Info("Scheduled forecast executed")
}
