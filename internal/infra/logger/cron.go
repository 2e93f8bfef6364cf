package logger

import (
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// CronLogger adapts a logrus entry to cron.Logger.
type CronLogger struct {
	entry *logrus.Entry
}

var _ cron.Logger = (*CronLogger)(nil)

func NewCronLogger(entry *logrus.Entry) *CronLogger {
	return &CronLogger{entry: entry}
}

// Info is used by cron for routine messages such as schedule, wake and skip; they go to debug
// except skips, which mean a cycle overran its slot.
func (l *CronLogger) Info(msg string, keysAndValues ...interface{}) {
	e := l.entry.WithFields(fields(keysAndValues))
	if msg == "skip" {
		e.Warn("cron: tick skipped, previous cycle still running")
		return
	}
	e.Debug("cron: " + msg)
}

func (l *CronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.entry.WithFields(fields(keysAndValues)).WithError(err).Error("cron: " + msg)
}

func fields(keysAndValues []interface{}) logrus.Fields {
	f := make(logrus.Fields, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		f[key] = keysAndValues[i+1]
	}
	return f
}
