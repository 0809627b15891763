package utils

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var log = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if strings.EqualFold(os.Getenv("LOG_LEVEL"), "debug") {
		l.SetLevel(logrus.DebugLevel)
	}
	return l
}

// Logger exposes the shared logrus instance for middleware.
func Logger() *logrus.Logger { return log }

// LogEvent prints a standardized line with module/action/request_id.
// Avoid logging sensitive payload; message should be summarized.
func LogEvent(requestID, module, action, message string) {
	log.WithFields(logrus.Fields{
		"module":     strings.ToUpper(module),
		"action":     action,
		"request_id": strings.TrimSpace(requestID),
	}).Info(message)
}
