package logging

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Setup configures the global logrus logger from config values. Production
// environments emit JSON for log aggregation; everything else stays on the
// text formatter.
func Setup(logLevel, environment string) {
	level, err := logrus.ParseLevel(strings.ToLower(logLevel))
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	logrus.SetOutput(os.Stdout)

	if environment == "production" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

// WithComponent returns a logger entry tagged with the originating component.
func WithComponent(name string) *logrus.Entry {
	return logrus.WithField("component", name)
}
