package utils

import (
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger creates the application logger. Development gets readable text
// output, everything else JSON. An unparseable level falls back to info.
func NewLogger(env, level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	if env == "development" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)
	return logger
}
